package conversation

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"llmgate/pkg/types"
)

// Generator produces a completion for a single prompt.
type Generator interface {
	Generate(ctx context.Context, prompt, model string) (string, error)
}

// Manager serializes turns per session on top of a Store.
type Manager struct {
	store Store
	gen   Generator
	log   zerolog.Logger

	mu    sync.Mutex
	slots map[string]chan struct{}
}

// NewManager wires a Manager. A nil store gets a fresh MemoryStore.
func NewManager(store Store, gen Generator, logger zerolog.Logger) *Manager {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Manager{
		store: store,
		gen:   gen,
		log:   logger.With().Str("component", "conversation").Logger(),
		slots: make(map[string]chan struct{}),
	}
}

// Start creates an empty session.
func (m *Manager) Start(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return invalidIDError{}
	}
	if err := m.store.Create(ctx, id); err != nil {
		return err
	}
	conversationsActive.Inc()
	m.log.Info().Str("conv_id", id).Msg("conversation started")
	return nil
}

// AppendAndGenerate records prompt as a user turn, forwards it alone to the
// generator and records the reply as an assistant turn. When generation
// fails the user turn stays and the error is returned unchanged.
func (m *Manager) AppendAndGenerate(ctx context.Context, id, prompt, model string) (string, error) {
	if !m.store.Has(ctx, id) {
		return "", ErrNotFound(id)
	}
	release, err := m.acquire(ctx, id)
	if err != nil {
		return "", err
	}
	defer release()

	if err := m.store.Append(ctx, id, types.Message{Role: types.RoleUser, Content: prompt}); err != nil {
		return "", err
	}

	start := time.Now()
	text, err := m.gen.Generate(ctx, prompt, model)
	if err != nil {
		turnsTotal.WithLabelValues("failed").Inc()
		m.log.Warn().Err(err).Str("conv_id", id).Str("model", model).Msg("generation failed; user turn kept")
		return "", err
	}
	if err := m.store.Append(ctx, id, types.Message{Role: types.RoleAssistant, Content: text}); err != nil {
		return "", fmt.Errorf("record reply: %w", err)
	}
	turnsTotal.WithLabelValues("ok").Inc()
	m.log.Debug().Str("conv_id", id).Str("model", model).Dur("took", time.Since(start)).Msg("turn complete")
	return text, nil
}

// History returns a copy of the session's messages, oldest first.
func (m *Manager) History(ctx context.Context, id string) ([]types.Message, error) {
	return m.store.Messages(ctx, id)
}

// Count returns the number of sessions.
func (m *Manager) Count() int { return m.store.Len() }
