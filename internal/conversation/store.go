package conversation

import (
	"context"
	"sync"

	"llmgate/pkg/types"
)

// Store maps session ids to ordered message histories. Implementations must
// be safe for concurrent use and must return copies from Messages.
type Store interface {
	// Create registers an empty session, failing with a duplicate-session
	// error when id is taken.
	Create(ctx context.Context, id string) error
	// Append adds msgs to the end of the session's history.
	Append(ctx context.Context, id string, msgs ...types.Message) error
	// Messages returns a copy of the history.
	Messages(ctx context.Context, id string) ([]types.Message, error)
	// Has reports whether id exists.
	Has(ctx context.Context, id string) bool
	// Len returns the number of sessions.
	Len() int
}

// MemoryStore keeps sessions for the lifetime of the process.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]types.Message
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string][]types.Message)}
}

func (s *MemoryStore) Create(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; ok {
		return ErrDuplicateSession(id)
	}
	s.sessions[id] = []types.Message{}
	return nil
}

func (s *MemoryStore) Append(_ context.Context, id string, msgs ...types.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.sessions[id]
	if !ok {
		return ErrNotFound(id)
	}
	s.sessions[id] = append(h, msgs...)
	return nil
}

func (s *MemoryStore) Messages(_ context.Context, id string) ([]types.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound(id)
	}
	out := make([]types.Message, len(h))
	copy(out, h)
	return out, nil
}

func (s *MemoryStore) Has(_ context.Context, id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sessions[id]
	return ok
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
