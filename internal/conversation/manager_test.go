package conversation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llmgate/pkg/types"
)

type call struct{ prompt, model string }

// fakeGenerator replies "re: <prompt>" unless fn is set.
type fakeGenerator struct {
	mu    sync.Mutex
	calls []call
	fn    func(ctx context.Context, prompt, model string) (string, error)
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt, model string) (string, error) {
	g.mu.Lock()
	g.calls = append(g.calls, call{prompt, model})
	fn := g.fn
	g.mu.Unlock()
	if fn != nil {
		return fn(ctx, prompt, model)
	}
	return "re: " + prompt, nil
}

func (g *fakeGenerator) Calls() []call {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]call(nil), g.calls...)
}

func newTestManager(gen Generator) *Manager {
	return NewManager(NewMemoryStore(), gen, zerolog.Nop())
}

func TestStartThenHello(t *testing.T) {
	gen := &fakeGenerator{fn: func(context.Context, string, string) (string, error) { return "Hi there", nil }}
	m := newTestManager(gen)
	ctx := context.Background()

	require.NoError(t, m.Start(ctx, "s1"))
	text, err := m.AppendAndGenerate(ctx, "s1", "Hello", "llama3")
	require.NoError(t, err)
	assert.Equal(t, "Hi there", text)

	h, err := m.History(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []types.Message{
		{Role: types.RoleUser, Content: "Hello"},
		{Role: types.RoleAssistant, Content: "Hi there"},
	}, h)
	assert.Equal(t, []call{{"Hello", "llama3"}}, gen.Calls())
}

func TestStart_DuplicateLeavesHistoryAlone(t *testing.T) {
	m := newTestManager(&fakeGenerator{})
	ctx := context.Background()
	require.NoError(t, m.Start(ctx, "s1"))
	_, err := m.AppendAndGenerate(ctx, "s1", "first", "")
	require.NoError(t, err)

	err = m.Start(ctx, "s1")
	require.Error(t, err)
	assert.True(t, IsDuplicateSession(err))

	h, err := m.History(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, h, 2)
	assert.Equal(t, 1, m.Count())
}

func TestStart_BlankID(t *testing.T) {
	m := newTestManager(&fakeGenerator{})
	for _, id := range []string{"", "   "} {
		err := m.Start(context.Background(), id)
		assert.True(t, IsInvalidID(err), "id %q", id)
	}
	assert.Equal(t, 0, m.Count())
}

func TestUnknownSession(t *testing.T) {
	gen := &fakeGenerator{}
	m := newTestManager(gen)

	_, err := m.History(context.Background(), "nope")
	assert.True(t, IsNotFound(err))

	_, err = m.AppendAndGenerate(context.Background(), "nope", "Hello", "")
	assert.True(t, IsNotFound(err))
	assert.Empty(t, gen.Calls())
}

func TestAlternatingHistoryAndLatestPromptOnly(t *testing.T) {
	gen := &fakeGenerator{}
	m := newTestManager(gen)
	ctx := context.Background()
	require.NoError(t, m.Start(ctx, "s1"))

	const n = 4
	for i := 0; i < n; i++ {
		_, err := m.AppendAndGenerate(ctx, "s1", fmt.Sprintf("p%d", i), "")
		require.NoError(t, err)
	}
	h, err := m.History(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, h, 2*n)
	for i, msg := range h {
		if i%2 == 0 {
			assert.Equal(t, types.RoleUser, msg.Role)
			assert.Equal(t, fmt.Sprintf("p%d", i/2), msg.Content)
		} else {
			assert.Equal(t, types.RoleAssistant, msg.Role)
			assert.Equal(t, "re: "+h[i-1].Content, msg.Content)
		}
	}
	for i, c := range gen.Calls() {
		assert.Equal(t, fmt.Sprintf("p%d", i), c.prompt)
	}
}

func TestFailedGenerationKeepsUserTurn(t *testing.T) {
	boom := errors.New("backend down")
	fail := true
	gen := &fakeGenerator{}
	gen.fn = func(_ context.Context, prompt, _ string) (string, error) {
		if fail {
			return "", boom
		}
		return "re: " + prompt, nil
	}
	m := newTestManager(gen)
	ctx := context.Background()
	require.NoError(t, m.Start(ctx, "s1"))

	_, err := m.AppendAndGenerate(ctx, "s1", "lost", "")
	assert.ErrorIs(t, err, boom)

	fail = false
	_, err = m.AppendAndGenerate(ctx, "s1", "kept", "")
	require.NoError(t, err)

	h, err := m.History(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []types.Message{
		{Role: types.RoleUser, Content: "lost"},
		{Role: types.RoleUser, Content: "kept"},
		{Role: types.RoleAssistant, Content: "re: kept"},
	}, h)
}

func TestHistoryIsACopy(t *testing.T) {
	m := newTestManager(&fakeGenerator{})
	ctx := context.Background()
	require.NoError(t, m.Start(ctx, "s1"))
	_, err := m.AppendAndGenerate(ctx, "s1", "Hello", "")
	require.NoError(t, err)

	h, err := m.History(ctx, "s1")
	require.NoError(t, err)
	h[0].Content = "tampered"

	again, err := m.History(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Hello", again[0].Content)
}

func TestSameSessionTurnsDoNotInterleave(t *testing.T) {
	var inflight, maxInflight atomic.Int32
	gen := &fakeGenerator{}
	gen.fn = func(_ context.Context, prompt, _ string) (string, error) {
		cur := inflight.Add(1)
		defer inflight.Add(-1)
		for {
			prev := maxInflight.Load()
			if cur <= prev || maxInflight.CompareAndSwap(prev, cur) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		return "re: " + prompt, nil
	}
	m := newTestManager(gen)
	ctx := context.Background()
	require.NoError(t, m.Start(ctx, "s1"))

	const n = 8
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := m.AppendAndGenerate(ctx, "s1", fmt.Sprintf("p%d", i), "")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.EqualValues(t, 1, maxInflight.Load())
	h, err := m.History(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, h, 2*n)
	for i := 0; i < len(h); i += 2 {
		assert.Equal(t, types.RoleUser, h[i].Role)
		assert.Equal(t, types.RoleAssistant, h[i+1].Role)
		assert.Equal(t, "re: "+h[i].Content, h[i+1].Content)
	}
}

func TestDifferentSessionsRunInParallel(t *testing.T) {
	started := make(chan string, 2)
	release := make(chan struct{})
	gen := &fakeGenerator{}
	gen.fn = func(ctx context.Context, prompt, _ string) (string, error) {
		started <- prompt
		select {
		case <-release:
			return "ok", nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	m := newTestManager(gen)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, m.Start(ctx, "a"))
	require.NoError(t, m.Start(ctx, "b"))

	errs := make(chan error, 2)
	for _, id := range []string{"a", "b"} {
		go func(id string) {
			_, err := m.AppendAndGenerate(ctx, id, id, "")
			errs <- err
		}(id)
	}
	for i := 0; i < 2; i++ {
		select {
		case <-started:
		case <-time.After(2 * time.Second):
			t.Fatal("sessions did not run concurrently")
		}
	}
	close(release)
	for i := 0; i < 2; i++ {
		require.NoError(t, <-errs)
	}
}

func TestWaitingTurnHonoursCancellation(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	gen := &fakeGenerator{}
	gen.fn = func(context.Context, string, string) (string, error) {
		close(entered)
		<-release
		return "done", nil
	}
	m := newTestManager(gen)
	require.NoError(t, m.Start(context.Background(), "s1"))

	first := make(chan error, 1)
	go func() {
		_, err := m.AppendAndGenerate(context.Background(), "s1", "first", "")
		first <- err
	}()
	<-entered

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err := m.AppendAndGenerate(ctx, "s1", "second", "")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	require.NoError(t, <-first)
	h, err := m.History(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, []types.Message{
		{Role: types.RoleUser, Content: "first"},
		{Role: types.RoleAssistant, Content: "done"},
	}, h)
}

func TestNewManager_NilStore(t *testing.T) {
	m := NewManager(nil, &fakeGenerator{}, zerolog.Nop())
	require.NoError(t, m.Start(context.Background(), "x"))
	assert.Equal(t, 1, m.Count())
}
