package httpapi

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"llmgate/internal/conversation"
	"llmgate/internal/registry"
	"llmgate/internal/staging"
	"llmgate/pkg/types"
)

// mockBackend records the last call and returns canned results.
type mockBackend struct {
	mu         sync.Mutex
	models     []types.ModelDescriptor
	text       string
	err        error
	pingErr    error
	calls      int
	lastPrompt string
	lastModel  string
	lastPath   string
	pathSeen   bool
	pulled     string
}

func (m *mockBackend) ListModels(ctx context.Context) ([]types.ModelDescriptor, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.models, nil
}

func (m *mockBackend) Generate(ctx context.Context, prompt, model string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastPrompt, m.lastModel = prompt, model
	if m.err != nil {
		return "", m.err
	}
	return m.text, nil
}

func (m *mockBackend) GenerateMultimodal(ctx context.Context, prompt, model, path string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastPrompt, m.lastModel, m.lastPath = prompt, model, path
	_, statErr := os.Stat(path)
	m.pathSeen = statErr == nil
	if m.err != nil {
		return "", m.err
	}
	return m.text, nil
}

func (m *mockBackend) DownloadModel(ctx context.Context, name string) (string, error) {
	m.pulled = name
	if m.err != nil {
		return "", m.err
	}
	return "success", nil
}

func (m *mockBackend) Ping(ctx context.Context) error { return m.pingErr }

type mockHTTPError struct {
	msg  string
	code int
}

func (e mockHTTPError) Error() string   { return e.msg }
func (e mockHTTPError) StatusCode() int { return e.code }

type testEnv struct {
	h       http.Handler
	backend *mockBackend
	stager  *staging.Stager
	conv    *conversation.Manager
}

func newTestEnv(t *testing.T, mb *mockBackend, strict bool) *testEnv {
	t.Helper()
	stager, err := staging.New(t.TempDir(), 1<<20, zerolog.Nop())
	if err != nil {
		t.Fatalf("staging: %v", err)
	}
	conv := conversation.NewManager(conversation.NewMemoryStore(), mb, zerolog.Nop())
	h := NewMux(Deps{
		Backend:       mb,
		Conversations: conv,
		Uploads:       stager,
		Capabilities:  registry.New("llama3", []string{"llava"}, strict),
		BackendURL:    "http://ollama.test:11434",
	})
	return &testEnv{h: h, backend: mb, stager: stager, conv: conv}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.h.ServeHTTP(w, req)
	return w
}

func jsonReq(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// multipartReq builds a multipart request; an empty filename omits the file part.
func multipartReq(t *testing.T, fields map[string]string, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("field: %v", err)
		}
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		if _, err := io.Copy(fw, bytes.NewReader(content)); err != nil {
			t.Fatalf("copy: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/generate/multimodal", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}
