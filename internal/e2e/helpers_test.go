package e2e

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"llmgate/internal/conversation"
	"llmgate/internal/httpapi"
	"llmgate/internal/inference"
	"llmgate/internal/registry"
	"llmgate/internal/staging"
)

// fakeOllama is a minimal in-process stand-in for the Ollama API.
type fakeOllama struct {
	mu       sync.Mutex
	prompts  []string
	images   [][]byte
	inflight atomic.Int32
	maxSeen  atomic.Int32
	delay    time.Duration
	// bare answers generate and pull with only this status line.
	bare int
}

func (f *fakeOllama) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/api/generate", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model  string   `json:"model"`
			Prompt string   `json:"prompt"`
			Images [][]byte `json:"images"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			ollamaError(w, http.StatusBadRequest, err.Error())
			return
		}
		if f.bare != 0 {
			w.WriteHeader(f.bare)
			return
		}
		cur := f.inflight.Add(1)
		defer f.inflight.Add(-1)
		for {
			prev := f.maxSeen.Load()
			if cur <= prev || f.maxSeen.CompareAndSwap(prev, cur) {
				break
			}
		}
		if f.delay > 0 {
			time.Sleep(f.delay)
		}
		f.mu.Lock()
		f.prompts = append(f.prompts, req.Prompt)
		f.images = append(f.images, req.Images...)
		f.mu.Unlock()

		switch {
		case req.Model == "broken":
			ollamaError(w, http.StatusInternalServerError, "llama runner process has terminated")
			return
		case len(req.Images) > 0 && !strings.HasPrefix(req.Model, "llava"):
			ollamaError(w, http.StatusBadRequest, "model does not support images")
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"model":    req.Model,
			"response": "reply to " + req.Prompt,
			"done":     true,
		})
	})
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"models":[{"name":"llama3:latest","model":"llama3:latest","size":4661224676,"digest":"365c0bd3c000","details":{"family":"llama"}}]}`))
	})
	mux.HandleFunc("/api/pull", func(w http.ResponseWriter, r *http.Request) {
		if f.bare != 0 {
			w.WriteHeader(f.bare)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "success"})
	})
	return mux
}

func (f *fakeOllama) Prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}

func ollamaError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

type gateway struct {
	srv    *httptest.Server
	stager *staging.Stager
}

// newGateway wires the real components against ollamaURL.
func newGateway(t *testing.T, ollamaURL string) *gateway {
	t.Helper()
	client, err := inference.New(inference.Options{
		BaseURL:         ollamaURL,
		DefaultModel:    "llama3",
		GenerateTimeout: 5 * time.Second,
		ListTimeout:     5 * time.Second,
		PullTimeout:     5 * time.Second,
		Logger:          zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("inference client: %v", err)
	}
	stager, err := staging.New(t.TempDir(), 1<<20, zerolog.Nop())
	if err != nil {
		t.Fatalf("stager: %v", err)
	}
	httpapi.SetLogger(zerolog.Nop())
	mux := httpapi.NewMux(httpapi.Deps{
		Backend:       client,
		Conversations: conversation.NewManager(conversation.NewMemoryStore(), client, zerolog.Nop()),
		Uploads:       stager,
		Capabilities:  registry.New("llama3", []string{"llava"}, false),
		BackendURL:    client.BaseURL(),
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return &gateway{srv: srv, stager: stager}
}

func startFakeOllama(t *testing.T, f *fakeOllama) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)
	return srv
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp, b
}

func httpPostJSON(t *testing.T, url, body string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp, b
}
