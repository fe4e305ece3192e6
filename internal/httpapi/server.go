package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"llmgate/internal/staging"
	"llmgate/pkg/types"
)

// Backend is the inference surface used by the handlers.
type Backend interface {
	ListModels(ctx context.Context) ([]types.ModelDescriptor, error)
	Generate(ctx context.Context, prompt, model string) (string, error)
	GenerateMultimodal(ctx context.Context, prompt, model, path string) (string, error)
	DownloadModel(ctx context.Context, name string) (string, error)
	Ping(ctx context.Context) error
}

// Conversations manages session histories.
type Conversations interface {
	Start(ctx context.Context, id string) error
	AppendAndGenerate(ctx context.Context, id, prompt, model string) (string, error)
	History(ctx context.Context, id string) ([]types.Message, error)
	Count() int
}

// Uploads stages a file for the duration of fn.
type Uploads interface {
	Do(ctx context.Context, up staging.Upload, fn func(ctx context.Context, path string) error) error
	Active() int64
}

// Capabilities answers model questions from configuration.
type Capabilities interface {
	Resolve(model string) string
	SupportsFiles(model string) bool
	Strict() bool
	DefaultModel() string
	Multimodal() []string
}

// Deps are the collaborators the router dispatches to.
type Deps struct {
	Backend       Backend
	Conversations Conversations
	Uploads       Uploads
	Capabilities  Capabilities
	// BackendURL is reported by /status.
	BackendURL string
	// StaticDir holds index.html and the assets served under /static.
	// Empty disables static serving.
	StaticDir string
}

type server struct {
	Deps
	started time.Time
}

// probeTimeout bounds the heartbeat made by /readyz and /status.
const probeTimeout = 2 * time.Second

func NewMux(d Deps) http.Handler {
	s := &server{Deps: d, started: time.Now()}

	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
			MaxAge:         300,
		}))
	}

	r.Post("/generate", s.handleGenerate)
	r.Post("/generate-debug", s.handleGenerateDebug)
	r.Post("/generate/multimodal", s.handleGenerateMultimodal)

	r.Get("/models", s.handleModels)
	r.Get("/models/capabilities", s.handleCapabilities)
	r.Post("/models/download", s.handleDownload)

	r.Post("/conversation/start", s.handleStartConversation)
	r.Post("/conversation/{id}/message", s.handleConversationMessage)
	r.Get("/conversation/{id}", s.handleConversationHistory)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", s.handleReadyz)
	r.Get("/status", s.handleStatus)

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)
	s.mountStatic(r)
	return r
}

// fail writes err unless the client or the server has already gone away.
func fail(w http.ResponseWriter, r *http.Request, l *reqLog, err error) {
	if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
		l.end(0, err)
		return
	}
	l.end(writeError(w, err), err)
}

// decodeJSON enforces the JSON content type and body limit and decodes into
// v. It writes the error response itself and reports whether to continue.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		// Oversized bodies also land here; report them as a plain 400.
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// handleReadyz reports whether the inference server answers.
func (s *server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
	defer cancel()
	if err := s.Backend.Ping(ctx); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("backend unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// handleStatus godoc
// @Summary      Gateway status
// @Description  Backend reachability and in-memory counters.
// @Tags         ops
// @Produce      json
// @Success      200  {object}  types.StatusResponse
// @Router       /status [get]
func (s *server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
	defer cancel()
	now := time.Now()
	writeJSON(w, http.StatusOK, types.StatusResponse{
		Backend:          s.BackendURL,
		BackendReachable: s.Backend.Ping(ctx) == nil,
		DefaultModel:     s.Capabilities.DefaultModel(),
		Conversations:    s.Conversations.Count(),
		StagedFiles:      s.Uploads.Active(),
		UptimeSeconds:    int64(now.Sub(s.started).Seconds()),
		ServerTimeUnix:   now.Unix(),
	})
}
