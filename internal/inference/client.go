// Package inference is the gateway's only path to the Ollama inference
// server. It wraps the typed ollama API client with per-operation timeouts
// and translates transport and status failures into the gateway's error
// taxonomy.
package inference

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/rs/zerolog"

	"llmgate/internal/staging"
	"llmgate/pkg/types"
)

const (
	opList       = "list"
	opGenerate   = "generate"
	opMultimodal = "generate_multimodal"
	opPull       = "pull"
	opPing       = "ping"
)

// Options configures a Client. Zero timeouts fall back to the defaults.
type Options struct {
	BaseURL         string
	DefaultModel    string
	GenerateTimeout time.Duration
	ListTimeout     time.Duration
	PullTimeout     time.Duration
	ConnectTimeout  time.Duration
	Logger          zerolog.Logger
}

// Client talks to one Ollama server.
type Client struct {
	api             *api.Client
	baseURL         string
	defaultModel    string
	generateTimeout time.Duration
	listTimeout     time.Duration
	pullTimeout     time.Duration
	log             zerolog.Logger
}

// New validates opts and builds a Client. No network call is made.
func New(opts Options) (*Client, error) {
	base, err := normalizeURL(opts.BaseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		api:             api.NewClient(base, newHTTPClient(opts.ConnectTimeout)),
		baseURL:         base.String(),
		defaultModel:    strings.TrimSpace(opts.DefaultModel),
		generateTimeout: orDefault(opts.GenerateTimeout, 15*time.Second),
		listTimeout:     orDefault(opts.ListTimeout, 10*time.Second),
		pullTimeout:     orDefault(opts.PullTimeout, 30*time.Second),
		log:             opts.Logger.With().Str("component", "inference").Logger(),
	}
	if c.defaultModel == "" {
		c.defaultModel = "llama3"
	}
	return c, nil
}

// BaseURL returns the normalized server address.
func (c *Client) BaseURL() string { return c.baseURL }

// DefaultModel returns the model used when a call names none.
func (c *Client) DefaultModel() string { return c.defaultModel }

func (c *Client) model(m string) string {
	if m = strings.TrimSpace(m); m != "" {
		return m
	}
	return c.defaultModel
}

// ListModels returns the models installed on the server. Backend metadata is
// passed through untouched.
func (c *Client) ListModels(ctx context.Context) (out []types.ModelDescriptor, err error) {
	defer func() { observe(opList, err) }()
	cctx, cancel := context.WithTimeout(ctx, c.listTimeout)
	defer cancel()
	cctx, rec := withCallRecord(cctx)

	resp, err := c.api.List(cctx)
	if err != nil {
		return nil, c.classify(ctx, opList, "", rec, err)
	}
	out = make([]types.ModelDescriptor, 0, len(resp.Models))
	for _, m := range resp.Models {
		d, err := describe(m)
		if err != nil {
			return nil, backendUnavailableError{op: opList, status: int(rec.status.Load()), msg: err.Error()}
		}
		out = append(out, d)
	}
	return out, nil
}

// Generate forwards a single prompt and returns the full completion.
func (c *Client) Generate(ctx context.Context, prompt, model string) (text string, err error) {
	defer func() { observe(opGenerate, err) }()
	return c.generate(ctx, opGenerate, &api.GenerateRequest{Model: c.model(model), Prompt: prompt})
}

// GenerateMultimodal forwards a prompt together with the file at path. The
// file is read before any network call; a read failure is an upload error.
// A 4xx from the server other than 404 is reported as an unsupported
// model/file pairing.
func (c *Client) GenerateMultimodal(ctx context.Context, prompt, model, path string) (text string, err error) {
	defer func() { observe(opMultimodal, err) }()
	data, err := staging.ReadFile(path)
	if err != nil {
		return "", err
	}
	return c.generate(ctx, opMultimodal, &api.GenerateRequest{
		Model:  c.model(model),
		Prompt: prompt,
		Images: []api.ImageData{data},
	})
}

func (c *Client) generate(ctx context.Context, op string, req *api.GenerateRequest) (string, error) {
	stream := false
	req.Stream = &stream
	cctx, cancel := context.WithTimeout(ctx, c.generateTimeout)
	defer cancel()
	cctx, rec := withCallRecord(cctx)

	start := time.Now()
	var b strings.Builder
	err := c.api.Generate(cctx, req, func(r api.GenerateResponse) error {
		b.WriteString(r.Response)
		return nil
	})
	if err == nil {
		err = rec.failure()
	}
	if err != nil {
		return "", c.classify(ctx, op, req.Model, rec, err)
	}
	c.log.Debug().Str("op", op).Str("model", req.Model).Dur("took", time.Since(start)).Int("chars", b.Len()).Msg("generation complete")
	return b.String(), nil
}

// DownloadModel pulls name onto the server and returns the final status
// reported by the pull (normally "success"). It is never retried.
func (c *Client) DownloadModel(ctx context.Context, name string) (status string, err error) {
	defer func() { observe(opPull, err) }()
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("model name is required")
	}
	stream := false
	cctx, cancel := context.WithTimeout(ctx, c.pullTimeout)
	defer cancel()
	cctx, rec := withCallRecord(cctx)

	err = c.api.Pull(cctx, &api.PullRequest{Model: name, Stream: &stream}, func(p api.ProgressResponse) error {
		status = p.Status
		return nil
	})
	if err == nil {
		err = rec.failure()
	}
	if err != nil {
		return "", c.classify(ctx, opPull, name, rec, err)
	}
	if status != "success" {
		err = backendUnavailableError{op: opPull, status: int(rec.status.Load()), msg: fmt.Sprintf("pull ended with status %q", status)}
		c.log.Warn().Str("model", name).Str("status", status).Msg("model pull incomplete")
		return "", err
	}
	c.log.Info().Str("model", name).Str("status", status).Msg("model pulled")
	return status, nil
}

// Ping checks that the server answers its heartbeat.
func (c *Client) Ping(ctx context.Context) (err error) {
	defer func() { observe(opPing, err) }()
	cctx, cancel := context.WithTimeout(ctx, c.listTimeout)
	defer cancel()
	cctx, rec := withCallRecord(cctx)
	if err := c.api.Heartbeat(cctx); err != nil {
		return c.classify(ctx, opPing, "", rec, err)
	}
	return nil
}

// classify maps a failed call onto the error taxonomy. When the caller's own
// context ended, its error is returned unchanged.
func (c *Client) classify(parent context.Context, op, model string, rec *callRecord, err error) error {
	if perr := parent.Err(); perr != nil {
		return perr
	}
	status := int(rec.status.Load())
	var se api.StatusError
	if errors.As(err, &se) && se.StatusCode != 0 {
		status = se.StatusCode
	}
	msg := strings.TrimSpace(err.Error())
	if errors.As(err, &se) && se.ErrorMessage != "" {
		msg = se.ErrorMessage
	}

	var out error
	switch {
	case status == http.StatusNotFound && model != "":
		out = backendUnavailableError{op: op, status: status, msg: "model not found on the inference server: " + model}
	case status >= 400 && status < 500 && op == opMultimodal:
		out = unsupportedModelError{model: model, status: status, msg: msg}
	case status >= 400:
		out = backendUnavailableError{op: op, status: status, msg: msg}
	case errors.Is(err, context.DeadlineExceeded):
		out = backendUnavailableError{op: op, unreachable: true, msg: "timed out"}
	case status == 0:
		out = backendUnavailableError{op: op, unreachable: true, msg: msg}
	default:
		out = backendUnavailableError{op: op, status: status, msg: msg}
	}
	c.log.Warn().Err(err).Str("op", op).Str("model", model).Int("upstream_status", status).Msg("inference call failed")
	return out
}

// describe turns a list entry into a descriptor, keeping every field the
// server reported.
func describe(m api.ListModelResponse) (types.ModelDescriptor, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return types.ModelDescriptor{}, err
	}
	var meta map[string]any
	if err := json.Unmarshal(b, &meta); err != nil {
		return types.ModelDescriptor{}, err
	}
	name := m.Name
	if name == "" {
		name = m.Model
	}
	delete(meta, "name")
	return types.ModelDescriptor{Name: name, Metadata: meta}, nil
}

// normalizeURL accepts "host:port" as well as full URLs.
func normalizeURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("inference server url is required")
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid inference server url %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported inference server scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("inference server url %q has no host", raw)
	}
	return u, nil
}

func orDefault(d, def time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return def
}
