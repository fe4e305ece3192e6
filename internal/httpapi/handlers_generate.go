package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"llmgate/internal/inference"
	"llmgate/internal/staging"
	"llmgate/pkg/types"
)

// multipartMemory is how much of a multipart form is held in memory before
// net/http spills file parts to disk.
const multipartMemory = 8 << 20

// handleGenerate godoc
// @Summary      Generate text
// @Description  Forwards a single prompt to the inference server.
// @Tags         generate
// @Accept       json
// @Produce      json
// @Param        request  body      types.GenerateRequest  true  "Prompt and optional model"
// @Success      200      {object}  types.GenerateResponse
// @Failure      400      {object}  types.ErrorResponse
// @Failure      415      {object}  types.ErrorResponse
// @Failure      500      {object}  types.ErrorResponse
// @Failure      503      {object}  types.ErrorResponse
// @Router       /generate [post]
func (s *server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req types.GenerateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s.forwardGenerate(w, r, "generate", req)
}

// handleGenerateDebug godoc
// @Summary      Generate text from a raw body
// @Description  Like /generate but parses the body as JSON regardless of Content-Type and logs it.
// @Tags         generate
// @Accept       plain
// @Produce      json
// @Param        request  body      types.GenerateRequest  true  "Prompt and optional model"
// @Success      200      {object}  types.GenerateResponse
// @Failure      400      {object}  types.ErrorResponse
// @Router       /generate-debug [post]
func (s *server) handleGenerateDebug(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "could not read body: "+err.Error())
		return
	}
	if requestLogLevel(r) >= LevelDebug {
		zlog.Debug().
			Str("path", r.URL.Path).
			Str("content_type", r.Header.Get("Content-Type")).
			Int("bytes", len(raw)).
			Str("body", truncate(string(raw), 2048)).
			Msg("generate-debug raw body")
	}
	var req types.GenerateRequest
	if err := json.NewDecoder(bytes.NewReader(raw)).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}
	s.forwardGenerate(w, r, "generate-debug", req)
}

func (s *server) forwardGenerate(w http.ResponseWriter, r *http.Request, op string, req types.GenerateRequest) {
	if strings.TrimSpace(req.Prompt) == "" {
		writeJSONError(w, http.StatusBadRequest, "prompt is required")
		return
	}
	model := s.Capabilities.Resolve(req.Model)
	l := startLog(r, op, model)
	ctx, cancel := workContext(r)
	defer cancel()

	text, err := s.Backend.Generate(ctx, req.Prompt, model)
	if err != nil {
		fail(w, r, l, err)
		return
	}
	writeJSON(w, http.StatusOK, types.GenerateResponse{GeneratedText: text})
	l.end(http.StatusOK, nil)
}

// handleGenerateMultimodal godoc
// @Summary      Generate text from a prompt and a file
// @Description  Stages the uploaded file for the duration of the call and forwards it with the prompt.
// @Tags         generate
// @Accept       multipart/form-data
// @Produce      json
// @Param        prompt  formData  string  true   "Prompt"
// @Param        model   formData  string  false  "Model (defaults to the configured default)"
// @Param        file    formData  file    true   "File to attach"
// @Success      200     {object}  types.GenerateResponse
// @Failure      400     {object}  types.ErrorResponse
// @Failure      422     {object}  types.ErrorResponse
// @Failure      500     {object}  types.ErrorResponse
// @Router       /generate/multimodal [post]
func (s *server) handleGenerateMultimodal(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+multipartOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeError(w, staging.ErrUpload("upload too large", nil))
			return
		}
		writeError(w, staging.ErrUpload("invalid multipart form", err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	prompt := r.FormValue("prompt")
	if strings.TrimSpace(prompt) == "" {
		writeJSONError(w, http.StatusBadRequest, "prompt is required")
		return
	}
	model := s.Capabilities.Resolve(r.FormValue("model"))
	l := startLog(r, "generate-multimodal", model)
	if s.Capabilities.Strict() && !s.Capabilities.SupportsFiles(model) {
		fail(w, r, l, inference.ErrUnsupportedModel(model))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		fail(w, r, l, staging.ErrUpload("no file uploaded", err))
		return
	}
	defer file.Close()

	ctx, cancel := workContext(r)
	defer cancel()
	var text string
	err = s.Uploads.Do(ctx, staging.Upload{Filename: header.Filename, Body: file}, func(ctx context.Context, path string) error {
		var gerr error
		text, gerr = s.Backend.GenerateMultimodal(ctx, prompt, model, path)
		return gerr
	})
	if err != nil {
		fail(w, r, l, err)
		return
	}
	writeJSON(w, http.StatusOK, types.GenerateResponse{GeneratedText: text})
	l.end(http.StatusOK, nil)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
