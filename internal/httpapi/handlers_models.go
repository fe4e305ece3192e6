package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"llmgate/pkg/types"
)

// handleModels godoc
// @Summary      List models
// @Description  Models installed on the inference server; backend metadata is passed through.
// @Tags         models
// @Produce      json
// @Success      200  {object}  types.ModelsResponse
// @Failure      500  {object}  types.ErrorResponse
// @Failure      503  {object}  types.ErrorResponse
// @Router       /models [get]
func (s *server) handleModels(w http.ResponseWriter, r *http.Request) {
	l := startLog(r, "models", "")
	ctx, cancel := workContext(r)
	defer cancel()
	models, err := s.Backend.ListModels(ctx)
	if err != nil {
		fail(w, r, l, err)
		return
	}
	if models == nil {
		models = []types.ModelDescriptor{}
	}
	writeJSON(w, http.StatusOK, types.ModelsResponse{Models: models})
	l.end(http.StatusOK, nil)
}

// handleCapabilities godoc
// @Summary      Model capabilities
// @Description  Default model and the multimodal allow-list.
// @Tags         models
// @Produce      json
// @Success      200  {object}  types.CapabilitiesResponse
// @Router       /models/capabilities [get]
func (s *server) handleCapabilities(w http.ResponseWriter, r *http.Request) {
	mm := s.Capabilities.Multimodal()
	if mm == nil {
		mm = []string{}
	}
	writeJSON(w, http.StatusOK, types.CapabilitiesResponse{
		DefaultModel:     s.Capabilities.DefaultModel(),
		MultimodalModels: mm,
		StrictMultimodal: s.Capabilities.Strict(),
	})
}

// handleDownload godoc
// @Summary      Download a model
// @Description  Pulls a model onto the inference server. Long-running; not retried.
// @Tags         models
// @Accept       json
// @Produce      json
// @Param        request  body      types.DownloadRequest  true  "Model to pull"
// @Success      200      {object}  types.MessageResponse
// @Failure      400      {object}  types.ErrorResponse
// @Failure      500      {object}  types.ErrorResponse
// @Router       /models/download [post]
func (s *server) handleDownload(w http.ResponseWriter, r *http.Request) {
	var req types.DownloadRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	name := strings.TrimSpace(req.ModelName)
	if name == "" {
		writeJSONError(w, http.StatusBadRequest, "model_name is required")
		return
	}
	l := startLog(r, "download", name)
	ctx, cancel := workContext(r)
	defer cancel()
	if _, err := s.Backend.DownloadModel(ctx, name); err != nil {
		fail(w, r, l, err)
		return
	}
	writeJSON(w, http.StatusOK, types.MessageResponse{Message: fmt.Sprintf("Model '%s' downloaded successfully", name)})
	l.end(http.StatusOK, nil)
}
