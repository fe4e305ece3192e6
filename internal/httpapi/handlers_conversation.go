package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"llmgate/pkg/types"
)

// handleStartConversation godoc
// @Summary      Start a conversation
// @Tags         conversation
// @Accept       json
// @Produce      json
// @Param        request  body      types.StartConversationRequest  true  "Conversation id"
// @Success      200      {object}  types.MessageResponse
// @Failure      400      {object}  types.ErrorResponse
// @Router       /conversation/start [post]
func (s *server) handleStartConversation(w http.ResponseWriter, r *http.Request) {
	var req types.StartConversationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	l := startLog(r, "conversation-start", "")
	if err := s.Conversations.Start(r.Context(), req.ConvID); err != nil {
		fail(w, r, l, err)
		return
	}
	writeJSON(w, http.StatusOK, types.MessageResponse{Message: fmt.Sprintf("Conversation '%s' started", req.ConvID)})
	l.end(http.StatusOK, nil)
}

// handleConversationMessage godoc
// @Summary      Send a message in a conversation
// @Description  Records the prompt, forwards it alone to the model and records the reply. A failed generation keeps the user turn.
// @Tags         conversation
// @Accept       json
// @Produce      json
// @Param        id       path      string                 true  "Conversation id"
// @Param        request  body      types.GenerateRequest  true  "Prompt and optional model"
// @Success      200      {object}  types.GenerateResponse
// @Failure      400      {object}  types.ErrorResponse
// @Failure      404      {object}  types.ErrorResponse
// @Failure      500      {object}  types.ErrorResponse
// @Router       /conversation/{id}/message [post]
func (s *server) handleConversationMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req types.GenerateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeJSONError(w, http.StatusBadRequest, "prompt is required")
		return
	}
	model := s.Capabilities.Resolve(req.Model)
	l := startLog(r, "conversation-message", model)
	ctx, cancel := workContext(r)
	defer cancel()
	text, err := s.Conversations.AppendAndGenerate(ctx, id, req.Prompt, model)
	if err != nil {
		fail(w, r, l, err)
		return
	}
	writeJSON(w, http.StatusOK, types.GenerateResponse{GeneratedText: text})
	l.end(http.StatusOK, nil)
}

// handleConversationHistory godoc
// @Summary      Conversation history
// @Tags         conversation
// @Produce      json
// @Param        id   path      string  true  "Conversation id"
// @Success      200  {object}  types.ConversationResponse
// @Failure      404  {object}  types.ErrorResponse
// @Router       /conversation/{id} [get]
func (s *server) handleConversationHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	l := startLog(r, "conversation-history", "")
	msgs, err := s.Conversations.History(r.Context(), id)
	if err != nil {
		fail(w, r, l, err)
		return
	}
	writeJSON(w, http.StatusOK, types.ConversationResponse{ID: id, Messages: msgs})
	l.end(http.StatusOK, nil)
}
