package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/smilecare-ai/reservation-assistant/internal/middleware"
	"github.com/smilecare-ai/reservation-assistant/internal/model"
	"github.com/smilecare-ai/reservation-assistant/internal/service"
	"github.com/smilecare-ai/reservation-assistant/pkg/logger"
)

// maxBodyBytes bounds request bodies carrying one user message.
const maxBodyBytes = 64 << 10

// MessageHandler handles message endpoints.
type MessageHandler struct {
	service *service.ConversationService
	logger  *logger.Logger
}

// NewMessageHandler creates a new message handler.
func NewMessageHandler(svc *service.ConversationService, log *logger.Logger) *MessageHandler {
	return &MessageHandler{
		service: svc,
		logger:  log,
	}
}

// Send handles POST /api/v1/sessions/:id/messages
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	sessionID, req, ok := decodeMessage(w, r)
	if !ok {
		return
	}

	resp, err := h.service.SendMessage(r.Context(), sessionID, req)
	if err != nil {
		if !writeServiceError(w, err) {
			h.logger.Error("failed to handle message", zap.String("session_id", sessionID), zap.Error(err))
			writeError(w, http.StatusInternalServerError, service.UnexpectedFallback)
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func decodeMessage(w http.ResponseWriter, r *http.Request) (string, *model.SendMessageRequest, bool) {
	sessionID := chi.URLParam(r, "id")
	if err := middleware.ValidateSessionID(sessionID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return "", nil, false
	}

	var req model.SendMessageRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return "", nil, false
	}

	if err := middleware.ValidateMessageContent(req.Content); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return "", nil, false
	}
	return sessionID, &req, true
}
