package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/smilecare-ai/reservation-assistant/internal/model"
	"github.com/smilecare-ai/reservation-assistant/internal/service"
	"github.com/smilecare-ai/reservation-assistant/pkg/logger"
	"github.com/smilecare-ai/reservation-assistant/pkg/metrics"
)

// StreamHandler handles SSE streaming endpoints.
type StreamHandler struct {
	service *service.ConversationService
	logger  *logger.Logger
}

// NewStreamHandler creates a new stream handler.
func NewStreamHandler(svc *service.ConversationService, log *logger.Logger) *StreamHandler {
	return &StreamHandler{
		service: svc,
		logger:  log,
	}
}

// StreamWithMessage handles POST /api/v1/sessions/:id/stream
// It runs one user turn and streams tool progress followed by the reply.
func (h *StreamHandler) StreamWithMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID, req, ok := decodeMessage(w, r)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	metrics.IncrementSSEConnections()
	defer metrics.DecrementSSEConnections()

	started := false
	start := func() {
		if started {
			return
		}
		started = true
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)
		sendSSEEvent(w, flusher, "connected", map[string]string{"session_id": sessionID})
	}

	// Reply and error events are sent from the response below so each turn
	// ends with exactly one of them.
	progress := func(ev model.TurnEvent) {
		if ev.Type != model.TurnEventToolCall && ev.Type != model.TurnEventToolResult {
			return
		}
		start()
		if err := sendSSEEvent(w, flusher, string(ev.Type), ev); err != nil {
			h.logger.Debug("SSE write failed", zap.String("session_id", sessionID), zap.Error(err))
		}
	}

	resp, err := h.service.SendMessage(ctx, sessionID, req, progress)
	if err != nil {
		if !started {
			if !writeServiceError(w, err) {
				h.logger.Error("failed to handle message", zap.String("session_id", sessionID), zap.Error(err))
				writeError(w, http.StatusInternalServerError, service.UnexpectedFallback)
			}
			return
		}
		sendSSEEvent(w, flusher, "error", &model.ErrorEvent{
			Code:    service.ErrorCode(err),
			Message: service.FallbackReply(err),
		})
		return
	}

	start()
	if resp.Error != "" {
		sendSSEEvent(w, flusher, "error", &model.ErrorEvent{Code: resp.Error, Message: resp.Reply})
	} else {
		sendSSEEvent(w, flusher, "reply", resp)
	}
	sendSSEEvent(w, flusher, "done", map[string]bool{"success": resp.Error == ""})
}

func sendSSEEvent(w http.ResponseWriter, flusher http.Flusher, event string, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, jsonData); err != nil {
		return err
	}
	flusher.Flush()

	return nil
}
