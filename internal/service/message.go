package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/smilecare-ai/reservation-assistant/internal/model"
)

// ErrEmptyMessage is returned for user messages with no text.
var ErrEmptyMessage = errors.New("message content is required")

// ErrEventsDisabled is returned when no event log is configured.
var ErrEventsDisabled = errors.New("turn event log is not configured")

const publishTimeout = 2 * time.Second

// SendMessage runs one user turn on the session. Turns on the same session
// never overlap: a second caller gets session.ErrBusy. The transcript is
// saved even when the turn fails, and the response then carries the
// fallback reply with its error code.
func (s *ConversationService) SendMessage(ctx context.Context, sessionID string, req *model.SendMessageRequest, observers ...TurnObserver) (*model.SendMessageResponse, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, ErrEmptyMessage
	}

	unlock, err := s.store.Lock(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	rec, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	opts := make([]TurnOption, 0, len(observers)+1)
	if s.events != nil {
		opts = append(opts, WithObserver(s.publish(ctx)))
	}
	for _, o := range observers {
		opts = append(opts, WithObserver(o))
	}

	reply, turnErr := s.assistant.HandleUserTurn(ctx, content, rec.Transcript, opts...)

	rec.Session.Turns++
	rec.Session.UpdatedAt = time.Now()
	if err := s.store.Save(context.WithoutCancel(ctx), rec); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	resp := &model.SendMessageResponse{SessionID: sessionID, Reply: reply}
	if turnErr != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		resp.Reply = FallbackReply(turnErr)
		resp.Error = ErrorCode(turnErr)
	}
	return resp, nil
}

// Events returns the audit events recorded for a session.
func (s *ConversationService) Events(ctx context.Context, sessionID string, limit int) (*model.TurnEventsResponse, error) {
	if s.events == nil {
		return nil, ErrEventsDisabled
	}
	events, err := s.events.SessionEvents(ctx, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}
	return &model.TurnEventsResponse{SessionID: sessionID, Events: events}, nil
}

// publish forwards turn events to the event log. Failures are logged and
// never fail the turn.
func (s *ConversationService) publish(ctx context.Context) TurnObserver {
	base := context.WithoutCancel(ctx)
	return func(ev model.TurnEvent) {
		pubCtx, cancel := context.WithTimeout(base, publishTimeout)
		defer cancel()
		if _, err := s.events.PublishEvent(pubCtx, &ev); err != nil {
			s.logger.Warn("Failed to publish turn event",
				zap.String("session_id", ev.SessionID),
				zap.String("type", string(ev.Type)),
				zap.Error(err),
			)
		}
	}
}
