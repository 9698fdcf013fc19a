// Package service runs reservation conversations: session lifecycle, user
// turns and the tool-calling loop behind them.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/smilecare-ai/reservation-assistant/internal/model"
	"github.com/smilecare-ai/reservation-assistant/internal/session"
	"github.com/smilecare-ai/reservation-assistant/pkg/logger"
	"github.com/smilecare-ai/reservation-assistant/pkg/metrics"
)

// EventLog persists turn events outside the session store.
type EventLog interface {
	PublishEvent(ctx context.Context, event *model.TurnEvent) (uint64, error)
	SessionEvents(ctx context.Context, sessionID string, limit int) ([]model.TurnEvent, error)
}

// ConversationService handles session operations.
type ConversationService struct {
	store     session.Store
	assistant *Assistant
	events    EventLog
	logger    *logger.Logger
}

// NewConversationService creates a new conversation service. events may be
// nil, in which case turn events are only delivered to per-call observers.
func NewConversationService(store session.Store, assistant *Assistant, events EventLog, log *logger.Logger) *ConversationService {
	if log == nil {
		log = logger.Global()
	}
	return &ConversationService{
		store:     store,
		assistant: assistant,
		events:    events,
		logger:    log,
	}
}

// Create starts a new session with an empty transcript.
func (s *ConversationService) Create(ctx context.Context) (*model.Session, error) {
	now := time.Now()
	sess := model.Session{
		ID:        uuid.Must(uuid.NewV7()).String(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	rec := &model.SessionRecord{Session: sess, Transcript: model.NewTranscript(sess.ID)}
	if err := s.store.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	metrics.SessionsActive.Inc()
	s.logger.Info("Session created", zap.String("session_id", sess.ID))
	return &sess, nil
}

// Get returns the session and its full transcript.
func (s *ConversationService) Get(ctx context.Context, sessionID string) (*model.TranscriptResponse, error) {
	rec, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &model.TranscriptResponse{
		Session:  rec.Session,
		Messages: rec.Transcript.Messages(),
	}, nil
}

// Delete ends a session and discards its transcript.
func (s *ConversationService) Delete(ctx context.Context, sessionID string) error {
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return err
	}

	metrics.SessionsActive.Dec()
	s.logger.Info("Session deleted", zap.String("session_id", sessionID))
	return nil
}

// Ping checks the session store.
func (s *ConversationService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
