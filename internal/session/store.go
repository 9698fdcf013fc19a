// Package session keeps one transcript per live conversation for the
// lifetime of that conversation.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/smilecare-ai/reservation-assistant/internal/config"
	"github.com/smilecare-ai/reservation-assistant/internal/model"
)

var (
	// ErrNotFound is returned for unknown or expired sessions.
	ErrNotFound = errors.New("session not found")
	// ErrBusy is returned when a turn is already running for the session.
	ErrBusy = errors.New("session is busy")
)

// DefaultLockTTL bounds how long a crashed turn can hold a session.
const DefaultLockTTL = 2 * time.Minute

// Store persists session records. Get returns a copy; callers write changes
// back with Save while holding the session lock.
type Store interface {
	Create(ctx context.Context, rec *model.SessionRecord) error
	Get(ctx context.Context, id string) (*model.SessionRecord, error)
	Save(ctx context.Context, rec *model.SessionRecord) error
	Delete(ctx context.Context, id string) error
	// Lock claims the session for one turn. It fails with ErrBusy when
	// another turn holds it.
	Lock(ctx context.Context, id string) (unlock func(), err error)
	Ping(ctx context.Context) error
}

// New builds the store selected by SESSION_STORE.
func New(cfg *config.Config) (Store, error) {
	switch cfg.SessionStore {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		return NewRedisStore(client, cfg.SessionTTL), nil
	case "memory", "":
		return NewMemoryStore(cfg.SessionTTL), nil
	default:
		return nil, fmt.Errorf("unknown session store %q", cfg.SessionStore)
	}
}

func cloneRecord(rec *model.SessionRecord) *model.SessionRecord {
	out := &model.SessionRecord{Session: rec.Session}
	if rec.Transcript != nil {
		out.Transcript = rec.Transcript.Clone()
	} else {
		out.Transcript = model.NewTranscript(rec.Session.ID)
	}
	return out
}
