package session

import (
	"context"
	"sync"
	"time"

	"github.com/smilecare-ai/reservation-assistant/internal/model"
)

type memoryEntry struct {
	rec       *model.SessionRecord
	expiresAt time.Time
	locked    bool
}

// MemoryStore keeps sessions in process memory. Expired sessions are
// dropped on access.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]*memoryEntry
	now     func() time.Time
}

// NewMemoryStore creates an in-memory store. A zero ttl disables expiry.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		entries: make(map[string]*memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) expiry() time.Time {
	if s.ttl <= 0 {
		return time.Time{}
	}
	return s.now().Add(s.ttl)
}

// live returns the entry for id, evicting it when expired. Caller holds mu.
func (s *MemoryStore) live(id string) (*memoryEntry, bool) {
	e, ok := s.entries[id]
	if !ok {
		return nil, false
	}
	if !e.expiresAt.IsZero() && s.now().After(e.expiresAt) {
		delete(s.entries, id)
		return nil, false
	}
	return e, true
}

// Create stores a new session.
func (s *MemoryStore) Create(_ context.Context, rec *model.SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[rec.Session.ID] = &memoryEntry{rec: cloneRecord(rec), expiresAt: s.expiry()}
	return nil
}

// Get returns a copy of the session.
func (s *MemoryStore) Get(_ context.Context, id string) (*model.SessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(id)
	if !ok {
		return nil, ErrNotFound
	}
	return cloneRecord(e.rec), nil
}

// Save replaces the session and refreshes its expiry.
func (s *MemoryStore) Save(_ context.Context, rec *model.SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(rec.Session.ID)
	if !ok {
		return ErrNotFound
	}
	e.rec = cloneRecord(rec)
	e.expiresAt = s.expiry()
	return nil
}

// Delete removes the session.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.live(id); !ok {
		return ErrNotFound
	}
	delete(s.entries, id)
	return nil
}

// Lock claims the session for one turn.
func (s *MemoryStore) Lock(_ context.Context, id string) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(id)
	if !ok {
		return nil, ErrNotFound
	}
	if e.locked {
		return nil, ErrBusy
	}
	e.locked = true

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if cur, ok := s.entries[id]; ok && cur == e {
				cur.locked = false
			}
		})
	}, nil
}

// Ping always succeeds.
func (s *MemoryStore) Ping(context.Context) error {
	return nil
}
