package session

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smilecare-ai/reservation-assistant/internal/model"
)

func newRecord(id string) *model.SessionRecord {
	tr := model.NewTranscript(id)
	tr.SetSystemPrompt("rules")
	return &model.SessionRecord{
		Session:    model.Session{ID: id, CreatedAt: time.Now().UTC()},
		Transcript: tr,
	}
}

// exerciseStore runs the behaviour every Store must share.
func exerciseStore(t *testing.T, store Store) {
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, newRecord("s1")))

	rec, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Transcript.Len())

	rec.Transcript.Append(model.UserMessage("hello"))
	rec.Session.Turns = 1

	stale, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, stale.Transcript.Len(), "Get must return a copy")

	require.NoError(t, store.Save(ctx, rec))
	rec, err = store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, rec.Transcript.Len())
	assert.Equal(t, 1, rec.Session.Turns)
	last, _ := rec.Transcript.Last()
	assert.Equal(t, "hello", last.Text())

	unlock, err := store.Lock(ctx, "s1")
	require.NoError(t, err)
	_, err = store.Lock(ctx, "s1")
	assert.ErrorIs(t, err, ErrBusy)
	unlock()
	unlock()
	unlock2, err := store.Lock(ctx, "s1")
	require.NoError(t, err)
	unlock2()

	_, err = store.Lock(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.Save(ctx, newRecord("missing")), ErrNotFound)

	require.NoError(t, store.Delete(ctx, "s1"))
	_, err = store.Get(ctx, "s1")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.ErrorIs(t, store.Delete(ctx, "s1"), ErrNotFound)

	assert.NoError(t, store.Ping(ctx))
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore(time.Hour))
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	now := time.Date(2026, 2, 13, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Create(context.Background(), newRecord("s1")))
	now = now.Add(30 * time.Second)
	_, err := store.Get(context.Background(), "s1")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = store.Get(context.Background(), "s1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, time.Hour), mr
}

func TestRedisStore(t *testing.T) {
	store, _ := newRedisStore(t)
	exerciseStore(t, store)
}

func TestRedisStoreTTL(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, newRecord("s1")))
	assert.Equal(t, time.Hour, mr.TTL("session:s1"))
	assert.Error(t, store.Create(ctx, newRecord("s1")))

	mr.FastForward(2 * time.Hour)
	_, err := store.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreLockExpires(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, newRecord("s1")))

	_, err := store.Lock(ctx, "s1")
	require.NoError(t, err)

	mr.FastForward(DefaultLockTTL + time.Second)
	unlock, err := store.Lock(ctx, "s1")
	require.NoError(t, err)
	defer unlock()
}

func TestRedisStoreStaleUnlockKeepsNewOwner(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, newRecord("s1")))

	staleUnlock, err := store.Lock(ctx, "s1")
	require.NoError(t, err)
	mr.FastForward(DefaultLockTTL + time.Second)

	_, err = store.Lock(ctx, "s1")
	require.NoError(t, err)

	staleUnlock()
	_, err = store.Lock(ctx, "s1")
	assert.ErrorIs(t, err, ErrBusy)
}
