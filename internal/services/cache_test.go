package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventmanagement/internal/domain"
)

// testLogger is a no-op logger so service tests don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// fakeCacheStore implements domain.CacheStore in memory, with error
// injection and a record of evictions.
type fakeCacheStore struct {
	mu       sync.Mutex
	data     map[string]string
	ttls     map[string]time.Duration
	getErr   error
	setErr   error
	delErr   error
	deleted  []string
	patterns []string
}

func newFakeCacheStore() *fakeCacheStore {
	return &fakeCacheStore{
		data: make(map[string]string),
		ttls: make(map[string]time.Duration),
	}
}

func (f *fakeCacheStore) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return "", f.getErr
	}
	v, ok := f.data[key]
	if !ok {
		return "", domain.ErrCacheMiss
	}
	return v, nil
}

func (f *fakeCacheStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.data[key] = value
	f.ttls[key] = ttl
	return nil
}

func (f *fakeCacheStore) Delete(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.delErr != nil {
		return f.delErr
	}
	for _, k := range keys {
		delete(f.data, k)
		f.deleted = append(f.deleted, k)
	}
	return nil
}

func (f *fakeCacheStore) DeletePattern(_ context.Context, pattern string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.delErr != nil {
		return f.delErr
	}
	f.patterns = append(f.patterns, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for k := range f.data {
		if strings.HasPrefix(k, prefix) {
			delete(f.data, k)
		}
	}
	return nil
}

func (f *fakeCacheStore) deletedKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

func (f *fakeCacheStore) deletedPatterns() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.patterns...)
}

func TestCacheCoordinator_nil_store_is_disabled(t *testing.T) {
	ctx := context.Background()
	c := NewCacheCoordinator(nil, testLogger)

	view := &domain.EventView{Event: &domain.Event{ID: "event-1"}, HostName: "Alice"}
	c.SetEventView(ctx, view)
	_, ok := c.GetEventView(ctx, "event-1")
	assert.False(t, ok)

	// Invalidation must also be a no-op, not a panic.
	c.InvalidateEventUpdate(ctx, "event-1")
	c.InvalidateEventDelete(ctx, "event-1")
	c.InvalidateAttendance(ctx, "event-1", "user-1")
}

func TestCacheCoordinator_event_view_roundtrip(t *testing.T) {
	ctx := context.Background()
	store := newFakeCacheStore()
	c := NewCacheCoordinator(store, testLogger)

	view := &domain.EventView{
		Event:         &domain.Event{ID: "event-1", Title: "Launch", HostID: "host-1"},
		HostName:      "Alice",
		AttendeeCount: 3,
	}
	c.SetEventView(ctx, view)

	got, ok := c.GetEventView(ctx, "event-1")
	require.True(t, ok)
	assert.Equal(t, "Launch", got.Event.Title)
	assert.Equal(t, "Alice", got.HostName)
	assert.Equal(t, 3, got.AttendeeCount)
	assert.Equal(t, 5*time.Minute, store.ttls["event:event-1"])
}

func TestCacheCoordinator_listing_roundtrip(t *testing.T) {
	ctx := context.Background()
	store := newFakeCacheStore()
	c := NewCacheCoordinator(store, testLogger)

	params := domain.PaginationParams{Page: 2, PageSize: 10}
	views := []*domain.EventView{{Event: &domain.Event{ID: "event-1"}}}
	c.SetUpcoming(ctx, params, views, 21)

	got, total, ok := c.GetUpcoming(ctx, params)
	require.True(t, ok)
	assert.Len(t, got, 1)
	assert.Equal(t, 21, total)
	assert.Equal(t, 2*time.Minute, store.ttls["events:upcoming:p2:s10"])

	// A different page is a different key.
	_, _, ok = c.GetUpcoming(ctx, domain.PaginationParams{Page: 3, PageSize: 10})
	assert.False(t, ok)
}

func TestCacheCoordinator_get_error_falls_through(t *testing.T) {
	ctx := context.Background()
	store := newFakeCacheStore()
	store.getErr = errors.New("connection refused")
	c := NewCacheCoordinator(store, testLogger)

	_, ok := c.GetEventView(ctx, "event-1")
	assert.False(t, ok)
	_, ok = c.GetUser(ctx, "user-1")
	assert.False(t, ok)
	_, ok = c.GetAttendeeCount(ctx, "event-1")
	assert.False(t, ok)
}

func TestCacheCoordinator_undecodable_entry_evicted(t *testing.T) {
	ctx := context.Background()
	store := newFakeCacheStore()
	store.data["event:event-1"] = "{not json"
	c := NewCacheCoordinator(store, testLogger)

	_, ok := c.GetEventView(ctx, "event-1")
	assert.False(t, ok)
	assert.Contains(t, store.deletedKeys(), "event:event-1")
}

func TestCacheCoordinator_InvalidateEventUpdate(t *testing.T) {
	ctx := context.Background()
	store := newFakeCacheStore()
	c := NewCacheCoordinator(store, testLogger)

	c.InvalidateEventUpdate(ctx, "event-1")

	assert.Contains(t, store.deletedKeys(), "event:event-1")
	assert.ElementsMatch(t, []string{"events:upcoming:*", "events:user:*"}, store.deletedPatterns())
}

func TestCacheCoordinator_InvalidateEventDelete(t *testing.T) {
	ctx := context.Background()
	store := newFakeCacheStore()
	c := NewCacheCoordinator(store, testLogger)

	c.InvalidateEventDelete(ctx, "event-1")

	deleted := store.deletedKeys()
	assert.Contains(t, deleted, "event:event-1")
	assert.Contains(t, deleted, "attendance:count:event-1")
	assert.ElementsMatch(t, []string{"events:upcoming:*", "events:user:*"}, store.deletedPatterns())
}

func TestCacheCoordinator_InvalidateAttendance(t *testing.T) {
	ctx := context.Background()
	store := newFakeCacheStore()
	c := NewCacheCoordinator(store, testLogger)

	c.InvalidateAttendance(ctx, "event-1", "user-1")

	assert.ElementsMatch(t, []string{
		"attendance:count:event-1",
		"event:event-1",
		"events:user:user-1:attending",
	}, store.deletedKeys())
	assert.Empty(t, store.deletedPatterns())
}

func TestCacheCoordinator_user_roundtrip(t *testing.T) {
	ctx := context.Background()
	store := newFakeCacheStore()
	c := NewCacheCoordinator(store, testLogger)

	c.SetUser(ctx, &domain.User{ID: "user-1", Name: "Alice", Email: "a@example.com", PasswordHash: "hash", Salt: "salt"})

	got, ok := c.GetUser(ctx, "user-1")
	require.True(t, ok)
	assert.Equal(t, "Alice", got.Name)
	// Credentials are json:"-" and must never reach the cache backend.
	assert.Empty(t, got.PasswordHash)
	assert.Empty(t, got.Salt)
	assert.NotContains(t, store.data["user:user-1"], "hash")
}
