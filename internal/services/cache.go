package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"eventmanagement/internal/domain"
)

// Cache region TTLs. Reads within the TTL may serve a value as stale as the
// last invalidation; writes invalidate synchronously so staleness never
// survives a mutation.
const (
	ttlEventDetail   = 5 * time.Minute
	ttlUpcoming      = 2 * time.Minute
	ttlUserListings  = 5 * time.Minute
	ttlAttendeeCount = 1 * time.Minute
	ttlIdentity      = 10 * time.Minute
)

// Cache key builders. Listing keys embed pagination, so listing regions are
// invalidated by pattern rather than by key.
func eventKey(eventID string) string {
	return "event:" + eventID
}

func upcomingKey(p domain.PaginationParams) string {
	return fmt.Sprintf("events:upcoming:p%d:s%d", p.Page, p.PageSize)
}

func hostingKey(userID string, p domain.PaginationParams) string {
	return fmt.Sprintf("events:user:%s:hosting:p%d:s%d", userID, p.Page, p.PageSize)
}

func attendingKey(userID string) string {
	return "events:user:" + userID + ":attending"
}

func attendeeCountKey(eventID string) string {
	return "attendance:count:" + eventID
}

func userKey(userID string) string {
	return "user:" + userID
}

const (
	upcomingPattern     = "events:upcoming:*"
	userListingsPattern = "events:user:*"
)

// CacheCoordinator maps read operations to cache regions and performs
// invalidation on writes. The cache is an optimization, never a dependency
// for correctness: every backend error is logged and swallowed, and a nil
// store disables caching entirely.
type CacheCoordinator struct {
	store  domain.CacheStore
	logger *slog.Logger
}

func NewCacheCoordinator(store domain.CacheStore, logger *slog.Logger) *CacheCoordinator {
	return &CacheCoordinator{store: store, logger: logger}
}

// getJSON loads and decodes the value at key into dest. Returns false on
// miss, decode failure, or backend error.
func (c *CacheCoordinator) getJSON(ctx context.Context, key string, dest any) bool {
	if c.store == nil {
		return false
	}
	raw, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			c.logger.Warn("cache get failed", "key", key, "err", err)
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		c.logger.Warn("cache entry undecodable, evicting", "key", key, "err", err)
		c.evict(ctx, key)
		return false
	}
	return true
}

func (c *CacheCoordinator) setJSON(ctx context.Context, key string, val any, ttl time.Duration) {
	if c.store == nil {
		return
	}
	raw, err := json.Marshal(val)
	if err != nil {
		c.logger.Warn("cache marshal failed", "key", key, "err", err)
		return
	}
	if err := c.store.Set(ctx, key, string(raw), ttl); err != nil {
		c.logger.Warn("cache set failed", "key", key, "err", err)
	}
}

func (c *CacheCoordinator) evict(ctx context.Context, keys ...string) {
	if c.store == nil {
		return
	}
	if err := c.store.Delete(ctx, keys...); err != nil {
		c.logger.Warn("cache evict failed", "keys", keys, "err", err)
	}
}

func (c *CacheCoordinator) evictPattern(ctx context.Context, pattern string) {
	if c.store == nil {
		return
	}
	if err := c.store.DeletePattern(ctx, pattern); err != nil {
		c.logger.Warn("cache pattern evict failed", "pattern", pattern, "err", err)
	}
}

// cachedListing is the stored shape for paginated listing regions.
type cachedListing struct {
	Views []*domain.EventView `json:"views"`
	Total int                 `json:"total"`
}

func (c *CacheCoordinator) GetEventView(ctx context.Context, eventID string) (*domain.EventView, bool) {
	view := &domain.EventView{}
	if !c.getJSON(ctx, eventKey(eventID), view) {
		return nil, false
	}
	return view, true
}

func (c *CacheCoordinator) SetEventView(ctx context.Context, view *domain.EventView) {
	c.setJSON(ctx, eventKey(view.Event.ID), view, ttlEventDetail)
}

func (c *CacheCoordinator) GetUpcoming(ctx context.Context, p domain.PaginationParams) ([]*domain.EventView, int, bool) {
	var l cachedListing
	if !c.getJSON(ctx, upcomingKey(p), &l) {
		return nil, 0, false
	}
	return l.Views, l.Total, true
}

func (c *CacheCoordinator) SetUpcoming(ctx context.Context, p domain.PaginationParams, views []*domain.EventView, total int) {
	c.setJSON(ctx, upcomingKey(p), cachedListing{Views: views, Total: total}, ttlUpcoming)
}

func (c *CacheCoordinator) GetHosting(ctx context.Context, userID string, p domain.PaginationParams) ([]*domain.EventView, int, bool) {
	var l cachedListing
	if !c.getJSON(ctx, hostingKey(userID, p), &l) {
		return nil, 0, false
	}
	return l.Views, l.Total, true
}

func (c *CacheCoordinator) SetHosting(ctx context.Context, userID string, p domain.PaginationParams, views []*domain.EventView, total int) {
	c.setJSON(ctx, hostingKey(userID, p), cachedListing{Views: views, Total: total}, ttlUserListings)
}

func (c *CacheCoordinator) GetAttending(ctx context.Context, userID string) ([]*domain.EventView, bool) {
	var views []*domain.EventView
	if !c.getJSON(ctx, attendingKey(userID), &views) {
		return nil, false
	}
	return views, true
}

func (c *CacheCoordinator) SetAttending(ctx context.Context, userID string, views []*domain.EventView) {
	c.setJSON(ctx, attendingKey(userID), views, ttlUserListings)
}

func (c *CacheCoordinator) GetAttendeeCount(ctx context.Context, eventID string) (int, bool) {
	var count int
	if !c.getJSON(ctx, attendeeCountKey(eventID), &count) {
		return 0, false
	}
	return count, true
}

func (c *CacheCoordinator) SetAttendeeCount(ctx context.Context, eventID string, count int) {
	c.setJSON(ctx, attendeeCountKey(eventID), count, ttlAttendeeCount)
}

func (c *CacheCoordinator) GetUser(ctx context.Context, userID string) (*domain.User, bool) {
	u := &domain.User{}
	if !c.getJSON(ctx, userKey(userID), u) {
		return nil, false
	}
	return u, true
}

func (c *CacheCoordinator) SetUser(ctx context.Context, u *domain.User) {
	c.setJSON(ctx, userKey(u.ID), u, ttlIdentity)
}

// InvalidateEventUpdate evicts everything an event update can make stale:
// the event's detail entry plus the upcoming and per-user listing regions,
// whose cached contents may embed the old field values.
func (c *CacheCoordinator) InvalidateEventUpdate(ctx context.Context, eventID string) {
	c.evict(ctx, eventKey(eventID))
	c.evictPattern(ctx, upcomingPattern)
	c.evictPattern(ctx, userListingsPattern)
}

// InvalidateEventDelete evicts every region touching the deleted event.
// Listing keys are paginated and not individually addressable, so whole
// regions go, trading hit rate for correctness.
func (c *CacheCoordinator) InvalidateEventDelete(ctx context.Context, eventID string) {
	c.evict(ctx, eventKey(eventID), attendeeCountKey(eventID))
	c.evictPattern(ctx, upcomingPattern)
	c.evictPattern(ctx, userListingsPattern)
}

// InvalidateAttendance evicts the entries an attendance write feeds: the
// event's attendee count, its composed detail view, and the responding
// user's attending listing.
func (c *CacheCoordinator) InvalidateAttendance(ctx context.Context, eventID, userID string) {
	c.evict(ctx, attendeeCountKey(eventID), eventKey(eventID), attendingKey(userID))
}
