package domain

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by CacheStore.Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// CacheStore is the cache tier port: string values keyed within named
// regions, each entry with its own TTL. Implementations must treat backend
// unavailability as an error return, not a panic; callers fall through to
// direct computation on any error.
type CacheStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// DeletePattern evicts every key matching the glob pattern. Used for
	// coarse-grained region invalidation where listing keys are not
	// individually addressable.
	DeletePattern(ctx context.Context, pattern string) error
}

// Mailer sends a single email. Implementations may be SES-backed or no-ops.
type Mailer interface {
	Send(to, subject, html, text string) error
}
