package domain

import (
	"context"
	"time"
)

// Visibility controls who may read an event.
type Visibility string

const (
	VisibilityPublic  Visibility = "PUBLIC"
	VisibilityPrivate Visibility = "PRIVATE"
)

// Valid reports whether v is a known visibility.
func (v Visibility) Valid() bool {
	return v == VisibilityPublic || v == VisibilityPrivate
}

// Event represents a scheduled event. HostID is the creator and is immutable
// after creation.
// swagger:model Event
type Event struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	HostID      string     `json:"host_id"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     time.Time  `json:"end_time"`
	Location    string     `json:"location"`
	Visibility  Visibility `json:"visibility"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsPublic reports whether the event is readable by any authenticated user.
func (e *Event) IsPublic() bool {
	return e.Visibility == VisibilityPublic
}

// EventPatch is a partial update. A nil field means "leave unchanged";
// there is deliberately no way to clear a field back to empty.
type EventPatch struct {
	Title       *string     `json:"title"`
	Description *string     `json:"description"`
	StartTime   *time.Time  `json:"start_time"`
	EndTime     *time.Time  `json:"end_time"`
	Location    *string     `json:"location"`
	Visibility  *Visibility `json:"visibility"`
}

// EventView is the composed read model: the event plus its host's display
// name and the current attendee count. It is computed at read time, never
// persisted.
// swagger:model EventView
type EventView struct {
	Event         *Event `json:"event"`
	HostName      string `json:"host_name"`
	AttendeeCount int    `json:"attendee_count"`
}

// EventFilter narrows event listings. Zero values match everything:
// filters combine with AND semantics, and an unset field matches all
// values for that field. Location is a case-insensitive substring match.
type EventFilter struct {
	Visibility Visibility
	Location   string
	StartAfter *time.Time
	EndBefore  *time.Time
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	// Update applies the non-nil fields of patch in a single statement and
	// returns the resulting row. HostID is never touched.
	Update(ctx context.Context, eventID string, patch EventPatch) (*Event, error)
	Delete(ctx context.Context, id string) error
	ListUpcoming(ctx context.Context, after time.Time, params PaginationParams) ([]*Event, int, error)
	ListByFilter(ctx context.Context, filter EventFilter, params PaginationParams) ([]*Event, int, error)
	ListByHostID(ctx context.Context, hostID string, params PaginationParams) ([]*Event, int, error)
}

// EventService orchestrates the event lifecycle under authorization and
// keeps the cache consistent with mutations.
type EventService interface {
	Create(ctx context.Context, caller Identity, draft *Event) (*EventView, error)
	Get(ctx context.Context, caller Identity, eventID string) (*EventView, error)
	Update(ctx context.Context, caller Identity, eventID string, patch EventPatch) (*EventView, error)
	Delete(ctx context.Context, caller Identity, eventID string) error
	ListUpcoming(ctx context.Context, params PaginationParams) ([]*EventView, int, error)
	ListByFilter(ctx context.Context, filter EventFilter, params PaginationParams) ([]*EventView, int, error)
	ListHostedBy(ctx context.Context, caller Identity, params PaginationParams) ([]*EventView, int, error)
	ListAttendedBy(ctx context.Context, caller Identity) ([]*EventView, error)
}
