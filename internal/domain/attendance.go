package domain

import (
	"context"
	"time"
)

// AttendanceStatus is a user's response to an event.
type AttendanceStatus string

const (
	StatusGoing    AttendanceStatus = "GOING"
	StatusMaybe    AttendanceStatus = "MAYBE"
	StatusDeclined AttendanceStatus = "DECLINED"
)

// Valid reports whether s is a known attendance status.
func (s AttendanceStatus) Valid() bool {
	return s == StatusGoing || s == StatusMaybe || s == StatusDeclined
}

// Attendance is the single record capturing one user's response status to
// one event. At most one row exists per (event, user) pair; the store
// enforces this with a unique constraint.
// swagger:model Attendance
type Attendance struct {
	ID          string           `json:"id"`
	EventID     string           `json:"event_id"`
	UserID      string           `json:"user_id"`
	Status      AttendanceStatus `json:"status"`
	RespondedAt time.Time        `json:"responded_at"`
}

// AttendanceView is the composed read model: the attendance row plus the
// event's title and the responder's display name. Computed at read time,
// never persisted.
// swagger:model AttendanceView
type AttendanceView struct {
	Attendance *Attendance `json:"attendance"`
	EventTitle string      `json:"event_title"`
	UserName   string      `json:"user_name"`
}

// AttendanceRepository defines storage operations for attendance rows.
// Create must return ErrConflict when a row for (event_id, user_id) already
// exists; the unique constraint is the authoritative guard under concurrency.
type AttendanceRepository interface {
	Create(ctx context.Context, a *Attendance) error
	GetByEventAndUser(ctx context.Context, eventID, userID string) (*Attendance, error)
	// UpdateStatus overwrites status and responded_at in place on the
	// existing row, preserving the record's identity.
	UpdateStatus(ctx context.Context, eventID, userID string, status AttendanceStatus, respondedAt time.Time) (*Attendance, error)
	CountByEventID(ctx context.Context, eventID string) (int, error)
	ListByUserID(ctx context.Context, userID string) ([]*Attendance, error)
}

// AttendanceService enforces the one-record-per-(event,user) invariant and
// status transitions.
type AttendanceService interface {
	// Respond creates the caller's attendance record for the event.
	// Fails with ErrNotFound if the event does not exist and ErrConflict
	// if the caller has already responded.
	Respond(ctx context.Context, caller Identity, eventID string, status AttendanceStatus) (*AttendanceView, error)
	// UpdateStatus changes an existing record's status, refreshing
	// responded_at. Fails with ErrNotFound if the caller never responded.
	UpdateStatus(ctx context.Context, caller Identity, eventID string, status AttendanceStatus) (*AttendanceView, error)
	GetStatus(ctx context.Context, caller Identity, eventID string) (*AttendanceView, error)
	// CountForEvent returns the number of attendance rows for the event.
	// Not authorization-gated: aggregate counts are not sensitive.
	CountForEvent(ctx context.Context, eventID string) (int, error)
}
