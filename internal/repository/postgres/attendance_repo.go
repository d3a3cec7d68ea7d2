package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"eventmanagement/internal/domain"
)

type attendanceRepository struct {
	DB *sql.DB
}

func NewAttendanceRepository(db *sql.DB) domain.AttendanceRepository {
	return &attendanceRepository{DB: db}
}

// Create inserts an attendance row. The (event_id, user_id) unique constraint
// is the authoritative duplicate guard: a violation maps to ErrConflict so
// concurrent responders get the same error the application-level pre-check
// would have produced.
func (r *attendanceRepository) Create(ctx context.Context, a *domain.Attendance) error {
	query := `
		INSERT INTO attendances (event_id, user_id, status, responded_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, a.EventID, a.UserID, a.Status, a.RespondedAt).Scan(&a.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

func (r *attendanceRepository) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Attendance, error) {
	query := `
		SELECT id, event_id, user_id, status, responded_at
		FROM attendances
		WHERE event_id = $1 AND user_id = $2
	`
	a := &domain.Attendance{}
	err := r.DB.QueryRowContext(ctx, query, eventID, userID).
		Scan(&a.ID, &a.EventID, &a.UserID, &a.Status, &a.RespondedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

// UpdateStatus overwrites status and responded_at on the existing row in a
// single statement, keeping the record's identity intact.
func (r *attendanceRepository) UpdateStatus(ctx context.Context, eventID, userID string, status domain.AttendanceStatus, respondedAt time.Time) (*domain.Attendance, error) {
	query := `
		UPDATE attendances
		SET status = $1, responded_at = $2
		WHERE event_id = $3 AND user_id = $4
		RETURNING id, event_id, user_id, status, responded_at
	`
	a := &domain.Attendance{}
	err := r.DB.QueryRowContext(ctx, query, status, respondedAt, eventID, userID).
		Scan(&a.ID, &a.EventID, &a.UserID, &a.Status, &a.RespondedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *attendanceRepository) CountByEventID(ctx context.Context, eventID string) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM attendances WHERE event_id = $1`, eventID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *attendanceRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Attendance, error) {
	query := `
		SELECT id, event_id, user_id, status, responded_at
		FROM attendances
		WHERE user_id = $1
		ORDER BY responded_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	atts := make([]*domain.Attendance, 0)
	for rows.Next() {
		a := &domain.Attendance{}
		if err := rows.Scan(&a.ID, &a.EventID, &a.UserID, &a.Status, &a.RespondedAt); err != nil {
			return nil, err
		}
		atts = append(atts, a)
	}
	return atts, rows.Err()
}
