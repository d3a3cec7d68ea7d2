package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventmanagement/internal/domain"
)

type attendanceService struct {
	attendanceRepo domain.AttendanceRepository
	eventRepo      domain.EventRepository
	userRepo       domain.UserRepository
	cache          *CacheCoordinator
	contextTimeout time.Duration
}

// NewAttendanceService creates an AttendanceService with the given
// repositories and cache coordinator.
func NewAttendanceService(
	attendanceRepo domain.AttendanceRepository,
	eventRepo domain.EventRepository,
	userRepo domain.UserRepository,
	cache *CacheCoordinator,
	timeout time.Duration,
) domain.AttendanceService {
	return &attendanceService{
		attendanceRepo: attendanceRepo,
		eventRepo:      eventRepo,
		userRepo:       userRepo,
		cache:          cache,
		contextTimeout: timeout,
	}
}

func (s *attendanceService) Respond(ctx context.Context, caller domain.Identity, eventID string, status domain.AttendanceStatus) (*domain.AttendanceView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !status.Valid() {
		return nil, fmt.Errorf("%w: invalid attendance status", domain.ErrValidation)
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	// Fast-path duplicate check. Purely an optimization: two concurrent
	// responders can both pass it, so the store's unique constraint on
	// (event_id, user_id) is the authoritative guard and surfaces the same
	// ErrConflict for the loser.
	if _, err := s.attendanceRepo.GetByEventAndUser(ctx, eventID, caller.ID); err == nil {
		return nil, fmt.Errorf("%w: already responded to this event", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get attendance: %w", err)
	}

	a := &domain.Attendance{
		EventID:     eventID,
		UserID:      caller.ID,
		Status:      status,
		RespondedAt: time.Now(),
	}
	if err := s.attendanceRepo.Create(ctx, a); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("%w: already responded to this event", domain.ErrConflict)
		}
		return nil, fmt.Errorf("create attendance: %w", err)
	}

	s.cache.InvalidateAttendance(ctx, eventID, caller.ID)
	return s.composeView(ctx, a, event)
}

func (s *attendanceService) UpdateStatus(ctx context.Context, caller domain.Identity, eventID string, status domain.AttendanceStatus) (*domain.AttendanceView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !status.Valid() {
		return nil, fmt.Errorf("%w: invalid attendance status", domain.ErrValidation)
	}

	a, err := s.attendanceRepo.UpdateStatus(ctx, eventID, caller.ID, status, time.Now())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: not responded to this event yet", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("update attendance: %w", err)
	}

	s.cache.InvalidateAttendance(ctx, eventID, caller.ID)
	return s.composeView(ctx, a, nil)
}

func (s *attendanceService) GetStatus(ctx context.Context, caller domain.Identity, eventID string) (*domain.AttendanceView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	a, err := s.attendanceRepo.GetByEventAndUser(ctx, eventID, caller.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get attendance: %w", err)
	}
	return s.composeView(ctx, a, nil)
}

func (s *attendanceService) CountForEvent(ctx context.Context, eventID string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if count, ok := s.cache.GetAttendeeCount(ctx, eventID); ok {
		return count, nil
	}
	count, err := s.attendanceRepo.CountByEventID(ctx, eventID)
	if err != nil {
		return 0, fmt.Errorf("count attendees: %w", err)
	}
	s.cache.SetAttendeeCount(ctx, eventID, count)
	return count, nil
}

// composeView builds the read model: attendance row plus the event's title
// and the responder's display name. Callers that already loaded the event
// pass it in; otherwise it is fetched, tolerating the orphan case where the
// event has since been deleted. The responder lookup goes through the
// identity cache region.
func (s *attendanceService) composeView(ctx context.Context, a *domain.Attendance, event *domain.Event) (*domain.AttendanceView, error) {
	if event == nil {
		e, err := s.eventRepo.GetByID(ctx, a.EventID)
		if err == nil {
			event = e
		} else if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("get event: %w", err)
		}
	}
	title := "Unknown Event"
	if event != nil {
		title = event.Title
	}

	name := "Unknown User"
	if u, ok := s.cache.GetUser(ctx, a.UserID); ok {
		name = u.Name
	} else if u, err := s.userRepo.GetByID(ctx, a.UserID); err == nil {
		name = u.Name
		s.cache.SetUser(ctx, u)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &domain.AttendanceView{
		Attendance: a,
		EventTitle: title,
		UserName:   name,
	}, nil
}
