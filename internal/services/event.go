package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventmanagement/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	attendanceRepo domain.AttendanceRepository
	userRepo       domain.UserRepository
	guard          *AuthorizationGuard
	cache          *CacheCoordinator
	contextTimeout time.Duration
}

// NewEventService creates an EventService with the given repositories,
// authorization guard, and cache coordinator.
func NewEventService(
	eventRepo domain.EventRepository,
	attendanceRepo domain.AttendanceRepository,
	userRepo domain.UserRepository,
	guard *AuthorizationGuard,
	cache *CacheCoordinator,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		attendanceRepo: attendanceRepo,
		userRepo:       userRepo,
		guard:          guard,
		cache:          cache,
		contextTimeout: timeout,
	}
}

// validateTimes checks the temporal invariants with all fields final:
// end strictly after start, and (on create) start in the future.
func validateTimes(start, end time.Time, requireFuture bool) error {
	if !end.After(start) {
		return fmt.Errorf("%w: end time must be after start time", domain.ErrValidation)
	}
	if requireFuture && !start.After(time.Now()) {
		return fmt.Errorf("%w: start time must be in the future", domain.ErrValidation)
	}
	return nil
}

func (s *eventService) Create(ctx context.Context, caller domain.Identity, draft *domain.Event) (*domain.EventView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := validateTimes(draft.StartTime, draft.EndTime, true); err != nil {
		return nil, err
	}
	if !draft.Visibility.Valid() {
		draft.Visibility = domain.VisibilityPublic
	}

	draft.HostID = caller.ID
	now := time.Now()
	draft.CreatedAt = now
	draft.UpdatedAt = now

	if err := s.eventRepo.Create(ctx, draft); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	// A fresh event has a fresh cache key; nothing to invalidate.
	return s.composeView(ctx, draft)
}

func (s *eventService) Get(ctx context.Context, caller domain.Identity, eventID string) (*domain.EventView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if view, ok := s.cache.GetEventView(ctx, eventID); ok {
		if !s.guard.CanViewEvent(caller, view.Event) {
			return nil, domain.ErrAccessDenied
		}
		return view, nil
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if !s.guard.CanViewEvent(caller, event) {
		return nil, domain.ErrAccessDenied
	}
	view, err := s.composeView(ctx, event)
	if err != nil {
		return nil, err
	}
	s.cache.SetEventView(ctx, view)
	return view, nil
}

func (s *eventService) Update(ctx context.Context, caller domain.Identity, eventID string, patch domain.EventPatch) (*domain.EventView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if !s.guard.CanMutateEvent(caller, event) {
		return nil, domain.ErrAccessDenied
	}
	if patch.Visibility != nil && !patch.Visibility.Valid() {
		return nil, fmt.Errorf("%w: invalid visibility", domain.ErrValidation)
	}

	// Re-check the temporal invariant with the patch merged over the loaded
	// row, so a patch touching either endpoint cannot invert the range.
	newStart := event.StartTime
	if patch.StartTime != nil {
		newStart = *patch.StartTime
	}
	newEnd := event.EndTime
	if patch.EndTime != nil {
		newEnd = *patch.EndTime
	}
	if err := validateTimes(newStart, newEnd, false); err != nil {
		return nil, err
	}

	updated, err := s.eventRepo.Update(ctx, eventID, patch)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}

	// Invalidate before returning so no subsequent read can observe data
	// older than this mutation.
	s.cache.InvalidateEventUpdate(ctx, eventID)
	return s.composeView(ctx, updated)
}

func (s *eventService) Delete(ctx context.Context, caller domain.Identity, eventID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if !s.guard.CanMutateEvent(caller, event) {
		return domain.ErrAccessDenied
	}
	// Hard delete. Attendance rows referencing the event are deliberately
	// left in place; listings tolerate the orphans.
	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	s.cache.InvalidateEventDelete(ctx, eventID)
	return nil
}

func (s *eventService) ListUpcoming(ctx context.Context, params domain.PaginationParams) ([]*domain.EventView, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if views, total, ok := s.cache.GetUpcoming(ctx, params); ok {
		return views, total, nil
	}
	events, total, err := s.eventRepo.ListUpcoming(ctx, time.Now(), params)
	if err != nil {
		return nil, 0, fmt.Errorf("list upcoming events: %w", err)
	}
	views, err := s.composeViews(ctx, events)
	if err != nil {
		return nil, 0, err
	}
	s.cache.SetUpcoming(ctx, params, views, total)
	return views, total, nil
}

func (s *eventService) ListByFilter(ctx context.Context, filter domain.EventFilter, params domain.PaginationParams) ([]*domain.EventView, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, total, err := s.eventRepo.ListByFilter(ctx, filter, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	views, err := s.composeViews(ctx, events)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

func (s *eventService) ListHostedBy(ctx context.Context, caller domain.Identity, params domain.PaginationParams) ([]*domain.EventView, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if views, total, ok := s.cache.GetHosting(ctx, caller.ID, params); ok {
		return views, total, nil
	}
	events, total, err := s.eventRepo.ListByHostID(ctx, caller.ID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list hosted events: %w", err)
	}
	views, err := s.composeViews(ctx, events)
	if err != nil {
		return nil, 0, err
	}
	s.cache.SetHosting(ctx, caller.ID, params, views, total)
	return views, total, nil
}

func (s *eventService) ListAttendedBy(ctx context.Context, caller domain.Identity) ([]*domain.EventView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if views, ok := s.cache.GetAttending(ctx, caller.ID); ok {
		return views, nil
	}
	atts, err := s.attendanceRepo.ListByUserID(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("list attendances: %w", err)
	}

	views := make([]*domain.EventView, 0, len(atts))
	for _, att := range atts {
		event, err := s.eventRepo.GetByID(ctx, att.EventID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// Event deleted but attendance remains; skip the orphan.
				continue
			}
			return nil, fmt.Errorf("get event for attendance: %w", err)
		}
		view, err := s.composeView(ctx, event)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	s.cache.SetAttending(ctx, caller.ID, views)
	return views, nil
}

// composeView builds the read model: event plus live host display name and
// attendee count. The count goes through its cache region; the host lookup
// goes through the identity region.
func (s *eventService) composeView(ctx context.Context, event *domain.Event) (*domain.EventView, error) {
	hostName := "Unknown Host"
	if host, ok := s.cache.GetUser(ctx, event.HostID); ok {
		hostName = host.Name
	} else if host, err := s.userRepo.GetByID(ctx, event.HostID); err == nil {
		hostName = host.Name
		s.cache.SetUser(ctx, host)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get host: %w", err)
	}

	count, ok := s.cache.GetAttendeeCount(ctx, event.ID)
	if !ok {
		var err error
		count, err = s.attendanceRepo.CountByEventID(ctx, event.ID)
		if err != nil {
			return nil, fmt.Errorf("count attendees: %w", err)
		}
		s.cache.SetAttendeeCount(ctx, event.ID, count)
	}

	return &domain.EventView{
		Event:         event,
		HostName:      hostName,
		AttendeeCount: count,
	}, nil
}

func (s *eventService) composeViews(ctx context.Context, events []*domain.Event) ([]*domain.EventView, error) {
	views := make([]*domain.EventView, 0, len(events))
	for _, e := range events {
		view, err := s.composeView(ctx, e)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}
