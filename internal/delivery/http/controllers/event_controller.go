package controllers

import (
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"eventmanagement/internal/delivery/http/helpers"
	"eventmanagement/internal/delivery/http/middleware"
	"eventmanagement/internal/domain"
)

// uuidRegex matches a canonical UUID string (8-4-4-4-12 hex).
var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

const (
	maxTitleLen       = 100
	maxDescriptionLen = 1000
	maxLocationLen    = 500
)

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// eventIDFromPath extracts and validates the eventID path parameter,
// writing a 400 and returning false on failure.
func eventIDFromPath(w http.ResponseWriter, r *http.Request) (string, bool) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return "", false
	}
	if !uuidRegex.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return "", false
	}
	return eventID, true
}

func callerIdentity(w http.ResponseWriter, r *http.Request) (domain.Identity, bool) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return domain.Identity{}, false
	}
	return identity, true
}

func (c *EventController) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if !helpers.IsDomainError(err) {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	}
	helpers.WriteDomainError(w, err)
}

// CreateEventRequest is the request body for POST /events.
type CreateEventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Location    string    `json:"location"`
	Visibility  string    `json:"visibility"`
}

// Validate implements helpers.Validator.
func (r *CreateEventRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(r.Title) == "" {
		errs = append(errs, "title is required")
	}
	if len(r.Title) > maxTitleLen {
		errs = append(errs, "title too long")
	}
	if len(r.Description) > maxDescriptionLen {
		errs = append(errs, "description too long")
	}
	if strings.TrimSpace(r.Location) == "" {
		errs = append(errs, "location is required")
	}
	if len(r.Location) > maxLocationLen {
		errs = append(errs, "location too long")
	}
	if r.StartTime.IsZero() {
		errs = append(errs, "start_time is required")
	}
	if r.EndTime.IsZero() {
		errs = append(errs, "end_time is required")
	}
	if r.Visibility != "" && !domain.Visibility(r.Visibility).Valid() {
		errs = append(errs, "visibility must be PUBLIC or PRIVATE")
	}
	return errs
}

// CreateEvent godoc
// @Summary Create an event
// @Description Creates an event hosted by the authenticated user. end_time must be after start_time and start_time must be in the future.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body controllers.CreateEventRequest true "Event draft"
// @Success 201 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	identity, ok := callerIdentity(w, r)
	if !ok {
		return
	}
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	draft := &domain.Event{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Location:    strings.TrimSpace(req.Location),
		Visibility:  domain.Visibility(req.Visibility),
	}
	view, err := c.Service.Create(r.Context(), identity, draft)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, view)
}

// GetEvent godoc
// @Summary Get an event
// @Description Returns the composed event view (event, host name, attendee count). PRIVATE events are visible to the host or an admin only.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	identity, ok := callerIdentity(w, r)
	if !ok {
		return
	}
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	view, err := c.Service.Get(r.Context(), identity, eventID)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, view)
}

// UpdateEventRequest is the request body for PATCH /events/{eventID}.
// Absent fields are left unchanged.
type UpdateEventRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	Location    *string    `json:"location"`
	Visibility  *string    `json:"visibility"`
}

// Validate implements helpers.Validator.
func (r *UpdateEventRequest) Validate() []string {
	var errs []string
	if r.Title != nil {
		if strings.TrimSpace(*r.Title) == "" {
			errs = append(errs, "title must not be empty")
		}
		if len(*r.Title) > maxTitleLen {
			errs = append(errs, "title too long")
		}
	}
	if r.Description != nil && len(*r.Description) > maxDescriptionLen {
		errs = append(errs, "description too long")
	}
	if r.Location != nil {
		if strings.TrimSpace(*r.Location) == "" {
			errs = append(errs, "location must not be empty")
		}
		if len(*r.Location) > maxLocationLen {
			errs = append(errs, "location too long")
		}
	}
	if r.Visibility != nil && !domain.Visibility(*r.Visibility).Valid() {
		errs = append(errs, "visibility must be PUBLIC or PRIVATE")
	}
	return errs
}

func (r *UpdateEventRequest) toPatch() domain.EventPatch {
	patch := domain.EventPatch{
		Title:       r.Title,
		Description: r.Description,
		StartTime:   r.StartTime,
		EndTime:     r.EndTime,
		Location:    r.Location,
	}
	if r.Visibility != nil {
		v := domain.Visibility(*r.Visibility)
		patch.Visibility = &v
	}
	return patch
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Applies a partial update. Only the host or an admin may update; absent fields are left unchanged; end_time must remain after start_time post-merge.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body controllers.UpdateEventRequest true "Fields to change"
// @Success 200 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [patch]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	identity, ok := callerIdentity(w, r)
	if !ok {
		return
	}
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	var req UpdateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	view, err := c.Service.Update(r.Context(), identity, eventID, req.toPatch())
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, view)
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Hard-deletes the event. Only the host or an admin may delete. Attendance rows are not cascaded.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 204 "No Content"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	identity, ok := callerIdentity(w, r)
	if !ok {
		return
	}
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	if err := c.Service.Delete(r.Context(), identity, eventID); err != nil {
		c.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// EventListResponse is the payload for paginated event listings.
// swagger:model EventListResponse
type EventListResponse struct {
	Events     []*domain.EventView    `json:"events"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// ListUpcoming godoc
// @Summary List upcoming public events
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/upcoming [get]
func (c *EventController) ListUpcoming(w http.ResponseWriter, r *http.Request) {
	if _, ok := callerIdentity(w, r); !ok {
		return
	}
	params := helpers.ParsePagination(r)
	views, total, err := c.Service.ListUpcoming(r.Context(), params)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, EventListResponse{
		Events:     views,
		Pagination: helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}

// ListEvents godoc
// @Summary List events by filter
// @Description Filters combine with AND; an unset filter matches everything. Location is a case-insensitive substring match.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param visibility query string false "PUBLIC or PRIVATE"
// @Param location query string false "Location substring"
// @Param from query string false "Earliest start time (RFC3339)"
// @Param to query string false "Latest end time (RFC3339)"
// @Param page query int false "Page (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	if _, ok := callerIdentity(w, r); !ok {
		return
	}
	q := r.URL.Query()
	filter := domain.EventFilter{
		Location: strings.TrimSpace(q.Get("location")),
	}
	if v := q.Get("visibility"); v != "" {
		vis := domain.Visibility(strings.ToUpper(v))
		if !vis.Valid() {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "visibility must be PUBLIC or PRIVATE")
			return
		}
		filter.Visibility = vis
	}
	if s := q.Get("from"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid from timestamp")
			return
		}
		filter.StartAfter = &t
	}
	if s := q.Get("to"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid to timestamp")
			return
		}
		filter.EndBefore = &t
	}

	params := helpers.ParsePagination(r)
	views, total, err := c.Service.ListByFilter(r.Context(), filter, params)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, EventListResponse{
		Events:     views,
		Pagination: helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}

// ListHosting godoc
// @Summary List events hosted by the current user
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/me/events/hosting [get]
func (c *EventController) ListHosting(w http.ResponseWriter, r *http.Request) {
	identity, ok := callerIdentity(w, r)
	if !ok {
		return
	}
	params := helpers.ParsePagination(r)
	views, total, err := c.Service.ListHostedBy(r.Context(), identity, params)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, EventListResponse{
		Events:     views,
		Pagination: helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}

// ListAttending godoc
// @Summary List events the current user has responded to
// @Description Attendance rows whose event no longer exists are silently skipped.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/me/events/attending [get]
func (c *EventController) ListAttending(w http.ResponseWriter, r *http.Request) {
	identity, ok := callerIdentity(w, r)
	if !ok {
		return
	}
	views, err := c.Service.ListAttendedBy(r.Context(), identity)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, views)
}
