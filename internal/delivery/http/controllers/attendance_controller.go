package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"eventmanagement/internal/delivery/http/helpers"
	"eventmanagement/internal/domain"
)

type AttendanceController struct {
	Logger  *slog.Logger
	Service domain.AttendanceService
}

func NewAttendanceController(logger *slog.Logger, svc domain.AttendanceService) *AttendanceController {
	return &AttendanceController{
		Logger:  logger,
		Service: svc,
	}
}

func (c *AttendanceController) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if !helpers.IsDomainError(err) {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	}
	helpers.WriteDomainError(w, err)
}

// AttendanceRequest is the request body for respond and update-status calls.
type AttendanceRequest struct {
	Status string `json:"status"`
}

// Validate implements helpers.Validator.
func (r *AttendanceRequest) Validate() []string {
	status := domain.AttendanceStatus(strings.ToUpper(strings.TrimSpace(r.Status)))
	if !status.Valid() {
		return []string{"status must be GOING, MAYBE, or DECLINED"}
	}
	return nil
}

func (r *AttendanceRequest) status() domain.AttendanceStatus {
	return domain.AttendanceStatus(strings.ToUpper(strings.TrimSpace(r.Status)))
}

// Respond godoc
// @Summary Respond to an event
// @Description Creates the caller's attendance record and returns the composed view (record, event title, responder name). A second response for the same event fails with 409; use PATCH to change status.
// @Tags attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body controllers.AttendanceRequest true "Attendance status"
// @Success 201 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/attendance [post]
func (c *AttendanceController) Respond(w http.ResponseWriter, r *http.Request) {
	identity, ok := callerIdentity(w, r)
	if !ok {
		return
	}
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	var req AttendanceRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	att, err := c.Service.Respond(r.Context(), identity, eventID, req.status())
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, att)
}

// UpdateStatus godoc
// @Summary Update attendance status
// @Description Overwrites the caller's existing attendance status in place, refreshing responded_at, and returns the composed view.
// @Tags attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body controllers.AttendanceRequest true "New status"
// @Success 200 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/attendance [patch]
func (c *AttendanceController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	identity, ok := callerIdentity(w, r)
	if !ok {
		return
	}
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	var req AttendanceRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	att, err := c.Service.UpdateStatus(r.Context(), identity, eventID, req.status())
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, att)
}

// GetStatus godoc
// @Summary Get the caller's attendance status for an event
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/attendance [get]
func (c *AttendanceController) GetStatus(w http.ResponseWriter, r *http.Request) {
	identity, ok := callerIdentity(w, r)
	if !ok {
		return
	}
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	att, err := c.Service.GetStatus(r.Context(), identity, eventID)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, att)
}

// AttendeeCountResponse is the payload for GET /events/{eventID}/attendance/count.
// swagger:model AttendeeCountResponse
type AttendeeCountResponse struct {
	EventID string `json:"event_id"`
	Count   int    `json:"count"`
}

// GetCount godoc
// @Summary Get the attendee count for an event
// @Description Aggregate counts are not authorization-gated.
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/attendance/count [get]
func (c *AttendanceController) GetCount(w http.ResponseWriter, r *http.Request) {
	if _, ok := callerIdentity(w, r); !ok {
		return
	}
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	count, err := c.Service.CountForEvent(r.Context(), eventID)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, AttendeeCountResponse{EventID: eventID, Count: count})
}
