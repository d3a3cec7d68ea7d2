package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventmanagement/internal/delivery/http/helpers"
	"eventmanagement/internal/domain"
)

// fakeAttendanceService implements domain.AttendanceService for handler tests.
type fakeAttendanceService struct {
	respondErr  error
	updateErr   error
	getErr      error
	countErr    error
	view        *domain.AttendanceView
	count       int
	lastCaller  domain.Identity
	lastEventID string
	lastStatus  domain.AttendanceStatus
}

func (f *fakeAttendanceService) Respond(ctx context.Context, caller domain.Identity, eventID string, status domain.AttendanceStatus) (*domain.AttendanceView, error) {
	f.lastCaller = caller
	f.lastEventID = eventID
	f.lastStatus = status
	if f.respondErr != nil {
		return nil, f.respondErr
	}
	return f.view, nil
}

func (f *fakeAttendanceService) UpdateStatus(ctx context.Context, caller domain.Identity, eventID string, status domain.AttendanceStatus) (*domain.AttendanceView, error) {
	f.lastCaller = caller
	f.lastEventID = eventID
	f.lastStatus = status
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return f.view, nil
}

func (f *fakeAttendanceService) GetStatus(ctx context.Context, caller domain.Identity, eventID string) (*domain.AttendanceView, error) {
	f.lastCaller = caller
	f.lastEventID = eventID
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.view, nil
}

func (f *fakeAttendanceService) CountForEvent(ctx context.Context, eventID string) (int, error) {
	f.lastEventID = eventID
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.count, nil
}

func TestAttendanceController_Respond(t *testing.T) {
	identity := domain.Identity{ID: "user-1", Role: domain.RoleUser}
	view := &domain.AttendanceView{
		Attendance: &domain.Attendance{
			ID: "att-1", EventID: testEventID, UserID: "user-1",
			Status: domain.StatusGoing, RespondedAt: time.Now(),
		},
		EventTitle: "Launch Party",
		UserName:   "Bob",
	}

	t.Run("success lowercases status input", func(t *testing.T) {
		svc := &fakeAttendanceService{view: view}
		ctrl := NewAttendanceController(testLogger, svc)

		body := []byte(`{"status":"going"}`)
		req := authedRequest(http.MethodPost, "http://test/events/"+testEventID+"/attendance", body, identity)
		req.SetPathValue("eventID", testEventID)
		rr := httptest.NewRecorder()
		ctrl.Respond(rr, req)

		require.Equal(t, http.StatusCreated, rr.Code)
		assert.Equal(t, domain.StatusGoing, svc.lastStatus)
		assert.Equal(t, testEventID, svc.lastEventID)
		assert.Equal(t, identity, svc.lastCaller)

		resp := decodeEnvelope(t, rr)
		require.Nil(t, resp.Error)
		data, err := json.Marshal(resp.Data)
		require.NoError(t, err)
		var got domain.AttendanceView
		require.NoError(t, json.Unmarshal(data, &got))
		require.NotNil(t, got.Attendance)
		assert.Equal(t, domain.StatusGoing, got.Attendance.Status)
		assert.Equal(t, "Launch Party", got.EventTitle)
		assert.Equal(t, "Bob", got.UserName)
	})

	t.Run("invalid status rejected before the service", func(t *testing.T) {
		svc := &fakeAttendanceService{}
		ctrl := NewAttendanceController(testLogger, svc)

		body := []byte(`{"status":"PERHAPS"}`)
		req := authedRequest(http.MethodPost, "http://test/events/"+testEventID+"/attendance", body, identity)
		req.SetPathValue("eventID", testEventID)
		rr := httptest.NewRecorder()
		ctrl.Respond(rr, req)

		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Empty(t, svc.lastEventID, "service must not be called")
	})

	t.Run("duplicate response maps to 409", func(t *testing.T) {
		svc := &fakeAttendanceService{respondErr: fmt.Errorf("%w: already responded to this event", domain.ErrConflict)}
		ctrl := NewAttendanceController(testLogger, svc)

		body := []byte(`{"status":"GOING"}`)
		req := authedRequest(http.MethodPost, "http://test/events/"+testEventID+"/attendance", body, identity)
		req.SetPathValue("eventID", testEventID)
		rr := httptest.NewRecorder()
		ctrl.Respond(rr, req)

		require.Equal(t, http.StatusConflict, rr.Code)
		resp := decodeEnvelope(t, rr)
		require.NotNil(t, resp.Error)
		assert.Equal(t, helpers.ErrCodeConflict, resp.Error.Code)
	})

	t.Run("unknown event maps to 404", func(t *testing.T) {
		svc := &fakeAttendanceService{respondErr: domain.ErrNotFound}
		ctrl := NewAttendanceController(testLogger, svc)

		body := []byte(`{"status":"GOING"}`)
		req := authedRequest(http.MethodPost, "http://test/events/"+testEventID+"/attendance", body, identity)
		req.SetPathValue("eventID", testEventID)
		rr := httptest.NewRecorder()
		ctrl.Respond(rr, req)
		require.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("invalid event id", func(t *testing.T) {
		ctrl := NewAttendanceController(testLogger, &fakeAttendanceService{})
		body := []byte(`{"status":"GOING"}`)
		req := authedRequest(http.MethodPost, "http://test/events/abc/attendance", body, identity)
		req.SetPathValue("eventID", "abc")
		rr := httptest.NewRecorder()
		ctrl.Respond(rr, req)
		require.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestAttendanceController_UpdateStatus(t *testing.T) {
	identity := domain.Identity{ID: "user-1", Role: domain.RoleUser}

	t.Run("success", func(t *testing.T) {
		svc := &fakeAttendanceService{view: &domain.AttendanceView{
			Attendance: &domain.Attendance{
				ID: "att-1", EventID: testEventID, UserID: "user-1", Status: domain.StatusDeclined,
			},
			EventTitle: "Launch Party",
			UserName:   "Bob",
		}}
		ctrl := NewAttendanceController(testLogger, svc)

		body := []byte(`{"status":"DECLINED"}`)
		req := authedRequest(http.MethodPatch, "http://test/events/"+testEventID+"/attendance", body, identity)
		req.SetPathValue("eventID", testEventID)
		rr := httptest.NewRecorder()
		ctrl.UpdateStatus(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, domain.StatusDeclined, svc.lastStatus)
	})

	t.Run("no prior response maps to 404", func(t *testing.T) {
		svc := &fakeAttendanceService{updateErr: fmt.Errorf("%w: not responded to this event yet", domain.ErrNotFound)}
		ctrl := NewAttendanceController(testLogger, svc)

		body := []byte(`{"status":"DECLINED"}`)
		req := authedRequest(http.MethodPatch, "http://test/events/"+testEventID+"/attendance", body, identity)
		req.SetPathValue("eventID", testEventID)
		rr := httptest.NewRecorder()
		ctrl.UpdateStatus(rr, req)
		require.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestAttendanceController_GetStatus(t *testing.T) {
	identity := domain.Identity{ID: "user-1", Role: domain.RoleUser}
	svc := &fakeAttendanceService{view: &domain.AttendanceView{
		Attendance: &domain.Attendance{
			ID: "att-1", EventID: testEventID, UserID: "user-1", Status: domain.StatusMaybe,
		},
		EventTitle: "Launch Party",
		UserName:   "Bob",
	}}
	ctrl := NewAttendanceController(testLogger, svc)

	req := authedRequest(http.MethodGet, "http://test/events/"+testEventID+"/attendance", nil, identity)
	req.SetPathValue("eventID", testEventID)
	rr := httptest.NewRecorder()
	ctrl.GetStatus(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	resp := decodeEnvelope(t, rr)
	require.Nil(t, resp.Error)
	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var got domain.AttendanceView
	require.NoError(t, json.Unmarshal(data, &got))
	require.NotNil(t, got.Attendance)
	assert.Equal(t, domain.StatusMaybe, got.Attendance.Status)
	assert.Equal(t, "Launch Party", got.EventTitle)
	assert.Equal(t, "Bob", got.UserName)
}

func TestAttendanceController_GetCount(t *testing.T) {
	identity := domain.Identity{ID: "user-1", Role: domain.RoleUser}
	svc := &fakeAttendanceService{count: 12}
	ctrl := NewAttendanceController(testLogger, svc)

	req := authedRequest(http.MethodGet, "http://test/events/"+testEventID+"/attendance/count", nil, identity)
	req.SetPathValue("eventID", testEventID)
	rr := httptest.NewRecorder()
	ctrl.GetCount(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	resp := decodeEnvelope(t, rr)
	require.Nil(t, resp.Error)
	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var count AttendeeCountResponse
	require.NoError(t, json.Unmarshal(data, &count))
	assert.Equal(t, testEventID, count.EventID)
	assert.Equal(t, 12, count.Count)
}
