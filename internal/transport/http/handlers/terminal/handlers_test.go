package terminalhandler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"stempel/internal/domain/auth"
	"stempel/internal/domain/timeclock"
	"stempel/internal/transport/http/middleware"
)

type stubStore struct {
	timeclock.StoreAPI
	employee  timeclock.EmployeeRef
	pin       string
	openShift *timeclock.Timesheet
	nextID    int64
}

func (s *stubStore) FindActiveEmployeeByPIN(_ context.Context, _, pin string) (timeclock.EmployeeRef, error) {
	if pin != s.pin {
		return timeclock.EmployeeRef{}, timeclock.ErrInvalidPIN
	}
	return s.employee, nil
}

func (s *stubStore) StartShift(_ context.Context, tenantID string, employeeID int64, now time.Time, workDate string) (timeclock.Timesheet, *timeclock.Timesheet, error) {
	var autoClosed *timeclock.Timesheet
	if s.openShift != nil {
		closed := *s.openShift
		hours := timeclock.TotalHours(closed.ClockIn, now)
		closed.ClockOut = &now
		closed.TotalHours = &hours
		autoClosed = &closed
		s.openShift = nil
	}
	s.nextID++
	started := timeclock.Timesheet{ID: s.nextID, TenantID: tenantID, EmployeeID: employeeID, ClockIn: now, WorkDate: workDate}
	s.openShift = &started
	return started, autoClosed, nil
}

func (s *stubStore) FinishShift(_ context.Context, _ string, _ int64, now time.Time) (timeclock.Timesheet, error) {
	if s.openShift == nil {
		return timeclock.Timesheet{}, timeclock.ErrNoOpenShift
	}
	closed := *s.openShift
	hours := timeclock.TotalHours(closed.ClockIn, now)
	closed.ClockOut = &now
	closed.TotalHours = &hours
	s.openShift = nil
	return closed, nil
}

func (s *stubStore) ActiveShifts(_ context.Context, _ string) ([]timeclock.ActiveShift, error) {
	if s.openShift == nil {
		return nil, nil
	}
	return []timeclock.ActiveShift{{
		TimesheetID:  s.openShift.ID,
		EmployeeID:   s.openShift.EmployeeID,
		EmployeeName: s.employee.FullName(),
		ClockIn:      s.openShift.ClockIn,
	}}, nil
}

func (s *stubStore) TenantSettings(_ context.Context, _ string) (timeclock.Settings, error) {
	return timeclock.Settings{Timezone: "UTC", LongShiftWarnHours: 12}, nil
}

type envelope struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func newTestHandler(store *stubStore) *Handler {
	svc := timeclock.NewService(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewHandler(svc, nil, nil)
}

func doRequest(t *testing.T, fn http.HandlerFunc, method, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	ctx := middleware.WithUser(req.Context(), auth.UserContext{UserID: "u1", TenantID: "t1", RoleName: auth.RoleFrontDesk})
	rr := httptest.NewRecorder()
	fn(rr, req.WithContext(ctx))

	var env envelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response: %v (%s)", err, rr.Body.String())
	}
	return rr, env
}

func TestHandleClockIn(t *testing.T) {
	store := &stubStore{employee: timeclock.EmployeeRef{ID: 1, FirstName: "Anna", LastName: "Berg"}, pin: "1234"}
	h := newTestHandler(store)

	rr, env := doRequest(t, h.HandleClockIn, http.MethodPost, `{"pin":"1234"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (%s)", rr.Code, rr.Body.String())
	}
	if !env.Success {
		t.Fatal("expected success envelope")
	}
	if env.Data["employeeName"] != "Anna Berg" {
		t.Errorf("employeeName = %v", env.Data["employeeName"])
	}
}

func TestHandleClockInInvalidPIN(t *testing.T) {
	store := &stubStore{pin: "1234"}
	h := newTestHandler(store)

	rr, env := doRequest(t, h.HandleClockIn, http.MethodPost, `{"pin":"0000"}`)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
	if env.Error == nil || env.Error.Code != "invalid_credentials" {
		t.Errorf("error = %+v, want invalid_credentials", env.Error)
	}
}

func TestHandleClockInBadPayload(t *testing.T) {
	h := newTestHandler(&stubStore{pin: "1234"})

	rr, env := doRequest(t, h.HandleClockIn, http.MethodPost, `{`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	if env.Error == nil || env.Error.Code != "invalid_payload" {
		t.Errorf("error = %+v, want invalid_payload", env.Error)
	}
}

func TestHandleClockOutNoOpenShift(t *testing.T) {
	store := &stubStore{employee: timeclock.EmployeeRef{ID: 1, FirstName: "Anna", LastName: "Berg"}, pin: "1234"}
	h := newTestHandler(store)

	rr, env := doRequest(t, h.HandleClockOut, http.MethodPost, `{"pin":"1234"}`)
	if rr.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rr.Code)
	}
	if env.Error == nil || env.Error.Code != "no_open_shift" {
		t.Errorf("error = %+v, want no_open_shift", env.Error)
	}
}

func TestHandleActive(t *testing.T) {
	clockIn := time.Now().Add(-2 * time.Hour)
	store := &stubStore{
		employee:  timeclock.EmployeeRef{ID: 1, FirstName: "Anna", LastName: "Berg"},
		pin:       "1234",
		openShift: &timeclock.Timesheet{ID: 7, TenantID: "t1", EmployeeID: 1, ClockIn: clockIn},
	}
	h := newTestHandler(store)

	rr, env := doRequest(t, h.HandleActive, http.MethodGet, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if env.Data["count"] != float64(1) {
		t.Errorf("count = %v, want 1", env.Data["count"])
	}
}

func TestHandleActiveEmpty(t *testing.T) {
	h := newTestHandler(&stubStore{pin: "1234"})

	rr, env := doRequest(t, h.HandleActive, http.MethodGet, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if env.Data["count"] != float64(0) {
		t.Errorf("count = %v, want 0", env.Data["count"])
	}
	if _, ok := env.Data["active"].([]any); !ok {
		t.Errorf("active should be an array, got %T", env.Data["active"])
	}
}
