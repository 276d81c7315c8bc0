package attendancehandler

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

	"github.com/go-chi/chi/v5"

	"stempel/internal/domain/auth"
	"stempel/internal/domain/timeclock"
	"stempel/internal/transport/http/middleware"
)

type stubStore struct {
	timeclock.StoreAPI
	entries map[int64]timeclock.Timesheet
	summary []timeclock.EmployeeSummary
}

func (s *stubStore) Get(_ context.Context, tenantID string, id int64) (timeclock.Timesheet, error) {
	entry, ok := s.entries[id]
	if !ok || entry.TenantID != tenantID {
		return timeclock.Timesheet{}, timeclock.ErrEntryNotFound
	}
	return entry, nil
}

func (s *stubStore) Update(_ context.Context, tenantID string, id int64, clockIn time.Time, clockOut *time.Time, totalHours *float64, workDate string, notes *string, reason, editedBy string, editedAt time.Time) (timeclock.Timesheet, error) {
	entry, ok := s.entries[id]
	if !ok || entry.TenantID != tenantID {
		return timeclock.Timesheet{}, timeclock.ErrEntryNotFound
	}
	entry.ClockIn = clockIn
	entry.ClockOut = clockOut
	entry.TotalHours = totalHours
	entry.WorkDate = workDate
	entry.EditReason = &reason
	entry.EditedBy = &editedBy
	entry.EditedAt = &editedAt
	s.entries[id] = entry
	return entry, nil
}

func (s *stubStore) Delete(_ context.Context, tenantID string, id int64) (timeclock.Timesheet, error) {
	entry, ok := s.entries[id]
	if !ok || entry.TenantID != tenantID {
		return timeclock.Timesheet{}, timeclock.ErrEntryNotFound
	}
	delete(s.entries, id)
	return entry, nil
}

func (s *stubStore) List(_ context.Context, tenantID string, _ timeclock.Filter) ([]timeclock.Timesheet, int, error) {
	var out []timeclock.Timesheet
	for _, e := range s.entries {
		if e.TenantID == tenantID {
			out = append(out, e)
		}
	}
	return out, len(out), nil
}

func (s *stubStore) SummaryByEmployee(_ context.Context, _ string, _, _ time.Time) ([]timeclock.EmployeeSummary, error) {
	return s.summary, nil
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
	return NewHandler(svc, nil, nil, nil)
}

func doRequest(t *testing.T, fn http.HandlerFunc, method, target, body, timesheetID string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	ctx := middleware.WithUser(req.Context(), auth.UserContext{UserID: "admin-1", TenantID: "t1", RoleName: auth.RoleAdmin})
	if timesheetID != "" {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("timesheetID", timesheetID)
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	rr := httptest.NewRecorder()
	fn(rr, req.WithContext(ctx))

	var env envelope
	if strings.Contains(rr.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode response: %v (%s)", err, rr.Body.String())
		}
	}
	return rr, env
}

func seededStore() *stubStore {
	clockIn := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	clockOut := clockIn.Add(8 * time.Hour)
	hours := 8.0
	return &stubStore{
		entries: map[int64]timeclock.Timesheet{
			1: {ID: 1, TenantID: "t1", EmployeeID: 5, ClockIn: clockIn, ClockOut: &clockOut, TotalHours: &hours, WorkDate: "2026-03-10"},
		},
		summary: []timeclock.EmployeeSummary{
			{EmployeeID: 5, EmployeeName: "Anna Berg", TotalHours: 8, ShiftCount: 1},
		},
	}
}

func TestHandleUpdateRequiresReason(t *testing.T) {
	h := newTestHandler(seededStore())

	rr, env := doRequest(t, h.HandleUpdate, http.MethodPut, "/attendance/timesheets/1", `{"notes":"x"}`, "1")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 (%s)", rr.Code, rr.Body.String())
	}
	if env.Error == nil || env.Error.Code != "validation_error" {
		t.Errorf("error = %+v, want validation_error", env.Error)
	}
}

func TestHandleUpdate(t *testing.T) {
	store := seededStore()
	h := newTestHandler(store)

	body := `{"clockOut":"2026-03-10T19:00:00Z","reason":"forgot to clock out"}`
	rr, env := doRequest(t, h.HandleUpdate, http.MethodPut, "/attendance/timesheets/1", body, "1")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", rr.Code, rr.Body.String())
	}
	if env.Data["totalHours"] != float64(10) {
		t.Errorf("totalHours = %v, want 10", env.Data["totalHours"])
	}
	if env.Data["editReason"] != "forgot to clock out" {
		t.Errorf("editReason = %v", env.Data["editReason"])
	}
}

func TestHandleUpdateNotFound(t *testing.T) {
	h := newTestHandler(seededStore())

	rr, env := doRequest(t, h.HandleUpdate, http.MethodPut, "/attendance/timesheets/99", `{"reason":"fix"}`, "99")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
	if env.Error == nil || env.Error.Code != "not_found" {
		t.Errorf("error = %+v, want not_found", env.Error)
	}
}

func TestHandleDeleteRequiresReason(t *testing.T) {
	h := newTestHandler(seededStore())

	rr, env := doRequest(t, h.HandleDelete, http.MethodDelete, "/attendance/timesheets/1", `{"reason":" "}`, "1")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	if env.Error == nil || env.Error.Code != "validation_error" {
		t.Errorf("error = %+v, want validation_error", env.Error)
	}
}

func TestHandleDelete(t *testing.T) {
	store := seededStore()
	h := newTestHandler(store)

	rr, env := doRequest(t, h.HandleDelete, http.MethodDelete, "/attendance/timesheets/1", `{"reason":"duplicate"}`, "1")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", rr.Code, rr.Body.String())
	}
	if env.Data["deleted"] != true {
		t.Errorf("deleted = %v, want true", env.Data["deleted"])
	}
	if len(store.entries) != 0 {
		t.Error("entry should have been removed")
	}
}

func TestHandleListRejectsBadEmployeeID(t *testing.T) {
	h := newTestHandler(seededStore())

	rr, env := doRequest(t, h.HandleList, http.MethodGet, "/attendance/timesheets?employeeId=abc", "", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	if env.Error == nil || env.Error.Code != "validation_error" {
		t.Errorf("error = %+v, want validation_error", env.Error)
	}
}

func TestHandleSummaryRejectsInvertedRange(t *testing.T) {
	h := newTestHandler(seededStore())

	rr, _ := doRequest(t, h.HandleSummary, http.MethodGet, "/attendance/summary?from=2026-03-10&to=2026-03-01", "", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 (%s)", rr.Code, rr.Body.String())
	}
}

func TestHandleExportCSV(t *testing.T) {
	h := newTestHandler(seededStore())

	rr, _ := doRequest(t, h.HandleExport, http.MethodGet, "/attendance/export?from=2026-03-01&to=2026-03-31&format=csv", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", rr.Code, rr.Body.String())
	}
	if got := rr.Header().Get("Content-Type"); got != "text/csv" {
		t.Errorf("content type = %q, want text/csv", got)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "Employee ID,Employee,Shifts,Total Hours") {
		t.Errorf("missing header row: %q", body)
	}
	if !strings.Contains(body, "Anna Berg") {
		t.Errorf("missing summary row: %q", body)
	}
}

func TestHandleExportPDF(t *testing.T) {
	h := newTestHandler(seededStore())

	rr, _ := doRequest(t, h.HandleExport, http.MethodGet, "/attendance/export?from=2026-03-01&to=2026-03-31&format=pdf", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if got := rr.Header().Get("Content-Type"); got != "application/pdf" {
		t.Errorf("content type = %q, want application/pdf", got)
	}
	if !strings.HasPrefix(rr.Body.String(), "%PDF") {
		t.Error("body should start with a PDF header")
	}
}

func TestHandleExportRejectsUnknownFormat(t *testing.T) {
	h := newTestHandler(seededStore())

	rr, env := doRequest(t, h.HandleExport, http.MethodGet, "/attendance/export?from=2026-03-01&to=2026-03-31&format=xml", "", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	if env.Error == nil || env.Error.Code != "validation_error" {
		t.Errorf("error = %+v, want validation_error", env.Error)
	}
}
