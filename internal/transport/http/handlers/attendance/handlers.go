package attendancehandler

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jung-kurt/gofpdf"

	"stempel/internal/domain/audit"
	"stempel/internal/domain/auth"
	"stempel/internal/domain/notifications"
	"stempel/internal/domain/timeclock"
	"stempel/internal/transport/http/api"
	"stempel/internal/transport/http/middleware"
	"stempel/internal/transport/http/shared"
)

type Handler struct {
	Timeclock *timeclock.Service
	Audit     *audit.Service
	Notify    *notifications.Service
	AuthStore *auth.Store
}

func NewHandler(tc *timeclock.Service, auditSvc *audit.Service, notify *notifications.Service, authStore *auth.Store) *Handler {
	return &Handler{Timeclock: tc, Audit: auditSvc, Notify: notify, AuthStore: authStore}
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	filter, ok := parseFilter(w, r, requestID)
	if !ok {
		return
	}
	page := shared.ParsePagination(r, 50, 200)
	filter.Limit = page.Limit
	filter.Offset = page.Offset

	entries, total, err := h.Timeclock.ListEntries(r.Context(), user.TenantID, filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "internal_error", "failed to list timesheets", requestID)
		return
	}
	if entries == nil {
		entries = []timeclock.Timesheet{}
	}
	api.Success(w, map[string]any{
		"timesheets": entries,
		"total":      total,
		"limit":      filter.Limit,
		"offset":     filter.Offset,
	}, requestID)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	id, ok := parseID(w, r, requestID)
	if !ok {
		return
	}

	entry, err := h.Timeclock.GetEntry(r.Context(), user.TenantID, id)
	if err != nil {
		writeAttendanceError(w, err, requestID)
		return
	}
	api.Success(w, entry, requestID)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	id, ok := parseID(w, r, requestID)
	if !ok {
		return
	}

	var payload timeclock.EditInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	before, err := h.Timeclock.GetEntry(r.Context(), user.TenantID, id)
	if err != nil {
		writeAttendanceError(w, err, requestID)
		return
	}

	updated, err := h.Timeclock.EditEntry(r.Context(), user.TenantID, id, user.UserID, payload)
	if err != nil {
		writeAttendanceError(w, err, requestID)
		return
	}

	h.record(r, user, audit.ActionEntryEdited, id, before, updated)
	h.notifyManagers(r, user, notifications.TypeEntryEdited,
		"Timesheet corrected",
		fmt.Sprintf("Entry %d for employee %d was corrected: %s", id, updated.EmployeeID, payload.Reason))

	api.Success(w, updated, requestID)
}

type deleteRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	id, ok := parseID(w, r, requestID)
	if !ok {
		return
	}

	var payload deleteRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	removed, err := h.Timeclock.DeleteEntry(r.Context(), user.TenantID, id, payload.Reason)
	if err != nil {
		writeAttendanceError(w, err, requestID)
		return
	}

	h.record(r, user, audit.ActionEntryDeleted, id, removed, map[string]string{"reason": payload.Reason})
	h.notifyManagers(r, user, notifications.TypeEntryDeleted,
		"Timesheet entry removed",
		fmt.Sprintf("Entry %d for employee %d was removed: %s", id, removed.EmployeeID, payload.Reason))

	api.Success(w, map[string]any{"deleted": true, "entry": removed}, requestID)
}

func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	from, to, ok := parseRange(w, r, requestID)
	if !ok {
		return
	}

	summary, err := h.Timeclock.Summary(r.Context(), user.TenantID, from, to)
	if err != nil {
		writeAttendanceError(w, err, requestID)
		return
	}
	if summary == nil {
		summary = []timeclock.EmployeeSummary{}
	}
	api.Success(w, map[string]any{
		"from":    from.Format("2006-01-02"),
		"to":      to.Format("2006-01-02"),
		"summary": summary,
	}, requestID)
}

func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	from, to, ok := parseRange(w, r, requestID)
	if !ok {
		return
	}

	summary, err := h.Timeclock.Summary(r.Context(), user.TenantID, from, to)
	if err != nil {
		writeAttendanceError(w, err, requestID)
		return
	}

	switch r.URL.Query().Get("format") {
	case "pdf":
		h.exportPDF(w, requestID, from, to, summary)
	case "", "csv":
		h.exportCSV(w, requestID, from, to, summary)
	default:
		api.Fail(w, http.StatusBadRequest, "validation_error", "format must be csv or pdf", requestID)
	}
}

func (h *Handler) exportCSV(w http.ResponseWriter, requestID string, from, to time.Time, summary []timeclock.EmployeeSummary) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=attendance_%s_%s.csv", from.Format("2006-01-02"), to.Format("2006-01-02")))

	writer := csv.NewWriter(w)
	_ = writer.Write([]string{"Employee ID", "Employee", "Shifts", "Total Hours"})
	for _, row := range summary {
		_ = writer.Write([]string{
			strconv.FormatInt(row.EmployeeID, 10),
			row.EmployeeName,
			strconv.Itoa(row.ShiftCount),
			fmt.Sprintf("%.2f", row.TotalHours),
		})
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		slog.Warn("csv export write failed", "requestId", requestID, "err", err)
	}
}

func (h *Handler) exportPDF(w http.ResponseWriter, requestID string, from, to time.Time, summary []timeclock.EmployeeSummary) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Attendance Report")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s to %s", from.Format("2006-01-02"), to.Format("2006-01-02")))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(80, 8, "Employee", "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 8, "Shifts", "1", 0, "R", false, 0, "")
	pdf.CellFormat(40, 8, "Total Hours", "1", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	var totalHours float64
	for _, row := range summary {
		pdf.CellFormat(80, 8, row.EmployeeName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 8, strconv.Itoa(row.ShiftCount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 8, fmt.Sprintf("%.2f", row.TotalHours), "1", 1, "R", false, 0, "")
		totalHours += row.TotalHours
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(110, 8, "Total", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 8, fmt.Sprintf("%.2f", totalHours), "1", 1, "R", false, 0, "")

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=attendance_%s_%s.pdf", from.Format("2006-01-02"), to.Format("2006-01-02")))
	if err := pdf.Output(w); err != nil {
		slog.Warn("pdf export write failed", "requestId", requestID, "err", err)
	}
}

func (h *Handler) HandleGetSettings(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	settings, err := h.Timeclock.Settings(r.Context(), user.TenantID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "internal_error", "failed to load settings", requestID)
		return
	}
	api.Success(w, settings, requestID)
}

func (h *Handler) HandleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload timeclock.SettingsInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	before, err := h.Timeclock.Settings(r.Context(), user.TenantID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "internal_error", "failed to load settings", requestID)
		return
	}

	updated, err := h.Timeclock.UpdateSettings(r.Context(), user.TenantID, payload)
	if err != nil {
		writeAttendanceError(w, err, requestID)
		return
	}

	h.record(r, user, audit.ActionSettingsSaved, 0, before, updated)
	api.Success(w, updated, requestID)
}

func (h *Handler) record(r *http.Request, user auth.UserContext, action string, entityID int64, before, after any) {
	if h.Audit == nil {
		return
	}
	id := ""
	if entityID != 0 {
		id = strconv.FormatInt(entityID, 10)
	}
	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, action, "timesheet", id,
		middleware.GetRequestID(r.Context()), middleware.ClientIPKey(r), before, after); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}

func (h *Handler) notifyManagers(r *http.Request, user auth.UserContext, ntype, title, body string) {
	if h.Notify == nil || h.AuthStore == nil {
		return
	}
	managers, err := h.AuthStore.ManagerUserIDs(r.Context(), user.TenantID)
	if err != nil {
		slog.Warn("manager lookup failed", "err", err)
		return
	}
	h.Notify.NotifyAll(r.Context(), user.TenantID, managers, ntype, title, body)
}

func parseID(w http.ResponseWriter, r *http.Request, requestID string) (int64, bool) {
	raw := chi.URLParam(r, "timesheetID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		api.Fail(w, http.StatusBadRequest, "validation_error", "timesheet id must be a positive integer", requestID)
		return 0, false
	}
	return id, true
}

func parseFilter(w http.ResponseWriter, r *http.Request, requestID string) (timeclock.Filter, bool) {
	var filter timeclock.Filter
	v := shared.NewValidator()
	query := r.URL.Query()

	if raw := query.Get("employeeId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			v.Add("employeeId", "must be a positive integer")
		} else {
			filter.EmployeeID = &id
		}
	}
	if raw := query.Get("from"); raw != "" {
		if from, ok := v.Date("from", raw); ok {
			filter.From = &from
		}
	}
	if raw := query.Get("to"); raw != "" {
		if to, ok := v.Date("to", raw); ok {
			// inclusive end of day
			end := to.AddDate(0, 0, 1)
			filter.To = &end
		}
	}
	if raw := query.Get("status"); raw != "" {
		switch raw {
		case "open":
			filter.OpenOnly = true
		case "all":
		default:
			v.Add("status", "must be open or all")
		}
	}

	if v.Reject(w, requestID) {
		return timeclock.Filter{}, false
	}
	return filter, true
}

func parseRange(w http.ResponseWriter, r *http.Request, requestID string) (time.Time, time.Time, bool) {
	v := shared.NewValidator()
	from, fromOK := v.Date("from", r.URL.Query().Get("from"))
	to, toOK := v.Date("to", r.URL.Query().Get("to"))
	if fromOK && toOK {
		v.DateOrder("from", from, "to", to)
	}
	if v.Reject(w, requestID) {
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

func writeAttendanceError(w http.ResponseWriter, err error, requestID string) {
	switch {
	case errors.Is(err, timeclock.ErrEntryNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "timesheet entry not found", requestID)
	case errors.Is(err, timeclock.ErrValidation):
		api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, "internal_error", "request failed", requestID)
	}
}
