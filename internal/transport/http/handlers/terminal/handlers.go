package terminalhandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"stempel/internal/domain/audit"
	"stempel/internal/domain/timeclock"
	"stempel/internal/platform/metrics"
	"stempel/internal/transport/http/api"
	"stempel/internal/transport/http/middleware"
)

type Handler struct {
	Timeclock *timeclock.Service
	Audit     *audit.Service
	Metrics   *metrics.Collector
}

func NewHandler(tc *timeclock.Service, auditSvc *audit.Service, collector *metrics.Collector) *Handler {
	return &Handler{Timeclock: tc, Audit: auditSvc, Metrics: collector}
}

type pinRequest struct {
	PIN string `json:"pin"`
}

func (h *Handler) HandleClockIn(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload pinRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	result, err := h.Timeclock.ClockIn(r.Context(), user.TenantID, payload.PIN)
	if err != nil {
		writeTerminalError(w, err, requestID)
		return
	}

	if h.Metrics != nil {
		h.Metrics.RecordClockIn()
	}
	h.record(r, user.TenantID, audit.ActionClockIn, result.Timesheet.ID, result.AutoClosed, result.Timesheet)

	api.Created(w, result, requestID)
}

func (h *Handler) HandleClockOut(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload pinRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	result, err := h.Timeclock.ClockOut(r.Context(), user.TenantID, payload.PIN)
	if err != nil {
		writeTerminalError(w, err, requestID)
		return
	}

	if h.Metrics != nil {
		h.Metrics.RecordClockOut()
	}
	h.record(r, user.TenantID, audit.ActionClockOut, result.Timesheet.ID, nil, result.Timesheet)

	api.Success(w, result, requestID)
}

func (h *Handler) HandleActive(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	shifts, err := h.Timeclock.Active(r.Context(), user.TenantID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "internal_error", "failed to load active shifts", requestID)
		return
	}
	if shifts == nil {
		shifts = []timeclock.ActiveShift{}
	}
	api.Success(w, map[string]any{"active": shifts, "count": len(shifts)}, requestID)
}

func (h *Handler) record(r *http.Request, tenantID, action string, entityID int64, before, after any) {
	if h.Audit == nil {
		return
	}
	// terminal actions are performed by the employee at the kiosk, not
	// by the logged-in device account, so actorID stays empty
	if err := h.Audit.Record(r.Context(), tenantID, "", action, "timesheet",
		strconv.FormatInt(entityID, 10), middleware.GetRequestID(r.Context()),
		middleware.ClientIPKey(r), before, after); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}

func writeTerminalError(w http.ResponseWriter, err error, requestID string) {
	switch {
	case errors.Is(err, timeclock.ErrInvalidPIN):
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "no active employee matches that pin", requestID)
	case errors.Is(err, timeclock.ErrAlreadyClockedIn):
		api.Fail(w, http.StatusConflict, "already_clocked_in", "employee already has an open shift", requestID)
	case errors.Is(err, timeclock.ErrNoOpenShift):
		api.Fail(w, http.StatusConflict, "no_open_shift", "employee has no open shift to close", requestID)
	case errors.Is(err, timeclock.ErrValidation):
		api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, "internal_error", "request failed", requestID)
	}
}
