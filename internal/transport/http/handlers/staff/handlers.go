package staffhandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"stempel/internal/domain/audit"
	"stempel/internal/domain/staff"
	"stempel/internal/transport/http/api"
	"stempel/internal/transport/http/middleware"
)

type Handler struct {
	Staff *staff.Service
	Audit *audit.Service
}

func NewHandler(svc *staff.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Staff: svc, Audit: auditSvc}
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	includeInactive := r.URL.Query().Get("includeInactive") == "true"
	employees, err := h.Staff.List(r.Context(), user.TenantID, includeInactive)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "internal_error", "failed to list employees", requestID)
		return
	}
	if employees == nil {
		employees = []staff.Employee{}
	}
	api.Success(w, map[string]any{"employees": employees}, requestID)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload staff.CreateEmployeeInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	employee, err := h.Staff.Create(r.Context(), user.TenantID, payload)
	if err != nil {
		writeStaffError(w, err, requestID)
		return
	}

	h.record(r, user.TenantID, user.UserID, "employee.created", employee.ID, nil, employee)
	api.Created(w, employee, requestID)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	id, ok := parseEmployeeID(w, r, requestID)
	if !ok {
		return
	}

	var payload staff.UpdateEmployeeInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	before, err := h.Staff.Get(r.Context(), user.TenantID, id)
	if err != nil {
		writeStaffError(w, err, requestID)
		return
	}

	employee, err := h.Staff.Update(r.Context(), user.TenantID, id, payload)
	if err != nil {
		writeStaffError(w, err, requestID)
		return
	}

	h.record(r, user.TenantID, user.UserID, "employee.updated", id, before, employee)
	api.Success(w, employee, requestID)
}

func (h *Handler) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	id, ok := parseEmployeeID(w, r, requestID)
	if !ok {
		return
	}

	if err := h.Staff.Deactivate(r.Context(), user.TenantID, id); err != nil {
		writeStaffError(w, err, requestID)
		return
	}

	h.record(r, user.TenantID, user.UserID, "employee.deactivated", id, nil, nil)
	api.Success(w, map[string]any{"deactivated": true}, requestID)
}

func (h *Handler) record(r *http.Request, tenantID, actorID, action string, entityID int64, before, after any) {
	if h.Audit == nil {
		return
	}
	if err := h.Audit.Record(r.Context(), tenantID, actorID, action, "employee",
		strconv.FormatInt(entityID, 10), middleware.GetRequestID(r.Context()),
		middleware.ClientIPKey(r), before, after); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}

func parseEmployeeID(w http.ResponseWriter, r *http.Request, requestID string) (int64, bool) {
	raw := chi.URLParam(r, "employeeID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		api.Fail(w, http.StatusBadRequest, "validation_error", "employee id must be a positive integer", requestID)
		return 0, false
	}
	return id, true
}

func writeStaffError(w http.ResponseWriter, err error, requestID string) {
	switch {
	case errors.Is(err, staff.ErrEmployeeNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", requestID)
	case errors.Is(err, staff.ErrPinTaken):
		api.Fail(w, http.StatusConflict, "pin_taken", "pin is already assigned to an active employee", requestID)
	case errors.Is(err, staff.ErrValidation):
		api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, "internal_error", "request failed", requestID)
	}
}
