package audithandler

import (
	"net/http"

	"stempel/internal/domain/audit"
	"stempel/internal/transport/http/api"
	"stempel/internal/transport/http/middleware"
	"stempel/internal/transport/http/shared"
)

type Handler struct {
	Audit *audit.Service
}

func NewHandler(svc *audit.Service) *Handler {
	return &Handler{Audit: svc}
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	query := r.URL.Query()
	filter := audit.Filter{
		Action:     query.Get("action"),
		EntityType: query.Get("entityType"),
		EntityID:   query.Get("entityId"),
		ActorID:    query.Get("actorId"),
	}
	includeDetails := query.Get("details") == "true"
	page := shared.ParsePagination(r, 50, 200)

	total, err := h.Audit.Count(r.Context(), user.TenantID, filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "internal_error", "failed to count audit events", requestID)
		return
	}

	events, err := h.Audit.List(r.Context(), user.TenantID, filter, includeDetails, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "internal_error", "failed to list audit events", requestID)
		return
	}
	if events == nil {
		events = []audit.Event{}
	}

	api.Success(w, map[string]any{
		"events": events,
		"total":  total,
		"limit":  page.Limit,
		"offset": page.Offset,
	}, requestID)
}
