package notificationshandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"stempel/internal/domain/notifications"
	"stempel/internal/transport/http/api"
	"stempel/internal/transport/http/middleware"
	"stempel/internal/transport/http/shared"
)

type Handler struct {
	Notify *notifications.Service
}

func NewHandler(svc *notifications.Service) *Handler {
	return &Handler{Notify: svc}
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	page := shared.ParsePagination(r, 20, 100)
	items, err := h.Notify.List(r.Context(), user.TenantID, user.UserID, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "internal_error", "failed to list notifications", requestID)
		return
	}
	if items == nil {
		items = []notifications.Notification{}
	}

	unread, err := h.Notify.UnreadCount(r.Context(), user.TenantID, user.UserID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "internal_error", "failed to count notifications", requestID)
		return
	}

	api.Success(w, map[string]any{"notifications": items, "unread": unread}, requestID)
}

func (h *Handler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	id := chi.URLParam(r, "notificationID")
	if id == "" {
		api.Fail(w, http.StatusBadRequest, "validation_error", "notification id is required", requestID)
		return
	}

	if err := h.Notify.MarkRead(r.Context(), user.TenantID, user.UserID, id); err != nil {
		api.Fail(w, http.StatusInternalServerError, "internal_error", "failed to mark notification read", requestID)
		return
	}
	api.Success(w, map[string]any{"read": true}, requestID)
}
