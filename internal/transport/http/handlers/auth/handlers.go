package authhandler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"stempel/internal/domain/audit"
	"stempel/internal/domain/auth"
	"stempel/internal/transport/http/api"
	"stempel/internal/transport/http/middleware"
)

const tokenTTL = 8 * time.Hour

// UserStore is the slice of the auth store the login flow needs.
type UserStore interface {
	FindActiveUserByEmail(ctx context.Context, email, status string) (auth.AuthUser, error)
	UpdateLastLogin(ctx context.Context, userID string) error
}

type Handler struct {
	Store  UserStore
	Audit  *audit.Service
	Secret string
}

func NewHandler(store UserStore, auditSvc *audit.Service, secret string) *Handler {
	return &Handler{Store: store, Audit: auditSvc, Secret: secret}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	payload.Email = strings.TrimSpace(strings.ToLower(payload.Email))

	user, err := h.Store.FindActiveUserByEmail(r.Context(), payload.Email, auth.StatusActive)
	if err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", requestID)
		return
	}
	if err := auth.CheckPassword(user.Password, payload.Password); err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", requestID)
		return
	}

	token, err := auth.GenerateToken(h.Secret, auth.Claims{
		UserID:   user.ID,
		TenantID: user.TenantID,
		RoleID:   user.RoleID,
		RoleName: user.RoleName,
	}, tokenTTL)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", requestID)
		return
	}

	if err := h.Store.UpdateLastLogin(r.Context(), user.ID); err != nil {
		slog.Warn("last login update failed", "userId", user.ID, "err", err)
	}
	if h.Audit != nil {
		if err := h.Audit.Record(r.Context(), user.TenantID, user.ID, audit.ActionLogin, "user", user.ID,
			requestID, middleware.ClientIPKey(r), nil, map[string]string{"email": payload.Email}); err != nil {
			slog.Warn("audit record failed", "action", audit.ActionLogin, "err", err)
		}
	}

	api.Success(w, map[string]any{
		"token": token,
		"user": map[string]string{
			"id":       user.ID,
			"tenantId": user.TenantID,
			"role":     user.RoleName,
		},
	}, requestID)
}

// HandleLogout exists so clients have a uniform call to end a session.
// Tokens are stateless; the client discards its copy.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	api.Success(w, map[string]string{"status": "logged_out"}, middleware.GetRequestID(r.Context()))
}
