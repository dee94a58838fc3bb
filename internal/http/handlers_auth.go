package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	domainauth "github.com/deskops/console-api/internal/domain/auth"
	"github.com/deskops/console-api/internal/service"
)

// AuthHandlers provides HTTP handlers for password login, session
// introspection, and logout. The wire shapes match what the desktop client
// expects: a login response carries type "access_token" plus the token and
// a user summary.
type AuthHandlers struct {
	Core   *service.Core
	Logger *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// LoginRequest is the password login payload. The client sends its peer id
// and device uuid alongside the credentials; they are accepted but sessions
// are keyed by token, not device.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	ID       string `json:"id"`
	UUID     string `json:"uuid"`
}

// LoginReply is the successful login response.
type LoginReply struct {
	Type        string              `json:"type"`
	User        domainauth.UserView `json:"user"`
	AccessToken domainauth.Token    `json:"access_token"`
}

// Login handles password login.
// POST /api/login.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	user, token, err := h.Core.Authenticate(r.Context(), req.Username, req.Password, false)
	if err != nil {
		h.logger().DebugContext(r.Context(), "login rejected", "username", req.Username)
		WriteAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, LoginReply{
		Type:        "access_token",
		User:        user,
		AccessToken: token,
	})
}

// Logout revokes the caller's session.
// POST /api/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	identity, ok := GetIdentityFromContext(r.Context())
	if !ok {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errors.New("authentication required"),
		})
		return
	}

	if err := h.Core.Logout(identity); err != nil {
		WriteAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"data": "ok"})
}

// CurrentUserReply is the session introspection response: the user view
// flattened next to an error flag.
type CurrentUserReply struct {
	Error bool   `json:"error"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Admin bool   `json:"is_admin"`
}

// CurrentUser returns the summary of the authenticated caller.
// POST /api/currentUser.
func (h *AuthHandlers) CurrentUser(w http.ResponseWriter, r *http.Request) {
	identity, ok := GetIdentityFromContext(r.Context())
	if !ok {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errors.New("authentication required"),
		})
		return
	}

	user, ok := h.Core.UserSummary(identity.UserID)
	if !ok {
		// The session resolved but the summary is gone; treat as revoked.
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errors.New("authentication required"),
		})
		return
	}

	WriteJSON(w, http.StatusOK, CurrentUserReply{
		Error: false,
		Name:  user.Name,
		Email: user.Email,
		Admin: user.Admin,
	})
}

// LoginOptions lists the configured federation providers so the client can
// render its login menu.
// GET /api/login-options.
func (h *AuthHandlers) LoginOptions(w http.ResponseWriter, r *http.Request) {
	names := h.Core.ProviderNames()
	options := make([]string, 0, len(names))
	for _, name := range names {
		options = append(options, "oidc/"+name)
	}
	WriteJSON(w, http.StatusOK, options)
}

// ChangePasswordRequest carries a password rotation for the calling user.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// ChangePassword rotates the caller's password after verifying the old one.
// PUT /api/user.
func (h *AuthHandlers) ChangePassword(w http.ResponseWriter, r *http.Request) {
	identity, ok := GetIdentityFromContext(r.Context())
	if !ok {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errors.New("authentication required"),
		})
		return
	}

	var req ChangePasswordRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	if err := h.Core.ChangePassword(r.Context(), identity.UserID, req.OldPassword, req.NewPassword); err != nil {
		WriteAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"data": "ok"})
}
