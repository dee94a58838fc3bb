package httpx

import (
	"encoding/base64"
	"log/slog"
	"net/http"
	"strings"

	"github.com/deskops/console-api/internal/service"
)

// OidcHandlers provides the three legs of the federated login protocol: the
// client begins a flow, the user's browser lands on the callback, and the
// client polls for the outcome.
type OidcHandlers struct {
	Core *service.Core
	// BaseURL, when set, overrides request-derived callback URLs. Useful
	// behind proxies that do not forward the original host.
	BaseURL string
	Logger  *slog.Logger
}

func (h *OidcHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// OidcAuthRequest is the flow initiation payload: the chosen provider, the
// client's peer id, and its base64-encoded device uuid.
type OidcAuthRequest struct {
	Op   string `json:"op"`
	ID   string `json:"id"`
	UUID string `json:"uuid"`
}

// OidcAuthURL is the flow initiation response. Initiation failures are
// reported in-band with an empty url rather than an HTTP error, because old
// clients only look at the body.
type OidcAuthURL struct {
	URL  string `json:"url"`
	Code string `json:"code"`
}

// OidcUserPayload mirrors the user block of a completed federated login.
type OidcUserPayload struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Admin         bool   `json:"is_admin"`
	ThirdAuthType string `json:"third_auth_type"`
}

// OidcResponse is the successful auth-query payload.
type OidcResponse struct {
	AccessToken string          `json:"access_token"`
	Type        string          `json:"type"`
	User        OidcUserPayload `json:"user"`
}

// Auth begins a federated login flow and returns the provider authorization
// URL plus the opaque code the client polls with.
// POST /api/oidc/auth.
func (h *OidcHandlers) Auth(w http.ResponseWriter, r *http.Request) {
	var req OidcAuthRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	uuidBytes, err := base64.StdEncoding.DecodeString(req.UUID)
	if err != nil {
		WriteJSON(w, http.StatusOK, OidcAuthURL{URL: "", Code: "UUID_ERROR"})
		return
	}
	clientUUID := string(uuidBytes)

	callbackURL := h.callbackURL(r)
	op := strings.ToLower(req.Op)

	result, err := h.Core.BeginOidc(req.ID, clientUUID, op, callbackURL)
	if err != nil {
		h.logger().DebugContext(r.Context(), "oidc flow rejected", "op", op, "error", err)
		WriteJSON(w, http.StatusOK, OidcAuthURL{URL: "", Code: ""})
		return
	}

	WriteJSON(w, http.StatusOK, OidcAuthURL{URL: result.RedirectURL, Code: result.FlowID})
}

// Callback is the provider redirect leg. The browser lands here; the body is
// plain text because it is only ever read by a human.
// GET /api/oidc/callback?code=...&state=...
func (h *OidcHandlers) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	flowID := r.URL.Query().Get("state")

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if code == "" || !h.Core.OidcCallback(r.Context(), flowID, code) {
		_, _ = w.Write([]byte("ERROR"))
		return
	}
	_, _ = w.Write([]byte("OK"))
}

// AuthQuery is the polling leg: the client asks whether its flow completed.
// A pending, dead, or unknown flow yields a JSON null body; a completed flow
// yields the issued token exactly once.
// GET /api/oidc/auth-query?code=...&id=...&uuid=...
func (h *OidcHandlers) AuthQuery(w http.ResponseWriter, r *http.Request) {
	flowID := r.URL.Query().Get("code")

	result, ok := h.Core.PollOidc(r.Context(), flowID)
	if !ok {
		WriteJSON(w, http.StatusOK, nil)
		return
	}

	WriteJSON(w, http.StatusOK, OidcResponse{
		AccessToken: result.Token.String(),
		Type:        "access_token",
		User: OidcUserPayload{
			Name:          result.User.Name,
			Email:         result.User.Email,
			Admin:         result.User.Admin,
			ThirdAuthType: "Oauth2",
		},
	})
}

// callbackURL derives the absolute callback endpoint the provider redirects
// to. A configured base URL wins; otherwise the URL is rebuilt from the
// inbound request, trusting X-Forwarded-Proto when a proxy sets it.
func (h *OidcHandlers) callbackURL(r *http.Request) string {
	base := strings.TrimSuffix(h.BaseURL, "/")
	if base == "" {
		scheme := "http"
		if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
			scheme = "https"
		}
		base = scheme + "://" + r.Host
	}
	return base + "/api/oidc/callback"
}
