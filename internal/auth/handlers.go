// Immotrack - Apartment Listing Tracker
// Copyright 2026 Immotrack Contributors
// SPDX-License-Identifier: MIT
// https://github.com/immotrack/immotrack

package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"

	"github.com/immotrack/immotrack/internal/logging"
	"github.com/immotrack/immotrack/internal/models"
)

// Handlers serves the browser-facing login endpoints.
type Handlers struct {
	flow  *Flow
	codec *SessionCodec
}

func NewHandlers(flow *Flow, codec *SessionCodec) *Handlers {
	return &Handlers{flow: flow, codec: codec}
}

// Mount registers the /auth routes on the router.
func (h *Handlers) Mount(r chi.Router) {
	r.Get("/auth/login", h.Login)
	r.Get("/auth/callback", h.Callback)
	r.Get("/auth/logout", h.Logout)
	r.Get("/auth/me", h.Me)
}

// Login redirects the browser to the identity provider. An optional
// ?next= parameter records where to land after the callback.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	next := sanitizeRedirect(r.URL.Query().Get("next"))

	authURL, err := h.flow.AuthorizationURL(next)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to build authorization URL")
		http.Redirect(w, r, "/?error=login_failed", http.StatusFound)
		return
	}
	http.Redirect(w, r, authURL, http.StatusFound)
}

// Callback completes the code exchange and sets the session cookie.
func (h *Handlers) Callback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	code := query.Get("code")
	state := query.Get("state")
	if code == "" || state == "" {
		http.Redirect(w, r, "/?error=invalid_callback", http.StatusFound)
		return
	}

	subject, next, err := h.flow.HandleCallback(r.Context(), code, state)
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("OIDC callback rejected")
		http.Redirect(w, r, "/?error=login_failed", http.StatusFound)
		return
	}

	cookie, err := h.codec.MakeCookie(subject)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to create session cookie")
		http.Redirect(w, r, "/?error=login_failed", http.StatusFound)
		return
	}
	http.SetCookie(w, cookie)

	if next == "" {
		next = "/"
	}
	http.Redirect(w, r, next, http.StatusFound)
}

// Logout clears the session cookie. When the provider supports
// RP-initiated logout the browser is sent there, otherwise home.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.codec.ClearCookie())

	if endSession := h.flow.EndSessionURL(); endSession != "" {
		http.Redirect(w, r, endSession, http.StatusFound)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// Me returns the current subject, or 401 when unauthenticated.
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	subject := SubjectFromContext(r.Context())
	if subject == nil {
		writeUnauthorized(w)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(models.APIResponse{
		Status:   "success",
		Data:     subject,
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
	})
}

// sanitizeRedirect keeps post-login targets local to this app so the
// next parameter cannot be abused as an open redirect.
func sanitizeRedirect(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return "/"
	}
	return next
}
