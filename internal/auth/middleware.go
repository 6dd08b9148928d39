// Immotrack - Apartment Listing Tracker
// Copyright 2026 Immotrack Contributors
// SPDX-License-Identifier: MIT
// https://github.com/immotrack/immotrack

package auth

import (
	"context"
	"crypto/subtle"
	"net/http"
	"net/url"
	"time"

	json "github.com/goccy/go-json"

	"github.com/immotrack/immotrack/internal/models"
)

type contextKey string

const subjectContextKey contextKey = "auth_subject"

// Authenticator resolves the caller identity on every request.
// Credentials are checked in fixed order: session cookie first, then
// the X-API-Key header.
type Authenticator struct {
	codec  *SessionCodec
	apiKey string
}

func NewAuthenticator(codec *SessionCodec, apiKey string) *Authenticator {
	return &Authenticator{codec: codec, apiKey: apiKey}
}

// Subject returns the request's subject, or nil when unauthenticated.
func (a *Authenticator) Subject(r *http.Request) *AuthSubject {
	if subject, err := a.codec.ReadCookie(r); err == nil {
		return subject
	}
	if key := r.Header.Get("X-API-Key"); key != "" && a.apiKey != "" {
		if subtle.ConstantTimeCompare([]byte(key), []byte(a.apiKey)) == 1 {
			return APIKeySubject()
		}
	}
	return nil
}

// Authenticate stores the resolved subject in the request context.
// It never rejects; enforcement is left to RequireAuth and RequirePage
// so public routes can share the same chain.
func (a *Authenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if subject := a.Subject(r); subject != nil {
			r = r.WithContext(ContextWithSubject(r.Context(), subject))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth rejects unauthenticated API requests with a 401 envelope.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if SubjectFromContext(r.Context()) == nil {
			writeUnauthorized(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequirePage redirects unauthenticated browser requests to the login
// flow, preserving the requested path in ?next=.
func RequirePage(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if SubjectFromContext(r.Context()) == nil {
			target := "/auth/login?next=" + url.QueryEscape(r.URL.RequestURI())
			http.Redirect(w, r, target, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ContextWithSubject attaches the subject to the context.
func ContextWithSubject(ctx context.Context, subject *AuthSubject) context.Context {
	return context.WithValue(ctx, subjectContextKey, subject)
}

// SubjectFromContext returns the authenticated subject, or nil.
func SubjectFromContext(ctx context.Context) *AuthSubject {
	subject, _ := ctx.Value(subjectContextKey).(*AuthSubject)
	return subject
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(models.APIResponse{
		Status: "error",
		Error: &models.APIError{
			Code:    "UNAUTHORIZED",
			Message: "Authentication required",
		},
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
	})
}
