// Immotrack - Apartment Listing Tracker
// Copyright 2026 Immotrack Contributors
// SPDX-License-Identifier: MIT
// https://github.com/immotrack/immotrack

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthenticator() *Authenticator {
	return NewAuthenticator(newTestCodec(), "test-api-key")
}

func protectedProbe(a *Authenticator) http.Handler {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject := SubjectFromContext(r.Context())
		w.Header().Set("X-Method", subject.Method)
		w.WriteHeader(http.StatusOK)
	})
	return a.Authenticate(RequireAuth(inner))
}

func TestAuthenticateWithSessionCookie(t *testing.T) {
	a := newTestAuthenticator()
	cookie, err := a.codec.MakeCookie(&AuthSubject{Subject: "user-123", IssuedAt: time.Now()})
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/api/annonces/1", nil)
	r.AddCookie(cookie)
	w := httptest.NewRecorder()
	protectedProbe(a).ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, MethodSession, w.Header().Get("X-Method"))
}

func TestAuthenticateWithAPIKey(t *testing.T) {
	a := newTestAuthenticator()

	r := httptest.NewRequest(http.MethodPost, "/api/annonces", nil)
	r.Header.Set("X-API-Key", "test-api-key")
	w := httptest.NewRecorder()
	protectedProbe(a).ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, MethodAPIKey, w.Header().Get("X-Method"))
}

func TestAuthenticateSessionWinsOverAPIKey(t *testing.T) {
	a := newTestAuthenticator()
	cookie, err := a.codec.MakeCookie(&AuthSubject{Subject: "user-123", IssuedAt: time.Now()})
	require.NoError(t, err)

	// Valid cookie and valid key on the same request: the session wins
	r := httptest.NewRequest(http.MethodGet, "/api/annonces/1", nil)
	r.AddCookie(cookie)
	r.Header.Set("X-API-Key", "test-api-key")
	w := httptest.NewRecorder()
	protectedProbe(a).ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, MethodSession, w.Header().Get("X-Method"))

	// A bad key next to a valid cookie is irrelevant
	r = httptest.NewRequest(http.MethodGet, "/api/annonces/1", nil)
	r.AddCookie(cookie)
	r.Header.Set("X-API-Key", "wrong")
	w = httptest.NewRecorder()
	protectedProbe(a).ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, MethodSession, w.Header().Get("X-Method"))
}

func TestRequireAuthRejectsAnonymous(t *testing.T) {
	a := newTestAuthenticator()

	r := httptest.NewRequest(http.MethodPost, "/api/annonces", nil)
	w := httptest.NewRecorder()
	protectedProbe(a).ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
}

func TestRequireAuthRejectsWrongAPIKey(t *testing.T) {
	a := newTestAuthenticator()

	r := httptest.NewRequest(http.MethodDelete, "/api/annonces/1", nil)
	r.Header.Set("X-API-Key", "wrong")
	w := httptest.NewRecorder()
	protectedProbe(a).ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequirePageRedirectsToLogin(t *testing.T) {
	a := newTestAuthenticator()
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r := httptest.NewRequest(http.MethodGet, "/annonces/42?tab=photos", nil)
	w := httptest.NewRecorder()
	a.Authenticate(RequirePage(inner)).ServeHTTP(w, r)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login?next=%2Fannonces%2F42%3Ftab%3Dphotos", w.Header().Get("Location"))
}

func TestSanitizeRedirect(t *testing.T) {
	tests := []struct {
		next string
		want string
	}{
		{"", "/"},
		{"/annonces/3", "/annonces/3"},
		{"https://evil.example.com", "/"},
		{"//evil.example.com", "/"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeRedirect(tt.next), tt.next)
	}
}

func TestStateStoreSingleUse(t *testing.T) {
	store := NewMemoryStateStore()
	store.Store("abc", &StateData{
		PostLoginRedirect: "/annonces",
		CreatedAt:         time.Now(),
		ExpiresAt:         time.Now().Add(time.Minute),
	})

	state, err := store.Consume("abc")
	require.NoError(t, err)
	assert.Equal(t, "/annonces", state.PostLoginRedirect)

	_, err = store.Consume("abc")
	assert.ErrorIs(t, err, ErrStateNotFound)
}

func TestStateStoreExpiry(t *testing.T) {
	store := NewMemoryStateStore()
	store.Store("old", &StateData{
		CreatedAt: time.Now().Add(-time.Hour),
		ExpiresAt: time.Now().Add(-time.Minute),
	})

	_, err := store.Consume("old")
	assert.ErrorIs(t, err, ErrStateExpired)

	store.Store("old2", &StateData{ExpiresAt: time.Now().Add(-time.Minute)})
	assert.Equal(t, 1, store.CleanupExpired())
}
