// Immotrack - Apartment Listing Tracker
// Copyright 2026 Immotrack Contributors
// SPDX-License-Identifier: MIT
// https://github.com/immotrack/immotrack

package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/immotrack/immotrack/internal/auth"
	"github.com/immotrack/immotrack/internal/config"
	"github.com/immotrack/immotrack/internal/database"
	"github.com/immotrack/immotrack/internal/models"
	"github.com/immotrack/immotrack/internal/scoring"
	"github.com/immotrack/immotrack/internal/scraper"
)

const testAPIKey = "test-api-key"

type envelope struct {
	Status   string           `json:"status"`
	Data     json.RawMessage  `json:"data"`
	Metadata models.Metadata  `json:"metadata"`
	Error    *models.APIError `json:"error"`
}

func newTestRouter(t *testing.T) chi.Router {
	t.Helper()

	db, err := database.NewInMemory()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})

	cfg := &config.Config{
		Security: config.SecurityConfig{
			APIKey:            testAPIKey,
			SessionSecret:     "0123456789abcdef0123456789abcdef",
			SessionMaxAge:     24 * time.Hour,
			CookieName:        "immotrack_session",
			RateLimitDisabled: true,
			CORSOrigins:       []string{"*"},
		},
		API: config.APIConfig{
			DefaultPageSize: 50,
			MaxPageSize:     200,
		},
		Scraper: config.ScraperConfig{
			Timeout:   5 * time.Second,
			UserAgent: "test-agent",
		},
	}

	codec := auth.NewSessionCodec([]byte(cfg.Security.SessionSecret), cfg.Security.CookieName, cfg.Security.SessionMaxAge, false)
	authenticator := auth.NewAuthenticator(codec, cfg.Security.APIKey)
	handler := NewHandler(db, cfg, scoring.NewEngine(), scraper.New(&cfg.Scraper))

	return NewRouter(handler, authenticator, auth.NewHandlers(nil, codec), cfg).Setup()
}

func doRequest(t *testing.T, router chi.Router, method, path string, body interface{}, authenticated bool) (*httptest.ResponseRecorder, *envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	r := httptest.NewRequest(method, path, &buf)
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if authenticated {
		r.Header.Set("X-API-Key", testAPIKey)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, &env
}

func createListing(t *testing.T, router chi.Router, body map[string]interface{}) models.Annonce {
	t.Helper()
	w, env := doRequest(t, router, http.MethodPost, "/api/annonces", body, true)
	require.Contains(t, []int{http.StatusCreated, http.StatusOK}, w.Code, w.Body.String())

	var annonce models.Annonce
	require.NoError(t, json.Unmarshal(env.Data, &annonce))
	return annonce
}

func TestCreateAnnonce(t *testing.T) {
	router := newTestRouter(t)

	w, env := doRequest(t, router, http.MethodPost, "/api/annonces", map[string]interface{}{
		"title":   "Studio Castellane",
		"price":   650,
		"surface": 25,
	}, true)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "success", env.Status)

	var annonce models.Annonce
	require.NoError(t, json.Unmarshal(env.Data, &annonce))
	assert.Equal(t, int64(1), annonce.ID)
	assert.Equal(t, "Studio Castellane", annonce.Title)
	assert.Equal(t, models.StatusNew, annonce.Status)
	require.NotNil(t, annonce.Price)
	assert.Equal(t, 650.0, *annonce.Price)
	assert.Greater(t, annonce.Score, 0.0)
}

func TestCreateUpsertReturns200(t *testing.T) {
	router := newTestRouter(t)

	first := createListing(t, router, map[string]interface{}{
		"title": "T2 Vauban",
		"url":   "https://www.seloger.com/annonces/456",
		"price": 900,
	})

	w, env := doRequest(t, router, http.MethodPost, "/api/annonces", map[string]interface{}{
		"title": "T2 Vauban",
		"url":   "https://www.seloger.com/annonces/456",
		"price": 850,
	}, true)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var second models.Annonce
	require.NoError(t, json.Unmarshal(env.Data, &second))
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, second.PriceHistory, 2)
}

func TestCreateValidationError(t *testing.T) {
	router := newTestRouter(t)

	w, env := doRequest(t, router, http.MethodPost, "/api/annonces", map[string]interface{}{
		"price": 650,
	}, true)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}

func TestUnauthenticatedMutationsRejected(t *testing.T) {
	router := newTestRouter(t)
	createListing(t, router, map[string]interface{}{"title": "T2"})

	requests := []struct {
		method string
		path   string
		body   interface{}
	}{
		{http.MethodPost, "/api/annonces", map[string]interface{}{"title": "X"}},
		{http.MethodPatch, "/api/annonces/1", map[string]interface{}{"status": "visited"}},
		{http.MethodDelete, "/api/annonces/1", nil},
		{http.MethodPost, "/api/annonces/1/discard", map[string]interface{}{"reason": "x"}},
		{http.MethodGet, "/api/annonces/1", nil},
		{http.MethodGet, "/api/districts", nil},
		{http.MethodPost, "/api/districts", map[string]interface{}{"name": "vauban"}},
		{http.MethodPost, "/api/scrape", map[string]interface{}{"url": "https://example.com"}},
	}
	for _, req := range requests {
		w, env := doRequest(t, router, req.method, req.path, req.body, false)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", req.method, req.path)
		require.NotNil(t, env.Error, "%s %s", req.method, req.path)
		assert.Equal(t, "UNAUTHORIZED", env.Error.Code)
	}

	// The listing is untouched
	w, env := doRequest(t, router, http.MethodGet, "/api/annonces", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	var all []models.Annonce
	require.NoError(t, json.Unmarshal(env.Data, &all))
	assert.Len(t, all, 1)
}

func TestPublicEndpoints(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/api/annonces", "/api/stats", "/health", "/metrics"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestGetAnnonce(t *testing.T) {
	router := newTestRouter(t)
	created := createListing(t, router, map[string]interface{}{"title": "T3 Longchamp"})

	w, env := doRequest(t, router, http.MethodGet, "/api/annonces/1", nil, true)
	require.Equal(t, http.StatusOK, w.Code)

	var got models.Annonce
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, created.ID, got.ID)

	w, env = doRequest(t, router, http.MethodGet, "/api/annonces/999", nil, true)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)

	// Non-numeric ids are not listings either
	w, _ = doRequest(t, router, http.MethodGet, "/api/annonces/abc", nil, true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateAnnonce(t *testing.T) {
	router := newTestRouter(t)
	createListing(t, router, map[string]interface{}{"title": "T2", "price": 800})

	w, env := doRequest(t, router, http.MethodPatch, "/api/annonces/1", map[string]interface{}{
		"status":  "to_visit",
		"surface": 45,
	}, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated models.Annonce
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, "to_visit", updated.Status)
	require.NotNil(t, updated.Surface)
	assert.Equal(t, 45.0, *updated.Surface)
	// Surface changed, so the score was recomputed
	assert.Greater(t, updated.Score, 0.0)
}

func TestUpdateMissingNeverCreates(t *testing.T) {
	router := newTestRouter(t)

	w, env := doRequest(t, router, http.MethodPatch, "/api/annonces/42", map[string]interface{}{
		"status": "visited",
	}, true)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)

	_, listEnv := doRequest(t, router, http.MethodGet, "/api/annonces", nil, false)
	var all []models.Annonce
	require.NoError(t, json.Unmarshal(listEnv.Data, &all))
	assert.Empty(t, all)
}

func TestDeleteIsPermanent(t *testing.T) {
	router := newTestRouter(t)
	createListing(t, router, map[string]interface{}{"title": "Loft Joliette"})

	w, _ := doRequest(t, router, http.MethodDelete, "/api/annonces/1", nil, true)
	require.Equal(t, http.StatusOK, w.Code)

	w, env := doRequest(t, router, http.MethodDelete, "/api/annonces/1", nil, true)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestDiscardAnnonce(t *testing.T) {
	router := newTestRouter(t)
	createListing(t, router, map[string]interface{}{"title": "RDC sombre"})

	w, env := doRequest(t, router, http.MethodPost, "/api/annonces/1/discard", map[string]interface{}{
		"reason": "rez-de-chaussee",
	}, true)
	require.Equal(t, http.StatusOK, w.Code)

	var discarded models.Annonce
	require.NoError(t, json.Unmarshal(env.Data, &discarded))
	assert.Equal(t, models.StatusDiscarded, discarded.Status)
	assert.Equal(t, "rez-de-chaussee", discarded.DiscardReason)
}

func TestStatsTotalMatchesList(t *testing.T) {
	router := newTestRouter(t)
	createListing(t, router, map[string]interface{}{"title": "A", "price": 600})
	createListing(t, router, map[string]interface{}{"title": "B", "price": 900})

	_, listEnv := doRequest(t, router, http.MethodGet, "/api/annonces", nil, false)
	var all []models.Annonce
	require.NoError(t, json.Unmarshal(listEnv.Data, &all))

	_, statsEnv := doRequest(t, router, http.MethodGet, "/api/stats", nil, false)
	var stats models.Stats
	require.NoError(t, json.Unmarshal(statsEnv.Data, &stats))

	assert.Equal(t, len(all), stats.Total)
	assert.Equal(t, 2, stats.ByStatus[models.StatusNew])
}

func TestListFilterAndMalformedValuesIgnored(t *testing.T) {
	router := newTestRouter(t)
	createListing(t, router, map[string]interface{}{"title": "Cheap", "price": 500})
	createListing(t, router, map[string]interface{}{"title": "Pricey", "price": 1500})

	_, env := doRequest(t, router, http.MethodGet, "/api/annonces?max_price=1000", nil, false)
	var filtered []models.Annonce
	require.NoError(t, json.Unmarshal(env.Data, &filtered))
	require.Len(t, filtered, 1)
	assert.Equal(t, "Cheap", filtered[0].Title)

	// Malformed filter values are ignored, not rejected
	w, env := doRequest(t, router, http.MethodGet, "/api/annonces?max_price=abc&min_rooms=xyz", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	var all []models.Annonce
	require.NoError(t, json.Unmarshal(env.Data, &all))
	assert.Len(t, all, 2)
}

func TestDistrictEndpoints(t *testing.T) {
	router := newTestRouter(t)

	w, env := doRequest(t, router, http.MethodPost, "/api/districts", map[string]interface{}{
		"name":  "Vauban",
		"score": 95,
	}, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var district models.District
	require.NoError(t, json.Unmarshal(env.Data, &district))
	assert.Equal(t, "vauban", district.Name)

	_, env = doRequest(t, router, http.MethodGet, "/api/districts", nil, true)
	var districts []models.District
	require.NoError(t, json.Unmarshal(env.Data, &districts))
	assert.Len(t, districts, 1)
}

func TestMethodNotAllowed(t *testing.T) {
	router := newTestRouter(t)

	w, env := doRequest(t, router, http.MethodPut, "/api/annonces", nil, true)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "METHOD_NOT_ALLOWED", env.Error.Code)
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t)

	w, env := doRequest(t, router, http.MethodGet, "/health", nil, false)
	require.Equal(t, http.StatusOK, w.Code)

	var health models.HealthStatus
	require.NoError(t, json.Unmarshal(env.Data, &health))
	assert.Equal(t, "healthy", health.Status)
	assert.True(t, health.DatabaseConnected)
	assert.Equal(t, Version, health.Version)
}

func TestHealthDegradedWhenStorageUnreachable(t *testing.T) {
	db, err := database.NewInMemory()
	require.NoError(t, err)
	require.NoError(t, db.Close())

	cfg := &config.Config{Scraper: config.ScraperConfig{Timeout: time.Second}}
	handler := NewHandler(db, cfg, scoring.NewEngine(), scraper.New(&cfg.Scraper))

	w := httptest.NewRecorder()
	handler.Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var health models.HealthStatus
	require.NoError(t, json.Unmarshal(env.Data, &health))
	assert.Equal(t, "degraded", health.Status)
	assert.False(t, health.DatabaseConnected)
}
