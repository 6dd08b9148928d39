// Immotrack - Apartment Listing Tracker
// Copyright 2026 Immotrack Contributors
// SPDX-License-Identifier: MIT
// https://github.com/immotrack/immotrack

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/immotrack/immotrack/internal/auth"
	"github.com/immotrack/immotrack/internal/config"
	"github.com/immotrack/immotrack/internal/middleware"
)

// Router bundles the pieces the HTTP surface is built from.
type Router struct {
	handler       *Handler
	authenticator *auth.Authenticator
	authHandlers  *auth.Handlers
	cfg           *config.Config
}

func NewRouter(handler *Handler, authenticator *auth.Authenticator, authHandlers *auth.Handlers, cfg *config.Config) *Router {
	return &Router{
		handler:       handler,
		authenticator: authenticator,
		authHandlers:  authHandlers,
		cfg:           cfg,
	}
}

// Setup wires the middleware chain and all routes.
//
// Public routes: GET /api/annonces, GET /api/stats, GET /health,
// /auth/* and /metrics. Everything else under /api requires a subject.
func (router *Router) Setup() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   router.cfg.Security.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-API-Key", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if !router.cfg.Security.RateLimitDisabled {
		r.Use(httprate.LimitByIP(
			router.cfg.Security.RateLimitReqs,
			router.cfg.Security.RateLimitWindow,
		))
	}
	r.Use(middleware.PrometheusMetrics)
	r.Use(router.authenticator.Authenticate)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	r.Get("/health", router.handler.Health)
	r.Handle("/metrics", promhttp.Handler())
	router.authHandlers.Mount(r)

	r.Route("/api", func(r chi.Router) {
		// Public read endpoints
		r.Get("/annonces", router.handler.ListAnnonces)
		r.Get("/stats", router.handler.Stats)

		// Everything else requires authentication
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth)

			r.Get("/annonces/{id}", router.handler.GetAnnonce)
			r.Post("/annonces", router.handler.CreateAnnonce)
			r.Patch("/annonces/{id}", router.handler.UpdateAnnonce)
			r.Delete("/annonces/{id}", router.handler.DeleteAnnonce)
			r.Post("/annonces/{id}/discard", router.handler.DiscardAnnonce)

			r.Get("/districts", router.handler.ListDistricts)
			r.Post("/districts", router.handler.UpsertDistrict)

			r.Post("/scrape", router.handler.Scrape)
		})
	})

	return r
}
