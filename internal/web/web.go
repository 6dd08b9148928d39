// Immotrack - Apartment Listing Tracker
// Copyright 2026 Immotrack Contributors
// SPDX-License-Identifier: MIT
// https://github.com/immotrack/immotrack

// Package web renders the server-side HTML pages. It is a thin
// read-only layer over the storage package; all mutations go through
// the JSON API.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/immotrack/immotrack/internal/auth"
	"github.com/immotrack/immotrack/internal/database"
	"github.com/immotrack/immotrack/internal/logging"
	"github.com/immotrack/immotrack/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// Handlers serves the HTML pages.
type Handlers struct {
	db        *database.DB
	templates *template.Template
}

func NewHandlers(db *database.DB) (*Handlers, error) {
	funcs := template.FuncMap{
		"eur": func(v *float64) string {
			if v == nil {
				return "-"
			}
			return fmt.Sprintf("%.0f €", *v)
		},
		"m2": func(v *float64) string {
			if v == nil {
				return "-"
			}
			return fmt.Sprintf("%.1f m²", *v)
		},
		"score": func(v float64) string {
			return fmt.Sprintf("%.0f", v)
		},
	}

	templates, err := template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Handlers{db: db, templates: templates}, nil
}

// Mount registers the page routes. Pages require a session; anonymous
// visitors are redirected to the login flow.
func (h *Handlers) Mount(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(auth.RequirePage)
		r.Get("/", h.Index)
		r.Get("/annonces/{id}", h.Detail)
	})
}

type indexData struct {
	Annonces []models.Annonce
	Stats    *models.Stats
	Subject  *auth.AuthSubject
	Status   string
}

// Index renders the listing table with a small status filter.
func (h *Handlers) Index(w http.ResponseWriter, r *http.Request) {
	filter := database.AnnonceFilter{
		SortBy: "score",
	}
	status := r.URL.Query().Get("status")
	if status != "" {
		filter.Statuses = []string{status}
	}

	annonces, err := h.db.ListAnnonces(r.Context(), filter)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	stats, err := h.db.GetStats(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	h.render(w, r, "index.html", indexData{
		Annonces: annonces,
		Stats:    stats,
		Subject:  auth.SubjectFromContext(r.Context()),
		Status:   status,
	})
}

type detailData struct {
	Annonce *models.Annonce
	Subject *auth.AuthSubject
}

// Detail renders one listing.
func (h *Handlers) Detail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	annonce, err := h.db.GetAnnonce(r.Context(), id)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	h.render(w, r, "detail.html", detailData{
		Annonce: annonce,
		Subject: auth.SubjectFromContext(r.Context()),
	})
}

func (h *Handlers) render(w http.ResponseWriter, r *http.Request, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("template", name).Msg("Failed to render page")
	}
}

func (h *Handlers) renderError(w http.ResponseWriter, r *http.Request, err error) {
	logging.Ctx(r.Context()).Error().Err(err).Msg("Page query failed")
	http.Error(w, "internal error", http.StatusInternalServerError)
}
