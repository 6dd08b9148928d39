// Immotrack - Apartment Listing Tracker
// Copyright 2026 Immotrack Contributors
// SPDX-License-Identifier: MIT
// https://github.com/immotrack/immotrack

package api

import (
	"net/http"
	"time"

	"github.com/immotrack/immotrack/internal/metrics"
	"github.com/immotrack/immotrack/internal/models"
	"github.com/immotrack/immotrack/internal/scraper"
)

// Scrape handles POST /api/scrape. Returns a pre-filled listing draft
// without writing anything; the caller reviews and POSTs it to
// /api/annonces.
func (h *Handler) Scrape(w http.ResponseWriter, r *http.Request) {
	var req models.ScrapeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validateRequest(w, &req) {
		return
	}

	start := time.Now()
	draft, err := h.scraper.Scrape(r.Context(), req.URL)
	metrics.RecordScrape(scraper.DetectSource(req.URL), time.Since(start), err)
	if err != nil {
		respondError(w, http.StatusBadGateway, "UPSTREAM_ERROR", "Failed to fetch listing page", err)
		return
	}

	respondSuccess(w, http.StatusOK, draft)
}
