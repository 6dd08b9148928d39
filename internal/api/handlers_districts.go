// Immotrack - Apartment Listing Tracker
// Copyright 2026 Immotrack Contributors
// SPDX-License-Identifier: MIT
// https://github.com/immotrack/immotrack

package api

import (
	"net/http"

	"github.com/immotrack/immotrack/internal/logging"
	"github.com/immotrack/immotrack/internal/models"
)

// ListDistricts handles GET /api/districts.
func (h *Handler) ListDistricts(w http.ResponseWriter, r *http.Request) {
	districts, err := h.db.ListDistricts(r.Context())
	if err != nil {
		respondStorageError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, districts)
}

// UpsertDistrict handles POST /api/districts. Stored district scores
// override the built-in defaults, so the scoring engine is refreshed
// after every change.
func (h *Handler) UpsertDistrict(w http.ResponseWriter, r *http.Request) {
	var req models.UpsertDistrictRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validateRequest(w, &req) {
		return
	}

	district, err := h.db.UpsertDistrict(r.Context(), &req)
	if err != nil {
		respondStorageError(w, err)
		return
	}

	if scores, err := h.db.DistrictScores(r.Context()); err == nil {
		h.scorer.SetDistrictOverrides(scores)
	} else {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Failed to refresh district scores")
	}

	respondSuccess(w, http.StatusOK, district)
}
