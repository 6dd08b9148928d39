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
)

// Stats handles GET /api/stats. Public. Aggregates are computed from
// current storage state, so the total always matches an unfiltered
// listing query.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	stats, err := h.db.GetStats(r.Context())
	metrics.RecordDBQuery("get_stats", time.Since(start), err)
	if err != nil {
		respondStorageError(w, err)
		return
	}
	metrics.ListingsTotal.Set(float64(stats.Total))

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   stats,
		Metadata: models.Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}
