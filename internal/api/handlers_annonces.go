// Immotrack - Apartment Listing Tracker
// Copyright 2026 Immotrack Contributors
// SPDX-License-Identifier: MIT
// https://github.com/immotrack/immotrack

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/immotrack/immotrack/internal/logging"
	"github.com/immotrack/immotrack/internal/metrics"
	"github.com/immotrack/immotrack/internal/models"
	"github.com/immotrack/immotrack/internal/scraper"
)

// ListAnnonces handles GET /api/annonces. Public.
func (h *Handler) ListAnnonces(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	annonces, err := h.db.ListAnnonces(r.Context(), h.parseAnnonceFilter(r))
	metrics.RecordDBQuery("list_annonces", time.Since(start), err)
	if err != nil {
		respondStorageError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   annonces,
		Metadata: models.Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: time.Since(start).Milliseconds(),
			Count:       len(annonces),
		},
	})
}

// GetAnnonce handles GET /api/annonces/{id}.
func (h *Handler) GetAnnonce(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	annonce, err := h.db.GetAnnonce(r.Context(), id)
	if err != nil {
		respondStorageError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, annonce)
}

// CreateAnnonce handles POST /api/annonces. When the URL matches an
// existing listing the row is refreshed and 200 is returned instead
// of 201.
func (h *Handler) CreateAnnonce(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAnnonceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validateRequest(w, &req) {
		return
	}

	annonce := annonceFromCreateRequest(&req)
	annonce.Score = h.scorer.Compute(annonce)

	created, isNew, err := h.db.CreateAnnonce(r.Context(), annonce)
	if err != nil {
		respondStorageError(w, err)
		return
	}

	if !isNew {
		// Refresh may have changed price or surface; keep the score current.
		h.rescore(r, created)
	}

	status := http.StatusCreated
	if !isNew {
		status = http.StatusOK
	}
	respondSuccess(w, status, created)
}

// UpdateAnnonce handles PATCH /api/annonces/{id}. A missing id is 404
// and never creates a listing.
func (h *Handler) UpdateAnnonce(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var req models.UpdateAnnonceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validateRequest(w, &req) {
		return
	}

	updated, err := h.db.UpdateAnnonce(r.Context(), id, &req)
	if err != nil {
		respondStorageError(w, err)
		return
	}

	h.rescore(r, updated)
	respondSuccess(w, http.StatusOK, updated)
}

// DeleteAnnonce handles DELETE /api/annonces/{id}. Deletion is
// permanent; deleting twice reports 404.
func (h *Handler) DeleteAnnonce(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	if err := h.db.DeleteAnnonce(r.Context(), id); err != nil {
		respondStorageError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]interface{}{"deleted": id})
}

// DiscardAnnonce handles POST /api/annonces/{id}/discard.
func (h *Handler) DiscardAnnonce(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var req models.DiscardAnnonceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validateRequest(w, &req) {
		return
	}

	discarded, err := h.db.DiscardAnnonce(r.Context(), id, req.Reason)
	if err != nil {
		respondStorageError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, discarded)
}

// rescore recomputes and persists the score after a mutation, updating
// the in-memory copy so the response already carries the new value.
func (h *Handler) rescore(r *http.Request, annonce *models.Annonce) {
	score := h.scorer.Compute(annonce)
	if score == annonce.Score {
		return
	}
	if err := h.db.SetAnnonceScore(r.Context(), annonce.ID, score); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Int64("id", annonce.ID).Msg("Failed to persist score")
		return
	}
	annonce.Score = score
}

// annonceFromCreateRequest maps the validated request body onto the
// entity. The source falls back to URL detection and districts are
// stored lowercased for scoring lookups.
func annonceFromCreateRequest(req *models.CreateAnnonceRequest) *models.Annonce {
	source := req.Source
	if source == "" && req.URL != "" {
		source = scraper.DetectSource(req.URL)
	}

	return &models.Annonce{
		Title:          req.Title,
		URL:            req.URL,
		Source:         source,
		Price:          req.Price,
		Surface:        req.Surface,
		Rooms:          req.Rooms,
		Bedrooms:       req.Bedrooms,
		Floor:          req.Floor,
		PropertyType:   req.PropertyType,
		Address:        req.Address,
		District:       strings.ToLower(req.District),
		Arrondissement: req.Arrondissement,
		Elevator:       req.Elevator,
		Terrace:        req.Terrace,
		Balcony:        req.Balcony,
		Garden:         req.Garden,
		Cellar:         req.Cellar,
		Parking:        req.Parking,
		BikeRoom:       req.BikeRoom,
		DPE:            req.DPE,
		GES:            req.GES,
		Agency:         req.Agency,
		Phone:          req.Phone,
		Photos:         req.Photos,
		Status:         req.Status,
		Notes:          req.Notes,
	}
}
