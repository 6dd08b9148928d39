// Immotrack - Apartment Listing Tracker
// Copyright 2026 Immotrack Contributors
// SPDX-License-Identifier: MIT
// https://github.com/immotrack/immotrack

package models

import "time"

// District is a reference record for a Marseille quartier, consulted by the
// scoring engine. Names are stored lowercased for lookup.
type District struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Arrondissement *int      `json:"arrondissement,omitempty"`
	Score          float64   `json:"score"`
	Notes          string    `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// UpsertDistrictRequest is the body of POST /api/districts.
// An existing district with the same name is updated in place.
type UpsertDistrictRequest struct {
	Name           string  `json:"name" validate:"required,min=1,max=100"`
	Arrondissement *int    `json:"arrondissement" validate:"omitempty,gte=1,lte=16"`
	Score          float64 `json:"score" validate:"gte=0,lte=100"`
	Notes          string  `json:"notes" validate:"omitempty,max=2000"`
}
