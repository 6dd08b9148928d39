// Immotrack - Apartment Listing Tracker
// Copyright 2026 Immotrack Contributors
// SPDX-License-Identifier: MIT
// https://github.com/immotrack/immotrack

package models

// ArrondissementCount is one bucket of the per-arrondissement breakdown.
type ArrondissementCount struct {
	Arrondissement int `json:"arrondissement"`
	Count          int `json:"count"`
}

// Stats holds the aggregate counts returned by GET /api/stats.
// Computed at request time from current storage state, never cached.
type Stats struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"by_status"`

	// ByArrondissement counts non-discarded listings only.
	ByArrondissement []ArrondissementCount `json:"by_arrondissement"`

	// Averages are nil when no listing carries the underlying field.
	AveragePrice      *float64 `json:"average_price"`
	AveragePricePerM2 *float64 `json:"average_price_per_m2"`
	AverageScore      *float64 `json:"average_score"`
}

// HealthStatus is the payload of GET /health.
type HealthStatus struct {
	Status            string  `json:"status"`
	Version           string  `json:"version"`
	DatabaseConnected bool    `json:"database_connected"`
	Uptime            float64 `json:"uptime"`
}
