// Immotrack - Apartment Listing Tracker
// Copyright 2026 Immotrack Contributors
// SPDX-License-Identifier: MIT
// https://github.com/immotrack/immotrack

package database

import (
	"context"
	"fmt"

	"github.com/immotrack/immotrack/internal/models"
)

// GetStats retrieves aggregate listing statistics.
//
// Five queries gather: total count, counts by status, counts by
// arrondissement, and the price / price-per-m2 / score averages.
// Discarded listings count toward the total and the status breakdown
// but are excluded from the arrondissement breakdown and the averages.
// Everything is computed at request time from current storage state so
// the result is always consistent with the latest mutation.
func (db *DB) GetStats(ctx context.Context) (*models.Stats, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	stats := &models.Stats{
		ByStatus:         map[string]int{},
		ByArrondissement: []models.ArrondissementCount{},
	}

	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM listings`).Scan(&stats.Total)
	if err != nil {
		return nil, fmt.Errorf("failed to get total count: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT status, COUNT(*) FROM listings GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to get status counts: %w", err)
	}
	defer closeWithLog(rows, "rows")

	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		stats.ByStatus[status] = count
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating status counts: %w", err)
	}

	arrRows, err := db.conn.QueryContext(ctx, `
		SELECT arrondissement, COUNT(*) AS count
		FROM listings
		WHERE arrondissement IS NOT NULL AND status != ?
		GROUP BY arrondissement
		ORDER BY count DESC, arrondissement ASC`, models.StatusDiscarded)
	if err != nil {
		return nil, fmt.Errorf("failed to get arrondissement counts: %w", err)
	}
	defer closeWithLog(arrRows, "rows")

	for arrRows.Next() {
		var ac models.ArrondissementCount
		if err := arrRows.Scan(&ac.Arrondissement, &ac.Count); err != nil {
			return nil, fmt.Errorf("failed to scan arrondissement count: %w", err)
		}
		stats.ByArrondissement = append(stats.ByArrondissement, ac)
	}
	if err = arrRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating arrondissement counts: %w", err)
	}

	err = db.conn.QueryRowContext(ctx, `
		SELECT AVG(price),
		       AVG(price / NULLIF(surface, 0)),
		       AVG(CASE WHEN score > 0 THEN score END)
		FROM listings
		WHERE status != ?`, models.StatusDiscarded).Scan(&stats.AveragePrice, &stats.AveragePricePerM2, &stats.AverageScore)
	if err != nil {
		return nil, fmt.Errorf("failed to get averages: %w", err)
	}

	return stats, nil
}
