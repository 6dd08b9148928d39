// Immotrack - Apartment Listing Tracker
// Copyright 2026 Immotrack Contributors
// SPDX-License-Identifier: MIT
// https://github.com/immotrack/immotrack

package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/immotrack/immotrack/internal/models"
)

// ListDistricts retrieves all district reference rows, sorted by name.
func (db *DB) ListDistricts(ctx context.Context) ([]models.District, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, name, arrondissement, score, notes, created_at
		FROM districts
		ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query districts: %w", err)
	}
	defer closeWithLog(rows, "rows")

	districts := []models.District{}
	for rows.Next() {
		var d models.District
		if err := rows.Scan(&d.ID, &d.Name, &d.Arrondissement, &d.Score, &d.Notes, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan district: %w", err)
		}
		districts = append(districts, d)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating districts: %w", err)
	}

	return districts, nil
}

// UpsertDistrict inserts a district or updates the existing row with the
// same name. Names are lowercased for lookup by the scoring engine.
func (db *DB) UpsertDistrict(ctx context.Context, req *models.UpsertDistrictRequest) (*models.District, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	name := strings.ToLower(strings.TrimSpace(req.Name))

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO districts (name, arrondissement, score, notes, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			arrondissement = excluded.arrondissement,
			score = excluded.score,
			notes = excluded.notes`,
		name, req.Arrondissement, req.Score, req.Notes, time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert district %q: %w", name, err)
	}

	var d models.District
	err = db.conn.QueryRowContext(ctx, `
		SELECT id, name, arrondissement, score, notes, created_at
		FROM districts WHERE name = ?`, name).
		Scan(&d.ID, &d.Name, &d.Arrondissement, &d.Score, &d.Notes, &d.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to read district %q: %w", name, err)
	}
	return &d, nil
}

// DistrictScores returns the name-to-score map of stored districts.
// These override the built-in defaults in the scoring engine.
func (db *DB) DistrictScores(ctx context.Context) (map[string]float64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `SELECT name, score FROM districts`)
	if err != nil {
		return nil, fmt.Errorf("failed to query district scores: %w", err)
	}
	defer closeWithLog(rows, "rows")

	scores := map[string]float64{}
	for rows.Next() {
		var name string
		var score float64
		if err := rows.Scan(&name, &score); err != nil {
			return nil, fmt.Errorf("failed to scan district score: %w", err)
		}
		scores[name] = score
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating district scores: %w", err)
	}

	return scores, nil
}
