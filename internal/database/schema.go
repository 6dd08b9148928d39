// Immotrack - Apartment Listing Tracker
// Copyright 2026 Immotrack Contributors
// SPDX-License-Identifier: MIT
// https://github.com/immotrack/immotrack

package database

// schemaStatements are executed in order at startup. All statements are
// idempotent so restarts against an existing file are safe.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS listings (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		title          TEXT NOT NULL,
		url            TEXT NOT NULL DEFAULT '',
		source         TEXT NOT NULL DEFAULT '',
		price          REAL,
		surface        REAL,
		rooms          INTEGER,
		bedrooms       INTEGER,
		floor          INTEGER,
		property_type  TEXT NOT NULL DEFAULT '',
		address        TEXT NOT NULL DEFAULT '',
		district       TEXT NOT NULL DEFAULT '',
		arrondissement INTEGER,
		elevator       INTEGER NOT NULL DEFAULT 0,
		terrace        INTEGER NOT NULL DEFAULT 0,
		balcony        INTEGER NOT NULL DEFAULT 0,
		garden         INTEGER NOT NULL DEFAULT 0,
		cellar         INTEGER NOT NULL DEFAULT 0,
		parking        INTEGER NOT NULL DEFAULT 0,
		bike_room      INTEGER NOT NULL DEFAULT 0,
		dpe            TEXT NOT NULL DEFAULT '',
		ges            TEXT NOT NULL DEFAULT '',
		agency         TEXT NOT NULL DEFAULT '',
		phone          TEXT NOT NULL DEFAULT '',
		photos         TEXT NOT NULL DEFAULT '[]',
		status         TEXT NOT NULL DEFAULT 'new',
		notes          TEXT NOT NULL DEFAULT '',
		score          REAL NOT NULL DEFAULT 0,
		discard_reason TEXT NOT NULL DEFAULT '',
		price_history  TEXT NOT NULL DEFAULT '[]',
		first_seen_at  TIMESTAMP NOT NULL,
		last_seen_at   TIMESTAMP NOT NULL,
		created_at     TIMESTAMP NOT NULL,
		updated_at     TIMESTAMP NOT NULL
	)`,

	// Re-submitting a known URL updates the existing row instead of
	// inserting a duplicate; empty URLs are exempt.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_listings_url ON listings(url) WHERE url != ''`,
	`CREATE INDEX IF NOT EXISTS idx_listings_status ON listings(status)`,
	`CREATE INDEX IF NOT EXISTS idx_listings_arrondissement ON listings(arrondissement)`,
	`CREATE INDEX IF NOT EXISTS idx_listings_score ON listings(score)`,

	`CREATE TABLE IF NOT EXISTS districts (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		name           TEXT NOT NULL UNIQUE,
		arrondissement INTEGER,
		score          REAL NOT NULL DEFAULT 50,
		notes          TEXT NOT NULL DEFAULT '',
		created_at     TIMESTAMP NOT NULL
	)`,
}

// listingColumns is the canonical column order shared by every listing
// query and scan. Keep in sync with scanAnnonce.
const listingColumns = `id, title, url, source, price, surface, rooms, bedrooms, floor,
	property_type, address, district, arrondissement,
	elevator, terrace, balcony, garden, cellar, parking, bike_room,
	dpe, ges, agency, phone, photos, status, notes, score, discard_reason,
	price_history, first_seen_at, last_seen_at, created_at, updated_at`
