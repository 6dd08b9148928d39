// Immotrack - Apartment Listing Tracker
// Copyright 2026 Immotrack Contributors
// SPDX-License-Identifier: MIT
// https://github.com/immotrack/immotrack

// Package api implements the JSON endpoints over the storage, scoring
// and scraping components.
package api

import (
	"time"

	"github.com/immotrack/immotrack/internal/config"
	"github.com/immotrack/immotrack/internal/database"
	"github.com/immotrack/immotrack/internal/scoring"
	"github.com/immotrack/immotrack/internal/scraper"
)

// Version is the reported application version.
const Version = "1.0.0"

// Handler holds the dependencies shared by all endpoints.
type Handler struct {
	db        *database.DB
	cfg       *config.Config
	scorer    *scoring.Engine
	scraper   *scraper.Scraper
	startTime time.Time
}

func NewHandler(db *database.DB, cfg *config.Config, scorer *scoring.Engine, sc *scraper.Scraper) *Handler {
	return &Handler{
		db:        db,
		cfg:       cfg,
		scorer:    scorer,
		scraper:   sc,
		startTime: time.Now(),
	}
}
