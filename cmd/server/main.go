// Immotrack - Apartment Listing Tracker
// Copyright 2026 Immotrack Contributors
// SPDX-License-Identifier: MIT
// https://github.com/immotrack/immotrack

// Immotrack tracks apartment listings for an ongoing housing search.
//
// The server exposes a JSON API under /api for creating, scoring and
// triaging listings, server-rendered HTML pages for browsing them, an
// OIDC login flow under /auth, and Prometheus metrics under /metrics.
// Listings live in a single-file SQLite database.
//
// Initialization order matters: configuration and logging first, then
// the database, then the scoring engine (which loads district overrides
// from the database), then the HTTP stack. Shutdown is the reverse:
// stop accepting connections, drain in-flight requests, close the
// database.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/immotrack/immotrack/internal/api"
	"github.com/immotrack/immotrack/internal/auth"
	"github.com/immotrack/immotrack/internal/config"
	"github.com/immotrack/immotrack/internal/database"
	"github.com/immotrack/immotrack/internal/logging"
	"github.com/immotrack/immotrack/internal/scoring"
	"github.com/immotrack/immotrack/internal/scraper"
	"github.com/immotrack/immotrack/internal/web"
)

const (
	shutdownTimeout      = 10 * time.Second
	stateCleanupInterval = 5 * time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Config errors use the default logger; Init has not run yet.
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", api.Version).
		Str("environment", cfg.Server.Environment).
		Str("db_path", cfg.Database.Path).
		Msg("Starting Immotrack")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scorer := scoring.NewEngine()
	if overrides, err := db.DistrictScores(ctx); err != nil {
		logging.Warn().Err(err).Msg("Failed to load district score overrides")
	} else if len(overrides) > 0 {
		scorer.SetDistrictOverrides(overrides)
		logging.Info().Int("districts", len(overrides)).Msg("Loaded district score overrides")
	}

	flow, err := auth.NewFlow(ctx, &cfg.Security.OIDC)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize OIDC relying party")
	}

	codec := auth.NewSessionCodec(
		[]byte(cfg.Security.SessionSecret),
		cfg.Security.CookieName,
		cfg.Security.SessionMaxAge,
		cfg.Security.CookieSecure,
	)
	authenticator := auth.NewAuthenticator(codec, cfg.Security.APIKey)

	handler := api.NewHandler(db, cfg, scorer, scraper.New(&cfg.Scraper))
	router := api.NewRouter(handler, authenticator, auth.NewHandlers(flow, codec), cfg).Setup()

	pages, err := web.NewHandlers(db)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to parse page templates")
	}
	pages.Mount(router)

	// Abandoned login attempts leave expired state entries behind.
	go func() {
		ticker := time.NewTicker(stateCleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := flow.CleanupExpiredStates(); n > 0 {
					logging.Debug().Int("removed", n).Msg("Cleaned up expired login states")
				}
			}
		}
	}()

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error().Err(err).Msg("HTTP server failed")
		}
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("Graceful shutdown failed")
	}

	logging.Info().Msg("Immotrack stopped")
}
