// Immotrack - Apartment Listing Tracker
// Copyright 2026 Immotrack Contributors
// SPDX-License-Identifier: MIT
// https://github.com/immotrack/immotrack

// Package scraper extracts a listing draft from a public listing page.
// Extraction is best effort: every field is optional and the caller is
// expected to review the draft before creating a listing from it.
package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/immotrack/immotrack/internal/config"
	"github.com/immotrack/immotrack/internal/logging"
	"github.com/immotrack/immotrack/internal/models"
)

// maxBodySize bounds how much of a listing page is read.
const maxBodySize = 5 << 20

// sourcePatterns maps a domain substring to the canonical source name.
// Checked in order so more specific entries come first.
var sourcePatterns = []struct {
	pattern string
	source  string
}{
	{"leboncoin", "leboncoin"},
	{"seloger", "seloger"},
	{"pap.fr", "pap"},
	{"logic-immo", "logic-immo"},
	{"bienici", "bienici"},
	{"figaro", "figaro"},
	{"bellesdemeures", "figaro"},
	{"superimmo", "superimmo"},
	{"avendrealouer", "avendrealouer"},
}

// DetectSource maps a listing URL to its source site name. Unknown
// domains fall back to the bare host so the value is still informative.
func DetectSource(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	host := strings.ToLower(u.Host)
	for _, sp := range sourcePatterns {
		if strings.Contains(host, sp.pattern) {
			return sp.source
		}
	}
	return strings.TrimPrefix(host, "www.")
}

// Scraper fetches listing pages and turns them into create drafts.
type Scraper struct {
	client    *http.Client
	userAgent string
}

func New(cfg *config.ScraperConfig) *Scraper {
	return &Scraper{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		userAgent: cfg.UserAgent,
	}
}

// Scrape fetches the given URL and extracts whatever listing fields it
// can recognize. It never writes to storage.
func (s *Scraper) Scrape(ctx context.Context, rawURL string) (*models.CreateAnnonceRequest, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid scrape url: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept-Language", "fr-FR,fr;q=0.9")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listing page: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("listing page returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read listing page: %w", err)
	}

	draft := extractDraft(body)
	draft.URL = rawURL
	draft.Source = DetectSource(rawURL)
	if draft.Title == "" {
		draft.Title = "Annonce " + draft.Source
	}

	logging.Ctx(ctx).Debug().
		Str("url", rawURL).
		Str("source", draft.Source).
		Msg("Scraped listing draft")

	return draft, nil
}
