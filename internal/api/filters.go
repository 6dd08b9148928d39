// Immotrack - Apartment Listing Tracker
// Copyright 2026 Immotrack Contributors
// SPDX-License-Identifier: MIT
// https://github.com/immotrack/immotrack

package api

import (
	"net/http"
	"strings"

	"github.com/immotrack/immotrack/internal/database"
)

// parseAnnonceFilter builds the storage filter from query parameters.
// Malformed values are ignored so a bad filter narrows nothing instead
// of failing the whole request. Unknown sort columns fall back to
// insertion order inside the storage layer.
func (h *Handler) parseAnnonceFilter(r *http.Request) database.AnnonceFilter {
	q := r.URL.Query()

	filter := database.AnnonceFilter{
		Statuses:        parseCommaSeparated(q.Get("status")),
		Sources:         parseCommaSeparated(q.Get("source")),
		PropertyTypes:   parseCommaSeparated(q.Get("property_type")),
		Districts:       lowercaseAll(parseCommaSeparated(q.Get("district"))),
		Arrondissements: parseCommaSeparatedInts(q.Get("arrondissement")),
		MinPrice:        floatQueryParam(r, "min_price"),
		MaxPrice:        floatQueryParam(r, "max_price"),
		MinSurface:      floatQueryParam(r, "min_surface"),
		MaxSurface:      floatQueryParam(r, "max_surface"),
		MinRooms:        intQueryParam(r, "min_rooms"),
		MinScore:        floatQueryParam(r, "min_score"),
		Query:           strings.TrimSpace(q.Get("q")),
		SortBy:          q.Get("sort"),
		SortOrder:       q.Get("order"),
		Offset:          getIntParam(r, "offset", 0),
	}

	limit := getIntParam(r, "limit", h.cfg.API.DefaultPageSize)
	if limit > h.cfg.API.MaxPageSize {
		limit = h.cfg.API.MaxPageSize
	}
	filter.Limit = limit

	return filter
}

func lowercaseAll(values []string) []string {
	for i, v := range values {
		values[i] = strings.ToLower(v)
	}
	return values
}
