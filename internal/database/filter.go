// Immotrack - Apartment Listing Tracker
// Copyright 2026 Immotrack Contributors
// SPDX-License-Identifier: MIT
// https://github.com/immotrack/immotrack

package database

import (
	"fmt"
	"strings"
)

// AnnonceFilter contains filter parameters for listing queries.
//
// All fields are optional and combine with AND logic. Multi-select slice
// fields use OR logic within the field (Statuses: ["new", "to_visit"]
// matches either). Query is a free-text search over title, address and
// notes.
type AnnonceFilter struct {
	Statuses        []string
	Sources         []string
	PropertyTypes   []string
	Districts       []string
	Arrondissements []int

	MinPrice   *float64
	MaxPrice   *float64
	MinSurface *float64
	MaxSurface *float64
	MinRooms   *int
	MinScore   *float64

	Query string

	// SortBy must be one of the sortColumns keys; anything else falls
	// back to insertion order.
	SortBy    string
	SortOrder string

	Limit  int
	Offset int
}

// sortColumns whitelists sortable columns to keep user input out of the
// ORDER BY clause.
var sortColumns = map[string]string{
	"score":         "score",
	"price":         "price",
	"surface":       "surface",
	"price_per_m2":  "price / NULLIF(surface, 0)",
	"first_seen_at": "first_seen_at",
	"created_at":    "created_at",
}

// appendInClause builds a parameterized SQL IN clause for one column.
func appendInClause(columnName string, values interface{}, whereClauses *[]string, args *[]interface{}) {
	var length int
	var getValue func(int) interface{}

	switch v := values.(type) {
	case []string:
		length = len(v)
		getValue = func(i int) interface{} { return v[i] }
	case []int:
		length = len(v)
		getValue = func(i int) interface{} { return v[i] }
	default:
		return
	}

	if length == 0 {
		return
	}

	placeholders := make([]string, length)
	for i := 0; i < length; i++ {
		placeholders[i] = "?"
		*args = append(*args, getValue(i))
	}
	*whereClauses = append(*whereClauses, fmt.Sprintf("%s IN (%s)", columnName, strings.Join(placeholders, ", ")))
}

// buildFilterConditions builds WHERE clause conditions and args from an
// AnnonceFilter for use in parameterized queries.
func buildFilterConditions(filter AnnonceFilter) ([]string, []interface{}) {
	whereClauses := []string{}
	args := []interface{}{}

	appendInClause("status", filter.Statuses, &whereClauses, &args)
	appendInClause("source", filter.Sources, &whereClauses, &args)
	appendInClause("property_type", filter.PropertyTypes, &whereClauses, &args)
	appendInClause("district", filter.Districts, &whereClauses, &args)
	appendInClause("arrondissement", filter.Arrondissements, &whereClauses, &args)

	if filter.MinPrice != nil {
		whereClauses = append(whereClauses, "price >= ?")
		args = append(args, *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		whereClauses = append(whereClauses, "price <= ?")
		args = append(args, *filter.MaxPrice)
	}
	if filter.MinSurface != nil {
		whereClauses = append(whereClauses, "surface >= ?")
		args = append(args, *filter.MinSurface)
	}
	if filter.MaxSurface != nil {
		whereClauses = append(whereClauses, "surface <= ?")
		args = append(args, *filter.MaxSurface)
	}
	if filter.MinRooms != nil {
		whereClauses = append(whereClauses, "rooms >= ?")
		args = append(args, *filter.MinRooms)
	}
	if filter.MinScore != nil {
		whereClauses = append(whereClauses, "score >= ?")
		args = append(args, *filter.MinScore)
	}

	if q := strings.TrimSpace(filter.Query); q != "" {
		pattern := "%" + q + "%"
		whereClauses = append(whereClauses, "(title LIKE ? OR address LIKE ? OR notes LIKE ?)")
		args = append(args, pattern, pattern, pattern)
	}

	return whereClauses, args
}

// buildFilterWhereClause wraps buildFilterConditions into a single WHERE
// clause string with a "1=1" base for safe concatenation.
func buildFilterWhereClause(filter AnnonceFilter) (string, []interface{}) {
	clauses, args := buildFilterConditions(filter)
	if len(clauses) == 0 {
		return "1=1", args
	}
	return "1=1 AND " + strings.Join(clauses, " AND "), args
}

// buildOrderClause resolves the filter's sort settings against the
// whitelist. Unknown columns fall back to insertion order.
func buildOrderClause(filter AnnonceFilter) string {
	col, ok := sortColumns[filter.SortBy]
	if !ok {
		return "ORDER BY id ASC"
	}
	order := "DESC"
	if strings.EqualFold(filter.SortOrder, "asc") {
		order = "ASC"
	}
	return fmt.Sprintf("ORDER BY %s %s, id ASC", col, order)
}
