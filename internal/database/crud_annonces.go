// Immotrack - Apartment Listing Tracker
// Copyright 2026 Immotrack Contributors
// SPDX-License-Identifier: MIT
// https://github.com/immotrack/immotrack

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/immotrack/immotrack/internal/logging"
	"github.com/immotrack/immotrack/internal/models"
)

// DefaultListLimit applies when a filter carries no limit.
const DefaultListLimit = 50

// MaxListLimit caps the page size regardless of the requested limit.
const MaxListLimit = 200

// rowScanner abstracts *sql.Row and *sql.Rows for scanAnnonce.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanAnnonce reads one row in listingColumns order.
func scanAnnonce(row rowScanner) (*models.Annonce, error) {
	var a models.Annonce
	var photosJSON, historyJSON string

	err := row.Scan(
		&a.ID, &a.Title, &a.URL, &a.Source, &a.Price, &a.Surface, &a.Rooms, &a.Bedrooms, &a.Floor,
		&a.PropertyType, &a.Address, &a.District, &a.Arrondissement,
		&a.Elevator, &a.Terrace, &a.Balcony, &a.Garden, &a.Cellar, &a.Parking, &a.BikeRoom,
		&a.DPE, &a.GES, &a.Agency, &a.Phone, &photosJSON, &a.Status, &a.Notes, &a.Score, &a.DiscardReason,
		&historyJSON, &a.FirstSeenAt, &a.LastSeenAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if photosJSON != "" && photosJSON != "[]" {
		if err := json.Unmarshal([]byte(photosJSON), &a.Photos); err != nil {
			return nil, fmt.Errorf("failed to decode photos: %w", err)
		}
	}
	if historyJSON != "" && historyJSON != "[]" {
		if err := json.Unmarshal([]byte(historyJSON), &a.PriceHistory); err != nil {
			return nil, fmt.Errorf("failed to decode price history: %w", err)
		}
	}

	a.ComputePricePerM2()
	return &a, nil
}

// ListAnnonces retrieves listings matching the filter.
// Results default to insertion order unless the filter requests a sort.
func (db *DB) ListAnnonces(ctx context.Context, filter AnnonceFilter) ([]models.Annonce, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	whereClause, args := buildFilterWhereClause(filter)

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf("SELECT %s FROM listings WHERE %s %s LIMIT ? OFFSET ?",
		listingColumns, whereClause, buildOrderClause(filter))
	args = append(args, limit, offset)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query listings: %w", err)
	}
	defer closeWithLog(rows, "rows")

	// Non-nil slice keeps JSON serialization consistent when empty
	annonces := []models.Annonce{}
	for rows.Next() {
		a, err := scanAnnonce(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		annonces = append(annonces, *a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating listings: %w", err)
	}

	return annonces, nil
}

// GetAnnonce retrieves one listing by id. Returns ErrNotFound when absent.
func (db *DB) GetAnnonce(ctx context.Context, id int64) (*models.Annonce, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := fmt.Sprintf("SELECT %s FROM listings WHERE id = ?", listingColumns)
	a, err := scanAnnonce(db.conn.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get listing %d: %w", id, err)
	}
	return a, nil
}

// getAnnonceByURL retrieves one listing by exact URL.
func (db *DB) getAnnonceByURL(ctx context.Context, url string) (*models.Annonce, error) {
	query := fmt.Sprintf("SELECT %s FROM listings WHERE url = ?", listingColumns)
	a, err := scanAnnonce(db.conn.QueryRowContext(ctx, query, url))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get listing by url: %w", err)
	}
	return a, nil
}

// CreateAnnonce inserts a new listing. When the URL is already known the
// existing row is refreshed instead: last_seen_at advances and a price
// change appends to the price history. The second return value reports
// whether a new row was created.
func (db *DB) CreateAnnonce(ctx context.Context, a *models.Annonce) (*models.Annonce, bool, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	now := time.Now().UTC()

	if a.URL != "" {
		existing, err := db.getAnnonceByURL(ctx, a.URL)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, false, err
		}
		if err == nil {
			refreshed, err := db.refreshAnnonce(ctx, existing, a, now)
			return refreshed, false, err
		}
	}

	if a.Status == "" {
		a.Status = models.StatusNew
	}
	if a.Price != nil {
		a.PriceHistory = []models.PricePoint{{Price: *a.Price, SeenAt: now}}
	}

	photosJSON, err := json.Marshal(photosOrEmpty(a.Photos))
	if err != nil {
		return nil, false, fmt.Errorf("failed to encode photos: %w", err)
	}
	historyJSON, err := json.Marshal(historyOrEmpty(a.PriceHistory))
	if err != nil {
		return nil, false, fmt.Errorf("failed to encode price history: %w", err)
	}

	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO listings (
			title, url, source, price, surface, rooms, bedrooms, floor,
			property_type, address, district, arrondissement,
			elevator, terrace, balcony, garden, cellar, parking, bike_room,
			dpe, ges, agency, phone, photos, status, notes, score, discard_reason,
			price_history, first_seen_at, last_seen_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.Title, a.URL, a.Source, a.Price, a.Surface, a.Rooms, a.Bedrooms, a.Floor,
		a.PropertyType, a.Address, a.District, a.Arrondissement,
		a.Elevator, a.Terrace, a.Balcony, a.Garden, a.Cellar, a.Parking, a.BikeRoom,
		a.DPE, a.GES, a.Agency, a.Phone, string(photosJSON), a.Status, a.Notes, a.Score, a.DiscardReason,
		string(historyJSON), now, now, now, now,
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to insert listing: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, false, fmt.Errorf("failed to read inserted id: %w", err)
	}

	created, err := db.GetAnnonce(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return created, true, nil
}

// refreshAnnonce updates an existing row when its URL is re-submitted.
// Scalar fields provided on the re-submission replace the stored values;
// status, notes, score and discard reason are left alone, they belong to
// the user.
func (db *DB) refreshAnnonce(ctx context.Context, existing, incoming *models.Annonce, now time.Time) (*models.Annonce, error) {
	history := existing.PriceHistory

	priceChanged := incoming.Price != nil &&
		(existing.Price == nil || *existing.Price != *incoming.Price)
	if priceChanged {
		history = append(history, models.PricePoint{Price: *incoming.Price, SeenAt: now})
		logging.Info().
			Int64("id", existing.ID).
			Float64("price", *incoming.Price).
			Msg("Price change recorded for known listing")
	}

	merged := *existing
	mergeString(&merged.Title, incoming.Title)
	mergeString(&merged.Source, incoming.Source)
	mergeString(&merged.PropertyType, incoming.PropertyType)
	mergeString(&merged.Address, incoming.Address)
	mergeString(&merged.District, incoming.District)
	mergeString(&merged.DPE, incoming.DPE)
	mergeString(&merged.GES, incoming.GES)
	mergeString(&merged.Agency, incoming.Agency)
	mergeString(&merged.Phone, incoming.Phone)

	mergeFloat(&merged.Price, incoming.Price)
	mergeFloat(&merged.Surface, incoming.Surface)
	mergeInt(&merged.Rooms, incoming.Rooms)
	mergeInt(&merged.Bedrooms, incoming.Bedrooms)
	mergeInt(&merged.Floor, incoming.Floor)
	mergeInt(&merged.Arrondissement, incoming.Arrondissement)

	// Booleans cannot distinguish absent from false, so amenity flags
	// only ever gain: a minimal re-submission does not erase an elevator.
	merged.Elevator = merged.Elevator || incoming.Elevator
	merged.Terrace = merged.Terrace || incoming.Terrace
	merged.Balcony = merged.Balcony || incoming.Balcony
	merged.Garden = merged.Garden || incoming.Garden
	merged.Cellar = merged.Cellar || incoming.Cellar
	merged.Parking = merged.Parking || incoming.Parking
	merged.BikeRoom = merged.BikeRoom || incoming.BikeRoom

	if len(incoming.Photos) > 0 {
		merged.Photos = incoming.Photos
	}

	photosJSON, err := json.Marshal(photosOrEmpty(merged.Photos))
	if err != nil {
		return nil, fmt.Errorf("failed to encode photos: %w", err)
	}
	historyJSON, err := json.Marshal(historyOrEmpty(history))
	if err != nil {
		return nil, fmt.Errorf("failed to encode price history: %w", err)
	}

	_, err = db.conn.ExecContext(ctx, `
		UPDATE listings
		SET title = ?, source = ?, price = ?, surface = ?, rooms = ?, bedrooms = ?, floor = ?,
		    property_type = ?, address = ?, district = ?, arrondissement = ?,
		    elevator = ?, terrace = ?, balcony = ?, garden = ?, cellar = ?, parking = ?, bike_room = ?,
		    dpe = ?, ges = ?, agency = ?, phone = ?, photos = ?,
		    price_history = ?, last_seen_at = ?, updated_at = ?
		WHERE id = ?`,
		merged.Title, merged.Source, merged.Price, merged.Surface, merged.Rooms, merged.Bedrooms, merged.Floor,
		merged.PropertyType, merged.Address, merged.District, merged.Arrondissement,
		merged.Elevator, merged.Terrace, merged.Balcony, merged.Garden, merged.Cellar, merged.Parking, merged.BikeRoom,
		merged.DPE, merged.GES, merged.Agency, merged.Phone, string(photosJSON),
		string(historyJSON), now, now, existing.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh listing %d: %w", existing.ID, err)
	}

	return db.GetAnnonce(ctx, existing.ID)
}

func mergeString(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

func mergeFloat(dst **float64, src *float64) {
	if src != nil {
		*dst = src
	}
}

func mergeInt(dst **int, src *int) {
	if src != nil {
		*dst = src
	}
}

// UpdateAnnonce applies a partial update. Nil fields are left unchanged.
// Returns ErrNotFound when the id is absent; never creates a row.
func (db *DB) UpdateAnnonce(ctx context.Context, id int64, req *models.UpdateAnnonceRequest) (*models.Annonce, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	setClauses := []string{}
	args := []interface{}{}
	set := func(column string, value interface{}) {
		setClauses = append(setClauses, column+" = ?")
		args = append(args, value)
	}

	if req.Title != nil {
		set("title", *req.Title)
	}
	if req.URL != nil {
		set("url", *req.URL)
	}
	if req.Source != nil {
		set("source", *req.Source)
	}
	if req.Price != nil {
		set("price", *req.Price)
	}
	if req.Surface != nil {
		set("surface", *req.Surface)
	}
	if req.Rooms != nil {
		set("rooms", *req.Rooms)
	}
	if req.Bedrooms != nil {
		set("bedrooms", *req.Bedrooms)
	}
	if req.Floor != nil {
		set("floor", *req.Floor)
	}
	if req.PropertyType != nil {
		set("property_type", *req.PropertyType)
	}
	if req.Address != nil {
		set("address", *req.Address)
	}
	if req.District != nil {
		set("district", strings.ToLower(*req.District))
	}
	if req.Arrondissement != nil {
		set("arrondissement", *req.Arrondissement)
	}
	if req.Elevator != nil {
		set("elevator", *req.Elevator)
	}
	if req.Terrace != nil {
		set("terrace", *req.Terrace)
	}
	if req.Balcony != nil {
		set("balcony", *req.Balcony)
	}
	if req.Garden != nil {
		set("garden", *req.Garden)
	}
	if req.Cellar != nil {
		set("cellar", *req.Cellar)
	}
	if req.Parking != nil {
		set("parking", *req.Parking)
	}
	if req.BikeRoom != nil {
		set("bike_room", *req.BikeRoom)
	}
	if req.DPE != nil {
		set("dpe", *req.DPE)
	}
	if req.GES != nil {
		set("ges", *req.GES)
	}
	if req.Agency != nil {
		set("agency", *req.Agency)
	}
	if req.Phone != nil {
		set("phone", *req.Phone)
	}
	if req.Photos != nil {
		photosJSON, err := json.Marshal(req.Photos)
		if err != nil {
			return nil, fmt.Errorf("failed to encode photos: %w", err)
		}
		set("photos", string(photosJSON))
	}
	if req.Status != nil {
		set("status", *req.Status)
	}
	if req.Notes != nil {
		set("notes", *req.Notes)
	}
	if req.DiscardReason != nil {
		set("discard_reason", *req.DiscardReason)
	}

	if len(setClauses) == 0 {
		return db.GetAnnonce(ctx, id)
	}

	set("updated_at", time.Now().UTC())
	args = append(args, id)

	query := fmt.Sprintf("UPDATE listings SET %s WHERE id = ?", strings.Join(setClauses, ", "))
	res, err := db.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update listing %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}

	return db.GetAnnonce(ctx, id)
}

// SetAnnonceScore stores a freshly computed score.
func (db *DB) SetAnnonceScore(ctx context.Context, id int64, score float64) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	_, err := db.conn.ExecContext(ctx, "UPDATE listings SET score = ? WHERE id = ?", score, id)
	if err != nil {
		return fmt.Errorf("failed to set score for listing %d: %w", id, err)
	}
	return nil
}

// DeleteAnnonce removes a listing permanently. Returns ErrNotFound when
// the id is absent, including on repeated deletes.
func (db *DB) DeleteAnnonce(ctx context.Context, id int64) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	res, err := db.conn.ExecContext(ctx, "DELETE FROM listings WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete listing %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DiscardAnnonce marks a listing as discarded with an optional reason.
func (db *DB) DiscardAnnonce(ctx context.Context, id int64, reason string) (*models.Annonce, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	res, err := db.conn.ExecContext(ctx, `
		UPDATE listings SET status = ?, discard_reason = ?, updated_at = ? WHERE id = ?`,
		models.StatusDiscarded, reason, time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to discard listing %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}

	return db.GetAnnonce(ctx, id)
}

func photosOrEmpty(photos []string) []string {
	if photos == nil {
		return []string{}
	}
	return photos
}

func historyOrEmpty(history []models.PricePoint) []models.PricePoint {
	if history == nil {
		return []models.PricePoint{}
	}
	return history
}
