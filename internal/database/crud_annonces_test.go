// Immotrack - Apartment Listing Tracker
// Copyright 2026 Immotrack Contributors
// SPDX-License-Identifier: MIT
// https://github.com/immotrack/immotrack

package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/immotrack/immotrack/internal/models"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewInMemory()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }
func strPtr(v string) *string     { return &v }

func TestCreateAndGetRoundtrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	arr := 6
	created, isNew, err := db.CreateAnnonce(ctx, &models.Annonce{
		Title:          "Studio Castellane",
		URL:            "https://www.leboncoin.fr/ad/123",
		Source:         "leboncoin",
		Price:          floatPtr(650),
		Surface:        floatPtr(25),
		Rooms:          intPtr(1),
		Arrondissement: &arr,
		Elevator:       true,
		Photos:         []string{"https://img.example.com/1.jpg"},
	})
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, models.StatusNew, created.Status)

	got, err := db.GetAnnonce(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Studio Castellane", got.Title)
	assert.Equal(t, "leboncoin", got.Source)
	require.NotNil(t, got.Price)
	assert.Equal(t, 650.0, *got.Price)
	require.NotNil(t, got.Surface)
	assert.Equal(t, 25.0, *got.Surface)
	require.NotNil(t, got.Arrondissement)
	assert.Equal(t, 6, *got.Arrondissement)
	assert.True(t, got.Elevator)
	assert.False(t, got.Terrace)
	assert.Equal(t, []string{"https://img.example.com/1.jpg"}, got.Photos)
	require.NotNil(t, got.PricePerM2)
	assert.InDelta(t, 26.0, *got.PricePerM2, 0.001)

	// Initial price seeds the history
	require.Len(t, got.PriceHistory, 1)
	assert.Equal(t, 650.0, got.PriceHistory[0].Price)
}

func TestGetMissingReturnsNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetAnnonce(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateUpsertsByURL(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	first, isNew, err := db.CreateAnnonce(ctx, &models.Annonce{
		Title: "T2 Vauban",
		URL:   "https://www.seloger.com/annonces/456",
		Price: floatPtr(900),
	})
	require.NoError(t, err)
	require.True(t, isNew)

	// Same URL with a lower price refreshes the row
	second, isNew, err := db.CreateAnnonce(ctx, &models.Annonce{
		Title: "T2 Vauban (baisse de prix)",
		URL:   "https://www.seloger.com/annonces/456",
		Price: floatPtr(850),
	})
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "T2 Vauban (baisse de prix)", second.Title)
	require.NotNil(t, second.Price)
	assert.Equal(t, 850.0, *second.Price)

	require.Len(t, second.PriceHistory, 2)
	assert.Equal(t, 900.0, second.PriceHistory[0].Price)
	assert.Equal(t, 850.0, second.PriceHistory[1].Price)

	// Unchanged price does not grow the history
	third, _, err := db.CreateAnnonce(ctx, &models.Annonce{
		Title: "T2 Vauban",
		URL:   "https://www.seloger.com/annonces/456",
		Price: floatPtr(850),
	})
	require.NoError(t, err)
	assert.Len(t, third.PriceHistory, 2)

	// Still a single row
	all, err := db.ListAnnonces(ctx, AnnonceFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUpsertRefreshesProvidedScalars(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	first, _, err := db.CreateAnnonce(ctx, &models.Annonce{
		Title: "T3 Longchamp",
		URL:   "https://www.leboncoin.fr/annonces/789",
		Price: floatPtr(1100),
	})
	require.NoError(t, err)

	_, err = db.UpdateAnnonce(ctx, first.ID, &models.UpdateAnnonceRequest{
		Status: strPtr("to_visit"),
		Notes:  strPtr("rappeler l'agence"),
	})
	require.NoError(t, err)

	// Re-submission with richer fields fills them in
	refreshed, isNew, err := db.CreateAnnonce(ctx, &models.Annonce{
		Title:    "T3 Longchamp",
		URL:      "https://www.leboncoin.fr/annonces/789",
		Price:    floatPtr(1100),
		Rooms:    intPtr(3),
		Bedrooms: intPtr(2),
		Floor:    intPtr(4),
		DPE:      "C",
		Agency:   "Foncia",
		Elevator: true,
		Balcony:  true,
	})
	require.NoError(t, err)
	assert.False(t, isNew)

	require.NotNil(t, refreshed.Rooms)
	assert.Equal(t, 3, *refreshed.Rooms)
	require.NotNil(t, refreshed.Bedrooms)
	assert.Equal(t, 2, *refreshed.Bedrooms)
	require.NotNil(t, refreshed.Floor)
	assert.Equal(t, 4, *refreshed.Floor)
	assert.Equal(t, "C", refreshed.DPE)
	assert.Equal(t, "Foncia", refreshed.Agency)
	assert.True(t, refreshed.Elevator)
	assert.True(t, refreshed.Balcony)

	// User-owned fields survive the refresh
	assert.Equal(t, "to_visit", refreshed.Status)
	assert.Equal(t, "rappeler l'agence", refreshed.Notes)

	// A later minimal re-submission does not erase the richer fields
	minimal, _, err := db.CreateAnnonce(ctx, &models.Annonce{
		Title: "T3 Longchamp",
		URL:   "https://www.leboncoin.fr/annonces/789",
		Price: floatPtr(1050),
	})
	require.NoError(t, err)
	require.NotNil(t, minimal.Rooms)
	assert.Equal(t, 3, *minimal.Rooms)
	assert.Equal(t, "C", minimal.DPE)
	assert.True(t, minimal.Elevator)
	assert.Len(t, minimal.PriceHistory, 2)
}

func TestUpdatePartial(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	created, _, err := db.CreateAnnonce(ctx, &models.Annonce{
		Title: "T3 Longchamp",
		Price: floatPtr(1100),
		Notes: "original notes",
	})
	require.NoError(t, err)

	updated, err := db.UpdateAnnonce(ctx, created.ID, &models.UpdateAnnonceRequest{
		Status:  strPtr(models.StatusToVisit),
		Surface: floatPtr(62),
		Terrace: boolPtr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusToVisit, updated.Status)
	require.NotNil(t, updated.Surface)
	assert.Equal(t, 62.0, *updated.Surface)
	assert.True(t, updated.Terrace)

	// Untouched fields survive
	assert.Equal(t, "T3 Longchamp", updated.Title)
	assert.Equal(t, "original notes", updated.Notes)
	require.NotNil(t, updated.Price)
	assert.Equal(t, 1100.0, *updated.Price)
}

func boolPtr(v bool) *bool { return &v }

func TestUpdateMissingNeverCreates(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := db.UpdateAnnonce(ctx, 42, &models.UpdateAnnonceRequest{Status: strPtr("visited")})
	assert.ErrorIs(t, err, ErrNotFound)

	all, err := db.ListAnnonces(ctx, AnnonceFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestDeleteIsPermanent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	created, _, err := db.CreateAnnonce(ctx, &models.Annonce{Title: "Loft Joliette"})
	require.NoError(t, err)

	require.NoError(t, db.DeleteAnnonce(ctx, created.ID))

	_, err = db.GetAnnonce(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// Repeat delete reports not found rather than success
	assert.ErrorIs(t, db.DeleteAnnonce(ctx, created.ID), ErrNotFound)
}

func TestDiscard(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	created, _, err := db.CreateAnnonce(ctx, &models.Annonce{Title: "RDC sombre"})
	require.NoError(t, err)

	discarded, err := db.DiscardAnnonce(ctx, created.ID, "rez-de-chaussee sans lumiere")
	require.NoError(t, err)
	assert.Equal(t, models.StatusDiscarded, discarded.Status)
	assert.Equal(t, "rez-de-chaussee sans lumiere", discarded.DiscardReason)

	_, err = db.DiscardAnnonce(ctx, 999, "x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListFilterSubsetProperty(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	seed := []models.Annonce{
		{Title: "Studio Castellane", Price: floatPtr(650), Surface: floatPtr(25), Status: "new", Source: "leboncoin"},
		{Title: "T2 Vauban", Price: floatPtr(900), Surface: floatPtr(45), Status: "to_visit", Source: "seloger"},
		{Title: "T3 Blancarde", Price: floatPtr(1150), Surface: floatPtr(68), Status: "new", Source: "leboncoin"},
		{Title: "T4 Prado", Price: floatPtr(1600), Surface: floatPtr(90), Status: "visited", Source: "pap"},
	}
	for i := range seed {
		_, _, err := db.CreateAnnonce(ctx, &seed[i])
		require.NoError(t, err)
	}

	all, err := db.ListAnnonces(ctx, AnnonceFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)

	filtered, err := db.ListAnnonces(ctx, AnnonceFilter{
		Statuses: []string{"new"},
		MaxPrice: floatPtr(1200),
		Sources:  []string{"leboncoin"},
	})
	require.NoError(t, err)
	require.Len(t, filtered, 2)

	allIDs := map[int64]bool{}
	for _, a := range all {
		allIDs[a.ID] = true
	}
	for _, a := range filtered {
		// Subset of the unfiltered result
		assert.True(t, allIDs[a.ID])
		// Every supplied predicate matches
		assert.Equal(t, "new", a.Status)
		assert.Equal(t, "leboncoin", a.Source)
		require.NotNil(t, a.Price)
		assert.LessOrEqual(t, *a.Price, 1200.0)
	}
}

func TestListFreeTextAndSort(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for _, a := range []models.Annonce{
		{Title: "T2 proche Vauban", Price: floatPtr(900)},
		{Title: "Studio", Address: "12 rue Vauban, Marseille", Price: floatPtr(600)},
		{Title: "T3 Endoume", Price: floatPtr(1200)},
	} {
		aa := a
		_, _, err := db.CreateAnnonce(ctx, &aa)
		require.NoError(t, err)
	}

	hits, err := db.ListAnnonces(ctx, AnnonceFilter{Query: "vauban"})
	require.NoError(t, err)
	assert.Len(t, hits, 2)

	sorted, err := db.ListAnnonces(ctx, AnnonceFilter{SortBy: "price", SortOrder: "asc"})
	require.NoError(t, err)
	require.Len(t, sorted, 3)
	assert.Equal(t, 600.0, *sorted[0].Price)
	assert.Equal(t, 1200.0, *sorted[2].Price)
}

func TestListLimitAndOffset(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, _, err := db.CreateAnnonce(ctx, &models.Annonce{Title: "A"})
		require.NoError(t, err)
	}

	page, err := db.ListAnnonces(ctx, AnnonceFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, int64(3), page[0].ID)
	assert.Equal(t, int64(4), page[1].ID)
}

func TestSetAnnonceScore(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	created, _, err := db.CreateAnnonce(ctx, &models.Annonce{Title: "T2"})
	require.NoError(t, err)

	require.NoError(t, db.SetAnnonceScore(ctx, created.ID, 72.5))

	got, err := db.GetAnnonce(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 72.5, got.Score)
}
