// Immotrack - Apartment Listing Tracker
// Copyright 2026 Immotrack Contributors
// SPDX-License-Identifier: MIT
// https://github.com/immotrack/immotrack

package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/immotrack/immotrack/internal/models"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func TestComputeBounds(t *testing.T) {
	e := NewEngine()

	score := e.Compute(&models.Annonce{})
	assert.GreaterOrEqual(t, score, 0.0)
	assert.LessOrEqual(t, score, 100.0)

	arr := 6
	best := e.Compute(&models.Annonce{
		District:       "vauban",
		Arrondissement: &arr,
		Surface:        floatPtr(60),
		Price:          floatPtr(650),
		Bedrooms:       intPtr(3),
		Elevator:       true,
		Floor:          intPtr(3),
		Terrace:        true,
		PropertyType:   "duplex",
		Garden:         true,
		Cellar:         true,
		Parking:        true,
		BikeRoom:       true,
		DPE:            "A",
	})
	assert.LessOrEqual(t, best, 100.0)
	assert.Greater(t, best, 85.0)
}

func TestLocationDistrictBeatsArrondissement(t *testing.T) {
	e := NewEngine()
	arr := 3

	// A known district wins over a poor arrondissement fallback
	good := e.Compute(&models.Annonce{District: "proche Vauban", Arrondissement: &arr})
	bad := e.Compute(&models.Annonce{Arrondissement: &arr})
	assert.Greater(t, good, bad)
}

func TestLocationArrondissementFallback(t *testing.T) {
	e := NewEngine()
	arr6, arr14 := 6, 14

	sixth := e.Compute(&models.Annonce{Arrondissement: &arr6})
	fourteenth := e.Compute(&models.Annonce{Arrondissement: &arr14})
	assert.Greater(t, sixth, fourteenth)
}

func TestDistrictOverridesWin(t *testing.T) {
	e := NewEngine()

	before := e.Compute(&models.Annonce{District: "belle de mai"})
	e.SetDistrictOverrides(map[string]float64{"belle de mai": 80})
	after := e.Compute(&models.Annonce{District: "belle de mai"})
	assert.Greater(t, after, before)
}

func TestPriceBands(t *testing.T) {
	e := NewEngine()

	cheap := e.Compute(&models.Annonce{Price: floatPtr(650)})
	mid := e.Compute(&models.Annonce{Price: floatPtr(1100)})
	expensive := e.Compute(&models.Annonce{Price: floatPtr(2200)})
	assert.Greater(t, cheap, mid)
	assert.Greater(t, mid, expensive)
}

func TestHighFloorWithoutElevatorPenalized(t *testing.T) {
	e := NewEngine()

	withLift := e.Compute(&models.Annonce{Floor: intPtr(4), Elevator: true})
	withoutLift := e.Compute(&models.Annonce{Floor: intPtr(4)})
	assert.Greater(t, withLift, withoutLift)
}

func TestEnergyClassOrdering(t *testing.T) {
	e := NewEngine()

	a := e.Compute(&models.Annonce{DPE: "A"})
	d := e.Compute(&models.Annonce{DPE: "D"})
	g := e.Compute(&models.Annonce{DPE: "G"})
	assert.Greater(t, a, d)
	assert.Greater(t, d, g)
	assert.Equal(t, g, e.Compute(&models.Annonce{}))
}
