// Immotrack - Apartment Listing Tracker
// Copyright 2026 Immotrack Contributors
// SPDX-License-Identifier: MIT
// https://github.com/immotrack/immotrack

// Package scoring rates listings on a 0-100 scale so the most promising
// ones surface first. The weighting favours location (30 pts), then
// surface (20), price (15), comfort (15), extras (10) and energy class
// (10). District scores stored in the database override the built-in
// Marseille defaults.
package scoring

import (
	"math"
	"strings"
	"sync"

	"github.com/immotrack/immotrack/internal/models"
)

// districtScores holds the built-in per-district location scores.
// Names are lowercased; matching is by substring so "proche vauban"
// still resolves.
var districtScores = map[string]float64{
	// 6e
	"vauban":             95,
	"castellane":         90,
	"palais de justice":  88,
	"notre-dame-du-mont": 75,
	"prefecture":         85,
	"lodi":               80,
	// 7e
	"saint-victor": 90,
	"le pharo":     85,
	"endoume":      82,
	"bompard":      80,
	"roucas blanc": 78,
	"saint-lambert": 75,
	// 4e
	"cinq avenues":  88,
	"longchamp":     85,
	"les chartreux": 80,
	"la blancarde":  75,
	// 5e
	"la plaine": 78,
	"le camas":  75,
	"baille":    72,
	// 8e
	"perier":       82,
	"prado":        80,
	"saint-giniez": 78,
	"bonneveine":   72,
	"la plage":     75,
	"pointe rouge": 70,
	"montredon":    65,
	// To avoid
	"belsunce":      20,
	"noailles":      25,
	"la joliette":   40,
	"le panier":     45,
	"belle de mai":  15,
	"saint-mauront": 10,
}

// arrondissementScores is the fallback when the district is unknown.
var arrondissementScores = map[int]float64{
	1:  50,
	2:  40,
	3:  15,
	4:  78,
	5:  72,
	6:  85,
	7:  80,
	8:  75,
	9:  55,
	10: 30,
	11: 35,
	12: 55,
	13: 15,
	14: 10,
	15: 10,
	16: 10,
}

var dpeScores = map[string]float64{
	"A": 10, "B": 9, "C": 7, "D": 5, "E": 3, "F": 1, "G": 0,
}

const defaultLocationScore = 50

// Engine computes listing scores. It is safe for concurrent use; the
// district overrides can be swapped at any time via SetDistrictOverrides.
type Engine struct {
	mu        sync.RWMutex
	overrides map[string]float64
}

func NewEngine() *Engine {
	return &Engine{overrides: map[string]float64{}}
}

// SetDistrictOverrides replaces the database-sourced district scores.
// Keys must be lowercased district names.
func (e *Engine) SetDistrictOverrides(scores map[string]float64) {
	if scores == nil {
		scores = map[string]float64{}
	}
	e.mu.Lock()
	e.overrides = scores
	e.mu.Unlock()
}

// Compute returns the 0-100 score for a listing. Missing fields simply
// contribute nothing, so a freshly scraped draft with only a price still
// gets a meaningful rank.
func (e *Engine) Compute(a *models.Annonce) float64 {
	score := e.locationScore(a)*30/100 +
		surfaceScore(a) +
		priceScore(a) +
		comfortScore(a) +
		extrasScore(a) +
		energyScore(a)

	return math.Round(math.Max(0, math.Min(100, score)))
}

func (e *Engine) locationScore(a *models.Annonce) float64 {
	if district := strings.ToLower(strings.TrimSpace(a.District)); district != "" {
		e.mu.RLock()
		overrides := e.overrides
		e.mu.RUnlock()
		for name, val := range overrides {
			if strings.Contains(district, name) {
				return val
			}
		}
		for name, val := range districtScores {
			if strings.Contains(district, name) {
				return val
			}
		}
	}
	if a.Arrondissement != nil {
		if val, ok := arrondissementScores[*a.Arrondissement]; ok {
			return val
		}
	}
	return defaultLocationScore
}

// surfaceScore grants up to 20 pts. The sweet spot is a mid-size flat;
// very small or very large both lose points.
func surfaceScore(a *models.Annonce) float64 {
	if a.Surface == nil {
		return 0
	}
	surf := *a.Surface

	var pts float64
	switch {
	case surf >= 45 && surf <= 75:
		pts = 20
	case surf >= 35 && surf < 45:
		pts = 15
	case surf > 75 && surf <= 95:
		pts = 17
	case surf > 95:
		pts = 10
	default:
		pts = 5
	}

	if a.Bedrooms != nil && *a.Bedrooms >= 2 {
		pts += 2
	}
	if a.Bedrooms != nil && *a.Bedrooms >= 3 {
		pts++
	}
	return pts
}

// priceScore grants up to 15 pts on the monthly rent, plus a small
// price-per-m2 bonus.
func priceScore(a *models.Annonce) float64 {
	if a.Price == nil {
		return 0
	}
	price := *a.Price

	var pts float64
	switch {
	case price <= 700:
		pts = 15
	case price <= 900:
		pts = 13
	case price <= 1200:
		pts = 10
	case price <= 1500:
		pts = 7
	}

	if a.Surface != nil && *a.Surface > 0 {
		switch perM2 := price / *a.Surface; {
		case perM2 <= 16:
			pts += 3
		case perM2 <= 20:
			pts += 2
		case perM2 <= 25:
			pts++
		}
	}
	return pts
}

func comfortScore(a *models.Annonce) float64 {
	var pts float64
	if a.Elevator {
		pts += 3
	}
	if a.Floor != nil {
		switch floor := *a.Floor; {
		case floor >= 2 && a.Elevator:
			pts += 2
		case floor >= 3 && !a.Elevator:
			pts -= 3
		}
	}
	if a.Terrace {
		pts += 4
	} else if a.Balcony {
		pts += 2
	}
	switch strings.ToLower(a.PropertyType) {
	case "duplex", "maison":
		pts += 3
	}
	return math.Min(pts, 15)
}

func extrasScore(a *models.Annonce) float64 {
	var pts float64
	if a.Garden {
		pts += 3
	}
	if a.Cellar {
		pts += 2
	}
	if a.Parking {
		pts += 2
	}
	if a.BikeRoom {
		pts += 3
	} else if a.Cellar {
		// A cellar can store a bike
		pts++
	}
	return math.Min(pts, 10)
}

func energyScore(a *models.Annonce) float64 {
	return dpeScores[strings.ToUpper(a.DPE)]
}
