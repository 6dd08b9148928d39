// Immotrack - Apartment Listing Tracker
// Copyright 2026 Immotrack Contributors
// SPDX-License-Identifier: MIT
// https://github.com/immotrack/immotrack

// Package models defines the domain entities and API payload types.
package models

import "time"

// Well-known listing lifecycle statuses. Status is a free-form string;
// these are the values the UI and stats grouping understand.
const (
	StatusNew         = "new"
	StatusInteresting = "interesting"
	StatusToVisit     = "to_visit"
	StatusVisited     = "visited"
	StatusOffer       = "offer"
	StatusDiscarded   = "discarded"
)

// PricePoint is one entry of a listing's price history. A new point is
// appended whenever a re-submitted URL arrives with a different price.
type PricePoint struct {
	Price  float64   `json:"price"`
	SeenAt time.Time `json:"seen_at"`
}

// Annonce is a single apartment candidate record, the only primary entity.
// Optional numeric fields are pointers so that absent and zero are distinct.
type Annonce struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url,omitempty"`

	// Source is the originating site (leboncoin, seloger, ...), derived
	// from the URL when not supplied.
	Source string `json:"source,omitempty"`

	Price    *float64 `json:"price,omitempty"`
	Surface  *float64 `json:"surface,omitempty"`
	Rooms    *int     `json:"rooms,omitempty"`
	Bedrooms *int     `json:"bedrooms,omitempty"`
	Floor    *int     `json:"floor,omitempty"`

	PropertyType string `json:"property_type,omitempty"`

	Address        string `json:"address,omitempty"`
	District       string `json:"district,omitempty"`
	Arrondissement *int   `json:"arrondissement,omitempty"`

	Elevator bool `json:"elevator"`
	Terrace  bool `json:"terrace"`
	Balcony  bool `json:"balcony"`
	Garden   bool `json:"garden"`
	Cellar   bool `json:"cellar"`
	Parking  bool `json:"parking"`
	BikeRoom bool `json:"bike_room"`

	DPE string `json:"dpe,omitempty"`
	GES string `json:"ges,omitempty"`

	Agency string   `json:"agency,omitempty"`
	Phone  string   `json:"phone,omitempty"`
	Photos []string `json:"photos,omitempty"`

	Status        string  `json:"status"`
	Notes         string  `json:"notes,omitempty"`
	Score         float64 `json:"score"`
	DiscardReason string  `json:"discard_reason,omitempty"`

	PriceHistory []PricePoint `json:"price_history,omitempty"`

	// PricePerM2 is derived from price and surface, never stored.
	PricePerM2 *float64 `json:"price_per_m2,omitempty"`

	FirstSeenAt time.Time `json:"first_seen_at"`
	LastSeenAt  time.Time `json:"last_seen_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ComputePricePerM2 fills the derived PricePerM2 field when both price and
// surface are present and the surface is positive.
func (a *Annonce) ComputePricePerM2() {
	if a.Price != nil && a.Surface != nil && *a.Surface > 0 {
		v := *a.Price / *a.Surface
		a.PricePerM2 = &v
	}
}

// CreateAnnonceRequest is the body of POST /api/annonces.
type CreateAnnonceRequest struct {
	Title string `json:"title" validate:"required,min=1,max=500"`
	URL   string `json:"url" validate:"omitempty,url,max=2000"`

	Source string `json:"source" validate:"omitempty,max=100"`

	Price    *float64 `json:"price" validate:"omitempty,gte=0"`
	Surface  *float64 `json:"surface" validate:"omitempty,gte=0"`
	Rooms    *int     `json:"rooms" validate:"omitempty,gte=0,lte=50"`
	Bedrooms *int     `json:"bedrooms" validate:"omitempty,gte=0,lte=50"`
	Floor    *int     `json:"floor" validate:"omitempty,gte=-2,lte=100"`

	PropertyType string `json:"property_type" validate:"omitempty,max=50"`

	Address        string `json:"address" validate:"omitempty,max=500"`
	District       string `json:"district" validate:"omitempty,max=100"`
	Arrondissement *int   `json:"arrondissement" validate:"omitempty,gte=1,lte=16"`

	Elevator bool `json:"elevator"`
	Terrace  bool `json:"terrace"`
	Balcony  bool `json:"balcony"`
	Garden   bool `json:"garden"`
	Cellar   bool `json:"cellar"`
	Parking  bool `json:"parking"`
	BikeRoom bool `json:"bike_room"`

	DPE string `json:"dpe" validate:"omitempty,oneof=A B C D E F G"`
	GES string `json:"ges" validate:"omitempty,oneof=A B C D E F G"`

	Agency string   `json:"agency" validate:"omitempty,max=200"`
	Phone  string   `json:"phone" validate:"omitempty,max=50"`
	Photos []string `json:"photos" validate:"omitempty,dive,url"`

	Status string `json:"status" validate:"omitempty,max=50"`
	Notes  string `json:"notes" validate:"omitempty,max=10000"`
}

// UpdateAnnonceRequest is the body of PATCH /api/annonces/{id}.
// All fields are optional; nil means "leave unchanged".
type UpdateAnnonceRequest struct {
	Title *string `json:"title" validate:"omitempty,min=1,max=500"`
	URL   *string `json:"url" validate:"omitempty,url,max=2000"`

	Source *string `json:"source" validate:"omitempty,max=100"`

	Price    *float64 `json:"price" validate:"omitempty,gte=0"`
	Surface  *float64 `json:"surface" validate:"omitempty,gte=0"`
	Rooms    *int     `json:"rooms" validate:"omitempty,gte=0,lte=50"`
	Bedrooms *int     `json:"bedrooms" validate:"omitempty,gte=0,lte=50"`
	Floor    *int     `json:"floor" validate:"omitempty,gte=-2,lte=100"`

	PropertyType *string `json:"property_type" validate:"omitempty,max=50"`

	Address        *string `json:"address" validate:"omitempty,max=500"`
	District       *string `json:"district" validate:"omitempty,max=100"`
	Arrondissement *int    `json:"arrondissement" validate:"omitempty,gte=1,lte=16"`

	Elevator *bool `json:"elevator"`
	Terrace  *bool `json:"terrace"`
	Balcony  *bool `json:"balcony"`
	Garden   *bool `json:"garden"`
	Cellar   *bool `json:"cellar"`
	Parking  *bool `json:"parking"`
	BikeRoom *bool `json:"bike_room"`

	DPE *string `json:"dpe" validate:"omitempty,oneof=A B C D E F G"`
	GES *string `json:"ges" validate:"omitempty,oneof=A B C D E F G"`

	Agency *string  `json:"agency" validate:"omitempty,max=200"`
	Phone  *string  `json:"phone" validate:"omitempty,max=50"`
	Photos []string `json:"photos" validate:"omitempty,dive,url"`

	Status        *string `json:"status" validate:"omitempty,max=50"`
	Notes         *string `json:"notes" validate:"omitempty,max=10000"`
	DiscardReason *string `json:"discard_reason" validate:"omitempty,max=500"`
}

// DiscardAnnonceRequest is the body of POST /api/annonces/{id}/discard.
type DiscardAnnonceRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

// ScrapeRequest is the body of POST /api/scrape.
type ScrapeRequest struct {
	URL string `json:"url" validate:"required,url,max=2000"`
}
