// Immotrack - Apartment Listing Tracker
// Copyright 2026 Immotrack Contributors
// SPDX-License-Identifier: MIT
// https://github.com/immotrack/immotrack

package scraper

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/immotrack/immotrack/internal/models"
)

var (
	pricePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d[\d\s\x{00a0}.]{0,10})\s*€`),
		regexp.MustCompile(`(?i)(?:prix|loyer)[^:]{0,30}:\s*(\d[\d\s\x{00a0}.]{0,10})`),
	}
	surfacePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(\d{1,4}(?:[.,]\d+)?)\s*m²`),
		regexp.MustCompile(`(?i)(\d{1,4}(?:[.,]\d+)?)\s*m2\b`),
		regexp.MustCompile(`(?i)surface[^:]{0,30}:\s*(\d{1,4}(?:[.,]\d+)?)`),
	}
	roomsPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(\d+)\s*pièces?\b`),
		regexp.MustCompile(`\bT(\d)\b`),
		regexp.MustCompile(`\bF(\d)\b`),
	}
	bedroomsPattern = regexp.MustCompile(`(?i)(\d+)\s*chambres?\b`)
	floorPatterns   = []*regexp.Regexp{
		regexp.MustCompile(`(?i)au\s+(\d{1,2})\s*(?:e|er|ème|eme)?\s*étage`),
		regexp.MustCompile(`(?i)étage\s*:?\s*(\d{1,2})\b`),
	}
	arrondissementPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(\d{1,2})\s*(?:e|er|ème|eme)\s*arrondissement`),
		regexp.MustCompile(`(?i)marseille\s+(\d{1,2})\s*(?:e|er|ème|eme)\b`),
	}
	postalCodePattern = regexp.MustCompile(`\b130(\d{2})\b`)
	dpePattern        = regexp.MustCompile(`(?i)(?:dpe|diagnostic|énergie|energie|energy)[^A-Za-z]{0,10}([A-G])\b`)
)

// comfortKeywords maps a field setter to the French phrases that flip it.
var comfortKeywords = []struct {
	keywords []string
	set      func(*models.CreateAnnonceRequest)
}{
	{[]string{"ascenseur"}, func(d *models.CreateAnnonceRequest) { d.Elevator = true }},
	{[]string{"terrasse"}, func(d *models.CreateAnnonceRequest) { d.Terrace = true }},
	{[]string{"balcon"}, func(d *models.CreateAnnonceRequest) { d.Balcony = true }},
	{[]string{"jardin"}, func(d *models.CreateAnnonceRequest) { d.Garden = true }},
	{[]string{"cave"}, func(d *models.CreateAnnonceRequest) { d.Cellar = true }},
	{[]string{"parking", "garage", "stationnement"}, func(d *models.CreateAnnonceRequest) { d.Parking = true }},
	{[]string{"local vélo", "local velo", "local à vélos"}, func(d *models.CreateAnnonceRequest) { d.BikeRoom = true }},
}

// pageContent is what a single parse pass collects from the DOM.
type pageContent struct {
	title       string
	ogTitle     string
	description string
	text        string
	images      []string
}

// extractDraft parses the page and applies the field extractors to the
// visible text. Fields that cannot be recognized stay zero.
func extractDraft(body []byte) *models.CreateAnnonceRequest {
	page := parsePage(body)

	draft := &models.CreateAnnonceRequest{}
	draft.Title = strings.TrimSpace(page.ogTitle)
	if draft.Title == "" {
		draft.Title = strings.TrimSpace(page.title)
	}
	draft.Notes = strings.TrimSpace(page.description)

	text := page.text
	lower := strings.ToLower(text)

	if price, ok := firstNumber(pricePatterns, text); ok {
		draft.Price = &price
	}
	if surface, ok := firstNumber(surfacePatterns, text); ok {
		draft.Surface = &surface
	}
	if rooms, ok := firstInt(roomsPatterns, text); ok {
		draft.Rooms = &rooms
	}
	if bedrooms, ok := firstInt([]*regexp.Regexp{bedroomsPattern}, text); ok {
		draft.Bedrooms = &bedrooms
	}
	if floor, ok := firstInt(floorPatterns, text); ok {
		draft.Floor = &floor
	}
	if arr, ok := extractArrondissement(text); ok {
		draft.Arrondissement = &arr
	}
	if m := dpePattern.FindStringSubmatch(text); m != nil {
		draft.DPE = strings.ToUpper(m[1])
	}

	for _, ck := range comfortKeywords {
		for _, kw := range ck.keywords {
			if strings.Contains(lower, kw) {
				ck.set(draft)
				break
			}
		}
	}

	draft.PropertyType = "appartement"
	for _, t := range []string{"maison", "duplex", "loft"} {
		if strings.Contains(lower, t) {
			draft.PropertyType = t
			break
		}
	}

	draft.Photos = propertyPhotos(page.images)

	return draft
}

func parsePage(body []byte) *pageContent {
	page := &pageContent{}

	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return page
	}

	var text strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "noscript":
				return
			case "title":
				if n.FirstChild != nil {
					page.title = n.FirstChild.Data
				}
			case "meta":
				collectMeta(n, page)
			case "img":
				if src := attr(n, "src"); src != "" {
					page.images = append(page.images, src)
				} else if src := attr(n, "data-src"); src != "" {
					page.images = append(page.images, src)
				}
			}
		case html.TextNode:
			if trimmed := strings.TrimSpace(n.Data); trimmed != "" {
				text.WriteString(trimmed)
				text.WriteByte(' ')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	page.text = text.String()
	return page
}

func collectMeta(n *html.Node, page *pageContent) {
	property := attr(n, "property")
	name := attr(n, "name")
	content := attr(n, "content")
	if content == "" {
		return
	}
	switch {
	case property == "og:title":
		page.ogTitle = content
	case property == "og:description":
		page.description = content
	case name == "description" && page.description == "":
		page.description = content
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

var thousandsDotPattern = regexp.MustCompile(`^\d{1,3}(\.\d{3})+$`)

// firstNumber tries the patterns in order and parses the first capture
// group as a float.
func firstNumber(patterns []*regexp.Regexp, text string) (float64, bool) {
	for _, pat := range patterns {
		m := pat.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if v, err := strconv.ParseFloat(cleanNumber(m[1]), 64); err == nil {
			return v, true
		}
	}
	return 0, false
}

// cleanNumber normalizes French number formatting: spaces and
// non-breaking spaces are thousands separators, a comma is the decimal
// mark, and a dot is only a thousands separator when grouping by three
// ("1.200" is 1200 but "62.5" stays 62.5).
func cleanNumber(raw string) string {
	raw = strings.NewReplacer(" ", "", " ", "").Replace(strings.TrimSpace(raw))
	if strings.Contains(raw, ",") {
		raw = strings.ReplaceAll(raw, ".", "")
		raw = strings.Replace(raw, ",", ".", 1)
	} else if thousandsDotPattern.MatchString(raw) {
		raw = strings.ReplaceAll(raw, ".", "")
	}
	return raw
}

func firstInt(patterns []*regexp.Regexp, text string) (int, bool) {
	if v, ok := firstNumber(patterns, text); ok {
		return int(v), true
	}
	return 0, false
}

// extractArrondissement recognizes "8e arrondissement", "Marseille 8e"
// and 130XX postal codes.
func extractArrondissement(text string) (int, bool) {
	for _, pat := range arrondissementPatterns {
		if m := pat.FindStringSubmatch(text); m != nil {
			if arr, err := strconv.Atoi(m[1]); err == nil && arr >= 1 && arr <= 16 {
				return arr, true
			}
		}
	}
	if m := postalCodePattern.FindStringSubmatch(text); m != nil {
		if arr, err := strconv.Atoi(m[1]); err == nil && arr >= 1 && arr <= 16 {
			return arr, true
		}
	}
	return 0, false
}

// propertyPhotos keeps image URLs that look like listing photos rather
// than site chrome.
func propertyPhotos(images []string) []string {
	var photos []string
	for _, src := range images {
		if !strings.HasPrefix(src, "http") {
			continue
		}
		lower := strings.ToLower(src)
		if strings.Contains(lower, "photo") || strings.Contains(lower, "image") ||
			strings.Contains(lower, "img") || strings.Contains(lower, "cdn") {
			photos = append(photos, src)
		}
		if len(photos) >= 20 {
			break
		}
	}
	return photos
}
