// Immotrack - Apartment Listing Tracker
// Copyright 2026 Immotrack Contributors
// SPDX-License-Identifier: MIT
// https://github.com/immotrack/immotrack

package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/immotrack/immotrack/internal/models"
)

func TestValidateCreateRequest(t *testing.T) {
	price := 650.0
	surface := 25.0
	req := models.CreateAnnonceRequest{
		Title:   "Studio Castellane",
		Price:   &price,
		Surface: &surface,
	}
	assert.Nil(t, ValidateStruct(&req))
}

func TestValidateMissingTitle(t *testing.T) {
	req := models.CreateAnnonceRequest{}

	err := ValidateStruct(&req)
	require.NotNil(t, err)
	require.Len(t, err.Errors(), 1)
	assert.Equal(t, "Title", err.Errors()[0].Field())
	assert.Equal(t, "required", err.Errors()[0].Tag())

	apiErr := err.ToAPIError()
	assert.Equal(t, "VALIDATION_ERROR", apiErr.Code)
	assert.Equal(t, "Title is required", apiErr.Message)
}

func TestValidateNegativePrice(t *testing.T) {
	price := -10.0
	req := models.CreateAnnonceRequest{Title: "T2 Vauban", Price: &price}

	err := ValidateStruct(&req)
	require.NotNil(t, err)
	assert.Equal(t, "gte", err.Errors()[0].Tag())
	assert.Contains(t, err.Error(), "greater than or equal to 0")
}

func TestValidateBadURLAndDPE(t *testing.T) {
	badURL := "not a url"
	badDPE := "Z"
	req := models.UpdateAnnonceRequest{URL: &badURL, DPE: &badDPE}

	err := ValidateStruct(&req)
	require.NotNil(t, err)
	require.Len(t, err.Errors(), 2)

	apiErr := err.ToAPIError()
	assert.Equal(t, "VALIDATION_ERROR", apiErr.Code)
	assert.Contains(t, apiErr.Message, "URL must be a valid URL")
	assert.Contains(t, apiErr.Message, "DPE must be one of: A B C D E F G")
	assert.Contains(t, apiErr.Details, "fields")
}

func TestValidateArrondissementRange(t *testing.T) {
	arr := 17
	req := models.CreateAnnonceRequest{Title: "T3", Arrondissement: &arr}

	err := ValidateStruct(&req)
	require.NotNil(t, err)
	assert.Equal(t, "lte", err.Errors()[0].Tag())
}

func TestValidateScrapeRequest(t *testing.T) {
	assert.Nil(t, ValidateStruct(&models.ScrapeRequest{URL: "https://www.leboncoin.fr/ad/1"}))
	assert.NotNil(t, ValidateStruct(&models.ScrapeRequest{}))
}
