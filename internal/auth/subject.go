// Immotrack - Apartment Listing Tracker
// Copyright 2026 Immotrack Contributors
// SPDX-License-Identifier: MIT
// https://github.com/immotrack/immotrack

// Package auth provides OIDC login, signed session cookies and the
// API-key fallback used by programmatic clients.
package auth

import "time"

// Authentication methods recorded on a subject.
const (
	MethodSession = "session"
	MethodAPIKey  = "apikey"
)

// AuthSubject identifies the caller of an authenticated request. It is
// built either from the session cookie claims or from a matching API key.
type AuthSubject struct {
	Subject  string    `json:"sub"`
	Username string    `json:"username,omitempty"`
	Email    string    `json:"email,omitempty"`
	Method   string    `json:"method"`
	IssuedAt time.Time `json:"iat"`
}

// APIKeySubject is the fixed subject assigned to X-API-Key callers.
func APIKeySubject() *AuthSubject {
	return &AuthSubject{
		Subject:  "api",
		Username: "api",
		Method:   MethodAPIKey,
		IssuedAt: time.Now().UTC(),
	}
}
