// Immotrack - Apartment Listing Tracker
// Copyright 2026 Immotrack Contributors
// SPDX-License-Identifier: MIT
// https://github.com/immotrack/immotrack

package auth

import "errors"

var (
	// ErrNoSession indicates the request carried no valid credential.
	ErrNoSession = errors.New("no valid session")

	// ErrStateNotFound indicates an unknown or already-consumed state.
	ErrStateNotFound = errors.New("state not found")

	// ErrStateExpired indicates the login flow took too long.
	ErrStateExpired = errors.New("state expired")

	// ErrTokenExchangeFailed indicates the code-for-token exchange
	// with the identity provider failed.
	ErrTokenExchangeFailed = errors.New("token exchange failed")
)
