// Immotrack - Apartment Listing Tracker
// Copyright 2026 Immotrack Contributors
// SPDX-License-Identifier: MIT
// https://github.com/immotrack/immotrack

package auth

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
)

// SessionCodec signs and verifies the session cookie. The cookie value
// carries the subject claims directly, so no server-side session store
// is needed and a restart does not log anyone out.
type SessionCodec struct {
	sc     *securecookie.SecureCookie
	name   string
	maxAge time.Duration
	secure bool
}

// NewSessionCodec builds a codec from the configured session secret.
// The secret is the HMAC key; an invalid or tampered cookie simply
// fails to decode.
func NewSessionCodec(secret []byte, cookieName string, maxAge time.Duration, secure bool) *SessionCodec {
	sc := securecookie.New(secret, nil)
	sc.MaxAge(int(maxAge.Seconds()))
	return &SessionCodec{
		sc:     sc,
		name:   cookieName,
		maxAge: maxAge,
		secure: secure,
	}
}

// MakeCookie encodes the subject into a signed session cookie.
func (c *SessionCodec) MakeCookie(subject *AuthSubject) (*http.Cookie, error) {
	encoded, err := c.sc.Encode(c.name, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session cookie: %w", err)
	}
	return &http.Cookie{
		Name:     c.name,
		Value:    encoded,
		Path:     "/",
		MaxAge:   int(c.maxAge.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

// ReadCookie extracts and verifies the subject from the request's
// session cookie. Returns ErrNoSession when the cookie is absent,
// expired or fails signature verification.
func (c *SessionCodec) ReadCookie(r *http.Request) (*AuthSubject, error) {
	cookie, err := r.Cookie(c.name)
	if err != nil {
		return nil, ErrNoSession
	}

	var subject AuthSubject
	if err := c.sc.Decode(c.name, cookie.Value, &subject); err != nil {
		return nil, ErrNoSession
	}
	subject.Method = MethodSession
	return &subject, nil
}

// ClearCookie returns an expired cookie that removes the session.
func (c *SessionCodec) ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     c.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
