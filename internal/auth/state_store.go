// Immotrack - Apartment Listing Tracker
// Copyright 2026 Immotrack Contributors
// SPDX-License-Identifier: MIT
// https://github.com/immotrack/immotrack

package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"sync"
	"time"
)

// StateData is stored per login attempt, keyed by the OAuth2 state
// parameter, and consumed exactly once by the callback.
type StateData struct {
	PostLoginRedirect string
	Nonce             string
	CreatedAt         time.Time
	ExpiresAt         time.Time
}

func (s *StateData) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// MemoryStateStore keeps pending login states in memory. Safe for
// concurrent use. Losing the map on restart only aborts in-flight
// logins, so there is no need for a persistent store.
type MemoryStateStore struct {
	mu     sync.Mutex
	states map[string]*StateData
}

func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{states: make(map[string]*StateData)}
}

// Store saves the state data under the given key.
func (s *MemoryStateStore) Store(key string, state *StateData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[key] = state
}

// Consume returns and deletes the state, making each key single use.
// Replayed callbacks get ErrStateNotFound.
func (s *MemoryStateStore) Consume(key string) (*StateData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.states[key]
	if !ok {
		return nil, ErrStateNotFound
	}
	delete(s.states, key)

	if state.IsExpired() {
		return nil, ErrStateExpired
	}
	return state, nil
}

// CleanupExpired drops expired states and reports how many were removed.
func (s *MemoryStateStore) CleanupExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for key, state := range s.states {
		if state.IsExpired() {
			delete(s.states, key)
			count++
		}
	}
	return count
}

// generateSecureRandom returns a URL-safe random string from n bytes of
// crypto/rand entropy.
func generateSecureRandom(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
