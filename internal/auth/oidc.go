// Immotrack - Apartment Listing Tracker
// Copyright 2026 Immotrack Contributors
// SPDX-License-Identifier: MIT
// https://github.com/immotrack/immotrack

package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/zitadel/oidc/v3/pkg/client/rp"
	"github.com/zitadel/oidc/v3/pkg/oidc"

	"github.com/immotrack/immotrack/internal/config"
	"github.com/immotrack/immotrack/internal/logging"
)

// stateTTL is how long a pending login attempt stays valid.
const stateTTL = 10 * time.Minute

// Flow drives the OIDC authorization-code flow against the configured
// identity provider. Discovery happens once at construction.
type Flow struct {
	rp     rp.RelyingParty
	cfg    *config.OIDCConfig
	states *MemoryStateStore
}

// NewFlow performs OIDC discovery and returns the flow manager.
// The context bounds the discovery request.
func NewFlow(ctx context.Context, cfg *config.OIDCConfig) (*Flow, error) {
	options := []rp.Option{
		rp.WithHTTPClient(&http.Client{Timeout: 30 * time.Second}),
	}
	if cfg.PKCEEnabled {
		options = append(options, rp.WithPKCE(nil))
	}

	relyingParty, err := rp.NewRelyingPartyOIDC(ctx,
		cfg.IssuerURL,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.RedirectURL,
		cfg.Scopes,
		options...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create relying party: %w", err)
	}

	logging.Info().
		Str("issuer", cfg.IssuerURL).
		Bool("pkce", cfg.PKCEEnabled).
		Msg("OIDC relying party ready")

	return &Flow{
		rp:     relyingParty,
		cfg:    cfg,
		states: NewMemoryStateStore(),
	}, nil
}

// AuthorizationURL creates a single-use state, stores the post-login
// target and returns the IdP URL to redirect the browser to.
func (f *Flow) AuthorizationURL(postLoginRedirect string) (string, error) {
	stateKey, err := generateSecureRandom(32)
	if err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	nonce, err := generateSecureRandom(32)
	if err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	now := time.Now()
	f.states.Store(stateKey, &StateData{
		PostLoginRedirect: postLoginRedirect,
		Nonce:             nonce,
		CreatedAt:         now,
		ExpiresAt:         now.Add(stateTTL),
	})

	authURL := rp.AuthURL(stateKey, f.rp)
	parsed, err := url.Parse(authURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse auth URL: %w", err)
	}
	query := parsed.Query()
	query.Set("nonce", nonce)
	parsed.RawQuery = query.Encode()

	return parsed.String(), nil
}

// HandleCallback consumes the state, exchanges the code for tokens,
// checks the nonce and maps the ID token claims to a subject. Returns
// the subject and the post-login redirect target.
func (f *Flow) HandleCallback(ctx context.Context, code, state string) (*AuthSubject, string, error) {
	stateData, err := f.states.Consume(state)
	if err != nil {
		return nil, "", err
	}

	tokens, err := rp.CodeExchange[*oidc.IDTokenClaims](ctx, code, f.rp)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("OIDC token exchange failed")
		return nil, "", fmt.Errorf("%w: %s", ErrTokenExchangeFailed, err.Error())
	}

	claims := tokens.IDTokenClaims
	if claims == nil {
		return nil, "", fmt.Errorf("%w: no ID token in response", ErrTokenExchangeFailed)
	}
	if stateData.Nonce != "" && claims.Nonce != stateData.Nonce {
		return nil, "", fmt.Errorf("%w: nonce mismatch", ErrTokenExchangeFailed)
	}

	subject := subjectFromClaims(claims)
	logging.Ctx(ctx).Info().
		Str("user", subject.Username).
		Msg("OIDC login successful")

	return subject, stateData.PostLoginRedirect, nil
}

// EndSessionURL returns the IdP logout URL, or "" when the provider
// does not support RP-initiated logout.
func (f *Flow) EndSessionURL() string {
	endpoint := f.rp.GetEndSessionEndpoint()
	if endpoint == "" {
		return ""
	}
	if f.cfg.PostLogoutRedirectURI == "" {
		return endpoint
	}
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return ""
	}
	query := parsed.Query()
	query.Set("post_logout_redirect_uri", f.cfg.PostLogoutRedirectURI)
	query.Set("client_id", f.cfg.ClientID)
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

// CleanupExpiredStates drops abandoned login attempts.
func (f *Flow) CleanupExpiredStates() int {
	return f.states.CleanupExpired()
}

// subjectFromClaims maps ID token claims to the session subject. The
// username falls back through preferred_username, name and email.
func subjectFromClaims(claims *oidc.IDTokenClaims) *AuthSubject {
	username := claims.PreferredUsername
	if username == "" {
		username = claims.Name
	}
	if username == "" {
		username = claims.Email
	}
	return &AuthSubject{
		Subject:  claims.Subject,
		Username: username,
		Email:    claims.Email,
		Method:   MethodSession,
		IssuedAt: time.Now().UTC(),
	}
}
