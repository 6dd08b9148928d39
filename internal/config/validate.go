// Immotrack - Apartment Listing Tracker
// Copyright 2026 Immotrack Contributors
// SPDX-License-Identifier: MIT
// https://github.com/immotrack/immotrack

package config

import (
	"errors"
	"fmt"
	"strings"
)

// minSessionSecretLen is the minimum length of the cookie signing secret.
const minSessionSecretLen = 32

// applyDerived fills fields computed from other settings.
func (c *Config) applyDerived() {
	if c.Security.OIDC.RedirectURL == "" && c.Server.AppURL != "" {
		c.Security.OIDC.RedirectURL = strings.TrimRight(c.Server.AppURL, "/") + "/auth/callback"
	}
}

// Validate checks that all required settings are present and coherent.
// A failing validation aborts startup with a non-zero exit.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server port %d out of range", c.Server.Port))
	}
	if c.Server.AppURL == "" {
		errs = append(errs, errors.New("APP_URL is required"))
	} else if !strings.HasPrefix(c.Server.AppURL, "http://") && !strings.HasPrefix(c.Server.AppURL, "https://") {
		errs = append(errs, fmt.Errorf("APP_URL must be an absolute http(s) URL, got %q", c.Server.AppURL))
	}

	if c.Database.Path == "" {
		errs = append(errs, errors.New("DATABASE_PATH must not be empty"))
	}

	if c.Security.APIKey == "" {
		errs = append(errs, errors.New("API_KEY is required"))
	}
	if c.Security.SessionSecret == "" {
		errs = append(errs, errors.New("SESSION_SECRET is required"))
	} else if len(c.Security.SessionSecret) < minSessionSecretLen {
		errs = append(errs, fmt.Errorf("SESSION_SECRET must be at least %d characters", minSessionSecretLen))
	}
	if c.Security.SessionMaxAge <= 0 {
		errs = append(errs, errors.New("session max age must be positive"))
	}

	if c.Security.OIDC.IssuerURL == "" {
		errs = append(errs, errors.New("OIDC_ISSUER is required"))
	}
	if c.Security.OIDC.ClientID == "" {
		errs = append(errs, errors.New("OIDC_CLIENT_ID is required"))
	}
	if c.Security.OIDC.ClientSecret == "" {
		errs = append(errs, errors.New("OIDC_CLIENT_SECRET is required"))
	}

	if c.API.DefaultPageSize < 1 || c.API.DefaultPageSize > c.API.MaxPageSize {
		errs = append(errs, fmt.Errorf("default page size %d must be within [1, %d]",
			c.API.DefaultPageSize, c.API.MaxPageSize))
	}

	return errors.Join(errs...)
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, "production")
}
