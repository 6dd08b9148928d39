// Immotrack - Apartment Listing Tracker
// Copyright 2026 Immotrack Contributors
// SPDX-License-Identifier: MIT
// https://github.com/immotrack/immotrack

// Package config loads and validates the service configuration.
//
// Configuration is layered: struct defaults, then an optional YAML file,
// then environment variables (highest priority). The resulting Config is
// loaded once at startup and passed to components; nothing reads the
// environment ad hoc afterwards.
package config

import "time"

// Config is the root configuration structure.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Security SecurityConfig `koanf:"security"`
	API      APIConfig      `koanf:"api"`
	Scraper  ScraperConfig  `koanf:"scraper"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`

	// Timeout applies to both read and write on the HTTP server.
	Timeout time.Duration `koanf:"timeout"`

	// AppURL is the public base URL of this deployment, used to build the
	// OIDC redirect URL and absolute links. Required.
	AppURL string `koanf:"app_url"`

	// Environment is "development" or "production".
	Environment string `koanf:"environment"`
}

// DatabaseConfig holds SQLite settings.
type DatabaseConfig struct {
	// Path is the single-file database location. The parent directory is
	// created at startup if missing.
	Path string `koanf:"path"`
}

// OIDCConfig holds the relying-party settings for the external identity
// provider. Issuer, client id and client secret are required.
type OIDCConfig struct {
	IssuerURL    string `koanf:"issuer_url"`
	ClientID     string `koanf:"client_id"`
	ClientSecret string `koanf:"client_secret"`

	// RedirectURL defaults to AppURL + "/auth/callback" when empty.
	RedirectURL string `koanf:"redirect_url"`

	Scopes                []string `koanf:"scopes"`
	PKCEEnabled           bool     `koanf:"pkce_enabled"`
	PostLogoutRedirectURI string   `koanf:"post_logout_redirect_uri"`
}

// SecurityConfig holds credentials and request-protection settings.
type SecurityConfig struct {
	// APIKey is the static key accepted in the X-API-Key header. Required.
	APIKey string `koanf:"api_key"`

	// SessionSecret signs the session cookie. Required, minimum 32 bytes.
	SessionSecret string `koanf:"session_secret"`

	SessionMaxAge time.Duration `koanf:"session_max_age"`
	CookieName    string        `koanf:"cookie_name"`
	CookieSecure  bool          `koanf:"cookie_secure"`

	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	CORSOrigins []string `koanf:"cors_origins"`

	OIDC OIDCConfig `koanf:"oidc"`
}

// APIConfig holds pagination defaults.
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
}

// ScraperConfig holds settings for the listing-page scraper.
type ScraperConfig struct {
	Timeout   time.Duration `koanf:"timeout"`
	UserAgent string        `koanf:"user_agent"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config with all defaults applied. These are the
// lowest-priority layer, overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8000,
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Database: DatabaseConfig{
			Path: "data/immotrack.db",
		},
		Security: SecurityConfig{
			SessionMaxAge:   24 * time.Hour,
			CookieName:      "immotrack_session",
			CookieSecure:    true,
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
			OIDC: OIDCConfig{
				Scopes:                []string{"openid", "profile", "email"},
				PKCEEnabled:           true,
				PostLogoutRedirectURI: "/",
			},
		},
		API: APIConfig{
			DefaultPageSize: 50,
			MaxPageSize:     200,
		},
		Scraper: ScraperConfig{
			Timeout:   15 * time.Second,
			UserAgent: "Mozilla/5.0 (compatible; Immotrack/1.0)",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
