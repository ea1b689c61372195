// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds configuration and identifier types shared across the
// client packages.
package types

import "time"

// HTTPConfig holds shared HTTP settings for packages that talk to the API.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "adsabs/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ClientConfig holds settings for the API transport.
type ClientConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the API root. Empty means the canonical ADS endpoint.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// Token is an explicit API token. When empty the transport falls back
	// to the environment variables and token files described in the
	// transport package.
	Token string `json:"token,omitempty" yaml:"token,omitempty"`

	// RequestsPerSecond enables client-side pacing when positive. The API
	// enforces its own daily quotas through rate-limit headers; pacing is
	// for callers who want to stay well under them.
	RequestsPerSecond float64 `json:"requests_per_second,omitempty" yaml:"requests_per_second,omitempty"`

	// Burst is the pacing burst size. Ignored unless RequestsPerSecond is
	// positive; defaults to 1.
	Burst int `json:"burst,omitempty" yaml:"burst,omitempty"`
}

// SearchConfig holds settings for the search stream.
type SearchConfig struct {
	// PageSize is the number of rows fetched per page (max 200).
	PageSize int `json:"page_size" yaml:"page_size"`

	// MaxRows is the default total number of rows a query retrieves when
	// the caller does not say otherwise.
	MaxRows int `json:"max_rows" yaml:"max_rows"`
}

// RefTableConfig holds settings for the local reference tables.
type RefTableConfig struct {
	// Dir is the directory holding the cache database. Empty means
	// os.UserConfigDir()/adsabs.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`
}
