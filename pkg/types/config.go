// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings for components that make network
// requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "quip-export/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// RetryConfig is the retry policy applied uniformly at the transport
// boundary. Transient failures (connection errors, HTTP 429/502/503/504)
// are retried with exponential backoff; exhaustion surfaces as a normal
// error, never a process abort.
type RetryConfig struct {
	// MaxAttempts is the total number of tries per request (default 4).
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts"`

	// BaseDelay is the first backoff delay; it doubles on each further
	// attempt (default 2s).
	BaseDelay time.Duration `json:"base_delay" yaml:"base_delay"`
}

// QuipConfig holds settings for the Quip API client.
type QuipConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the API root (default "https://platform.quip.com/1").
	BaseURL string `json:"base_url" yaml:"base_url"`

	// AccessToken is the personal access token presented as a Bearer
	// credential on every request.
	AccessToken string `json:"access_token,omitempty" yaml:"access_token,omitempty"`

	// Retry is the transport retry policy.
	Retry RetryConfig `json:"retry" yaml:"retry"`

	// RequestDelay is a politeness pause after each successful API call,
	// keeping the request rate under the service's limits. Zero disables
	// the pause; the CLI defaults it to 120ms.
	RequestDelay time.Duration `json:"request_delay" yaml:"request_delay"`
}

// ExportConfig holds settings for an export run.
type ExportConfig struct {
	// OutDir is the base output directory. Each exported root folder gets
	// a subdirectory named after its slugified title.
	OutDir string `json:"out_dir" yaml:"out_dir"`

	// Recursive controls whether subfolders are descended into.
	Recursive bool `json:"recursive" yaml:"recursive"`

	// MaintainStructure mirrors the Quip folder hierarchy in the output
	// tree. When false all documents land directly under the export root.
	MaintainStructure bool `json:"maintain_structure" yaml:"maintain_structure"`

	// DeleteStale removes a moved document's file at its previous path.
	DeleteStale bool `json:"delete_stale" yaml:"delete_stale"`

	// Concurrency bounds the number of documents fetched, converted, and
	// written in parallel (default 4).
	Concurrency int `json:"concurrency" yaml:"concurrency"`
}
