// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across the exporter.
package httputil

import (
	"context"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/pdiddy/quip-export/pkg/types"
)

const (
	defaultMaxAttempts = 4
	defaultBaseDelay   = 2 * time.Second
)

// Retryable reports whether an HTTP status indicates a transient condition
// worth retrying: rate limiting and upstream gateway failures.
func Retryable(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// DoWithRetry executes an HTTP request, retrying connection errors and
// retryable statuses per the policy. The delay starts at policy.BaseDelay
// and doubles each attempt. If the context is cancelled during a backoff
// wait the function returns ctx.Err(). After exhausting attempts the last
// retryable response is returned as-is so the caller can inspect it;
// repeated connection errors return the last such error.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, policy types.RetryConfig) (*http.Response, error) {
	attempts := policy.MaxAttempts
	if attempts <= 0 {
		attempts = defaultMaxAttempts
	}
	base := policy.BaseDelay
	if base <= 0 {
		base = defaultBaseDelay
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * base
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			lastErr = err
			continue
		}
		if !Retryable(resp.StatusCode) {
			return resp, nil
		}
		if attempt == attempts-1 {
			return resp, nil
		}

		// Drain and close the body before retrying.
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}
	return nil, lastErr
}
