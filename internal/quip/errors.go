// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package quip

import (
	"errors"
	"fmt"
)

var (
	// ErrAuth marks 401/403 responses. The token is bad or lacks access;
	// no further calls can succeed, so callers abort the whole run.
	ErrAuth = errors.New("quip: authorization failed")

	// ErrNotFound marks 404 responses.
	ErrNotFound = errors.New("quip: not found")
)

// TransientError wraps a transient failure that survived the retry policy:
// rate limiting, gateway errors, or connection failures. Callers demote it
// to a per-document failure rather than aborting the run.
type TransientError struct {
	// Status is the final HTTP status, or zero for transport errors.
	Status int
	Err    error
}

func (e *TransientError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("quip: transient HTTP %d", e.Status)
	}
	return fmt.Sprintf("quip: transient: %v", e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }
