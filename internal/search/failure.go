// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/pdiddy/evidence-engine/internal/httputil"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

// FailureKind classifies why a provider attempt did not produce results.
type FailureKind string

const (
	KindQuotaExceeded FailureKind = "quota-exceeded"
	KindAuthInvalid   FailureKind = "auth-invalid"
	KindTransientHTTP FailureKind = "transient-http"
	KindTimeout       FailureKind = "timeout"
)

// ErrMissingCredentials is returned by an adapter invoked without an API key.
var ErrMissingCredentials = errors.New("missing API credentials")

// ProviderError is a classified provider failure.
type ProviderError struct {
	Provider types.ProviderName
	Kind     FailureKind
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Classify maps an adapter error to a failure kind. Status codes follow a
// fixed table: 429 is quota, 401 and 403 are auth, any other non-2xx is
// transient. Deadlines and transport errors are timeouts. Errors an adapter
// already classified keep their kind.
func Classify(err error) FailureKind {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind
	}

	var se *httputil.StatusError
	if errors.As(err, &se) {
		return KindForStatus(se.StatusCode)
	}

	switch {
	case errors.Is(err, ErrMissingCredentials):
		return KindAuthInvalid
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return KindTimeout
	}

	var ne net.Error
	if errors.As(err, &ne) {
		return KindTimeout
	}
	return KindTransientHTTP
}

// KindForStatus maps a non-2xx HTTP status to a failure kind.
func KindForStatus(code int) FailureKind {
	switch code {
	case http.StatusTooManyRequests:
		return KindQuotaExceeded
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindAuthInvalid
	default:
		return KindTransientHTTP
	}
}
