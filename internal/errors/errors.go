// Package errors defines the sentinel errors shared across the portal.
// Handlers translate these into HTTP responses; internal packages wrap
// them with fmt.Errorf("...: %w", err) for context.
package errors

import "errors"

// Request errors.
var (
	// ErrUnauthenticated means no valid web session is present.
	// Web handlers recover by redirecting to the login flow.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrUnauthorized means a presented secret did not validate.
	// Machine-facing handlers surface this as a hard 401.
	ErrUnauthorized = errors.New("invalid credentials")

	// ErrBadRequest means a machine-facing request is missing required fields.
	ErrBadRequest = errors.New("missing required fields")

	ErrNotFound = errors.New("not found")
)

// Collaborator errors.
var (
	// ErrUpstream covers identity-provider and payment-processor failures.
	ErrUpstream = errors.New("upstream request failed")
)
