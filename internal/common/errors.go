// Package common defines shared constants and sentinel errors used across
// the client and the document server. Callers match them with errors.Is.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Identity errors.
	ErrNoUser = errors.New("no authenticated user")

	// Remote store errors.
	ErrUnauthorized      = errors.New("unauthorized")
	ErrUnavailable       = errors.New("remote store unavailable")
	ErrOwnershipConflict = errors.New("document owned by another user")

	// Data errors. A malformed document is dropped by readers, an invalid
	// record is refused by writers.
	ErrMalformedDocument = errors.New("malformed document")
	ErrInvalidRecord     = errors.New("invalid record")

	// Token errors.
	ErrInvalidToken = errors.New("invalid token")
)
