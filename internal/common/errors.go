// Package common defines shared constants and sentinel errors used across
// the command and serving processes. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// ErrStorage marks a failure of the persistence layer. Services wrap
	// driver errors with it so transports can answer with a generic error.
	ErrStorage = errors.New("storage failure")

	// Service-level errors.
	ErrorUnauthorized  = errors.New("unauthorized")
	ErrInvalidArgument = errors.New("invalid argument")

	// Token minting preconditions.
	ErrNotVerified         = errors.New("user is not verified")
	ErrVerificationExpired = errors.New("verification expired")

	// Auth errors (invalid or malformed caller credential).
	ErrInvalidToken = errors.New("invalid token")

	// ErrUpstreamExtraction is returned when the media extractor fails.
	ErrUpstreamExtraction = errors.New("upstream extraction failure")
)
