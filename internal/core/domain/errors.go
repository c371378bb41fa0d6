package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown content or normaliser type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrNoContent indicates an extraction run produced nothing.
	ErrNoContent = errors.New("no content found")

	// ErrNoCourse indicates no course identifier could be resolved.
	ErrNoCourse = errors.New("no course id")

	// Remote Errors.

	// ErrForbidden indicates the platform denied access to a resource.
	ErrForbidden = errors.New("access denied")

	// ErrUnauthorized indicates the supplied token or cookie was rejected.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrRelayUnavailable indicates the relay backend could not be reached.
	ErrRelayUnavailable = errors.New("relay unavailable")
)
