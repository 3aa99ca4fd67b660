package types

import "errors"

var (
	// ErrNotFound indicates a requested favorite, account or session does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a record with the same key is already stored.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates a missing or malformed request field.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUpstreamUnavailable indicates the directory API was unreachable or
	// answered with a non-2xx status.
	ErrUpstreamUnavailable = errors.New("directory service unavailable")

	// ErrMalformedResponse indicates an expected field was absent from a
	// directory payload.
	ErrMalformedResponse = errors.New("malformed directory response")

	// ErrStoreUnavailable indicates the document store could not be reached.
	ErrStoreUnavailable = errors.New("document store unavailable")

	// ErrAuthFailed is returned for any failed login, whatever the cause.
	ErrAuthFailed = errors.New("login failed")

	// ErrUnauthorized indicates a missing, expired or unresolvable session.
	ErrUnauthorized = errors.New("unauthorized")
)
