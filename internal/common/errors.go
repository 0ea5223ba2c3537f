// Package common defines shared constants and sentinel errors used across
// the service, the pipelines and the terminal front-end. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Input errors, recovered locally by re-prompting.
	ErrValidation      = errors.New("validation error")
	ErrInvalidArgument = errors.New("invalid argument")

	// Missing credentials or connection settings, fatal at startup.
	ErrConfiguration = errors.New("configuration error")

	// Completion or search call failed. Never retried automatically.
	ErrService = errors.New("service error")

	// Persistence errors.
	ErrStore            = errors.New("store error")
	ErrStoreUnavailable = errors.New("store unavailable")

	// AuthGate errors.
	ErrDuplicateUser = errors.New("username already exists")
	ErrUserNotFound  = errors.New("user not found")
	ErrBadCredential = errors.New("incorrect password")

	// Template errors.
	ErrUnknownTemplate = errors.New("unknown template")
	ErrMissingField    = errors.New("missing template field")
)
