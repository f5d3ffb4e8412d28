// Package common defines shared constants and sentinel errors used across
// authvault packages. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrUnavailable   = errors.New("store unavailable")

	// Boundary outcomes surfaced by the registration and login flows.
	// These four are the only errors that cross the flow boundary.
	ErrValidation         = errors.New("validation error")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInternal           = errors.New("internal error")

	// Token errors (invalid, malformed, or expired token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Field-encryption errors. Decryption fails closed: a tampered or
	// undecryptable envelope yields this error, never corrupted plaintext.
	ErrDecryptionFailed = errors.New("decryption failed")
)
