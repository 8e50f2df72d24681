package user

import "errors"

var (
	ErrNotFound           = errors.New("user not found")
	ErrAlreadyExists      = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrStoreUnavailable wraps any datastore failure (connection, timeout, missing store).
	ErrStoreUnavailable = errors.New("user store unavailable")
	ErrUnauthorized     = errors.New("not authorized to access this route")
)
