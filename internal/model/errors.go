package model

import "errors"

var (
	// Session related errors
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
	ErrNoRefreshToken  = errors.New("no refresh token")

	// Permission/Access related errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Resource related errors
	ErrNotFound = errors.New("not found")

	// Upload related errors
	ErrUnsupportedImage = errors.New("unsupported image")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)
