package auth

import "errors"

var (
	// ErrPortInUse indicates the callback port is already bound by another
	// process. Callers may retry with a different --port.
	ErrPortInUse = errors.New("callback port already in use")

	// ErrLoginTimeout indicates no browser callback arrived within the
	// configured window. The user should simply try again.
	ErrLoginTimeout = errors.New("timed out waiting for browser login")

	// ErrLoginCancelled indicates the attempt was stopped before completion.
	ErrLoginCancelled = errors.New("login cancelled")

	// ErrInvalidState indicates the callback carried a state token that does
	// not match the one generated for this attempt.
	ErrInvalidState = errors.New("invalid state parameter")
)
