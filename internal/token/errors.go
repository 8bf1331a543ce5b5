package token

import "errors"

var (
	ErrTokenGeneration = errors.New("failed to generate token")
	ErrInvalidToken    = errors.New("invalid token")
	ErrExpiredToken    = errors.New("token expired")

	// ErrWrongPurpose is returned when, say, a sign-in link token is
	// presented as an access token.
	ErrWrongPurpose = errors.New("token used for the wrong purpose")
)
