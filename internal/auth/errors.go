package auth

import "errors"

var (
	// ErrInvalidEmail is returned when a sign-in is requested for a malformed address
	ErrInvalidEmail = errors.New("invalid e-mail address")

	// ErrInvalidSignInLink covers unknown, tampered, reused and expired links
	ErrInvalidSignInLink = errors.New("invalid or expired sign-in link")

	// HTTP API errors
	ErrHTTPAPIConnection  = errors.New("failed to connect to authentication API")
	ErrHTTPAPIAuthFailed  = errors.New("authentication API rejected request")
	ErrHTTPAPIInvalidResp = errors.New("invalid response from authentication API")
)
