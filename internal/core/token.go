package core

import "time"

// TokenResult is the outcome of signing a token.
type TokenResult struct {
	TokenString string
	TokenID     string
	ExpiresAt   time.Time
}

// TokenValidationResult is the outcome of verifying a signed token.
type TokenValidationResult struct {
	TokenID   string
	Subject   string
	Email     string
	Purpose   string
	ExpiresAt time.Time
}
