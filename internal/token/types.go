package token

import "github.com/psychmag/psychmag/internal/core"

// Token purposes carried in the "purpose" claim
const (
	PurposeSignInLink = "sign_in_link"
	PurposeAccess     = "access"
)

// Result is an alias for core.TokenResult.
type Result = core.TokenResult

// ValidationResult is an alias for core.TokenValidationResult.
type ValidationResult = core.TokenValidationResult
