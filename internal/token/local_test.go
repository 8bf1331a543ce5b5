package token

import (
	"testing"
	"time"

	"github.com/psychmag/psychmag/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider() *LocalTokenProvider {
	return NewLocalTokenProvider(&config.Config{
		JWTSecret: "test-secret-key-for-jwt-signing",
		BaseURL:   "http://localhost:8080",
	})
}

func TestLocalTokenProvider_GenerateAndValidate(t *testing.T) {
	provider := newTestProvider()

	result, err := provider.Generate("sub-1", "admin@x.com", PurposeAccess, "", time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, result.TokenString)
	assert.NotEmpty(t, result.TokenID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), result.ExpiresAt, 5*time.Second)

	validated, err := provider.Validate(result.TokenString, PurposeAccess)
	require.NoError(t, err)
	assert.Equal(t, result.TokenID, validated.TokenID)
	assert.Equal(t, "sub-1", validated.Subject)
	assert.Equal(t, "admin@x.com", validated.Email)
	assert.Equal(t, result.ExpiresAt.Unix(), validated.ExpiresAt.Unix())
}

func TestLocalTokenProvider_FixedTokenID(t *testing.T) {
	provider := newTestProvider()

	result, err := provider.Generate("", "a@x.com", PurposeSignInLink, "link-123", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "link-123", result.TokenID)

	validated, err := provider.Validate(result.TokenString, PurposeSignInLink)
	require.NoError(t, err)
	assert.Equal(t, "link-123", validated.TokenID)
}

func TestLocalTokenProvider_Validate_Errors(t *testing.T) {
	provider := newTestProvider()

	expired, err := provider.Generate("s", "a@x.com", PurposeAccess, "", -time.Minute)
	require.NoError(t, err)
	link, err := provider.Generate("s", "a@x.com", PurposeSignInLink, "", time.Minute)
	require.NoError(t, err)

	other := NewLocalTokenProvider(&config.Config{
		JWTSecret: "another-secret",
		BaseURL:   "http://localhost:8080",
	})
	foreign, err := other.Generate("s", "a@x.com", PurposeAccess, "", time.Minute)
	require.NoError(t, err)

	wrongIssuer := NewLocalTokenProvider(&config.Config{
		JWTSecret: "test-secret-key-for-jwt-signing",
		BaseURL:   "https://evil.example.com",
	})
	issued, err := wrongIssuer.Generate("s", "a@x.com", PurposeAccess, "", time.Minute)
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"email":   "a@x.com",
		"purpose": PurposeAccess,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	noneString, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"expired", expired.TokenString, ErrExpiredToken},
		{"wrong purpose", link.TokenString, ErrWrongPurpose},
		{"wrong secret", foreign.TokenString, ErrInvalidToken},
		{"wrong issuer", issued.TokenString, ErrInvalidToken},
		{"alg none", noneString, ErrInvalidToken},
		{"garbage", "not-a-jwt", ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := provider.Validate(tt.token, PurposeAccess)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
