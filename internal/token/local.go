package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/psychmag/psychmag/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// LocalTokenProvider signs and verifies HS256 tokens with JWT_SECRET.
type LocalTokenProvider struct {
	secret []byte
	issuer string
}

func NewLocalTokenProvider(cfg *config.Config) *LocalTokenProvider {
	return &LocalTokenProvider{
		secret: []byte(cfg.JWTSecret),
		issuer: cfg.BaseURL,
	}
}

// Generate signs a token for email with the given purpose. When tokenID is
// empty a fresh UUID is used as the "jti" claim.
func (p *LocalTokenProvider) Generate(
	subject, email, purpose, tokenID string,
	ttl time.Duration,
) (*Result, error) {
	if tokenID == "" {
		tokenID = uuid.New().String()
	}
	now := time.Now()
	expiresAt := now.Add(ttl)

	claims := jwt.MapClaims{
		"sub":     subject,
		"email":   email,
		"purpose": purpose,
		"exp":     expiresAt.Unix(),
		"iat":     now.Unix(),
		"iss":     p.issuer,
		"jti":     tokenID,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}

	return &Result{
		TokenString: signed,
		TokenID:     tokenID,
		ExpiresAt:   time.Unix(expiresAt.Unix(), 0),
	}, nil
}

// Validate verifies the signature, expiry and purpose of tokenString.
func (p *LocalTokenProvider) Validate(tokenString, purpose string) (*ValidationResult, error) {
	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return p.secret, nil
	}, jwt.WithIssuer(p.issuer), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	gotPurpose, _ := claims["purpose"].(string)
	if gotPurpose != purpose {
		return nil, ErrWrongPurpose
	}

	tokenID, _ := claims["jti"].(string)
	email, _ := claims["email"].(string)
	subject, _ := claims["sub"].(string)
	if tokenID == "" || email == "" {
		return nil, fmt.Errorf("%w: missing jti or email claim", ErrInvalidToken)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, ErrInvalidToken
	}

	return &ValidationResult{
		TokenID:   tokenID,
		Subject:   subject,
		Email:     email,
		Purpose:   gotPurpose,
		ExpiresAt: exp.Time,
	}, nil
}
