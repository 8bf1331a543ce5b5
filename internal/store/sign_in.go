package store

import (
	"context"
	"time"

	"github.com/psychmag/psychmag/internal/models"
)

func (s *Store) CreateSignInLink(ctx context.Context, link *models.SignInLink) error {
	return s.db.WithContext(ctx).Create(link).Error
}

func (s *Store) GetSignInLink(ctx context.Context, id string) (*models.SignInLink, error) {
	var link models.SignInLink
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&link).Error; err != nil {
		return nil, notFound(err)
	}
	return &link, nil
}

// ConsumeSignInLink marks the link used. Only the first caller succeeds; a
// concurrent second exchange gets ErrSignInLinkUsed.
func (s *Store) ConsumeSignInLink(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Model(&models.SignInLink{}).
		Where("id = ? AND used_at IS NULL", id).
		Update("used_at", time.Now())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSignInLinkUsed
	}
	return nil
}

func (s *Store) DeleteExpiredSignInLinks(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("expires_at < ?", time.Now()).
		Delete(&models.SignInLink{})
	return result.RowsAffected, result.Error
}

// RevokeToken records a signed-out access token until its natural expiry.
// Revoking the same token twice is not an error.
func (s *Store) RevokeToken(ctx context.Context, tokenID string, expiresAt time.Time) error {
	revoked := &models.RevokedToken{TokenID: tokenID, ExpiresAt: expiresAt}
	err := s.db.WithContext(ctx).Create(revoked).Error
	if isUniqueViolation(err) {
		return nil
	}
	return err
}

func (s *Store) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.RevokedToken{}).
		Where("token_id = ?", tokenID).
		Count(&count).Error
	return count > 0, err
}

func (s *Store) DeleteExpiredRevokedTokens(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("expires_at < ?", time.Now()).
		Delete(&models.RevokedToken{})
	return result.RowsAffected, result.Error
}
