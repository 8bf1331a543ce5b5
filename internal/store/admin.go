package store

import (
	"context"

	"github.com/psychmag/psychmag/internal/models"

	"gorm.io/gorm"
)

// GetAdminByEmail looks up one allowlist row. The e-mail is normalized before
// the query; a missing row yields ErrRecordNotFound.
func (s *Store) GetAdminByEmail(ctx context.Context, email string) (*models.Admin, error) {
	var admin models.Admin
	err := s.db.WithContext(ctx).
		Where("email = ?", models.NormalizeEmail(email)).
		First(&admin).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &admin, nil
}

func (s *Store) ListAdmins(ctx context.Context) ([]models.Admin, error) {
	var admins []models.Admin
	err := s.db.WithContext(ctx).
		Order("is_super_admin DESC, email ASC").
		Find(&admins).Error
	return admins, err
}

func (s *Store) CreateAdmin(ctx context.Context, admin *models.Admin) error {
	admin.Email = models.NormalizeEmail(admin.Email)
	if err := s.db.WithContext(ctx).Create(admin).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrAdminExists
		}
		return err
	}
	return nil
}

// DeleteAdmin removes an e-mail from the allowlist. Removing the only
// remaining super admin fails with ErrLastSuperAdmin.
func (s *Store) DeleteAdmin(ctx context.Context, email string) error {
	email = models.NormalizeEmail(email)
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var admin models.Admin
		if err := tx.Where("email = ?", email).First(&admin).Error; err != nil {
			return notFound(err)
		}
		if admin.IsSuperAdmin {
			if err := ensureAnotherSuperAdmin(tx, email); err != nil {
				return err
			}
		}
		return requireAffected(tx.Where("email = ?", email).Delete(&models.Admin{}))
	})
}

// SetSuperAdmin grants or revokes the super admin flag. Revoking it from the
// only remaining super admin fails with ErrLastSuperAdmin.
func (s *Store) SetSuperAdmin(ctx context.Context, email string, isSuper bool) (*models.Admin, error) {
	email = models.NormalizeEmail(email)
	var admin models.Admin
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ?", email).First(&admin).Error; err != nil {
			return notFound(err)
		}
		if admin.IsSuperAdmin == isSuper {
			return nil
		}
		if !isSuper {
			if err := ensureAnotherSuperAdmin(tx, email); err != nil {
				return err
			}
		}
		admin.IsSuperAdmin = isSuper
		return tx.Model(&admin).Update("is_super_admin", isSuper).Error
	})
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

// CountAdmins returns the allowlist size and how many of those are super admins.
func (s *Store) CountAdmins(ctx context.Context) (total, superAdmins int64, err error) {
	db := s.db.WithContext(ctx).Model(&models.Admin{})
	if err = db.Count(&total).Error; err != nil {
		return 0, 0, err
	}
	err = s.db.WithContext(ctx).Model(&models.Admin{}).
		Where("is_super_admin = ?", true).
		Count(&superAdmins).Error
	return total, superAdmins, err
}

func ensureAnotherSuperAdmin(tx *gorm.DB, email string) error {
	var others int64
	if err := tx.Model(&models.Admin{}).
		Where("is_super_admin = ? AND email <> ?", true, email).
		Count(&others).Error; err != nil {
		return err
	}
	if others == 0 {
		return ErrLastSuperAdmin
	}
	return nil
}
