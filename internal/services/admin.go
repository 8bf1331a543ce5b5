package services

import (
	"context"
	"fmt"

	"github.com/psychmag/psychmag/internal/core"
	"github.com/psychmag/psychmag/internal/models"
	"github.com/psychmag/psychmag/internal/store"
	"github.com/psychmag/psychmag/internal/util"
)

// AdminService manages the allowlist. Only super admins reach it.
type AdminService struct {
	store *store.Store
	rec   mutationRecorder
}

func NewAdminService(s *store.Store, auditor Auditor, metrics core.Recorder) *AdminService {
	return &AdminService{
		store: s,
		rec:   mutationRecorder{auditor: auditor, metrics: metrics},
	}
}

func (s *AdminService) List(ctx context.Context) ([]models.Admin, error) {
	return s.store.ListAdmins(ctx)
}

func (s *AdminService) Get(ctx context.Context, email string) (*models.Admin, error) {
	admin, err := s.store.GetAdminByEmail(ctx, email)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return admin, nil
}

// Add puts email on the allowlist.
func (s *AdminService) Add(ctx context.Context, email string, isSuperAdmin bool) (*models.Admin, error) {
	email = models.NormalizeEmail(email)
	if !util.IsValidEmail(email) {
		return nil, ErrInvalidEmail
	}

	admin := &models.Admin{Email: email, IsSuperAdmin: isSuperAdmin}
	err := s.store.CreateAdmin(ctx, admin)
	s.recordChange(ctx, models.EventAdminAdded, email, "Added admin", err,
		models.AuditDetails{"is_super_admin": isSuperAdmin})
	if err != nil {
		return nil, err
	}
	return admin, nil
}

// Remove deletes email from the allowlist. Super admins cannot remove
// themselves, and the last super admin cannot be removed.
func (s *AdminService) Remove(ctx context.Context, actorEmail, email string) error {
	email = models.NormalizeEmail(email)
	if email == models.NormalizeEmail(actorEmail) {
		return ErrSelfModification
	}

	err := mapStoreError(s.store.DeleteAdmin(ctx, email))
	s.recordChange(ctx, models.EventAdminRemoved, email, "Removed admin", err, nil)
	return err
}

// SetSuperAdmin grants or revokes the super admin flag of email.
func (s *AdminService) SetSuperAdmin(
	ctx context.Context,
	actorEmail, email string,
	isSuperAdmin bool,
) (*models.Admin, error) {
	email = models.NormalizeEmail(email)
	if !isSuperAdmin && email == models.NormalizeEmail(actorEmail) {
		return nil, ErrSelfModification
	}

	admin, err := s.store.SetSuperAdmin(ctx, email, isSuperAdmin)
	err = mapStoreError(err)
	s.recordChange(ctx, models.EventAdminRoleChanged, email,
		fmt.Sprintf("Set super admin to %t", isSuperAdmin), err,
		models.AuditDetails{"is_super_admin": isSuperAdmin})
	if err != nil {
		return nil, err
	}
	return admin, nil
}

func (s *AdminService) Counts(ctx context.Context) (total, superAdmins int64, err error) {
	return s.store.CountAdmins(ctx)
}

func (s *AdminService) recordChange(
	ctx context.Context,
	event models.EventType,
	email, action string,
	err error,
	details models.AuditDetails,
) {
	if s.rec.metrics != nil {
		s.rec.metrics.RecordContentMutation(string(models.ResourceAdmin), string(event), err == nil)
	}

	entry := AuditLogEntry{
		EventType:    event,
		Severity:     models.SeverityWarning,
		ResourceType: models.ResourceAdmin,
		ResourceID:   email,
		ResourceName: email,
		Action:       action,
		Details:      details,
		Success:      err == nil,
	}
	if err != nil {
		entry.ErrorMessage = err.Error()
	}
	s.rec.recordEvent(ctx, entry)
}
