package services

import (
	"errors"

	"github.com/psychmag/psychmag/internal/store"
)

var (
	// ErrNotFound is returned when the addressed record does not exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput wraps every validation failure
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidEmail is returned for malformed e-mail addresses
	ErrInvalidEmail = errors.New("invalid e-mail address")

	// ErrSelfModification is returned when a super admin tries to remove or
	// demote their own allowlist row
	ErrSelfModification = errors.New("cannot remove or demote yourself")

	ErrAdminExists    = store.ErrAdminExists
	ErrLastSuperAdmin = store.ErrLastSuperAdmin
	ErrSlugConflict   = store.ErrSlugConflict
)

// mapStoreError translates store sentinels into service errors.
func mapStoreError(err error) error {
	if errors.Is(err, store.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
