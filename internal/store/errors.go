package store

import "errors"

var (
	// ErrRecordNotFound wraps GORM's not found error for consistency
	ErrRecordNotFound = errors.New("record not found")

	// ErrAdminExists is returned when an e-mail is already on the allowlist
	ErrAdminExists = errors.New("admin already exists")

	// ErrLastSuperAdmin is returned when a change would leave the allowlist
	// without any super admin.
	ErrLastSuperAdmin = errors.New("cannot remove the last super admin")

	// ErrSlugConflict is returned when a blog post slug is already taken
	ErrSlugConflict = errors.New("slug already exists")

	// ErrSignInLinkUsed is returned by ConsumeSignInLink when the link was
	// already consumed by a concurrent request (0 rows updated).
	ErrSignInLinkUsed = errors.New("sign-in link already used")
)
