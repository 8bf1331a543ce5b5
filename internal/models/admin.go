package models

import (
	"strings"
	"time"
)

// Admin is a row of the allowlist of e-mails permitted to manage content.
type Admin struct {
	Email        string    `gorm:"primaryKey;type:varchar(320)" json:"email"`
	IsSuperAdmin bool      `gorm:"not null;default:false"       json:"is_super_admin"`
	CreatedAt    time.Time `                                    json:"created_at"`
	UpdatedAt    time.Time `                                    json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Admin) TableName() string {
	return "admins"
}

// NormalizeEmail is the single normalization applied to e-mails before any
// allowlist lookup or write.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
