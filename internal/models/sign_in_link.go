package models

import "time"

// SignInLink records a passwordless sign-in link issued by the local provider.
// Only a salted hash of the link token is stored.
type SignInLink struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	Email     string `gorm:"index;not null"`
	TokenHash string `gorm:"not null"`
	TokenSalt string `gorm:"not null"`
	Redirect  string
	ExpiresAt time.Time `gorm:"index;not null"`
	UsedAt    *time.Time
	CreatedAt time.Time
}

// TableName specifies the table name for GORM
func (SignInLink) TableName() string {
	return "sign_in_links"
}

// IsExpired reports whether the link can no longer be used because of its age.
func (l *SignInLink) IsExpired() bool {
	return time.Now().After(l.ExpiresAt)
}

// IsUsed reports whether the link was already exchanged.
func (l *SignInLink) IsUsed() bool {
	return l.UsedAt != nil
}

// RevokedToken marks an access token issued by the local provider as signed out.
type RevokedToken struct {
	TokenID   string    `gorm:"primaryKey;type:varchar(36)"`
	ExpiresAt time.Time `gorm:"index;not null"`
	CreatedAt time.Time
}

// TableName specifies the table name for GORM
func (RevokedToken) TableName() string {
	return "revoked_tokens"
}
