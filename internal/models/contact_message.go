package models

import "time"

// ContactMessage is a message left through the public contact form.
type ContactMessage struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Email     string    `gorm:"not null"                    json:"email"`
	Message   string    `gorm:"type:text;not null"          json:"message"`
	CreatedAt time.Time `gorm:"index"                       json:"created_at"`
}

// TableName specifies the table name for GORM
func (ContactMessage) TableName() string {
	return "contact_messages"
}
