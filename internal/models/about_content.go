package models

import "time"

// AboutContentID is the primary key of the single about row.
const AboutContentID = 1

// AboutContent holds the text of the about page. The table has one row.
type AboutContent struct {
	ID        uint      `gorm:"primaryKey"     json:"-"`
	Content   string    `gorm:"type:text"      json:"content"`
	UpdatedBy string    `                      json:"updated_by"`
	UpdatedAt time.Time `                      json:"updated_at"`
}

// TableName specifies the table name for GORM
func (AboutContent) TableName() string {
	return "about_content"
}
