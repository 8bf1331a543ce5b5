package models

import "time"

// Magazine is a published issue with a cover image and a PDF file.
type Magazine struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Title       string    `gorm:"not null"                    json:"title"`
	Issue       string    `                                   json:"issue"`
	IssueNumber int       `gorm:"index"                       json:"issue_number"`
	CoverPath   string    `                                   json:"cover_path"`
	PDFPath     string    `gorm:"column:pdf_path"             json:"pdf_path"`
	Published   bool      `gorm:"index;not null"              json:"published"`
	CreatedAt   time.Time `gorm:"index"                       json:"created_at"`
	UpdatedAt   time.Time `                                   json:"updated_at"`

	// Public links built from the media base URLs; not stored
	CoverURL string `gorm:"-" json:"cover_url,omitempty"`
	PDFURL   string `gorm:"-" json:"pdf_url,omitempty"`
}

// TableName specifies the table name for GORM
func (Magazine) TableName() string {
	return "magazines"
}
