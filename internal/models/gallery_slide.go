package models

import "time"

// GallerySlide is one image of the home page carousel.
type GallerySlide struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Title      string    `                                   json:"title"`
	Subtitle   string    `                                   json:"subtitle"`
	ImagePath  string    `gorm:"not null"                    json:"image_path"`
	OrderIndex int       `gorm:"index;not null;default:0"    json:"order_index"`
	Active     bool      `gorm:"index;not null"              json:"active"`
	CreatedAt  time.Time `                                   json:"created_at"`
	UpdatedAt  time.Time `                                   json:"updated_at"`

	ImageURL string `gorm:"-" json:"image_url,omitempty"`
}

// TableName specifies the table name for GORM
func (GallerySlide) TableName() string {
	return "home_gallery"
}
