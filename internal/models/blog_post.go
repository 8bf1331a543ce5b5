package models

import "time"

// BlogPost is an article addressed publicly by its slug.
type BlogPost struct {
	ID          string     `gorm:"primaryKey;type:varchar(36)"  json:"id"`
	Title       string     `gorm:"not null"                     json:"title"`
	Slug        string     `gorm:"uniqueIndex;not null"         json:"slug"`
	Excerpt     string     `gorm:"type:text"                    json:"excerpt"`
	CoverPath   string     `                                    json:"cover_path"`
	Content     Document   `gorm:"type:json"                    json:"content,omitempty"`
	AuthorName  string     `                                    json:"author_name"`
	Published   bool       `gorm:"index;not null"               json:"published"`
	PublishedAt *time.Time `gorm:"index"                        json:"published_at"`
	CreatedAt   time.Time  `                                    json:"created_at"`
	UpdatedAt   time.Time  `                                    json:"updated_at"`

	CoverURL string `gorm:"-" json:"cover_url,omitempty"`
}

// TableName specifies the table name for GORM
func (BlogPost) TableName() string {
	return "blog_posts"
}
