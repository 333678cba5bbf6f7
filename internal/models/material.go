package models

import "time"

// Material represents a learning unit inside a course.
type Material struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CourseID    uint      `gorm:"not null;index" json:"course_id"`
	Title       string    `gorm:"size:120;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedBy   uint      `gorm:"not null;index" json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Course      Course    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Contents    []MaterialContent
}

// Material content types supported by the content manager.
const (
	ContentTypeText    = "text"
	ContentTypeImage   = "image"
	ContentTypePDF     = "pdf"
	ContentTypeLink    = "link"
	ContentTypeYouTube = "youtube"
)

// MaterialContent is one ordered block of content attached to a material.
// Text blocks carry sanitized HTML in Content; every other type carries a URL.
type MaterialContent struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	MaterialID uint      `gorm:"not null;index" json:"material_id"`
	Type       string    `gorm:"size:32;not null" json:"type"`
	Content    string    `gorm:"type:text" json:"content"`
	URL        string    `gorm:"size:512" json:"url"`
	OrderIndex int       `gorm:"not null;default:0" json:"order_index"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Material   Material  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
