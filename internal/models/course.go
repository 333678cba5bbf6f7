package models

import "time"

// Course represents a physics course taught by a single teacher.
type Course struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:120;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedBy   uint      `gorm:"not null;index" json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Materials   []Material
}

// IsOwnedBy reports whether the given teacher created the course.
func (c Course) IsOwnedBy(teacherID uint) bool {
	return c.CreatedBy == teacherID
}
