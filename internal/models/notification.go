package models

import "time"

// Notification types emitted by the grading pipeline.
const (
	NotificationTypeGraded    = "assessment_graded"
	NotificationTypeSubmitted = "assessment_submitted"
)

// Notification represents a message targeted to a specific user, stored for
// later retrieval regardless of whether the broker delivery succeeded.
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Type      string    `gorm:"size:64" json:"type"`
	Message   string    `gorm:"type:text" json:"message"`
	Read      bool      `gorm:"not null;default:false" json:"read"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
