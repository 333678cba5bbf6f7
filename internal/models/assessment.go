package models

import "time"

// submissionGrace is the tolerance added on top of the configured time limit
// so a submit fired right at the deadline is not rejected.
const submissionGrace = time.Minute

// Assessment is a gradable quiz or exam attached to one material.
// TimeLimitMinutes of zero means unlimited time. TotalWeight is the maximum
// achievable final score once the raw score is rescaled.
type Assessment struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	MaterialID       uint      `gorm:"not null;index" json:"material_id"`
	Title            string    `gorm:"size:120;not null" json:"title"`
	Description      string    `gorm:"type:text" json:"description"`
	TimeLimitMinutes int       `gorm:"not null;default:0" json:"time_limit_minutes"`
	TotalWeight      float64   `gorm:"not null" json:"total_weight"`
	CreatedBy        uint      `gorm:"not null;index" json:"created_by"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	Material         Material  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Questions        []Question
}

// IsOwnedBy reports whether the given teacher created the assessment.
func (a Assessment) IsOwnedBy(teacherID uint) bool {
	return a.CreatedBy == teacherID
}

// TimeExpired reports whether an attempt started at startedAt has exceeded
// the time limit, measured against the server clock. A one minute grace is
// granted so the final flush of answers is accepted.
func (a Assessment) TimeExpired(startedAt, reference time.Time) bool {
	if a.TimeLimitMinutes <= 0 {
		return false
	}

	limit := time.Duration(a.TimeLimitMinutes)*time.Minute + submissionGrace
	return reference.Sub(startedAt) > limit
}
