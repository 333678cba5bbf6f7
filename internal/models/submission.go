package models

import (
	"time"

	"gorm.io/datatypes"
)

// Submission lifecycle states.
const (
	// SubmissionStatusInProgress marks an attempt that has been started but not finalized.
	SubmissionStatusInProgress = "in_progress"
	// SubmissionStatusSubmitted marks an attempt whose answers have been committed.
	SubmissionStatusSubmitted = "submitted"
	// SubmissionStatusGraded marks an attempt whose essay answers are all scored.
	SubmissionStatusGraded = "graded"
)

// Submission is one student's attempt at an assessment. ScoreRaw is the
// unweighted sum of per-question scores; FinalScore is ScoreRaw rescaled to
// the assessment's total weight.
type Submission struct {
	ID           uint              `gorm:"primaryKey" json:"id"`
	AssessmentID uint              `gorm:"not null;index:idx_submission_assessment_student" json:"assessment_id"`
	StudentID    uint              `gorm:"not null;index:idx_submission_assessment_student" json:"student_id"`
	StartedAt    time.Time         `gorm:"not null" json:"started_at"`
	SubmittedAt  *time.Time        `json:"submitted_at"`
	Status       string            `gorm:"size:32;not null" json:"status"`
	ScoreRaw     *float64          `json:"score_raw"`
	FinalScore   *float64          `json:"final_score"`
	StudentMeta  datatypes.JSONMap `gorm:"type:json" json:"student_meta"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	Assessment   Assessment        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"assessment"`
}

// IsGraded reports whether the submission reached its terminal state.
// A graded submission accepts no further student writes.
func (s Submission) IsGraded() bool {
	return s.Status == SubmissionStatusGraded
}

// IsOwnedBy reports whether the given student created the submission.
func (s Submission) IsOwnedBy(studentID uint) bool {
	return s.StudentID == studentID
}
