package models

import "time"

// Question types recognised by the grading pipeline.
const (
	QuestionTypeMultipleChoice = "multiple_choice"
	QuestionTypeEssay          = "essay"
)

// Question belongs to exactly one assessment. Points is the maximum raw score
// the question contributes.
type Question struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	AssessmentID uint       `gorm:"not null;index" json:"assessment_id"`
	Type         string     `gorm:"size:32;not null" json:"type"`
	Prompt       string     `gorm:"type:text;not null" json:"prompt"`
	Points       int        `gorm:"not null" json:"points"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Assessment   Assessment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Options      []QuestionOption
}

// IsEssay reports whether the question requires manual grading.
func (q Question) IsEssay() bool {
	return q.Type == QuestionTypeEssay
}

// QuestionOption is one answer choice of a multiple-choice question.
// Essay questions carry no options.
type QuestionOption struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	QuestionID uint      `gorm:"not null;index" json:"question_id"`
	Label      string    `gorm:"size:500;not null" json:"label"`
	IsCorrect  bool      `gorm:"not null;default:false" json:"is_correct"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Question   Question  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
