package models

import "time"

// MultipleChoiceAnswer stores one auto-graded selection. The pair
// (submission_id, question_id) is unique: re-submitting the same question
// replaces the row instead of duplicating it.
type MultipleChoiceAnswer struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	SubmissionID     uint       `gorm:"not null;uniqueIndex:idx_mcq_answer_submission_question" json:"submission_id"`
	QuestionID       uint       `gorm:"not null;uniqueIndex:idx_mcq_answer_submission_question" json:"question_id"`
	SelectedOptionID uint       `gorm:"not null" json:"selected_option_id"`
	IsCorrect        bool       `gorm:"not null;default:false" json:"is_correct"`
	Score            float64    `gorm:"not null;default:0" json:"score"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	Submission       Submission `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// EssayAnswer stores one free-text answer awaiting teacher grading.
// Score and Feedback are teacher-authored; EssayText is student-authored.
// Same uniqueness rule as MultipleChoiceAnswer.
type EssayAnswer struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	SubmissionID uint       `gorm:"not null;uniqueIndex:idx_essay_answer_submission_question" json:"submission_id"`
	QuestionID   uint       `gorm:"not null;uniqueIndex:idx_essay_answer_submission_question" json:"question_id"`
	EssayText    string     `gorm:"type:text;not null" json:"essay_text"`
	Score        *float64   `json:"score"`
	Feedback     string     `gorm:"type:text" json:"feedback"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Submission   Submission `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// IsScored reports whether a teacher has recorded a score for this answer.
func (e EssayAnswer) IsScored() bool {
	return e.Score != nil
}
