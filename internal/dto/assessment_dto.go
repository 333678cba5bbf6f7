package dto

import (
	"time"

	"github.com/fisikaku/fisikaku-api/internal/models"
)

// AssessmentCreateRequest describes the payload for creating an assessment.
// TimeLimitMinutes of zero means unlimited time.
type AssessmentCreateRequest struct {
	MaterialID       uint    `json:"material_id" validate:"required,gt=0"`
	Title            string  `json:"title" validate:"required,min=3,max=120"`
	Description      string  `json:"description" validate:"omitempty,max=1000"`
	TimeLimitMinutes int     `json:"time_limit_minutes" validate:"gte=0,lte=600"`
	TotalWeight      float64 `json:"total_weight" validate:"required,gte=1,lte=1000"`
}

// AssessmentUpdateRequest describes the payload for updating an assessment.
type AssessmentUpdateRequest struct {
	MaterialID       uint    `json:"material_id" validate:"required,gt=0"`
	Title            string  `json:"title" validate:"required,min=3,max=120"`
	Description      string  `json:"description" validate:"omitempty,max=1000"`
	TimeLimitMinutes int     `json:"time_limit_minutes" validate:"gte=0,lte=600"`
	TotalWeight      float64 `json:"total_weight" validate:"required,gte=1,lte=1000"`
}

// AssessmentResponse is returned to API clients when viewing assessments.
type AssessmentResponse struct {
	ID               uint      `json:"id"`
	MaterialID       uint      `json:"material_id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	TimeLimitMinutes int       `json:"time_limit_minutes"`
	TotalWeight      float64   `json:"total_weight"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// NewAssessmentResponse converts an Assessment model into a DTO.
func NewAssessmentResponse(model models.Assessment) AssessmentResponse {
	return AssessmentResponse{
		ID:               model.ID,
		MaterialID:       model.MaterialID,
		Title:            model.Title,
		Description:      model.Description,
		TimeLimitMinutes: model.TimeLimitMinutes,
		TotalWeight:      model.TotalWeight,
		CreatedAt:        model.CreatedAt,
		UpdatedAt:        model.UpdatedAt,
	}
}

// QuestionOptionInput is one answer choice supplied when authoring a
// multiple-choice question.
type QuestionOptionInput struct {
	Label     string `json:"label" validate:"required,min=1,max=500"`
	IsCorrect bool   `json:"is_correct"`
}

// QuestionCreateRequest describes the payload for adding a question.
// Multiple-choice questions must include at least one correct option; the
// option set supplied here fully replaces whatever was stored before.
type QuestionCreateRequest struct {
	Type    string                `json:"type" validate:"required,oneof=multiple_choice essay"`
	Prompt  string                `json:"prompt" validate:"required,min=1,max=2000"`
	Points  int                   `json:"points" validate:"required,gte=1,lte=1000"`
	Options []QuestionOptionInput `json:"options" validate:"omitempty,dive"`
}

// QuestionUpdateRequest describes the payload for updating a question.
type QuestionUpdateRequest struct {
	Type    string                `json:"type" validate:"required,oneof=multiple_choice essay"`
	Prompt  string                `json:"prompt" validate:"required,min=1,max=2000"`
	Points  int                   `json:"points" validate:"required,gte=1,lte=1000"`
	Options []QuestionOptionInput `json:"options" validate:"omitempty,dive"`
}

// QuestionOptionResponse serializes one option. The answer key is only
// included for teacher-facing views.
type QuestionOptionResponse struct {
	ID        uint   `json:"id"`
	Label     string `json:"label"`
	IsCorrect *bool  `json:"is_correct,omitempty"`
}

// QuestionResponse is returned to API clients when viewing questions.
type QuestionResponse struct {
	ID           uint                     `json:"id"`
	AssessmentID uint                     `json:"assessment_id"`
	Type         string                   `json:"type"`
	Prompt       string                   `json:"prompt"`
	Points       int                      `json:"points"`
	Options      []QuestionOptionResponse `json:"options,omitempty"`
}

// NewQuestionResponse converts a Question model into a DTO. When revealKey is
// false the options' correctness flags are stripped, which is the shape
// served to students taking the assessment.
func NewQuestionResponse(model models.Question, revealKey bool) QuestionResponse {
	response := QuestionResponse{
		ID:           model.ID,
		AssessmentID: model.AssessmentID,
		Type:         model.Type,
		Prompt:       model.Prompt,
		Points:       model.Points,
	}

	for _, option := range model.Options {
		item := QuestionOptionResponse{ID: option.ID, Label: option.Label}
		if revealKey {
			isCorrect := option.IsCorrect
			item.IsCorrect = &isCorrect
		}
		response.Options = append(response.Options, item)
	}

	return response
}
