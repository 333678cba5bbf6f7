package dto

import (
	"time"

	"github.com/fisikaku/fisikaku-api/internal/models"
)

// AnswerInput is one answer in a submit batch, discriminated by question
// type: multiple_choice carries a selected option, essay carries free text.
type AnswerInput struct {
	Type             string `json:"type" validate:"required,oneof=multiple_choice essay"`
	QuestionID       uint   `json:"question_id" validate:"required,gt=0"`
	SelectedOptionID uint   `json:"selected_option_id" validate:"required_if=Type multiple_choice"`
	EssayText        string `json:"essay_text" validate:"required_if=Type essay,max=5000"`
}

// SubmitAnswersRequest describes a student's answer batch for an attempt.
// SubmissionID is present when continuing an attempt and absent on the first
// batch, which starts a new submission.
type SubmitAnswersRequest struct {
	SubmissionID *uint         `json:"submission_id" validate:"omitempty,gt=0"`
	Answers      []AnswerInput `json:"answers" validate:"required,min=1,dive"`
}

// SubmitAnswersResponse reports the committed attempt and its current score.
type SubmitAnswersResponse struct {
	SubmissionID uint    `json:"submission_id"`
	FinalScore   float64 `json:"final_score"`
}

// MultipleChoiceAnswerResponse serializes one auto-graded answer.
type MultipleChoiceAnswerResponse struct {
	QuestionID       uint    `json:"question_id"`
	SelectedOptionID uint    `json:"selected_option_id"`
	IsCorrect        bool    `json:"is_correct"`
	Score            float64 `json:"score"`
}

// EssayAnswerResponse serializes one essay answer and its grading state.
type EssayAnswerResponse struct {
	QuestionID uint     `json:"question_id"`
	EssayText  string   `json:"essay_text"`
	Score      *float64 `json:"score"`
	Feedback   string   `json:"feedback"`
}

// SubmissionResponse is returned when viewing a submission and its answers.
type SubmissionResponse struct {
	ID            uint                           `json:"id"`
	AssessmentID  uint                           `json:"assessment_id"`
	StudentID     uint                           `json:"student_id"`
	Status        string                         `json:"status"`
	StartedAt     time.Time                      `json:"started_at"`
	SubmittedAt   *time.Time                     `json:"submitted_at"`
	ScoreRaw      *float64                       `json:"score_raw"`
	FinalScore    *float64                       `json:"final_score"`
	StudentMeta   map[string]interface{}         `json:"student_meta,omitempty"`
	Choices       []MultipleChoiceAnswerResponse `json:"multiple_choice_answers,omitempty"`
	Essays        []EssayAnswerResponse          `json:"essay_answers,omitempty"`
	AssessmentRef AssessmentLite                 `json:"assessment"`
}

// AssessmentLite summarizes an assessment in submission responses.
type AssessmentLite struct {
	ID          uint    `json:"id"`
	Title       string  `json:"title"`
	TotalWeight float64 `json:"total_weight"`
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	response := SubmissionResponse{
		ID:           model.ID,
		AssessmentID: model.AssessmentID,
		StudentID:    model.StudentID,
		Status:       model.Status,
		StartedAt:    model.StartedAt,
		SubmittedAt:  model.SubmittedAt,
		ScoreRaw:     model.ScoreRaw,
		FinalScore:   model.FinalScore,
		StudentMeta:  model.StudentMeta,
	}

	if model.Assessment.ID != 0 {
		response.AssessmentRef = AssessmentLite{
			ID:          model.Assessment.ID,
			Title:       model.Assessment.Title,
			TotalWeight: model.Assessment.TotalWeight,
		}
	}

	return response
}

// AttachAnswers adds the answer rows to a submission response.
func (r *SubmissionResponse) AttachAnswers(choices []models.MultipleChoiceAnswer, essays []models.EssayAnswer) {
	for _, answer := range choices {
		r.Choices = append(r.Choices, MultipleChoiceAnswerResponse{
			QuestionID:       answer.QuestionID,
			SelectedOptionID: answer.SelectedOptionID,
			IsCorrect:        answer.IsCorrect,
			Score:            answer.Score,
		})
	}

	for _, answer := range essays {
		r.Essays = append(r.Essays, EssayAnswerResponse{
			QuestionID: answer.QuestionID,
			EssayText:  answer.EssayText,
			Score:      answer.Score,
			Feedback:   answer.Feedback,
		})
	}
}

// NewSubmissionResponseSlice converts submission models into DTOs.
func NewSubmissionResponseSlice(models []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(models))
	for _, submission := range models {
		responses = append(responses, NewSubmissionResponse(submission))
	}

	return responses
}
