package dto

// GradeEssayRequest describes a teacher's grade for one essay answer.
// The schema-level bound is [0, 1000]; the grading service additionally
// rejects scores above the question's declared points.
type GradeEssayRequest struct {
	Score    *float64 `json:"score" validate:"required,gte=0,lte=1000"`
	Feedback string   `json:"feedback" validate:"omitempty,max=2000"`
}

// GradeEssayResponse reports the recomputed totals after grading.
// Graded is true once every essay answer in the submission has a score.
type GradeEssayResponse struct {
	FinalScore float64 `json:"final_score"`
	Graded     bool    `json:"graded"`
}

// FeedbackDraftResponse carries an AI-generated feedback suggestion.
// The draft is advisory: nothing is stored until the teacher grades.
type FeedbackDraftResponse struct {
	Draft string `json:"draft"`
}
