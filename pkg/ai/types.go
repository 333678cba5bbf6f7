package ai

import "context"

// EvaluationInput contains the artefacts needed to draft feedback for an
// essay answer.
type EvaluationInput struct {
	AssessmentTitle string
	Prompt          string
	MaxPoints       int
	EssayText       string
}

// EvaluationResult is the structured draft returned by the AI evaluator. The
// suggested score is advisory; the teacher always sets the recorded grade.
type EvaluationResult struct {
	SuggestedScore float64                `json:"suggested_score"`
	Feedback       string                 `json:"feedback"`
	Raw            map[string]interface{} `json:"raw,omitempty"`
}

// Evaluator describes an AI model capable of drafting essay feedback.
type Evaluator interface {
	Evaluate(ctx context.Context, input EvaluationInput) (EvaluationResult, error)
}
