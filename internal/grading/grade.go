// Package grading holds the pure scoring functions of the assessment
// pipeline. Nothing here touches the database; services feed in current
// persisted state and write back the results.
package grading

import "github.com/fisikaku/fisikaku-api/internal/models"

// MultipleChoiceResult is the outcome of auto-grading one selection.
type MultipleChoiceResult struct {
	IsCorrect bool
	Score     float64
}

// GradeMultipleChoice checks the selected option against the question's
// answer key. A missing or unknown selection simply grades as incorrect.
// When several options are flagged correct, any match counts.
func GradeMultipleChoice(question models.Question, options []models.QuestionOption, selectedOptionID uint) MultipleChoiceResult {
	for _, option := range options {
		if option.IsCorrect && option.ID == selectedOptionID {
			return MultipleChoiceResult{IsCorrect: true, Score: float64(question.Points)}
		}
	}

	return MultipleChoiceResult{}
}

// AggregateResult carries the recomputed submission totals.
type AggregateResult struct {
	Raw   float64
	Final float64
}

// Aggregate recomputes the raw and weighted final score from the full set of
// per-question scores currently on record. Ungraded essays contribute zero.
// An assessment with no declared points yields a final score of zero rather
// than a division error. The recompute is total and idempotent so it can be
// re-run on every scoring event.
func Aggregate(perQuestionScores []float64, totalPoints, totalWeight float64) AggregateResult {
	var raw float64
	for _, score := range perQuestionScores {
		raw += score
	}

	if totalPoints <= 0 {
		return AggregateResult{Raw: raw, Final: 0}
	}

	return AggregateResult{Raw: raw, Final: raw / totalPoints * totalWeight}
}
