package service

import (
	"context"

	"github.com/fisikaku/fisikaku-api/internal/grading"
	"github.com/fisikaku/fisikaku-api/internal/models"
	"github.com/fisikaku/fisikaku-api/internal/repository"
)

// recomputeTotals re-derives a submission's raw and final score from every
// answer currently persisted for it. Both the student submit path and the
// teacher grading path run this full recompute so corrections arriving out
// of order always converge to the same totals. The essay rows are returned
// alongside so the grading path can evaluate completeness without a second
// read.
func recomputeTotals(ctx context.Context, answers repository.AnswerRepository, assessment models.Assessment, questions []models.Question, submissionID uint) (grading.AggregateResult, []models.EssayAnswer, error) {
	var totalPoints float64
	for _, question := range questions {
		totalPoints += float64(question.Points)
	}

	choices, err := answers.ListMultipleChoiceBySubmission(ctx, submissionID)
	if err != nil {
		return grading.AggregateResult{}, nil, err
	}

	essays, err := answers.ListEssayBySubmission(ctx, submissionID)
	if err != nil {
		return grading.AggregateResult{}, nil, err
	}

	scores := make([]float64, 0, len(choices)+len(essays))
	for _, answer := range choices {
		scores = append(scores, answer.Score)
	}
	for _, answer := range essays {
		if answer.Score != nil {
			scores = append(scores, *answer.Score)
		}
	}

	return grading.Aggregate(scores, totalPoints, assessment.TotalWeight), essays, nil
}
