package grading

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fisikaku/fisikaku-api/internal/models"
)

func TestGradeMultipleChoice(t *testing.T) {
	question := models.Question{ID: 7, Type: models.QuestionTypeMultipleChoice, Points: 10}
	options := []models.QuestionOption{
		{ID: 1, QuestionID: 7, Label: "4 m/s"},
		{ID: 2, QuestionID: 7, Label: "8 m/s", IsCorrect: true},
		{ID: 3, QuestionID: 7, Label: "16 m/s"},
	}

	tests := []struct {
		name      string
		selected  uint
		isCorrect bool
		score     float64
	}{
		{name: "correct option", selected: 2, isCorrect: true, score: 10},
		{name: "wrong option", selected: 1, isCorrect: false, score: 0},
		{name: "unknown option id", selected: 99, isCorrect: false, score: 0},
		{name: "zero selection", selected: 0, isCorrect: false, score: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := GradeMultipleChoice(question, options, tc.selected)
			require.Equal(t, tc.isCorrect, result.IsCorrect)
			require.Equal(t, tc.score, result.Score)
		})
	}
}

func TestGradeMultipleChoiceNoCorrectOption(t *testing.T) {
	question := models.Question{ID: 3, Points: 5}
	options := []models.QuestionOption{{ID: 1, QuestionID: 3}, {ID: 2, QuestionID: 3}}

	result := GradeMultipleChoice(question, options, 1)
	require.False(t, result.IsCorrect)
	require.Zero(t, result.Score)
}

func TestGradeMultipleChoiceMultipleCorrectOptions(t *testing.T) {
	question := models.Question{ID: 4, Points: 5}
	options := []models.QuestionOption{
		{ID: 1, QuestionID: 4, IsCorrect: true},
		{ID: 2, QuestionID: 4, IsCorrect: true},
	}

	// Any flagged option counts when the key is ambiguous.
	first := GradeMultipleChoice(question, options, 1)
	second := GradeMultipleChoice(question, options, 2)
	require.True(t, first.IsCorrect)
	require.True(t, second.IsCorrect)
	require.Equal(t, 5.0, first.Score)
	require.Equal(t, 5.0, second.Score)
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		name        string
		scores      []float64
		totalPoints float64
		totalWeight float64
		raw         float64
		final       float64
	}{
		{name: "half credit scaled to weight", scores: []float64{10, 0}, totalPoints: 20, totalWeight: 100, raw: 10, final: 50},
		{name: "full credit", scores: []float64{10, 10}, totalPoints: 20, totalWeight: 100, raw: 20, final: 100},
		{name: "zero declared points", scores: []float64{5}, totalPoints: 0, totalWeight: 100, raw: 5, final: 0},
		{name: "no answers", scores: nil, totalPoints: 20, totalWeight: 100, raw: 0, final: 0},
		{name: "non-hundred weight", scores: []float64{3}, totalPoints: 12, totalWeight: 40, raw: 3, final: 10},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := Aggregate(tc.scores, tc.totalPoints, tc.totalWeight)
			require.Equal(t, tc.raw, result.Raw)
			require.InDelta(t, tc.final, result.Final, 1e-9)
		})
	}
}

func TestAggregateIdempotent(t *testing.T) {
	scores := []float64{4, 7.5, 0}

	first := Aggregate(scores, 30, 100)
	second := Aggregate(scores, 30, 100)
	require.Equal(t, first, second)
}
