package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/fisikaku/fisikaku-api/internal/auth"
	"github.com/fisikaku/fisikaku-api/internal/dto"
	"github.com/fisikaku/fisikaku-api/internal/models"
	"github.com/fisikaku/fisikaku-api/internal/repository"
)

func newAssessmentService(t *testing.T, db *gorm.DB) AssessmentService {
	t.Helper()

	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewAssessmentService(
		repository.NewAssessmentRepository(db),
		repository.NewQuestionRepository(db),
		repository.NewMaterialRepository(db),
		validate,
		testLogger(),
	)
}

func TestCreateAssessmentRequiresOwnedMaterial(t *testing.T) {
	db := newTestDB(t)
	f := seedAssessment(t, db, 0)
	svc := newAssessmentService(t, db)
	ctx := context.Background()

	payload := dto.AssessmentCreateRequest{
		MaterialID:  f.material.ID,
		Title:       "Ulangan Harian Dinamika",
		TotalWeight: 100,
	}

	created, err := svc.Create(ctx, teacherCaller(), payload)
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.Equal(t, f.material.ID, created.MaterialID)

	_, err = svc.Create(ctx, auth.Caller{ID: 99, Role: auth.RoleTeacher}, payload)
	require.ErrorIs(t, err, auth.ErrForbidden)

	payload.MaterialID = 9999
	_, err = svc.Create(ctx, teacherCaller(), payload)
	require.ErrorIs(t, err, ErrMaterialNotFound)
}

func TestAddQuestionRequiresCorrectOption(t *testing.T) {
	db := newTestDB(t)
	f := seedAssessment(t, db, 0)
	svc := newAssessmentService(t, db)
	ctx := context.Background()

	_, err := svc.AddQuestion(ctx, teacherCaller(), f.assessment.ID, dto.QuestionCreateRequest{
		Type:   models.QuestionTypeMultipleChoice,
		Prompt: "Satuan gaya dalam SI adalah?",
		Points: 5,
		Options: []dto.QuestionOptionInput{
			{Label: "Newton"},
			{Label: "Joule"},
		},
	})
	require.ErrorIs(t, err, ErrMissingCorrectOption)

	question, err := svc.AddQuestion(ctx, teacherCaller(), f.assessment.ID, dto.QuestionCreateRequest{
		Type:   models.QuestionTypeMultipleChoice,
		Prompt: "Satuan gaya dalam SI adalah?",
		Points: 5,
		Options: []dto.QuestionOptionInput{
			{Label: "Newton", IsCorrect: true},
			{Label: "Joule"},
		},
	})
	require.NoError(t, err)
	require.Len(t, question.Options, 2)
}

func TestListQuestionsHidesAnswerKeyFromStudents(t *testing.T) {
	db := newTestDB(t)
	f := seedAssessment(t, db, 0)
	svc := newAssessmentService(t, db)
	ctx := context.Background()

	forStudent, err := svc.ListQuestions(ctx, studentCaller(), f.assessment.ID)
	require.NoError(t, err)
	require.Len(t, forStudent, 2)
	for _, question := range forStudent {
		for _, option := range question.Options {
			require.Nil(t, option.IsCorrect)
		}
	}

	forTeacher, err := svc.ListQuestions(ctx, teacherCaller(), f.assessment.ID)
	require.NoError(t, err)

	var sawKey bool
	for _, question := range forTeacher {
		for _, option := range question.Options {
			require.NotNil(t, option.IsCorrect)
			if *option.IsCorrect {
				sawKey = true
			}
		}
	}
	require.True(t, sawKey)

	// A teacher who does not own the assessment reads it like a student.
	forOther, err := svc.ListQuestions(ctx, auth.Caller{ID: 99, Role: auth.RoleTeacher}, f.assessment.ID)
	require.NoError(t, err)
	for _, question := range forOther {
		for _, option := range question.Options {
			require.Nil(t, option.IsCorrect)
		}
	}
}

func TestUpdateQuestionTypeSwitchClearsOptions(t *testing.T) {
	db := newTestDB(t)
	f := seedAssessment(t, db, 0)
	svc := newAssessmentService(t, db)
	ctx := context.Background()

	updated, err := svc.UpdateQuestion(ctx, teacherCaller(), f.mcq.ID, dto.QuestionUpdateRequest{
		Type:   models.QuestionTypeEssay,
		Prompt: "Jelaskan jawabanmu dengan perhitungan.",
		Points: 10,
	})
	require.NoError(t, err)
	require.Equal(t, models.QuestionTypeEssay, updated.Type)
	require.Empty(t, updated.Options)

	var count int64
	require.NoError(t, db.Model(&models.QuestionOption{}).
		Where("question_id = ?", f.mcq.ID).
		Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestDeleteQuestionRequiresOwnership(t *testing.T) {
	db := newTestDB(t)
	f := seedAssessment(t, db, 0)
	svc := newAssessmentService(t, db)
	ctx := context.Background()

	err := svc.DeleteQuestion(ctx, auth.Caller{ID: 99, Role: auth.RoleTeacher}, f.essay.ID)
	require.ErrorIs(t, err, auth.ErrForbidden)

	require.NoError(t, svc.DeleteQuestion(ctx, teacherCaller(), f.essay.ID))

	_, err = svc.UpdateQuestion(ctx, teacherCaller(), f.essay.ID, dto.QuestionUpdateRequest{
		Type:   models.QuestionTypeEssay,
		Prompt: "Sudah dihapus.",
		Points: 5,
	})
	require.ErrorIs(t, err, ErrQuestionNotFound)
}
