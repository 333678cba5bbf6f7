package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/fisikaku/fisikaku-api/internal/auth"
	"github.com/fisikaku/fisikaku-api/internal/dto"
	"github.com/fisikaku/fisikaku-api/internal/models"
	"github.com/fisikaku/fisikaku-api/internal/repository"
)

func newSubmissionService(t *testing.T, db *gorm.DB) *submissionService {
	t.Helper()

	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewSubmissionService(
		repository.NewSubmissionRepository(db),
		repository.NewAnswerRepository(db),
		repository.NewQuestionRepository(db),
		repository.NewAssessmentRepository(db),
		validate,
		testLogger(),
	)
	return svc.(*submissionService)
}

func studentCaller() auth.Caller {
	return auth.Caller{ID: 2, Role: auth.RoleStudent, Name: "Budi Santoso", NIM: "2201234"}
}

func TestSubmitAnswersComputesWeightedScore(t *testing.T) {
	db := newTestDB(t)
	f := seedAssessment(t, db, 0)
	svc := newSubmissionService(t, db)

	result, err := svc.SubmitAnswers(context.Background(), studentCaller(), f.assessment.ID, dto.SubmitAnswersRequest{
		Answers: []dto.AnswerInput{
			{Type: models.QuestionTypeMultipleChoice, QuestionID: f.mcq.ID, SelectedOptionID: f.correct.ID},
			{Type: models.QuestionTypeEssay, QuestionID: f.essay.ID, EssayText: "Gaya aksi dan reaksi selalu berpasangan."},
		},
	})
	require.NoError(t, err)

	// 10 of 20 raw points, rescaled onto a total weight of 100.
	require.Equal(t, 50.0, result.FinalScore)

	var submission models.Submission
	require.NoError(t, db.First(&submission, result.SubmissionID).Error)
	require.Equal(t, models.SubmissionStatusSubmitted, submission.Status)
	require.NotNil(t, submission.SubmittedAt)
	require.Equal(t, 10.0, *submission.ScoreRaw)
	require.Equal(t, 50.0, *submission.FinalScore)
	require.Equal(t, "Budi Santoso", submission.StudentMeta["name"])
	require.Equal(t, "2201234", submission.StudentMeta["nim"])
}

func TestSubmitAnswersResubmissionReplacesAnswer(t *testing.T) {
	db := newTestDB(t)
	f := seedAssessment(t, db, 0)
	svc := newSubmissionService(t, db)
	ctx := context.Background()

	first, err := svc.SubmitAnswers(ctx, studentCaller(), f.assessment.ID, dto.SubmitAnswersRequest{
		Answers: []dto.AnswerInput{
			{Type: models.QuestionTypeMultipleChoice, QuestionID: f.mcq.ID, SelectedOptionID: f.wrong.ID},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 0.0, first.FinalScore)

	second, err := svc.SubmitAnswers(ctx, studentCaller(), f.assessment.ID, dto.SubmitAnswersRequest{
		SubmissionID: &first.SubmissionID,
		Answers: []dto.AnswerInput{
			{Type: models.QuestionTypeMultipleChoice, QuestionID: f.mcq.ID, SelectedOptionID: f.correct.ID},
		},
	})
	require.NoError(t, err)
	require.Equal(t, first.SubmissionID, second.SubmissionID)
	require.Equal(t, 50.0, second.FinalScore)

	var count int64
	require.NoError(t, db.Model(&models.MultipleChoiceAnswer{}).
		Where("submission_id = ?", first.SubmissionID).
		Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestSubmitAnswersReusesOpenAttempt(t *testing.T) {
	db := newTestDB(t)
	f := seedAssessment(t, db, 0)
	svc := newSubmissionService(t, db)
	ctx := context.Background()

	first, err := svc.SubmitAnswers(ctx, studentCaller(), f.assessment.ID, dto.SubmitAnswersRequest{
		Answers: []dto.AnswerInput{
			{Type: models.QuestionTypeMultipleChoice, QuestionID: f.mcq.ID, SelectedOptionID: f.wrong.ID},
		},
	})
	require.NoError(t, err)

	// No submission id given: the open attempt is picked up, not duplicated.
	second, err := svc.SubmitAnswers(ctx, studentCaller(), f.assessment.ID, dto.SubmitAnswersRequest{
		Answers: []dto.AnswerInput{
			{Type: models.QuestionTypeEssay, QuestionID: f.essay.ID, EssayText: "Jawaban essay."},
		},
	})
	require.NoError(t, err)
	require.Equal(t, first.SubmissionID, second.SubmissionID)

	var count int64
	require.NoError(t, db.Model(&models.Submission{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestSubmitAnswersRejectsGradedSubmission(t *testing.T) {
	db := newTestDB(t)
	f := seedAssessment(t, db, 0)
	svc := newSubmissionService(t, db)

	submission := models.Submission{
		AssessmentID: f.assessment.ID,
		StudentID:    2,
		StartedAt:    time.Now(),
		Status:       models.SubmissionStatusGraded,
	}
	require.NoError(t, db.Create(&submission).Error)

	_, err := svc.SubmitAnswers(context.Background(), studentCaller(), f.assessment.ID, dto.SubmitAnswersRequest{
		SubmissionID: &submission.ID,
		Answers: []dto.AnswerInput{
			{Type: models.QuestionTypeMultipleChoice, QuestionID: f.mcq.ID, SelectedOptionID: f.correct.ID},
		},
	})
	require.ErrorIs(t, err, ErrSubmissionFinalized)
}

func TestSubmitAnswersTimeLimit(t *testing.T) {
	db := newTestDB(t)
	f := seedAssessment(t, db, 10)
	svc := newSubmissionService(t, db)
	ctx := context.Background()

	started := time.Now()
	submission := models.Submission{
		AssessmentID: f.assessment.ID,
		StudentID:    2,
		StartedAt:    started,
		Status:       models.SubmissionStatusInProgress,
	}
	require.NoError(t, db.Create(&submission).Error)

	payload := dto.SubmitAnswersRequest{
		SubmissionID: &submission.ID,
		Answers: []dto.AnswerInput{
			{Type: models.QuestionTypeMultipleChoice, QuestionID: f.mcq.ID, SelectedOptionID: f.correct.ID},
		},
	}

	// 12 minutes in: past the 10 minute limit plus the one minute grace.
	svc.now = func() time.Time { return started.Add(12 * time.Minute) }
	_, err := svc.SubmitAnswers(ctx, studentCaller(), f.assessment.ID, payload)
	require.ErrorIs(t, err, ErrTimeLimitExceeded)

	// 10.5 minutes in: inside the grace window, accepted.
	svc.now = func() time.Time { return started.Add(10*time.Minute + 30*time.Second) }
	result, err := svc.SubmitAnswers(ctx, studentCaller(), f.assessment.ID, payload)
	require.NoError(t, err)
	require.Equal(t, 50.0, result.FinalScore)
}

func TestSubmitAnswersIgnoresUnknownQuestions(t *testing.T) {
	db := newTestDB(t)
	f := seedAssessment(t, db, 0)
	svc := newSubmissionService(t, db)

	result, err := svc.SubmitAnswers(context.Background(), studentCaller(), f.assessment.ID, dto.SubmitAnswersRequest{
		Answers: []dto.AnswerInput{
			{Type: models.QuestionTypeMultipleChoice, QuestionID: f.mcq.ID, SelectedOptionID: f.correct.ID},
			{Type: models.QuestionTypeMultipleChoice, QuestionID: 9999, SelectedOptionID: f.correct.ID},
			{Type: models.QuestionTypeMultipleChoice, QuestionID: f.essay.ID, SelectedOptionID: f.correct.ID},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 50.0, result.FinalScore)

	var count int64
	require.NoError(t, db.Model(&models.MultipleChoiceAnswer{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestSubmitAnswersRejectsForeignSubmission(t *testing.T) {
	db := newTestDB(t)
	f := seedAssessment(t, db, 0)
	svc := newSubmissionService(t, db)

	submission := models.Submission{
		AssessmentID: f.assessment.ID,
		StudentID:    7,
		StartedAt:    time.Now(),
		Status:       models.SubmissionStatusInProgress,
	}
	require.NoError(t, db.Create(&submission).Error)

	_, err := svc.SubmitAnswers(context.Background(), studentCaller(), f.assessment.ID, dto.SubmitAnswersRequest{
		SubmissionID: &submission.ID,
		Answers: []dto.AnswerInput{
			{Type: models.QuestionTypeMultipleChoice, QuestionID: f.mcq.ID, SelectedOptionID: f.correct.ID},
		},
	})
	require.ErrorIs(t, err, auth.ErrForbidden)
}

func TestSubmitAnswersRequiresStudentRole(t *testing.T) {
	db := newTestDB(t)
	f := seedAssessment(t, db, 0)
	svc := newSubmissionService(t, db)

	_, err := svc.SubmitAnswers(context.Background(), auth.Caller{ID: 1, Role: auth.RoleTeacher}, f.assessment.ID, dto.SubmitAnswersRequest{
		Answers: []dto.AnswerInput{
			{Type: models.QuestionTypeMultipleChoice, QuestionID: f.mcq.ID, SelectedOptionID: f.correct.ID},
		},
	})
	require.ErrorIs(t, err, auth.ErrForbidden)
}
