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

func newGradingService(t *testing.T, db *gorm.DB, notifier NotificationService) GradingService {
	t.Helper()

	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewGradingService(
		repository.NewSubmissionRepository(db),
		repository.NewAnswerRepository(db),
		repository.NewQuestionRepository(db),
		repository.NewAssessmentRepository(db),
		notifier,
		nil,
		validate,
		testLogger(),
	)
}

func teacherCaller() auth.Caller {
	return auth.Caller{ID: 1, Role: auth.RoleTeacher}
}

func submitScenario(t *testing.T, db *gorm.DB, f fixture) uint {
	t.Helper()

	svc := newSubmissionService(t, db)
	result, err := svc.SubmitAnswers(context.Background(), studentCaller(), f.assessment.ID, dto.SubmitAnswersRequest{
		Answers: []dto.AnswerInput{
			{Type: models.QuestionTypeMultipleChoice, QuestionID: f.mcq.ID, SelectedOptionID: f.correct.ID},
			{Type: models.QuestionTypeEssay, QuestionID: f.essay.ID, EssayText: "Setiap aksi menimbulkan reaksi yang sama besar dan berlawanan arah."},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 50.0, result.FinalScore)

	return result.SubmissionID
}

func TestGradeEssayFinalizesSubmission(t *testing.T) {
	db := newTestDB(t)
	f := seedAssessment(t, db, 0)
	submissionID := submitScenario(t, db, f)
	svc := newGradingService(t, db, nil)

	score := 8.0
	result, err := svc.GradeEssay(context.Background(), teacherCaller(), submissionID, f.essay.ID, dto.GradeEssayRequest{
		Score:    &score,
		Feedback: "Contohnya tepat, penjelasan bisa lebih dalam.",
	})
	require.NoError(t, err)

	// 18 of 20 raw points on a weight of 100.
	require.Equal(t, 90.0, result.FinalScore)
	require.True(t, result.Graded)

	var submission models.Submission
	require.NoError(t, db.First(&submission, submissionID).Error)
	require.Equal(t, models.SubmissionStatusGraded, submission.Status)
	require.Equal(t, 18.0, *submission.ScoreRaw)
	require.Equal(t, 90.0, *submission.FinalScore)

	var answer models.EssayAnswer
	require.NoError(t, db.Where("submission_id = ? AND question_id = ?", submissionID, f.essay.ID).First(&answer).Error)
	require.Equal(t, 8.0, *answer.Score)
	require.Equal(t, "Contohnya tepat, penjelasan bisa lebih dalam.", answer.Feedback)
}

func TestGradeEssayPartialStaysSubmitted(t *testing.T) {
	db := newTestDB(t)
	f := seedAssessment(t, db, 0)

	second := models.Question{
		AssessmentID: f.assessment.ID,
		Type:         models.QuestionTypeEssay,
		Prompt:       "Turunkan rumus energi kinetik.",
		Points:       10,
	}
	require.NoError(t, db.Create(&second).Error)

	subSvc := newSubmissionService(t, db)
	result, err := subSvc.SubmitAnswers(context.Background(), studentCaller(), f.assessment.ID, dto.SubmitAnswersRequest{
		Answers: []dto.AnswerInput{
			{Type: models.QuestionTypeEssay, QuestionID: f.essay.ID, EssayText: "Jawaban pertama."},
			{Type: models.QuestionTypeEssay, QuestionID: second.ID, EssayText: "Jawaban kedua."},
		},
	})
	require.NoError(t, err)

	svc := newGradingService(t, db, nil)
	score := 5.0

	partial, err := svc.GradeEssay(context.Background(), teacherCaller(), result.SubmissionID, f.essay.ID, dto.GradeEssayRequest{Score: &score})
	require.NoError(t, err)
	require.False(t, partial.Graded)

	var submission models.Submission
	require.NoError(t, db.First(&submission, result.SubmissionID).Error)
	require.Equal(t, models.SubmissionStatusSubmitted, submission.Status)

	full, err := svc.GradeEssay(context.Background(), teacherCaller(), result.SubmissionID, second.ID, dto.GradeEssayRequest{Score: &score})
	require.NoError(t, err)
	require.True(t, full.Graded)

	require.NoError(t, db.First(&submission, result.SubmissionID).Error)
	require.Equal(t, models.SubmissionStatusGraded, submission.Status)
}

func TestGradeEssayScoreExceedsMax(t *testing.T) {
	db := newTestDB(t)
	f := seedAssessment(t, db, 0)
	submissionID := submitScenario(t, db, f)
	svc := newGradingService(t, db, nil)

	score := 11.0
	_, err := svc.GradeEssay(context.Background(), teacherCaller(), submissionID, f.essay.ID, dto.GradeEssayRequest{Score: &score})
	require.ErrorIs(t, err, ErrScoreExceedsMax)

	var answer models.EssayAnswer
	require.NoError(t, db.Where("submission_id = ? AND question_id = ?", submissionID, f.essay.ID).First(&answer).Error)
	require.Nil(t, answer.Score)
}

func TestGradeEssayRequiresAssessmentOwnership(t *testing.T) {
	db := newTestDB(t)
	f := seedAssessment(t, db, 0)
	submissionID := submitScenario(t, db, f)
	svc := newGradingService(t, db, nil)

	score := 5.0
	_, err := svc.GradeEssay(context.Background(), auth.Caller{ID: 99, Role: auth.RoleTeacher}, submissionID, f.essay.ID, dto.GradeEssayRequest{Score: &score})
	require.ErrorIs(t, err, auth.ErrForbidden)
}

func TestGradeEssayRejectsMultipleChoiceQuestion(t *testing.T) {
	db := newTestDB(t)
	f := seedAssessment(t, db, 0)
	submissionID := submitScenario(t, db, f)
	svc := newGradingService(t, db, nil)

	score := 5.0
	_, err := svc.GradeEssay(context.Background(), teacherCaller(), submissionID, f.mcq.ID, dto.GradeEssayRequest{Score: &score})
	require.ErrorIs(t, err, ErrQuestionNotEssay)
}

func TestGradeEssayRejectsUnansweredQuestion(t *testing.T) {
	db := newTestDB(t)
	f := seedAssessment(t, db, 0)

	subSvc := newSubmissionService(t, db)
	result, err := subSvc.SubmitAnswers(context.Background(), studentCaller(), f.assessment.ID, dto.SubmitAnswersRequest{
		Answers: []dto.AnswerInput{
			{Type: models.QuestionTypeMultipleChoice, QuestionID: f.mcq.ID, SelectedOptionID: f.correct.ID},
		},
	})
	require.NoError(t, err)

	svc := newGradingService(t, db, nil)
	score := 5.0
	_, err = svc.GradeEssay(context.Background(), teacherCaller(), result.SubmissionID, f.essay.ID, dto.GradeEssayRequest{Score: &score})
	require.ErrorIs(t, err, ErrAnswerNotFound)
}

func TestGradeEssayPublishesNotification(t *testing.T) {
	db := newTestDB(t)
	f := seedAssessment(t, db, 0)
	submissionID := submitScenario(t, db, f)

	validate := validator.New(validator.WithRequiredStructEnabled())
	notifier := NewNotificationService(repository.NewNotificationRepository(db), nil, "", validate, testLogger())
	svc := newGradingService(t, db, notifier)

	score := 8.0
	_, err := svc.GradeEssay(context.Background(), teacherCaller(), submissionID, f.essay.ID, dto.GradeEssayRequest{Score: &score})
	require.NoError(t, err)

	var notifications []models.Notification
	require.NoError(t, db.Where("user_id = ?", 2).Find(&notifications).Error)
	require.Len(t, notifications, 1)
	require.Equal(t, models.NotificationTypeGraded, notifications[0].Type)
	require.Contains(t, notifications[0].Message, "Kuis Hukum Newton")
}

func TestSuggestFeedbackWithoutEvaluator(t *testing.T) {
	db := newTestDB(t)
	f := seedAssessment(t, db, 0)
	submissionID := submitScenario(t, db, f)
	svc := newGradingService(t, db, nil)

	_, err := svc.SuggestFeedback(context.Background(), teacherCaller(), submissionID, f.essay.ID)
	require.ErrorIs(t, err, ErrFeedbackUnavailable)
}
