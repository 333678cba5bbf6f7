package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/fisikaku/fisikaku-api/internal/auth"
	"github.com/fisikaku/fisikaku-api/internal/dto"
	"github.com/fisikaku/fisikaku-api/internal/models"
	"github.com/fisikaku/fisikaku-api/internal/observability"
	"github.com/fisikaku/fisikaku-api/internal/repository"
	"github.com/fisikaku/fisikaku-api/pkg/ai"
)

// ErrQuestionNotFound indicates the referenced question does not exist or
// does not belong to the submission's assessment.
var ErrQuestionNotFound = errors.New("question not found")

// ErrQuestionNotEssay indicates a grading call against an auto-graded question.
var ErrQuestionNotEssay = errors.New("question is not an essay")

// ErrAnswerNotFound indicates the student never answered the essay question.
var ErrAnswerNotFound = errors.New("essay answer not found")

// ErrScoreExceedsMax indicates the score is above the question's points.
var ErrScoreExceedsMax = errors.New("score exceeds the question's maximum points")

// ErrFeedbackUnavailable indicates no AI provider is configured for drafts.
var ErrFeedbackUnavailable = errors.New("feedback drafting is not configured")

// GradingService is the teacher-side entry point for essay scoring. It
// updates one essay answer, recomputes the submission totals, and flips the
// submission to graded once every essay has a score.
type GradingService interface {
	GradeEssay(ctx context.Context, caller auth.Caller, submissionID, questionID uint, payload dto.GradeEssayRequest) (dto.GradeEssayResponse, error)
	SuggestFeedback(ctx context.Context, caller auth.Caller, submissionID, questionID uint) (dto.FeedbackDraftResponse, error)
}

type gradingService struct {
	submissions repository.SubmissionRepository
	answers     repository.AnswerRepository
	questions   repository.QuestionRepository
	assessments repository.AssessmentRepository
	notifier    NotificationService
	evaluator   ai.Evaluator
	validator   *validator.Validate
	logger      zerolog.Logger
	tracer      trace.Tracer
}

// NewGradingService constructs a GradingService instance. The notifier and
// evaluator are optional; grading works without either.
func NewGradingService(subRepo repository.SubmissionRepository, answerRepo repository.AnswerRepository, questionRepo repository.QuestionRepository, assessmentRepo repository.AssessmentRepository, notifier NotificationService, evaluator ai.Evaluator, validate *validator.Validate, logger zerolog.Logger) GradingService {
	return &gradingService{
		submissions: subRepo,
		answers:     answerRepo,
		questions:   questionRepo,
		assessments: assessmentRepo,
		notifier:    notifier,
		evaluator:   evaluator,
		validator:   validate,
		logger:      logger.With().Str("component", "grading_service").Logger(),
		tracer:      otel.Tracer("github.com/fisikaku/fisikaku-api/internal/service/grading"),
	}
}

func (s *gradingService) GradeEssay(ctx context.Context, caller auth.Caller, submissionID, questionID uint, payload dto.GradeEssayRequest) (dto.GradeEssayResponse, error) {
	if err := auth.EnsureRole(caller, auth.RoleTeacher); err != nil {
		return dto.GradeEssayResponse{}, err
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.GradeEssayResponse{}, err
	}

	spanCtx, span := s.tracer.Start(ctx, "assessment.grade_essay", trace.WithAttributes(
		attribute.Int("submission.id", int(submissionID)),
		attribute.Int("question.id", int(questionID)),
	))
	defer span.End()
	ctx = spanCtx

	submission, assessment, err := s.resolveOwnedSubmission(ctx, caller, submissionID)
	if err != nil {
		return dto.GradeEssayResponse{}, err
	}

	question, err := s.questions.GetByID(ctx, questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GradeEssayResponse{}, ErrQuestionNotFound
		}
		return dto.GradeEssayResponse{}, err
	}

	if question.AssessmentID != assessment.ID {
		return dto.GradeEssayResponse{}, ErrQuestionNotFound
	}

	if !question.IsEssay() {
		return dto.GradeEssayResponse{}, ErrQuestionNotEssay
	}

	score := *payload.Score
	if score > float64(question.Points) {
		return dto.GradeEssayResponse{}, ErrScoreExceedsMax
	}

	if err := s.answers.UpdateEssayGrade(ctx, submissionID, questionID, score, payload.Feedback); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GradeEssayResponse{}, ErrAnswerNotFound
		}
		return dto.GradeEssayResponse{}, err
	}

	questions, err := s.questions.ListByAssessment(ctx, assessment.ID)
	if err != nil {
		return dto.GradeEssayResponse{}, err
	}

	result, essays, err := recomputeTotals(ctx, s.answers, assessment, questions, submissionID)
	if err != nil {
		return dto.GradeEssayResponse{}, err
	}

	allGraded := true
	for _, essay := range essays {
		if !essay.IsScored() {
			allGraded = false
			break
		}
	}

	submission.ScoreRaw = &result.Raw
	submission.FinalScore = &result.Final
	if allGraded {
		submission.Status = models.SubmissionStatusGraded
	} else {
		submission.Status = models.SubmissionStatusSubmitted
	}

	if err := s.submissions.Update(ctx, &submission); err != nil {
		return dto.GradeEssayResponse{}, err
	}

	s.logger.Info().
		Uint("submission_id", submissionID).
		Uint("question_id", questionID).
		Float64("final_score", result.Final).
		Bool("graded", allGraded).
		Msg("essay graded")

	if allGraded {
		observability.SubmissionsGradedTotal().WithLabelValues(strconv.Itoa(int(assessment.ID))).Inc()
		s.notifyGraded(ctx, submission, assessment, result.Final)
	}

	return dto.GradeEssayResponse{FinalScore: result.Final, Graded: allGraded}, nil
}

func (s *gradingService) SuggestFeedback(ctx context.Context, caller auth.Caller, submissionID, questionID uint) (dto.FeedbackDraftResponse, error) {
	if err := auth.EnsureRole(caller, auth.RoleTeacher); err != nil {
		return dto.FeedbackDraftResponse{}, err
	}

	if s.evaluator == nil {
		return dto.FeedbackDraftResponse{}, ErrFeedbackUnavailable
	}

	_, assessment, err := s.resolveOwnedSubmission(ctx, caller, submissionID)
	if err != nil {
		return dto.FeedbackDraftResponse{}, err
	}

	question, err := s.questions.GetByID(ctx, questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.FeedbackDraftResponse{}, ErrQuestionNotFound
		}
		return dto.FeedbackDraftResponse{}, err
	}

	if question.AssessmentID != assessment.ID || !question.IsEssay() {
		return dto.FeedbackDraftResponse{}, ErrQuestionNotFound
	}

	answer, err := s.answers.GetEssay(ctx, submissionID, questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.FeedbackDraftResponse{}, ErrAnswerNotFound
		}
		return dto.FeedbackDraftResponse{}, err
	}

	result, err := s.evaluator.Evaluate(ctx, ai.EvaluationInput{
		AssessmentTitle: assessment.Title,
		Prompt:          question.Prompt,
		MaxPoints:       question.Points,
		EssayText:       answer.EssayText,
	})
	if err != nil {
		return dto.FeedbackDraftResponse{}, fmt.Errorf("failed to draft feedback: %w", err)
	}

	return dto.FeedbackDraftResponse{Draft: result.Feedback}, nil
}

// resolveOwnedSubmission loads the submission and its assessment, then
// verifies the calling teacher owns the assessment before any mutation.
func (s *gradingService) resolveOwnedSubmission(ctx context.Context, caller auth.Caller, submissionID uint) (models.Submission, models.Assessment, error) {
	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Submission{}, models.Assessment{}, ErrSubmissionNotFound
		}
		return models.Submission{}, models.Assessment{}, err
	}

	assessment, err := s.assessments.GetByID(ctx, submission.AssessmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Submission{}, models.Assessment{}, ErrAssessmentNotFound
		}
		return models.Submission{}, models.Assessment{}, err
	}

	if !assessment.IsOwnedBy(caller.ID) {
		return models.Submission{}, models.Assessment{}, auth.ErrForbidden
	}

	return submission, assessment, nil
}

// notifyGraded tells the student their result is ready. Delivery is
// best-effort: a broken notifier never fails the grading call.
func (s *gradingService) notifyGraded(ctx context.Context, submission models.Submission, assessment models.Assessment, finalScore float64) {
	if s.notifier == nil {
		return
	}

	message := fmt.Sprintf("Penilaian %q selesai. Nilai akhir: %.1f", assessment.Title, finalScore)
	if _, err := s.notifier.Publish(ctx, dto.NotificationCreateRequest{
		UserID:  submission.StudentID,
		Type:    models.NotificationTypeGraded,
		Message: message,
	}); err != nil {
		s.logger.Warn().Err(err).Uint("submission_id", submission.ID).Msg("failed to publish graded notification")
	}
}
