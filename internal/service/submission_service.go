package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/fisikaku/fisikaku-api/internal/auth"
	"github.com/fisikaku/fisikaku-api/internal/dto"
	"github.com/fisikaku/fisikaku-api/internal/grading"
	"github.com/fisikaku/fisikaku-api/internal/models"
	"github.com/fisikaku/fisikaku-api/internal/repository"
)

// ErrAssessmentNotFound indicates the referenced assessment does not exist.
var ErrAssessmentNotFound = errors.New("assessment not found")

// ErrSubmissionNotFound indicates a submission could not be found.
var ErrSubmissionNotFound = errors.New("submission not found")

// ErrSubmissionFinalized indicates a write against a graded submission.
var ErrSubmissionFinalized = errors.New("submission already finalized")

// ErrTimeLimitExceeded indicates the attempt ran past the assessment's time
// limit plus the grace window.
var ErrTimeLimitExceeded = errors.New("time limit exceeded")

// SubmissionService orchestrates the student attempt lifecycle: submission
// creation or reuse, time-limit enforcement, per-question answer upserts,
// and the aggregate recompute.
type SubmissionService interface {
	SubmitAnswers(ctx context.Context, caller auth.Caller, assessmentID uint, payload dto.SubmitAnswersRequest) (dto.SubmitAnswersResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	answers     repository.AnswerRepository
	questions   repository.QuestionRepository
	assessments repository.AssessmentRepository
	validator   *validator.Validate
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewSubmissionService constructs a SubmissionService instance.
func NewSubmissionService(subRepo repository.SubmissionRepository, answerRepo repository.AnswerRepository, questionRepo repository.QuestionRepository, assessmentRepo repository.AssessmentRepository, validate *validator.Validate, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		submissions: subRepo,
		answers:     answerRepo,
		questions:   questionRepo,
		assessments: assessmentRepo,
		validator:   validate,
		logger:      logger.With().Str("component", "submission_service").Logger(),
		tracer:      otel.Tracer("github.com/fisikaku/fisikaku-api/internal/service/submission"),
		now:         time.Now,
	}
}

func (s *submissionService) SubmitAnswers(ctx context.Context, caller auth.Caller, assessmentID uint, payload dto.SubmitAnswersRequest) (dto.SubmitAnswersResponse, error) {
	if err := auth.EnsureRole(caller, auth.RoleStudent); err != nil {
		return dto.SubmitAnswersResponse{}, err
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmitAnswersResponse{}, err
	}

	spanCtx, span := s.tracer.Start(ctx, "assessment.submit_answers", trace.WithAttributes(
		attribute.Int("assessment.id", int(assessmentID)),
		attribute.Int("answers.count", len(payload.Answers)),
	))
	defer span.End()
	ctx = spanCtx

	assessment, err := s.assessments.GetByID(ctx, assessmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmitAnswersResponse{}, ErrAssessmentNotFound
		}
		return dto.SubmitAnswersResponse{}, err
	}

	questions, err := s.questions.ListByAssessment(ctx, assessmentID)
	if err != nil {
		return dto.SubmitAnswersResponse{}, err
	}

	submission, err := s.resolveSubmission(ctx, caller, assessment, payload.SubmissionID)
	if err != nil {
		return dto.SubmitAnswersResponse{}, err
	}

	// Guards run against the resolved submission before any answer write.
	if submission.IsGraded() {
		return dto.SubmitAnswersResponse{}, ErrSubmissionFinalized
	}

	if assessment.TimeExpired(submission.StartedAt, s.now()) {
		return dto.SubmitAnswersResponse{}, ErrTimeLimitExceeded
	}

	questionsByID := make(map[uint]models.Question, len(questions))
	for _, question := range questions {
		questionsByID[question.ID] = question
	}

	for _, answer := range payload.Answers {
		question, known := questionsByID[answer.QuestionID]
		if !known || question.Type != answer.Type {
			// Answers for unknown or mismatched questions are ignored, not rejected.
			s.logger.Debug().
				Uint("submission_id", submission.ID).
				Uint("question_id", answer.QuestionID).
				Msg("skipping answer for unknown question")
			continue
		}

		if err := s.storeAnswer(ctx, submission.ID, question, answer); err != nil {
			return dto.SubmitAnswersResponse{}, err
		}
	}

	result, _, err := recomputeTotals(ctx, s.answers, assessment, questions, submission.ID)
	if err != nil {
		return dto.SubmitAnswersResponse{}, err
	}

	submittedAt := s.now()
	submission.Status = models.SubmissionStatusSubmitted
	submission.SubmittedAt = &submittedAt
	submission.ScoreRaw = &result.Raw
	submission.FinalScore = &result.Final

	if err := s.submissions.Update(ctx, &submission); err != nil {
		return dto.SubmitAnswersResponse{}, err
	}

	s.logger.Info().
		Uint("submission_id", submission.ID).
		Uint("assessment_id", assessment.ID).
		Float64("final_score", result.Final).
		Msg("answers submitted")

	return dto.SubmitAnswersResponse{SubmissionID: submission.ID, FinalScore: result.Final}, nil
}

// resolveSubmission loads the caller's targeted submission, reuses the open
// attempt for the (assessment, student) pair, or starts a new one.
func (s *submissionService) resolveSubmission(ctx context.Context, caller auth.Caller, assessment models.Assessment, submissionID *uint) (models.Submission, error) {
	if submissionID != nil {
		submission, err := s.submissions.GetByID(ctx, *submissionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.Submission{}, ErrSubmissionNotFound
			}
			return models.Submission{}, err
		}

		if !submission.IsOwnedBy(caller.ID) {
			return models.Submission{}, auth.ErrForbidden
		}

		if submission.AssessmentID != assessment.ID {
			return models.Submission{}, ErrSubmissionNotFound
		}

		return submission, nil
	}

	submission, err := s.submissions.GetActiveByAssessmentAndStudent(ctx, assessment.ID, caller.ID)
	if err == nil {
		return submission, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Submission{}, err
	}

	submission = models.Submission{
		AssessmentID: assessment.ID,
		StudentID:    caller.ID,
		StartedAt:    s.now(),
		Status:       models.SubmissionStatusInProgress,
		StudentMeta:  studentMeta(caller),
	}

	if err := s.submissions.Create(ctx, &submission); err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (s *submissionService) storeAnswer(ctx context.Context, submissionID uint, question models.Question, answer dto.AnswerInput) error {
	if question.Type == models.QuestionTypeMultipleChoice {
		result := grading.GradeMultipleChoice(question, question.Options, answer.SelectedOptionID)
		return s.answers.UpsertMultipleChoice(ctx, &models.MultipleChoiceAnswer{
			SubmissionID:     submissionID,
			QuestionID:       question.ID,
			SelectedOptionID: answer.SelectedOptionID,
			IsCorrect:        result.IsCorrect,
			Score:            result.Score,
		})
	}

	return s.answers.UpsertEssay(ctx, &models.EssayAnswer{
		SubmissionID: submissionID,
		QuestionID:   question.ID,
		EssayText:    answer.EssayText,
	})
}

// studentMeta builds the denormalized name/NIM snapshot. It is best-effort
// display data; scoring never depends on it.
func studentMeta(caller auth.Caller) datatypes.JSONMap {
	meta := datatypes.JSONMap{}
	if caller.Name != "" {
		meta["name"] = caller.Name
	}
	if caller.NIM != "" {
		meta["nim"] = caller.NIM
	}
	if len(meta) == 0 {
		return nil
	}
	return meta
}
