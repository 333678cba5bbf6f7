package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/fisikaku/fisikaku-api/internal/auth"
	"github.com/fisikaku/fisikaku-api/internal/dto"
	"github.com/fisikaku/fisikaku-api/internal/repository"
)

// ResultService serves read views over submissions: a student reading their
// own result and a teacher walking the grading queue for an assessment.
// Graded submissions are immutable, so those views are cached in Redis.
type ResultService interface {
	GetSubmission(ctx context.Context, caller auth.Caller, submissionID uint) (dto.SubmissionResponse, error)
	ListByAssessment(ctx context.Context, caller auth.Caller, assessmentID uint) ([]dto.SubmissionResponse, error)
}

type resultService struct {
	submissions repository.SubmissionRepository
	answers     repository.AnswerRepository
	assessments repository.AssessmentRepository
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
}

// NewResultService constructs a ResultService. The cache may be nil.
func NewResultService(subRepo repository.SubmissionRepository, answerRepo repository.AnswerRepository, assessmentRepo repository.AssessmentRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) ResultService {
	return &resultService{
		submissions: subRepo,
		answers:     answerRepo,
		assessments: assessmentRepo,
		cache:       cache,
		cacheTTL:    ttl,
		logger:      logger.With().Str("component", "result_service").Logger(),
	}
}

func (s *resultService) GetSubmission(ctx context.Context, caller auth.Caller, submissionID uint) (dto.SubmissionResponse, error) {
	cacheKey := fmt.Sprintf("result:submission:v1:%d", submissionID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.SubmissionResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				if err := s.authorizeView(ctx, caller, response.StudentID, response.AssessmentID); err != nil {
					return dto.SubmissionResponse{}, err
				}
				s.logger.Debug().Uint("submission_id", submissionID).Msg("result cache hit")
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read result cache")
		}
	}

	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	if err := s.authorizeView(ctx, caller, submission.StudentID, submission.AssessmentID); err != nil {
		return dto.SubmissionResponse{}, err
	}

	response := dto.NewSubmissionResponse(submission)

	choices, err := s.answers.ListMultipleChoiceBySubmission(ctx, submissionID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	essays, err := s.answers.ListEssayBySubmission(ctx, submissionID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	response.AttachAnswers(choices, essays)

	// Only graded submissions are cached: anything earlier still changes as
	// answers and grades land.
	if s.cache != nil && submission.IsGraded() {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store result cache")
			}
		}
	}

	return response, nil
}

func (s *resultService) ListByAssessment(ctx context.Context, caller auth.Caller, assessmentID uint) ([]dto.SubmissionResponse, error) {
	if err := auth.EnsureRole(caller, auth.RoleTeacher); err != nil {
		return nil, err
	}

	assessment, err := s.assessments.GetByID(ctx, assessmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssessmentNotFound
		}
		return nil, err
	}

	if !assessment.IsOwnedBy(caller.ID) {
		return nil, auth.ErrForbidden
	}

	submissions, err := s.submissions.ListByAssessment(ctx, assessmentID)
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}

// authorizeView allows the owning student, or a teacher who owns the
// submission's assessment.
func (s *resultService) authorizeView(ctx context.Context, caller auth.Caller, studentID, assessmentID uint) error {
	if caller.IsStudent() {
		if caller.ID != studentID {
			return auth.ErrForbidden
		}
		return nil
	}

	if !caller.IsTeacher() {
		return auth.ErrForbidden
	}

	assessment, err := s.assessments.GetByID(ctx, assessmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssessmentNotFound
		}
		return err
	}

	if !assessment.IsOwnedBy(caller.ID) {
		return auth.ErrForbidden
	}

	return nil
}
