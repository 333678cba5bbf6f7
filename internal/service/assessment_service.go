package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/fisikaku/fisikaku-api/internal/auth"
	"github.com/fisikaku/fisikaku-api/internal/dto"
	"github.com/fisikaku/fisikaku-api/internal/models"
	"github.com/fisikaku/fisikaku-api/internal/repository"
)

// ErrMaterialNotFound indicates the referenced material does not exist.
var ErrMaterialNotFound = errors.New("material not found")

// ErrMissingCorrectOption indicates a multiple-choice question authored
// without any option marked correct.
var ErrMissingCorrectOption = errors.New("multiple-choice question needs at least one correct option")

// AssessmentService covers teacher-side authoring: assessments and their
// questions. Every mutation checks the ownership chain up to the record that
// carries created_by before writing.
type AssessmentService interface {
	Create(ctx context.Context, caller auth.Caller, payload dto.AssessmentCreateRequest) (dto.AssessmentResponse, error)
	Update(ctx context.Context, caller auth.Caller, id uint, payload dto.AssessmentUpdateRequest) (dto.AssessmentResponse, error)
	Get(ctx context.Context, caller auth.Caller, id uint) (dto.AssessmentResponse, error)
	ListQuestions(ctx context.Context, caller auth.Caller, assessmentID uint) ([]dto.QuestionResponse, error)
	AddQuestion(ctx context.Context, caller auth.Caller, assessmentID uint, payload dto.QuestionCreateRequest) (dto.QuestionResponse, error)
	UpdateQuestion(ctx context.Context, caller auth.Caller, questionID uint, payload dto.QuestionUpdateRequest) (dto.QuestionResponse, error)
	DeleteQuestion(ctx context.Context, caller auth.Caller, questionID uint) error
}

type assessmentService struct {
	assessments repository.AssessmentRepository
	questions   repository.QuestionRepository
	materials   repository.MaterialRepository
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewAssessmentService constructs an AssessmentService instance.
func NewAssessmentService(assessmentRepo repository.AssessmentRepository, questionRepo repository.QuestionRepository, materialRepo repository.MaterialRepository, validate *validator.Validate, logger zerolog.Logger) AssessmentService {
	return &assessmentService{
		assessments: assessmentRepo,
		questions:   questionRepo,
		materials:   materialRepo,
		validator:   validate,
		logger:      logger.With().Str("component", "assessment_service").Logger(),
	}
}

func (s *assessmentService) Create(ctx context.Context, caller auth.Caller, payload dto.AssessmentCreateRequest) (dto.AssessmentResponse, error) {
	if err := auth.EnsureRole(caller, auth.RoleTeacher); err != nil {
		return dto.AssessmentResponse{}, err
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.AssessmentResponse{}, err
	}

	material, err := s.materials.GetByID(ctx, payload.MaterialID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssessmentResponse{}, ErrMaterialNotFound
		}
		return dto.AssessmentResponse{}, err
	}

	if material.CreatedBy != caller.ID {
		return dto.AssessmentResponse{}, auth.ErrForbidden
	}

	assessment := models.Assessment{
		MaterialID:       payload.MaterialID,
		Title:            payload.Title,
		Description:      payload.Description,
		TimeLimitMinutes: payload.TimeLimitMinutes,
		TotalWeight:      payload.TotalWeight,
		CreatedBy:        caller.ID,
	}

	if err := s.assessments.Create(ctx, &assessment); err != nil {
		return dto.AssessmentResponse{}, err
	}

	s.logger.Info().Uint("assessment_id", assessment.ID).Msg("assessment created")

	return dto.NewAssessmentResponse(assessment), nil
}

func (s *assessmentService) Update(ctx context.Context, caller auth.Caller, id uint, payload dto.AssessmentUpdateRequest) (dto.AssessmentResponse, error) {
	if err := auth.EnsureRole(caller, auth.RoleTeacher); err != nil {
		return dto.AssessmentResponse{}, err
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.AssessmentResponse{}, err
	}

	assessment, err := s.ownedAssessment(ctx, caller, id)
	if err != nil {
		return dto.AssessmentResponse{}, err
	}

	assessment.MaterialID = payload.MaterialID
	assessment.Title = payload.Title
	assessment.Description = payload.Description
	assessment.TimeLimitMinutes = payload.TimeLimitMinutes
	assessment.TotalWeight = payload.TotalWeight

	if err := s.assessments.Update(ctx, &assessment); err != nil {
		return dto.AssessmentResponse{}, err
	}

	return dto.NewAssessmentResponse(assessment), nil
}

func (s *assessmentService) Get(ctx context.Context, caller auth.Caller, id uint) (dto.AssessmentResponse, error) {
	assessment, err := s.assessments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssessmentResponse{}, ErrAssessmentNotFound
		}
		return dto.AssessmentResponse{}, err
	}

	return dto.NewAssessmentResponse(assessment), nil
}

// ListQuestions serves the question set. The answer key is only revealed to
// the owning teacher; students get options without correctness flags.
func (s *assessmentService) ListQuestions(ctx context.Context, caller auth.Caller, assessmentID uint) ([]dto.QuestionResponse, error) {
	assessment, err := s.assessments.GetByID(ctx, assessmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssessmentNotFound
		}
		return nil, err
	}

	questions, err := s.questions.ListByAssessment(ctx, assessmentID)
	if err != nil {
		return nil, err
	}

	revealKey := caller.IsTeacher() && assessment.IsOwnedBy(caller.ID)

	responses := make([]dto.QuestionResponse, 0, len(questions))
	for _, question := range questions {
		responses = append(responses, dto.NewQuestionResponse(question, revealKey))
	}

	return responses, nil
}

func (s *assessmentService) AddQuestion(ctx context.Context, caller auth.Caller, assessmentID uint, payload dto.QuestionCreateRequest) (dto.QuestionResponse, error) {
	if err := auth.EnsureRole(caller, auth.RoleTeacher); err != nil {
		return dto.QuestionResponse{}, err
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.QuestionResponse{}, err
	}

	if err := validateOptions(payload.Type, payload.Options); err != nil {
		return dto.QuestionResponse{}, err
	}

	if _, err := s.ownedAssessment(ctx, caller, assessmentID); err != nil {
		return dto.QuestionResponse{}, err
	}

	question := models.Question{
		AssessmentID: assessmentID,
		Type:         payload.Type,
		Prompt:       payload.Prompt,
		Points:       payload.Points,
	}

	if err := s.questions.Create(ctx, &question); err != nil {
		return dto.QuestionResponse{}, err
	}

	if question.Type == models.QuestionTypeMultipleChoice {
		options := buildOptions(question.ID, payload.Options)
		if err := s.questions.ReplaceOptions(ctx, question.ID, options); err != nil {
			return dto.QuestionResponse{}, err
		}
		question.Options = options
	}

	s.logger.Info().Uint("question_id", question.ID).Uint("assessment_id", assessmentID).Msg("question added")

	return dto.NewQuestionResponse(question, true), nil
}

func (s *assessmentService) UpdateQuestion(ctx context.Context, caller auth.Caller, questionID uint, payload dto.QuestionUpdateRequest) (dto.QuestionResponse, error) {
	if err := auth.EnsureRole(caller, auth.RoleTeacher); err != nil {
		return dto.QuestionResponse{}, err
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.QuestionResponse{}, err
	}

	if err := validateOptions(payload.Type, payload.Options); err != nil {
		return dto.QuestionResponse{}, err
	}

	question, err := s.ownedQuestion(ctx, caller, questionID)
	if err != nil {
		return dto.QuestionResponse{}, err
	}

	question.Type = payload.Type
	question.Prompt = payload.Prompt
	question.Points = payload.Points

	if err := s.questions.Update(ctx, &question); err != nil {
		return dto.QuestionResponse{}, err
	}

	// Options are replaced wholesale for multiple choice and cleared for
	// essays, so a type switch never leaves a stale answer key behind.
	if question.Type == models.QuestionTypeMultipleChoice {
		options := buildOptions(question.ID, payload.Options)
		if err := s.questions.ReplaceOptions(ctx, question.ID, options); err != nil {
			return dto.QuestionResponse{}, err
		}
		question.Options = options
	} else {
		if err := s.questions.ReplaceOptions(ctx, question.ID, nil); err != nil {
			return dto.QuestionResponse{}, err
		}
		question.Options = nil
	}

	return dto.NewQuestionResponse(question, true), nil
}

func (s *assessmentService) DeleteQuestion(ctx context.Context, caller auth.Caller, questionID uint) error {
	if err := auth.EnsureRole(caller, auth.RoleTeacher); err != nil {
		return err
	}

	if _, err := s.ownedQuestion(ctx, caller, questionID); err != nil {
		return err
	}

	if err := s.questions.Delete(ctx, questionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuestionNotFound
		}
		return err
	}

	s.logger.Info().Uint("question_id", questionID).Msg("question deleted")

	return nil
}

func (s *assessmentService) ownedAssessment(ctx context.Context, caller auth.Caller, id uint) (models.Assessment, error) {
	assessment, err := s.assessments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Assessment{}, ErrAssessmentNotFound
		}
		return models.Assessment{}, err
	}

	if !assessment.IsOwnedBy(caller.ID) {
		return models.Assessment{}, auth.ErrForbidden
	}

	return assessment, nil
}

// ownedQuestion resolves the question, then its assessment, and compares the
// assessment owner against the caller. Two explicit lookups keep the
// ownership chain readable.
func (s *assessmentService) ownedQuestion(ctx context.Context, caller auth.Caller, id uint) (models.Question, error) {
	question, err := s.questions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Question{}, ErrQuestionNotFound
		}
		return models.Question{}, err
	}

	if _, err := s.ownedAssessment(ctx, caller, question.AssessmentID); err != nil {
		return models.Question{}, err
	}

	return question, nil
}

func validateOptions(questionType string, options []dto.QuestionOptionInput) error {
	if questionType != models.QuestionTypeMultipleChoice {
		return nil
	}

	for _, option := range options {
		if option.IsCorrect {
			return nil
		}
	}

	return ErrMissingCorrectOption
}

func buildOptions(questionID uint, inputs []dto.QuestionOptionInput) []models.QuestionOption {
	options := make([]models.QuestionOption, 0, len(inputs))
	for _, input := range inputs {
		options = append(options, models.QuestionOption{
			QuestionID: questionID,
			Label:      input.Label,
			IsCorrect:  input.IsCorrect,
		})
	}

	return options
}
