package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/fisikaku/fisikaku-api/internal/auth"
	"github.com/fisikaku/fisikaku-api/internal/dto"
	"github.com/fisikaku/fisikaku-api/internal/service"
	"github.com/fisikaku/fisikaku-api/internal/utils"
)

// GradingHandler manages teacher-side essay grading endpoints.
type GradingHandler struct {
	service service.GradingService
	logger  zerolog.Logger
}

// NewGradingHandler builds a grading handler instance.
func NewGradingHandler(service service.GradingService, logger zerolog.Logger) *GradingHandler {
	return &GradingHandler{
		service: service,
		logger:  logger.With().Str("component", "grading_handler").Logger(),
	}
}

// Register attaches the routes to the provided submission router group.
// Route-level middleware, such as the teacher role gate, applies to every
// grading endpoint.
func (h *GradingHandler) Register(router fiber.Router, middlewares ...fiber.Handler) {
	router.Patch("/:id/essays/:questionId/grade", chain(middlewares, h.gradeEssay)...)
	router.Post("/:id/essays/:questionId/feedback-draft", chain(middlewares, h.suggestFeedback)...)
}

func (h *GradingHandler) gradeEssay(c *fiber.Ctx) error {
	submissionID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid submission id")
	}

	questionID, err := parseUintParam(c, "questionId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid question id")
	}

	var payload dto.GradeEssayRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.GradeEssay(c.UserContext(), callerFromContext(c), submissionID, questionID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "essay graded", result)
}

func (h *GradingHandler) suggestFeedback(c *fiber.Ctx) error {
	submissionID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid submission id")
	}

	questionID, err := parseUintParam(c, "questionId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid question id")
	}

	draft, err := h.service.SuggestFeedback(c.UserContext(), callerFromContext(c), submissionID, questionID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "feedback draft generated", draft)
}

func (h *GradingHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "submission not found")
	case errors.Is(err, service.ErrAssessmentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "assessment not found")
	case errors.Is(err, service.ErrQuestionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "question not found")
	case errors.Is(err, service.ErrAnswerNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "essay answer not found")
	case errors.Is(err, service.ErrQuestionNotEssay):
		return utils.SendError(c, fiber.StatusBadRequest, "question is not an essay")
	case errors.Is(err, service.ErrScoreExceedsMax):
		return utils.SendError(c, fiber.StatusBadRequest, "score exceeds the question's maximum points")
	case errors.Is(err, service.ErrFeedbackUnavailable):
		return utils.SendError(c, fiber.StatusServiceUnavailable, "feedback drafting is not configured")
	case errors.Is(err, auth.ErrForbidden):
		return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
