package handler

import (
	"errors"
	"mime/multipart"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/fisikaku/fisikaku-api/internal/auth"
	"github.com/fisikaku/fisikaku-api/internal/dto"
	"github.com/fisikaku/fisikaku-api/internal/service"
	"github.com/fisikaku/fisikaku-api/internal/utils"
)

// MaterialHandler manages material and material-content endpoints.
type MaterialHandler struct {
	courses  service.CourseService
	contents service.ContentService
	logger   zerolog.Logger
}

// NewMaterialHandler builds a material handler instance.
func NewMaterialHandler(courses service.CourseService, contents service.ContentService, logger zerolog.Logger) *MaterialHandler {
	return &MaterialHandler{
		courses:  courses,
		contents: contents,
		logger:   logger.With().Str("component", "material_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *MaterialHandler) Register(router fiber.Router) {
	router.Get("/:id", h.get)
	router.Post("", h.create)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)

	router.Get("/:id/contents", h.listContents)
	router.Post("/:id/contents", h.addContent)
}

// RegisterContents attaches the content-block routes addressed by content id.
func (h *MaterialHandler) RegisterContents(router fiber.Router) {
	router.Put("/:id", h.updateContent)
	router.Delete("/:id", h.deleteContent)
}

func (h *MaterialHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid material id")
	}

	material, err := h.courses.GetMaterial(c.UserContext(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "material retrieved", material)
}

func (h *MaterialHandler) create(c *fiber.Ctx) error {
	var payload dto.MaterialCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	material, err := h.courses.CreateMaterial(c.UserContext(), callerFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "material created", material)
}

func (h *MaterialHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid material id")
	}

	var payload dto.MaterialUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	material, err := h.courses.UpdateMaterial(c.UserContext(), callerFromContext(c), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "material updated", material)
}

func (h *MaterialHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid material id")
	}

	if err := h.courses.DeleteMaterial(c.UserContext(), callerFromContext(c), id); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "material deleted", nil)
}

func (h *MaterialHandler) listContents(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid material id")
	}

	contents, err := h.contents.ListContents(c.UserContext(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "contents retrieved", contents)
}

// addContent accepts either JSON or multipart form data. Image and pdf blocks
// arrive as multipart with an attached file; the rest are plain JSON.
func (h *MaterialHandler) addContent(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid material id")
	}

	var payload dto.ContentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	var file *multipart.FileHeader
	if formFile, err := c.FormFile("file"); err == nil {
		file = formFile
	}

	content, err := h.contents.AddContent(c.UserContext(), callerFromContext(c), id, payload, file)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "content added", content)
}

func (h *MaterialHandler) updateContent(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid content id")
	}

	var payload dto.ContentUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	content, err := h.contents.UpdateContent(c.UserContext(), callerFromContext(c), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "content updated", content)
}

func (h *MaterialHandler) deleteContent(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid content id")
	}

	if err := h.contents.DeleteContent(c.UserContext(), callerFromContext(c), id); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "content deleted", nil)
}

func (h *MaterialHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "course not found")
	case errors.Is(err, service.ErrMaterialNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "material not found")
	case errors.Is(err, service.ErrContentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "content not found")
	case errors.Is(err, service.ErrContentInvalid):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUploadTooLarge):
		return utils.SendError(c, fiber.StatusRequestEntityTooLarge, "file exceeds maximum allowed size")
	case errors.Is(err, service.ErrUploadTypeNotAllowed):
		return utils.SendError(c, fiber.StatusUnsupportedMediaType, "file type not allowed")
	case errors.Is(err, auth.ErrForbidden):
		return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
