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

// ErrCourseNotFound indicates the referenced course does not exist.
var ErrCourseNotFound = errors.New("course not found")

// CourseService manages courses and the materials under them. Reads are open
// to any authenticated caller; writes require the owning teacher.
type CourseService interface {
	ListCourses(ctx context.Context, mine *uint) ([]dto.CourseResponse, error)
	GetCourse(ctx context.Context, id uint) (dto.CourseResponse, error)
	CreateCourse(ctx context.Context, caller auth.Caller, payload dto.CourseCreateRequest) (dto.CourseResponse, error)
	UpdateCourse(ctx context.Context, caller auth.Caller, id uint, payload dto.CourseUpdateRequest) (dto.CourseResponse, error)
	DeleteCourse(ctx context.Context, caller auth.Caller, id uint) error

	ListMaterials(ctx context.Context, courseID uint) ([]dto.MaterialResponse, error)
	GetMaterial(ctx context.Context, id uint) (dto.MaterialResponse, error)
	CreateMaterial(ctx context.Context, caller auth.Caller, payload dto.MaterialCreateRequest) (dto.MaterialResponse, error)
	UpdateMaterial(ctx context.Context, caller auth.Caller, id uint, payload dto.MaterialUpdateRequest) (dto.MaterialResponse, error)
	DeleteMaterial(ctx context.Context, caller auth.Caller, id uint) error
}

type courseService struct {
	courses   repository.CourseRepository
	materials repository.MaterialRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewCourseService constructs a CourseService instance.
func NewCourseService(courseRepo repository.CourseRepository, materialRepo repository.MaterialRepository, validate *validator.Validate, logger zerolog.Logger) CourseService {
	return &courseService{
		courses:   courseRepo,
		materials: materialRepo,
		validator: validate,
		logger:    logger.With().Str("component", "course_service").Logger(),
	}
}

func (s *courseService) ListCourses(ctx context.Context, mine *uint) ([]dto.CourseResponse, error) {
	courses, err := s.courses.List(ctx, mine)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.CourseResponse, 0, len(courses))
	for _, course := range courses {
		responses = append(responses, dto.NewCourseResponse(course))
	}

	return responses, nil
}

func (s *courseService) GetCourse(ctx context.Context, id uint) (dto.CourseResponse, error) {
	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseResponse{}, ErrCourseNotFound
		}
		return dto.CourseResponse{}, err
	}

	return dto.NewCourseResponse(course), nil
}

func (s *courseService) CreateCourse(ctx context.Context, caller auth.Caller, payload dto.CourseCreateRequest) (dto.CourseResponse, error) {
	if err := auth.EnsureRole(caller, auth.RoleTeacher); err != nil {
		return dto.CourseResponse{}, err
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.CourseResponse{}, err
	}

	course := models.Course{
		Title:       payload.Title,
		Description: payload.Description,
		CreatedBy:   caller.ID,
	}

	if err := s.courses.Create(ctx, &course); err != nil {
		return dto.CourseResponse{}, err
	}

	s.logger.Info().Uint("course_id", course.ID).Msg("course created")

	return dto.NewCourseResponse(course), nil
}

func (s *courseService) UpdateCourse(ctx context.Context, caller auth.Caller, id uint, payload dto.CourseUpdateRequest) (dto.CourseResponse, error) {
	if err := auth.EnsureRole(caller, auth.RoleTeacher); err != nil {
		return dto.CourseResponse{}, err
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.CourseResponse{}, err
	}

	course, err := s.ownedCourse(ctx, caller, id)
	if err != nil {
		return dto.CourseResponse{}, err
	}

	course.Title = payload.Title
	course.Description = payload.Description

	if err := s.courses.Update(ctx, &course); err != nil {
		return dto.CourseResponse{}, err
	}

	return dto.NewCourseResponse(course), nil
}

func (s *courseService) DeleteCourse(ctx context.Context, caller auth.Caller, id uint) error {
	if err := auth.EnsureRole(caller, auth.RoleTeacher); err != nil {
		return err
	}

	if err := s.courses.Delete(ctx, id, caller.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCourseNotFound
		}
		return err
	}

	s.logger.Info().Uint("course_id", id).Msg("course deleted")

	return nil
}

func (s *courseService) ListMaterials(ctx context.Context, courseID uint) ([]dto.MaterialResponse, error) {
	if _, err := s.courses.GetByID(ctx, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	materials, err := s.materials.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.MaterialResponse, 0, len(materials))
	for _, material := range materials {
		responses = append(responses, dto.NewMaterialResponse(material))
	}

	return responses, nil
}

func (s *courseService) GetMaterial(ctx context.Context, id uint) (dto.MaterialResponse, error) {
	material, err := s.materials.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.MaterialResponse{}, ErrMaterialNotFound
		}
		return dto.MaterialResponse{}, err
	}

	return dto.NewMaterialResponse(material), nil
}

func (s *courseService) CreateMaterial(ctx context.Context, caller auth.Caller, payload dto.MaterialCreateRequest) (dto.MaterialResponse, error) {
	if err := auth.EnsureRole(caller, auth.RoleTeacher); err != nil {
		return dto.MaterialResponse{}, err
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.MaterialResponse{}, err
	}

	if _, err := s.ownedCourse(ctx, caller, payload.CourseID); err != nil {
		return dto.MaterialResponse{}, err
	}

	material := models.Material{
		CourseID:    payload.CourseID,
		Title:       payload.Title,
		Description: payload.Description,
		CreatedBy:   caller.ID,
	}

	if err := s.materials.Create(ctx, &material); err != nil {
		return dto.MaterialResponse{}, err
	}

	s.logger.Info().Uint("material_id", material.ID).Uint("course_id", material.CourseID).Msg("material created")

	return dto.NewMaterialResponse(material), nil
}

func (s *courseService) UpdateMaterial(ctx context.Context, caller auth.Caller, id uint, payload dto.MaterialUpdateRequest) (dto.MaterialResponse, error) {
	if err := auth.EnsureRole(caller, auth.RoleTeacher); err != nil {
		return dto.MaterialResponse{}, err
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.MaterialResponse{}, err
	}

	material, err := s.ownedMaterial(ctx, caller, id)
	if err != nil {
		return dto.MaterialResponse{}, err
	}

	// Moving a material only works between courses the caller owns.
	if payload.CourseID != material.CourseID {
		if _, err := s.ownedCourse(ctx, caller, payload.CourseID); err != nil {
			return dto.MaterialResponse{}, err
		}
	}

	material.CourseID = payload.CourseID
	material.Title = payload.Title
	material.Description = payload.Description

	if err := s.materials.Update(ctx, &material); err != nil {
		return dto.MaterialResponse{}, err
	}

	return dto.NewMaterialResponse(material), nil
}

func (s *courseService) DeleteMaterial(ctx context.Context, caller auth.Caller, id uint) error {
	if err := auth.EnsureRole(caller, auth.RoleTeacher); err != nil {
		return err
	}

	if err := s.materials.Delete(ctx, id, caller.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMaterialNotFound
		}
		return err
	}

	s.logger.Info().Uint("material_id", id).Msg("material deleted")

	return nil
}

func (s *courseService) ownedCourse(ctx context.Context, caller auth.Caller, id uint) (models.Course, error) {
	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Course{}, ErrCourseNotFound
		}
		return models.Course{}, err
	}

	if !course.IsOwnedBy(caller.ID) {
		return models.Course{}, auth.ErrForbidden
	}

	return course, nil
}

func (s *courseService) ownedMaterial(ctx context.Context, caller auth.Caller, id uint) (models.Material, error) {
	material, err := s.materials.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Material{}, ErrMaterialNotFound
		}
		return models.Material{}, err
	}

	if material.CreatedBy != caller.ID {
		return models.Material{}, auth.ErrForbidden
	}

	return material, nil
}
