package dto

import (
	"time"

	"github.com/fisikaku/fisikaku-api/internal/models"
)

// CourseCreateRequest describes the payload for creating a course.
type CourseCreateRequest struct {
	Title       string `json:"title" validate:"required,min=3,max=120"`
	Description string `json:"description" validate:"omitempty,max=1000"`
}

// CourseUpdateRequest describes the payload for updating a course.
type CourseUpdateRequest struct {
	Title       string `json:"title" validate:"required,min=3,max=120"`
	Description string `json:"description" validate:"omitempty,max=1000"`
}

// CourseResponse is returned to API clients when viewing courses.
type CourseResponse struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedBy   uint      `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewCourseResponse converts a Course model into a DTO.
func NewCourseResponse(model models.Course) CourseResponse {
	return CourseResponse{
		ID:          model.ID,
		Title:       model.Title,
		Description: model.Description,
		CreatedBy:   model.CreatedBy,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

// MaterialCreateRequest describes the payload for creating a material.
type MaterialCreateRequest struct {
	CourseID    uint   `json:"course_id" validate:"required,gt=0"`
	Title       string `json:"title" validate:"required,min=3,max=120"`
	Description string `json:"description" validate:"omitempty,max=2000"`
}

// MaterialUpdateRequest describes the payload for updating a material.
type MaterialUpdateRequest struct {
	CourseID    uint   `json:"course_id" validate:"required,gt=0"`
	Title       string `json:"title" validate:"required,min=3,max=120"`
	Description string `json:"description" validate:"omitempty,max=2000"`
}

// MaterialResponse is returned to API clients when viewing materials.
type MaterialResponse struct {
	ID          uint      `json:"id"`
	CourseID    uint      `json:"course_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewMaterialResponse converts a Material model into a DTO.
func NewMaterialResponse(model models.Material) MaterialResponse {
	return MaterialResponse{
		ID:          model.ID,
		CourseID:    model.CourseID,
		Title:       model.Title,
		Description: model.Description,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

// ContentCreateRequest describes one content block attached to a material.
// Text blocks require content; every other type requires a URL, which for
// image/pdf types is produced by the upload pipeline rather than the client.
type ContentCreateRequest struct {
	Type       string `json:"type" form:"type" validate:"required,oneof=text image pdf link youtube"`
	Content    string `json:"content" form:"content" validate:"omitempty,max=20000"`
	URL        string `json:"url" form:"url" validate:"omitempty,url,max=512"`
	OrderIndex int    `json:"order_index" form:"order_index" validate:"gte=0"`
}

// ContentUpdateRequest describes the payload for updating a content block.
type ContentUpdateRequest struct {
	Type       string `json:"type" validate:"required,oneof=text image pdf link youtube"`
	Content    string `json:"content" validate:"omitempty,max=20000"`
	URL        string `json:"url" validate:"omitempty,url,max=512"`
	OrderIndex int    `json:"order_index" validate:"gte=0"`
}

// ContentResponse is returned to API clients when viewing material contents.
type ContentResponse struct {
	ID         uint      `json:"id"`
	MaterialID uint      `json:"material_id"`
	Type       string    `json:"type"`
	Content    string    `json:"content"`
	URL        string    `json:"url"`
	OrderIndex int       `json:"order_index"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewContentResponse converts a MaterialContent model into a DTO.
func NewContentResponse(model models.MaterialContent) ContentResponse {
	return ContentResponse{
		ID:         model.ID,
		MaterialID: model.MaterialID,
		Type:       model.Type,
		Content:    model.Content,
		URL:        model.URL,
		OrderIndex: model.OrderIndex,
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}
}
