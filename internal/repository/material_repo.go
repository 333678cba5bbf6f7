package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/fisikaku/fisikaku-api/internal/models"
)

// MaterialRepository defines persistence operations for materials and their
// content blocks.
type MaterialRepository interface {
	ListByCourse(ctx context.Context, courseID uint) ([]models.Material, error)
	GetByID(ctx context.Context, id uint) (models.Material, error)
	Create(ctx context.Context, material *models.Material) error
	Update(ctx context.Context, material *models.Material) error
	Delete(ctx context.Context, id, teacherID uint) error

	GetContentByID(ctx context.Context, id uint) (models.MaterialContent, error)
	CreateContent(ctx context.Context, content *models.MaterialContent) error
	UpdateContent(ctx context.Context, content *models.MaterialContent) error
	DeleteContent(ctx context.Context, id uint) error
}

type materialRepository struct {
	db *gorm.DB
}

// NewMaterialRepository instantiates the repository.
func NewMaterialRepository(db *gorm.DB) MaterialRepository {
	return &materialRepository{db: db}
}

func (r *materialRepository) ListByCourse(ctx context.Context, courseID uint) ([]models.Material, error) {
	var materials []models.Material
	if err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("created_at ASC").
		Find(&materials).Error; err != nil {
		return nil, err
	}

	return materials, nil
}

func (r *materialRepository) GetByID(ctx context.Context, id uint) (models.Material, error) {
	var material models.Material
	if err := r.db.WithContext(ctx).
		Preload("Contents", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC, id ASC")
		}).
		First(&material, id).Error; err != nil {
		return models.Material{}, err
	}

	return material, nil
}

func (r *materialRepository) Create(ctx context.Context, material *models.Material) error {
	return r.db.WithContext(ctx).Create(material).Error
}

func (r *materialRepository) Update(ctx context.Context, material *models.Material) error {
	return r.db.WithContext(ctx).Save(material).Error
}

func (r *materialRepository) Delete(ctx context.Context, id, teacherID uint) error {
	result := r.db.WithContext(ctx).
		Where("created_by = ?", teacherID).
		Delete(&models.Material{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *materialRepository) GetContentByID(ctx context.Context, id uint) (models.MaterialContent, error) {
	var content models.MaterialContent
	if err := r.db.WithContext(ctx).First(&content, id).Error; err != nil {
		return models.MaterialContent{}, err
	}

	return content, nil
}

func (r *materialRepository) CreateContent(ctx context.Context, content *models.MaterialContent) error {
	return r.db.WithContext(ctx).Create(content).Error
}

func (r *materialRepository) UpdateContent(ctx context.Context, content *models.MaterialContent) error {
	return r.db.WithContext(ctx).Save(content).Error
}

func (r *materialRepository) DeleteContent(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.MaterialContent{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
