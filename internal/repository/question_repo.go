package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/fisikaku/fisikaku-api/internal/models"
)

// QuestionRepository defines persistence operations for questions and their
// options.
type QuestionRepository interface {
	ListByAssessment(ctx context.Context, assessmentID uint) ([]models.Question, error)
	GetByID(ctx context.Context, id uint) (models.Question, error)
	Create(ctx context.Context, question *models.Question) error
	Update(ctx context.Context, question *models.Question) error
	Delete(ctx context.Context, id uint) error
	ReplaceOptions(ctx context.Context, questionID uint, options []models.QuestionOption) error
}

type questionRepository struct {
	db *gorm.DB
}

// NewQuestionRepository instantiates a GORM-backed repository.
func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) ListByAssessment(ctx context.Context, assessmentID uint) ([]models.Question, error) {
	var questions []models.Question
	if err := r.db.WithContext(ctx).
		Preload("Options").
		Where("assessment_id = ?", assessmentID).
		Order("id ASC").
		Find(&questions).Error; err != nil {
		return nil, err
	}

	return questions, nil
}

func (r *questionRepository) GetByID(ctx context.Context, id uint) (models.Question, error) {
	var question models.Question
	if err := r.db.WithContext(ctx).Preload("Options").First(&question, id).Error; err != nil {
		return models.Question{}, err
	}

	return question, nil
}

func (r *questionRepository) Create(ctx context.Context, question *models.Question) error {
	return r.db.WithContext(ctx).Create(question).Error
}

func (r *questionRepository) Update(ctx context.Context, question *models.Question) error {
	return r.db.WithContext(ctx).
		Model(&models.Question{ID: question.ID}).
		Select("Type", "Prompt", "Points").
		Updates(question).Error
}

func (r *questionRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id = ?", id).Delete(&models.QuestionOption{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Question{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// ReplaceOptions swaps a question's full option set in one transaction.
// Options are replaced, never merged, so the answer key always reflects the
// latest authoring state.
func (r *questionRepository) ReplaceOptions(ctx context.Context, questionID uint, options []models.QuestionOption) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id = ?", questionID).Delete(&models.QuestionOption{}).Error; err != nil {
			return err
		}

		if len(options) == 0 {
			return nil
		}

		for i := range options {
			options[i].ID = 0
			options[i].QuestionID = questionID
		}

		return tx.Create(&options).Error
	})
}
