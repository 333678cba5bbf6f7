package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fisikaku/fisikaku-api/internal/models"
)

// AnswerRepository persists both answer variants. Writes are upserts keyed by
// (submission_id, question_id): resubmitting a question replaces the stored
// answer in place, which keeps the whole submit flow idempotent.
type AnswerRepository interface {
	UpsertMultipleChoice(ctx context.Context, answer *models.MultipleChoiceAnswer) error
	UpsertEssay(ctx context.Context, answer *models.EssayAnswer) error
	ListMultipleChoiceBySubmission(ctx context.Context, submissionID uint) ([]models.MultipleChoiceAnswer, error)
	ListEssayBySubmission(ctx context.Context, submissionID uint) ([]models.EssayAnswer, error)
	GetEssay(ctx context.Context, submissionID, questionID uint) (models.EssayAnswer, error)
	UpdateEssayGrade(ctx context.Context, submissionID, questionID uint, score float64, feedback string) error
}

type answerRepository struct {
	db *gorm.DB
}

// NewAnswerRepository instantiates the repository.
func NewAnswerRepository(db *gorm.DB) AnswerRepository {
	return &answerRepository{db: db}
}

func (r *answerRepository) UpsertMultipleChoice(ctx context.Context, answer *models.MultipleChoiceAnswer) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "submission_id"}, {Name: "question_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"selected_option_id", "is_correct", "score", "updated_at"}),
	}).Create(answer).Error
}

// UpsertEssay replaces the student's text but never touches score or
// feedback, so a grade recorded before a resubmission survives it.
func (r *answerRepository) UpsertEssay(ctx context.Context, answer *models.EssayAnswer) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "submission_id"}, {Name: "question_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"essay_text", "updated_at"}),
	}).Create(answer).Error
}

func (r *answerRepository) ListMultipleChoiceBySubmission(ctx context.Context, submissionID uint) ([]models.MultipleChoiceAnswer, error) {
	var answers []models.MultipleChoiceAnswer
	if err := r.db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		Order("question_id ASC").
		Find(&answers).Error; err != nil {
		return nil, err
	}

	return answers, nil
}

func (r *answerRepository) ListEssayBySubmission(ctx context.Context, submissionID uint) ([]models.EssayAnswer, error) {
	var answers []models.EssayAnswer
	if err := r.db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		Order("question_id ASC").
		Find(&answers).Error; err != nil {
		return nil, err
	}

	return answers, nil
}

func (r *answerRepository) GetEssay(ctx context.Context, submissionID, questionID uint) (models.EssayAnswer, error) {
	var answer models.EssayAnswer
	if err := r.db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		Where("question_id = ?", questionID).
		First(&answer).Error; err != nil {
		return models.EssayAnswer{}, err
	}

	return answer, nil
}

func (r *answerRepository) UpdateEssayGrade(ctx context.Context, submissionID, questionID uint, score float64, feedback string) error {
	result := r.db.WithContext(ctx).
		Model(&models.EssayAnswer{}).
		Where("submission_id = ?", submissionID).
		Where("question_id = ?", questionID).
		Updates(map[string]interface{}{"score": score, "feedback": feedback})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
