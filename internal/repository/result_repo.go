package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/optikform/optik-api/internal/models"
)

// ResultRepository provides access to scored exam results.
type ResultRepository interface {
	Upsert(ctx context.Context, result *models.Result) error
	GetByID(ctx context.Context, id uint) (models.Result, error)
	GetByExamAndStudent(ctx context.Context, examID, studentID uint) (models.Result, error)
	ListByExam(ctx context.Context, examID uint) ([]models.Result, error)
	ListByStudent(ctx context.Context, studentID uint) ([]models.Result, error)
	Delete(ctx context.Context, id uint) error
}

type resultRepository struct {
	db *gorm.DB
}

// NewResultRepository constructs a result repository.
func NewResultRepository(db *gorm.DB) ResultRepository {
	return &resultRepository{db: db}
}

// Upsert writes the result, replacing any previous row for the same
// (exam, student) pair so that re-scoring stays idempotent.
func (r *resultRepository) Upsert(ctx context.Context, result *models.Result) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "exam_id"}, {Name: "student_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"score", "answers", "updated_at"}),
	}).Create(result).Error
}

func (r *resultRepository) GetByID(ctx context.Context, id uint) (models.Result, error) {
	var result models.Result
	if err := r.db.WithContext(ctx).Preload("Exam").Preload("Student").First(&result, id).Error; err != nil {
		return models.Result{}, err
	}
	return result, nil
}

func (r *resultRepository) GetByExamAndStudent(ctx context.Context, examID, studentID uint) (models.Result, error) {
	var result models.Result
	err := r.db.WithContext(ctx).
		Where("exam_id = ? AND student_id = ?", examID, studentID).
		First(&result).Error
	if err != nil {
		return models.Result{}, err
	}
	return result, nil
}

func (r *resultRepository) ListByExam(ctx context.Context, examID uint) ([]models.Result, error) {
	var results []models.Result
	if err := r.db.WithContext(ctx).Preload("Student").Where("exam_id = ?", examID).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *resultRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.Result, error) {
	var results []models.Result
	if err := r.db.WithContext(ctx).Preload("Exam").Where("student_id = ?", studentID).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *resultRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Result{}, id).Error
}
