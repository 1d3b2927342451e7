package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/optikform/optik-api/internal/models"
)

// ExamRepository provides access to exams and their targeting associations.
type ExamRepository interface {
	Create(ctx context.Context, exam *models.Exam) error
	GetByID(ctx context.Context, id uint) (models.Exam, error)
	ListByCreator(ctx context.Context, userID uint, templatesOnly bool) ([]models.Exam, error)
	ListBySchool(ctx context.Context, schoolID uint, templatesOnly bool) ([]models.Exam, error)
	ListByClass(ctx context.Context, classID uint) ([]models.Exam, error)
	TitleTakenInSchool(ctx context.Context, title string, schoolID, excludeID uint) (bool, error)
	Save(ctx context.Context, exam *models.Exam) error
	ReplaceAssignedClasses(ctx context.Context, exam *models.Exam, classes []models.Class) error
	ReplaceStudents(ctx context.Context, exam *models.Exam, students []models.Student) error
	Delete(ctx context.Context, id uint) error
}

type examRepository struct {
	db *gorm.DB
}

// NewExamRepository constructs an exam repository.
func NewExamRepository(db *gorm.DB) ExamRepository {
	return &examRepository{db: db}
}

func (r *examRepository) Create(ctx context.Context, exam *models.Exam) error {
	return r.db.WithContext(ctx).Create(exam).Error
}

func (r *examRepository) GetByID(ctx context.Context, id uint) (models.Exam, error) {
	var exam models.Exam
	err := r.db.WithContext(ctx).
		Preload("School").
		Preload("Class").
		Preload("AssignedClasses").
		Preload("Students").
		Preload("OpticalTemplate").
		Preload("CreatedBy").
		First(&exam, id).Error
	if err != nil {
		return models.Exam{}, err
	}
	return exam, nil
}

func (r *examRepository) ListByCreator(ctx context.Context, userID uint, templatesOnly bool) ([]models.Exam, error) {
	query := r.db.WithContext(ctx).Where("created_by_id = ?", userID)
	if templatesOnly {
		query = query.Where("is_template = ?", true)
	}
	return r.findAll(query)
}

func (r *examRepository) ListBySchool(ctx context.Context, schoolID uint, templatesOnly bool) ([]models.Exam, error) {
	query := r.db.WithContext(ctx).Where("school_id = ?", schoolID)
	if templatesOnly {
		query = query.Where("is_template = ?", true)
	}
	return r.findAll(query)
}

// ListByClass returns the union of exams directly targeting the class and
// exams broadcasting to it through the assignment table.
func (r *examRepository) ListByClass(ctx context.Context, classID uint) ([]models.Exam, error) {
	query := r.db.WithContext(ctx).
		Where("class_id = ? OR id IN (?)", classID,
			r.db.Table("exam_assigned_classes").
				Select("exam_id").
				Where("class_id = ?", classID))
	return r.findAll(query)
}

func (r *examRepository) findAll(query *gorm.DB) ([]models.Exam, error) {
	var exams []models.Exam
	err := query.
		Preload("School").
		Preload("Class").
		Preload("CreatedBy").
		Order("date DESC").
		Find(&exams).Error
	if err != nil {
		return nil, err
	}
	return exams, nil
}

func (r *examRepository) TitleTakenInSchool(ctx context.Context, title string, schoolID, excludeID uint) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.Exam{}).
		Where("title = ? AND school_id = ?", title, schoolID)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *examRepository) Save(ctx context.Context, exam *models.Exam) error {
	return r.db.WithContext(ctx).Omit("AssignedClasses", "Students").Save(exam).Error
}

func (r *examRepository) ReplaceAssignedClasses(ctx context.Context, exam *models.Exam, classes []models.Class) error {
	return r.db.WithContext(ctx).Model(exam).Association("AssignedClasses").Replace(classes)
}

func (r *examRepository) ReplaceStudents(ctx context.Context, exam *models.Exam, students []models.Student) error {
	return r.db.WithContext(ctx).Model(exam).Association("Students").Replace(students)
}

func (r *examRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Select("AssignedClasses", "Students").Delete(&models.Exam{ID: id}).Error
}
