package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/optikform/optik-api/internal/models"
)

// StudentRepository provides access to student records.
type StudentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	GetByID(ctx context.Context, id uint) (models.Student, error)
	List(ctx context.Context) ([]models.Student, error)
	ListByClass(ctx context.Context, classID uint) ([]models.Student, error)
	ListBySchool(ctx context.Context, schoolID uint) ([]models.Student, error)
	ListByCreator(ctx context.Context, userID uint) ([]models.Student, error)
	NumberTaken(ctx context.Context, studentNumber string, excludeID uint) (bool, error)
	NationalIDTaken(ctx context.Context, nationalID string, excludeID uint) (bool, error)
	Save(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id uint) error
	DetachClass(ctx context.Context, classID uint) error
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository constructs a student repository.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) Create(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

func (r *studentRepository) GetByID(ctx context.Context, id uint) (models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).Preload("Class").Preload("School").First(&student, id).Error; err != nil {
		return models.Student{}, err
	}
	return student, nil
}

func (r *studentRepository) List(ctx context.Context) ([]models.Student, error) {
	return r.findAll(ctx, r.db.WithContext(ctx))
}

func (r *studentRepository) ListByClass(ctx context.Context, classID uint) ([]models.Student, error) {
	return r.findAll(ctx, r.db.WithContext(ctx).Where("class_id = ?", classID))
}

func (r *studentRepository) ListBySchool(ctx context.Context, schoolID uint) ([]models.Student, error) {
	return r.findAll(ctx, r.db.WithContext(ctx).Where("school_id = ?", schoolID))
}

func (r *studentRepository) ListByCreator(ctx context.Context, userID uint) ([]models.Student, error) {
	return r.findAll(ctx, r.db.WithContext(ctx).Where("created_by_id = ?", userID))
}

func (r *studentRepository) findAll(ctx context.Context, query *gorm.DB) ([]models.Student, error) {
	var students []models.Student
	if err := query.Preload("Class").Preload("School").Order("last_name, first_name").Find(&students).Error; err != nil {
		return nil, err
	}
	return students, nil
}

func (r *studentRepository) NumberTaken(ctx context.Context, studentNumber string, excludeID uint) (bool, error) {
	return r.fieldTaken(ctx, "student_number", studentNumber, excludeID)
}

func (r *studentRepository) NationalIDTaken(ctx context.Context, nationalID string, excludeID uint) (bool, error) {
	return r.fieldTaken(ctx, "national_id", nationalID, excludeID)
}

func (r *studentRepository) fieldTaken(ctx context.Context, column, value string, excludeID uint) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.Student{}).Where(column+" = ?", value)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *studentRepository) Save(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Save(student).Error
}

func (r *studentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Student{}, id).Error
}

// DetachClass clears the class reference on every student enrolled in the
// class, leaving the students themselves intact.
func (r *studentRepository) DetachClass(ctx context.Context, classID uint) error {
	return r.db.WithContext(ctx).Model(&models.Student{}).
		Where("class_id = ?", classID).
		Update("class_id", nil).Error
}
