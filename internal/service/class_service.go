package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/optikform/optik-api/internal/dto"
	"github.com/optikform/optik-api/internal/models"
	"github.com/optikform/optik-api/internal/repository"
)

var (
	// ErrClassNotFound indicates a missing class reference.
	ErrClassNotFound = errors.New("class not found")
	// ErrClassNameTaken indicates a duplicate class name within a school.
	ErrClassNameTaken = errors.New("class name already exists in this school")
)

// ClassService manages classes and their school binding.
type ClassService interface {
	Add(ctx context.Context, req dto.AddClassRequest) (dto.ClassResponse, error)
	Get(ctx context.Context, id uint) (dto.ClassResponse, error)
	List(ctx context.Context) ([]dto.ClassResponse, error)
	ListBySchool(ctx context.Context, schoolID uint) ([]dto.ClassResponse, error)
	Update(ctx context.Context, id uint, req dto.UpdateClassRequest) (dto.ClassResponse, error)
	Delete(ctx context.Context, id uint) error
}

type classService struct {
	db        *gorm.DB
	classes   repository.ClassRepository
	schools   repository.SchoolRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewClassService constructs the class service.
func NewClassService(db *gorm.DB, classes repository.ClassRepository, schools repository.SchoolRepository, validate *validator.Validate, logger zerolog.Logger) ClassService {
	return &classService{
		db:        db,
		classes:   classes,
		schools:   schools,
		validator: validate,
		logger:    logger.With().Str("component", "class_service").Logger(),
	}
}

// Add creates a class inside an existing school, rejecting duplicate
// (name, school) pairs.
func (s *classService) Add(ctx context.Context, req dto.AddClassRequest) (dto.ClassResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ClassResponse{}, err
	}

	if _, err := s.schools.GetByID(ctx, req.SchoolID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ClassResponse{}, ErrSchoolNotFound
		}
		return dto.ClassResponse{}, err
	}

	name := strings.TrimSpace(req.Name)
	taken, err := s.classes.NameTakenInSchool(ctx, name, req.SchoolID, 0)
	if err != nil {
		return dto.ClassResponse{}, err
	}
	if taken {
		return dto.ClassResponse{}, ErrClassNameTaken
	}

	class := models.Class{
		Name:     name,
		Grade:    req.Grade,
		SchoolID: req.SchoolID,
	}
	if err := s.classes.Create(ctx, &class); err != nil {
		return dto.ClassResponse{}, err
	}

	s.logger.Info().Uint("class_id", class.ID).Uint("school_id", class.SchoolID).Msg("class created")

	return dto.NewClassResponse(class), nil
}

func (s *classService) Get(ctx context.Context, id uint) (dto.ClassResponse, error) {
	class, err := s.classes.GetWithStudents(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ClassResponse{}, ErrClassNotFound
		}
		return dto.ClassResponse{}, err
	}
	return dto.NewClassResponse(class), nil
}

func (s *classService) List(ctx context.Context) ([]dto.ClassResponse, error) {
	classes, err := s.classes.List(ctx)
	if err != nil {
		return nil, err
	}
	return classResponses(classes), nil
}

func (s *classService) ListBySchool(ctx context.Context, schoolID uint) ([]dto.ClassResponse, error) {
	if _, err := s.schools.GetByID(ctx, schoolID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSchoolNotFound
		}
		return nil, err
	}

	classes, err := s.classes.ListBySchool(ctx, schoolID)
	if err != nil {
		return nil, err
	}
	return classResponses(classes), nil
}

// Update applies the provided fields only. A name change re-checks uniqueness
// within the same school excluding the class itself.
func (s *classService) Update(ctx context.Context, id uint, req dto.UpdateClassRequest) (dto.ClassResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ClassResponse{}, err
	}

	class, err := s.classes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ClassResponse{}, ErrClassNotFound
		}
		return dto.ClassResponse{}, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name != class.Name {
			taken, err := s.classes.NameTakenInSchool(ctx, name, class.SchoolID, id)
			if err != nil {
				return dto.ClassResponse{}, err
			}
			if taken {
				return dto.ClassResponse{}, ErrClassNameTaken
			}
		}
		class.Name = name
	}
	if req.Grade != nil {
		class.Grade = *req.Grade
	}

	if err := s.classes.Save(ctx, &class); err != nil {
		return dto.ClassResponse{}, err
	}
	return dto.NewClassResponse(class), nil
}

// Delete removes a class in a single transaction: enrolled students have their
// class reference cleared first, then the class row goes away. A partial
// failure rolls everything back so no student can point at a missing class.
func (s *classService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		classes := repository.NewClassRepository(tx)
		students := repository.NewStudentRepository(tx)

		if _, err := classes.GetByID(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrClassNotFound
			}
			return err
		}

		if err := students.DetachClass(ctx, id); err != nil {
			return err
		}
		if err := classes.Delete(ctx, id); err != nil {
			return err
		}

		s.logger.Info().Uint("class_id", id).Msg("class deleted")
		return nil
	})
}

func classResponses(classes []models.Class) []dto.ClassResponse {
	responses := make([]dto.ClassResponse, 0, len(classes))
	for _, class := range classes {
		responses = append(responses, dto.NewClassResponse(class))
	}
	return responses
}
