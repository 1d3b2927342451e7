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
	// ErrExamNotFound indicates a missing exam reference.
	ErrExamNotFound = errors.New("exam not found")
	// ErrExamTitleTaken indicates a duplicate exam title within a school.
	ErrExamTitleTaken = errors.New("exam title already exists in this school")
)

// ExamService manages exam definitions and their recipient targeting.
type ExamService interface {
	Add(ctx context.Context, req dto.AddExamRequest, actor Actor) (dto.ExamResponse, error)
	Get(ctx context.Context, id uint) (dto.ExamResponse, error)
	ListByCreator(ctx context.Context, userID uint) ([]dto.ExamResponse, error)
	ListBySchool(ctx context.Context, schoolID uint) ([]dto.ExamResponse, error)
	ListByClass(ctx context.Context, classID uint) ([]dto.ExamResponse, error)
	ListTemplatesByCreator(ctx context.Context, userID uint) ([]dto.ExamResponse, error)
	ListTemplatesBySchool(ctx context.Context, schoolID uint) ([]dto.ExamResponse, error)
	Update(ctx context.Context, id uint, req dto.UpdateExamRequest) (dto.ExamResponse, error)
	Delete(ctx context.Context, id uint) error
}

type examService struct {
	db        *gorm.DB
	exams     repository.ExamRepository
	schools   repository.SchoolRepository
	classes   repository.ClassRepository
	templates repository.OpticalTemplateRepository
	storage   FileStorage
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewExamService constructs the exam service.
func NewExamService(db *gorm.DB, exams repository.ExamRepository, schools repository.SchoolRepository, classes repository.ClassRepository, templates repository.OpticalTemplateRepository, storage FileStorage, validate *validator.Validate, logger zerolog.Logger) ExamService {
	return &examService{
		db:        db,
		exams:     exams,
		schools:   schools,
		classes:   classes,
		templates: templates,
		storage:   storage,
		validator: validate,
		logger:    logger.With().Str("component", "exam_service").Logger(),
	}
}

// Add creates an exam in the actor's school. The direct class, assigned
// classes and student list are stored as given; recipients are their union.
func (s *examService) Add(ctx context.Context, req dto.AddExamRequest, actor Actor) (dto.ExamResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ExamResponse{}, err
	}
	if actor.SchoolID == nil {
		return dto.ExamResponse{}, ErrSchoolNotFound
	}
	schoolID := *actor.SchoolID

	if _, err := s.schools.GetByID(ctx, schoolID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ExamResponse{}, ErrSchoolNotFound
		}
		return dto.ExamResponse{}, err
	}
	if req.ClassID != nil {
		if _, err := s.classes.GetByID(ctx, *req.ClassID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.ExamResponse{}, ErrClassNotFound
			}
			return dto.ExamResponse{}, err
		}
	}
	if _, err := s.templates.GetByID(ctx, req.OpticalTemplateID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ExamResponse{}, ErrTemplateNotFound
		}
		return dto.ExamResponse{}, err
	}

	title := strings.TrimSpace(req.Title)
	taken, err := s.exams.TitleTakenInSchool(ctx, title, schoolID, 0)
	if err != nil {
		return dto.ExamResponse{}, err
	}
	if taken {
		return dto.ExamResponse{}, ErrExamTitleTaken
	}

	imagePath, err := storeFormImage(ctx, s.storage, req.FormImage)
	if err != nil {
		return dto.ExamResponse{}, err
	}

	exam := models.Exam{
		Title:             title,
		Date:              req.Date,
		SchoolID:          schoolID,
		ClassID:           req.ClassID,
		OpticalTemplateID: req.OpticalTemplateID,
		IsTemplate:        req.IsTemplate,
		FormImage:         imagePath,
		CreatedByID:       actor.UserID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exams := repository.NewExamRepository(tx)
		if err := exams.Create(ctx, &exam); err != nil {
			return err
		}
		return replaceTargets(ctx, tx, exams, &exam, req.AssignedClassIDs, req.StudentIDs)
	})
	if err != nil {
		return dto.ExamResponse{}, err
	}

	s.logger.Info().Uint("exam_id", exam.ID).Uint("school_id", schoolID).Msg("exam created")

	return s.Get(ctx, exam.ID)
}

func (s *examService) Get(ctx context.Context, id uint) (dto.ExamResponse, error) {
	exam, err := s.exams.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ExamResponse{}, ErrExamNotFound
		}
		return dto.ExamResponse{}, err
	}
	return dto.NewExamResponse(exam), nil
}

func (s *examService) ListByCreator(ctx context.Context, userID uint) ([]dto.ExamResponse, error) {
	exams, err := s.exams.ListByCreator(ctx, userID, false)
	if err != nil {
		return nil, err
	}
	return examResponses(exams), nil
}

func (s *examService) ListBySchool(ctx context.Context, schoolID uint) ([]dto.ExamResponse, error) {
	if err := s.checkSchool(ctx, schoolID); err != nil {
		return nil, err
	}
	exams, err := s.exams.ListBySchool(ctx, schoolID, false)
	if err != nil {
		return nil, err
	}
	return examResponses(exams), nil
}

// ListByClass returns exams reaching the class either directly or through the
// assigned-classes broadcast, as one union.
func (s *examService) ListByClass(ctx context.Context, classID uint) ([]dto.ExamResponse, error) {
	if _, err := s.classes.GetByID(ctx, classID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}
	exams, err := s.exams.ListByClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	return examResponses(exams), nil
}

func (s *examService) ListTemplatesByCreator(ctx context.Context, userID uint) ([]dto.ExamResponse, error) {
	exams, err := s.exams.ListByCreator(ctx, userID, true)
	if err != nil {
		return nil, err
	}
	return examResponses(exams), nil
}

func (s *examService) ListTemplatesBySchool(ctx context.Context, schoolID uint) ([]dto.ExamResponse, error) {
	if err := s.checkSchool(ctx, schoolID); err != nil {
		return nil, err
	}
	exams, err := s.exams.ListBySchool(ctx, schoolID, true)
	if err != nil {
		return nil, err
	}
	return examResponses(exams), nil
}

// Update applies the provided fields only. Assigned classes, students and the
// template reference are replaced wholesale when present; titles are re-checked
// against the school scope.
func (s *examService) Update(ctx context.Context, id uint, req dto.UpdateExamRequest) (dto.ExamResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ExamResponse{}, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exams := repository.NewExamRepository(tx)
		classes := repository.NewClassRepository(tx)
		templates := repository.NewOpticalTemplateRepository(tx)

		exam, err := exams.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrExamNotFound
			}
			return err
		}

		if req.Title != nil {
			title := strings.TrimSpace(*req.Title)
			if title != exam.Title {
				taken, err := exams.TitleTakenInSchool(ctx, title, exam.SchoolID, id)
				if err != nil {
					return err
				}
				if taken {
					return ErrExamTitleTaken
				}
			}
			exam.Title = title
		}
		if req.Date != nil {
			exam.Date = *req.Date
		}
		if req.ClassID != nil {
			if _, err := classes.GetByID(ctx, *req.ClassID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrClassNotFound
				}
				return err
			}
			exam.ClassID = req.ClassID
		}
		if req.OpticalTemplateID != nil {
			if _, err := templates.GetByID(ctx, *req.OpticalTemplateID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrTemplateNotFound
				}
				return err
			}
			exam.OpticalTemplateID = *req.OpticalTemplateID
		}
		if req.IsTemplate != nil {
			exam.IsTemplate = *req.IsTemplate
		}
		if req.FormImage != nil {
			imagePath, err := storeFormImage(ctx, s.storage, *req.FormImage)
			if err != nil {
				return err
			}
			exam.FormImage = imagePath
		}

		exam.School = nil
		exam.Class = nil
		exam.OpticalTemplate = nil
		exam.CreatedBy = nil
		if err := exams.Save(ctx, &exam); err != nil {
			return err
		}

		return replaceTargets(ctx, tx, exams, &exam, req.AssignedClassIDs, req.StudentIDs)
	})
	if err != nil {
		return dto.ExamResponse{}, err
	}

	return s.Get(ctx, id)
}

// Delete removes the exam and its targeting rows. Already-computed results are
// deliberately left in place. The stored form image is removed by the storage
// backend's lifecycle, not here.
func (s *examService) Delete(ctx context.Context, id uint) error {
	if _, err := s.exams.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrExamNotFound
		}
		return err
	}

	if err := s.exams.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Uint("exam_id", id).Msg("exam deleted")
	return nil
}

func (s *examService) checkSchool(ctx context.Context, schoolID uint) error {
	if _, err := s.schools.GetByID(ctx, schoolID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSchoolNotFound
		}
		return err
	}
	return nil
}

// replaceTargets rewrites the broadcast lists wholesale. Every targeted id must
// resolve to an existing row first; replacing the association with a bare
// primary-key struct would otherwise insert an empty placeholder record.
func replaceTargets(ctx context.Context, tx *gorm.DB, exams repository.ExamRepository, exam *models.Exam, classIDs, studentIDs []uint) error {
	if classIDs != nil {
		classes := repository.NewClassRepository(tx)
		for _, classID := range classIDs {
			if _, err := classes.GetByID(ctx, classID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrClassNotFound
				}
				return err
			}
		}
		if err := exams.ReplaceAssignedClasses(ctx, exam, classRefs(classIDs)); err != nil {
			return err
		}
	}
	if studentIDs != nil {
		students := repository.NewStudentRepository(tx)
		for _, studentID := range studentIDs {
			if _, err := students.GetByID(ctx, studentID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrStudentNotFound
				}
				return err
			}
		}
		if err := exams.ReplaceStudents(ctx, exam, studentRefs(studentIDs)); err != nil {
			return err
		}
	}
	return nil
}

func classRefs(ids []uint) []models.Class {
	classes := make([]models.Class, 0, len(ids))
	for _, id := range ids {
		classes = append(classes, models.Class{ID: id})
	}
	return classes
}

func studentRefs(ids []uint) []models.Student {
	students := make([]models.Student, 0, len(ids))
	for _, id := range ids {
		students = append(students, models.Student{ID: id})
	}
	return students
}

func examResponses(exams []models.Exam) []dto.ExamResponse {
	responses := make([]dto.ExamResponse, 0, len(exams))
	for _, exam := range exams {
		responses = append(responses, dto.NewExamResponse(exam))
	}
	return responses
}
