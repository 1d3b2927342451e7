package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/optikform/optik-api/internal/dto"
	"github.com/optikform/optik-api/internal/models"
	"github.com/optikform/optik-api/internal/repository"
)

var (
	// ErrStudentNotFound indicates a missing student reference.
	ErrStudentNotFound = errors.New("student not found")
	// ErrStudentNumberTaken indicates a duplicate student number.
	ErrStudentNumberTaken = errors.New("student number already taken")
	// ErrNationalIDTaken indicates a duplicate national id.
	ErrNationalIDTaken = errors.New("national id already registered")
)

// BulkImportError reports which row of a batch import failed and why. The
// whole batch is rolled back whenever one is returned.
type BulkImportError struct {
	Row int
	Err error
}

func (e *BulkImportError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row+1, e.Err)
}

func (e *BulkImportError) Unwrap() error { return e.Err }

// StudentService manages the student registry and its class/school linkage.
type StudentService interface {
	Add(ctx context.Context, req dto.AddStudentRequest, actor Actor) (dto.StudentResponse, error)
	AddFromList(ctx context.Context, req dto.BulkAddStudentsRequest, actor Actor) ([]dto.StudentResponse, error)
	Get(ctx context.Context, id uint) (dto.StudentResponse, error)
	List(ctx context.Context) ([]dto.StudentResponse, error)
	ListByClass(ctx context.Context, classID uint) ([]dto.StudentResponse, error)
	ListBySchool(ctx context.Context, schoolID uint) ([]dto.StudentResponse, error)
	ListByCreator(ctx context.Context, userID uint) ([]dto.StudentResponse, error)
	Update(ctx context.Context, id uint, req dto.UpdateStudentRequest) (dto.StudentResponse, error)
	Delete(ctx context.Context, id uint) error
}

type studentService struct {
	db        *gorm.DB
	students  repository.StudentRepository
	classes   repository.ClassRepository
	schools   repository.SchoolRepository
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewStudentService constructs the student service.
func NewStudentService(db *gorm.DB, students repository.StudentRepository, classes repository.ClassRepository, schools repository.SchoolRepository, validate *validator.Validate, logger zerolog.Logger) StudentService {
	return &studentService{
		db:        db,
		students:  students,
		classes:   classes,
		schools:   schools,
		validator: validate,
		logger:    logger.With().Str("component", "student_service").Logger(),
		tracer:    otel.Tracer("github.com/optikform/optik-api/internal/service/student"),
	}
}

// Add registers one student into the actor's school inside a transaction.
func (s *studentService) Add(ctx context.Context, req dto.AddStudentRequest, actor Actor) (dto.StudentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.StudentResponse{}, err
	}
	if actor.SchoolID == nil {
		return dto.StudentResponse{}, ErrSchoolNotFound
	}

	var student models.Student
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		created, err := s.createStudent(ctx, tx, req, actor)
		if err != nil {
			return err
		}
		student = created
		return nil
	})
	if err != nil {
		return dto.StudentResponse{}, err
	}

	s.logger.Info().Uint("student_id", student.ID).Uint("class_id", req.ClassID).Msg("student registered")

	return dto.NewStudentResponse(student), nil
}

// AddFromList imports an ordered batch atomically: the first failing row
// aborts the whole transaction and its position is reported back.
func (s *studentService) AddFromList(ctx context.Context, req dto.BulkAddStudentsRequest, actor Actor) ([]dto.StudentResponse, error) {
	ctx, span := s.tracer.Start(ctx, "student.bulk_import")
	defer span.End()
	span.SetAttributes(attribute.Int("import.rows", len(req.Students)))

	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}
	if actor.SchoolID == nil {
		return nil, ErrSchoolNotFound
	}

	var imported []models.Student
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, row := range req.Students {
			student, err := s.createStudent(ctx, tx, row, actor)
			if err != nil {
				return &BulkImportError{Row: i, Err: err}
			}
			imported = append(imported, student)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int("count", len(imported)).Msg("bulk student import committed")

	responses := make([]dto.StudentResponse, 0, len(imported))
	for _, student := range imported {
		responses = append(responses, dto.NewStudentResponse(student))
	}
	return responses, nil
}

// createStudent runs the per-row checks and insert against the supplied
// transaction handle.
func (s *studentService) createStudent(ctx context.Context, tx *gorm.DB, req dto.AddStudentRequest, actor Actor) (models.Student, error) {
	classes := repository.NewClassRepository(tx)
	schools := repository.NewSchoolRepository(tx)
	students := repository.NewStudentRepository(tx)

	if _, err := classes.GetByID(ctx, req.ClassID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Student{}, ErrClassNotFound
		}
		return models.Student{}, err
	}

	// Compare and store the same canonical value, or the friendly check and the
	// unique index disagree about padded input.
	number := strings.TrimSpace(req.StudentNumber)
	nationalID := strings.TrimSpace(req.NationalID)

	taken, err := students.NumberTaken(ctx, number, 0)
	if err != nil {
		return models.Student{}, err
	}
	if taken {
		return models.Student{}, ErrStudentNumberTaken
	}

	taken, err = students.NationalIDTaken(ctx, nationalID, 0)
	if err != nil {
		return models.Student{}, err
	}
	if taken {
		return models.Student{}, ErrNationalIDTaken
	}

	if _, err := schools.GetByID(ctx, *actor.SchoolID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Student{}, ErrSchoolNotFound
		}
		return models.Student{}, err
	}

	bookletType := req.BookletType
	if !models.ValidBookletType(bookletType) {
		bookletType = models.BookletA
	}

	classID := req.ClassID
	student := models.Student{
		FirstName:     strings.TrimSpace(req.FirstName),
		LastName:      strings.TrimSpace(req.LastName),
		NationalID:    nationalID,
		StudentNumber: number,
		ClassID:       &classID,
		SchoolID:      *actor.SchoolID,
		BookletType:   bookletType,
		Phone:         strings.TrimSpace(req.Phone),
		CreatedByID:   actor.UserID,
	}
	if err := students.Create(ctx, &student); err != nil {
		return models.Student{}, err
	}
	return student, nil
}

func (s *studentService) Get(ctx context.Context, id uint) (dto.StudentResponse, error) {
	student, err := s.students.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentResponse{}, ErrStudentNotFound
		}
		return dto.StudentResponse{}, err
	}
	return dto.NewStudentResponse(student), nil
}

func (s *studentService) List(ctx context.Context) ([]dto.StudentResponse, error) {
	students, err := s.students.List(ctx)
	if err != nil {
		return nil, err
	}
	return studentResponses(students), nil
}

func (s *studentService) ListByClass(ctx context.Context, classID uint) ([]dto.StudentResponse, error) {
	if _, err := s.classes.GetByID(ctx, classID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}

	students, err := s.students.ListByClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	return studentResponses(students), nil
}

func (s *studentService) ListBySchool(ctx context.Context, schoolID uint) ([]dto.StudentResponse, error) {
	if _, err := s.schools.GetByID(ctx, schoolID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSchoolNotFound
		}
		return nil, err
	}

	students, err := s.students.ListBySchool(ctx, schoolID)
	if err != nil {
		return nil, err
	}
	return studentResponses(students), nil
}

func (s *studentService) ListByCreator(ctx context.Context, userID uint) ([]dto.StudentResponse, error) {
	students, err := s.students.ListByCreator(ctx, userID)
	if err != nil {
		return nil, err
	}
	return studentResponses(students), nil
}

// Update applies the provided fields inside a transaction. Class and school
// moves are validated independently; the foreign-key model keeps both sides
// consistent without list maintenance.
func (s *studentService) Update(ctx context.Context, id uint, req dto.UpdateStudentRequest) (dto.StudentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.StudentResponse{}, err
	}

	var updated models.Student
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		students := repository.NewStudentRepository(tx)
		classes := repository.NewClassRepository(tx)
		schools := repository.NewSchoolRepository(tx)

		student, err := students.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrStudentNotFound
			}
			return err
		}

		if req.FirstName != nil {
			student.FirstName = strings.TrimSpace(*req.FirstName)
		}
		if req.LastName != nil {
			student.LastName = strings.TrimSpace(*req.LastName)
		}
		if req.NationalID != nil {
			nationalID := strings.TrimSpace(*req.NationalID)
			if nationalID != student.NationalID {
				taken, err := students.NationalIDTaken(ctx, nationalID, id)
				if err != nil {
					return err
				}
				if taken {
					return ErrNationalIDTaken
				}
				student.NationalID = nationalID
			}
		}
		if req.StudentNumber != nil {
			number := strings.TrimSpace(*req.StudentNumber)
			if number != student.StudentNumber {
				taken, err := students.NumberTaken(ctx, number, id)
				if err != nil {
					return err
				}
				if taken {
					return ErrStudentNumberTaken
				}
				student.StudentNumber = number
			}
		}
		if req.ClassID != nil {
			if _, err := classes.GetByID(ctx, *req.ClassID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrClassNotFound
				}
				return err
			}
			student.ClassID = req.ClassID
		}
		if req.SchoolID != nil {
			if _, err := schools.GetByID(ctx, *req.SchoolID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrSchoolNotFound
				}
				return err
			}
			student.SchoolID = *req.SchoolID
		}
		if req.BookletType != nil {
			student.BookletType = *req.BookletType
		}
		if req.Phone != nil {
			student.Phone = strings.TrimSpace(*req.Phone)
		}

		// Preloaded associations would otherwise be written back stale.
		student.Class = nil
		student.School = nil
		if err := students.Save(ctx, &student); err != nil {
			return err
		}
		updated = student
		return nil
	})
	if err != nil {
		return dto.StudentResponse{}, err
	}

	return s.Get(ctx, updated.ID)
}

// Delete removes the student. Lookup failures on the linked class or school
// are logged and ignored: the registry row still has to go.
func (s *studentService) Delete(ctx context.Context, id uint) error {
	student, err := s.students.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStudentNotFound
		}
		return err
	}

	if student.ClassID != nil {
		if _, err := s.classes.GetByID(ctx, *student.ClassID); err != nil {
			s.logger.Warn().Err(err).Uint("class_id", *student.ClassID).Msg("class lookup failed during student delete, continuing")
		}
	}
	if _, err := s.schools.GetByID(ctx, student.SchoolID); err != nil {
		s.logger.Warn().Err(err).Uint("school_id", student.SchoolID).Msg("school lookup failed during student delete, continuing")
	}

	if err := s.students.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Uint("student_id", id).Msg("student deleted")
	return nil
}

func studentResponses(students []models.Student) []dto.StudentResponse {
	responses := make([]dto.StudentResponse, 0, len(students))
	for _, student := range students {
		responses = append(responses, dto.NewStudentResponse(student))
	}
	return responses
}
