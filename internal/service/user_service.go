package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/optikform/optik-api/internal/dto"
	"github.com/optikform/optik-api/internal/models"
	"github.com/optikform/optik-api/internal/repository"
)

var (
	// ErrSchoolHasAdmin indicates the school already has an assigned admin.
	ErrSchoolHasAdmin = errors.New("school already has an admin")
	// ErrNotATeacher indicates the referenced user is not a teacher account.
	ErrNotATeacher = errors.New("user is not a teacher")
	// ErrTeacherAlreadyApproved indicates a redundant approval attempt.
	ErrTeacherAlreadyApproved = errors.New("teacher already approved")
	// ErrForeignSchool indicates an admin acted on another school's teacher.
	ErrForeignSchool = errors.New("teacher belongs to another school")
)

// UserService covers administrative account management: admin creation and the
// teacher approval workflow.
type UserService interface {
	AddAdmin(ctx context.Context, req dto.AddAdminRequest) (dto.UserResponse, error)
	ApproveTeacher(ctx context.Context, teacherID uint, actor Actor) (dto.UserResponse, error)
	ListPendingTeachers(ctx context.Context, actor Actor) ([]dto.UserResponse, error)
	ListApprovedTeachers(ctx context.Context, actor Actor) ([]dto.UserResponse, error)
}

type userService struct {
	db        *gorm.DB
	users     repository.UserRepository
	schools   repository.SchoolRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewUserService constructs the user service.
func NewUserService(db *gorm.DB, users repository.UserRepository, schools repository.SchoolRepository, validate *validator.Validate, logger zerolog.Logger) UserService {
	return &userService{
		db:        db,
		users:     users,
		schools:   schools,
		validator: validate,
		logger:    logger.With().Str("component", "user_service").Logger(),
	}
}

// AddAdmin creates an approved admin account bound one-to-one to a school and
// records the assignment on the school, in a single transaction.
func (s *userService) AddAdmin(ctx context.Context, req dto.AddAdminRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.UserResponse{}, err
	}

	var admin models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := repository.NewUserRepository(tx)
		schools := repository.NewSchoolRepository(tx)

		school, err := schools.GetByID(ctx, req.SchoolID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSchoolNotFound
			}
			return err
		}
		if school.AdminID != nil {
			return ErrSchoolHasAdmin
		}

		email := normalizeEmail(req.Email)
		taken, err := users.EmailTaken(ctx, email, 0)
		if err != nil {
			return err
		}
		if taken {
			return ErrEmailTaken
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		schoolID := req.SchoolID
		admin = models.User{
			Name:         strings.TrimSpace(req.Name),
			Email:        email,
			PasswordHash: string(hash),
			Role:         models.RoleAdmin,
			SchoolID:     &schoolID,
			IsApproved:   true,
		}
		if err := users.Create(ctx, &admin); err != nil {
			return err
		}

		school.AdminID = &admin.ID
		return schools.Save(ctx, &school)
	})
	if err != nil {
		return dto.UserResponse{}, err
	}

	s.logger.Info().Uint("admin_id", admin.ID).Uint("school_id", req.SchoolID).Msg("school admin created")

	return dto.NewUserResponse(admin), nil
}

// ApproveTeacher marks a pending teacher as approved. Admins may only approve
// teachers of their own school; superadmins may approve any.
func (s *userService) ApproveTeacher(ctx context.Context, teacherID uint, actor Actor) (dto.UserResponse, error) {
	teacher, err := s.users.GetByID(ctx, teacherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}
	if teacher.Role != models.RoleTeacher {
		return dto.UserResponse{}, ErrNotATeacher
	}
	if teacher.IsApproved {
		return dto.UserResponse{}, ErrTeacherAlreadyApproved
	}
	if teacher.SchoolID == nil {
		return dto.UserResponse{}, ErrSchoolNotFound
	}
	if _, err := s.schools.GetByID(ctx, *teacher.SchoolID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrSchoolNotFound
		}
		return dto.UserResponse{}, err
	}

	if actor.IsAdmin() && !actor.SameSchool(*teacher.SchoolID) {
		return dto.UserResponse{}, ErrForeignSchool
	}

	teacher.IsApproved = true
	if err := s.users.Save(ctx, &teacher); err != nil {
		return dto.UserResponse{}, err
	}

	s.logger.Info().
		Uint("teacher_id", teacher.ID).
		Uint("approved_by", actor.UserID).
		Msg("teacher approved")

	return dto.NewUserResponse(teacher), nil
}

// ListPendingTeachers returns unapproved teachers: all of them for a
// superadmin, the actor's school only otherwise.
func (s *userService) ListPendingTeachers(ctx context.Context, actor Actor) ([]dto.UserResponse, error) {
	return s.listTeachers(ctx, actor, false)
}

// ListApprovedTeachers mirrors ListPendingTeachers for approved accounts.
func (s *userService) ListApprovedTeachers(ctx context.Context, actor Actor) ([]dto.UserResponse, error) {
	return s.listTeachers(ctx, actor, true)
}

func (s *userService) listTeachers(ctx context.Context, actor Actor, approved bool) ([]dto.UserResponse, error) {
	filter := repository.TeacherFilter{Approved: approved}
	if !actor.IsSuperAdmin() {
		filter.SchoolID = actor.SchoolID
	}

	teachers, err := s.users.ListTeachers(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.UserResponse, 0, len(teachers))
	for _, teacher := range teachers {
		responses = append(responses, dto.NewUserResponse(teacher))
	}
	return responses, nil
}
