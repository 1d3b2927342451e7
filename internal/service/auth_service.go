package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/optikform/optik-api/internal/dto"
	"github.com/optikform/optik-api/internal/models"
	"github.com/optikform/optik-api/internal/repository"
)

var (
	// ErrUserNotFound indicates no account matches the given identifier.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken indicates the email is already bound to another account.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials indicates a password mismatch at sign-in.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrTeacherNotApproved is the soft denial for teachers pending sign-off.
	ErrTeacherNotApproved = errors.New("teacher account awaiting approval")
	// ErrWrongPassword indicates the current password check failed on rotation.
	ErrWrongPassword = errors.New("current password is incorrect")
)

// TokenClaims are embedded in every issued access token.
type TokenClaims struct {
	Email      string `json:"email"`
	Role       string `json:"role"`
	SchoolID   *uint  `json:"school_id,omitempty"`
	SchoolName string `json:"school_name,omitempty"`
	jwt.RegisteredClaims
}

// AuthService handles account registration, sign-in and self-service.
type AuthService interface {
	SignUp(ctx context.Context, req dto.SignUpRequest) (dto.UserResponse, error)
	SignIn(ctx context.Context, req dto.SignInRequest) (dto.SignInResponse, error)
	GetProfile(ctx context.Context, userID uint) (dto.UserResponse, error)
	UpdateProfile(ctx context.Context, userID uint, req dto.UpdateProfileRequest) (dto.UserResponse, error)
	ChangePassword(ctx context.Context, userID uint, req dto.ChangePasswordRequest) error
}

type authService struct {
	db        *gorm.DB
	users     repository.UserRepository
	schools   repository.SchoolRepository
	validator *validator.Validate
	secret    []byte
	tokenTTL  time.Duration
	logger    zerolog.Logger
}

// NewAuthService constructs the auth service.
func NewAuthService(db *gorm.DB, users repository.UserRepository, schools repository.SchoolRepository, validate *validator.Validate, jwtSecret string, tokenTTL time.Duration, logger zerolog.Logger) AuthService {
	if tokenTTL <= 0 {
		tokenTTL = time.Hour
	}
	return &authService{
		db:        db,
		users:     users,
		schools:   schools,
		validator: validate,
		secret:    []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		logger:    logger.With().Str("component", "auth_service").Logger(),
	}
}

// SignUp registers a teacher bound to an existing school. The account stays
// unapproved until an admin signs it off.
func (s *authService) SignUp(ctx context.Context, req dto.SignUpRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.UserResponse{}, err
	}

	email := normalizeEmail(req.Email)

	var teacher models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := repository.NewUserRepository(tx)
		schools := repository.NewSchoolRepository(tx)

		taken, err := users.EmailTaken(ctx, email, 0)
		if err != nil {
			return err
		}
		if taken {
			return ErrEmailTaken
		}

		if _, err := schools.GetByID(ctx, req.SchoolID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSchoolNotFound
			}
			return err
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		schoolID := req.SchoolID
		teacher = models.User{
			Name:         strings.TrimSpace(req.Name),
			Email:        email,
			PasswordHash: string(hash),
			Role:         models.RoleTeacher,
			SchoolID:     &schoolID,
			IsApproved:   false,
		}
		return users.Create(ctx, &teacher)
	})
	if err != nil {
		return dto.UserResponse{}, err
	}

	s.logger.Info().Uint("user_id", teacher.ID).Uint("school_id", req.SchoolID).Msg("teacher registered, pending approval")

	return dto.NewUserResponse(teacher), nil
}

// SignIn verifies the credentials and issues a signed, time-limited token.
// Unapproved teachers authenticate but receive the soft denial instead of a
// token.
func (s *authService) SignIn(ctx context.Context, req dto.SignInRequest) (dto.SignInResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.SignInResponse{}, err
	}

	user, err := s.users.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SignInResponse{}, ErrUserNotFound
		}
		return dto.SignInResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return dto.SignInResponse{}, ErrInvalidCredentials
	}

	if user.Role == models.RoleTeacher && !user.IsApproved {
		return dto.SignInResponse{}, ErrTeacherNotApproved
	}

	token, err := s.issueToken(user)
	if err != nil {
		return dto.SignInResponse{}, err
	}

	return dto.SignInResponse{Token: token, User: dto.NewUserResponse(user)}, nil
}

func (s *authService) issueToken(user models.User) (string, error) {
	now := time.Now()
	claims := TokenClaims{
		Email:    user.Email,
		Role:     user.Role,
		SchoolID: user.SchoolID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconvUint(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	if user.School != nil {
		claims.SchoolName = user.School.Name
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *authService) GetProfile(ctx context.Context, userID uint) (dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}
	return dto.NewUserResponse(user), nil
}

// UpdateProfile edits the caller's own name and email, re-validating email
// uniqueness against every other account.
func (s *authService) UpdateProfile(ctx context.Context, userID uint, req dto.UpdateProfileRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.UserResponse{}, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}

	email := normalizeEmail(req.Email)
	taken, err := s.users.EmailTaken(ctx, email, userID)
	if err != nil {
		return dto.UserResponse{}, err
	}
	if taken {
		return dto.UserResponse{}, ErrEmailTaken
	}

	user.Name = strings.TrimSpace(req.Name)
	user.Email = email
	if err := s.users.Save(ctx, &user); err != nil {
		return dto.UserResponse{}, err
	}

	return dto.NewUserResponse(user), nil
}

func (s *authService) ChangePassword(ctx context.Context, userID uint, req dto.ChangePasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		return ErrWrongPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user.PasswordHash = string(hash)
	if err := s.users.Save(ctx, &user); err != nil {
		return err
	}

	s.logger.Info().Uint("user_id", userID).Msg("password changed")
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
