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
	// ErrSchoolNotFound indicates a missing school reference.
	ErrSchoolNotFound = errors.New("school not found")
	// ErrSchoolNameTaken indicates a duplicate school name.
	ErrSchoolNameTaken = errors.New("school name already exists")
)

// SchoolService manages the school roster.
type SchoolService interface {
	Add(ctx context.Context, req dto.AddSchoolRequest) (dto.SchoolResponse, error)
	Get(ctx context.Context, id uint) (dto.SchoolResponse, error)
	List(ctx context.Context) ([]dto.SchoolResponse, error)
	Update(ctx context.Context, id uint, req dto.UpdateSchoolRequest) (dto.SchoolResponse, error)
	Delete(ctx context.Context, id uint) error
}

type schoolService struct {
	schools   repository.SchoolRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewSchoolService constructs the school service.
func NewSchoolService(schools repository.SchoolRepository, validate *validator.Validate, logger zerolog.Logger) SchoolService {
	return &schoolService{
		schools:   schools,
		validator: validate,
		logger:    logger.With().Str("component", "school_service").Logger(),
	}
}

// Add creates a school with no assigned admin; one is attached later through
// the admin-creation flow.
func (s *schoolService) Add(ctx context.Context, req dto.AddSchoolRequest) (dto.SchoolResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.SchoolResponse{}, err
	}

	name := strings.TrimSpace(req.Name)
	taken, err := s.schools.NameTaken(ctx, name, 0)
	if err != nil {
		return dto.SchoolResponse{}, err
	}
	if taken {
		return dto.SchoolResponse{}, ErrSchoolNameTaken
	}

	school := models.School{
		Name:    name,
		City:    strings.TrimSpace(req.City),
		Address: strings.TrimSpace(req.Address),
	}
	if err := s.schools.Create(ctx, &school); err != nil {
		return dto.SchoolResponse{}, err
	}

	s.logger.Info().Uint("school_id", school.ID).Str("name", school.Name).Msg("school created")

	return dto.NewSchoolResponse(school), nil
}

func (s *schoolService) Get(ctx context.Context, id uint) (dto.SchoolResponse, error) {
	school, err := s.schools.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SchoolResponse{}, ErrSchoolNotFound
		}
		return dto.SchoolResponse{}, err
	}
	return dto.NewSchoolResponse(school), nil
}

func (s *schoolService) List(ctx context.Context) ([]dto.SchoolResponse, error) {
	schools, err := s.schools.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.SchoolResponse, 0, len(schools))
	for _, school := range schools {
		responses = append(responses, dto.NewSchoolResponse(school))
	}
	return responses, nil
}

// Update applies the provided fields only. A name change re-checks global
// uniqueness excluding the school itself.
func (s *schoolService) Update(ctx context.Context, id uint, req dto.UpdateSchoolRequest) (dto.SchoolResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.SchoolResponse{}, err
	}

	school, err := s.schools.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SchoolResponse{}, ErrSchoolNotFound
		}
		return dto.SchoolResponse{}, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name != school.Name {
			taken, err := s.schools.NameTaken(ctx, name, id)
			if err != nil {
				return dto.SchoolResponse{}, err
			}
			if taken {
				return dto.SchoolResponse{}, ErrSchoolNameTaken
			}
		}
		school.Name = name
	}
	if req.City != nil {
		school.City = strings.TrimSpace(*req.City)
	}
	if req.Address != nil {
		school.Address = strings.TrimSpace(*req.Address)
	}

	if err := s.schools.Save(ctx, &school); err != nil {
		return dto.SchoolResponse{}, err
	}
	return dto.NewSchoolResponse(school), nil
}

func (s *schoolService) Delete(ctx context.Context, id uint) error {
	if _, err := s.schools.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSchoolNotFound
		}
		return err
	}
	return s.schools.Delete(ctx, id)
}
