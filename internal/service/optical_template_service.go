package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/optikform/optik-api/internal/dto"
	"github.com/optikform/optik-api/internal/models"
	"github.com/optikform/optik-api/internal/repository"
)

var (
	// ErrTemplateNotFound indicates a missing template reference.
	ErrTemplateNotFound = errors.New("optical template not found")
	// ErrTemplateForbidden indicates the caller may not see or edit the template.
	ErrTemplateForbidden = errors.New("not allowed to access this optical template")
	// ErrInvalidComponents indicates the component array failed shape validation.
	ErrInvalidComponents = errors.New("invalid template components")
)

// componentsSchema constrains the otherwise opaque component array: an ordered,
// non-empty list of descriptors keyed by question number.
const componentsSchema = `{
	"type": "array",
	"minItems": 1,
	"items": {
		"type": "object",
		"required": ["questionNumber"],
		"properties": {
			"questionNumber": {"type": "integer", "minimum": 1},
			"correctAnswer": {"type": "string"},
			"points": {"type": "number", "minimum": 0}
		}
	}
}`

var compiledComponentsSchema = jsonschema.MustCompileString("components.schema.json", componentsSchema)

const publicTemplatesCacheKey = "optical_templates:public"

// OpticalTemplateService manages answer-sheet templates and their visibility.
type OpticalTemplateService interface {
	Add(ctx context.Context, req dto.AddOpticalTemplateRequest, actor Actor) (dto.OpticalTemplateResponse, error)
	Get(ctx context.Context, id uint, actor Actor) (dto.OpticalTemplateResponse, error)
	GetComponents(ctx context.Context, id uint, actor Actor) (json.RawMessage, error)
	ListPublic(ctx context.Context) ([]dto.OpticalTemplateResponse, error)
	ListByCreator(ctx context.Context, userID uint) ([]dto.OpticalTemplateResponse, error)
	Update(ctx context.Context, id uint, req dto.UpdateOpticalTemplateRequest, actor Actor) (dto.OpticalTemplateResponse, error)
	Delete(ctx context.Context, id uint, actor Actor) error
}

type opticalTemplateService struct {
	templates repository.OpticalTemplateRepository
	storage   FileStorage
	cache     *redis.Client
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewOpticalTemplateService constructs the template service. The redis client
// is optional; without it the public listing is served straight from the store.
func NewOpticalTemplateService(templates repository.OpticalTemplateRepository, storage FileStorage, cache *redis.Client, cacheTTL time.Duration, validate *validator.Validate, logger zerolog.Logger) OpticalTemplateService {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &opticalTemplateService{
		templates: templates,
		storage:   storage,
		cache:     cache,
		cacheTTL:  cacheTTL,
		validator: validate,
		logger:    logger.With().Str("component", "optical_template_service").Logger(),
	}
}

func validateComponents(raw json.RawMessage) error {
	var decoded interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return ErrInvalidComponents
	}
	if err := compiledComponentsSchema.Validate(decoded); err != nil {
		return ErrInvalidComponents
	}
	return nil
}

func (s *opticalTemplateService) Add(ctx context.Context, req dto.AddOpticalTemplateRequest, actor Actor) (dto.OpticalTemplateResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.OpticalTemplateResponse{}, err
	}
	if err := validateComponents(req.Components); err != nil {
		return dto.OpticalTemplateResponse{}, err
	}

	imagePath, err := storeFormImage(ctx, s.storage, req.FormImage)
	if err != nil {
		return dto.OpticalTemplateResponse{}, err
	}

	template := models.OpticalTemplate{
		Name:        strings.TrimSpace(req.Name),
		Components:  datatypes.JSON(req.Components),
		FormImage:   imagePath,
		IsPublic:    req.IsPublic,
		CreatedByID: actor.UserID,
	}
	if err := s.templates.Create(ctx, &template); err != nil {
		return dto.OpticalTemplateResponse{}, err
	}

	s.invalidatePublicCache(ctx)
	s.logger.Info().Uint("template_id", template.ID).Bool("public", template.IsPublic).Msg("optical template created")

	return dto.NewOpticalTemplateResponse(template), nil
}

// Get enforces the visibility rule: a template is readable by its creator
// unconditionally, or by anyone when public.
func (s *opticalTemplateService) Get(ctx context.Context, id uint, actor Actor) (dto.OpticalTemplateResponse, error) {
	template, err := s.load(ctx, id)
	if err != nil {
		return dto.OpticalTemplateResponse{}, err
	}
	if !template.IsPublic && template.CreatedByID != actor.UserID {
		return dto.OpticalTemplateResponse{}, ErrTemplateForbidden
	}
	return dto.NewOpticalTemplateResponse(template), nil
}

func (s *opticalTemplateService) GetComponents(ctx context.Context, id uint, actor Actor) (json.RawMessage, error) {
	template, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !template.IsPublic && template.CreatedByID != actor.UserID {
		return nil, ErrTemplateForbidden
	}
	return json.RawMessage(template.Components), nil
}

// ListPublic serves the public template list from redis when warm.
func (s *opticalTemplateService) ListPublic(ctx context.Context) ([]dto.OpticalTemplateResponse, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, publicTemplatesCacheKey).Result()
		if err == nil {
			var responses []dto.OpticalTemplateResponse
			if jsonErr := json.Unmarshal([]byte(cached), &responses); jsonErr == nil {
				return responses, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("public template cache read failed")
		}
	}

	templates, err := s.templates.ListPublic(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.OpticalTemplateResponse, 0, len(templates))
	for _, template := range templates {
		responses = append(responses, dto.NewOpticalTemplateResponse(template))
	}

	if s.cache != nil {
		if payload, err := json.Marshal(responses); err == nil {
			if err := s.cache.Set(ctx, publicTemplatesCacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("public template cache write failed")
			}
		}
	}

	return responses, nil
}

func (s *opticalTemplateService) ListByCreator(ctx context.Context, userID uint) ([]dto.OpticalTemplateResponse, error) {
	templates, err := s.templates.ListByCreator(ctx, userID)
	if err != nil {
		return nil, err
	}
	responses := make([]dto.OpticalTemplateResponse, 0, len(templates))
	for _, template := range templates {
		responses = append(responses, dto.NewOpticalTemplateResponse(template))
	}
	return responses, nil
}

// Update is restricted to the creator or an admin/superadmin.
func (s *opticalTemplateService) Update(ctx context.Context, id uint, req dto.UpdateOpticalTemplateRequest, actor Actor) (dto.OpticalTemplateResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.OpticalTemplateResponse{}, err
	}

	template, err := s.load(ctx, id)
	if err != nil {
		return dto.OpticalTemplateResponse{}, err
	}
	if !s.canMutate(template, actor) {
		return dto.OpticalTemplateResponse{}, ErrTemplateForbidden
	}

	if req.Name != nil {
		template.Name = strings.TrimSpace(*req.Name)
	}
	if len(req.Components) > 0 {
		if err := validateComponents(req.Components); err != nil {
			return dto.OpticalTemplateResponse{}, err
		}
		template.Components = datatypes.JSON(req.Components)
	}
	if req.FormImage != nil {
		imagePath, err := storeFormImage(ctx, s.storage, *req.FormImage)
		if err != nil {
			return dto.OpticalTemplateResponse{}, err
		}
		template.FormImage = imagePath
	}
	if req.IsPublic != nil {
		template.IsPublic = *req.IsPublic
	}

	template.CreatedBy = nil
	if err := s.templates.Save(ctx, &template); err != nil {
		return dto.OpticalTemplateResponse{}, err
	}

	s.invalidatePublicCache(ctx)
	return dto.NewOpticalTemplateResponse(template), nil
}

// Delete is restricted to the creator or an admin/superadmin.
func (s *opticalTemplateService) Delete(ctx context.Context, id uint, actor Actor) error {
	template, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !s.canMutate(template, actor) {
		return ErrTemplateForbidden
	}

	if err := s.templates.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidatePublicCache(ctx)
	s.logger.Info().Uint("template_id", id).Msg("optical template deleted")
	return nil
}

func (s *opticalTemplateService) load(ctx context.Context, id uint) (models.OpticalTemplate, error) {
	template, err := s.templates.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.OpticalTemplate{}, ErrTemplateNotFound
		}
		return models.OpticalTemplate{}, err
	}
	return template, nil
}

// canMutate grants mutation to the creator, to superadmins, and to admins of
// the creator's own school.
func (s *opticalTemplateService) canMutate(template models.OpticalTemplate, actor Actor) bool {
	if template.CreatedByID == actor.UserID || actor.IsSuperAdmin() {
		return true
	}
	if !actor.IsAdmin() {
		return false
	}
	return template.CreatedBy != nil &&
		template.CreatedBy.SchoolID != nil &&
		actor.SameSchool(*template.CreatedBy.SchoolID)
}

func (s *opticalTemplateService) invalidatePublicCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, publicTemplatesCacheKey).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("public template cache invalidation failed")
	}
}
