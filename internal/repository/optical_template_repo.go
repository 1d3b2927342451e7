package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/optikform/optik-api/internal/models"
)

// OpticalTemplateRepository provides access to optical answer-sheet templates.
type OpticalTemplateRepository interface {
	Create(ctx context.Context, template *models.OpticalTemplate) error
	GetByID(ctx context.Context, id uint) (models.OpticalTemplate, error)
	ListPublic(ctx context.Context) ([]models.OpticalTemplate, error)
	ListByCreator(ctx context.Context, userID uint) ([]models.OpticalTemplate, error)
	Save(ctx context.Context, template *models.OpticalTemplate) error
	Delete(ctx context.Context, id uint) error
}

type opticalTemplateRepository struct {
	db *gorm.DB
}

// NewOpticalTemplateRepository constructs a template repository.
func NewOpticalTemplateRepository(db *gorm.DB) OpticalTemplateRepository {
	return &opticalTemplateRepository{db: db}
}

func (r *opticalTemplateRepository) Create(ctx context.Context, template *models.OpticalTemplate) error {
	return r.db.WithContext(ctx).Create(template).Error
}

func (r *opticalTemplateRepository) GetByID(ctx context.Context, id uint) (models.OpticalTemplate, error) {
	var template models.OpticalTemplate
	if err := r.db.WithContext(ctx).Preload("CreatedBy").First(&template, id).Error; err != nil {
		return models.OpticalTemplate{}, err
	}
	return template, nil
}

func (r *opticalTemplateRepository) ListPublic(ctx context.Context) ([]models.OpticalTemplate, error) {
	var templates []models.OpticalTemplate
	if err := r.db.WithContext(ctx).Preload("CreatedBy").
		Where("is_public = ?", true).
		Order("name").Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *opticalTemplateRepository) ListByCreator(ctx context.Context, userID uint) ([]models.OpticalTemplate, error) {
	var templates []models.OpticalTemplate
	if err := r.db.WithContext(ctx).Preload("CreatedBy").
		Where("created_by_id = ?", userID).
		Order("name").Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *opticalTemplateRepository) Save(ctx context.Context, template *models.OpticalTemplate) error {
	return r.db.WithContext(ctx).Save(template).Error
}

func (r *opticalTemplateRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.OpticalTemplate{}, id).Error
}
