package dto

import (
	"encoding/json"
	"time"

	"github.com/optikform/optik-api/internal/models"
)

// AddOpticalTemplateRequest creates a template owned by the caller. Components
// stay an opaque JSON array here; shape validation happens in the service.
// FormImage, when present, is a base64 data URI.
type AddOpticalTemplateRequest struct {
	Name       string          `json:"name" validate:"required,min=1,max=255"`
	Components json.RawMessage `json:"components" validate:"required"`
	FormImage  string          `json:"form_image"`
	IsPublic   bool            `json:"is_public"`
}

// UpdateOpticalTemplateRequest partially updates a template.
type UpdateOpticalTemplateRequest struct {
	Name       *string         `json:"name" validate:"omitempty,min=1,max=255"`
	Components json.RawMessage `json:"components"`
	FormImage  *string         `json:"form_image"`
	IsPublic   *bool           `json:"is_public"`
}

// OpticalTemplateResponse is the public view of a template.
type OpticalTemplateResponse struct {
	ID          uint            `json:"id"`
	Name        string          `json:"name"`
	Components  json.RawMessage `json:"components"`
	FormImage   string          `json:"form_image,omitempty"`
	IsPublic    bool            `json:"is_public"`
	CreatedByID uint            `json:"created_by_id"`
	CreatedBy   *UserResponse   `json:"created_by,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// NewOpticalTemplateResponse maps a template model to its response shape.
func NewOpticalTemplateResponse(template models.OpticalTemplate) OpticalTemplateResponse {
	resp := OpticalTemplateResponse{
		ID:          template.ID,
		Name:        template.Name,
		Components:  json.RawMessage(template.Components),
		FormImage:   template.FormImage,
		IsPublic:    template.IsPublic,
		CreatedByID: template.CreatedByID,
		CreatedAt:   template.CreatedAt,
		UpdatedAt:   template.UpdatedAt,
	}
	if template.CreatedBy != nil {
		creator := NewUserResponse(*template.CreatedBy)
		resp.CreatedBy = &creator
	}
	return resp
}
