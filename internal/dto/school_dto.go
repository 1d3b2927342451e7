package dto

import (
	"time"

	"github.com/optikform/optik-api/internal/models"
)

// AddSchoolRequest creates a school without an assigned admin.
type AddSchoolRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=255"`
	City    string `json:"city" validate:"required,max=255"`
	Address string `json:"address" validate:"required,max=512"`
}

// UpdateSchoolRequest partially updates a school; only present fields change.
type UpdateSchoolRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=2,max=255"`
	City    *string `json:"city" validate:"omitempty,max=255"`
	Address *string `json:"address" validate:"omitempty,max=512"`
}

// SchoolResponse is the public view of a school.
type SchoolResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	City      string    `json:"city"`
	Address   string    `json:"address"`
	AdminID   *uint     `json:"admin_id"`
	CreatedAt time.Time `json:"created_at"`
}

// NewSchoolResponse maps a school model to its response shape.
func NewSchoolResponse(school models.School) SchoolResponse {
	return SchoolResponse{
		ID:        school.ID,
		Name:      school.Name,
		City:      school.City,
		Address:   school.Address,
		AdminID:   school.AdminID,
		CreatedAt: school.CreatedAt,
	}
}
