package dto

import (
	"time"

	"github.com/optikform/optik-api/internal/models"
)

// AddClassRequest creates a class within an existing school.
type AddClassRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=255"`
	Grade    int    `json:"grade" validate:"required,min=1,max=12"`
	SchoolID uint   `json:"school_id" validate:"required"`
}

// UpdateClassRequest partially updates a class.
type UpdateClassRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=1,max=255"`
	Grade *int    `json:"grade" validate:"omitempty,min=1,max=12"`
}

// ClassResponse is the public view of a class.
type ClassResponse struct {
	ID        uint            `json:"id"`
	Name      string          `json:"name"`
	Grade     int             `json:"grade"`
	SchoolID  uint            `json:"school_id"`
	School    *SchoolResponse `json:"school,omitempty"`
	Students  []StudentResponse `json:"students,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewClassResponse maps a class model to its response shape.
func NewClassResponse(class models.Class) ClassResponse {
	resp := ClassResponse{
		ID:        class.ID,
		Name:      class.Name,
		Grade:     class.Grade,
		SchoolID:  class.SchoolID,
		CreatedAt: class.CreatedAt,
	}
	if class.School != nil {
		school := NewSchoolResponse(*class.School)
		resp.School = &school
	}
	for _, student := range class.Students {
		resp.Students = append(resp.Students, NewStudentResponse(student))
	}
	return resp
}
