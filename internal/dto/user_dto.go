package dto

import (
	"time"

	"github.com/optikform/optik-api/internal/models"
)

// UserResponse is the public view of an account; the password hash never leaves
// the model layer.
type UserResponse struct {
	ID         uint            `json:"id"`
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	Role       string          `json:"role"`
	SchoolID   *uint           `json:"school_id"`
	School     *SchoolResponse `json:"school,omitempty"`
	IsApproved bool            `json:"is_approved"`
	CreatedAt  time.Time       `json:"created_at"`
}

// NewUserResponse maps a user model to its response shape.
func NewUserResponse(user models.User) UserResponse {
	resp := UserResponse{
		ID:         user.ID,
		Name:       user.Name,
		Email:      user.Email,
		Role:       user.Role,
		SchoolID:   user.SchoolID,
		IsApproved: user.IsApproved,
		CreatedAt:  user.CreatedAt,
	}
	if user.School != nil {
		school := NewSchoolResponse(*user.School)
		resp.School = &school
	}
	return resp
}

// AddAdminRequest creates a school administrator (superadmin only).
type AddAdminRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	SchoolID uint   `json:"school_id" validate:"required"`
}

// ApproveTeacherRequest approves a pending teacher account.
type ApproveTeacherRequest struct {
	TeacherID uint `json:"teacher_id" validate:"required"`
}
