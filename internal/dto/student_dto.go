package dto

import (
	"time"

	"github.com/optikform/optik-api/internal/models"
)

// AddStudentRequest registers a single student into the caller's school.
type AddStudentRequest struct {
	FirstName     string `json:"first_name" validate:"required,min=1,max=255"`
	LastName      string `json:"last_name" validate:"required,min=1,max=255"`
	NationalID    string `json:"national_id" validate:"required,min=5,max=64"`
	StudentNumber string `json:"student_number" validate:"required,min=1,max=64"`
	ClassID       uint   `json:"class_id" validate:"required"`
	BookletType   string `json:"booklet_type" validate:"omitempty,oneof=A B C D"`
	Phone         string `json:"phone" validate:"omitempty,max=32"`
}

// BulkAddStudentsRequest imports an ordered batch of students atomically.
type BulkAddStudentsRequest struct {
	Students []AddStudentRequest `json:"students" validate:"required,min=1,dive"`
}

// UpdateStudentRequest partially updates a student. Class and school moves are
// validated independently against existing rows.
type UpdateStudentRequest struct {
	FirstName     *string `json:"first_name" validate:"omitempty,min=1,max=255"`
	LastName      *string `json:"last_name" validate:"omitempty,min=1,max=255"`
	NationalID    *string `json:"national_id" validate:"omitempty,min=5,max=64"`
	StudentNumber *string `json:"student_number" validate:"omitempty,min=1,max=64"`
	ClassID       *uint   `json:"class_id"`
	SchoolID      *uint   `json:"school_id"`
	BookletType   *string `json:"booklet_type" validate:"omitempty,oneof=A B C D"`
	Phone         *string `json:"phone" validate:"omitempty,max=32"`
}

// StudentResponse is the public view of a student.
type StudentResponse struct {
	ID            uint            `json:"id"`
	FirstName     string          `json:"first_name"`
	LastName      string          `json:"last_name"`
	NationalID    string          `json:"national_id"`
	StudentNumber string          `json:"student_number"`
	ClassID       *uint           `json:"class_id"`
	Class         *ClassResponse  `json:"class,omitempty"`
	SchoolID      uint            `json:"school_id"`
	School        *SchoolResponse `json:"school,omitempty"`
	BookletType   string          `json:"booklet_type"`
	Phone         string          `json:"phone,omitempty"`
	CreatedByID   uint            `json:"created_by_id"`
	CreatedAt     time.Time       `json:"created_at"`
}

// NewStudentResponse maps a student model to its response shape.
func NewStudentResponse(student models.Student) StudentResponse {
	resp := StudentResponse{
		ID:            student.ID,
		FirstName:     student.FirstName,
		LastName:      student.LastName,
		NationalID:    student.NationalID,
		StudentNumber: student.StudentNumber,
		ClassID:       student.ClassID,
		SchoolID:      student.SchoolID,
		BookletType:   student.BookletType,
		Phone:         student.Phone,
		CreatedByID:   student.CreatedByID,
		CreatedAt:     student.CreatedAt,
	}
	if student.Class != nil {
		class := NewClassResponse(*student.Class)
		resp.Class = &class
	}
	if student.School != nil {
		school := NewSchoolResponse(*student.School)
		resp.School = &school
	}
	return resp
}
