package dto

import (
	"time"

	"github.com/optikform/optik-api/internal/models"
)

// AddExamRequest creates an exam in the caller's school. The three targeting
// fields are a union; none of them is required on its own.
type AddExamRequest struct {
	Title             string    `json:"title" validate:"required,min=1,max=255"`
	Date              time.Time `json:"date" validate:"required"`
	ClassID           *uint     `json:"class_id"`
	AssignedClassIDs  []uint    `json:"assigned_class_ids"`
	StudentIDs        []uint    `json:"student_ids"`
	OpticalTemplateID uint      `json:"optical_template_id" validate:"required"`
	IsTemplate        bool      `json:"is_template"`
	FormImage         string    `json:"form_image"`
}

// UpdateExamRequest partially updates an exam. AssignedClassIDs, StudentIDs
// and the template reference are replaced wholesale when provided.
type UpdateExamRequest struct {
	Title             *string    `json:"title" validate:"omitempty,min=1,max=255"`
	Date              *time.Time `json:"date"`
	ClassID           *uint      `json:"class_id"`
	AssignedClassIDs  []uint     `json:"assigned_class_ids"`
	StudentIDs        []uint     `json:"student_ids"`
	OpticalTemplateID *uint      `json:"optical_template_id"`
	IsTemplate        *bool      `json:"is_template"`
	FormImage         *string    `json:"form_image"`
}

// ExamResponse is the public view of an exam.
type ExamResponse struct {
	ID                uint                     `json:"id"`
	Title             string                   `json:"title"`
	Date              time.Time                `json:"date"`
	SchoolID          uint                     `json:"school_id"`
	School            *SchoolResponse          `json:"school,omitempty"`
	ClassID           *uint                    `json:"class_id"`
	Class             *ClassResponse           `json:"class,omitempty"`
	AssignedClasses   []ClassResponse          `json:"assigned_classes,omitempty"`
	Students          []StudentResponse        `json:"students,omitempty"`
	OpticalTemplateID uint                     `json:"optical_template_id"`
	OpticalTemplate   *OpticalTemplateResponse `json:"optical_template,omitempty"`
	IsTemplate        bool                     `json:"is_template"`
	FormImage         string                   `json:"form_image,omitempty"`
	CreatedByID       uint                     `json:"created_by_id"`
	CreatedAt         time.Time                `json:"created_at"`
}

// NewExamResponse maps an exam model to its response shape.
func NewExamResponse(exam models.Exam) ExamResponse {
	resp := ExamResponse{
		ID:                exam.ID,
		Title:             exam.Title,
		Date:              exam.Date,
		SchoolID:          exam.SchoolID,
		ClassID:           exam.ClassID,
		OpticalTemplateID: exam.OpticalTemplateID,
		IsTemplate:        exam.IsTemplate,
		FormImage:         exam.FormImage,
		CreatedByID:       exam.CreatedByID,
		CreatedAt:         exam.CreatedAt,
	}
	if exam.School != nil {
		school := NewSchoolResponse(*exam.School)
		resp.School = &school
	}
	if exam.Class != nil {
		class := NewClassResponse(*exam.Class)
		resp.Class = &class
	}
	if exam.OpticalTemplate != nil {
		template := NewOpticalTemplateResponse(*exam.OpticalTemplate)
		resp.OpticalTemplate = &template
	}
	for _, class := range exam.AssignedClasses {
		resp.AssignedClasses = append(resp.AssignedClasses, NewClassResponse(class))
	}
	for _, student := range exam.Students {
		resp.Students = append(resp.Students, NewStudentResponse(student))
	}
	return resp
}
