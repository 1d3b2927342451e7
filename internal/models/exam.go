package models

import "time"

// Exam is a scheduled sitting (or, with IsTemplate set, a reusable exam
// definition) scoped to one school. Recipients are the union of the direct
// class, the assigned classes and the directly listed students.
type Exam struct {
	ID                uint             `gorm:"primaryKey" json:"id"`
	Title             string           `gorm:"size:255;not null;uniqueIndex:idx_exams_title_school" json:"title"`
	Date              time.Time        `gorm:"not null" json:"date"`
	SchoolID          uint             `gorm:"not null;uniqueIndex:idx_exams_title_school" json:"school_id"`
	School            *School          `gorm:"foreignKey:SchoolID" json:"school,omitempty"`
	ClassID           *uint            `gorm:"index" json:"class_id"`
	Class             *Class           `gorm:"foreignKey:ClassID" json:"class,omitempty"`
	AssignedClasses   []Class          `gorm:"many2many:exam_assigned_classes" json:"assigned_classes,omitempty"`
	Students          []Student        `gorm:"many2many:exam_students" json:"students,omitempty"`
	OpticalTemplateID uint             `gorm:"index;not null" json:"optical_template_id"`
	OpticalTemplate   *OpticalTemplate `gorm:"foreignKey:OpticalTemplateID" json:"optical_template,omitempty"`
	IsTemplate        bool             `gorm:"not null;default:false" json:"is_template"`
	FormImage         string           `gorm:"size:512" json:"form_image"`
	CreatedByID       uint             `gorm:"index;not null" json:"created_by_id"`
	CreatedBy         *User            `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}
