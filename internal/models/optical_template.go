package models

import (
	"time"

	"gorm.io/datatypes"
)

// OpticalTemplate is a reusable answer-sheet layout plus scoring key. The
// component array is stored opaquely as JSON; its shape is validated at the
// boundary and only interpreted by the scoring service.
type OpticalTemplate struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"size:255;not null" json:"name"`
	Components  datatypes.JSON `gorm:"not null" json:"components"`
	FormImage   string         `gorm:"size:512" json:"form_image"`
	IsPublic    bool           `gorm:"not null;default:false" json:"is_public"`
	CreatedByID uint           `gorm:"index;not null" json:"created_by_id"`
	CreatedBy   *User          `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// TemplateComponent is one entry of a template's scoring key. A component
// without a correct answer is layout-only and never contributes points.
type TemplateComponent struct {
	QuestionNumber int     `json:"questionNumber"`
	CorrectAnswer  string  `json:"correctAnswer,omitempty"`
	Points         float64 `json:"points,omitempty"`
}
