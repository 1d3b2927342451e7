package models

import "time"

// Class groups students within a school. The (name, school) pair is unique.
type Class struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null;uniqueIndex:idx_classes_name_school" json:"name"`
	Grade     int       `gorm:"not null" json:"grade"`
	SchoolID  uint      `gorm:"not null;uniqueIndex:idx_classes_name_school" json:"school_id"`
	School    *School   `gorm:"foreignKey:SchoolID" json:"school,omitempty"`
	Students  []Student `gorm:"foreignKey:ClassID" json:"students,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
