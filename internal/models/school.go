package models

import "time"

// School is the root of the organization graph. Class and student membership
// is derived from the foreign keys on Class/Student rather than kept as
// denormalized lists, so the reverse views can never drift.
type School struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;uniqueIndex;not null" json:"name"`
	City      string    `gorm:"size:255;not null" json:"city"`
	Address   string    `gorm:"size:512;not null" json:"address"`
	AdminID   *uint     `gorm:"uniqueIndex" json:"admin_id"`
	Admin     *User     `gorm:"foreignKey:AdminID" json:"admin,omitempty"`
	Classes   []Class   `gorm:"foreignKey:SchoolID" json:"classes,omitempty"`
	Students  []Student `gorm:"foreignKey:SchoolID" json:"students,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
