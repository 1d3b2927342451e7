package models

import "time"

// Roles recognised by the access-control policy.
const (
	RoleSuperAdmin = "superadmin"
	RoleAdmin      = "admin"
	RoleTeacher    = "teacher"
)

// User is an account that can authenticate against the API. Admins and teachers
// belong to exactly one school; superadmins have no school binding. Teachers
// start unapproved and gain operational access only after sign-off.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         string    `gorm:"size:32;not null" json:"role"`
	SchoolID     *uint     `gorm:"index" json:"school_id"`
	School       *School   `gorm:"foreignKey:SchoolID" json:"school,omitempty"`
	IsApproved   bool      `gorm:"not null;default:false" json:"is_approved"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ValidRole reports whether the value is one of the known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleSuperAdmin, RoleAdmin, RoleTeacher:
		return true
	}
	return false
}
