package service

import "github.com/optikform/optik-api/internal/models"

// Actor identifies the authenticated caller as carried by the token claims.
type Actor struct {
	UserID     uint
	Role       string
	SchoolID   *uint
	SchoolName string
}

// IsSuperAdmin reports whether the actor holds the superadmin role.
func (a Actor) IsSuperAdmin() bool {
	return a.Role == models.RoleSuperAdmin
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// SameSchool reports whether the actor belongs to the given school.
func (a Actor) SameSchool(schoolID uint) bool {
	return a.SchoolID != nil && *a.SchoolID == schoolID
}
