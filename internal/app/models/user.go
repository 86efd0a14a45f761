package models

import (
	"time"
)

// RoleType is a user's role, chosen once at registration and immutable after.
type RoleType string

const (
	// RoleMaestro is a teacher: owns classes and their posts
	RoleMaestro RoleType = "maestro"
	// RoleAlumno is a student: joins classes with a code
	RoleAlumno RoleType = "alumno"
)

// IsValid reports whether r is one of the two known roles
func (r RoleType) IsValid() bool {
	return r == RoleMaestro || r == RoleAlumno
}

// User defines the user model based on the 'usuarios' table
type User struct {
	ID        int64     `json:"id" db:"id" example:"1"`                                   // Unique identifier for the user
	Email     string    `json:"email" db:"email" example:"profe@elihudroom.app"`          // User's email address
	Password  string    `json:"-" db:"password"`                                          // User's hashed password (excluded from JSON)
	Name      string    `json:"name" db:"name" example:"Elena Vargas"`                    // Display name, denormalized onto classes and posts
	Role      RoleType  `json:"role" db:"role" example:"maestro"`                         // User's role (maestro or alumno)
	CreatedAt time.Time `json:"createdAt" db:"created_at" example:"2024-01-01T10:00:00Z"` // Timestamp when the user was created
}

// IsTeacher reports whether the user holds the maestro role
func (u *User) IsTeacher() bool {
	return u.Role == RoleMaestro
}
