package models

import "time"

// UserRole represents the available roles.
type UserRole string

const (
	RoleTeacher     UserRole = "teacher"
	RoleCoordinator UserRole = "coordinator"
)

// Valid returns true when the role is supported.
func (r UserRole) Valid() bool {
	return r == RoleTeacher || r == RoleCoordinator
}

// User represents an application account stored in the users table. Users are never deleted,
// only deactivated.
type User struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         UserRole  `db:"role" json:"role"`
	FullName     string    `db:"full_name" json:"full_name"`
	Active       bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
