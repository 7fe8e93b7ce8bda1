// Package models defines the persisted entities of the portfolio
// backend: users, sections, projects and media assets.
package models

import "time"

// RoleAdmin is the default role for seeded users.
const RoleAdmin = "admin"

// User is an administrator account. Passwords are stored only as
// bcrypt hashes and never serialized.
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Name         *string    `json:"name,omitempty"`
	Role         string     `json:"role"`
	IsActive     bool       `json:"is_active"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}
