package domain

import "time"

// Role is the coarse permission tag carried by users and session tokens.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents a registered customer or administrator.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	Role         Role
	OrderIDs     []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
