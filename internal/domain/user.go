package domain

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents an author or reader account.
type User struct {
	ID           string
	Email        string
	Name         string
	Image        string
	PasswordHash string
	Role         Role
	IsConnected  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
