package domain

import "time"

type UserType int

const (
	// UserTypeTenant is a regular user belonging to one or more tenants.
	UserTypeTenant UserType = iota
	// UserTypeAdmin is a platform operator, outside any tenant hierarchy.
	UserTypeAdmin
)

type User struct {
	ID           string
	Email        string // unique
	PasswordHash string // argon2 encoded
	FirstName    string
	LastName     string
	Avatar       string // URL, can be empty
	Type         UserType
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
