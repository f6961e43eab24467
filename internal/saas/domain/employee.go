package domain

import "time"

// Employee is staff of a provider workspace that contracts may reference.
type Employee struct {
	ID          string
	WorkspaceID string
	FirstName   string
	LastName    string
	Email       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
