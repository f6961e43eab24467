package domain

import "time"

type WorkspaceKind int

const (
	WorkspaceKindPrivate WorkspaceKind = iota
	WorkspaceKindPublic
)

// Workspace is a sub-division of a tenant representing a legal business
// entity used in links and contracts.
type Workspace struct {
	ID                   string
	TenantID             string
	Name                 string
	Kind                 WorkspaceKind
	BusinessMainActivity string
	RegistrationNumber   string
	RegistrationDate     *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// WorkspaceAssignment grants a tenant member access to one workspace.
// A user's effective workspace set is always derived through these rows;
// every membership must resolve to at least one assignment.
type WorkspaceAssignment struct {
	ID          string
	WorkspaceID string
	UserID      string
	CreatedAt   time.Time
}
