package domain

import "time"

// ContractStatus is operator-set metadata. It is NOT derived from
// signatures; editability is (see ContractMember.SignDate).
type ContractStatus string

const (
	ContractPending  ContractStatus = "pending"
	ContractSigned   ContractStatus = "signed"
	ContractArchived ContractStatus = "archived"
)

// ContractMemberRole distinguishes parties whose signature is required
// from read-only observers.
type ContractMemberRole string

const (
	ContractSignatory ContractMemberRole = "signatory"
	ContractSpectator ContractMemberRole = "spectator"
)

// MinSignatories is the quorum a contract must satisfy at creation time.
const MinSignatories = 2

// ActivityType classifies audit trail entries.
type ActivityType string

const (
	ActivityCreated ActivityType = "created"
	ActivityUpdated ActivityType = "updated"
)

// Contract is a multi-party signable document scoped to exactly one LINKED
// link.
type Contract struct {
	ID                   string
	LinkID               string
	CreatedByWorkspaceID string // used for per-tenant monthly quota accounting
	Name                 string
	Description          string
	File                 string // opaque document payload reference
	Status               ContractStatus
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// ContractMember ties a user to a contract with a role. A non-nil SignDate
// on any signatory freezes the contract's editable fields.
type ContractMember struct {
	ID         string
	ContractID string
	UserID     string
	Role       ContractMemberRole
	SignDate   *time.Time
	CreatedAt  time.Time
}

// ContractEmployee references provider-workspace staff covered by the
// contract.
type ContractEmployee struct {
	ID         string
	ContractID string
	EmployeeID string
	CreatedAt  time.Time
}

// ContractActivity is an append-only audit log entry. Rows are never
// mutated or deleted; display order is creation time ascending with
// insertion order breaking ties.
type ContractActivity struct {
	ID         string
	ContractID string
	ActorID    string
	Type       ActivityType
	CreatedAt  time.Time
}
