package domain

import "time"

// Invitation is a pending offer of tenant membership, addressed by email.
// Only the token's fingerprint is stored; redemption consumes it exactly
// once, producing a Membership plus one WorkspaceAssignment per proposed
// workspace.
type Invitation struct {
	ID           string
	TenantID     string
	Email        string
	TokenHash    string
	Role         Role
	WorkspaceIDs []string // proposed assignment set, never empty
	CreatedBy    string
	ExpiresAt    time.Time
	RedeemedAt   *time.Time
	RedeemedBy   string // empty until redeemed
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Redeemed reports whether the invitation has already been consumed.
func (i Invitation) Redeemed() bool { return i.RedeemedAt != nil }
