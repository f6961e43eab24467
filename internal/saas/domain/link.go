package domain

import "time"

// LinkStatus is the state of a bilateral workspace relationship.
// PENDING is initial; LINKED and REJECTED are terminal. A rejected pair
// needs a fresh Link to retry.
type LinkStatus string

const (
	LinkPending  LinkStatus = "pending"
	LinkLinked   LinkStatus = "linked"
	LinkRejected LinkStatus = "rejected"
)

// Link is a provider/client relationship proposal between two workspaces
// belonging to two different tenants. Only members of the workspace that
// did NOT create the link may accept or reject it.
type Link struct {
	ID                   string
	ProviderWorkspaceID  string
	ClientWorkspaceID    string
	CreatedByWorkspaceID string // which side proposed; the other side responds
	CreatedByUserID      string
	Status               LinkStatus
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// OtherWorkspace returns the counterparty workspace id for the given side,
// or empty when workspaceID is on neither side.
func (l Link) OtherWorkspace(workspaceID string) string {
	switch workspaceID {
	case l.ProviderWorkspaceID:
		return l.ClientWorkspaceID
	case l.ClientWorkspaceID:
		return l.ProviderWorkspaceID
	default:
		return ""
	}
}

// Involves reports whether workspaceID is one of the link's two sides.
func (l Link) Involves(workspaceID string) bool {
	return workspaceID == l.ProviderWorkspaceID || workspaceID == l.ClientWorkspaceID
}
