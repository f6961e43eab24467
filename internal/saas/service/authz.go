package service

import (
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/internal/saas/domain"
)

// Pure authorization decisions. No side effects, no store access; callers
// supply whatever counts they need, re-read inside the mutating transaction
// where the decision guards an invariant.

// LinkAction names what an actor wants to do to a link.
type LinkAction int

const (
	LinkActionRespond LinkAction = iota
	LinkActionDelete
)

// canMutateMembership reports whether changing the target membership (role
// change away from OWNER, or removal) keeps the tenant with at least one
// owner. ownerCount is the current OWNER count at decision time.
func canMutateMembership(target domain.Membership, losesOwner bool, ownerCount int) bool {
	if target.Role != domain.RoleOwner || !losesOwner {
		return true
	}
	return ownerCount > 1
}

// canGrantRole reports whether an actor with actorRole may assign newRole.
// Only an owner may grant owner; otherwise the actor must be owner or admin.
func canGrantRole(actorRole, newRole domain.Role) bool {
	if newRole == domain.RoleOwner {
		return actorRole == domain.RoleOwner
	}
	return actorRole.AtLeast(domain.RoleAdmin)
}

// quotaAllows applies a fail-closed quota check: a zero or negative quota
// always denies, a positive quota allows while current is below it.
func quotaAllows(e domain.Entitlement, current int, kind domain.QuotaKind) bool {
	limit := e.Limit(kind)
	if limit <= 0 {
		return false
	}
	return current < limit
}

// canActOnLink gates link transitions. Responding is reserved for
// owner/admins of the side that did NOT create the link; deleting is open
// to owner/admins of either side.
func canActOnLink(actorWorkspaceID string, actorRole domain.Role, link domain.Link, action LinkAction) bool {
	if !link.Involves(actorWorkspaceID) {
		return false
	}
	if !actorRole.AtLeast(domain.RoleAdmin) {
		return false
	}
	switch action {
	case LinkActionRespond:
		return actorWorkspaceID != link.CreatedByWorkspaceID
	case LinkActionDelete:
		return true
	default:
		return false
	}
}

// canEditContract reports whether a contract's fields are still mutable.
// Editability is derived from signatures, not from the status field: one
// signed signatory freezes the document.
func canEditContract(members []domain.ContractMember) bool {
	for _, m := range members {
		if m.Role == domain.ContractSignatory && m.SignDate != nil {
			return false
		}
	}
	return true
}

// countSignatories returns how many members carry the signatory role.
func countSignatories(members []domain.ContractMember) int {
	n := 0
	for _, m := range members {
		if m.Role == domain.ContractSignatory {
			n++
		}
	}
	return n
}
