package store

import (
	"context"
	"errors"
	"time"

	"github.com/AlexandroMtzG/remix-saas-kit-sub000/internal/saas/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrStale is returned by conditional state-machine updates when the row
	// is no longer in the expected source state. Two concurrent responders
	// resolve to exactly one winner; the loser observes this.
	ErrStale = errors.New("store: stale state")
)

// Store is the root data access interface. Concrete drivers implement this.
// It exposes sub-repositories to keep concerns tidy and testable.
type Store interface {
	Users() Users
	Tenants() Tenants
	Memberships() Memberships
	Workspaces() Workspaces
	Assignments() Assignments
	Invitations() Invitations
	Links() Links
	Contracts() Contracts
	Employees() Employees

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// Every multi-row mutation in the system goes through here so partial
	// writes are never observable.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail is used during login and duplicate-invite checks.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id provided by the app via ULID).
	// Returns ErrAlreadyExists on a duplicate email.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateProfile mutates display fields and bumps updated_at.
	UpdateProfile(ctx context.Context, userID, firstName, lastName, avatar string) error

	// UpdatePasswordHash sets the password_hash (argon2) and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID, newHash string) error

	DeleteUser(ctx context.Context, userID string) error
}

type Tenants interface {
	GetTenantByID(ctx context.Context, id string) (domain.Tenant, error)

	CreateTenant(ctx context.Context, t domain.Tenant) error

	UpdateTenantName(ctx context.Context, tenantID, name string) error

	// UpdateSubscription stores the billing provider references after
	// checkout or plan changes.
	UpdateSubscription(ctx context.Context, tenantID, customerID, subscriptionID string) error

	// ListTenantsForUser returns all tenants the user holds a membership in,
	// oldest first.
	ListTenantsForUser(ctx context.Context, userID string) ([]domain.Tenant, error)

	DeleteTenant(ctx context.Context, tenantID string) error
}

type Memberships interface {
	GetMembershipByID(ctx context.Context, id string) (domain.Membership, error)

	// GetMembership fetches the (tenant, user) pair.
	GetMembership(ctx context.Context, tenantID, userID string) (domain.Membership, error)

	ListMembershipsForTenant(ctx context.Context, tenantID string) ([]domain.Membership, error)

	// CreateMembership returns ErrAlreadyExists for a duplicate (tenant, user) pair.
	CreateMembership(ctx context.Context, m domain.Membership) error

	UpdateMembershipRole(ctx context.Context, membershipID string, role domain.Role) error

	DeleteMembership(ctx context.Context, membershipID string) error

	// CountOwners counts OWNER memberships in a tenant. Sole-owner checks
	// must call this inside the mutating transaction, never from cached
	// request context.
	CountOwners(ctx context.Context, tenantID string) (int, error)

	// CountMembers counts all memberships in a tenant (user quota).
	CountMembers(ctx context.Context, tenantID string) (int, error)
}

type Workspaces interface {
	GetWorkspaceByID(ctx context.Context, id string) (domain.Workspace, error)

	CreateWorkspace(ctx context.Context, w domain.Workspace) error

	UpdateWorkspace(ctx context.Context, w domain.Workspace) error

	DeleteWorkspace(ctx context.Context, workspaceID string) error

	ListWorkspacesForTenant(ctx context.Context, tenantID string) ([]domain.Workspace, error)

	// CountWorkspaces counts a tenant's workspaces (workspace quota).
	CountWorkspaces(ctx context.Context, tenantID string) (int, error)
}

type Assignments interface {
	// CreateAssignment grants a member access to a workspace.
	CreateAssignment(ctx context.Context, a domain.WorkspaceAssignment) error

	// Exists reports whether the user is assigned to the workspace.
	Exists(ctx context.Context, workspaceID, userID string) (bool, error)

	// ListWorkspacesForMember returns the workspaces of one tenant the user
	// is assigned to, oldest first. This is the user's effective workspace
	// set within that tenant.
	ListWorkspacesForMember(ctx context.Context, tenantID, userID string) ([]domain.Workspace, error)

	// DeleteForMember removes all of the user's assignments within a tenant
	// (member removal, or the delete half of an atomic reassign).
	DeleteForMember(ctx context.Context, tenantID, userID string) error

	// CountSoleAssignments counts users for whom workspaceID is their only
	// assignment within its tenant. Deleting a workspace with a non-zero
	// count would strand those members.
	CountSoleAssignments(ctx context.Context, workspaceID string) (int, error)
}

type Invitations interface {
	// CreateInvitation writes a new invitation and its proposed workspace
	// set (token_hash is the SHA-256 fingerprint of the opaque token).
	CreateInvitation(ctx context.Context, inv domain.Invitation) error

	// GetActiveInvitationByTokenHash returns a not-redeemed, not-expired
	// invitation by fingerprint, including its proposed workspace ids.
	GetActiveInvitationByTokenHash(ctx context.Context, hash string) (domain.Invitation, error)

	// MarkInvitationRedeemed consumes the invitation. Conditional on the
	// invitation still being unredeemed; returns ErrStale otherwise so a
	// raced double-redemption has exactly one winner.
	MarkInvitationRedeemed(ctx context.Context, invitationID, redeemedBy string, at time.Time) error

	// DeleteExpiredInvitations is housekeeping.
	DeleteExpiredInvitations(ctx context.Context) error
}

type Links interface {
	GetLinkByID(ctx context.Context, id string) (domain.Link, error)

	CreateLink(ctx context.Context, l domain.Link) error

	// UpdateLinkStatus transitions from -> to conditionally
	// (WHERE status = from). Returns ErrStale when zero rows match.
	UpdateLinkStatus(ctx context.Context, linkID string, from, to domain.LinkStatus) error

	DeleteLink(ctx context.Context, linkID string) error

	// ListLinksForTenant returns links where either workspace belongs to the
	// tenant, optionally filtered by status.
	ListLinksForTenant(ctx context.Context, tenantID string, status domain.LinkStatus) ([]domain.Link, error)

	// ActivePairExists reports whether a pending or linked link already ties
	// the two workspaces, in either direction.
	ActivePairExists(ctx context.Context, workspaceA, workspaceB string) (bool, error)
}

type Contracts interface {
	GetContractByID(ctx context.Context, id string) (domain.Contract, error)

	CreateContract(ctx context.Context, c domain.Contract) error

	// UpdateContractFields mutates name/description/file and bumps updated_at.
	UpdateContractFields(ctx context.Context, contractID, name, description, file string) error

	UpdateContractStatus(ctx context.Context, contractID string, status domain.ContractStatus) error

	// DeleteContract cascades to members, employees and activity (per schema).
	DeleteContract(ctx context.Context, contractID string) error

	ListContractsForWorkspace(ctx context.Context, workspaceID string) ([]domain.Contract, error)

	// CountContractsForLink gates link deletion.
	CountContractsForLink(ctx context.Context, linkID string) (int, error)

	// CountContractMembershipsForUser gates account deletion; contract
	// parties must remain resolvable for the life of the document.
	CountContractMembershipsForUser(ctx context.Context, userID string) (int, error)

	// CountContractsForTenantSince counts contracts created by any of the
	// tenant's workspaces at or after since (monthly quota accounting).
	CountContractsForTenantSince(ctx context.Context, tenantID string, since time.Time) (int, error)

	CreateContractMember(ctx context.Context, m domain.ContractMember) error

	// ListContractMembers returns members in insertion order.
	ListContractMembers(ctx context.Context, contractID string) ([]domain.ContractMember, error)

	// SetMemberSignDate records a signature timestamp. Conditional on the
	// member not having signed yet; returns ErrStale otherwise.
	SetMemberSignDate(ctx context.Context, contractID, userID string, at time.Time) error

	CreateContractEmployee(ctx context.Context, e domain.ContractEmployee) error

	ListContractEmployees(ctx context.Context, contractID string) ([]domain.ContractEmployee, error)

	// AppendActivity inserts an audit row. There is no update or delete.
	AppendActivity(ctx context.Context, a domain.ContractActivity) error

	// ListActivity returns the audit trail, creation time ascending with
	// insertion order breaking ties.
	ListActivity(ctx context.Context, contractID string) ([]domain.ContractActivity, error)
}

type Employees interface {
	GetEmployeeByID(ctx context.Context, id string) (domain.Employee, error)

	CreateEmployee(ctx context.Context, e domain.Employee) error

	ListEmployeesForWorkspace(ctx context.Context, workspaceID string) ([]domain.Employee, error)
}
