package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/AlexandroMtzG/remix-saas-kit-sub000/internal/saas/billing"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/internal/saas/domain"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/internal/saas/store"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/pkg/slogx"
)

// ResolvedContext is the fully reconstructed identity chain for one
// request. Entitlement is a per-request snapshot, never persisted.
type ResolvedContext struct {
	User        domain.User
	Tenant      domain.Tenant
	Membership  domain.Membership
	Workspace   domain.Workspace // zero when the user has no assignment left
	Entitlement domain.Entitlement

	// Corrected is set when the session's workspace id was stale and got
	// re-derived. The transport re-issues the session cookie when set.
	Corrected bool
}

// HasWorkspace reports whether a workspace context resolved.
func (rc ResolvedContext) HasWorkspace() bool { return rc.Workspace.ID != "" }

// ResolverService rebuilds request context from session ids. Cached
// workspace/tenant ids are never trusted: every request re-validates them
// against current membership and assignments.
type ResolverService struct {
	Store   store.Store
	Billing billing.Source
}

// Resolve reconstructs {user, tenant, membership, workspace, entitlement}
// from the session's ids.
//
// A stale workspace id falls back to the member's first remaining
// assignment in the tenant; zero remaining assignments clears workspace
// context. Both cases mark the context Corrected so the session is
// rewritten. A user or membership that no longer resolves is ErrNoSession.
func (s *ResolverService) Resolve(ctx context.Context, userID, tenantID, workspaceID string) (ResolvedContext, error) {
	log := slogx.FromContext(ctx)

	if userID == "" || tenantID == "" {
		return ResolvedContext{}, ErrNoSession
	}

	// 1. Resolve the user.
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ResolvedContext{}, ErrNoSession
		}
		return ResolvedContext{}, err
	}

	// 2. Resolve tenant and the user's membership in it.
	tenant, err := s.Store.Tenants().GetTenantByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ResolvedContext{}, ErrNoSession
		}
		return ResolvedContext{}, err
	}

	membership, err := s.Store.Memberships().GetMembership(ctx, tenantID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("session tenant no longer holds the user",
				slog.String("user_id", userID),
				slog.String("tenant_id", tenantID),
			)
			return ResolvedContext{}, ErrNoSession
		}
		return ResolvedContext{}, err
	}

	rc := ResolvedContext{User: user, Tenant: tenant, Membership: membership}

	// 3. Validate the cached workspace against current assignments,
	// correcting when stale.
	if workspaceID != "" {
		assigned, err := s.Store.Assignments().Exists(ctx, workspaceID, userID)
		if err != nil {
			return ResolvedContext{}, err
		}
		if assigned {
			ws, err := s.Store.Workspaces().GetWorkspaceByID(ctx, workspaceID)
			if err == nil && ws.TenantID == tenantID {
				rc.Workspace = ws
			} else if err != nil && !errors.Is(err, store.ErrNotFound) {
				return ResolvedContext{}, err
			}
		}
	}
	if rc.Workspace.ID == "" {
		remaining, err := s.Store.Assignments().ListWorkspacesForMember(ctx, tenantID, userID)
		if err != nil {
			return ResolvedContext{}, err
		}
		rc.Corrected = true
		if len(remaining) > 0 {
			rc.Workspace = remaining[0]
		}
		if workspaceID != "" {
			log.Info("stale session workspace corrected",
				slog.String("user_id", userID),
				slog.String("stale_workspace_id", workspaceID),
				slog.String("workspace_id", rc.Workspace.ID),
			)
		}
	}

	// 4. Entitlement snapshot from the billing source. Failure or absence
	// resolves to the zero entitlement, never an error.
	ent, err := s.Billing.Entitlement(ctx, tenant.SubscriptionID)
	if err != nil {
		log.Warn("entitlement lookup failed, denying quota-gated creation",
			slog.String("tenant_id", tenantID),
			slog.Any("error", err),
		)
		ent = domain.Entitlement{}
	}
	rc.Entitlement = ent

	return rc, nil
}

// SwitchWorkspace validates that the user is assigned to the target
// workspace within the current tenant and returns the ids for a session
// rewrite.
func (s *ResolverService) SwitchWorkspace(ctx context.Context, rc ResolvedContext, workspaceID string) (tenantID, newWorkspaceID string, err error) {
	ws, err := s.Store.Workspaces().GetWorkspaceByID(ctx, workspaceID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", "", ErrNotFound
		}
		return "", "", err
	}
	if ws.TenantID != rc.Tenant.ID {
		return "", "", ErrUnauthorized
	}

	assigned, err := s.Store.Assignments().Exists(ctx, workspaceID, rc.User.ID)
	if err != nil {
		return "", "", err
	}
	if !assigned {
		return "", "", ErrUnauthorized
	}

	return rc.Tenant.ID, workspaceID, nil
}

// SwitchTenant validates membership in the target tenant and picks the
// member's first assignment there.
func (s *ResolverService) SwitchTenant(ctx context.Context, userID, tenantID string) (newTenantID, workspaceID string, err error) {
	if _, err := s.Store.Memberships().GetMembership(ctx, tenantID, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", "", ErrUnauthorized
		}
		return "", "", err
	}

	assignments, err := s.Store.Assignments().ListWorkspacesForMember(ctx, tenantID, userID)
	if err != nil {
		return "", "", err
	}
	if len(assignments) > 0 {
		workspaceID = assignments[0].ID
	}
	return tenantID, workspaceID, nil
}
