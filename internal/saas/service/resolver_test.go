package service

import (
	"context"
	"errors"
	"testing"

	"github.com/AlexandroMtzG/remix-saas-kit-sub000/internal/saas/billing"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/internal/saas/domain"
	"github.com/stretchr/testify/require"
)

type failingBilling struct{}

func (failingBilling) Entitlement(context.Context, string) (domain.Entitlement, error) {
	return domain.Entitlement{}, errors.New("billing provider down")
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	plans := &billing.StaticSource{Plans: map[string]domain.Entitlement{
		"sub_test": {MaxWorkspaces: 3, MaxUsers: 5, MaxMonthlyContracts: 10},
	}}
	svc := &ResolverService{Store: st, Billing: plans}

	f := seedTenant(t, ctx, st, "Acme", "owner@acme.test")

	t.Run("full chain resolves", func(t *testing.T) {
		rc, err := svc.Resolve(ctx, f.Owner.ID, f.Tenant.ID, f.Workspace.ID)
		require.NoError(t, err)
		require.Equal(t, f.Owner.ID, rc.User.ID)
		require.Equal(t, f.Tenant.ID, rc.Tenant.ID)
		require.Equal(t, f.Workspace.ID, rc.Workspace.ID)
		require.Equal(t, domain.RoleOwner, rc.Membership.Role)
		require.Equal(t, 5, rc.Entitlement.MaxUsers)
		require.False(t, rc.Corrected)
	})

	t.Run("missing ids mean no session", func(t *testing.T) {
		_, err := svc.Resolve(ctx, "", "", "")
		require.ErrorIs(t, err, ErrNoSession)
	})

	t.Run("unknown user means no session", func(t *testing.T) {
		_, err := svc.Resolve(ctx, "01J00000000000000000000000", f.Tenant.ID, "")
		require.ErrorIs(t, err, ErrNoSession)
	})

	t.Run("revoked membership means no session", func(t *testing.T) {
		other := seedTenant(t, ctx, st, "Other", "owner@other.test")
		_, err := svc.Resolve(ctx, f.Owner.ID, other.Tenant.ID, "")
		require.ErrorIs(t, err, ErrNoSession)
	})

	t.Run("stale workspace falls back to the first remaining assignment", func(t *testing.T) {
		ws := &WorkspaceService{Store: st}
		ownerRC, err := svc.Resolve(ctx, f.Owner.ID, f.Tenant.ID, f.Workspace.ID)
		require.NoError(t, err)

		_, err = ws.CreateWorkspace(ctx, ownerRC, WorkspaceFields{Name: "Branch"})
		require.NoError(t, err)

		// A session still pointing at a workspace of another tenant is
		// corrected, not failed.
		other := seedTenant(t, ctx, st, "Foreign", "owner@foreign.test")
		rc, err := svc.Resolve(ctx, f.Owner.ID, f.Tenant.ID, other.Workspace.ID)
		require.NoError(t, err)
		require.True(t, rc.Corrected)
		require.Equal(t, f.Workspace.ID, rc.Workspace.ID)
	})

	t.Run("no assignments left clears workspace context", func(t *testing.T) {
		loner, _ := seedMember(t, ctx, st, f, "loner@acme.test", domain.RoleMember)
		require.NoError(t, st.Assignments().DeleteForMember(ctx, f.Tenant.ID, loner.ID))

		rc, err := svc.Resolve(ctx, loner.ID, f.Tenant.ID, f.Workspace.ID)
		require.NoError(t, err)
		require.True(t, rc.Corrected)
		require.False(t, rc.HasWorkspace())
	})

	t.Run("billing failure degrades to zero entitlement", func(t *testing.T) {
		degraded := &ResolverService{Store: st, Billing: failingBilling{}}

		rc, err := degraded.Resolve(ctx, f.Owner.ID, f.Tenant.ID, f.Workspace.ID)
		require.NoError(t, err)
		require.Equal(t, domain.Entitlement{}, rc.Entitlement)
		require.False(t, quotaAllows(rc.Entitlement, 0, domain.QuotaWorkspaces))
	})
}

func TestSwitchWorkspace(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	svc := &ResolverService{Store: st, Billing: &billing.StaticSource{}}
	f := seedTenant(t, ctx, st, "Acme", "owner@acme.test")

	ws := &WorkspaceService{Store: st}
	second, err := ws.CreateWorkspace(ctx, f.rc(generousPlan), WorkspaceFields{Name: "Branch"})
	require.NoError(t, err)

	t.Run("assigned workspace switches", func(t *testing.T) {
		tenantID, wsID, err := svc.SwitchWorkspace(ctx, f.rc(generousPlan), second.ID)
		require.NoError(t, err)
		require.Equal(t, f.Tenant.ID, tenantID)
		require.Equal(t, second.ID, wsID)
	})

	t.Run("unassigned workspace is denied", func(t *testing.T) {
		memberUser, memberMembership := seedMember(t, ctx, st, f, "member@acme.test", domain.RoleMember)
		memberRC := ResolvedContext{User: memberUser, Tenant: f.Tenant, Membership: memberMembership}

		// The member is assigned to the first workspace only.
		_, _, err := svc.SwitchWorkspace(ctx, memberRC, second.ID)
		require.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("foreign tenant's workspace is denied", func(t *testing.T) {
		other := seedTenant(t, ctx, st, "Other", "owner@other.test")
		_, _, err := svc.SwitchWorkspace(ctx, f.rc(generousPlan), other.Workspace.ID)
		require.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestSwitchTenant(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	svc := &ResolverService{Store: st, Billing: &billing.StaticSource{}}
	f := seedTenant(t, ctx, st, "Acme", "owner@acme.test")
	other := seedTenant(t, ctx, st, "Other", "owner@other.test")

	t.Run("member switches and gets their first assignment", func(t *testing.T) {
		tenantID, wsID, err := svc.SwitchTenant(ctx, f.Owner.ID, f.Tenant.ID)
		require.NoError(t, err)
		require.Equal(t, f.Tenant.ID, tenantID)
		require.Equal(t, f.Workspace.ID, wsID)
	})

	t.Run("non-member is denied", func(t *testing.T) {
		_, _, err := svc.SwitchTenant(ctx, f.Owner.ID, other.Tenant.ID)
		require.ErrorIs(t, err, ErrUnauthorized)
	})
}
