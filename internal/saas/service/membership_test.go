package service

import (
	"context"
	"testing"
	"time"

	"github.com/AlexandroMtzG/remix-saas-kit-sub000/internal/saas/domain"
	"github.com/stretchr/testify/require"
)

func TestSoleOwnerInvariant(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	d := newTestDispatcher(t)
	svc := &MembershipService{Store: st, Dispatcher: d}

	f := seedTenant(t, ctx, st, "Acme", "owner@acme.test")

	t.Run("demoting the sole owner fails", func(t *testing.T) {
		err := svc.UpdateMemberRole(ctx, f.rc(generousPlan), f.Membership.ID, domain.RoleAdmin)
		require.ErrorIs(t, err, ErrSoleOwner)

		m, err := st.Memberships().GetMembershipByID(ctx, f.Membership.ID)
		require.NoError(t, err)
		require.Equal(t, domain.RoleOwner, m.Role)
	})

	t.Run("removing the sole owner fails", func(t *testing.T) {
		err := svc.RemoveMember(ctx, f.rc(generousPlan), f.Membership.ID)
		require.ErrorIs(t, err, ErrSoleOwner)
	})

	t.Run("demotion succeeds once a second owner exists", func(t *testing.T) {
		_, second := seedMember(t, ctx, st, f, "second@acme.test", domain.RoleOwner)

		require.NoError(t, svc.UpdateMemberRole(ctx, f.rc(generousPlan), second.ID, domain.RoleMember))

		count, err := st.Memberships().CountOwners(ctx, f.Tenant.ID)
		require.NoError(t, err)
		require.Equal(t, 1, count)

		// Back down to one owner; demoting the last one fails again.
		err = svc.UpdateMemberRole(ctx, f.rc(generousPlan), f.Membership.ID, domain.RoleAdmin)
		require.ErrorIs(t, err, ErrSoleOwner)
	})
}

func TestUpdateMemberRoleAuthority(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	d := newTestDispatcher(t)
	svc := &MembershipService{Store: st, Dispatcher: d}

	f := seedTenant(t, ctx, st, "Acme", "owner@acme.test")
	adminUser, adminMembership := seedMember(t, ctx, st, f, "admin@acme.test", domain.RoleAdmin)
	_, memberMembership := seedMember(t, ctx, st, f, "member@acme.test", domain.RoleMember)

	adminRC := ResolvedContext{
		User:        adminUser,
		Tenant:      f.Tenant,
		Membership:  adminMembership,
		Workspace:   f.Workspace,
		Entitlement: generousPlan,
	}

	t.Run("admin may not promote to owner", func(t *testing.T) {
		err := svc.UpdateMemberRole(ctx, adminRC, memberMembership.ID, domain.RoleOwner)
		require.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("admin may not demote an owner", func(t *testing.T) {
		err := svc.UpdateMemberRole(ctx, adminRC, f.Membership.ID, domain.RoleMember)
		require.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("owner promotes to owner", func(t *testing.T) {
		require.NoError(t, svc.UpdateMemberRole(ctx, f.rc(generousPlan), memberMembership.ID, domain.RoleOwner))
	})

	t.Run("guest cannot mutate at all", func(t *testing.T) {
		guestUser, guestMembership := seedMember(t, ctx, st, f, "guest@acme.test", domain.RoleGuest)
		guestRC := ResolvedContext{User: guestUser, Tenant: f.Tenant, Membership: guestMembership, Entitlement: generousPlan}

		err := svc.UpdateMemberRole(ctx, guestRC, memberMembership.ID, domain.RoleMember)
		require.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestInviteAndRedeem(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	d := newTestDispatcher(t)
	svc := &MembershipService{Store: st, Dispatcher: d}

	f := seedTenant(t, ctx, st, "Acme", "owner@acme.test")

	t.Run("invite requires non-empty workspace set", func(t *testing.T) {
		_, err := svc.InviteMember(ctx, f.rc(generousPlan), "new@acme.test", domain.RoleMember, nil)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		require.Equal(t, "workspace_ids", verr.Field)
	})

	t.Run("invite is denied on exhausted user quota", func(t *testing.T) {
		tightPlan := domain.Entitlement{MaxWorkspaces: 100, MaxUsers: 1, MaxMonthlyContracts: 100}
		_, err := svc.InviteMember(ctx, f.rc(tightPlan), "new@acme.test", domain.RoleMember, []string{f.Workspace.ID})
		require.ErrorIs(t, err, ErrQuotaExceeded)
	})

	t.Run("invite existing member is rejected as duplicate", func(t *testing.T) {
		_, err := svc.InviteMember(ctx, f.rc(generousPlan), "owner@acme.test", domain.RoleMember, []string{f.Workspace.ID})
		require.ErrorIs(t, err, ErrDuplicateMember)
	})

	t.Run("redeem creates membership and assignments exactly once", func(t *testing.T) {
		token, err := svc.InviteMember(ctx, f.rc(generousPlan), "new@acme.test", domain.RoleMember, []string{f.Workspace.ID})
		require.NoError(t, err)
		require.NotEmpty(t, token)

		result, err := svc.RedeemInvitation(ctx, token, RedeemRequest{
			Password:  "redeem-password",
			FirstName: "New",
			LastName:  "Member",
		})
		require.NoError(t, err)
		require.Equal(t, f.Tenant.ID, result.TenantID)
		require.Equal(t, f.Workspace.ID, result.WorkspaceID)

		m, err := st.Memberships().GetMembership(ctx, f.Tenant.ID, result.UserID)
		require.NoError(t, err)
		require.Equal(t, domain.RoleMember, m.Role)

		assigned, err := st.Assignments().ListWorkspacesForMember(ctx, f.Tenant.ID, result.UserID)
		require.NoError(t, err)
		require.Len(t, assigned, 1)

		// Second redemption of the same token is a no-op failure.
		_, err = svc.RedeemInvitation(ctx, token, RedeemRequest{Password: "redeem-password"})
		require.ErrorIs(t, err, ErrInviteNotFound)
	})

	t.Run("redeem of garbage token fails cleanly", func(t *testing.T) {
		_, err := svc.RedeemInvitation(ctx, "not-a-token", RedeemRequest{Password: "whatever123"})
		require.ErrorIs(t, err, ErrInviteNotFound)
	})

	t.Run("expired invitation cannot be redeemed", func(t *testing.T) {
		// A nanosecond TTL is already past by the time redemption runs.
		shortLived := &MembershipService{Store: st, Dispatcher: d, InviteTTL: time.Nanosecond}

		expiredToken, err := shortLived.InviteMember(ctx, f.rc(generousPlan), "late@acme.test", domain.RoleMember, []string{f.Workspace.ID})
		require.NoError(t, err)

		_, err = svc.RedeemInvitation(ctx, expiredToken, RedeemRequest{Password: "redeem-password"})
		require.ErrorIs(t, err, ErrInviteNotFound)
	})

	t.Run("purge removes expired invitations but keeps live ones", func(t *testing.T) {
		shortLived := &MembershipService{Store: st, Dispatcher: d, InviteTTL: time.Nanosecond}
		_, err := shortLived.InviteMember(ctx, f.rc(generousPlan), "gone@acme.test", domain.RoleMember, []string{f.Workspace.ID})
		require.NoError(t, err)

		liveToken, err := svc.InviteMember(ctx, f.rc(generousPlan), "fresh@acme.test", domain.RoleMember, []string{f.Workspace.ID})
		require.NoError(t, err)

		require.NoError(t, st.Invitations().DeleteExpiredInvitations(ctx))

		_, err = svc.RedeemInvitation(ctx, liveToken, RedeemRequest{
			Password:  "redeem-password",
			FirstName: "Fresh",
			LastName:  "Member",
		})
		require.NoError(t, err)
	})
}

func TestReassignWorkspaces(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	d := newTestDispatcher(t)
	members := &MembershipService{Store: st, Dispatcher: d}
	workspaces := &WorkspaceService{Store: st}

	f := seedTenant(t, ctx, st, "Acme", "owner@acme.test")
	_, target := seedMember(t, ctx, st, f, "member@acme.test", domain.RoleMember)

	second, err := workspaces.CreateWorkspace(ctx, f.rc(generousPlan), WorkspaceFields{Name: "Branch"})
	require.NoError(t, err)

	t.Run("empty set is rejected", func(t *testing.T) {
		err := members.ReassignWorkspaces(ctx, f.rc(generousPlan), target.ID, nil)
		require.ErrorIs(t, err, ErrLastAssignment)
	})

	t.Run("replacement is atomic and complete", func(t *testing.T) {
		err := members.ReassignWorkspaces(ctx, f.rc(generousPlan), target.ID, []string{second.ID})
		require.NoError(t, err)

		assigned, err := st.Assignments().ListWorkspacesForMember(ctx, f.Tenant.ID, target.UserID)
		require.NoError(t, err)
		require.Len(t, assigned, 1)
		require.Equal(t, second.ID, assigned[0].ID)
	})

	t.Run("foreign workspace in the set aborts without partial effects", func(t *testing.T) {
		other := seedTenant(t, ctx, st, "Other", "owner@other.test")

		err := members.ReassignWorkspaces(ctx, f.rc(generousPlan), target.ID, []string{f.Workspace.ID, other.Workspace.ID})
		require.ErrorIs(t, err, ErrUnauthorized)

		assigned, err := st.Assignments().ListWorkspacesForMember(ctx, f.Tenant.ID, target.UserID)
		require.NoError(t, err)
		require.Len(t, assigned, 1)
		require.Equal(t, second.ID, assigned[0].ID)
	})
}

func TestRemoveMemberCascadesAssignments(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	d := newTestDispatcher(t)
	svc := &MembershipService{Store: st, Dispatcher: d}

	f := seedTenant(t, ctx, st, "Acme", "owner@acme.test")
	memberUser, membership := seedMember(t, ctx, st, f, "member@acme.test", domain.RoleMember)

	require.NoError(t, svc.RemoveMember(ctx, f.rc(generousPlan), membership.ID))

	_, err := st.Memberships().GetMembership(ctx, f.Tenant.ID, memberUser.ID)
	require.Error(t, err)

	assigned, err := st.Assignments().ListWorkspacesForMember(ctx, f.Tenant.ID, memberUser.ID)
	require.NoError(t, err)
	require.Empty(t, assigned)
}
