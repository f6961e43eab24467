package service

import (
	"context"
	"testing"

	"github.com/AlexandroMtzG/remix-saas-kit-sub000/internal/saas/domain"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/internal/saas/store"
	"github.com/stretchr/testify/require"
)

func TestSignup(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &AuthService{Store: st}

	t.Run("creates the full tenant chain", func(t *testing.T) {
		result, err := svc.Signup(ctx, "founder@acme.test", "password123", "Ada", "Lovelace", "Acme", "")
		require.NoError(t, err)
		require.NotEmpty(t, result.UserID)
		require.NotEmpty(t, result.TenantID)
		require.NotEmpty(t, result.WorkspaceID)

		m, err := st.Memberships().GetMembership(ctx, result.TenantID, result.UserID)
		require.NoError(t, err)
		require.Equal(t, domain.RoleOwner, m.Role)

		assigned, err := st.Assignments().ListWorkspacesForMember(ctx, result.TenantID, result.UserID)
		require.NoError(t, err)
		require.Len(t, assigned, 1)
		require.Equal(t, result.WorkspaceID, assigned[0].ID)
	})

	t.Run("duplicate email is rejected and nothing is left behind", func(t *testing.T) {
		_, err := svc.Signup(ctx, "founder@acme.test", "password123", "Ada", "Lovelace", "Second Acme", "")
		require.ErrorIs(t, err, ErrEmailTaken)

		user, err := st.Users().GetUserByEmail(ctx, "founder@acme.test")
		require.NoError(t, err)
		tenants, err := st.Tenants().ListTenantsForUser(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, tenants, 1)
	})

	t.Run("short password is a validation failure", func(t *testing.T) {
		_, err := svc.Signup(ctx, "short@acme.test", "pw", "A", "B", "Acme", "")
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		require.Equal(t, "password", verr.Field)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &AuthService{Store: st}

	created, err := svc.Signup(ctx, "founder@acme.test", "password123", "Ada", "Lovelace", "Acme", "")
	require.NoError(t, err)

	t.Run("valid credentials resolve the first tenant and workspace", func(t *testing.T) {
		result, err := svc.Login(ctx, "Founder@Acme.Test", "password123")
		require.NoError(t, err)
		require.Equal(t, created.UserID, result.UserID)
		require.Equal(t, created.TenantID, result.TenantID)
		require.Equal(t, created.WorkspaceID, result.WorkspaceID)
	})

	t.Run("wrong password fails without leaking which part failed", func(t *testing.T) {
		_, err := svc.Login(ctx, "founder@acme.test", "not-the-password")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email fails the same way", func(t *testing.T) {
		_, err := svc.Login(ctx, "nobody@acme.test", "password123")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &AuthService{Store: st}

	created, err := svc.Signup(ctx, "founder@acme.test", "password123", "Ada", "Lovelace", "Acme", "")
	require.NoError(t, err)

	t.Run("wrong current password is rejected", func(t *testing.T) {
		err := svc.ChangePassword(ctx, created.UserID, "wrong", "new-password-1")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("rotation invalidates the old password", func(t *testing.T) {
		require.NoError(t, svc.ChangePassword(ctx, created.UserID, "password123", "new-password-1"))

		_, err := svc.Login(ctx, "founder@acme.test", "password123")
		require.ErrorIs(t, err, ErrInvalidCredentials)

		_, err = svc.Login(ctx, "founder@acme.test", "new-password-1")
		require.NoError(t, err)
	})
}

func TestDeleteAccount(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &AuthService{Store: st}

	f := seedTenant(t, ctx, st, "Acme", "owner@example.com")

	t.Run("sole owner cannot delete their account", func(t *testing.T) {
		err := svc.DeleteAccount(ctx, f.Owner.ID)
		require.ErrorIs(t, err, ErrSoleOwner)

		_, err = st.Users().GetUserByID(ctx, f.Owner.ID)
		require.NoError(t, err)
	})

	t.Run("contract parties cannot be deleted", func(t *testing.T) {
		d := newTestDispatcher(t)
		provider, client, link := seedLinkedPair(t, ctx, st, d)
		contracts := &ContractService{Store: st, Dispatcher: d}

		_, err := contracts.CreateContract(ctx, provider.rc(generousPlan), link.ID,
			ContractFields{Name: "SLA", Description: "terms", File: "sla.pdf"},
			[]MemberInput{
				{UserID: provider.Owner.ID, Role: domain.ContractSignatory},
				{UserID: client.Owner.ID, Role: domain.ContractSignatory},
			}, nil)
		require.NoError(t, err)

		// Both owners are sole owners anyway, so share ownership first to
		// isolate the contract-party guard.
		seedMember(t, ctx, st, provider, "cofounder@example.com", domain.RoleOwner)

		err = svc.DeleteAccount(ctx, provider.Owner.ID)
		require.ErrorIs(t, err, ErrUserHasContracts)
	})

	t.Run("deletion succeeds once ownership is shared", func(t *testing.T) {
		second, _ := seedMember(t, ctx, st, f, "second@example.com", domain.RoleOwner)

		require.NoError(t, svc.DeleteAccount(ctx, f.Owner.ID))

		_, err := st.Users().GetUserByID(ctx, f.Owner.ID)
		require.ErrorIs(t, err, store.ErrNotFound)

		// The membership rows cascade with the user.
		_, err = st.Memberships().GetMembership(ctx, f.Tenant.ID, f.Owner.ID)
		require.ErrorIs(t, err, store.ErrNotFound)

		_, err = st.Memberships().GetMembership(ctx, f.Tenant.ID, second.ID)
		require.NoError(t, err)
	})
}
