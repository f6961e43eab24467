package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AlexandroMtzG/remix-saas-kit-sub000/internal/saas/domain"
)

func TestUpdateSubscription(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &TenantService{Store: st}

	f := seedTenant(t, ctx, st, "Acme", "owner@example.com")

	t.Run("owner updates the billing references", func(t *testing.T) {
		err := svc.UpdateSubscription(ctx, f.rc(generousPlan), "cus_123", "sub_pro")
		require.NoError(t, err)

		tenant, err := st.Tenants().GetTenantByID(ctx, f.Tenant.ID)
		require.NoError(t, err)
		require.Equal(t, "cus_123", tenant.BillingCustomerID)
		require.Equal(t, "sub_pro", tenant.SubscriptionID)
	})

	t.Run("admin is refused", func(t *testing.T) {
		_, adminMembership := seedMember(t, ctx, st, f, "admin@example.com", domain.RoleAdmin)

		rc := f.rc(generousPlan)
		rc.Membership = adminMembership

		err := svc.UpdateSubscription(ctx, rc, "cus_x", "sub_x")
		require.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestRenameTenant(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &TenantService{Store: st}

	f := seedTenant(t, ctx, st, "Acme", "owner@example.com")

	require.NoError(t, svc.Rename(ctx, f.rc(generousPlan), "Acme Holdings"))

	tenant, err := st.Tenants().GetTenantByID(ctx, f.Tenant.ID)
	require.NoError(t, err)
	require.Equal(t, "Acme Holdings", tenant.Name)

	err = svc.Rename(ctx, f.rc(generousPlan), "   ")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "name", verr.Field)
}

func TestDeleteTenant(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	d := newTestDispatcher(t)
	svc := &TenantService{Store: st}

	t.Run("refused while links exist", func(t *testing.T) {
		provider, _, _ := seedLinkedPair(t, ctx, st, d)

		err := svc.DeleteTenant(ctx, provider.rc(generousPlan))
		require.ErrorIs(t, err, ErrTenantHasLinks)

		_, err = st.Tenants().GetTenantByID(ctx, provider.Tenant.ID)
		require.NoError(t, err)
	})

	t.Run("owner deletes an unlinked tenant", func(t *testing.T) {
		f := seedTenant(t, ctx, st, "Doomed Co", "doomed@example.com")

		require.NoError(t, svc.DeleteTenant(ctx, f.rc(generousPlan)))

		_, err := st.Tenants().GetTenantByID(ctx, f.Tenant.ID)
		require.Error(t, err)
	})

	t.Run("member cannot delete", func(t *testing.T) {
		f := seedTenant(t, ctx, st, "Safe Co", "safe@example.com")
		_, membership := seedMember(t, ctx, st, f, "member@example.com", domain.RoleMember)

		rc := f.rc(generousPlan)
		rc.Membership = membership

		err := svc.DeleteTenant(ctx, rc)
		require.ErrorIs(t, err, ErrUnauthorized)
	})
}
