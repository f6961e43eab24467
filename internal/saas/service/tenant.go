package service

import (
	"context"
	"errors"
	"strings"

	"github.com/AlexandroMtzG/remix-saas-kit-sub000/internal/saas/domain"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/internal/saas/store"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/pkg/slogx"
)

// ErrTenantHasLinks means the tenant still participates in pending or
// established links and cannot be deleted.
var ErrTenantHasLinks = errors.New("tenant still participates in links")

// TenantService manages tenant-level settings: name and billing references.
type TenantService struct {
	Store store.Store
}

// Rename changes the tenant's display name. Owner or admin only.
func (s *TenantService) Rename(ctx context.Context, rc ResolvedContext, name string) error {
	if !rc.Membership.Role.AtLeast(domain.RoleAdmin) {
		return ErrUnauthorized
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return validationErr("name", "name is required")
	}

	return s.Store.Tenants().UpdateTenantName(ctx, rc.Tenant.ID, name)
}

// UpdateSubscription records the billing provider references after checkout
// or a plan change. Owner only; entitlements derived from the new
// subscription take effect on the next resolve.
func (s *TenantService) UpdateSubscription(ctx context.Context, rc ResolvedContext, customerID, subscriptionID string) error {
	if !rc.Membership.Role.AtLeast(domain.RoleOwner) {
		return ErrUnauthorized
	}

	if err := s.Store.Tenants().UpdateSubscription(ctx, rc.Tenant.ID, customerID, subscriptionID); err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("tenant subscription updated",
		"tenant_id", rc.Tenant.ID,
		"subscription_id", subscriptionID,
	)
	return nil
}

// DeleteTenant removes the tenant and everything scoped under it. Owner
// only. Refused while any of the tenant's workspaces participates in a
// pending or established link, because the counterpart tenant still relies
// on those records.
func (s *TenantService) DeleteTenant(ctx context.Context, rc ResolvedContext) error {
	if !rc.Membership.Role.AtLeast(domain.RoleOwner) {
		return ErrUnauthorized
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		for _, status := range []domain.LinkStatus{domain.LinkPending, domain.LinkLinked} {
			links, err := tx.Links().ListLinksForTenant(ctx, rc.Tenant.ID, status)
			if err != nil {
				return err
			}
			if len(links) > 0 {
				return ErrTenantHasLinks
			}
		}

		return tx.Tenants().DeleteTenant(ctx, rc.Tenant.ID)
	})
}
