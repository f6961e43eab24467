package sqlite

import (
	"context"
	"time"

	"github.com/AlexandroMtzG/remix-saas-kit-sub000/internal/saas/domain"
)

type tenantsRepo struct {
	db dbtx
}

const tenantColumns = `id, name, billing_customer_id, subscription_id, created_at, updated_at`

func scanTenant(row interface{ Scan(...any) error }) (domain.Tenant, error) {
	var t domain.Tenant
	err := row.Scan(
		&t.ID, &t.Name, &t.BillingCustomerID, &t.SubscriptionID,
		&t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

func (r *tenantsRepo) GetTenantByID(ctx context.Context, id string) (domain.Tenant, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE id = ?`, id)
	t, err := scanTenant(row)
	if err != nil {
		return domain.Tenant{}, mapNotFound(err)
	}
	return t, nil
}

func (r *tenantsRepo) CreateTenant(ctx context.Context, t domain.Tenant) error {
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = now
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tenants (id, name, billing_customer_id, subscription_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.BillingCustomerID, t.SubscriptionID, t.CreatedAt, t.UpdatedAt,
	)
	return mapConstraint(err)
}

func (r *tenantsRepo) UpdateTenantName(ctx context.Context, tenantID, name string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tenants SET name = ?, updated_at = ? WHERE id = ?`,
		name, time.Now().UTC(), tenantID,
	)
	return requireRow(res, err)
}

func (r *tenantsRepo) UpdateSubscription(ctx context.Context, tenantID, customerID, subscriptionID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tenants SET billing_customer_id = ?, subscription_id = ?, updated_at = ? WHERE id = ?`,
		customerID, subscriptionID, time.Now().UTC(), tenantID,
	)
	return requireRow(res, err)
}

func (r *tenantsRepo) ListTenantsForUser(ctx context.Context, userID string) ([]domain.Tenant, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT t.id, t.name, t.billing_customer_id, t.subscription_id, t.created_at, t.updated_at
		 FROM tenants t
		 JOIN memberships m ON m.tenant_id = t.id
		 WHERE m.user_id = ?
		 ORDER BY t.id ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *tenantsRepo) DeleteTenant(ctx context.Context, tenantID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tenants WHERE id = ?`, tenantID)
	return requireRow(res, err)
}
