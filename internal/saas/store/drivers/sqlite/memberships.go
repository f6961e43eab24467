package sqlite

import (
	"context"
	"time"

	"github.com/AlexandroMtzG/remix-saas-kit-sub000/internal/saas/domain"
)

type membershipsRepo struct {
	db dbtx
}

const membershipColumns = `id, tenant_id, user_id, role, created_at, updated_at`

func scanMembership(row interface{ Scan(...any) error }) (domain.Membership, error) {
	var m domain.Membership
	var role string
	err := row.Scan(&m.ID, &m.TenantID, &m.UserID, &role, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return domain.Membership{}, err
	}
	m.Role, err = domain.ParseRole(role)
	if err != nil {
		return domain.Membership{}, err
	}
	return m, nil
}

func (r *membershipsRepo) GetMembershipByID(ctx context.Context, id string) (domain.Membership, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+membershipColumns+` FROM memberships WHERE id = ?`, id)
	m, err := scanMembership(row)
	if err != nil {
		return domain.Membership{}, mapNotFound(err)
	}
	return m, nil
}

func (r *membershipsRepo) GetMembership(ctx context.Context, tenantID, userID string) (domain.Membership, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+membershipColumns+` FROM memberships WHERE tenant_id = ? AND user_id = ?`,
		tenantID, userID)
	m, err := scanMembership(row)
	if err != nil {
		return domain.Membership{}, mapNotFound(err)
	}
	return m, nil
}

func (r *membershipsRepo) ListMembershipsForTenant(ctx context.Context, tenantID string) ([]domain.Membership, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+membershipColumns+` FROM memberships WHERE tenant_id = ? ORDER BY created_at ASC, id ASC`,
		tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *membershipsRepo) CreateMembership(ctx context.Context, m domain.Membership) error {
	now := time.Now().UTC()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = now
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO memberships (id, tenant_id, user_id, role, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.TenantID, m.UserID, m.Role.String(), m.CreatedAt, m.UpdatedAt,
	)
	return mapConstraint(err)
}

func (r *membershipsRepo) UpdateMembershipRole(ctx context.Context, membershipID string, role domain.Role) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE memberships SET role = ?, updated_at = ? WHERE id = ?`,
		role.String(), time.Now().UTC(), membershipID,
	)
	return requireRow(res, err)
}

func (r *membershipsRepo) DeleteMembership(ctx context.Context, membershipID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM memberships WHERE id = ?`, membershipID)
	return requireRow(res, err)
}

func (r *membershipsRepo) CountOwners(ctx context.Context, tenantID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM memberships WHERE tenant_id = ? AND role = ?`,
		tenantID, domain.RoleOwner.String()).Scan(&n)
	return n, err
}

func (r *membershipsRepo) CountMembers(ctx context.Context, tenantID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM memberships WHERE tenant_id = ?`, tenantID).Scan(&n)
	return n, err
}
