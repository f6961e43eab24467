package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/AlexandroMtzG/remix-saas-kit-sub000/internal/saas/domain"
)

type contractsRepo struct {
	db dbtx
}

const contractColumns = `id, link_id, created_by_workspace_id, name, description, file, status, created_at, updated_at`

func scanContract(row interface{ Scan(...any) error }) (domain.Contract, error) {
	var c domain.Contract
	var status string
	err := row.Scan(
		&c.ID, &c.LinkID, &c.CreatedByWorkspaceID, &c.Name, &c.Description,
		&c.File, &status, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return domain.Contract{}, err
	}
	c.Status = domain.ContractStatus(status)
	return c, nil
}

func (r *contractsRepo) GetContractByID(ctx context.Context, id string) (domain.Contract, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+contractColumns+` FROM contracts WHERE id = ?`, id)
	c, err := scanContract(row)
	if err != nil {
		return domain.Contract{}, mapNotFound(err)
	}
	return c, nil
}

func (r *contractsRepo) CreateContract(ctx context.Context, c domain.Contract) error {
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = now
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO contracts (id, link_id, created_by_workspace_id, name, description, file, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.LinkID, c.CreatedByWorkspaceID, c.Name, c.Description,
		c.File, string(c.Status), c.CreatedAt, c.UpdatedAt,
	)
	return mapConstraint(err)
}

func (r *contractsRepo) UpdateContractFields(ctx context.Context, contractID, name, description, file string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE contracts SET name = ?, description = ?, file = ?, updated_at = ? WHERE id = ?`,
		name, description, file, time.Now().UTC(), contractID,
	)
	return requireRow(res, err)
}

func (r *contractsRepo) UpdateContractStatus(ctx context.Context, contractID string, status domain.ContractStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE contracts SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), contractID,
	)
	return requireRow(res, err)
}

func (r *contractsRepo) DeleteContract(ctx context.Context, contractID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM contracts WHERE id = ?`, contractID)
	return requireRow(res, err)
}

func (r *contractsRepo) ListContractsForWorkspace(ctx context.Context, workspaceID string) ([]domain.Contract, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT c.id, c.link_id, c.created_by_workspace_id, c.name, c.description, c.file, c.status, c.created_at, c.updated_at
		 FROM contracts c
		 JOIN links l ON l.id = c.link_id
		 WHERE l.provider_workspace_id = ? OR l.client_workspace_id = ?
		 ORDER BY c.created_at ASC, c.id ASC`,
		workspaceID, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *contractsRepo) CountContractsForLink(ctx context.Context, linkID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM contracts WHERE link_id = ?`, linkID).Scan(&n)
	return n, err
}

func (r *contractsRepo) CountContractMembershipsForUser(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM contract_members WHERE user_id = ?`, userID).Scan(&n)
	return n, err
}

func (r *contractsRepo) CountContractsForTenantSince(ctx context.Context, tenantID string, since time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM contracts
		 WHERE created_by_workspace_id IN (SELECT id FROM workspaces WHERE tenant_id = ?)
		   AND created_at >= ?`,
		tenantID, since).Scan(&n)
	return n, err
}

func (r *contractsRepo) CreateContractMember(ctx context.Context, m domain.ContractMember) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO contract_members (id, contract_id, user_id, role, sign_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.ContractID, m.UserID, string(m.Role),
		mapOptionalTime(m.SignDate), m.CreatedAt,
	)
	return mapConstraint(err)
}

func (r *contractsRepo) ListContractMembers(ctx context.Context, contractID string) ([]domain.ContractMember, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, contract_id, user_id, role, sign_date, created_at
		 FROM contract_members WHERE contract_id = ?
		 ORDER BY created_at ASC, id ASC`,
		contractID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ContractMember
	for rows.Next() {
		var m domain.ContractMember
		var role string
		var signDate sql.NullTime
		if err := rows.Scan(&m.ID, &m.ContractID, &m.UserID, &role, &signDate, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.Role = domain.ContractMemberRole(role)
		m.SignDate = mapNullTimePtr(signDate)
		out = append(out, m)
	}
	return out, rows.Err()
}

// SetMemberSignDate is conditional on the member not having signed yet, so
// a signature is recorded at most once.
func (r *contractsRepo) SetMemberSignDate(ctx context.Context, contractID, userID string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE contract_members SET sign_date = ?
		 WHERE contract_id = ? AND user_id = ? AND sign_date IS NULL`,
		at, contractID, userID,
	)
	return requireFresh(res, err)
}

func (r *contractsRepo) CreateContractEmployee(ctx context.Context, e domain.ContractEmployee) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO contract_employees (id, contract_id, employee_id, created_at)
		 VALUES (?, ?, ?, ?)`,
		e.ID, e.ContractID, e.EmployeeID, e.CreatedAt,
	)
	return mapConstraint(err)
}

func (r *contractsRepo) ListContractEmployees(ctx context.Context, contractID string) ([]domain.ContractEmployee, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, contract_id, employee_id, created_at
		 FROM contract_employees WHERE contract_id = ?
		 ORDER BY created_at ASC, id ASC`,
		contractID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ContractEmployee
	for rows.Next() {
		var e domain.ContractEmployee
		if err := rows.Scan(&e.ID, &e.ContractID, &e.EmployeeID, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *contractsRepo) AppendActivity(ctx context.Context, a domain.ContractActivity) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO contract_activity (id, contract_id, actor_id, activity_type, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		a.ID, a.ContractID, a.ActorID, string(a.Type), a.CreatedAt,
	)
	return mapConstraint(err)
}

func (r *contractsRepo) ListActivity(ctx context.Context, contractID string) ([]domain.ContractActivity, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, contract_id, actor_id, activity_type, created_at
		 FROM contract_activity WHERE contract_id = ?
		 ORDER BY created_at ASC, id ASC`,
		contractID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ContractActivity
	for rows.Next() {
		var a domain.ContractActivity
		var typ string
		if err := rows.Scan(&a.ID, &a.ContractID, &a.ActorID, &typ, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.Type = domain.ActivityType(typ)
		out = append(out, a)
	}
	return out, rows.Err()
}
