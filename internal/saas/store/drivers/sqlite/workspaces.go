package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/AlexandroMtzG/remix-saas-kit-sub000/internal/saas/domain"
)

type workspacesRepo struct {
	db dbtx
}

const workspaceColumns = `id, tenant_id, name, kind, business_main_activity, registration_number, registration_date, created_at, updated_at`

func scanWorkspace(row interface{ Scan(...any) error }) (domain.Workspace, error) {
	var w domain.Workspace
	var kind int
	var regDate sql.NullTime
	err := row.Scan(
		&w.ID, &w.TenantID, &w.Name, &kind, &w.BusinessMainActivity,
		&w.RegistrationNumber, &regDate, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		return domain.Workspace{}, err
	}
	w.Kind = domain.WorkspaceKind(kind)
	w.RegistrationDate = mapNullTimePtr(regDate)
	return w, nil
}

func (r *workspacesRepo) GetWorkspaceByID(ctx context.Context, id string) (domain.Workspace, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+workspaceColumns+` FROM workspaces WHERE id = ?`, id)
	w, err := scanWorkspace(row)
	if err != nil {
		return domain.Workspace{}, mapNotFound(err)
	}
	return w, nil
}

func (r *workspacesRepo) CreateWorkspace(ctx context.Context, w domain.Workspace) error {
	now := time.Now().UTC()
	if w.CreatedAt.IsZero() {
		w.CreatedAt = now
	}
	if w.UpdatedAt.IsZero() {
		w.UpdatedAt = now
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO workspaces (id, tenant_id, name, kind, business_main_activity, registration_number, registration_date, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		w.ID, w.TenantID, w.Name, int(w.Kind), w.BusinessMainActivity,
		w.RegistrationNumber, mapOptionalTime(w.RegistrationDate), w.CreatedAt, w.UpdatedAt,
	)
	return mapConstraint(err)
}

func (r *workspacesRepo) UpdateWorkspace(ctx context.Context, w domain.Workspace) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE workspaces
		 SET name = ?, kind = ?, business_main_activity = ?, registration_number = ?, registration_date = ?, updated_at = ?
		 WHERE id = ?`,
		w.Name, int(w.Kind), w.BusinessMainActivity, w.RegistrationNumber,
		mapOptionalTime(w.RegistrationDate), time.Now().UTC(), w.ID,
	)
	return requireRow(res, err)
}

func (r *workspacesRepo) DeleteWorkspace(ctx context.Context, workspaceID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM workspaces WHERE id = ?`, workspaceID)
	return requireRow(res, err)
}

func (r *workspacesRepo) ListWorkspacesForTenant(ctx context.Context, tenantID string) ([]domain.Workspace, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+workspaceColumns+` FROM workspaces WHERE tenant_id = ? ORDER BY created_at ASC, id ASC`,
		tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectWorkspaces(rows)
}

func (r *workspacesRepo) CountWorkspaces(ctx context.Context, tenantID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM workspaces WHERE tenant_id = ?`, tenantID).Scan(&n)
	return n, err
}

func collectWorkspaces(rows *sql.Rows) ([]domain.Workspace, error) {
	var out []domain.Workspace
	for rows.Next() {
		w, err := scanWorkspace(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}
