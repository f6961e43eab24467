package sqlite

import (
	"context"
	"time"

	"github.com/AlexandroMtzG/remix-saas-kit-sub000/internal/saas/domain"
)

type assignmentsRepo struct {
	db dbtx
}

func (r *assignmentsRepo) CreateAssignment(ctx context.Context, a domain.WorkspaceAssignment) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO workspace_assignments (id, workspace_id, user_id, created_at)
		 VALUES (?, ?, ?, ?)`,
		a.ID, a.WorkspaceID, a.UserID, a.CreatedAt,
	)
	return mapConstraint(err)
}

func (r *assignmentsRepo) Exists(ctx context.Context, workspaceID, userID string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM workspace_assignments WHERE workspace_id = ? AND user_id = ?`,
		workspaceID, userID).Scan(&n)
	return n > 0, err
}

func (r *assignmentsRepo) ListWorkspacesForMember(ctx context.Context, tenantID, userID string) ([]domain.Workspace, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT w.id, w.tenant_id, w.name, w.kind, w.business_main_activity, w.registration_number, w.registration_date, w.created_at, w.updated_at
		 FROM workspaces w
		 JOIN workspace_assignments a ON a.workspace_id = w.id
		 WHERE w.tenant_id = ? AND a.user_id = ?
		 ORDER BY w.created_at ASC, w.id ASC`,
		tenantID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectWorkspaces(rows)
}

func (r *assignmentsRepo) DeleteForMember(ctx context.Context, tenantID, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM workspace_assignments
		 WHERE user_id = ?
		   AND workspace_id IN (SELECT id FROM workspaces WHERE tenant_id = ?)`,
		userID, tenantID,
	)
	return err
}

// CountSoleAssignments counts users whose only assignment within the
// workspace's tenant is this workspace.
func (r *assignmentsRepo) CountSoleAssignments(ctx context.Context, workspaceID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*)
		 FROM workspace_assignments a
		 WHERE a.workspace_id = ?
		   AND NOT EXISTS (
		     SELECT 1
		     FROM workspace_assignments a2
		     JOIN workspaces w2 ON w2.id = a2.workspace_id
		     WHERE a2.user_id = a.user_id
		       AND a2.workspace_id != a.workspace_id
		       AND w2.tenant_id = (SELECT tenant_id FROM workspaces WHERE id = ?)
		   )`,
		workspaceID, workspaceID).Scan(&n)
	return n, err
}
