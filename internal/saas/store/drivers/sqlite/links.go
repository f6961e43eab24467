package sqlite

import (
	"context"
	"time"

	"github.com/AlexandroMtzG/remix-saas-kit-sub000/internal/saas/domain"
)

type linksRepo struct {
	db dbtx
}

const linkColumns = `id, provider_workspace_id, client_workspace_id, created_by_workspace_id, created_by_user_id, status, created_at, updated_at`

func scanLink(row interface{ Scan(...any) error }) (domain.Link, error) {
	var l domain.Link
	var status string
	err := row.Scan(
		&l.ID, &l.ProviderWorkspaceID, &l.ClientWorkspaceID,
		&l.CreatedByWorkspaceID, &l.CreatedByUserID, &status,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return domain.Link{}, err
	}
	l.Status = domain.LinkStatus(status)
	return l, nil
}

func (r *linksRepo) GetLinkByID(ctx context.Context, id string) (domain.Link, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+linkColumns+` FROM links WHERE id = ?`, id)
	l, err := scanLink(row)
	if err != nil {
		return domain.Link{}, mapNotFound(err)
	}
	return l, nil
}

func (r *linksRepo) CreateLink(ctx context.Context, l domain.Link) error {
	now := time.Now().UTC()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	if l.UpdatedAt.IsZero() {
		l.UpdatedAt = now
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO links (id, provider_workspace_id, client_workspace_id, created_by_workspace_id, created_by_user_id, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.ProviderWorkspaceID, l.ClientWorkspaceID,
		l.CreatedByWorkspaceID, l.CreatedByUserID, string(l.Status),
		l.CreatedAt, l.UpdatedAt,
	)
	return mapConstraint(err)
}

// UpdateLinkStatus transitions from -> to, conditional on the row still
// being in the source state.
func (r *linksRepo) UpdateLinkStatus(ctx context.Context, linkID string, from, to domain.LinkStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE links SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		string(to), time.Now().UTC(), linkID, string(from),
	)
	return requireFresh(res, err)
}

func (r *linksRepo) DeleteLink(ctx context.Context, linkID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM links WHERE id = ?`, linkID)
	return requireRow(res, err)
}

func (r *linksRepo) ListLinksForTenant(ctx context.Context, tenantID string, status domain.LinkStatus) ([]domain.Link, error) {
	query := `SELECT l.id, l.provider_workspace_id, l.client_workspace_id, l.created_by_workspace_id, l.created_by_user_id, l.status, l.created_at, l.updated_at
	 FROM links l
	 WHERE (l.provider_workspace_id IN (SELECT id FROM workspaces WHERE tenant_id = ?)
	     OR l.client_workspace_id IN (SELECT id FROM workspaces WHERE tenant_id = ?))`
	args := []any{tenantID, tenantID}
	if status != "" {
		query += ` AND l.status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY l.created_at ASC, l.id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Link
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// ActivePairExists matches pending or linked rows tying the two workspaces
// in either direction.
func (r *linksRepo) ActivePairExists(ctx context.Context, workspaceA, workspaceB string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM links
		 WHERE status IN (?, ?)
		   AND ((provider_workspace_id = ? AND client_workspace_id = ?)
		     OR (provider_workspace_id = ? AND client_workspace_id = ?))`,
		string(domain.LinkPending), string(domain.LinkLinked),
		workspaceA, workspaceB, workspaceB, workspaceA).Scan(&n)
	return n > 0, err
}
