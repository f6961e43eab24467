package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/AlexandroMtzG/remix-saas-kit-sub000/internal/saas/domain"
)

type invitationsRepo struct {
	db dbtx
}

func scanInvitation(row interface{ Scan(...any) error }) (domain.Invitation, error) {
	var inv domain.Invitation
	var role string
	var redeemedAt sql.NullTime
	var redeemedBy sql.NullString
	err := row.Scan(
		&inv.ID, &inv.TenantID, &inv.Email, &inv.TokenHash, &role,
		&inv.CreatedBy, &inv.ExpiresAt, &redeemedAt, &redeemedBy,
		&inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return domain.Invitation{}, err
	}
	inv.Role, err = domain.ParseRole(role)
	if err != nil {
		return domain.Invitation{}, err
	}
	inv.RedeemedAt = mapNullTimePtr(redeemedAt)
	inv.RedeemedBy = mapNullString(redeemedBy)
	return inv, nil
}

func (r *invitationsRepo) CreateInvitation(ctx context.Context, inv domain.Invitation) error {
	now := time.Now().UTC()
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = now
	}
	if inv.UpdatedAt.IsZero() {
		inv.UpdatedAt = now
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO invitations (id, tenant_id, email, token_hash, role, created_by, expires_at, redeemed_at, redeemed_by, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, NULL, NULL, ?, ?)`,
		inv.ID, inv.TenantID, inv.Email, inv.TokenHash, inv.Role.String(),
		inv.CreatedBy, inv.ExpiresAt, inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		return mapConstraint(err)
	}
	for _, wsID := range inv.WorkspaceIDs {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO invitation_workspaces (invitation_id, workspace_id) VALUES (?, ?)`,
			inv.ID, wsID,
		)
		if err != nil {
			return mapConstraint(err)
		}
	}
	return nil
}

func (r *invitationsRepo) GetActiveInvitationByTokenHash(ctx context.Context, hash string) (domain.Invitation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, tenant_id, email, token_hash, role, created_by, expires_at, redeemed_at, redeemed_by, created_at, updated_at
		 FROM invitations
		 WHERE token_hash = ? AND redeemed_at IS NULL AND expires_at > ?`,
		hash, time.Now().UTC())
	inv, err := scanInvitation(row)
	if err != nil {
		return domain.Invitation{}, mapNotFound(err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT workspace_id FROM invitation_workspaces WHERE invitation_id = ? ORDER BY workspace_id ASC`,
		inv.ID)
	if err != nil {
		return domain.Invitation{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var wsID string
		if err := rows.Scan(&wsID); err != nil {
			return domain.Invitation{}, err
		}
		inv.WorkspaceIDs = append(inv.WorkspaceIDs, wsID)
	}
	return inv, rows.Err()
}

// MarkInvitationRedeemed is conditional on the invitation being unredeemed
// so a raced double-redemption has exactly one winner.
func (r *invitationsRepo) MarkInvitationRedeemed(ctx context.Context, invitationID, redeemedBy string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE invitations SET redeemed_at = ?, redeemed_by = ?, updated_at = ?
		 WHERE id = ? AND redeemed_at IS NULL`,
		at, redeemedBy, at, invitationID,
	)
	return requireFresh(res, err)
}

func (r *invitationsRepo) DeleteExpiredInvitations(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM invitations WHERE redeemed_at IS NULL AND expires_at <= ?`,
		time.Now().UTC(),
	)
	return err
}
