package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/AlexandroMtzG/remix-saas-kit-sub000/internal/saas/domain"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/internal/saas/store"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/pkg/idx"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/pkg/slogx"
)

var (
	ErrWorkspaceNotFound = errors.New("workspace not found")
	// ErrWorkspaceInUse means deleting the workspace would strand members
	// whose only assignment it is, or orphan its links.
	ErrWorkspaceInUse = errors.New("workspace still has sole-assigned members or links")
)

// WorkspaceService manages a tenant's workspaces.
type WorkspaceService struct {
	Store store.Store
}

// WorkspaceFields are the caller-settable attributes.
type WorkspaceFields struct {
	Name                 string
	Kind                 domain.WorkspaceKind
	BusinessMainActivity string
	RegistrationNumber   string
	RegistrationDate     *time.Time
}

// CreateWorkspace adds a workspace under the tenant, gated by the
// maxWorkspaces quota. The creator is assigned to it so the workspace is
// reachable immediately.
func (s *WorkspaceService) CreateWorkspace(ctx context.Context, rc ResolvedContext, fields WorkspaceFields) (domain.Workspace, error) {
	log := slogx.FromContext(ctx)

	if !rc.Membership.Role.AtLeast(domain.RoleAdmin) {
		return domain.Workspace{}, ErrUnauthorized
	}
	if strings.TrimSpace(fields.Name) == "" {
		return domain.Workspace{}, validationErr("name", "workspace name is required")
	}

	count, err := s.Store.Workspaces().CountWorkspaces(ctx, rc.Tenant.ID)
	if err != nil {
		return domain.Workspace{}, err
	}
	if !quotaAllows(rc.Entitlement, count, domain.QuotaWorkspaces) {
		return domain.Workspace{}, ErrQuotaExceeded
	}

	ws := domain.Workspace{
		ID:                   idx.New().String(),
		TenantID:             rc.Tenant.ID,
		Name:                 strings.TrimSpace(fields.Name),
		Kind:                 fields.Kind,
		BusinessMainActivity: fields.BusinessMainActivity,
		RegistrationNumber:   fields.RegistrationNumber,
		RegistrationDate:     fields.RegistrationDate,
	}
	assignment := domain.WorkspaceAssignment{
		ID:          idx.New().String(),
		WorkspaceID: ws.ID,
		UserID:      rc.User.ID,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Workspaces().CreateWorkspace(ctx, ws); err != nil {
			return err
		}
		return tx.Assignments().CreateAssignment(ctx, assignment)
	})
	if err != nil {
		return domain.Workspace{}, err
	}

	log.Info("workspace created",
		slog.String("workspace_id", ws.ID),
		slog.String("tenant_id", rc.Tenant.ID),
	)
	return ws, nil
}

// UpdateWorkspace mutates a workspace's attributes.
func (s *WorkspaceService) UpdateWorkspace(ctx context.Context, rc ResolvedContext, workspaceID string, fields WorkspaceFields) error {
	if !rc.Membership.Role.AtLeast(domain.RoleAdmin) {
		return ErrUnauthorized
	}
	if strings.TrimSpace(fields.Name) == "" {
		return validationErr("name", "workspace name is required")
	}

	ws, err := s.Store.Workspaces().GetWorkspaceByID(ctx, workspaceID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrWorkspaceNotFound
		}
		return err
	}
	if ws.TenantID != rc.Tenant.ID {
		return ErrWorkspaceNotFound
	}

	ws.Name = strings.TrimSpace(fields.Name)
	ws.Kind = fields.Kind
	ws.BusinessMainActivity = fields.BusinessMainActivity
	ws.RegistrationNumber = fields.RegistrationNumber
	ws.RegistrationDate = fields.RegistrationDate

	return s.Store.Workspaces().UpdateWorkspace(ctx, ws)
}

// DeleteWorkspace removes a workspace. Rejected while any member's sole
// assignment is this workspace or any link still references it.
func (s *WorkspaceService) DeleteWorkspace(ctx context.Context, rc ResolvedContext, workspaceID string) error {
	if !rc.Membership.Role.AtLeast(domain.RoleAdmin) {
		return ErrUnauthorized
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		ws, err := tx.Workspaces().GetWorkspaceByID(ctx, workspaceID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrWorkspaceNotFound
			}
			return err
		}
		if ws.TenantID != rc.Tenant.ID {
			return ErrWorkspaceNotFound
		}

		stranded, err := tx.Assignments().CountSoleAssignments(ctx, workspaceID)
		if err != nil {
			return err
		}
		if stranded > 0 {
			return ErrWorkspaceInUse
		}

		links, err := tx.Links().ListLinksForTenant(ctx, rc.Tenant.ID, "")
		if err != nil {
			return err
		}
		for _, l := range links {
			if l.Involves(workspaceID) {
				return ErrWorkspaceInUse
			}
		}

		return tx.Workspaces().DeleteWorkspace(ctx, workspaceID)
	})
}

// ListForMember returns the workspaces the user is assigned to within the
// tenant.
func (s *WorkspaceService) ListForMember(ctx context.Context, rc ResolvedContext) ([]domain.Workspace, error) {
	return s.Store.Assignments().ListWorkspacesForMember(ctx, rc.Tenant.ID, rc.User.ID)
}

// ListForTenant returns every workspace of the tenant.
func (s *WorkspaceService) ListForTenant(ctx context.Context, rc ResolvedContext) ([]domain.Workspace, error) {
	return s.Store.Workspaces().ListWorkspacesForTenant(ctx, rc.Tenant.ID)
}
