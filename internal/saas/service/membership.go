package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/AlexandroMtzG/remix-saas-kit-sub000/internal/saas/domain"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/internal/saas/notify"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/internal/saas/store"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/pkg/cryptox"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/pkg/idx"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/pkg/slogx"
)

var (
	ErrDuplicateMember = errors.New("user is already a member of this tenant")
	ErrQuotaExceeded   = errors.New("plan quota exceeded")
	ErrInviteNotFound  = errors.New("invitation not found, expired or already redeemed")
	ErrSoleOwner       = errors.New("tenant must retain at least one owner")
	ErrMemberNotFound  = errors.New("member not found")
	ErrLastAssignment  = errors.New("member must keep at least one workspace")
)

// DefaultInviteTTL bounds how long an unredeemed invitation stays valid.
const DefaultInviteTTL = 7 * 24 * time.Hour

// MembershipService manages tenant memberships, workspace assignments and
// email invitations.
type MembershipService struct {
	Store      store.Store
	Dispatcher *notify.Dispatcher
	InviteTTL  time.Duration
}

func (s *MembershipService) inviteTTL() time.Duration {
	if s.InviteTTL <= 0 {
		return DefaultInviteTTL
	}
	return s.InviteTTL
}

// InviteMember creates an invitation for email and dispatches it. Returns
// the opaque invite token; only its fingerprint is stored.
func (s *MembershipService) InviteMember(ctx context.Context, rc ResolvedContext, email string, role domain.Role, workspaceIDs []string) (string, error) {
	log := slogx.FromContext(ctx)

	// 1. Role gate: owner/admin only; only an owner may invite an owner.
	if !rc.Membership.Role.AtLeast(domain.RoleAdmin) {
		return "", ErrUnauthorized
	}
	if !canGrantRole(rc.Membership.Role, role) {
		return "", ErrUnauthorized
	}

	// 2. Validate the proposed assignment set is non-empty and belongs to
	// the tenant.
	if len(workspaceIDs) == 0 {
		return "", validationErr("workspace_ids", "at least one workspace is required")
	}
	for _, wsID := range workspaceIDs {
		ws, err := s.Store.Workspaces().GetWorkspaceByID(ctx, wsID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return "", validationErrf("workspace_ids", "workspace %s does not exist", wsID)
			}
			return "", err
		}
		if ws.TenantID != rc.Tenant.ID {
			return "", ErrUnauthorized
		}
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return "", validationErr("email", "a valid email is required")
	}

	// 3. Duplicate member check.
	if existing, err := s.Store.Users().GetUserByEmail(ctx, email); err == nil {
		if _, err := s.Store.Memberships().GetMembership(ctx, rc.Tenant.ID, existing.ID); err == nil {
			return "", ErrDuplicateMember
		} else if !errors.Is(err, store.ErrNotFound) {
			return "", err
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		return "", err
	}

	// 4. User quota, fail-closed.
	count, err := s.Store.Memberships().CountMembers(ctx, rc.Tenant.ID)
	if err != nil {
		return "", err
	}
	if !quotaAllows(rc.Entitlement, count, domain.QuotaUsers) {
		return "", ErrQuotaExceeded
	}

	// 5. Generate and fingerprint the invite token.
	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		log.Error("failed to generate invite token", slog.Any("error", err))
		return "", err
	}

	inv := domain.Invitation{
		ID:           idx.New().String(),
		TenantID:     rc.Tenant.ID,
		Email:        email,
		TokenHash:    cryptox.FingerprintToken(token),
		Role:         role,
		WorkspaceIDs: workspaceIDs,
		CreatedBy:    rc.User.ID,
		ExpiresAt:    time.Now().UTC().Add(s.inviteTTL()),
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		return tx.Invitations().CreateInvitation(ctx, inv)
	})
	if err != nil {
		return "", err
	}

	// 6. Dispatch the invitation email. Best effort; the invitation stands
	// even if delivery fails.
	s.Dispatcher.Enqueue(notify.Event{
		Kind:    "invitation.created",
		Subject: inv.ID,
		ActorID: rc.User.ID,
		Message: fmt.Sprintf("%s invited %s to join %s", rc.User.Email, email, rc.Tenant.Name),
	})

	log.Info("invitation created",
		slog.String("invitation_id", inv.ID),
		slog.String("tenant_id", rc.Tenant.ID),
		slog.String("role", role.String()),
	)

	return token, nil
}

// RedeemRequest describes who is consuming an invitation. Either UserID
// references an existing account, or the new-account fields are set and an
// account is created under the invitation's email.
type RedeemRequest struct {
	UserID string

	Password  string
	FirstName string
	LastName  string
}

// RedeemInvitation consumes an invitation exactly once, producing one
// Membership plus one WorkspaceAssignment per proposed workspace. A
// redeemed or expired token is a not-found failure, not a crash.
func (s *MembershipService) RedeemInvitation(ctx context.Context, token string, req RedeemRequest) (SignupResult, error) {
	log := slogx.FromContext(ctx)

	inv, err := s.Store.Invitations().GetActiveInvitationByTokenHash(ctx, cryptox.FingerprintToken(token))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return SignupResult{}, ErrInviteNotFound
		}
		return SignupResult{}, err
	}

	// Resolve or build the redeeming user outside the tx; creation happens
	// inside it.
	var user domain.User
	createUser := false
	if req.UserID != "" {
		user, err = s.Store.Users().GetUserByID(ctx, req.UserID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return SignupResult{}, ErrNoSession
			}
			return SignupResult{}, err
		}
	} else {
		if len(req.Password) < minPasswordLength {
			return SignupResult{}, validationErrf("password", "password must be at least %d characters", minPasswordLength)
		}
		hash, err := cryptox.HashPassword(req.Password)
		if err != nil {
			return SignupResult{}, err
		}
		user = domain.User{
			ID:           idx.New().String(),
			Email:        inv.Email,
			PasswordHash: hash,
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			Type:         domain.UserTypeTenant,
		}
		createUser = true
	}

	now := time.Now().UTC()
	membership := domain.Membership{
		ID:       idx.New().String(),
		TenantID: inv.TenantID,
		UserID:   user.ID,
		Role:     inv.Role,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		// Consuming the invitation first makes double redemption lose on
		// the conditional update instead of on a membership conflict.
		if err := tx.Invitations().MarkInvitationRedeemed(ctx, inv.ID, user.ID, now); err != nil {
			return err
		}
		if createUser {
			if err := tx.Users().CreateUser(ctx, user); err != nil {
				return err
			}
		}
		if err := tx.Memberships().CreateMembership(ctx, membership); err != nil {
			return err
		}
		for _, wsID := range inv.WorkspaceIDs {
			a := domain.WorkspaceAssignment{
				ID:          idx.New().String(),
				WorkspaceID: wsID,
				UserID:      user.ID,
			}
			if err := tx.Assignments().CreateAssignment(ctx, a); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrStale) {
			return SignupResult{}, ErrInviteNotFound
		}
		if errors.Is(err, store.ErrAlreadyExists) {
			return SignupResult{}, ErrDuplicateMember
		}
		return SignupResult{}, err
	}

	log.Info("invitation redeemed",
		slog.String("invitation_id", inv.ID),
		slog.String("user_id", user.ID),
		slog.String("tenant_id", inv.TenantID),
	)

	return SignupResult{
		UserID:      user.ID,
		TenantID:    inv.TenantID,
		WorkspaceID: inv.WorkspaceIDs[0],
	}, nil
}

// UpdateMemberRole changes a membership's role. The sole-owner guard
// re-reads the owner count inside the mutating transaction.
func (s *MembershipService) UpdateMemberRole(ctx context.Context, rc ResolvedContext, membershipID string, newRole domain.Role) error {
	if !rc.Membership.Role.AtLeast(domain.RoleAdmin) {
		return ErrUnauthorized
	}
	if !canGrantRole(rc.Membership.Role, newRole) {
		return ErrUnauthorized
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		target, err := tx.Memberships().GetMembershipByID(ctx, membershipID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrMemberNotFound
			}
			return err
		}
		if target.TenantID != rc.Tenant.ID {
			return ErrMemberNotFound
		}
		// Demoting an owner also needs owner authority.
		if target.Role == domain.RoleOwner && rc.Membership.Role != domain.RoleOwner {
			return ErrUnauthorized
		}
		if target.Role == newRole {
			return nil
		}

		ownerCount, err := tx.Memberships().CountOwners(ctx, rc.Tenant.ID)
		if err != nil {
			return err
		}
		losesOwner := newRole != domain.RoleOwner
		if !canMutateMembership(target, losesOwner, ownerCount) {
			return ErrSoleOwner
		}

		return tx.Memberships().UpdateMembershipRole(ctx, membershipID, newRole)
	})
}

// RemoveMember deletes the membership and cascades the member's workspace
// assignments within the tenant.
func (s *MembershipService) RemoveMember(ctx context.Context, rc ResolvedContext, membershipID string) error {
	log := slogx.FromContext(ctx)

	if !rc.Membership.Role.AtLeast(domain.RoleAdmin) {
		return ErrUnauthorized
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		target, err := tx.Memberships().GetMembershipByID(ctx, membershipID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrMemberNotFound
			}
			return err
		}
		if target.TenantID != rc.Tenant.ID {
			return ErrMemberNotFound
		}
		if target.Role == domain.RoleOwner && rc.Membership.Role != domain.RoleOwner {
			return ErrUnauthorized
		}

		ownerCount, err := tx.Memberships().CountOwners(ctx, rc.Tenant.ID)
		if err != nil {
			return err
		}
		if !canMutateMembership(target, true, ownerCount) {
			return ErrSoleOwner
		}

		if err := tx.Assignments().DeleteForMember(ctx, rc.Tenant.ID, target.UserID); err != nil {
			return err
		}
		return tx.Memberships().DeleteMembership(ctx, membershipID)
	})
	if err == nil {
		log.Info("member removed",
			slog.String("membership_id", membershipID),
			slog.String("tenant_id", rc.Tenant.ID),
		)
	}
	return err
}

// ReassignWorkspaces atomically replaces a member's assignment set within
// the tenant. The new set must be non-empty so no member is ever stranded.
func (s *MembershipService) ReassignWorkspaces(ctx context.Context, rc ResolvedContext, membershipID string, workspaceIDs []string) error {
	if !rc.Membership.Role.AtLeast(domain.RoleAdmin) {
		return ErrUnauthorized
	}
	if len(workspaceIDs) == 0 {
		return ErrLastAssignment
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		target, err := tx.Memberships().GetMembershipByID(ctx, membershipID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrMemberNotFound
			}
			return err
		}
		if target.TenantID != rc.Tenant.ID {
			return ErrMemberNotFound
		}

		for _, wsID := range workspaceIDs {
			ws, err := tx.Workspaces().GetWorkspaceByID(ctx, wsID)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return validationErrf("workspace_ids", "workspace %s does not exist", wsID)
				}
				return err
			}
			if ws.TenantID != rc.Tenant.ID {
				return ErrUnauthorized
			}
		}

		if err := tx.Assignments().DeleteForMember(ctx, rc.Tenant.ID, target.UserID); err != nil {
			return err
		}
		for _, wsID := range workspaceIDs {
			a := domain.WorkspaceAssignment{
				ID:          idx.New().String(),
				WorkspaceID: wsID,
				UserID:      target.UserID,
			}
			if err := tx.Assignments().CreateAssignment(ctx, a); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListMembers returns the tenant's memberships.
func (s *MembershipService) ListMembers(ctx context.Context, rc ResolvedContext) ([]domain.Membership, error) {
	return s.Store.Memberships().ListMembershipsForTenant(ctx, rc.Tenant.ID)
}
