package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/AlexandroMtzG/remix-saas-kit-sub000/internal/saas/domain"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/internal/saas/store"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/pkg/cryptox"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/pkg/idx"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/pkg/slogx"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUserHasContracts means the account is a party to one or more
	// contracts, whose member rows must stay resolvable.
	ErrUserHasContracts = errors.New("account is a party to existing contracts")
)

const minPasswordLength = 8

// AuthService handles signup, login and credential changes.
type AuthService struct {
	Store store.Store
}

// SignupResult carries the ids the transport needs to mint a session.
type SignupResult struct {
	UserID      string
	TenantID    string
	WorkspaceID string
}

// Signup creates the user, their tenant, the tenant's first workspace, an
// OWNER membership and the founding assignment in one transaction. The
// creating user is always the tenant's first owner.
func (s *AuthService) Signup(ctx context.Context, email, password, firstName, lastName, tenantName, workspaceName string) (SignupResult, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate inputs.
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return SignupResult{}, validationErr("email", "a valid email is required")
	}
	if len(password) < minPasswordLength {
		return SignupResult{}, validationErrf("password", "password must be at least %d characters", minPasswordLength)
	}
	if strings.TrimSpace(tenantName) == "" {
		return SignupResult{}, validationErr("tenant_name", "organization name is required")
	}
	if strings.TrimSpace(workspaceName) == "" {
		workspaceName = tenantName
	}

	// 2. Hash the password.
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return SignupResult{}, err
	}

	user := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
		Type:         domain.UserTypeTenant,
	}
	tenant := domain.Tenant{
		ID:   idx.New().String(),
		Name: strings.TrimSpace(tenantName),
	}
	workspace := domain.Workspace{
		ID:       idx.New().String(),
		TenantID: tenant.ID,
		Name:     strings.TrimSpace(workspaceName),
		Kind:     domain.WorkspaceKindPrivate,
	}
	membership := domain.Membership{
		ID:       idx.New().String(),
		TenantID: tenant.ID,
		UserID:   user.ID,
		Role:     domain.RoleOwner,
	}
	assignment := domain.WorkspaceAssignment{
		ID:          idx.New().String(),
		WorkspaceID: workspace.ID,
		UserID:      user.ID,
	}

	// 3. Persist everything atomically.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, user); err != nil {
			return err
		}
		if err := tx.Tenants().CreateTenant(ctx, tenant); err != nil {
			return err
		}
		if err := tx.Workspaces().CreateWorkspace(ctx, workspace); err != nil {
			return err
		}
		if err := tx.Memberships().CreateMembership(ctx, membership); err != nil {
			return err
		}
		return tx.Assignments().CreateAssignment(ctx, assignment)
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return SignupResult{}, ErrEmailTaken
		}
		log.Error("signup transaction failed", slog.Any("error", err))
		return SignupResult{}, err
	}

	log.Info("user signed up",
		slog.String("user_id", user.ID),
		slog.String("tenant_id", tenant.ID),
	)

	return SignupResult{UserID: user.ID, TenantID: tenant.ID, WorkspaceID: workspace.ID}, nil
}

// Login verifies credentials and picks the user's first tenant and first
// assigned workspace for the initial session context.
func (s *AuthService) Login(ctx context.Context, email, password string) (SignupResult, error) {
	log := slogx.FromContext(ctx)

	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return SignupResult{}, ErrInvalidCredentials
		}
		return SignupResult{}, err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			log.Warn("failed login attempt", slog.String("user_id", user.ID))
			return SignupResult{}, ErrInvalidCredentials
		}
		return SignupResult{}, err
	}

	tenants, err := s.Store.Tenants().ListTenantsForUser(ctx, user.ID)
	if err != nil {
		return SignupResult{}, err
	}
	if len(tenants) == 0 {
		return SignupResult{}, ErrInvalidCredentials
	}

	result := SignupResult{UserID: user.ID, TenantID: tenants[0].ID}

	assignments, err := s.Store.Assignments().ListWorkspacesForMember(ctx, result.TenantID, user.ID)
	if err != nil {
		return SignupResult{}, err
	}
	if len(assignments) > 0 {
		result.WorkspaceID = assignments[0].ID
	}

	return result, nil
}

// UpdateProfile mutates the user's display fields.
func (s *AuthService) UpdateProfile(ctx context.Context, userID, firstName, lastName, avatar string) error {
	if strings.TrimSpace(firstName) == "" {
		return validationErr("first_name", "first name is required")
	}
	err := s.Store.Users().UpdateProfile(ctx, userID, firstName, lastName, avatar)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// ChangePassword verifies the current password before setting a new hash.
func (s *AuthService) ChangePassword(ctx context.Context, userID, current, updated string) error {
	if len(updated) < minPasswordLength {
		return validationErrf("password", "password must be at least %d characters", minPasswordLength)
	}

	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	if err := cryptox.VerifyPassword(current, user.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return ErrInvalidCredentials
		}
		return err
	}

	hash, err := cryptox.HashPassword(updated)
	if err != nil {
		return err
	}
	return s.Store.Users().UpdatePasswordHash(ctx, userID, hash)
}

// DeleteAccount removes the user and, through cascades, their memberships
// and assignments. Refused while the user is the sole owner of any tenant;
// ownership must be handed over or the tenant deleted first.
func (s *AuthService) DeleteAccount(ctx context.Context, userID string) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		parties, err := tx.Contracts().CountContractMembershipsForUser(ctx, userID)
		if err != nil {
			return err
		}
		if parties > 0 {
			return ErrUserHasContracts
		}

		tenants, err := tx.Tenants().ListTenantsForUser(ctx, userID)
		if err != nil {
			return err
		}

		for _, t := range tenants {
			m, err := tx.Memberships().GetMembership(ctx, t.ID, userID)
			if err != nil {
				return err
			}
			if m.Role != domain.RoleOwner {
				continue
			}
			owners, err := tx.Memberships().CountOwners(ctx, t.ID)
			if err != nil {
				return err
			}
			if owners <= 1 {
				return ErrSoleOwner
			}
		}

		return tx.Users().DeleteUser(ctx, userID)
	})
}
