package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/AlexandroMtzG/remix-saas-kit-sub000/internal/saas/domain"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/internal/saas/notify"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/internal/saas/store"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/pkg/idx"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/pkg/slogx"
)

var (
	ErrLinkNotFound     = errors.New("link not found")
	ErrSameTenant       = errors.New("linked workspaces must belong to different tenants")
	ErrDuplicateLink    = errors.New("an active link already ties these workspaces")
	ErrLinkHasContracts = errors.New("link has contracts and cannot be deleted")
)

// LinkService drives the bilateral workspace relationship state machine.
// PENDING is initial; LINKED and REJECTED are terminal.
type LinkService struct {
	Store      store.Store
	Dispatcher *notify.Dispatcher
}

// ProposeLink creates a PENDING link between the actor's workspace and a
// counterparty workspace in another tenant. The actor's side is recorded
// as the creator; only the other side may respond.
func (s *LinkService) ProposeLink(ctx context.Context, rc ResolvedContext, providerWorkspaceID, clientWorkspaceID string) (domain.Link, error) {
	log := slogx.FromContext(ctx)

	// 1. The actor must be owner/admin acting from one of the two sides.
	if !rc.Membership.Role.AtLeast(domain.RoleAdmin) {
		return domain.Link{}, ErrUnauthorized
	}
	if !rc.HasWorkspace() {
		return domain.Link{}, ErrUnauthorized
	}
	if rc.Workspace.ID != providerWorkspaceID && rc.Workspace.ID != clientWorkspaceID {
		return domain.Link{}, ErrUnauthorized
	}
	if providerWorkspaceID == clientWorkspaceID {
		return domain.Link{}, validationErr("client_workspace_id", "a workspace cannot link to itself")
	}

	// 2. Both workspaces must exist and belong to different tenants.
	provider, err := s.Store.Workspaces().GetWorkspaceByID(ctx, providerWorkspaceID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Link{}, validationErr("provider_workspace_id", "workspace does not exist")
		}
		return domain.Link{}, err
	}
	client, err := s.Store.Workspaces().GetWorkspaceByID(ctx, clientWorkspaceID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Link{}, validationErr("client_workspace_id", "workspace does not exist")
		}
		return domain.Link{}, err
	}
	if provider.TenantID == client.TenantID {
		return domain.Link{}, ErrSameTenant
	}

	// 3. Reject a duplicate pending/linked pair in either direction.
	exists, err := s.Store.Links().ActivePairExists(ctx, providerWorkspaceID, clientWorkspaceID)
	if err != nil {
		return domain.Link{}, err
	}
	if exists {
		return domain.Link{}, ErrDuplicateLink
	}

	link := domain.Link{
		ID:                   idx.New().String(),
		ProviderWorkspaceID:  providerWorkspaceID,
		ClientWorkspaceID:    clientWorkspaceID,
		CreatedByWorkspaceID: rc.Workspace.ID,
		CreatedByUserID:      rc.User.ID,
		Status:               domain.LinkPending,
	}
	if err := s.Store.Links().CreateLink(ctx, link); err != nil {
		return domain.Link{}, err
	}

	s.Dispatcher.Enqueue(notify.Event{
		Kind:    "link.proposed",
		Subject: link.ID,
		ActorID: rc.User.ID,
		Message: fmt.Sprintf("%s proposed a link between %s and %s", rc.User.Email, provider.Name, client.Name),
	})

	log.Info("link proposed",
		slog.String("link_id", link.ID),
		slog.String("provider_workspace_id", providerWorkspaceID),
		slog.String("client_workspace_id", clientWorkspaceID),
	)

	return link, nil
}

// RespondToLink accepts or rejects a PENDING link. Only owner/admins of
// the non-creating side may respond. The status column is the concurrency
// guard: of two concurrent responses exactly one wins, the loser observes
// ErrStaleState.
func (s *LinkService) RespondToLink(ctx context.Context, rc ResolvedContext, linkID string, accept bool) error {
	log := slogx.FromContext(ctx)

	link, err := s.Store.Links().GetLinkByID(ctx, linkID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrLinkNotFound
		}
		return err
	}

	if !rc.HasWorkspace() || !canActOnLink(rc.Workspace.ID, rc.Membership.Role, link, LinkActionRespond) {
		return ErrUnauthorized
	}
	if link.Status != domain.LinkPending {
		return ErrStaleState
	}

	to := domain.LinkRejected
	outcome := "rejected"
	if accept {
		to = domain.LinkLinked
		outcome = "accepted"
	}

	if err := s.Store.Links().UpdateLinkStatus(ctx, linkID, domain.LinkPending, to); err != nil {
		if errors.Is(err, store.ErrStale) {
			return ErrStaleState
		}
		return err
	}

	// Notify the creator side of the outcome.
	s.Dispatcher.Enqueue(notify.Event{
		Kind:         "link." + outcome,
		RecipientIDs: []string{link.CreatedByUserID},
		Subject:      link.ID,
		ActorID:      rc.User.ID,
		Message:      fmt.Sprintf("your link proposal was %s", outcome),
	})

	log.Info("link responded",
		slog.String("link_id", linkID),
		slog.String("status", string(to)),
	)
	return nil
}

// DeleteLink removes a PENDING or LINKED link. Owner/admins of either side
// may delete, but a link with contracts is a hard dependency and must stay.
// A rejected proposal is terminal and stays as record.
func (s *LinkService) DeleteLink(ctx context.Context, rc ResolvedContext, linkID string) error {
	link, err := s.Store.Links().GetLinkByID(ctx, linkID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrLinkNotFound
		}
		return err
	}

	if !rc.HasWorkspace() || !canActOnLink(rc.Workspace.ID, rc.Membership.Role, link, LinkActionDelete) {
		return ErrUnauthorized
	}
	if link.Status != domain.LinkPending && link.Status != domain.LinkLinked {
		return ErrStaleState
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		count, err := tx.Contracts().CountContractsForLink(ctx, linkID)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrLinkHasContracts
		}
		return tx.Links().DeleteLink(ctx, linkID)
	})
}

// GetLink fetches a link the actor's workspace is a side of.
func (s *LinkService) GetLink(ctx context.Context, rc ResolvedContext, linkID string) (domain.Link, error) {
	link, err := s.Store.Links().GetLinkByID(ctx, linkID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Link{}, ErrLinkNotFound
		}
		return domain.Link{}, err
	}
	if !rc.HasWorkspace() || !link.Involves(rc.Workspace.ID) {
		return domain.Link{}, ErrLinkNotFound
	}
	return link, nil
}

// ListForTenant returns the tenant's links, optionally filtered by status.
func (s *LinkService) ListForTenant(ctx context.Context, rc ResolvedContext, status domain.LinkStatus) ([]domain.Link, error) {
	return s.Store.Links().ListLinksForTenant(ctx, rc.Tenant.ID, status)
}
