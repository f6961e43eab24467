package service

import (
	"context"
	"testing"

	"github.com/AlexandroMtzG/remix-saas-kit-sub000/internal/saas/domain"
	"github.com/stretchr/testify/require"
)

func TestProposeLink(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	d := newTestDispatcher(t)
	svc := &LinkService{Store: st, Dispatcher: d}

	provider := seedTenant(t, ctx, st, "Provider Co", "owner@provider.test")
	client := seedTenant(t, ctx, st, "Client Co", "owner@client.test")

	t.Run("workspaces of the same tenant cannot link", func(t *testing.T) {
		ws := &WorkspaceService{Store: st}
		second, err := ws.CreateWorkspace(ctx, provider.rc(generousPlan), WorkspaceFields{Name: "Branch"})
		require.NoError(t, err)

		_, err = svc.ProposeLink(ctx, provider.rc(generousPlan), provider.Workspace.ID, second.ID)
		require.ErrorIs(t, err, ErrSameTenant)
	})

	t.Run("member role cannot propose", func(t *testing.T) {
		memberUser, memberMembership := seedMember(t, ctx, st, provider, "member@provider.test", domain.RoleMember)
		memberRC := ResolvedContext{
			User:        memberUser,
			Tenant:      provider.Tenant,
			Membership:  memberMembership,
			Workspace:   provider.Workspace,
			Entitlement: generousPlan,
		}

		_, err := svc.ProposeLink(ctx, memberRC, provider.Workspace.ID, client.Workspace.ID)
		require.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("proposal lands pending with the creator side recorded", func(t *testing.T) {
		link, err := svc.ProposeLink(ctx, provider.rc(generousPlan), provider.Workspace.ID, client.Workspace.ID)
		require.NoError(t, err)
		require.Equal(t, domain.LinkPending, link.Status)
		require.Equal(t, provider.Workspace.ID, link.CreatedByWorkspaceID)
		require.Equal(t, provider.Owner.ID, link.CreatedByUserID)
	})

	t.Run("duplicate active pair is rejected in either direction", func(t *testing.T) {
		_, err := svc.ProposeLink(ctx, provider.rc(generousPlan), provider.Workspace.ID, client.Workspace.ID)
		require.ErrorIs(t, err, ErrDuplicateLink)

		_, err = svc.ProposeLink(ctx, client.rc(generousPlan), client.Workspace.ID, provider.Workspace.ID)
		require.ErrorIs(t, err, ErrDuplicateLink)
	})
}

func TestRespondToLink(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	d := newTestDispatcher(t)
	svc := &LinkService{Store: st, Dispatcher: d}

	provider := seedTenant(t, ctx, st, "Provider Co", "owner@provider.test")
	client := seedTenant(t, ctx, st, "Client Co", "owner@client.test")

	link, err := svc.ProposeLink(ctx, provider.rc(generousPlan), provider.Workspace.ID, client.Workspace.ID)
	require.NoError(t, err)

	t.Run("creator side may not respond", func(t *testing.T) {
		err := svc.RespondToLink(ctx, provider.rc(generousPlan), link.ID, true)
		require.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("outsider may not respond", func(t *testing.T) {
		outsider := seedTenant(t, ctx, st, "Other Co", "owner@other.test")
		err := svc.RespondToLink(ctx, outsider.rc(generousPlan), link.ID, true)
		require.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("counterparty accepts", func(t *testing.T) {
		require.NoError(t, svc.RespondToLink(ctx, client.rc(generousPlan), link.ID, true))

		got, err := st.Links().GetLinkByID(ctx, link.ID)
		require.NoError(t, err)
		require.Equal(t, domain.LinkLinked, got.Status)
	})

	t.Run("terminal state never transitions again", func(t *testing.T) {
		err := svc.RespondToLink(ctx, client.rc(generousPlan), link.ID, false)
		require.ErrorIs(t, err, ErrStaleState)

		got, err := st.Links().GetLinkByID(ctx, link.ID)
		require.NoError(t, err)
		require.Equal(t, domain.LinkLinked, got.Status)
	})

	t.Run("rejection is terminal too", func(t *testing.T) {
		p2 := seedTenant(t, ctx, st, "Provider Two", "owner@p2.test")
		l2, err := svc.ProposeLink(ctx, p2.rc(generousPlan), p2.Workspace.ID, client.Workspace.ID)
		require.NoError(t, err)

		require.NoError(t, svc.RespondToLink(ctx, client.rc(generousPlan), l2.ID, false))

		err = svc.RespondToLink(ctx, client.rc(generousPlan), l2.ID, true)
		require.ErrorIs(t, err, ErrStaleState)

		got, err := st.Links().GetLinkByID(ctx, l2.ID)
		require.NoError(t, err)
		require.Equal(t, domain.LinkRejected, got.Status)
	})
}

func TestDeleteLink(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	d := newTestDispatcher(t)
	links := &LinkService{Store: st, Dispatcher: d}
	contracts := &ContractService{Store: st, Dispatcher: d}

	provider, client, link := seedLinkedPair(t, ctx, st, d)

	t.Run("either side may delete while no contracts exist", func(t *testing.T) {
		// Delete from the client side, then re-establish for the next case.
		require.NoError(t, links.DeleteLink(ctx, client.rc(generousPlan), link.ID))

		link2, err := links.ProposeLink(ctx, provider.rc(generousPlan), provider.Workspace.ID, client.Workspace.ID)
		require.NoError(t, err)
		require.NoError(t, links.RespondToLink(ctx, client.rc(generousPlan), link2.ID, true))
		link = link2
	})

	t.Run("a link with contracts is a hard dependency", func(t *testing.T) {
		_, err := contracts.CreateContract(ctx, provider.rc(generousPlan), link.ID,
			ContractFields{Name: "MSA", Description: "Master services agreement", File: "doc-ref"},
			[]MemberInput{
				{UserID: provider.Owner.ID, Role: domain.ContractSignatory},
				{UserID: client.Owner.ID, Role: domain.ContractSignatory},
			}, nil)
		require.NoError(t, err)

		err = links.DeleteLink(ctx, provider.rc(generousPlan), link.ID)
		require.ErrorIs(t, err, ErrLinkHasContracts)

		_, err = st.Links().GetLinkByID(ctx, link.ID)
		require.NoError(t, err)
	})

	t.Run("a rejected link is not deletable", func(t *testing.T) {
		p2 := seedTenant(t, ctx, st, "Provider Two", "owner@p2.test")
		rejected, err := links.ProposeLink(ctx, p2.rc(generousPlan), p2.Workspace.ID, client.Workspace.ID)
		require.NoError(t, err)
		require.NoError(t, links.RespondToLink(ctx, client.rc(generousPlan), rejected.ID, false))

		err = links.DeleteLink(ctx, p2.rc(generousPlan), rejected.ID)
		require.ErrorIs(t, err, ErrStaleState)

		got, err := st.Links().GetLinkByID(ctx, rejected.ID)
		require.NoError(t, err)
		require.Equal(t, domain.LinkRejected, got.Status)
	})
}
