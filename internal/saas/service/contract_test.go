package service

import (
	"context"
	"testing"
	"time"

	"github.com/AlexandroMtzG/remix-saas-kit-sub000/internal/saas/domain"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestCreateContractQuorum(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	d := newTestDispatcher(t)
	svc := &ContractService{Store: st, Dispatcher: d}

	provider, client, link := seedLinkedPair(t, ctx, st, d)

	fields := ContractFields{Name: "MSA", Description: "Master services agreement", File: "doc-ref"}

	t.Run("zero signatories fails naming the minimum", func(t *testing.T) {
		_, err := svc.CreateContract(ctx, provider.rc(generousPlan), link.ID, fields, nil, nil)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		require.Equal(t, "members", verr.Field)
		require.Contains(t, verr.Message, "2")
	})

	t.Run("one signatory fails", func(t *testing.T) {
		_, err := svc.CreateContract(ctx, provider.rc(generousPlan), link.ID, fields,
			[]MemberInput{{UserID: provider.Owner.ID, Role: domain.ContractSignatory}}, nil)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		require.Equal(t, "members", verr.Field)
	})

	t.Run("spectators do not count toward quorum", func(t *testing.T) {
		_, err := svc.CreateContract(ctx, provider.rc(generousPlan), link.ID, fields,
			[]MemberInput{
				{UserID: provider.Owner.ID, Role: domain.ContractSignatory},
				{UserID: client.Owner.ID, Role: domain.ContractSpectator},
			}, nil)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
	})

	t.Run("two signatories succeed and all members persist", func(t *testing.T) {
		spectator, _ := seedMember(t, ctx, st, provider, "watcher@provider.test", domain.RoleMember)

		contract, err := svc.CreateContract(ctx, provider.rc(generousPlan), link.ID, fields,
			[]MemberInput{
				{UserID: provider.Owner.ID, Role: domain.ContractSignatory},
				{UserID: client.Owner.ID, Role: domain.ContractSignatory},
				{UserID: spectator.ID, Role: domain.ContractSpectator},
			}, nil)
		require.NoError(t, err)
		require.Equal(t, domain.ContractPending, contract.Status)

		members, err := st.Contracts().ListContractMembers(ctx, contract.ID)
		require.NoError(t, err)
		require.Len(t, members, 3)

		activity, err := st.Contracts().ListActivity(ctx, contract.ID)
		require.NoError(t, err)
		require.Len(t, activity, 1)
		require.Equal(t, domain.ActivityCreated, activity[0].Type)
	})
}

func TestCreateContractRequiresLinkedState(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	d := newTestDispatcher(t)
	links := &LinkService{Store: st, Dispatcher: d}
	svc := &ContractService{Store: st, Dispatcher: d}

	provider := seedTenant(t, ctx, st, "Provider Co", "owner@provider.test")
	client := seedTenant(t, ctx, st, "Client Co", "owner@client.test")

	link, err := links.ProposeLink(ctx, provider.rc(generousPlan), provider.Workspace.ID, client.Workspace.ID)
	require.NoError(t, err)

	_, err = svc.CreateContract(ctx, provider.rc(generousPlan), link.ID,
		ContractFields{Name: "MSA", Description: "d", File: "f"},
		[]MemberInput{
			{UserID: provider.Owner.ID, Role: domain.ContractSignatory},
			{UserID: client.Owner.ID, Role: domain.ContractSignatory},
		}, nil)
	require.ErrorIs(t, err, ErrLinkNotEstablished)
}

func TestContractEditability(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	d := newTestDispatcher(t)
	svc := &ContractService{Store: st, Dispatcher: d}

	provider, client, link := seedLinkedPair(t, ctx, st, d)

	contract, err := svc.CreateContract(ctx, provider.rc(generousPlan), link.ID,
		ContractFields{Name: "MSA", Description: "original", File: "doc-ref"},
		[]MemberInput{
			{UserID: provider.Owner.ID, Role: domain.ContractSignatory},
			{UserID: client.Owner.ID, Role: domain.ContractSignatory},
		}, nil)
	require.NoError(t, err)

	t.Run("edits succeed while unsigned and append activity", func(t *testing.T) {
		err := svc.UpdateContract(ctx, client.rc(generousPlan), contract.ID,
			ContractFields{Name: "MSA", Description: "amended", File: "doc-ref"})
		require.NoError(t, err)

		activity, err := st.Contracts().ListActivity(ctx, contract.ID)
		require.NoError(t, err)
		require.Len(t, activity, 2)
		require.Equal(t, domain.ActivityCreated, activity[0].Type)
		require.Equal(t, domain.ActivityUpdated, activity[1].Type)
	})

	t.Run("empty fields are rejected with the field named", func(t *testing.T) {
		err := svc.UpdateContract(ctx, client.rc(generousPlan), contract.ID,
			ContractFields{Name: "", Description: "x", File: "f"})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		require.Equal(t, "name", verr.Field)
	})

	t.Run("one signature freezes the document regardless of status", func(t *testing.T) {
		require.NoError(t, svc.RecordSignature(ctx, provider.rc(generousPlan), contract.ID))

		err := svc.UpdateContract(ctx, client.rc(generousPlan), contract.ID,
			ContractFields{Name: "MSA", Description: "late edit", File: "doc-ref"})
		require.ErrorIs(t, err, ErrContractFrozen)

		err = svc.UpdateContractStatus(ctx, client.rc(generousPlan), contract.ID, domain.ContractSigned)
		require.ErrorIs(t, err, ErrContractFrozen)

		got, err := st.Contracts().GetContractByID(ctx, contract.ID)
		require.NoError(t, err)
		require.Equal(t, "amended", got.Description)
		require.Equal(t, domain.ContractPending, got.Status)
	})

	t.Run("double signature is rejected", func(t *testing.T) {
		err := svc.RecordSignature(ctx, provider.rc(generousPlan), contract.ID)
		require.ErrorIs(t, err, ErrAlreadySigned)
	})

	t.Run("spectators cannot sign", func(t *testing.T) {
		watcher, watcherMembership := seedMember(t, ctx, st, provider, "watcher@provider.test", domain.RoleMember)
		watcherRC := ResolvedContext{
			User:        watcher,
			Tenant:      provider.Tenant,
			Membership:  watcherMembership,
			Workspace:   provider.Workspace,
			Entitlement: generousPlan,
		}

		err := svc.RecordSignature(ctx, watcherRC, contract.ID)
		require.ErrorIs(t, err, ErrNotSignatory)
	})
}

func TestMonthlyContractQuota(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	d := newTestDispatcher(t)
	svc := &ContractService{Store: st, Dispatcher: d}

	provider, client, link := seedLinkedPair(t, ctx, st, d)

	plan := domain.Entitlement{MaxWorkspaces: 100, MaxUsers: 100, MaxMonthlyContracts: 2}
	members := []MemberInput{
		{UserID: provider.Owner.ID, Role: domain.ContractSignatory},
		{UserID: client.Owner.ID, Role: domain.ContractSignatory},
	}

	for i, name := range []string{"first", "second"} {
		_, err := svc.CreateContract(ctx, provider.rc(plan), link.ID,
			ContractFields{Name: name, Description: "d", File: "f"}, members, nil)
		require.NoError(t, err, "contract %d should fit the quota", i+1)
	}

	t.Run("third contract this month is denied", func(t *testing.T) {
		_, err := svc.CreateContract(ctx, provider.rc(plan), link.ID,
			ContractFields{Name: "third", Description: "d", File: "f"}, members, nil)
		require.ErrorIs(t, err, ErrQuotaExceeded)
	})

	t.Run("zero entitlement always denies", func(t *testing.T) {
		_, err := svc.CreateContract(ctx, provider.rc(domain.Entitlement{}), link.ID,
			ContractFields{Name: "any", Description: "d", File: "f"}, members, nil)
		require.ErrorIs(t, err, ErrQuotaExceeded)
	})

}

func TestMonthlyQuotaResetsAtMonthBoundary(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	d := newTestDispatcher(t)
	svc := &ContractService{Store: st, Dispatcher: d}

	provider, client, link := seedLinkedPair(t, ctx, st, d)

	plan := domain.Entitlement{MaxWorkspaces: 100, MaxUsers: 100, MaxMonthlyContracts: 2}
	members := []MemberInput{
		{UserID: provider.Owner.ID, Role: domain.ContractSignatory},
		{UserID: client.Owner.ID, Role: domain.ContractSignatory},
	}

	// Two contracts dated in the previous calendar month.
	lastMonth := monthStart(time.Now()).Add(-time.Hour)
	for _, name := range []string{"old-1", "old-2"} {
		old := domain.Contract{
			ID:                   idx.New().String(),
			LinkID:               link.ID,
			CreatedByWorkspaceID: provider.Workspace.ID,
			Name:                 name,
			Description:          "d",
			File:                 "f",
			Status:               domain.ContractPending,
			CreatedAt:            lastMonth,
			UpdatedAt:            lastMonth,
		}
		require.NoError(t, st.Contracts().CreateContract(ctx, old))
	}

	// The quota window starts fresh this month despite two older contracts.
	_, err := svc.CreateContract(ctx, provider.rc(plan), link.ID,
		ContractFields{Name: "current", Description: "d", File: "f"}, members, nil)
	require.NoError(t, err)
}

func TestQuotaCountsOnlyOwnTenant(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	d := newTestDispatcher(t)
	svc := &ContractService{Store: st, Dispatcher: d}

	provider, client, link := seedLinkedPair(t, ctx, st, d)

	plan := domain.Entitlement{MaxWorkspaces: 100, MaxUsers: 100, MaxMonthlyContracts: 1}
	members := []MemberInput{
		{UserID: provider.Owner.ID, Role: domain.ContractSignatory},
		{UserID: client.Owner.ID, Role: domain.ContractSignatory},
	}

	// Provider burns its single slot.
	_, err := svc.CreateContract(ctx, provider.rc(plan), link.ID,
		ContractFields{Name: "provider's", Description: "d", File: "f"}, members, nil)
	require.NoError(t, err)

	_, err = svc.CreateContract(ctx, provider.rc(plan), link.ID,
		ContractFields{Name: "over quota", Description: "d", File: "f"}, members, nil)
	require.ErrorIs(t, err, ErrQuotaExceeded)

	// The client tenant's accounting is independent.
	_, err = svc.CreateContract(ctx, client.rc(plan), link.ID,
		ContractFields{Name: "client's", Description: "d", File: "f"}, members, nil)
	require.NoError(t, err)
}

func TestContractWorkflowEndToEnd(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	d := newTestDispatcher(t)
	links := &LinkService{Store: st, Dispatcher: d}
	contracts := &ContractService{Store: st, Dispatcher: d}

	t1 := seedTenant(t, ctx, st, "Tenant One", "u1@one.test")
	t2 := seedTenant(t, ctx, st, "Tenant Two", "u2@two.test")

	// U1 proposes W1 -> W2.
	link, err := links.ProposeLink(ctx, t1.rc(generousPlan), t1.Workspace.ID, t2.Workspace.ID)
	require.NoError(t, err)
	require.Equal(t, domain.LinkPending, link.Status)

	// U2 accepts.
	require.NoError(t, links.RespondToLink(ctx, t2.rc(generousPlan), link.ID, true))

	// U1 creates a contract with both owners as signatories.
	contract, err := contracts.CreateContract(ctx, t1.rc(generousPlan), link.ID,
		ContractFields{Name: "Supply agreement", Description: "initial terms", File: "doc-1"},
		[]MemberInput{
			{UserID: t1.Owner.ID, Role: domain.ContractSignatory},
			{UserID: t2.Owner.ID, Role: domain.ContractSignatory},
		}, nil)
	require.NoError(t, err)
	require.Equal(t, domain.ContractPending, contract.Status)

	activity, err := contracts.ListActivity(ctx, t1.rc(generousPlan), contract.ID)
	require.NoError(t, err)
	require.Len(t, activity, 1)
	require.Equal(t, domain.ActivityCreated, activity[0].Type)

	// U2 amends the description before anyone signs.
	require.NoError(t, contracts.UpdateContract(ctx, t2.rc(generousPlan), contract.ID,
		ContractFields{Name: "Supply agreement", Description: "revised terms", File: "doc-1"}))

	activity, err = contracts.ListActivity(ctx, t2.rc(generousPlan), contract.ID)
	require.NoError(t, err)
	require.Len(t, activity, 2)
	require.Equal(t, domain.ActivityUpdated, activity[1].Type)

	// U1 signs; further edits are frozen.
	require.NoError(t, contracts.RecordSignature(ctx, t1.rc(generousPlan), contract.ID))

	err = contracts.UpdateContract(ctx, t2.rc(generousPlan), contract.ID,
		ContractFields{Name: "Supply agreement", Description: "too late", File: "doc-1"})
	require.ErrorIs(t, err, ErrContractFrozen)
}

func TestContractNotificationsReachEmployees(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	linkDispatcher := newTestDispatcher(t)
	d, sink := newCaptureDispatcher(t)
	contracts := &ContractService{Store: st, Dispatcher: d}
	employees := &EmployeeService{Store: st}

	provider, client, link := seedLinkedPair(t, ctx, st, linkDispatcher)

	emp, err := employees.CreateEmployee(ctx, provider.rc(generousPlan), "Field", "Tech", "tech@provider.test")
	require.NoError(t, err)

	contract, err := contracts.CreateContract(ctx, provider.rc(generousPlan), link.ID,
		ContractFields{Name: "SOW", Description: "statement of work", File: "doc-2"},
		[]MemberInput{
			{UserID: provider.Owner.ID, Role: domain.ContractSignatory},
			{UserID: client.Owner.ID, Role: domain.ContractSignatory},
		},
		[]string{emp.ID})
	require.NoError(t, err)

	created := sink.next(t)
	require.Equal(t, "contract.created", created.Kind)
	require.ElementsMatch(t, []string{provider.Owner.ID, client.Owner.ID}, created.RecipientIDs)
	require.Equal(t, []string{emp.Email}, created.EmployeeEmails)
	require.Equal(t, "doc-2", created.Attachment)

	require.NoError(t, contracts.SendContract(ctx, client.rc(generousPlan), contract.ID))

	sent := sink.next(t)
	require.Equal(t, "contract.sent", sent.Kind)
	require.ElementsMatch(t, []string{provider.Owner.ID, client.Owner.ID}, sent.RecipientIDs)
	require.Equal(t, []string{emp.Email}, sent.EmployeeEmails)
	require.Equal(t, "doc-2", sent.Attachment)
}
