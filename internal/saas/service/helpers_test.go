package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/AlexandroMtzG/remix-saas-kit-sub000/internal/saas/domain"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/internal/saas/notify"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/internal/saas/store/drivers/sqlite"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func newTestDispatcher(t *testing.T) *notify.Dispatcher {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	d := notify.NewDispatcher(&notify.LogSink{Logger: logger}, logger)
	d.Start()
	t.Cleanup(d.Stop)
	return d
}

// captureSink buffers delivered events so tests can assert on them.
type captureSink struct {
	events chan notify.Event
}

func (s *captureSink) Deliver(_ context.Context, e notify.Event) error {
	s.events <- e
	return nil
}

// next blocks until the sink delivers an event or the test times out.
func (s *captureSink) next(t *testing.T) notify.Event {
	t.Helper()

	select {
	case e := <-s.events:
		return e
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a notification")
		return notify.Event{}
	}
}

func newCaptureDispatcher(t *testing.T) (*notify.Dispatcher, *captureSink) {
	t.Helper()

	sink := &captureSink{events: make(chan notify.Event, 16)}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	d := notify.NewDispatcher(sink, logger)
	d.Start()
	t.Cleanup(d.Stop)
	return d, sink
}

// generousPlan is an entitlement that never trips quota checks in tests
// that are not about quotas.
var generousPlan = domain.Entitlement{
	MaxWorkspaces:       100,
	MaxUsers:            100,
	MaxMonthlyContracts: 100,
}

// tenantFixture is one tenant with its founding owner, first workspace,
// owner membership and assignment.
type tenantFixture struct {
	Tenant     domain.Tenant
	Owner      domain.User
	Membership domain.Membership
	Workspace  domain.Workspace
}

// rc builds a resolved context for the fixture's owner.
func (f tenantFixture) rc(ent domain.Entitlement) ResolvedContext {
	return ResolvedContext{
		User:        f.Owner,
		Tenant:      f.Tenant,
		Membership:  f.Membership,
		Workspace:   f.Workspace,
		Entitlement: ent,
	}
}

func seedTenant(t *testing.T, ctx context.Context, st *sqlite.Store, name, ownerEmail string) tenantFixture {
	t.Helper()

	owner := domain.User{
		ID:           idx.New().String(),
		Email:        ownerEmail,
		PasswordHash: "argon2-test-hash",
		FirstName:    "Test",
		LastName:     "Owner",
	}
	require.NoError(t, st.Users().CreateUser(ctx, owner))

	tenant := domain.Tenant{
		ID:             idx.New().String(),
		Name:           name,
		SubscriptionID: "sub_test",
	}
	require.NoError(t, st.Tenants().CreateTenant(ctx, tenant))

	ws := domain.Workspace{
		ID:       idx.New().String(),
		TenantID: tenant.ID,
		Name:     name + " HQ",
	}
	require.NoError(t, st.Workspaces().CreateWorkspace(ctx, ws))

	membership := domain.Membership{
		ID:       idx.New().String(),
		TenantID: tenant.ID,
		UserID:   owner.ID,
		Role:     domain.RoleOwner,
	}
	require.NoError(t, st.Memberships().CreateMembership(ctx, membership))

	require.NoError(t, st.Assignments().CreateAssignment(ctx, domain.WorkspaceAssignment{
		ID:          idx.New().String(),
		WorkspaceID: ws.ID,
		UserID:      owner.ID,
	}))

	return tenantFixture{Tenant: tenant, Owner: owner, Membership: membership, Workspace: ws}
}

// seedMember adds another user to the fixture's tenant with the given role,
// assigned to the fixture's workspace.
func seedMember(t *testing.T, ctx context.Context, st *sqlite.Store, f tenantFixture, email string, role domain.Role) (domain.User, domain.Membership) {
	t.Helper()

	user := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: "argon2-test-hash",
	}
	require.NoError(t, st.Users().CreateUser(ctx, user))

	membership := domain.Membership{
		ID:       idx.New().String(),
		TenantID: f.Tenant.ID,
		UserID:   user.ID,
		Role:     role,
	}
	require.NoError(t, st.Memberships().CreateMembership(ctx, membership))

	require.NoError(t, st.Assignments().CreateAssignment(ctx, domain.WorkspaceAssignment{
		ID:          idx.New().String(),
		WorkspaceID: f.Workspace.ID,
		UserID:      user.ID,
	}))

	return user, membership
}

// seedLinkedPair creates two tenants and a LINKED link between their
// workspaces, proposed by the first.
func seedLinkedPair(t *testing.T, ctx context.Context, st *sqlite.Store, d *notify.Dispatcher) (tenantFixture, tenantFixture, domain.Link) {
	t.Helper()

	providerSide := seedTenant(t, ctx, st, "Provider Co", "provider@example.com")
	clientSide := seedTenant(t, ctx, st, "Client Co", "client@example.com")

	links := &LinkService{Store: st, Dispatcher: d}

	link, err := links.ProposeLink(ctx, providerSide.rc(generousPlan), providerSide.Workspace.ID, clientSide.Workspace.ID)
	require.NoError(t, err)

	require.NoError(t, links.RespondToLink(ctx, clientSide.rc(generousPlan), link.ID, true))

	link, err = st.Links().GetLinkByID(ctx, link.ID)
	require.NoError(t, err)
	require.Equal(t, domain.LinkLinked, link.Status)

	return providerSide, clientSide, link
}
