package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/AlexandroMtzG/remix-saas-kit-sub000/internal/saas/service"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/internal/saas/store"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/pkg/httpx"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/pkg/sessionx"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/pkg/slogx"

	_ "github.com/AlexandroMtzG/remix-saas-kit-sub000/api/saas" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	signer       *sessionx.Signer
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store             store.Store
	ResolverService   *service.ResolverService
	AuthService       *service.AuthService
	TenantService     *service.TenantService
	MembershipService *service.MembershipService
	WorkspaceService  *service.WorkspaceService
	LinkService       *service.LinkService
	ContractService   *service.ContractService
	EmployeeService   *service.EmployeeService
}

func NewRouter(
	signer *sessionx.Signer,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		signer:       signer,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerMe()
	r.registerTenant()
	r.registerMembers()
	r.registerWorkspaces()
	r.registerEmployees()
	r.registerLinks()
	r.registerContracts()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Tenant Workflow API
//	@version		0.1.0
//	@description	Multi-tenant workspace, relationship and contract management API.
//	@description
//	@description	Sessions travel in an HttpOnly cookie or as a bearer token.
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host			localhost:8080
//	@BasePath		/
//
//	@schemes		http https
//
//	@securityDefinitions.apikey	SessionAuth
//	@in							header
//	@name						Authorization
//	@description				Session token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// session wraps a handler with session verification.
func (r *Router) session(h http.Handler, extra ...httpx.Middleware) http.Handler {
	mws := append([]httpx.Middleware{httpx.SessionMiddleware(r.signer)}, extra...)
	return httpx.Chain(h, mws...)
}

func (r *Router) registerAuth() {
	authHandler := &AuthHandler{AuthService: r.AuthService, Signer: r.signer}

	// Authentication attempts get the strict tier.
	r.Mux.Handle("POST /v1/auth/signup",
		httpx.Chain(http.HandlerFunc(authHandler.HandleSignup),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(http.HandlerFunc(authHandler.HandleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/logout", http.HandlerFunc(authHandler.HandleLogout))
}

func (r *Router) registerMe() {
	meHandler := &MeHandler{
		ResolverService: r.ResolverService,
		AuthService:     r.AuthService,
		Signer:          r.signer,
	}

	r.Mux.Handle("GET /v1/me",
		r.session(http.HandlerFunc(meHandler.HandleGet),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("PUT /v1/me",
		r.session(http.HandlerFunc(meHandler.HandleUpdateProfile),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("DELETE /v1/me",
		r.session(http.HandlerFunc(meHandler.HandleDeleteAccount),
			httpx.RateLimitByUser(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("PUT /v1/me/password",
		r.session(http.HandlerFunc(meHandler.HandleChangePassword),
			httpx.RateLimitByUser(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/me/workspace",
		r.session(http.HandlerFunc(meHandler.HandleSwitchWorkspace),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/me/tenant",
		r.session(http.HandlerFunc(meHandler.HandleSwitchTenant),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerTenant() {
	tenantHandler := &TenantHandler{
		ResolverService: r.ResolverService,
		TenantService:   r.TenantService,
		Signer:          r.signer,
	}

	r.Mux.Handle("PUT /v1/tenant",
		r.session(http.HandlerFunc(tenantHandler.HandleRename),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("PUT /v1/tenant/subscription",
		r.session(http.HandlerFunc(tenantHandler.HandleUpdateSubscription),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("DELETE /v1/tenant",
		r.session(http.HandlerFunc(tenantHandler.HandleDelete),
			httpx.RateLimitByUser(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerMembers() {
	membersHandler := &MembersHandler{
		ResolverService:   r.ResolverService,
		MembershipService: r.MembershipService,
		Signer:            r.signer,
	}

	r.Mux.Handle("GET /v1/members",
		r.session(http.HandlerFunc(membersHandler.HandleList),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("POST /v1/members/invite",
		r.session(http.HandlerFunc(membersHandler.HandleInvite),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	// Redemption is unauthenticated for new accounts; strict tier keeps
	// token guessing impractical.
	r.Mux.Handle("POST /v1/members/redeem",
		httpx.Chain(http.HandlerFunc(membersHandler.HandleRedeem),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("PUT /v1/members/{id}/role",
		r.session(http.HandlerFunc(membersHandler.HandleUpdateRole),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("PUT /v1/members/{id}/workspaces",
		r.session(http.HandlerFunc(membersHandler.HandleReassign),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("DELETE /v1/members/{id}",
		r.session(http.HandlerFunc(membersHandler.HandleRemove),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerWorkspaces() {
	wsHandler := &WorkspacesHandler{
		ResolverService:  r.ResolverService,
		WorkspaceService: r.WorkspaceService,
		Signer:           r.signer,
	}

	r.Mux.Handle("GET /v1/workspaces",
		r.session(http.HandlerFunc(wsHandler.HandleList),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("POST /v1/workspaces",
		r.session(http.HandlerFunc(wsHandler.HandleCreate),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("PUT /v1/workspaces/{id}",
		r.session(http.HandlerFunc(wsHandler.HandleUpdate),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("DELETE /v1/workspaces/{id}",
		r.session(http.HandlerFunc(wsHandler.HandleDelete),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerEmployees() {
	empHandler := &EmployeesHandler{
		ResolverService: r.ResolverService,
		EmployeeService: r.EmployeeService,
		Signer:          r.signer,
	}

	r.Mux.Handle("GET /v1/employees",
		r.session(http.HandlerFunc(empHandler.HandleList),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("POST /v1/employees",
		r.session(http.HandlerFunc(empHandler.HandleCreate),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /v1/employees/{id}",
		r.session(http.HandlerFunc(empHandler.HandleGet),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerLinks() {
	linksHandler := &LinksHandler{
		ResolverService: r.ResolverService,
		LinkService:     r.LinkService,
		Signer:          r.signer,
	}

	r.Mux.Handle("GET /v1/links",
		r.session(http.HandlerFunc(linksHandler.HandleList),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("POST /v1/links",
		r.session(http.HandlerFunc(linksHandler.HandlePropose),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /v1/links/{id}",
		r.session(http.HandlerFunc(linksHandler.HandleGet),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("POST /v1/links/{id}/respond",
		r.session(http.HandlerFunc(linksHandler.HandleRespond),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("DELETE /v1/links/{id}",
		r.session(http.HandlerFunc(linksHandler.HandleDelete),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerContracts() {
	contractsHandler := &ContractsHandler{
		ResolverService: r.ResolverService,
		ContractService: r.ContractService,
		Signer:          r.signer,
	}

	r.Mux.Handle("GET /v1/contracts",
		r.session(http.HandlerFunc(contractsHandler.HandleList),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("POST /v1/contracts",
		r.session(http.HandlerFunc(contractsHandler.HandleCreate),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /v1/contracts/{id}",
		r.session(http.HandlerFunc(contractsHandler.HandleGet),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("PUT /v1/contracts/{id}",
		r.session(http.HandlerFunc(contractsHandler.HandleUpdate),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("PUT /v1/contracts/{id}/status",
		r.session(http.HandlerFunc(contractsHandler.HandleUpdateStatus),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("DELETE /v1/contracts/{id}",
		r.session(http.HandlerFunc(contractsHandler.HandleDelete),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/contracts/{id}/send",
		r.session(http.HandlerFunc(contractsHandler.HandleSend),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/contracts/{id}/sign",
		r.session(http.HandlerFunc(contractsHandler.HandleSign),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /v1/contracts/{id}/activity",
		r.session(http.HandlerFunc(contractsHandler.HandleActivity),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.buildVersion, r.startTime))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.store))
}
