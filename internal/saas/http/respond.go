package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/AlexandroMtzG/remix-saas-kit-sub000/internal/saas/service"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/pkg/httpx"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/pkg/sessionx"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/pkg/slogx"
)

// resolveContext rebuilds the request's identity chain from the session
// claims. On a corrected (stale workspace) context the session cookie is
// re-issued so the client converges. Returns ok=false after writing the
// error response.
func resolveContext(w http.ResponseWriter, r *http.Request, resolver *service.ResolverService, signer *sessionx.Signer) (service.ResolvedContext, bool) {
	ctx := r.Context()

	claims, ok := httpx.SessionFromContext(ctx)
	if !ok {
		writeRedirectToLogin(w, r)
		return service.ResolvedContext{}, false
	}

	rc, err := resolver.Resolve(ctx, claims.UserID, claims.TenantID, claims.WorkspaceID)
	if err != nil {
		if errors.Is(err, service.ErrNoSession) {
			writeRedirectToLogin(w, r)
			return service.ResolvedContext{}, false
		}
		writeServiceError(ctx, w, r, err)
		return service.ResolvedContext{}, false
	}

	if rc.Corrected {
		token, err := signer.Issue(rc.User.ID, rc.Tenant.ID, rc.Workspace.ID)
		if err == nil {
			httpx.SetSessionCookie(w, token)
		}
	}

	return rc, true
}

func writeRedirectToLogin(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusUnauthorized, httpx.ErrorResponse{
		Error:            "unauthenticated",
		ErrorDescription: "sign in to continue",
		RedirectTo:       r.URL.RequestURI(),
	})
}

// writeServiceError maps the service error taxonomy onto HTTP statuses:
// validation 400, authorization 403, stale state and conflicts 409,
// not-found 404, quota 403.
func writeServiceError(ctx context.Context, w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		httpx.WriteJSON(w, http.StatusBadRequest, httpx.ErrorResponse{
			Error:            "validation_failed",
			ErrorDescription: verr.Message,
			Field:            verr.Field,
		})

	case errors.Is(err, service.ErrNoSession):
		writeRedirectToLogin(w, r)

	case errors.Is(err, service.ErrUnauthorized),
		errors.Is(err, service.ErrNotSignatory):
		httpx.WriteError(w, http.StatusForbidden, "unauthorized", "you do not have permission to do that")

	case errors.Is(err, service.ErrQuotaExceeded):
		httpx.WriteError(w, http.StatusForbidden, "quota_exceeded", "your plan's quota for this resource is exhausted")

	case errors.Is(err, service.ErrStaleState),
		errors.Is(err, service.ErrAlreadySigned):
		httpx.WriteError(w, http.StatusConflict, "stale_state", "the resource changed underneath you, reload and retry")

	case errors.Is(err, service.ErrSoleOwner),
		errors.Is(err, service.ErrLastAssignment),
		errors.Is(err, service.ErrLinkHasContracts),
		errors.Is(err, service.ErrContractFrozen),
		errors.Is(err, service.ErrSameTenant),
		errors.Is(err, service.ErrLinkNotEstablished),
		errors.Is(err, service.ErrDuplicateMember),
		errors.Is(err, service.ErrDuplicateLink),
		errors.Is(err, service.ErrTenantHasLinks),
		errors.Is(err, service.ErrUserHasContracts),
		errors.Is(err, service.ErrEmailTaken):
		httpx.WriteError(w, http.StatusConflict, "conflict", err.Error())

	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, service.ErrMemberNotFound),
		errors.Is(err, service.ErrWorkspaceNotFound),
		errors.Is(err, service.ErrLinkNotFound),
		errors.Is(err, service.ErrContractNotFound),
		errors.Is(err, service.ErrEmployeeNotFound),
		errors.Is(err, service.ErrInviteNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not_found", err.Error())

	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password")

	default:
		slogx.FromContext(ctx).Error("request failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "something went wrong")
	}
}
