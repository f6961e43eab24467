package http

import (
	"encoding/json"
	"net/http"

	"github.com/AlexandroMtzG/remix-saas-kit-sub000/internal/saas/service"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/pkg/httpx"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/pkg/sessionx"
)

type TenantHandler struct {
	ResolverService *service.ResolverService
	TenantService   *service.TenantService
	Signer          *sessionx.Signer
}

type renameTenantRequest struct {
	Name string `json:"name"`
}

type subscriptionRequest struct {
	CustomerID     string `json:"customer_id"`
	SubscriptionID string `json:"subscription_id"`
}

// HandleRename godoc
//
//	@Summary	Rename the current tenant
//	@Tags		Tenant
//	@Accept		json
//	@Success	204
//	@Failure	403	{object}	httpx.ErrorResponse
//	@Security	SessionAuth
//	@Router		/v1/tenant [put].
func (h *TenantHandler) HandleRename(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rc, ok := resolveContext(w, r, h.ResolverService, h.Signer)
	if !ok {
		return
	}

	var req renameTenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.TenantService.Rename(ctx, rc, req.Name); err != nil {
		writeServiceError(ctx, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleUpdateSubscription godoc
//
//	@Summary		Record the tenant's billing references
//	@Description	Owner only. Entitlements derived from the new subscription apply from the next request.
//	@Tags			Tenant
//	@Accept			json
//	@Success		204
//	@Failure		403	{object}	httpx.ErrorResponse
//	@Security		SessionAuth
//	@Router			/v1/tenant/subscription [put].
func (h *TenantHandler) HandleUpdateSubscription(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rc, ok := resolveContext(w, r, h.ResolverService, h.Signer)
	if !ok {
		return
	}

	var req subscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.TenantService.UpdateSubscription(ctx, rc, req.CustomerID, req.SubscriptionID); err != nil {
		writeServiceError(ctx, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDelete godoc
//
//	@Summary		Delete the current tenant
//	@Description	Owner only. Rejected while any workspace of the tenant participates in a pending or established link.
//	@Tags			Tenant
//	@Success		204
//	@Failure		409	{object}	httpx.ErrorResponse	"tenant still participates in links"
//	@Security		SessionAuth
//	@Router			/v1/tenant [delete].
func (h *TenantHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rc, ok := resolveContext(w, r, h.ResolverService, h.Signer)
	if !ok {
		return
	}

	if err := h.TenantService.DeleteTenant(ctx, rc); err != nil {
		writeServiceError(ctx, w, r, err)
		return
	}

	httpx.ClearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}
