package http

import (
	"encoding/json"
	"net/http"

	"github.com/AlexandroMtzG/remix-saas-kit-sub000/internal/saas/domain"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/internal/saas/service"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/pkg/httpx"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/pkg/sessionx"
)

type LinksHandler struct {
	ResolverService *service.ResolverService
	LinkService     *service.LinkService
	Signer          *sessionx.Signer
}

type proposeLinkRequest struct {
	ProviderWorkspaceID string `json:"provider_workspace_id"`
	ClientWorkspaceID   string `json:"client_workspace_id"`
}

type respondLinkRequest struct {
	Accept bool `json:"accept"`
}

// HandleList godoc
//
//	@Summary		List links involving the current tenant
//	@Description	Optional status filter: pending, linked or rejected.
//	@Tags			Links
//	@Produce		json
//	@Param			status	query	string	false	"Filter by status"
//	@Success		200		{array}	linkDTO
//	@Security		SessionAuth
//	@Router			/v1/links [get].
func (h *LinksHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rc, ok := resolveContext(w, r, h.ResolverService, h.Signer)
	if !ok {
		return
	}

	var status domain.LinkStatus
	switch q := r.URL.Query().Get("status"); q {
	case "":
	case string(domain.LinkPending), string(domain.LinkLinked), string(domain.LinkRejected):
		status = domain.LinkStatus(q)
	default:
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "unknown link status")
		return
	}

	links, err := h.LinkService.ListForTenant(ctx, rc, status)
	if err != nil {
		writeServiceError(ctx, w, r, err)
		return
	}

	out := make([]linkDTO, 0, len(links))
	for _, l := range links {
		out = append(out, toLinkDTO(l))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandlePropose godoc
//
//	@Summary		Propose a link between two workspaces
//	@Description	The actor's workspace must be one side, the other side must belong to a different tenant. The link starts in the pending state.
//	@Tags			Links
//	@Accept			json
//	@Produce		json
//	@Param			request	body		proposeLinkRequest	true	"Link sides"
//	@Success		201		{object}	linkDTO
//	@Failure		409		{object}	httpx.ErrorResponse	"an active link already exists for the pair"
//	@Security		SessionAuth
//	@Router			/v1/links [post].
func (h *LinksHandler) HandlePropose(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rc, ok := resolveContext(w, r, h.ResolverService, h.Signer)
	if !ok {
		return
	}

	var req proposeLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	link, err := h.LinkService.ProposeLink(ctx, rc, req.ProviderWorkspaceID, req.ClientWorkspaceID)
	if err != nil {
		writeServiceError(ctx, w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toLinkDTO(link))
}

// HandleGet godoc
//
//	@Summary	Fetch one link
//	@Tags		Links
//	@Produce	json
//	@Success	200	{object}	linkDTO
//	@Failure	404	{object}	httpx.ErrorResponse
//	@Security	SessionAuth
//	@Router		/v1/links/{id} [get].
func (h *LinksHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rc, ok := resolveContext(w, r, h.ResolverService, h.Signer)
	if !ok {
		return
	}

	link, err := h.LinkService.GetLink(ctx, rc, r.PathValue("id"))
	if err != nil {
		writeServiceError(ctx, w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toLinkDTO(link))
}

// HandleRespond godoc
//
//	@Summary		Accept or reject a pending link
//	@Description	Only admins of the workspace that did not create the link may respond. Both outcomes are terminal.
//	@Tags			Links
//	@Accept			json
//	@Param			request	body	respondLinkRequest	true	"Decision"
//	@Success		204
//	@Failure		409	{object}	httpx.ErrorResponse	"link already resolved"
//	@Security		SessionAuth
//	@Router			/v1/links/{id}/respond [post].
func (h *LinksHandler) HandleRespond(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rc, ok := resolveContext(w, r, h.ResolverService, h.Signer)
	if !ok {
		return
	}

	var req respondLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.LinkService.RespondToLink(ctx, rc, r.PathValue("id"), req.Accept); err != nil {
		writeServiceError(ctx, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDelete godoc
//
//	@Summary		Delete a link
//	@Description	Either side may delete. Rejected while contracts reference the link.
//	@Tags			Links
//	@Success		204
//	@Failure		409	{object}	httpx.ErrorResponse	"link still has contracts"
//	@Security		SessionAuth
//	@Router			/v1/links/{id} [delete].
func (h *LinksHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rc, ok := resolveContext(w, r, h.ResolverService, h.Signer)
	if !ok {
		return
	}

	if err := h.LinkService.DeleteLink(ctx, rc, r.PathValue("id")); err != nil {
		writeServiceError(ctx, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
