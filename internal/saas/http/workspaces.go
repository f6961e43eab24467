package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/AlexandroMtzG/remix-saas-kit-sub000/internal/saas/domain"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/internal/saas/service"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/pkg/httpx"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/pkg/sessionx"
)

type WorkspacesHandler struct {
	ResolverService  *service.ResolverService
	WorkspaceService *service.WorkspaceService
	Signer           *sessionx.Signer
}

type workspaceRequest struct {
	Name                 string     `json:"name"`
	Kind                 int        `json:"kind"`
	BusinessMainActivity string     `json:"business_main_activity"`
	RegistrationNumber   string     `json:"registration_number"`
	RegistrationDate     *time.Time `json:"registration_date"`
}

func (req workspaceRequest) fields() service.WorkspaceFields {
	return service.WorkspaceFields{
		Name:                 req.Name,
		Kind:                 domain.WorkspaceKind(req.Kind),
		BusinessMainActivity: req.BusinessMainActivity,
		RegistrationNumber:   req.RegistrationNumber,
		RegistrationDate:     req.RegistrationDate,
	}
}

// HandleList godoc
//
//	@Summary		List workspaces
//	@Description	The workspaces the user is assigned to within the current tenant. Pass all=true (owner/admin) for every workspace of the tenant.
//	@Tags			Workspaces
//	@Produce		json
//	@Success		200	{array}	workspaceDTO
//	@Security		SessionAuth
//	@Router			/v1/workspaces [get].
func (h *WorkspacesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rc, ok := resolveContext(w, r, h.ResolverService, h.Signer)
	if !ok {
		return
	}

	var (
		workspaces []domain.Workspace
		err        error
	)
	if r.URL.Query().Get("all") == "true" && rc.Membership.Role.AtLeast(domain.RoleAdmin) {
		workspaces, err = h.WorkspaceService.ListForTenant(ctx, rc)
	} else {
		workspaces, err = h.WorkspaceService.ListForMember(ctx, rc)
	}
	if err != nil {
		writeServiceError(ctx, w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toWorkspaceDTOs(workspaces))
}

// HandleCreate godoc
//
//	@Summary		Create a workspace
//	@Description	Owner/admin only; gated by the plan's workspace quota. The creator is assigned to the new workspace.
//	@Tags			Workspaces
//	@Accept			json
//	@Produce		json
//	@Param			request	body		workspaceRequest	true	"Workspace"
//	@Success		201		{object}	workspaceDTO
//	@Failure		403		{object}	httpx.ErrorResponse	"role too low or quota exhausted"
//	@Security		SessionAuth
//	@Router			/v1/workspaces [post].
func (h *WorkspacesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rc, ok := resolveContext(w, r, h.ResolverService, h.Signer)
	if !ok {
		return
	}

	var req workspaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	ws, err := h.WorkspaceService.CreateWorkspace(ctx, rc, req.fields())
	if err != nil {
		writeServiceError(ctx, w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toWorkspaceDTO(ws))
}

// HandleUpdate godoc
//
//	@Summary	Update a workspace
//	@Tags		Workspaces
//	@Accept		json
//	@Success	204
//	@Failure	404	{object}	httpx.ErrorResponse
//	@Security	SessionAuth
//	@Router		/v1/workspaces/{id} [put].
func (h *WorkspacesHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rc, ok := resolveContext(w, r, h.ResolverService, h.Signer)
	if !ok {
		return
	}

	var req workspaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.WorkspaceService.UpdateWorkspace(ctx, rc, r.PathValue("id"), req.fields()); err != nil {
		writeServiceError(ctx, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDelete godoc
//
//	@Summary		Delete a workspace
//	@Description	Rejected while the workspace is any member's sole assignment or a link references it.
//	@Tags			Workspaces
//	@Success		204
//	@Failure		409	{object}	httpx.ErrorResponse	"workspace still in use"
//	@Security		SessionAuth
//	@Router			/v1/workspaces/{id} [delete].
func (h *WorkspacesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rc, ok := resolveContext(w, r, h.ResolverService, h.Signer)
	if !ok {
		return
	}

	if err := h.WorkspaceService.DeleteWorkspace(ctx, rc, r.PathValue("id")); err != nil {
		writeServiceError(ctx, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
