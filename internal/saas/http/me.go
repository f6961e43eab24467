package http

import (
	"encoding/json"
	"net/http"

	"github.com/AlexandroMtzG/remix-saas-kit-sub000/internal/saas/service"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/pkg/httpx"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/pkg/sessionx"
)

type MeHandler struct {
	ResolverService *service.ResolverService
	AuthService     *service.AuthService
	Signer          *sessionx.Signer
}

// HandleGet godoc
//
//	@Summary		Current context
//	@Description	The resolved identity chain: user, tenant, membership, workspace and entitlement snapshot.
//	@Tags			Me
//	@Produce		json
//	@Success		200	{object}	contextDTO
//	@Failure		401	{object}	httpx.ErrorResponse	"redirect_to carries the requested path"
//	@Security		SessionAuth
//	@Router			/v1/me [get].
func (h *MeHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	rc, ok := resolveContext(w, r, h.ResolverService, h.Signer)
	if !ok {
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toContextDTO(rc))
}

type updateProfileRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Avatar    string `json:"avatar"`
}

// HandleUpdateProfile godoc
//
//	@Summary	Update profile
//	@Tags		Me
//	@Accept		json
//	@Success	204
//	@Failure	400	{object}	httpx.ErrorResponse
//	@Security	SessionAuth
//	@Router		/v1/me [put].
func (h *MeHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rc, ok := resolveContext(w, r, h.ResolverService, h.Signer)
	if !ok {
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.AuthService.UpdateProfile(ctx, rc.User.ID, req.FirstName, req.LastName, req.Avatar); err != nil {
		writeServiceError(ctx, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// HandleChangePassword godoc
//
//	@Summary	Change password
//	@Tags		Me
//	@Accept		json
//	@Success	204
//	@Failure	401	{object}	httpx.ErrorResponse	"current password wrong"
//	@Security	SessionAuth
//	@Router		/v1/me/password [put].
func (h *MeHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rc, ok := resolveContext(w, r, h.ResolverService, h.Signer)
	if !ok {
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.AuthService.ChangePassword(ctx, rc.User.ID, req.CurrentPassword, req.NewPassword); err != nil {
		writeServiceError(ctx, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type switchWorkspaceRequest struct {
	WorkspaceID string `json:"workspace_id"`
}

// HandleSwitchWorkspace godoc
//
//	@Summary		Switch workspace
//	@Description	Rewrites the session against another workspace the user is assigned to.
//	@Tags			Me
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	sessionResponse
//	@Failure		403	{object}	httpx.ErrorResponse	"not assigned to that workspace"
//	@Security		SessionAuth
//	@Router			/v1/me/workspace [post].
func (h *MeHandler) HandleSwitchWorkspace(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rc, ok := resolveContext(w, r, h.ResolverService, h.Signer)
	if !ok {
		return
	}

	var req switchWorkspaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	tenantID, workspaceID, err := h.ResolverService.SwitchWorkspace(ctx, rc, req.WorkspaceID)
	if err != nil {
		writeServiceError(ctx, w, r, err)
		return
	}

	h.issueSession(w, rc.User.ID, tenantID, workspaceID)
}

type switchTenantRequest struct {
	TenantID string `json:"tenant_id"`
}

// HandleSwitchTenant godoc
//
//	@Summary		Switch tenant
//	@Description	Rewrites the session against another tenant the user is a member of, landing in their first assigned workspace there.
//	@Tags			Me
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	sessionResponse
//	@Failure		403	{object}	httpx.ErrorResponse	"not a member of that tenant"
//	@Security		SessionAuth
//	@Router			/v1/me/tenant [post].
func (h *MeHandler) HandleSwitchTenant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rc, ok := resolveContext(w, r, h.ResolverService, h.Signer)
	if !ok {
		return
	}

	var req switchTenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	tenantID, workspaceID, err := h.ResolverService.SwitchTenant(ctx, rc.User.ID, req.TenantID)
	if err != nil {
		writeServiceError(ctx, w, r, err)
		return
	}

	h.issueSession(w, rc.User.ID, tenantID, workspaceID)
}

func (h *MeHandler) issueSession(w http.ResponseWriter, userID, tenantID, workspaceID string) {
	token, err := h.Signer.Issue(userID, tenantID, workspaceID)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "could not establish session")
		return
	}
	httpx.SetSessionCookie(w, token)
	httpx.WriteJSON(w, http.StatusOK, sessionResponse{
		Token:       token,
		UserID:      userID,
		TenantID:    tenantID,
		WorkspaceID: workspaceID,
	})
}

// HandleDeleteAccount godoc
//
//	@Summary		Delete the account
//	@Description	Refused while the user is the sole owner of any tenant. Clears the session on success.
//	@Tags			Me
//	@Success		204
//	@Failure		409	{object}	httpx.ErrorResponse	"account still solely owns a tenant"
//	@Security		SessionAuth
//	@Router			/v1/me [delete].
func (h *MeHandler) HandleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rc, ok := resolveContext(w, r, h.ResolverService, h.Signer)
	if !ok {
		return
	}

	if err := h.AuthService.DeleteAccount(ctx, rc.User.ID); err != nil {
		writeServiceError(ctx, w, r, err)
		return
	}

	httpx.ClearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}
