package http

import (
	"encoding/json"
	"net/http"

	"github.com/AlexandroMtzG/remix-saas-kit-sub000/internal/saas/domain"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/internal/saas/service"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/pkg/httpx"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/pkg/sessionx"
)

type MembersHandler struct {
	ResolverService   *service.ResolverService
	MembershipService *service.MembershipService
	Signer            *sessionx.Signer
}

// HandleList godoc
//
//	@Summary	List tenant members
//	@Tags		Members
//	@Produce	json
//	@Success	200	{array}	membershipDTO
//	@Security	SessionAuth
//	@Router		/v1/members [get].
func (h *MembersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rc, ok := resolveContext(w, r, h.ResolverService, h.Signer)
	if !ok {
		return
	}

	members, err := h.MembershipService.ListMembers(ctx, rc)
	if err != nil {
		writeServiceError(ctx, w, r, err)
		return
	}

	out := make([]membershipDTO, 0, len(members))
	for _, m := range members {
		out = append(out, toMembershipDTO(m))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

type inviteRequest struct {
	Email        string   `json:"email"`
	Role         string   `json:"role"`
	WorkspaceIDs []string `json:"workspace_ids"`
}

type inviteResponse struct {
	Token string `json:"token"`
}

// HandleInvite godoc
//
//	@Summary		Invite a member
//	@Description	Creates an invitation with a proposed role and workspace set. Owner/admin only; gated by the user quota.
//	@Tags			Members
//	@Accept			json
//	@Produce		json
//	@Param			request	body		inviteRequest	true	"Invite request"
//	@Success		201		{object}	inviteResponse	"opaque invite token"
//	@Failure		400		{object}	httpx.ErrorResponse
//	@Failure		403		{object}	httpx.ErrorResponse	"role too low or quota exhausted"
//	@Failure		409		{object}	httpx.ErrorResponse	"already a member"
//	@Security		SessionAuth
//	@Router			/v1/members/invite [post].
func (h *MembersHandler) HandleInvite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rc, ok := resolveContext(w, r, h.ResolverService, h.Signer)
	if !ok {
		return
	}

	var req inviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	role, err := domain.ParseRole(req.Role)
	if err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, httpx.ErrorResponse{
			Error:            "validation_failed",
			ErrorDescription: "unknown role",
			Field:            "role",
		})
		return
	}

	token, err := h.MembershipService.InviteMember(ctx, rc, req.Email, role, req.WorkspaceIDs)
	if err != nil {
		writeServiceError(ctx, w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, inviteResponse{Token: token})
}

type redeemRequest struct {
	Token     string `json:"token"`
	Password  string `json:"password,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// HandleRedeem godoc
//
//	@Summary		Redeem an invitation
//	@Description	Consumes an invitation exactly once, producing a membership and its workspace assignments. Creates the account when no session is present.
//	@Tags			Members
//	@Accept			json
//	@Produce		json
//	@Param			request	body		redeemRequest	true	"Redeem request"
//	@Success		200		{object}	sessionResponse
//	@Failure		404		{object}	httpx.ErrorResponse	"token unknown, expired or already redeemed"
//	@Router			/v1/members/redeem [post].
func (h *MembersHandler) HandleRedeem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req redeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Token == "" {
		httpx.WriteJSON(w, http.StatusBadRequest, httpx.ErrorResponse{
			Error:            "validation_failed",
			ErrorDescription: "token is required",
			Field:            "token",
		})
		return
	}

	// An already-authenticated user redeems onto their existing account;
	// otherwise the redemption creates one. The route skips the session
	// middleware, so the cookie is checked directly here.
	redeem := service.RedeemRequest{
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if c, err := r.Cookie(httpx.SessionCookieName); err == nil && c.Value != "" {
		if claims, err := h.Signer.Verify(c.Value); err == nil {
			redeem = service.RedeemRequest{UserID: claims.UserID}
		}
	}

	result, err := h.MembershipService.RedeemInvitation(ctx, req.Token, redeem)
	if err != nil {
		writeServiceError(ctx, w, r, err)
		return
	}

	token, err := h.Signer.Issue(result.UserID, result.TenantID, result.WorkspaceID)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "could not establish session")
		return
	}

	httpx.SetSessionCookie(w, token)
	httpx.WriteJSON(w, http.StatusOK, sessionResponse{
		Token:       token,
		UserID:      result.UserID,
		TenantID:    result.TenantID,
		WorkspaceID: result.WorkspaceID,
	})
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

// HandleUpdateRole godoc
//
//	@Summary		Change a member's role
//	@Description	Only an owner may grant or revoke the owner role. The tenant always keeps at least one owner.
//	@Tags			Members
//	@Accept			json
//	@Success		204
//	@Failure		403	{object}	httpx.ErrorResponse
//	@Failure		409	{object}	httpx.ErrorResponse	"would leave zero owners"
//	@Security		SessionAuth
//	@Router			/v1/members/{id}/role [put].
func (h *MembersHandler) HandleUpdateRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rc, ok := resolveContext(w, r, h.ResolverService, h.Signer)
	if !ok {
		return
	}

	var req updateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	role, err := domain.ParseRole(req.Role)
	if err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, httpx.ErrorResponse{
			Error:            "validation_failed",
			ErrorDescription: "unknown role",
			Field:            "role",
		})
		return
	}

	if err := h.MembershipService.UpdateMemberRole(ctx, rc, r.PathValue("id"), role); err != nil {
		writeServiceError(ctx, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type reassignRequest struct {
	WorkspaceIDs []string `json:"workspace_ids"`
}

// HandleReassign godoc
//
//	@Summary		Replace a member's workspace set
//	@Description	Atomic replacement; the new set must be non-empty.
//	@Tags			Members
//	@Accept			json
//	@Success		204
//	@Failure		409	{object}	httpx.ErrorResponse	"would strand the member"
//	@Security		SessionAuth
//	@Router			/v1/members/{id}/workspaces [put].
func (h *MembersHandler) HandleReassign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rc, ok := resolveContext(w, r, h.ResolverService, h.Signer)
	if !ok {
		return
	}

	var req reassignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.MembershipService.ReassignWorkspaces(ctx, rc, r.PathValue("id"), req.WorkspaceIDs); err != nil {
		writeServiceError(ctx, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRemove godoc
//
//	@Summary	Remove a member
//	@Tags		Members
//	@Success	204
//	@Failure	403	{object}	httpx.ErrorResponse
//	@Failure	409	{object}	httpx.ErrorResponse	"would leave zero owners"
//	@Security	SessionAuth
//	@Router		/v1/members/{id} [delete].
func (h *MembersHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rc, ok := resolveContext(w, r, h.ResolverService, h.Signer)
	if !ok {
		return
	}

	if err := h.MembershipService.RemoveMember(ctx, rc, r.PathValue("id")); err != nil {
		writeServiceError(ctx, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
