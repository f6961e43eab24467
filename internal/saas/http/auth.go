package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/AlexandroMtzG/remix-saas-kit-sub000/internal/saas/service"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/pkg/httpx"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/pkg/sessionx"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/pkg/slogx"
)

type AuthHandler struct {
	AuthService *service.AuthService
	Signer      *sessionx.Signer
}

type signupRequest struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	TenantName    string `json:"tenant_name"`
	WorkspaceName string `json:"workspace_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token       string `json:"token"`
	UserID      string `json:"user_id"`
	TenantID    string `json:"tenant_id"`
	WorkspaceID string `json:"workspace_id,omitempty"`
}

// HandleSignup godoc
//
//	@Summary		Sign up
//	@Description	Create a user, their organization, its first workspace and the founding owner membership.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		signupRequest			true	"Signup request"
//	@Success		201		{object}	sessionResponse			"session token and context ids"
//	@Failure		400		{object}	httpx.ErrorResponse		"error, error_description, field"
//	@Failure		409		{object}	httpx.ErrorResponse		"email already registered"
//	@Router			/v1/auth/signup [post].
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	result, err := h.AuthService.Signup(ctx, req.Email, req.Password, req.FirstName, req.LastName, req.TenantName, req.WorkspaceName)
	if err != nil {
		writeServiceError(ctx, w, r, err)
		return
	}

	token, err := h.Signer.Issue(result.UserID, result.TenantID, result.WorkspaceID)
	if err != nil {
		log.Error("failed to issue session", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "could not establish session")
		return
	}

	httpx.SetSessionCookie(w, token)
	httpx.WriteJSON(w, http.StatusCreated, sessionResponse{
		Token:       token,
		UserID:      result.UserID,
		TenantID:    result.TenantID,
		WorkspaceID: result.WorkspaceID,
	})
}

// HandleLogin godoc
//
//	@Summary		Log in
//	@Description	Verify credentials and establish a session in the user's first tenant and workspace.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		loginRequest		true	"Login request"
//	@Success		200		{object}	sessionResponse		"session token and context ids"
//	@Failure		401		{object}	httpx.ErrorResponse	"invalid credentials"
//	@Router			/v1/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	result, err := h.AuthService.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password")
			return
		}
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

// HandleLogout godoc
//
//	@Summary	Log out
//	@Tags		Auth
//	@Success	204	"session cookie cleared"
//	@Router		/v1/auth/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, _ *http.Request) {
	httpx.ClearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}
