package http

import (
	"encoding/json"
	"net/http"

	"github.com/AlexandroMtzG/remix-saas-kit-sub000/internal/saas/domain"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/internal/saas/service"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/pkg/httpx"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/pkg/sessionx"
)

type ContractsHandler struct {
	ResolverService *service.ResolverService
	ContractService *service.ContractService
	Signer          *sessionx.Signer
}

type contractMemberRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

type createContractRequest struct {
	LinkID      string                  `json:"link_id"`
	Name        string                  `json:"name"`
	Description string                  `json:"description"`
	File        string                  `json:"file"`
	Members     []contractMemberRequest `json:"members"`
	EmployeeIDs []string                `json:"employee_ids"`
}

type updateContractRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	File        string `json:"file"`
}

type contractStatusRequest struct {
	Status string `json:"status"`
}

// HandleList godoc
//
//	@Summary	List contracts visible from the current workspace
//	@Tags		Contracts
//	@Produce	json
//	@Success	200	{array}	contractDTO
//	@Security	SessionAuth
//	@Router		/v1/contracts [get].
func (h *ContractsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rc, ok := resolveContext(w, r, h.ResolverService, h.Signer)
	if !ok {
		return
	}

	contracts, err := h.ContractService.ListForWorkspace(ctx, rc)
	if err != nil {
		writeServiceError(ctx, w, r, err)
		return
	}

	out := make([]contractDTO, 0, len(contracts))
	for _, c := range contracts {
		out = append(out, toContractDTO(c))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleCreate godoc
//
//	@Summary		Create a contract on an established link
//	@Description	Requires at least two signatory members and a link in the linked state. Counts against the plan's monthly contract quota.
//	@Tags			Contracts
//	@Accept			json
//	@Produce		json
//	@Param			request	body		createContractRequest	true	"Contract"
//	@Success		201		{object}	contractDTO
//	@Failure		403		{object}	httpx.ErrorResponse	"monthly quota exhausted"
//	@Failure		409		{object}	httpx.ErrorResponse	"link not established"
//	@Security		SessionAuth
//	@Router			/v1/contracts [post].
func (h *ContractsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rc, ok := resolveContext(w, r, h.ResolverService, h.Signer)
	if !ok {
		return
	}

	var req createContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	members := make([]service.MemberInput, 0, len(req.Members))
	for _, m := range req.Members {
		members = append(members, service.MemberInput{
			UserID: m.UserID,
			Role:   domain.ContractMemberRole(m.Role),
		})
	}

	fields := service.ContractFields{Name: req.Name, Description: req.Description, File: req.File}
	contract, err := h.ContractService.CreateContract(ctx, rc, req.LinkID, fields, members, req.EmployeeIDs)
	if err != nil {
		writeServiceError(ctx, w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toContractDTO(contract))
}

// HandleGet godoc
//
//	@Summary	Fetch one contract with its members and employees
//	@Tags		Contracts
//	@Produce	json
//	@Success	200	{object}	contractDTO
//	@Failure	404	{object}	httpx.ErrorResponse
//	@Security	SessionAuth
//	@Router		/v1/contracts/{id} [get].
func (h *ContractsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rc, ok := resolveContext(w, r, h.ResolverService, h.Signer)
	if !ok {
		return
	}

	detail, err := h.ContractService.GetContract(ctx, rc, r.PathValue("id"))
	if err != nil {
		writeServiceError(ctx, w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toContractDetailDTO(detail))
}

// HandleUpdate godoc
//
//	@Summary		Update contract fields
//	@Description	Rejected once any signatory has signed.
//	@Tags			Contracts
//	@Accept			json
//	@Success		204
//	@Failure		409	{object}	httpx.ErrorResponse	"contract frozen by a signature"
//	@Security		SessionAuth
//	@Router			/v1/contracts/{id} [put].
func (h *ContractsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rc, ok := resolveContext(w, r, h.ResolverService, h.Signer)
	if !ok {
		return
	}

	var req updateContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	fields := service.ContractFields{Name: req.Name, Description: req.Description, File: req.File}
	if err := h.ContractService.UpdateContract(ctx, rc, r.PathValue("id"), fields); err != nil {
		writeServiceError(ctx, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleUpdateStatus godoc
//
//	@Summary		Change contract status
//	@Description	Subject to the same signature freeze as field updates.
//	@Tags			Contracts
//	@Accept			json
//	@Success		204
//	@Failure		409	{object}	httpx.ErrorResponse
//	@Security		SessionAuth
//	@Router			/v1/contracts/{id}/status [put].
func (h *ContractsHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rc, ok := resolveContext(w, r, h.ResolverService, h.Signer)
	if !ok {
		return
	}

	var req contractStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.ContractService.UpdateContractStatus(ctx, rc, r.PathValue("id"), domain.ContractStatus(req.Status)); err != nil {
		writeServiceError(ctx, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDelete godoc
//
//	@Summary	Delete a contract
//	@Tags		Contracts
//	@Success	204
//	@Failure	404	{object}	httpx.ErrorResponse
//	@Security	SessionAuth
//	@Router		/v1/contracts/{id} [delete].
func (h *ContractsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rc, ok := resolveContext(w, r, h.ResolverService, h.Signer)
	if !ok {
		return
	}

	if err := h.ContractService.DeleteContract(ctx, rc, r.PathValue("id")); err != nil {
		writeServiceError(ctx, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSend godoc
//
//	@Summary		Notify contract members
//	@Description	Delivers a notification to every member without changing contract state.
//	@Tags			Contracts
//	@Success		202
//	@Security		SessionAuth
//	@Router			/v1/contracts/{id}/send [post].
func (h *ContractsHandler) HandleSend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rc, ok := resolveContext(w, r, h.ResolverService, h.Signer)
	if !ok {
		return
	}

	if err := h.ContractService.SendContract(ctx, rc, r.PathValue("id")); err != nil {
		writeServiceError(ctx, w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// HandleSign godoc
//
//	@Summary		Record the caller's signature
//	@Description	Signatories only, once each. Does not flip the contract status.
//	@Tags			Contracts
//	@Success		204
//	@Failure		403	{object}	httpx.ErrorResponse	"caller is not a signatory"
//	@Failure		409	{object}	httpx.ErrorResponse	"already signed"
//	@Security		SessionAuth
//	@Router			/v1/contracts/{id}/sign [post].
func (h *ContractsHandler) HandleSign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rc, ok := resolveContext(w, r, h.ResolverService, h.Signer)
	if !ok {
		return
	}

	if err := h.ContractService.RecordSignature(ctx, rc, r.PathValue("id")); err != nil {
		writeServiceError(ctx, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleActivity godoc
//
//	@Summary	Contract audit trail, oldest first
//	@Tags		Contracts
//	@Produce	json
//	@Success	200	{array}	activityDTO
//	@Failure	404	{object}	httpx.ErrorResponse
//	@Security	SessionAuth
//	@Router		/v1/contracts/{id}/activity [get].
func (h *ContractsHandler) HandleActivity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rc, ok := resolveContext(w, r, h.ResolverService, h.Signer)
	if !ok {
		return
	}

	activity, err := h.ContractService.ListActivity(ctx, rc, r.PathValue("id"))
	if err != nil {
		writeServiceError(ctx, w, r, err)
		return
	}

	out := make([]activityDTO, 0, len(activity))
	for _, a := range activity {
		out = append(out, activityDTO{
			ID:        a.ID,
			ActorID:   a.ActorID,
			Type:      string(a.Type),
			CreatedAt: a.CreatedAt,
		})
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}
