package http

import (
	"encoding/json"
	"net/http"

	"github.com/AlexandroMtzG/remix-saas-kit-sub000/internal/saas/service"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/pkg/httpx"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/pkg/sessionx"
)

type EmployeesHandler struct {
	ResolverService *service.ResolverService
	EmployeeService *service.EmployeeService
	Signer          *sessionx.Signer
}

type employeeRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// HandleList godoc
//
//	@Summary	List employees of the current workspace
//	@Tags		Employees
//	@Produce	json
//	@Success	200	{array}	employeeDTO
//	@Security	SessionAuth
//	@Router		/v1/employees [get].
func (h *EmployeesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rc, ok := resolveContext(w, r, h.ResolverService, h.Signer)
	if !ok {
		return
	}

	employees, err := h.EmployeeService.ListEmployees(ctx, rc)
	if err != nil {
		writeServiceError(ctx, w, r, err)
		return
	}

	out := make([]employeeDTO, 0, len(employees))
	for _, e := range employees {
		out = append(out, toEmployeeDTO(e))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleCreate godoc
//
//	@Summary	Register an employee in the current workspace
//	@Tags		Employees
//	@Accept		json
//	@Produce	json
//	@Param		request	body		employeeRequest	true	"Employee"
//	@Success	201		{object}	employeeDTO
//	@Failure	400		{object}	httpx.ErrorResponse
//	@Security	SessionAuth
//	@Router		/v1/employees [post].
func (h *EmployeesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rc, ok := resolveContext(w, r, h.ResolverService, h.Signer)
	if !ok {
		return
	}

	var req employeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	emp, err := h.EmployeeService.CreateEmployee(ctx, rc, req.FirstName, req.LastName, req.Email)
	if err != nil {
		writeServiceError(ctx, w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

// HandleGet godoc
//
//	@Summary	Fetch one employee
//	@Tags		Employees
//	@Produce	json
//	@Success	200	{object}	employeeDTO
//	@Failure	404	{object}	httpx.ErrorResponse
//	@Security	SessionAuth
//	@Router		/v1/employees/{id} [get].
func (h *EmployeesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rc, ok := resolveContext(w, r, h.ResolverService, h.Signer)
	if !ok {
		return
	}

	emp, err := h.EmployeeService.GetEmployee(ctx, rc, r.PathValue("id"))
	if err != nil {
		writeServiceError(ctx, w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toEmployeeDTO(emp))
}
