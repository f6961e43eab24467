package http

import (
	"time"

	"github.com/AlexandroMtzG/remix-saas-kit-sub000/internal/saas/domain"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/internal/saas/service"
)

// Wire representations. Kept separate from the domain types so the JSON
// surface can evolve independently.

type userDTO struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Avatar    string `json:"avatar,omitempty"`
}

func toUserDTO(u domain.User) userDTO {
	return userDTO{ID: u.ID, Email: u.Email, FirstName: u.FirstName, LastName: u.LastName, Avatar: u.Avatar}
}

type tenantDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type workspaceDTO struct {
	ID                   string     `json:"id"`
	Name                 string     `json:"name"`
	Kind                 int        `json:"kind"`
	BusinessMainActivity string     `json:"business_main_activity,omitempty"`
	RegistrationNumber   string     `json:"registration_number,omitempty"`
	RegistrationDate     *time.Time `json:"registration_date,omitempty"`
}

func toWorkspaceDTO(w domain.Workspace) workspaceDTO {
	return workspaceDTO{
		ID:                   w.ID,
		Name:                 w.Name,
		Kind:                 int(w.Kind),
		BusinessMainActivity: w.BusinessMainActivity,
		RegistrationNumber:   w.RegistrationNumber,
		RegistrationDate:     w.RegistrationDate,
	}
}

func toWorkspaceDTOs(ws []domain.Workspace) []workspaceDTO {
	out := make([]workspaceDTO, 0, len(ws))
	for _, w := range ws {
		out = append(out, toWorkspaceDTO(w))
	}
	return out
}

type membershipDTO struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	TenantID string `json:"tenant_id"`
	Role     string `json:"role"`
}

func toMembershipDTO(m domain.Membership) membershipDTO {
	return membershipDTO{ID: m.ID, UserID: m.UserID, TenantID: m.TenantID, Role: m.Role.String()}
}

type entitlementDTO struct {
	MaxWorkspaces       int `json:"max_workspaces"`
	MaxUsers            int `json:"max_users"`
	MaxMonthlyContracts int `json:"max_monthly_contracts"`
}

type contextDTO struct {
	User        userDTO        `json:"user"`
	Tenant      tenantDTO      `json:"tenant"`
	Membership  membershipDTO  `json:"membership"`
	Workspace   *workspaceDTO  `json:"workspace,omitempty"`
	Entitlement entitlementDTO `json:"entitlement"`
}

func toContextDTO(rc service.ResolvedContext) contextDTO {
	dto := contextDTO{
		User:       toUserDTO(rc.User),
		Tenant:     tenantDTO{ID: rc.Tenant.ID, Name: rc.Tenant.Name},
		Membership: toMembershipDTO(rc.Membership),
		Entitlement: entitlementDTO{
			MaxWorkspaces:       rc.Entitlement.MaxWorkspaces,
			MaxUsers:            rc.Entitlement.MaxUsers,
			MaxMonthlyContracts: rc.Entitlement.MaxMonthlyContracts,
		},
	}
	if rc.HasWorkspace() {
		ws := toWorkspaceDTO(rc.Workspace)
		dto.Workspace = &ws
	}
	return dto
}

type linkDTO struct {
	ID                   string `json:"id"`
	ProviderWorkspaceID  string `json:"provider_workspace_id"`
	ClientWorkspaceID    string `json:"client_workspace_id"`
	CreatedByWorkspaceID string `json:"created_by_workspace_id"`
	Status               string `json:"status"`
}

func toLinkDTO(l domain.Link) linkDTO {
	return linkDTO{
		ID:                   l.ID,
		ProviderWorkspaceID:  l.ProviderWorkspaceID,
		ClientWorkspaceID:    l.ClientWorkspaceID,
		CreatedByWorkspaceID: l.CreatedByWorkspaceID,
		Status:               string(l.Status),
	}
}

type contractMemberDTO struct {
	UserID   string     `json:"user_id"`
	Role     string     `json:"role"`
	SignDate *time.Time `json:"sign_date,omitempty"`
}

type contractDTO struct {
	ID          string              `json:"id"`
	LinkID      string              `json:"link_id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	File        string              `json:"file"`
	Status      string              `json:"status"`
	Members     []contractMemberDTO `json:"members,omitempty"`
	EmployeeIDs []string            `json:"employee_ids,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
}

func toContractDTO(c domain.Contract) contractDTO {
	return contractDTO{
		ID:          c.ID,
		LinkID:      c.LinkID,
		Name:        c.Name,
		Description: c.Description,
		File:        c.File,
		Status:      string(c.Status),
		CreatedAt:   c.CreatedAt,
	}
}

func toContractDetailDTO(d service.ContractDetail) contractDTO {
	dto := toContractDTO(d.Contract)
	for _, m := range d.Members {
		dto.Members = append(dto.Members, contractMemberDTO{
			UserID:   m.UserID,
			Role:     string(m.Role),
			SignDate: m.SignDate,
		})
	}
	for _, e := range d.Employees {
		dto.EmployeeIDs = append(dto.EmployeeIDs, e.EmployeeID)
	}
	return dto
}

type activityDTO struct {
	ID        string    `json:"id"`
	ActorID   string    `json:"actor_id"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

type employeeDTO struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

func toEmployeeDTO(e domain.Employee) employeeDTO {
	return employeeDTO{ID: e.ID, FirstName: e.FirstName, LastName: e.LastName, Email: e.Email}
}
