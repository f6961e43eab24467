package service

import (
	"context"
	"errors"
	"strings"

	"github.com/AlexandroMtzG/remix-saas-kit-sub000/internal/saas/domain"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/internal/saas/store"
	"github.com/AlexandroMtzG/remix-saas-kit-sub000/pkg/idx"
)

var ErrEmployeeNotFound = errors.New("employee not found")

// EmployeeService manages provider-workspace staff referenced by
// contracts.
type EmployeeService struct {
	Store store.Store
}

func (s *EmployeeService) CreateEmployee(ctx context.Context, rc ResolvedContext, firstName, lastName, email string) (domain.Employee, error) {
	if !rc.Membership.Role.AtLeast(domain.RoleMember) {
		return domain.Employee{}, ErrUnauthorized
	}
	if !rc.HasWorkspace() {
		return domain.Employee{}, ErrUnauthorized
	}
	if strings.TrimSpace(firstName) == "" {
		return domain.Employee{}, validationErr("first_name", "first name is required")
	}
	if strings.TrimSpace(lastName) == "" {
		return domain.Employee{}, validationErr("last_name", "last name is required")
	}

	e := domain.Employee{
		ID:          idx.New().String(),
		WorkspaceID: rc.Workspace.ID,
		FirstName:   strings.TrimSpace(firstName),
		LastName:    strings.TrimSpace(lastName),
		Email:       strings.ToLower(strings.TrimSpace(email)),
	}
	if err := s.Store.Employees().CreateEmployee(ctx, e); err != nil {
		return domain.Employee{}, err
	}
	return e, nil
}

func (s *EmployeeService) GetEmployee(ctx context.Context, rc ResolvedContext, employeeID string) (domain.Employee, error) {
	e, err := s.Store.Employees().GetEmployeeByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Employee{}, ErrEmployeeNotFound
		}
		return domain.Employee{}, err
	}
	if !rc.HasWorkspace() || e.WorkspaceID != rc.Workspace.ID {
		return domain.Employee{}, ErrEmployeeNotFound
	}
	return e, nil
}

func (s *EmployeeService) ListEmployees(ctx context.Context, rc ResolvedContext) ([]domain.Employee, error) {
	if !rc.HasWorkspace() {
		return nil, ErrUnauthorized
	}
	return s.Store.Employees().ListEmployeesForWorkspace(ctx, rc.Workspace.ID)
}
