package sqlite

import (
	"context"
	"time"

	"github.com/AlexandroMtzG/remix-saas-kit-sub000/internal/saas/domain"
)

type employeesRepo struct {
	db dbtx
}

const employeeColumns = `id, workspace_id, first_name, last_name, email, created_at, updated_at`

func scanEmployee(row interface{ Scan(...any) error }) (domain.Employee, error) {
	var e domain.Employee
	err := row.Scan(
		&e.ID, &e.WorkspaceID, &e.FirstName, &e.LastName, &e.Email,
		&e.CreatedAt, &e.UpdatedAt,
	)
	return e, err
}

func (r *employeesRepo) GetEmployeeByID(ctx context.Context, id string) (domain.Employee, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE id = ?`, id)
	e, err := scanEmployee(row)
	if err != nil {
		return domain.Employee{}, mapNotFound(err)
	}
	return e, nil
}

func (r *employeesRepo) CreateEmployee(ctx context.Context, e domain.Employee) error {
	now := time.Now().UTC()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = now
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO employees (id, workspace_id, first_name, last_name, email, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.WorkspaceID, e.FirstName, e.LastName, e.Email, e.CreatedAt, e.UpdatedAt,
	)
	return mapConstraint(err)
}

func (r *employeesRepo) ListEmployeesForWorkspace(ctx context.Context, workspaceID string) ([]domain.Employee, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE workspace_id = ? ORDER BY created_at ASC, id ASC`,
		workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
