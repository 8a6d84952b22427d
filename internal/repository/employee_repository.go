package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// EmployeeRepository backs the HR lookup facade.
type EmployeeRepository interface {
	ListActive(ctx context.Context) ([]domain.Employee, error)
	GetByLogin(ctx context.Context, login string) (*domain.Employee, error)
	ListExperiences(ctx context.Context, employeeID string) ([]domain.Experience, error)
	ListSkills(ctx context.Context, employeeID string) ([]domain.Skill, error)
}

type employeeRepository struct {
	pool *pgxpool.Pool
}

// NewEmployeeRepository constructs repository.
func NewEmployeeRepository(pool *pgxpool.Pool) EmployeeRepository {
	return &employeeRepository{pool: pool}
}

const employeeColumns = `id, user_id, login, name, city, state, phone, level, field, study, is_active`

func (r *employeeRepository) ListActive(ctx context.Context) ([]domain.Employee, error) {
	const query = `SELECT ` + employeeColumns + ` FROM employees WHERE is_active ORDER BY name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Employee
	for rows.Next() {
		var emp domain.Employee
		if err := rows.Scan(&emp.ID, &emp.UserID, &emp.Login, &emp.Name, &emp.City, &emp.State,
			&emp.Phone, &emp.Level, &emp.Field, &emp.Study, &emp.IsActive); err != nil {
			return nil, err
		}
		result = append(result, emp)
	}
	return result, rows.Err()
}

func (r *employeeRepository) GetByLogin(ctx context.Context, login string) (*domain.Employee, error) {
	const query = `SELECT ` + employeeColumns + ` FROM employees WHERE login=$1 AND is_active`
	var emp domain.Employee
	if err := r.pool.QueryRow(ctx, query, login).Scan(
		&emp.ID,
		&emp.UserID,
		&emp.Login,
		&emp.Name,
		&emp.City,
		&emp.State,
		&emp.Phone,
		&emp.Level,
		&emp.Field,
		&emp.Study,
		&emp.IsActive,
	); err != nil {
		return nil, err
	}
	return &emp, nil
}

func (r *employeeRepository) ListExperiences(ctx context.Context, employeeID string) ([]domain.Experience, error) {
	const query = `
        SELECT id, employee_id, company, role, start_date, end_date, description
        FROM experiences WHERE employee_id=$1 ORDER BY start_date DESC`
	rows, err := r.pool.Query(ctx, query, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Experience
	for rows.Next() {
		var exp domain.Experience
		if err := rows.Scan(&exp.ID, &exp.EmployeeID, &exp.Company, &exp.Role,
			&exp.StartDate, &exp.EndDate, &exp.Description); err != nil {
			return nil, err
		}
		result = append(result, exp)
	}
	return result, rows.Err()
}

func (r *employeeRepository) ListSkills(ctx context.Context, employeeID string) ([]domain.Skill, error) {
	const query = `
        SELECT id, employee_id, name, level
        FROM skills WHERE employee_id=$1 ORDER BY name`
	rows, err := r.pool.Query(ctx, query, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Skill
	for rows.Next() {
		var skill domain.Skill
		if err := rows.Scan(&skill.ID, &skill.EmployeeID, &skill.Name, &skill.Level); err != nil {
			return nil, err
		}
		result = append(result, skill)
	}
	return result, rows.Err()
}
