package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// HRService backs the employee lookup facade. Records are keyed by login
// email; the endpoints are read-only.
type HRService struct {
	employees repository.EmployeeRepository
}

// NewHRService constructs the service.
func NewHRService(employees repository.EmployeeRepository) *HRService {
	return &HRService{employees: employees}
}

// ListActiveEmployees returns every active employee record.
func (s *HRService) ListActiveEmployees(ctx context.Context) ([]domain.Employee, error) {
	employees, err := s.employees.ListActive(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return employees, nil
}

// GetEmployee looks an employee up by login email.
func (s *HRService) GetEmployee(ctx context.Context, login string) (*domain.Employee, error) {
	employee, err := s.employees.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("employee", map[string]any{"login": login})
		}
		return nil, apperrors.MapError(err)
	}
	return employee, nil
}

// ListExperiences returns the work history for the employee with the login.
func (s *HRService) ListExperiences(ctx context.Context, login string) ([]domain.Experience, error) {
	employee, err := s.GetEmployee(ctx, login)
	if err != nil {
		return nil, err
	}
	items, err := s.employees.ListExperiences(ctx, employee.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return items, nil
}

// ListSkills returns the rated skills for the employee with the login.
func (s *HRService) ListSkills(ctx context.Context, login string) ([]domain.Skill, error) {
	employee, err := s.GetEmployee(ctx, login)
	if err != nil {
		return nil, err
	}
	items, err := s.employees.ListSkills(ctx, employee.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return items, nil
}
