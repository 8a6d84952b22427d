package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// ProjectRepository manages persistence for support-pack projects.
type ProjectRepository interface {
	Create(ctx context.Context, project *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	// FindLinkable returns the first active project of the client with nonzero
	// contracted hours and a nonzero remaining balance, or pgx.ErrNoRows.
	FindLinkable(ctx context.Context, clientID string) (*domain.Project, error)
	RemainingHours(ctx context.Context, projectID string) (float64, error)
}

type projectRepository struct {
	pool *pgxpool.Pool
}

// NewProjectRepository constructs repository.
func NewProjectRepository(pool *pgxpool.Pool) ProjectRepository {
	return &projectRepository{pool: pool}
}

func (r *projectRepository) Create(ctx context.Context, project *domain.Project) error {
	const query = `
        INSERT INTO projects (name, client_id, contracted_hours, is_active)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		project.Name,
		project.ClientID,
		project.ContractedHours,
		project.IsActive,
	).Scan(&project.ID, &project.CreatedAt, &project.UpdatedAt)
}

func (r *projectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	const query = `
        SELECT id, name, client_id, contracted_hours, is_active, created_at, updated_at
        FROM projects WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *projectRepository) FindLinkable(ctx context.Context, clientID string) (*domain.Project, error) {
	const query = `
        SELECT p.id, p.name, p.client_id, p.contracted_hours, p.is_active, p.created_at, p.updated_at
        FROM projects p
        WHERE p.client_id=$1 AND p.is_active AND p.contracted_hours <> 0
          AND p.contracted_hours - COALESCE(
                (SELECT SUM(t.effective_hours) FROM tasks t WHERE t.project_id = p.id), 0) <> 0
        ORDER BY p.created_at
        LIMIT 1`
	return r.fetchSingle(ctx, query, clientID)
}

// RemainingHours computes contracted minus consumed hours for a project.
func (r *projectRepository) RemainingHours(ctx context.Context, projectID string) (float64, error) {
	const query = `
        SELECT p.contracted_hours - COALESCE(
                (SELECT SUM(t.effective_hours) FROM tasks t WHERE t.project_id = p.id), 0)
        FROM projects p WHERE p.id=$1`
	var remaining float64
	if err := r.pool.QueryRow(ctx, query, projectID).Scan(&remaining); err != nil {
		return 0, err
	}
	return remaining, nil
}

func (r *projectRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Project, error) {
	var project domain.Project
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&project.ID,
		&project.Name,
		&project.ClientID,
		&project.ContractedHours,
		&project.IsActive,
		&project.CreatedAt,
		&project.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &project, nil
}
