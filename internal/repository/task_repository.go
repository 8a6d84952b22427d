package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// TaskRepository manages persistence for project tasks.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	Update(ctx context.Context, task *domain.Task) error
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	// SumEffectiveHours totals effective hours across the task and its
	// subtasks.
	SumEffectiveHours(ctx context.Context, taskID string) (float64, error)
}

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository constructs repository.
func NewTaskRepository(pool *pgxpool.Pool) TaskRepository {
	return &taskRepository{pool: pool}
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	const query = `
        INSERT INTO tasks (project_id, ticket_id, parent_id, name, planned_hours, effective_hours)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		task.ProjectID,
		task.TicketID,
		task.ParentID,
		task.Name,
		task.PlannedHours,
		task.EffectiveHours,
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	const query = `
        UPDATE tasks SET project_id=$1, ticket_id=$2, parent_id=$3, name=$4,
            planned_hours=$5, effective_hours=$6, updated_at=NOW()
        WHERE id=$7`
	cmd, err := r.pool.Exec(ctx, query,
		task.ProjectID,
		task.TicketID,
		task.ParentID,
		task.Name,
		task.PlannedHours,
		task.EffectiveHours,
		task.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	const query = `
        SELECT id, project_id, ticket_id, parent_id, name, planned_hours, effective_hours, created_at, updated_at
        FROM tasks WHERE id=$1`
	var task domain.Task
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&task.ID,
		&task.ProjectID,
		&task.TicketID,
		&task.ParentID,
		&task.Name,
		&task.PlannedHours,
		&task.EffectiveHours,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) SumEffectiveHours(ctx context.Context, taskID string) (float64, error) {
	const query = `
        SELECT COALESCE(SUM(effective_hours), 0)
        FROM tasks WHERE id=$1 OR parent_id=$1`
	var total float64
	if err := r.pool.QueryRow(ctx, query, taskID).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
