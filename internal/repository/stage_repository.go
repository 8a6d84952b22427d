package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// StageRepository manages persistence for pipeline stages.
type StageRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Stage, error)
	GetByKey(ctx context.Context, key string) (*domain.Stage, error)
	List(ctx context.Context) ([]domain.Stage, error)
}

type stageRepository struct {
	pool *pgxpool.Pool
}

// NewStageRepository constructs repository.
func NewStageRepository(pool *pgxpool.Pool) StageRepository {
	return &stageRepository{pool: pool}
}

const stageColumns = `id, name, stage_key, closed, unattended, mail_template_key, position, created_at, updated_at`

func (r *stageRepository) GetByID(ctx context.Context, id string) (*domain.Stage, error) {
	const query = `
        SELECT ` + stageColumns + `
        FROM stages WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *stageRepository) GetByKey(ctx context.Context, key string) (*domain.Stage, error) {
	const query = `
        SELECT ` + stageColumns + `
        FROM stages WHERE stage_key=$1 ORDER BY position LIMIT 1`
	return r.fetchSingle(ctx, query, key)
}

func (r *stageRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Stage, error) {
	var stage domain.Stage
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&stage.ID,
		&stage.Name,
		&stage.Key,
		&stage.Closed,
		&stage.Unattended,
		&stage.MailTemplateKey,
		&stage.Position,
		&stage.CreatedAt,
		&stage.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &stage, nil
}

func (r *stageRepository) List(ctx context.Context) ([]domain.Stage, error) {
	const query = `
        SELECT ` + stageColumns + `
        FROM stages ORDER BY position`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Stage
	for rows.Next() {
		var stage domain.Stage
		if err := rows.Scan(&stage.ID, &stage.Name, &stage.Key, &stage.Closed, &stage.Unattended,
			&stage.MailTemplateKey, &stage.Position, &stage.CreatedAt, &stage.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, stage)
	}
	return result, rows.Err()
}
