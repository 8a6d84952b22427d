package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// LookupRepository serves the static intake classifiers.
type LookupRepository interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	ListModules(ctx context.Context) ([]domain.Module, error)
	ListChannels(ctx context.Context) ([]domain.Channel, error)
}

type lookupRepository struct {
	pool *pgxpool.Pool
}

// NewLookupRepository constructs repository.
func NewLookupRepository(pool *pgxpool.Pool) LookupRepository {
	return &lookupRepository{pool: pool}
}

func (r *lookupRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	const query = `SELECT id, name, is_active, created_at FROM categories WHERE is_active ORDER BY name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Category
	for rows.Next() {
		var item domain.Category
		if err := rows.Scan(&item.ID, &item.Name, &item.IsActive, &item.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}

func (r *lookupRepository) ListModules(ctx context.Context) ([]domain.Module, error) {
	const query = `SELECT id, name, is_active, created_at FROM modules WHERE is_active ORDER BY name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Module
	for rows.Next() {
		var item domain.Module
		if err := rows.Scan(&item.ID, &item.Name, &item.IsActive, &item.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}

func (r *lookupRepository) ListChannels(ctx context.Context) ([]domain.Channel, error) {
	const query = `SELECT id, name, is_active, created_at FROM channels WHERE is_active ORDER BY name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Channel
	for rows.Next() {
		var item domain.Channel
		if err := rows.Scan(&item.ID, &item.Name, &item.IsActive, &item.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}
