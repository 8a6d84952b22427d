package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// PriorityCrossRepository looks up the urgency/impact cross table.
type PriorityCrossRepository interface {
	Find(ctx context.Context, urgencyKey, impactLevel string) (*domain.PriorityCrossRef, error)
}

type priorityCrossRepository struct {
	pool *pgxpool.Pool
}

// NewPriorityCrossRepository constructs repository.
func NewPriorityCrossRepository(pool *pgxpool.Pool) PriorityCrossRepository {
	return &priorityCrossRepository{pool: pool}
}

func (r *priorityCrossRepository) Find(ctx context.Context, urgencyKey, impactLevel string) (*domain.PriorityCrossRef, error) {
	const query = `
        SELECT id, urgency_key, impact_level, priority
        FROM priority_cross_refs WHERE urgency_key=$1 AND impact_level=$2
        LIMIT 1`
	var ref domain.PriorityCrossRef
	if err := r.pool.QueryRow(ctx, query, urgencyKey, impactLevel).Scan(
		&ref.ID,
		&ref.UrgencyKey,
		&ref.ImpactLevel,
		&ref.Priority,
	); err != nil {
		return nil, err
	}
	return &ref, nil
}
