package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// PartnerRepository manages persistence for contacts and client organizations.
type PartnerRepository interface {
	Create(ctx context.Context, partner *domain.Partner) error
	Update(ctx context.Context, partner *domain.Partner) error
	GetByID(ctx context.Context, id string) (*domain.Partner, error)
	GetByEmail(ctx context.Context, email string) (*domain.Partner, error)
}

type partnerRepository struct {
	pool *pgxpool.Pool
}

// NewPartnerRepository constructs repository.
func NewPartnerRepository(pool *pgxpool.Pool) PartnerRepository {
	return &partnerRepository{pool: pool}
}

const partnerColumns = `id, name, email, phone, city, state, is_company, parent_id, helpdesk_level, sequence_code, created_at, updated_at`

func (r *partnerRepository) Create(ctx context.Context, partner *domain.Partner) error {
	const query = `
        INSERT INTO partners (name, email, phone, city, state, is_company, parent_id, helpdesk_level, sequence_code)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		partner.Name,
		partner.Email,
		partner.Phone,
		partner.City,
		partner.State,
		partner.IsCompany,
		partner.ParentID,
		partner.HelpdeskLevel,
		partner.SequenceCode,
	).Scan(&partner.ID, &partner.CreatedAt, &partner.UpdatedAt)
}

func (r *partnerRepository) Update(ctx context.Context, partner *domain.Partner) error {
	const query = `
        UPDATE partners SET name=$1, email=$2, phone=$3, city=$4, state=$5, is_company=$6,
            parent_id=$7, helpdesk_level=$8, sequence_code=$9, updated_at=NOW()
        WHERE id=$10`
	cmd, err := r.pool.Exec(ctx, query,
		partner.Name,
		partner.Email,
		partner.Phone,
		partner.City,
		partner.State,
		partner.IsCompany,
		partner.ParentID,
		partner.HelpdeskLevel,
		partner.SequenceCode,
		partner.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *partnerRepository) GetByID(ctx context.Context, id string) (*domain.Partner, error) {
	const query = `SELECT ` + partnerColumns + ` FROM partners WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *partnerRepository) GetByEmail(ctx context.Context, email string) (*domain.Partner, error) {
	const query = `SELECT ` + partnerColumns + ` FROM partners WHERE email=$1`
	return r.fetchSingle(ctx, query, email)
}

func (r *partnerRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Partner, error) {
	var partner domain.Partner
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&partner.ID,
		&partner.Name,
		&partner.Email,
		&partner.Phone,
		&partner.City,
		&partner.State,
		&partner.IsCompany,
		&partner.ParentID,
		&partner.HelpdeskLevel,
		&partner.SequenceCode,
		&partner.CreatedAt,
		&partner.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &partner, nil
}
