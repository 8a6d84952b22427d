package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// WaitingPeriodRepository manages persistence for waiting periods.
type WaitingPeriodRepository interface {
	Create(ctx context.Context, period *domain.WaitingPeriod) error
	Update(ctx context.Context, period *domain.WaitingPeriod) error
	FindOpenByTicket(ctx context.Context, ticketID string) (*domain.WaitingPeriod, error)
	ListByTicket(ctx context.Context, ticketID string) ([]domain.WaitingPeriod, error)
}

type waitingPeriodRepository struct {
	pool *pgxpool.Pool
}

// NewWaitingPeriodRepository constructs repository.
func NewWaitingPeriodRepository(pool *pgxpool.Pool) WaitingPeriodRepository {
	return &waitingPeriodRepository{pool: pool}
}

func (r *waitingPeriodRepository) Create(ctx context.Context, period *domain.WaitingPeriod) error {
	const query = `
        INSERT INTO waiting_periods (name, ticket_id, user_id, entry_date, end_date, count_days)
        VALUES ('WAIT/' || lpad(nextval('waiting_period_name_seq')::text, 5, '0'), $1, $2, $3, $4, $5)
        RETURNING id, name, created_at`
	return r.pool.QueryRow(ctx, query,
		period.TicketID,
		period.UserID,
		period.EntryDate,
		period.EndDate,
		period.CountDays,
	).Scan(&period.ID, &period.Name, &period.CreatedAt)
}

func (r *waitingPeriodRepository) Update(ctx context.Context, period *domain.WaitingPeriod) error {
	const query = `
        UPDATE waiting_periods SET user_id=$1, entry_date=$2, end_date=$3, count_days=$4
        WHERE id=$5`
	cmd, err := r.pool.Exec(ctx, query,
		period.UserID,
		period.EntryDate,
		period.EndDate,
		period.CountDays,
		period.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// FindOpenByTicket returns the single open period for a ticket, or
// pgx.ErrNoRows. Openness is scoped per ticket, enforced by a partial unique
// index on (ticket_id) WHERE end_date IS NULL.
func (r *waitingPeriodRepository) FindOpenByTicket(ctx context.Context, ticketID string) (*domain.WaitingPeriod, error) {
	const query = `
        SELECT id, name, ticket_id, user_id, entry_date, end_date, count_days, created_at
        FROM waiting_periods WHERE ticket_id=$1 AND end_date IS NULL
        LIMIT 1`
	var period domain.WaitingPeriod
	if err := r.pool.QueryRow(ctx, query, ticketID).Scan(
		&period.ID,
		&period.Name,
		&period.TicketID,
		&period.UserID,
		&period.EntryDate,
		&period.EndDate,
		&period.CountDays,
		&period.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &period, nil
}

func (r *waitingPeriodRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.WaitingPeriod, error) {
	const query = `
        SELECT id, name, ticket_id, user_id, entry_date, end_date, count_days, created_at
        FROM waiting_periods WHERE ticket_id=$1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.WaitingPeriod
	for rows.Next() {
		var period domain.WaitingPeriod
		if err := rows.Scan(&period.ID, &period.Name, &period.TicketID, &period.UserID,
			&period.EntryDate, &period.EndDate, &period.CountDays, &period.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, period)
	}
	return result, rows.Err()
}
