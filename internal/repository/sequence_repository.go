package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Sequence describes one numbering sequence.
type Sequence struct {
	Code      string
	Prefix    string
	Padding   int
	NextValue int64
	ClientID  *string
}

// SequenceRepository issues scoped ticket numbers.
type SequenceRepository interface {
	Create(ctx context.Context, seq *Sequence) error
	// NextNumber atomically consumes the next value of a sequence and formats
	// it with the sequence prefix and padding. Returns pgx.ErrNoRows when no
	// sequence with the code exists.
	NextNumber(ctx context.Context, code string) (string, error)
}

type sequenceRepository struct {
	pool *pgxpool.Pool
}

// NewSequenceRepository constructs repository.
func NewSequenceRepository(pool *pgxpool.Pool) SequenceRepository {
	return &sequenceRepository{pool: pool}
}

func (r *sequenceRepository) Create(ctx context.Context, seq *Sequence) error {
	const query = `
        INSERT INTO sequences (code, prefix, padding, next_value, client_id)
        VALUES ($1,$2,$3,$4,$5)
        ON CONFLICT (code) DO NOTHING`
	_, err := r.pool.Exec(ctx, query, seq.Code, seq.Prefix, seq.Padding, seq.NextValue, seq.ClientID)
	return err
}

func (r *sequenceRepository) NextNumber(ctx context.Context, code string) (string, error) {
	const query = `
        UPDATE sequences SET next_value = next_value + 1
        WHERE code=$1
        RETURNING prefix, padding, next_value - 1`
	var (
		prefix  string
		padding int
		value   int64
	)
	if err := r.pool.QueryRow(ctx, query, code).Scan(&prefix, &padding, &value); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%0*d", prefix, padding, value), nil
}
