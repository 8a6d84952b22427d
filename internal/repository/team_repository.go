package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// TeamRepository manages persistence for teams and their member lists.
type TeamRepository interface {
	Create(ctx context.Context, team *domain.Team) error
	Update(ctx context.Context, team *domain.Team) error
	GetByID(ctx context.Context, id string) (*domain.Team, error)
	ListMembers(ctx context.Context, teamID string) ([]domain.TeamMember, error)
}

type teamRepository struct {
	pool *pgxpool.Pool
}

// NewTeamRepository constructs repository.
func NewTeamRepository(pool *pgxpool.Pool) TeamRepository {
	return &teamRepository{pool: pool}
}

func (r *teamRepository) Create(ctx context.Context, team *domain.Team) error {
	const query = `
        INSERT INTO teams (name, assign_policy, lead_user_id, response_sla_hours, is_active)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		team.Name,
		team.AssignPolicy,
		team.LeadUserID,
		team.ResponseSLAHours,
		team.IsActive,
	).Scan(&team.ID, &team.CreatedAt, &team.UpdatedAt)
}

func (r *teamRepository) Update(ctx context.Context, team *domain.Team) error {
	const query = `
        UPDATE teams SET name=$1, assign_policy=$2, lead_user_id=$3, response_sla_hours=$4, is_active=$5, updated_at=NOW()
        WHERE id=$6`
	cmd, err := r.pool.Exec(ctx, query,
		team.Name,
		team.AssignPolicy,
		team.LeadUserID,
		team.ResponseSLAHours,
		team.IsActive,
		team.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *teamRepository) GetByID(ctx context.Context, id string) (*domain.Team, error) {
	const query = `
        SELECT id, name, assign_policy, lead_user_id, response_sla_hours, is_active, created_at, updated_at
        FROM teams WHERE id=$1`
	var team domain.Team
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&team.ID,
		&team.Name,
		&team.AssignPolicy,
		&team.LeadUserID,
		&team.ResponseSLAHours,
		&team.IsActive,
		&team.CreatedAt,
		&team.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &team, nil
}

// ListMembers returns members in their configured position order, which is
// the tie-break order for equitable assignment.
func (r *teamRepository) ListMembers(ctx context.Context, teamID string) ([]domain.TeamMember, error) {
	const query = `
        SELECT id, team_id, user_id, position
        FROM team_members WHERE team_id=$1 ORDER BY position`
	rows, err := r.pool.Query(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TeamMember
	for rows.Next() {
		var member domain.TeamMember
		if err := rows.Scan(&member.ID, &member.TeamID, &member.UserID, &member.Position); err != nil {
			return nil, err
		}
		result = append(result, member)
	}
	return result, rows.Err()
}
