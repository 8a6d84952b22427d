package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

const ticketColumns = `id, number, title, description, category_id, module_id, channel_id,
               urgency_key, impact_level, priority,
               working, waiting, resolved, cancelled, needs_email, task_required,
               kanban_state, color, fixed_fee, stage_id,
               entry_date, end_date, last_stage_update, closed_date,
               client_id, contact_id, assignee_user_id, team_id, project_id, task_id,
               planned_duration_days, real_duration_days, dedicated_hours,
               created_at, updated_at`

// TicketFilter captures portal search parameters.
type TicketFilter struct {
	ClientID    *string
	ContactID   *string
	AssigneeID  *string
	TeamID      *string
	StageID     *string
	Closed      *bool
	Working     *bool
	SearchTerm  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	OrderBy     string
	Limit       int
	Offset      int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	GetByNumber(ctx context.Context, number string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	CountWithFilter(ctx context.Context, filter TicketFilter) (int, error)
	CountOpenByAssignee(ctx context.Context, userID string) (int, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (number, title, description, category_id, module_id, channel_id,
            urgency_key, impact_level, priority,
            working, waiting, resolved, cancelled, needs_email, task_required,
            kanban_state, color, fixed_fee, stage_id,
            entry_date, end_date, last_stage_update, closed_date,
            client_id, contact_id, assignee_user_id, team_id, project_id, task_id,
            planned_duration_days, real_duration_days, dedicated_hours)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,
                $20,$21,$22,$23,$24,$25,$26,$27,$28,$29,$30,$31,$32)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.Number,
		ticket.Title,
		ticket.Description,
		ticket.CategoryID,
		ticket.ModuleID,
		ticket.ChannelID,
		ticket.UrgencyKey,
		ticket.ImpactLevel,
		ticket.Priority,
		ticket.Working,
		ticket.Waiting,
		ticket.Resolved,
		ticket.Cancelled,
		ticket.NeedsEmail,
		ticket.TaskRequired,
		ticket.KanbanState,
		ticket.Color,
		ticket.FixedFee,
		ticket.StageID,
		ticket.EntryDate,
		ticket.EndDate,
		ticket.LastStageUpdate,
		ticket.ClosedDate,
		ticket.ClientID,
		ticket.ContactID,
		ticket.AssigneeID,
		ticket.TeamID,
		ticket.ProjectID,
		ticket.TaskID,
		ticket.PlannedDurationDays,
		ticket.RealDurationDays,
		ticket.DedicatedHours,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET title=$1, description=$2, category_id=$3, module_id=$4, channel_id=$5,
            urgency_key=$6, impact_level=$7, priority=$8,
            working=$9, waiting=$10, resolved=$11, cancelled=$12, needs_email=$13, task_required=$14,
            kanban_state=$15, color=$16, fixed_fee=$17, stage_id=$18,
            entry_date=$19, end_date=$20, last_stage_update=$21, closed_date=$22,
            client_id=$23, contact_id=$24, assignee_user_id=$25, team_id=$26, project_id=$27, task_id=$28,
            planned_duration_days=$29, real_duration_days=$30, dedicated_hours=$31, updated_at=NOW()
        WHERE id=$32`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.CategoryID,
		ticket.ModuleID,
		ticket.ChannelID,
		ticket.UrgencyKey,
		ticket.ImpactLevel,
		ticket.Priority,
		ticket.Working,
		ticket.Waiting,
		ticket.Resolved,
		ticket.Cancelled,
		ticket.NeedsEmail,
		ticket.TaskRequired,
		ticket.KanbanState,
		ticket.Color,
		ticket.FixedFee,
		ticket.StageID,
		ticket.EntryDate,
		ticket.EndDate,
		ticket.LastStageUpdate,
		ticket.ClosedDate,
		ticket.ClientID,
		ticket.ContactID,
		ticket.AssigneeID,
		ticket.TeamID,
		ticket.ProjectID,
		ticket.TaskID,
		ticket.PlannedDurationDays,
		ticket.RealDurationDays,
		ticket.DedicatedHours,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1`, ticketColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketRepository) GetByNumber(ctx context.Context, number string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE number=$1`, ticketColumns)
	return r.fetchSingle(ctx, query, number)
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := scanTicket(r.pool.QueryRow(ctx, query, arg), &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses, args := ticketFilterClauses(filter)

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	order := ticketOrder(filter.OrderBy)

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY %s LIMIT %d OFFSET %d`,
		ticketColumns, strings.Join(clauses, " AND "), order, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) CountWithFilter(ctx context.Context, filter TicketFilter) (int, error) {
	clauses, args := ticketFilterClauses(filter)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM tickets WHERE %s`, strings.Join(clauses, " AND "))
	var count int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ticketRepository) CountOpenByAssignee(ctx context.Context, userID string) (int, error) {
	const query = `SELECT COUNT(*) FROM tickets WHERE assignee_user_id=$1 AND closed_date IS NULL`
	var count int
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func ticketFilterClauses(filter TicketFilter) ([]string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.ClientID != nil {
		args = append(args, *filter.ClientID)
		clauses = append(clauses, fmt.Sprintf("client_id=$%d", len(args)))
	}
	if filter.ContactID != nil {
		args = append(args, *filter.ContactID)
		clauses = append(clauses, fmt.Sprintf("contact_id=$%d", len(args)))
	}
	if filter.AssigneeID != nil {
		args = append(args, *filter.AssigneeID)
		clauses = append(clauses, fmt.Sprintf("assignee_user_id=$%d", len(args)))
	}
	if filter.TeamID != nil {
		args = append(args, *filter.TeamID)
		clauses = append(clauses, fmt.Sprintf("team_id=$%d", len(args)))
	}
	if filter.StageID != nil {
		args = append(args, *filter.StageID)
		clauses = append(clauses, fmt.Sprintf("stage_id=$%d", len(args)))
	}
	if filter.Closed != nil {
		if *filter.Closed {
			clauses = append(clauses, "closed_date IS NOT NULL")
		} else {
			clauses = append(clauses, "closed_date IS NULL")
		}
	}
	if filter.Working != nil {
		args = append(args, *filter.Working)
		clauses = append(clauses, fmt.Sprintf("working=$%d", len(args)))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(title) LIKE %s OR LOWER(number) LIKE %s)", placeholder, placeholder))
	}
	return clauses, args
}

func ticketOrder(orderBy string) string {
	switch orderBy {
	case "name":
		return "title ASC"
	case "stage":
		return "stage_id ASC"
	case "contact":
		return "contact_id ASC"
	case "update":
		return "last_stage_update DESC"
	default:
		return "number DESC"
	}
}

type ticketRow interface {
	Scan(dest ...any) error
}

func scanTicket(row ticketRow, ticket *domain.Ticket) error {
	return row.Scan(
		&ticket.ID,
		&ticket.Number,
		&ticket.Title,
		&ticket.Description,
		&ticket.CategoryID,
		&ticket.ModuleID,
		&ticket.ChannelID,
		&ticket.UrgencyKey,
		&ticket.ImpactLevel,
		&ticket.Priority,
		&ticket.Working,
		&ticket.Waiting,
		&ticket.Resolved,
		&ticket.Cancelled,
		&ticket.NeedsEmail,
		&ticket.TaskRequired,
		&ticket.KanbanState,
		&ticket.Color,
		&ticket.FixedFee,
		&ticket.StageID,
		&ticket.EntryDate,
		&ticket.EndDate,
		&ticket.LastStageUpdate,
		&ticket.ClosedDate,
		&ticket.ClientID,
		&ticket.ContactID,
		&ticket.AssigneeID,
		&ticket.TeamID,
		&ticket.ProjectID,
		&ticket.TaskID,
		&ticket.PlannedDurationDays,
		&ticket.RealDurationDays,
		&ticket.DedicatedHours,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	)
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := scanTicket(rows, &ticket); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
