package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	ContactID   *string `json:"contact_id"`
	CategoryID  *string `json:"category_id"`
	ModuleID    *string `json:"module_id"`
	ChannelID   *string `json:"channel_id"`
	UrgencyKey  *string `json:"urgency_key"`
	ImpactLevel *string `json:"impact_level"`
	TeamID      *string `json:"team_id"`
	FixedFee    bool    `json:"fixed_fee"`
}

// UpdateTicketRequest payload. Absent fields are left untouched.
type UpdateTicketRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	CategoryID  *string `json:"category_id"`
	ModuleID    *string `json:"module_id"`
	ChannelID   *string `json:"channel_id"`
	UrgencyKey  *string `json:"urgency_key"`
	ImpactLevel *string `json:"impact_level"`
}

// CreateTaskRequest payload for opening the ticket's work task.
type CreateTaskRequest struct {
	Name         string  `json:"name"`
	PlannedHours float64 `json:"planned_hours"`
}

// SendReplyRequest payload for an outbound operator reply.
type SendReplyRequest struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// InboundMessageRequest payload for a customer message.
type InboundMessageRequest struct {
	AuthorPartnerID string `json:"author_partner_id"`
	Subject         string `json:"subject"`
	Body            string `json:"body"`
}

// TicketSummary response.
type TicketSummary struct {
	ID          string                `json:"id"`
	Number      string                `json:"number"`
	Title       string                `json:"title"`
	Priority    domain.TicketPriority `json:"priority"`
	StageID     *string               `json:"stage_id"`
	KanbanState domain.KanbanState    `json:"kanban_state"`
	Working     bool                  `json:"working"`
	Waiting     bool                  `json:"waiting"`
	Resolved    bool                  `json:"resolved"`
	Cancelled   bool                  `json:"cancelled"`
	ClientID    *string               `json:"client_id"`
	ContactID   *string               `json:"contact_id"`
	AssigneeID  *string               `json:"assignee_id"`
	TeamID      *string               `json:"team_id"`
	EntryDate   time.Time             `json:"entry_date"`
	ClosedDate  *time.Time            `json:"closed_date"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	TicketSummary
	Description         string     `json:"description"`
	FixedFee            bool       `json:"fixed_fee"`
	NeedsEmail          bool       `json:"needs_email"`
	TaskRequired        bool       `json:"task_required"`
	Color               int        `json:"color"`
	ProjectID           *string    `json:"project_id"`
	TaskID              *string    `json:"task_id"`
	EndDate             *time.Time `json:"end_date"`
	LastStageUpdate     time.Time  `json:"last_stage_update"`
	PlannedDurationDays int        `json:"planned_duration_days"`
	RealDurationDays    int        `json:"real_duration_days"`
	DedicatedHours      float64    `json:"dedicated_hours"`
}

// TicketListResponse wraps a page of tickets.
type TicketListResponse struct {
	Items []TicketSummary `json:"items"`
	Total int             `json:"total"`
}

// TicketMessageResponse represents one thread entry.
type TicketMessageResponse struct {
	ID              string                  `json:"id"`
	Direction       domain.MessageDirection `json:"direction"`
	AuthorUserID    *string                 `json:"author_user_id"`
	AuthorPartnerID *string                 `json:"author_partner_id"`
	Subject         string                  `json:"subject"`
	Body            string                  `json:"body"`
	CreatedAt       time.Time               `json:"created_at"`
}

// TaskResponse represents the ticket's work task.
type TaskResponse struct {
	ID             string  `json:"id"`
	ProjectID      string  `json:"project_id"`
	TicketID       *string `json:"ticket_id"`
	Name           string  `json:"name"`
	PlannedHours   float64 `json:"planned_hours"`
	EffectiveHours float64 `json:"effective_hours"`
}
