package events

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated    EventType = "ticket_created"
	EventTicketProcessing EventType = "ticket_processing"
	EventTicketWaiting    EventType = "ticket_waiting"
	EventTicketClosed     EventType = "ticket_closed"
	EventTicketAssigned   EventType = "ticket_assigned"
	EventSLABreached      EventType = "ticket_sla_breached"
)

// TemplateKey names the mail template a notification should render.
type TemplateKey string

const (
	TemplateNew        TemplateKey = "new"
	TemplateProcessing TemplateKey = "processing"
	TemplateWaiting    TemplateKey = "waiting"
	TemplateClosed     TemplateKey = "closed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID          string      `json:"id"`
	Type        EventType   `json:"type"`
	TicketID    string      `json:"ticket_id"`
	ActorUserID *string     `json:"actor_user_id,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
	Payload     interface{} `json:"payload"`
}

// TicketNotifyPayload asks the notification collaborator to render and send a
// template for a ticket.
type TicketNotifyPayload struct {
	Template     TemplateKey `json:"template"`
	TicketNumber string      `json:"ticket_number"`
	ContactID    *string     `json:"contact_id,omitempty"`
	ContactEmail string      `json:"contact_email,omitempty"`
	StageKey     string      `json:"stage_key,omitempty"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	AssigneeUserID *string             `json:"assignee_user_id,omitempty"`
	TeamID         *string             `json:"team_id,omitempty"`
	Policy         domain.AssignPolicy `json:"policy"`
}

// SLABreachedPayload payload.
type SLABreachedPayload struct {
	TicketNumber    string    `json:"ticket_number"`
	TeamID          *string   `json:"team_id,omitempty"`
	AssigneeUserID  *string   `json:"assignee_user_id,omitempty"`
	LastStageUpdate time.Time `json:"last_stage_update"`
	SLAHours        int       `json:"sla_hours"`
}
