package domain

import "time"

// Project is a support pack owned by a client organization.
type Project struct {
	ID              string
	Name            string
	ClientID        *string
	ContractedHours float64
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Task is a unit of work under a project. Subtasks reference their parent via
// ParentID; a task may be linked to at most one ticket.
type Task struct {
	ID             string
	ProjectID      string
	TicketID       *string
	ParentID       *string
	Name           string
	PlannedHours   float64
	EffectiveHours float64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
