package domain

import "time"

// TicketPriority enumerates derived ticket priorities.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "LOW"
	TicketPriorityMedium   TicketPriority = "MEDIUM"
	TicketPriorityHigh     TicketPriority = "HIGH"
	TicketPriorityCritical TicketPriority = "CRITICAL"
)

// KanbanState enumerates kanban card states.
type KanbanState string

const (
	KanbanStateNormal  KanbanState = "normal"
	KanbanStateBlocked KanbanState = "blocked"
	KanbanStateDone    KanbanState = "done"
)

// Ticket is the aggregate for helpdesk requests. The lifecycle flag group
// (Working..TaskRequired plus KanbanState and Color) is only ever written as a
// whole by a lifecycle transition, never field by field.
type Ticket struct {
	ID          string
	Number      string
	Title       string
	Description string

	CategoryID  *string
	ModuleID    *string
	ChannelID   *string
	UrgencyKey  *string
	ImpactLevel *string
	Priority    TicketPriority

	Working      bool
	Waiting      bool
	Resolved     bool
	Cancelled    bool
	NeedsEmail   bool
	TaskRequired bool
	KanbanState  KanbanState
	Color        int

	// FixedFee tickets are exempt from the project/task preconditions.
	FixedFee bool

	StageID         *string
	EntryDate       time.Time
	EndDate         *time.Time
	LastStageUpdate time.Time
	ClosedDate      *time.Time

	ClientID   *string
	ContactID  *string
	AssigneeID *string
	TeamID     *string
	ProjectID  *string
	TaskID     *string

	PlannedDurationDays int
	RealDurationDays    int
	DedicatedHours      float64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasProject reports whether a project is linked.
func (t *Ticket) HasProject() bool {
	return t.ProjectID != nil && *t.ProjectID != ""
}

// HasTask reports whether a task is linked.
func (t *Ticket) HasTask() bool {
	return t.TaskID != nil && *t.TaskID != ""
}

// Open reports whether the ticket still counts against its assignee's load.
func (t *Ticket) Open() bool {
	return t.ClosedDate == nil
}
