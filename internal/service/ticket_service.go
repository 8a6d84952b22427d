package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// CreateTicketInput carries the intake form.
type CreateTicketInput struct {
	Title       string
	Description string
	ContactID   *string
	CategoryID  *string
	ModuleID    *string
	ChannelID   *string
	UrgencyKey  *string
	ImpactLevel *string
	TeamID      *string
	FixedFee    bool
}

// CreateTaskInput carries the task-creation form for a ticket.
type CreateTaskInput struct {
	Name         string
	PlannedHours float64
}

// UpdateTicketInput carries a partial ticket edit. Nil fields are left
// untouched.
type UpdateTicketInput struct {
	Title       *string
	Description *string
	CategoryID  *string
	ModuleID    *string
	ChannelID   *string
	UrgencyKey  *string
	ImpactLevel *string
}

// SendReplyInput carries an operator reply.
type SendReplyInput struct {
	Subject string
	Body    string
}

// InboundMessageInput carries a customer message.
type InboundMessageInput struct {
	AuthorPartnerID string
	Subject         string
	Body            string
}

// TicketService orchestrates ticket intake, messaging and task linkage on top
// of the lifecycle engine.
type TicketService struct {
	tickets    repository.TicketRepository
	partners   repository.PartnerRepository
	projects   repository.ProjectRepository
	tasks      repository.TaskRepository
	messages   repository.MessageRepository
	lifecycle  *LifecycleService
	numbering  *NumberingService
	priorities *PriorityService
	assignment *AssignmentService
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	PartnerRepo repository.PartnerRepository
	ProjectRepo repository.ProjectRepository
	TaskRepo    repository.TaskRepository
	MessageRepo repository.MessageRepository
	Lifecycle   *LifecycleService
	Numbering   *NumberingService
	Priorities  *PriorityService
	Assignment  *AssignmentService
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		partners:   deps.PartnerRepo,
		projects:   deps.ProjectRepo,
		tasks:      deps.TaskRepo,
		messages:   deps.MessageRepo,
		lifecycle:  deps.Lifecycle,
		numbering:  deps.Numbering,
		priorities: deps.Priorities,
		assignment: deps.Assignment,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// CreateTicket runs the intake pipeline: derive the client from the contact,
// number the ticket from the client sequence, resolve priority, auto-link a
// billable project, assign within the team and announce the new ticket.
func (s *TicketService) CreateTicket(ctx context.Context, input CreateTicketInput) (*domain.Ticket, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, apperrors.NewValidationError("title is required", nil)
	}
	now := s.now()

	ticket := &domain.Ticket{
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		ContactID:   input.ContactID,
		CategoryID:  input.CategoryID,
		ModuleID:    input.ModuleID,
		ChannelID:   input.ChannelID,
		UrgencyKey:  input.UrgencyKey,
		ImpactLevel: input.ImpactLevel,
		TeamID:      input.TeamID,
		FixedFee:    input.FixedFee,
		Priority:    domain.TicketPriorityLow,
		KanbanState: domain.KanbanStateNormal,

		EntryDate:       now,
		LastStageUpdate: now,
	}

	contact, err := s.resolveContact(ctx, input.ContactID)
	if err != nil {
		return nil, err
	}
	if contact != nil {
		if contact.IsCompany {
			ticket.ClientID = &contact.ID
		} else if contact.ParentID != nil {
			ticket.ClientID = contact.ParentID
		}
	}

	number, err := s.numbering.NextNumber(ctx, ticket.ClientID)
	if err != nil {
		return nil, err
	}
	ticket.Number = number

	if err := s.priorities.Apply(ctx, ticket); err != nil {
		return nil, err
	}

	if err := s.autoLinkProject(ctx, ticket); err != nil {
		return nil, err
	}

	var assignPolicy domain.AssignPolicy
	if ticket.TeamID != nil {
		assignment, err := s.assignment.PickAssignee(ctx, *ticket.TeamID)
		if err != nil {
			return nil, err
		}
		ticket.AssigneeID = &assignment.UserID
		assignPolicy = assignment.Policy
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	// intake lands in the "new" stage with a clean flag group
	if _, err := s.lifecycle.Draft(ctx, ticket.ID); err != nil {
		return nil, err
	}
	created, err := s.tickets.GetByID(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishCreated(ctx, created, contact, assignPolicy)
	s.logger.Info("ticket created",
		zap.String("ticket_id", created.ID),
		zap.String("number", created.Number))
	return created, nil
}

// autoLinkProject links the client's first billable project when one exists.
// Contract-less clients simply get no project; the lifecycle preconditions
// surface that later.
func (s *TicketService) autoLinkProject(ctx context.Context, ticket *domain.Ticket) error {
	if ticket.ClientID == nil || ticket.FixedFee {
		return nil
	}
	project, err := s.projects.FindLinkable(ctx, *ticket.ClientID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return apperrors.MapError(err)
	}
	ticket.ProjectID = &project.ID
	return nil
}

// UpdateTicket applies a partial edit within the principal's scope. Changing
// urgency or impact re-resolves the derived priority from the cross table.
func (s *TicketService) UpdateTicket(ctx context.Context, principal *auth.Principal, ticketID string, input UpdateTicketInput) (*domain.Ticket, error) {
	ticket, err := s.GetTicketFor(ctx, principal, ticketID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, apperrors.NewValidationError("title is required", nil)
		}
		ticket.Title = title
	}
	if input.Description != nil {
		ticket.Description = *input.Description
	}
	if input.CategoryID != nil {
		ticket.CategoryID = input.CategoryID
	}
	if input.ModuleID != nil {
		ticket.ModuleID = input.ModuleID
	}
	if input.ChannelID != nil {
		ticket.ChannelID = input.ChannelID
	}

	reprioritize := input.UrgencyKey != nil || input.ImpactLevel != nil
	if input.UrgencyKey != nil {
		ticket.UrgencyKey = input.UrgencyKey
	}
	if input.ImpactLevel != nil {
		ticket.ImpactLevel = input.ImpactLevel
	}
	if reprioritize {
		if err := s.priorities.Apply(ctx, ticket); err != nil {
			return nil, err
		}
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	return s.getTicket(ctx, ticket.ID)
}

// CreateTaskForTicket opens the work task for a ticket under its linked
// project. A ticket carries at most one task; planned hours default to the
// project's remaining balance when the caller passes zero.
func (s *TicketService) CreateTaskForTicket(ctx context.Context, ticketID string, input CreateTaskInput) (*domain.Task, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.HasTask() {
		return nil, apperrors.NewConstraintViolation("ticket already has a task", map[string]any{
			"ticket_number": ticket.Number,
			"task_id":       *ticket.TaskID,
		})
	}
	if !ticket.HasProject() {
		return nil, apperrors.NewPreconditionFailed("project required", map[string]any{
			"ticket_number": ticket.Number,
		})
	}

	planned := input.PlannedHours
	if planned == 0 {
		remaining, err := s.projects.RemainingHours(ctx, *ticket.ProjectID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		planned = remaining
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = ticket.Number + ": " + ticket.Title
	}

	task := &domain.Task{
		ProjectID:    *ticket.ProjectID,
		TicketID:     &ticket.ID,
		Name:         name,
		PlannedHours: planned,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, apperrors.MapError(err)
	}

	ticket.TaskID = &task.ID
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	if _, err := s.lifecycle.RefreshDurations(ctx, ticket.ID); err != nil {
		return nil, err
	}
	return task, nil
}

// SendReply records an outbound message and completes the waiting transition.
// The preconditions are validated up front so nothing is stored when the
// ticket is not allowed to wait.
func (s *TicketService) SendReply(ctx context.Context, ticketID string, actorUserID *string, input SendReplyInput) (*domain.Ticket, error) {
	draft, err := s.lifecycle.RequestWaiting(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	subject := strings.TrimSpace(input.Subject)
	if subject == "" {
		subject = draft.Subject
	}
	msg := &domain.TicketMessage{
		TicketID:     draft.TicketID,
		Direction:    domain.MessageDirectionOutbound,
		AuthorUserID: actorUserID,
		Subject:      subject,
		Body:         input.Body,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, apperrors.MapError(err)
	}
	return s.lifecycle.OnReplySent(ctx, draft.TicketID, actorUserID)
}

// ReceiveMessage records an inbound customer message and lets the lifecycle
// decide whether work resumes automatically.
func (s *TicketService) ReceiveMessage(ctx context.Context, ticketID string, input InboundMessageInput) (*domain.Ticket, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	msg := &domain.TicketMessage{
		TicketID:        ticket.ID,
		Direction:       domain.MessageDirectionInbound,
		AuthorPartnerID: &input.AuthorPartnerID,
		Subject:         input.Subject,
		Body:            input.Body,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, apperrors.MapError(err)
	}
	return s.lifecycle.OnExternalReply(ctx, ticket.ID, input.AuthorPartnerID)
}

// ListMessages returns the mail thread of a ticket the principal may see.
func (s *TicketService) ListMessages(ctx context.Context, principal *auth.Principal, ticketID string) ([]domain.TicketMessage, error) {
	if _, err := s.GetTicketFor(ctx, principal, ticketID); err != nil {
		return nil, err
	}
	msgs, err := s.messages.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return msgs, nil
}

// ListTicketsFor returns tickets scoped to the principal's helpdesk level:
// managers see their whole client organization, plain users only their own
// tickets. Principals without a partner (internal agents) see everything the
// filter allows.
func (s *TicketService) ListTicketsFor(ctx context.Context, principal *auth.Principal, filter repository.TicketFilter) ([]domain.Ticket, int, error) {
	s.scopeFilter(principal, &filter)

	items, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	total, err := s.tickets.CountWithFilter(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	return items, total, nil
}

// GetTicketFor loads one ticket, enforcing the principal's visibility. A
// ticket outside the caller's scope reads as not found.
func (s *TicketService) GetTicketFor(ctx context.Context, principal *auth.Principal, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !s.visible(principal, ticket) {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
	}
	return ticket, nil
}

func (s *TicketService) scopeFilter(principal *auth.Principal, filter *repository.TicketFilter) {
	if principal == nil || principal.Partner == nil {
		return
	}
	partner := principal.Partner
	if principal.Level() == domain.HelpdeskLevelManager {
		clientID := partner.ID
		if !partner.IsCompany && partner.ParentID != nil {
			clientID = *partner.ParentID
		}
		filter.ClientID = &clientID
		return
	}
	contactID := partner.ID
	filter.ContactID = &contactID
}

func (s *TicketService) visible(principal *auth.Principal, ticket *domain.Ticket) bool {
	if principal == nil || principal.Partner == nil {
		return true
	}
	partner := principal.Partner
	if principal.Level() == domain.HelpdeskLevelManager {
		clientID := partner.ID
		if !partner.IsCompany && partner.ParentID != nil {
			clientID = *partner.ParentID
		}
		return ticket.ClientID != nil && *ticket.ClientID == clientID
	}
	return ticket.ContactID != nil && *ticket.ContactID == partner.ID
}

func (s *TicketService) resolveContact(ctx context.Context, contactID *string) (*domain.Partner, error) {
	if contactID == nil {
		return nil, nil
	}
	contact, err := s.partners.GetByID(ctx, *contactID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("contact", map[string]any{"contact_id": *contactID})
		}
		return nil, apperrors.MapError(err)
	}
	return contact, nil
}

func (s *TicketService) getTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (s *TicketService) publishCreated(ctx context.Context, ticket *domain.Ticket, contact *domain.Partner, policy domain.AssignPolicy) {
	if s.dispatcher == nil {
		return
	}
	payload := events.TicketNotifyPayload{
		Template:     events.TemplateNew,
		TicketNumber: ticket.Number,
		ContactID:    ticket.ContactID,
	}
	if contact != nil {
		payload.ContactEmail = contact.Email
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTicketCreated,
		TicketID:  ticket.ID,
		Timestamp: s.now(),
		Payload:   payload,
	})
	if ticket.AssigneeID != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventTicketAssigned,
			TicketID:  ticket.ID,
			Timestamp: s.now(),
			Payload: events.TicketAssignedPayload{
				AssigneeUserID: ticket.AssigneeID,
				TeamID:         ticket.TeamID,
				Policy:         policy,
			},
		})
	}
}
