package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// LifecycleService drives a ticket through its stage pipeline. All flag,
// kanban, color and date fields move together in one transition; nothing
// mutates them independently.
type LifecycleService struct {
	tickets    repository.TicketRepository
	stages     repository.StageRepository
	periods    repository.WaitingPeriodRepository
	tasks      repository.TaskRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.HelpdeskConfig
	now        func() time.Time
}

// LifecycleDependencies bundles collaborators for the lifecycle service.
type LifecycleDependencies struct {
	TicketRepo        repository.TicketRepository
	StageRepo         repository.StageRepository
	WaitingPeriodRepo repository.WaitingPeriodRepository
	TaskRepo          repository.TaskRepository
	Dispatcher        events.Dispatcher
	Logger            *zap.Logger
}

// ReplyDraft asks the caller to compose an outbound reply. The waiting
// transition itself only happens once that reply is actually dispatched (see
// OnReplySent); requesting it changes nothing on the ticket.
type ReplyDraft struct {
	TicketID     string
	TicketNumber string
	To           string
	Subject      string
}

// NewLifecycleService constructs the service.
func NewLifecycleService(cfg config.HelpdeskConfig, deps LifecycleDependencies) *LifecycleService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LifecycleService{
		tickets:    deps.TicketRepo,
		stages:     deps.StageRepo,
		periods:    deps.WaitingPeriodRepo,
		tasks:      deps.TaskRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		cfg:        cfg,
		now:        time.Now,
	}
}

// flagSet is the full lifecycle flag group applied by a transition.
type flagSet struct {
	working      bool
	waiting      bool
	resolved     bool
	cancelled    bool
	needsEmail   bool
	taskRequired bool
	kanban       domain.KanbanState
	color        *int
}

func (s *LifecycleService) applyFlags(ticket *domain.Ticket, flags flagSet) {
	ticket.Working = flags.working
	ticket.Waiting = flags.waiting
	ticket.Resolved = flags.resolved
	ticket.Cancelled = flags.cancelled
	ticket.NeedsEmail = flags.needsEmail
	ticket.TaskRequired = flags.taskRequired
	ticket.KanbanState = flags.kanban
	if flags.color != nil {
		ticket.Color = *flags.color
	}
}

// applyStage resolves the target stage by key and assigns it. A missing stage
// for a key is tolerated silently: the transition's flag and date changes
// stand even without a matching stage.
func (s *LifecycleService) applyStage(ctx context.Context, ticket *domain.Ticket, key string, now time.Time) string {
	stage, err := s.stages.GetByKey(ctx, key)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn("stage lookup failed", zap.String("stage_key", key), zap.Error(err))
		}
		return ""
	}
	ticket.StageID = &stage.ID
	ticket.LastStageUpdate = now
	if stage.Closed {
		closed := now
		ticket.ClosedDate = &closed
	} else {
		ticket.ClosedDate = nil
	}
	return stage.Key
}

// Draft resets a ticket to its intake state.
func (s *LifecycleService) Draft(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	now := s.now()

	zero := 0
	s.applyFlags(ticket, flagSet{kanban: domain.KanbanStateNormal, color: &zero})
	s.applyStage(ctx, ticket, domain.StageKeyNew, now)
	end := now
	ticket.EndDate = &end

	if err := s.persist(ctx, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

// StartWorking moves the ticket into processing. The ticket must carry a
// project unless it is fixed-fee. Any open waiting period is closed; a
// "processing" notification is triggered best-effort.
func (s *LifecycleService) StartWorking(ctx context.Context, ticketID string, actorUserID *string) (*domain.Ticket, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := s.requireProject(ticket); err != nil {
		return nil, err
	}
	now := s.now()

	s.applyFlags(ticket, flagSet{working: true, taskRequired: true, kanban: domain.KanbanStateNormal})
	stageKey := s.applyStage(ctx, ticket, domain.StageKeyProcessing, now)
	end := now
	ticket.EndDate = &end

	if err := s.persist(ctx, ticket); err != nil {
		return nil, err
	}
	if err := s.closeOpenPeriod(ctx, ticket, actorUserID, now); err != nil {
		return nil, err
	}
	if err := s.refreshDurations(ctx, ticket); err != nil {
		return nil, err
	}
	s.notify(ctx, ticket, events.EventTicketProcessing, events.TemplateProcessing, stageKey, actorUserID)
	return ticket, nil
}

// RequestWaiting validates the waiting preconditions and returns a reply
// draft. Flags and stage do not move here; OnReplySent completes the
// transition when the reply is actually dispatched.
func (s *LifecycleService) RequestWaiting(ctx context.Context, ticketID string) (*ReplyDraft, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := s.requireProject(ticket); err != nil {
		return nil, err
	}
	if err := s.requireTask(ticket); err != nil {
		return nil, err
	}
	return &ReplyDraft{
		TicketID:     ticket.ID,
		TicketNumber: ticket.Number,
		Subject:      "Re: " + ticket.Title,
	}, nil
}

// Cancel closes the ticket as cancelled. A task must be linked unless the
// ticket is fixed-fee.
func (s *LifecycleService) Cancel(ctx context.Context, ticketID string, actorUserID *string) (*domain.Ticket, error) {
	return s.close(ctx, ticketID, actorUserID, flagSet{
		cancelled: true, working: true, waiting: true, resolved: true,
		taskRequired: true, kanban: domain.KanbanStateDone,
		color: &s.cfg.CancelledColor,
	}, domain.StageKeyCancelled)
}

// Resolve closes the ticket as resolved. Same precondition as Cancel.
func (s *LifecycleService) Resolve(ctx context.Context, ticketID string, actorUserID *string) (*domain.Ticket, error) {
	return s.close(ctx, ticketID, actorUserID, flagSet{
		resolved: true, working: true, waiting: true,
		taskRequired: true, kanban: domain.KanbanStateDone,
		color: &s.cfg.ResolvedColor,
	}, domain.StageKeyDone)
}

func (s *LifecycleService) close(ctx context.Context, ticketID string, actorUserID *string, flags flagSet, stageKey string) (*domain.Ticket, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := s.requireTask(ticket); err != nil {
		return nil, err
	}
	now := s.now()

	s.applyFlags(ticket, flags)
	appliedKey := s.applyStage(ctx, ticket, stageKey, now)
	end := now
	ticket.EndDate = &end

	if err := s.persist(ctx, ticket); err != nil {
		return nil, err
	}
	if err := s.closeOpenPeriod(ctx, ticket, actorUserID, now); err != nil {
		return nil, err
	}
	if err := s.refreshDurations(ctx, ticket); err != nil {
		return nil, err
	}
	s.notify(ctx, ticket, events.EventTicketClosed, events.TemplateClosed, appliedKey, actorUserID)
	return ticket, nil
}

// OnReplySent completes the waiting transition once an outbound reply has
// been dispatched. Opens a waiting period for the acting user unless the
// ticket already has one open.
func (s *LifecycleService) OnReplySent(ctx context.Context, ticketID string, actorUserID *string) (*domain.Ticket, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	now := s.now()

	s.applyFlags(ticket, flagSet{waiting: true, needsEmail: true, kanban: domain.KanbanStateBlocked})
	stageKey := s.applyStage(ctx, ticket, domain.StageKeyWaiting, now)
	end := now
	ticket.EndDate = &end

	if err := s.persist(ctx, ticket); err != nil {
		return nil, err
	}

	_, err = s.periods.FindOpenByTicket(ctx, ticket.ID)
	switch {
	case err == nil:
		// already waiting on something; keep the existing period
	case errors.Is(err, pgx.ErrNoRows):
		period := &domain.WaitingPeriod{
			TicketID:  ticket.ID,
			UserID:    actorUserID,
			EntryDate: now,
		}
		if err := s.periods.Create(ctx, period); err != nil {
			return nil, apperrors.MapError(err)
		}
	default:
		return nil, apperrors.MapError(err)
	}

	if err := s.refreshDurations(ctx, ticket); err != nil {
		return nil, err
	}
	s.notify(ctx, ticket, events.EventTicketWaiting, events.TemplateWaiting, stageKey, actorUserID)
	return ticket, nil
}

// OnExternalReply resumes work automatically when the ticket contact replies
// while the ticket sits in the waiting stage.
func (s *LifecycleService) OnExternalReply(ctx context.Context, ticketID string, authorPartnerID string) (*domain.Ticket, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.ContactID == nil || *ticket.ContactID != authorPartnerID {
		return ticket, nil
	}
	if !s.inStage(ctx, ticket, domain.StageKeyWaiting) {
		return ticket, nil
	}
	return s.StartWorking(ctx, ticketID, ticket.AssigneeID)
}

// RefreshDurations recomputes the derived duration fields and persists them.
// Invoked at the end of every mutating operation; nothing is maintained
// incrementally.
func (s *LifecycleService) RefreshDurations(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := s.refreshDurations(ctx, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

func (s *LifecycleService) refreshDurations(ctx context.Context, ticket *domain.Ticket) error {
	ticket.PlannedDurationDays = 0
	ticket.RealDurationDays = 0
	ticket.DedicatedHours = 0

	if ticket.EndDate != nil {
		ticket.PlannedDurationDays = PlannedDurationDays(ticket.EntryDate, *ticket.EndDate)
	}

	periods, err := s.periods.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return apperrors.MapError(err)
	}
	waitingDays := 0
	for _, period := range periods {
		waitingDays += period.CountDays
	}
	ticket.RealDurationDays = ticket.PlannedDurationDays - waitingDays

	if ticket.HasTask() {
		hours, err := s.tasks.SumEffectiveHours(ctx, *ticket.TaskID)
		if err != nil {
			return apperrors.MapError(err)
		}
		ticket.DedicatedHours = hours
	}
	return s.persist(ctx, ticket)
}

// closeOpenPeriod ends the ticket's open waiting period, if any, stamping the
// acting user and recomputing the period's business-day count.
func (s *LifecycleService) closeOpenPeriod(ctx context.Context, ticket *domain.Ticket, actorUserID *string, now time.Time) error {
	period, err := s.periods.FindOpenByTicket(ctx, ticket.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return apperrors.MapError(err)
	}
	end := now
	period.EndDate = &end
	if actorUserID != nil {
		period.UserID = actorUserID
	}
	period.CountDays = WaitingCountDays(period.EntryDate, end)
	if err := s.periods.Update(ctx, period); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

func (s *LifecycleService) requireProject(ticket *domain.Ticket) error {
	if ticket.FixedFee || ticket.HasProject() {
		return nil
	}
	return apperrors.NewPreconditionFailed("project required", map[string]any{"ticket_number": ticket.Number})
}

func (s *LifecycleService) requireTask(ticket *domain.Ticket) error {
	if ticket.FixedFee || ticket.HasTask() {
		return nil
	}
	return apperrors.NewPreconditionFailed("task required", map[string]any{"ticket_number": ticket.Number})
}

func (s *LifecycleService) inStage(ctx context.Context, ticket *domain.Ticket, key string) bool {
	if ticket.StageID == nil {
		return false
	}
	stage, err := s.stages.GetByID(ctx, *ticket.StageID)
	if err != nil {
		return false
	}
	return stage.Key == key
}

func (s *LifecycleService) getTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (s *LifecycleService) persist(ctx context.Context, ticket *domain.Ticket) error {
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// notify enqueues a notification trigger. Delivery is the subscriber's
// problem; a failure there never rolls the transition back.
func (s *LifecycleService) notify(ctx context.Context, ticket *domain.Ticket, eventType events.EventType, template events.TemplateKey, stageKey string, actorUserID *string) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:          uuid.NewString(),
		Type:        eventType,
		TicketID:    ticket.ID,
		ActorUserID: actorUserID,
		Timestamp:   s.now(),
		Payload: events.TicketNotifyPayload{
			Template:     template,
			TicketNumber: ticket.Number,
			ContactID:    ticket.ContactID,
			StageKey:     stageKey,
		},
	})
}
