package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// ReminderStore deduplicates breach reminders across sweep passes. Remember
// reports true when the key was not seen within the ttl window.
type ReminderStore interface {
	Remember(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// SLAService scans working tickets for response-time breaches and raises one
// reminder per ticket per SLA window.
type SLAService struct {
	tickets    repository.TicketRepository
	teams      repository.TeamRepository
	reminders  ReminderStore
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	cfg        config.HelpdeskConfig
	now        func() time.Time
}

// SLADependencies bundles collaborators for the SLA service.
type SLADependencies struct {
	TicketRepo repository.TicketRepository
	TeamRepo   repository.TeamRepository
	Reminders  ReminderStore
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NewSLAService constructs the service.
func NewSLAService(cfg config.HelpdeskConfig, deps SLADependencies) *SLAService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SLAService{
		tickets:    deps.TicketRepo,
		teams:      deps.TeamRepo,
		reminders:  deps.Reminders,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
		cfg:        cfg,
		now:        time.Now,
	}
}

// Sweep walks all working open tickets and publishes a breach event for each
// one whose stage has not moved within its team's response window. Returns
// the number of breaches raised this pass.
func (s *SLAService) Sweep(ctx context.Context) (int, error) {
	working := true
	closed := false
	tickets, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{
		Working: &working,
		Closed:  &closed,
		Limit:   1000,
	})
	if err != nil {
		return 0, apperrors.MapError(err)
	}

	now := s.now()
	breaches := 0
	for i := range tickets {
		ticket := &tickets[i]
		slaHours := s.slaHoursFor(ctx, ticket)
		if slaHours <= 0 {
			continue
		}
		window := time.Duration(slaHours) * time.Hour
		if now.Sub(ticket.LastStageUpdate) <= window {
			continue
		}
		raised, err := s.raiseBreach(ctx, ticket, slaHours, window)
		if err != nil {
			s.logger.Warn("sla breach reminder failed",
				zap.String("ticket_id", ticket.ID), zap.Error(err))
			continue
		}
		if raised {
			breaches++
		}
	}

	s.metrics.RecordSweep(breaches)
	s.logger.Debug("sla sweep finished",
		zap.Int("scanned", len(tickets)), zap.Int("breaches", breaches))
	return breaches, nil
}

// slaHoursFor reads the team response window, falling back to the service
// default for team-less tickets.
func (s *SLAService) slaHoursFor(ctx context.Context, ticket *domain.Ticket) int {
	if ticket.TeamID == nil {
		return s.cfg.DefaultSLAHours
	}
	team, err := s.teams.GetByID(ctx, *ticket.TeamID)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn("team lookup failed", zap.String("team_id", *ticket.TeamID), zap.Error(err))
		}
		return s.cfg.DefaultSLAHours
	}
	if team.ResponseSLAHours <= 0 {
		return s.cfg.DefaultSLAHours
	}
	return team.ResponseSLAHours
}

// raiseBreach publishes the breach event unless a reminder for the same
// ticket is still live. The dedup key expires after one SLA window, so a
// ticket stuck past several windows nags once per window.
func (s *SLAService) raiseBreach(ctx context.Context, ticket *domain.Ticket, slaHours int, window time.Duration) (bool, error) {
	key := fmt.Sprintf("sla:breach:%s", ticket.ID)
	fresh, err := s.reminders.Remember(ctx, key, window)
	if err != nil {
		return false, err
	}
	if !fresh {
		return false, nil
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventSLABreached,
			TicketID:  ticket.ID,
			Timestamp: s.now(),
			Payload: events.SLABreachedPayload{
				TicketNumber:    ticket.Number,
				TeamID:          ticket.TeamID,
				AssigneeUserID:  ticket.AssigneeID,
				LastStageUpdate: ticket.LastStageUpdate,
				SLAHours:        slaHours,
			},
		})
	}
	s.logger.Info("sla breached",
		zap.String("ticket_number", ticket.Number),
		zap.Int("sla_hours", slaHours))
	return true, nil
}

// redisReminderStore backs ReminderStore with Redis SET NX.
type redisReminderStore struct {
	client interface {
		SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	}
}

// NewRedisReminderStore adapts a Redis client to the ReminderStore interface.
func NewRedisReminderStore(client interface {
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
}) ReminderStore {
	return &redisReminderStore{client: client}
}

func (r *redisReminderStore) Remember(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return r.client.SetNX(ctx, key, "1", ttl)
}
