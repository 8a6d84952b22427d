package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// NotificationService renders lifecycle notifications. Delivery is an
// outbound mail in production; here it terminates in structured logs, and a
// failure is never propagated back into the transition that triggered it.
type NotificationService struct {
	partners repository.PartnerRepository
	users    repository.UserRepository
	logger   *zap.Logger
	cfg      config.NotificationConfig
}

// NewNotificationService constructs the service.
func NewNotificationService(cfg config.NotificationConfig, partners repository.PartnerRepository, users repository.UserRepository, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{partners: partners, users: users, logger: logger, cfg: cfg}
}

// RegisterHandlers subscribes the service to the lifecycle events it renders.
func (s *NotificationService) RegisterHandlers(dispatcher events.Dispatcher) {
	dispatcher.Subscribe(events.EventTicketCreated, s.handleTicketNotify)
	dispatcher.Subscribe(events.EventTicketProcessing, s.handleTicketNotify)
	dispatcher.Subscribe(events.EventTicketWaiting, s.handleTicketNotify)
	dispatcher.Subscribe(events.EventTicketClosed, s.handleTicketNotify)
	dispatcher.Subscribe(events.EventTicketAssigned, s.handleAssigned)
	dispatcher.Subscribe(events.EventSLABreached, s.handleSLABreached)
}

func (s *NotificationService) handleTicketNotify(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketNotifyPayload)
	if !ok {
		return nil
	}
	to := s.recipientFor(ctx, payload)
	from := s.cfg.EmailFrom
	if from == "" {
		from = s.cfg.FallbackSender
	}
	s.logger.Info("notification sent",
		zap.String("template", string(payload.Template)),
		zap.String("ticket_number", payload.TicketNumber),
		zap.String("from", from),
		zap.String("to", to))
	return nil
}

// recipientFor resolves the contact address, falling back to the configured
// recipient so a notification is never silently dropped for a bad address.
func (s *NotificationService) recipientFor(ctx context.Context, payload events.TicketNotifyPayload) string {
	if payload.ContactEmail != "" {
		return payload.ContactEmail
	}
	if payload.ContactID != nil {
		partner, err := s.partners.GetByID(ctx, *payload.ContactID)
		if err == nil && partner.Email != "" {
			return partner.Email
		}
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn("contact lookup failed", zap.String("partner_id", *payload.ContactID), zap.Error(err))
		}
	}
	return s.cfg.FallbackRecipient
}

func (s *NotificationService) handleAssigned(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketAssignedPayload)
	if !ok || payload.AssigneeUserID == nil {
		return nil
	}
	to := s.cfg.FallbackRecipient
	user, err := s.users.GetByID(ctx, *payload.AssigneeUserID)
	if err == nil {
		to = user.Login
	}
	s.logger.Info("assignment notification sent",
		zap.String("ticket_id", event.TicketID),
		zap.String("policy", string(payload.Policy)),
		zap.String("to", to))
	return nil
}

func (s *NotificationService) handleSLABreached(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.SLABreachedPayload)
	if !ok {
		return nil
	}
	s.logger.Warn("sla breach notification sent",
		zap.String("ticket_number", payload.TicketNumber),
		zap.Int("sla_hours", payload.SLAHours),
		zap.Time("last_stage_update", payload.LastStageUpdate))
	return nil
}
