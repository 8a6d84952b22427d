package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// PriorityService derives a ticket's priority from its urgency/impact pair.
type PriorityService struct {
	crossRefs repository.PriorityCrossRepository
}

// NewPriorityService constructs the service.
func NewPriorityService(crossRefs repository.PriorityCrossRepository) *PriorityService {
	return &PriorityService{crossRefs: crossRefs}
}

// Resolve looks up the cross table for an exact match and returns the mapped
// priority. When either key is missing or no mapping exists the current
// priority is returned unchanged; an absent mapping is not an error.
func (s *PriorityService) Resolve(ctx context.Context, ticket *domain.Ticket) (domain.TicketPriority, error) {
	if ticket.UrgencyKey == nil || ticket.ImpactLevel == nil {
		return ticket.Priority, nil
	}
	ref, err := s.crossRefs.Find(ctx, *ticket.UrgencyKey, *ticket.ImpactLevel)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ticket.Priority, nil
		}
		return ticket.Priority, apperrors.MapError(err)
	}
	return ref.Priority, nil
}

// Apply resolves and writes the priority onto the ticket in memory. Callers
// persist the ticket afterwards.
func (s *PriorityService) Apply(ctx context.Context, ticket *domain.Ticket) error {
	priority, err := s.Resolve(ctx, ticket)
	if err != nil {
		return err
	}
	ticket.Priority = priority
	return nil
}
