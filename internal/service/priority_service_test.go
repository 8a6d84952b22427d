package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

func newPriorityFixture() *PriorityService {
	return NewPriorityService(&fakePriorityRepo{refs: []domain.PriorityCrossRef{
		{ID: "x-1", UrgencyKey: "high", ImpactLevel: "high", Priority: domain.TicketPriorityCritical},
		{ID: "x-2", UrgencyKey: "high", ImpactLevel: "low", Priority: domain.TicketPriorityMedium},
		{ID: "x-3", UrgencyKey: "low", ImpactLevel: "low", Priority: domain.TicketPriorityLow},
	}})
}

func TestResolvePriorityFromCrossTable(t *testing.T) {
	svc := newPriorityFixture()
	tests := []struct {
		name    string
		urgency *string
		impact  *string
		current domain.TicketPriority
		want    domain.TicketPriority
	}{
		{"exact match", strptr("high"), strptr("high"), domain.TicketPriorityLow, domain.TicketPriorityCritical},
		{"another match", strptr("high"), strptr("low"), domain.TicketPriorityLow, domain.TicketPriorityMedium},
		{"no mapping keeps current", strptr("medium"), strptr("high"), domain.TicketPriorityHigh, domain.TicketPriorityHigh},
		{"missing urgency keeps current", nil, strptr("high"), domain.TicketPriorityMedium, domain.TicketPriorityMedium},
		{"missing impact keeps current", strptr("high"), nil, domain.TicketPriorityLow, domain.TicketPriorityLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticket := &domain.Ticket{UrgencyKey: tt.urgency, ImpactLevel: tt.impact, Priority: tt.current}
			got, err := svc.Resolve(context.Background(), ticket)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolvePriorityIsDeterministic(t *testing.T) {
	svc := newPriorityFixture()
	ticket := &domain.Ticket{UrgencyKey: strptr("low"), ImpactLevel: strptr("low")}
	first, err := svc.Resolve(context.Background(), ticket)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := svc.Resolve(context.Background(), ticket)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestApplyWritesPriorityOntoTicket(t *testing.T) {
	svc := newPriorityFixture()
	ticket := &domain.Ticket{UrgencyKey: strptr("high"), ImpactLevel: strptr("high"), Priority: domain.TicketPriorityLow}
	require.NoError(t, svc.Apply(context.Background(), ticket))
	assert.Equal(t, domain.TicketPriorityCritical, ticket.Priority)
}
