package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

func seedAssignmentTeam(teams *fakeTeamRepo, policy domain.AssignPolicy, lead *string, members ...string) {
	teams.teams["team-1"] = domain.Team{
		ID:           "team-1",
		Name:         "support",
		AssignPolicy: policy,
		LeadUserID:   lead,
	}
	for i, userID := range members {
		teams.members["team-1"] = append(teams.members["team-1"], domain.TeamMember{
			ID:       userID + "-membership",
			TeamID:   "team-1",
			UserID:   userID,
			Position: i,
		})
	}
}

func seedOpenTickets(t *testing.T, tickets *fakeTicketRepo, userID string, count int) {
	t.Helper()
	for i := 0; i < count; i++ {
		assignee := userID
		ticket := &domain.Ticket{Title: "load", AssigneeID: &assignee}
		require.NoError(t, tickets.Create(context.Background(), ticket))
	}
}

func TestPickAssigneeEquitable(t *testing.T) {
	teams := newFakeTeamRepo()
	tickets := newFakeTicketRepo()
	seedAssignmentTeam(teams, domain.AssignPolicyEquitable, nil, "alice", "bob", "carol")
	seedOpenTickets(t, tickets, "alice", 2)
	seedOpenTickets(t, tickets, "carol", 1)

	svc := NewAssignmentService(teams, tickets, nil)
	assignment, err := svc.PickAssignee(context.Background(), "team-1")
	require.NoError(t, err)
	assert.Equal(t, "bob", assignment.UserID)
	assert.Equal(t, domain.AssignPolicyEquitable, assignment.Policy)
}

func TestPickAssigneeEquitableTieKeepsRosterOrder(t *testing.T) {
	teams := newFakeTeamRepo()
	tickets := newFakeTicketRepo()
	seedAssignmentTeam(teams, domain.AssignPolicyEquitable, nil, "alice", "bob", "carol")
	seedOpenTickets(t, tickets, "alice", 1)
	seedOpenTickets(t, tickets, "bob", 1)
	seedOpenTickets(t, tickets, "carol", 1)

	svc := NewAssignmentService(teams, tickets, nil)
	assignment, err := svc.PickAssignee(context.Background(), "team-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", assignment.UserID)
}

func TestPickAssigneeIgnoresClosedTickets(t *testing.T) {
	teams := newFakeTeamRepo()
	tickets := newFakeTicketRepo()
	seedAssignmentTeam(teams, domain.AssignPolicyEquitable, nil, "alice", "bob")
	seedOpenTickets(t, tickets, "bob", 3)
	// close bob's backlog
	for id, ticket := range tickets.tickets {
		closed := ticket.EntryDate
		ticket.ClosedDate = &closed
		tickets.tickets[id] = ticket
	}
	seedOpenTickets(t, tickets, "alice", 1)

	svc := NewAssignmentService(teams, tickets, nil)
	assignment, err := svc.PickAssignee(context.Background(), "team-1")
	require.NoError(t, err)
	assert.Equal(t, "bob", assignment.UserID)
}

func TestPickAssigneeLeadPolicy(t *testing.T) {
	teams := newFakeTeamRepo()
	tickets := newFakeTicketRepo()
	seedAssignmentTeam(teams, domain.AssignPolicyLead, strptr("dana"), "alice", "bob")

	svc := NewAssignmentService(teams, tickets, nil)
	assignment, err := svc.PickAssignee(context.Background(), "team-1")
	require.NoError(t, err)
	assert.Equal(t, "dana", assignment.UserID)
	assert.Equal(t, domain.AssignPolicyLead, assignment.Policy)
}

func TestPickAssigneeLeadMissingIsConfigurationError(t *testing.T) {
	teams := newFakeTeamRepo()
	tickets := newFakeTicketRepo()
	seedAssignmentTeam(teams, domain.AssignPolicyLead, nil)

	svc := NewAssignmentService(teams, tickets, nil)
	_, err := svc.PickAssignee(context.Background(), "team-1")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "CONFIGURATION_ERROR"))
}

func TestPickAssigneeEmptyRosterFallsBackToLead(t *testing.T) {
	teams := newFakeTeamRepo()
	tickets := newFakeTicketRepo()
	seedAssignmentTeam(teams, domain.AssignPolicyEquitable, strptr("dana"))

	svc := NewAssignmentService(teams, tickets, nil)
	assignment, err := svc.PickAssignee(context.Background(), "team-1")
	require.NoError(t, err)
	assert.Equal(t, "dana", assignment.UserID)
}

func TestPickAssigneeUnknownTeam(t *testing.T) {
	svc := NewAssignmentService(newFakeTeamRepo(), newFakeTicketRepo(), nil)
	_, err := svc.PickAssignee(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}
