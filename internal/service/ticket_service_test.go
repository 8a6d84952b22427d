package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

type ticketFixture struct {
	svc        *TicketService
	lifecycle  *lifecycleFixture
	partners   *fakePartnerRepo
	projects   *fakeProjectRepo
	teams      *fakeTeamRepo
	sequences  *fakeSequenceRepo
	messages   *fakeMessageRepo
	dispatcher *recordingDispatcher
}

func newTicketFixture(t *testing.T, now time.Time) *ticketFixture {
	t.Helper()
	lifecycle := newLifecycleFixture(t, now)
	partners := newFakePartnerRepo()
	projects := newFakeProjectRepo()
	teams := newFakeTeamRepo()
	sequences := newFakeSequenceRepo()
	messages := &fakeMessageRepo{}

	helpdeskCfg := config.HelpdeskConfig{DefaultSequenceCode: "helpdesk.ticket"}
	numbering := NewNumberingService(helpdeskCfg, sequences, partners)
	priorities := NewPriorityService(&fakePriorityRepo{refs: []domain.PriorityCrossRef{
		{UrgencyKey: "high", ImpactLevel: "high", Priority: domain.TicketPriorityCritical},
	}})
	assignment := NewAssignmentService(teams, lifecycle.tickets, nil)

	svc := NewTicketService(TicketDependencies{
		TicketRepo:  lifecycle.tickets,
		PartnerRepo: partners,
		ProjectRepo: projects,
		TaskRepo:    lifecycle.tasks,
		MessageRepo: messages,
		Lifecycle:   lifecycle.svc,
		Numbering:   numbering,
		Priorities:  priorities,
		Assignment:  assignment,
		Dispatcher:  lifecycle.dispatcher,
	})
	svc.now = lifecycle.svc.now

	return &ticketFixture{
		svc:        svc,
		lifecycle:  lifecycle,
		partners:   partners,
		projects:   projects,
		teams:      teams,
		sequences:  sequences,
		messages:   messages,
		dispatcher: lifecycle.dispatcher,
	}
}

func (f *ticketFixture) seedIntakeWorld(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.partners.Create(ctx, &domain.Partner{
		ID: "client-1", Name: "Acme", IsCompany: true,
	}))
	require.NoError(t, f.partners.Create(ctx, &domain.Partner{
		ID: "contact-1", Name: "Jo", Email: "jo@acme.test", ParentID: strptr("client-1"),
	}))
	require.NoError(t, f.sequences.Create(ctx, &repository.Sequence{
		Code: "helpdesk.ticket", Prefix: "TICK/", Padding: 5, NextValue: 1,
	}))
	require.NoError(t, f.projects.Create(ctx, &domain.Project{
		ID: "project-1", Name: "Support pack", ClientID: strptr("client-1"),
		ContractedHours: 100, IsActive: true,
	}))
	f.projects.remaining["project-1"] = 40
	seedAssignmentTeam(f.teams, domain.AssignPolicyEquitable, nil, "alice", "bob")
}

func TestCreateTicketIntakePipeline(t *testing.T) {
	f := newTicketFixture(t, date(2024, time.January, 1))
	f.seedIntakeWorld(t)

	ticket, err := f.svc.CreateTicket(context.Background(), CreateTicketInput{
		Title:       "cannot log in",
		Description: "password rejected since this morning",
		ContactID:   strptr("contact-1"),
		UrgencyKey:  strptr("high"),
		ImpactLevel: strptr("high"),
		TeamID:      strptr("team-1"),
	})
	require.NoError(t, err)

	assert.Equal(t, "TICK/00001", ticket.Number)
	require.NotNil(t, ticket.ClientID)
	assert.Equal(t, "client-1", *ticket.ClientID)
	assert.Equal(t, domain.TicketPriorityCritical, ticket.Priority)
	require.NotNil(t, ticket.ProjectID)
	assert.Equal(t, "project-1", *ticket.ProjectID)
	require.NotNil(t, ticket.AssigneeID)
	assert.Equal(t, "alice", *ticket.AssigneeID)
	require.NotNil(t, ticket.StageID)
	assert.Equal(t, "stage-new", *ticket.StageID)
	assert.False(t, ticket.Working)
	assert.False(t, ticket.Resolved)

	seen := f.dispatcher.typesSeen()
	assert.Contains(t, seen, events.EventTicketCreated)
	assert.Contains(t, seen, events.EventTicketAssigned)
}

func TestCreateTicketCompanyContactIsItsOwnClient(t *testing.T) {
	f := newTicketFixture(t, date(2024, time.January, 1))
	f.seedIntakeWorld(t)

	ticket, err := f.svc.CreateTicket(context.Background(), CreateTicketInput{
		Title:     "invoice question",
		ContactID: strptr("client-1"),
	})
	require.NoError(t, err)
	require.NotNil(t, ticket.ClientID)
	assert.Equal(t, "client-1", *ticket.ClientID)
}

func TestCreateTicketRequiresTitle(t *testing.T) {
	f := newTicketFixture(t, date(2024, time.January, 1))
	_, err := f.svc.CreateTicket(context.Background(), CreateTicketInput{Title: "   "})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}

func TestCreateTicketSkipsExhaustedProjects(t *testing.T) {
	f := newTicketFixture(t, date(2024, time.January, 1))
	f.seedIntakeWorld(t)
	f.projects.remaining["project-1"] = 0 // contract used up

	ticket, err := f.svc.CreateTicket(context.Background(), CreateTicketInput{
		Title:     "slow reports",
		ContactID: strptr("contact-1"),
	})
	require.NoError(t, err)
	assert.Nil(t, ticket.ProjectID)
}

func TestCreateTaskForTicket(t *testing.T) {
	f := newTicketFixture(t, date(2024, time.January, 1))
	f.seedIntakeWorld(t)
	ticket, err := f.svc.CreateTicket(context.Background(), CreateTicketInput{
		Title:     "cannot log in",
		ContactID: strptr("contact-1"),
	})
	require.NoError(t, err)

	task, err := f.svc.CreateTaskForTicket(context.Background(), ticket.ID, CreateTaskInput{})
	require.NoError(t, err)
	assert.Equal(t, "project-1", task.ProjectID)
	require.NotNil(t, task.TicketID)
	assert.Equal(t, ticket.ID, *task.TicketID)
	// unset planned hours default to the project's remaining balance
	assert.InDelta(t, 40, task.PlannedHours, 0.001)
	assert.Equal(t, ticket.Number+": "+ticket.Title, task.Name)

	stored, err := f.lifecycle.tickets.GetByID(context.Background(), ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.TaskID)
	assert.Equal(t, task.ID, *stored.TaskID)

	// a ticket carries exactly one task
	_, err = f.svc.CreateTaskForTicket(context.Background(), ticket.ID, CreateTaskInput{Name: "second"})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "CONSTRAINT_VIOLATION"))
}

func TestSendReplyStoresMessageAndMovesToWaiting(t *testing.T) {
	f := newTicketFixture(t, date(2024, time.January, 1))
	f.seedIntakeWorld(t)
	ticket, err := f.svc.CreateTicket(context.Background(), CreateTicketInput{
		Title:     "cannot log in",
		ContactID: strptr("contact-1"),
	})
	require.NoError(t, err)
	_, err = f.svc.CreateTaskForTicket(context.Background(), ticket.ID, CreateTaskInput{})
	require.NoError(t, err)

	updated, err := f.svc.SendReply(context.Background(), ticket.ID, strptr("alice"), SendReplyInput{
		Body: "please try resetting your password",
	})
	require.NoError(t, err)
	assert.True(t, updated.Waiting)
	require.NotNil(t, updated.StageID)
	assert.Equal(t, "stage-wai", *updated.StageID)

	msgs, err := f.messages.ListByTicket(context.Background(), ticket.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, domain.MessageDirectionOutbound, msgs[0].Direction)
	assert.Equal(t, "Re: cannot log in", msgs[0].Subject)
}

func TestSendReplyBlockedWithoutTask(t *testing.T) {
	f := newTicketFixture(t, date(2024, time.January, 1))
	f.seedIntakeWorld(t)
	ticket, err := f.svc.CreateTicket(context.Background(), CreateTicketInput{
		Title:     "cannot log in",
		ContactID: strptr("contact-1"),
	})
	require.NoError(t, err)

	_, err = f.svc.SendReply(context.Background(), ticket.ID, strptr("alice"), SendReplyInput{Body: "hi"})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "PRECONDITION_FAILED"))

	// nothing was stored when the transition was refused
	msgs, listErr := f.messages.ListByTicket(context.Background(), ticket.ID)
	require.NoError(t, listErr)
	assert.Empty(t, msgs)
}

func TestReceiveMessageFromContactResumesWork(t *testing.T) {
	f := newTicketFixture(t, date(2024, time.January, 1))
	f.seedIntakeWorld(t)
	ticket, err := f.svc.CreateTicket(context.Background(), CreateTicketInput{
		Title:     "cannot log in",
		ContactID: strptr("contact-1"),
	})
	require.NoError(t, err)
	_, err = f.svc.CreateTaskForTicket(context.Background(), ticket.ID, CreateTaskInput{})
	require.NoError(t, err)
	_, err = f.svc.SendReply(context.Background(), ticket.ID, strptr("alice"), SendReplyInput{Body: "try again"})
	require.NoError(t, err)

	updated, err := f.svc.ReceiveMessage(context.Background(), ticket.ID, InboundMessageInput{
		AuthorPartnerID: "contact-1",
		Body:            "still broken",
	})
	require.NoError(t, err)
	assert.True(t, updated.Working)
	assert.False(t, updated.Waiting)

	msgs, err := f.messages.ListByTicket(context.Background(), ticket.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, domain.MessageDirectionInbound, msgs[1].Direction)
}

func TestListTicketsScopedByHelpdeskLevel(t *testing.T) {
	f := newTicketFixture(t, date(2024, time.January, 1))
	f.seedIntakeWorld(t)
	ctx := context.Background()
	require.NoError(t, f.partners.Create(ctx, &domain.Partner{
		ID: "contact-2", Name: "Max", ParentID: strptr("client-1"),
		HelpdeskLevel: domain.HelpdeskLevelManager,
	}))

	_, err := f.svc.CreateTicket(ctx, CreateTicketInput{Title: "first", ContactID: strptr("contact-1")})
	require.NoError(t, err)
	_, err = f.svc.CreateTicket(ctx, CreateTicketInput{Title: "second", ContactID: strptr("contact-2")})
	require.NoError(t, err)

	plainContact, err := f.partners.GetByID(ctx, "contact-1")
	require.NoError(t, err)
	managerContact, err := f.partners.GetByID(ctx, "contact-2")
	require.NoError(t, err)

	plain := &auth.Principal{User: &domain.User{ID: "u1"}, Partner: plainContact}
	items, total, err := f.svc.ListTicketsFor(ctx, plain, repository.TicketFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "first", items[0].Title)

	manager := &auth.Principal{User: &domain.User{ID: "u2"}, Partner: managerContact}
	_, total, err = f.svc.ListTicketsFor(ctx, manager, repository.TicketFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

func TestUpdateTicketReResolvesPriority(t *testing.T) {
	f := newTicketFixture(t, date(2024, time.January, 1))
	f.seedIntakeWorld(t)
	ctx := context.Background()
	ticket, err := f.svc.CreateTicket(ctx, CreateTicketInput{
		Title:     "cannot log in",
		ContactID: strptr("contact-1"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketPriorityLow, ticket.Priority)

	contact, err := f.partners.GetByID(ctx, "contact-1")
	require.NoError(t, err)
	principal := &auth.Principal{User: &domain.User{ID: "u1"}, Partner: contact}

	updated, err := f.svc.UpdateTicket(ctx, principal, ticket.ID, UpdateTicketInput{
		Title:       strptr("cannot log in at all"),
		UrgencyKey:  strptr("high"),
		ImpactLevel: strptr("high"),
	})
	require.NoError(t, err)
	assert.Equal(t, "cannot log in at all", updated.Title)
	assert.Equal(t, domain.TicketPriorityCritical, updated.Priority)

	// an edit that touches neither urgency nor impact keeps the priority
	updated, err = f.svc.UpdateTicket(ctx, principal, ticket.ID, UpdateTicketInput{
		Description: strptr("more detail"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketPriorityCritical, updated.Priority)
}

func TestGetTicketOutsideScopeReadsAsNotFound(t *testing.T) {
	f := newTicketFixture(t, date(2024, time.January, 1))
	f.seedIntakeWorld(t)
	ctx := context.Background()
	require.NoError(t, f.partners.Create(ctx, &domain.Partner{ID: "stranger-1", Name: "Eve"}))

	ticket, err := f.svc.CreateTicket(ctx, CreateTicketInput{Title: "first", ContactID: strptr("contact-1")})
	require.NoError(t, err)

	stranger, err := f.partners.GetByID(ctx, "stranger-1")
	require.NoError(t, err)
	principal := &auth.Principal{User: &domain.User{ID: "u3"}, Partner: stranger}

	_, err = f.svc.GetTicketFor(ctx, principal, ticket.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}
