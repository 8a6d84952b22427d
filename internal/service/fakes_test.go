package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// In-memory fakes for the repository interfaces. They keep just enough
// behavior for the service tests: copy-on-read, pgx.ErrNoRows on misses.

type fakeTicketRepo struct {
	mu      sync.Mutex
	seq     int
	tickets map[string]domain.Ticket
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: make(map[string]domain.Ticket)}
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	ticket.ID = fmt.Sprintf("ticket-%d", r.seq)
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := ticket
	return &copied, nil
}

func (r *fakeTicketRepo) GetByNumber(_ context.Context, number string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ticket := range r.tickets {
		if ticket.Number == number {
			copied := ticket
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Ticket
	for _, ticket := range r.tickets {
		if filter.Working != nil && ticket.Working != *filter.Working {
			continue
		}
		if filter.Closed != nil && (ticket.ClosedDate != nil) != *filter.Closed {
			continue
		}
		if filter.ContactID != nil && (ticket.ContactID == nil || *ticket.ContactID != *filter.ContactID) {
			continue
		}
		if filter.ClientID != nil && (ticket.ClientID == nil || *ticket.ClientID != *filter.ClientID) {
			continue
		}
		if filter.SearchTerm != nil && !strings.Contains(strings.ToLower(ticket.Title), strings.ToLower(*filter.SearchTerm)) {
			continue
		}
		result = append(result, ticket)
	}
	return result, nil
}

func (r *fakeTicketRepo) CountWithFilter(ctx context.Context, filter repository.TicketFilter) (int, error) {
	items, err := r.ListWithFilter(ctx, filter)
	return len(items), err
}

func (r *fakeTicketRepo) CountOpenByAssignee(_ context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, ticket := range r.tickets {
		if ticket.AssigneeID != nil && *ticket.AssigneeID == userID && ticket.ClosedDate == nil {
			count++
		}
	}
	return count, nil
}

type fakeStageRepo struct {
	stages []domain.Stage
}

func newFakeStageRepo() *fakeStageRepo {
	return &fakeStageRepo{stages: []domain.Stage{
		{ID: "stage-new", Name: "New", Key: domain.StageKeyNew, Position: 10},
		{ID: "stage-pro", Name: "Processing", Key: domain.StageKeyProcessing, Position: 20},
		{ID: "stage-wai", Name: "Waiting", Key: domain.StageKeyWaiting, Position: 30},
		{ID: "stage-don", Name: "Done", Key: domain.StageKeyDone, Closed: true, Position: 40},
		{ID: "stage-can", Name: "Cancelled", Key: domain.StageKeyCancelled, Closed: true, Position: 50},
	}}
}

func (r *fakeStageRepo) GetByID(_ context.Context, id string) (*domain.Stage, error) {
	for i := range r.stages {
		if r.stages[i].ID == id {
			copied := r.stages[i]
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeStageRepo) GetByKey(_ context.Context, key string) (*domain.Stage, error) {
	for i := range r.stages {
		if r.stages[i].Key == key {
			copied := r.stages[i]
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeStageRepo) List(_ context.Context) ([]domain.Stage, error) {
	return append([]domain.Stage{}, r.stages...), nil
}

type fakePeriodRepo struct {
	mu      sync.Mutex
	seq     int
	periods map[string]domain.WaitingPeriod
}

func newFakePeriodRepo() *fakePeriodRepo {
	return &fakePeriodRepo{periods: make(map[string]domain.WaitingPeriod)}
}

func (r *fakePeriodRepo) Create(_ context.Context, period *domain.WaitingPeriod) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	period.ID = fmt.Sprintf("period-%d", r.seq)
	period.Name = fmt.Sprintf("WAIT/%05d", r.seq)
	period.CreatedAt = time.Now()
	r.periods[period.ID] = *period
	return nil
}

func (r *fakePeriodRepo) Update(_ context.Context, period *domain.WaitingPeriod) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.periods[period.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.periods[period.ID] = *period
	return nil
}

func (r *fakePeriodRepo) FindOpenByTicket(_ context.Context, ticketID string) (*domain.WaitingPeriod, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, period := range r.periods {
		if period.TicketID == ticketID && period.EndDate == nil {
			copied := period
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakePeriodRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.WaitingPeriod, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.WaitingPeriod
	for _, period := range r.periods {
		if period.TicketID == ticketID {
			result = append(result, period)
		}
	}
	return result, nil
}

type fakeTaskRepo struct {
	mu    sync.Mutex
	seq   int
	tasks map[string]domain.Task
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[string]domain.Task)}
}

func (r *fakeTaskRepo) Create(_ context.Context, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	task.ID = fmt.Sprintf("task-%d", r.seq)
	r.tasks[task.ID] = *task
	return nil
}

func (r *fakeTaskRepo) Update(_ context.Context, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[task.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.tasks[task.ID] = *task
	return nil
}

func (r *fakeTaskRepo) GetByID(_ context.Context, id string) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := task
	return &copied, nil
}

func (r *fakeTaskRepo) SumEffectiveHours(_ context.Context, taskID string) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := 0.0
	for _, task := range r.tasks {
		if task.ID == taskID || (task.ParentID != nil && *task.ParentID == taskID) {
			total += task.EffectiveHours
		}
	}
	return total, nil
}

type fakeTeamRepo struct {
	teams   map[string]domain.Team
	members map[string][]domain.TeamMember
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{
		teams:   make(map[string]domain.Team),
		members: make(map[string][]domain.TeamMember),
	}
}

func (r *fakeTeamRepo) Create(_ context.Context, team *domain.Team) error {
	if team.ID == "" {
		team.ID = fmt.Sprintf("team-%d", len(r.teams)+1)
	}
	r.teams[team.ID] = *team
	return nil
}

func (r *fakeTeamRepo) Update(_ context.Context, team *domain.Team) error {
	if _, ok := r.teams[team.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.teams[team.ID] = *team
	return nil
}

func (r *fakeTeamRepo) GetByID(_ context.Context, id string) (*domain.Team, error) {
	team, ok := r.teams[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := team
	return &copied, nil
}

func (r *fakeTeamRepo) ListMembers(_ context.Context, teamID string) ([]domain.TeamMember, error) {
	return append([]domain.TeamMember{}, r.members[teamID]...), nil
}

type fakePartnerRepo struct {
	seq      int
	partners map[string]domain.Partner
}

func newFakePartnerRepo() *fakePartnerRepo {
	return &fakePartnerRepo{partners: make(map[string]domain.Partner)}
}

func (r *fakePartnerRepo) Create(_ context.Context, partner *domain.Partner) error {
	if partner.ID == "" {
		r.seq++
		partner.ID = fmt.Sprintf("partner-%d", r.seq)
	}
	r.partners[partner.ID] = *partner
	return nil
}

func (r *fakePartnerRepo) Update(_ context.Context, partner *domain.Partner) error {
	if _, ok := r.partners[partner.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.partners[partner.ID] = *partner
	return nil
}

func (r *fakePartnerRepo) GetByID(_ context.Context, id string) (*domain.Partner, error) {
	partner, ok := r.partners[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := partner
	return &copied, nil
}

func (r *fakePartnerRepo) GetByEmail(_ context.Context, email string) (*domain.Partner, error) {
	for _, partner := range r.partners {
		if partner.Email == email {
			copied := partner
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeUserRepo struct {
	seq   int
	users map[string]domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	if user.ID == "" {
		r.seq++
		user.ID = fmt.Sprintf("user-%d", r.seq)
	}
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := user
	return &copied, nil
}

func (r *fakeUserRepo) GetByLogin(_ context.Context, login string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Login == login {
			copied := user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeProjectRepo struct {
	projects  map[string]domain.Project
	remaining map[string]float64
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{
		projects:  make(map[string]domain.Project),
		remaining: make(map[string]float64),
	}
}

func (r *fakeProjectRepo) Create(_ context.Context, project *domain.Project) error {
	if project.ID == "" {
		project.ID = fmt.Sprintf("project-%d", len(r.projects)+1)
	}
	r.projects[project.ID] = *project
	return nil
}

func (r *fakeProjectRepo) GetByID(_ context.Context, id string) (*domain.Project, error) {
	project, ok := r.projects[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := project
	return &copied, nil
}

func (r *fakeProjectRepo) FindLinkable(_ context.Context, clientID string) (*domain.Project, error) {
	for _, project := range r.projects {
		if project.ClientID == nil || *project.ClientID != clientID || !project.IsActive {
			continue
		}
		if project.ContractedHours == 0 || r.remaining[project.ID] == 0 {
			continue
		}
		copied := project
		return &copied, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeProjectRepo) RemainingHours(_ context.Context, projectID string) (float64, error) {
	return r.remaining[projectID], nil
}

type fakeSequenceRepo struct {
	sequences map[string]*repository.Sequence
}

func newFakeSequenceRepo() *fakeSequenceRepo {
	return &fakeSequenceRepo{sequences: make(map[string]*repository.Sequence)}
}

func (r *fakeSequenceRepo) Create(_ context.Context, seq *repository.Sequence) error {
	copied := *seq
	r.sequences[seq.Code] = &copied
	return nil
}

func (r *fakeSequenceRepo) NextNumber(_ context.Context, code string) (string, error) {
	seq, ok := r.sequences[code]
	if !ok {
		return "", pgx.ErrNoRows
	}
	value := seq.NextValue
	seq.NextValue++
	return fmt.Sprintf("%s%0*d", seq.Prefix, seq.Padding, value), nil
}

type fakePriorityRepo struct {
	refs []domain.PriorityCrossRef
}

func (r *fakePriorityRepo) Find(_ context.Context, urgencyKey, impactLevel string) (*domain.PriorityCrossRef, error) {
	for i := range r.refs {
		if r.refs[i].UrgencyKey == urgencyKey && r.refs[i].ImpactLevel == impactLevel {
			copied := r.refs[i]
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeMessageRepo struct {
	seq      int
	messages []domain.TicketMessage
}

func (r *fakeMessageRepo) Create(_ context.Context, msg *domain.TicketMessage) error {
	r.seq++
	msg.ID = fmt.Sprintf("message-%d", r.seq)
	msg.CreatedAt = time.Now()
	r.messages = append(r.messages, *msg)
	return nil
}

func (r *fakeMessageRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketMessage, error) {
	var result []domain.TicketMessage
	for _, msg := range r.messages {
		if msg.TicketID == ticketID {
			result = append(result, msg)
		}
	}
	return result, nil
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) typesSeen() []events.EventType {
	d.mu.Lock()
	defer d.mu.Unlock()
	seen := make([]events.EventType, 0, len(d.events))
	for _, event := range d.events {
		seen = append(seen, event.Type)
	}
	return seen
}

type fakeReminderStore struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newFakeReminderStore() *fakeReminderStore {
	return &fakeReminderStore{seen: make(map[string]bool)}
}

func (s *fakeReminderStore) Remember(_ context.Context, key string, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen[key] {
		return false, nil
	}
	s.seen[key] = true
	return true, nil
}
