package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// AssignmentService picks the assignee for a ticket according to the team's
// policy.
type AssignmentService struct {
	teams   repository.TeamRepository
	tickets repository.TicketRepository
	logger  *zap.Logger
}

// NewAssignmentService constructs the service.
func NewAssignmentService(teams repository.TeamRepository, tickets repository.TicketRepository, logger *zap.Logger) *AssignmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{teams: teams, tickets: tickets, logger: logger}
}

// Assignment is the outcome of an assignee pick.
type Assignment struct {
	UserID string
	Policy domain.AssignPolicy
}

// PickAssignee resolves the team's policy to a user ID. Equitable teams get
// the member with the fewest open tickets; ties keep the earlier member in
// the team's ordering. Lead teams always get the lead.
func (s *AssignmentService) PickAssignee(ctx context.Context, teamID string) (*Assignment, error) {
	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("team", map[string]any{"team_id": teamID})
		}
		return nil, apperrors.MapError(err)
	}

	switch team.AssignPolicy {
	case domain.AssignPolicyEquitable:
		userID, err := s.pickEquitable(ctx, team)
		if err != nil {
			return nil, err
		}
		return &Assignment{UserID: userID, Policy: domain.AssignPolicyEquitable}, nil
	case domain.AssignPolicyLead:
		userID, err := s.pickLead(team)
		if err != nil {
			return nil, err
		}
		return &Assignment{UserID: userID, Policy: domain.AssignPolicyLead}, nil
	default:
		return nil, apperrors.NewConfigurationError("unknown assignment policy", map[string]any{
			"team_id": team.ID,
			"policy":  team.AssignPolicy,
		})
	}
}

func (s *AssignmentService) pickEquitable(ctx context.Context, team *domain.Team) (string, error) {
	members, err := s.teams.ListMembers(ctx, team.ID)
	if err != nil {
		return "", apperrors.MapError(err)
	}
	if len(members) == 0 {
		// an empty roster falls through to the lead
		return s.pickLead(team)
	}

	var chosen string
	best := -1
	for _, member := range members {
		open, err := s.tickets.CountOpenByAssignee(ctx, member.UserID)
		if err != nil {
			return "", apperrors.MapError(err)
		}
		// strictly fewer only, so earlier members win ties
		if best < 0 || open < best {
			best = open
			chosen = member.UserID
		}
	}
	s.logger.Debug("equitable assignment",
		zap.String("team_id", team.ID),
		zap.String("user_id", chosen),
		zap.Int("open_tickets", best))
	return chosen, nil
}

func (s *AssignmentService) pickLead(team *domain.Team) (string, error) {
	if team.LeadUserID == nil || *team.LeadUserID == "" {
		return "", apperrors.NewConfigurationError("team has no lead configured", map[string]any{
			"team_id": team.ID,
		})
	}
	return *team.LeadUserID, nil
}
