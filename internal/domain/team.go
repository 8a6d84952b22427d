package domain

import "time"

// AssignPolicy selects how new tickets are assigned within a team.
type AssignPolicy string

const (
	// AssignPolicyEquitable balances by open-ticket count.
	AssignPolicyEquitable AssignPolicy = "EQUITABLE"
	// AssignPolicyLead routes everything to the designated team lead.
	AssignPolicyLead AssignPolicy = "LEAD"
)

// Team groups the users a ticket can be assigned to.
type Team struct {
	ID               string
	Name             string
	AssignPolicy     AssignPolicy
	LeadUserID       *string
	ResponseSLAHours int
	IsActive         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TeamMember ties a user to a team. Position fixes the natural order used for
// assignment tie-breaking.
type TeamMember struct {
	ID       string
	TeamID   string
	UserID   string
	Position int
}
