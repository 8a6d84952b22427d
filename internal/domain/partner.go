package domain

import "time"

// HelpdeskLevel controls portal visibility for a contact.
type HelpdeskLevel string

const (
	// HelpdeskLevelManager may read every ticket of the client organization.
	HelpdeskLevelManager HelpdeskLevel = "manager"
	// HelpdeskLevelUser only sees tickets raised by the contact itself.
	HelpdeskLevelUser HelpdeskLevel = "user"
)

// Partner is a contact person or a client organization. Client organizations
// are partners with IsCompany set; contacts point at their organization via
// ParentID.
type Partner struct {
	ID            string
	Name          string
	Email         string
	Phone         string
	City          string
	State         string
	IsCompany     bool
	ParentID      *string
	HelpdeskLevel HelpdeskLevel
	SequenceCode  *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
