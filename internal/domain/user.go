package domain

import "time"

// User is an account that can log in: helpdesk agents (ticket assignees) and
// portal contacts alike. Portal accounts carry a PartnerID.
type User struct {
	ID           string
	Name         string
	Login        string
	PasswordHash string
	PartnerID    *string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
