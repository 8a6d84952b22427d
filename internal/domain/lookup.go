package domain

import "time"

// Category classifies the type of a ticket.
type Category struct {
	ID        string
	Name      string
	IsActive  bool
	CreatedAt time.Time
}

// Module names the product area a ticket concerns.
type Module struct {
	ID        string
	Name      string
	IsActive  bool
	CreatedAt time.Time
}

// Channel indicates where a ticket came from (phone, mail, portal...).
type Channel struct {
	ID        string
	Name      string
	IsActive  bool
	CreatedAt time.Time
}
