package domain

import "time"

// MessageDirection distinguishes operator replies from customer mail.
type MessageDirection string

const (
	MessageDirectionOutbound MessageDirection = "OUTBOUND"
	MessageDirectionInbound  MessageDirection = "INBOUND"
)

// TicketMessage is one entry in a ticket's mail thread.
type TicketMessage struct {
	ID              string
	TicketID        string
	Direction       MessageDirection
	AuthorUserID    *string
	AuthorPartnerID *string
	Subject         string
	Body            string
	CreatedAt       time.Time
}
