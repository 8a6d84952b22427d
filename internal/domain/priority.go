package domain

// PriorityCrossRef maps an (urgency key, impact level) pair to a ticket
// priority. The table is static lookup data, never mutated by the engine.
type PriorityCrossRef struct {
	ID          string
	UrgencyKey  string
	ImpactLevel string
	Priority    TicketPriority
}
