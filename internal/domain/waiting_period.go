package domain

import "time"

// WaitingPeriod is one interval during which a ticket is blocked on an
// external party. At most one period per ticket may be open (EndDate nil).
type WaitingPeriod struct {
	ID        string
	Name      string
	TicketID  string
	UserID    *string
	EntryDate time.Time
	EndDate   *time.Time
	CountDays int
	CreatedAt time.Time
}

// Open reports whether the period is still running.
func (w *WaitingPeriod) Open() bool {
	return w.EndDate == nil
}
