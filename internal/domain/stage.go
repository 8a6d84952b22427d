package domain

import "time"

// Stage keys used by lifecycle transitions to locate target stages. The
// indirection lets stages be renamed or reordered without touching transition
// code.
const (
	StageKeyNew        = "new"
	StageKeyProcessing = "pro"
	StageKeyWaiting    = "wai"
	StageKeyDone       = "don"
	StageKeyCancelled  = "can"
)

// Stage is a named pipeline position.
type Stage struct {
	ID              string
	Name            string
	Key             string
	Closed          bool
	Unattended      bool
	MailTemplateKey *string
	Position        int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
