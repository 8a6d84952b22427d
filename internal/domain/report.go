package domain

// ClientHoursLine is one row of the client-hours projection, computed by the
// report_client_hours SQL view on each query.
type ClientHoursLine struct {
	Name            string
	ClientName      string
	ProjectID       string
	ProjectName     string
	ContractedHours float64
	ConsumedHours   float64
	RemainingHours  float64
}
