package dto

// ClientHoursResponse is one line of the client-hours report.
type ClientHoursResponse struct {
	Name            string  `json:"name"`
	ClientName      string  `json:"client_name"`
	ProjectID       string  `json:"project_id"`
	ProjectName     string  `json:"project_name"`
	ContractedHours float64 `json:"contracted_hours"`
	ConsumedHours   float64 `json:"consumed_hours"`
	RemainingHours  float64 `json:"remaining_hours"`
}
