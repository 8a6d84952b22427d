package dto

// HREnvelope is the legacy response shape of the employee facade. Status is
// "success" or "error"; Response carries the payload; Message the error text.
type HREnvelope struct {
	Status   string `json:"status"`
	Response any    `json:"response,omitempty"`
	Message  string `json:"message,omitempty"`
}

// EmployeeResponse is one employee record of the facade.
type EmployeeResponse struct {
	ID    string `json:"id"`
	Login string `json:"login"`
	Name  string `json:"name"`
	City  string `json:"city"`
	State string `json:"state"`
	Phone string `json:"phone"`
	Level string `json:"level"`
	Field string `json:"field"`
	Study string `json:"study"`
}

// ExperienceResponse is one past engagement.
type ExperienceResponse struct {
	Company     string  `json:"company"`
	Role        string  `json:"role"`
	StartDate   string  `json:"start_date"`
	EndDate     *string `json:"end_date"`
	Description string  `json:"description"`
}

// SkillResponse is one rated capability.
type SkillResponse struct {
	Name  string `json:"name"`
	Level string `json:"level"`
}
