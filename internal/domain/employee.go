package domain

import "time"

// Employee backs the HR lookup facade. Records are keyed by login email.
type Employee struct {
	ID       string
	UserID   *string
	Login    string
	Name     string
	City     string
	State    string
	Phone    string
	Level    string
	Field    string
	Study    string
	IsActive bool
}

// Experience is one past engagement of an employee.
type Experience struct {
	ID          string
	EmployeeID  string
	Company     string
	Role        string
	StartDate   time.Time
	EndDate     *time.Time
	Description string
}

// Skill is one rated capability of an employee.
type Skill struct {
	ID         string
	EmployeeID string
	Name       string
	Level      string
}
