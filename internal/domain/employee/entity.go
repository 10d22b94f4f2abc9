package employee

import "time"

// Employee carries the fields the attendance engine needs from the
// employees table.
type Employee struct {
	ID             string
	CompanyID      string
	EmployeeCode   string
	FullName       string
	WorkScheduleID *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      *time.Time
}

// HasSchedule checks if the employee is assigned to a fixed work schedule
func (e Employee) HasSchedule() bool {
	return e.WorkScheduleID != nil && *e.WorkScheduleID != ""
}
