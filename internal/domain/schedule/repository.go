package schedule

import "context"

type WorkScheduleRepository interface {
	// GetByID retrieves a schedule with company isolation
	GetByID(ctx context.Context, id string, companyID string) (WorkSchedule, error)

	// GetByEmployeeID returns the schedule assigned to the employee, or nil
	// when the employee has no fixed schedule.
	GetByEmployeeID(ctx context.Context, employeeID string, companyID string) (*WorkSchedule, error)

	// Save validates and inserts or updates a schedule.
	Save(ctx context.Context, workSchedule WorkSchedule) (WorkSchedule, error)
}
