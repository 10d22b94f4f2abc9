package employee

import "context"

type EmployeeRepository interface {
	// GetByID retrieves an active employee with company isolation
	GetByID(ctx context.Context, id string, companyID string) (Employee, error)
}
