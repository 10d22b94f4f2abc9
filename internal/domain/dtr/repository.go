package dtr

import "context"

// DTRRepository - interface for daily_time_records table.
// The ForUpdate reads lock the row until the surrounding transaction ends.
type DTRRepository interface {
	GetByID(ctx context.Context, id string, companyID string) (DailyTimeRecord, error)
	GetByIDForUpdate(ctx context.Context, id string, companyID string) (DailyTimeRecord, error)
	GetByEmployeeAndDateForUpdate(ctx context.Context, employeeID string, date string) (DailyTimeRecord, error)
	Create(ctx context.Context, record DailyTimeRecord) (DailyTimeRecord, error)
	Update(ctx context.Context, record DailyTimeRecord) (DailyTimeRecord, error)
}
