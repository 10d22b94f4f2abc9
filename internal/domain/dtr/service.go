package dtr

import (
	"context"
	"time"
)

type DTRService interface {
	// Upsert creates or corrects one attendance day and converges the leave
	// ledger in the same transaction.
	Upsert(ctx context.Context, req UpsertDTRRequest) (UpsertDTRResponse, error)

	// Get returns one record of the caller's company
	Get(ctx context.Context, companyID string, id string) (DTRResponse, error)
}

// Transactor runs fn inside one database transaction. fn must use the
// context it receives so repositories join the transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ChangeScopes lists the cached views a DTR change invalidates.
var ChangeScopes = []string{
	"dtr_list",
	"biometric_sync_summary",
	"dashboard",
	"leave_balances",
	"employee_portal",
}

// ChangeEvent is emitted after a DTR write commits.
type ChangeEvent struct {
	CompanyID      string    `json:"company_id"`
	EmployeeID     string    `json:"employee_id"`
	RecordID       string    `json:"record_id"`
	AttendanceDate string    `json:"attendance_date"`
	Scopes         []string  `json:"scopes"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// Notifier signals completion to cache owners. Delivery is best effort.
type Notifier interface {
	DTRChanged(ctx context.Context, event ChangeEvent) error
}
