package leave

import (
	"context"
)

// LeaveTypeRepository - interface for leave_types table
type LeaveTypeRepository interface {
	GetByID(ctx context.Context, id string, companyID string) (LeaveType, error)
}

// LeaveBalanceRepository - interface for leave_balances table.
// Callers must run inside a transaction; GetForUpdate locks the row until commit.
type LeaveBalanceRepository interface {
	GetForUpdate(ctx context.Context, employeeID, leaveTypeID string, year int) (LeaveBalance, error)
	UpdateAmounts(ctx context.Context, balance LeaveBalance) error
}

// TransactionRepository - interface for the append-only leave_balance_transactions table
type TransactionRepository interface {
	Append(ctx context.Context, tx Transaction) (Transaction, error)
	GetByID(ctx context.Context, id string) (Transaction, error)
	ListByReference(ctx context.Context, referenceType, referenceID string) ([]Transaction, error)
}
