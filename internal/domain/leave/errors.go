package leave

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrLeaveTypeNotFound   = errors.New("leave type not found")
	ErrBalanceNotFound     = errors.New("leave balance not found")
	ErrTransactionNotFound = errors.New("leave transaction not found")

	// ErrInsufficientBalance is returned when usage exceeds available balance.
	ErrInsufficientBalance = errors.New("insufficient leave balance")

	// ErrLedgerInconsistency is returned when the balance row disagrees with
	// the ledger and a reversal cannot proceed.
	ErrLedgerInconsistency = errors.New("leave ledger is inconsistent")
)

// InsufficientBalanceError provides details about a balance shortage.
type InsufficientBalanceError struct {
	EmployeeID  string
	LeaveTypeID string
	Year        int
	Available   decimal.Decimal
	Requested   decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient leave balance: requested %s, available %s (leave type %s, year %d)",
		e.Requested.StringFixed(2), e.Available.StringFixed(2), e.LeaveTypeID, e.Year)
}

func (e *InsufficientBalanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}

// LedgerInconsistencyError reports a balance that cannot be reconciled with
// its ledger. It signals earlier corruption and is never retried.
type LedgerInconsistencyError struct {
	TransactionID string
	BalanceID     string
	Reason        string
}

func (e *LedgerInconsistencyError) Error() string {
	if e.BalanceID != "" {
		return fmt.Sprintf("leave ledger is inconsistent for transaction %s on balance %s: %s", e.TransactionID, e.BalanceID, e.Reason)
	}
	return fmt.Sprintf("leave ledger is inconsistent for transaction %s: %s", e.TransactionID, e.Reason)
}

func (e *LedgerInconsistencyError) Is(target error) bool {
	return target == ErrLedgerInconsistency
}
