package leave

import (
	"time"

	"github.com/shopspring/decimal"
)

// LeaveType entity
type LeaveType struct {
	ID           string
	CompanyID    string
	Name         string
	Code         *string
	IsPaid       bool
	AllowHalfDay bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// LeaveBalance is one row per (employee, leave type, year).
type LeaveBalance struct {
	ID              string
	EmployeeID      string
	LeaveTypeID     string
	Year            int
	CurrentBalance  decimal.Decimal
	PendingRequests decimal.Decimal
	UsedCredits     decimal.Decimal
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Available is the balance that can still be consumed.
func (b LeaveBalance) Available() decimal.Decimal {
	return b.CurrentBalance.Sub(b.PendingRequests)
}

type TransactionType string

const (
	TransactionTypeUsage      TransactionType = "USAGE"
	TransactionTypeAdjustment TransactionType = "ADJUSTMENT"
	TransactionTypeAccrual    TransactionType = "ACCRUAL"
	TransactionTypeRequest    TransactionType = "REQUEST"
)

// ReferenceTypeDailyTimeRecord marks ledger rows originating from a DTR edit.
const ReferenceTypeDailyTimeRecord = "DAILY_TIME_RECORD"

// Transaction is an append-only leave ledger row. Amount is signed:
// usage is negative, reversal adjustments are positive.
type Transaction struct {
	ID             string
	BalanceID      string
	EmployeeID     string
	LeaveTypeID    string
	Year           int
	Type           TransactionType
	Amount         decimal.Decimal
	RunningBalance decimal.Decimal
	ReferenceType  string
	ReferenceID    string
	ReversesID     *string
	Remarks        string
	CreatedBy      string
	CreatedAt      time.Time
}

// Usage returns the consumption carried by a USAGE transaction.
func (t Transaction) Usage() Usage {
	return Usage{
		LeaveTypeID: t.LeaveTypeID,
		Year:        t.Year,
		Amount:      t.Amount.Abs(),
	}
}

// Usage is the amount of one leave type consumed in one balance year.
type Usage struct {
	LeaveTypeID string
	Year        int
	Amount      decimal.Decimal
}

// AmountTolerance is the difference below which two usage amounts are equal.
var AmountTolerance = decimal.RequireFromString("0.001")

// Matches reports whether u and other consume the same balance by the same amount.
func (u Usage) Matches(other Usage) bool {
	if u.LeaveTypeID != other.LeaveTypeID || u.Year != other.Year {
		return false
	}
	return u.Amount.Sub(other.Amount).Abs().LessThan(AmountTolerance)
}
