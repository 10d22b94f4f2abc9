package dtr

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPresent Status = "PRESENT"
	StatusAbsent  Status = "ABSENT"
	StatusOnLeave Status = "ON_LEAVE"
	StatusHoliday Status = "HOLIDAY"
	StatusRestDay Status = "REST_DAY"
)

var StatusValues = []string{
	string(StatusPresent),
	string(StatusAbsent),
	string(StatusOnLeave),
	string(StatusHoliday),
	string(StatusRestDay),
}

type DayFraction string

const (
	DayFractionFull DayFraction = "FULL"
	DayFractionHalf DayFraction = "HALF"
)

var DayFractionValues = []string{
	string(DayFractionFull),
	string(DayFractionHalf),
}

type TimeSource string

const (
	TimeSourceManual TimeSource = "MANUAL"
	TimeSourceDevice TimeSource = "DEVICE"
)

type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "PENDING"
	ApprovalStatusApproved ApprovalStatus = "APPROVED"
	ApprovalStatusRejected ApprovalStatus = "REJECTED"
)

// Metrics are derived from the time pair and the resolved schedule.
// They are never edited directly.
type Metrics struct {
	HoursWorked      decimal.Decimal
	TardinessMinutes int
	UndertimeMinutes int
	OvertimeHours    decimal.Decimal
	NightDiffHours   decimal.Decimal
}

type DailyTimeRecord struct {
	ID             string
	CompanyID      string
	EmployeeID     string
	AttendanceDate time.Time
	TimeIn         *time.Time
	TimeOut        *time.Time
	TimeInSource   *TimeSource
	TimeOutSource  *TimeSource
	Status         Status
	LeaveTypeID    *string
	DayFraction    DayFraction
	Remarks        *string
	Metrics

	// ActiveLeaveTransactionID points at the outstanding USAGE ledger row
	// attributed to this record, nil when none.
	ActiveLeaveTransactionID *string

	ApprovalStatus ApprovalStatus
	ApprovedBy     *string
	ApprovedAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
