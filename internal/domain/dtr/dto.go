package dtr

import (
	"time"

	"github.com/cmlabs-hris/dtr-backend-go/internal/domain/audit"
	"github.com/cmlabs-hris/dtr-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========================================
// DTR DTOs
// ========================================

// UpsertDTRRequest is a manual create-or-correct of one attendance day.
// CompanyID comes from the caller's token and DTRID from the route.
type UpsertDTRRequest struct {
	CompanyID      string  `json:"-"`
	DTRID          *string `json:"-"`
	EmployeeID     string  `json:"employee_id"`
	AttendanceDate string  `json:"attendance_date"`
	TimeIn         *string `json:"time_in"`
	TimeOut        *string `json:"time_out"`
	Status         string  `json:"status"`
	LeaveTypeID    *string `json:"leave_type_id"`
	DayFraction    *string `json:"day_fraction"`
	Remarks        *string `json:"remarks"`
}

const maxRemarksLength = 500

// Normalize turns blank optional strings into nil.
func (r *UpsertDTRRequest) Normalize() {
	for _, field := range []**string{&r.DTRID, &r.TimeIn, &r.TimeOut, &r.LeaveTypeID, &r.DayFraction, &r.Remarks} {
		if *field != nil && validator.IsEmpty(**field) {
			*field = nil
		}
	}
}

// Fraction returns the requested day fraction, FULL when unset.
func (r UpsertDTRRequest) Fraction() DayFraction {
	if r.DayFraction == nil {
		return DayFractionFull
	}
	return DayFraction(*r.DayFraction)
}

func (r *UpsertDTRRequest) Validate() error {
	r.Normalize()

	var errs validator.ValidationErrors

	if validator.IsEmpty(r.CompanyID) {
		errs = append(errs, validator.ValidationError{
			Field:   "company_id",
			Message: "company_id is required",
		})
	}

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	} else if !validator.IsValidUUID(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id must be a valid UUID",
		})
	}

	if validator.IsEmpty(r.AttendanceDate) {
		errs = append(errs, validator.ValidationError{
			Field:   "attendance_date",
			Message: "attendance_date is required",
		})
	} else if _, ok := validator.IsValidDate(r.AttendanceDate); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "attendance_date",
			Message: "attendance_date must be in YYYY-MM-DD format",
		})
	}

	if r.TimeIn != nil && !validator.IsValidClock(*r.TimeIn) {
		errs = append(errs, validator.ValidationError{
			Field:   "time_in",
			Message: "time_in must be in HH:MM or HH:MM:SS format",
		})
	}

	if r.TimeOut != nil && !validator.IsValidClock(*r.TimeOut) {
		errs = append(errs, validator.ValidationError{
			Field:   "time_out",
			Message: "time_out must be in HH:MM or HH:MM:SS format",
		})
	}

	if (r.TimeIn == nil) != (r.TimeOut == nil) {
		errs = append(errs, validator.ValidationError{
			Field:   "time_in",
			Message: "time_in and time_out must be provided together",
		})
	}

	if validator.IsEmpty(r.Status) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status is required",
		})
	} else if !validator.IsInSlice(r.Status, StatusValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: PRESENT, ABSENT, ON_LEAVE, HOLIDAY, REST_DAY",
		})
	} else if Status(r.Status) == StatusPresent && (r.TimeIn == nil || r.TimeOut == nil) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "PRESENT status requires both time_in and time_out",
		})
	}

	if r.LeaveTypeID != nil && !validator.IsValidUUID(*r.LeaveTypeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "leave_type_id",
			Message: "leave_type_id must be a valid UUID",
		})
	}

	if r.DayFraction != nil && !validator.IsInSlice(*r.DayFraction, DayFractionValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "day_fraction",
			Message: "day_fraction must be one of: FULL, HALF",
		})
	}

	if r.Remarks != nil && len([]rune(*r.Remarks)) > maxRemarksLength {
		errs = append(errs, validator.ValidationError{
			Field:   "remarks",
			Message: "remarks must not exceed 500 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type DTRResponse struct {
	ID                       string     `json:"id"`
	CompanyID                string     `json:"company_id"`
	EmployeeID               string     `json:"employee_id"`
	AttendanceDate           string     `json:"attendance_date"`
	TimeIn                   *time.Time `json:"time_in"`
	TimeOut                  *time.Time `json:"time_out"`
	TimeInSource             *string    `json:"time_in_source"`
	TimeOutSource            *string    `json:"time_out_source"`
	Status                   string     `json:"status"`
	LeaveTypeID              *string    `json:"leave_type_id"`
	DayFraction              string     `json:"day_fraction"`
	Remarks                  *string    `json:"remarks"`
	HoursWorked              string     `json:"hours_worked"`
	TardinessMinutes         int        `json:"tardiness_minutes"`
	UndertimeMinutes         int        `json:"undertime_minutes"`
	OvertimeHours            string     `json:"overtime_hours"`
	NightDiffHours           string     `json:"night_diff_hours"`
	ActiveLeaveTransactionID *string    `json:"active_leave_transaction_id"`
	ApprovalStatus           string     `json:"approval_status"`
	ApprovedBy               *string    `json:"approved_by"`
	ApprovedAt               *time.Time `json:"approved_at"`
	CreatedAt                time.Time  `json:"created_at"`
	UpdatedAt                time.Time  `json:"updated_at"`
}

// NewDTRResponse converts a record for the API. Hour figures are rendered
// with exactly two decimals.
func NewDTRResponse(r DailyTimeRecord) DTRResponse {
	return DTRResponse{
		ID:                       r.ID,
		CompanyID:                r.CompanyID,
		EmployeeID:               r.EmployeeID,
		AttendanceDate:           r.AttendanceDate.Format("2006-01-02"),
		TimeIn:                   r.TimeIn,
		TimeOut:                  r.TimeOut,
		TimeInSource:             (*string)(r.TimeInSource),
		TimeOutSource:            (*string)(r.TimeOutSource),
		Status:                   string(r.Status),
		LeaveTypeID:              r.LeaveTypeID,
		DayFraction:              string(r.DayFraction),
		Remarks:                  r.Remarks,
		HoursWorked:              hours(r.HoursWorked),
		TardinessMinutes:         r.TardinessMinutes,
		UndertimeMinutes:         r.UndertimeMinutes,
		OvertimeHours:            hours(r.OvertimeHours),
		NightDiffHours:           hours(r.NightDiffHours),
		ActiveLeaveTransactionID: r.ActiveLeaveTransactionID,
		ApprovalStatus:           string(r.ApprovalStatus),
		ApprovedBy:               r.ApprovedBy,
		ApprovedAt:               r.ApprovedAt,
		CreatedAt:                r.CreatedAt,
		UpdatedAt:                r.UpdatedAt,
	}
}

func hours(d decimal.Decimal) string {
	return d.StringFixed(2)
}

type UpsertDTRResponse struct {
	Message string              `json:"message"`
	Created bool                `json:"created"`
	Record  DTRResponse         `json:"record"`
	Changes []audit.FieldChange `json:"changes"`
}
