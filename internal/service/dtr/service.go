package dtr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/dtr-backend-go/internal/domain/audit"
	"github.com/cmlabs-hris/dtr-backend-go/internal/domain/dtr"
	"github.com/cmlabs-hris/dtr-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/dtr-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/dtr-backend-go/internal/domain/schedule"
	"github.com/cmlabs-hris/dtr-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/dtr-backend-go/internal/pkg/validator"
	leaveService "github.com/cmlabs-hris/dtr-backend-go/internal/service/leave"
	scheduleService "github.com/cmlabs-hris/dtr-backend-go/internal/service/schedule"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	MessageCreated   = "DTR record created successfully"
	MessageUpdated   = "DTR record updated successfully"
	MessageUnchanged = "DTR record is already up to date"

	auditTableName = "daily_time_records"
)

var (
	fullDay = decimal.NewFromInt(1)
	halfDay = decimal.RequireFromString("0.5")
)

// Policy holds the company-independent settings of the engine.
type Policy struct {
	// Location is the civil timezone all wall-clock values belong to.
	Location *time.Location
	// DefaultBreakMinutes applies to employees without a work schedule.
	DefaultBreakMinutes int
}

type DTRServiceImpl struct {
	transactor  dtr.Transactor
	authorizer  user.Authorizer
	records     dtr.DTRRepository
	employees   employee.EmployeeRepository
	schedules   schedule.WorkScheduleRepository
	leaveTypes  leave.LeaveTypeRepository
	reconciler  *leaveService.Reconciler
	auditSink   audit.Sink
	notifier    dtr.Notifier
	policy      Policy
	now         func() time.Time
	newRecordID func() (string, error)
}

func NewDTRService(
	transactor dtr.Transactor,
	authorizer user.Authorizer,
	dtrRepository dtr.DTRRepository,
	employeeRepository employee.EmployeeRepository,
	workScheduleRepository schedule.WorkScheduleRepository,
	leaveTypeRepository leave.LeaveTypeRepository,
	reconciler *leaveService.Reconciler,
	auditSink audit.Sink,
	notifier dtr.Notifier,
	policy Policy,
) dtr.DTRService {
	if policy.Location == nil {
		policy.Location = time.UTC
	}
	return &DTRServiceImpl{
		transactor:  transactor,
		authorizer:  authorizer,
		records:     dtrRepository,
		employees:   employeeRepository,
		schedules:   workScheduleRepository,
		leaveTypes:  leaveTypeRepository,
		reconciler:  reconciler,
		auditSink:   auditSink,
		notifier:    notifier,
		policy:      policy,
		now:         time.Now,
		newRecordID: newRecordID,
	}
}

func newRecordID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// upsertOutcome is what the transaction hands back after commit.
type upsertOutcome struct {
	record  dtr.DailyTimeRecord
	changes []audit.FieldChange
	created bool
	changed bool
}

// Upsert implements dtr.DTRService.
func (s *DTRServiceImpl) Upsert(ctx context.Context, req dtr.UpsertDTRRequest) (dtr.UpsertDTRResponse, error) {
	actor, err := s.authorizer.Authorize(ctx, req.CompanyID, user.PermissionAttendanceManage)
	if err != nil {
		slog.Warn("DTR upsert denied", "company_id", req.CompanyID, "employee_id", req.EmployeeID, "error", err)
		return dtr.UpsertDTRResponse{}, err
	}

	if err := req.Validate(); err != nil {
		return dtr.UpsertDTRResponse{}, err
	}

	attendanceDate, err := time.ParseInLocation("2006-01-02", req.AttendanceDate, s.policy.Location)
	if err != nil {
		return dtr.UpsertDTRResponse{}, validator.ValidationErrors{{
			Field:   "attendance_date",
			Message: "attendance_date must be in YYYY-MM-DD format",
		}}
	}

	var outcome upsertOutcome
	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		var txErr error
		outcome, txErr = s.upsert(ctx, actor, req, attendanceDate)
		return txErr
	})
	if err != nil {
		err = classifyError(err)
		logUpsertFailure(req, err)
		return dtr.UpsertDTRResponse{}, err
	}

	message := MessageUnchanged
	switch {
	case outcome.created:
		message = MessageCreated
	case outcome.changed:
		message = MessageUpdated
	}

	if outcome.changed {
		s.notify(ctx, outcome.record)
	}

	slog.Info("DTR record saved",
		"dtr_id", outcome.record.ID,
		"employee_id", outcome.record.EmployeeID,
		"attendance_date", req.AttendanceDate,
		"created", outcome.created,
		"changed_fields", len(outcome.changes),
		"actor_id", actor.UserID,
	)

	return dtr.UpsertDTRResponse{
		Message: message,
		Created: outcome.created,
		Record:  dtr.NewDTRResponse(outcome.record),
		Changes: outcome.changes,
	}, nil
}

// upsert runs inside the transaction. Any error rolls back every write it made.
func (s *DTRServiceImpl) upsert(ctx context.Context, actor user.Actor, req dtr.UpsertDTRRequest, attendanceDate time.Time) (upsertOutcome, error) {
	emp, err := s.employees.GetByID(ctx, req.EmployeeID, req.CompanyID)
	if err != nil {
		return upsertOutcome{}, err
	}

	existing, err := s.loadExisting(ctx, req)
	if err != nil {
		return upsertOutcome{}, err
	}

	var active *leave.Transaction
	if existing != nil {
		active, err = s.reconciler.LoadActive(ctx, existing.ActiveLeaveTransactionID, existing.ID)
		if err != nil {
			return upsertOutcome{}, err
		}
	}

	status := dtr.Status(req.Status)

	var leaveType *leave.LeaveType
	fraction := dtr.DayFractionFull
	if status == dtr.StatusOnLeave {
		fraction = resolveFraction(req, existing)
		leaveType, err = s.resolveLeaveType(ctx, req, existing, active)
		if err != nil {
			return upsertOutcome{}, err
		}
		if fraction == dtr.DayFractionHalf && !leaveType.AllowHalfDay {
			return upsertOutcome{}, validator.ValidationErrors{{
				Field:   "day_fraction",
				Message: "leave type does not allow half-day leave",
			}}
		}
	}

	timeIn, timeOut, err := anchorTimes(attendanceDate, req)
	if err != nil {
		return upsertOutcome{}, err
	}

	var ws *schedule.WorkSchedule
	if emp.HasSchedule() {
		ws, err = s.schedules.GetByEmployeeID(ctx, emp.ID, req.CompanyID)
		if err != nil {
			return upsertOutcome{}, fmt.Errorf("failed to get work schedule: %w", err)
		}
	}
	window, err := scheduleService.Resolve(attendanceDate, ws)
	if err != nil {
		return upsertOutcome{}, fmt.Errorf("failed to resolve work schedule: %w", err)
	}

	input := MetricsInput{
		TimeIn:       timeIn,
		TimeOut:      timeOut,
		Schedule:     window,
		BreakMinutes: s.policy.DefaultBreakMinutes,
	}
	if ws != nil {
		input.BreakMinutes = ws.BreakMinutes
		input.GracePeriodMinutes = ws.GracePeriodMinutes
	}
	metrics := CalculateMetrics(input)

	recordID := ""
	if existing != nil {
		recordID = existing.ID
	} else if recordID, err = s.newRecordID(); err != nil {
		return upsertOutcome{}, fmt.Errorf("failed to generate DTR id: %w", err)
	}

	var desired *leave.Usage
	if leaveType != nil && leaveType.IsPaid {
		amount := fullDay
		if fraction == dtr.DayFractionHalf {
			amount = halfDay
		}
		desired = &leave.Usage{LeaveTypeID: leaveType.ID, Year: attendanceDate.Year(), Amount: amount}
	}

	reconciled, err := s.reconciler.Reconcile(ctx, leaveService.ReconcileInput{
		EmployeeID:  emp.ID,
		ReferenceID: recordID,
		Active:      active,
		Desired:     desired,
		ActorID:     actor.UserID,
		Remarks:     fmt.Sprintf("DTR %s %s", req.AttendanceDate, status),
	})
	if err != nil {
		return upsertOutcome{}, err
	}

	candidate := dtr.DailyTimeRecord{
		ID:                       recordID,
		CompanyID:                req.CompanyID,
		EmployeeID:               emp.ID,
		AttendanceDate:           attendanceDate,
		TimeIn:                   timeIn,
		TimeOut:                  timeOut,
		Status:                   status,
		DayFraction:              fraction,
		Remarks:                  req.Remarks,
		Metrics:                  metrics,
		ActiveLeaveTransactionID: reconciled.ActiveTransactionID,
		ApprovalStatus:           dtr.ApprovalStatusApproved,
	}
	if leaveType != nil {
		candidate.LeaveTypeID = &leaveType.ID
	}
	candidate.TimeInSource, candidate.TimeOutSource = timeSources(existing, timeIn, timeOut)

	// An already approved record that is saved again without any change
	// keeps its approver.
	if existing != nil && existing.ApprovalStatus == dtr.ApprovalStatusApproved {
		candidate.ApprovedBy = existing.ApprovedBy
		candidate.ApprovedAt = existing.ApprovedAt
	}
	if existing != nil && len(BuildChangeSet(existing, candidate)) == 0 {
		return upsertOutcome{record: *existing, changes: []audit.FieldChange{}}, nil
	}

	now := s.now()
	approver := actor.UserID
	candidate.ApprovedBy = &approver
	candidate.ApprovedAt = &now
	candidate.UpdatedAt = now

	changes := BuildChangeSet(existing, candidate)

	var saved dtr.DailyTimeRecord
	action := audit.ActionUpdate
	if existing == nil {
		action = audit.ActionCreate
		candidate.CreatedAt = now
		saved, err = s.records.Create(ctx, candidate)
	} else {
		candidate.CreatedAt = existing.CreatedAt
		saved, err = s.records.Update(ctx, candidate)
	}
	if err != nil {
		return upsertOutcome{}, err
	}

	if _, err := s.auditSink.Record(ctx, audit.Entry{
		CompanyID:  req.CompanyID,
		TableName:  auditTableName,
		RecordID:   saved.ID,
		Action:     action,
		ActorID:    actor.UserID,
		ReasonCode: audit.ReasonDTRManualCorrection,
		Changes:    changes,
	}); err != nil {
		return upsertOutcome{}, fmt.Errorf("failed to write audit log: %w", err)
	}

	return upsertOutcome{
		record:  saved,
		changes: changes,
		created: existing == nil,
		changed: true,
	}, nil
}

// loadExisting locks the record targeted by id or by (employee, date).
func (s *DTRServiceImpl) loadExisting(ctx context.Context, req dtr.UpsertDTRRequest) (*dtr.DailyTimeRecord, error) {
	if req.DTRID != nil {
		record, err := s.records.GetByIDForUpdate(ctx, *req.DTRID, req.CompanyID)
		if err != nil {
			return nil, err
		}
		if record.EmployeeID != req.EmployeeID {
			return nil, dtr.ErrDTRNotFound
		}
		if record.AttendanceDate.Format("2006-01-02") != req.AttendanceDate {
			return nil, validator.ValidationErrors{{
				Field:   "attendance_date",
				Message: "attendance_date cannot be changed on an existing record",
			}}
		}
		return &record, nil
	}

	record, err := s.records.GetByEmployeeAndDateForUpdate(ctx, req.EmployeeID, req.AttendanceDate)
	if err != nil {
		if errors.Is(err, dtr.ErrDTRNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// resolveLeaveType picks the leave type from the request, then the existing
// record, then the outstanding ledger usage.
func (s *DTRServiceImpl) resolveLeaveType(ctx context.Context, req dtr.UpsertDTRRequest, existing *dtr.DailyTimeRecord, active *leave.Transaction) (*leave.LeaveType, error) {
	var leaveTypeID string
	switch {
	case req.LeaveTypeID != nil:
		leaveTypeID = *req.LeaveTypeID
	case existing != nil && existing.LeaveTypeID != nil:
		leaveTypeID = *existing.LeaveTypeID
	case active != nil:
		leaveTypeID = active.LeaveTypeID
	default:
		return nil, validator.ValidationErrors{{
			Field:   "leave_type_id",
			Message: "leave_type_id is required when status is ON_LEAVE",
		}}
	}

	leaveType, err := s.leaveTypes.GetByID(ctx, leaveTypeID, req.CompanyID)
	if err != nil {
		return nil, err
	}
	return &leaveType, nil
}

func resolveFraction(req dtr.UpsertDTRRequest, existing *dtr.DailyTimeRecord) dtr.DayFraction {
	if req.DayFraction != nil {
		return req.Fraction()
	}
	if existing != nil && existing.Status == dtr.StatusOnLeave && existing.DayFraction != "" {
		return existing.DayFraction
	}
	return dtr.DayFractionFull
}

// anchorTimes places the punch clocks on the attendance date. A time-out at
// or before time-in belongs to the next day.
func anchorTimes(attendanceDate time.Time, req dtr.UpsertDTRRequest) (*time.Time, *time.Time, error) {
	if req.TimeIn == nil || req.TimeOut == nil {
		return nil, nil, nil
	}

	timeIn, err := scheduleService.AnchorClock(attendanceDate, *req.TimeIn)
	if err != nil {
		return nil, nil, validator.ValidationErrors{{Field: "time_in", Message: "time_in must be in HH:MM or HH:MM:SS format"}}
	}
	timeOut, err := scheduleService.AnchorClock(attendanceDate, *req.TimeOut)
	if err != nil {
		return nil, nil, validator.ValidationErrors{{Field: "time_out", Message: "time_out must be in HH:MM or HH:MM:SS format"}}
	}
	if !timeOut.After(timeIn) {
		timeOut = timeOut.AddDate(0, 0, 1)
	}
	return &timeIn, &timeOut, nil
}

// timeSources marks edited times as manual and keeps the source of untouched ones.
func timeSources(existing *dtr.DailyTimeRecord, timeIn, timeOut *time.Time) (*dtr.TimeSource, *dtr.TimeSource) {
	var oldIn, oldOut *time.Time
	var oldInSource, oldOutSource *dtr.TimeSource
	if existing != nil {
		oldIn, oldOut = existing.TimeIn, existing.TimeOut
		oldInSource, oldOutSource = existing.TimeInSource, existing.TimeOutSource
	}
	return sourceFor(oldIn, timeIn, oldInSource), sourceFor(oldOut, timeOut, oldOutSource)
}

func sourceFor(old, current *time.Time, oldSource *dtr.TimeSource) *dtr.TimeSource {
	if current == nil {
		return nil
	}
	if old != nil && old.Equal(*current) && oldSource != nil {
		return oldSource
	}
	manual := dtr.TimeSourceManual
	return &manual
}

func (s *DTRServiceImpl) notify(ctx context.Context, record dtr.DailyTimeRecord) {
	event := dtr.ChangeEvent{
		CompanyID:      record.CompanyID,
		EmployeeID:     record.EmployeeID,
		RecordID:       record.ID,
		AttendanceDate: record.AttendanceDate.Format("2006-01-02"),
		Scopes:         dtr.ChangeScopes,
		OccurredAt:     s.now(),
	}
	if err := s.notifier.DTRChanged(ctx, event); err != nil {
		slog.Warn("Failed to publish DTR change", "dtr_id", record.ID, "error", err)
	}
}

// classifyError keeps known failures as they are and wraps anything else as
// a retryable transaction failure.
func classifyError(err error) error {
	var validationErrs validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrs),
		errors.Is(err, user.ErrAccessDenied),
		errors.Is(err, dtr.ErrDTRNotFound),
		errors.Is(err, employee.ErrEmployeeNotFound),
		errors.Is(err, schedule.ErrWorkScheduleNotFound),
		errors.Is(err, leave.ErrLeaveTypeNotFound),
		errors.Is(err, leave.ErrInsufficientBalance),
		errors.Is(err, leave.ErrLedgerInconsistency),
		errors.Is(err, dtr.ErrTransactionFailed):
		return err
	}
	return &dtr.TransactionError{Err: err}
}

func logUpsertFailure(req dtr.UpsertDTRRequest, err error) {
	attrs := []any{
		"company_id", req.CompanyID,
		"employee_id", req.EmployeeID,
		"attendance_date", req.AttendanceDate,
		"error", err,
	}
	if errors.Is(err, leave.ErrLedgerInconsistency) || errors.Is(err, dtr.ErrTransactionFailed) {
		slog.Error("DTR upsert failed", attrs...)
		return
	}
	slog.Warn("DTR upsert rejected", attrs...)
}

// Get implements dtr.DTRService.
func (s *DTRServiceImpl) Get(ctx context.Context, companyID string, id string) (dtr.DTRResponse, error) {
	if _, err := s.authorizer.Authorize(ctx, companyID, user.PermissionAttendanceViewAll); err != nil {
		return dtr.DTRResponse{}, err
	}

	record, err := s.records.GetByID(ctx, id, companyID)
	if err != nil {
		return dtr.DTRResponse{}, err
	}

	return dtr.NewDTRResponse(record), nil
}
