package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/dtr-backend-go/internal/domain/dtr"
	"github.com/cmlabs-hris/dtr-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolationCode = "23505"

const dtrColumns = `
	id, company_id, employee_id, attendance_date,
	time_in, time_out, time_in_source, time_out_source,
	status, leave_type_id, day_fraction, remarks,
	hours_worked, tardiness_minutes, undertime_minutes, overtime_hours, night_diff_hours,
	active_leave_transaction_id, approval_status, approved_by, approved_at,
	created_at, updated_at`

type dtrRepositoryImpl struct {
	db *database.DB
}

func NewDTRRepository(db *database.DB) dtr.DTRRepository {
	return &dtrRepositoryImpl{db: db}
}

// GetByID implements dtr.DTRRepository.
func (r *dtrRepositoryImpl) GetByID(ctx context.Context, id string, companyID string) (dtr.DailyTimeRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT` + dtrColumns + `
		FROM daily_time_records
		WHERE id = $1 AND company_id = $2
	`

	record, err := scanDTR(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dtr.DailyTimeRecord{}, dtr.ErrDTRNotFound
		}
		return dtr.DailyTimeRecord{}, fmt.Errorf("failed to get DTR record with id %s: %w", id, err)
	}

	return record, nil
}

// GetByIDForUpdate implements dtr.DTRRepository.
func (r *dtrRepositoryImpl) GetByIDForUpdate(ctx context.Context, id string, companyID string) (dtr.DailyTimeRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT` + dtrColumns + `
		FROM daily_time_records
		WHERE id = $1 AND company_id = $2
		FOR UPDATE
	`

	record, err := scanDTR(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dtr.DailyTimeRecord{}, dtr.ErrDTRNotFound
		}
		return dtr.DailyTimeRecord{}, fmt.Errorf("failed to lock DTR record with id %s: %w", id, err)
	}

	return record, nil
}

// GetByEmployeeAndDateForUpdate implements dtr.DTRRepository.
func (r *dtrRepositoryImpl) GetByEmployeeAndDateForUpdate(ctx context.Context, employeeID string, date string) (dtr.DailyTimeRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT` + dtrColumns + `
		FROM daily_time_records
		WHERE employee_id = $1 AND attendance_date = $2::date
		FOR UPDATE
	`

	record, err := scanDTR(q.QueryRow(ctx, query, employeeID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dtr.DailyTimeRecord{}, dtr.ErrDTRNotFound
		}
		return dtr.DailyTimeRecord{}, fmt.Errorf("failed to lock DTR record for employee %s on %s: %w", employeeID, date, err)
	}

	return record, nil
}

// Create implements dtr.DTRRepository.
func (r *dtrRepositoryImpl) Create(ctx context.Context, record dtr.DailyTimeRecord) (dtr.DailyTimeRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO daily_time_records (
			id, company_id, employee_id, attendance_date,
			time_in, time_out, time_in_source, time_out_source,
			status, leave_type_id, day_fraction, remarks,
			hours_worked, tardiness_minutes, undertime_minutes, overtime_hours, night_diff_hours,
			active_leave_transaction_id, approval_status, approved_by, approved_at,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4::date,
			$5, $6, $7, $8,
			$9, $10, $11, $12,
			$13, $14, $15, $16, $17,
			$18, $19, $20, $21,
			$22, $23
		)
		RETURNING` + dtrColumns

	created, err := scanDTR(q.QueryRow(ctx, query,
		record.ID, record.CompanyID, record.EmployeeID, record.AttendanceDate.Format("2006-01-02"),
		record.TimeIn, record.TimeOut, sourceValue(record.TimeInSource), sourceValue(record.TimeOutSource),
		string(record.Status), record.LeaveTypeID, string(record.DayFraction), record.Remarks,
		record.HoursWorked, record.TardinessMinutes, record.UndertimeMinutes, record.OvertimeHours, record.NightDiffHours,
		record.ActiveLeaveTransactionID, string(record.ApprovalStatus), record.ApprovedBy, record.ApprovedAt,
		record.CreatedAt, record.UpdatedAt,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return dtr.DailyTimeRecord{}, dtr.ErrDuplicateRecord
		}
		return dtr.DailyTimeRecord{}, fmt.Errorf("failed to create DTR record: %w", err)
	}

	return created, nil
}

// Update implements dtr.DTRRepository.
func (r *dtrRepositoryImpl) Update(ctx context.Context, record dtr.DailyTimeRecord) (dtr.DailyTimeRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE daily_time_records SET
			time_in = $1, time_out = $2, time_in_source = $3, time_out_source = $4,
			status = $5, leave_type_id = $6, day_fraction = $7, remarks = $8,
			hours_worked = $9, tardiness_minutes = $10, undertime_minutes = $11,
			overtime_hours = $12, night_diff_hours = $13,
			active_leave_transaction_id = $14, approval_status = $15,
			approved_by = $16, approved_at = $17, updated_at = $18
		WHERE id = $19 AND company_id = $20
		RETURNING` + dtrColumns

	updated, err := scanDTR(q.QueryRow(ctx, query,
		record.TimeIn, record.TimeOut, sourceValue(record.TimeInSource), sourceValue(record.TimeOutSource),
		string(record.Status), record.LeaveTypeID, string(record.DayFraction), record.Remarks,
		record.HoursWorked, record.TardinessMinutes, record.UndertimeMinutes,
		record.OvertimeHours, record.NightDiffHours,
		record.ActiveLeaveTransactionID, string(record.ApprovalStatus),
		record.ApprovedBy, record.ApprovedAt, record.UpdatedAt,
		record.ID, record.CompanyID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dtr.DailyTimeRecord{}, dtr.ErrDTRNotFound
		}
		return dtr.DailyTimeRecord{}, fmt.Errorf("failed to update DTR record with id %s: %w", record.ID, err)
	}

	return updated, nil
}

func scanDTR(row pgx.Row) (dtr.DailyTimeRecord, error) {
	var (
		record                      dtr.DailyTimeRecord
		timeInSource, timeOutSource *string
		status, dayFraction         string
		approvalStatus              string
	)

	err := row.Scan(
		&record.ID, &record.CompanyID, &record.EmployeeID, &record.AttendanceDate,
		&record.TimeIn, &record.TimeOut, &timeInSource, &timeOutSource,
		&status, &record.LeaveTypeID, &dayFraction, &record.Remarks,
		&record.HoursWorked, &record.TardinessMinutes, &record.UndertimeMinutes, &record.OvertimeHours, &record.NightDiffHours,
		&record.ActiveLeaveTransactionID, &approvalStatus, &record.ApprovedBy, &record.ApprovedAt,
		&record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		return dtr.DailyTimeRecord{}, err
	}

	record.Status = dtr.Status(status)
	record.DayFraction = dtr.DayFraction(dayFraction)
	record.ApprovalStatus = dtr.ApprovalStatus(approvalStatus)
	record.TimeInSource = sourcePtr(timeInSource)
	record.TimeOutSource = sourcePtr(timeOutSource)

	return record, nil
}

func sourceValue(source *dtr.TimeSource) *string {
	if source == nil {
		return nil
	}
	s := string(*source)
	return &s
}

func sourcePtr(s *string) *dtr.TimeSource {
	if s == nil {
		return nil
	}
	source := dtr.TimeSource(*s)
	return &source
}
