package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/dtr-backend-go/internal/domain/schedule"
	"github.com/cmlabs-hris/dtr-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type workScheduleRepositoryImpl struct {
	db *database.DB
}

func NewWorkScheduleRepository(db *database.DB) schedule.WorkScheduleRepository {
	return &workScheduleRepositoryImpl{db: db}
}

// GetByID implements schedule.WorkScheduleRepository.
func (w *workScheduleRepositoryImpl) GetByID(ctx context.Context, id string, companyID string) (schedule.WorkSchedule, error) {
	q := GetQuerier(ctx, w.db)

	query := `
		SELECT id, company_id, name,
			to_char(base_start, 'HH24:MI'), to_char(base_end, 'HH24:MI'),
			break_minutes, grace_period_minutes, days,
			created_at, updated_at, deleted_at
		FROM work_schedules
		WHERE id = $1 AND company_id = $2 AND deleted_at IS NULL
	`

	ws, err := scanWorkSchedule(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return schedule.WorkSchedule{}, schedule.ErrWorkScheduleNotFound
		}
		return schedule.WorkSchedule{}, fmt.Errorf("failed to get work schedule with id %s: %w", id, err)
	}

	return ws, nil
}

// GetByEmployeeID implements schedule.WorkScheduleRepository.
func (w *workScheduleRepositoryImpl) GetByEmployeeID(ctx context.Context, employeeID string, companyID string) (*schedule.WorkSchedule, error) {
	q := GetQuerier(ctx, w.db)

	query := `
		SELECT ws.id, ws.company_id, ws.name,
			to_char(ws.base_start, 'HH24:MI'), to_char(ws.base_end, 'HH24:MI'),
			ws.break_minutes, ws.grace_period_minutes, ws.days,
			ws.created_at, ws.updated_at, ws.deleted_at
		FROM employees e
		JOIN work_schedules ws ON ws.id = e.work_schedule_id
		WHERE e.id = $1 AND e.company_id = $2 AND ws.deleted_at IS NULL
	`

	ws, err := scanWorkSchedule(q.QueryRow(ctx, query, employeeID, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get work schedule for employee %s: %w", employeeID, err)
	}

	return &ws, nil
}

// Save implements schedule.WorkScheduleRepository.
func (w *workScheduleRepositoryImpl) Save(ctx context.Context, workSchedule schedule.WorkSchedule) (schedule.WorkSchedule, error) {
	if err := workSchedule.Validate(); err != nil {
		return schedule.WorkSchedule{}, err
	}

	days, err := json.Marshal(workSchedule.Days)
	if err != nil {
		return schedule.WorkSchedule{}, fmt.Errorf("failed to encode schedule days: %w", err)
	}

	q := GetQuerier(ctx, w.db)

	if workSchedule.ID == "" {
		query := `
			INSERT INTO work_schedules (
				id, company_id, name, base_start, base_end,
				break_minutes, grace_period_minutes, days, created_at, updated_at
			) VALUES (
				uuidv7(), $1, $2, $3::time, $4::time, $5, $6, $7, NOW(), NOW()
			) RETURNING id, created_at, updated_at
		`
		err = q.QueryRow(ctx, query,
			workSchedule.CompanyID, workSchedule.Name, workSchedule.BaseStart, workSchedule.BaseEnd,
			workSchedule.BreakMinutes, workSchedule.GracePeriodMinutes, days,
		).Scan(&workSchedule.ID, &workSchedule.CreatedAt, &workSchedule.UpdatedAt)
		if err != nil {
			return schedule.WorkSchedule{}, fmt.Errorf("failed to create work schedule: %w", err)
		}
		return workSchedule, nil
	}

	query := `
		UPDATE work_schedules SET
			name = $1, base_start = $2::time, base_end = $3::time,
			break_minutes = $4, grace_period_minutes = $5, days = $6, updated_at = NOW()
		WHERE id = $7 AND company_id = $8 AND deleted_at IS NULL
		RETURNING created_at, updated_at
	`
	err = q.QueryRow(ctx, query,
		workSchedule.Name, workSchedule.BaseStart, workSchedule.BaseEnd,
		workSchedule.BreakMinutes, workSchedule.GracePeriodMinutes, days,
		workSchedule.ID, workSchedule.CompanyID,
	).Scan(&workSchedule.CreatedAt, &workSchedule.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return schedule.WorkSchedule{}, schedule.ErrWorkScheduleNotFound
		}
		return schedule.WorkSchedule{}, fmt.Errorf("failed to update work schedule with id %s: %w", workSchedule.ID, err)
	}

	return workSchedule, nil
}

func scanWorkSchedule(row pgx.Row) (schedule.WorkSchedule, error) {
	var ws schedule.WorkSchedule
	var daysJSON []byte

	err := row.Scan(
		&ws.ID, &ws.CompanyID, &ws.Name,
		&ws.BaseStart, &ws.BaseEnd,
		&ws.BreakMinutes, &ws.GracePeriodMinutes, &daysJSON,
		&ws.CreatedAt, &ws.UpdatedAt, &ws.DeletedAt,
	)
	if err != nil {
		return schedule.WorkSchedule{}, err
	}

	if len(daysJSON) > 0 {
		if err := json.Unmarshal(daysJSON, &ws.Days); err != nil {
			return schedule.WorkSchedule{}, fmt.Errorf("failed to decode days of schedule %s: %w", ws.ID, err)
		}
	}

	return ws, nil
}
