package schedule

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/dtr-backend-go/internal/pkg/validator"
)

// DayKind tags how a weekday is scheduled.
type DayKind string

const (
	DayKindUseBase    DayKind = "USE_BASE"
	DayKindNotWorking DayKind = "NOT_WORKING"
	DayKindExplicit   DayKind = "EXPLICIT"
)

var DayKindValues = []string{
	string(DayKindUseBase),
	string(DayKindNotWorking),
	string(DayKindExplicit),
}

// DayRule is the override for one weekday. Start and End are only
// meaningful for DayKindExplicit. The zero value behaves as DayKindUseBase.
type DayRule struct {
	Kind  DayKind `json:"kind"`
	Start string  `json:"start,omitempty"` // HH:MM
	End   string  `json:"end,omitempty"`   // HH:MM
}

// WeekRules holds one rule per weekday, indexed by time.Weekday (Sunday = 0).
type WeekRules [7]DayRule

type WorkSchedule struct {
	ID                 string
	CompanyID          string
	Name               string
	BaseStart          string // HH:MM
	BaseEnd            string // HH:MM
	BreakMinutes       int
	GracePeriodMinutes int
	Days               WeekRules
	CreatedAt          time.Time
	UpdatedAt          time.Time
	DeletedAt          *time.Time
}

// Rule returns the rule for the given weekday.
func (w WorkSchedule) Rule(day time.Weekday) DayRule {
	rule := w.Days[day]
	if rule.Kind == "" {
		rule.Kind = DayKindUseBase
	}
	return rule
}

// Validate checks the schedule before it is written. Rules read back from
// storage are trusted.
func (w WorkSchedule) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(w.CompanyID) {
		errs = append(errs, validator.ValidationError{
			Field:   "company_id",
			Message: "company_id is required",
		})
	}

	if validator.IsEmpty(w.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}

	if !validator.IsValidClock(w.BaseStart) {
		errs = append(errs, validator.ValidationError{
			Field:   "base_start",
			Message: "base_start must be in HH:MM format",
		})
	}

	if !validator.IsValidClock(w.BaseEnd) {
		errs = append(errs, validator.ValidationError{
			Field:   "base_end",
			Message: "base_end must be in HH:MM format",
		})
	}

	if w.BreakMinutes < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "break_minutes",
			Message: "break_minutes must not be negative",
		})
	}

	if w.GracePeriodMinutes < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "grace_period_minutes",
			Message: "grace_period_minutes must not be negative",
		})
	}

	for i, rule := range w.Days {
		field := fmt.Sprintf("days.%s", time.Weekday(i))
		if rule.Kind == "" {
			continue
		}
		if !validator.IsInSlice(string(rule.Kind), DayKindValues) {
			errs = append(errs, validator.ValidationError{
				Field:   field,
				Message: "kind must be one of: USE_BASE, NOT_WORKING, EXPLICIT",
			})
			continue
		}
		if rule.Kind != DayKindExplicit {
			if rule.Start != "" || rule.End != "" {
				errs = append(errs, validator.ValidationError{
					Field:   field,
					Message: "start and end are only allowed for EXPLICIT days",
				})
			}
			continue
		}
		if !validator.IsValidClock(rule.Start) || !validator.IsValidClock(rule.End) {
			errs = append(errs, validator.ValidationError{
				Field:   field,
				Message: "EXPLICIT days require start and end in HH:MM format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Window is the scheduled working interval for one attendance date.
// Scheduled is false on rest days and for employees without a schedule.
type Window struct {
	In        time.Time
	Out       time.Time
	Scheduled bool
}
