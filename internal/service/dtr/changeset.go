package dtr

import (
	"strconv"
	"time"

	"github.com/cmlabs-hris/dtr-backend-go/internal/domain/audit"
	"github.com/cmlabs-hris/dtr-backend-go/internal/domain/dtr"
	"github.com/shopspring/decimal"
)

type fieldExtractor struct {
	name  string
	value func(r dtr.DailyTimeRecord) *string
}

// auditedFields is the order in which changes are reported.
var auditedFields = []fieldExtractor{
	{"time_in", func(r dtr.DailyTimeRecord) *string { return timeValue(r.TimeIn) }},
	{"time_out", func(r dtr.DailyTimeRecord) *string { return timeValue(r.TimeOut) }},
	{"time_in_source", func(r dtr.DailyTimeRecord) *string { return (*string)(r.TimeInSource) }},
	{"time_out_source", func(r dtr.DailyTimeRecord) *string { return (*string)(r.TimeOutSource) }},
	{"status", func(r dtr.DailyTimeRecord) *string { return stringValue(string(r.Status)) }},
	{"leave_type_id", func(r dtr.DailyTimeRecord) *string { return r.LeaveTypeID }},
	{"day_fraction", func(r dtr.DailyTimeRecord) *string { return stringValue(string(r.DayFraction)) }},
	{"remarks", func(r dtr.DailyTimeRecord) *string { return r.Remarks }},
	{"hours_worked", func(r dtr.DailyTimeRecord) *string { return decimalValue(r.HoursWorked) }},
	{"tardiness_minutes", func(r dtr.DailyTimeRecord) *string { return intValue(r.TardinessMinutes) }},
	{"undertime_minutes", func(r dtr.DailyTimeRecord) *string { return intValue(r.UndertimeMinutes) }},
	{"overtime_hours", func(r dtr.DailyTimeRecord) *string { return decimalValue(r.OvertimeHours) }},
	{"night_diff_hours", func(r dtr.DailyTimeRecord) *string { return decimalValue(r.NightDiffHours) }},
	{"active_leave_transaction_id", func(r dtr.DailyTimeRecord) *string { return r.ActiveLeaveTransactionID }},
	{"approval_status", func(r dtr.DailyTimeRecord) *string { return stringValue(string(r.ApprovalStatus)) }},
	{"approved_by", func(r dtr.DailyTimeRecord) *string { return r.ApprovedBy }},
}

// BuildChangeSet lists the audited fields whose value differs between
// before and after. A nil before treats every field as previously null.
func BuildChangeSet(before *dtr.DailyTimeRecord, after dtr.DailyTimeRecord) []audit.FieldChange {
	changes := make([]audit.FieldChange, 0)
	for _, f := range auditedFields {
		var oldValue *string
		if before != nil {
			oldValue = f.value(*before)
		}
		newValue := f.value(after)
		if equalValues(oldValue, newValue) {
			continue
		}
		changes = append(changes, audit.FieldChange{
			Field: f.name,
			Old:   oldValue,
			New:   newValue,
		})
	}
	return changes
}

func equalValues(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func stringValue(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func timeValue(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func decimalValue(d decimal.Decimal) *string {
	s := d.StringFixed(2)
	return &s
}

func intValue(i int) *string {
	s := strconv.Itoa(i)
	return &s
}
