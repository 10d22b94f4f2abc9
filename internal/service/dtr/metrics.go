package dtr

import (
	"time"

	"github.com/cmlabs-hris/dtr-backend-go/internal/domain/dtr"
	"github.com/cmlabs-hris/dtr-backend-go/internal/domain/schedule"
	"github.com/shopspring/decimal"
)

// Night differential window, anchored to each calendar day and ending the
// next morning.
const (
	nightStartHour = 22
	nightEndHour   = 6
)

type MetricsInput struct {
	TimeIn             *time.Time
	TimeOut            *time.Time
	Schedule           schedule.Window
	BreakMinutes       int
	GracePeriodMinutes int
}

// CalculateMetrics derives worked hours, tardiness, undertime, overtime and
// night differential. Everything is zero unless both times are present.
// Tardiness, undertime and overtime need a scheduled window.
func CalculateMetrics(in MetricsInput) dtr.Metrics {
	m := dtr.Metrics{
		HoursWorked:    decimal.Zero,
		OvertimeHours:  decimal.Zero,
		NightDiffHours: decimal.Zero,
	}
	if in.TimeIn == nil || in.TimeOut == nil {
		return m
	}
	timeIn, timeOut := *in.TimeIn, *in.TimeOut
	if !timeOut.After(timeIn) {
		return m
	}

	worked := timeOut.Sub(timeIn) - time.Duration(in.BreakMinutes)*time.Minute
	if worked > 0 {
		m.HoursWorked = toHours(worked)
	}
	m.NightDiffHours = toHours(nightOverlap(timeIn, timeOut))

	if !in.Schedule.Scheduled {
		return m
	}

	if late := toMinutes(timeIn.Sub(in.Schedule.In)) - in.GracePeriodMinutes; late > 0 {
		m.TardinessMinutes = late
	}
	if early := toMinutes(in.Schedule.Out.Sub(timeOut)); early > 0 {
		m.UndertimeMinutes = early
	}
	if over := timeOut.Sub(in.Schedule.Out); over > 0 {
		m.OvertimeHours = toHours(over)
	}

	return m
}

// nightOverlap sums the overlap of [in, out) with every night window that can
// touch it, starting with the one that opens the evening before in.
func nightOverlap(in, out time.Time) time.Duration {
	loc := in.Location()
	y, mo, d := in.Date()
	day := time.Date(y, mo, d, 0, 0, 0, 0, loc).AddDate(0, 0, -1)

	var total time.Duration
	for !day.After(out) {
		dy, dm, dd := day.Date()
		start := time.Date(dy, dm, dd, nightStartHour, 0, 0, 0, loc)
		end := time.Date(dy, dm, dd+1, nightEndHour, 0, 0, 0, loc)
		total += overlap(in, out, start, end)
		day = day.AddDate(0, 0, 1)
	}
	return total
}

func overlap(aStart, aEnd, bStart, bEnd time.Time) time.Duration {
	start := aStart
	if bStart.After(start) {
		start = bStart
	}
	end := aEnd
	if bEnd.Before(end) {
		end = bEnd
	}
	if !end.After(start) {
		return 0
	}
	return end.Sub(start)
}

var (
	secondsPerHour   = decimal.NewFromInt(3600)
	secondsPerMinute = decimal.NewFromInt(60)
)

// toHours converts to hours rounded half-up to two places.
func toHours(d time.Duration) decimal.Decimal {
	return decimal.NewFromInt(int64(d / time.Second)).Div(secondsPerHour).Round(2)
}

// toMinutes converts to whole minutes rounded half away from zero.
func toMinutes(d time.Duration) int {
	return int(decimal.NewFromInt(int64(d / time.Second)).Div(secondsPerMinute).Round(0).IntPart())
}
