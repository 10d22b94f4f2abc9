package schedule

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/dtr-backend-go/internal/domain/schedule"
	"github.com/cmlabs-hris/dtr-backend-go/internal/pkg/validator"
)

// Resolve returns the scheduled working window for date. A nil schedule or a
// non-working weekday yields an unscheduled window. Times are anchored in
// date's location and an end at or before the start rolls to the next day.
func Resolve(date time.Time, ws *schedule.WorkSchedule) (schedule.Window, error) {
	if ws == nil {
		return schedule.Window{}, nil
	}

	rule := ws.Rule(date.Weekday())

	var start, end string
	switch rule.Kind {
	case schedule.DayKindNotWorking:
		return schedule.Window{}, nil
	case schedule.DayKindExplicit:
		start, end = rule.Start, rule.End
	case schedule.DayKindUseBase:
		start, end = ws.BaseStart, ws.BaseEnd
	default:
		return schedule.Window{}, fmt.Errorf("%w: unknown day kind %q on %s", schedule.ErrInvalidScheduleTime, rule.Kind, date.Weekday())
	}

	in, err := AnchorClock(date, start)
	if err != nil {
		return schedule.Window{}, err
	}
	out, err := AnchorClock(date, end)
	if err != nil {
		return schedule.Window{}, err
	}
	if !out.After(in) {
		out = out.AddDate(0, 0, 1)
	}

	return schedule.Window{In: in, Out: out, Scheduled: true}, nil
}

// AnchorClock places an HH:MM[:SS] clock value on the calendar day of date.
func AnchorClock(date time.Time, clock string) (time.Time, error) {
	c, ok := validator.ParseClock(clock)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %q", schedule.ErrInvalidScheduleTime, clock)
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, c.Hour(), c.Minute(), c.Second(), 0, date.Location()), nil
}
