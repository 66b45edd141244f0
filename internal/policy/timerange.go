package policy

import (
	"fmt"
	"strings"
	"time"
)

// TimeRange restricts a rule to a time window. It is implemented by
// AbsoluteTimeRange and PeriodicTimeRange only.
type TimeRange interface {
	fmt.Stringer
	fmt.GoStringer
	timeRange()
}

// NewTimeRange exists for callers building a range generically; a time
// range has to be one of the two variants, so it always fails.
func NewTimeRange() (TimeRange, error) {
	return nil, ErrAbstractTimeRange
}

// AbsoluteTimeRange spans two points in time.
type AbsoluteTimeRange struct {
	start time.Time
	stop  time.Time
}

func NewAbsoluteTimeRange(start, stop time.Time) (AbsoluteTimeRange, error) {
	if start.After(stop) {
		return AbsoluteTimeRange{}, fmt.Errorf("%w: stop date %s before start date %s",
			ErrOrdering, stop.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	return AbsoluteTimeRange{start: start, stop: stop}, nil
}

func (AbsoluteTimeRange) timeRange() {}

func (r AbsoluteTimeRange) Start() time.Time { return r.start }
func (r AbsoluteTimeRange) Stop() time.Time  { return r.stop }

func (r AbsoluteTimeRange) String() string {
	return fmt.Sprintf("from %s to %s", r.start.Format("2006-01-02 15:04"), r.stop.Format("2006-01-02 15:04"))
}

func (r AbsoluteTimeRange) GoString() string {
	return fmt.Sprintf("<AbsoluteTimeRange %s %s>", r.start.Format("2006-01-02T15:04"), r.stop.Format("2006-01-02T15:04"))
}

// TimeOfDay is an offset from midnight.
type TimeOfDay time.Duration

// Clock builds a TimeOfDay from hours, minutes and seconds.
func Clock(hour, minute, second int) TimeOfDay {
	return TimeOfDay(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute + time.Duration(second)*time.Second)
}

func (t TimeOfDay) Hour() int   { return int(time.Duration(t) / time.Hour) }
func (t TimeOfDay) Minute() int { return int(time.Duration(t)%time.Hour) / int(time.Minute) }
func (t TimeOfDay) Second() int { return int(time.Duration(t)%time.Minute) / int(time.Second) }

// String renders HH:MM; seconds and below are truncated.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// Weekdays selects days of the week, indexed by time.Weekday (Sunday first).
type Weekdays [7]bool

// EveryDay selects all seven days.
var EveryDay = Weekdays{true, true, true, true, true, true, true}

// Days builds a selection from the given days.
func Days(days ...time.Weekday) Weekdays {
	var w Weekdays
	for _, d := range days {
		w[d] = true
	}
	return w
}

func (w Weekdays) Any() bool {
	for _, d := range w {
		if d {
			return true
		}
	}
	return false
}

func (w Weekdays) All() bool {
	for _, d := range w {
		if !d {
			return false
		}
	}
	return true
}

// Selected returns the selected days in Sunday to Saturday order.
func (w Weekdays) Selected() []time.Weekday {
	var days []time.Weekday
	for i, d := range w {
		if d {
			days = append(days, time.Weekday(i))
		}
	}
	return days
}

// PeriodicTimeRange repeats between two times of day on selected weekdays.
type PeriodicTimeRange struct {
	start    TimeOfDay
	stop     TimeOfDay
	weekdays Weekdays
}

func NewPeriodicTimeRange(start, stop TimeOfDay, weekdays Weekdays) (PeriodicTimeRange, error) {
	if start > stop {
		return PeriodicTimeRange{}, fmt.Errorf("%w: stop time %s before start time %s", ErrOrdering, stop, start)
	}
	if !weekdays.Any() {
		return PeriodicTimeRange{}, ErrNoWeekday
	}
	return PeriodicTimeRange{start: start, stop: stop, weekdays: weekdays}, nil
}

func (PeriodicTimeRange) timeRange() {}

func (r PeriodicTimeRange) Start() TimeOfDay   { return r.start }
func (r PeriodicTimeRange) Stop() TimeOfDay    { return r.stop }
func (r PeriodicTimeRange) Weekdays() Weekdays { return r.weekdays }

func (r PeriodicTimeRange) String() string {
	if r.weekdays.All() {
		return fmt.Sprintf("daily from %s to %s", r.start, r.stop)
	}

	var days []string
	for _, d := range r.weekdays.Selected() {
		days = append(days, strings.ToLower(d.String()[:3]))
	}
	return fmt.Sprintf("from %s to %s on %s", r.start, r.stop, strings.Join(days, ", "))
}

func (r PeriodicTimeRange) GoString() string {
	return fmt.Sprintf("<PeriodicTimeRange %s %s %v>", r.start, r.stop, r.weekdays)
}
