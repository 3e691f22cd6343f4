package core

import "time"

// Named periods accepted by the record store filters and stats.
const (
	PeriodToday   Period = "today"
	PeriodWeek    Period = "week"
	PeriodMonth   Period = "month"
	PeriodQuarter Period = "quarter"
	PeriodYear    Period = "year"
	PeriodAll     Period = "all"
)

// DateLayout is the calendar date format of Transaction.Date.
const DateLayout = "2006-01-02"

// Period names a window ending now. Any unknown name means all time.
type Period string

// DateRange is an inclusive time window.
type DateRange struct {
	Start time.Time `json:"start" yaml:"start"`
	End   time.Time `json:"end" yaml:"end"`
}

// Contains reports whether t falls inside r, bounds included.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// IsZero reports whether r is the empty range.
func (r DateRange) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// Range resolves p to [start, now]. Month arithmetic normalizes overflow the
// same way time.AddDate does: March 31 minus one month is March 3 (or 2 in a
// leap year).
func (p Period) Range(now time.Time) DateRange {
	var start time.Time
	switch p {
	case PeriodToday:
		y, m, d := now.Date()
		start = time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	case PeriodWeek:
		start = now.AddDate(0, 0, -7)
	case PeriodMonth:
		start = now.AddDate(0, -1, 0)
	case PeriodQuarter:
		start = now.AddDate(0, -3, 0)
	case PeriodYear:
		start = now.AddDate(-1, 0, 0)
	default:
		start = now.AddDate(2000-now.Year(), 0, 0)
	}
	return DateRange{Start: start, End: now}
}

// Previous returns the window of the same length immediately before the
// window p resolves to at now. All time has no previous window.
func (p Period) Previous(now time.Time) DateRange {
	current := p.Range(now)
	switch p {
	case PeriodToday:
		return DateRange{Start: current.Start.AddDate(0, 0, -1), End: current.Start.Add(-time.Nanosecond)}
	case PeriodWeek, PeriodMonth, PeriodQuarter, PeriodYear:
		prev := p.Range(current.Start)
		return DateRange{Start: prev.Start, End: current.Start.Add(-time.Nanosecond)}
	default:
		return DateRange{}
	}
}

// ParseDate parses a YYYY-MM-DD date at midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(DateLayout, s, loc)
}
