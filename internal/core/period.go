package core

import "time"

// Period selects the date window the dashboard aggregates over.
type Period string

const (
	PeriodThisMonth Period = "this_month"
	PeriodLastMonth Period = "last_month"
	PeriodThisYear  Period = "this_year"
	PeriodCustom    Period = "custom"
)

// DateRange is an inclusive date window. A zero bound leaves that side
// open; a fully zero range passes every transaction.
type DateRange struct {
	Start Date
	End   Date
}

// Resolve turns a period selector into a concrete range relative to now.
// Custom periods use the given bounds, either of which may be zero.
func (p Period) Resolve(now time.Time, start, end Date) DateRange {
	year, month, _ := now.Date()
	switch p {
	case PeriodThisMonth:
		first := NewDate(year, int(month), 1)
		last := Date{Time: first.AddDate(0, 1, -1)}
		return DateRange{Start: first, End: last}
	case PeriodLastMonth:
		first := NewDate(year, int(month), 1)
		prevFirst := Date{Time: first.AddDate(0, -1, 0)}
		prevLast := Date{Time: first.AddDate(0, 0, -1)}
		return DateRange{Start: prevFirst, End: prevLast}
	case PeriodThisYear:
		return DateRange{Start: NewDate(year, 1, 1), End: NewDate(year, 12, 31)}
	case PeriodCustom:
		return DateRange{Start: start, End: end}
	default:
		// Unknown selectors behave like an unbounded custom range.
		return DateRange{}
	}
}

// ParsePeriod maps a request value onto a known selector, defaulting to
// the current month.
func ParsePeriod(s string) Period {
	switch Period(s) {
	case PeriodThisMonth, PeriodLastMonth, PeriodThisYear, PeriodCustom:
		return Period(s)
	}
	return PeriodThisMonth
}

// Contains reports whether d falls inside the range, comparing calendar
// days only (midnight-to-midnight inclusive).
func (r DateRange) Contains(d Date) bool {
	day := DateOf(d.Time).Time
	if !r.Start.IsZero() && day.Before(DateOf(r.Start.Time).Time) {
		return false
	}
	if !r.End.IsZero() && day.After(DateOf(r.End.Time).Time) {
		return false
	}
	return true
}
