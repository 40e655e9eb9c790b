package calendar

import "strings"

// =============================================================================
// PERIOD - An inclusive range of days
// =============================================================================

// Period is the inclusive day range [Start, End].
//
// Examples:
//   - A payroll month: 2024-01-01 .. 2024-01-31
//   - A payroll week:  2024-01-01 .. 2024-01-07 (Monday .. Sunday)
type Period struct {
	Start Date
	End   Date
}

// WeekOf returns the Monday..Sunday week containing d.
func WeekOf(d Date) Period {
	start := d.WeekStart()
	return Period{Start: start, End: start.AddDays(6)}
}

// Contains returns true if d is within [Start, End].
func (p Period) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// Days returns all days in the period.
func (p Period) Days() []Date {
	var days []Date
	for current := p.Start; current.BeforeOrEqual(p.End); current = current.AddDays(1) {
		days = append(days, current)
	}
	return days
}

// WeekStarts returns the Monday of every week that overlaps the period, in order.
// A month that starts on a Wednesday still yields the Monday before it.
func (p Period) WeekStarts() []Date {
	var weeks []Date
	for current := p.Start.WeekStart(); current.BeforeOrEqual(p.End); current = current.AddDays(7) {
		weeks = append(weeks, current)
	}
	return weeks
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// =============================================================================
// WEEKDAY SET - Which days of a Monday-first week are flagged
// =============================================================================

// WeekdaySet is a bit set of Monday-first weekday indices (0=Monday .. 6=Sunday).
// The scheduling layer stores official holidays per week in this shape.
type WeekdaySet uint8

func NewWeekdaySet(indices ...int) WeekdaySet {
	var s WeekdaySet
	for _, i := range indices {
		s = s.With(i)
	}
	return s
}

// With returns a copy of the set with index i added. Out-of-range indices are ignored.
func (s WeekdaySet) With(i int) WeekdaySet {
	if i < 0 || i > 6 {
		return s
	}
	return s | 1<<uint(i)
}

func (s WeekdaySet) Has(i int) bool {
	return i >= 0 && i <= 6 && s&(1<<uint(i)) != 0
}

func (s WeekdaySet) Indices() []int {
	var out []int
	for i := 0; i < 7; i++ {
		if s.Has(i) {
			out = append(out, i)
		}
	}
	return out
}

func (s WeekdaySet) Len() int { return len(s.Indices()) }

var weekdayAbbrev = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

func (s WeekdaySet) String() string {
	var names []string
	for _, i := range s.Indices() {
		names = append(names, weekdayAbbrev[i])
	}
	return "{" + strings.Join(names, ",") + "}"
}
