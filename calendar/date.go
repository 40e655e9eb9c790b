/*
Package calendar provides the date arithmetic the payroll engine is built on.

PURPOSE:
  Payroll is computed per calendar day, grouped into Monday-first weeks and
  rolled up into calendar months. This package owns those three notions and
  the official-holiday calendar, so the engine never touches time zones or
  wall-clock time.

KEY CONCEPTS IN THIS FILE (date.go):
  - Date: A calendar day with no time-of-day component (always UTC midnight)
  - Month: A calendar month key ("2024-01")
  - Weekday index: 0=Monday .. 6=Sunday, the indexing used by week holiday sets

DESIGN PRINCIPLES:
  1. Value types: Date and Month are comparable and safe to use as map keys
  2. ISO strings at the edges: "2006-01-02" for days, "2006-01" for months
  3. No local time: every Date is normalized to UTC midnight

SEE ALSO:
  - period.go: Period and week/month expansion
  - holidays.go: Official holiday calendar
*/
package calendar

import (
	"errors"
	"fmt"
	"time"
)

const (
	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"
)

var (
	// ErrInvalidDate is returned when a day key is not a valid "YYYY-MM-DD" date.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidMonth is returned when a month key is not a valid "YYYY-MM" month.
	ErrInvalidMonth = errors.New("invalid month")
)

// =============================================================================
// DATE - A calendar day
// =============================================================================

// Date is a calendar day. The zero value is not a valid day; use IsZero to check.
type Date struct {
	t time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a time.Time to its calendar day in the time's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a strict "YYYY-MM-DD" key.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{t: t}, nil
}

// MustParseDate is ParseDate for literals in tests and fixtures.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func Today() Date { return DateOf(time.Now()) }

// Comparison
func (d Date) Before(o Date) bool        { return d.t.Before(o.t) }
func (d Date) After(o Date) bool         { return d.t.After(o.t) }
func (d Date) Equal(o Date) bool         { return d.t.Equal(o.t) }
func (d Date) BeforeOrEqual(o Date) bool { return !d.t.After(o.t) }
func (d Date) AfterOrEqual(o Date) bool  { return !d.t.Before(o.t) }

// Compare returns -1, 0 or +1, for use with slices.SortFunc.
func (d Date) Compare(o Date) int { return d.t.Compare(o.t) }

// Arithmetic
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

// DaysUntil returns the number of days from d to o (negative when o is earlier).
func (d Date) DaysUntil(o Date) int { return int(o.t.Sub(d.t).Hours() / 24) }

// Properties
func (d Date) Year() int              { return d.t.Year() }
func (d Date) Month() Month           { return Month{Year: d.t.Year(), Month: d.t.Month()} }
func (d Date) Day() int               { return d.t.Day() }
func (d Date) Weekday() time.Weekday  { return d.t.Weekday() }
func (d Date) IsSunday() bool         { return d.t.Weekday() == time.Sunday }
func (d Date) IsZero() bool           { return d.t.IsZero() }
func (d Date) Time() time.Time        { return d.t }
func (d Date) String() string         { return d.t.Format(dateLayout) }

// WeekdayIndex returns the Monday-first index of the day: 0=Monday .. 6=Sunday.
func (d Date) WeekdayIndex() int {
	return (int(d.t.Weekday()) + 6) % 7
}

// WeekStart returns the Monday of the week containing d.
func (d Date) WeekStart() Date {
	return d.AddDays(-d.WeekdayIndex())
}

func (d Date) MarshalText() ([]byte, error) {
	if d.IsZero() {
		return []byte{}, nil
	}
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// =============================================================================
// MONTH - A calendar month key
// =============================================================================

type Month struct {
	Year  int
	Month time.Month
}

// ParseMonth parses a strict "YYYY-MM" key.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(monthLayout, s)
	if err != nil {
		return Month{}, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

func MustParseMonth(s string) Month {
	m, err := ParseMonth(s)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Month) First() Date { return NewDate(m.Year, m.Month, 1) }
func (m Month) Last() Date  { return NewDate(m.Year, m.Month+1, 1).AddDays(-1) }
func (m Month) Next() Month { return m.First().AddDays(32).Month() }

func (m Month) Contains(d Date) bool {
	return d.Year() == m.Year && d.t.Month() == m.Month
}

// Days returns every calendar day of the month in order.
func (m Month) Days() []Date {
	return m.Period().Days()
}

func (m Month) Period() Period {
	return Period{Start: m.First(), End: m.Last()}
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

func (m Month) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Month) UnmarshalText(b []byte) error {
	parsed, err := ParseMonth(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
