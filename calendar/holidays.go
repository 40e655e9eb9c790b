package calendar

import (
	"sort"
	"time"
)

// =============================================================================
// HOLIDAY CALENDAR - Official (statutory) holidays
// =============================================================================

// Holiday is an official non-working day. Plain Sundays are never holidays
// here; the engine treats them as their own day type.
type Holiday struct {
	ID   string
	Date Date
	Name string
}

// SeededHolidayID is the id a calendar holiday is stored under. One id per
// date keeps re-seeding a year idempotent.
func SeededHolidayID(d Date) string { return "hol-" + d.String() }

// HolidayCalendar is a source of official holidays. Seeding a store for a
// year goes through one.
type HolidayCalendar interface {
	IsHoliday(d Date) bool
	HolidaysIn(year int) []Holiday
}

// GreekCalendar computes the Greek national holidays of any year.
type GreekCalendar struct{}

var _ HolidayCalendar = GreekCalendar{}

func (GreekCalendar) IsHoliday(d Date) bool {
	for _, h := range GreekHolidays(d.Year()) {
		if h.Date.Equal(d) {
			return true
		}
	}
	return false
}

func (GreekCalendar) HolidaysIn(year int) []Holiday { return GreekHolidays(year) }

// WeekHolidays folds a holiday list into the per-week weekday sets the
// scheduling layer uses, keyed by each week's Monday.
func WeekHolidays(holidays []Holiday) map[Date]WeekdaySet {
	out := make(map[Date]WeekdaySet)
	for _, h := range holidays {
		wk := h.Date.WeekStart()
		out[wk] = out[wk].With(h.Date.WeekdayIndex())
	}
	return out
}

// =============================================================================
// GREEK STATUTORY HOLIDAYS
// =============================================================================

// OrthodoxEaster returns Orthodox Easter Sunday (Gregorian) for the given year.
// Uses the Meeus Julian algorithm; the +13 day Julian offset is valid 1900-2099.
func OrthodoxEaster(year int) Date {
	a := year % 4
	b := year % 7
	c := year % 19
	d := (19*c + 15) % 30
	e := (2*a + 4*b - d + 34) % 7
	month := (d + e + 114) / 31
	day := (d+e+114)%31 + 1
	return NewDate(year, time.Month(month), day).AddDays(13)
}

// GreekHolidays returns the national holidays for a year: fixed-date feasts
// plus the movable feasts anchored on Orthodox Easter.
func GreekHolidays(year int) []Holiday {
	easter := OrthodoxEaster(year)
	holidays := []Holiday{
		{Date: NewDate(year, time.January, 1), Name: "New Year's Day"},
		{Date: NewDate(year, time.January, 6), Name: "Epiphany"},
		{Date: NewDate(year, time.March, 25), Name: "Independence Day"},
		{Date: NewDate(year, time.May, 1), Name: "Labour Day"},
		{Date: NewDate(year, time.August, 15), Name: "Assumption of Mary"},
		{Date: NewDate(year, time.October, 28), Name: "Ochi Day"},
		{Date: NewDate(year, time.December, 25), Name: "Christmas Day"},
		{Date: NewDate(year, time.December, 26), Name: "Synaxis of the Theotokos"},
		{Date: easter.AddDays(-48), Name: "Clean Monday"},
		{Date: easter.AddDays(-2), Name: "Good Friday"},
		{Date: easter, Name: "Easter Sunday"},
		{Date: easter.AddDays(1), Name: "Easter Monday"},
		{Date: easter.AddDays(50), Name: "Whit Monday"},
	}
	sort.SliceStable(holidays, func(i, j int) bool { return holidays[i].Date.Before(holidays[j].Date) })
	return holidays
}
