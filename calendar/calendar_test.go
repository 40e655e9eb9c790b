package calendar_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/payroll-engine/calendar"
)

func TestParseDate_RejectsLooseFormats(t *testing.T) {
	for _, s := range []string{"2024-1-05", "05/01/2024", "2024-02-30", ""} {
		_, err := calendar.ParseDate(s)
		assert.ErrorIs(t, err, calendar.ErrInvalidDate, s)
	}
}

func TestDate_WeekdayIndexIsMondayFirst(t *testing.T) {
	// 2024-01-01 is a Monday, 2024-01-07 a Sunday
	assert.Equal(t, 0, calendar.MustParseDate("2024-01-01").WeekdayIndex())
	assert.Equal(t, 6, calendar.MustParseDate("2024-01-07").WeekdayIndex())
	assert.True(t, calendar.MustParseDate("2024-01-07").IsSunday())
}

func TestDate_WeekStart(t *testing.T) {
	assert.Equal(t, "2024-01-01", calendar.MustParseDate("2024-01-07").WeekStart().String())
	assert.Equal(t, "2024-01-08", calendar.MustParseDate("2024-01-08").WeekStart().String())
	assert.Equal(t, "2023-12-25", calendar.MustParseDate("2023-12-31").WeekStart().String())
}

func TestMonth_DaysAndWeeks(t *testing.T) {
	feb := calendar.MustParseMonth("2024-02")
	days := feb.Days()
	require.Len(t, days, 29, "2024 is a leap year")
	assert.Equal(t, "2024-02-01", days[0].String())
	assert.Equal(t, "2024-02-29", days[28].String())

	// Feb 2024 starts on a Thursday, so the first week starts in January
	weeks := feb.Period().WeekStarts()
	require.Len(t, weeks, 5)
	assert.Equal(t, "2024-01-29", weeks[0].String())
	assert.Equal(t, "2024-02-26", weeks[4].String())

	assert.Equal(t, "2024-03", feb.Next().String())
	assert.Equal(t, "2025-01", calendar.MustParseMonth("2024-12").Next().String())
}

func TestParseMonth_Invalid(t *testing.T) {
	_, err := calendar.ParseMonth("2024-13")
	assert.ErrorIs(t, err, calendar.ErrInvalidMonth)
}

func TestWeekdaySet(t *testing.T) {
	s := calendar.NewWeekdaySet(0, 6, 9)
	assert.True(t, s.Has(0))
	assert.True(t, s.Has(6))
	assert.False(t, s.Has(3))
	assert.Equal(t, []int{0, 6}, s.Indices())
	assert.Equal(t, "{Mon,Sun}", s.String())
}

func TestOrthodoxEaster(t *testing.T) {
	cases := map[int]string{
		2023: "2023-04-16",
		2024: "2024-05-05",
		2025: "2025-04-20",
	}
	for year, want := range cases {
		assert.Equal(t, want, calendar.OrthodoxEaster(year).String(), "year %d", year)
	}
}

func TestGreekHolidays_FoldIntoWeekSets(t *testing.T) {
	holidays := calendar.GreekHolidays(2024)
	require.NotEmpty(t, holidays)

	var cal calendar.HolidayCalendar = calendar.GreekCalendar{}
	assert.Equal(t, holidays, cal.HolidaysIn(2024))
	assert.True(t, cal.IsHoliday(calendar.NewDate(2024, time.March, 25)))
	assert.True(t, cal.IsHoliday(calendar.NewDate(2024, time.March, 18)), "Clean Monday 2024")
	assert.False(t, cal.IsHoliday(calendar.NewDate(2024, time.March, 24)))
	assert.Equal(t, "hol-2024-03-25", calendar.SeededHolidayID(calendar.NewDate(2024, time.March, 25)))

	weeks := calendar.WeekHolidays(holidays)
	// Mon 2024-01-01 (New Year) and Sat 2024-01-06 (Epiphany) share a week
	assert.Equal(t, []int{0, 5}, weeks[calendar.MustParseDate("2024-01-01")].Indices())
}
