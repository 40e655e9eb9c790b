package payroll_test

import (
	"slices"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/payroll-engine/calendar"
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// DAILY THRESHOLDS
// =============================================================================

func TestClassifyDay_TwelveHourShift(t *testing.T) {
	// GIVEN: A single 12-hour shift
	// WHEN: Applying the daily thresholds
	// THEN: 8h eligible, 1h ye, 2h yp, 1h illegal

	rules := payroll.DefaultRules()
	sl := payroll.ShiftSlices(work("e1", "2024-01-08", "08:00", "20:00"), false, rules)

	fixed, eligible := payroll.ClassifyDay(sl, rules)
	assert.EqualValues(t, 8*60, payroll.TotalMinutes(eligible))

	byCat := map[payroll.Category]int{}
	for _, s := range fixed {
		byCat[s.Category] += s.Minutes
	}
	assert.Equal(t, 60, byCat[payroll.Ye])
	assert.Equal(t, 120, byCat[payroll.Yp])
	assert.Equal(t, 60, byCat[payroll.Illegal])

	// Thresholds are inclusive on the lower bound: the slice starting at 16:00 is ye
	assert.Equal(t, "16:00", fixed[0].Clock())
	assert.Equal(t, payroll.Ye, fixed[0].Category)
	last := fixed[len(fixed)-1]
	assert.Equal(t, "19:45", last.Clock())
	assert.Equal(t, payroll.Illegal, last.Category)
}

func TestClassifyDay_UsesConfiguredThresholds(t *testing.T) {
	rules := payroll.DefaultRules()
	rules.DailyYeThreshold = dec("6.5")
	rules.DailyYpThreshold = dec("7")
	rules.DailyIllegalThreshold = dec("7.5")

	sl := payroll.ShiftSlices(work("e1", "2024-01-08", "08:00", "16:00"), false, rules)
	fixed, eligible := payroll.ClassifyDay(sl, rules)

	assert.EqualValues(t, 390, payroll.TotalMinutes(eligible))
	require.Len(t, fixed, 6)
	assert.Equal(t, payroll.Ye, fixed[0].Category)
	assert.Equal(t, payroll.Yp, fixed[2].Category)
	assert.Equal(t, payroll.Illegal, fixed[4].Category)
}

func TestClassifyDaily_DoesNotMutateInput(t *testing.T) {
	rules := payroll.DefaultRules()
	var week [7][]payroll.TimeSlice
	week[0] = payroll.ShiftSlices(work("e1", "2024-01-08", "08:00", "20:00"), false, rules)
	before := slices.Clone(week[0])

	res := payroll.ClassifyDaily(week, rules)
	assert.Equal(t, before, week[0])
	assert.Len(t, res.Fixed, 16)
	assert.EqualValues(t, 480, res.EligibleMinutes()[0])
}

// =============================================================================
// WEEKLY ROUND-ROBIN
// =============================================================================

func eligibleWeek(t *testing.T, monday string, days int, start, end string) [7][]payroll.TimeSlice {
	t.Helper()
	rules := payroll.DefaultRules()
	var week [7][]payroll.TimeSlice
	for i := 0; i < days; i++ {
		d := day(monday).AddDays(i)
		week[i] = slices.Collect(payroll.Slices(payroll.SliceRequest{
			EmployeeID: "e1", Day: d, Start: start, End: end,
		}, rules))
	}
	return week
}

func TestClassifyWeekly_SpreadsOvertimeEvenly(t *testing.T) {
	// GIVEN: 5 days × 9 eligible hours against a 40h target
	// WHEN: Running the weekly round-robin
	// THEN: Every day gets exactly 1h of ye, not all of it on Friday

	rules := payroll.DefaultRules()
	week := eligibleWeek(t, "2024-01-08", 5, "08:00", "17:00")

	got := payroll.ClassifyWeekly(week, decimal.NewFromInt(40), rules)
	require.Len(t, got, 5*36)

	within := categoryMinutesByDay(got, payroll.Within)
	ye := categoryMinutesByDay(got, payroll.Ye)
	for i := 0; i < 5; i++ {
		assert.Equal(t, 8*60, within[i], "day %d within", i)
		assert.Equal(t, 60, ye[i], "day %d ye", i)
	}
	assert.Equal(t, [7]int{}, categoryMinutesByDay(got, payroll.Yp))
}

func TestClassifyWeekly_PartTimeAdditional(t *testing.T) {
	// GIVEN: A 20h contract and 5 days × 5h
	// THEN: 4h within and 1h additional per day

	rules := payroll.DefaultRules()
	week := eligibleWeek(t, "2024-01-08", 5, "08:00", "13:00")

	got := payroll.ClassifyWeekly(week, decimal.NewFromInt(20), rules)
	within := categoryMinutesByDay(got, payroll.Within)
	additional := categoryMinutesByDay(got, payroll.Additional)
	for i := 0; i < 5; i++ {
		assert.Equal(t, 240, within[i])
		assert.Equal(t, 60, additional[i])
	}
}

func TestClassifyWeekly_ZeroTargetFallsBackToWeeklyNormal(t *testing.T) {
	rules := payroll.DefaultRules()
	week := eligibleWeek(t, "2024-01-08", 5, "08:00", "16:00")

	got := payroll.ClassifyWeekly(week, decimal.Zero, rules)
	for _, s := range got {
		assert.Equal(t, payroll.Within, s.Category)
	}
}

func TestClassifyWeekly_BeyondYeMaxIsYp(t *testing.T) {
	// 7 days × 7h = 49h eligible: 40 within, 5 ye, 4 yp
	rules := payroll.DefaultRules()
	week := eligibleWeek(t, "2024-01-08", 7, "08:00", "15:00")

	got := payroll.ClassifyWeekly(week, decimal.NewFromInt(40), rules)
	var byCat [5]int
	for _, s := range got {
		byCat[s.Category] += s.Minutes
	}
	assert.Equal(t, 40*60, byCat[payroll.Within])
	assert.Equal(t, 5*60, byCat[payroll.Ye])
	assert.Equal(t, 4*60, byCat[payroll.Yp])
}

func TestMergeChronological_RestoresTimeOrder(t *testing.T) {
	rules := payroll.DefaultRules()
	var week [7][]payroll.TimeSlice
	week[0] = payroll.ShiftSlices(work("e1", "2024-01-08", "08:00", "20:00"), false, rules)
	week[1] = payroll.ShiftSlices(work("e1", "2024-01-09", "22:00", "04:00"), false, rules)

	got := payroll.ClassifySlices(week, decimal.NewFromInt(40), rules)
	require.Len(t, got, 48+24)
	for i := 1; i < len(got); i++ {
		prev, cur := got[i-1], got[i]
		ordered := prev.Day.Before(cur.Day) || (prev.Day.Equal(cur.Day) && prev.Minute < cur.Minute)
		assert.True(t, ordered, "slice %d out of order", i)
	}
}

// =============================================================================
// ENGINE - Day metrics
// =============================================================================

func TestDayBucketMetrics_TwelveHourDay(t *testing.T) {
	ds := payroll.NewDatasetBuilder().
		AddEmployee(hourlyEmployee("e1", "10")).
		AddShift(work("e1", "2024-01-08", "08:00", "20:00")).
		Build()
	eng := payroll.NewEngine(ds, payroll.DefaultRules())

	m := eng.DayBucketMetrics("e1", day("2024-01-08"))
	assertDecimal(t, "12", m.Total)
	assertDecimal(t, "1", m.Ye)
	assertDecimal(t, "2", m.Yp)
	assertDecimal(t, "1", m.Illegal)
	assertDecimal(t, "0", m.Additional)
	assertDecimal(t, "0", m.Night)
	assertDecimal(t, "8", m.Buckets.Hours(key("within_work_day")))
}

func TestDayBucketMetrics_ConservesWorkedTime(t *testing.T) {
	// GIVEN: A week mixing split shifts, night work, a holiday and a Sunday
	// THEN: Each day's buckets add up to the day's scheduled intervals

	split := work("e1", "2024-01-10", "06:00", "10:00")
	split.Start2, split.End2 = "14:00", "18:30"
	records := []payroll.ShiftRecord{
		work("e1", "2024-01-08", "07:00", "19:00"),
		work("e1", "2024-01-09", "21:00", "09:00"),
		split,
		work("e1", "2024-01-11", "08:10", "17:55"),
		work("e1", "2024-01-12", "08:00", "16:00"),
		work("e1", "2024-01-13", "20:00", "23:00"),
		work("e1", "2024-01-14", "10:00", "18:00"),
	}

	b := payroll.NewDatasetBuilder().AddEmployee(hourlyEmployee("e1", "10")).AddHoliday(day("2024-01-11"))
	for _, r := range records {
		b.AddShift(r)
	}
	eng := payroll.NewEngine(b.Build(), payroll.DefaultRules())

	for _, r := range records {
		var want int
		for _, iv := range r.Intervals() {
			m, err := payroll.IntervalMinutes(iv.Start, iv.End)
			require.NoError(t, err)
			want += m
		}
		m := eng.DayBucketMetrics("e1", r.Date)
		assert.EqualValues(t, want, m.Buckets.TotalMinutes(), r.Date.String())
		assertDecimal(t, decimal.NewFromInt(int64(want)).Div(decimal.NewFromInt(60)).String(), m.Total, r.Date.String())
	}

	thu := eng.DayBucketMetrics("e1", day("2024-01-11"))
	assert.True(t, thu.HolidayPremium.Equal(thu.Total), "holiday hours carry the premium")
	sun := eng.DayBucketMetrics("e1", day("2024-01-14"))
	assertDecimal(t, "8", sun.HolidayPremium)
}

func TestDayBucketMetrics_WeekTargetOverride(t *testing.T) {
	b := payroll.NewDatasetBuilder().AddEmployee(hourlyEmployee("e1", "10"))
	for i := 0; i < 5; i++ {
		b.AddShift(work("e1", day("2024-01-08").AddDays(i).String(), "08:00", "13:00"))
	}
	b.SetWeekTarget("e1", day("2024-01-08"), decimal.NewFromInt(20))
	eng := payroll.NewEngine(b.Build(), payroll.DefaultRules())

	assert.True(t, eng.WeekTarget("e1", day("2024-01-08")).Equal(decimal.NewFromInt(20)))
	assert.True(t, eng.WeekTarget("e1", day("2024-01-15")).Equal(decimal.NewFromInt(40)))
	assert.True(t, eng.WeekTarget("nobody", day("2024-01-15")).Equal(decimal.NewFromInt(40)))

	m := eng.DayBucketMetrics("e1", day("2024-01-10"))
	assertDecimal(t, "1", m.Additional)
}

func TestDayBucketMetrics_NonWorkingDaysAreEmpty(t *testing.T) {
	ds := payroll.NewDatasetBuilder().
		AddEmployee(hourlyEmployee("e1", "10")).
		AddShift(payroll.ShiftRecord{EmployeeID: "e1", Date: day("2024-01-08"), Type: payroll.ShiftRest, Start: "08:00", End: "16:00"}).
		Build()
	eng := payroll.NewEngine(ds, payroll.DefaultRules())

	m := eng.DayBucketMetrics("e1", day("2024-01-08"))
	assert.True(t, m.Buckets.IsZero())
	assert.Equal(t, calendar.MustParseDate("2024-01-08"), m.Date)
}
