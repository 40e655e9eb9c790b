package payroll_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/payroll-engine/calendar"
	"github.com/warp/payroll-engine/payroll"
)

var jan2024 = calendar.MustParseMonth("2024-01")

func TestMonthlyPayrollOverview_UnknownEmployee(t *testing.T) {
	eng := payroll.NewEngine(payroll.NewDatasetBuilder().Build(), payroll.DefaultRules())

	o, ok := eng.MonthlyPayrollOverview("unknown-id", jan2024)
	assert.False(t, ok)
	assert.Nil(t, o)

	_, ok = eng.MonthlyBreakdown("unknown-id", jan2024)
	assert.False(t, ok)
}

func TestMonthlyPayrollOverview_KnownEmployeeWithNoWork(t *testing.T) {
	ds := payroll.NewDatasetBuilder().AddEmployee(hourlyEmployee("e1", "10")).Build()
	eng := payroll.NewEngine(ds, payroll.DefaultRules())

	o, ok := eng.MonthlyPayrollOverview("e1", jan2024)
	require.True(t, ok)
	assert.True(t, o.GrandTotal.IsZero())
	assert.Empty(t, o.Hours)
	assert.Empty(t, o.Amounts)
}

func TestMonthlyPayrollOverview_Hourly(t *testing.T) {
	// GIVEN: Mon-Thu 8h days, a Friday night shift and 4h on Sunday (44h)
	// WHEN: Computing January
	// THEN: 40h within (4 of them on Sunday), 4h ye spread Tue-Fri
	//
	// Round-robin: rounds 1-4 take 6h each (Sunday included), rounds 5-7
	// take 5h each, reaching 39h. Round 8 gives Monday its last within hour
	// and Tue-Fri their last hour as ye. Friday's last hour is 03:00-04:00.

	b := payroll.NewDatasetBuilder().AddEmployee(hourlyEmployee("e1", "10"))
	for _, d := range []string{"2024-01-08", "2024-01-09", "2024-01-10", "2024-01-11"} {
		b.AddShift(work("e1", d, "08:00", "16:00"))
	}
	b.AddShift(work("e1", "2024-01-12", "20:00", "04:00"))
	b.AddShift(work("e1", "2024-01-14", "08:00", "12:00"))
	eng := payroll.NewEngine(b.Build(), payroll.DefaultRules())

	o, ok := eng.MonthlyPayrollOverview("e1", jan2024)
	require.True(t, ok)

	assertDecimal(t, "10", o.BaseHourlyRate)
	assertDecimal(t, "31", o.Hours[key("within_work_day")])
	assertDecimal(t, "5", o.Hours[key("within_work_night")])
	assertDecimal(t, "4", o.Hours[key("within_sunday_day")])
	assertDecimal(t, "3", o.Hours[key("ye_work_day")])
	assertDecimal(t, "1", o.Hours[key("ye_work_night")])
	assert.Len(t, o.Hours, 5)

	// salary = 31 × 10 + 5 × 10 × 1.25
	assertDecimal(t, "372.5", o.SalaryTotal)
	// extra = 3 × 10 × 1.2 + 1 × 10 × 1.5
	assertDecimal(t, "51", o.ExtraTotal)
	assertDecimal(t, "423.5", o.GrandTotal)

	_, sundayPriced := o.Amounts[key("within_sunday_day")]
	assert.False(t, sundayPriced, "within Sunday time is in neither total")
	assertDecimal(t, "310", o.Amounts[key("within_work_day")])
}

func TestMonthlyPayrollOverview_MonthlyDeductsUnpaidAbsence(t *testing.T) {
	// GIVEN: A monthly employee (1000/month, 40h, 5 days) with
	//   - unpaid leave on Wed 10th (counts)
	//   - paid leave on Thu 11th (does not count)
	//   - unpaid leave on Sat 13th (not a planned day)
	//   - unpaid leave on Mon 1st (official holiday)
	//   - a 12h day on Mon 8th
	// THEN: base rate 1000×6/(40×25) = 6; deduction 1 × 8h × 6 = 48

	absence := func(date, code string) payroll.ShiftRecord {
		return payroll.ShiftRecord{EmployeeID: "m1", Date: day(date), Type: payroll.ShiftType(code)}
	}
	ds := payroll.NewDatasetBuilder().
		AddEmployee(monthlyEmployee("m1", "1000")).
		AddHoliday(day("2024-01-01")).
		AddShift(absence("2024-01-10", "ΑΧ")).
		AddShift(absence("2024-01-11", "ΑΔ")).
		AddShift(absence("2024-01-13", "ΑΧ")).
		AddShift(absence("2024-01-01", "ΑΣ")).
		AddShift(work("m1", "2024-01-08", "08:00", "20:00")).
		Build()
	eng := payroll.NewEngine(ds, payroll.DefaultRules())

	o, ok := eng.MonthlyPayrollOverview("m1", jan2024)
	require.True(t, ok)

	assert.Equal(t, 1, o.UnpaidAbsenceDays)
	assertDecimal(t, "6", o.BaseHourlyRate)
	assertDecimal(t, "952", o.SalaryTotal)
	// ye 1h × 6 × 1.2 + yp 2h × 6 × 1.4 + illegal 1h × 6 × 1.8
	assertDecimal(t, "34.8", o.ExtraTotal)
	assertDecimal(t, "986.8", o.GrandTotal)

	_, withinPriced := o.Amounts[key("within_work_day")]
	assert.False(t, withinPriced, "monthly within time is paid by the salary")
}

func TestMonthlyPayrollOverview_SalaryNeverNegative(t *testing.T) {
	b := payroll.NewDatasetBuilder().AddEmployee(monthlyEmployee("m1", "1000"))
	for _, d := range jan2024.Days() {
		b.AddShift(payroll.ShiftRecord{EmployeeID: "m1", Date: d, Type: "ΑΧ"})
	}
	eng := payroll.NewEngine(b.Build(), payroll.DefaultRules())

	o, ok := eng.MonthlyPayrollOverview("m1", jan2024)
	require.True(t, ok)
	assert.Equal(t, 23, o.UnpaidAbsenceDays)
	assert.True(t, o.SalaryTotal.IsZero())
}

func TestMonthlyPayrollOverview_Idempotent(t *testing.T) {
	rules := payroll.DefaultRules()
	emp := hourlyEmployee("e1", "7.5")
	b := payroll.NewDatasetBuilder().AddEmployee(emp).AddHoliday(day("2024-01-06"))
	for i := 0; i < 20; i++ {
		d := day("2024-01-02").AddDays(i)
		b.AddShift(work("e1", d.String(), "17:10", "03:35"))
	}
	eng := payroll.NewEngine(b.Build(), rules)

	first, ok := eng.MonthlyPayrollOverview("e1", jan2024)
	require.True(t, ok)
	second, ok := eng.MonthlyPayrollOverview("e1", jan2024)
	require.True(t, ok)

	assert.Equal(t, first, second)
	assert.Equal(t, first.Rounded(), second.Rounded())
	assert.Equal(t, rules.WeeklyNormalMax.String(), eng.Rules().WeeklyNormalMax.String())
	assert.Equal(t, "7.5", emp.HourlyRate.String())
}

func TestMonthlyPayrollOverview_MonthBucketsMatchDays(t *testing.T) {
	b := payroll.NewDatasetBuilder().AddEmployee(hourlyEmployee("e1", "10"))
	// Week crossing the month boundary: Mon 29 Jan .. Sun 4 Feb
	for i := 0; i < 6; i++ {
		d := day("2024-01-29").AddDays(i)
		b.AddShift(work("e1", d.String(), "08:00", "18:00"))
	}
	eng := payroll.NewEngine(b.Build(), payroll.DefaultRules())

	o, ok := eng.MonthlyPayrollOverview("e1", jan2024)
	require.True(t, ok)

	var want int64
	for _, d := range jan2024.Days() {
		want += eng.DayBucketMetrics("e1", d).Buckets.TotalMinutes()
	}
	assert.EqualValues(t, 3*600, want)
	assert.Equal(t, want, o.Buckets.TotalMinutes())
}

func TestPayrollOverview_Rounded(t *testing.T) {
	emp := monthlyEmployee("m1", "1000")
	emp.WeeklyHours = decimal.NewFromInt(35)
	rate := payroll.BaseHourlyRate(emp, payroll.DefaultRules())

	o := payroll.PayrollOverview{
		BaseHourlyRate: rate,
		Hours:          map[payroll.BucketKey]decimal.Decimal{key("ye_work_day"): dec("0.1666666666666667")},
		Amounts: map[payroll.BucketKey]decimal.Decimal{
			key("ye_work_day"): dec("1.37142857"),
			key("yp_work_day"): dec("0.001"),
		},
	}
	r := o.Rounded()
	assert.Equal(t, "6.8571", r.BaseHourlyRate.String())
	assert.Equal(t, "0.17", r.Hours[key("ye_work_day")].String())
	assert.Equal(t, "1.37", r.Amounts[key("ye_work_day")].String())
	assert.NotContains(t, r.Amounts, key("yp_work_day"))
	// the source stays at full precision
	assert.Equal(t, "0.001", o.Amounts[key("yp_work_day")].String())
}

func TestPlannedDayIndexes(t *testing.T) {
	assert.Equal(t, []int{0, 1, 2, 3, 4}, payroll.PlannedDayIndexes(5).Indices())
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, payroll.PlannedDayIndexes(9).Indices())
	assert.Equal(t, []int{0}, payroll.PlannedDayIndexes(0).Indices())
}

// =============================================================================
// BREAKDOWN
// =============================================================================

func TestMonthlyBreakdown_GroupsByWeek(t *testing.T) {
	ds := payroll.NewDatasetBuilder().
		AddEmployee(hourlyEmployee("e1", "10")).
		AddShift(work("e1", "2024-01-09", "08:00", "20:00")).
		AddShift(payroll.ShiftRecord{EmployeeID: "e1", Date: day("2024-01-10"), Type: "ΑΔ"}).
		AddShift(payroll.ShiftRecord{EmployeeID: "e1", Date: day("2024-01-14"), Type: payroll.ShiftRest}).
		Build()
	eng := payroll.NewEngine(ds, payroll.DefaultRules())

	bd, ok := eng.MonthlyBreakdown("e1", jan2024)
	require.True(t, ok)

	// January 2024 starts on a Monday: 4 full weeks plus Mon-Wed
	require.Len(t, bd.Weeks, 5)
	assert.Len(t, bd.Weeks[0].Days, 7)
	assert.Len(t, bd.Weeks[4].Days, 3)

	wk := bd.Weeks[1]
	assert.Equal(t, "2024-01-08", wk.WeekStart.String())
	assert.Equal(t, payroll.DayKindWork, wk.Days[1].Kind)
	assert.Equal(t, "08:00-20:00", wk.Days[1].Intervals)
	assert.Equal(t, payroll.DayKindPaidLeave, wk.Days[2].Kind)
	assert.Equal(t, payroll.DayKindRest, wk.Days[6].Kind)
	assert.Equal(t, payroll.DayKindNone, wk.Days[0].Kind)
	assert.Equal(t, "-", wk.Days[0].Intervals)

	assert.EqualValues(t, 720, wk.Buckets.TotalMinutes())
	assert.EqualValues(t, 720, bd.Buckets.TotalMinutes())
	assertDecimal(t, "10", bd.BaseHourlyRate)
}

func TestClassifyDayKind(t *testing.T) {
	rules := payroll.DefaultRules()
	rec := func(typ payroll.ShiftType) payroll.ShiftRecord { return payroll.ShiftRecord{Type: typ} }

	assert.Equal(t, payroll.DayKindNone, payroll.ClassifyDayKind(nil, rules))
	assert.Equal(t, payroll.DayKindWork, payroll.ClassifyDayKind([]payroll.ShiftRecord{rec(payroll.ShiftTelework)}, rules))
	assert.Equal(t, payroll.DayKindPaidLeave, payroll.ClassifyDayKind([]payroll.ShiftRecord{rec("ΑΔ")}, rules))
	assert.Equal(t, payroll.DayKindUnpaidLeave, payroll.ClassifyDayKind([]payroll.ShiftRecord{rec("ΑΣ")}, rules))
	assert.Equal(t, payroll.DayKindRest, payroll.ClassifyDayKind([]payroll.ShiftRecord{rec(payroll.ShiftRest)}, rules))
	assert.Equal(t, payroll.DayKindNonWorking, payroll.ClassifyDayKind([]payroll.ShiftRecord{rec(payroll.ShiftNonWorkingLatin)}, rules))
	assert.Equal(t, payroll.DayKindMixed, payroll.ClassifyDayKind([]payroll.ShiftRecord{rec(payroll.ShiftWork), rec(payroll.ShiftRest)}, rules))
	assert.Equal(t, payroll.DayKindNone, payroll.ClassifyDayKind([]payroll.ShiftRecord{rec("??")}, rules))
}

// =============================================================================
// SHIFTS CROSSING A WEEK OR MONTH BOUNDARY
// =============================================================================

func TestClassifyWeek_SundayNightShiftStaysInItsWeek(t *testing.T) {
	// GIVEN: Mon-Fri 08:00-16:00 (40h) and Sunday 22:00-06:00 in the week
	//        of 2024-01-08, then Monday 2024-01-15 08:00-16:00
	// WHEN: Classifying both weeks
	// THEN: Sunday's post-midnight hours count toward the first week's
	//       weekly counter, and the next Monday starts from zero
	//
	// Round robin over six days: rounds 1-6 bring the counter to 36h, round
	// 7 crosses 40h at Friday, round 8 crosses 45h at Thursday. Sunday's
	// 22:00-04:00 is within, 04:00-05:00 ye, 05:00-06:00 yp.

	b := payroll.NewDatasetBuilder().AddEmployee(hourlyEmployee("e1", "10"))
	for _, d := range []string{"2024-01-08", "2024-01-09", "2024-01-10", "2024-01-11", "2024-01-12"} {
		b.AddShift(work("e1", d, "08:00", "16:00"))
	}
	b.AddShift(work("e1", "2024-01-14", "22:00", "06:00"))
	b.AddShift(work("e1", "2024-01-15", "08:00", "16:00"))
	eng := payroll.NewEngine(b.Build(), payroll.DefaultRules())

	sunday := eng.DayBucketMetrics("e1", day("2024-01-14"))
	assertDecimal(t, "8", sunday.Total)
	assertDecimal(t, "8", sunday.Night)
	assertDecimal(t, "6", sunday.Buckets.Hours(key("within_sunday_night")))
	assertDecimal(t, "1", sunday.Buckets.Hours(key("ye_sunday_night")))
	assertDecimal(t, "1", sunday.Buckets.Hours(key("yp_sunday_night")))

	var spilled int
	for _, s := range eng.ClassifyWeek("e1", day("2024-01-14")) {
		if s.Day.Equal(day("2024-01-15")) {
			spilled += s.Minutes
			assert.Equal(t, day("2024-01-14"), s.SourceDay)
		}
	}
	assert.Equal(t, 6*60, spilled, "00:00-06:00 belongs to the Sunday week")

	for _, s := range eng.ClassifyWeek("e1", day("2024-01-15")) {
		assert.True(t, s.SourceDay.AfterOrEqual(day("2024-01-15")), "slice from %s leaked into next week", s.SourceDay)
	}
	monday := eng.DayBucketMetrics("e1", day("2024-01-15"))
	assertDecimal(t, "8", monday.Total)
	assertDecimal(t, "8", monday.Buckets.Hours(key("within_work_day")))
	assertDecimal(t, "0", monday.Ye)
}

func TestMonthlyPayrollOverview_NightShiftOnLastDayStaysInMonth(t *testing.T) {
	// GIVEN: Wednesday 2024-01-31 22:00-04:00, nothing on 1 February
	// WHEN: Computing January and February
	// THEN: All six hours are January's; February is empty

	ds := payroll.NewDatasetBuilder().
		AddEmployee(hourlyEmployee("e1", "10")).
		AddShift(work("e1", "2024-01-31", "22:00", "04:00")).
		Build()
	eng := payroll.NewEngine(ds, payroll.DefaultRules())

	jan, ok := eng.MonthlyPayrollOverview("e1", jan2024)
	require.True(t, ok)
	assertDecimal(t, "6", jan.Hours[key("within_work_night")])
	assert.Len(t, jan.Hours, 1)
	// 6 × 10 × 1.25
	assertDecimal(t, "75", jan.SalaryTotal)

	feb, ok := eng.MonthlyPayrollOverview("e1", calendar.MustParseMonth("2024-02"))
	require.True(t, ok)
	assert.Empty(t, feb.Hours)
	assert.True(t, feb.GrandTotal.IsZero())

	assertDecimal(t, "0", eng.DayBucketMetrics("e1", day("2024-02-01")).Total)
}
