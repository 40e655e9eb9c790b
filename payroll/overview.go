package payroll

import (
	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/calendar"
)

// =============================================================================
// PERIOD AGGREGATOR - Monthly payroll overview
// =============================================================================
//
//   salary (hourly)  = amount(within_work_day) + amount(within_work_night)
//   salary (monthly) = max(0, monthlySalary − unpaidDays × hours/days × baseRate)
//   extra            = Σ amount(b) for every non-within bucket b
//   grand            = salary + extra
//
// Within time on a holiday or Sunday is in neither total.

// PayrollOverview is one employee's month. All values are full precision;
// call Rounded for reporting.
type PayrollOverview struct {
	EmployeeID        EmployeeID
	Month             calendar.Month
	PayType           PayType
	BaseHourlyRate    decimal.Decimal
	SalaryTotal       decimal.Decimal
	ExtraTotal        decimal.Decimal
	GrandTotal        decimal.Decimal
	UnpaidAbsenceDays int
	Buckets           Buckets

	// Hours holds every non-empty bucket.
	Hours map[BucketKey]decimal.Decimal
	// Amounts holds the buckets that feed SalaryTotal or ExtraTotal.
	Amounts map[BucketKey]decimal.Decimal
}

// Rounded returns a copy for reporting: hours and amounts at 2 decimals,
// the base rate at 4. Amounts that round to zero are dropped.
func (o PayrollOverview) Rounded() PayrollOverview {
	out := o
	out.BaseHourlyRate = o.BaseHourlyRate.Round(4)
	out.SalaryTotal = o.SalaryTotal.Round(2)
	out.ExtraTotal = o.ExtraTotal.Round(2)
	out.GrandTotal = o.GrandTotal.Round(2)
	out.Hours = make(map[BucketKey]decimal.Decimal, len(o.Hours))
	for k, v := range o.Hours {
		out.Hours[k] = v.Round(2)
	}
	out.Amounts = make(map[BucketKey]decimal.Decimal, len(o.Amounts))
	for k, v := range o.Amounts {
		if r := v.Round(2); !r.IsZero() {
			out.Amounts[k] = r
		}
	}
	return out
}

// BaseHourlyRate is the rate every bucket is priced at: the hourly rate, or
// for monthly pay salary / (weeklyHours × MonthlyWorkingDays / 6).
func BaseHourlyRate(emp EmployeeProfile, rules RuleConfig) decimal.Decimal {
	if !emp.IsMonthly() {
		return emp.HourlyRate
	}
	denom := emp.ContractHours().Mul(rules.MonthlyWorkingDays)
	if denom.IsZero() {
		return decimal.Zero
	}
	return emp.MonthlySalary.Mul(decimal.NewFromInt(6)).Div(denom)
}

// PlannedDayIndexes is the set of weekdays a monthly employee is expected to
// work: the first weekDays of Monday..Saturday.
func PlannedDayIndexes(weekDays int) calendar.WeekdaySet {
	weekDays = max(1, min(6, weekDays))
	var s calendar.WeekdaySet
	for i := 0; i < weekDays; i++ {
		s = s.With(i)
	}
	return s
}

// UnpaidAbsenceDays counts the month's planned, non-holiday days that carry an
// unpaid absence type.
func (e *Engine) UnpaidAbsenceDays(id EmployeeID, month calendar.Month) int {
	emp, ok := e.data.Employee(id)
	if !ok {
		return 0
	}
	planned := PlannedDayIndexes(emp.ContractDays())

	count := 0
	for _, day := range month.Days() {
		if !planned.Has(day.WeekdayIndex()) || e.IsOfficialHoliday(day) {
			continue
		}
		rec, ok := e.data.Shift(id, day)
		if !ok {
			continue
		}
		if a, ok := e.rules.Absence(string(rec.Type)); ok && !a.Paid {
			count++
		}
	}
	return count
}

// MonthlyPayrollOverview rolls a month up into salary and extra pay. It returns
// false when the employee is unknown, which callers must treat as "no data"
// rather than a zero month.
func (e *Engine) MonthlyPayrollOverview(id EmployeeID, month calendar.Month) (*PayrollOverview, bool) {
	emp, ok := e.data.Employee(id)
	if !ok {
		return nil, false
	}

	var monthBuckets Buckets
	for _, m := range e.monthDayMetrics(id, month) {
		monthBuckets.Merge(m.Buckets)
	}

	rate := BaseHourlyRate(emp, e.rules)
	o := &PayrollOverview{
		EmployeeID:     id,
		Month:          month,
		PayType:        emp.PayType,
		BaseHourlyRate: rate,
		Buckets:        monthBuckets,
		Hours:          monthBuckets.NonZeroHours(),
		Amounts:        make(map[BucketKey]decimal.Decimal),
		ExtraTotal:     decimal.Zero,
	}

	for _, k := range AllBucketKeys() {
		if k.IsWithin() || monthBuckets.Minutes(k) == 0 {
			continue
		}
		amt := monthBuckets.Amount(k, rate, e.rules)
		o.Amounts[k] = amt
		o.ExtraTotal = o.ExtraTotal.Add(amt)
	}

	if emp.IsMonthly() {
		o.UnpaidAbsenceDays = e.UnpaidAbsenceDays(id, month)
		dailyHours := emp.ContractHours().Div(decimal.NewFromInt(int64(emp.ContractDays())))
		deduction := decimal.NewFromInt(int64(o.UnpaidAbsenceDays)).Mul(dailyHours).Mul(rate)
		o.SalaryTotal = decimal.Max(decimal.Zero, emp.MonthlySalary.Sub(deduction))
	} else {
		o.SalaryTotal = decimal.Zero
		for _, night := range []bool{false, true} {
			k := BucketKey{Category: Within, DayType: Workday, Night: night}
			if monthBuckets.Minutes(k) == 0 {
				continue
			}
			amt := monthBuckets.Amount(k, rate, e.rules)
			o.Amounts[k] = amt
			o.SalaryTotal = o.SalaryTotal.Add(amt)
		}
	}

	o.GrandTotal = o.SalaryTotal.Add(o.ExtraTotal)
	return o, true
}
