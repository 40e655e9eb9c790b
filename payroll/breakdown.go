package payroll

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/calendar"
)

// =============================================================================
// DAY KIND
// =============================================================================

// DayKind summarizes what a day's schedule cells say about the day.
type DayKind string

const (
	DayKindWork        DayKind = "work"
	DayKindPaidLeave   DayKind = "paid_leave"
	DayKindUnpaidLeave DayKind = "unpaid_leave"
	DayKindRest        DayKind = "rest"
	DayKindNonWorking  DayKind = "non_working"
	DayKindMixed       DayKind = "mixed"
	DayKindNone        DayKind = "none"
)

// ClassifyDayKind reduces the schedule cells of one day (one per employee)
// to a single kind. Cells of different kinds give DayKindMixed.
func ClassifyDayKind(records []ShiftRecord, rules RuleConfig) DayKind {
	var work, paid, unpaid, rest, nonWorking bool
	for _, rec := range records {
		t := ShiftType(strings.TrimSpace(string(rec.Type)))
		if t.IsWorking() {
			work = true
			continue
		}
		if a, ok := rules.Absence(string(t)); ok {
			if a.Paid {
				paid = true
			} else {
				unpaid = true
			}
			continue
		}
		switch t {
		case ShiftRest:
			rest = true
		case ShiftNonWorking, ShiftNonWorkingLatin:
			nonWorking = true
		}
	}

	kinds := 0
	for _, f := range []bool{work, paid, unpaid, rest, nonWorking} {
		if f {
			kinds++
		}
	}
	switch {
	case kinds == 0:
		return DayKindNone
	case kinds > 1:
		return DayKindMixed
	case work:
		return DayKindWork
	case paid:
		return DayKindPaidLeave
	case unpaid:
		return DayKindUnpaidLeave
	case rest:
		return DayKindRest
	}
	return DayKindNonWorking
}

// IntervalText renders the worked intervals of a record, "08:00-16:00, 18:00-22:00",
// or "-" when nothing was worked.
func IntervalText(rec ShiftRecord) string {
	ivs := rec.Intervals()
	if len(ivs) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(ivs))
	for _, iv := range ivs {
		parts = append(parts, iv.Start+"-"+iv.End)
	}
	return strings.Join(parts, ", ")
}

// =============================================================================
// MONTHLY BREAKDOWN - Week-grouped daily metrics
// =============================================================================

type DayRow struct {
	Date      calendar.Date
	Kind      DayKind
	Intervals string
	Metrics   DayMetrics
}

// WeekGroup is the part of one Monday-first week that falls inside the month.
type WeekGroup struct {
	WeekStart calendar.Date
	Days      []DayRow
	Buckets   Buckets
}

type MonthlyBreakdown struct {
	EmployeeID     EmployeeID
	Month          calendar.Month
	BaseHourlyRate decimal.Decimal
	Weeks          []WeekGroup
	Buckets        Buckets
}

// MonthlyBreakdown lists every day of the month with its metrics, grouped by
// week with week and month subtotals. It returns false for an unknown employee.
func (e *Engine) MonthlyBreakdown(id EmployeeID, month calendar.Month) (*MonthlyBreakdown, bool) {
	emp, ok := e.data.Employee(id)
	if !ok {
		return nil, false
	}

	b := &MonthlyBreakdown{
		EmployeeID:     id,
		Month:          month,
		BaseHourlyRate: BaseHourlyRate(emp, e.rules),
	}
	for _, m := range e.monthDayMetrics(id, month) {
		row := DayRow{Date: m.Date, Kind: DayKindNone, Intervals: "-", Metrics: m}
		if rec, ok := e.data.Shift(id, m.Date); ok {
			row.Kind = ClassifyDayKind([]ShiftRecord{rec}, e.rules)
			row.Intervals = IntervalText(rec)
		}

		wk := m.Date.WeekStart()
		if n := len(b.Weeks); n == 0 || !b.Weeks[n-1].WeekStart.Equal(wk) {
			b.Weeks = append(b.Weeks, WeekGroup{WeekStart: wk})
		}
		g := &b.Weeks[len(b.Weeks)-1]
		g.Days = append(g.Days, row)
		g.Buckets.Merge(m.Buckets)
		b.Buckets.Merge(m.Buckets)
	}
	return b, true
}
