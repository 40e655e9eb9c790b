package payroll

import (
	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/calendar"
)

// =============================================================================
// ENGINE - Week classification and day metrics over a Lookup
// =============================================================================

// Lookup is the read side of the scheduling layer.
type Lookup interface {
	Employee(id EmployeeID) (EmployeeProfile, bool)
	Shift(id EmployeeID, day calendar.Date) (ShiftRecord, bool)
	// WeekHolidays returns the official holidays of the week starting on weekStart (a Monday).
	WeekHolidays(weekStart calendar.Date) calendar.WeekdaySet
	// WeekTarget returns a per-week contracted hours override, if any.
	WeekTarget(id EmployeeID, weekStart calendar.Date) (decimal.Decimal, bool)
}

// Engine computes classified slices, bucket metrics and payroll overviews.
// It holds no mutable state and is safe for concurrent use as long as the
// Lookup is.
type Engine struct {
	data  Lookup
	rules RuleConfig
}

// NewEngine binds a data snapshot to a rule configuration. The rules are
// copied, so later edits by the caller do not leak into computations.
func NewEngine(data Lookup, rules RuleConfig) *Engine {
	return &Engine{data: data, rules: rules.Clone()}
}

// Rules returns a copy of the engine's rule configuration.
func (e *Engine) Rules() RuleConfig { return e.rules.Clone() }

// IsOfficialHoliday reports whether day is flagged as an official holiday.
func (e *Engine) IsOfficialHoliday(day calendar.Date) bool {
	return e.data.WeekHolidays(day.WeekStart()).Has(day.WeekdayIndex())
}

// WeekTarget resolves the contracted weekly hours: the week override, then
// the employee profile, then 40.
func (e *Engine) WeekTarget(id EmployeeID, weekStart calendar.Date) decimal.Decimal {
	if t, ok := e.data.WeekTarget(id, weekStart); ok && t.IsPositive() {
		return t
	}
	if emp, ok := e.data.Employee(id); ok {
		return emp.ContractHours()
	}
	return decimal.NewFromInt(40)
}

// WeekSlices generates the unclassified slices of one week, grouped by the
// scheduled day (index 0 = Monday). Slices that spill past midnight stay
// with the day they were scheduled on.
func (e *Engine) WeekSlices(id EmployeeID, weekStart calendar.Date) [7][]TimeSlice {
	weekStart = weekStart.WeekStart()
	holidays := e.data.WeekHolidays(weekStart)

	var week [7][]TimeSlice
	for i := range week {
		day := weekStart.AddDays(i)
		rec, ok := e.data.Shift(id, day)
		if !ok || !rec.IsWorking() {
			continue
		}
		rec.EmployeeID = id
		rec.Date = day
		week[i] = ShiftSlices(rec, holidays.Has(i), e.rules)
	}
	return week
}

// ClassifyWeek returns the fully classified slices of the week containing day,
// in chronological order.
func (e *Engine) ClassifyWeek(id EmployeeID, day calendar.Date) []TimeSlice {
	weekStart := day.WeekStart()
	return ClassifySlices(e.WeekSlices(id, weekStart), e.WeekTarget(id, weekStart), e.rules)
}

// weekBuckets classifies one week and buckets it per scheduled day.
func (e *Engine) weekBuckets(id EmployeeID, weekStart calendar.Date) [7]Buckets {
	var out [7]Buckets
	for _, s := range e.ClassifyWeek(id, weekStart) {
		out[s.SourceDay.WeekdayIndex()].Add(s)
	}
	return out
}

// DayBucketMetrics returns the bucket metrics of one scheduled day. The whole
// week is classified because weekly thresholds depend on the other days.
func (e *Engine) DayBucketMetrics(id EmployeeID, day calendar.Date) DayMetrics {
	wb := e.weekBuckets(id, day.WeekStart())
	return newDayMetrics(id, day, wb[day.WeekdayIndex()])
}

// monthDayMetrics computes metrics for every day of a month, classifying
// each touched week once.
func (e *Engine) monthDayMetrics(id EmployeeID, month calendar.Month) []DayMetrics {
	cache := make(map[calendar.Date][7]Buckets)
	days := month.Days()
	out := make([]DayMetrics, 0, len(days))
	for _, day := range days {
		wk := day.WeekStart()
		wb, ok := cache[wk]
		if !ok {
			wb = e.weekBuckets(id, wk)
			cache[wk] = wb
		}
		out = append(out, newDayMetrics(id, day, wb[day.WeekdayIndex()]))
	}
	return out
}
