package payroll

import (
	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/calendar"
)

// DayMetrics is the bucket breakdown of one employee-day plus the derived
// hour totals reporting needs. Every value is exact; round at the edge.
type DayMetrics struct {
	EmployeeID EmployeeID
	Date       calendar.Date
	Buckets    Buckets

	Total          decimal.Decimal
	Night          decimal.Decimal
	Additional     decimal.Decimal
	Ye             decimal.Decimal
	Yp             decimal.Decimal
	Illegal        decimal.Decimal
	HolidayPremium decimal.Decimal // hours on an official holiday or a Sunday
}

func newDayMetrics(id EmployeeID, day calendar.Date, b Buckets) DayMetrics {
	category := func(c Category) decimal.Decimal {
		return minutesToHours(b.SumMinutes(func(k BucketKey) bool { return k.Category == c }))
	}
	return DayMetrics{
		EmployeeID:     id,
		Date:           day,
		Buckets:        b,
		Total:          minutesToHours(b.TotalMinutes()),
		Night:          minutesToHours(b.SumMinutes(func(k BucketKey) bool { return k.Night })),
		Additional:     category(Additional),
		Ye:             category(Ye),
		Yp:             category(Yp),
		Illegal:        category(Illegal),
		HolidayPremium: minutesToHours(b.SumMinutes(func(k BucketKey) bool { return k.DayType != Workday })),
	}
}
