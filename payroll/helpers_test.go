package payroll_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/warp/payroll-engine/calendar"
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func day(s string) calendar.Date { return calendar.MustParseDate(s) }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	if !dec(want).Equal(got) {
		assert.Fail(t, "decimal mismatch: want "+want+", got "+got.String(), msgAndArgs...)
	}
}

func work(emp, date, start, end string) payroll.ShiftRecord {
	return payroll.ShiftRecord{
		EmployeeID: payroll.EmployeeID(emp),
		Date:       day(date),
		Type:       payroll.ShiftWork,
		Start:      start,
		End:        end,
	}
}

func hourlyEmployee(id string, rate string) payroll.EmployeeProfile {
	return payroll.EmployeeProfile{
		ID:          payroll.EmployeeID(id),
		Name:        id,
		PayType:     payroll.PayHourly,
		WeeklyHours: decimal.NewFromInt(40),
		WeeklyDays:  5,
		HourlyRate:  dec(rate),
	}
}

func monthlyEmployee(id string, salary string) payroll.EmployeeProfile {
	return payroll.EmployeeProfile{
		ID:            payroll.EmployeeID(id),
		Name:          id,
		PayType:       payroll.PayMonthly,
		WeeklyHours:   decimal.NewFromInt(40),
		WeeklyDays:    5,
		MonthlySalary: dec(salary),
	}
}

func key(s string) payroll.BucketKey {
	k, err := payroll.ParseBucketKey(s)
	if err != nil {
		panic(err)
	}
	return k
}

// categoryMinutesByDay counts classified minutes per scheduled weekday.
func categoryMinutesByDay(list []payroll.TimeSlice, c payroll.Category) [7]int {
	var out [7]int
	for _, s := range list {
		if s.Category == c {
			out[s.SourceDay.WeekdayIndex()] += s.Minutes
		}
	}
	return out
}
