/*
scenarios_test.go - Unit tests for demo scenarios

PURPOSE:
	Tests that each scenario sets up the expected state and that the engine
	prices it as described:
	- Employees and holidays are created
	- Shift records pass validation
	- Monthly overviews match hand-computed totals

These tests double as end-to-end checks of the classification pipeline.
*/
package api

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/payroll-engine/calendar"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/store"
	"github.com/warp/payroll-engine/store/memory"
)

func setupTestHandler(t *testing.T) *Handler {
	t.Helper()
	s := memory.New()
	t.Cleanup(func() { s.Close() })
	return NewHandler(s, payroll.DefaultRules(), nil)
}

func loadScenario(t *testing.T, h *Handler, id string) {
	t.Helper()
	load, ok := h.scenarioLoader(id)
	require.True(t, ok, id)
	require.NoError(t, load(context.Background()))
}

func monthOverview(t *testing.T, h *Handler, id payroll.EmployeeID, month string) payroll.PayrollOverview {
	t.Helper()
	m := calendar.MustParseMonth(month)
	eng, err := h.engine(context.Background(), m.Period(), id)
	require.NoError(t, err)
	o, ok := eng.MonthlyPayrollOverview(id, m)
	require.True(t, ok, "overview for %s", id)
	return o.Rounded()
}

func hours(o payroll.PayrollOverview, key string) decimal.Decimal {
	k, err := payroll.ParseBucketKey(key)
	if err != nil {
		panic(err)
	}
	return o.Hours[k]
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

func TestScenario_HourlyOvertime(t *testing.T) {
	// GIVEN: Mon-Fri 10h and Saturday 6h for a 40h hourly worker at 7.50
	// WHEN: Pricing January 2024
	// THEN: 40h within, 5h daily + 5h weekly ye, 5h daily + 1h weekly yp

	h := setupTestHandler(t)
	loadScenario(t, h, "hourly-overtime")

	o := monthOverview(t, h, "emp-001", "2024-01")
	assertDecimal(t, "40", hours(o, "within_work_day"))
	assertDecimal(t, "10", hours(o, "ye_work_day"))
	assertDecimal(t, "6", hours(o, "yp_work_day"))
	assert.Len(t, o.Hours, 3)

	assertDecimal(t, "300", o.SalaryTotal)
	assertDecimal(t, "153", o.ExtraTotal)
	assertDecimal(t, "453", o.GrandTotal)
}

func TestScenario_PartTime(t *testing.T) {
	// GIVEN: A 20h contract worked to 24h
	// WHEN: Pricing January 2024
	// THEN: The 4h above target are additional at 1.12, not overtime

	h := setupTestHandler(t)
	loadScenario(t, h, "part-time")

	o := monthOverview(t, h, "emp-002", "2024-01")
	assertDecimal(t, "20", hours(o, "within_work_day"))
	assertDecimal(t, "4", hours(o, "additional_work_day"))
	assertDecimal(t, "130", o.SalaryTotal)
	assertDecimal(t, "29.12", o.ExtraTotal)
	assertDecimal(t, "159.12", o.GrandTotal)
}

func TestScenario_MonthlyAbsence(t *testing.T) {
	// GIVEN: A 1200/month employee with two unpaid sick days and one annual leave day
	// WHEN: Pricing February 2024
	// THEN: Only the sick days are deducted, at 8h × base rate 7.2 each

	h := setupTestHandler(t)
	loadScenario(t, h, "monthly-absence")

	o := monthOverview(t, h, "emp-003", "2024-02")
	assert.Equal(t, payroll.PayMonthly, o.PayType)
	assert.Equal(t, 2, o.UnpaidAbsenceDays)
	assertDecimal(t, "7.2", o.BaseHourlyRate)
	assertDecimal(t, "144", hours(o, "within_work_day"))
	assertDecimal(t, "1084.80", o.SalaryTotal)
	assertDecimal(t, "0", o.ExtraTotal)
	assertDecimal(t, "1084.80", o.GrandTotal)
}

func TestScenario_NightHoliday(t *testing.T) {
	// GIVEN: Night shifts on two official holidays and a Sunday
	// WHEN: Pricing January 2024
	// THEN: Holiday and Sunday night buckets are filled and the 48h week has overtime

	h := setupTestHandler(t)
	loadScenario(t, h, "night-holiday")

	o := monthOverview(t, h, "emp-004", "2024-01")
	assert.True(t, hours(o, "within_holiday_night").IsPositive())
	assert.True(t, hours(o, "within_sunday_night").IsPositive())
	assert.True(t, hours(o, "within_work_day").IsPositive(), "split shift day")

	var total decimal.Decimal
	for _, v := range o.Hours {
		total = total.Add(v)
	}
	assertDecimal(t, "48", total)
	assert.True(t, o.ExtraTotal.IsPositive())
}

func TestScenario_SeedsHolidays(t *testing.T) {
	h := setupTestHandler(t)
	loadScenario(t, h, "part-time")

	hols, err := h.Store.ListHolidays(context.Background(), calendar.MustParseDate("2024-01-01"), calendar.MustParseDate("2024-12-31"))
	require.NoError(t, err)
	assert.Len(t, hols, len(calendar.GreekHolidays(2024)))
}

func TestScenario_AllScenariosLoadWithoutError(t *testing.T) {
	// GIVEN: All available scenarios
	// WHEN: Loading each scenario through the reset path
	// THEN: None should error and each leaves exactly one employee

	h := setupTestHandler(t)
	for _, sc := range scenarios {
		t.Run(sc.ID, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, h.reset(ctx))
			loadScenario(t, h, sc.ID)

			employees, err := h.Store.ListEmployees(ctx)
			require.NoError(t, err)
			assert.Len(t, employees, 1)

			_, err = store.LoadDataset(ctx, h.Store, calendar.MustParseMonth("2024-01").Period())
			assert.NoError(t, err)
		})
	}
}
