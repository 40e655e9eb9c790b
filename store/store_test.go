package store_test

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
	"github.com/warp/payroll-engine/store/sqlite"
)

// backends runs fn against every store that needs no external server.
func backends(t *testing.T, fn func(t *testing.T, s store.Store)) {
	t.Run("memory", func(t *testing.T) {
		fn(t, memory.New())
	})
	t.Run("sqlite", func(t *testing.T) {
		s, err := sqlite.New(":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		fn(t, s)
	})
}

func day(s string) calendar.Date { return calendar.MustParseDate(s) }

func employee(id string) payroll.EmployeeProfile {
	return payroll.EmployeeProfile{
		ID:          payroll.EmployeeID(id),
		Name:        "Employee " + id,
		PayType:     payroll.PayHourly,
		WeeklyHours: decimal.NewFromInt(40),
		WeeklyDays:  5,
		HourlyRate:  decimal.RequireFromString("7.25"),
	}
}

func shift(id, date, start, end string) payroll.ShiftRecord {
	return payroll.ShiftRecord{
		EmployeeID: payroll.EmployeeID(id),
		Date:       day(date),
		Type:       payroll.ShiftWork,
		Start:      start,
		End:        end,
	}
}

// =============================================================================
// CONTRACT
// =============================================================================

func TestStore_Employees(t *testing.T) {
	backends(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()

		_, err := s.GetEmployee(ctx, "nobody")
		assert.ErrorIs(t, err, payroll.ErrEmployeeNotFound)

		require.NoError(t, s.SaveEmployee(ctx, employee("b")))
		require.NoError(t, s.SaveEmployee(ctx, employee("a")))

		updated := employee("a")
		updated.PayType = payroll.PayMonthly
		updated.MonthlySalary = decimal.RequireFromString("1234.50")
		updated.SeniorityTiers = 2
		require.NoError(t, s.SaveEmployee(ctx, updated))

		got, err := s.GetEmployee(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, payroll.PayMonthly, got.PayType)
		assert.True(t, got.MonthlySalary.Equal(updated.MonthlySalary))
		assert.True(t, got.HourlyRate.Equal(updated.HourlyRate))
		assert.Equal(t, 2, got.SeniorityTiers)

		all, err := s.ListEmployees(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, payroll.EmployeeID("a"), all[0].ID)
	})
}

func TestStore_ShiftsUpsertAndRange(t *testing.T) {
	backends(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()
		require.NoError(t, s.SaveEmployee(ctx, employee("e1")))
		require.NoError(t, s.SaveEmployee(ctx, employee("e2")))

		require.NoError(t, s.SaveShift(ctx, shift("e1", "2024-01-09", "08:00", "16:00")))
		require.NoError(t, s.SaveShift(ctx, shift("e1", "2024-01-08", "08:00", "16:00")))
		require.NoError(t, s.SaveShift(ctx, shift("e2", "2024-01-08", "22:00", "06:00")))
		require.NoError(t, s.SaveShift(ctx, shift("e1", "2024-02-01", "08:00", "16:00")))

		split := shift("e1", "2024-01-08", "06:00", "10:00")
		split.Type2, split.Start2, split.End2 = payroll.ShiftTelework, "14:00", "18:00"
		require.NoError(t, s.SaveShift(ctx, split))

		got, err := s.ListShifts(ctx, "e1", day("2024-01-01"), day("2024-01-31"))
		require.NoError(t, err)
		require.Len(t, got, 2, "the second save replaced the first record")
		assert.Equal(t, split, got[0])
		assert.Equal(t, "2024-01-09", got[1].Date.String())

		everyone, err := s.ListShifts(ctx, "", day("2024-01-08"), day("2024-01-08"))
		require.NoError(t, err)
		assert.Len(t, everyone, 2)

		require.NoError(t, s.DeleteShift(ctx, "e1", day("2024-01-09")))
		assert.ErrorIs(t, s.DeleteShift(ctx, "e1", day("2024-01-09")), store.ErrNotFound)
	})
}

func TestStore_HolidaysTargetsRules(t *testing.T) {
	backends(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()
		require.NoError(t, s.SaveEmployee(ctx, employee("e1")))

		require.NoError(t, s.SaveHoliday(ctx, calendar.Holiday{ID: "h1", Date: day("2024-01-06"), Name: "Epiphany"}))
		require.NoError(t, s.SaveHoliday(ctx, calendar.Holiday{ID: "h2", Date: day("2024-03-25"), Name: "Independence Day"}))
		hols, err := s.ListHolidays(ctx, day("2024-01-01"), day("2024-01-31"))
		require.NoError(t, err)
		require.Len(t, hols, 1)
		assert.Equal(t, "Epiphany", hols[0].Name)
		require.NoError(t, s.DeleteHoliday(ctx, "h1"))
		assert.ErrorIs(t, s.DeleteHoliday(ctx, "h1"), store.ErrNotFound)

		target := store.WeekTarget{ID: "t1", EmployeeID: "e1", WeekStart: day("2024-01-08"), Hours: decimal.NewFromInt(20)}
		require.NoError(t, s.SaveWeekTarget(ctx, target))
		target.ID, target.Hours = "t2", decimal.NewFromInt(30)
		require.NoError(t, s.SaveWeekTarget(ctx, target))
		targets, err := s.ListWeekTargets(ctx, "e1", day("2024-01-01"), day("2024-01-31"))
		require.NoError(t, err)
		require.Len(t, targets, 1)
		assert.True(t, targets[0].Hours.Equal(decimal.NewFromInt(30)))

		_, err = s.GetRules(ctx)
		assert.ErrorIs(t, err, store.ErrNotFound)
		require.NoError(t, s.SaveRules(ctx, []byte(`{"daily":{"ye":7}}`)))
		rec, err := s.GetRules(ctx)
		require.NoError(t, err)
		assert.JSONEq(t, `{"daily":{"ye":7}}`, string(rec.Document))
		assert.False(t, rec.UpdatedAt.IsZero())

		require.NoError(t, s.Reset(ctx))
		all, err := s.ListEmployees(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})
}

// =============================================================================
// DATASET LOADING
// =============================================================================

func TestLoadDataset_WidensToWholeWeeks(t *testing.T) {
	// GIVEN: A month that starts on a Thursday, with work on the Monday before it
	// WHEN: Loading the dataset for that month
	// THEN: The Monday shift, the week holiday and the week target are all present

	backends(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()
		require.NoError(t, s.SaveEmployee(ctx, employee("e1")))
		require.NoError(t, s.SaveShift(ctx, shift("e1", "2024-01-29", "08:00", "18:00")))
		require.NoError(t, s.SaveShift(ctx, shift("e1", "2024-02-01", "08:00", "16:00")))
		require.NoError(t, s.SaveHoliday(ctx, calendar.Holiday{ID: "h", Date: day("2024-01-30"), Name: "Local"}))
		require.NoError(t, s.SaveWeekTarget(ctx, store.WeekTarget{EmployeeID: "e1", WeekStart: day("2024-01-29"), Hours: decimal.NewFromInt(30)}))

		feb := calendar.MustParseMonth("2024-02")
		ds, err := store.LoadDataset(ctx, s, feb.Period(), "e1", "ghost")
		require.NoError(t, err)

		_, ok := ds.Shift("e1", day("2024-01-29"))
		assert.True(t, ok)
		assert.True(t, ds.WeekHolidays(day("2024-01-29")).Has(1))
		hours, ok := ds.WeekTarget("e1", day("2024-01-29"))
		require.True(t, ok)
		assert.True(t, hours.Equal(decimal.NewFromInt(30)))

		_, ok = ds.Employee("ghost")
		assert.False(t, ok)

		eng := payroll.NewEngine(ds, payroll.DefaultRules())
		_, ok = eng.MonthlyPayrollOverview("ghost", feb)
		assert.False(t, ok)
		overview, ok := eng.MonthlyPayrollOverview("e1", feb)
		require.True(t, ok)
		assert.True(t, overview.Buckets.TotalMinutes() > 0)
	})
}
