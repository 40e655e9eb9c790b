/*
store.go - Persistence interface for payroll inputs

PURPOSE:
  Defines the interface between the payroll engine and the database.
  The engine itself never touches storage: callers load a payroll.Dataset
  snapshot through LoadDataset and hand it to payroll.NewEngine.

WHAT IS STORED:
  Employees:     Profiles (pay type, contract hours, rate or salary)
  Shifts:        One record per employee per day (upsert on write)
  Holidays:      Official holidays, expanded to per-week weekday sets on load
  Week targets:  Per-employee, per-week contracted hours override
  Rules:         The current rules document (JSON, see config/rules.go)

WHAT IS NOT STORED:
  Slices, buckets and overviews. They are derived on every call.

IMPLEMENTATIONS:
  - store/memory:   In-memory, for tests and demos
  - store/sqlite:   SQLite with embedded golang-migrate migrations
  - store/postgres: PostgreSQL through pgxpool

EXAMPLE:
  ds, err := store.LoadDataset(ctx, s, month.Period(), "e1")
  if err != nil {
      return err
  }
  overview, ok := payroll.NewEngine(ds, rules).MonthlyPayrollOverview("e1", month)

SEE ALSO:
  - payroll/dataset.go: The immutable snapshot
  - payroll/engine.go: Lookup interface the snapshot satisfies
*/
package store

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/calendar"
	"github.com/warp/payroll-engine/payroll"
)

// ErrNotFound is returned for missing holidays, shifts and rules documents.
// Missing employees return payroll.ErrEmployeeNotFound.
var ErrNotFound = errors.New("not found")

// =============================================================================
// RECORDS
// =============================================================================

// WeekTarget overrides the contracted hours of one employee for one week.
type WeekTarget struct {
	ID         string
	EmployeeID payroll.EmployeeID
	WeekStart  calendar.Date
	Hours      decimal.Decimal
}

// RulesRecord is the persisted rules document.
type RulesRecord struct {
	Document  []byte
	UpdatedAt time.Time
}

// =============================================================================
// STORE - Interface for payroll input persistence
// =============================================================================

// Store persists everything the engine reads.
type Store interface {
	SaveEmployee(ctx context.Context, e payroll.EmployeeProfile) error
	GetEmployee(ctx context.Context, id payroll.EmployeeID) (payroll.EmployeeProfile, error)
	ListEmployees(ctx context.Context) ([]payroll.EmployeeProfile, error)

	// SaveShift replaces the record for (EmployeeID, Date).
	SaveShift(ctx context.Context, s payroll.ShiftRecord) error
	DeleteShift(ctx context.Context, id payroll.EmployeeID, day calendar.Date) error
	// ListShifts returns records in [from, to] ordered by date. An empty id
	// lists every employee.
	ListShifts(ctx context.Context, id payroll.EmployeeID, from, to calendar.Date) ([]payroll.ShiftRecord, error)

	// SaveHoliday upserts by ID. Two holidays on the same date are allowed.
	SaveHoliday(ctx context.Context, h calendar.Holiday) error
	DeleteHoliday(ctx context.Context, id string) error
	ListHolidays(ctx context.Context, from, to calendar.Date) ([]calendar.Holiday, error)

	// SaveWeekTarget replaces the override for (EmployeeID, WeekStart).
	SaveWeekTarget(ctx context.Context, t WeekTarget) error
	ListWeekTargets(ctx context.Context, id payroll.EmployeeID, from, to calendar.Date) ([]WeekTarget, error)

	SaveRules(ctx context.Context, doc []byte) error
	GetRules(ctx context.Context) (RulesRecord, error)

	// Reset deletes all data. Used when loading demo scenarios.
	Reset(ctx context.Context) error
	Close() error
}

// =============================================================================
// DATASET LOADING
// =============================================================================

// LoadDataset snapshots everything the engine needs to price period.
// The range is widened to whole Monday..Sunday weeks, because a week is
// classified as a unit even when the period cuts through it.
// With no ids every employee is loaded. Unknown ids are skipped, so the
// engine reports them as absent.
func LoadDataset(ctx context.Context, s Store, period calendar.Period, ids ...payroll.EmployeeID) (*payroll.Dataset, error) {
	from := period.Start.WeekStart()
	to := period.End.WeekStart().AddDays(6)

	employees, err := loadEmployees(ctx, s, ids)
	if err != nil {
		return nil, err
	}

	b := payroll.NewDatasetBuilder()
	for _, e := range employees {
		b.AddEmployee(e)

		shifts, err := s.ListShifts(ctx, e.ID, from, to)
		if err != nil {
			return nil, err
		}
		for _, sh := range shifts {
			b.AddShift(sh)
		}

		targets, err := s.ListWeekTargets(ctx, e.ID, from, to)
		if err != nil {
			return nil, err
		}
		for _, t := range targets {
			b.SetWeekTarget(t.EmployeeID, t.WeekStart, t.Hours)
		}
	}

	holidays, err := s.ListHolidays(ctx, from, to)
	if err != nil {
		return nil, err
	}
	for weekStart, set := range calendar.WeekHolidays(holidays) {
		b.SetWeekHolidays(weekStart, set)
	}

	return b.Build(), nil
}

func loadEmployees(ctx context.Context, s Store, ids []payroll.EmployeeID) ([]payroll.EmployeeProfile, error) {
	if len(ids) == 0 {
		return s.ListEmployees(ctx)
	}
	out := make([]payroll.EmployeeProfile, 0, len(ids))
	for _, id := range ids {
		e, err := s.GetEmployee(ctx, id)
		if errors.Is(err, payroll.ErrEmployeeNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}
