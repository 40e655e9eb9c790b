/*
Package sqlite provides a SQLite-backed implementation of store.Store.

PURPOSE:
  Persists employees, shifts, official holidays, week targets and the rules
  document. The engine never reads SQLite directly; callers go through
  store.LoadDataset, which builds an immutable snapshot.

KEY TABLES:
  employees:    Pay profiles (decimals stored as TEXT, never REAL)
  shifts:       One row per (employee_id, date), replaced on write
  holidays:     Official holidays by date
  week_targets: Contracted-hours override per (employee_id, week_start)
  rules:        Single row with the current rules document as JSON

INDEXES:
  - shifts primary key (employee_id, date): range scans for one employee
  - idx_shifts_date: range scans across employees
  - idx_holidays_date: week holiday expansion

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead (store/postgres).

WAL MODE:
  File databases are opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time

MIGRATION:
  Versioned migrations live in migrations/*.sql and are embedded in the
  binary. New() applies pending ones through golang-migrate; Open() does
  not, so `payrollctl migrate` can report status first.

USAGE:
  s, err := sqlite.New("./data/payroll.db")
  if err != nil {
      log.Fatal(err)
  }
  defer s.Close()

SEE ALSO:
  - store/store.go: Interface definition
  - store/memory: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/calendar"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store implements store.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ store.Store = (*Store)(nil)

// New opens the database and applies pending migrations.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	s, err := Open(dbPath)
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Open opens the database without running migrations.
func Open(dbPath string) (*Store, error) {
	dsn := dbPath + "?_foreign_keys=on&_journal_mode=WAL"
	if dbPath == ":memory:" {
		dsn = dbPath + "?_foreign_keys=on"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// =============================================================================
// MIGRATIONS
// =============================================================================

// Migrate applies every pending migration.
func (s *Store) Migrate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.migrator()
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// MigrationStatus reports the applied and the latest embedded version.
func (s *Store) MigrationStatus() (*store.MigrationStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, err := s.migrator()
	if err != nil {
		return nil, err
	}
	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return nil, err
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, err
	}
	latest, err := store.LatestMigration(source)
	if err != nil {
		return nil, err
	}

	return &store.MigrationStatus{
		CurrentVersion: version,
		LatestVersion:  latest,
		Dirty:          dirty,
		Pending:        version < latest,
	}, nil
}

// migrator wraps the open handle. The migrate instance is never closed:
// closing it would close s.db.
func (s *Store) migrator() (*migrate.Migrate, error) {
	driver, err := migratesqlite.WithInstance(s.db, &migratesqlite.Config{})
	if err != nil {
		return nil, err
	}
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, err
	}
	return migrate.NewWithInstance("iofs", source, "sqlite3", driver)
}

// =============================================================================
// EMPLOYEES
// =============================================================================

// SaveEmployee inserts or updates an employee profile.
func (s *Store) SaveEmployee(ctx context.Context, e payroll.EmployeeProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := timestamp()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO employees (id, name, pay_type, weekly_hours, weekly_days, hourly_rate,
			monthly_salary, seniority_tiers, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			pay_type = excluded.pay_type,
			weekly_hours = excluded.weekly_hours,
			weekly_days = excluded.weekly_days,
			hourly_rate = excluded.hourly_rate,
			monthly_salary = excluded.monthly_salary,
			seniority_tiers = excluded.seniority_tiers,
			updated_at = excluded.updated_at
	`,
		string(e.ID), e.Name, string(e.PayType),
		e.WeeklyHours.String(), e.WeeklyDays,
		e.HourlyRate.String(), e.MonthlySalary.String(),
		e.SeniorityTiers, now, now,
	)
	if err != nil {
		return fmt.Errorf("save employee %s: %w", e.ID, err)
	}
	return nil
}

const employeeColumns = `id, name, pay_type, weekly_hours, weekly_days, hourly_rate, monthly_salary, seniority_tiers`

// GetEmployee retrieves an employee by ID.
func (s *Store) GetEmployee(ctx context.Context, id payroll.EmployeeID) (payroll.EmployeeProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, "SELECT "+employeeColumns+" FROM employees WHERE id = ?", string(id))
	e, err := scanEmployee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return payroll.EmployeeProfile{}, payroll.ErrEmployeeNotFound
	}
	if err != nil {
		return payroll.EmployeeProfile{}, fmt.Errorf("get employee %s: %w", id, err)
	}
	return e, nil
}

// ListEmployees returns all employees ordered by id.
func (s *Store) ListEmployees(ctx context.Context) ([]payroll.EmployeeProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT "+employeeColumns+" FROM employees ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	var out []payroll.EmployeeProfile
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row scanner) (payroll.EmployeeProfile, error) {
	var (
		e       payroll.EmployeeProfile
		id, pay string
	)
	err := row.Scan(&id, &e.Name, &pay, &e.WeeklyHours, &e.WeeklyDays,
		&e.HourlyRate, &e.MonthlySalary, &e.SeniorityTiers)
	if err != nil {
		return payroll.EmployeeProfile{}, err
	}
	e.ID = payroll.EmployeeID(id)
	e.PayType = payroll.PayType(pay)
	return e, nil
}

// =============================================================================
// SHIFTS
// =============================================================================

// SaveShift replaces the record for (employee, date).
func (s *Store) SaveShift(ctx context.Context, r payroll.ShiftRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO shifts (employee_id, date, type, start_time, end_time, type2, start2, end2, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(employee_id, date) DO UPDATE SET
			type = excluded.type,
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			type2 = excluded.type2,
			start2 = excluded.start2,
			end2 = excluded.end2,
			updated_at = excluded.updated_at
	`,
		string(r.EmployeeID), r.Date.String(), string(r.Type), r.Start, r.End,
		string(r.Type2), r.Start2, r.End2, timestamp(),
	)
	if err != nil {
		return fmt.Errorf("save shift %s %s: %w", r.EmployeeID, r.Date, err)
	}
	return nil
}

// DeleteShift removes the record for (employee, date).
func (s *Store) DeleteShift(ctx context.Context, id payroll.EmployeeID, day calendar.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM shifts WHERE employee_id = ? AND date = ?", string(id), day.String())
	if err != nil {
		return fmt.Errorf("delete shift: %w", err)
	}
	return requireAffected(res)
}

// ListShifts returns records in [from, to] ordered by date then employee.
func (s *Store) ListShifts(ctx context.Context, id payroll.EmployeeID, from, to calendar.Date) ([]payroll.ShiftRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT employee_id, date, type, start_time, end_time, type2, start2, end2
		FROM shifts WHERE date >= ? AND date <= ?`
	args := []any{from.String(), to.String()}
	if id != "" {
		query += " AND employee_id = ?"
		args = append(args, string(id))
	}
	query += " ORDER BY date, employee_id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list shifts: %w", err)
	}
	defer rows.Close()

	var out []payroll.ShiftRecord
	for rows.Next() {
		var (
			r                 payroll.ShiftRecord
			emp, date, t1, t2 string
		)
		if err := rows.Scan(&emp, &date, &t1, &r.Start, &r.End, &t2, &r.Start2, &r.End2); err != nil {
			return nil, err
		}
		if r.Date, err = calendar.ParseDate(date); err != nil {
			return nil, fmt.Errorf("shift %s: %w", emp, err)
		}
		r.EmployeeID = payroll.EmployeeID(emp)
		r.Type = payroll.ShiftType(t1)
		r.Type2 = payroll.ShiftType(t2)
		out = append(out, r)
	}
	return out, rows.Err()
}

// =============================================================================
// HOLIDAYS
// =============================================================================

// SaveHoliday inserts or updates a holiday. An empty ID gets a new UUID.
func (s *Store) SaveHoliday(ctx context.Context, h calendar.Holiday) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO holidays (id, date, name, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET date = excluded.date, name = excluded.name
	`, h.ID, h.Date.String(), h.Name, timestamp())
	if err != nil {
		return fmt.Errorf("save holiday: %w", err)
	}
	return nil
}

// DeleteHoliday deletes a holiday by ID.
func (s *Store) DeleteHoliday(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM holidays WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete holiday: %w", err)
	}
	return requireAffected(res)
}

// ListHolidays returns holidays in [from, to] ordered by date.
func (s *Store) ListHolidays(ctx context.Context, from, to calendar.Date) ([]calendar.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, date, name FROM holidays WHERE date >= ? AND date <= ? ORDER BY date, name",
		from.String(), to.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("list holidays: %w", err)
	}
	defer rows.Close()

	var out []calendar.Holiday
	for rows.Next() {
		var h calendar.Holiday
		var date string
		if err := rows.Scan(&h.ID, &date, &h.Name); err != nil {
			return nil, err
		}
		if h.Date, err = calendar.ParseDate(date); err != nil {
			return nil, fmt.Errorf("holiday %s: %w", h.ID, err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// =============================================================================
// WEEK TARGETS
// =============================================================================

// SaveWeekTarget replaces the override for (employee, week).
func (s *Store) SaveWeekTarget(ctx context.Context, t store.WeekTarget) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO week_targets (id, employee_id, week_start, hours, created_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(employee_id, week_start) DO UPDATE SET hours = excluded.hours
	`, t.ID, string(t.EmployeeID), t.WeekStart.WeekStart().String(), t.Hours.String(), timestamp())
	if err != nil {
		return fmt.Errorf("save week target: %w", err)
	}
	return nil
}

// ListWeekTargets returns the overrides of one employee with a week start in [from, to].
func (s *Store) ListWeekTargets(ctx context.Context, id payroll.EmployeeID, from, to calendar.Date) ([]store.WeekTarget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, week_start, hours FROM week_targets
		WHERE employee_id = ? AND week_start >= ? AND week_start <= ?
		ORDER BY week_start
	`, string(id), from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("list week targets: %w", err)
	}
	defer rows.Close()

	var out []store.WeekTarget
	for rows.Next() {
		var (
			t         store.WeekTarget
			emp, week string
			hours     decimal.Decimal
		)
		if err := rows.Scan(&t.ID, &emp, &week, &hours); err != nil {
			return nil, err
		}
		if t.WeekStart, err = calendar.ParseDate(week); err != nil {
			return nil, err
		}
		t.EmployeeID = payroll.EmployeeID(emp)
		t.Hours = hours
		out = append(out, t)
	}
	return out, rows.Err()
}

// =============================================================================
// RULES
// =============================================================================

// SaveRules replaces the rules document.
func (s *Store) SaveRules(ctx context.Context, doc []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rules (id, document, updated_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET document = excluded.document, updated_at = excluded.updated_at
	`, string(doc), timestamp())
	if err != nil {
		return fmt.Errorf("save rules: %w", err)
	}
	return nil
}

// GetRules returns store.ErrNotFound until rules are saved once.
func (s *Store) GetRules(ctx context.Context) (store.RulesRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var doc, updated string
	err := s.db.QueryRowContext(ctx, "SELECT document, updated_at FROM rules WHERE id = 1").Scan(&doc, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return store.RulesRecord{}, store.ErrNotFound
	}
	if err != nil {
		return store.RulesRecord{}, fmt.Errorf("get rules: %w", err)
	}
	at, _ := time.Parse(time.RFC3339, updated)
	return store.RulesRecord{Document: []byte(doc), UpdatedAt: at}, nil
}

// =============================================================================
// RESET
// =============================================================================

// Reset deletes all data in one transaction.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"shifts", "week_targets", "holidays", "employees", "rules"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("reset %s: %w", table, err)
		}
	}
	return tx.Commit()
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
