// Package postgres provides a PostgreSQL store.Store on top of pgxpool.
//
// Decimals travel as text in both directions so NUMERIC columns keep their
// exact value. Dates are DATE columns exchanged as time.Time at UTC midnight.
// The schema lives in migrations/ and is applied by New and Migrate.
package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/calendar"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store implements store.Store using a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

var _ store.Store = (*Store)(nil)

// Connect opens a pool for databaseURL.
func Connect(ctx context.Context, databaseURL string) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	return &Store{pool: pool}, nil
}

// New applies pending migrations and connects.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	if _, err := Migrate(databaseURL); err != nil {
		return nil, err
	}
	return Connect(ctx, databaseURL)
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Ping checks connectivity, for health checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// =============================================================================
// MIGRATIONS
// =============================================================================

// ErrMigrationURL is returned when a DSN cannot be handed to golang-migrate.
// Keyword/value DSNs work for the pool but not for migrations.
var ErrMigrationURL = errors.New("migrations need a postgres:// URL")

// Migrate applies every pending embedded migration to databaseURL and
// reports the resulting schema version.
func Migrate(databaseURL string) (*store.MigrationStatus, error) {
	m, err := newMigrator(databaseURL)
	if err != nil {
		return nil, err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return nil, fmt.Errorf("migrate up: %w", err)
	}
	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return nil, err
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, err
	}
	latest, err := store.LatestMigration(src)
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

func newMigrator(databaseURL string) (*migrate.Migrate, error) {
	target, err := migrationURL(databaseURL)
	if err != nil {
		return nil, err
	}
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, err
	}
	return migrate.NewWithSourceInstance("iofs", src, target)
}

// migrationURL rewrites a postgres:// URL to the pgx5:// scheme the
// golang-migrate pgx driver is registered under.
func migrationURL(databaseURL string) (string, error) {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMigrationURL, err)
	}
	switch u.Scheme {
	case "postgres", "postgresql":
		u.Scheme = "pgx5"
		return u.String(), nil
	case "pgx5":
		return databaseURL, nil
	}
	return "", ErrMigrationURL
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func (s *Store) SaveEmployee(ctx context.Context, e payroll.EmployeeProfile) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO employees (id, name, pay_type, weekly_hours, weekly_days, hourly_rate, monthly_salary, seniority_tiers)
		VALUES ($1, $2, $3, $4::numeric, $5, $6::numeric, $7::numeric, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			pay_type = EXCLUDED.pay_type,
			weekly_hours = EXCLUDED.weekly_hours,
			weekly_days = EXCLUDED.weekly_days,
			hourly_rate = EXCLUDED.hourly_rate,
			monthly_salary = EXCLUDED.monthly_salary,
			seniority_tiers = EXCLUDED.seniority_tiers,
			updated_at = now()`,
		string(e.ID), e.Name, string(e.PayType),
		e.WeeklyHours.String(), e.WeeklyDays,
		e.HourlyRate.String(), e.MonthlySalary.String(), e.SeniorityTiers,
	)
	if err != nil {
		return fmt.Errorf("save employee %s: %w", e.ID, err)
	}
	return nil
}

const employeeColumns = `id, name, pay_type, weekly_hours::text, weekly_days, hourly_rate::text, monthly_salary::text, seniority_tiers`

func (s *Store) GetEmployee(ctx context.Context, id payroll.EmployeeID) (payroll.EmployeeProfile, error) {
	row := s.pool.QueryRow(ctx, "SELECT "+employeeColumns+" FROM employees WHERE id = $1", string(id))
	e, err := scanEmployee(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return payroll.EmployeeProfile{}, payroll.ErrEmployeeNotFound
	}
	if err != nil {
		return payroll.EmployeeProfile{}, fmt.Errorf("get employee %s: %w", id, err)
	}
	return e, nil
}

func (s *Store) ListEmployees(ctx context.Context) ([]payroll.EmployeeProfile, error) {
	rows, err := s.pool.Query(ctx, "SELECT "+employeeColumns+" FROM employees ORDER BY id")
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

func scanEmployee(row pgx.Row) (payroll.EmployeeProfile, error) {
	var (
		e                   payroll.EmployeeProfile
		id, pay             string
		hours, rate, salary string
	)
	if err := row.Scan(&id, &e.Name, &pay, &hours, &e.WeeklyDays, &rate, &salary, &e.SeniorityTiers); err != nil {
		return payroll.EmployeeProfile{}, err
	}
	var err error
	if e.WeeklyHours, err = decimal.NewFromString(hours); err != nil {
		return payroll.EmployeeProfile{}, err
	}
	if e.HourlyRate, err = decimal.NewFromString(rate); err != nil {
		return payroll.EmployeeProfile{}, err
	}
	if e.MonthlySalary, err = decimal.NewFromString(salary); err != nil {
		return payroll.EmployeeProfile{}, err
	}
	e.ID = payroll.EmployeeID(id)
	e.PayType = payroll.PayType(pay)
	return e, nil
}

// =============================================================================
// SHIFTS
// =============================================================================

func (s *Store) SaveShift(ctx context.Context, r payroll.ShiftRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO shifts (employee_id, date, type, start_time, end_time, type2, start2, end2)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (employee_id, date) DO UPDATE SET
			type = EXCLUDED.type,
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			type2 = EXCLUDED.type2,
			start2 = EXCLUDED.start2,
			end2 = EXCLUDED.end2,
			updated_at = now()`,
		string(r.EmployeeID), r.Date.Time(), string(r.Type), r.Start, r.End,
		string(r.Type2), r.Start2, r.End2,
	)
	if err != nil {
		return fmt.Errorf("save shift %s %s: %w", r.EmployeeID, r.Date, err)
	}
	return nil
}

func (s *Store) DeleteShift(ctx context.Context, id payroll.EmployeeID, day calendar.Date) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM shifts WHERE employee_id = $1 AND date = $2", string(id), day.Time())
	if err != nil {
		return fmt.Errorf("delete shift: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ListShifts(ctx context.Context, id payroll.EmployeeID, from, to calendar.Date) ([]payroll.ShiftRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT employee_id, date, type, start_time, end_time, type2, start2, end2
		FROM shifts
		WHERE date BETWEEN $1 AND $2 AND ($3 = '' OR employee_id = $3)
		ORDER BY date, employee_id`,
		from.Time(), to.Time(), string(id),
	)
	if err != nil {
		return nil, fmt.Errorf("list shifts: %w", err)
	}
	defer rows.Close()

	var out []payroll.ShiftRecord
	for rows.Next() {
		var (
			r           payroll.ShiftRecord
			emp, t1, t2 string
			day         time.Time
		)
		if err := rows.Scan(&emp, &day, &t1, &r.Start, &r.End, &t2, &r.Start2, &r.End2); err != nil {
			return nil, err
		}
		r.EmployeeID = payroll.EmployeeID(emp)
		r.Date = calendar.DateOf(day)
		r.Type = payroll.ShiftType(t1)
		r.Type2 = payroll.ShiftType(t2)
		out = append(out, r)
	}
	return out, rows.Err()
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func (s *Store) SaveHoliday(ctx context.Context, h calendar.Holiday) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO holidays (id, date, name) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET date = EXCLUDED.date, name = EXCLUDED.name`,
		h.ID, h.Date.Time(), h.Name,
	)
	if err != nil {
		return fmt.Errorf("save holiday: %w", err)
	}
	return nil
}

func (s *Store) DeleteHoliday(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM holidays WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete holiday: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ListHolidays(ctx context.Context, from, to calendar.Date) ([]calendar.Holiday, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT id, date, name FROM holidays WHERE date BETWEEN $1 AND $2 ORDER BY date, name",
		from.Time(), to.Time(),
	)
	if err != nil {
		return nil, fmt.Errorf("list holidays: %w", err)
	}
	defer rows.Close()

	var out []calendar.Holiday
	for rows.Next() {
		var h calendar.Holiday
		var day time.Time
		if err := rows.Scan(&h.ID, &day, &h.Name); err != nil {
			return nil, err
		}
		h.Date = calendar.DateOf(day)
		out = append(out, h)
	}
	return out, rows.Err()
}

// =============================================================================
// WEEK TARGETS
// =============================================================================

func (s *Store) SaveWeekTarget(ctx context.Context, t store.WeekTarget) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO week_targets (id, employee_id, week_start, hours) VALUES ($1, $2, $3, $4::numeric)
		ON CONFLICT (employee_id, week_start) DO UPDATE SET hours = EXCLUDED.hours`,
		t.ID, string(t.EmployeeID), t.WeekStart.WeekStart().Time(), t.Hours.String(),
	)
	if err != nil {
		return fmt.Errorf("save week target: %w", err)
	}
	return nil
}

func (s *Store) ListWeekTargets(ctx context.Context, id payroll.EmployeeID, from, to calendar.Date) ([]store.WeekTarget, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, employee_id, week_start, hours::text FROM week_targets
		WHERE employee_id = $1 AND week_start BETWEEN $2 AND $3
		ORDER BY week_start`,
		string(id), from.Time(), to.Time(),
	)
	if err != nil {
		return nil, fmt.Errorf("list week targets: %w", err)
	}
	defer rows.Close()

	var out []store.WeekTarget
	for rows.Next() {
		var (
			t          store.WeekTarget
			emp, hours string
			week       time.Time
		)
		if err := rows.Scan(&t.ID, &emp, &week, &hours); err != nil {
			return nil, err
		}
		if t.Hours, err = decimal.NewFromString(hours); err != nil {
			return nil, err
		}
		t.EmployeeID = payroll.EmployeeID(emp)
		t.WeekStart = calendar.DateOf(week)
		out = append(out, t)
	}
	return out, rows.Err()
}

// =============================================================================
// RULES
// =============================================================================

func (s *Store) SaveRules(ctx context.Context, doc []byte) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO rules (id, document, updated_at) VALUES (1, $1::jsonb, now())
		ON CONFLICT (id) DO UPDATE SET document = EXCLUDED.document, updated_at = now()`,
		string(doc),
	)
	if err != nil {
		return fmt.Errorf("save rules: %w", err)
	}
	return nil
}

func (s *Store) GetRules(ctx context.Context) (store.RulesRecord, error) {
	var (
		doc string
		at  time.Time
	)
	err := s.pool.QueryRow(ctx, "SELECT document::text, updated_at FROM rules WHERE id = 1").Scan(&doc, &at)
	if errors.Is(err, pgx.ErrNoRows) {
		return store.RulesRecord{}, store.ErrNotFound
	}
	if err != nil {
		return store.RulesRecord{}, fmt.Errorf("get rules: %w", err)
	}
	return store.RulesRecord{Document: []byte(doc), UpdatedAt: at.UTC()}, nil
}

// Reset truncates every table in one statement.
func (s *Store) Reset(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "TRUNCATE shifts, week_targets, holidays, employees, rules")
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	return nil
}
