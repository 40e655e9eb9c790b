// Package memory provides an in-memory store.Store.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/warp/payroll-engine/calendar"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/store"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	employees map[payroll.EmployeeID]payroll.EmployeeProfile
	shifts    map[shiftKey]payroll.ShiftRecord
	holidays  map[string]calendar.Holiday
	targets   map[shiftKey]store.WeekTarget
	rules     *store.RulesRecord
}

type shiftKey struct {
	EmployeeID payroll.EmployeeID
	Day        calendar.Date
}

var _ store.Store = (*Memory)(nil)

func New() *Memory {
	m := &Memory{}
	m.resetLocked()
	return m
}

func (m *Memory) resetLocked() {
	m.employees = make(map[payroll.EmployeeID]payroll.EmployeeProfile)
	m.shifts = make(map[shiftKey]payroll.ShiftRecord)
	m.holidays = make(map[string]calendar.Holiday)
	m.targets = make(map[shiftKey]store.WeekTarget)
	m.rules = nil
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func (m *Memory) SaveEmployee(_ context.Context, e payroll.EmployeeProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[e.ID] = e
	return nil
}

func (m *Memory) GetEmployee(_ context.Context, id payroll.EmployeeID) (payroll.EmployeeProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.employees[id]
	if !ok {
		return payroll.EmployeeProfile{}, payroll.ErrEmployeeNotFound
	}
	return e, nil
}

func (m *Memory) ListEmployees(_ context.Context) ([]payroll.EmployeeProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]payroll.EmployeeProfile, 0, len(m.employees))
	for _, e := range m.employees {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b payroll.EmployeeProfile) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

// =============================================================================
// SHIFTS
// =============================================================================

func (m *Memory) SaveShift(_ context.Context, s payroll.ShiftRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shifts[shiftKey{s.EmployeeID, s.Date}] = s
	return nil
}

func (m *Memory) DeleteShift(_ context.Context, id payroll.EmployeeID, day calendar.Date) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := shiftKey{id, day}
	if _, ok := m.shifts[k]; !ok {
		return store.ErrNotFound
	}
	delete(m.shifts, k)
	return nil
}

func (m *Memory) ListShifts(_ context.Context, id payroll.EmployeeID, from, to calendar.Date) ([]payroll.ShiftRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	period := calendar.Period{Start: from, End: to}
	var out []payroll.ShiftRecord
	for k, s := range m.shifts {
		if (id == "" || k.EmployeeID == id) && period.Contains(k.Day) {
			out = append(out, s)
		}
	}
	slices.SortFunc(out, func(a, b payroll.ShiftRecord) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.EmployeeID, b.EmployeeID)
	})
	return out, nil
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func (m *Memory) SaveHoliday(_ context.Context, h calendar.Holiday) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.holidays[h.ID] = h
	return nil
}

func (m *Memory) DeleteHoliday(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.holidays[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.holidays, id)
	return nil
}

func (m *Memory) ListHolidays(_ context.Context, from, to calendar.Date) ([]calendar.Holiday, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	period := calendar.Period{Start: from, End: to}
	var out []calendar.Holiday
	for _, h := range m.holidays {
		if period.Contains(h.Date) {
			out = append(out, h)
		}
	}
	slices.SortFunc(out, func(a, b calendar.Holiday) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return out, nil
}

// =============================================================================
// WEEK TARGETS
// =============================================================================

func (m *Memory) SaveWeekTarget(_ context.Context, t store.WeekTarget) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.WeekStart = t.WeekStart.WeekStart()
	m.targets[shiftKey{t.EmployeeID, t.WeekStart}] = t
	return nil
}

func (m *Memory) ListWeekTargets(_ context.Context, id payroll.EmployeeID, from, to calendar.Date) ([]store.WeekTarget, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	period := calendar.Period{Start: from, End: to}
	var out []store.WeekTarget
	for k, t := range m.targets {
		if k.EmployeeID == id && period.Contains(k.Day) {
			out = append(out, t)
		}
	}
	slices.SortFunc(out, func(a, b store.WeekTarget) int { return a.WeekStart.Compare(b.WeekStart) })
	return out, nil
}

// =============================================================================
// RULES
// =============================================================================

func (m *Memory) SaveRules(_ context.Context, doc []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = &store.RulesRecord{Document: slices.Clone(doc), UpdatedAt: time.Now().UTC()}
	return nil
}

func (m *Memory) GetRules(_ context.Context) (store.RulesRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.rules == nil {
		return store.RulesRecord{}, store.ErrNotFound
	}
	rec := *m.rules
	rec.Document = slices.Clone(rec.Document)
	return rec, nil
}

// =============================================================================
// LIFECYCLE
// =============================================================================

func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetLocked()
	return nil
}

func (m *Memory) Close() error { return nil }
