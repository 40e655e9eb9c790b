package payroll

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/calendar"
)

// =============================================================================
// DATASET - Immutable snapshot the engine reads
// =============================================================================

type shiftKey struct {
	employee EmployeeID
	day      calendar.Date
}

type targetKey struct {
	employee  EmployeeID
	weekStart calendar.Date
}

// Dataset is a read-only Lookup. Build one with DatasetBuilder; once built it
// is never modified, so any number of goroutines may share it.
type Dataset struct {
	employees    map[EmployeeID]EmployeeProfile
	shifts       map[shiftKey]ShiftRecord
	weekHolidays map[calendar.Date]calendar.WeekdaySet
	weekTargets  map[targetKey]decimal.Decimal
}

func (d *Dataset) Employee(id EmployeeID) (EmployeeProfile, bool) {
	e, ok := d.employees[id]
	return e, ok
}

func (d *Dataset) Shift(id EmployeeID, day calendar.Date) (ShiftRecord, bool) {
	s, ok := d.shifts[shiftKey{id, day}]
	return s, ok
}

func (d *Dataset) WeekHolidays(weekStart calendar.Date) calendar.WeekdaySet {
	return d.weekHolidays[weekStart]
}

func (d *Dataset) WeekTarget(id EmployeeID, weekStart calendar.Date) (decimal.Decimal, bool) {
	t, ok := d.weekTargets[targetKey{id, weekStart}]
	return t, ok
}

// Employees lists every profile ordered by id.
func (d *Dataset) Employees() []EmployeeProfile {
	out := make([]EmployeeProfile, 0, len(d.employees))
	for _, e := range d.employees {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// DatasetBuilder collects records for a Dataset. Later records for the same
// key replace earlier ones.
type DatasetBuilder struct {
	ds *Dataset
}

func NewDatasetBuilder() *DatasetBuilder {
	return &DatasetBuilder{ds: newDataset()}
}

func newDataset() *Dataset {
	return &Dataset{
		employees:    make(map[EmployeeID]EmployeeProfile),
		shifts:       make(map[shiftKey]ShiftRecord),
		weekHolidays: make(map[calendar.Date]calendar.WeekdaySet),
		weekTargets:  make(map[targetKey]decimal.Decimal),
	}
}

func (b *DatasetBuilder) AddEmployee(e EmployeeProfile) *DatasetBuilder {
	b.ds.employees[e.ID] = e
	return b
}

func (b *DatasetBuilder) AddShift(s ShiftRecord) *DatasetBuilder {
	b.ds.shifts[shiftKey{s.EmployeeID, s.Date}] = s
	return b
}

// AddHoliday flags one day as an official holiday.
func (b *DatasetBuilder) AddHoliday(day calendar.Date) *DatasetBuilder {
	wk := day.WeekStart()
	b.ds.weekHolidays[wk] = b.ds.weekHolidays[wk].With(day.WeekdayIndex())
	return b
}

// SetWeekHolidays replaces the official holidays of one week.
func (b *DatasetBuilder) SetWeekHolidays(weekStart calendar.Date, set calendar.WeekdaySet) *DatasetBuilder {
	b.ds.weekHolidays[weekStart.WeekStart()] = set
	return b
}

// SetWeekTarget overrides the contracted hours of one employee-week.
func (b *DatasetBuilder) SetWeekTarget(id EmployeeID, weekStart calendar.Date, hours decimal.Decimal) *DatasetBuilder {
	b.ds.weekTargets[targetKey{id, weekStart.WeekStart()}] = hours
	return b
}

// Build returns the snapshot and resets the builder.
func (b *DatasetBuilder) Build() *Dataset {
	ds := b.ds
	b.ds = newDataset()
	return ds
}
