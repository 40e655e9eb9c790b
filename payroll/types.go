package payroll

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/calendar"
)

const (
	MinutesPerDay = 24 * 60

	// MinIntervalGap is the minimum rest between the two intervals of a split shift.
	MinIntervalGap = 180
)

var sixty = decimal.NewFromInt(60)

// minutesToHours converts whole minutes to exact decimal hours.
func minutesToHours(m int64) decimal.Decimal {
	return decimal.NewFromInt(m).Div(sixty)
}

// EmployeeID identifies an employee (the tax registration number upstream).
type EmployeeID string

// =============================================================================
// SHIFT TYPES
// =============================================================================

// ShiftType tags a schedule cell. Anything that is not one of the markers
// below is looked up in the absence catalog.
type ShiftType string

const (
	ShiftWork            ShiftType = "ΕΡΓ"
	ShiftTelework        ShiftType = "ΤΗΛ"
	ShiftRest            ShiftType = "AN"
	ShiftNonWorking      ShiftType = "ΜΕ"
	ShiftNonWorkingLatin ShiftType = "ME"
)

// IsWorking reports whether the type carries worked intervals.
func (t ShiftType) IsWorking() bool {
	switch ShiftType(strings.TrimSpace(string(t))) {
	case ShiftWork, ShiftTelework:
		return true
	}
	return false
}

func (t ShiftType) isMarker() bool {
	switch ShiftType(strings.TrimSpace(string(t))) {
	case ShiftWork, ShiftTelework, ShiftRest, ShiftNonWorking, ShiftNonWorkingLatin:
		return true
	}
	return false
}

// AbsenceType is an entry of the absence catalog.
type AbsenceType struct {
	Code string
	Name string
	Paid bool
}

// =============================================================================
// SHIFT RECORD
// =============================================================================

// ShiftRecord is one employee's schedule cell for one calendar day.
// Working types carry one interval, optionally two.
type ShiftRecord struct {
	EmployeeID EmployeeID
	Date       calendar.Date
	Type       ShiftType
	Start      string
	End        string
	Type2      ShiftType
	Start2     string
	End2       string
}

// Interval is one worked clock range. End <= Start crosses midnight.
type Interval struct {
	Origin ShiftType
	Start  string
	End    string
}

func (s ShiftRecord) IsWorking() bool { return s.Type.IsWorking() }

// HasSecondInterval reports whether the split-shift interval is filled in.
func (s ShiftRecord) HasSecondInterval() bool {
	return s.Start2 != "" && s.End2 != ""
}

// Intervals returns the worked intervals of a working record, first interval first.
// The second interval inherits the first type when Type2 is empty.
func (s ShiftRecord) Intervals() []Interval {
	if !s.IsWorking() {
		return nil
	}
	var out []Interval
	if s.Start != "" && s.End != "" {
		out = append(out, Interval{Origin: s.Type, Start: s.Start, End: s.End})
	}
	if s.HasSecondInterval() {
		origin := s.Type2
		if origin == "" {
			origin = s.Type
		}
		out = append(out, Interval{Origin: origin, Start: s.Start2, End: s.End2})
	}
	return out
}

// Validate applies the scheduling layer's write-time checks. The engine itself
// never calls it: it tolerates malformed records by producing no slices.
func (s ShiftRecord) Validate(rules RuleConfig) error {
	invalid := func(field string, err error) error {
		return &ShiftValidationError{EmployeeID: s.EmployeeID, Date: s.Date, Field: field, Err: err}
	}

	if s.EmployeeID == "" {
		return invalid("employeeId", ErrMissingEmployeeID)
	}
	if s.Date.IsZero() {
		return invalid("date", calendar.ErrInvalidDate)
	}
	if !s.Type.isMarker() {
		if _, ok := rules.Absence(string(s.Type)); !ok {
			return invalid("type", fmt.Errorf("%w: %q", ErrUnknownShiftType, s.Type))
		}
	}
	if !s.IsWorking() {
		return nil
	}

	start, err := ParseClock(s.Start)
	if err != nil {
		return invalid("start", err)
	}
	end, err := ParseClock(s.End)
	if err != nil {
		return invalid("end", err)
	}
	if start == end {
		return invalid("end", ErrEmptyInterval)
	}

	if s.Start2 == "" && s.End2 == "" {
		return nil
	}
	if s.Type2 != "" && !s.Type2.IsWorking() {
		return invalid("type2", fmt.Errorf("%w: %q", ErrUnknownShiftType, s.Type2))
	}
	start2, err := ParseClock(s.Start2)
	if err != nil {
		return invalid("start2", err)
	}
	end2, err := ParseClock(s.End2)
	if err != nil {
		return invalid("end2", err)
	}
	if start2 == end2 {
		return invalid("end2", ErrEmptyInterval)
	}
	if start2-end < MinIntervalGap {
		return invalid("start2", fmt.Errorf("%w: %d minutes, need %d", ErrIntervalGap, start2-end, MinIntervalGap))
	}
	return nil
}

// =============================================================================
// EMPLOYEE PROFILE
// =============================================================================

type PayType string

const (
	PayHourly  PayType = "hourly"
	PayMonthly PayType = "monthly"
)

// EmployeeProfile is the immutable pay configuration of one employee.
type EmployeeProfile struct {
	ID             EmployeeID
	Name           string
	PayType        PayType
	WeeklyHours    decimal.Decimal
	WeeklyDays     int
	HourlyRate     decimal.Decimal
	MonthlySalary  decimal.Decimal
	SeniorityTiers int
}

func (e EmployeeProfile) IsMonthly() bool { return e.PayType == PayMonthly }

// ContractHours is the contracted weekly hours, 40 when unset.
func (e EmployeeProfile) ContractHours() decimal.Decimal {
	if e.WeeklyHours.IsPositive() {
		return e.WeeklyHours
	}
	return decimal.NewFromInt(40)
}

// ContractDays is the contracted working days per week, 5 when unset.
func (e EmployeeProfile) ContractDays() int {
	if e.WeeklyDays > 0 {
		return e.WeeklyDays
	}
	return 5
}

// =============================================================================
// TIME SLICE
// =============================================================================

// TimeSlice is 15 minutes of worked time (shorter for the tail of an interval).
//
// Day is the calendar day the minute falls on; SourceDay is the day the shift
// was scheduled on. Holiday flags always follow SourceDay.
type TimeSlice struct {
	EmployeeID      EmployeeID
	Day             calendar.Date
	SourceDay       calendar.Date
	Minute          int
	Minutes         int
	Night           bool
	Holiday         bool
	OfficialHoliday bool
	Origin          ShiftType
	Category        Category
}

func (s TimeSlice) Hours() decimal.Decimal { return minutesToHours(int64(s.Minutes)) }

// Sunday reports a plain Sunday: a holiday-flagged slice that is not an official holiday.
func (s TimeSlice) Sunday() bool { return s.Holiday && !s.OfficialHoliday }

// DayType resolves the slice's day type. Official holidays win over Sundays.
func (s TimeSlice) DayType() DayType {
	switch {
	case s.OfficialHoliday:
		return OfficialHoliday
	case s.Holiday:
		return Sunday
	}
	return Workday
}

// Clock renders the slice start as "HH:MM".
func (s TimeSlice) Clock() string {
	return FormatClock(s.Minute)
}

// before orders slices by absolute time: calendar day, then minute of day.
func (s TimeSlice) before(o TimeSlice) bool {
	if c := s.Day.Compare(o.Day); c != 0 {
		return c < 0
	}
	return s.Minute < o.Minute
}
