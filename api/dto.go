/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. The engine works in
  exact decimals; responses are rounded here and nowhere else.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Employee:
    EmployeeDTO, CreateEmployeeRequest

  Schedule:
    ShiftDTO, ShiftRequest, WeekTargetRequest, WeekTargetDTO

  Engine output:
    DayMetricsDTO, SliceDTO, WeekSlicesDTO, OverviewDTO, BreakdownDTO

  Holidays:
    HolidayDTO, CreateHolidayRequest

  Scenarios:
    ScenarioDTO, LoadScenarioRequest

ROUNDING:
  Hours and amounts: 2 decimals
  Base hourly rate:  4 decimals

VALIDATION:
  Validation is done in handlers (and the payroll package), not in DTOs.
  DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - config/rules.go: RulesDocument, used as-is for /api/rules
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/calendar"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/store"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	PayType        string  `json:"pay_type"`
	WeeklyHours    float64 `json:"weekly_hours"`
	WeeklyDays     int     `json:"weekly_days"`
	HourlyRate     float64 `json:"hourly_rate,omitempty"`
	MonthlySalary  float64 `json:"monthly_salary,omitempty"`
	SeniorityTiers int     `json:"seniority_tiers"`
	BaseHourlyRate float64 `json:"base_hourly_rate"`
}

// CreateEmployeeRequest is the body for creating or replacing an employee.
// Money and hours accept JSON numbers or strings.
type CreateEmployeeRequest struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	PayType        string          `json:"pay_type"`
	WeeklyHours    decimal.Decimal `json:"weekly_hours"`
	WeeklyDays     int             `json:"weekly_days"`
	HourlyRate     decimal.Decimal `json:"hourly_rate"`
	MonthlySalary  decimal.Decimal `json:"monthly_salary"`
	SeniorityTiers int             `json:"seniority_tiers"`
}

func (r CreateEmployeeRequest) profile() payroll.EmployeeProfile {
	return payroll.EmployeeProfile{
		ID:             payroll.EmployeeID(r.ID),
		Name:           r.Name,
		PayType:        payroll.PayType(r.PayType),
		WeeklyHours:    r.WeeklyHours,
		WeeklyDays:     r.WeeklyDays,
		HourlyRate:     r.HourlyRate,
		MonthlySalary:  r.MonthlySalary,
		SeniorityTiers: r.SeniorityTiers,
	}
}

func toEmployeeDTO(e payroll.EmployeeProfile, rules payroll.RuleConfig) EmployeeDTO {
	return EmployeeDTO{
		ID:             string(e.ID),
		Name:           e.Name,
		PayType:        string(e.PayType),
		WeeklyHours:    round2(e.WeeklyHours),
		WeeklyDays:     e.WeeklyDays,
		HourlyRate:     round2(e.HourlyRate),
		MonthlySalary:  round2(e.MonthlySalary),
		SeniorityTiers: e.SeniorityTiers,
		BaseHourlyRate: payroll.BaseHourlyRate(e, rules).Round(4).InexactFloat64(),
	}
}

// =============================================================================
// SCHEDULE
// =============================================================================

// ShiftDTO is one schedule cell.
type ShiftDTO struct {
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date"`
	Type       string `json:"type"`
	Start      string `json:"start,omitempty"`
	End        string `json:"end,omitempty"`
	Type2      string `json:"type2,omitempty"`
	Start2     string `json:"start2,omitempty"`
	End2       string `json:"end2,omitempty"`
	Kind       string `json:"kind"`
	Intervals  string `json:"intervals"`
}

// ShiftRequest is the body of PUT /api/employees/{id}/shifts/{date}.
type ShiftRequest struct {
	Type   string `json:"type"`
	Start  string `json:"start"`
	End    string `json:"end"`
	Type2  string `json:"type2"`
	Start2 string `json:"start2"`
	End2   string `json:"end2"`
}

func (r ShiftRequest) record(id payroll.EmployeeID, day calendar.Date) payroll.ShiftRecord {
	return payroll.ShiftRecord{
		EmployeeID: id,
		Date:       day,
		Type:       payroll.ShiftType(r.Type),
		Start:      r.Start,
		End:        r.End,
		Type2:      payroll.ShiftType(r.Type2),
		Start2:     r.Start2,
		End2:       r.End2,
	}
}

func toShiftDTO(s payroll.ShiftRecord, rules payroll.RuleConfig) ShiftDTO {
	return ShiftDTO{
		EmployeeID: string(s.EmployeeID),
		Date:       s.Date.String(),
		Type:       string(s.Type),
		Start:      s.Start,
		End:        s.End,
		Type2:      string(s.Type2),
		Start2:     s.Start2,
		End2:       s.End2,
		Kind:       string(payroll.ClassifyDayKind([]payroll.ShiftRecord{s}, rules)),
		Intervals:  payroll.IntervalText(s),
	}
}

// WeekTargetRequest is the body of PUT /api/employees/{id}/weeks/{date}/target.
type WeekTargetRequest struct {
	Hours decimal.Decimal `json:"hours"`
}

// WeekTargetDTO is a stored week target override.
type WeekTargetDTO struct {
	EmployeeID string  `json:"employee_id"`
	WeekStart  string  `json:"week_start"`
	Hours      float64 `json:"hours"`
}

func toWeekTargetDTO(t store.WeekTarget) WeekTargetDTO {
	return WeekTargetDTO{
		EmployeeID: string(t.EmployeeID),
		WeekStart:  t.WeekStart.String(),
		Hours:      round2(t.Hours),
	}
}

// =============================================================================
// ENGINE OUTPUT
// =============================================================================

// DayMetricsDTO is the bucket breakdown of one employee-day.
type DayMetricsDTO struct {
	EmployeeID     string             `json:"employee_id"`
	Date           string             `json:"date"`
	Total          float64            `json:"total_hours"`
	Night          float64            `json:"night_hours"`
	Additional     float64            `json:"additional_hours"`
	Ye             float64            `json:"ye_hours"`
	Yp             float64            `json:"yp_hours"`
	Illegal        float64            `json:"illegal_hours"`
	HolidayPremium float64            `json:"holiday_premium_hours"`
	Buckets        map[string]float64 `json:"buckets"`
}

func toDayMetricsDTO(m payroll.DayMetrics) DayMetricsDTO {
	return DayMetricsDTO{
		EmployeeID:     string(m.EmployeeID),
		Date:           m.Date.String(),
		Total:          round2(m.Total),
		Night:          round2(m.Night),
		Additional:     round2(m.Additional),
		Ye:             round2(m.Ye),
		Yp:             round2(m.Yp),
		Illegal:        round2(m.Illegal),
		HolidayPremium: round2(m.HolidayPremium),
		Buckets:        bucketMap(m.Buckets.NonZeroHours()),
	}
}

// SliceDTO is one classified time slice.
type SliceDTO struct {
	Day             string `json:"day"`
	SourceDay       string `json:"source_day"`
	Time            string `json:"time"`
	Minutes         int    `json:"minutes"`
	Night           bool   `json:"night"`
	Holiday         bool   `json:"holiday"`
	OfficialHoliday bool   `json:"official_holiday"`
	Origin          string `json:"origin"`
	Category        string `json:"category"`
	Bucket          string `json:"bucket"`
}

// WeekSlicesDTO is the classified slice list of one week.
type WeekSlicesDTO struct {
	EmployeeID  string     `json:"employee_id"`
	WeekStart   string     `json:"week_start"`
	TargetHours float64    `json:"target_hours"`
	Slices      []SliceDTO `json:"slices"`
}

func toSliceDTO(s payroll.TimeSlice) SliceDTO {
	return SliceDTO{
		Day:             s.Day.String(),
		SourceDay:       s.SourceDay.String(),
		Time:            payroll.FormatClock(s.Minute),
		Minutes:         s.Minutes,
		Night:           s.Night,
		Holiday:         s.Holiday,
		OfficialHoliday: s.OfficialHoliday,
		Origin:          string(s.Origin),
		Category:        s.Category.String(),
		Bucket:          payroll.KeyFor(s).String(),
	}
}

// OverviewDTO is the monthly payroll overview of one employee.
type OverviewDTO struct {
	EmployeeID        string             `json:"employee_id"`
	Month             string             `json:"month"`
	PayType           string             `json:"pay_type"`
	BaseHourlyRate    float64            `json:"base_hourly_rate"`
	SalaryTotal       float64            `json:"salary_total"`
	ExtraTotal        float64            `json:"extra_total"`
	GrandTotal        float64            `json:"grand_total"`
	UnpaidAbsenceDays int                `json:"unpaid_absence_days"`
	Hours             map[string]float64 `json:"hours"`
	Amounts           map[string]float64 `json:"amounts"`
}

func toOverviewDTO(o payroll.PayrollOverview) OverviewDTO {
	r := o.Rounded()
	return OverviewDTO{
		EmployeeID:        string(r.EmployeeID),
		Month:             r.Month.String(),
		PayType:           string(r.PayType),
		BaseHourlyRate:    r.BaseHourlyRate.InexactFloat64(),
		SalaryTotal:       r.SalaryTotal.InexactFloat64(),
		ExtraTotal:        r.ExtraTotal.InexactFloat64(),
		GrandTotal:        r.GrandTotal.InexactFloat64(),
		UnpaidAbsenceDays: r.UnpaidAbsenceDays,
		Hours:             bucketMap(r.Hours),
		Amounts:           bucketMap(r.Amounts),
	}
}

// BreakdownDTO is the week-grouped daily breakdown of one month.
type BreakdownDTO struct {
	EmployeeID     string             `json:"employee_id"`
	Month          string             `json:"month"`
	BaseHourlyRate float64            `json:"base_hourly_rate"`
	Weeks          []BreakdownWeekDTO `json:"weeks"`
	Hours          map[string]float64 `json:"hours"`
	Amounts        map[string]float64 `json:"amounts"`
}

// BreakdownWeekDTO is the in-month part of one week with its subtotal.
type BreakdownWeekDTO struct {
	WeekStart string             `json:"week_start"`
	Days      []BreakdownDayDTO  `json:"days"`
	Hours     map[string]float64 `json:"hours"`
	Amounts   map[string]float64 `json:"amounts"`
}

// BreakdownDayDTO is one row of the breakdown.
type BreakdownDayDTO struct {
	Date      string             `json:"date"`
	Kind      string             `json:"kind"`
	Intervals string             `json:"intervals"`
	Hours     map[string]float64 `json:"hours"`
	Amounts   map[string]float64 `json:"amounts"`
}

func toBreakdownDTO(b payroll.MonthlyBreakdown, rules payroll.RuleConfig) BreakdownDTO {
	rate := b.BaseHourlyRate
	out := BreakdownDTO{
		EmployeeID:     string(b.EmployeeID),
		Month:          b.Month.String(),
		BaseHourlyRate: rate.Round(4).InexactFloat64(),
		Weeks:          make([]BreakdownWeekDTO, 0, len(b.Weeks)),
		Hours:          bucketMap(b.Buckets.NonZeroHours()),
		Amounts:        bucketMap(b.Buckets.Amounts(rate, rules)),
	}
	for _, wk := range b.Weeks {
		w := BreakdownWeekDTO{
			WeekStart: wk.WeekStart.String(),
			Days:      make([]BreakdownDayDTO, 0, len(wk.Days)),
			Hours:     bucketMap(wk.Buckets.NonZeroHours()),
			Amounts:   bucketMap(wk.Buckets.Amounts(rate, rules)),
		}
		for _, d := range wk.Days {
			w.Days = append(w.Days, BreakdownDayDTO{
				Date:      d.Date.String(),
				Kind:      string(d.Kind),
				Intervals: d.Intervals,
				Hours:     bucketMap(d.Metrics.Buckets.NonZeroHours()),
				Amounts:   bucketMap(d.Metrics.Buckets.Amounts(rate, rules)),
			})
		}
		out.Weeks = append(out.Weeks, w)
	}
	return out
}

// =============================================================================
// HOLIDAYS
// =============================================================================

// HolidayDTO is an official holiday.
type HolidayDTO struct {
	ID   string `json:"id"`
	Date string `json:"date"`
	Name string `json:"name"`
}

// CreateHolidayRequest is the body of POST /api/holidays.
type CreateHolidayRequest struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

func toHolidayDTO(h calendar.Holiday) HolidayDTO {
	return HolidayDTO{ID: h.ID, Date: h.Date.String(), Name: h.Name}
}

// =============================================================================
// SCENARIOS
// =============================================================================

// ScenarioDTO describes a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// LoadScenarioRequest is the body of POST /api/scenarios/load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// ROUNDING
// =============================================================================

func round2(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// bucketMap renders bucket values keyed by bucket name, rounded to cents.
// Values that round to zero are dropped.
func bucketMap(m map[payroll.BucketKey]decimal.Decimal) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		if r := v.Round(2); !r.IsZero() {
			out[k.String()] = r.InexactFloat64()
		}
	}
	return out
}
