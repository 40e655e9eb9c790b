/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	schedules for testing and demos. Each scenario creates employees, the
	2024 official holidays and shift records that exercise one part of the
	classification pipeline.

AVAILABLE SCENARIOS:

	hourly-overtime:  Full-time hourly worker with daily and weekly overtime
	part-time:        20h contract worked to 24h, priced as additional time
	monthly-absence:  Monthly salary with sick and annual leave days
	night-holiday:    Night shifts across official holidays and a Sunday

HOW SCENARIOS WORK:
 1. Reset database (clear all data, default rules)
 2. Add the Greek official holidays of 2024
 3. Create employees
 4. Write shift records

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "hourly-overtime"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Create loader function: loadXxxScenario(ctx)
 3. Add case to scenarioLoader

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: ResetDatabase, engine endpoints to inspect the result
  - calendar/holidays.go: GreekCalendar
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/calendar"
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "hourly-overtime",
		Name:        "Hourly Overtime",
		Description: "10h weekdays plus a Saturday: daily ye/yp beyond 8h and weekly ye/yp beyond 40h (week of 2024-01-08)",
		Category:    "hourly",
	},
	{
		ID:          "part-time",
		Name:        "Part-Time Additional",
		Description: "20h contract worked to 24h: the extra 4h are additional, not overtime (week of 2024-01-15)",
		Category:    "hourly",
	},
	{
		ID:          "monthly-absence",
		Name:        "Monthly With Absences",
		Description: "Monthly salary in February 2024 with two unpaid sick days and one paid annual leave day",
		Category:    "monthly",
	},
	{
		ID:          "night-holiday",
		Name:        "Nights and Holidays",
		Description: "Night shifts on New Year's Day, Epiphany and a Sunday, plus a split telework day (week of 2024-01-01)",
		Category:    "premiums",
	},
}

func (h *Handler) scenarioLoader(id string) (func(context.Context) error, bool) {
	switch id {
	case "hourly-overtime":
		return h.loadHourlyOvertimeScenario, true
	case "part-time":
		return h.loadPartTimeScenario, true
	case "monthly-absence":
		return h.loadMonthlyAbsenceScenario, true
	case "night-holiday":
		return h.loadNightHolidayScenario, true
	}
	return nil, false
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	current := h.currentScenario
	h.mu.RUnlock()

	if current == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, ScenarioDTO{ID: current, Name: current})
}

// LoadScenario resets the database and loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	load, ok := h.scenarioLoader(req.ScenarioID)
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	ctx := r.Context()
	if err := h.reset(ctx); err != nil {
		h.fail(w, r, "Failed to reset database", err)
		return
	}
	if err := load(ctx); err != nil {
		h.fail(w, r, fmt.Sprintf("Failed to load scenario %s", req.ScenarioID), err)
		return
	}

	h.mu.Lock()
	h.currentScenario = req.ScenarioID
	h.mu.Unlock()

	h.logger.InfoContext(ctx, "scenario loaded", "scenario", req.ScenarioID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

// loadHourlyOvertimeScenario: Mon-Fri 08:00-18:00 and Sat 09:00-15:00.
// Each weekday yields 8h eligible, 1h ye and 1h yp; the 46 eligible hours
// split into 40 within, 5 ye and 1 yp.
func (h *Handler) loadHourlyOvertimeScenario(ctx context.Context) error {
	emp := payroll.EmployeeProfile{
		ID:          "emp-001",
		Name:        "Eleni Papadopoulou",
		PayType:     payroll.PayHourly,
		WeeklyHours: decimal.NewFromInt(40),
		WeeklyDays:  5,
		HourlyRate:  decimal.RequireFromString("7.50"),
	}
	if err := h.seed(ctx, emp); err != nil {
		return err
	}

	week := calendar.MustParseDate("2024-01-08")
	for i := range 5 {
		if err := h.saveWork(ctx, emp.ID, week.AddDays(i), "08:00", "18:00"); err != nil {
			return err
		}
	}
	return h.saveWork(ctx, emp.ID, week.AddDays(5), "09:00", "15:00")
}

// loadPartTimeScenario: Mon-Thu 09:00-15:00 against a 20h contract.
func (h *Handler) loadPartTimeScenario(ctx context.Context) error {
	emp := payroll.EmployeeProfile{
		ID:          "emp-002",
		Name:        "Nikos Georgiou",
		PayType:     payroll.PayHourly,
		WeeklyHours: decimal.NewFromInt(20),
		WeeklyDays:  4,
		HourlyRate:  decimal.RequireFromString("6.50"),
	}
	if err := h.seed(ctx, emp); err != nil {
		return err
	}

	week := calendar.MustParseDate("2024-01-15")
	for i := range 4 {
		if err := h.saveWork(ctx, emp.ID, week.AddDays(i), "09:00", "15:00"); err != nil {
			return err
		}
	}
	return nil
}

// loadMonthlyAbsenceScenario: every weekday of February 2024 at 09:00-17:00,
// except sick leave on the 6th and 7th and annual leave on the 8th.
func (h *Handler) loadMonthlyAbsenceScenario(ctx context.Context) error {
	emp := payroll.EmployeeProfile{
		ID:             "emp-003",
		Name:           "Maria Konstantinou",
		PayType:        payroll.PayMonthly,
		WeeklyHours:    decimal.NewFromInt(40),
		WeeklyDays:     5,
		MonthlySalary:  decimal.NewFromInt(1200),
		SeniorityTiers: 1,
	}
	if err := h.seed(ctx, emp); err != nil {
		return err
	}

	absences := map[string]payroll.ShiftType{
		"2024-02-06": "ΑΣ",
		"2024-02-07": "ΑΣ",
		"2024-02-08": "ΑΔ",
	}
	for _, day := range calendar.MustParseMonth("2024-02").Days() {
		if day.WeekdayIndex() >= 5 {
			continue
		}
		if code, ok := absences[day.String()]; ok {
			rec := payroll.ShiftRecord{EmployeeID: emp.ID, Date: day, Type: code}
			if err := h.saveShift(ctx, rec); err != nil {
				return err
			}
			continue
		}
		if err := h.saveWork(ctx, emp.ID, day, "09:00", "17:00"); err != nil {
			return err
		}
	}
	return nil
}

// loadNightHolidayScenario: 22:00-06:00 on Jan 1 (holiday), 2, 3, 6 (holiday)
// and 7 (Sunday), with a split office/telework day on Jan 4.
func (h *Handler) loadNightHolidayScenario(ctx context.Context) error {
	emp := payroll.EmployeeProfile{
		ID:          "emp-004",
		Name:        "Giorgos Dimitriou",
		PayType:     payroll.PayHourly,
		WeeklyHours: decimal.NewFromInt(40),
		WeeklyDays:  5,
		HourlyRate:  decimal.RequireFromString("8.00"),
	}
	if err := h.seed(ctx, emp); err != nil {
		return err
	}

	for _, d := range []string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-06", "2024-01-07"} {
		if err := h.saveWork(ctx, emp.ID, calendar.MustParseDate(d), "22:00", "06:00"); err != nil {
			return err
		}
	}
	return h.saveShift(ctx, payroll.ShiftRecord{
		EmployeeID: emp.ID,
		Date:       calendar.MustParseDate("2024-01-04"),
		Type:       payroll.ShiftWork,
		Start:      "07:00",
		End:        "11:00",
		Type2:      payroll.ShiftTelework,
		Start2:     "15:00",
		End2:       "19:00",
	})
}

// =============================================================================
// HELPERS
// =============================================================================

// seed adds the 2024 holidays and a validated employee.
func (h *Handler) seed(ctx context.Context, emp payroll.EmployeeProfile) error {
	if _, err := seedHolidays(ctx, h.Store, h.Holidays, 2024); err != nil {
		return err
	}
	if err := emp.Validate(h.Rules()); err != nil {
		return err
	}
	return h.Store.SaveEmployee(ctx, emp)
}

func (h *Handler) saveWork(ctx context.Context, id payroll.EmployeeID, day calendar.Date, start, end string) error {
	return h.saveShift(ctx, payroll.ShiftRecord{
		EmployeeID: id,
		Date:       day,
		Type:       payroll.ShiftWork,
		Start:      start,
		End:        end,
	})
}

func (h *Handler) saveShift(ctx context.Context, rec payroll.ShiftRecord) error {
	if err := rec.Validate(h.Rules()); err != nil {
		return err
	}
	return h.Store.SaveShift(ctx, rec)
}
