/*
handlers.go - HTTP API handlers for the payroll engine

PURPOSE:
  Exposes the payroll engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the payroll package. Every engine
  call works on a fresh payroll.Dataset snapshot loaded from the store.

ENDPOINTS:
  Employees:
    GET    /api/employees                                List all employees
    POST   /api/employees                                Create or replace employee
    GET    /api/employees/{id}                           Get employee details

  Schedule:
    GET    /api/employees/{id}/shifts?from=&to=          Schedule cells in range
    PUT    /api/employees/{id}/shifts/{date}             Write one schedule cell
    DELETE /api/employees/{id}/shifts/{date}             Clear one schedule cell
    PUT    /api/employees/{id}/weeks/{date}/target       Week target override

  Engine:
    GET    /api/employees/{id}/days/{date}/metrics       Day bucket metrics
    GET    /api/employees/{id}/weeks/{date}/slices       Classified week slices
    GET    /api/employees/{id}/payroll/{month}           Monthly payroll overview
    GET    /api/employees/{id}/payroll/{month}/breakdown Week-grouped daily breakdown
    GET    /api/payroll/{month}                          Overview of every employee

  Holidays:
    GET    /api/holidays?year=                           Official holidays of a year
    POST   /api/holidays                                 Add a holiday
    POST   /api/holidays/defaults?year=                  Add the Greek calendar
    DELETE /api/holidays/{id}                            Remove a holiday

  Rules:
    GET    /api/rules                                    Current rule document
    PUT    /api/rules                                    Replace rule document

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: Database access
  - rules: Current RuleConfig, swapped whole on PUT /api/rules

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input (ShiftRecord.Validate, EmployeeProfile.Validate)
  3. Load a dataset snapshot and run the engine
  4. Round and serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Unknown employee, holiday or shift
  - 500: Internal errors (logged)

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/calendar"
	"github.com/warp/payroll-engine/config"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/store"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store store.Store

	// Holidays feeds POST /api/holidays/defaults and the demo scenarios.
	Holidays calendar.HolidayCalendar
	logger   *slog.Logger

	mu    sync.RWMutex
	rules payroll.RuleConfig

	// Track currently loaded scenario
	currentScenario string
}

// NewHandler creates a new handler with the given store and starting rules.
func NewHandler(s store.Store, rules payroll.RuleConfig, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		Store:    s,
		Holidays: calendar.GreekCalendar{},
		logger:   logger,
		rules:    rules,
	}
}

// LoadRules replaces the starting rules with the document saved in the
// store, if there is one.
func (h *Handler) LoadRules(ctx context.Context) error {
	rec, err := h.Store.GetRules(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	rules, err := config.ParseRules(rec.Document, config.FormatJSON)
	if err != nil {
		return fmt.Errorf("stored rules: %w", err)
	}
	h.setRules(rules)
	return nil
}

// Rules returns the rules every request is priced with.
func (h *Handler) Rules() payroll.RuleConfig {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.rules
}

func (h *Handler) setRules(r payroll.RuleConfig) {
	h.mu.Lock()
	h.rules = r
	h.mu.Unlock()
}

// engine snapshots the store for period and returns an engine over it.
func (h *Handler) engine(ctx context.Context, period calendar.Period, ids ...payroll.EmployeeID) (*payroll.Engine, error) {
	ds, err := store.LoadDataset(ctx, h.Store, period, ids...)
	if err != nil {
		return nil, err
	}
	return payroll.NewEngine(ds, h.Rules()), nil
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to list employees", err)
		return
	}

	rules := h.Rules()
	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e, rules)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	emp, err := h.Store.GetEmployee(r.Context(), employeeParam(r))
	if err != nil {
		h.fail(w, r, "Failed to get employee", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(emp, h.Rules()))
}

// CreateEmployee creates or replaces an employee. Profiles paying less than
// the statutory minimum are rejected.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	rules := h.Rules()
	emp := req.profile()
	if err := emp.Validate(rules); err != nil {
		h.fail(w, r, "Invalid employee", err)
		return
	}

	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		h.fail(w, r, "Failed to save employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp, rules))
}

// =============================================================================
// SCHEDULE HANDLERS
// =============================================================================

// ListShifts returns an employee's schedule cells. The range defaults to the
// current month.
// GET /api/employees/{id}/shifts?from=&to=
func (h *Handler) ListShifts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := employeeParam(r)

	period, err := rangeQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid range (use from=YYYY-MM-DD&to=YYYY-MM-DD)", err)
		return
	}
	if _, err := h.Store.GetEmployee(ctx, id); err != nil {
		h.fail(w, r, "Failed to get employee", err)
		return
	}

	shifts, err := h.Store.ListShifts(ctx, id, period.Start, period.End)
	if err != nil {
		h.fail(w, r, "Failed to list shifts", err)
		return
	}

	rules := h.Rules()
	dtos := make([]ShiftDTO, len(shifts))
	for i, s := range shifts {
		dtos[i] = toShiftDTO(s, rules)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// PutShift writes the schedule cell of one day, replacing any existing one.
// PUT /api/employees/{id}/shifts/{date}
func (h *Handler) PutShift(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := employeeParam(r)

	day, err := calendar.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	var req ShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if _, err := h.Store.GetEmployee(ctx, id); err != nil {
		h.fail(w, r, "Failed to get employee", err)
		return
	}

	rules := h.Rules()
	rec := req.record(id, day)
	if err := rec.Validate(rules); err != nil {
		h.fail(w, r, "Invalid shift", err)
		return
	}
	if err := h.Store.SaveShift(ctx, rec); err != nil {
		h.fail(w, r, "Failed to save shift", err)
		return
	}
	writeJSON(w, http.StatusOK, toShiftDTO(rec, rules))
}

// DeleteShift clears the schedule cell of one day.
// DELETE /api/employees/{id}/shifts/{date}
func (h *Handler) DeleteShift(w http.ResponseWriter, r *http.Request) {
	day, err := calendar.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}
	if err := h.Store.DeleteShift(r.Context(), employeeParam(r), day); err != nil {
		h.fail(w, r, "Failed to delete shift", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}

// PutWeekTarget overrides the contracted hours of the week containing date.
// Zero clears the override back to the profile's weekly hours.
// PUT /api/employees/{id}/weeks/{date}/target
func (h *Handler) PutWeekTarget(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := employeeParam(r)

	day, err := calendar.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	var req WeekTargetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Hours.IsNegative() || req.Hours.GreaterThan(hoursPerWeek) {
		writeError(w, http.StatusBadRequest, "Hours must be between 0 and 168", nil)
		return
	}

	if _, err := h.Store.GetEmployee(ctx, id); err != nil {
		h.fail(w, r, "Failed to get employee", err)
		return
	}

	target := store.WeekTarget{
		ID:         uuid.NewString(),
		EmployeeID: id,
		WeekStart:  day.WeekStart(),
		Hours:      req.Hours,
	}
	if err := h.Store.SaveWeekTarget(ctx, target); err != nil {
		h.fail(w, r, "Failed to save week target", err)
		return
	}
	writeJSON(w, http.StatusOK, toWeekTargetDTO(target))
}

// =============================================================================
// ENGINE HANDLERS
// =============================================================================

// GetDayMetrics returns the bucket metrics of one scheduled day.
// GET /api/employees/{id}/days/{date}/metrics
func (h *Handler) GetDayMetrics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := employeeParam(r)

	day, err := calendar.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}
	if _, err := h.Store.GetEmployee(ctx, id); err != nil {
		h.fail(w, r, "Failed to get employee", err)
		return
	}

	eng, err := h.engine(ctx, calendar.WeekOf(day), id)
	if err != nil {
		h.fail(w, r, "Failed to load schedule", err)
		return
	}
	writeJSON(w, http.StatusOK, toDayMetricsDTO(eng.DayBucketMetrics(id, day)))
}

// GetWeekSlices returns the classified slices of the week containing date.
// GET /api/employees/{id}/weeks/{date}/slices
func (h *Handler) GetWeekSlices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := employeeParam(r)

	day, err := calendar.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}
	if _, err := h.Store.GetEmployee(ctx, id); err != nil {
		h.fail(w, r, "Failed to get employee", err)
		return
	}

	week := calendar.WeekOf(day)
	eng, err := h.engine(ctx, week, id)
	if err != nil {
		h.fail(w, r, "Failed to load schedule", err)
		return
	}

	slices := eng.ClassifyWeek(id, day)
	dto := WeekSlicesDTO{
		EmployeeID:  string(id),
		WeekStart:   week.Start.String(),
		TargetHours: round2(eng.WeekTarget(id, week.Start)),
		Slices:      make([]SliceDTO, len(slices)),
	}
	for i, s := range slices {
		dto.Slices[i] = toSliceDTO(s)
	}
	writeJSON(w, http.StatusOK, dto)
}

// GetPayrollOverview returns one employee's monthly overview.
// GET /api/employees/{id}/payroll/{month}
func (h *Handler) GetPayrollOverview(w http.ResponseWriter, r *http.Request) {
	id := employeeParam(r)
	month, err := calendar.ParseMonth(chi.URLParam(r, "month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month format (use YYYY-MM)", err)
		return
	}

	eng, err := h.engine(r.Context(), month.Period(), id)
	if err != nil {
		h.fail(w, r, "Failed to load schedule", err)
		return
	}

	overview, ok := eng.MonthlyPayrollOverview(id, month)
	if !ok {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toOverviewDTO(*overview))
}

// GetPayrollBreakdown returns the week-grouped daily breakdown of a month.
// GET /api/employees/{id}/payroll/{month}/breakdown
func (h *Handler) GetPayrollBreakdown(w http.ResponseWriter, r *http.Request) {
	id := employeeParam(r)
	month, err := calendar.ParseMonth(chi.URLParam(r, "month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month format (use YYYY-MM)", err)
		return
	}

	eng, err := h.engine(r.Context(), month.Period(), id)
	if err != nil {
		h.fail(w, r, "Failed to load schedule", err)
		return
	}

	breakdown, ok := eng.MonthlyBreakdown(id, month)
	if !ok {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toBreakdownDTO(*breakdown, eng.Rules()))
}

// ListPayroll returns the monthly overview of every employee.
// GET /api/payroll/{month}
func (h *Handler) ListPayroll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	month, err := calendar.ParseMonth(chi.URLParam(r, "month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month format (use YYYY-MM)", err)
		return
	}

	ds, err := store.LoadDataset(ctx, h.Store, month.Period())
	if err != nil {
		h.fail(w, r, "Failed to load schedule", err)
		return
	}
	eng := payroll.NewEngine(ds, h.Rules())

	employees := ds.Employees()
	dtos := make([]OverviewDTO, 0, len(employees))
	for _, e := range employees {
		if o, ok := eng.MonthlyPayrollOverview(e.ID, month); ok {
			dtos = append(dtos, toOverviewDTO(*o))
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// HOLIDAY HANDLERS
// =============================================================================

// ListHolidays returns the official holidays of a year (default: this year).
// GET /api/holidays?year=
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	year, err := yearQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}

	holidays, err := h.Store.ListHolidays(r.Context(), calendar.NewDate(year, 1, 1), calendar.NewDate(year, 12, 31))
	if err != nil {
		h.fail(w, r, "Failed to list holidays", err)
		return
	}

	dtos := make([]HolidayDTO, len(holidays))
	for i, hol := range holidays {
		dtos[i] = toHolidayDTO(hol)
	}
	writeJSON(w, http.StatusOK, map[string]any{"holidays": dtos})
}

// CreateHoliday adds an official holiday.
// POST /api/holidays
func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req CreateHolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Date == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "Date and name are required", nil)
		return
	}

	date, err := calendar.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	holiday := calendar.Holiday{ID: uuid.NewString(), Date: date, Name: req.Name}
	if err := h.Store.SaveHoliday(r.Context(), holiday); err != nil {
		h.fail(w, r, "Failed to create holiday", err)
		return
	}
	writeJSON(w, http.StatusCreated, toHolidayDTO(holiday))
}

// DeleteHoliday removes a holiday.
// DELETE /api/holidays/{id}
func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteHoliday(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, "Failed to delete holiday", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}

// AddDefaultHolidays adds the official holidays of a year from h.Holidays
// (Greek by default). Re-running it for the same year is harmless: ids are
// derived from the date.
// POST /api/holidays/defaults?year=
func (h *Handler) AddDefaultHolidays(w http.ResponseWriter, r *http.Request) {
	year, err := yearQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}

	n, err := seedHolidays(r.Context(), h.Store, h.Holidays, year)
	if err != nil {
		h.fail(w, r, "Failed to add holidays", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"status": "created",
		"year":   year,
		"count":  n,
	})
}

func seedHolidays(ctx context.Context, s store.Store, cal calendar.HolidayCalendar, year int) (int, error) {
	holidays := cal.HolidaysIn(year)
	for _, hol := range holidays {
		hol.ID = calendar.SeededHolidayID(hol.Date)
		if err := s.SaveHoliday(ctx, hol); err != nil {
			return 0, err
		}
	}
	return len(holidays), nil
}

// =============================================================================
// RULES HANDLERS
// =============================================================================

// GetRules returns the current rule document with every field filled in.
// GET /api/rules
func (h *Handler) GetRules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, config.DocumentFor(h.Rules()))
}

// PutRules replaces the rule document. Omitted fields take their defaults.
// PUT /api/rules
func (h *Handler) PutRules(w http.ResponseWriter, r *http.Request) {
	doc, err := config.DecodeDocument(r.Body, config.FormatJSON)
	if err != nil {
		h.fail(w, r, "Invalid rules document", err)
		return
	}
	rules, err := doc.Rules()
	if err != nil {
		h.fail(w, r, "Invalid rules", err)
		return
	}

	full := config.DocumentFor(rules)
	data, err := json.Marshal(full)
	if err != nil {
		h.fail(w, r, "Failed to encode rules", err)
		return
	}
	if err := h.Store.SaveRules(r.Context(), data); err != nil {
		h.fail(w, r, "Failed to save rules", err)
		return
	}

	h.setRules(rules)
	h.logger.InfoContext(r.Context(), "rules updated")
	writeJSON(w, http.StatusOK, full)
}

// ResetDatabase clears all data and restores the default rules.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.reset(r.Context()); err != nil {
		h.fail(w, r, "Failed to reset database", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) reset(ctx context.Context) error {
	if err := h.Store.Reset(ctx); err != nil {
		return err
	}
	h.mu.Lock()
	h.rules = payroll.DefaultRules()
	h.currentScenario = ""
	h.mu.Unlock()
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

var hoursPerWeek = decimal.NewFromInt(7 * 24)

func employeeParam(r *http.Request) payroll.EmployeeID {
	return payroll.EmployeeID(chi.URLParam(r, "id"))
}

// rangeQuery reads from/to, defaulting to the current month.
func rangeQuery(r *http.Request) (calendar.Period, error) {
	period := calendar.Today().Month().Period()
	q := r.URL.Query()
	if s := q.Get("from"); s != "" {
		d, err := calendar.ParseDate(s)
		if err != nil {
			return calendar.Period{}, err
		}
		period.Start = d
	}
	if s := q.Get("to"); s != "" {
		d, err := calendar.ParseDate(s)
		if err != nil {
			return calendar.Period{}, err
		}
		period.End = d
	}
	if period.End.Before(period.Start) {
		return calendar.Period{}, fmt.Errorf("%w: range ends before it starts", calendar.ErrInvalidDate)
	}
	return period, nil
}

func yearQuery(r *http.Request) (int, error) {
	s := r.URL.Query().Get("year")
	if s == "" {
		return calendar.Today().Year(), nil
	}
	year, err := strconv.Atoi(s)
	if err != nil || year < 1900 || year > 2999 {
		return 0, fmt.Errorf("year %q out of range", s)
	}
	return year, nil
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case payroll.IsNotFound(err), errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case payroll.IsClientError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err with the status it maps to. Server errors are logged.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, message string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), message, "error", err, "path", r.URL.Path)
	}
	writeError(w, status, message, err)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
