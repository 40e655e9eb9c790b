/*
Package config provides JSON/TOML to Go conversion for rule configurations
and environment-driven server settings.

PURPOSE:
  Rule sets are data, not code. A payroll office adjusts a threshold or a
  multiplier by editing a file (or PUT /api/rules), never by recompiling.
  This file converts those documents into a payroll.RuleConfig value.

FORMATS:
  JSON: what the HTTP API accepts and returns, and what stores persist.
  TOML: what operators keep next to the binary (PAYROLL_RULES_FILE).
  Both decode into the same RulesDocument, so a field has one name everywhere.

DEFAULTS:
  Every field is optional. A missing field keeps its value from
  payroll.DefaultRules(), so an empty document is the statutory default set.

JSON SCHEMA:
  {
    "night": {"start": "22:00", "end": "06:00"},
    "daily": {"ye": 8, "yp": 9, "illegal": 11},
    "weekly": {"normal_max": 40, "ye_max": 45},
    "multipliers": {"additional": 1.12, "ye": 1.2, "yp": 1.4, "illegal": 1.8},
    "premium_modes": {"within": "additive"},
    "night_premium_factor": 1.25,
    "holiday_premium_factor": 1.75,
    "within_night_add": 0.25,
    "within_holiday_add": 0.75,
    "holiday_hours_fully_paid": true,
    "monthly_working_days": 25,
    "minimum": {"monthly_salary": 880, "hourly_rate": 5.86, "seniority_step": 0.1, "max_seniority_tiers": 3},
    "absence_types": [{"code": "ΑΔ", "name": "Annual leave", "paid": true}]
  }

  When absence_types is present it replaces the default catalog.

USAGE:
  rules, err := config.LoadRules("rules.toml")
  if err != nil {
      log.Fatal(err)
  }
  engine := payroll.NewEngine(dataset, rules)

SEE ALSO:
  - payroll/rules.go: RuleConfig and DefaultRules
  - config/server.go: Environment settings that point at the rules file
*/
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// DOCUMENT TYPES
// =============================================================================

// RulesDocument is the serialized form of payroll.RuleConfig.
type RulesDocument struct {
	Night        *NightDocument             `json:"night,omitempty" toml:"night,omitempty"`
	Daily        *DailyDocument             `json:"daily,omitempty" toml:"daily,omitempty"`
	Weekly       *WeeklyDocument            `json:"weekly,omitempty" toml:"weekly,omitempty"`
	Multipliers  map[string]decimal.Decimal `json:"multipliers,omitempty" toml:"multipliers,omitempty"`
	PremiumModes map[string]string          `json:"premium_modes,omitempty" toml:"premium_modes,omitempty"`

	NightPremiumFactor    *decimal.Decimal `json:"night_premium_factor,omitempty" toml:"night_premium_factor,omitempty"`
	HolidayPremiumFactor  *decimal.Decimal `json:"holiday_premium_factor,omitempty" toml:"holiday_premium_factor,omitempty"`
	WithinNightAdd        *decimal.Decimal `json:"within_night_add,omitempty" toml:"within_night_add,omitempty"`
	WithinHolidayAdd      *decimal.Decimal `json:"within_holiday_add,omitempty" toml:"within_holiday_add,omitempty"`
	HolidayHoursFullyPaid *bool            `json:"holiday_hours_fully_paid,omitempty" toml:"holiday_hours_fully_paid,omitempty"`
	MonthlyWorkingDays    *decimal.Decimal `json:"monthly_working_days,omitempty" toml:"monthly_working_days,omitempty"`

	Minimum      *MinimumDocument  `json:"minimum,omitempty" toml:"minimum,omitempty"`
	AbsenceTypes []AbsenceDocument `json:"absence_types,omitempty" toml:"absence_types,omitempty"`
}

// NightDocument is the night window as "HH:MM" clock values.
type NightDocument struct {
	Start string `json:"start,omitempty" toml:"start,omitempty"`
	End   string `json:"end,omitempty" toml:"end,omitempty"`
}

// DailyDocument holds the daily overtime thresholds in hours.
type DailyDocument struct {
	Ye      *decimal.Decimal `json:"ye,omitempty" toml:"ye,omitempty"`
	Yp      *decimal.Decimal `json:"yp,omitempty" toml:"yp,omitempty"`
	Illegal *decimal.Decimal `json:"illegal,omitempty" toml:"illegal,omitempty"`
}

// WeeklyDocument holds the weekly thresholds in hours.
type WeeklyDocument struct {
	NormalMax *decimal.Decimal `json:"normal_max,omitempty" toml:"normal_max,omitempty"`
	YeMax     *decimal.Decimal `json:"ye_max,omitempty" toml:"ye_max,omitempty"`
}

// MinimumDocument holds the minimum wage baselines.
type MinimumDocument struct {
	MonthlySalary     *decimal.Decimal `json:"monthly_salary,omitempty" toml:"monthly_salary,omitempty"`
	HourlyRate        *decimal.Decimal `json:"hourly_rate,omitempty" toml:"hourly_rate,omitempty"`
	SeniorityStep     *decimal.Decimal `json:"seniority_step,omitempty" toml:"seniority_step,omitempty"`
	MaxSeniorityTiers *int             `json:"max_seniority_tiers,omitempty" toml:"max_seniority_tiers,omitempty"`
}

// AbsenceDocument is one entry of the absence catalog.
type AbsenceDocument struct {
	Code string `json:"code" toml:"code"`
	Name string `json:"name" toml:"name"`
	Paid bool   `json:"paid" toml:"paid"`
}

// =============================================================================
// FORMAT
// =============================================================================

// Format names a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// FormatFor picks the format from a file extension. Unknown extensions are JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml", ".tml":
		return FormatTOML
	default:
		return FormatJSON
	}
}

// =============================================================================
// LOADING
// =============================================================================

// LoadRules reads a rules file. An empty path yields the default rules.
func LoadRules(path string) (payroll.RuleConfig, error) {
	if path == "" {
		return payroll.DefaultRules(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return payroll.RuleConfig{}, fmt.Errorf("read rules file: %w", err)
	}
	rules, err := ParseRules(data, FormatFor(path))
	if err != nil {
		return payroll.RuleConfig{}, fmt.Errorf("%s: %w", path, err)
	}
	return rules, nil
}

// ParseRules decodes and validates a rules document.
func ParseRules(data []byte, format Format) (payroll.RuleConfig, error) {
	doc, err := DecodeDocument(bytes.NewReader(data), format)
	if err != nil {
		return payroll.RuleConfig{}, err
	}
	return doc.Rules()
}

// DecodeDocument decodes a document without applying it.
func DecodeDocument(r io.Reader, format Format) (RulesDocument, error) {
	var doc RulesDocument
	switch format {
	case FormatTOML:
		if _, err := toml.NewDecoder(r).Decode(&doc); err != nil {
			return RulesDocument{}, fmt.Errorf("%w: %v", payroll.ErrInvalidRules, err)
		}
	case FormatJSON, "":
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return RulesDocument{}, fmt.Errorf("%w: %v", payroll.ErrInvalidRules, err)
		}
	default:
		return RulesDocument{}, fmt.Errorf("unsupported rules format %q", format)
	}
	return doc, nil
}

// EncodeRules writes rules in the given format.
func EncodeRules(w io.Writer, rules payroll.RuleConfig, format Format) error {
	doc := DocumentFor(rules)
	if format == FormatTOML {
		return toml.NewEncoder(w).Encode(doc)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// =============================================================================
// CONVERSION
// =============================================================================

// Rules overlays the document on the default rules and validates the result.
func (d RulesDocument) Rules() (payroll.RuleConfig, error) {
	r := payroll.DefaultRules()

	if d.Night != nil {
		if d.Night.Start != "" {
			m, err := payroll.ParseClock(d.Night.Start)
			if err != nil {
				return payroll.RuleConfig{}, fmt.Errorf("%w: night.start: %v", payroll.ErrInvalidRules, err)
			}
			r.NightStartMinutes = m
		}
		if d.Night.End != "" {
			m, err := payroll.ParseClock(d.Night.End)
			if err != nil {
				return payroll.RuleConfig{}, fmt.Errorf("%w: night.end: %v", payroll.ErrInvalidRules, err)
			}
			r.NightEndMinutes = m
		}
	}

	if d.Daily != nil {
		setDecimal(&r.DailyYeThreshold, d.Daily.Ye)
		setDecimal(&r.DailyYpThreshold, d.Daily.Yp)
		setDecimal(&r.DailyIllegalThreshold, d.Daily.Illegal)
	}
	if d.Weekly != nil {
		setDecimal(&r.WeeklyNormalMax, d.Weekly.NormalMax)
		setDecimal(&r.WeeklyYeMax, d.Weekly.YeMax)
	}

	for name, v := range d.Multipliers {
		c, err := payroll.ParseCategory(name)
		if err != nil {
			return payroll.RuleConfig{}, fmt.Errorf("%w: multipliers: %v", payroll.ErrInvalidRules, err)
		}
		r.Multipliers[c] = v
	}
	for name, v := range d.PremiumModes {
		c, err := payroll.ParseCategory(name)
		if err != nil {
			return payroll.RuleConfig{}, fmt.Errorf("%w: premium_modes: %v", payroll.ErrInvalidRules, err)
		}
		mode, err := payroll.ParsePremiumMode(v)
		if err != nil {
			return payroll.RuleConfig{}, err
		}
		r.PremiumModes[c] = mode
	}

	setDecimal(&r.NightPremiumFactor, d.NightPremiumFactor)
	setDecimal(&r.HolidayPremiumFactor, d.HolidayPremiumFactor)
	setDecimal(&r.WithinNightAdd, d.WithinNightAdd)
	setDecimal(&r.WithinHolidayAdd, d.WithinHolidayAdd)
	setDecimal(&r.MonthlyWorkingDays, d.MonthlyWorkingDays)
	if d.HolidayHoursFullyPaid != nil {
		r.HolidayHoursFullyPaid = *d.HolidayHoursFullyPaid
	}

	if m := d.Minimum; m != nil {
		setDecimal(&r.BaseMinMonthlySalary, m.MonthlySalary)
		setDecimal(&r.BaseMinHourlyRate, m.HourlyRate)
		setDecimal(&r.SeniorityStep, m.SeniorityStep)
		if m.MaxSeniorityTiers != nil {
			r.MaxSeniorityTiers = *m.MaxSeniorityTiers
		}
	}

	if d.AbsenceTypes != nil {
		r.AbsenceTypes = make(map[string]payroll.AbsenceType, len(d.AbsenceTypes))
		for _, a := range d.AbsenceTypes {
			code := strings.TrimSpace(a.Code)
			if _, dup := r.AbsenceTypes[code]; dup {
				return payroll.RuleConfig{}, fmt.Errorf("%w: duplicate absence code %q", payroll.ErrInvalidRules, code)
			}
			r.AbsenceTypes[code] = payroll.AbsenceType{Code: code, Name: a.Name, Paid: a.Paid}
		}
	}

	if err := r.Validate(); err != nil {
		return payroll.RuleConfig{}, err
	}
	return r, nil
}

// DocumentFor renders every field of rules, so the document round-trips
// without depending on the defaults.
func DocumentFor(r payroll.RuleConfig) RulesDocument {
	fully := r.HolidayHoursFullyPaid
	tiers := r.MaxSeniorityTiers

	doc := RulesDocument{
		Night: &NightDocument{
			Start: payroll.FormatClock(r.NightStartMinutes),
			End:   payroll.FormatClock(r.NightEndMinutes),
		},
		Daily: &DailyDocument{
			Ye:      ptr(r.DailyYeThreshold),
			Yp:      ptr(r.DailyYpThreshold),
			Illegal: ptr(r.DailyIllegalThreshold),
		},
		Weekly: &WeeklyDocument{
			NormalMax: ptr(r.WeeklyNormalMax),
			YeMax:     ptr(r.WeeklyYeMax),
		},
		Multipliers:           make(map[string]decimal.Decimal, len(payroll.Categories)),
		PremiumModes:          make(map[string]string, len(payroll.Categories)),
		NightPremiumFactor:    ptr(r.NightPremiumFactor),
		HolidayPremiumFactor:  ptr(r.HolidayPremiumFactor),
		WithinNightAdd:        ptr(r.WithinNightAdd),
		WithinHolidayAdd:      ptr(r.WithinHolidayAdd),
		HolidayHoursFullyPaid: &fully,
		MonthlyWorkingDays:    ptr(r.MonthlyWorkingDays),
		Minimum: &MinimumDocument{
			MonthlySalary:     ptr(r.BaseMinMonthlySalary),
			HourlyRate:        ptr(r.BaseMinHourlyRate),
			SeniorityStep:     ptr(r.SeniorityStep),
			MaxSeniorityTiers: &tiers,
		},
		AbsenceTypes: make([]AbsenceDocument, 0, len(r.AbsenceTypes)),
	}
	for _, c := range payroll.Categories {
		doc.Multipliers[c.String()] = r.Multipliers[c]
		doc.PremiumModes[c.String()] = r.PremiumModes[c].String()
	}
	for _, a := range sortedAbsences(r.AbsenceTypes) {
		doc.AbsenceTypes = append(doc.AbsenceTypes, AbsenceDocument{Code: a.Code, Name: a.Name, Paid: a.Paid})
	}
	return doc
}

// =============================================================================
// HELPERS
// =============================================================================

func setDecimal(dst *decimal.Decimal, v *decimal.Decimal) {
	if v != nil {
		*dst = *v
	}
}

func ptr(d decimal.Decimal) *decimal.Decimal { return &d }

func sortedAbsences(m map[string]payroll.AbsenceType) []payroll.AbsenceType {
	out := make([]payroll.AbsenceType, 0, len(m))
	for _, a := range m {
		out = append(out, a)
	}
	slices.SortFunc(out, func(a, b payroll.AbsenceType) int { return strings.Compare(a.Code, b.Code) })
	return out
}
