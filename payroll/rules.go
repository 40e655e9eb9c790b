/*
Package payroll classifies worked time into labor-law pay categories and
prices it.

PURPOSE:
  For each employee and Monday-first week, worked time is cut into 15-minute
  slices, classified first against daily thresholds and then against weekly
  thresholds, grouped into premium buckets and converted to amounts. Months
  are rolled up from the days they contain.

PIPELINE:
  ShiftRecord ──► Slices ──► ClassifyDaily ──► ClassifyWeekly ──► MergeChronological
                                   │                                    │
                                   └── fixed (ye/yp/illegal) ───────────┘
                                                                        ▼
                                          Buckets ──► DayBucketMetrics ──► MonthlyPayrollOverview

KEY CONCEPTS IN THIS FILE (rules.go):
  - Category: within, additional, ye, yp, illegal
  - DayType: workday, official holiday, Sunday
  - PremiumMode: additive (within) or multiplicative (everything else)
  - RuleConfig: every threshold and multiplier, passed by value into each call

DESIGN PRINCIPLES:
  1. No global state: rules are a value; the engine never mutates them
  2. Integer minutes for time, decimal for money
  3. Deterministic: the same inputs always produce the same slices and amounts

SEE ALSO:
  - slices.go: Time-slice generation
  - daily.go, weekly.go: The two classification phases
  - buckets.go: Premium buckets and multipliers
  - engine.go, overview.go: Day and month aggregation
*/
package payroll

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CATEGORY - Pay category of a classified slice
// =============================================================================

type Category int

const (
	// Within is time covered by the contracted base pay.
	Within Category = iota
	// Additional is part-time work above the contracted target but below the
	// full-time weekly normal.
	Additional
	// Ye is the first overtime tier (daily 8-9h or weekly 40-45h).
	Ye
	// Yp is the second overtime tier.
	Yp
	// Illegal is time above the statutory daily ceiling.
	Illegal
)

const numCategories = 5

// Categories lists every category in reporting order.
var Categories = [numCategories]Category{Within, Additional, Ye, Yp, Illegal}

var categoryNames = [numCategories]string{"within", "additional", "ye", "yp", "illegal"}

func (c Category) String() string {
	if c < 0 || int(c) >= numCategories {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryNames[c]
}

func ParseCategory(s string) (Category, error) {
	for i, name := range categoryNames {
		if name == s {
			return Category(i), nil
		}
	}
	return 0, fmt.Errorf("%w: category %q", ErrUnknownBucket, s)
}

func (c Category) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Category) UnmarshalText(b []byte) error {
	parsed, err := ParseCategory(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// =============================================================================
// DAY TYPE
// =============================================================================

// DayType is the calendar nature of the day a slice is attributed to.
// An official holiday that falls on a Sunday is an OfficialHoliday.
type DayType int

const (
	Workday DayType = iota
	OfficialHoliday
	Sunday
)

const numDayTypes = 3

var DayTypes = [numDayTypes]DayType{Workday, OfficialHoliday, Sunday}

var dayTypeNames = [numDayTypes]string{"work", "holiday", "sunday"}

func (d DayType) String() string {
	if d < 0 || int(d) >= numDayTypes {
		return fmt.Sprintf("DayType(%d)", int(d))
	}
	return dayTypeNames[d]
}

// =============================================================================
// PREMIUM MODE
// =============================================================================

// PremiumMode selects how night and holiday premiums combine with a category.
type PremiumMode int

const (
	// Multiplicative: base × nightFactor × holidayFactor.
	Multiplicative PremiumMode = iota
	// Additive: baseInclusion + nightAdd + holidayAdd.
	Additive
)

func (m PremiumMode) String() string {
	if m == Additive {
		return "additive"
	}
	return "multiplicative"
}

func ParsePremiumMode(s string) (PremiumMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "additive":
		return Additive, nil
	case "multiplicative", "":
		return Multiplicative, nil
	}
	return 0, fmt.Errorf("%w: premium mode %q", ErrInvalidRules, s)
}

// =============================================================================
// RULE CONFIG
// =============================================================================

// RuleConfig holds every threshold and multiplier the engine reads.
// Hour thresholds are in hours; the night window is in minutes of the day.
//
// RuleConfig is a value: copying it copies everything except AbsenceTypes,
// which callers treat as read-only. Use Clone before editing that map.
type RuleConfig struct {
	NightStartMinutes int
	NightEndMinutes   int

	DailyYeThreshold      decimal.Decimal
	DailyYpThreshold      decimal.Decimal
	DailyIllegalThreshold decimal.Decimal

	WeeklyNormalMax decimal.Decimal
	WeeklyYeMax     decimal.Decimal

	Multipliers  [numCategories]decimal.Decimal
	PremiumModes [numCategories]PremiumMode

	NightPremiumFactor   decimal.Decimal
	HolidayPremiumFactor decimal.Decimal
	WithinNightAdd       decimal.Decimal
	WithinHolidayAdd     decimal.Decimal

	// HolidayHoursFullyPaid re-includes the base hour for within time on an
	// official holiday. Plain Sundays never get the base hour.
	HolidayHoursFullyPaid bool

	MonthlyWorkingDays decimal.Decimal

	BaseMinMonthlySalary decimal.Decimal
	BaseMinHourlyRate    decimal.Decimal
	SeniorityStep        decimal.Decimal
	MaxSeniorityTiers    int

	AbsenceTypes map[string]AbsenceType
}

// DefaultRules returns the statutory defaults.
func DefaultRules() RuleConfig {
	return RuleConfig{
		NightStartMinutes: 22 * 60,
		NightEndMinutes:   6 * 60,

		DailyYeThreshold:      decimal.NewFromInt(8),
		DailyYpThreshold:      decimal.NewFromInt(9),
		DailyIllegalThreshold: decimal.NewFromInt(11),

		WeeklyNormalMax: decimal.NewFromInt(40),
		WeeklyYeMax:     decimal.NewFromInt(45),

		Multipliers: [numCategories]decimal.Decimal{
			Within:     decimal.Zero,
			Additional: decimal.RequireFromString("1.12"),
			Ye:         decimal.RequireFromString("1.2"),
			Yp:         decimal.RequireFromString("1.4"),
			Illegal:    decimal.RequireFromString("1.8"),
		},
		PremiumModes: [numCategories]PremiumMode{
			Within:     Additive,
			Additional: Multiplicative,
			Ye:         Multiplicative,
			Yp:         Multiplicative,
			Illegal:    Multiplicative,
		},

		NightPremiumFactor:   decimal.RequireFromString("1.25"),
		HolidayPremiumFactor: decimal.RequireFromString("1.75"),
		WithinNightAdd:       decimal.RequireFromString("0.25"),
		WithinHolidayAdd:     decimal.RequireFromString("0.75"),

		HolidayHoursFullyPaid: true,

		MonthlyWorkingDays: decimal.NewFromInt(25),

		BaseMinMonthlySalary: decimal.NewFromInt(880),
		BaseMinHourlyRate:    decimal.RequireFromString("5.86"),
		SeniorityStep:        decimal.RequireFromString("0.10"),
		MaxSeniorityTiers:    3,

		AbsenceTypes: DefaultAbsenceTypes(),
	}
}

// DefaultAbsenceTypes is the absence catalog used when none is configured.
func DefaultAbsenceTypes() map[string]AbsenceType {
	return map[string]AbsenceType{
		"ΑΔ": {Code: "ΑΔ", Name: "Annual leave", Paid: true},
		"ΑΣ": {Code: "ΑΣ", Name: "Sick leave", Paid: false},
		"ΑΧ": {Code: "ΑΧ", Name: "Leave without pay", Paid: false},
	}
}

// Clone returns a copy that shares nothing mutable with r.
func (r RuleConfig) Clone() RuleConfig {
	out := r
	out.AbsenceTypes = make(map[string]AbsenceType, len(r.AbsenceTypes))
	for k, v := range r.AbsenceTypes {
		out.AbsenceTypes[k] = v
	}
	return out
}

// IsNight reports whether a minute of the day falls inside the night window.
// A window with start > end wraps midnight (22:00-06:00).
func (r RuleConfig) IsNight(minuteOfDay int) bool {
	if r.NightStartMinutes > r.NightEndMinutes {
		return minuteOfDay < r.NightEndMinutes || minuteOfDay >= r.NightStartMinutes
	}
	return minuteOfDay >= r.NightStartMinutes && minuteOfDay < r.NightEndMinutes
}

// Absence looks up an absence code. Working and marker types are never absences.
func (r RuleConfig) Absence(code string) (AbsenceType, bool) {
	code = strings.TrimSpace(code)
	if ShiftType(code).isMarker() {
		return AbsenceType{}, false
	}
	a, ok := r.AbsenceTypes[code]
	return a, ok
}

// Validate checks the thresholds are ordered and the factors are usable.
func (r RuleConfig) Validate() error {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidRules, fmt.Sprintf(format, args...))
	}

	if r.NightStartMinutes < 0 || r.NightStartMinutes >= MinutesPerDay ||
		r.NightEndMinutes < 0 || r.NightEndMinutes >= MinutesPerDay {
		return fail("night window must be within 00:00-23:59")
	}
	if r.NightStartMinutes == r.NightEndMinutes {
		return fail("night window start and end must differ")
	}

	if !r.DailyYeThreshold.IsPositive() {
		return fail("daily ye threshold must be positive")
	}
	if r.DailyYpThreshold.LessThan(r.DailyYeThreshold) || r.DailyIllegalThreshold.LessThan(r.DailyYpThreshold) {
		return fail("daily thresholds must satisfy ye <= yp <= illegal")
	}
	if !r.WeeklyNormalMax.IsPositive() || r.WeeklyYeMax.LessThan(r.WeeklyNormalMax) {
		return fail("weekly thresholds must satisfy 0 < normal <= ye max")
	}

	for _, c := range Categories {
		if r.Multipliers[c].IsNegative() {
			return fail("%s multiplier must not be negative", c)
		}
	}
	for name, v := range map[string]decimal.Decimal{
		"night premium factor":   r.NightPremiumFactor,
		"holiday premium factor": r.HolidayPremiumFactor,
		"within night add":       r.WithinNightAdd,
		"within holiday add":     r.WithinHolidayAdd,
		"seniority step":         r.SeniorityStep,
		"base minimum monthly":   r.BaseMinMonthlySalary,
		"base minimum hourly":    r.BaseMinHourlyRate,
	} {
		if v.IsNegative() {
			return fail("%s must not be negative", name)
		}
	}
	if !r.MonthlyWorkingDays.IsPositive() {
		return fail("monthly working days must be positive")
	}
	if r.MaxSeniorityTiers < 0 {
		return fail("max seniority tiers must not be negative")
	}

	for code, a := range r.AbsenceTypes {
		if strings.TrimSpace(code) == "" || code != a.Code {
			return fail("absence type %q has mismatched code %q", code, a.Code)
		}
		if ShiftType(code).isMarker() {
			return fail("absence code %q collides with a shift type", code)
		}
	}
	return nil
}
