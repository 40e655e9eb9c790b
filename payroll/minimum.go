package payroll

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MINIMUM WAGE
// =============================================================================
//
// The statutory minimum grows by SeniorityStep for every three-year tier,
// up to MaxSeniorityTiers. Monthly minimums are prorated by weekly hours
// against a 40-hour full-time week. Minimums are rounded to cents.

var fullTimeHours = decimal.NewFromInt(40)

// SeniorityFactor is 1 + step × tiers, with tiers clamped to [0, MaxSeniorityTiers].
func SeniorityFactor(tiers int, rules RuleConfig) decimal.Decimal {
	tiers = max(0, min(tiers, rules.MaxSeniorityTiers))
	return decimal.NewFromInt(1).Add(rules.SeniorityStep.Mul(decimal.NewFromInt(int64(tiers))))
}

func MinimumHourlyRate(tiers int, rules RuleConfig) decimal.Decimal {
	return rules.BaseMinHourlyRate.Mul(SeniorityFactor(tiers, rules)).Round(2)
}

func MinimumMonthlySalary(tiers int, weeklyHours decimal.Decimal, rules RuleConfig) decimal.Decimal {
	return rules.BaseMinMonthlySalary.
		Mul(SeniorityFactor(tiers, rules)).
		Mul(weeklyHours).
		Div(fullTimeHours).
		Round(2)
}

// Validate checks a profile before it is stored, including the minimum wage.
func (e EmployeeProfile) Validate(rules RuleConfig) error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s: %s", ErrInvalidProfile, e.ID, fmt.Sprintf(format, args...))
	}

	if e.ID == "" {
		return ErrMissingEmployeeID
	}
	if e.SeniorityTiers < 0 {
		return invalid("seniority tiers must not be negative")
	}
	if e.WeeklyHours.IsNegative() || e.WeeklyHours.GreaterThan(decimal.NewFromInt(7*24)) {
		return invalid("weekly hours out of range")
	}

	switch e.PayType {
	case PayHourly:
		if e.WeeklyDays < 0 || e.WeeklyDays > 7 {
			return invalid("weekly days must be between 0 and 7")
		}
		if !e.HourlyRate.IsPositive() {
			return invalid("hourly rate must be greater than 0")
		}
		if minimum := MinimumHourlyRate(e.SeniorityTiers, rules); e.HourlyRate.LessThan(minimum) {
			return &MinimumWageError{EmployeeID: e.ID, PayType: e.PayType, Minimum: minimum, Actual: e.HourlyRate}
		}
	case PayMonthly:
		if e.WeeklyDays < 1 || e.WeeklyDays > 6 {
			return invalid("weekly days must be between 1 and 6")
		}
		if !e.WeeklyHours.IsPositive() {
			return invalid("weekly hours must be greater than 0")
		}
		if !e.MonthlySalary.IsPositive() {
			return invalid("monthly salary must be greater than 0")
		}
		minimum := MinimumMonthlySalary(e.SeniorityTiers, e.WeeklyHours, rules)
		if e.MonthlySalary.LessThan(minimum) {
			return &MinimumWageError{EmployeeID: e.ID, PayType: e.PayType, Minimum: minimum, Actual: e.MonthlySalary}
		}
	default:
		return invalid("pay type must be hourly or monthly, got %q", e.PayType)
	}
	return nil
}
