/*
errors.go - Centralized error types for the payroll engine

PURPOSE:
  The classification pipeline itself never fails: malformed times produce
  empty slice sequences and a missing employee produces an absent overview.
  These errors belong to the edges around it, where shift records, employee
  profiles and rule documents are validated before they reach the engine.

ERROR CATEGORIES:
  1. Lookup errors - Employee or record not found
  2. Validation errors - Malformed time, interval gap, bad profile or rules
  3. Wage errors - Pay below the statutory minimum

SEE ALSO:
  - types.go: ShiftRecord.Validate
  - minimum.go: EmployeeProfile.Validate
  - rules.go: RuleConfig.Validate
*/
package payroll

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/calendar"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrEmployeeNotFound is returned when no profile exists for an employee id.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrMissingEmployeeID is returned when a record carries no employee id.
	ErrMissingEmployeeID = errors.New("employee id required")

	// ErrInvalidTime is returned when a clock value is not strict 24h "HH:MM".
	ErrInvalidTime = errors.New("invalid time")

	// ErrEmptyInterval is returned when an interval starts and ends at the same minute.
	ErrEmptyInterval = errors.New("empty interval")

	// ErrIntervalGap is returned when the two intervals of a split shift are
	// less than MinIntervalGap apart.
	ErrIntervalGap = errors.New("split shift intervals too close")

	// ErrUnknownShiftType is returned when a type is neither a known marker
	// nor a configured absence code.
	ErrUnknownShiftType = errors.New("unknown shift type")

	// ErrInvalidProfile is returned when an employee profile is inconsistent.
	ErrInvalidProfile = errors.New("invalid employee profile")

	// ErrBelowMinimumWage is returned when a profile pays less than the statutory minimum.
	ErrBelowMinimumWage = errors.New("below minimum wage")

	// ErrInvalidRules is returned when a rule configuration fails validation.
	ErrInvalidRules = errors.New("invalid rule configuration")

	// ErrUnknownBucket is returned when a bucket key does not name one of the 30 buckets.
	ErrUnknownBucket = errors.New("unknown bucket")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ShiftValidationError identifies the record and field that failed validation.
type ShiftValidationError struct {
	EmployeeID EmployeeID
	Date       calendar.Date
	Field      string
	Err        error
}

func (e *ShiftValidationError) Error() string {
	return fmt.Sprintf("shift %s/%s: %s: %v", e.EmployeeID, e.Date, e.Field, e.Err)
}

func (e *ShiftValidationError) Unwrap() error {
	return e.Err
}

// MinimumWageError reports the shortfall against the statutory minimum.
type MinimumWageError struct {
	EmployeeID EmployeeID
	PayType    PayType
	Minimum    decimal.Decimal
	Actual     decimal.Decimal
}

func (e *MinimumWageError) Error() string {
	return fmt.Sprintf("%s pay for %s is %s, minimum is %s",
		e.PayType, e.EmployeeID, e.Actual.StringFixed(2), e.Minimum.StringFixed(2))
}

func (e *MinimumWageError) Unwrap() error {
	return ErrBelowMinimumWage
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrMissingEmployeeID) ||
		errors.Is(err, ErrInvalidTime) ||
		errors.Is(err, ErrEmptyInterval) ||
		errors.Is(err, ErrIntervalGap) ||
		errors.Is(err, ErrUnknownShiftType) ||
		errors.Is(err, ErrInvalidProfile) ||
		errors.Is(err, ErrBelowMinimumWage) ||
		errors.Is(err, ErrInvalidRules) ||
		errors.Is(err, ErrUnknownBucket) ||
		errors.Is(err, calendar.ErrInvalidDate) ||
		errors.Is(err, calendar.ErrInvalidMonth)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound)
}
