package payroll

import (
	"slices"

	"github.com/shopspring/decimal"
)

// =============================================================================
// DAILY THRESHOLD CLASSIFIER - Phase 1
// =============================================================================
//
// Each day's slices are walked in time order with a running total that is
// checked before the slice is added:
//
//   worked >= 11h  → illegal  ┐
//   worked >=  9h  → yp       ├ fixed, never revisited by the weekly phase
//   worked >=  8h  → ye       ┘
//   otherwise      → eligible   (handed to the weekly phase)

// DailyResult is the outcome of phase 1 for one week.
type DailyResult struct {
	// Fixed holds the ye, yp and illegal slices of every day, in time order.
	Fixed []TimeSlice
	// Eligible holds the unclassified slices per weekday (0=Monday), in time order.
	Eligible [7][]TimeSlice
}

// EligibleMinutes returns the eligible time per weekday.
func (r DailyResult) EligibleMinutes() [7]int64 {
	var out [7]int64
	for i, day := range r.Eligible {
		out[i] = TotalMinutes(day)
	}
	return out
}

// ClassifyDaily runs phase 1 over the seven day lists of one week.
// The input lists are not modified.
func ClassifyDaily(week [7][]TimeSlice, rules RuleConfig) DailyResult {
	var res DailyResult
	for i, day := range week {
		fixed, eligible := ClassifyDay(day, rules)
		res.Fixed = append(res.Fixed, fixed...)
		res.Eligible[i] = eligible
	}
	sortChronological(res.Fixed)
	return res
}

// ClassifyDay applies the daily thresholds to one day's slices.
func ClassifyDay(day []TimeSlice, rules RuleConfig) (fixed, eligible []TimeSlice) {
	ordered := slices.Clone(day)
	sortChronological(ordered)

	illegal := rules.DailyIllegalThreshold.Mul(sixty)
	yp := rules.DailyYpThreshold.Mul(sixty)
	ye := rules.DailyYeThreshold.Mul(sixty)

	var worked int64
	for _, s := range ordered {
		w := decimal.NewFromInt(worked)
		switch {
		case w.GreaterThanOrEqual(illegal):
			s.Category = Illegal
			fixed = append(fixed, s)
		case w.GreaterThanOrEqual(yp):
			s.Category = Yp
			fixed = append(fixed, s)
		case w.GreaterThanOrEqual(ye):
			s.Category = Ye
			fixed = append(fixed, s)
		default:
			eligible = append(eligible, s)
		}
		worked += int64(s.Minutes)
	}
	return fixed, eligible
}
