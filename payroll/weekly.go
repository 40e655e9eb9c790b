package payroll

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// WEEKLY ROUND-ROBIN BUCKETER - Phase 2
// =============================================================================
//
// Eligible slices are consumed Monday → Sunday, at most SlicesPerRound per
// day per round, until every day is exhausted. One weekly counter runs over
// the whole cycle and is checked before each slice is added:
//
//   weekly >= WeeklyYeMax      → yp
//   weekly >= WeeklyNormalMax  → ye
//   weekly >= target           → additional
//   otherwise                  → within
//
// Example (5 days × 8h eligible, target 40h):
//   Round 1..8 take one hour from each of Mon..Fri. The counter reaches 40h
//   only after the last round, so every slice is within. With 9h eligible
//   per day the ninth round gives each day one hour of ye instead of
//   putting all five hours on Friday.

// SlicesPerRound is how many eligible slices one day yields per round (one hour).
const SlicesPerRound = 4

// ClassifyWeekly runs phase 2 over the eligible slices of one week.
// A target that is not positive falls back to rules.WeeklyNormalMax.
// Slices are returned in consumption order; see MergeChronological.
func ClassifyWeekly(eligible [7][]TimeSlice, target decimal.Decimal, rules RuleConfig) []TimeSlice {
	if !target.IsPositive() {
		target = rules.WeeklyNormalMax
	}
	yeMax := rules.WeeklyYeMax.Mul(sixty)
	normalMax := rules.WeeklyNormalMax.Mul(sixty)
	targetMin := target.Mul(sixty)

	remaining := 0
	for _, day := range eligible {
		remaining += len(day)
	}
	out := make([]TimeSlice, 0, remaining)

	var ptrs [7]int
	var worked int64
	for remaining > 0 {
		for i := range eligible {
			for take := 0; take < SlicesPerRound && ptrs[i] < len(eligible[i]); take++ {
				s := eligible[i][ptrs[i]]
				ptrs[i]++
				remaining--

				w := decimal.NewFromInt(worked)
				switch {
				case w.GreaterThanOrEqual(yeMax):
					s.Category = Yp
				case w.GreaterThanOrEqual(normalMax):
					s.Category = Ye
				case w.GreaterThanOrEqual(targetMin):
					s.Category = Additional
				default:
					s.Category = Within
				}
				worked += int64(s.Minutes)
				out = append(out, s)
			}
		}
	}
	return out
}

// MergeChronological joins the weekly-classified and the daily-fixed slices
// and restores absolute time order. Equal positions keep weekly before fixed.
func MergeChronological(weekly, fixed []TimeSlice) []TimeSlice {
	out := make([]TimeSlice, 0, len(weekly)+len(fixed))
	out = append(out, weekly...)
	out = append(out, fixed...)
	sortChronological(out)
	return out
}

// ClassifySlices runs both phases over one week of per-day slices
// (index 0 = Monday) and returns the classified slices in time order.
func ClassifySlices(week [7][]TimeSlice, target decimal.Decimal, rules RuleConfig) []TimeSlice {
	daily := ClassifyDaily(week, rules)
	return MergeChronological(ClassifyWeekly(daily.Eligible, target, rules), daily.Fixed)
}
