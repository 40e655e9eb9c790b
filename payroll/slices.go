package payroll

import (
	"fmt"
	"iter"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/warp/payroll-engine/calendar"
)

// =============================================================================
// TIME-SLICE GENERATOR
// =============================================================================
//
// A worked interval is cut into 15-minute slices. The last slice is shorter
// when the interval does not end on a quarter hour, so the slices of one
// interval always add up to the interval exactly.
//
//   22:00 ─► 02:10 on Mon 2024-01-01
//     Mon 22:00 (15) ... Mon 23:45 (15) | Tue 00:00 (15) ... Tue 02:00 (10)
//     SourceDay = Mon for all of them

// SliceMinutes is the slice resolution.
const SliceMinutes = 15

var clockPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// ParseClock parses a strict 24h "HH:MM" value into minutes after midnight.
func ParseClock(s string) (int, error) {
	if !clockPattern.MatchString(s) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	h, _ := strconv.Atoi(s[:2])
	m, _ := strconv.Atoi(s[3:])
	return h*60 + m, nil
}

// FormatClock renders minutes after midnight as "HH:MM".
func FormatClock(minute int) string {
	minute = ((minute % MinutesPerDay) + MinutesPerDay) % MinutesPerDay
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}

// IntervalMinutes is the duration of a clock interval; end <= start crosses midnight.
func IntervalMinutes(start, end string) (int, error) {
	s, err := ParseClock(start)
	if err != nil {
		return 0, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return 0, err
	}
	if e <= s {
		e += MinutesPerDay
	}
	return e - s, nil
}

// SliceRequest is one interval of a scheduled day.
type SliceRequest struct {
	EmployeeID EmployeeID
	Day        calendar.Date
	Start      string
	End        string
	Origin     ShiftType
	// OfficialHoliday marks the scheduled day as an official holiday.
	// Sundays are detected from Day.
	OfficialHoliday bool
}

// Slices returns the lazy slice sequence of one interval. The sequence is
// restartable: each range over it regenerates the slices from the request.
// Malformed clock values produce an empty sequence.
func Slices(req SliceRequest, rules RuleConfig) iter.Seq[TimeSlice] {
	start, errStart := ParseClock(req.Start)
	end, errEnd := ParseClock(req.End)
	if errStart != nil || errEnd != nil {
		return func(func(TimeSlice) bool) {}
	}
	if end <= start {
		end += MinutesPerDay
	}

	origin := ShiftWork
	if ShiftType(strings.TrimSpace(string(req.Origin))) == ShiftTelework {
		origin = ShiftTelework
	}
	holiday := req.OfficialHoliday || req.Day.IsSunday()

	return func(yield func(TimeSlice) bool) {
		for m := start; m < end; m += SliceMinutes {
			minute := m % MinutesPerDay
			s := TimeSlice{
				EmployeeID:      req.EmployeeID,
				Day:             req.Day.AddDays(m / MinutesPerDay),
				SourceDay:       req.Day,
				Minute:          minute,
				Minutes:         min(SliceMinutes, end-m),
				Night:           rules.IsNight(minute),
				Holiday:         holiday,
				OfficialHoliday: req.OfficialHoliday,
				Origin:          origin,
			}
			if !yield(s) {
				return
			}
		}
	}
}

// ShiftSlices returns every slice of a working record in chronological order.
// Non-working records have no slices.
func ShiftSlices(rec ShiftRecord, officialHoliday bool, rules RuleConfig) []TimeSlice {
	var out []TimeSlice
	for _, iv := range rec.Intervals() {
		out = slices.AppendSeq(out, Slices(SliceRequest{
			EmployeeID:      rec.EmployeeID,
			Day:             rec.Date,
			Start:           iv.Start,
			End:             iv.End,
			Origin:          iv.Origin,
			OfficialHoliday: officialHoliday,
		}, rules))
	}
	sortChronological(out)
	return out
}

// TotalMinutes sums slice durations.
func TotalMinutes(list []TimeSlice) int64 {
	var total int64
	for _, s := range list {
		total += int64(s.Minutes)
	}
	return total
}

func sortChronological(list []TimeSlice) {
	slices.SortStableFunc(list, func(a, b TimeSlice) int {
		switch {
		case a.before(b):
			return -1
		case b.before(a):
			return 1
		}
		return 0
	})
}
