package payroll

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PREMIUM BUCKETS
// =============================================================================
//
// Every classified slice lands in exactly one of 5 × 3 × 2 = 30 buckets:
//
//   category  × day type                 × time of day
//   within      work                        day
//   additional  holiday (official)          night
//   ye          sunday  (plain Sunday)
//   yp
//   illegal
//
// Buckets hold whole minutes so sums are exact; hours and amounts are
// derived on read.

// BucketKey addresses one bucket. It renders as "<category>_<daytype>_<day|night>".
type BucketKey struct {
	Category Category
	DayType  DayType
	Night    bool
}

// KeyFor returns the bucket a classified slice belongs to.
func KeyFor(s TimeSlice) BucketKey {
	return BucketKey{Category: s.Category, DayType: s.DayType(), Night: s.Night}
}

func (k BucketKey) String() string {
	tod := "day"
	if k.Night {
		tod = "night"
	}
	return k.Category.String() + "_" + k.DayType.String() + "_" + tod
}

// IsWithin reports whether the bucket is part of base pay rather than extra pay.
func (k BucketKey) IsWithin() bool { return k.Category == Within }

func (k BucketKey) valid() bool {
	return k.Category >= 0 && int(k.Category) < numCategories &&
		k.DayType >= 0 && int(k.DayType) < numDayTypes
}

// ParseBucketKey parses the rendered form of a key.
func ParseBucketKey(s string) (BucketKey, error) {
	parts := strings.Split(s, "_")
	if len(parts) != 3 {
		return BucketKey{}, fmt.Errorf("%w: %q", ErrUnknownBucket, s)
	}
	cat, err := ParseCategory(parts[0])
	if err != nil {
		return BucketKey{}, fmt.Errorf("%w: %q", ErrUnknownBucket, s)
	}
	k := BucketKey{Category: cat}
	switch parts[1] {
	case "work":
		k.DayType = Workday
	case "holiday":
		k.DayType = OfficialHoliday
	case "sunday":
		k.DayType = Sunday
	default:
		return BucketKey{}, fmt.Errorf("%w: %q", ErrUnknownBucket, s)
	}
	switch parts[2] {
	case "day":
	case "night":
		k.Night = true
	default:
		return BucketKey{}, fmt.Errorf("%w: %q", ErrUnknownBucket, s)
	}
	return k, nil
}

func (k BucketKey) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *BucketKey) UnmarshalText(b []byte) error {
	parsed, err := ParseBucketKey(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// AllBucketKeys lists the 30 buckets in reporting order: category, then
// work/holiday/sunday, then day before night.
func AllBucketKeys() []BucketKey {
	keys := make([]BucketKey, 0, numCategories*numDayTypes*2)
	for _, c := range Categories {
		for _, d := range DayTypes {
			keys = append(keys, BucketKey{c, d, false}, BucketKey{c, d, true})
		}
	}
	return keys
}

// =============================================================================
// BUCKET TABLE
// =============================================================================

// Buckets is the fixed bucket table. The zero value is empty and ready to use.
type Buckets struct {
	minutes [numCategories][numDayTypes][2]int64
}

func night(n bool) int {
	if n {
		return 1
	}
	return 0
}

// Add puts a classified slice into its bucket.
func (b *Buckets) Add(s TimeSlice) {
	b.AddMinutes(KeyFor(s), int64(s.Minutes))
}

func (b *Buckets) AddMinutes(k BucketKey, minutes int64) {
	if k.Category < 0 || int(k.Category) >= numCategories {
		k.Category = Within
	}
	if k.DayType < 0 || int(k.DayType) >= numDayTypes {
		k.DayType = Workday
	}
	b.minutes[k.Category][k.DayType][night(k.Night)] += minutes
}

// Merge adds every bucket of o into b.
func (b *Buckets) Merge(o Buckets) {
	for c := range b.minutes {
		for d := range b.minutes[c] {
			for n := range b.minutes[c][d] {
				b.minutes[c][d][n] += o.minutes[c][d][n]
			}
		}
	}
}

func (b Buckets) Minutes(k BucketKey) int64 {
	if !k.valid() {
		return 0
	}
	return b.minutes[k.Category][k.DayType][night(k.Night)]
}

func (b Buckets) Hours(k BucketKey) decimal.Decimal {
	return minutesToHours(b.Minutes(k))
}

// TotalMinutes is the sum of all 30 buckets.
func (b Buckets) TotalMinutes() int64 {
	var total int64
	for _, k := range AllBucketKeys() {
		total += b.Minutes(k)
	}
	return total
}

// SumMinutes sums the buckets accepted by keep.
func (b Buckets) SumMinutes(keep func(BucketKey) bool) int64 {
	var total int64
	for _, k := range AllBucketKeys() {
		if keep(k) {
			total += b.Minutes(k)
		}
	}
	return total
}

func (b Buckets) IsZero() bool { return b.TotalMinutes() == 0 }

// NonZeroHours returns the hours of every non-empty bucket.
func (b Buckets) NonZeroHours() map[BucketKey]decimal.Decimal {
	out := make(map[BucketKey]decimal.Decimal)
	for _, k := range AllBucketKeys() {
		if m := b.Minutes(k); m != 0 {
			out[k] = minutesToHours(m)
		}
	}
	return out
}

// Amount prices one bucket at full precision.
func (b Buckets) Amount(k BucketKey, rate decimal.Decimal, rules RuleConfig) decimal.Decimal {
	m := b.Minutes(k)
	if m == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(m).Mul(rate).Mul(Multiplier(k, rules)).Div(sixty)
}

// =============================================================================
// MULTIPLIERS
// =============================================================================

// Multiplier returns the pay multiplier of a bucket.
//
// Additive mode (within by default):
//
//	base + nightAdd (night) + holidayAdd (holiday or Sunday)
//	base = 1 on a workday, 1 on an official holiday when HolidayHoursFullyPaid,
//	       0 otherwise (plain Sunday base pay is already in the salary)
//
// Multiplicative mode (everything else):
//
//	categoryBase × nightFactor (night) × holidayFactor (holiday or Sunday)
func Multiplier(k BucketKey, rules RuleConfig) decimal.Decimal {
	if !k.valid() {
		return decimal.Zero
	}
	holidayOrSunday := k.DayType != Workday

	if rules.PremiumModes[k.Category] == Additive {
		mult := decimal.Zero
		if k.DayType == Workday || (k.DayType == OfficialHoliday && rules.HolidayHoursFullyPaid) {
			mult = decimal.NewFromInt(1)
		}
		if k.Night {
			mult = mult.Add(rules.WithinNightAdd)
		}
		if holidayOrSunday {
			mult = mult.Add(rules.WithinHolidayAdd)
		}
		return mult
	}

	mult := rules.Multipliers[k.Category]
	if k.Night {
		mult = mult.Mul(rules.NightPremiumFactor)
	}
	if holidayOrSunday {
		mult = mult.Mul(rules.HolidayPremiumFactor)
	}
	return mult
}

// BucketAmount is hours × rate × Multiplier(k).
func BucketAmount(hours decimal.Decimal, k BucketKey, rate decimal.Decimal, rules RuleConfig) decimal.Decimal {
	return hours.Mul(rate).Mul(Multiplier(k, rules))
}

// Amounts prices every non-empty bucket.
func (b Buckets) Amounts(rate decimal.Decimal, rules RuleConfig) map[BucketKey]decimal.Decimal {
	out := make(map[BucketKey]decimal.Decimal)
	for _, k := range AllBucketKeys() {
		if b.Minutes(k) != 0 {
			out[k] = b.Amount(k, rate, rules)
		}
	}
	return out
}
