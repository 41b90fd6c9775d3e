// Package normalize holds the pure conversion functions shared by backend
// adapters: price-string parsing, billing-period encoding, Windows timestamp
// conversion, and the heuristics used when a native store reports less than
// the domain model needs.
package normalize

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// micros is the fixed-point scale: one micro is 1/1,000,000 of the major
// currency unit.
var micros = decimal.NewFromInt(1_000_000)

// PriceToMicros parses a formatted price string ("$4.99", "4,99 €", ...) into
// price-amount micros. All characters other than digits and '.' are stripped
// before parsing, so locale formats using ',' as the decimal separator lose
// the fraction — the formatted display string stays authoritative for UI.
//
// Unparsable strings yield 0 with ok=false. That 0 is a documented
// approximation, not a price: callers that need to distinguish "no price"
// from "free" must check ok.
func PriceToMicros(formatted string) (amount int64, ok bool) {
	var b strings.Builder
	for _, r := range formatted {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}

	d, err := decimal.NewFromString(b.String())
	if err != nil {
		return 0, false
	}
	return d.Mul(micros).IntPart(), true
}

// PeriodUnit is a native billing-period unit code. The values match the
// Windows Store StoreDurationUnit ordering.
type PeriodUnit int32

const (
	PeriodUnitDay   PeriodUnit = 0
	PeriodUnitWeek  PeriodUnit = 1
	PeriodUnitMonth PeriodUnit = 2
	PeriodUnitYear  PeriodUnit = 3
)

// BillingPeriod encodes a native (count, unit) pair as an ISO-8601 duration,
// e.g. (1, Month) -> "P1M". Unrecognized units default to months.
func BillingPeriod(count uint32, unit PeriodUnit) string {
	var u string
	switch unit {
	case PeriodUnitDay:
		u = "D"
	case PeriodUnitWeek:
		u = "W"
	case PeriodUnitYear:
		u = "Y"
	default:
		u = "M"
	}
	return "P" + strconv.FormatUint(uint64(count), 10) + u
}

// Windows timestamps are 100-nanosecond ticks since 1601-01-01T00:00:00Z.
const (
	ticksPerSecond     = 10_000_000
	secondsTo1970Epoch = 11_644_473_600
)

// TicksToUnixMillis converts a Windows FILETIME-style tick count to Unix
// epoch milliseconds. Sub-second precision is dropped, matching the native
// store's second-granularity license timestamps.
func TicksToUnixMillis(ticks int64) int64 {
	secondsSince1601 := ticks / ticksPerSecond
	return (secondsSince1601 - secondsTo1970Epoch) * 1000
}

// estimatedPeriodMillis is 30 days: the assumed subscription period when a
// backend only reports an expiration date.
const estimatedPeriodMillis = 30 * 24 * 60 * 60 * 1000

// EstimatePurchaseTimeMillis approximates a subscription's purchase time as
// 30 days before its expiration. This is a documented heuristic, not a
// recorded purchase event; callers must not treat it as transactional truth.
func EstimatePurchaseTimeMillis(expirationMillis int64) int64 {
	return expirationMillis - estimatedPeriodMillis
}
