package vacation

import (
	"github.com/shopspring/decimal"

	"github.com/warp/vacation-engine/calendar"
)

// =============================================================================
// ENTITLEMENT CALCULATOR - Piecewise term selection
// =============================================================================

// ReferenceDate returns the date against which agreement terms are selected
// for a year: the year's first day, or the hire date if the employee was
// hired later than that.
func ReferenceDate(hireDate calendar.TimePoint, year int) calendar.TimePoint {
	ref := calendar.StartOfYear(year)
	if hireDate.After(ref) {
		ref = hireDate
	}
	return ref
}

// EarnedDays returns the nominal annual entitlement the agreement grants for
// a year: among all terms effective on or before the year's reference date,
// the one with the latest effective-from date wins.
//
// Proration for partial first/last years is an upstream concern - when terms
// carry pre-prorated values they flow through here unchanged, which is why
// entitlements are decimals rather than whole days.
//
// A year with no applicable term earns zero.
func EarnedDays(agreement Agreement, year int) decimal.Decimal {
	ref := ReferenceDate(agreement.HireDate, year)

	var (
		found    bool
		selected AgreementTerm
	)
	for _, term := range agreement.Terms {
		if term.EffectiveFrom.After(ref) {
			continue
		}
		if !found || term.EffectiveFrom.After(selected.EffectiveFrom) {
			found = true
			selected = term
		}
	}
	if !found {
		return decimal.Zero
	}
	return selected.AnnualDays
}
