/*
Package vacation implements the paid-leave allocation engine.

PURPOSE:
  Given an employee's vacation request, decide day by day which calendar
  year's entitlement each workable day is charged against, enforce per-year
  remaining balances, cap cross-year borrowing, and persist one vacation
  record per charged year.

KEY CONCEPTS IN THIS FILE (types.go):
  - Record:           A persisted allocation with a lifecycle status
  - AgreementTerm:    A piecewise entitlement rule (effective-from + annual days)
  - Agreement:        An employee's hire date plus their set of terms
  - AllocationResult: A transient per-year slice of an allocation
  - Balance:          Earned/consumed/remaining days for a (user, year) pair
  - YearWindow:       The three-slot prior/current/next year structure

DESIGN PRINCIPLES:
  1. Determinism: "now" is always injected via Clock, never read inline
  2. Precision: balances use decimal.Decimal - prorated entitlements supplied
     upstream may be fractional
  3. Explicit window: only three adjacent years are ever relevant to an
     allocation; YearWindow makes that invariant a type, not a convention

SEE ALSO:
  - entitlement.go: term selection per year
  - balance.go:     earned - consumed arithmetic
  - allocate.go:    the multi-branch allocation algorithm
  - service.go:     create/update orchestration and persistence
*/
package vacation

import (
	"github.com/shopspring/decimal"

	"github.com/warp/vacation-engine/calendar"
)

// =============================================================================
// RECORD - Persisted vacation allocation
// =============================================================================

// Status is the lifecycle state of a vacation record.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

// CountsAgainstBalance reports whether a record in this status consumes
// entitlement. Pending and accepted records both hold their days; rejected
// and cancelled records release them.
func (s Status) CountsAgainstBalance() bool {
	return s == StatusPending || s == StatusAccepted
}

// Record is a persisted vacation allocation. Every record charges exactly one
// calendar year's entitlement (ChargeYear), even when the requested range the
// record came from crossed a year boundary.
type Record struct {
	ID           string
	UserID       string
	StartDate    calendar.TimePoint
	EndDate      calendar.TimePoint
	ChargeYear   int
	Status       Status
	Description  string
	Observations string
}

// Interval returns the record's inclusive date range.
func (r Record) Interval() calendar.DateInterval {
	return calendar.NewDateInterval(r.StartDate, r.EndDate)
}

// ChargeYearStart returns the first day of the record's charge year, the
// canonical persisted representation of the charge year.
func (r Record) ChargeYearStart() calendar.TimePoint {
	return calendar.StartOfYear(r.ChargeYear)
}

// =============================================================================
// AGREEMENT - Piecewise entitlement schedule
// =============================================================================

// AgreementTerm is one entitlement rule: from EffectiveFrom onward the
// employee's nominal annual entitlement is AnnualDays. The term applicable to
// a year is the one with the latest EffectiveFrom not after that year's
// reference date.
type AgreementTerm struct {
	EffectiveFrom calendar.TimePoint
	AnnualDays    decimal.Decimal
}

// Agreement is an employee's hire date plus their unordered set of terms.
type Agreement struct {
	UserID   string
	HireDate calendar.TimePoint
	Terms    []AgreementTerm
}

// =============================================================================
// ALLOCATION RESULT - Transient per-year output of the engine
// =============================================================================

// AllocationResult describes the slice of an allocation charged to a single
// year. Days is always positive: zero-day results are never returned.
type AllocationResult struct {
	Start calendar.TimePoint
	End   calendar.TimePoint
	Days  int
	Year  int
}

// Interval returns the inclusive range the result spans.
func (ar AllocationResult) Interval() calendar.DateInterval {
	return calendar.NewDateInterval(ar.Start, ar.End)
}

// TotalDays sums the day counts of a result sequence.
func TotalDays(results []AllocationResult) int {
	total := 0
	for _, r := range results {
		total += r.Days
	}
	return total
}

// =============================================================================
// BALANCE - Per-(user, year) entitlement arithmetic
// =============================================================================

// Balance is the computed entitlement state of one user for one year.
// Remaining = Earned - Consumed and may be negative after over-allocation;
// allocation treats a negative remaining as zero capacity.
type Balance struct {
	UserID    string
	Year      int
	Earned    decimal.Decimal
	Consumed  decimal.Decimal
	Remaining decimal.Decimal
}

// AllocatableDays converts the remaining balance into whole-day allocation
// capacity: floored, and clamped at zero when the balance is negative.
func (b Balance) AllocatableDays() int {
	if b.Remaining.IsNegative() {
		return 0
	}
	return int(b.Remaining.IntPart())
}

// =============================================================================
// YEAR WINDOW - The three years an allocation can touch
// =============================================================================

// YearWindow is the explicit three-slot structure of years relevant to an
// allocation: the year before the reference date, the reference year itself,
// and the year after. Nothing outside the window is ever read or written.
type YearWindow struct {
	Prior   int
	Current int
	Next    int
}

// WindowAround builds the year window for a reference date.
func WindowAround(now calendar.TimePoint) YearWindow {
	y := now.Year()
	return YearWindow{Prior: y - 1, Current: y, Next: y + 1}
}

// Interval returns the full calendar span of the window, from January 1st of
// the prior year through December 31st of the next. Holiday lookups for an
// allocation always use this interval.
func (w YearWindow) Interval() calendar.DateInterval {
	return calendar.NewDateInterval(calendar.StartOfYear(w.Prior), calendar.EndOfYear(w.Next))
}

// Years lists the window's years in chronological order.
func (w YearWindow) Years() [3]int { return [3]int{w.Prior, w.Current, w.Next} }
