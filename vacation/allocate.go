/*
allocate.go - The multi-branch allocation algorithm

PURPOSE:
  Splits a requested date range's workable days across up to three consecutive
  years (prior, current, next) according to each year's remaining balance and
  the cross-year borrowing cap. This is the core of the engine.

ORDERING INVARIANT:
  Earliest dates are always consumed first. Days are charged from the front of
  the workable-day sequence: prior year before current year, current year
  before next year. The sequence itself is immutable; an index marks how far
  allocation has progressed, so no branch ever re-offers a date another year
  already took.

BRANCH STRUCTURE:
  1. Prior + current remaining cover the request
       -> fill prior year first (if it has balance), rest into current year.
  2. Otherwise
       -> fill current year as far as it goes, then borrow the remainder from
          next year's entitlement - but only if the user stays within
          MaxBorrowAhead days of next year pre-consumed in total. Exceeding
          the cap rejects the WHOLE request: no partial allocation.
  3. Years that would receive zero days are simply absent from the output.

FAILURE SEMANTICS:
  BorrowLimitError (wrapping ErrMaxNextYearBorrow) is the only business-rule
  failure. A request with zero workable days is not an error - it yields an
  empty result sequence.
*/
package vacation

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/warp/vacation-engine/calendar"
)

// MaxBorrowAhead is the maximum number of next-year entitlement days that may
// be pre-consumed during the current year.
const MaxBorrowAhead = 5

// Engine computes allocations. It reads holidays, agreements and existing
// records but never writes; persistence belongs to the Service.
type Engine struct {
	Holidays   HolidaySource
	Agreements AgreementSource
	Records    RecordSource
}

// NewEngine wires an allocation engine.
func NewEngine(holidays HolidaySource, agreements AgreementSource, records RecordSource) *Engine {
	return &Engine{Holidays: holidays, Agreements: agreements, Records: records}
}

// withRecords returns a copy of the engine reading records through rs.
// Used by the mutation service to bind the engine to a transaction scope.
func (e *Engine) withRecords(rs RecordSource) *Engine {
	clone := *e
	clone.Records = rs
	return &clone
}

// Allocate splits the requested range's workable days across the year window
// around now. Results come back in chronological year order, one per year
// that received at least one day; a request with no workable days yields nil.
func (e *Engine) Allocate(ctx context.Context, userID string, requested calendar.DateInterval, now calendar.TimePoint) ([]AllocationResult, error) {
	window := WindowAround(now)

	holidays, err := e.holidayWindow(ctx, window)
	if err != nil {
		return nil, err
	}

	selected := calendar.WorkableDays(requested, holidays)
	if len(selected) == 0 {
		return nil, nil
	}

	agreement, err := e.Agreements.AgreementFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	balances, err := e.windowBalances(ctx, userID, window, agreement, holidays)
	if err != nil {
		return nil, err
	}

	return e.split(userID, selected, window, agreement, balances)
}

// RemainingFor computes the remaining balance of one user for one year,
// using holidays from the window around that year so records spilling into
// adjacent years are counted correctly.
func (e *Engine) RemainingFor(ctx context.Context, userID string, year int) (Balance, error) {
	window := YearWindow{Prior: year - 1, Current: year, Next: year + 1}

	holidays, err := e.holidayWindow(ctx, window)
	if err != nil {
		return Balance{}, err
	}
	agreement, err := e.Agreements.AgreementFor(ctx, userID)
	if err != nil {
		return Balance{}, err
	}
	records, err := e.Records.FindByUserAndChargeYearRange(ctx, userID, year, year)
	if err != nil {
		return Balance{}, fmt.Errorf("loading records for %s/%d: %w", userID, year, err)
	}

	return RemainingBalance(year, agreement, records, holidays), nil
}

// =============================================================================
// INTERNALS
// =============================================================================

// holidayWindow loads and indexes every holiday in the window's span.
func (e *Engine) holidayWindow(ctx context.Context, window YearWindow) (calendar.HolidaySet, error) {
	span := window.Interval()
	holidays, err := e.Holidays.HolidaysBetween(ctx, span.Start, span.End)
	if err != nil {
		return calendar.HolidaySet{}, fmt.Errorf("loading holidays %s: %w", span, err)
	}
	return calendar.NewHolidaySet(holidays), nil
}

// windowBalances computes the balances of all three window years from one
// record fetch.
func (e *Engine) windowBalances(ctx context.Context, userID string, window YearWindow, agreement Agreement, holidays calendar.HolidaySet) (map[int]Balance, error) {
	records, err := e.Records.FindByUserAndChargeYearRange(ctx, userID, window.Prior, window.Next)
	if err != nil {
		return nil, fmt.Errorf("loading records for %s: %w", userID, err)
	}

	balances := make(map[int]Balance, 3)
	for _, year := range window.Years() {
		balances[year] = RemainingBalance(year, agreement, records, holidays)
	}
	return balances, nil
}

// split runs the branch structure over the immutable workable-day sequence.
// offset tracks how many of selected's front dates have been charged so far.
func (e *Engine) split(userID string, selected []calendar.TimePoint, window YearWindow, agreement Agreement, balances map[int]Balance) ([]AllocationResult, error) {
	var (
		results []AllocationResult
		offset  int

		total      = len(selected)
		remPrior   = balances[window.Prior].AllocatableDays()
		remCurrent = balances[window.Current].AllocatableDays()
	)

	if remPrior+remCurrent >= total {
		// Branch 1: the two back-years cover the whole request.
		if remPrior > 0 {
			res := chargeDaysIntoYear(selected[offset:], window.Prior, remPrior)
			results = append(results, res)
			offset += res.Days
		}
		if remCurrent > 0 && offset < total {
			results = append(results, chargeDaysIntoYear(selected[offset:], window.Current, remCurrent))
		}
		return results, nil
	}

	// Branch 2: exhaust the current year, then borrow from the next.
	if remCurrent > 0 {
		res := chargeDaysIntoYear(selected[offset:], window.Current, remCurrent)
		results = append(results, res)
		offset += res.Days
	}

	left := total - offset
	allowance := EarnedDays(agreement, window.Next)
	threshold := allowance.Sub(decimal.NewFromInt(MaxBorrowAhead))
	remNext := balances[window.Next].Remaining

	// The borrow cap is measured against the FULL annual allowance, not the
	// remaining balance: once remaining drops to allowance-MaxBorrowAhead the
	// user has pre-consumed the maximum, whatever this request's size.
	headroom := remNext.Sub(threshold)
	if remNext.LessThanOrEqual(threshold) || decimal.NewFromInt(int64(left)).GreaterThan(headroom) {
		return nil, &BorrowLimitError{
			UserID:        userID,
			Year:          window.Next,
			RequestedDays: left,
			Allowance:     allowance,
			Remaining:     remNext,
			Headroom:      headroom,
		}
	}

	// The cap check above is the only bound on borrowing: the leftover days
	// pre-consume next year's entitlement even past its computed remaining.
	if left > 0 {
		results = append(results, chargeDaysIntoYear(selected[offset:], window.Next, left))
	}
	return results, nil
}

// chargeDaysIntoYear charges the front-most dates of days to a year, bounded
// by the year's remaining balance. The caller must not re-offer the charged
// prefix to another year.
//
// Preconditions: len(days) > 0 and remaining > 0; the result always has a
// positive day count.
func chargeDaysIntoYear(days []calendar.TimePoint, year int, remaining int) AllocationResult {
	count := len(days)
	if remaining < count {
		count = remaining
	}
	return AllocationResult{
		Start: days[0],
		End:   days[count-1],
		Days:  count,
		Year:  year,
	}
}
