package vacation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/warp/vacation-engine/calendar"
	"github.com/warp/vacation-engine/store/memory"
	"github.com/warp/vacation-engine/vacation"
)

// =============================================================================
// ENGINE FIXTURE
// =============================================================================
//
// Allocation tests run with "now" fixed in 2025, so the window is 2024
// (prior), 2025 (current), 2026 (next). Per-year entitlements are shaped by
// giving the agreement a term effective on each year's first day: the term
// picked for a year is then exactly that year's annual count.

type engineFixture struct {
	engine     *vacation.Engine
	store      *memory.Store
	holidays   *memory.Holidays
	agreements *memory.Agreements
}

func newEngineFixture(annual2024, annual2025, annual2026 float64) *engineFixture {
	store := memory.NewStore()
	holidays := memory.NewHolidays()
	agreements := memory.NewAgreements()

	agreements.Put(agreement(date(2020, time.March, 1),
		term(date(2024, time.January, 1), annual2024),
		term(date(2025, time.January, 1), annual2025),
		term(date(2026, time.January, 1), annual2026),
	))

	return &engineFixture{
		engine:     vacation.NewEngine(holidays, agreements, store),
		store:      store,
		holidays:   holidays,
		agreements: agreements,
	}
}

var now2025 = date(2025, time.June, 2) // a Monday

// requestWeek is Mon Jun 16 - Fri Jun 20 2025: five workable days.
func requestWeek() calendar.DateInterval {
	return calendar.NewDateInterval(date(2025, time.June, 16), date(2025, time.June, 20))
}

// =============================================================================
// ALLOCATION SCENARIOS
// =============================================================================

func TestAllocate_SplitsAcrossPriorAndCurrentYear(t *testing.T) {
	// GIVEN: 3 days remaining in 2024, 10 in 2025
	// WHEN: Requesting 5 workable days
	// THEN: The 3 earliest dates charge 2024, the remaining 2 charge 2025,
	//       and 2026 is untouched

	fx := newEngineFixture(3, 10, 23)

	results, err := fx.engine.Allocate(context.Background(), "emp-1", requestWeek(), now2025)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d: %+v", len(results), results)
	}
	prior, current := results[0], results[1]

	if prior.Year != 2024 || prior.Days != 3 {
		t.Errorf("prior year: expected 3 days in 2024, got %d in %d", prior.Days, prior.Year)
	}
	if !prior.Start.Equal(date(2025, time.June, 16)) || !prior.End.Equal(date(2025, time.June, 18)) {
		t.Errorf("prior year span: expected Jun 16-18, got %s..%s", prior.Start, prior.End)
	}
	if current.Year != 2025 || current.Days != 2 {
		t.Errorf("current year: expected 2 days in 2025, got %d in %d", current.Days, current.Year)
	}
	if !current.Start.Equal(date(2025, time.June, 19)) || !current.End.Equal(date(2025, time.June, 20)) {
		t.Errorf("current year span: expected Jun 19-20, got %s..%s", current.Start, current.End)
	}
}

func TestAllocate_BorrowsWithinNextYearCap(t *testing.T) {
	// GIVEN: Nothing left in 2024 or 2025, full 23-day 2026 allowance
	// WHEN: Requesting 4 workable days
	// THEN: threshold = 23-5 = 18, headroom = 23-18 = 5, 4 <= 5: the whole
	//       request lands in 2026

	fx := newEngineFixture(0, 0, 23)

	results, err := fx.engine.Allocate(context.Background(), "emp-1",
		calendar.NewDateInterval(date(2025, time.June, 16), date(2025, time.June, 19)), now2025)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d: %+v", len(results), results)
	}
	if results[0].Year != 2026 || results[0].Days != 4 {
		t.Errorf("expected 4 days in 2026, got %d in %d", results[0].Days, results[0].Year)
	}
}

func TestAllocate_BorrowBeyondCap_RejectsWholeRequest(t *testing.T) {
	// GIVEN: The same empty back-years and 23-day 2026 allowance
	// WHEN: Requesting 6 workable days (headroom is only 5)
	// THEN: The whole request fails - no partial allocation

	fx := newEngineFixture(0, 0, 23)

	// Mon Jun 16 - Mon Jun 23: six workable days.
	results, err := fx.engine.Allocate(context.Background(), "emp-1",
		calendar.NewDateInterval(date(2025, time.June, 16), date(2025, time.June, 23)), now2025)

	if !errors.Is(err, vacation.ErrMaxNextYearBorrow) {
		t.Fatalf("expected borrow-limit error, got results=%+v err=%v", results, err)
	}

	var borrowErr *vacation.BorrowLimitError
	if !errors.As(err, &borrowErr) {
		t.Fatalf("expected *BorrowLimitError, got %T", err)
	}
	if borrowErr.RequestedDays != 6 || borrowErr.Year != 2026 {
		t.Errorf("unexpected error detail: %+v", borrowErr)
	}
}

func TestAllocate_AlreadyBorrowedToTheCap_RejectsEvenOneDay(t *testing.T) {
	// GIVEN: 2026 remaining already down to allowance-5 (5 days pre-consumed)
	// WHEN: Requesting a single further day with empty back-years
	// THEN: remaining(next) <= threshold: hard stop

	fx := newEngineFixture(0, 0, 23)
	fx.store.SaveAll(context.Background(), []vacation.Record{
		// Mon-Fri in November 2025, charged ahead to 2026: 5 workable days.
		record("borrowed", 2026, vacation.StatusAccepted, date(2025, time.November, 3), date(2025, time.November, 7)),
	})

	_, err := fx.engine.Allocate(context.Background(), "emp-1",
		calendar.NewDateInterval(date(2025, time.June, 16), date(2025, time.June, 16)), now2025)

	if !errors.Is(err, vacation.ErrMaxNextYearBorrow) {
		t.Fatalf("expected borrow-limit error, got %v", err)
	}
}

// =============================================================================
// BRANCH AND EDGE BEHAVIOR
// =============================================================================

func TestAllocate_CurrentYearCoversEverything(t *testing.T) {
	fx := newEngineFixture(0, 20, 23)

	results, err := fx.engine.Allocate(context.Background(), "emp-1", requestWeek(), now2025)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].Year != 2025 || results[0].Days != 5 {
		t.Fatalf("expected all 5 days in 2025, got %+v", results)
	}
}

func TestAllocate_PriorYearCoversEverything(t *testing.T) {
	// Prior year alone can hold the request; no current-year record appears.
	fx := newEngineFixture(8, 10, 23)

	results, err := fx.engine.Allocate(context.Background(), "emp-1", requestWeek(), now2025)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].Year != 2024 || results[0].Days != 5 {
		t.Fatalf("expected all 5 days in 2024, got %+v", results)
	}
}

func TestAllocate_PartialCurrentThenBorrow(t *testing.T) {
	// GIVEN: 2 days left in 2025, nothing in 2024, full 2026 allowance
	// WHEN: Requesting 5 workable days
	// THEN: 2 charge 2025, the trailing 3 borrow from 2026

	fx := newEngineFixture(0, 2, 23)

	results, err := fx.engine.Allocate(context.Background(), "emp-1", requestWeek(), now2025)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %+v", results)
	}
	if results[0].Year != 2025 || results[0].Days != 2 {
		t.Errorf("expected 2 days in 2025, got %+v", results[0])
	}
	if results[1].Year != 2026 || results[1].Days != 3 {
		t.Errorf("expected 3 days in 2026, got %+v", results[1])
	}
	if !results[1].Start.Equal(date(2025, time.June, 18)) {
		t.Errorf("borrowed slice should start where the current year stopped, got %s", results[1].Start)
	}
}

func TestAllocate_HolidaysShrinkTheRequest(t *testing.T) {
	// A holiday inside the requested week reduces the workable-day count
	// before any balance math happens.
	fx := newEngineFixture(0, 20, 23)
	fx.holidays.Add(calendar.Holiday{Date: date(2025, time.June, 18), Description: "company holiday"})

	results, err := fx.engine.Allocate(context.Background(), "emp-1", requestWeek(), now2025)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vacation.TotalDays(results) != 4 {
		t.Errorf("expected 4 allocated days, got %d", vacation.TotalDays(results))
	}
}

func TestAllocate_NoWorkableDays_EmptyResultNotError(t *testing.T) {
	fx := newEngineFixture(3, 10, 23)

	// A weekend-only request.
	results, err := fx.engine.Allocate(context.Background(), "emp-1",
		calendar.NewDateInterval(date(2025, time.June, 21), date(2025, time.June, 22)), now2025)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected empty result, got %+v", results)
	}

	// An inverted range behaves identically.
	results, err = fx.engine.Allocate(context.Background(), "emp-1",
		calendar.NewDateInterval(date(2025, time.June, 20), date(2025, time.June, 16)), now2025)
	if err != nil || len(results) != 0 {
		t.Fatalf("inverted range: expected empty result, got %+v err=%v", results, err)
	}
}

func TestAllocate_DayCountsSumToWorkableDays(t *testing.T) {
	// For every successful allocation the result day counts sum to the
	// request's workable days and no result is empty.
	fx := newEngineFixture(0, 6, 23)

	// Mon Jun 9 - Fri Jun 20: ten workable days. 6 fill 2025, the trailing 4
	// borrow from 2026.
	results, err := fx.engine.Allocate(context.Background(), "emp-1",
		calendar.NewDateInterval(date(2025, time.June, 9), date(2025, time.June, 20)), now2025)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if vacation.TotalDays(results) != 10 {
		t.Errorf("expected day counts to sum to 10, got %d", vacation.TotalDays(results))
	}
	lastYear := 0
	for _, r := range results {
		if r.Days <= 0 {
			t.Errorf("zero-day result returned: %+v", r)
		}
		if r.Year <= lastYear {
			t.Errorf("results out of year order: %+v", results)
		}
		lastYear = r.Year
	}
}

func TestAllocate_ExistingRecordsReduceRemaining(t *testing.T) {
	// GIVEN: 10-day 2025 entitlement with a pending 8-day record
	// WHEN: Requesting 5 days
	// THEN: Only 2 fit in 2025; the rest borrow from 2026

	fx := newEngineFixture(0, 10, 23)
	fx.store.SaveAll(context.Background(), []vacation.Record{
		// Mon Mar 3 - Wed Mar 12: 8 workable days.
		record("existing", 2025, vacation.StatusPending, date(2025, time.March, 3), date(2025, time.March, 12)),
	})

	results, err := fx.engine.Allocate(context.Background(), "emp-1", requestWeek(), now2025)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 || results[0].Days != 2 || results[1].Days != 3 {
		t.Fatalf("expected 2+3 split, got %+v", results)
	}
}

func TestEngine_RemainingFor(t *testing.T) {
	fx := newEngineFixture(3, 10, 23)
	fx.store.SaveAll(context.Background(), []vacation.Record{
		record("r1", 2025, vacation.StatusAccepted, date(2025, time.March, 3), date(2025, time.March, 5)),
	})

	balance, err := fx.engine.RemainingFor(context.Background(), "emp-1", 2025)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if balance.AllocatableDays() != 7 {
		t.Errorf("expected 7 remaining days, got %d", balance.AllocatableDays())
	}
}
