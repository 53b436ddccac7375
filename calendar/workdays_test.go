package calendar_test

import (
	"testing"
	"time"

	"github.com/warp/vacation-engine/calendar"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func date(year int, month time.Month, day int) calendar.TimePoint {
	return calendar.NewTimePoint(year, month, day)
}

func interval(start, end calendar.TimePoint) calendar.DateInterval {
	return calendar.NewDateInterval(start, end)
}

func holidaysOn(dates ...calendar.TimePoint) calendar.HolidaySet {
	hs := make([]calendar.Holiday, len(dates))
	for i, d := range dates {
		hs[i] = calendar.Holiday{Date: d, Description: "test holiday"}
	}
	return calendar.NewHolidaySet(hs)
}

// =============================================================================
// WORKABLE DAY TESTS
// =============================================================================

func TestWorkableDays_ExcludesWeekends(t *testing.T) {
	// GIVEN: A full week, Monday Jan 6 through Sunday Jan 12 2025
	// WHEN: Expanding workable days with no holidays
	// THEN: Only Monday-Friday remain, in ascending order

	days := calendar.WorkableDays(interval(date(2025, time.January, 6), date(2025, time.January, 12)), holidaysOn())

	if len(days) != 5 {
		t.Fatalf("expected 5 workable days, got %d", len(days))
	}
	for i, d := range days {
		if d.IsWeekend() {
			t.Errorf("day %d (%s) is a weekend", i, d)
		}
		if i > 0 && !days[i-1].Before(d) {
			t.Errorf("days out of order: %s before %s", days[i-1], d)
		}
	}
	if !days[0].Equal(date(2025, time.January, 6)) || !days[4].Equal(date(2025, time.January, 10)) {
		t.Errorf("unexpected bounds: %s .. %s", days[0], days[4])
	}
}

func TestWorkableDays_ExcludesHolidays(t *testing.T) {
	// GIVEN: Monday-Friday with Wednesday declared a holiday
	// WHEN: Expanding workable days
	// THEN: Four days remain and Wednesday is skipped

	wednesday := date(2025, time.January, 8)
	days := calendar.WorkableDays(
		interval(date(2025, time.January, 6), date(2025, time.January, 10)),
		holidaysOn(wednesday),
	)

	if len(days) != 4 {
		t.Fatalf("expected 4 workable days, got %d", len(days))
	}
	for _, d := range days {
		if d.Equal(wednesday) {
			t.Errorf("holiday %s was not excluded", wednesday)
		}
	}
}

func TestWorkableDays_HolidayOnWeekend_NotDoubleCounted(t *testing.T) {
	// A holiday falling on a Saturday must not change the outcome.
	saturday := date(2025, time.January, 11)
	withHoliday := calendar.WorkableDays(interval(date(2025, time.January, 6), date(2025, time.January, 12)), holidaysOn(saturday))
	without := calendar.WorkableDays(interval(date(2025, time.January, 6), date(2025, time.January, 12)), holidaysOn())

	if len(withHoliday) != len(without) {
		t.Errorf("weekend holiday changed workable count: %d vs %d", len(withHoliday), len(without))
	}
}

func TestWorkableDays_InvertedInterval_IsEmpty(t *testing.T) {
	// Start after end is a valid, empty request - not an error.
	days := calendar.WorkableDays(interval(date(2025, time.March, 10), date(2025, time.March, 3)), holidaysOn())
	if len(days) != 0 {
		t.Fatalf("expected no days for inverted interval, got %d", len(days))
	}
}

func TestWorkableDays_SingleDay(t *testing.T) {
	monday := date(2025, time.June, 2)
	days := calendar.WorkableDays(interval(monday, monday), holidaysOn())
	if len(days) != 1 || !days[0].Equal(monday) {
		t.Fatalf("expected exactly the requested Monday, got %v", days)
	}

	sunday := date(2025, time.June, 1)
	days = calendar.WorkableDays(interval(sunday, sunday), holidaysOn())
	if len(days) != 0 {
		t.Fatalf("expected no workable days for a Sunday, got %d", len(days))
	}
}

func TestWorkableDays_Idempotent(t *testing.T) {
	// Pure function: two identical calls yield identical output.
	in := interval(date(2024, time.December, 23), date(2025, time.January, 6))
	hs := holidaysOn(date(2024, time.December, 25), date(2025, time.January, 1))

	first := calendar.WorkableDays(in, hs)
	second := calendar.WorkableDays(in, hs)

	if len(first) != len(second) {
		t.Fatalf("idempotence broken: %d vs %d days", len(first), len(second))
	}
	for i := range first {
		if !first[i].Equal(second[i]) {
			t.Errorf("day %d differs: %s vs %s", i, first[i], second[i])
		}
	}
}

func TestCountWorkableDays_MatchesExpansion(t *testing.T) {
	in := interval(date(2025, time.April, 1), date(2025, time.April, 30))
	hs := holidaysOn(date(2025, time.April, 18), date(2025, time.April, 21))

	if got, want := calendar.CountWorkableDays(in, hs), len(calendar.WorkableDays(in, hs)); got != want {
		t.Errorf("count %d does not match expansion %d", got, want)
	}
}
