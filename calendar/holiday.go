package calendar

// =============================================================================
// HOLIDAY - A non-workable calendar date
// =============================================================================

// Holiday marks a single date as non-workable. Holidays are sourced
// externally (public holiday feeds, company calendars) and are immutable
// inputs for the duration of one allocation.
type Holiday struct {
	ID          string
	Date        TimePoint
	Description string
}

// =============================================================================
// HOLIDAY SET - Membership lookup for workable-day expansion
// =============================================================================

// HolidaySet answers "is this date a holiday?" in O(1). Build one per
// allocation from the holidays covering the relevant year window.
type HolidaySet struct {
	dates map[string]struct{}
}

// NewHolidaySet indexes a batch of holidays by date. Duplicate dates collapse.
func NewHolidaySet(holidays []Holiday) HolidaySet {
	dates := make(map[string]struct{}, len(holidays))
	for _, h := range holidays {
		dates[h.Date.String()] = struct{}{}
	}
	return HolidaySet{dates: dates}
}

// Contains reports whether the date is a holiday.
func (s HolidaySet) Contains(tp TimePoint) bool {
	_, ok := s.dates[tp.String()]
	return ok
}

// Len returns the number of distinct holiday dates in the set.
func (s HolidaySet) Len() int { return len(s.dates) }
