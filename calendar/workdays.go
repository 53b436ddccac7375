package calendar

// =============================================================================
// WORKABLE DAYS - The calendar engine
// =============================================================================

// WorkableDays expands an interval into the ordered sequence of workable
// dates it contains: every date in [Start, End] that is neither a Saturday,
// a Sunday, nor a member of the holiday set.
//
// Pure function: calling it twice with identical inputs yields identical
// output. An empty interval (Start after End) yields nil, not an error.
func WorkableDays(interval DateInterval, holidays HolidaySet) []TimePoint {
	var days []TimePoint
	for current := interval.Start; current.BeforeOrEqual(interval.End); current = current.AddDays(1) {
		if current.IsWeekend() {
			continue
		}
		if holidays.Contains(current) {
			continue
		}
		days = append(days, current)
	}
	return days
}

// CountWorkableDays returns len(WorkableDays(interval, holidays)) without
// materializing the slice.
func CountWorkableDays(interval DateInterval, holidays HolidaySet) int {
	count := 0
	for current := interval.Start; current.BeforeOrEqual(interval.End); current = current.AddDays(1) {
		if current.IsWeekend() || holidays.Contains(current) {
			continue
		}
		count++
	}
	return count
}
