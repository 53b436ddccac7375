package calendar

// =============================================================================
// DATE INTERVAL - Inclusive [start, end] range of dates
// =============================================================================

// DateInterval is an inclusive pair of dates. Vacation requests, holiday
// queries and calendar windows are all expressed as intervals.
//
// An interval whose Start is after its End is "empty": it contains no dates.
// Empty intervals are valid inputs everywhere and never an error.
type DateInterval struct {
	Start TimePoint
	End   TimePoint
}

// NewDateInterval builds an interval; no ordering is enforced, an inverted
// pair simply behaves as an empty interval.
func NewDateInterval(start, end TimePoint) DateInterval {
	return DateInterval{Start: start, End: end}
}

// YearInterval returns the full calendar-year interval for a year.
func YearInterval(year int) DateInterval {
	return DateInterval{Start: StartOfYear(year), End: EndOfYear(year)}
}

// IsEmpty reports whether the interval contains no dates.
func (i DateInterval) IsEmpty() bool { return i.Start.After(i.End) }

// Contains reports whether the date lies within [Start, End].
func (i DateInterval) Contains(tp TimePoint) bool {
	return tp.AfterOrEqual(i.Start) && tp.BeforeOrEqual(i.End)
}

// Days returns every date in the interval in ascending order.
func (i DateInterval) Days() []TimePoint {
	var days []TimePoint
	for current := i.Start; current.BeforeOrEqual(i.End); current = current.AddDays(1) {
		days = append(days, current)
	}
	return days
}

func (i DateInterval) String() string {
	return "[" + i.Start.String() + ", " + i.End.String() + "]"
}
