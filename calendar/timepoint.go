/*
Package calendar provides the date arithmetic underneath the vacation engine.

PURPOSE:
  Vacation allocation is entirely about calendar dates: which days fall inside
  a requested range, which of those are workable, and which calendar year each
  one belongs to. This package owns those primitives so the domain logic in
  package vacation never touches time.Time directly.

KEY CONCEPTS:
  - TimePoint:    A single calendar date (day granularity, always UTC)
  - DateInterval: An inclusive [start, end] pair of dates
  - Holiday:      A non-workable date with a description
  - HolidaySet:   Fast date membership lookup over a batch of holidays
  - WorkableDays: The calendar engine - expands an interval into workable dates

DESIGN PRINCIPLES:
  1. Day granularity only: hours and time zones are out of scope here
  2. Purity: every function is deterministic over its inputs, no clock reads
  3. Inclusive intervals: [start, end] both ends included, matching how people
     request vacation ("from the 3rd to the 7th")

SEE ALSO:
  - workdays.go: the workable-day expansion
  - vacation/allocate.go: the allocation algorithm consuming these types
*/
package calendar

import "time"

// =============================================================================
// TIME POINT - A single calendar date
// =============================================================================

// TimePoint is a calendar date. The embedded time.Time is always normalized
// to midnight UTC, so Equal/Before/After behave as pure date comparisons.
type TimePoint struct {
	Time time.Time
}

// NewTimePoint builds a date from its components.
func NewTimePoint(year int, month time.Month, day int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// FromTime truncates an arbitrary instant down to its calendar date.
func FromTime(t time.Time) TimePoint {
	return NewTimePoint(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a date in ISO "2006-01-02" form.
func ParseDate(s string) (TimePoint, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return TimePoint{}, err
	}
	return FromTime(t), nil
}

// Comparison
func (tp TimePoint) Before(other TimePoint) bool        { return tp.Time.Before(other.Time) }
func (tp TimePoint) After(other TimePoint) bool         { return tp.Time.After(other.Time) }
func (tp TimePoint) Equal(other TimePoint) bool         { return tp.Time.Equal(other.Time) }
func (tp TimePoint) BeforeOrEqual(other TimePoint) bool { return !tp.After(other) }
func (tp TimePoint) AfterOrEqual(other TimePoint) bool  { return !tp.Before(other) }

// Arithmetic
func (tp TimePoint) AddDays(n int) TimePoint  { return TimePoint{Time: tp.Time.AddDate(0, 0, n)} }
func (tp TimePoint) AddYears(n int) TimePoint { return TimePoint{Time: tp.Time.AddDate(n, 0, 0)} }

// Properties
func (tp TimePoint) Year() int             { return tp.Time.Year() }
func (tp TimePoint) Month() time.Month     { return tp.Time.Month() }
func (tp TimePoint) Day() int              { return tp.Time.Day() }
func (tp TimePoint) Weekday() time.Weekday { return tp.Time.Weekday() }
func (tp TimePoint) IsZero() bool          { return tp.Time.IsZero() }

// IsWeekend reports whether the date falls on a Saturday or Sunday.
func (tp TimePoint) IsWeekend() bool {
	wd := tp.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func (tp TimePoint) String() string { return tp.Time.Format("2006-01-02") }

// =============================================================================
// YEAR BOUNDARIES
// =============================================================================

// StartOfYear returns January 1st of the given year.
func StartOfYear(year int) TimePoint { return NewTimePoint(year, time.January, 1) }

// EndOfYear returns December 31st of the given year.
func EndOfYear(year int) TimePoint { return NewTimePoint(year, time.December, 31) }
