/*
Package trip provides the absence interval model and day-count primitives.

PURPOSE:
  Normalizes raw trip records (two dates plus free-text route labels) into
  validated absence intervals, and provides the whole-day arithmetic every
  eligibility rule is built on: full days abroad, calendar spans, and
  overlap merging.

KEY CONCEPTS IN THIS FILE (interval.go):
  - Interval: One border-crossing round trip (departure, return)
  - FullDaysAbroad: Days entirely outside the territory (both travel
    days excluded) - the count most immigration rules use
  - CalendarDaySpan: Inclusive framing, display only
  - Normalize: Sort + merge so overlapping absence is never double-counted

DESIGN PRINCIPLES:
  1. Immutability: Intervals are constructed per calculation call and
     never mutated afterwards
  2. Whole-day arithmetic: All math runs on UTC calendar days (see date.go)
  3. Reject, don't coerce: A same-day trip is an error, not a zero-day
     absence - silent coercion would make results caller-order dependent

USAGE:
  iv, err := trip.NewInterval("t1", dep, ret, "LHR -> JFK", "JFK -> LHR")
  merged := trip.Normalize(intervals)
  days := iv.FullDaysAbroad()

SEE ALSO:
  - date.go: Calendar-day arithmetic
  - errors.go: InvalidIntervalError
  - engine: Analyzers and goal engines consuming intervals
*/
package trip

import "sort"

// =============================================================================
// INTERVAL - One border-crossing round trip
// =============================================================================

// Interval is a validated absence: the subject left the territory on
// Departure and re-entered on Return, with Return strictly after
// Departure. Route labels are display-only.
type Interval struct {
	ID             string
	Departure      Date
	Return         Date
	DepartureLabel string
	ReturnLabel    string
}

// NewInterval validates and constructs an absence interval.
// Return must be strictly after Departure: a trip out and back on the
// same calendar day has no meaning in day counting and is rejected.
func NewInterval(id string, departure, ret Date, departureLabel, returnLabel string) (Interval, error) {
	if departure.IsZero() || ret.IsZero() {
		return Interval{}, &InvalidIntervalError{
			TripID: id, Departure: departure, Return: ret,
			Detail: "missing departure or return date",
		}
	}
	if !ret.After(departure) {
		return Interval{}, &InvalidIntervalError{
			TripID: id, Departure: departure, Return: ret,
			Detail: "return date must be strictly after departure date",
		}
	}
	return Interval{
		ID:             id,
		Departure:      departure,
		Return:         ret,
		DepartureLabel: departureLabel,
		ReturnLabel:    returnLabel,
	}, nil
}

// FullDaysAbroad returns the number of days entirely spent outside the
// territory: (return - departure) - 1. The departure and return days
// themselves count as present, which is how UK absence rules count.
func (iv Interval) FullDaysAbroad() int {
	return DaysBetween(iv.Departure, iv.Return) - 1
}

// CalendarDaySpan returns (return - departure) in days, the inclusive
// framing used for secondary display metrics. Not used in eligibility math.
func (iv Interval) CalendarDaySpan() int {
	return DaysBetween(iv.Departure, iv.Return)
}

// Overlaps reports whether two intervals share or touch absence time.
// Touching (next departs the day the previous returns) counts: the
// subject never re-established a full day of presence in between.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Departure.BeforeOrEqual(other.Return) && other.Departure.BeforeOrEqual(iv.Return)
}

// =============================================================================
// NORMALIZATION - Sort + merge overlapping absence
// =============================================================================

// SortByDeparture returns a copy sorted ascending by departure date.
// Callers may supply trips in any order; every analyzer assumes sorted
// input, so sorting happens exactly once at the normalization boundary.
func SortByDeparture(intervals []Interval) []Interval {
	sorted := make([]Interval, len(intervals))
	copy(sorted, intervals)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Departure.Equal(sorted[j].Departure) {
			return sorted[i].Return.Before(sorted[j].Return)
		}
		return sorted[i].Departure.Before(sorted[j].Departure)
	})
	return sorted
}

// MergeOverlapping coalesces intervals sorted by departure: any pair
// where next.Departure <= current.Return collapses into a single
// interval spanning min(departure)..max(return). A user may log
// overlapping or amended trips; overlapping absence must never be
// double-counted.
//
// The merged interval keeps the first contributing trip's ID and labels.
func MergeOverlapping(sorted []Interval) []Interval {
	if len(sorted) == 0 {
		return nil
	}

	merged := make([]Interval, 0, len(sorted))
	current := sorted[0]

	for _, next := range sorted[1:] {
		if next.Departure.BeforeOrEqual(current.Return) {
			current.Return = current.Return.Max(next.Return)
			continue
		}
		merged = append(merged, current)
		current = next
	}
	merged = append(merged, current)
	return merged
}

// Normalize sorts and merges a caller-supplied interval slice. This is
// the single entry point analyzers use; the input slice is not modified.
func Normalize(intervals []Interval) []Interval {
	return MergeOverlapping(SortByDeparture(intervals))
}

// TotalFullDaysAbroad sums full days abroad across merged intervals.
func TotalFullDaysAbroad(merged []Interval) int {
	total := 0
	for _, iv := range merged {
		total += iv.FullDaysAbroad()
	}
	return total
}
