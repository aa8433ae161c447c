/*
window.go - Rolling-window absence maximizer

PURPOSE:
  Answers the question at the heart of every rolling-window rule: what is
  the maximum total absence inside any single W-day window across the
  observed history? UK ILR asks it with W=365 and full days abroad;
  Schengen asks it with W=180 and both travel days counted.

ALGORITHM:
  Candidate window starts are restricted to each merged interval's first
  counted day. Any maximizing window can be slid right until its first day
  is a counted absence day without losing total (days can only join at the
  right edge while none leave at the left), so testing those anchors is
  sufficient. This bounds the search to O(n) windows with an O(n) clipped
  sum each - O(n^2) worst case, fine for histories of hundreds of trips.

DAY CONVENTIONS:
  Jurisdictions disagree about travel days. UK absence rules count only
  days entirely outside the territory (departure and return excluded);
  the Schengen calculator counts entry and exit days as days in the zone.
  The analyzer takes the convention as a parameter so both share one
  implementation.

EDGE CASES:
  - A single interval longer than W clips to at most W counted days.
  - An empty history reports zero with a zero-value window start.

SEE ALSO:
  - presence.go: The complementary in-territory analyzer
  - trip/interval.go: Normalize() produces the merged input expected here
*/
package engine

import "github.com/warp/residency-engine/trip"

// =============================================================================
// DAY CONVENTION - Which days of an interval count
// =============================================================================

type DayConvention int

const (
	// CountFullDaysAbroad counts only days entirely outside the territory:
	// the days strictly between departure and return.
	CountFullDaysAbroad DayConvention = iota

	// CountTravelDaysInclusive counts every day from departure through
	// return, both travel days included.
	CountTravelDaysInclusive
)

// countedRange returns the first and last counted day of an interval
// under the convention. ok is false when the interval contributes no
// counted days (a one-night trip under the full-days convention).
func countedRange(iv trip.Interval, c DayConvention) (first, last trip.Date, ok bool) {
	switch c {
	case CountTravelDaysInclusive:
		return iv.Departure, iv.Return, true
	default:
		first = iv.Departure.AddDays(1)
		last = iv.Return.AddDays(-1)
		return first, last, !last.Before(first)
	}
}

// =============================================================================
// ROLLING-WINDOW ANALYZER
// =============================================================================

// RollingWindowAnalyzer computes windowed absence totals over merged,
// sorted intervals. Zero-valued fields are invalid; construct with both
// set.
type RollingWindowAnalyzer struct {
	WindowDays int
	Convention DayConvention
}

// WindowResult reports the maximum window and where it sits. The start
// date feeds the "at risk" / "limit exceeded" metric explanation.
type WindowResult struct {
	MaxDays     int
	WindowStart trip.Date
	WindowEnd   trip.Date
}

// MaxWindow returns the maximum counted days inside any WindowDays-day
// window, across all candidate anchors in the history.
func (a RollingWindowAnalyzer) MaxWindow(merged []trip.Interval) WindowResult {
	return a.maxWindow(merged, trip.Date{}, trip.Date{})
}

// MaxWindowWithin restricts candidate window starts to [from, to].
// Used by qualifying-period rules: only windows anchored inside the
// period can disqualify.
func (a RollingWindowAnalyzer) MaxWindowWithin(merged []trip.Interval, from, to trip.Date) WindowResult {
	return a.maxWindow(merged, from, to)
}

func (a RollingWindowAnalyzer) maxWindow(merged []trip.Interval, from, to trip.Date) WindowResult {
	var best WindowResult
	for _, iv := range merged {
		anchor, _, ok := countedRange(iv, a.Convention)
		if !ok {
			continue
		}
		if !from.IsZero() && anchor.Before(from) {
			anchor = from
		}
		if !to.IsZero() && anchor.After(to) {
			continue
		}
		total := a.WindowTotal(merged, anchor)
		if total > best.MaxDays {
			best = WindowResult{
				MaxDays:     total,
				WindowStart: anchor,
				WindowEnd:   anchor.AddDays(a.WindowDays - 1),
			}
		}
	}
	return best
}

// WindowTotal sums the counted days of every interval intersecting the
// window [start, start + WindowDays), clipped to the window boundary.
func (a RollingWindowAnalyzer) WindowTotal(merged []trip.Interval, start trip.Date) int {
	end := start.AddDays(a.WindowDays - 1)
	total := 0
	for _, iv := range merged {
		first, last, ok := countedRange(iv, a.Convention)
		if !ok {
			continue
		}
		lo := first.Max(start)
		hi := last.Min(end)
		if hi.Before(lo) {
			continue
		}
		total += trip.DaysBetween(lo, hi) + 1
	}
	return total
}

// WindowEndingAt sums counted days in the window whose last day is end,
// i.e. [end - WindowDays + 1, end]. This is the "current window" a
// compliance monitor reports against the reference date.
func (a RollingWindowAnalyzer) WindowEndingAt(merged []trip.Interval, end trip.Date) int {
	return a.WindowTotal(merged, end.AddDays(-(a.WindowDays - 1)))
}

// latestReturnTouching finds the latest return date among intervals whose
// counted days intersect [windowStart, windowEnd]. Qualifying-period
// reset policies restart the clock after the violating absence ends.
func latestReturnTouching(merged []trip.Interval, windowStart, windowEnd trip.Date, c DayConvention) trip.Date {
	var latest trip.Date
	for _, iv := range merged {
		first, last, ok := countedRange(iv, c)
		if !ok {
			continue
		}
		if last.Before(windowStart) || first.After(windowEnd) {
			continue
		}
		latest = latest.Max(iv.Return)
	}
	return latest
}
