/*
presence.go - Continuous-presence analyzer

PURPOSE:
  Computes the longest unbroken span the subject has remained in-territory
  between a goal's start date and the reference date, plus the current
  streak ending at the reference date. "Continuous leave" style goals and
  the on-track feedback metrics both read from here.

COUNTING:
  A presence run spans the gap between consecutive merged absences. Both
  bounding travel days belong to the run - the subject is in-territory on
  the day they return and on the day they next depart. Runs are clipped
  to [start, referenceDate].

SEE ALSO:
  - window.go: The complementary absence analyzer
  - trip/interval.go: Normalize() produces the merged input expected here
*/
package engine

import "github.com/warp/residency-engine/trip"

// PresenceResult describes in-territory runs between a start date and a
// reference date.
type PresenceResult struct {
	// LongestRunDays is the longest unbroken in-territory span observed.
	LongestRunDays  int
	LongestRunStart trip.Date

	// CurrentRunDays is the streak ending at the reference date. Zero when
	// the subject is abroad on the reference date.
	CurrentRunDays  int
	CurrentRunStart trip.Date
}

// PresenceAnalyzer computes presence runs from merged, sorted absences.
type PresenceAnalyzer struct{}

// Analyze walks the gaps between merged absences inside [start, reference].
// Intervals outside the range are ignored; an interval straddling the
// range boundary shortens the run it touches.
func (PresenceAnalyzer) Analyze(merged []trip.Interval, start, reference trip.Date) PresenceResult {
	var result PresenceResult
	if reference.Before(start) {
		return result
	}

	runStart := start
	abroad := false

	record := func(from, to trip.Date) {
		if to.Before(from) {
			return
		}
		days := trip.DaysBetween(from, to) + 1
		if days > result.LongestRunDays {
			result.LongestRunDays = days
			result.LongestRunStart = from
		}
	}

	for _, iv := range merged {
		// Fully outside the observed range.
		if iv.Return.Before(start) || iv.Departure.After(reference) {
			continue
		}

		// Run up to (and including) the departure day.
		if iv.Departure.AfterOrEqual(runStart) {
			record(runStart, iv.Departure.Min(reference))
		}

		// Abroad across the reference date: no current streak.
		if iv.Return.After(reference) {
			abroad = true
			break
		}
		runStart = runStart.Max(iv.Return)
	}

	if !abroad {
		record(runStart, reference)
		result.CurrentRunDays = trip.DaysBetween(runStart, reference) + 1
		result.CurrentRunStart = runStart
	}
	return result
}
