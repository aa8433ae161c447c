package engine_test

import (
	"testing"
	"time"

	"github.com/warp/residency-engine/engine"
	"github.com/warp/residency-engine/trip"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func iv(t *testing.T, id, out, in string) trip.Interval {
	t.Helper()
	built, err := trip.NewInterval(id, trip.MustParseDate(out), trip.MustParseDate(in), "", "")
	if err != nil {
		t.Fatalf("building %s: %v", id, err)
	}
	return built
}

// bruteForceMax is the day-by-day reference oracle: slide the window
// start across every calendar day the history touches and count absence
// days inside it directly.
func bruteForceMax(merged []trip.Interval, windowDays int, c engine.DayConvention) int {
	if len(merged) == 0 {
		return 0
	}

	counted := make(map[string]bool)
	for _, interval := range merged {
		var first, last trip.Date
		if c == engine.CountTravelDaysInclusive {
			first, last = interval.Departure, interval.Return
		} else {
			first, last = interval.Departure.AddDays(1), interval.Return.AddDays(-1)
		}
		for d := first; !d.After(last); d = d.AddDays(1) {
			counted[d.String()] = true
		}
	}

	earliest := merged[0].Departure.AddDays(-windowDays)
	latest := merged[len(merged)-1].Return

	max := 0
	for start := earliest; !start.After(latest); start = start.AddDays(1) {
		total := 0
		for i := 0; i < windowDays; i++ {
			if counted[start.AddDays(i).String()] {
				total++
			}
		}
		if total > max {
			max = total
		}
	}
	return max
}

// =============================================================================
// ORACLE COMPARISONS
// =============================================================================

func TestMaxWindow_MatchesBruteForce(t *testing.T) {
	// Hand-built histories covering clustered, spread, overlapping-merge,
	// and window-straddling shapes.
	histories := map[string][]trip.Interval{
		"clustered": {
			iv(t, "a", "2024-01-05", "2024-01-20"),
			iv(t, "b", "2024-02-01", "2024-02-25"),
			iv(t, "c", "2024-03-10", "2024-03-18"),
		},
		"spread": {
			iv(t, "a", "2022-03-01", "2022-04-01"),
			iv(t, "b", "2023-02-10", "2023-03-15"),
			iv(t, "c", "2024-01-20", "2024-02-02"),
		},
		"merged-overlaps": {
			iv(t, "a", "2024-01-01", "2024-01-20"),
			iv(t, "b", "2024-01-15", "2024-02-10"),
			iv(t, "c", "2024-02-10", "2024-02-20"),
			iv(t, "d", "2024-06-01", "2024-06-30"),
		},
		"one-night-trips": {
			iv(t, "a", "2024-01-01", "2024-01-02"),
			iv(t, "b", "2024-01-10", "2024-01-11"),
			iv(t, "c", "2024-02-01", "2024-03-01"),
		},
	}

	for name, history := range histories {
		for _, convention := range []engine.DayConvention{
			engine.CountFullDaysAbroad, engine.CountTravelDaysInclusive,
		} {
			merged := trip.Normalize(history)
			analyzer := engine.RollingWindowAnalyzer{WindowDays: 90, Convention: convention}

			got := analyzer.MaxWindow(merged).MaxDays
			want := bruteForceMax(merged, 90, convention)

			if got != want {
				t.Errorf("%s (convention %d): analyzer says %d, oracle says %d",
					name, convention, got, want)
			}
		}
	}
}

func TestMaxWindow_TwoOfThreeAbsencesFit(t *testing.T) {
	// GIVEN: Three 30-day absences spread so any 365-day window holds two
	// WHEN: Analyzing with W=365
	// THEN: Max equals the sum of the two absences a window can contain

	history := []trip.Interval{
		iv(t, "a", "2023-01-01", "2023-02-01"), // 30 full days
		iv(t, "b", "2023-07-01", "2023-08-01"), // 30 full days
		iv(t, "c", "2024-01-10", "2024-02-10"), // 31 full days
	}
	merged := trip.Normalize(history)
	analyzer := engine.RollingWindowAnalyzer{WindowDays: 365, Convention: engine.CountFullDaysAbroad}

	result := analyzer.MaxWindow(merged)

	want := bruteForceMax(merged, 365, engine.CountFullDaysAbroad)
	if result.MaxDays != want {
		t.Errorf("analyzer says %d, oracle says %d", result.MaxDays, want)
	}
	// First and third absences are ~374 days apart: no window holds all
	// three, so the max is b + c = 61.
	if result.MaxDays != 61 {
		t.Errorf("expected 61 days (second + third absence), got %d", result.MaxDays)
	}
}

// =============================================================================
// EDGE CASES
// =============================================================================

func TestMaxWindow_SingleIntervalLongerThanWindow_ClipsToWindow(t *testing.T) {
	// A 400-day stay cannot contribute more than W days to any window.
	merged := trip.Normalize([]trip.Interval{
		iv(t, "long", "2023-01-01", "2024-02-05"),
	})
	analyzer := engine.RollingWindowAnalyzer{WindowDays: 180, Convention: engine.CountTravelDaysInclusive}

	if got := analyzer.MaxWindow(merged).MaxDays; got != 180 {
		t.Errorf("expected clipped 180 days, got %d", got)
	}
}

func TestMaxWindow_EmptyHistory(t *testing.T) {
	analyzer := engine.RollingWindowAnalyzer{WindowDays: 365, Convention: engine.CountFullDaysAbroad}

	result := analyzer.MaxWindow(nil)
	if result.MaxDays != 0 {
		t.Errorf("expected 0 for empty history, got %d", result.MaxDays)
	}
	if !result.WindowStart.IsZero() {
		t.Errorf("expected zero window start, got %s", result.WindowStart)
	}
}

func TestMaxWindow_ReportsWindowStart(t *testing.T) {
	merged := trip.Normalize([]trip.Interval{
		iv(t, "a", "2024-01-10", "2024-01-20"),
	})
	analyzer := engine.RollingWindowAnalyzer{WindowDays: 365, Convention: engine.CountFullDaysAbroad}

	result := analyzer.MaxWindow(merged)
	// First counted day under the full-days convention.
	if !result.WindowStart.Equal(trip.NewDate(2024, time.January, 11)) {
		t.Errorf("expected window anchored at first full day abroad, got %s", result.WindowStart)
	}
}

func TestWindowEndingAt_CurrentWindow(t *testing.T) {
	// 10-day inclusive stay, reference 5 days after return: all 10 days
	// still inside the 180-day window ending at the reference date.
	merged := trip.Normalize([]trip.Interval{
		iv(t, "a", "2024-06-01", "2024-06-10"),
	})
	analyzer := engine.RollingWindowAnalyzer{WindowDays: 180, Convention: engine.CountTravelDaysInclusive}

	got := analyzer.WindowEndingAt(merged, trip.NewDate(2024, time.June, 15))
	if got != 10 {
		t.Errorf("expected 10 days in current window, got %d", got)
	}

	// Far in the future the stay has aged out entirely.
	aged := analyzer.WindowEndingAt(merged, trip.NewDate(2025, time.June, 15))
	if aged != 0 {
		t.Errorf("expected stay to age out, got %d", aged)
	}
}

func TestMaxWindowWithin_IgnoresAnchorsOutsideRange(t *testing.T) {
	// An absence before the qualifying period cannot anchor a window,
	// but its tail inside the period still counts from a clamped anchor.
	merged := trip.Normalize([]trip.Interval{
		iv(t, "old", "2019-01-01", "2019-03-01"),
		iv(t, "new", "2021-06-01", "2021-06-20"),
	})
	analyzer := engine.RollingWindowAnalyzer{WindowDays: 365, Convention: engine.CountFullDaysAbroad}

	from := trip.NewDate(2021, time.January, 1)
	to := trip.NewDate(2021, time.December, 31)
	result := analyzer.MaxWindowWithin(merged, from, to)

	if result.MaxDays != 18 {
		t.Errorf("expected only the in-period absence (18 days), got %d", result.MaxDays)
	}
}
