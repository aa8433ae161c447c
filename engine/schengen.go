/*
schengen.go - Schengen 90/180 compliance monitor

PURPOSE:
  Enforces the short-stay rule: at most 90 days inside the Schengen area
  within any rolling 180-day window. This goal is a continuous compliance
  monitor, not a one-time milestone - it never reaches eligible or
  achieved, and a breach heals once the violating stay ages out of the
  window.

COUNTING:
  Entry and exit days both count as days in the zone (the EU short-stay
  calculator convention), so the window analyzer runs inclusively here,
  unlike the UK engines.

STATUS:
  The reported status reflects the window ending at the reference date:
  a stay that aged out of that window no longer counts against the
  subject. The worst historical window is still exposed as a metric so a
  past overstay remains visible.

SEE ALSO:
  - window.go: WindowEndingAt / MaxWindow
*/
package engine

import "github.com/warp/residency-engine/trip"

func init() {
	Register(GoalSchengen90180, &SchengenEngine{})
}

// =============================================================================
// CONFIG
// =============================================================================

// SchengenConfig carries nothing: the 90/180 constants are fixed by
// regulation, not by the caller.
type SchengenConfig struct{}

func (SchengenConfig) GoalType() GoalType { return GoalSchengen90180 }
func (SchengenConfig) Validate() error    { return nil }

// =============================================================================
// ENGINE
// =============================================================================

type SchengenEngine struct{}

const (
	schengenWindowDays = 180
	schengenLimitDays  = 90
)

func (e *SchengenEngine) Calculate(trips []trip.Interval, cfg Config, referenceDate trip.Date) (*Result, error) {
	if _, ok := cfg.(SchengenConfig); !ok {
		return nil, configMismatch(GoalSchengen90180, cfg)
	}

	merged := trip.Normalize(trips)
	analyzer := RollingWindowAnalyzer{WindowDays: schengenWindowDays, Convention: CountTravelDaysInclusive}

	current := analyzer.WindowEndingAt(merged, referenceDate)
	worst := analyzer.MaxWindow(merged)

	remaining := schengenLimitDays - current
	if remaining < 0 {
		remaining = 0
	}

	status := StatusOnTrack
	switch {
	case len(merged) == 0:
		status = StatusNotStarted
	case current > schengenLimitDays:
		// Boundary is exclusive: exactly 90 days is compliant.
		status = StatusLimitExceeded
	case current >= atRiskFloor(schengenLimitDays):
		status = StatusAtRisk
	}

	result := &Result{
		GoalType:        GoalSchengen90180,
		Status:          status,
		ProgressPercent: progressRatio(current, schengenLimitDays),
		// No eligibility concept: the monitor never completes.
		EligibilityDate:   nil,
		DaysUntilEligible: 0,
		Metrics: []Metric{
			dayMetric("days_used_current_window", "Days used in current 180-day window", current),
			dayMetric("days_remaining", "Days remaining in current window", remaining),
			dayMetric("max_window_usage", "Max days in any 180-day window", worst.MaxDays),
		},
	}
	if worst.MaxDays > 0 {
		result.Metrics = append(result.Metrics,
			dateMetric("max_window_start", "Start of heaviest 180-day window", worst.WindowStart))
	}
	return result, nil
}
