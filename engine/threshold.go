/*
threshold.go - Generic rolling-threshold engine

PURPOSE:
  Caller-defined compliance goals: stay under threshold_days of absence
  inside any rolling window_days window. The same analyzer that powers
  ILR and Schengen runs here with user-supplied constants, which is how
  custom goals ("no more than 60 days away in any 6 months") are built.

SEE ALSO:
  - window.go: The analyzer this engine parameterizes
  - counter.go: The accumulating (non-windowed) variant
*/
package engine

import "github.com/warp/residency-engine/trip"

func init() {
	Register(GoalCustomThreshold, &ThresholdEngine{})
}

// =============================================================================
// CONFIG
// =============================================================================

// ThresholdConfig parameterizes a custom rolling-window goal.
type ThresholdConfig struct {
	// ThresholdDays is the absence allowance per window. Required, positive.
	ThresholdDays int

	// WindowDays is the rolling window length. Required, positive.
	WindowDays int
}

func (ThresholdConfig) GoalType() GoalType { return GoalCustomThreshold }

func (c ThresholdConfig) Validate() error {
	if c.ThresholdDays <= 0 {
		return &ConfigError{GoalType: GoalCustomThreshold, Field: "threshold_days", Detail: "must be positive"}
	}
	if c.WindowDays <= 0 {
		return &ConfigError{GoalType: GoalCustomThreshold, Field: "window_days", Detail: "must be positive"}
	}
	if c.ThresholdDays > c.WindowDays {
		return &ConfigError{GoalType: GoalCustomThreshold, Field: "threshold_days", Detail: "cannot exceed window_days"}
	}
	return nil
}

// =============================================================================
// ENGINE
// =============================================================================

type ThresholdEngine struct{}

func (e *ThresholdEngine) Calculate(trips []trip.Interval, cfg Config, referenceDate trip.Date) (*Result, error) {
	th, ok := cfg.(ThresholdConfig)
	if !ok {
		return nil, configMismatch(GoalCustomThreshold, cfg)
	}
	if err := th.Validate(); err != nil {
		return nil, err
	}

	merged := trip.Normalize(trips)
	analyzer := RollingWindowAnalyzer{WindowDays: th.WindowDays, Convention: CountFullDaysAbroad}

	current := analyzer.WindowEndingAt(merged, referenceDate)
	worst := analyzer.MaxWindow(merged)

	remaining := th.ThresholdDays - current
	if remaining < 0 {
		remaining = 0
	}

	status := StatusOnTrack
	switch {
	case len(merged) == 0:
		status = StatusNotStarted
	case current > th.ThresholdDays:
		status = StatusLimitExceeded
	case current >= atRiskFloor(th.ThresholdDays):
		status = StatusAtRisk
	}

	result := &Result{
		GoalType:          GoalCustomThreshold,
		Status:            status,
		ProgressPercent:   progressRatio(current, th.ThresholdDays),
		EligibilityDate:   nil,
		DaysUntilEligible: 0,
		Metrics: []Metric{
			dayMetric("days_used_current_window", "Absence in current window", current),
			dayMetric("days_remaining", "Allowance remaining", remaining),
			dayMetric("max_window_usage", "Max absence in any window", worst.MaxDays),
		},
	}
	if worst.MaxDays > 0 {
		result.Metrics = append(result.Metrics,
			dateMetric("max_window_start", "Start of heaviest window", worst.WindowStart))
	}
	return result, nil
}
