/*
counter.go - Plain day-counter engine

PURPOSE:
  Accumulates full days abroad from a start date, optionally toward a
  target. With a target it behaves like a milestone goal (eligible once
  the target is reached, with the exact crossing date reported); without
  one it is a running tally for display.

SEE ALSO:
  - threshold.go: The windowed (compliance) variant
*/
package engine

import "github.com/warp/residency-engine/trip"

func init() {
	Register(GoalDayCounter, &CounterEngine{})
}

// =============================================================================
// CONFIG
// =============================================================================

// CounterConfig parameterizes a day-counter goal.
type CounterConfig struct {
	// StartDate is when counting begins. Required.
	StartDate trip.Date

	// TargetDays, when positive, turns the counter into a milestone goal.
	TargetDays int
}

func (CounterConfig) GoalType() GoalType { return GoalDayCounter }

func (c CounterConfig) Validate() error {
	if c.StartDate.IsZero() {
		return &ConfigError{GoalType: GoalDayCounter, Field: "start_date", Detail: "required"}
	}
	if c.TargetDays < 0 {
		return &ConfigError{GoalType: GoalDayCounter, Field: "target_days", Detail: "must not be negative"}
	}
	return nil
}

// =============================================================================
// ENGINE
// =============================================================================

type CounterEngine struct{}

func (e *CounterEngine) Calculate(trips []trip.Interval, cfg Config, referenceDate trip.Date) (*Result, error) {
	counter, ok := cfg.(CounterConfig)
	if !ok {
		return nil, configMismatch(GoalDayCounter, cfg)
	}
	if err := counter.Validate(); err != nil {
		return nil, err
	}

	merged := trip.Normalize(trips)

	total := 0
	longest := 0
	var crossed trip.Date
	for _, iv := range merged {
		first, last, ok := countedRange(iv, CountFullDaysAbroad)
		if !ok {
			continue
		}
		lo := first.Max(counter.StartDate)
		hi := last.Min(referenceDate)
		if hi.Before(lo) {
			continue
		}
		days := trip.DaysBetween(lo, hi) + 1
		if counter.TargetDays > 0 && crossed.IsZero() && total+days >= counter.TargetDays {
			// The exact day the running count reached the target.
			crossed = lo.AddDays(counter.TargetDays - total - 1)
		}
		total += days
		if days > longest {
			longest = days
		}
	}

	status := StatusInProgress
	var eligibility *trip.Date
	daysUntil := 0
	switch {
	case len(merged) == 0 && referenceDate.BeforeOrEqual(counter.StartDate):
		status = StatusNotStarted
	case counter.TargetDays > 0 && total >= counter.TargetDays:
		status = StatusEligible
		eligibility = &crossed
		daysUntil = trip.DaysBetween(referenceDate, crossed)
	}

	result := &Result{
		GoalType:          GoalDayCounter,
		Status:            status,
		ProgressPercent:   progressRatio(total, counter.TargetDays),
		EligibilityDate:   eligibility,
		DaysUntilEligible: daysUntil,
		Metrics: []Metric{
			dayMetric("total_full_days_abroad", "Full days abroad since start", total),
			dayMetric("longest_single_absence", "Longest single absence", longest),
			countMetric("trips_counted", "Trips counted", len(merged)),
		},
	}
	if counter.TargetDays > 0 {
		result.Metrics = append(result.Metrics,
			dayMetric("target_days", "Target", counter.TargetDays))
	}
	return result, nil
}
