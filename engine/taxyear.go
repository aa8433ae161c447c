/*
taxyear.go - UK tax residency engine

PURPOSE:
  Tracks days present in the UK against a threshold inside the UK tax
  year (6 April - 5 April), for users managing non-residency. Unlike the
  rolling-window rules, the boundary here is a fixed calendar one, and
  the counted quantity is days PRESENT (the inverse of absence).

COUNTING:
  Days present so far = calendar days elapsed in the tax year minus full
  days abroad falling inside it. Travel days count as present, which
  approximates the statutory midnight test closely enough for a planning
  tool (HMRC's deeming rules are out of scope).

THRESHOLD SEMANTICS:
  Reaching the threshold makes the subject tax resident, so the limit is
  breached AT the threshold itself (>=), unlike the exclusive Schengen
  boundary. Common thresholds: 16, 46, 90, 183 depending on ties.

SEE ALSO:
  - trip/interval.go: Full-days arithmetic being inverted here
*/
package engine

import (
	"fmt"
	"time"

	"github.com/warp/residency-engine/trip"
)

func init() {
	Register(GoalUKTaxResidency, &TaxYearEngine{})
}

// =============================================================================
// CONFIG
// =============================================================================

// TaxYearConfig parameterizes the UK tax residency engine.
type TaxYearConfig struct {
	// ThresholdDays is the presence count at which UK tax residency is
	// triggered for this user's circumstances. Required, positive.
	ThresholdDays int
}

func (TaxYearConfig) GoalType() GoalType { return GoalUKTaxResidency }

func (c TaxYearConfig) Validate() error {
	if c.ThresholdDays <= 0 {
		return &ConfigError{GoalType: GoalUKTaxResidency, Field: "threshold_days", Detail: "must be positive"}
	}
	return nil
}

// =============================================================================
// TAX YEAR BOUNDARY
// =============================================================================

// ukTaxYear returns the 6 April - 5 April year containing the date.
func ukTaxYear(d trip.Date) (start, end trip.Date) {
	start = trip.NewDate(d.Year(), time.April, 6)
	if d.Before(start) {
		start = trip.NewDate(d.Year()-1, time.April, 6)
	}
	end = start.AddYears(1).AddDays(-1)
	return start, end
}

// =============================================================================
// ENGINE
// =============================================================================

type TaxYearEngine struct{}

func (e *TaxYearEngine) Calculate(trips []trip.Interval, cfg Config, referenceDate trip.Date) (*Result, error) {
	tax, ok := cfg.(TaxYearConfig)
	if !ok {
		return nil, configMismatch(GoalUKTaxResidency, cfg)
	}
	if err := tax.Validate(); err != nil {
		return nil, err
	}

	yearStart, yearEnd := ukTaxYear(referenceDate)
	merged := trip.Normalize(trips)

	elapsed := trip.DaysBetween(yearStart, referenceDate) + 1
	abroad := fullDaysAbroadWithin(merged, yearStart, referenceDate)
	present := elapsed - abroad

	remaining := tax.ThresholdDays - present
	if remaining < 0 {
		remaining = 0
	}

	status := StatusOnTrack
	switch {
	case len(merged) == 0 && elapsed <= 1:
		status = StatusNotStarted
	case present >= tax.ThresholdDays:
		status = StatusLimitExceeded
	case present >= atRiskFloor(tax.ThresholdDays):
		status = StatusAtRisk
	case referenceDate.Equal(yearEnd):
		// Survived the whole tax year under the threshold.
		status = StatusEligible
	}

	yearLabel := fmt.Sprintf("%d/%02d", yearStart.Year(), (yearStart.Year()+1)%100)
	yearDays := trip.DaysBetween(yearStart, yearEnd) + 1

	return &Result{
		GoalType: GoalUKTaxResidency,
		Status:   status,
		// Progress through the tax year, not toward the threshold: the
		// goal completes by reaching 5 April under the limit.
		ProgressPercent:   progressRatio(elapsed, yearDays),
		EligibilityDate:   &yearEnd,
		DaysUntilEligible: trip.DaysBetween(referenceDate, yearEnd),
		Metrics: []Metric{
			textMetric("tax_year", "Tax year", yearLabel),
			dayMetric("days_present", "Days present in UK this tax year", present),
			dayMetric("presence_threshold", "Residency threshold", tax.ThresholdDays),
			dayMetric("days_remaining", "Presence allowance remaining", remaining),
			dayMetric("full_days_abroad", "Full days abroad this tax year", abroad),
		},
	}, nil
}

// fullDaysAbroadWithin sums full days abroad clipped to [from, to].
func fullDaysAbroadWithin(merged []trip.Interval, from, to trip.Date) int {
	total := 0
	for _, iv := range merged {
		first, last, ok := countedRange(iv, CountFullDaysAbroad)
		if !ok {
			continue
		}
		lo := first.Max(from)
		hi := last.Min(to)
		if hi.Before(lo) {
			continue
		}
		total += trip.DaysBetween(lo, hi) + 1
	}
	return total
}
