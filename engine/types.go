/*
Package engine implements the eligibility rule engine.

PURPOSE:
  Given a trip history, a goal configuration, and a reference date, each
  goal engine computes a deterministic eligibility verdict: status,
  progress, eligibility date, and jurisdiction-specific display metrics.
  The same engine answers a browser request, a server API route, or a
  batch import - it is a pure function of its inputs.

KEY CONCEPTS IN THIS FILE (types.go):
  - GoalType: Closed enumeration of supported goal kinds
  - Status: Shared state machine all engines report through
  - Config: Discriminated union of per-goal parameters
  - Result: The engine's output (plain, serializable data)
  - Engine: The contract every goal implementation satisfies

DESIGN PRINCIPLES:
  1. Purity: No I/O, no wall-clock reads, no hidden state. The reference
     date is an explicit parameter.
  2. Statelessness: Engines are instantiated once at registry build time
     and hold no per-call fields, so concurrent calls need no coordination.
  3. Precision: Progress percentages use decimal.Decimal, never float64.
  4. Reject, don't default: A config of the wrong shape for its goal type
     is an error at the boundary, not deep inside a calculation.

USAGE:
  result, err := engine.Calculate(trips, engine.GoalUKILR, cfg, refDate)

SEE ALSO:
  - registry.go: Goal-type to engine lookup
  - window.go, presence.go: Shared analyzers
  - ilr.go, schengen.go, taxyear.go, threshold.go, counter.go: Engines
*/
package engine

import (
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/warp/residency-engine/trip"
)

// =============================================================================
// GOAL TYPES - Closed enumeration, one engine per type
// =============================================================================

type GoalType string

const (
	GoalUKILR           GoalType = "uk_ilr"
	GoalSchengen90180   GoalType = "schengen_90_180"
	GoalUKTaxResidency  GoalType = "uk_tax_residency"
	GoalCustomThreshold GoalType = "custom_threshold"
	GoalDayCounter      GoalType = "day_counter"
)

// =============================================================================
// STATUS - Shared state machine (not every engine reaches every state)
// =============================================================================

type Status string

const (
	// StatusNotStarted: no trips recorded and the reference date does not
	// pass the goal's start.
	StatusNotStarted Status = "not_started"

	// StatusInProgress: goal underway but no trip history to judge a
	// trajectory from.
	StatusInProgress Status = "in_progress"

	// StatusOnTrack: underway, and the recorded absence pattern clears the
	// threshold through the eligibility horizon.
	StatusOnTrack Status = "on_track"

	// StatusAtRisk: absence pattern is within the at-risk margin of the
	// disqualifying threshold.
	StatusAtRisk Status = "at_risk"

	// StatusLimitExceeded: the threshold rule has been breached. Terminal
	// for the window it describes; rolling-window rules recover once the
	// violating absence ages out.
	StatusLimitExceeded Status = "limit_exceeded"

	// StatusEligible: the completion criterion holds as of the reference
	// date. Engines report up to here.
	StatusEligible Status = "eligible"

	// StatusAchieved: user-confirmed completion. This transition is driven
	// by the caller (see the goals API), never by an engine.
	StatusAchieved Status = "achieved"
)

// atRiskRatio is the fraction of a threshold at which engines flip from
// on_track to at_risk.
var atRiskRatio = decimal.NewFromFloat(0.8)

// atRiskFloor returns the day count at which a threshold is considered
// at risk (80% of the limit, rounded down).
func atRiskFloor(limitDays int) int {
	return int(decimal.NewFromInt(int64(limitDays)).Mul(atRiskRatio).IntPart())
}

// =============================================================================
// CONFIG - Discriminated union keyed by goal type
// =============================================================================

// Config carries the parameters one goal type's engine needs. Concrete
// variants (ILRConfig, SchengenConfig, ...) declare only the fields their
// engine reads; a tag/shape mismatch is rejected at the engine boundary.
type Config interface {
	// GoalType returns the variant tag.
	GoalType() GoalType

	// Validate rejects configs missing required fields or carrying
	// out-of-range values. Engines call this before computing anything.
	Validate() error
}

// =============================================================================
// RESULT - The engine's output
// =============================================================================

// Metric is one jurisdiction-specific display figure, ordered for the UI.
type Metric struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
	Unit  string `json:"unit,omitempty"`
}

// Result is a pure function of (trips, config, referenceDate). It contains
// only plain serializable data - no functions, no hidden state, dates as
// ISO-8601 strings on the wire.
type Result struct {
	GoalType GoalType `json:"goal_type"`
	Status   Status   `json:"status"`

	// ProgressPercent is 0-100, monotonic non-decreasing as the reference
	// date advances toward eligibility, assuming no new violating absences.
	ProgressPercent decimal.Decimal `json:"progress_percent"`

	// EligibilityDate is the earliest date the completion criterion is
	// satisfied, or nil when not computable from current data.
	EligibilityDate *trip.Date `json:"eligibility_date,omitempty"`

	// DaysUntilEligible is signed: negative or zero once eligible, zero
	// when no eligibility concept applies.
	DaysUntilEligible int `json:"days_until_eligible"`

	Metrics []Metric `json:"metrics"`
}

// =============================================================================
// ENGINE - The contract every goal implementation satisfies
// =============================================================================

// Engine computes a goal verdict. Implementations are stateless strategy
// objects registered once at process start.
type Engine interface {
	Calculate(trips []trip.Interval, cfg Config, referenceDate trip.Date) (*Result, error)
}

// =============================================================================
// METRIC AND PROGRESS HELPERS - Shared across engines
// =============================================================================

func dayMetric(key, label string, days int) Metric {
	return Metric{Key: key, Label: label, Value: strconv.Itoa(days), Unit: "days"}
}

func countMetric(key, label string, n int) Metric {
	return Metric{Key: key, Label: label, Value: strconv.Itoa(n)}
}

func dateMetric(key, label string, d trip.Date) Metric {
	return Metric{Key: key, Label: label, Value: d.String()}
}

func textMetric(key, label, value string) Metric {
	return Metric{Key: key, Label: label, Value: value}
}

var hundred = decimal.NewFromInt(100)

// progressRatio returns part/whole as a percentage clamped to [0, 100],
// rounded to one decimal place. A zero whole yields zero, not a division
// error.
func progressRatio(part, whole int) decimal.Decimal {
	if whole <= 0 {
		return decimal.Zero
	}
	if part <= 0 {
		return decimal.Zero
	}
	pct := decimal.NewFromInt(int64(part)).
		Div(decimal.NewFromInt(int64(whole))).
		Mul(hundred).
		Round(1)
	if pct.GreaterThan(hundred) {
		return hundred
	}
	return pct
}
