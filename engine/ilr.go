/*
ilr.go - UK Indefinite Leave to Remain engine

PURPOSE:
  Evaluates the continuous-residence requirement for UK ILR: the
  qualifying period is track_years from the visa start (or the earlier
  vignette entry), and absence in any rolling 12-month window anchored
  inside the qualifying period must not exceed the absence limit
  (180 full days abroad by default).

RESET POLICY:
  What happens to the eligibility date after a breach is a configurable
  policy, not a hard-coded rule:

    ResetRestart (default): the qualifying clock restarts the day after
      the violating absence ends - eligibility becomes that date plus
      track_years.
    ResetReportOnly: the engine reports limit_exceeded with the violating
      window's start date but leaves the nominal eligibility date alone,
      for callers who handle remediation themselves.

  TODO: confirm the restart semantics against current Home Office
  guidance on continuous-residence breaks before relying on the default
  for legal advice surfaces.

SEE ALSO:
  - window.go: Rolling 12-month absence maximum
  - presence.go: Continuous-presence metric
*/
package engine

import "github.com/warp/residency-engine/trip"

func init() {
	Register(GoalUKILR, &ILREngine{})
}

// =============================================================================
// CONFIG
// =============================================================================

type ResetPolicy string

const (
	ResetRestart    ResetPolicy = "restart"
	ResetReportOnly ResetPolicy = "report_only"
)

// ILRConfig parameterizes the UK ILR engine.
type ILRConfig struct {
	// VisaStartDate is the start of the qualifying visa. Required.
	VisaStartDate trip.Date

	// VignetteEntryDate is the first entry on the vignette, which can
	// precede the visa start and then starts the qualifying clock.
	VignetteEntryDate *trip.Date

	// TrackYears is the qualifying route length: 2, 5, or 10.
	TrackYears int

	// AbsenceLimitDays caps full days abroad in any rolling 12-month
	// window. Zero means the statutory default of 180.
	AbsenceLimitDays int

	// ResetPolicy selects breach semantics. Empty means ResetRestart.
	ResetPolicy ResetPolicy
}

func (ILRConfig) GoalType() GoalType { return GoalUKILR }

func (c ILRConfig) Validate() error {
	if c.VisaStartDate.IsZero() {
		return &ConfigError{GoalType: GoalUKILR, Field: "visa_start_date", Detail: "required"}
	}
	switch c.TrackYears {
	case 2, 5, 10:
	default:
		return &ConfigError{GoalType: GoalUKILR, Field: "track_years", Detail: "must be 2, 5, or 10"}
	}
	if c.AbsenceLimitDays < 0 {
		return &ConfigError{GoalType: GoalUKILR, Field: "absence_limit_days", Detail: "must not be negative"}
	}
	switch c.ResetPolicy {
	case "", ResetRestart, ResetReportOnly:
	default:
		return &ConfigError{GoalType: GoalUKILR, Field: "reset_policy", Detail: "must be restart or report_only"}
	}
	return nil
}

func (c ILRConfig) limit() int {
	if c.AbsenceLimitDays == 0 {
		return 180
	}
	return c.AbsenceLimitDays
}

func (c ILRConfig) qualifyingStart() trip.Date {
	start := c.VisaStartDate
	if c.VignetteEntryDate != nil && c.VignetteEntryDate.Before(start) {
		start = *c.VignetteEntryDate
	}
	return start
}

func (c ILRConfig) resetPolicy() ResetPolicy {
	if c.ResetPolicy == "" {
		return ResetRestart
	}
	return c.ResetPolicy
}

// =============================================================================
// ENGINE
// =============================================================================

// ILREngine is a stateless strategy object; one instance serves all calls.
type ILREngine struct{}

const ilrWindowDays = 365

func (e *ILREngine) Calculate(trips []trip.Interval, cfg Config, referenceDate trip.Date) (*Result, error) {
	ilr, ok := cfg.(ILRConfig)
	if !ok {
		return nil, configMismatch(GoalUKILR, cfg)
	}
	if err := ilr.Validate(); err != nil {
		return nil, err
	}

	qualStart := ilr.qualifyingStart()
	eligibility := qualStart.AddYears(ilr.TrackYears)
	limit := ilr.limit()

	merged := trip.Normalize(trips)
	analyzer := RollingWindowAnalyzer{WindowDays: ilrWindowDays, Convention: CountFullDaysAbroad}
	window := analyzer.MaxWindowWithin(merged, qualStart, referenceDate)
	breached := window.MaxDays > limit

	if breached && ilr.resetPolicy() == ResetRestart {
		// Clock restarts the day after the violating absence ends.
		violationEnd := latestReturnTouching(merged, window.WindowStart, window.WindowEnd, CountFullDaysAbroad)
		if !violationEnd.IsZero() {
			eligibility = violationEnd.AddDays(1).AddYears(ilr.TrackYears)
		}
	}

	presence := PresenceAnalyzer{}.Analyze(merged, qualStart, referenceDate)

	status := e.status(merged, qualStart, eligibility, referenceDate, window.MaxDays, limit, breached)

	totalQualDays := trip.DaysBetween(qualStart, eligibility)
	elapsed := trip.DaysBetween(qualStart, referenceDate)

	result := &Result{
		GoalType:          GoalUKILR,
		Status:            status,
		ProgressPercent:   progressRatio(elapsed, totalQualDays),
		EligibilityDate:   &eligibility,
		DaysUntilEligible: trip.DaysBetween(referenceDate, eligibility),
		Metrics: []Metric{
			dayMetric("max_rolling_absence", "Max absence in any 12 months", window.MaxDays),
			dayMetric("absence_limit", "Rolling 12-month absence limit", limit),
			dayMetric("total_full_days_abroad", "Total full days abroad", trip.TotalFullDaysAbroad(merged)),
			dayMetric("longest_continuous_presence", "Longest continuous stay in UK", presence.LongestRunDays),
			dateMetric("qualifying_start", "Qualifying period start", qualStart),
		},
	}
	if breached && !window.WindowStart.IsZero() {
		result.Metrics = append(result.Metrics,
			dateMetric("violating_window_start", "Start of violating 12-month window", window.WindowStart))
	}
	return result, nil
}

func (e *ILREngine) status(merged []trip.Interval, qualStart, eligibility, referenceDate trip.Date, maxAbsence, limit int, breached bool) Status {
	if len(merged) == 0 && referenceDate.BeforeOrEqual(qualStart) {
		return StatusNotStarted
	}
	if breached {
		return StatusLimitExceeded
	}
	if referenceDate.AfterOrEqual(eligibility) {
		return StatusEligible
	}
	if len(merged) == 0 {
		return StatusInProgress
	}
	if maxAbsence >= atRiskFloor(limit) {
		return StatusAtRisk
	}
	return StatusOnTrack
}
