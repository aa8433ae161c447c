/*
Package factory provides JSON to Go goal-config conversion.

PURPOSE:
  Converts JSON goal definitions into typed engine.Config variants, and
  raw trip wire rows into validated trip.Interval values. This is the
  boundary where loosely-typed caller input becomes the engine's
  discriminated union - shape mismatches are rejected here, not deep
  inside a calculation.

WHY JSON?
  - Goal configs are stored as JSON in the goals table
  - The API accepts the same shape the store persists
  - New goal parameters need no schema migration

JSON SCHEMAS (per goal type):
  uk_ilr:            {"visa_start_date": "2020-01-01",
                      "vignette_entry_date": "2019-12-15",
                      "track_years": 5,
                      "absence_limit_days": 180,
                      "reset_policy": "restart"}
  schengen_90_180:   {}
  uk_tax_residency:  {"threshold_days": 183}
  custom_threshold:  {"threshold_days": 60, "window_days": 180}
  day_counter:       {"start_date": "2023-06-01", "target_days": 500}

TRIP WIRE SHAPE:
  {"id": "t1", "out_date": "2024-01-10", "in_date": "2024-01-20",
   "out_route": "LHR -> JFK", "in_route": "JFK -> LHR"}

USAGE:
  cfg, err := factory.ParseGoalConfig("uk_ilr", rawJSON)
  intervals, err := factory.ParseTrips(rows)
  result, err := engine.Calculate(intervals, cfg.GoalType(), cfg, ref)

SEE ALSO:
  - engine/types.go: Config interface and variants
  - api/handlers.go: The HTTP caller of this package
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/warp/residency-engine/engine"
	"github.com/warp/residency-engine/trip"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

type ilrJSON struct {
	VisaStartDate     string `json:"visa_start_date"`
	VignetteEntryDate string `json:"vignette_entry_date,omitempty"`
	TrackYears        int    `json:"track_years"`
	AbsenceLimitDays  int    `json:"absence_limit_days,omitempty"`
	ResetPolicy       string `json:"reset_policy,omitempty"`
}

type taxYearJSON struct {
	ThresholdDays int `json:"threshold_days"`
}

type thresholdJSON struct {
	ThresholdDays int `json:"threshold_days"`
	WindowDays    int `json:"window_days"`
}

type counterJSON struct {
	StartDate  string `json:"start_date"`
	TargetDays int    `json:"target_days,omitempty"`
}

// =============================================================================
// GOAL CONFIG PARSING
// =============================================================================

// ParseGoalConfig converts a goal type identifier and its raw JSON config
// into the matching engine.Config variant. The returned config is already
// validated. An unrecognized type is ErrUnknownGoalType; a malformed or
// incomplete config is ErrInvalidGoalConfig.
func ParseGoalConfig(goalType string, raw json.RawMessage) (engine.Config, error) {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}

	gt := engine.GoalType(goalType)
	var (
		cfg engine.Config
		err error
	)
	switch gt {
	case engine.GoalUKILR:
		cfg, err = parseILR(raw)
	case engine.GoalSchengen90180:
		cfg = engine.SchengenConfig{}
	case engine.GoalUKTaxResidency:
		cfg, err = parseTaxYear(raw)
	case engine.GoalCustomThreshold:
		cfg, err = parseThreshold(raw)
	case engine.GoalDayCounter:
		cfg, err = parseCounter(raw)
	default:
		return nil, &engine.UnknownGoalTypeError{GoalType: gt}
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseILR(raw json.RawMessage) (engine.Config, error) {
	var j ilrJSON
	if err := json.Unmarshal(raw, &j); err != nil {
		return nil, malformed(engine.GoalUKILR, err)
	}

	cfg := engine.ILRConfig{
		TrackYears:       j.TrackYears,
		AbsenceLimitDays: j.AbsenceLimitDays,
		ResetPolicy:      engine.ResetPolicy(j.ResetPolicy),
	}
	if j.VisaStartDate != "" {
		start, err := trip.ParseDate(j.VisaStartDate)
		if err != nil {
			return nil, badDate(engine.GoalUKILR, "visa_start_date", err)
		}
		cfg.VisaStartDate = start
	}
	if j.VignetteEntryDate != "" {
		entry, err := trip.ParseDate(j.VignetteEntryDate)
		if err != nil {
			return nil, badDate(engine.GoalUKILR, "vignette_entry_date", err)
		}
		cfg.VignetteEntryDate = &entry
	}
	return cfg, nil
}

func parseTaxYear(raw json.RawMessage) (engine.Config, error) {
	var j taxYearJSON
	if err := json.Unmarshal(raw, &j); err != nil {
		return nil, malformed(engine.GoalUKTaxResidency, err)
	}
	return engine.TaxYearConfig{ThresholdDays: j.ThresholdDays}, nil
}

func parseThreshold(raw json.RawMessage) (engine.Config, error) {
	var j thresholdJSON
	if err := json.Unmarshal(raw, &j); err != nil {
		return nil, malformed(engine.GoalCustomThreshold, err)
	}
	return engine.ThresholdConfig{ThresholdDays: j.ThresholdDays, WindowDays: j.WindowDays}, nil
}

func parseCounter(raw json.RawMessage) (engine.Config, error) {
	var j counterJSON
	if err := json.Unmarshal(raw, &j); err != nil {
		return nil, malformed(engine.GoalDayCounter, err)
	}
	cfg := engine.CounterConfig{TargetDays: j.TargetDays}
	if j.StartDate != "" {
		start, err := trip.ParseDate(j.StartDate)
		if err != nil {
			return nil, badDate(engine.GoalDayCounter, "start_date", err)
		}
		cfg.StartDate = start
	}
	return cfg, nil
}

func malformed(gt engine.GoalType, err error) error {
	return &engine.ConfigError{GoalType: gt, Field: "config", Detail: fmt.Sprintf("malformed JSON: %v", err)}
}

func badDate(gt engine.GoalType, field string, err error) error {
	return &engine.ConfigError{GoalType: gt, Field: field, Detail: err.Error()}
}

// =============================================================================
// TRIP ROW PARSING
// =============================================================================

// TripRow is the wire shape of one trip record.
type TripRow struct {
	ID       string `json:"id"`
	OutDate  string `json:"out_date"`
	InDate   string `json:"in_date"`
	OutRoute string `json:"out_route,omitempty"`
	InRoute  string `json:"in_route,omitempty"`
}

// ParseTrips validates a batch of wire rows into absence intervals.
// The first invalid row fails the whole batch with the offending trip's
// ID - the caller decides whether to reject or skip-and-warn, never the
// engine.
func ParseTrips(rows []TripRow) ([]trip.Interval, error) {
	intervals := make([]trip.Interval, 0, len(rows))
	for _, row := range rows {
		out, err := trip.ParseDate(row.OutDate)
		if err != nil {
			return nil, &trip.InvalidIntervalError{TripID: row.ID, Detail: fmt.Sprintf("out_date: %v", err)}
		}
		in, err := trip.ParseDate(row.InDate)
		if err != nil {
			return nil, &trip.InvalidIntervalError{TripID: row.ID, Detail: fmt.Sprintf("in_date: %v", err)}
		}
		iv, err := trip.NewInterval(row.ID, out, in, row.OutRoute, row.InRoute)
		if err != nil {
			return nil, err
		}
		intervals = append(intervals, iv)
	}
	return intervals, nil
}
