/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	trip histories and goals. Each scenario demonstrates a specific rule:
	a clean ILR run, a Schengen overstay, a heavy business-travel pattern.

AVAILABLE SCENARIOS:

	ilr-five-year:      Clean 5-year ILR track with moderate holidays
	schengen-overstay:  Stays that blow through the 90/180 allowance
	frequent-traveler:  Heavy travel brushing the ILR absence limit

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Seed trips
 3. Seed goals referencing those trips

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "schengen-overstay"}

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Error/JSON helpers
  - factory/config.go: Goal config JSON shapes
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/warp/residency-engine/store/sqlite"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "ilr-five-year",
		Name:        "ILR Five-Year Track",
		Description: "Clean qualifying period with a few holidays, on track for ILR",
	},
	{
		ID:          "schengen-overstay",
		Name:        "Schengen Overstay",
		Description: "Long stays that exceed the 90-day allowance in a 180-day window",
	},
	{
		ID:          "frequent-traveler",
		Name:        "Frequent Traveler",
		Description: "Heavy business travel brushing the ILR 180-day rolling limit",
	},
}

// ListScenarios returns the available demo scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// LoadScenario resets the database and seeds the selected scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var loader func(context.Context, *Handler) error
	switch req.ScenarioID {
	case "ilr-five-year":
		loader = loadILRFiveYearScenario
	case "schengen-overstay":
		loader = loadSchengenOverstayScenario
	case "frequent-traveler":
		loader = loadFrequentTravelerScenario
	default:
		writeErrorMessage(w, http.StatusBadRequest, fmt.Sprintf("unknown scenario %q", req.ScenarioID))
		return
	}

	ctx := r.Context()
	if err := h.Store.Reset(ctx); err != nil {
		writeErrorMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := loader(ctx, h); err != nil {
		writeErrorMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"loaded": req.ScenarioID})
}

// =============================================================================
// LOADERS
// =============================================================================

func seedTrips(ctx context.Context, h *Handler, trips []sqlite.TripRecord) error {
	for _, t := range trips {
		if err := h.Store.SaveTrip(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

func loadILRFiveYearScenario(ctx context.Context, h *Handler) error {
	trips := []sqlite.TripRecord{
		{ID: "summer-2021", OutDate: "2021-07-10", InDate: "2021-07-24", OutRoute: "LHR -> ATH", InRoute: "ATH -> LHR"},
		{ID: "christmas-2021", OutDate: "2021-12-20", InDate: "2022-01-03", OutRoute: "LGW -> WAW", InRoute: "WAW -> LGW"},
		{ID: "summer-2022", OutDate: "2022-08-01", InDate: "2022-08-21", OutRoute: "LHR -> LIS", InRoute: "LIS -> LHR"},
		{ID: "easter-2023", OutDate: "2023-04-05", InDate: "2023-04-16", OutRoute: "STN -> DUB", InRoute: "DUB -> STN"},
		{ID: "autumn-2024", OutDate: "2024-10-12", InDate: "2024-10-26", OutRoute: "LHR -> JFK", InRoute: "JFK -> LHR"},
	}
	if err := seedTrips(ctx, h, trips); err != nil {
		return err
	}
	return h.Store.SaveGoal(ctx, sqlite.GoalRecord{
		ID:         "ilr",
		GoalType:   "uk_ilr",
		ConfigJSON: `{"visa_start_date": "2021-01-15", "track_years": 5}`,
	})
}

func loadSchengenOverstayScenario(ctx context.Context, h *Handler) error {
	// Two long stays inside one 180-day span: 55 + 52 counted days.
	trips := []sqlite.TripRecord{
		{ID: "winter-base", OutDate: "2025-01-10", InDate: "2025-03-05", OutRoute: "LHR -> BCN", InRoute: "BCN -> LHR"},
		{ID: "spring-base", OutDate: "2025-04-01", InDate: "2025-05-22", OutRoute: "LHR -> NCE", InRoute: "NCE -> LHR"},
	}
	if err := seedTrips(ctx, h, trips); err != nil {
		return err
	}
	return h.Store.SaveGoal(ctx, sqlite.GoalRecord{
		ID:         "schengen",
		GoalType:   "schengen_90_180",
		ConfigJSON: `{}`,
	})
}

func loadFrequentTravelerScenario(ctx context.Context, h *Handler) error {
	// Roughly a week abroad every month: close to, but under, the ILR
	// rolling 180-day limit.
	var trips []sqlite.TripRecord
	for month := 1; month <= 12; month++ {
		trips = append(trips, sqlite.TripRecord{
			ID:       fmt.Sprintf("biz-2024-%02d", month),
			OutDate:  fmt.Sprintf("2024-%02d-03", month),
			InDate:   fmt.Sprintf("2024-%02d-14", month),
			OutRoute: "LCY -> FRA",
			InRoute:  "FRA -> LCY",
		})
	}
	if err := seedTrips(ctx, h, trips); err != nil {
		return err
	}
	return h.Store.SaveGoal(ctx, sqlite.GoalRecord{
		ID:         "ilr-busy",
		GoalType:   "uk_ilr",
		ConfigJSON: `{"visa_start_date": "2023-06-01", "track_years": 5}`,
	})
}
