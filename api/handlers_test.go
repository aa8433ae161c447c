package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/residency-engine/engine"
	"github.com/warp/residency-engine/factory"
	"github.com/warp/residency-engine/store/sqlite"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return NewRouter(NewHandler(store))
}

// pinClock fixes the wall clock used for defaulted reference dates.
func pinClock(t *testing.T, isoDate string) {
	t.Helper()
	fixed, err := time.Parse("2006-01-02", isoDate)
	require.NoError(t, err)
	prev := timeNow
	timeNow = func() time.Time { return fixed }
	t.Cleanup(func() { timeNow = prev })
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, into interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(into))
}

// =============================================================================
// CALCULATE - Stateless
// =============================================================================

func TestCalculate_Stateless(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/calculate", CalculateRequest{
		Trips: []factory.TripRow{
			{ID: "t1", OutDate: "2025-01-10", InDate: "2025-04-14"},
		},
		GoalType:      "schengen_90_180",
		ReferenceDate: "2025-04-20",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var body ResultDTO
	decodeBody(t, rec, &body)
	assert.Equal(t, "2025-04-20", body.ReferenceDate)
	assert.Equal(t, engine.StatusLimitExceeded, body.Result.Status)
}

func TestCalculate_InvalidTrip(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/calculate", CalculateRequest{
		Trips: []factory.TripRow{
			{ID: "bad", OutDate: "2025-01-10", InDate: "2025-01-10"},
		},
		GoalType:      "schengen_90_180",
		ReferenceDate: "2025-04-20",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body ErrorDTO
	decodeBody(t, rec, &body)
	assert.Equal(t, "invalid_trip", body.Code)
}

func TestCalculate_UnknownGoalType(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/calculate", CalculateRequest{
		GoalType:      "mars_residency",
		ReferenceDate: "2025-04-20",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body ErrorDTO
	decodeBody(t, rec, &body)
	assert.Equal(t, "unknown_goal_type", body.Code)
}

func TestCalculate_InvalidConfig(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/calculate", CalculateRequest{
		GoalType:      "uk_ilr",
		Config:        json.RawMessage(`{"track_years": 5}`), // visa_start_date missing
		ReferenceDate: "2025-04-20",
	})

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body ErrorDTO
	decodeBody(t, rec, &body)
	assert.Equal(t, "invalid_config", body.Code)
}

// =============================================================================
// TRIPS
// =============================================================================

func TestTrips_CreateListDelete(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/trips", CreateTripRequest{
		ID: "t1", OutDate: "2024-01-10", InDate: "2024-01-20", OutRoute: "LHR -> JFK",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/trips", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var trips []TripDTO
	decodeBody(t, rec, &trips)
	require.Len(t, trips, 1)
	assert.Equal(t, "t1", trips[0].ID)
	assert.Equal(t, "LHR -> JFK", trips[0].OutRoute)

	rec = doJSON(t, router, http.MethodDelete, "/api/trips/t1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/api/trips/t1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateTrip_InvalidIntervalNotPersisted(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/trips", CreateTripRequest{
		ID: "same-day", OutDate: "2024-01-10", InDate: "2024-01-10",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/trips", nil)
	var trips []TripDTO
	decodeBody(t, rec, &trips)
	assert.Empty(t, trips, "rejected trip must not reach the store")
}

func TestCreateTrip_MissingID(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/trips", CreateTripRequest{
		OutDate: "2024-01-10", InDate: "2024-01-20",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// GOALS
// =============================================================================

func TestGoals_CreateAndCalculate(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/goals", CreateGoalRequest{
		ID:       "ilr",
		GoalType: "uk_ilr",
		Config:   json.RawMessage(`{"visa_start_date": "2020-01-01", "track_years": 5}`),
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/trips", CreateTripRequest{
		ID: "holiday", OutDate: "2021-08-01", InDate: "2021-08-15",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/goals/ilr/calculate?reference_date=2024-06-01", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body ResultDTO
	decodeBody(t, rec, &body)
	assert.Equal(t, engine.StatusOnTrack, body.Result.Status)
	assert.Equal(t, "2025-01-01", body.Result.EligibilityDate.String())
}

func TestCalculateGoal_DefaultsToToday(t *testing.T) {
	pinClock(t, "2025-02-01")
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/goals", CreateGoalRequest{
		ID: "schengen", GoalType: "schengen_90_180",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/goals/schengen/calculate", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body ResultDTO
	decodeBody(t, rec, &body)
	assert.Equal(t, "2025-02-01", body.ReferenceDate)
}

func TestCreateGoal_UnknownTypeRejected(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/goals", CreateGoalRequest{
		ID: "g1", GoalType: "mars_residency",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/goals", nil)
	var goals []GoalDTO
	decodeBody(t, rec, &goals)
	assert.Empty(t, goals)
}

func TestCreateGoal_InvalidConfigRejectedAtDefinition(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/goals", CreateGoalRequest{
		ID:       "g1",
		GoalType: "custom_threshold",
		Config:   json.RawMessage(`{"threshold_days": 120, "window_days": 90}`),
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestGetGoal_NotFound(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/goals/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// ACHIEVE - The caller-driven transition past eligible
// =============================================================================

func TestAchieveGoal_ConflictWhenNotEligible(t *testing.T) {
	pinClock(t, "2024-06-01") // before the 5-year mark
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/goals", CreateGoalRequest{
		ID:       "ilr",
		GoalType: "uk_ilr",
		Config:   json.RawMessage(`{"visa_start_date": "2020-01-01", "track_years": 5}`),
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/goals/ilr/achieve", nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	var body ErrorDTO
	decodeBody(t, rec, &body)
	assert.Equal(t, "not_eligible", body.Code)
}

func TestAchieveGoal_EligibleThenAchieved(t *testing.T) {
	pinClock(t, "2025-06-01") // past the 5-year mark
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/goals", CreateGoalRequest{
		ID:       "ilr",
		GoalType: "uk_ilr",
		Config:   json.RawMessage(`{"visa_start_date": "2020-01-01", "track_years": 5}`),
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/goals/ilr/achieve", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var goal GoalDTO
	decodeBody(t, rec, &goal)
	assert.NotEmpty(t, goal.AchievedAt)

	// Subsequent calculations report the confirmed status.
	rec = doJSON(t, router, http.MethodPost, "/api/goals/ilr/calculate", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var result ResultDTO
	decodeBody(t, rec, &result)
	assert.Equal(t, engine.StatusAchieved, result.Result.Status)

	// Achieving again is idempotent.
	rec = doJSON(t, router, http.MethodPost, "/api/goals/ilr/achieve", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

// =============================================================================
// SCENARIOS AND RESET
// =============================================================================

func TestScenarios_ListAndLoad(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/scenarios", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []ScenarioDTO
	decodeBody(t, rec, &list)
	require.Len(t, list, 3)

	rec = doJSON(t, router, http.MethodPost, "/api/scenarios/load",
		LoadScenarioRequest{ScenarioID: "schengen-overstay"})
	require.Equal(t, http.StatusOK, rec.Code)

	// The seeded history breaches 90/180 in late May 2025.
	rec = doJSON(t, router, http.MethodPost, "/api/goals/schengen/calculate?reference_date=2025-05-25", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body ResultDTO
	decodeBody(t, rec, &body)
	assert.Equal(t, engine.StatusLimitExceeded, body.Result.Status)
}

func TestLoadScenario_Unknown(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/scenarios/load",
		LoadScenarioRequest{ScenarioID: "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReset_ClearsEverything(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/scenarios/load",
		LoadScenarioRequest{ScenarioID: "ilr-five-year"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/reset", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/trips", nil)
	var trips []TripDTO
	decodeBody(t, rec, &trips)
	assert.Empty(t, trips)

	rec = doJSON(t, router, http.MethodGet, "/api/goals", nil)
	var goals []GoalDTO
	decodeBody(t, rec, &goals)
	assert.Empty(t, goals)
}
