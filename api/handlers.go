/*
handlers.go - HTTP API handlers for the residency engine

PURPOSE:
  Exposes the eligibility engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to the engine.

ENDPOINTS:
  Calculate:
    POST   /api/calculate              Stateless calculation (trips in body)

  Trips:
    GET    /api/trips                  List recorded trips
    POST   /api/trips                  Record a trip
    DELETE /api/trips/{id}             Delete a trip

  Goals:
    GET    /api/goals                  List goals
    POST   /api/goals                  Define a goal
    GET    /api/goals/{id}             Get a goal
    POST   /api/goals/{id}/calculate   Run the goal against stored trips
    POST   /api/goals/{id}/achieve     User-confirmed completion
    DELETE /api/goals/{id}             Delete a goal

  Scenarios:
    GET    /api/scenarios              List demo scenarios
    POST   /api/scenarios/load         Load a demo scenario
    POST   /api/reset                  Clear all data (dev only)

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid trip interval, malformed request, unknown goal type
  - 404: Resource not found
  - 409: Conflict (achieving a goal the engine doesn't report eligible)
  - 422: Invalid goal config for a known type
  - 500: Internal errors
  The code field carries the machine-readable kind so clients can tell
  "type not supported" from "this type's setup is incomplete".

SECURITY NOTE:
  No authentication middleware. Authentication, persistence tiering, and
  rate limiting live in the consuming product, not here.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/warp/residency-engine/engine"
	"github.com/warp/residency-engine/factory"
	"github.com/warp/residency-engine/store/sqlite"
	"github.com/warp/residency-engine/trip"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store *sqlite.Store
}

// timeNow is indirected so handler tests can pin the reference date.
// The engine itself never reads the clock; only the "no reference_date
// supplied" default at this HTTP edge does.
var timeNow = time.Now

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store) *Handler {
	return &Handler{Store: store}
}

// =============================================================================
// CALCULATE - The stateless boundary
// =============================================================================

// Calculate runs one calculation over caller-supplied trips. Nothing is
// read from or written to the store.
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ref, err := trip.ParseDate(req.ReferenceDate)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "reference_date: "+err.Error())
		return
	}

	intervals, err := factory.ParseTrips(req.Trips)
	if err != nil {
		writeError(w, err)
		return
	}

	cfg, err := factory.ParseGoalConfig(req.GoalType, req.Config)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := engine.Calculate(intervals, cfg.GoalType(), cfg, ref)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ResultDTO{ReferenceDate: ref.String(), Result: result})
}

// =============================================================================
// TRIPS
// =============================================================================

func (h *Handler) ListTrips(w http.ResponseWriter, r *http.Request) {
	records, err := h.Store.ListTrips(r.Context())
	if err != nil {
		writeErrorMessage(w, http.StatusInternalServerError, err.Error())
		return
	}

	trips := make([]TripDTO, 0, len(records))
	for _, rec := range records {
		trips = append(trips, tripDTO(rec))
	}
	writeJSON(w, http.StatusOK, trips)
}

func (h *Handler) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var req CreateTripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.ID == "" {
		writeErrorMessage(w, http.StatusBadRequest, "id is required")
		return
	}

	// Validate before persisting so the store never holds a row the
	// engine would reject.
	row := factory.TripRow{ID: req.ID, OutDate: req.OutDate, InDate: req.InDate,
		OutRoute: req.OutRoute, InRoute: req.InRoute}
	if _, err := factory.ParseTrips([]factory.TripRow{row}); err != nil {
		writeError(w, err)
		return
	}

	rec := sqlite.TripRecord{ID: req.ID, OutDate: req.OutDate, InDate: req.InDate,
		OutRoute: req.OutRoute, InRoute: req.InRoute}
	if err := h.Store.SaveTrip(r.Context(), rec); err != nil {
		writeErrorMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, tripDTO(rec))
}

func (h *Handler) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Store.DeleteTrip(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeErrorMessage(w, http.StatusNotFound, "trip not found")
			return
		}
		writeErrorMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// GOALS
// =============================================================================

func (h *Handler) ListGoals(w http.ResponseWriter, r *http.Request) {
	records, err := h.Store.ListGoals(r.Context())
	if err != nil {
		writeErrorMessage(w, http.StatusInternalServerError, err.Error())
		return
	}

	goals := make([]GoalDTO, 0, len(records))
	for _, rec := range records {
		goals = append(goals, goalDTO(rec))
	}
	writeJSON(w, http.StatusOK, goals)
}

func (h *Handler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	var req CreateGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.ID == "" {
		writeErrorMessage(w, http.StatusBadRequest, "id is required")
		return
	}

	// Reject unknown types and unusable configs at definition time.
	if _, err := factory.ParseGoalConfig(req.GoalType, req.Config); err != nil {
		writeError(w, err)
		return
	}

	config := req.Config
	if len(config) == 0 {
		config = json.RawMessage("{}")
	}
	rec := sqlite.GoalRecord{ID: req.ID, GoalType: req.GoalType, ConfigJSON: string(config)}
	if err := h.Store.SaveGoal(r.Context(), rec); err != nil {
		writeErrorMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, goalDTO(rec))
}

func (h *Handler) GetGoal(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.loadGoal(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, goalDTO(rec))
}

// CalculateGoal runs a stored goal against the stored trip history.
// A goal the user already marked achieved short-circuits to that status.
func (h *Handler) CalculateGoal(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.loadGoal(w, r)
	if !ok {
		return
	}

	ref := trip.FromTime(timeNow())
	if q := r.URL.Query().Get("reference_date"); q != "" {
		parsed, err := trip.ParseDate(q)
		if err != nil {
			writeErrorMessage(w, http.StatusBadRequest, "reference_date: "+err.Error())
			return
		}
		ref = parsed
	}

	result, err := h.runGoal(r, rec, ref)
	if err != nil {
		writeError(w, err)
		return
	}

	if rec.AchievedAt != "" {
		result.Status = engine.StatusAchieved
	}
	writeJSON(w, http.StatusOK, ResultDTO{ReferenceDate: ref.String(), Result: result})
}

// AchieveGoal records user-confirmed completion. The engine only ever
// reports up to eligible; this is the caller-driven transition beyond it.
// Conflicts unless the engine currently reports the goal eligible.
func (h *Handler) AchieveGoal(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.loadGoal(w, r)
	if !ok {
		return
	}
	if rec.AchievedAt != "" {
		writeJSON(w, http.StatusOK, goalDTO(rec))
		return
	}

	ref := trip.FromTime(timeNow())
	result, err := h.runGoal(r, rec, ref)
	if err != nil {
		writeError(w, err)
		return
	}
	if result.Status != engine.StatusEligible {
		writeJSON(w, http.StatusConflict, ErrorDTO{
			Error: "goal is not eligible yet",
			Code:  "not_eligible",
		})
		return
	}

	if err := h.Store.MarkGoalAchieved(r.Context(), rec.ID); err != nil {
		writeErrorMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	updated, _ := h.Store.GetGoal(r.Context(), rec.ID)
	writeJSON(w, http.StatusOK, goalDTO(updated))
}

func (h *Handler) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Store.DeleteGoal(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeErrorMessage(w, http.StatusNotFound, "goal not found")
			return
		}
		writeErrorMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// RESET
// =============================================================================

// Reset clears all data. Dev/demo only.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeErrorMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) loadGoal(w http.ResponseWriter, r *http.Request) (sqlite.GoalRecord, bool) {
	id := chi.URLParam(r, "id")
	rec, err := h.Store.GetGoal(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeErrorMessage(w, http.StatusNotFound, "goal not found")
		} else {
			writeErrorMessage(w, http.StatusInternalServerError, err.Error())
		}
		return sqlite.GoalRecord{}, false
	}
	return rec, true
}

// runGoal loads stored trips, parses the goal's config, and calculates.
func (h *Handler) runGoal(r *http.Request, rec sqlite.GoalRecord, ref trip.Date) (*engine.Result, error) {
	records, err := h.Store.ListTrips(r.Context())
	if err != nil {
		return nil, err
	}

	rows := make([]factory.TripRow, 0, len(records))
	for _, t := range records {
		rows = append(rows, factory.TripRow{ID: t.ID, OutDate: t.OutDate, InDate: t.InDate,
			OutRoute: t.OutRoute, InRoute: t.InRoute})
	}
	intervals, err := factory.ParseTrips(rows)
	if err != nil {
		return nil, err
	}

	cfg, err := factory.ParseGoalConfig(rec.GoalType, json.RawMessage(rec.ConfigJSON))
	if err != nil {
		return nil, err
	}
	return engine.Calculate(intervals, cfg.GoalType(), cfg, ref)
}

func tripDTO(rec sqlite.TripRecord) TripDTO {
	return TripDTO{ID: rec.ID, OutDate: rec.OutDate, InDate: rec.InDate,
		OutRoute: rec.OutRoute, InRoute: rec.InRoute, CreatedAt: rec.CreatedAt}
}

func goalDTO(rec sqlite.GoalRecord) GoalDTO {
	return GoalDTO{ID: rec.ID, GoalType: rec.GoalType,
		Config: json.RawMessage(rec.ConfigJSON), CreatedAt: rec.CreatedAt, AchievedAt: rec.AchievedAt}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeError maps the core error taxonomy onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, trip.ErrInvalidInterval):
		writeJSON(w, http.StatusBadRequest, ErrorDTO{Error: err.Error(), Code: "invalid_trip"})
	case errors.Is(err, engine.ErrUnknownGoalType):
		writeJSON(w, http.StatusBadRequest, ErrorDTO{Error: err.Error(), Code: "unknown_goal_type"})
	case errors.Is(err, engine.ErrInvalidGoalConfig):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorDTO{Error: err.Error(), Code: "invalid_config"})
	default:
		writeJSON(w, http.StatusInternalServerError, ErrorDTO{Error: err.Error(), Code: "internal"})
	}
}

func writeErrorMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorDTO{Error: msg})
}
