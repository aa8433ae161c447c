/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers and the factory, not in DTOs. DTOs are
  pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/config.go: TripRow wire shape
*/
package api

import (
	"encoding/json"

	"github.com/warp/residency-engine/engine"
	"github.com/warp/residency-engine/factory"
)

// =============================================================================
// CALCULATE
// =============================================================================

// CalculateRequest is the stateless calculation call: trips and config
// travel in the request, nothing is persisted.
type CalculateRequest struct {
	Trips         []factory.TripRow `json:"trips"`
	GoalType      string            `json:"goal_type"`
	Config        json.RawMessage   `json:"config,omitempty"`
	ReferenceDate string            `json:"reference_date"`
}

// ResultDTO wraps an engine result for API responses. engine.Result is
// already plain serializable data; the wrapper only adds the reference
// date the verdict was computed against.
type ResultDTO struct {
	ReferenceDate string         `json:"reference_date"`
	Result        *engine.Result `json:"result"`
}

// =============================================================================
// TRIPS
// =============================================================================

// TripDTO represents a stored trip in API responses.
type TripDTO struct {
	ID        string `json:"id"`
	OutDate   string `json:"out_date"`
	InDate    string `json:"in_date"`
	OutRoute  string `json:"out_route,omitempty"`
	InRoute   string `json:"in_route,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// CreateTripRequest is the request to record a trip.
type CreateTripRequest struct {
	ID       string `json:"id"`
	OutDate  string `json:"out_date"`
	InDate   string `json:"in_date"`
	OutRoute string `json:"out_route,omitempty"`
	InRoute  string `json:"in_route,omitempty"`
}

// =============================================================================
// GOALS
// =============================================================================

// GoalDTO represents a stored goal in API responses.
type GoalDTO struct {
	ID         string          `json:"id"`
	GoalType   string          `json:"goal_type"`
	Config     json.RawMessage `json:"config"`
	CreatedAt  string          `json:"created_at,omitempty"`
	AchievedAt string          `json:"achieved_at,omitempty"`
}

// CreateGoalRequest is the request to define a goal.
type CreateGoalRequest struct {
	ID       string          `json:"id"`
	GoalType string          `json:"goal_type"`
	Config   json.RawMessage `json:"config,omitempty"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

// ScenarioDTO describes a loadable demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorDTO is the uniform error body. Code distinguishes the three core
// failure kinds so clients can present them differently.
type ErrorDTO struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
