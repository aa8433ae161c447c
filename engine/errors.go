/*
errors.go - Goal-level error taxonomy

PURPOSE:
  Distinguishes the three failure kinds external callers need to present
  differently: a malformed trip (trip package), an unsupported goal type
  (registry miss), and an unusable config for a known goal type.

  All three are local, synchronous, deterministic failures - nothing to
  retry, nothing fatal to the process. Each call is independent.

USAGE:
  if errors.Is(err, engine.ErrUnknownGoalType) { ... 404-equivalent ... }
  if errors.Is(err, engine.ErrInvalidGoalConfig) { ... 422-equivalent ... }

SEE ALSO:
  - trip/errors.go: ErrInvalidInterval
  - api/handlers.go: HTTP status mapping
*/
package engine

import (
	"errors"
	"fmt"

	"github.com/warp/residency-engine/trip"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrUnknownGoalType is returned on a registry lookup miss. Callers
	// must fail the request, never fall through to a default engine.
	ErrUnknownGoalType = errors.New("unknown goal type")

	// ErrInvalidGoalConfig is returned when a resolved engine receives a
	// config missing a required field, carrying an out-of-range value, or
	// of the wrong variant for its goal type.
	ErrInvalidGoalConfig = errors.New("invalid goal config")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// UnknownGoalTypeError names the unsupported type so callers can present
// "type not supported" distinctly from "this type's setup is incomplete".
type UnknownGoalTypeError struct {
	GoalType GoalType
}

func (e *UnknownGoalTypeError) Error() string {
	return fmt.Sprintf("unknown goal type %q", e.GoalType)
}

func (e *UnknownGoalTypeError) Unwrap() error { return ErrUnknownGoalType }

// ConfigError identifies which field of a goal config is unusable.
type ConfigError struct {
	GoalType GoalType
	Field    string
	Detail   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s config: %s: %s", e.GoalType, e.Field, e.Detail)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidGoalConfig }

// configMismatch is the error every engine returns when handed a Config
// variant that belongs to a different goal type.
func configMismatch(want GoalType, got Config) error {
	return &ConfigError{
		GoalType: want,
		Field:    "goal_type",
		Detail:   fmt.Sprintf("expected %s config, got %s", want, got.GoalType()),
	}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidGoalConfig) ||
		errors.Is(err, trip.ErrInvalidInterval)
}

// IsNotFound returns true if the error indicates an unsupported goal type.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUnknownGoalType)
}
