/*
errors.go - Error types for trip validation

PURPOSE:
  All trip-level errors in one place. The engine package wraps these
  with goal-level context where needed.

USAGE:
  Callers branch with errors.Is / errors.As:

    var invalid *trip.InvalidIntervalError
    if errors.As(err, &invalid) {
        // invalid.TripID names the offending row
    }

SEE ALSO:
  - interval.go: Where these errors are raised
  - engine/errors.go: Goal-level error taxonomy
*/
package trip

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidInterval is returned when a trip's return date does not
	// strictly follow its departure date. Same-day trips are rejected,
	// never coerced to zero-day absences.
	ErrInvalidInterval = errors.New("invalid trip interval")
)

// =============================================================================
// STRUCTURED ERRORS - Carry the offending trip's identity
// =============================================================================

// InvalidIntervalError identifies which trip record failed validation so
// the caller can report the exact row. The engine never continues with a
// partial calculation over the remaining trips.
type InvalidIntervalError struct {
	TripID    string
	Departure Date
	Return    Date
	Detail    string
}

func (e *InvalidIntervalError) Error() string {
	return fmt.Sprintf("trip %s: %s (departure %s, return %s)",
		e.TripID, e.Detail, e.Departure, e.Return)
}

func (e *InvalidIntervalError) Unwrap() error {
	return ErrInvalidInterval
}
