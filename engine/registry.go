/*
registry.go - Goal-type to engine lookup

PURPOSE:
  The sole entry point external callers use. Maps a goal-type identifier
  to its stateless engine implementation. Populated once at process start
  via package init(); read-mostly thereafter, so an RWMutex is all the
  coordination the table needs.

HOW IT WORKS:
  1. Each engine file registers its implementation in init()
  2. Callers resolve with Lookup (or go straight through Calculate)
  3. A lookup miss is ErrUnknownGoalType - there is no default engine

USAGE:
  result, err := engine.Calculate(trips, engine.GoalSchengen90180, cfg, ref)

  eng, ok := engine.Lookup(engine.GoalUKILR)
  if !ok { ... unsupported goal type ... }

SEE ALSO:
  - types.go: Engine interface
  - errors.go: UnknownGoalTypeError
*/
package engine

import (
	"fmt"
	"sync"

	"github.com/warp/residency-engine/trip"
)

// =============================================================================
// ENGINE REGISTRY
// =============================================================================

var (
	engineRegistry = make(map[GoalType]Engine)
	registryMu     sync.RWMutex
)

// Register adds an engine to the registry. Called from init() in each
// engine file; not expected to mutate after process start.
func Register(goalType GoalType, eng Engine) {
	registryMu.Lock()
	defer registryMu.Unlock()
	engineRegistry[goalType] = eng
}

// Lookup resolves a goal type to its engine. Callers must treat a miss
// as "unsupported goal type" and fail the request.
func Lookup(goalType GoalType) (Engine, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	eng, ok := engineRegistry[goalType]
	return eng, ok
}

// MustLookup resolves an engine or panics. Use in tests and scenario
// seeds where the type is known to exist.
func MustLookup(goalType GoalType) Engine {
	eng, ok := Lookup(goalType)
	if !ok {
		panic(fmt.Sprintf("goal engine not registered: %s", goalType))
	}
	return eng
}

// RegisteredTypes returns every goal type with a registered engine.
func RegisteredTypes() []GoalType {
	registryMu.RLock()
	defer registryMu.RUnlock()
	types := make([]GoalType, 0, len(engineRegistry))
	for t := range engineRegistry {
		types = append(types, t)
	}
	return types
}

// =============================================================================
// CALCULATE - The single function boundary the core exposes
// =============================================================================

// Calculate resolves the goal type and runs its engine. This is the one
// synchronous boundary API routes and batch imports consume.
func Calculate(trips []trip.Interval, goalType GoalType, cfg Config, referenceDate trip.Date) (*Result, error) {
	eng, ok := Lookup(goalType)
	if !ok {
		return nil, &UnknownGoalTypeError{GoalType: goalType}
	}
	return eng.Calculate(trips, cfg, referenceDate)
}
