/*
Package sqlite provides SQLite-backed persistence for trips and goals.

PURPOSE:
  Stores the user's trip history and goal definitions. The calculation
  core never touches this package - it receives trips and configs as
  plain values - so the store is integration glue, swappable for
  PostgreSQL with only dialect changes.

KEY TABLES:
  trips:  One row per border-crossing round trip (dates as ISO strings)
  goals:  Goal type + config JSON; achieved_at records the caller-driven
          achieved transition so it survives restarts

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/residency.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - api/handlers.go: The store's only consumer
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// =============================================================================
// RECORDS - Persistence shapes, converted at the API layer
// =============================================================================

// TripRecord is a stored trip row. Dates stay ISO strings in storage;
// the factory validates them into trip.Interval at calculation time.
type TripRecord struct {
	ID        string
	OutDate   string
	InDate    string
	OutRoute  string
	InRoute   string
	CreatedAt string
}

// GoalRecord is a stored goal definition.
type GoalRecord struct {
	ID         string
	GoalType   string
	ConfigJSON string
	CreatedAt  string
	AchievedAt string // empty until the user confirms completion
}

// =============================================================================
// STORE
// =============================================================================

// Store implements trip and goal persistence using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps ":memory:" databases coherent (every new
	// pooled connection would otherwise see a fresh empty database).
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS trips (
		id TEXT PRIMARY KEY,
		out_date TEXT NOT NULL,
		in_date TEXT NOT NULL,
		out_route TEXT,
		in_route TEXT,
		created_at TEXT NOT NULL
	);

	-- Calculations read the whole history sorted by departure
	CREATE INDEX IF NOT EXISTS idx_trips_out_date ON trips(out_date);

	CREATE TABLE IF NOT EXISTS goals (
		id TEXT PRIMARY KEY,
		goal_type TEXT NOT NULL,
		config_json TEXT NOT NULL,
		created_at TEXT NOT NULL,
		achieved_at TEXT
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// =============================================================================
// TRIPS
// =============================================================================

// SaveTrip inserts or replaces a trip row.
func (s *Store) SaveTrip(ctx context.Context, t TripRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.CreatedAt == "" {
		t.CreatedAt = now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO trips (id, out_date, in_date, out_route, in_route, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.OutDate, t.InDate, t.OutRoute, t.InRoute, t.CreatedAt)
	return err
}

// ListTrips returns all trips ordered by departure date.
func (s *Store) ListTrips(ctx context.Context) ([]TripRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, out_date, in_date, COALESCE(out_route, ''), COALESCE(in_route, ''), created_at
		FROM trips ORDER BY out_date`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trips []TripRecord
	for rows.Next() {
		var t TripRecord
		if err := rows.Scan(&t.ID, &t.OutDate, &t.InDate, &t.OutRoute, &t.InRoute, &t.CreatedAt); err != nil {
			return nil, err
		}
		trips = append(trips, t)
	}
	return trips, rows.Err()
}

// DeleteTrip removes a trip. Returns sql.ErrNoRows when absent.
func (s *Store) DeleteTrip(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM trips WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// =============================================================================
// GOALS
// =============================================================================

// SaveGoal inserts or replaces a goal definition.
func (s *Store) SaveGoal(ctx context.Context, g GoalRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if g.CreatedAt == "" {
		g.CreatedAt = now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO goals (id, goal_type, config_json, created_at, achieved_at)
		VALUES (?, ?, ?, ?, NULLIF(?, ''))`,
		g.ID, g.GoalType, g.ConfigJSON, g.CreatedAt, g.AchievedAt)
	return err
}

// GetGoal fetches one goal. Returns sql.ErrNoRows when absent.
func (s *Store) GetGoal(ctx context.Context, id string) (GoalRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var g GoalRecord
	err := s.db.QueryRowContext(ctx, `
		SELECT id, goal_type, config_json, created_at, COALESCE(achieved_at, '')
		FROM goals WHERE id = ?`, id).
		Scan(&g.ID, &g.GoalType, &g.ConfigJSON, &g.CreatedAt, &g.AchievedAt)
	return g, err
}

// ListGoals returns all goals ordered by creation time.
func (s *Store) ListGoals(ctx context.Context) ([]GoalRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, goal_type, config_json, created_at, COALESCE(achieved_at, '')
		FROM goals ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals []GoalRecord
	for rows.Next() {
		var g GoalRecord
		if err := rows.Scan(&g.ID, &g.GoalType, &g.ConfigJSON, &g.CreatedAt, &g.AchievedAt); err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// MarkGoalAchieved records the user-confirmed completion timestamp.
func (s *Store) MarkGoalAchieved(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `UPDATE goals SET achieved_at = ? WHERE id = ?`, now(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteGoal removes a goal. Returns sql.ErrNoRows when absent.
func (s *Store) DeleteGoal(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM goals WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// =============================================================================
// RESET - Dev/demo only
// =============================================================================

// Reset clears all data. Scenario loaders call this before seeding.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM trips`); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM goals`)
	return err
}
