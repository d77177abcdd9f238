// Package runlog records replay runs and their per-cycle statistics in a
// SQLite database.
package runlog

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/objectgraph/internal/objects"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrUnknownRun is returned when a run id has no row in the runs table.
var ErrUnknownRun = errors.New("runlog: unknown run")

// Store is a run log backed by SQLite.
type Store struct {
	*sql.DB
}

// Run is one row of the runs table.
type Run struct {
	ID         string
	Scenario   string
	Config     string
	StartedAt  time.Time
	FinishedAt time.Time // zero while the run is open
}

// CycleRecord is one stored cycle.
type CycleRecord struct {
	Cycle             int
	Timestamp         time.Time
	NewEdges          int
	IgnoredSegments   int
	RetiredComponents int
	NewComponents     int
	Clusters          int
	ObjectsCreated    int
	RejectedObjects   int
	Orphaned          int
	Attached          int
	Settled           int
	DistanceExceeded  int
	LiveComponents    int
	ActiveObjects     int
	Baseline          float64
	Duration          time.Duration
}

// Open opens (or creates) the database at path and applies pending migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// A single connection keeps ":memory:" databases shared across queries.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`
		PRAGMA journal_mode = WAL;
		PRAGMA busy_timeout = 5000;
		PRAGMA synchronous = NORMAL;
		PRAGMA foreign_keys = ON;
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	s := &Store{db}
	if err := s.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// MigrateUp runs all pending migrations up to the latest version.
// Returns nil if no migrations were needed.
func (s *Store) MigrateUp() error {
	m, err := s.newMigrate()
	if err != nil {
		return err
	}
	// m is not closed here since that would close the underlying connection.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// MigrateVersion returns the current migration version and dirty state.
func (s *Store) MigrateVersion() (version uint, dirty bool, err error) {
	m, err := s.newMigrate()
	if err != nil {
		return 0, false, err
	}
	version, dirty, err = m.Version()
	if err != nil && errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

func (s *Store) newMigrate() (*migrate.Migrate, error) {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(s.DB, &sqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	m.Log = &migrateLogger{}
	return m, nil
}

// migrateLogger implements migrate.Logger.
type migrateLogger struct{}

func (l *migrateLogger) Printf(format string, v ...interface{}) {
	log.Printf("[migrate] "+format, v...)
}

func (l *migrateLogger) Verbose() bool {
	return false
}

// StartRun inserts a new run and returns its id.
func (s *Store) StartRun(scenario, config string, startedAt time.Time) (string, error) {
	id := uuid.New().String()
	_, err := s.Exec(`INSERT INTO runs (run_id, scenario, config, started_at) VALUES (?, ?, ?, ?)`,
		id, scenario, config, startedAt.UnixNano())
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}
	return id, nil
}

// FinishRun stamps the run's finish time.
func (s *Store) FinishRun(runID string, finishedAt time.Time) error {
	res, err := s.Exec(`UPDATE runs SET finished_at = ? WHERE run_id = ?`, finishedAt.UnixNano(), runID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrUnknownRun, runID)
	}
	return nil
}

// GetRun returns the run with the given id.
func (s *Store) GetRun(runID string) (Run, error) {
	var (
		r        Run
		started  int64
		finished sql.NullInt64
	)
	err := s.QueryRow(`SELECT run_id, scenario, config, started_at, finished_at FROM runs WHERE run_id = ?`, runID).
		Scan(&r.ID, &r.Scenario, &r.Config, &started, &finished)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrUnknownRun, runID)
	}
	if err != nil {
		return Run{}, fmt.Errorf("failed to query run: %w", err)
	}
	r.StartedAt = time.Unix(0, started).UTC()
	if finished.Valid {
		r.FinishedAt = time.Unix(0, finished.Int64).UTC()
	}
	return r, nil
}

// RecordCycle stores the statistics of one cycle.
func (s *Store) RecordCycle(runID string, st objects.CycleStats) error {
	_, err := s.Exec(`
		INSERT INTO cycles (
			run_id, cycle, timestamp_ns, new_edges, ignored_segments, retired_components,
			new_components, clusters, objects_created, rejected_objects, orphaned, attached,
			settled, distance_exceeded, live_components, active_objects, baseline, cycle_ns
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, st.Cycle, st.Timestamp.UnixNano(), st.NewEdges, st.IgnoredSegments, st.RetiredComponents,
		st.NewComponents, st.Clusters, st.ObjectsCreated, st.RejectedObjects, st.Orphaned, st.Attached,
		st.Settled, st.DistanceExceeded, st.LiveComponents, st.ActiveObjects, st.Baseline,
		int64(st.Timings[objects.TimingCycle]),
	)
	if err != nil {
		return fmt.Errorf("failed to insert cycle %d: %w", st.Cycle, err)
	}
	return nil
}

// Cycles returns the stored cycles of a run in cycle order.
func (s *Store) Cycles(runID string) ([]CycleRecord, error) {
	rows, err := s.Query(`
		SELECT cycle, timestamp_ns, new_edges, ignored_segments, retired_components,
		       new_components, clusters, objects_created, rejected_objects, orphaned, attached,
		       settled, distance_exceeded, live_components, active_objects, baseline, cycle_ns
		FROM cycles WHERE run_id = ? ORDER BY cycle`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cycles: %w", err)
	}
	defer rows.Close()

	var out []CycleRecord
	for rows.Next() {
		var (
			r       CycleRecord
			ts, dur int64
		)
		if err := rows.Scan(&r.Cycle, &ts, &r.NewEdges, &r.IgnoredSegments, &r.RetiredComponents,
			&r.NewComponents, &r.Clusters, &r.ObjectsCreated, &r.RejectedObjects, &r.Orphaned, &r.Attached,
			&r.Settled, &r.DistanceExceeded, &r.LiveComponents, &r.ActiveObjects, &r.Baseline, &dur); err != nil {
			return nil, fmt.Errorf("failed to scan cycle: %w", err)
		}
		r.Timestamp = time.Unix(0, ts).UTC()
		r.Duration = time.Duration(dur)
		out = append(out, r)
	}
	return out, rows.Err()
}
