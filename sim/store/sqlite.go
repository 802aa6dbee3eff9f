// Package store exports a simulation run's customer log to SQLite.
//
// Every recorder writes to a fresh database file named after an xid run id;
// nothing is ever read back into a simulation.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"

	"github.com/rs/xid"

	"github.com/queue-sim/queue-sim/sim"
)

const defaultBatchSize = 10000

// SQLiteRecorder buffers customers and writes them to a SQLite database in
// batched transactions.
type SQLiteRecorder struct {
	db        *sql.DB
	statement *sql.Stmt

	runID     string
	path      string
	pending   []sim.Customer
	batchSize int
	written   int
}

// NewSQLiteRecorder creates the database file at path and its tables.
// An empty path yields "qsim_<runID>.sqlite3" in the working directory.
// The file must not already exist.
func NewSQLiteRecorder(path string) (*SQLiteRecorder, error) {
	r := &SQLiteRecorder{
		runID:     xid.New().String(),
		batchSize: defaultBatchSize,
	}
	if path == "" {
		path = "qsim_" + r.runID + ".sqlite3"
	}
	r.path = path

	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("file %s already exists", path)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	r.db = db

	if err := r.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	if err := r.prepareStatement(); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

func (r *SQLiteRecorder) createTables() error {
	stmts := []string{
		`CREATE TABLE runs (
			run_id        TEXT PRIMARY KEY,
			created_at    TEXT NOT NULL,
			arrival_rate  REAL NOT NULL,
			service_rate  REAL NOT NULL,
			servers       INTEGER NOT NULL,
			distribution  TEXT NOT NULL,
			stop_rule     TEXT NOT NULL,
			threshold     REAL NOT NULL,
			seed          INTEGER NOT NULL,
			customers     INTEGER,
			total_time    REAL,
			avg_wait      REAL,
			avg_service   REAL,
			avg_turnaround REAL,
			stop_reason   TEXT
		)`,
		`CREATE TABLE customers (
			run_id          TEXT NOT NULL,
			id              INTEGER NOT NULL,
			interarrival    REAL NOT NULL,
			arrival         REAL NOT NULL,
			service         REAL NOT NULL,
			server          INTEGER NOT NULL,
			start_time      REAL NOT NULL,
			end_time        REAL NOT NULL,
			wait            REAL NOT NULL,
			turnaround      REAL NOT NULL,
			arrival_uniform REAL NOT NULL,
			service_uniform REAL NOT NULL,
			PRIMARY KEY (run_id, id)
		)`,
	}
	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) prepareStatement() error {
	stmt, err := r.db.Prepare(`INSERT INTO customers (
		run_id, id, interarrival, arrival, service, server,
		start_time, end_time, wait, turnaround, arrival_uniform, service_uniform
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	r.statement = stmt
	return nil
}

// RunID returns the xid identifying this run's rows.
func (r *SQLiteRecorder) RunID() string {
	return r.runID
}

// Path returns the database file path.
func (r *SQLiteRecorder) Path() string {
	return r.path
}

// Written returns how many customers have been committed so far.
func (r *SQLiteRecorder) Written() int {
	return r.written
}

// BeginRun stores the run's configuration. cfg should be the engine's
// effective config so defaults are recorded.
func (r *SQLiteRecorder) BeginRun(cfg sim.SimulationConfig, seed int64) error {
	_, err := r.db.Exec(`INSERT INTO runs (
		run_id, created_at, arrival_rate, service_rate, servers,
		distribution, stop_rule, threshold, seed
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.runID, time.Now().UTC().Format(time.RFC3339), cfg.ArrivalRate, cfg.ServiceRate,
		cfg.Servers, cfg.ServiceDistribution, string(cfg.StopRule), cfg.StopThreshold, seed)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Record buffers a customer, flushing when the batch is full.
func (r *SQLiteRecorder) Record(c sim.Customer) error {
	r.pending = append(r.pending, c)
	if len(r.pending) >= r.batchSize {
		return r.Flush()
	}
	return nil
}

// Flush writes all buffered customers in one transaction.
func (r *SQLiteRecorder) Flush() error {
	if len(r.pending) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	stmt := tx.Stmt(r.statement)
	for _, c := range r.pending {
		_, err := stmt.Exec(
			r.runID, c.ID, c.InterarrivalTime, c.ArrivalTime, c.ServiceTime, c.Server,
			c.StartTime, c.EndTime, c.WaitTime, c.TurnaroundTime, c.ArrivalUniform, c.ServiceUniform,
		)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert customer %d: %w", c.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	r.written += len(r.pending)
	r.pending = nil
	return nil
}

// Finish flushes pending customers and stores the run summary.
func (r *SQLiteRecorder) Finish(s sim.Summary) error {
	if err := r.Flush(); err != nil {
		return err
	}
	_, err := r.db.Exec(`UPDATE runs SET
		customers = ?, total_time = ?, avg_wait = ?, avg_service = ?,
		avg_turnaround = ?, stop_reason = ?
	WHERE run_id = ?`,
		s.Customers, s.TotalTime, s.AvgWait, s.AvgService, s.AvgTurnaround, string(s.StopReason), r.runID)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	return nil
}

// Close flushes pending customers and closes the database. Safe to call
// more than once.
func (r *SQLiteRecorder) Close() error {
	if r.db == nil {
		return nil
	}
	flushErr := r.Flush()
	r.statement.Close()
	closeErr := r.db.Close()
	r.db = nil
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}
