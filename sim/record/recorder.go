// Package record stores simulation runs in a SQLite database so sweeps and
// repeated experiments can be compared offline.
package record

import (
	"database/sql"
	"errors"
	"fmt"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/sirupsen/logrus"
	"github.com/tebeka/atexit"

	"github.com/inference-sim/energy-sched/sim"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id          TEXT PRIMARY KEY,
	label           TEXT,
	sleep_threshold INTEGER,
	sleep_mode      TEXT,
	policy          TEXT,
	p_active        REAL,
	p_idle          REAL,
	p_sleep         REAL,
	wakeup_ticks    INTEGER,
	wakeup_energy   REAL,
	avg_turnaround  REAL,
	avg_waiting     REAL,
	total_energy    REAL,
	process_count   INTEGER,
	makespan        INTEGER
);
CREATE TABLE IF NOT EXISTS finished (
	run_id      TEXT,
	seq         INTEGER,
	pid         TEXT,
	arrival     INTEGER,
	burst       INTEGER,
	priority    INTEGER,
	finish_time INTEGER,
	turnaround  INTEGER,
	waiting     INTEGER
);
CREATE TABLE IF NOT EXISTS timeline (
	run_id     TEXT,
	seq        INTEGER,
	time       INTEGER,
	state      TEXT,
	pid        TEXT,
	duration   INTEGER,
	wake_ticks INTEGER,
	energy     REAL
);`

// DefaultBatchSize is the number of buffered rows that triggers a flush.
const DefaultBatchSize = 100000

type runRow struct {
	runID, label string
	cfg          sim.EngineConfig
	metrics      sim.Metrics
}

type finishedRow struct {
	runID string
	seq   int
	p     sim.FinishedProcess
}

type eventRow struct {
	runID string
	seq   int
	time  int64
	state string
	pid   string
	dur   int64
	wake  int64
	nrg   float64
}

// Recorder buffers runs and writes them to SQLite in batched transactions.
type Recorder struct {
	db        *sql.DB
	path      string
	batchSize int

	runs     []runRow
	finished []finishedRow
	events   []eventRow
	closed   bool
}

// Open opens (or creates) the database at path. An empty path creates a new
// uniquely named file in the working directory. Buffered rows are flushed on
// process exit through atexit.
func Open(path string) (*Recorder, error) {
	if path == "" {
		path = "energysim_" + xid.New().String() + ".sqlite3"
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema in %s: %w", path, err)
	}
	logrus.Infof("Recording runs to %s", path)

	r := &Recorder{db: db, path: path, batchSize: DefaultBatchSize}
	atexit.Register(func() {
		if err := r.Flush(); err != nil {
			logrus.Errorf("flushing %s on exit: %v", r.path, err)
		}
	})
	return r, nil
}

// Path returns the database file name.
func (r *Recorder) Path() string {
	return r.path
}

// RecordRun buffers one run and returns its generated run ID.
func (r *Recorder) RecordRun(label string, cfg sim.EngineConfig, result *sim.Result) (string, error) {
	if r.closed {
		return "", errors.New("recorder is closed")
	}
	if result == nil {
		return "", errors.New("nil result")
	}
	runID := xid.New().String()

	r.runs = append(r.runs, runRow{runID: runID, label: label, cfg: cfg, metrics: result.Metrics})
	for i, p := range result.Finished {
		r.finished = append(r.finished, finishedRow{runID: runID, seq: i, p: p})
	}
	for i, e := range result.Timeline {
		r.events = append(r.events, eventRow{
			runID: runID, seq: i, time: e.Time, state: string(e.State), pid: e.PID,
			dur: e.Duration, wake: e.WakeTicks, nrg: e.Energy,
		})
	}

	if r.pending() >= r.batchSize {
		if err := r.Flush(); err != nil {
			return runID, err
		}
	}
	return runID, nil
}

func (r *Recorder) pending() int {
	return len(r.runs) + len(r.finished) + len(r.events)
}

// Flush writes every buffered row in a single transaction.
func (r *Recorder) Flush() (err error) {
	if r.closed || r.pending() == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = r.insertRuns(tx); err != nil {
		return err
	}
	if err = r.insertFinished(tx); err != nil {
		return err
	}
	if err = r.insertEvents(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}

	logrus.Debugf("flushed %d runs, %d processes, %d events to %s",
		len(r.runs), len(r.finished), len(r.events), r.path)
	r.runs, r.finished, r.events = nil, nil, nil
	return nil
}

func (r *Recorder) insertRuns(tx *sql.Tx) error {
	stmt, err := tx.Prepare(`INSERT INTO runs VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing runs insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range r.runs {
		c, m := row.cfg, row.metrics
		if _, err := stmt.Exec(row.runID, row.label, c.SleepThreshold, string(c.SleepMode), c.Policy,
			c.Power.Active, c.Power.Idle, c.Power.Sleep, c.Power.WakeupTicks, c.Power.WakeupEnergy,
			m.AvgTurnaround, m.AvgWaiting, m.TotalEnergy, m.ProcessCount, m.Makespan); err != nil {
			return fmt.Errorf("inserting run %s: %w", row.runID, err)
		}
	}
	return nil
}

func (r *Recorder) insertFinished(tx *sql.Tx) error {
	stmt, err := tx.Prepare(`INSERT INTO finished VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing finished insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range r.finished {
		p := row.p
		if _, err := stmt.Exec(row.runID, row.seq, p.PID, p.Arrival, p.Burst, p.Priority,
			p.FinishTime, p.Turnaround, p.Waiting); err != nil {
			return fmt.Errorf("inserting process %s of run %s: %w", p.PID, row.runID, err)
		}
	}
	return nil
}

func (r *Recorder) insertEvents(tx *sql.Tx) error {
	stmt, err := tx.Prepare(`INSERT INTO timeline VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing timeline insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range r.events {
		if _, err := stmt.Exec(row.runID, row.seq, row.time, row.state, row.pid,
			row.dur, row.wake, row.nrg); err != nil {
			return fmt.Errorf("inserting event %d of run %s: %w", row.seq, row.runID, err)
		}
	}
	return nil
}

// RunSummary is one row of the runs table.
type RunSummary struct {
	RunID          string  `json:"run_id"`
	Label          string  `json:"label"`
	SleepThreshold int64   `json:"sleep_threshold"`
	SleepMode      string  `json:"sleep_mode"`
	Policy         string  `json:"policy"`
	AvgTurnaround  float64 `json:"avg_turnaround"`
	AvgWaiting     float64 `json:"avg_waiting"`
	TotalEnergy    float64 `json:"total_energy"`
	ProcessCount   int     `json:"process_count"`
	Makespan       int64   `json:"makespan"`
}

// Runs flushes pending rows and returns every stored run, ordered by insertion.
func (r *Recorder) Runs() ([]RunSummary, error) {
	if err := r.Flush(); err != nil {
		return nil, err
	}
	rows, err := r.db.Query(`SELECT run_id, label, sleep_threshold, sleep_mode, policy,
		avg_turnaround, avg_waiting, total_energy, process_count, makespan
		FROM runs ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	out := []RunSummary{}
	for rows.Next() {
		var s RunSummary
		if err := rows.Scan(&s.RunID, &s.Label, &s.SleepThreshold, &s.SleepMode, &s.Policy,
			&s.AvgTurnaround, &s.AvgWaiting, &s.TotalEnergy, &s.ProcessCount, &s.Makespan); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Close flushes and closes the database. Calling Close twice is a no-op.
func (r *Recorder) Close() error {
	if r.closed {
		return nil
	}
	if err := r.Flush(); err != nil {
		return err
	}
	r.closed = true
	return r.db.Close()
}
