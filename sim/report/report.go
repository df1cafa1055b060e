// Package report writes run results in row-oriented formats for persistence
// and presentation collaborators.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/xid"

	"github.com/inference-sim/energy-sched/sim"
	"github.com/inference-sim/energy-sched/sim/timeline"
)

// MetricsHeader is the column order of the metrics row.
var MetricsHeader = []string{
	"avg_turnaround", "avg_waiting", "total_energy", "process_count",
	"avg_response", "p90_turnaround", "p90_waiting", "makespan",
	"active_ticks", "idle_ticks", "sleep_ticks", "wake_ticks", "wake_count",
}

// MetricsRow formats m in MetricsHeader order.
func MetricsRow(m sim.Metrics) []string {
	return []string{
		formatFloat(m.AvgTurnaround),
		formatFloat(m.AvgWaiting),
		formatFloat(m.TotalEnergy),
		strconv.Itoa(m.ProcessCount),
		formatFloat(m.AvgResponse),
		formatFloat(m.P90Turnaround),
		formatFloat(m.P90Waiting),
		strconv.FormatInt(m.Makespan, 10),
		strconv.FormatInt(m.ActiveTicks, 10),
		strconv.FormatInt(m.IdleTicks, 10),
		strconv.FormatInt(m.SleepTicks, 10),
		strconv.FormatInt(m.WakeTicks, 10),
		strconv.Itoa(m.WakeCount),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteMetricsCSV writes a header and a single metrics row.
func WriteMetricsCSV(w io.Writer, m sim.Metrics) error {
	return writeCSV(w, MetricsHeader, [][]string{MetricsRow(m)})
}

// WriteFinishedCSV writes one row per finished process in completion order.
func WriteFinishedCSV(w io.Writer, finished []sim.FinishedProcess) error {
	header := []string{"pid", "arrival", "burst", "priority", "start_times", "finish_time", "turnaround", "waiting"}
	rows := make([][]string, 0, len(finished))
	for _, p := range finished {
		starts := make([]string, len(p.StartTimes))
		for i, s := range p.StartTimes {
			starts[i] = strconv.FormatInt(s, 10)
		}
		rows = append(rows, []string{
			p.PID,
			strconv.FormatInt(p.Arrival, 10),
			strconv.FormatInt(p.Burst, 10),
			strconv.Itoa(p.Priority),
			strings.Join(starts, ";"),
			strconv.FormatInt(p.FinishTime, 10),
			strconv.FormatInt(p.Turnaround, 10),
			strconv.FormatInt(p.Waiting, 10),
		})
	}
	return writeCSV(w, header, rows)
}

// WriteTimelineCSV writes one row per timeline event.
func WriteTimelineCSV(w io.Writer, events []timeline.Event) error {
	header := []string{"time", "state", "pid", "duration", "wake_ticks", "energy"}
	rows := make([][]string, 0, len(events))
	for _, e := range events {
		rows = append(rows, []string{
			strconv.FormatInt(e.Time, 10),
			string(e.State),
			e.PID,
			strconv.FormatInt(e.Duration, 10),
			strconv.FormatInt(e.WakeTicks, 10),
			formatFloat(e.Energy),
		})
	}
	return writeCSV(w, header, rows)
}

func writeCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

// ResultDocument is the JSON shape of a finished run.
type ResultDocument struct {
	RunID  string      `json:"run_id"`
	Config RunConfig   `json:"config"`
	Result *sim.Result `json:"result"`
}

// RunConfig is the subset of EngineConfig worth persisting with a result.
type RunConfig struct {
	SleepThreshold int64             `json:"sleep_threshold"`
	SleepMode      sim.SleepMode     `json:"sleep_mode"`
	Policy         string            `json:"policy"`
	Weights        sim.PolicyWeights `json:"weights"`
	Power          sim.PowerModel    `json:"power"`
	TrackTimeline  bool              `json:"track_timeline"`
	UsePriority    bool              `json:"use_priority"`
}

// NewRunConfig extracts the persisted fields of cfg.
func NewRunConfig(cfg sim.EngineConfig) RunConfig {
	return RunConfig{
		SleepThreshold: cfg.SleepThreshold,
		SleepMode:      cfg.SleepMode,
		Policy:         cfg.Policy,
		Weights:        cfg.Weights,
		Power:          cfg.Power,
		TrackTimeline:  cfg.TrackTimeline,
		UsePriority:    cfg.UsePriority,
	}
}

// NewResultDocument wraps a result with a fresh run ID.
func NewResultDocument(cfg sim.EngineConfig, result *sim.Result) *ResultDocument {
	return &ResultDocument{
		RunID:  xid.New().String(),
		Config: NewRunConfig(cfg),
		Result: result,
	}
}

// WriteJSON writes doc as indented JSON.
func WriteJSON(w io.Writer, doc *ResultDocument) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// WriteFile creates path and streams write into it.
func WriteFile(path string, write func(io.Writer) error) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, closeErr)
		}
	}()
	if err := write(file); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// ReadJSON decodes a result document written by WriteJSON.
func ReadJSON(r io.Reader) (*ResultDocument, error) {
	var doc ResultDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding result document: %w", err)
	}
	if doc.RunID == "" || doc.Result == nil {
		return nil, fmt.Errorf("result document is missing run_id or result")
	}
	return &doc, nil
}
