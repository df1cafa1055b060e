package cmd

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/energy-sched/sim"
	"github.com/inference-sim/energy-sched/sim/record"
	"github.com/inference-sim/energy-sched/sim/report"
	"github.com/inference-sim/energy-sched/sim/workload"
)

var (
	runOpts        engineOptions
	inputPath      string // Process descriptor file (.json, .yaml, .csv)
	metricsCSVPath string // Metrics row output
	finishedCSV    string // Finished-process table output
	timelineCSV    string // Timeline output
	resultJSONPath string // Full result document output
	dbPath         string // SQLite recording
	runLabel       string // Label stored with the recorded run
)

// runCmd executes one simulation using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the scheduling simulation on a workload file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := runOpts.engineConfig(cmd)
		if err != nil {
			return err
		}

		procs, err := workload.LoadProcesses(inputPath)
		if err != nil {
			return err
		}

		result, err := simulate(procs, cfg)
		if err != nil {
			return err
		}

		result.Metrics.Print()
		doc := report.NewResultDocument(cfg, result)
		if err := writeOutputs(doc); err != nil {
			return err
		}

		if dbPath != "" {
			rec, err := record.Open(dbPath)
			if err != nil {
				return err
			}
			runID, err := rec.RecordRun(runLabel, cfg, result)
			if err != nil {
				return err
			}
			if err := rec.Close(); err != nil {
				return err
			}
			logrus.Infof("Recorded run %s in %s", runID, rec.Path())
		}

		logrus.Info("Simulation complete.")
		return nil
	},
}

// simulate builds a fresh engine for one run.
func simulate(procs []*sim.Process, cfg sim.EngineConfig) (*sim.Result, error) {
	s, err := sim.NewSimulator(procs, cfg)
	if err != nil {
		return nil, err
	}
	return s.Run()
}

func writeOutputs(doc *report.ResultDocument) error {
	outputs := []struct {
		path  string
		write func(w io.Writer) error
	}{
		{metricsCSVPath, func(w io.Writer) error { return report.WriteMetricsCSV(w, doc.Result.Metrics) }},
		{finishedCSV, func(w io.Writer) error { return report.WriteFinishedCSV(w, doc.Result.Finished) }},
		{timelineCSV, func(w io.Writer) error { return report.WriteTimelineCSV(w, doc.Result.Timeline) }},
		{resultJSONPath, func(w io.Writer) error { return report.WriteJSON(w, doc) }},
	}
	for _, out := range outputs {
		if out.path == "" {
			continue
		}
		if err := report.WriteFile(out.path, out.write); err != nil {
			return fmt.Errorf("saving results: %w", err)
		}
		logrus.Infof("Wrote %s", out.path)
	}
	return nil
}

func init() {
	runOpts.addFlags(runCmd)

	runCmd.Flags().StringVarP(&inputPath, "input", "i", "", "Process descriptor file (.json, .yaml, .yml, .csv)")
	runCmd.Flags().StringVar(&metricsCSVPath, "metrics-csv", "", "Write the metrics row to this CSV file")
	runCmd.Flags().StringVar(&finishedCSV, "finished-csv", "", "Write finished processes to this CSV file")
	runCmd.Flags().StringVar(&timelineCSV, "timeline-csv", "", "Write the timeline to this CSV file")
	runCmd.Flags().StringVar(&resultJSONPath, "json", "", "Write the full result document to this JSON file")
	runCmd.Flags().StringVar(&dbPath, "db", "", "Record the run in this SQLite database")
	runCmd.Flags().StringVar(&runLabel, "label", "", "Label stored with the recorded run")
	_ = runCmd.MarkFlagRequired("input")
}
