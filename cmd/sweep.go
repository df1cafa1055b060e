package cmd

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/energy-sched/sim"
	"github.com/inference-sim/energy-sched/sim/record"
	"github.com/inference-sim/energy-sched/sim/report"
	"github.com/inference-sim/energy-sched/sim/workload"
)

var (
	sweepOpts     engineOptions
	sweepInput    string
	sweepFrom     int64
	sweepTo       int64
	sweepStep     int64
	sweepPolicies []string
	sweepOutput   string
	sweepDB       string
)

// sweepPoint is one (threshold, policy) combination of a sweep.
type sweepPoint struct {
	threshold int64
	policy    string
}

// sweepCmd runs one independent engine per sleep threshold (and policy)
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Sweep the sleep threshold (and policies) over one workload",
	RunE: func(cmd *cobra.Command, args []string) error {
		base, err := sweepOpts.engineConfig(cmd)
		if err != nil {
			return err
		}
		points, err := sweepPoints(sweepFrom, sweepTo, sweepStep, sweepPolicies, base.Policy)
		if err != nil {
			return err
		}

		procs, err := workload.LoadProcesses(sweepInput)
		if err != nil {
			return err
		}

		var rec *record.Recorder
		if sweepDB != "" {
			if rec, err = record.Open(sweepDB); err != nil {
				return err
			}
		}

		out := io.Writer(os.Stdout)
		if sweepOutput != "" {
			file, err := os.Create(sweepOutput)
			if err != nil {
				return err
			}
			defer file.Close()
			out = file
		}
		cw := csv.NewWriter(out)
		if err := cw.Write(append([]string{"sleep_threshold", "policy"}, report.MetricsHeader...)); err != nil {
			return err
		}

		for _, pt := range points {
			cfg := base
			cfg.SleepThreshold = pt.threshold
			cfg.Policy = pt.policy
			if err := cfg.Validate(); err != nil {
				return err
			}

			result, err := simulate(procs, cfg)
			if err != nil {
				return fmt.Errorf("threshold %d, policy %s: %w", pt.threshold, pt.policy, err)
			}
			logrus.Infof("threshold=%d policy=%s energy=%.2f avg_turnaround=%.2f",
				pt.threshold, pt.policy, result.Metrics.TotalEnergy, result.Metrics.AvgTurnaround)

			row := append([]string{strconv.FormatInt(pt.threshold, 10), pt.policy}, report.MetricsRow(result.Metrics)...)
			if err := cw.Write(row); err != nil {
				return err
			}
			if rec != nil {
				label := fmt.Sprintf("sweep threshold=%d policy=%s", pt.threshold, pt.policy)
				if _, err := rec.RecordRun(label, cfg, result); err != nil {
					return err
				}
			}
		}

		cw.Flush()
		if err := cw.Error(); err != nil {
			return err
		}
		if rec != nil {
			return rec.Close()
		}
		return nil
	},
}

// sweepPoints expands the threshold range and policy list. Policies default
// to the configured one.
func sweepPoints(from, to, step int64, policies []string, defaultPolicy string) ([]sweepPoint, error) {
	if from < 1 {
		return nil, fmt.Errorf("--from must be >= 1, got %d", from)
	}
	if to < from {
		return nil, fmt.Errorf("--to (%d) must be >= --from (%d)", to, from)
	}
	if step < 1 {
		return nil, fmt.Errorf("--step must be >= 1, got %d", step)
	}
	if len(policies) == 0 {
		policies = []string{defaultPolicy}
	}
	for _, p := range policies {
		if !sim.ValidPolicies[p] {
			return nil, fmt.Errorf("unknown selection policy %q", p)
		}
	}

	var points []sweepPoint
	for _, p := range policies {
		for t := from; t <= to; t += step {
			points = append(points, sweepPoint{threshold: t, policy: p})
		}
	}
	return points, nil
}

func init() {
	sweepOpts.addFlags(sweepCmd)

	sweepCmd.Flags().StringVarP(&sweepInput, "input", "i", "", "Process descriptor file (.json, .yaml, .yml, .csv)")
	sweepCmd.Flags().Int64Var(&sweepFrom, "from", 1, "First sleep threshold")
	sweepCmd.Flags().Int64Var(&sweepTo, "to", 10, "Last sleep threshold")
	sweepCmd.Flags().Int64Var(&sweepStep, "step", 1, "Sleep threshold increment")
	sweepCmd.Flags().StringSliceVar(&sweepPolicies, "policies", nil, "Comma-separated selection policies to compare")
	sweepCmd.Flags().StringVarP(&sweepOutput, "output", "o", "", "CSV output file (default stdout)")
	sweepCmd.Flags().StringVar(&sweepDB, "db", "", "Record every run in this SQLite database")
	_ = sweepCmd.MarkFlagRequired("input")
}
