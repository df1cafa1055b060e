package cmd

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/energy-sched/sim/workload"
)

var (
	genSpecPath string
	genSpec     workload.GeneratorSpec
	genCV       float64
	genOutput   string
)

// generateCmd writes a synthetic workload in the JSON input format
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a synthetic workload file",
	RunE: func(cmd *cobra.Command, args []string) error {
		spec := genSpec
		if genSpecPath != "" {
			loaded, err := workload.LoadGeneratorSpec(genSpecPath)
			if err != nil {
				return err
			}
			spec = *loaded
		}
		if cmd.Flags().Changed("cv") {
			cv := genCV
			spec.Arrival.CV = &cv
		}

		descs, err := workload.Generate(&spec)
		if err != nil {
			return err
		}

		out := io.Writer(os.Stdout)
		if genOutput != "" {
			file, err := os.Create(genOutput)
			if err != nil {
				return err
			}
			defer file.Close()
			out = file
		}
		if err := workload.WriteJSON(out, descs); err != nil {
			return err
		}
		logrus.Infof("Generated %d processes", len(descs))
		return nil
	},
}

func init() {
	generateCmd.Flags().StringVar(&genSpecPath, "spec", "", "YAML generator spec (overrides the flags below)")
	generateCmd.Flags().Int64Var(&genSpec.Seed, "seed", 42, "Seed for random generation")
	generateCmd.Flags().IntVar(&genSpec.Count, "count", 20, "Number of processes")
	generateCmd.Flags().Float64Var(&genSpec.MeanGap, "mean-gap", 4, "Mean ticks between arrivals")
	generateCmd.Flags().StringVar(&genSpec.Arrival.Process, "arrival", "poisson", "Arrival process (poisson, constant, gamma)")
	generateCmd.Flags().Float64Var(&genCV, "cv", 2, "Coefficient of variation for gamma arrivals")
	generateCmd.Flags().Int64Var(&genSpec.BurstMin, "burst-min", 1, "Minimum burst")
	generateCmd.Flags().Int64Var(&genSpec.BurstMax, "burst-max", 10, "Maximum burst")
	generateCmd.Flags().IntVar(&genSpec.Priorities, "priorities", 0, "Number of priority levels (0 = none)")
	generateCmd.Flags().StringVarP(&genOutput, "output", "o", "", "Output file (default stdout)")
}
