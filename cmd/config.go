package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/inference-sim/energy-sched/sim"
)

// FileConfig represents the --config YAML structure.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type FileConfig struct {
	SleepThreshold *int64             `yaml:"sleep_threshold"`
	SleepMode      *string            `yaml:"sleep_mode"`
	Policy         *string            `yaml:"policy"`
	TrackTimeline  *bool              `yaml:"track_timeline"`
	UsePriority    *bool              `yaml:"use_priority"`
	MaxIterations  *int64             `yaml:"max_iterations"`
	Power          *sim.PowerModel    `yaml:"power"`
	Weights        *sim.PolicyWeights `yaml:"weights"`
}

// loadFileConfig parses a config file with strict field checking so typos are errors.
func loadFileConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	var fc FileConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&fc); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return &fc, nil
}

// apply overlays the values set in the file onto cfg. A power or weights
// section replaces the whole block, so omitted constants become zero.
func (fc *FileConfig) apply(cfg *sim.EngineConfig) {
	if fc.SleepThreshold != nil {
		cfg.SleepThreshold = *fc.SleepThreshold
	}
	if fc.SleepMode != nil {
		cfg.SleepMode = sim.SleepMode(*fc.SleepMode)
	}
	if fc.Policy != nil {
		cfg.Policy = *fc.Policy
	}
	if fc.TrackTimeline != nil {
		cfg.TrackTimeline = *fc.TrackTimeline
	}
	if fc.UsePriority != nil {
		cfg.UsePriority = *fc.UsePriority
	}
	if fc.MaxIterations != nil {
		cfg.MaxIterations = *fc.MaxIterations
	}
	if fc.Power != nil {
		cfg.Power = *fc.Power
	}
	if fc.Weights != nil {
		cfg.Weights = *fc.Weights
	}
}

// engineOptions holds the CLI flags shared by run and sweep.
type engineOptions struct {
	configPath     string
	sleepThreshold int64
	sleepMode      string
	policy         string
	trackTimeline  bool
	usePriority    bool
	maxIterations  int64
	activePower    float64
	idlePower      float64
	sleepPower     float64
	wakeupTicks    int64
	wakeupEnergy   float64
	energyWeight   float64
	workWeight     float64
}

func (o *engineOptions) addFlags(c *cobra.Command) {
	c.Flags().StringVar(&o.configPath, "config", "", "YAML engine configuration file")
	c.Flags().Int64Var(&o.sleepThreshold, "sleep-threshold", sim.DefaultSleepThreshold, "Gap to the next arrival (ticks) at or above which the CPU sleeps")
	c.Flags().StringVar(&o.sleepMode, "sleep-mode", string(sim.SleepFixed), "Sleep duration rule (fixed, until-arrival)")
	c.Flags().StringVar(&o.policy, "policy", sim.PolicyEnergyAware, "Selection policy (energy-aware, fcfs, srt)")
	c.Flags().BoolVar(&o.trackTimeline, "timeline", true, "Record one timeline event per decision")
	c.Flags().BoolVar(&o.usePriority, "use-priority", false, "Carry input priorities into the output records")
	c.Flags().Int64Var(&o.maxIterations, "max-iterations", 0, "Loop sanity bound (0 = derived from the workload)")
	c.Flags().Float64Var(&o.activePower, "p-active", sim.DefaultActivePower, "Energy per ACTIVE tick")
	c.Flags().Float64Var(&o.idlePower, "p-idle", sim.DefaultIdlePower, "Energy per IDLE tick")
	c.Flags().Float64Var(&o.sleepPower, "p-sleep", sim.DefaultSleepPower, "Energy per SLEEP tick")
	c.Flags().Int64Var(&o.wakeupTicks, "t-wakeup", sim.DefaultWakeupTicks, "Ticks charged on every wake from SLEEP")
	c.Flags().Float64Var(&o.wakeupEnergy, "e-wakeup", sim.DefaultWakeupEnergy, "Energy charged on every wake from SLEEP")
	c.Flags().Float64Var(&o.energyWeight, "energy-weight", sim.DefaultEnergyWeight, "Energy-aware score weight of projected energy")
	c.Flags().Float64Var(&o.workWeight, "work-weight", sim.DefaultWorkWeight, "Energy-aware score weight of remaining work")
}

// engineConfig resolves defaults, then the config file, then explicitly set flags.
func (o *engineOptions) engineConfig(c *cobra.Command) (sim.EngineConfig, error) {
	cfg := sim.DefaultEngineConfig()
	if o.configPath != "" {
		fc, err := loadFileConfig(o.configPath)
		if err != nil {
			return cfg, err
		}
		fc.apply(&cfg)
	}

	flags := c.Flags()
	if flags.Changed("sleep-threshold") {
		cfg.SleepThreshold = o.sleepThreshold
	}
	if flags.Changed("sleep-mode") {
		cfg.SleepMode = sim.SleepMode(o.sleepMode)
	}
	if flags.Changed("policy") {
		cfg.Policy = o.policy
	}
	if flags.Changed("timeline") {
		cfg.TrackTimeline = o.trackTimeline
	}
	if flags.Changed("use-priority") {
		cfg.UsePriority = o.usePriority
	}
	if flags.Changed("max-iterations") {
		cfg.MaxIterations = o.maxIterations
	}
	if flags.Changed("p-active") {
		cfg.Power.Active = o.activePower
	}
	if flags.Changed("p-idle") {
		cfg.Power.Idle = o.idlePower
	}
	if flags.Changed("p-sleep") {
		cfg.Power.Sleep = o.sleepPower
	}
	if flags.Changed("t-wakeup") {
		cfg.Power.WakeupTicks = o.wakeupTicks
	}
	if flags.Changed("e-wakeup") {
		cfg.Power.WakeupEnergy = o.wakeupEnergy
	}
	if flags.Changed("energy-weight") {
		cfg.Weights.Energy = o.energyWeight
	}
	if flags.Changed("work-weight") {
		cfg.Weights.Work = o.workWeight
	}

	return cfg, cfg.Validate()
}
