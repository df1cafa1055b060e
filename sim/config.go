package sim

import (
	"fmt"
)

// SleepMode selects how long the engine sleeps once SLEEP is chosen.
type SleepMode string

const (
	// SleepFixed sleeps min(gap, sleep threshold) ticks. Since SLEEP is only
	// entered when gap >= threshold this is always the threshold itself.
	SleepFixed SleepMode = "fixed"
	// SleepUntilArrival sleeps the whole gap to the next arrival.
	SleepUntilArrival SleepMode = "until-arrival"
)

// ValidSleepModes is the set of recognized sleep mode names.
var ValidSleepModes = map[SleepMode]bool{"": true, SleepFixed: true, SleepUntilArrival: true}

// Default engine parameters.
const (
	DefaultSleepThreshold = 5
	DefaultEnergyWeight   = 0.7
	DefaultWorkWeight     = 0.3
)

// PolicyWeights blends projected energy and raw remaining work in the
// energy-aware selection score.
type PolicyWeights struct {
	Energy float64 `yaml:"energy" json:"energy"` // weight of remaining × active power
	Work   float64 `yaml:"work" json:"work"`     // weight of remaining
}

// EngineConfig groups every parameter of one simulation run.
type EngineConfig struct {
	SleepThreshold int64         // ticks; gap at or above this triggers SLEEP (must be >= 1)
	SleepMode      SleepMode     // "fixed" (default) or "until-arrival"
	Policy         string        // "energy-aware" (default), "fcfs", "srt"
	Weights        PolicyWeights // energy-aware score weights
	Power          PowerModel    // state draws and wake costs
	TrackTimeline  bool          // record one timeline event per decision
	UsePriority    bool          // carry input priority into records; no policy reads it
	MaxIterations  int64         // loop sanity bound; 0 = derived from the workload
}

// NewEngineConfig creates an EngineConfig from the given parameters.
func NewEngineConfig(sleepThreshold int64, sleepMode SleepMode, policy string, weights PolicyWeights,
	power PowerModel, trackTimeline, usePriority bool, maxIterations int64) EngineConfig {
	return EngineConfig{
		SleepThreshold: sleepThreshold,
		SleepMode:      sleepMode,
		Policy:         policy,
		Weights:        weights,
		Power:          power,
		TrackTimeline:  trackTimeline,
		UsePriority:    usePriority,
		MaxIterations:  maxIterations,
	}
}

// DefaultEngineConfig returns the reference configuration.
func DefaultEngineConfig() EngineConfig {
	return NewEngineConfig(DefaultSleepThreshold, SleepFixed, PolicyEnergyAware,
		PolicyWeights{Energy: DefaultEnergyWeight, Work: DefaultWorkWeight},
		DefaultPowerModel(), true, false, 0)
}

// Validate checks every parameter range and policy name.
func (c EngineConfig) Validate() error {
	if c.SleepThreshold < 1 {
		return &InvalidConfigurationError{Field: "sleep_threshold", Value: fmt.Sprint(c.SleepThreshold), Reason: "must be >= 1"}
	}
	if !ValidSleepModes[c.SleepMode] {
		return &InvalidConfigurationError{Field: "sleep_mode", Value: string(c.SleepMode), Reason: "unknown sleep mode"}
	}
	if !ValidPolicies[c.Policy] {
		return &InvalidConfigurationError{Field: "policy", Value: c.Policy, Reason: "unknown selection policy"}
	}
	if c.Weights.Energy < 0 {
		return &InvalidConfigurationError{Field: "weights.energy", Value: fmt.Sprint(c.Weights.Energy), Reason: "must be non-negative"}
	}
	if c.Weights.Work < 0 {
		return &InvalidConfigurationError{Field: "weights.work", Value: fmt.Sprint(c.Weights.Work), Reason: "must be non-negative"}
	}
	if c.MaxIterations < 0 {
		return &InvalidConfigurationError{Field: "max_iterations", Value: fmt.Sprint(c.MaxIterations), Reason: "must be non-negative"}
	}
	return c.Power.Validate()
}
