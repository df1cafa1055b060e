package sim

import (
	"fmt"

	"github.com/inference-sim/energy-sched/sim/timeline"
)

// PowerState is the power state the engine occupies for one decision.
type PowerState = timeline.State

const (
	PowerActive = timeline.StateActive
	PowerIdle   = timeline.StateIdle
	PowerSleep  = timeline.StateSleep
)

// Default power-model constants.
const (
	DefaultActivePower  = 5.0
	DefaultIdlePower    = 1.0
	DefaultSleepPower   = 0.2
	DefaultWakeupTicks  = 2
	DefaultWakeupEnergy = 2.0
)

// PowerModel holds the energy draw of each power state and the cost of waking
// from SLEEP. Energies are in abstract units per tick.
type PowerModel struct {
	Active       float64 `yaml:"active" json:"active"`               // energy per ACTIVE tick
	Idle         float64 `yaml:"idle" json:"idle"`                   // energy per IDLE tick
	Sleep        float64 `yaml:"sleep" json:"sleep"`                 // energy per SLEEP tick
	WakeupTicks  int64   `yaml:"wakeup_ticks" json:"wakeup_ticks"`   // extra ticks charged on every wake
	WakeupEnergy float64 `yaml:"wakeup_energy" json:"wakeup_energy"` // fixed energy charged on every wake
}

// DefaultPowerModel returns the reference power model.
func DefaultPowerModel() PowerModel {
	return PowerModel{
		Active:       DefaultActivePower,
		Idle:         DefaultIdlePower,
		Sleep:        DefaultSleepPower,
		WakeupTicks:  DefaultWakeupTicks,
		WakeupEnergy: DefaultWakeupEnergy,
	}
}

// Validate rejects negative constants.
func (pm PowerModel) Validate() error {
	checks := []struct {
		field string
		value float64
	}{
		{"power.active", pm.Active},
		{"power.idle", pm.Idle},
		{"power.sleep", pm.Sleep},
		{"power.wakeup_ticks", float64(pm.WakeupTicks)},
		{"power.wakeup_energy", pm.WakeupEnergy},
	}
	for _, c := range checks {
		if c.value < 0 {
			return &InvalidConfigurationError{Field: c.field, Value: fmt.Sprint(c.value), Reason: "must be non-negative"}
		}
	}
	return nil
}

// Cost returns the energy charged for spending ticks in state. Wake costs are
// not included; see WakeCost.
func (pm PowerModel) Cost(state PowerState, ticks int64) float64 {
	switch state {
	case PowerActive:
		return pm.Active * float64(ticks)
	case PowerIdle:
		return pm.Idle * float64(ticks)
	case PowerSleep:
		return pm.Sleep * float64(ticks)
	default:
		panic(fmt.Sprintf("unknown power state %q", state))
	}
}

// WakeCost returns the energy and ticks charged on one SLEEP exit.
func (pm PowerModel) WakeCost() (float64, int64) {
	return pm.WakeupEnergy, pm.WakeupTicks
}

// Rates converts the model into the rate table the timeline package uses to
// reconstruct energy from an event log.
func (pm PowerModel) Rates() timeline.Rates {
	return timeline.Rates{
		Active:       pm.Active,
		Idle:         pm.Idle,
		Sleep:        pm.Sleep,
		WakeupEnergy: pm.WakeupEnergy,
	}
}
