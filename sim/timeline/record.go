// Package timeline records the per-decision power-state log of a simulation run.
// This package has no dependencies on sim/ and stores pure data types.
package timeline

// State is one of the three power states the engine can occupy.
type State string

const (
	StateActive State = "ACTIVE"
	StateIdle   State = "IDLE"
	StateSleep  State = "SLEEP"
)

// Event captures a single engine decision.
type Event struct {
	Time      int64   `json:"time"`       // tick at which the state was entered
	State     State   `json:"state"`      // ACTIVE, IDLE or SLEEP
	PID       string  `json:"pid"`        // running process for ACTIVE, empty otherwise
	Duration  int64   `json:"duration"`   // ticks spent in State, wake latency excluded
	WakeTicks int64   `json:"wake_ticks"` // forced wake latency following a SLEEP, 0 otherwise
	Energy    float64 `json:"energy"`     // energy charged for this decision, wake included
}

// End returns the tick at which the decision's time advance completed.
func (e Event) End() int64 {
	return e.Time + e.Duration + e.WakeTicks
}

// Rates is the energy table used to rebuild total energy from events.
type Rates struct {
	Active       float64
	Idle         float64
	Sleep        float64
	WakeupEnergy float64
}
