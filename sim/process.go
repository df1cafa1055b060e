// Defines the Process struct that models a single batch job in the simulation.
// Tracks arrival, burst, remaining work, start ticks and finish tick.

package sim

import (
	"fmt"
)

// ProcessState represents the lifecycle state of a process.
type ProcessState string

const (
	StatePending  ProcessState = "pending"
	StateReady    ProcessState = "ready"
	StateFinished ProcessState = "finished"
)

// Process models a single process's lifecycle in the simulation.
// Arrival, Burst and Priority never change after construction; the engine's tick
// loop is the only writer of the remaining fields.
type Process struct {
	PID string // 1-based position in the input sequence

	Arrival  int64 // Tick at which the process becomes eligible
	Burst    int64 // Total work units required
	Priority int   // Carried through as metadata; not read by any selection policy

	State      ProcessState // pending, ready, finished
	Remaining  int64        // Work left, 0 <= Remaining <= Burst
	StartTimes []int64      // Ticks at which running began
	FinishTime int64        // Tick at which Remaining reached 0
	Finished   bool         // Whether FinishTime is set

	order int // position in input order, used for stable sorting
}

// NewProcess creates a Process in the pending state with Remaining = burst.
// Callers are expected to run Validate before handing it to the engine.
func NewProcess(pid string, arrival, burst int64, priority int) *Process {
	return &Process{
		PID:        pid,
		Arrival:    arrival,
		Burst:      burst,
		Priority:   priority,
		State:      StatePending,
		Remaining:  burst,
		StartTimes: []int64{},
	}
}

// Validate rejects processes the engine cannot run.
func (p *Process) Validate() error {
	if p.Arrival < 0 {
		return &InvalidProcessError{PID: p.PID, Field: "arrival", Value: p.Arrival}
	}
	if p.Burst <= 0 {
		return &InvalidProcessError{PID: p.PID, Field: "burst", Value: p.Burst}
	}
	return nil
}

// Turnaround returns FinishTime - Arrival. Only meaningful once finished.
func (p *Process) Turnaround() int64 {
	return p.FinishTime - p.Arrival
}

// Waiting returns the time the process spent present but not executing.
func (p *Process) Waiting() int64 {
	return p.FinishTime - p.Arrival - p.Burst
}

// Response returns the delay between arrival and the first execution tick,
// or -1 if the process never started.
func (p *Process) Response() int64 {
	if len(p.StartTimes) == 0 {
		return -1
	}
	return p.StartTimes[0] - p.Arrival
}

// This method returns a human-readable string representation of a Process.
func (p Process) String() string {
	return fmt.Sprintf("Process: (PID: %s, State: %s, Remaining: %d/%d, Arrival: %d)", p.PID, p.State, p.Remaining, p.Burst, p.Arrival)
}

// FinishedProcess is the read-only view of a completed process handed to
// presentation and persistence collaborators.
type FinishedProcess struct {
	PID        string  `json:"pid"`
	Arrival    int64   `json:"arrival"`
	Burst      int64   `json:"burst"`
	Priority   int     `json:"priority"`
	StartTimes []int64 `json:"start_times"`
	FinishTime int64   `json:"finish_time"`
	Turnaround int64   `json:"turnaround"`
	Waiting    int64   `json:"waiting"`
}

// Snapshot copies a finished process into a FinishedProcess.
func (p *Process) Snapshot() FinishedProcess {
	starts := make([]int64, len(p.StartTimes))
	copy(starts, p.StartTimes)
	return FinishedProcess{
		PID:        p.PID,
		Arrival:    p.Arrival,
		Burst:      p.Burst,
		Priority:   p.Priority,
		StartTimes: starts,
		FinishTime: p.FinishTime,
		Turnaround: p.Turnaround(),
		Waiting:    p.Waiting(),
	}
}
