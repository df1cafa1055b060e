// sim/simulator.go
package sim

import (
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/energy-sched/sim/timeline"
)

// Result is everything a run hands to presentation and persistence collaborators.
// Callers must treat it as read-only.
type Result struct {
	Metrics  Metrics           `json:"metrics"`
	Finished []FinishedProcess `json:"finished"` // completion order
	Timeline []timeline.Event  `json:"timeline"` // empty when timeline tracking is off
}

// Simulator is the core object that holds simulation time, run state, and the tick loop.
// One Simulator serves exactly one run; parameter sweeps construct one per run.
type Simulator struct {
	Clock  int64
	Config EngineConfig
	// Pending holds processes that have not arrived yet, ordered by arrival
	Pending *PendingQueue
	// Ready holds arrived, unfinished processes in admission order
	Ready *ReadySet
	// Finished holds completed processes in completion order
	Finished []*Process
	Energy   float64
	Timeline *timeline.Timeline
	Policy   SelectionPolicy

	sinks         []timeline.Sink
	processCount  int
	maxIterations int64
	iterations    int64
	ran           bool

	activeTicks int64
	idleTicks   int64
	sleepTicks  int64
	wakeTicks   int64
	wakeCount   int
}

// NewSimulator validates cfg and procs and builds a Simulator with fresh
// process records. The caller's processes are copied, never mutated.
// Extra sinks receive every timeline event when cfg.TrackTimeline is set.
func NewSimulator(procs []*Process, cfg EngineConfig, sinks ...timeline.Sink) (*Simulator, error) {
	if cfg.SleepMode == "" {
		cfg.SleepMode = SleepFixed
	}
	if cfg.Policy == "" {
		cfg.Policy = PolicyEnergyAware
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	records := make([]*Process, 0, len(procs))
	seen := make(map[string]bool, len(procs))
	var sumBurst, maxArrival int64
	for i, in := range procs {
		if in == nil {
			return nil, &InvalidInputError{Index: i, Field: "process", Reason: "nil process"}
		}
		if err := in.Validate(); err != nil {
			return nil, err
		}
		if seen[in.PID] {
			return nil, &InvalidInputError{Index: i, Field: "pid", Value: in.PID, Reason: "duplicate pid"}
		}
		seen[in.PID] = true

		priority := in.Priority
		if !cfg.UsePriority {
			priority = 0
		}
		p := NewProcess(in.PID, in.Arrival, in.Burst, priority)
		p.order = i
		records = append(records, p)

		sumBurst += in.Burst
		maxArrival = max(maxArrival, in.Arrival)
	}

	level := timeline.LevelNone
	if cfg.TrackTimeline {
		level = timeline.LevelEvents
	}

	s := &Simulator{
		Clock:         0,
		Config:        cfg,
		Pending:       NewPendingQueue(records),
		Ready:         NewReadySet(),
		Finished:      make([]*Process, 0, len(records)),
		Energy:        0,
		Timeline:      timeline.NewTimeline(level),
		Policy:        NewSelectionPolicy(cfg.Policy, cfg.Weights, cfg.Power),
		processCount:  len(records),
		maxIterations: cfg.MaxIterations,
	}
	if s.maxIterations == 0 {
		// every IDLE/SLEEP decision advances the clock by at least one tick and
		// only happens before the last arrival
		s.maxIterations = sumBurst + maxArrival + 1
	}
	if cfg.TrackTimeline {
		s.sinks = append([]timeline.Sink{s.Timeline}, sinks...)
	}
	return s, nil
}

// Run executes the tick loop until no process is pending or ready and returns
// the run's metrics, finished records and timeline.
func (sim *Simulator) Run() (*Result, error) {
	if sim.ran {
		return nil, errors.New("simulator already ran; construct a new one per run")
	}
	sim.ran = true

	logrus.Infof("Starting simulation: %d processes, sleep threshold %d (%s), policy %s",
		sim.processCount, sim.Config.SleepThreshold, sim.Config.SleepMode, sim.Policy.Name())

	for sim.Pending.Len() > 0 || sim.Ready.Len() > 0 {
		sim.iterations++
		if sim.iterations > sim.maxIterations {
			return nil, &InvariantViolation{Time: sim.Clock,
				Detail: fmt.Sprintf("loop exceeded %d iterations", sim.maxIterations)}
		}

		sim.admitArrivals()

		var ev timeline.Event
		if sim.Ready.Len() > 0 {
			var err error
			if ev, err = sim.runTick(); err != nil {
				return nil, err
			}
		} else {
			ev = sim.wait()
		}

		// sleep and idle advances can cross arrival boundaries
		sim.admitArrivals()
		sim.record(ev)
	}

	logrus.Infof("[tick %07d] Simulation ended, energy=%.2f", sim.Clock, sim.Energy)

	if len(sim.Finished) != sim.processCount {
		return nil, &InvariantViolation{Time: sim.Clock,
			Detail: fmt.Sprintf("%d of %d processes finished", len(sim.Finished), sim.processCount)}
	}

	metrics, err := ComputeMetrics(sim.Finished, sim.Energy)
	if err != nil {
		return nil, err
	}
	metrics.ActiveTicks = sim.activeTicks
	metrics.IdleTicks = sim.idleTicks
	metrics.SleepTicks = sim.sleepTicks
	metrics.WakeTicks = sim.wakeTicks
	metrics.WakeCount = sim.wakeCount

	finished := make([]FinishedProcess, len(sim.Finished))
	for i, p := range sim.Finished {
		finished[i] = p.Snapshot()
	}

	return &Result{
		Metrics:  metrics,
		Finished: finished,
		Timeline: sim.Timeline.Events(),
	}, nil
}

// admitArrivals moves every pending process with arrival <= Clock into Ready.
func (sim *Simulator) admitArrivals() {
	for _, p := range sim.Pending.PopArrived(sim.Clock) {
		logrus.Debugf("[tick %07d] << Arrival: %s (burst %d)", sim.Clock, p.PID, p.Burst)
		sim.Ready.Add(p)
	}
}

// runTick executes one ACTIVE tick of the process chosen by the policy.
func (sim *Simulator) runTick() (timeline.Event, error) {
	chosen := sim.Policy.Select(sim.Ready)
	if chosen == nil {
		panic("runTick: policy returned nil on a non-empty ready set")
	}

	if chosen.Remaining == chosen.Burst {
		chosen.StartTimes = append(chosen.StartTimes, sim.Clock)
	}

	start := sim.Clock
	cost := sim.Config.Power.Cost(PowerActive, 1)
	sim.Clock++
	chosen.Remaining--
	sim.Energy += cost
	sim.activeTicks++

	if chosen.Remaining < 0 {
		return timeline.Event{}, &InvariantViolation{Time: sim.Clock, PID: chosen.PID, Detail: "remaining work went negative"}
	}

	logrus.Debugf("[tick %07d] ACTIVE %s remaining=%d", start, chosen.PID, chosen.Remaining)

	if chosen.Remaining == 0 {
		chosen.FinishTime = sim.Clock
		chosen.Finished = true
		chosen.State = StateFinished
		sim.Ready.Remove(chosen.PID)
		sim.Finished = append(sim.Finished, chosen)
		logrus.Debugf("[tick %07d] Finished %s", sim.Clock, chosen.PID)
	}

	return timeline.Event{
		Time:     start,
		State:    PowerActive,
		PID:      chosen.PID,
		Duration: 1,
		Energy:   cost,
	}, nil
}

// wait spends an empty-ready-set decision in IDLE or SLEEP depending on the
// gap to the next arrival.
func (sim *Simulator) wait() timeline.Event {
	gap := int64(math.MaxInt64)
	if next, ok := sim.Pending.NextArrival(); ok {
		gap = next - sim.Clock
	}
	start := sim.Clock

	if gap >= sim.Config.SleepThreshold {
		duration := sim.sleepDuration(gap)
		sleepCost := sim.Config.Power.Cost(PowerSleep, duration)
		wakeEnergy, wakeTicks := sim.Config.Power.WakeCost()

		sim.Energy += sleepCost
		sim.Clock += duration
		// waking is charged even if nothing arrived during the sleep
		sim.Energy += wakeEnergy
		sim.Clock += wakeTicks

		sim.sleepTicks += duration
		sim.wakeTicks += wakeTicks
		sim.wakeCount++

		logrus.Debugf("[tick %07d] SLEEP %d ticks, wake %d ticks (gap %d)", start, duration, wakeTicks, gap)
		return timeline.Event{
			Time:      start,
			State:     PowerSleep,
			Duration:  duration,
			WakeTicks: wakeTicks,
			Energy:    sleepCost + wakeEnergy,
		}
	}

	cost := sim.Config.Power.Cost(PowerIdle, 1)
	sim.Energy += cost
	sim.Clock++
	sim.idleTicks++

	logrus.Debugf("[tick %07d] IDLE (gap %d)", start, gap)
	return timeline.Event{
		Time:     start,
		State:    PowerIdle,
		Duration: 1,
		Energy:   cost,
	}
}

func (sim *Simulator) sleepDuration(gap int64) int64 {
	if sim.Config.SleepMode == SleepUntilArrival && gap != math.MaxInt64 {
		return gap
	}
	return min(gap, sim.Config.SleepThreshold)
}

func (sim *Simulator) record(ev timeline.Event) {
	for _, sink := range sim.sinks {
		sink.Record(ev)
	}
}
