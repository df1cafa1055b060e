package sim

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/energy-sched/sim/internal/testutil"
	"github.com/inference-sim/energy-sched/sim/timeline"
)

func newTestProcesses(pairs ...[2]int64) []*Process {
	procs := make([]*Process, len(pairs))
	for i, p := range pairs {
		procs[i] = NewProcess(strconv.Itoa(i+1), p[0], p[1], 0)
	}
	return procs
}

func mustRun(t *testing.T, procs []*Process, cfg EngineConfig) *Result {
	t.Helper()
	s, err := NewSimulator(procs, cfg)
	require.NoError(t, err)
	res, err := s.Run()
	require.NoError(t, err)
	return res
}

// TestSimulator_Scenarios_MatchHandComputedResults runs every fixture in
// testdata/scenarios.json and checks completion order, finish ticks and metrics.
func TestSimulator_Scenarios_MatchHandComputedResults(t *testing.T) {
	set := testutil.LoadScenarios(t)
	require.NotEmpty(t, set.Scenarios)

	for _, sc := range set.Scenarios {
		t.Run(sc.Name, func(t *testing.T) {
			procs := make([]*Process, len(sc.Processes))
			for i, in := range sc.Processes {
				procs[i] = NewProcess(strconv.Itoa(i+1), in.Arrival, in.Burst, in.Priority)
			}
			cfg := DefaultEngineConfig()
			cfg.SleepThreshold = sc.SleepThreshold
			cfg.SleepMode = SleepMode(sc.SleepMode)

			res := mustRun(t, procs, cfg)

			order := make([]string, len(res.Finished))
			for i, fp := range res.Finished {
				order[i] = fp.PID
				assert.Equal(t, sc.FinishTimes[fp.PID], fp.FinishTime, "finish time of %s", fp.PID)
			}
			assert.Equal(t, sc.FinishOrder, order)

			m := res.Metrics
			testutil.AssertFloat64Equal(t, "avg_turnaround", sc.Metrics.AvgTurnaround, m.AvgTurnaround, 1e-9)
			testutil.AssertFloat64Equal(t, "avg_waiting", sc.Metrics.AvgWaiting, m.AvgWaiting, 1e-9)
			testutil.AssertFloat64Equal(t, "total_energy", sc.Metrics.TotalEnergy, m.TotalEnergy, 1e-9)
			assert.Equal(t, sc.Metrics.ProcessCount, m.ProcessCount)
			assert.Equal(t, sc.Metrics.Makespan, m.Makespan)
			assert.Equal(t, sc.Metrics.ActiveTicks, m.ActiveTicks)
			assert.Equal(t, sc.Metrics.IdleTicks, m.IdleTicks)
			assert.Equal(t, sc.Metrics.SleepTicks, m.SleepTicks)
			assert.Equal(t, sc.Metrics.WakeTicks, m.WakeTicks)
			assert.Equal(t, sc.Metrics.WakeCount, m.WakeCount)
		})
	}
}

func TestSimulator_EmptyInput_ZeroMetrics(t *testing.T) {
	// GIVEN no processes
	res := mustRun(t, nil, DefaultEngineConfig())

	// THEN nothing ran and no energy was spent
	assert.Empty(t, res.Finished)
	assert.Empty(t, res.Timeline)
	assert.Equal(t, Metrics{}, res.Metrics)
}

func TestSimulator_EqualScores_FirstAdmittedWins(t *testing.T) {
	// GIVEN two identical processes arriving together
	procs := newTestProcesses([2]int64{0, 3}, [2]int64{0, 3})

	// WHEN the run completes
	res := mustRun(t, procs, DefaultEngineConfig())

	// THEN pid 1 runs to completion first (remaining only shrinks for the chosen one)
	require.Len(t, res.Finished, 2)
	assert.Equal(t, "1", res.Finished[0].PID)
	assert.Equal(t, int64(3), res.Finished[0].FinishTime)
	assert.Equal(t, int64(6), res.Finished[1].FinishTime)
}

func TestSimulator_Preemption_StartTimeRecordedOnce(t *testing.T) {
	// GIVEN a long process preempted by a short one arriving mid-run
	procs := newTestProcesses([2]int64{0, 4}, [2]int64{1, 1})

	// WHEN the run completes
	res := mustRun(t, procs, DefaultEngineConfig())

	// THEN pid 2 (remaining 1 < 3) preempts at tick 1
	require.Len(t, res.Finished, 2)
	assert.Equal(t, "2", res.Finished[0].PID)
	assert.Equal(t, int64(2), res.Finished[0].FinishTime)
	assert.Equal(t, []int64{1}, res.Finished[0].StartTimes)

	// AND pid 1 keeps a single start time despite resuming at tick 2
	assert.Equal(t, "1", res.Finished[1].PID)
	assert.Equal(t, int64(5), res.Finished[1].FinishTime)
	assert.Equal(t, []int64{0}, res.Finished[1].StartTimes)
	assert.Equal(t, int64(1), res.Finished[1].Waiting)
}

func TestSimulator_ThresholdBoundary_GapEqualToThresholdSleeps(t *testing.T) {
	// GIVEN a single process whose arrival gap equals the threshold
	procs := newTestProcesses([2]int64{5, 1})
	cfg := DefaultEngineConfig()

	// WHEN the run completes
	res := mustRun(t, procs, cfg)

	// THEN the engine slept once instead of idling
	assert.Equal(t, 1, res.Metrics.WakeCount)
	assert.Equal(t, int64(0), res.Metrics.IdleTicks)
	require.NotEmpty(t, res.Timeline)
	assert.Equal(t, PowerSleep, res.Timeline[0].State)

	// AND wake latency delays the start past the arrival
	assert.Equal(t, int64(8), res.Finished[0].FinishTime)
	assert.Equal(t, int64(2), res.Finished[0].Waiting)
}

func TestSimulator_ZeroWakeupCost_FixedSleepStillWholeThreshold(t *testing.T) {
	// GIVEN free wakeups and a gap of 7 with threshold 3
	procs := newTestProcesses([2]int64{7, 1})
	cfg := DefaultEngineConfig()
	cfg.SleepThreshold = 3
	cfg.Power.WakeupTicks = 0
	cfg.Power.WakeupEnergy = 0

	// WHEN the run completes
	res := mustRun(t, procs, cfg)

	// THEN the engine sleeps 3+3 then idles 1 before the arrival
	assert.Equal(t, int64(6), res.Metrics.SleepTicks)
	assert.Equal(t, int64(1), res.Metrics.IdleTicks)
	assert.Equal(t, int64(8), res.Finished[0].FinishTime)
	assert.InDelta(t, 6*0.2+1+5, res.Metrics.TotalEnergy, 1e-9)
}

func TestSimulator_TrackTimelineOff_NoEvents(t *testing.T) {
	// GIVEN timeline tracking disabled
	cfg := DefaultEngineConfig()
	cfg.TrackTimeline = false

	// WHEN a run with idle and active time completes
	res := mustRun(t, newTestProcesses([2]int64{2, 2}), cfg)

	// THEN no events are kept but counters are still populated
	assert.Empty(t, res.Timeline)
	assert.Equal(t, int64(2), res.Metrics.IdleTicks)
	assert.Equal(t, int64(2), res.Metrics.ActiveTicks)
}

func TestSimulator_Timeline_CoversEveryTick(t *testing.T) {
	// GIVEN a workload with idle, sleep and active periods
	procs := newTestProcesses([2]int64{0, 2}, [2]int64{4, 1}, [2]int64{20, 2})

	// WHEN the run completes
	res := mustRun(t, procs, DefaultEngineConfig())

	// THEN events are contiguous from tick 0 to the makespan
	var clock int64
	for i, ev := range res.Timeline {
		assert.Equal(t, clock, ev.Time, "event %d starts where the previous ended", i)
		clock = ev.End()
	}
	assert.Equal(t, res.Metrics.Makespan, clock)

	// AND the event energies sum to the total
	var energy float64
	for _, ev := range res.Timeline {
		energy += ev.Energy
	}
	assert.InDelta(t, res.Metrics.TotalEnergy, energy, 1e-9)
}

func TestSimulator_UsePriority_ControlsCarriedPriority(t *testing.T) {
	procs := []*Process{NewProcess("1", 0, 1, 7)}

	// GIVEN priority disabled (default)
	res := mustRun(t, procs, DefaultEngineConfig())
	// THEN the record carries priority 0
	assert.Equal(t, 0, res.Finished[0].Priority)

	// GIVEN priority enabled
	cfg := DefaultEngineConfig()
	cfg.UsePriority = true
	res = mustRun(t, procs, cfg)
	// THEN the input priority is kept
	assert.Equal(t, 7, res.Finished[0].Priority)
}

func TestSimulator_InputNotMutated(t *testing.T) {
	// GIVEN caller-owned processes
	procs := newTestProcesses([2]int64{0, 3})

	// WHEN a run completes
	mustRun(t, procs, DefaultEngineConfig())

	// THEN the caller's records are untouched
	assert.Equal(t, int64(3), procs[0].Remaining)
	assert.Equal(t, StatePending, procs[0].State)
	assert.False(t, procs[0].Finished)
}

func TestSimulator_SameInput_Deterministic(t *testing.T) {
	procs := newTestProcesses([2]int64{0, 4}, [2]int64{1, 2}, [2]int64{1, 2}, [2]int64{30, 3})

	first := mustRun(t, procs, DefaultEngineConfig())
	second := mustRun(t, procs, DefaultEngineConfig())

	assert.Equal(t, first, second)
}

func TestSimulator_RunTwice_ReturnsError(t *testing.T) {
	s, err := NewSimulator(newTestProcesses([2]int64{0, 1}), DefaultEngineConfig())
	require.NoError(t, err)
	_, err = s.Run()
	require.NoError(t, err)

	_, err = s.Run()
	assert.Error(t, err)
}

func TestNewSimulator_InvalidProcess_ReturnsTypedError(t *testing.T) {
	tests := []struct {
		name  string
		proc  *Process
		field string
	}{
		{"negative arrival", NewProcess("1", -1, 2, 0), "arrival"},
		{"zero burst", NewProcess("1", 0, 0, 0), "burst"},
		{"negative burst", NewProcess("1", 0, -3, 0), "burst"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSimulator([]*Process{tt.proc}, DefaultEngineConfig())
			var perr *InvalidProcessError
			require.True(t, errors.As(err, &perr), "got %v", err)
			assert.Equal(t, tt.field, perr.Field)
			assert.Equal(t, "1", perr.PID)
		})
	}
}

func TestNewSimulator_DuplicatePID_ReturnsInputError(t *testing.T) {
	procs := []*Process{NewProcess("a", 0, 1, 0), NewProcess("a", 1, 1, 0)}

	_, err := NewSimulator(procs, DefaultEngineConfig())

	var ierr *InvalidInputError
	require.True(t, errors.As(err, &ierr), "got %v", err)
	assert.Equal(t, 1, ierr.Index)
	assert.Equal(t, "pid", ierr.Field)
}

func TestNewSimulator_NilProcess_ReturnsInputError(t *testing.T) {
	_, err := NewSimulator([]*Process{nil}, DefaultEngineConfig())

	var ierr *InvalidInputError
	assert.True(t, errors.As(err, &ierr), "got %v", err)
}

func TestNewSimulator_InvalidConfig_ReturnsConfigurationError(t *testing.T) {
	cfg := DefaultEngineConfig()
	cfg.SleepThreshold = 0

	_, err := NewSimulator(newTestProcesses([2]int64{0, 1}), cfg)

	var cerr *InvalidConfigurationError
	require.True(t, errors.As(err, &cerr), "got %v", err)
	assert.Equal(t, "sleep_threshold", cerr.Field)
}

func TestNewSimulator_EmptyModeAndPolicy_Defaulted(t *testing.T) {
	cfg := DefaultEngineConfig()
	cfg.SleepMode = ""
	cfg.Policy = ""

	s, err := NewSimulator(nil, cfg)

	require.NoError(t, err)
	assert.Equal(t, SleepFixed, s.Config.SleepMode)
	assert.Equal(t, PolicyEnergyAware, s.Policy.Name())
}

func TestSimulator_MaxIterationsExceeded_InvariantViolation(t *testing.T) {
	// GIVEN an iteration bound smaller than the work to do
	cfg := DefaultEngineConfig()
	cfg.MaxIterations = 2

	s, err := NewSimulator(newTestProcesses([2]int64{0, 5}), cfg)
	require.NoError(t, err)

	// WHEN the loop runs
	_, err = s.Run()

	// THEN the run aborts with an InvariantViolation
	var iv *InvariantViolation
	require.True(t, errors.As(err, &iv), "got %v", err)
	assert.Equal(t, int64(2), iv.Time)
}

func TestSimulator_PolicyFCFS_RunsEarliestArrivalFirst(t *testing.T) {
	// GIVEN a long early process and a short later one
	procs := newTestProcesses([2]int64{0, 4}, [2]int64{1, 1})
	cfg := DefaultEngineConfig()
	cfg.Policy = PolicyFCFS

	// WHEN the run completes
	res := mustRun(t, procs, cfg)

	// THEN no preemption happens
	assert.Equal(t, "1", res.Finished[0].PID)
	assert.Equal(t, int64(4), res.Finished[0].FinishTime)
	assert.Equal(t, int64(5), res.Finished[1].FinishTime)
}

// recordingSink collects events for tests that do not need mock expectations.
type recordingSink struct{ events []timeline.Event }

func (r *recordingSink) Record(ev timeline.Event) { r.events = append(r.events, ev) }

func TestSimulator_ExtraSink_SeesSameEventsAsTimeline(t *testing.T) {
	sink := &recordingSink{}
	s, err := NewSimulator(newTestProcesses([2]int64{0, 1}, [2]int64{3, 1}), DefaultEngineConfig(), sink)
	require.NoError(t, err)

	res, err := s.Run()

	require.NoError(t, err)
	assert.Equal(t, res.Timeline, sink.events)
}
