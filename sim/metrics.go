// Derives turnaround, waiting and energy statistics from finished processes.

package sim

import (
	"fmt"
	"sort"
)

// Metrics aggregates statistics about a run for final reporting.
// The first four fields form the summary record; the rest are supplementary.
type Metrics struct {
	AvgTurnaround float64 `json:"avg_turnaround"` // mean of finish - arrival
	AvgWaiting    float64 `json:"avg_waiting"`    // mean of finish - arrival - burst
	TotalEnergy   float64 `json:"total_energy"`   // engine energy accumulator, unmodified
	ProcessCount  int     `json:"process_count"`  // number of finished processes

	AvgResponse   float64 `json:"avg_response"`   // mean of first start - arrival
	P90Turnaround float64 `json:"p90_turnaround"` // 90th percentile turnaround
	P90Waiting    float64 `json:"p90_waiting"`    // 90th percentile waiting
	Makespan      int64   `json:"makespan"`       // latest finish time

	ActiveTicks int64 `json:"active_ticks"`
	IdleTicks   int64 `json:"idle_ticks"`
	SleepTicks  int64 `json:"sleep_ticks"`
	WakeTicks   int64 `json:"wake_ticks"`
	WakeCount   int   `json:"wake_count"`
}

// ComputeMetrics derives the summary from finished processes and the total
// energy. It is a pure function; an unfinished process or a negative waiting
// time is reported as an InvariantViolation.
func ComputeMetrics(finished []*Process, totalEnergy float64) (Metrics, error) {
	m := Metrics{
		TotalEnergy:  totalEnergy,
		ProcessCount: len(finished),
	}
	if len(finished) == 0 {
		return m, nil
	}

	turnarounds := make([]int64, 0, len(finished))
	waits := make([]int64, 0, len(finished))
	responses := make([]int64, 0, len(finished))
	for _, p := range finished {
		if !p.Finished {
			return Metrics{}, &InvariantViolation{Time: p.FinishTime, PID: p.PID, Detail: "process in finished set has no finish time"}
		}
		if w := p.Waiting(); w < 0 {
			return Metrics{}, &InvariantViolation{Time: p.FinishTime, PID: p.PID,
				Detail: fmt.Sprintf("negative waiting time %d", w)}
		}
		turnarounds = append(turnarounds, p.Turnaround())
		waits = append(waits, p.Waiting())
		if r := p.Response(); r >= 0 {
			responses = append(responses, r)
		}
		m.Makespan = max(m.Makespan, p.FinishTime)
	}

	m.AvgTurnaround = CalculateMean(turnarounds)
	m.AvgWaiting = CalculateMean(waits)
	m.AvgResponse = CalculateMean(responses)

	sort.Slice(turnarounds, func(i, j int) bool { return turnarounds[i] < turnarounds[j] })
	sort.Slice(waits, func(i, j int) bool { return waits[i] < waits[j] })
	m.P90Turnaround = CalculatePercentile(turnarounds, 90)
	m.P90Waiting = CalculatePercentile(waits, 90)

	return m, nil
}

// Print displays aggregated metrics at the end of the simulation.
func (m *Metrics) Print() {
	fmt.Println("=== Simulation Metrics ===")
	fmt.Printf("Finished Processes   : %d\n", m.ProcessCount)
	fmt.Printf("Total Energy         : %.2f\n", m.TotalEnergy)
	fmt.Printf("Average Turnaround   : %.2f ticks\n", m.AvgTurnaround)
	fmt.Printf("Average Waiting      : %.2f ticks\n", m.AvgWaiting)
	if m.ProcessCount > 0 {
		fmt.Printf("Average Response     : %.2f ticks\n", m.AvgResponse)
		fmt.Printf("P90 Turnaround       : %.2f ticks\n", m.P90Turnaround)
		fmt.Printf("P90 Waiting          : %.2f ticks\n", m.P90Waiting)
		fmt.Printf("Makespan             : %d ticks\n", m.Makespan)
		fmt.Printf("Active/Idle/Sleep    : %d/%d/%d ticks\n", m.ActiveTicks, m.IdleTicks, m.SleepTicks)
		fmt.Printf("Wakeups              : %d (%d ticks)\n", m.WakeCount, m.WakeTicks)
	}
}
