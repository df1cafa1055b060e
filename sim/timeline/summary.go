package timeline

// Summary aggregates statistics from an event log.
type Summary struct {
	TotalEvents int              `json:"total_events"`
	ActiveTicks int64            `json:"active_ticks"`
	IdleTicks   int64            `json:"idle_ticks"`
	SleepTicks  int64            `json:"sleep_ticks"`
	WakeTicks   int64            `json:"wake_ticks"`
	WakeCount   int              `json:"wake_count"`
	EndTime     int64            `json:"end_time"`      // End() of the last event
	TicksPerPID map[string]int64 `json:"ticks_per_pid"` // pid → ACTIVE ticks
}

// Summarize computes aggregate statistics from a list of events.
// Safe for nil or empty input (returns zero-value fields).
func Summarize(events []Event) *Summary {
	summary := &Summary{
		TicksPerPID: make(map[string]int64),
	}
	summary.TotalEvents = len(events)

	for _, e := range events {
		switch e.State {
		case StateActive:
			summary.ActiveTicks += e.Duration
			summary.TicksPerPID[e.PID] += e.Duration
		case StateIdle:
			summary.IdleTicks += e.Duration
		case StateSleep:
			summary.SleepTicks += e.Duration
			summary.WakeTicks += e.WakeTicks
			summary.WakeCount++
		}
		if end := e.End(); end > summary.EndTime {
			summary.EndTime = end
		}
	}

	return summary
}

// ReconstructEnergy rebuilds total energy from the event log alone:
// ACTIVE ticks × Active + IDLE ticks × Idle + SLEEP ticks × Sleep + wakes × WakeupEnergy.
// It ignores the Energy field of each event so it can be checked against it.
func ReconstructEnergy(events []Event, rates Rates) float64 {
	s := Summarize(events)
	return float64(s.ActiveTicks)*rates.Active +
		float64(s.IdleTicks)*rates.Idle +
		float64(s.SleepTicks)*rates.Sleep +
		float64(s.WakeCount)*rates.WakeupEnergy
}
