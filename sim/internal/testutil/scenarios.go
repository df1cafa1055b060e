// Package testutil provides shared test infrastructure for the simulator.
// It holds the scenario fixture types and assertion helpers used across the
// sim/ test packages.
package testutil

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// ScenarioSet represents the structure of testdata/scenarios.json.
type ScenarioSet struct {
	Scenarios []Scenario `json:"scenarios"`
}

// Scenario is a hand-computed run: input, engine parameters and expectations.
type Scenario struct {
	Name           string           `json:"name"`
	SleepThreshold int64            `json:"sleep_threshold"`
	SleepMode      string           `json:"sleep_mode"`
	Processes      []ScenarioInput  `json:"processes"`
	FinishOrder    []string         `json:"finish_order"`
	FinishTimes    map[string]int64 `json:"finish_times"`
	Metrics        ScenarioMetrics  `json:"metrics"`
}

// ScenarioInput is one process descriptor of a scenario.
type ScenarioInput struct {
	Arrival  int64 `json:"arrival"`
	Burst    int64 `json:"burst"`
	Priority int   `json:"priority"`
}

// ScenarioMetrics represents the expected metrics of a scenario.
type ScenarioMetrics struct {
	AvgTurnaround float64 `json:"avg_turnaround"`
	AvgWaiting    float64 `json:"avg_waiting"`
	TotalEnergy   float64 `json:"total_energy"`
	ProcessCount  int     `json:"process_count"`
	Makespan      int64   `json:"makespan"`
	ActiveTicks   int64   `json:"active_ticks"`
	IdleTicks     int64   `json:"idle_ticks"`
	SleepTicks    int64   `json:"sleep_ticks"`
	WakeTicks     int64   `json:"wake_ticks"`
	WakeCount     int     `json:"wake_count"`
}

// LoadScenarios loads the scenario fixtures from the testdata directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func LoadScenarios(t *testing.T) *ScenarioSet {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "scenarios.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read scenarios: %v", err)
	}

	var set ScenarioSet
	if err := json.Unmarshal(data, &set); err != nil {
		t.Fatalf("Failed to parse scenarios: %v", err)
	}

	return &set
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
