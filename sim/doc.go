// Package sim provides the discrete-event engine for energy-aware CPU scheduling.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - process.go: Process lifecycle (pending → ready → finished) and validation
//   - power.go: the ACTIVE/IDLE/SLEEP power model and wake costs
//   - simulator.go: the tick loop, arrival admission and power-state transitions
//
// # Architecture
//
// The sim package owns the engine and its containers; collaborators live in
// sub-packages:
//   - sim/timeline/: per-decision event log and energy reconstruction
//   - sim/workload/: process descriptor loading and synthetic generation
//   - sim/report/: CSV and JSON writers for metrics, finished processes and timelines
//   - sim/record/: SQLite recording of runs
//   - sim/server/: HTTP JSON API over run results
//
// # Key Interfaces
//
// The extension points are small interfaces:
//   - SelectionPolicy: pick the ready process to run for the next tick
//   - timeline.Sink: receive each engine decision as it happens
//
// A Simulator serves exactly one run. Parameter sweeps build one per run.
package sim
