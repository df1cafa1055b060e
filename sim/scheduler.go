package sim

import (
	"fmt"
)

// Selection policy names.
const (
	PolicyEnergyAware = "energy-aware"
	PolicyFCFS        = "fcfs"
	PolicySRT         = "srt"
)

// ValidPolicies is the set of recognized selection policy names.
// Empty string defaults to energy-aware (for CLI flag default compatibility).
var ValidPolicies = map[string]bool{"": true, PolicyEnergyAware: true, PolicyFCFS: true, PolicySRT: true}

// SelectionPolicy picks the process to run for the next tick.
// Implementations scan the ready set in admission order and keep the first
// process with the minimal key, so ties always go to the earliest admitted.
type SelectionPolicy interface {
	Select(ready *ReadySet) *Process
	Name() string
}

// selectMin returns the first process minimizing key, or nil on an empty set.
func selectMin(ready *ReadySet, key func(p *Process) float64) *Process {
	var chosen *Process
	var best float64
	ready.Each(func(p *Process) {
		k := key(p)
		if chosen == nil || k < best {
			chosen, best = p, k
		}
	})
	return chosen
}

// EnergyAwarePolicy minimizes
//
//	Weights.Energy × (remaining × ActivePower) + Weights.Work × remaining
//
// which favors processes close to completion while pricing their projected energy.
type EnergyAwarePolicy struct {
	Weights     PolicyWeights
	ActivePower float64
}

// Score returns the selection key of p.
func (e *EnergyAwarePolicy) Score(p *Process) float64 {
	remaining := float64(p.Remaining)
	return e.Weights.Energy*(remaining*e.ActivePower) + e.Weights.Work*remaining
}

func (e *EnergyAwarePolicy) Select(ready *ReadySet) *Process {
	return selectMin(ready, e.Score)
}

func (e *EnergyAwarePolicy) Name() string { return PolicyEnergyAware }

// FCFSPolicy runs the earliest arrival first.
type FCFSPolicy struct{}

func (f *FCFSPolicy) Select(ready *ReadySet) *Process {
	return selectMin(ready, func(p *Process) float64 { return float64(p.Arrival) })
}

func (f *FCFSPolicy) Name() string { return PolicyFCFS }

// SRTPolicy runs the process with the least remaining work first.
// Warning: like any shortest-first rule it can starve long processes under sustained load.
type SRTPolicy struct{}

func (s *SRTPolicy) Select(ready *ReadySet) *Process {
	return selectMin(ready, func(p *Process) float64 { return float64(p.Remaining) })
}

func (s *SRTPolicy) Name() string { return PolicySRT }

// NewSelectionPolicy creates a SelectionPolicy by name.
// Panics on unrecognized names; EngineConfig.Validate rejects them first.
func NewSelectionPolicy(name string, weights PolicyWeights, power PowerModel) SelectionPolicy {
	if !ValidPolicies[name] {
		panic(fmt.Sprintf("unknown selection policy %q", name))
	}
	switch name {
	case "", PolicyEnergyAware:
		return &EnergyAwarePolicy{Weights: weights, ActivePower: power.Active}
	case PolicyFCFS:
		return &FCFSPolicy{}
	case PolicySRT:
		return &SRTPolicy{}
	default:
		panic(fmt.Sprintf("unhandled selection policy %q", name))
	}
}
