// Implements the PendingQueue, which holds processes that have not arrived yet,
// and the ReadySet, which holds arrived but unfinished processes.

package sim

import (
	"fmt"
	"sort"
	"strings"
)

// PendingQueue holds processes ordered by arrival, ties broken by input order.
// Processes leave from the front as the clock passes their arrival tick.
type PendingQueue struct {
	queue []*Process
	head  int
}

// NewPendingQueue sorts procs by arrival (stable on input order) into a new queue.
// The caller's slice is not modified.
func NewPendingQueue(procs []*Process) *PendingQueue {
	q := make([]*Process, len(procs))
	copy(q, procs)
	sort.SliceStable(q, func(i, j int) bool {
		if q[i].Arrival != q[j].Arrival {
			return q[i].Arrival < q[j].Arrival
		}
		return q[i].order < q[j].order
	})
	return &PendingQueue{queue: q}
}

// Len returns the number of processes still pending.
func (pq *PendingQueue) Len() int {
	return len(pq.queue) - pq.head
}

// NextArrival returns the arrival tick of the front process.
// ok is false when the queue is empty.
func (pq *PendingQueue) NextArrival() (arrival int64, ok bool) {
	if pq.Len() == 0 {
		return 0, false
	}
	return pq.queue[pq.head].Arrival, true
}

// PopArrived removes and returns, in arrival order, every process whose
// arrival is <= now.
func (pq *PendingQueue) PopArrived(now int64) []*Process {
	start := pq.head
	for pq.head < len(pq.queue) && pq.queue[pq.head].Arrival <= now {
		pq.queue[pq.head].State = StateReady
		pq.head++
	}
	if start == pq.head {
		return nil
	}
	return pq.queue[start:pq.head]
}

// ReadySet is an insertion-ordered set of processes with O(1) removal by PID.
// Removed slots are tombstoned and compacted lazily, so iteration order always
// equals admission order and tie-breaking stays deterministic.
type ReadySet struct {
	items []*Process
	index map[string]int // pid → slot in items
	live  int
}

// NewReadySet creates an empty ReadySet.
func NewReadySet() *ReadySet {
	return &ReadySet{
		items: make([]*Process, 0),
		index: make(map[string]int),
	}
}

// Add appends p. Adding a PID already present panics.
func (rs *ReadySet) Add(p *Process) {
	if p == nil {
		panic("Add: process must not be nil")
	}
	if _, dup := rs.index[p.PID]; dup {
		panic(fmt.Sprintf("Add: pid %s already in ready set", p.PID))
	}
	rs.index[p.PID] = len(rs.items)
	rs.items = append(rs.items, p)
	rs.live++
}

// Remove deletes the process with the given PID and reports whether it was present.
func (rs *ReadySet) Remove(pid string) bool {
	slot, ok := rs.index[pid]
	if !ok {
		return false
	}
	rs.items[slot] = nil
	delete(rs.index, pid)
	rs.live--
	if tombstones := len(rs.items) - rs.live; tombstones > 32 && tombstones > rs.live {
		rs.compact()
	}
	return true
}

func (rs *ReadySet) compact() {
	kept := rs.items[:0]
	for _, p := range rs.items {
		if p != nil {
			rs.index[p.PID] = len(kept)
			kept = append(kept, p)
		}
	}
	for i := len(kept); i < len(rs.items); i++ {
		rs.items[i] = nil
	}
	rs.items = kept
}

// Len returns the number of processes in the set.
func (rs *ReadySet) Len() int {
	return rs.live
}

// Contains reports whether pid is in the set.
func (rs *ReadySet) Contains(pid string) bool {
	_, ok := rs.index[pid]
	return ok
}

// Each calls fn for every process in admission order.
func (rs *ReadySet) Each(fn func(p *Process)) {
	for _, p := range rs.items {
		if p != nil {
			fn(p)
		}
	}
}

// Items returns the processes in admission order as a new slice.
func (rs *ReadySet) Items() []*Process {
	out := make([]*Process, 0, rs.live)
	rs.Each(func(p *Process) { out = append(out, p) })
	return out
}

func (rs *ReadySet) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	first := true
	rs.Each(func(p *Process) {
		if !first {
			sb.WriteString(" ")
		}
		first = false
		sb.WriteString(p.PID)
	})
	sb.WriteString("]")
	return sb.String()
}
