package sim

import "fmt"

// InvalidInputError reports a malformed or missing field in a process
// descriptor, found while loading and before the engine runs.
type InvalidInputError struct {
	Index  int    // 0-based position in the input sequence
	Field  string // offending field name
	Value  string // raw value, empty when missing
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input at index %d: field %q (value %q): %s", e.Index, e.Field, e.Value, e.Reason)
}

// InvalidProcessError reports a process whose arrival or burst the engine
// refuses to run (negative arrival, burst <= 0).
type InvalidProcessError struct {
	PID   string
	Field string
	Value int64
}

func (e *InvalidProcessError) Error() string {
	return fmt.Sprintf("invalid process %s: %s=%d", e.PID, e.Field, e.Value)
}

// InvalidConfigurationError reports an engine or power-model parameter out of range.
type InvalidConfigurationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InvalidConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration %s=%s: %s", e.Field, e.Value, e.Reason)
}

// InvariantViolation signals an engine bug. Runs that hit one are aborted.
type InvariantViolation struct {
	Time   int64
	PID    string // empty when not tied to a process
	Detail string
}

func (e *InvariantViolation) Error() string {
	if e.PID == "" {
		return fmt.Sprintf("invariant violated at tick %d: %s", e.Time, e.Detail)
	}
	return fmt.Sprintf("invariant violated at tick %d (pid %s): %s", e.Time, e.PID, e.Detail)
}
