package timeline

// Level controls whether events are kept.
type Level string

const (
	// LevelNone disables recording (zero overhead).
	LevelNone Level = "none"
	// LevelEvents keeps one event per engine decision.
	LevelEvents Level = "events"
)

// validLevels maps accepted level strings.
var validLevels = map[Level]bool{
	LevelNone:   true,
	LevelEvents: true,
	"":          true, // empty defaults to events
}

// IsValidLevel returns true if the given level string is a recognized level.
func IsValidLevel(level string) bool {
	return validLevels[Level(level)]
}

// Sink receives events from the engine as they happen.
type Sink interface {
	Record(event Event)
}

// Timeline is an append-only, in-memory event log.
type Timeline struct {
	Level  Level
	events []Event
}

// NewTimeline creates a Timeline ready for recording.
func NewTimeline(level Level) *Timeline {
	if level == "" {
		level = LevelEvents
	}
	return &Timeline{
		Level:  level,
		events: make([]Event, 0),
	}
}

// Record appends an event. It is a no-op at LevelNone.
func (tl *Timeline) Record(event Event) {
	if tl.Level == LevelNone {
		return
	}
	tl.events = append(tl.events, event)
}

// Events returns a copy of the recorded events in order.
func (tl *Timeline) Events() []Event {
	out := make([]Event, len(tl.events))
	copy(out, tl.events)
	return out
}

// Len returns the number of recorded events.
func (tl *Timeline) Len() int {
	return len(tl.events)
}
