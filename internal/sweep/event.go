// internal/sweep/event.go

package sweep

import (
	"time"
)

// EventKind represents the type of sweep event
type EventKind int

const (
	EventStart EventKind = iota
	EventPointDone
	EventFinish
)

// Event is emitted when the sweep starts, after every utilization point, and
// once at the end.
type Event struct {
	Time  time.Time
	Kind  EventKind
	Point Point // set for EventPointDone
}

func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "Start"
	case EventPointDone:
		return "PointDone"
	case EventFinish:
		return "Finish"
	default:
		return "Unknown"
	}
}
