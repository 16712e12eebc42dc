package visibility

import "fmt"

// State is the lifecycle position of a [Controller].
//
//	         intent=true               enter done
//	Hidden ─────────────► Entering ─────────────► Visible
//	  ▲                     │  ▲                     │
//	  │                     │  │ intent=true         │ intent=false
//	  │     exit done       ▼  │                     │
//	  └───────────────── Exiting ◄───────────────────┘
//	                        ▲ intent=false (from Entering)
type State int

const (
	// Hidden means nothing is shown and nothing is animating.
	Hidden State = iota
	// Entering means the enter animation is running.
	Entering
	// Visible means fully shown; the loop (if any) keeps running.
	Visible
	// Exiting means the exit animation is running.
	Exiting
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case Hidden:
		return "hidden"
	case Entering:
		return "entering"
	case Visible:
		return "visible"
	case Exiting:
		return "exiting"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Snapshot is a read-only copy of what the presentation layer renders.
type Snapshot struct {
	State State
	// EnterProgress is 0 when fully hidden and 1 when fully shown.
	EnterProgress float64
	// LoopProgress is the phase of the loop animation in [0, 1).
	LoopProgress float64
}

// Shown reports whether anything should be drawn at all.
func (s Snapshot) Shown() bool {
	return s.State != Hidden
}
