package sync

// State is a phase of a sync run.
type State string

const (
	StateIdle       State = "idle"
	StateListing    State = "listing"
	StatePlanning   State = "planning"
	StateExecuting  State = "executing"
	StatePersisting State = "persisting"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}

// Terminal reports whether no further transition can follow s.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// next lists the legal successors of each state. Failed is reachable from
// Listing, Executing and Persisting. A dry run simulates Executing and
// skips Persisting.
var next = map[State][]State{
	StateIdle:       {StateListing, StateFailed},
	StateListing:    {StatePlanning, StateFailed},
	StatePlanning:   {StateExecuting},
	StateExecuting:  {StatePersisting, StateDone, StateFailed},
	StatePersisting: {StateDone, StateFailed},
}

// CanTransition reports whether to may follow from.
func CanTransition(from, to State) bool {
	for _, s := range next[from] {
		if s == to {
			return true
		}
	}
	return false
}
