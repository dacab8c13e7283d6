package validation

// State enumerates the lifecycle of a cell. The numeric order matters: the
// alive and validated classifiers compare against it.
type State uint8

const (
	StateDead State = iota
	StateSpawning
	StateAlive
	StateValidated
	StateStable
	StateReproducing
	StateDying
	StateGhost

	stateCount
)

var stateNames = [stateCount]string{
	StateDead:        "DEAD",
	StateSpawning:    "SPAWNING",
	StateAlive:       "ALIVE",
	StateValidated:   "VALIDATED",
	StateStable:      "STABLE",
	StateReproducing: "REPRODUCING",
	StateDying:       "DYING",
	StateGhost:       "GHOST",
}

// String returns the upper-case state name.
func (s State) String() string {
	if s >= stateCount {
		return "UNKNOWN"
	}
	return stateNames[s]
}

// IsAlive reports whether the state counts as alive for neighbor purposes.
func (s State) IsAlive() bool { return s >= StateAlive }

// IsValidated reports whether the state counts as validated.
func (s State) IsValidated() bool { return s >= StateValidated }

// StateFromCode converts a serialized state code.
func StateFromCode(code int) (State, bool) {
	if code < 0 || code >= int(stateCount) {
		return StateDead, false
	}
	return State(code), true
}

// States lists every state in numeric order.
func States() []State {
	out := make([]State, stateCount)
	for i := range out {
		out[i] = State(i)
	}
	return out
}
