package validation

import "time"

const historyLen = 10

// History holds the last ten states of a cell, oldest first. It is a value
// type so copying a Cell never aliases another generation's history.
type History struct {
	states [historyLen]State
	head   uint8
	n      uint8
}

// Push returns a copy of h with s appended, evicting the oldest state when full.
func (h History) Push(s State) History {
	if h.n < historyLen {
		h.states[(int(h.head)+int(h.n))%historyLen] = s
		h.n++
		return h
	}
	h.states[h.head] = s
	h.head = (h.head + 1) % historyLen
	return h
}

// States returns the retained states, oldest first.
func (h History) States() []State {
	out := make([]State, h.n)
	for i := range out {
		out[i] = h.states[(int(h.head)+i)%historyLen]
	}
	return out
}

// Len returns the number of retained states.
func (h History) Len() int { return int(h.n) }

// Meta is the per-cell metadata slot. Exactly one concrete type is stored
// depending on how the cell reached its current state.
type Meta interface {
	MetaKind() string
}

// BirthMeta records the conditions of a DEAD→SPAWNING birth.
type BirthMeta struct {
	Generation     uint64  `json:"generation"`
	Parents        int     `json:"parents"`
	InheritedScore float64 `json:"inheritedScore"`
}

// MetaKind implements Meta.
func (BirthMeta) MetaKind() string { return "birth" }

// StableMeta records the still-life template that stabilised a cell.
type StableMeta struct {
	Pattern string `json:"pattern"`
	Since   uint64 `json:"since"`
}

// MetaKind implements Meta.
func (StableMeta) MetaKind() string { return "stable" }

// DyingMeta records when a cell entered DYING. OnsetAge is the cell age
// before the step in which it started dying.
type DyingMeta struct {
	OnsetAge int    `json:"onsetAge"`
	Since    uint64 `json:"since"`
	Cause    string `json:"cause"`
}

// MetaKind implements Meta.
func (DyingMeta) MetaKind() string { return "dying" }

// ResurrectMeta records a return to ALIVE from DYING or STABLE.
type ResurrectMeta struct {
	Generation uint64 `json:"generation"`
	From       State  `json:"from"`
}

// MetaKind implements Meta.
func (ResurrectMeta) MetaKind() string { return "resurrect" }

// Cell is one simulated service/contract instance.
type Cell struct {
	State           State
	Age             int
	ValidationScore float64
	Meta            Meta
	History         History
	LastStateChange time.Time
}

// clampScore keeps scores inside [0, 1].
func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
