// Package audit keeps the append-only, content-hashed trail of generation
// summaries and cell transitions.
package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"contract-ca/internal/core"
)

// EventType identifies the kind of audited event.
type EventType string

const (
	EventGeneration EventType = "generation"
	EventSeed       EventType = "seed"
	EventRestore    EventType = "restore"
	EventReset      EventType = "reset"
)

// DefaultRetention bounds both the entry and the state change trails.
const DefaultRetention = 10000

var (
	// ErrChainBroken is returned by Verify when a retained entry no longer
	// matches its hash or its predecessor.
	ErrChainBroken = errors.New("audit chain broken")
)

// Entry is one audited event. Hash fingerprints the event type, payload and
// timestamp; PrevHash links the entry to the one appended before it.
type Entry struct {
	ID         string          `json:"id"`
	Seq        uint64          `json:"seq"`
	Timestamp  time.Time       `json:"timestamp"`
	Generation uint64          `json:"generation"`
	EventType  EventType       `json:"eventType"`
	Payload    json.RawMessage `json:"payload"`
	PrevHash   string          `json:"prevHash,omitempty"`
	Hash       string          `json:"hash"`
}

// StateChange is the audit record of one cell transition. Neighbors is the
// alive neighbor count that witnessed the decision.
type StateChange struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Generation uint64    `json:"generation"`
	X          int       `json:"x"`
	Y          int       `json:"y"`
	Z          int       `json:"z"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	Reason     string    `json:"reason"`
	Neighbors  int       `json:"neighbors"`
}

// Stats summarizes the log.
type Stats struct {
	Entries        int    `json:"entries"`
	StateChanges   int    `json:"stateChanges"`
	EvictedEntries int64  `json:"evictedEntries"`
	EvictedChanges int64  `json:"evictedChanges"`
	LastHash       string `json:"lastHash,omitempty"`
}

// Log is the bounded audit trail. It is safe for concurrent use.
type Log struct {
	mu      sync.Mutex
	entries *core.Ring[Entry]
	changes *core.Ring[StateChange]
	seq     uint64
	last    string
	now     func() time.Time
	newID   func() string
}

// Option customizes a Log.
type Option func(*Log)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Log) {
		if now != nil {
			l.now = now
		}
	}
}

// NewLog returns a log retaining at most retention entries and retention
// state changes. A non-positive retention uses DefaultRetention.
func NewLog(retention int, opts ...Option) *Log {
	if retention <= 0 {
		retention = DefaultRetention
	}
	l := &Log{
		entries: core.NewRing[Entry](retention),
		changes: core.NewRing[StateChange](retention),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Hash computes hex(SHA256(eventType ‖ payload ‖ timestamp)). The timestamp
// is rendered as RFC 3339 with nanoseconds in UTC.
func Hash(eventType EventType, payload []byte, ts time.Time) string {
	h := sha256.New()
	h.Write([]byte(eventType))
	h.Write(payload)
	h.Write([]byte(ts.UTC().Format(time.RFC3339Nano)))
	return hex.EncodeToString(h.Sum(nil))
}

// Append records an event. The payload is stored as its JSON encoding.
func (l *Log) Append(eventType EventType, generation uint64, payload any) (Entry, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Entry{}, fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	ts := l.now()
	l.seq++
	e := Entry{
		ID:         l.newID(),
		Seq:        l.seq,
		Timestamp:  ts,
		Generation: generation,
		EventType:  eventType,
		Payload:    raw,
		PrevHash:   l.last,
		Hash:       Hash(eventType, raw, ts),
	}
	l.entries.Push(e)
	l.last = e.Hash
	return e, nil
}

// RecordChanges appends state changes sharing one timestamp.
func (l *Log) RecordChanges(changes []StateChange) {
	if len(changes) == 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	ts := l.now()
	for _, c := range changes {
		c.ID = l.newID()
		c.Timestamp = ts
		l.changes.Push(c)
	}
}

// Entries returns the retained entries, oldest first.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.entries.Items()
}

// StateChanges returns the retained state changes, oldest first. A positive
// generation filters to that generation.
func (l *Log) StateChanges(generation uint64) []StateChange {
	l.mu.Lock()
	items := l.changes.Items()
	l.mu.Unlock()
	if generation == 0 {
		return items
	}
	out := items[:0]
	for _, c := range items {
		if c.Generation == generation {
			out = append(out, c)
		}
	}
	return out
}

// LastHash returns the hash of the newest entry, or "" when empty.
func (l *Log) LastHash() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.last
}

// Stats reports retained and evicted counts.
func (l *Log) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Stats{
		Entries:        l.entries.Len(),
		StateChanges:   l.changes.Len(),
		EvictedEntries: l.entries.Dropped(),
		EvictedChanges: l.changes.Dropped(),
		LastHash:       l.last,
	}
}

// Verify recomputes every retained hash and checks each link to the
// preceding retained entry. The oldest retained entry's PrevHash cannot be
// checked once its predecessor has been evicted.
func (l *Log) Verify() error {
	entries := l.Entries()
	for i, e := range entries {
		if got := Hash(e.EventType, e.Payload, e.Timestamp); got != e.Hash {
			return fmt.Errorf("%w: entry %d hash mismatch", ErrChainBroken, e.Seq)
		}
		if i > 0 && e.PrevHash != entries[i-1].Hash {
			return fmt.Errorf("%w: entry %d does not link to entry %d", ErrChainBroken, e.Seq, entries[i-1].Seq)
		}
		if i == 0 && e.Seq == 1 && e.PrevHash != "" {
			return fmt.Errorf("%w: first entry has a predecessor hash", ErrChainBroken)
		}
	}
	return nil
}
