package snapshot

import (
	"context"
	"fmt"
	"sync"
)

// Memory keeps encoded records in a map. Records are stored encoded so
// callers can never alias a saved grid.
type Memory struct {
	mu      sync.RWMutex
	records map[uint64][]byte
	latest  uint64
	closed  bool
}

// NewMemory returns an empty in-process store.
func NewMemory() *Memory {
	return &Memory{records: make(map[uint64][]byte)}
}

func (m *Memory) Save(_ context.Context, generation uint64, rec Record) error {
	rec.Generation = generation
	data, err := encode(rec)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.records[generation] = data
	if generation >= m.latest {
		m.latest = generation
	}
	return nil
}

func (m *Memory) Load(_ context.Context, generation uint64) (Record, error) {
	m.mu.RLock()
	data, ok := m.records[generation]
	closed := m.closed
	m.mu.RUnlock()
	if closed {
		return Record{}, ErrClosed
	}
	if !ok {
		return Record{}, fmt.Errorf("%w: generation %d", ErrSnapshotNotFound, generation)
	}
	return decode(data)
}

func (m *Memory) Latest(ctx context.Context) (Record, error) {
	m.mu.RLock()
	empty := len(m.records) == 0
	latest := m.latest
	m.mu.RUnlock()
	if empty {
		return Record{}, ErrSnapshotNotFound
	}
	return m.Load(ctx, latest)
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
