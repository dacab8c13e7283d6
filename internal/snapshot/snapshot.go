// Package snapshot persists completed generations so a run can be inspected
// or resumed later.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"contract-ca/internal/sims/validation"
)

var (
	// ErrSnapshotNotFound is returned when no record exists for a generation.
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// ErrClosed is returned by stores used after Close.
	ErrClosed = errors.New("snapshot store closed")
)

// Record is the persisted shape of one generation. Grid holds state codes
// indexed [z][y][x].
type Record struct {
	Generation uint64                       `json:"generation"`
	Timestamp  time.Time                    `json:"timestamp"`
	Stats      validation.GenerationStats   `json:"stats"`
	Grid       [][][]int                    `json:"grid"`
	Patterns   []validation.PatternInstance `json:"patterns"`
	AuditHash  string                       `json:"auditHash"`
}

// Store is a persistence sink for generation records.
type Store interface {
	Save(ctx context.Context, generation uint64, rec Record) error
	Load(ctx context.Context, generation uint64) (Record, error)
	// Latest returns the record with the highest generation.
	Latest(ctx context.Context) (Record, error)
	Close() error
}

func encode(rec Record) ([]byte, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot %d: %w", rec.Generation, err)
	}
	return data, nil
}

func decode(data []byte) (Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("%w: %v", validation.ErrSnapshotCorrupt, err)
	}
	return rec, nil
}

// Open selects a backend by name: "memory", "badger" or "sqlite". Path is
// the badger directory or the sqlite file and is ignored for memory.
func Open(kind, path string, opts ...Option) (Store, error) {
	o := applyOptions(opts)
	switch kind {
	case "", "memory":
		return NewMemory(), nil
	case "badger":
		cfg := DefaultBadgerConfig()
		cfg.Path = path
		cfg.Logger = o.logger
		if path == "" {
			cfg = InMemoryBadgerConfig()
			cfg.Logger = o.logger
		}
		return OpenBadger(cfg)
	case "sqlite":
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("unknown snapshot backend %q", kind)
	}
}
