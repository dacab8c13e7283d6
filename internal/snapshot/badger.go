package snapshot

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
)

var keyPrefix = []byte("snapshot/")

// BadgerConfig configures the embedded badger store.
type BadgerConfig struct {
	// Path is the database directory. Ignored when InMemory is true.
	Path       string
	InMemory   bool
	SyncWrites bool
	// Logger receives badger's internal logging. Nil disables it.
	Logger *slog.Logger
}

// DefaultBadgerConfig returns durable on-disk settings.
func DefaultBadgerConfig() BadgerConfig {
	return BadgerConfig{SyncWrites: true}
}

// InMemoryBadgerConfig returns settings for tests and throwaway runs.
func InMemoryBadgerConfig() BadgerConfig {
	return BadgerConfig{InMemory: true}
}

// badgerLogger adapts slog.Logger to badger.Logger.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// Badger stores one key per generation. Keys are big-endian so a reverse
// prefix scan finds the latest generation first.
type Badger struct {
	db *badger.DB
}

// OpenBadger opens or creates the database described by cfg.
func OpenBadger(cfg BadgerConfig) (*Badger, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("badger path is required for persistent snapshots")
	}
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create snapshot directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger snapshots: %w", err)
	}
	return &Badger{db: db}, nil
}

func badgerKey(generation uint64) []byte {
	key := make([]byte, len(keyPrefix)+8)
	copy(key, keyPrefix)
	binary.BigEndian.PutUint64(key[len(keyPrefix):], generation)
	return key
}

func (b *Badger) Save(ctx context.Context, generation uint64, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rec.Generation = generation
	data, err := encode(rec)
	if err != nil {
		return err
	}
	err = b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(badgerKey(generation), data)
	})
	if err != nil {
		return fmt.Errorf("save snapshot %d: %w", generation, err)
	}
	return nil
}

func (b *Badger) Load(ctx context.Context, generation uint64) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	var data []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(generation))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Record{}, fmt.Errorf("%w: generation %d", ErrSnapshotNotFound, generation)
	}
	if err != nil {
		return Record{}, fmt.Errorf("load snapshot %d: %w", generation, err)
	}
	return decode(data)
}

func (b *Badger) Latest(ctx context.Context) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	var data []byte
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = keyPrefix
		it := txn.NewIterator(opts)
		defer it.Close()
		it.Seek(badgerKey(^uint64(0)))
		if !it.ValidForPrefix(keyPrefix) {
			return ErrSnapshotNotFound
		}
		var err error
		data, err = it.Item().ValueCopy(nil)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrSnapshotNotFound) {
			return Record{}, err
		}
		return Record{}, fmt.Errorf("latest snapshot: %w", err)
	}
	return decode(data)
}

func (b *Badger) Close() error {
	return b.db.Close()
}
