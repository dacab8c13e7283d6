package snapshot

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contract-ca/internal/sims/validation"
)

func sampleRecord(gen uint64) Record {
	return Record{
		Generation: gen,
		Timestamp:  time.Date(2024, 6, 1, 0, 0, int(gen), 0, time.UTC),
		Stats:      validation.GenerationStats{Births: 1, Deaths: 2, Survivors: 3, TotalAlive: 4},
		Grid:       [][][]int{{{0, 2}, {3, 4}}},
		Patterns: []validation.PatternInstance{
			{TemplateID: "block", Kind: validation.KindStillLife, X: 1, Y: 1},
		},
		AuditHash: "abc123",
	}
}

func backends(t *testing.T) map[string]func(t *testing.T) Store {
	return map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store { return NewMemory() },
		"badger": func(t *testing.T) Store {
			s, err := OpenBadger(InMemoryBadgerConfig())
			require.NoError(t, err)
			return s
		},
		"sqlite": func(t *testing.T) Store {
			s, err := OpenSQLite(filepath.Join(t.TempDir(), "snapshots.db"))
			require.NoError(t, err)
			return s
		},
	}
}

func TestStoreRoundTrip(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open(t)
			defer s.Close()

			_, err := s.Latest(ctx)
			assert.ErrorIs(t, err, ErrSnapshotNotFound)

			for _, gen := range []uint64{3, 1, 260} {
				require.NoError(t, s.Save(ctx, gen, sampleRecord(gen)))
			}

			got, err := s.Load(ctx, 3)
			require.NoError(t, err)
			want := sampleRecord(3)
			assert.Equal(t, want.Grid, got.Grid)
			assert.Equal(t, want.Stats, got.Stats)
			assert.Equal(t, want.Patterns, got.Patterns)
			assert.Equal(t, want.AuditHash, got.AuditHash)
			assert.True(t, want.Timestamp.Equal(got.Timestamp))

			latest, err := s.Latest(ctx)
			require.NoError(t, err)
			assert.Equal(t, uint64(260), latest.Generation)

			_, err = s.Load(ctx, 2)
			assert.ErrorIs(t, err, ErrSnapshotNotFound)
		})
	}
}

func TestStoreOverwrite(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open(t)
			defer s.Close()

			rec := sampleRecord(5)
			require.NoError(t, s.Save(ctx, 5, rec))
			rec.AuditHash = "def456"
			require.NoError(t, s.Save(ctx, 5, rec))

			got, err := s.Load(ctx, 5)
			require.NoError(t, err)
			assert.Equal(t, "def456", got.AuditHash)
		})
	}
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "snap.db")
	s, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, 9, sampleRecord(9)))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(9), got.Generation)
}

func TestBadgerPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultBadgerConfig()
	cfg.Path = filepath.Join(t.TempDir(), "badger")
	s, err := OpenBadger(cfg)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, 2, sampleRecord(2)))
	require.NoError(t, s.Save(ctx, 11, sampleRecord(11)))
	require.NoError(t, s.Close())

	s, err = OpenBadger(cfg)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(11), got.Generation)
}

func TestDecodeCorrupt(t *testing.T) {
	_, err := decode([]byte("{not json"))
	assert.ErrorIs(t, err, validation.ErrSnapshotCorrupt)
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open("etcd", "")
	assert.Error(t, err)

	s, err := Open("memory", "")
	require.NoError(t, err)
	assert.NoError(t, s.Close())
}

func TestMemoryClosed(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Close())
	assert.ErrorIs(t, m.Save(context.Background(), 1, sampleRecord(1)), ErrClosed)
}

type failingStore struct {
	Store
	mu    sync.Mutex
	saved []uint64
}

func (f *failingStore) Save(_ context.Context, gen uint64, _ Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, gen)
	if gen%2 == 0 {
		return errors.New("disk full")
	}
	return nil
}

func TestWriterDrainsAndReportsFailures(t *testing.T) {
	store := &failingStore{Store: NewMemory()}
	var mu sync.Mutex
	failures := 0
	w := NewWriter(context.Background(), store, WithCapacity(16), WithResultHook(func(err error) {
		if err != nil {
			mu.Lock()
			failures++
			mu.Unlock()
		}
	}))
	for gen := uint64(1); gen <= 4; gen++ {
		assert.False(t, w.Enqueue(sampleRecord(gen)))
	}
	w.Close()

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Equal(t, []uint64{1, 2, 3, 4}, store.saved)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, failures)
}
