package sim

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contract-ca/internal/audit"
	"contract-ca/internal/metrics"
	"contract-ca/internal/sims/validation"
	"contract-ca/internal/snapshot"
)

func tickingClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Millisecond)
		return t
	}
}

func smallConfig(w, h, d int) validation.Config {
	cfg := validation.DefaultConfig()
	cfg.Width, cfg.Height, cfg.Depth = w, h, d
	return cfg
}

type recorder struct {
	mu      sync.Mutex
	gens    []uint64
	grids   int
	entries []audit.EventType
}

func (r *recorder) OnGenerationUpdate(rec validation.GenerationRecord, grid [][][]int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gens = append(r.gens, rec.Generation)
	if grid != nil {
		r.grids++
	}
}

func (r *recorder) OnAuditEvent(e audit.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e.EventType)
}

func TestRunIsolationScenario(t *testing.T) {
	store := snapshot.NewMemory()
	port := &recorder{}
	m := metrics.New(prometheus.NewRegistry())
	s, err := New(smallConfig(5, 5, 1), Options{
		Store:   store,
		Port:    port,
		Metrics: m,
		Clock:   tickingClock(),
	})
	require.NoError(t, err)

	require.NoError(t, s.Engine().SetCell(2, 2, 0, validation.Cell{State: validation.StateAlive, ValidationScore: 0.9}))
	n, err := s.Run(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	s.Close()

	c, err := s.Engine().Grid().Get(2, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, validation.StateDead, c.State)

	history := s.History()
	require.Len(t, history, 5)
	assert.Equal(t, uint64(1), history[0].Generation)
	assert.Equal(t, 1, history[0].Stats.Deaths)

	changes := s.Audit().StateChanges(0)
	require.Len(t, changes, 3)
	assert.Equal(t, "ALIVE", changes[0].From)
	assert.Equal(t, "DYING", changes[0].To)
	assert.Equal(t, "GHOST", changes[1].To)
	assert.Equal(t, "DEAD", changes[2].To)
	assert.NoError(t, s.Audit().Verify())

	latest, err := store.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(5), latest.Generation)
	assert.Equal(t, s.Audit().LastHash(), latest.AuditHash)

	port.mu.Lock()
	assert.Equal(t, []uint64{1, 2, 3, 4, 5}, port.gens)
	assert.Equal(t, 5, port.grids)
	assert.Len(t, port.entries, 5)
	port.mu.Unlock()

	assert.Equal(t, 5.0, testutil.ToFloat64(m.Generations))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Deaths))
}

func TestRunStopsAtMaxGenerations(t *testing.T) {
	cfg := smallConfig(6, 6, 1)
	cfg.MaxGenerations = 3
	s, err := New(cfg, Options{})
	require.NoError(t, err)

	n, err := s.Run(context.Background(), 10)
	assert.ErrorIs(t, err, ErrMaxGenerations)
	assert.Equal(t, 3, n)
	assert.Equal(t, uint64(3), s.Status().Generation)

	_, err = s.StepGeneration(context.Background())
	assert.ErrorIs(t, err, ErrMaxGenerations)
}

func TestRunHonoursCancellation(t *testing.T) {
	s, err := New(smallConfig(6, 6, 1), Options{})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	n, err := s.Run(ctx, 0)
	assert.Equal(t, 0, n)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRunPacedByTPS(t *testing.T) {
	s, err := New(smallConfig(4, 4, 1), Options{TPS: 50})
	require.NoError(t, err)
	start := time.Now()
	n, err := s.Run(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestHistoryIsBounded(t *testing.T) {
	s, err := New(smallConfig(4, 4, 1), Options{HistoryLimit: 2})
	require.NoError(t, err)
	_, err = s.Run(context.Background(), 5)
	require.NoError(t, err)
	history := s.History()
	require.Len(t, history, 2)
	assert.Equal(t, uint64(4), history[0].Generation)
	assert.Equal(t, uint64(5), history[1].Generation)
}

func TestSeedPatternAndStatus(t *testing.T) {
	port := &recorder{}
	s, err := New(smallConfig(10, 10, 1), Options{Port: port})
	require.NoError(t, err)

	require.NoError(t, s.SeedPattern("block", 4, 4, 0))
	assert.ErrorIs(t, s.SeedPattern("unknown", 0, 0, 0), validation.ErrUnknownPattern)
	assert.ErrorIs(t, s.SeedPattern("block", 9, 9, 0), validation.ErrIndexOutOfBounds)

	_, err = s.StepGeneration(context.Background())
	require.NoError(t, err)

	st := s.Status()
	assert.Equal(t, uint64(1), st.Generation)
	assert.Equal(t, 4, st.Alive)
	assert.Equal(t, 4, st.Census["VALIDATED"])
	require.NotNil(t, st.Last)
	assert.Equal(t, uint64(1), st.Last.Generation)
	assert.Equal(t, 2, st.Audit.Entries)
	assert.False(t, st.Running)

	report := s.AnalyzePatterns()
	require.Len(t, report.Static, 1)
	assert.Equal(t, "block", report.Static[0].TemplateID)

	port.mu.Lock()
	defer port.mu.Unlock()
	assert.Equal(t, []audit.EventType{audit.EventSeed, audit.EventGeneration}, port.entries)
}

func TestRestoreAndResume(t *testing.T) {
	ctx := context.Background()
	store := snapshot.NewMemory()
	src, err := New(smallConfig(10, 10, 1), Options{Store: store})
	require.NoError(t, err)
	require.NoError(t, src.SeedPattern("block", 1, 1, 0))
	_, err = src.Run(ctx, 3)
	require.NoError(t, err)
	src.Close()

	dst, err := New(smallConfig(10, 10, 1), Options{})
	require.NoError(t, err)
	ok, err := dst.Resume(ctx, store)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(3), dst.Status().Generation)
	assert.Equal(t, src.Engine().SerializeGrid(), dst.Engine().SerializeGrid())
	require.Len(t, dst.History(), 1)

	rec, err := dst.StepGeneration(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), rec.Generation)

	empty, err := New(smallConfig(10, 10, 1), Options{})
	require.NoError(t, err)
	ok, err = empty.Resume(ctx, snapshot.NewMemory())
	require.NoError(t, err)
	assert.False(t, ok)

	err = empty.Restore(snapshot.Record{Generation: 1, Grid: [][][]int{{{9}}}})
	assert.ErrorIs(t, err, validation.ErrSnapshotCorrupt)
}

func TestResetClearsHistory(t *testing.T) {
	cfg := smallConfig(8, 8, 3)
	cfg.SoupDensity = 0.3
	s, err := New(cfg, Options{})
	require.NoError(t, err)
	s.Reset(0)
	_, err = s.Run(context.Background(), 2)
	require.NoError(t, err)
	s.Reset(99)
	assert.Empty(t, s.History())
	assert.Equal(t, uint64(0), s.Status().Generation)
	assert.Equal(t, int64(99), s.Engine().Config().Seed)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := validation.DefaultConfig()
	cfg.Rules.Birth.Probability = -1
	_, err := New(cfg, Options{})
	assert.ErrorIs(t, err, validation.ErrInvalidConfig)
}
