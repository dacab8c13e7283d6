// Package sim owns the running simulation: the engine, its audit trail,
// the bounded generation history and the snapshot and broadcast sinks.
package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"

	"contract-ca/internal/audit"
	"contract-ca/internal/core"
	"contract-ca/internal/metrics"
	"contract-ca/internal/sims/validation"
	"contract-ca/internal/snapshot"
)

var tracer = otel.Tracer("contract-ca/sim")

var (
	// ErrMaxGenerations is returned once the configured generation cap is hit.
	ErrMaxGenerations = errors.New("max generations reached")

	// ErrAlreadyRunning is returned when Run is called while another Run is
	// in progress.
	ErrAlreadyRunning = errors.New("simulation already running")
)

// Simulation is the single owner of all mutable run state.
type Simulation struct {
	mu sync.Mutex

	engine  *validation.Engine
	audit   *audit.Log
	opts    Options
	writer  *snapshot.Writer
	limiter *rate.Limiter
	logger  *slog.Logger

	histMu  sync.RWMutex
	history *core.Ring[validation.GenerationRecord]

	running atomic.Bool
	started time.Time
}

// New validates cfg and builds a simulation with an all-DEAD grid.
func New(cfg validation.Config, opts Options) (*Simulation, error) {
	opts.normalize()
	engine, err := validation.NewEngine(cfg, validation.WithClock(opts.Clock))
	if err != nil {
		return nil, err
	}
	s := &Simulation{
		engine:  engine,
		audit:   audit.NewLog(opts.AuditRetention, audit.WithClock(opts.Clock)),
		opts:    opts,
		logger:  opts.Logger.With("component", "sim"),
		history: core.NewRing[validation.GenerationRecord](opts.HistoryLimit),
		started: opts.Clock(),
	}
	if opts.TPS > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(opts.TPS), 1)
	}
	if opts.Store != nil {
		m := opts.Metrics
		s.writer = snapshot.NewWriter(context.Background(), opts.Store,
			snapshot.WithCapacity(opts.SnapshotQueue),
			snapshot.WithLogger(opts.Logger),
			snapshot.WithResultHook(func(err error) {
				if err != nil {
					m.SinkError(metrics.SinkSnapshot)
				}
			}),
		)
	}
	return s, nil
}

// Engine exposes the underlying engine for read-only consumers.
func (s *Simulation) Engine() *validation.Engine { return s.engine }

// Audit exposes the audit trail.
func (s *Simulation) Audit() *audit.Log { return s.audit }

// StepGeneration advances one generation, records it and feeds the sinks.
func (s *Simulation) StepGeneration(ctx context.Context) (validation.GenerationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step(ctx)
}

func (s *Simulation) step(ctx context.Context) (validation.GenerationRecord, error) {
	cfg := s.engine.Config()
	if cfg.MaxGenerations > 0 && s.engine.Generation() >= uint64(cfg.MaxGenerations) {
		return validation.GenerationRecord{}, fmt.Errorf("%w: %d", ErrMaxGenerations, cfg.MaxGenerations)
	}

	_, span := tracer.Start(ctx, "Simulation.StepGeneration")
	defer span.End()

	res, err := s.engine.StepGeneration()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "step failed")
		return validation.GenerationRecord{}, err
	}
	rec := res.Record
	span.SetAttributes(
		attribute.Int64("generation", int64(rec.Generation)),
		attribute.Int("births", rec.Stats.Births),
		attribute.Int("deaths", rec.Stats.Deaths),
		attribute.Int("alive", rec.Stats.TotalAlive),
		attribute.Int("transitions", len(res.Changes)),
	)

	s.audit.RecordChanges(auditChanges(res.Changes))
	entry, err := s.audit.Append(audit.EventGeneration, rec.Generation, generationPayload{
		Stats:    rec.Stats,
		Duration: rec.Duration.String(),
		Patterns: len(rec.Patterns),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "audit append failed")
		return rec, err
	}

	s.histMu.Lock()
	s.history.Push(rec)
	s.histMu.Unlock()

	s.opts.Metrics.ObserveStep(res)
	s.publish(res, entry)

	s.logger.Debug("generation complete",
		"generation", rec.Generation,
		"births", rec.Stats.Births,
		"deaths", rec.Stats.Deaths,
		"alive", rec.Stats.TotalAlive,
		"duration", rec.Duration,
	)
	return rec, nil
}

type generationPayload struct {
	Stats    validation.GenerationStats `json:"stats"`
	Duration string                     `json:"duration"`
	Patterns int                        `json:"patterns"`
}

func auditChanges(changes []validation.StateChange) []audit.StateChange {
	out := make([]audit.StateChange, len(changes))
	for i, c := range changes {
		out[i] = audit.StateChange{
			Generation: c.Generation,
			X:          c.Position.X,
			Y:          c.Position.Y,
			Z:          c.Position.Z,
			From:       c.From.String(),
			To:         c.To.String(),
			Reason:     c.Reason,
			Neighbors:  c.Neighbors,
		}
	}
	return out
}

// publish hands the completed generation to the sinks. The grid is
// serialized once and shared read-only.
func (s *Simulation) publish(res validation.StepResult, entry audit.Entry) {
	snap := s.writer != nil && res.Record.Generation%uint64(s.opts.SnapshotEvery) == 0
	if !snap && s.opts.Port == nil {
		return
	}
	grid := validation.SerializeGrid(res.Grid)
	if snap {
		dropped := s.writer.Enqueue(snapshot.Record{
			Generation: res.Record.Generation,
			Timestamp:  res.Record.Timestamp,
			Stats:      res.Record.Stats,
			Grid:       grid,
			Patterns:   res.Record.Patterns,
			AuditHash:  entry.Hash,
		})
		if dropped {
			s.opts.Metrics.SinkDrop(metrics.SinkSnapshot)
		}
	}
	if s.opts.Port != nil {
		s.opts.Port.OnGenerationUpdate(res.Record, grid)
		s.opts.Port.OnAuditEvent(entry)
	}
}

func (s *Simulation) recordEvent(kind audit.EventType, payload any) {
	entry, err := s.audit.Append(kind, s.engine.Generation(), payload)
	if err != nil {
		s.logger.Error("audit append failed", "event", kind, "error", err)
		return
	}
	if s.opts.Port != nil {
		s.opts.Port.OnAuditEvent(entry)
	}
}

// SeedPattern stamps a catalog template onto the grid.
func (s *Simulation) SeedPattern(templateID string, x, y, z int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.engine.SeedPattern(templateID, x, y, z); err != nil {
		return err
	}
	s.recordEvent(audit.EventSeed, map[string]any{"pattern": templateID, "x": x, "y": y, "z": z})
	return nil
}

// Run steps up to n generations, or until the generation cap when n <= 0.
// ctx is checked between generations only. It returns the number of
// generations completed.
func (s *Simulation) Run(ctx context.Context, n int) (int, error) {
	if !s.running.CompareAndSwap(false, true) {
		return 0, ErrAlreadyRunning
	}
	defer s.running.Store(false)

	ctx, span := tracer.Start(ctx, "Simulation.Run")
	defer span.End()

	done := 0
	for n <= 0 || done < n {
		if err := ctx.Err(); err != nil {
			return done, err
		}
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return done, err
			}
		}
		s.mu.Lock()
		_, err := s.step(ctx)
		s.mu.Unlock()
		if err != nil {
			span.SetAttributes(attribute.Int("completed", done))
			if !errors.Is(err, ErrMaxGenerations) {
				span.RecordError(err)
				span.SetStatus(codes.Error, "step failed")
			}
			return done, err
		}
		done++
	}
	span.SetAttributes(attribute.Int("completed", done))
	return done, nil
}

// Running reports whether Run is in progress.
func (s *Simulation) Running() bool { return s.running.Load() }

// AnalyzePatterns reports the patterns of the current generation.
func (s *Simulation) AnalyzePatterns() validation.PatternReport {
	return s.engine.AnalyzePatterns()
}

// History returns the retained generation records, oldest first.
func (s *Simulation) History() []validation.GenerationRecord {
	s.histMu.RLock()
	defer s.histMu.RUnlock()
	return s.history.Items()
}

// Restore replaces the grid and generation counter with a snapshot. The
// history restarts from the restored record.
func (s *Simulation) Restore(rec snapshot.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.engine.Restore(rec.Generation, rec.Grid); err != nil {
		return err
	}
	s.histMu.Lock()
	s.history = core.NewRing[validation.GenerationRecord](s.opts.HistoryLimit)
	s.history.Push(validation.GenerationRecord{
		Generation: rec.Generation,
		Timestamp:  rec.Timestamp,
		Stats:      rec.Stats,
		Patterns:   rec.Patterns,
	})
	s.histMu.Unlock()
	s.recordEvent(audit.EventRestore, map[string]any{"generation": rec.Generation, "auditHash": rec.AuditHash})
	s.logger.Info("restored snapshot", "generation", rec.Generation)
	return nil
}

// Resume restores the latest snapshot in store. It reports false when the
// store is empty.
func (s *Simulation) Resume(ctx context.Context, store snapshot.Store) (bool, error) {
	rec, err := store.Latest(ctx)
	if errors.Is(err, snapshot.ErrSnapshotNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, s.Restore(rec)
}

// Reset clears the grid and history. A zero seed keeps the configured one.
func (s *Simulation) Reset(seed int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.Reset(seed)
	s.histMu.Lock()
	s.history = core.NewRing[validation.GenerationRecord](s.opts.HistoryLimit)
	s.histMu.Unlock()
	s.recordEvent(audit.EventReset, map[string]any{"seed": s.engine.Config().Seed})
}

// Close flushes pending snapshots. The store itself stays open.
func (s *Simulation) Close() {
	if s.writer != nil {
		s.writer.Close()
	}
}
