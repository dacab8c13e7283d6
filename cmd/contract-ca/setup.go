package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"contract-ca/internal/config"
	"contract-ca/internal/sim"
	"contract-ca/internal/sims/validation"
	"contract-ca/internal/snapshot"
)

// loadConfig layers the file, the environment, --set overrides and the log
// flags, then validates the result.
func loadConfig(path string, sets []string, level, format string) (config.File, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return config.File{}, err
	}
	if len(sets) > 0 {
		kv := make(map[string]string, len(sets))
		for _, s := range sets {
			key, value, ok := strings.Cut(s, "=")
			if !ok || key == "" {
				return config.File{}, fmt.Errorf("%w: --set %q must be key=value", validation.ErrInvalidConfig, s)
			}
			kv[strings.TrimSpace(key)] = strings.TrimSpace(value)
		}
		if err := cfg.Engine.Apply(kv); err != nil {
			return config.File{}, err
		}
	}
	if level != "" {
		cfg.Log.Level = level
	}
	if format != "" {
		cfg.Log.Format = format
	}
	if err := cfg.Validate(); err != nil {
		return config.File{}, err
	}
	return cfg, nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// newLogger builds the slog handler selected by cfg.
func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func setupLogging(w io.Writer, cfg config.LogConfig) {
	slog.SetDefault(newLogger(w, cfg))
}

// seedSpec is a parsed --pattern value.
type seedSpec struct {
	ID      string
	X, Y, Z int
}

// parseSeedSpec parses id@x,y or id@x,y,z.
func parseSeedSpec(s string) (seedSpec, error) {
	id, coords, ok := strings.Cut(s, "@")
	if !ok || id == "" {
		return seedSpec{}, fmt.Errorf("pattern %q: want id@x,y[,z]", s)
	}
	parts := strings.Split(coords, ",")
	if len(parts) != 2 && len(parts) != 3 {
		return seedSpec{}, fmt.Errorf("pattern %q: want id@x,y[,z]", s)
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return seedSpec{}, fmt.Errorf("pattern %q: %w", s, err)
		}
		nums[i] = n
	}
	return seedSpec{ID: id, X: nums[0], Y: nums[1], Z: nums[2]}, nil
}

// openStore opens the configured snapshot backend. It returns nil for the
// "none" backend.
func openStore(cfg config.SnapshotConfig, logger *slog.Logger) (snapshot.Store, error) {
	if strings.EqualFold(cfg.Backend, "none") {
		return nil, nil
	}
	return snapshot.Open(strings.ToLower(cfg.Backend), cfg.Path, snapshot.WithLogger(logger))
}

// prepare builds the simulation, restores the latest snapshot when asked and
// stamps the requested patterns.
// defaultSoupDensity is used by --soup when the config leaves the density
// at zero.
const defaultSoupDensity = 0.35

// prepare builds the simulation. A soup is scattered first, then the stored
// snapshot is resumed, then the seed patterns are stamped on top.
func prepare(ctx context.Context, cfg config.File, opts sim.Options, resume, soup bool, seeds []string) (*sim.Simulation, error) {
	if soup && resume {
		return nil, fmt.Errorf("%w: --soup cannot be combined with --resume", validation.ErrInvalidConfig)
	}
	specs := make([]seedSpec, 0, len(seeds))
	for _, s := range seeds {
		spec, err := parseSeedSpec(s)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	if soup && cfg.Engine.SoupDensity <= 0 {
		cfg.Engine.SoupDensity = defaultSoupDensity
	}
	s, err := sim.New(cfg.Engine, opts)
	if err != nil {
		return nil, err
	}
	if soup {
		s.Reset(0)
	}
	if resume && opts.Store != nil {
		ok, err := s.Resume(ctx, opts.Store)
		if err != nil {
			return nil, fmt.Errorf("resume: %w", err)
		}
		if !ok {
			opts.Logger.Info("no snapshot to resume from, starting fresh")
		}
	}
	for _, spec := range specs {
		if err := s.SeedPattern(spec.ID, spec.X, spec.Y, spec.Z); err != nil {
			return nil, err
		}
	}
	return s, nil
}
