// Package config loads the application configuration from a YAML file and
// CONTRACT_CA_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"contract-ca/internal/sim"
	"contract-ca/internal/sims/validation"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CONTRACT_CA_"

// RunConfig controls retention and pacing of the simulation loop.
type RunConfig struct {
	HistoryLimit   int     `yaml:"historyLimit" env:"HISTORY_LIMIT"`
	AuditRetention int     `yaml:"auditRetention" env:"AUDIT_RETENTION"`
	TPS            float64 `yaml:"tps" env:"TPS"`
	SnapshotEvery  int     `yaml:"snapshotEvery" env:"SNAPSHOT_EVERY"`
	SnapshotQueue  int     `yaml:"snapshotQueue" env:"SNAPSHOT_QUEUE"`
	BroadcastQueue int     `yaml:"broadcastQueue" env:"BROADCAST_QUEUE"`
}

// SnapshotConfig selects the snapshot backend.
type SnapshotConfig struct {
	// Backend is one of memory, badger, sqlite or none.
	Backend string `yaml:"backend" env:"BACKEND"`
	Path    string `yaml:"path" env:"PATH"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr string `yaml:"addr" env:"ADDR"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
}

// File is the full application configuration.
type File struct {
	Engine   validation.Config `yaml:"engine" envPrefix:"ENGINE_"`
	Run      RunConfig         `yaml:"run" envPrefix:"RUN_"`
	Snapshot SnapshotConfig    `yaml:"snapshot" envPrefix:"SNAPSHOT_"`
	Server   ServerConfig      `yaml:"server" envPrefix:"SERVER_"`
	Log      LogConfig         `yaml:"log" envPrefix:"LOG_"`
}

// Default returns the built-in configuration.
func Default() File {
	opts := sim.DefaultOptions()
	return File{
		Engine: validation.DefaultConfig(),
		Run: RunConfig{
			HistoryLimit:   opts.HistoryLimit,
			AuditRetention: opts.AuditRetention,
			SnapshotEvery:  opts.SnapshotEvery,
			SnapshotQueue:  opts.SnapshotQueue,
			BroadcastQueue: 64,
		},
		Snapshot: SnapshotConfig{Backend: "memory"},
		Server:   ServerConfig{Addr: ":8080"},
		Log:      LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads path over the defaults, then applies environment overrides.
// An empty path skips the file.
func Load(path string) (File, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return File{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return File{}, fmt.Errorf("%w: parse %s: %v", validation.ErrInvalidConfig, path, err)
		}
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return File{}, fmt.Errorf("%w: parse env: %v", validation.ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return File{}, err
	}
	return cfg, nil
}

// Validate checks the engine rules and the shell settings.
func (f File) Validate() error {
	var errs []error
	if err := f.Engine.Validate(); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(f.Snapshot.Backend) {
	case "", "none", "memory", "badger", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("%w: unknown snapshot backend %q", validation.ErrInvalidConfig, f.Snapshot.Backend))
	}
	switch strings.ToLower(f.Log.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("%w: unknown log format %q", validation.ErrInvalidConfig, f.Log.Format))
	}
	if f.Run.TPS < 0 {
		errs = append(errs, fmt.Errorf("%w: run.tps must be non-negative", validation.ErrInvalidConfig))
	}
	return errors.Join(errs...)
}

// SimOptions converts the run section. Store, Port, Metrics and Logger are
// left for the caller to wire.
func (f File) SimOptions() sim.Options {
	return sim.Options{
		HistoryLimit:   f.Run.HistoryLimit,
		AuditRetention: f.Run.AuditRetention,
		TPS:            f.Run.TPS,
		SnapshotEvery:  f.Run.SnapshotEvery,
		SnapshotQueue:  f.Run.SnapshotQueue,
	}
}

// WriteDefault writes the default configuration as YAML to path.
func WriteDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := Marshal(Default())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Marshal renders cfg as YAML.
func Marshal(cfg File) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}
