package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"contract-ca/internal/sim"
)

func runSimulation(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := appConfig
	logger := slog.Default()
	store, err := openStore(cfg.Snapshot, logger)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	opts := cfg.SimOptions()
	opts.Store = store
	opts.Logger = logger
	s, err := prepare(ctx, cfg, opts, runResume, runSoup, runPatterns)
	if err != nil {
		return err
	}

	logger.Info("simulation starting",
		"width", cfg.Engine.Width,
		"height", cfg.Engine.Height,
		"depth", cfg.Engine.Depth,
		"seed", cfg.Engine.Seed,
		"generations", runGenerations,
	)
	done, err := s.Run(ctx, runGenerations)
	// flush snapshots before the store closes
	s.Close()
	switch {
	case err == nil, errors.Is(err, sim.ErrMaxGenerations):
	case errors.Is(err, context.Canceled):
		logger.Info("interrupted", "completed", done)
	default:
		return fmt.Errorf("run stopped after %d generations: %w", done, err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(s.Status())
}
