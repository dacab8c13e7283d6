package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"contract-ca/internal/broadcast"
	"contract-ca/internal/metrics"
	"contract-ca/internal/server"
	"contract-ca/internal/sim"
)

func serveSimulation(cmd *cobra.Command, args []string) error {
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

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	hub := broadcast.NewHub(logger)
	defer hub.Close()
	dispatcher := broadcast.NewDispatcher(ctx, cfg.Run.BroadcastQueue,
		broadcast.WithLogger(logger),
		broadcast.WithHooks(
			func() { m.SinkDrop(metrics.SinkBroadcast) },
			func() { m.SinkError(metrics.SinkBroadcast) },
		),
	)
	defer dispatcher.Close()
	dispatcher.Subscribe(hub)

	opts := cfg.SimOptions()
	opts.Store = store
	opts.Port = dispatcher
	opts.Metrics = m
	opts.Logger = logger
	s, err := prepare(ctx, cfg, opts, runResume, runSoup, runPatterns)
	if err != nil {
		return err
	}
	defer s.Close()

	router := server.NewRouter(server.NewHandlers(s, logger), hub, reg)
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if serveAutorun {
		go func() {
			done, err := s.Run(ctx, 0)
			if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, sim.ErrMaxGenerations) {
				logger.Error("autorun stopped", "completed", done, "error", err)
				return
			}
			logger.Info("autorun finished", "completed", done)
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Server.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
