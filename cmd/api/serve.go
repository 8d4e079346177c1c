package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"gympulse/internal/httpserver"
	"gympulse/internal/store"
)

const shutdownTimeout = 15 * time.Second

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE:  serveRun,
	}
}

func serveRun(cmd *cobra.Command, _ []string) error {
	cfg, lg, err := commonRun()
	if err != nil {
		return err
	}
	defer func() { _ = lg.Sync() }()

	db, err := store.Open(cfg, lg)
	if err != nil {
		return oops.In(logDomain).Wrapf(err, "Failed to start the database connection")
	}
	if cfg.DBAutoMigrate {
		if err := store.AutoMigrate(db); err != nil {
			return oops.In(logDomain).Wrapf(err, "Failed to auto-migrate the schema")
		}
		lg.Infow("schema auto-migrated")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           httpserver.NewRouter(db, cfg, lg, reg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		lg.Infow("listening", "port", cfg.HTTPPort)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return oops.In(logDomain).Wrapf(err, "HTTP server stopped")
		}
		return nil
	case <-ctx.Done():
	}

	lg.Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return oops.In(logDomain).Wrapf(err, "Failed to shut down the HTTP server")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	return nil
}
