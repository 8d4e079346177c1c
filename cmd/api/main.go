package main

import (
	"fmt"
	"os"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"

	"gympulse/internal/config"
	"gympulse/internal/logger"
)

const (
	programName = "gympulse-api"
	logDomain   = "gympulse"
)

// commonRun loads the configuration and builds the process logger.
func commonRun() (*config.Config, *zap.SugaredLogger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, oops.In(logDomain).Wrapf(err, "Failed to load the configuration")
	}
	lg := logger.New(cfg.LogLevel)
	if _, err := maxprocs.Set(maxprocs.Logger(lg.Infof)); err != nil {
		lg.Warnw("setting GOMAXPROCS failed", "error", err)
	}
	return cfg, lg, nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:           programName,
		Short:         "GymPulse multi-tenant API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serveRun,
	}
	rootCmd.AddCommand(serveCommand(), migrateCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%+v\n", err)
		os.Exit(1)
	}
}
