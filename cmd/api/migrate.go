package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"gympulse/internal/config"
	"gympulse/internal/store"
)

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Apply the SQL migrations",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{string(store.MigrateUp), string(store.MigrateDown), string(store.MigrateStatus)},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, lg, err := commonRun()
			if err != nil {
				return err
			}
			defer func() { _ = lg.Sync() }()

			direction := store.MigrateUp
			if len(args) == 1 {
				direction = store.MigrateCommand(args[0])
			}
			db, err := store.Open(cfg, lg)
			if err != nil {
				return oops.In(logDomain).Wrapf(err, "Failed to start the database connection")
			}
			if cfg.DBDriver == config.DriverSQLite {
				// the SQL migrations target Postgres; SQLite uses the models
				return store.AutoMigrate(db)
			}
			if err := store.Migrate(cmd.Context(), db, direction); err != nil {
				return oops.In(logDomain).With("direction", direction).Wrapf(err, "Failed to migrate")
			}
			lg.Infow("migrations applied", "direction", direction)
			return nil
		},
	}
}
