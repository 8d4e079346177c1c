package store

import (
	"context"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type MigrateCommand string

const (
	MigrateUp     MigrateCommand = "up"
	MigrateDown   MigrateCommand = "down"
	MigrateStatus MigrateCommand = "status"
)

// Migrate runs the embedded goose migrations against a Postgres database.
func Migrate(ctx context.Context, db *gorm.DB, cmd MigrateCommand) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	switch cmd {
	case MigrateUp:
		return goose.UpContext(ctx, sqlDB, "migrations")
	case MigrateDown:
		return goose.DownContext(ctx, sqlDB, "migrations")
	case MigrateStatus:
		return goose.StatusContext(ctx, sqlDB, "migrations")
	default:
		return fmt.Errorf("unknown migrate command %q", cmd)
	}
}
