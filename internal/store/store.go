package store

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"gympulse/internal/config"
	"gympulse/internal/errs"
	"gympulse/internal/models"
)

const pgUniqueViolationErrCode = "23505" // see https://www.postgresql.org/docs/14/errcodes-appendix.html

// Open connects to the configured database. TranslateError maps driver
// unique violations to gorm.ErrDuplicatedKey for both dialects.
func Open(cfg *config.Config, lg *zap.SugaredLogger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.DatabaseURL)
	default:
		dialector = postgres.Open(cfg.DatabaseURL)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormlogger.Discard,
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	if cfg.DBDriver == config.DriverSQLite {
		// a single writer avoids SQLITE_BUSY under concurrent requests
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	lg.Infow("database connected", "driver", cfg.DBDriver)
	return db, nil
}

// AutoMigrate creates the tables from the GORM models. Postgres
// deployments use the goose migrations instead.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(models.All...)
}

// IsUniqueViolation reports whether err is a unique constraint failure.
func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgError *pgconn.PgError
	if errors.As(err, &pgError) {
		return pgError.Code == pgUniqueViolationErrCode
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Failure wraps a driver error as an opaque storage failure.
func Failure(err error) error {
	if err == nil {
		return nil
	}
	return errs.Wrap(errs.ErrStorage, err)
}
