package config

import (
	"errors"
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	AuditStrict     = "strict"
	AuditBestEffort = "best_effort"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	DatabaseURL       string        `envconfig:"DATABASE_URL"`
	DBDriver          string        `envconfig:"DB_DRIVER"           default:"postgres"`
	DBAutoMigrate     bool          `envconfig:"DB_AUTO_MIGRATE"     default:"false"`
	HTTPPort          string        `envconfig:"HTTP_PORT"           default:"8080"`
	JWTSecret         string        `envconfig:"JWT_SECRET"`
	JWTExpiresIn      time.Duration `envconfig:"JWT_EXPIRES_IN"      default:"24h"`
	LogLevel          string        `envconfig:"LOG_LEVEL"           default:"info"`
	AuditPolicy       string        `envconfig:"AUDIT_POLICY"        default:"strict"`
	Timezone          string        `envconfig:"TIMEZONE"            default:"America/Sao_Paulo"`
	CORSOrigins       []string      `envconfig:"CORS_ORIGINS"        default:"http://localhost:3000"`
	DashboardCacheTTL time.Duration `envconfig:"DASHBOARD_CACHE_TTL" default:"60s"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("%w: DATABASE_URL is empty", ErrInvalidConfig)
	}
	if c.DBDriver != DriverPostgres && c.DBDriver != DriverSQLite {
		return fmt.Errorf("%w: DB_DRIVER must be postgres or sqlite", ErrInvalidConfig)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("%w: JWT_SECRET is empty", ErrInvalidConfig)
	}
	if c.AuditPolicy != AuditStrict && c.AuditPolicy != AuditBestEffort {
		return fmt.Errorf("%w: AUDIT_POLICY must be strict or best_effort", ErrInvalidConfig)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("%w: TIMEZONE: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Location is the zone used for "today" style date buckets.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
