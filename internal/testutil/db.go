// Package testutil provides an in-memory database for package tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"gympulse/internal/models"
	"gympulse/internal/store"
)

// NewDB opens a private in-memory SQLite database with every table migrated.
func NewDB(tb testing.TB) *gorm.DB {
	tb.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(tb.Name())
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", name, uuid.NewString()[:8])

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Discard,
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	require.NoError(tb, err)

	sqlDB, err := db.DB()
	require.NoError(tb, err)
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(tb, store.AutoMigrate(db))
	return db
}

// NewUser inserts a user and returns its id.
func NewUser(tb testing.TB, db *gorm.DB, email string) string {
	tb.Helper()

	u := models.User{Email: email, PasswordHash: "x", IsActive: true}
	require.NoError(tb, db.Create(&u).Error)
	return u.ID
}

// NewTenant inserts a tenant with an owner and returns the tenant id.
func NewTenant(tb testing.TB, db *gorm.DB, slug, ownerID string) string {
	tb.Helper()

	t := models.Tenant{Name: slug, Slug: slug}
	require.NoError(tb, db.Create(&t).Error)
	require.NoError(tb, db.Create(&models.TenantRole{TenantID: t.ID, UserID: ownerID, Role: models.RoleOwner}).Error)
	return t.ID
}
