// Package repo holds the tenant-scoped repositories. Every query filters
// on tenant_id and every mutation is audited in the same transaction and
// followed by a view cache invalidation.
package repo

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"gympulse/internal/audit"
	"gympulse/internal/cache"
	"gympulse/internal/validators"
)

type Options struct {
	DB       *gorm.DB
	Audit    *audit.Logger
	Cache    cache.Invalidator
	Logger   *zap.SugaredLogger
	Location *time.Location
	Now      func() time.Time
}

type base struct {
	db    *gorm.DB
	audit *audit.Logger
	cache cache.Invalidator
	lg    *zap.SugaredLogger
	loc   *time.Location
	now   func() time.Time
}

func newBase(o Options) base {
	b := base{db: o.DB, audit: o.Audit, cache: o.Cache, lg: o.Logger, loc: o.Location, now: o.Now}
	if b.cache == nil {
		b.cache = cache.Nop{}
	}
	if b.lg == nil {
		b.lg = zap.NewNop().Sugar()
	}
	if b.loc == nil {
		b.loc = time.UTC
	}
	if b.now == nil {
		b.now = time.Now
	}
	return b
}

// scoped starts a query restricted to one tenant.
func scoped(db *gorm.DB, tenantID string) *gorm.DB {
	return db.Where("tenant_id = ?", tenantID)
}

// knownID reports whether id can name a row; anything else is treated as
// not found without a round trip.
func knownID(id string) bool { return validators.ValidUUID(id) }

// midnight is the start of the local day containing t.
func midnight(t time.Time, loc *time.Location) time.Time {
	l := t.In(loc)
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, loc)
}
