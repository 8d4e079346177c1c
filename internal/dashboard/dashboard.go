// Package dashboard computes the per-tenant KPI summary.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"gympulse/internal/cache"
	"gympulse/internal/models"
	"gympulse/internal/store"
)

const checkinWindow = 30 * 24 * time.Hour

type Kpis struct {
	ActiveMembers int64     `json:"active_members"`
	OpenActions   int64     `json:"open_actions"`
	Checkins30d   int64     `json:"checkins_30d"`
	WindowDays    int       `json:"window_days"`
	LastUpdatedAt time.Time `json:"last_updated_at"`
}

// ViewCache is the subset of cache.ViewCache the aggregator needs.
type ViewCache interface {
	Get(tenantID, scope string) (any, bool)
	Version(tenantID string) uint64
	SetAt(tenantID, scope string, version uint64, v any) bool
}

type Aggregator struct {
	db    *gorm.DB
	cache ViewCache
	now   func() time.Time
}

func New(db *gorm.DB, c ViewCache) *Aggregator {
	return &Aggregator{db: db, cache: c, now: time.Now}
}

// ComputeKpis runs the three counts concurrently and returns the first
// failure, named after its count. Results are served from the view cache
// until a mutation invalidates the dashboard scope. Counts that raced an
// invalidation are returned but not cached.
func (a *Aggregator) ComputeKpis(ctx context.Context, tenantID string) (Kpis, error) {
	var version uint64
	if a.cache != nil {
		version = a.cache.Version(tenantID)
		if v, ok := a.cache.Get(tenantID, cache.ScopeDashboard); ok {
			if k, ok := v.(Kpis); ok {
				return k, nil
			}
		}
	}

	now := a.now().UTC()
	k := Kpis{LastUpdatedAt: now, WindowDays: int(checkinWindow.Hours() / 24)}

	g, gctx := errgroup.WithContext(ctx)
	count := func(name string, dst *int64, model any, where string, args ...any) {
		g.Go(func() error {
			q := a.db.WithContext(gctx).Model(model).Where("tenant_id = ?", tenantID).Where(where, args...)
			if err := q.Count(dst).Error; err != nil {
				return fmt.Errorf("%s: %w", name, store.Failure(err))
			}
			return nil
		})
	}
	count("active members", &k.ActiveMembers, &models.Member{}, "status = ?", models.MemberActive)
	count("open actions", &k.OpenActions, &models.Action{}, "status IN ?",
		[]models.ActionStatus{models.ActionOpen, models.ActionInProgress})
	count("check-ins", &k.Checkins30d, &models.Checkin{}, "checked_in_at >= ?", now.Add(-checkinWindow))

	if err := g.Wait(); err != nil {
		return Kpis{}, err
	}
	if a.cache != nil {
		a.cache.SetAt(tenantID, cache.ScopeDashboard, version, k)
	}
	return k, nil
}
