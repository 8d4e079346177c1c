// Package cache holds per-tenant derived views (dashboard counts) and the
// Invalidator capability repositories call after every mutation.
package cache

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Scopes used by repositories.
const (
	ScopeDashboard = "dashboard"
	ScopeMembers   = "members"
	ScopeActions   = "actions"
	ScopeCheckins  = "checkins"
)

// Invalidator drops cached views of a tenant.
type Invalidator interface {
	Invalidate(tenantID string, scopes ...string)
}

// Nop ignores every invalidation.
type Nop struct{}

func (Nop) Invalidate(string, ...string) {}

type entry struct {
	value   any
	expires time.Time
}

// ViewCache is a TTL map keyed by tenant and scope.
type ViewCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]entry
	gen     map[string]uint64

	invalidations *prometheus.CounterVec
}

// New builds a cache; a nil registerer leaves the counters unregistered.
func New(ttl time.Duration, reg prometheus.Registerer) *ViewCache {
	return &ViewCache{
		ttl:     ttl,
		now:     time.Now,
		entries: map[string]entry{},
		gen:     map[string]uint64{},
		invalidations: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "gympulse_view_cache_invalidations_total",
			Help: "Cached view invalidations by scope",
		}, []string{"scope"}),
	}
}

func key(tenantID, scope string) string { return tenantID + "|" + scope }

func (c *ViewCache) Get(tenantID, scope string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key(tenantID, scope)]
	if !ok {
		return nil, false
	}
	if c.now().After(e.expires) {
		delete(c.entries, key(tenantID, scope))
		return nil, false
	}
	return e.value, true
}

// Version returns the invalidation generation of a tenant. Read it before
// computing a view and pass it to SetAt.
func (c *ViewCache) Version(tenantID string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen[tenantID]
}

// SetAt stores v unless the tenant was invalidated after version was read.
func (c *ViewCache) SetAt(tenantID, scope string, version uint64, v any) bool {
	if c.ttl <= 0 {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen[tenantID] != version {
		return false
	}
	c.entries[key(tenantID, scope)] = entry{value: v, expires: c.now().Add(c.ttl)}
	return true
}

// Invalidate removes the given scopes, and any nested scope such as
// "members/<id>" when "members" is passed.
func (c *ViewCache) Invalidate(tenantID string, scopes ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen[tenantID]++
	for _, s := range scopes {
		c.invalidations.WithLabelValues(rootScope(s)).Inc()
		prefix := key(tenantID, s)
		for k := range c.entries {
			if k == prefix || strings.HasPrefix(k, prefix+"/") {
				delete(c.entries, k)
			}
		}
	}
}

func rootScope(s string) string {
	if i := strings.IndexByte(s, '/'); i >= 0 {
		return s[:i]
	}
	return s
}
