package repo

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"gympulse/internal/audit"
	"gympulse/internal/config"
	"gympulse/internal/metrics"
	"gympulse/internal/models"
	"gympulse/internal/testutil"
	"gympulse/internal/validators"
)

// 12:00 in São Paulo.
var fixedNow = time.Date(2026, 10, 15, 15, 0, 0, 0, time.UTC)

type invalidations struct {
	mu    sync.Mutex
	calls map[string][]string
}

func (i *invalidations) Invalidate(tenantID string, scopes ...string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.calls[tenantID] = append(i.calls[tenantID], scopes...)
}

type fixture struct {
	db       *gorm.DB
	inv      *invalidations
	members  *MemberRepo
	actions  *ActionRepo
	checkins *CheckinRepo
	audits   *AuditRepo

	actor   string
	tenantA string
	tenantB string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	inv := &invalidations{calls: map[string][]string{}}
	o := Options{
		DB:       db,
		Audit:    audit.New(zap.NewNop().Sugar(), metrics.New(nil), config.AuditStrict),
		Cache:    inv,
		Location: loc,
		Now:      func() time.Time { return fixedNow },
	}
	actor := testutil.NewUser(t, db, "owner-a@example.com")
	other := testutil.NewUser(t, db, "owner-b@example.com")
	return &fixture{
		db:       db,
		inv:      inv,
		members:  NewMembers(o),
		actions:  NewActions(o),
		checkins: NewCheckins(o),
		audits:   NewAudit(o),
		actor:    actor,
		tenantA:  testutil.NewTenant(t, db, "tenant-a", actor),
		tenantB:  testutil.NewTenant(t, db, "tenant-b", other),
	}
}

func (f *fixture) member(t *testing.T, tenantID, name string) string {
	t.Helper()
	id, err := f.members.Create(context.Background(), tenantID, f.actor, validators.MemberInput{Name: name})
	require.NoError(t, err)
	return id
}

func (f *fixture) action(t *testing.T, tenantID string, in validators.ActionInput) string {
	t.Helper()
	if in.Type == "" {
		in.Type = string(models.ActionWelcome)
	}
	id, err := f.actions.Create(context.Background(), tenantID, f.actor, in)
	require.NoError(t, err)
	return id
}

func (f *fixture) auditFor(t *testing.T, entityID string) []models.AuditLog {
	t.Helper()
	var rows []models.AuditLog
	require.NoError(t, f.db.Where("entity_id = ?", entityID).Order("id ASC").Find(&rows).Error)
	return rows
}

func ptr[T any](v T) *T { return &v }
