package audit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"gympulse/internal/config"
	"gympulse/internal/errs"
	"gympulse/internal/metrics"
	"gympulse/internal/models"
	"gympulse/internal/testutil"
)

func entry(action string) Entry {
	return Entry{
		TenantID:    "11111111-1111-4111-8111-111111111111",
		ActorUserID: "22222222-2222-4222-8222-222222222222",
		Action:      action,
		EntityType:  EntityMembers,
		EntityID:    "33333333-3333-4333-8333-333333333333",
		Meta: Updated(models.MemberTrackedFields,
			map[string]any{"name": "Ana", "email": nil, "status": "active", "churn_risk": 10},
			map[string]any{"name": "Ana", "email": nil, "status": "active", "churn_risk": 80}),
	}
}

func TestAppend_StoresMeta(t *testing.T) {
	db := testutil.NewDB(t)
	l := New(zap.NewNop().Sugar(), metrics.New(nil), config.AuditStrict)

	require.NoError(t, l.Append(context.Background(), db, entry(MemberUpdated)))

	var got models.AuditLog
	require.NoError(t, db.First(&got).Error)
	assert.Equal(t, MemberUpdated, got.Action)
	assert.Equal(t, []string{"churn_risk"}, got.Meta.FieldsChanged)
	assert.EqualValues(t, 10, got.Meta.Before["churn_risk"])
	assert.EqualValues(t, 80, got.Meta.After["churn_risk"])
}

// breakAuditTable makes every insert into audit_log fail.
func breakAuditTable(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, db.Migrator().DropTable(&models.AuditLog{}))
}

func TestWrite_StrictReturnsFailure(t *testing.T) {
	db := testutil.NewDB(t)
	breakAuditTable(t, db)
	l := New(zap.NewNop().Sugar(), metrics.New(nil), config.AuditStrict)

	err := l.Write(context.Background(), db, entry(MemberCreated))
	assert.ErrorIs(t, err, errs.ErrStorage)
}

func TestWrite_StrictRollsBackTheMutation(t *testing.T) {
	db := testutil.NewDB(t)
	breakAuditTable(t, db)
	l := New(zap.NewNop().Sugar(), metrics.New(nil), config.AuditStrict)

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&models.Tenant{Name: "Acme", Slug: "acme"}).Error; err != nil {
			return err
		}
		return l.Write(context.Background(), tx, entry(MemberCreated))
	})
	require.Error(t, err)

	var n int64
	require.NoError(t, db.Model(&models.Tenant{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestWrite_BestEffortKeepsTheMutation(t *testing.T) {
	db := testutil.NewDB(t)
	breakAuditTable(t, db)
	l := New(zap.NewNop().Sugar(), metrics.New(nil), config.AuditBestEffort)

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&models.Tenant{Name: "Acme", Slug: "acme"}).Error; err != nil {
			return err
		}
		return l.Write(context.Background(), tx, entry(MemberCreated))
	})
	require.NoError(t, err)

	var n int64
	require.NoError(t, db.Model(&models.Tenant{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestDiff(t *testing.T) {
	before := map[string]any{"title": "a", "due_at": nil, "member_id": "m1", "status": "open"}
	after := map[string]any{"title": "a", "due_at": "2026-10-15T00:00:00Z", "member_id": nil, "status": "open"}

	assert.Equal(t, []string{"due_at", "member_id"}, Diff([]string{"title", "status", "due_at", "member_id"}, before, after))
	assert.Equal(t, []string{}, Diff([]string{"title"}, before, after))
}

func TestMetaBuilders(t *testing.T) {
	after := map[string]any{"name": "Ana"}

	c := Created([]string{"name"}, after)
	assert.Nil(t, c.Before)
	assert.Equal(t, []string{"name"}, c.FieldsChanged)

	d := Deleted(after)
	assert.Nil(t, d.After)
	assert.Equal(t, []string{models.DeletedMarker}, d.FieldsChanged)
}
