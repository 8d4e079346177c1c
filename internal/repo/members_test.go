package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gympulse/internal/audit"
	"gympulse/internal/cache"
	"gympulse/internal/errs"
	"gympulse/internal/models"
	"gympulse/internal/validators"
)

func TestMembers_CreateDefaultsAndAudit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.members.Create(ctx, f.tenantA, f.actor, validators.MemberInput{Name: "Ana", Email: ptr("ana@example.com")})
	require.NoError(t, err)

	m, err := f.members.Get(ctx, f.tenantA, id)
	require.NoError(t, err)
	assert.Equal(t, models.MemberActive, m.Status)
	assert.Equal(t, 0, m.ChurnRisk)
	assert.Equal(t, f.tenantA, m.TenantID)

	entries := f.auditFor(t, id)
	require.Len(t, entries, 1)
	assert.Equal(t, audit.MemberCreated, entries[0].Action)
	assert.Equal(t, audit.EntityMembers, entries[0].EntityType)
	assert.Equal(t, f.actor, entries[0].ActorUserID)
	assert.Nil(t, entries[0].Meta.Before)
	assert.Equal(t, models.MemberTrackedFields, entries[0].Meta.FieldsChanged)

	assert.Contains(t, f.inv.calls[f.tenantA], cache.ScopeDashboard)
}

func TestMembers_UpdateAuditsOnlyChangedFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.members.Create(ctx, f.tenantA, f.actor, validators.MemberInput{Name: "Ana", ChurnRisk: ptr(10.0)})
	require.NoError(t, err)

	m, err := f.members.Update(ctx, f.tenantA, f.actor, id, validators.MemberInput{Name: "Ana", ChurnRisk: ptr(80.0)})
	require.NoError(t, err)
	assert.Equal(t, 80, m.ChurnRisk)

	var updates []models.AuditLog
	require.NoError(t, f.db.Where("entity_id = ? AND action = ?", id, audit.MemberUpdated).Find(&updates).Error)
	require.Len(t, updates, 1)
	meta := updates[0].Meta
	assert.EqualValues(t, 10, meta.Before["churn_risk"])
	assert.EqualValues(t, 80, meta.After["churn_risk"])
	assert.Equal(t, []string{"churn_risk"}, meta.FieldsChanged)
}

func TestMembers_ClampsRisk(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	high, err := f.members.Create(ctx, f.tenantA, f.actor, validators.MemberInput{Name: "High", ChurnRisk: ptr(150.0)})
	require.NoError(t, err)
	low, err := f.members.Create(ctx, f.tenantA, f.actor, validators.MemberInput{Name: "Low", ChurnRisk: ptr(-5.0)})
	require.NoError(t, err)

	m, err := f.members.Get(ctx, f.tenantA, high)
	require.NoError(t, err)
	assert.Equal(t, 100, m.ChurnRisk)

	m, err = f.members.Update(ctx, f.tenantA, f.actor, low, validators.MemberInput{Name: "Low", ChurnRisk: ptr(-5.0)})
	require.NoError(t, err)
	assert.Equal(t, 0, m.ChurnRisk)
}

func TestMembers_ValidationHappensBeforeWrites(t *testing.T) {
	f := newFixture(t)
	_, err := f.members.Create(context.Background(), f.tenantA, f.actor, validators.MemberInput{Name: "A"})
	assert.True(t, errs.IsValidation(err))

	var n int64
	require.NoError(t, f.db.Model(&models.AuditLog{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestMembers_ListFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ana := f.member(t, f.tenantA, "Ana Souza")
	f.member(t, f.tenantA, "Bruno Lima")
	require.NoError(t, f.members.Inactivate(ctx, f.tenantA, f.actor, ana))

	got, err := f.members.List(ctx, f.tenantA, MemberFilter{Status: "inactive"}, Sort{}, NewPage(1, 10))
	require.NoError(t, err)
	require.Len(t, got.Rows, 1)
	assert.Equal(t, ana, got.Rows[0].ID)

	got, err = f.members.List(ctx, f.tenantA, MemberFilter{Q: "LIMA", Status: "all"}, Sort{}, NewPage(1, 10))
	require.NoError(t, err)
	require.Len(t, got.Rows, 1)
	assert.Equal(t, "Bruno Lima", got.Rows[0].Name)
}

func TestMembers_TenantIsolation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.member(t, f.tenantA, "Member A")
	b := f.member(t, f.tenantB, "Member B")

	listA, err := f.members.List(ctx, f.tenantA, MemberFilter{}, Sort{}, NewPage(1, 50))
	require.NoError(t, err)
	require.Len(t, listA.Rows, 1)
	assert.Equal(t, a, listA.Rows[0].ID)

	listB, err := f.members.List(ctx, f.tenantB, MemberFilter{}, Sort{}, NewPage(1, 50))
	require.NoError(t, err)
	require.Len(t, listB.Rows, 1)
	assert.Equal(t, b, listB.Rows[0].ID)

	_, err = f.members.Get(ctx, f.tenantA, b)
	assert.ErrorIs(t, err, errs.ErrNotFound)
	_, err = f.members.Update(ctx, f.tenantA, f.actor, b, validators.MemberInput{Name: "Hijack"})
	assert.ErrorIs(t, err, errs.ErrNotFound)
	assert.ErrorIs(t, f.members.Inactivate(ctx, f.tenantA, f.actor, b), errs.ErrNotFound)
	_, err = f.members.Details(ctx, f.tenantA, b)
	assert.ErrorIs(t, err, errs.ErrNotFound)

	n, err := f.members.SetStatusBulk(ctx, f.tenantA, f.actor, validators.StatusBulkInput{IDs: []string{a, b}, Status: "inactive"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	mb, err := f.members.Get(ctx, f.tenantB, b)
	require.NoError(t, err)
	assert.Equal(t, models.MemberActive, mb.Status, "other tenant untouched")
	assert.Len(t, f.auditFor(t, b), 1, "only the creation entry")

	opts, err := f.members.Options(ctx, f.tenantA)
	require.NoError(t, err)
	require.Len(t, opts, 1)
	assert.Equal(t, a, opts[0].ID)
}

func TestMembers_BulkStatusAuditsEveryTargetedRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m1 := f.member(t, f.tenantA, "One")
	m2 := f.member(t, f.tenantA, "Two")
	require.NoError(t, f.members.Inactivate(ctx, f.tenantA, f.actor, m2))

	n, err := f.members.SetStatusBulk(ctx, f.tenantA, f.actor, validators.StatusBulkInput{IDs: []string{m1, m2}, Status: "inactive"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var rows []models.AuditLog
	require.NoError(t, f.db.Where("action = ?", audit.MemberStatusChanged).Order("id ASC").Find(&rows).Error)
	require.Len(t, rows, 3)

	last := map[string]models.AuditLog{}
	for _, r := range rows {
		last[r.EntityID] = r
	}
	assert.Equal(t, []string{"status"}, last[m1].Meta.FieldsChanged)
	assert.Equal(t, []string{}, last[m2].Meta.FieldsChanged)
	assert.Equal(t, "inactive", last[m2].Meta.Before["status"])
}

func TestMembers_ActivateUnknown(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	assert.ErrorIs(t, f.members.Activate(ctx, f.tenantA, f.actor, "not-a-uuid"), errs.ErrNotFound)
	assert.ErrorIs(t, f.members.Activate(ctx, f.tenantA, f.actor, "0b6f3c9e-1d2a-4e5f-8a7b-6c5d4e3f2a1b"), errs.ErrNotFound)
}

func TestMembers_Details(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.member(t, f.tenantA, "Ana")

	_, err := f.checkins.Create(ctx, f.tenantA, id)
	require.NoError(t, err)
	later := f.action(t, f.tenantA, validators.ActionInput{Title: "later", MemberID: ptr(id), DueAt: ptr("2026-10-30")})
	sooner := f.action(t, f.tenantA, validators.ActionInput{Title: "sooner", MemberID: ptr(id), DueAt: ptr("2026-10-16")})
	undated := f.action(t, f.tenantA, validators.ActionInput{Title: "undated", MemberID: ptr(id)})
	done := f.action(t, f.tenantA, validators.ActionInput{Title: "done", MemberID: ptr(id)})
	_, err = f.actions.SetStatusBulk(ctx, f.tenantA, f.actor, validators.StatusBulkInput{IDs: []string{done}, Status: "done"})
	require.NoError(t, err)

	d, err := f.members.Details(ctx, f.tenantA, id)
	require.NoError(t, err)
	assert.Equal(t, "Ana", d.Member.Name)
	assert.Len(t, d.Checkins, 1)

	var order []string
	for _, a := range d.OpenActions {
		order = append(order, a.ID)
	}
	assert.Equal(t, []string{sooner, later, undated}, order)
}
