package repo

import (
	"context"

	"gympulse/internal/cache"
	"gympulse/internal/models"
	"gympulse/internal/store"
)

const maxMemberCheckins = 200

var checkinSorts = map[string]bool{"checked_in_at": true, "created_at": true}

type CheckinFilter struct {
	MemberID string
}

// CheckinRepo records gym visits. Check-ins are immutable and not audited.
type CheckinRepo struct{ base }

func NewCheckins(o Options) *CheckinRepo { return &CheckinRepo{newBase(o)} }

// Create registers a visit of a member of the tenant at the current time.
func (r *CheckinRepo) Create(ctx context.Context, tenantID, memberID string) (models.Checkin, error) {
	db := r.db.WithContext(ctx)
	if _, err := findMember(db, tenantID, memberID); err != nil {
		return models.Checkin{}, err
	}

	c := models.Checkin{TenantID: tenantID, MemberID: memberID, CheckedInAt: r.now().UTC()}
	if err := db.Create(&c).Error; err != nil {
		return models.Checkin{}, store.Failure(err)
	}
	r.cache.Invalidate(tenantID, cache.ScopeCheckins, cache.ScopeDashboard)
	return c, nil
}

// ListForMember returns the latest check-ins of a member, newest first.
func (r *CheckinRepo) ListForMember(ctx context.Context, tenantID, memberID string, limit int) ([]models.Checkin, error) {
	db := r.db.WithContext(ctx)
	if _, err := findMember(db, tenantID, memberID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > maxMemberCheckins {
		limit = detailCheckins
	}

	out := []models.Checkin{}
	err := scoped(db, tenantID).Where("member_id = ?", memberID).
		Order("checked_in_at DESC").Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, store.Failure(err)
	}
	return out, nil
}

// List pages through the tenant's check-ins, newest first.
func (r *CheckinRepo) List(ctx context.Context, tenantID string, f CheckinFilter, p Page) (ListResult[models.Checkin], error) {
	if f.MemberID != "" && !knownID(f.MemberID) {
		return emptyResult[models.Checkin](p), nil
	}
	q := scoped(r.db.WithContext(ctx).Model(&models.Checkin{}), tenantID)
	if f.MemberID != "" {
		q = q.Where("member_id = ?", f.MemberID)
	}
	return list[models.Checkin](q, Sort{Key: "checked_in_at"}, checkinSorts, p)
}
