package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"gympulse/internal/audit"
	"gympulse/internal/cache"
	"gympulse/internal/errs"
	"gympulse/internal/models"
	"gympulse/internal/store"
	"gympulse/internal/validators"
)

// Due buckets of the action list.
const (
	DueAll     = "all"
	DueOverdue = "overdue"
	DueToday   = "today"
	DueNext7   = "next7"
)

// dueFirst orders by due date with undated actions last.
const dueFirst = "CASE WHEN due_at IS NULL THEN 1 ELSE 0 END, due_at ASC, created_at ASC"

var actionSorts = map[string]bool{
	"created_at": true, "due_at": true, "title": true, "type": true, "status": true,
}

type ActionFilter struct {
	Q      string
	Status string // open, in_progress, done or all
	Type   string // an action type or all
	Due    string // overdue, today, next7 or all
}

type ActionRepo struct{ base }

func NewActions(o Options) *ActionRepo { return &ActionRepo{newBase(o)} }

// Types lists the accepted action types.
func (r *ActionRepo) Types() []models.ActionType {
	return append([]models.ActionType(nil), models.ActionTypes...)
}

func (r *ActionRepo) List(ctx context.Context, tenantID string, f ActionFilter, s Sort, p Page) (ListResult[models.Action], error) {
	q := scoped(r.db.WithContext(ctx).Model(&models.Action{}), tenantID)
	q = search(q, f.Q, "title", "type")
	if st := models.ActionStatus(f.Status); st.Valid() {
		q = q.Where("status = ?", st)
	}
	if t, ok := validators.NormalizeType(f.Type); ok {
		q = q.Where("type = ?", t)
	}
	q = r.dueBucket(q, f.Due)
	return list[models.Action](q, s, actionSorts, p, withMember)
}

// dueBucket filters on local-midnight boundaries of the repository clock.
func (r *ActionRepo) dueBucket(q *gorm.DB, bucket string) *gorm.DB {
	today := midnight(r.now(), r.loc)
	start := today.UTC()
	switch bucket {
	case DueOverdue:
		return q.Where("due_at < ?", start)
	case DueToday:
		return q.Where("due_at >= ? AND due_at < ?", start, today.AddDate(0, 0, 1).UTC())
	case DueNext7:
		return q.Where("due_at >= ? AND due_at < ?", start, today.AddDate(0, 0, 7).UTC())
	}
	return q
}

func withMember(q *gorm.DB) *gorm.DB { return q.Preload("Member") }

func (r *ActionRepo) Get(ctx context.Context, tenantID, id string) (models.Action, error) {
	return findAction(withMember(r.db.WithContext(ctx)), tenantID, id)
}

func findAction(db *gorm.DB, tenantID, id string) (models.Action, error) {
	var a models.Action
	if !knownID(id) {
		return a, errs.ErrNotFound
	}
	err := scoped(db, tenantID).Where("id = ?", id).Take(&a).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return a, errs.ErrNotFound
	case err != nil:
		return a, store.Failure(err)
	}
	return a, nil
}

// checkMember rejects a member id that is not a member of the tenant.
func checkMember(tx *gorm.DB, tenantID string, memberID *string) error {
	if memberID == nil {
		return nil
	}
	_, err := findMember(tx, tenantID, *memberID)
	if errors.Is(err, errs.ErrNotFound) {
		return errs.Validation("member_id", "member not found")
	}
	return err
}

func (r *ActionRepo) Create(ctx context.Context, tenantID, actorID string, in validators.ActionInput) (string, error) {
	v, err := in.Validate(r.loc)
	if err != nil {
		return "", err
	}
	a := models.Action{
		TenantID:  tenantID,
		MemberID:  v.MemberID,
		Type:      v.Type,
		Title:     v.Title,
		Status:    models.ActionOpen,
		DueAt:     v.DueAt,
		CreatedBy: actorID,
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkMember(tx, tenantID, a.MemberID); err != nil {
			return err
		}
		if err := tx.Create(&a).Error; err != nil {
			return store.Failure(err)
		}
		return r.audit.Write(ctx, tx, audit.Entry{
			TenantID:    tenantID,
			ActorUserID: actorID,
			Action:      audit.ActionCreated,
			EntityType:  audit.EntityActions,
			EntityID:    a.ID,
			Meta:        audit.Created(models.ActionTrackedFields, a.Snapshot()),
		})
	})
	if err != nil {
		return "", err
	}
	r.invalidate(tenantID)
	return a.ID, nil
}

// Update replaces title, type, member and due date. Status is changed
// through SetStatusBulk only.
func (r *ActionRepo) Update(ctx context.Context, tenantID, actorID, id string, in validators.ActionInput) (models.Action, error) {
	v, err := in.Validate(r.loc)
	if err != nil {
		return models.Action{}, err
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		before, err := findAction(tx, tenantID, id)
		if err != nil {
			return err
		}
		if err := checkMember(tx, tenantID, v.MemberID); err != nil {
			return err
		}
		after := before
		after.Title, after.Type, after.MemberID, after.DueAt = v.Title, v.Type, v.MemberID, v.DueAt

		err = scoped(tx.Model(&models.Action{}), tenantID).Where("id = ?", id).Updates(map[string]any{
			"title":     after.Title,
			"type":      after.Type,
			"member_id": after.MemberID,
			"due_at":    after.DueAt,
		}).Error
		if err != nil {
			return store.Failure(err)
		}
		return r.audit.Write(ctx, tx, audit.Entry{
			TenantID:    tenantID,
			ActorUserID: actorID,
			Action:      audit.ActionUpdated,
			EntityType:  audit.EntityActions,
			EntityID:    id,
			Meta:        audit.Updated(models.ActionTrackedFields, before.Snapshot(), after.Snapshot()),
		})
	})
	if err != nil {
		return models.Action{}, err
	}
	r.invalidate(tenantID)
	return r.Get(ctx, tenantID, id)
}

// SetStatusBulk mirrors MemberRepo.SetStatusBulk for actions.
func (r *ActionRepo) SetStatusBulk(ctx context.Context, tenantID, actorID string, in validators.StatusBulkInput) (int, error) {
	ids, status, err := in.ActionStatus()
	if err != nil {
		return 0, err
	}

	var n int
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []models.Action
		if err := scoped(tx, tenantID).Where("id IN ?", ids).Select("id", "status").Find(&rows).Error; err != nil {
			return store.Failure(err)
		}
		n = len(rows)
		if n == 0 {
			return nil
		}

		found := make([]string, n)
		entries := make([]audit.Entry, n)
		for i, row := range rows {
			found[i] = row.ID
			entries[i] = statusEntry(tenantID, actorID, audit.ActionStatusChanged, audit.EntityActions, row.ID, string(row.Status), string(status))
		}
		err := scoped(tx.Model(&models.Action{}), tenantID).Where("id IN ?", found).Update("status", status).Error
		if err != nil {
			return store.Failure(err)
		}
		return r.audit.Write(ctx, tx, entries...)
	})
	if err != nil {
		return 0, err
	}
	if n > 0 {
		r.invalidate(tenantID)
	}
	return n, nil
}

// Delete soft-deletes the action; it disappears from every read.
func (r *ActionRepo) Delete(ctx context.Context, tenantID, actorID, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		before, err := findAction(tx, tenantID, id)
		if err != nil {
			return err
		}
		if err := scoped(tx, tenantID).Where("id = ?", id).Delete(&models.Action{}).Error; err != nil {
			return store.Failure(err)
		}
		return r.audit.Write(ctx, tx, audit.Entry{
			TenantID:    tenantID,
			ActorUserID: actorID,
			Action:      audit.ActionDeleted,
			EntityType:  audit.EntityActions,
			EntityID:    id,
			Meta:        audit.Deleted(before.Snapshot()),
		})
	})
	if err != nil {
		return err
	}
	r.invalidate(tenantID)
	return nil
}

func (r *ActionRepo) invalidate(tenantID string) {
	r.cache.Invalidate(tenantID, cache.ScopeActions, cache.ScopeMembers, cache.ScopeDashboard)
}
