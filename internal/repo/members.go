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

const (
	detailCheckins = 50
	optionsLimit   = 500
)

var memberSorts = map[string]bool{
	"created_at": true, "name": true, "email": true, "status": true, "churn_risk": true,
}

type MemberFilter struct {
	Q      string
	Status string // active, inactive or all
}

type MemberOption struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Email *string `json:"email"`
}

type MemberDetails struct {
	Member      models.Member    `json:"member"`
	Checkins    []models.Checkin `json:"checkins"`
	OpenActions []models.Action  `json:"open_actions"`
}

type MemberRepo struct{ base }

func NewMembers(o Options) *MemberRepo { return &MemberRepo{newBase(o)} }

func (r *MemberRepo) List(ctx context.Context, tenantID string, f MemberFilter, s Sort, p Page) (ListResult[models.Member], error) {
	q := scoped(r.db.WithContext(ctx).Model(&models.Member{}), tenantID)
	q = search(q, f.Q, "name", "email")
	if st := models.MemberStatus(f.Status); st.Valid() {
		q = q.Where("status = ?", st)
	}
	return list[models.Member](q, s, memberSorts, p)
}

func (r *MemberRepo) Get(ctx context.Context, tenantID, id string) (models.Member, error) {
	return findMember(r.db.WithContext(ctx), tenantID, id)
}

func findMember(db *gorm.DB, tenantID, id string) (models.Member, error) {
	var m models.Member
	if !knownID(id) {
		return m, errs.ErrNotFound
	}
	err := scoped(db, tenantID).Where("id = ?", id).Take(&m).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return m, errs.ErrNotFound
	case err != nil:
		return m, store.Failure(err)
	}
	return m, nil
}

func (r *MemberRepo) Create(ctx context.Context, tenantID, actorID string, in validators.MemberInput) (string, error) {
	v, err := in.Validate()
	if err != nil {
		return "", err
	}
	m := models.Member{TenantID: tenantID, Name: v.Name, Email: v.Email, Status: models.MemberActive}
	if v.Status != "" {
		m.Status = v.Status
	}
	if v.ChurnRisk != nil {
		m.ChurnRisk = *v.ChurnRisk
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&m).Error; err != nil {
			return store.Failure(err)
		}
		return r.audit.Write(ctx, tx, audit.Entry{
			TenantID:    tenantID,
			ActorUserID: actorID,
			Action:      audit.MemberCreated,
			EntityType:  audit.EntityMembers,
			EntityID:    m.ID,
			Meta:        audit.Created(models.MemberTrackedFields, m.Snapshot()),
		})
	})
	if err != nil {
		return "", err
	}
	r.cache.Invalidate(tenantID, cache.ScopeMembers, cache.ScopeDashboard)
	return m.ID, nil
}

// Update overwrites name and email. Status and churn risk change only
// when supplied. Concurrent edits are last write wins.
func (r *MemberRepo) Update(ctx context.Context, tenantID, actorID, id string, in validators.MemberInput) (models.Member, error) {
	v, err := in.Validate()
	if err != nil {
		return models.Member{}, err
	}

	var after models.Member
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		before, err := findMember(tx, tenantID, id)
		if err != nil {
			return err
		}
		after = before
		after.Name, after.Email = v.Name, v.Email
		if v.Status != "" {
			after.Status = v.Status
		}
		if v.ChurnRisk != nil {
			after.ChurnRisk = *v.ChurnRisk
		}

		err = scoped(tx.Model(&models.Member{}), tenantID).Where("id = ?", id).Updates(map[string]any{
			"name":       after.Name,
			"email":      after.Email,
			"status":     after.Status,
			"churn_risk": after.ChurnRisk,
		}).Error
		if err != nil {
			return store.Failure(err)
		}
		return r.audit.Write(ctx, tx, audit.Entry{
			TenantID:    tenantID,
			ActorUserID: actorID,
			Action:      audit.MemberUpdated,
			EntityType:  audit.EntityMembers,
			EntityID:    id,
			Meta:        audit.Updated(models.MemberTrackedFields, before.Snapshot(), after.Snapshot()),
		})
	})
	if err != nil {
		return models.Member{}, err
	}
	r.cache.Invalidate(tenantID, cache.ScopeMembers, cache.ScopeDashboard)
	return r.Get(ctx, tenantID, id)
}

// SetStatusBulk sets status on every listed member of the tenant and
// writes one audit entry per existing row, no-ops included. Ids of other
// tenants are ignored. It returns the number of rows targeted.
func (r *MemberRepo) SetStatusBulk(ctx context.Context, tenantID, actorID string, in validators.StatusBulkInput) (int, error) {
	ids, status, err := in.MemberStatus()
	if err != nil {
		return 0, err
	}

	var n int
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []models.Member
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
			entries[i] = statusEntry(tenantID, actorID, audit.MemberStatusChanged, audit.EntityMembers, row.ID, string(row.Status), string(status))
		}
		err := scoped(tx.Model(&models.Member{}), tenantID).Where("id IN ?", found).Update("status", status).Error
		if err != nil {
			return store.Failure(err)
		}
		return r.audit.Write(ctx, tx, entries...)
	})
	if err != nil {
		return 0, err
	}
	if n > 0 {
		r.cache.Invalidate(tenantID, cache.ScopeMembers, cache.ScopeDashboard)
	}
	return n, nil
}

func (r *MemberRepo) Activate(ctx context.Context, tenantID, actorID, id string) error {
	return r.setOne(ctx, tenantID, actorID, id, models.MemberActive)
}

func (r *MemberRepo) Inactivate(ctx context.Context, tenantID, actorID, id string) error {
	return r.setOne(ctx, tenantID, actorID, id, models.MemberInactive)
}

func (r *MemberRepo) setOne(ctx context.Context, tenantID, actorID, id string, status models.MemberStatus) error {
	if !knownID(id) {
		return errs.ErrNotFound
	}
	n, err := r.SetStatusBulk(ctx, tenantID, actorID, validators.StatusBulkInput{IDs: []string{id}, Status: string(status)})
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// Details is the member page: the member, its latest check-ins and its
// pending actions by due date.
func (r *MemberRepo) Details(ctx context.Context, tenantID, id string) (MemberDetails, error) {
	db := r.db.WithContext(ctx)
	m, err := findMember(db, tenantID, id)
	if err != nil {
		return MemberDetails{}, err
	}

	d := MemberDetails{Member: m, Checkins: []models.Checkin{}, OpenActions: []models.Action{}}
	err = scoped(db, tenantID).Where("member_id = ?", id).
		Order("checked_in_at DESC").Limit(detailCheckins).
		Find(&d.Checkins).Error
	if err != nil {
		return MemberDetails{}, store.Failure(err)
	}
	err = scoped(db, tenantID).Where("member_id = ? AND status IN ?", id, []models.ActionStatus{models.ActionOpen, models.ActionInProgress}).
		Order(dueFirst).
		Find(&d.OpenActions).Error
	if err != nil {
		return MemberDetails{}, store.Failure(err)
	}
	return d, nil
}

// Options lists members for pickers, newest first.
func (r *MemberRepo) Options(ctx context.Context, tenantID string) ([]MemberOption, error) {
	out := []MemberOption{}
	err := scoped(r.db.WithContext(ctx).Model(&models.Member{}), tenantID).
		Select("id", "name", "email").
		Order("created_at DESC").
		Limit(optionsLimit).
		Find(&out).Error
	if err != nil {
		return nil, store.Failure(err)
	}
	return out, nil
}

func statusEntry(tenantID, actorID, action, entity, id, before, after string) audit.Entry {
	changed := []string{}
	if before != after {
		changed = append(changed, "status")
	}
	return audit.Entry{
		TenantID:    tenantID,
		ActorUserID: actorID,
		Action:      action,
		EntityType:  entity,
		EntityID:    id,
		Meta: models.AuditMeta{
			Before:        map[string]any{"status": before},
			After:         map[string]any{"status": after},
			FieldsChanged: changed,
		},
	}
}
