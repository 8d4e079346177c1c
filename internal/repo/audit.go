package repo

import (
	"context"

	"gympulse/internal/models"
)

type AuditFilter struct {
	EntityType  string
	EntityID    string
	ActorUserID string
}

// AuditRepo reads the audit log of a tenant.
type AuditRepo struct{ base }

func NewAudit(o Options) *AuditRepo { return &AuditRepo{newBase(o)} }

// List returns entries newest first.
func (r *AuditRepo) List(ctx context.Context, tenantID string, f AuditFilter, p Page) (ListResult[models.AuditLog], error) {
	if (f.EntityID != "" && !knownID(f.EntityID)) || (f.ActorUserID != "" && !knownID(f.ActorUserID)) {
		return emptyResult[models.AuditLog](p), nil
	}
	q := scoped(r.db.WithContext(ctx).Model(&models.AuditLog{}), tenantID)
	if f.EntityType != "" {
		q = q.Where("entity_type = ?", f.EntityType)
	}
	if f.EntityID != "" {
		q = q.Where("entity_id = ?", f.EntityID)
	}
	if f.ActorUserID != "" {
		q = q.Where("actor_user_id = ?", f.ActorUserID)
	}
	return list[models.AuditLog](q, Sort{}, nil, p)
}
