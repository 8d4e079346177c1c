// Package tenancy resolves the tenant of an authenticated user and
// onboards users that have none yet.
package tenancy

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"gympulse/internal/errs"
	"gympulse/internal/models"
	"gympulse/internal/store"
)

// Context is the resolved tenant of the acting user.
type Context struct {
	UserID   string      `json:"user_id"`
	TenantID string      `json:"tenant_id"`
	Role     models.Role `json:"role"`
}

type Resolver struct {
	db *gorm.DB
}

func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db}
}

// Resolve returns the earliest tenant membership of userID.
func (r *Resolver) Resolve(ctx context.Context, userID string) (Context, error) {
	if userID == "" {
		return Context{}, errs.ErrUnauthenticated
	}

	role, err := findRole(r.db.WithContext(ctx), userID)
	if err != nil {
		return Context{}, err
	}
	return Context{UserID: userID, TenantID: role.TenantID, Role: role.Role}, nil
}

func findRole(db *gorm.DB, userID string) (models.TenantRole, error) {
	var role models.TenantRole
	err := db.Where("user_id = ?", userID).
		Order("created_at ASC").
		Limit(1).
		Take(&role).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return role, errs.ErrNeedsOnboarding
	case err != nil:
		return role, store.Failure(err)
	}
	return role, nil
}
