package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"gympulse/internal/auth"
	"gympulse/internal/models"
	"gympulse/internal/store"
)

// Settings returns the tenant, the caller's role and the tenant settings.
// Settings are seeded best-effort, so a missing row is reported as null.
func Settings(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tc := auth.Tenant(r.Context())
		db := db.WithContext(r.Context())

		var tenant models.Tenant
		if err := db.First(&tenant, "id = ?", tc.TenantID).Error; err != nil {
			respondError(w, r, lg, store.Failure(err))
			return
		}

		var settings *models.TenantSettings
		var s models.TenantSettings
		err := db.First(&s, "tenant_id = ?", tc.TenantID).Error
		switch {
		case err == nil:
			settings = &s
		case !errors.Is(err, gorm.ErrRecordNotFound):
			respondError(w, r, lg, store.Failure(err))
			return
		}
		respondOK(w, http.StatusOK, map[string]any{"tenant": tenant, "role": tc.Role, "settings": settings})
	}
}
