package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"gympulse/internal/auth"
	"gympulse/internal/repo"
)

// AuditLogs pages through the tenant's audit trail, newest first.
func AuditLogs(audits *repo.AuditRepo, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		f := repo.AuditFilter{EntityType: q.Get("entity_type"), EntityID: q.Get("entity_id"), ActorUserID: q.Get("actor")}
		res, err := audits.List(r.Context(), auth.Tenant(r.Context()).TenantID, f, pageFrom(r))
		if err != nil {
			respondError(w, r, lg, err)
			return
		}
		respondList(w, res)
	}
}
