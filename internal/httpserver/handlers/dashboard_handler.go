package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"gympulse/internal/auth"
	"gympulse/internal/dashboard"
)

func Dashboard(agg *dashboard.Aggregator, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		k, err := agg.ComputeKpis(r.Context(), auth.Tenant(r.Context()).TenantID)
		if err != nil {
			respondError(w, r, lg, err)
			return
		}
		respondOK(w, http.StatusOK, map[string]any{"kpis": k})
	}
}
