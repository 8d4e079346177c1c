package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"gympulse/internal/auth"
	"gympulse/internal/repo"
)

func CreateCheckin(checkins *repo.CheckinRepo, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := checkins.Create(r.Context(), auth.Tenant(r.Context()).TenantID, chi.URLParam(r, "id"))
		if err != nil {
			respondError(w, r, lg, err)
			return
		}
		respondOK(w, http.StatusCreated, map[string]any{"checkin": c})
	}
}

func ListMemberCheckins(checkins *repo.CheckinRepo, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := checkins.ListForMember(r.Context(), auth.Tenant(r.Context()).TenantID, chi.URLParam(r, "id"), queryInt(r, "limit"))
		if err != nil {
			respondError(w, r, lg, err)
			return
		}
		respondOK(w, http.StatusOK, map[string]any{"rows": rows})
	}
}

func ListCheckins(checkins *repo.CheckinRepo, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f := repo.CheckinFilter{MemberID: r.URL.Query().Get("member_id")}
		res, err := checkins.List(r.Context(), auth.Tenant(r.Context()).TenantID, f, pageFrom(r))
		if err != nil {
			respondError(w, r, lg, err)
			return
		}
		respondList(w, res)
	}
}
