package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"gympulse/internal/auth"
	"gympulse/internal/repo"
	"gympulse/internal/validators"
)

func ListActions(actions *repo.ActionRepo, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		f := repo.ActionFilter{Q: q.Get("q"), Status: q.Get("status"), Type: q.Get("type"), Due: q.Get("due")}
		res, err := actions.List(r.Context(), auth.Tenant(r.Context()).TenantID, f, sortFrom(r), pageFrom(r))
		if err != nil {
			respondError(w, r, lg, err)
			return
		}
		respondList(w, res)
	}
}

func ActionTypes(actions *repo.ActionRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondOK(w, http.StatusOK, map[string]any{"rows": actions.Types()})
	}
}

func CreateAction(actions *repo.ActionRepo, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in validators.ActionInput
		if err := decode(w, r, &in); err != nil {
			respondError(w, r, lg, err)
			return
		}
		tc := auth.Tenant(r.Context())
		id, err := actions.Create(r.Context(), tc.TenantID, tc.UserID, in)
		if err != nil {
			respondError(w, r, lg, err)
			return
		}
		respondOK(w, http.StatusCreated, map[string]any{"id": id})
	}
}

func GetAction(actions *repo.ActionRepo, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := actions.Get(r.Context(), auth.Tenant(r.Context()).TenantID, chi.URLParam(r, "id"))
		if err != nil {
			respondError(w, r, lg, err)
			return
		}
		respondOK(w, http.StatusOK, map[string]any{"action": a})
	}
}

func UpdateAction(actions *repo.ActionRepo, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in validators.ActionInput
		if err := decode(w, r, &in); err != nil {
			respondError(w, r, lg, err)
			return
		}
		tc := auth.Tenant(r.Context())
		a, err := actions.Update(r.Context(), tc.TenantID, tc.UserID, chi.URLParam(r, "id"), in)
		if err != nil {
			respondError(w, r, lg, err)
			return
		}
		respondOK(w, http.StatusOK, map[string]any{"action": a})
	}
}

func DeleteAction(actions *repo.ActionRepo, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tc := auth.Tenant(r.Context())
		if err := actions.Delete(r.Context(), tc.TenantID, tc.UserID, chi.URLParam(r, "id")); err != nil {
			respondError(w, r, lg, err)
			return
		}
		respondOK(w, http.StatusOK, map[string]any{"deleted": true})
	}
}

func SetActionsStatus(actions *repo.ActionRepo, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in validators.StatusBulkInput
		if err := decode(w, r, &in); err != nil {
			respondError(w, r, lg, err)
			return
		}
		tc := auth.Tenant(r.Context())
		n, err := actions.SetStatusBulk(r.Context(), tc.TenantID, tc.UserID, in)
		if err != nil {
			respondError(w, r, lg, err)
			return
		}
		respondOK(w, http.StatusOK, map[string]any{"updated": n})
	}
}
