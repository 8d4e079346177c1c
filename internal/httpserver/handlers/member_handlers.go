package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"gympulse/internal/auth"
	"gympulse/internal/repo"
	"gympulse/internal/validators"
)

func ListMembers(members *repo.MemberRepo, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		res, err := members.List(r.Context(), auth.Tenant(r.Context()).TenantID,
			repo.MemberFilter{Q: q.Get("q"), Status: q.Get("status")}, sortFrom(r), pageFrom(r))
		if err != nil {
			respondError(w, r, lg, err)
			return
		}
		respondList(w, res)
	}
}

func CreateMember(members *repo.MemberRepo, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in validators.MemberInput
		if err := decode(w, r, &in); err != nil {
			respondError(w, r, lg, err)
			return
		}
		tc := auth.Tenant(r.Context())
		id, err := members.Create(r.Context(), tc.TenantID, tc.UserID, in)
		if err != nil {
			respondError(w, r, lg, err)
			return
		}
		respondOK(w, http.StatusCreated, map[string]any{"id": id})
	}
}

// GetMember returns the member page: member, check-ins and pending actions.
func GetMember(members *repo.MemberRepo, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := members.Details(r.Context(), auth.Tenant(r.Context()).TenantID, chi.URLParam(r, "id"))
		if err != nil {
			respondError(w, r, lg, err)
			return
		}
		respondOK(w, http.StatusOK, map[string]any{
			"member":       d.Member,
			"checkins":     d.Checkins,
			"open_actions": d.OpenActions,
		})
	}
}

func UpdateMember(members *repo.MemberRepo, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in validators.MemberInput
		if err := decode(w, r, &in); err != nil {
			respondError(w, r, lg, err)
			return
		}
		tc := auth.Tenant(r.Context())
		m, err := members.Update(r.Context(), tc.TenantID, tc.UserID, chi.URLParam(r, "id"), in)
		if err != nil {
			respondError(w, r, lg, err)
			return
		}
		respondOK(w, http.StatusOK, map[string]any{"member": m})
	}
}

func SetMembersStatus(members *repo.MemberRepo, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in validators.StatusBulkInput
		if err := decode(w, r, &in); err != nil {
			respondError(w, r, lg, err)
			return
		}
		tc := auth.Tenant(r.Context())
		n, err := members.SetStatusBulk(r.Context(), tc.TenantID, tc.UserID, in)
		if err != nil {
			respondError(w, r, lg, err)
			return
		}
		respondOK(w, http.StatusOK, map[string]any{"updated": n})
	}
}

// SetMemberActive backs the single activate and inactivate buttons.
func SetMemberActive(members *repo.MemberRepo, active bool, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tc := auth.Tenant(r.Context())
		id := chi.URLParam(r, "id")
		var err error
		if active {
			err = members.Activate(r.Context(), tc.TenantID, tc.UserID, id)
		} else {
			err = members.Inactivate(r.Context(), tc.TenantID, tc.UserID, id)
		}
		if err != nil {
			respondError(w, r, lg, err)
			return
		}
		respondOK(w, http.StatusOK, nil)
	}
}

func MemberOptions(members *repo.MemberRepo, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := members.Options(r.Context(), auth.Tenant(r.Context()).TenantID)
		if err != nil {
			respondError(w, r, lg, err)
			return
		}
		respondOK(w, http.StatusOK, map[string]any{"rows": rows})
	}
}
