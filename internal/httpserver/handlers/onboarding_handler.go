package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"gympulse/internal/auth"
	"gympulse/internal/tenancy"
)

type onboardReq struct {
	Company  string `json:"company"`
	FullName string `json:"full_name"`
}

// Onboard provisions the caller's tenant. Repeating it returns the same
// tenant with 200 instead of 201.
func Onboard(o *tenancy.Onboarder, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req onboardReq
		if err := decode(w, r, &req); err != nil {
			respondError(w, r, lg, err)
			return
		}
		res, err := o.Onboard(r.Context(), tenancy.OnboardInput{
			UserID:   auth.Subject(r.Context()),
			Company:  req.Company,
			FullName: req.FullName,
		})
		if err != nil {
			respondError(w, r, lg, err)
			return
		}
		status := http.StatusOK
		if res.Created {
			status = http.StatusCreated
		}
		respondOK(w, status, map[string]any{"tenant": res})
	}
}
