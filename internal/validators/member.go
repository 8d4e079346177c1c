package validators

import (
	"math"
	"strings"

	"gympulse/internal/models"
)

const (
	minRisk = 0
	maxRisk = 100

	memberStatuses = "active inactive"
)

// MemberInput is the create/edit form of a member. Status and ChurnRisk
// are optional: create defaults them, update keeps the stored value.
type MemberInput struct {
	Name      string   `json:"name" validate:"required,min=2,max=120"`
	Email     *string  `json:"email" validate:"omitempty,max=254,email"`
	Status    string   `json:"status" validate:"omitempty,oneof=active inactive"`
	ChurnRisk *float64 `json:"churn_risk"`
}

type MemberFields struct {
	Name      string
	Email     *string
	Status    models.MemberStatus // empty when not supplied
	ChurnRisk *int
}

func (in MemberInput) Validate() (MemberFields, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = optional(in.Email)
	in.Status = strings.ToLower(strings.TrimSpace(in.Status))
	if err := check(in); err != nil {
		return MemberFields{}, err
	}

	out := MemberFields{Name: in.Name, Email: in.Email, Status: models.MemberStatus(in.Status)}
	if in.ChurnRisk != nil {
		r := ClampRisk(*in.ChurnRisk)
		out.ChurnRisk = &r
	}
	return out, nil
}

// ClampRisk rounds v and forces it into [0,100]. Non-finite input is 0.
func ClampRisk(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return minRisk
	}
	return int(math.Round(math.Max(minRisk, math.Min(maxRisk, v))))
}

// MemberStatus validates the target of a bulk status change.
func (in StatusBulkInput) MemberStatus() ([]string, models.MemberStatus, error) {
	in, err := in.target(memberStatuses)
	if err != nil {
		return nil, "", err
	}
	return in.IDs, models.MemberStatus(in.Status), nil
}
