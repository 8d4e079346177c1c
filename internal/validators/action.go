package validators

import (
	"strings"
	"time"

	"gympulse/internal/errs"
	"gympulse/internal/models"
)

const actionStatuses = "open in_progress done"

// ActionInput is the create/edit drawer of an action.
type ActionInput struct {
	Title    string  `json:"title" validate:"required,max=120"`
	Type     string  `json:"type"`
	MemberID *string `json:"member_id" validate:"omitempty,uuid"`
	DueAt    *string `json:"due_at"`
}

type ActionFields struct {
	Title    string
	Type     models.ActionType
	MemberID *string
	DueAt    *time.Time
}

// Validate checks the input. Dates without a time are midnight in loc.
func (in ActionInput) Validate(loc *time.Location) (ActionFields, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.MemberID = optional(in.MemberID)
	if err := check(in); err != nil {
		return ActionFields{}, err
	}
	out := ActionFields{Title: in.Title, MemberID: in.MemberID}

	t, ok := NormalizeType(in.Type)
	if !ok {
		return out, errs.Validation("type", "select a valid type")
	}
	out.Type = t

	if raw := optional(in.DueAt); raw != nil {
		due, err := ParseDueAt(*raw, loc)
		if err != nil {
			return out, err
		}
		out.DueAt = &due
	}
	return out, nil
}

var typeAliases = map[string]models.ActionType{
	"reativacao":  models.ActionReactivation,
	"reativação":  models.ActionReactivation,
	"boas vindas": models.ActionWelcome,
	"boas-vindas": models.ActionWelcome,
	"pagamento":   models.ActionPayment,
	"renovacao":   models.ActionRenewal,
	"renovação":   models.ActionRenewal,
}

// NormalizeType maps a free-form type, including common Portuguese
// labels, onto the fixed type set.
func NormalizeType(raw string) (models.ActionType, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "", false
	}
	for _, t := range models.ActionTypes {
		if string(t) == s {
			return t, true
		}
	}
	t, ok := typeAliases[s]
	return t, ok
}

// ParseDueAt accepts yyyy-mm-dd (local midnight in loc) or RFC 3339 and
// returns the instant in UTC.
func ParseDueAt(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	var (
		t   time.Time
		err error
	)
	if validate.Var(s, "datetime="+time.DateOnly) == nil {
		t, err = time.ParseInLocation(time.DateOnly, s, loc)
	} else {
		t, err = time.Parse(time.RFC3339, s)
	}
	if err != nil {
		return time.Time{}, errs.Validation("due_at", "invalid due date")
	}
	return t.UTC(), nil
}

// ActionStatus validates the target of a bulk status change.
func (in StatusBulkInput) ActionStatus() ([]string, models.ActionStatus, error) {
	in, err := in.target(actionStatuses)
	if err != nil {
		return nil, "", err
	}
	return in.IDs, models.ActionStatus(in.Status), nil
}
