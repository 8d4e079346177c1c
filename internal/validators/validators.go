// Package validators turns loosely shaped request bodies into checked,
// normalized inputs. Nothing is written before these succeed.
package validators

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"gympulse/internal/errs"
)

var validate = newValidate()

// newValidate reports fields by their json names.
func newValidate() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// check validates v and returns the first failure as a ValidationError.
func check(v any) error {
	var fields validator.ValidationErrors
	if err := validate.Struct(v); !errors.As(err, &fields) {
		return err
	}
	return fieldError(fields[0])
}

var messages = map[string]string{
	"ids.min":        "select at least one item",
	"ids.uuid":       "invalid id",
	"member_id.uuid": "invalid member",
}

func fieldError(fe validator.FieldError) error {
	field, _, _ := strings.Cut(fe.Field(), "[")
	if msg, ok := messages[field+"."+fe.Tag()]; ok {
		return errs.Validation(field, msg)
	}
	var msg string
	switch fe.Tag() {
	case "required":
		msg = field + " is required"
	case "min":
		msg = fmt.Sprintf("%s must have at least %s characters", field, fe.Param())
	case "max":
		msg = fmt.Sprintf("%s is too long (max %s)", field, fe.Param())
	default:
		msg = "invalid " + field
	}
	return errs.Validation(field, msg)
}

// optional trims s and maps blank to nil.
func optional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// ValidEmail reports whether s is a bare address such as ana@example.com.
func ValidEmail(s string) bool {
	return validate.Var(s, "required,max=254,email") == nil
}

// ValidUUID reports whether s is a canonical UUID.
func ValidUUID(s string) bool {
	return validate.Var(s, "required,uuid") == nil
}

// StatusBulkInput targets several rows with one new status.
type StatusBulkInput struct {
	IDs    []string `json:"ids" validate:"min=1,dive,uuid"`
	Status string   `json:"status" validate:"required"`
}

// normalize trims the targets and drops duplicates, keeping their order.
func (in StatusBulkInput) normalize() StatusBulkInput {
	seen := make(map[string]struct{}, len(in.IDs))
	ids := make([]string, 0, len(in.IDs))
	for _, id := range in.IDs {
		id = strings.TrimSpace(id)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return StatusBulkInput{IDs: ids, Status: strings.TrimSpace(in.Status)}
}

// target validates the bulk input and checks the status against a oneof list.
func (in StatusBulkInput) target(statuses string) (StatusBulkInput, error) {
	in = in.normalize()
	if err := check(in); err != nil {
		return in, err
	}
	if err := validate.Var(in.Status, "oneof="+statuses); err != nil {
		return in, errs.Validation("status", "invalid status")
	}
	return in, nil
}
