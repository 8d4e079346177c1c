package validators

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gympulse/internal/errs"
	"gympulse/internal/models"
)

func ptr[T any](v T) *T { return &v }

const someID = "3f1c2a7e-8d44-4f6a-9b51-0c2e7d9a1b23"

func fieldOf(t *testing.T, err error) string {
	t.Helper()
	var v *errs.ValidationError
	require.ErrorAs(t, err, &v)
	return v.Field
}

func TestMemberInput_Validate(t *testing.T) {
	got, err := MemberInput{Name: "  Ana Souza ", Email: ptr(" ana@example.com "), ChurnRisk: ptr(42.6)}.Validate()
	require.NoError(t, err)
	assert.Equal(t, "Ana Souza", got.Name)
	assert.Equal(t, "ana@example.com", *got.Email)
	assert.Empty(t, got.Status)
	assert.Equal(t, 43, *got.ChurnRisk)

	got, err = MemberInput{Name: "Bo", Email: ptr("  ")}.Validate()
	require.NoError(t, err)
	assert.Nil(t, got.Email, "blank email is no email")
	assert.Nil(t, got.ChurnRisk)

	tests := []struct {
		name  string
		in    MemberInput
		field string
	}{
		{"short name", MemberInput{Name: "A"}, "name"},
		{"long name", MemberInput{Name: strings.Repeat("a", 121)}, "name"},
		{"bad email", MemberInput{Name: "Ana", Email: ptr("not-an-email")}, "email"},
		{"display name email", MemberInput{Name: "Ana", Email: ptr("Ana <ana@example.com>")}, "email"},
		{"long email", MemberInput{Name: "Ana", Email: ptr(strings.Repeat("a", 250) + "@x.com")}, "email"},
		{"bad status", MemberInput{Name: "Ana", Status: "paused"}, "status"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.in.Validate()
			assert.Equal(t, tt.field, fieldOf(t, err))
		})
	}
}

func TestClampRisk(t *testing.T) {
	assert.Equal(t, 100, ClampRisk(150))
	assert.Equal(t, 0, ClampRisk(-5))
	assert.Equal(t, 50, ClampRisk(49.5))
	assert.Equal(t, 0, ClampRisk(math.NaN()))
	assert.Equal(t, 0, ClampRisk(math.Inf(1)))
}

func TestNormalizeType(t *testing.T) {
	tests := map[string]models.ActionType{
		"reactivation": models.ActionReactivation,
		" Welcome ":    models.ActionWelcome,
		"Reativação":   models.ActionReactivation,
		"reativacao":   models.ActionReactivation,
		"boas vindas":  models.ActionWelcome,
		"Boas-Vindas":  models.ActionWelcome,
		"pagamento":    models.ActionPayment,
		"renovação":    models.ActionRenewal,
	}
	for in, want := range tests {
		got, ok := NormalizeType(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "call", "renew"} {
		_, ok := NormalizeType(in)
		assert.False(t, ok, in)
	}
}

func TestParseDueAt(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	got, err := ParseDueAt("2026-10-15", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 15, 3, 0, 0, 0, time.UTC), got)

	got, err = ParseDueAt("2026-10-15T12:30:00-03:00", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 15, 15, 30, 0, 0, time.UTC), got)

	for _, in := range []string{"15/10/2026", "2026-13-01", "tomorrow"} {
		_, err := ParseDueAt(in, loc)
		assert.True(t, errs.IsValidation(err), in)
	}
}

func TestActionInput_Validate(t *testing.T) {
	got, err := ActionInput{
		Title:    " Call about renewal ",
		Type:     "renovacao",
		MemberID: ptr(someID),
		DueAt:    ptr("2026-10-20"),
	}.Validate(time.UTC)
	require.NoError(t, err)
	assert.Equal(t, "Call about renewal", got.Title)
	assert.Equal(t, models.ActionRenewal, got.Type)
	assert.Equal(t, someID, *got.MemberID)
	assert.Equal(t, time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC), *got.DueAt)

	got, err = ActionInput{Title: "x", Type: "welcome", MemberID: ptr(""), DueAt: ptr(" ")}.Validate(time.UTC)
	require.NoError(t, err)
	assert.Nil(t, got.MemberID)
	assert.Nil(t, got.DueAt)

	tests := []struct {
		name  string
		in    ActionInput
		field string
	}{
		{"no title", ActionInput{Title: "  ", Type: "welcome"}, "title"},
		{"long title", ActionInput{Title: strings.Repeat("t", 121), Type: "welcome"}, "title"},
		{"no type", ActionInput{Title: "t"}, "type"},
		{"unknown type", ActionInput{Title: "t", Type: "call"}, "type"},
		{"bad member", ActionInput{Title: "t", Type: "welcome", MemberID: ptr("42")}, "member_id"},
		{"bad due", ActionInput{Title: "t", Type: "welcome", DueAt: ptr("soon")}, "due_at"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.in.Validate(time.UTC)
			assert.Equal(t, tt.field, fieldOf(t, err))
		})
	}
}

func TestStatusBulkInput(t *testing.T) {
	other := "9a0b7c6d-5e4f-4a3b-8c2d-1e0f9a8b7c6d"

	ids, st, err := StatusBulkInput{IDs: []string{someID, other, someID}, Status: "done"}.ActionStatus()
	require.NoError(t, err)
	assert.Equal(t, []string{someID, other}, ids)
	assert.Equal(t, models.ActionDone, st)

	ids, ms, err := StatusBulkInput{IDs: []string{someID}, Status: "inactive"}.MemberStatus()
	require.NoError(t, err)
	assert.Equal(t, []string{someID}, ids)
	assert.Equal(t, models.MemberInactive, ms)

	_, _, err = StatusBulkInput{Status: "done"}.ActionStatus()
	assert.Equal(t, "ids", fieldOf(t, err))
	_, _, err = StatusBulkInput{IDs: []string{"x"}, Status: "done"}.ActionStatus()
	assert.Equal(t, "ids", fieldOf(t, err))
	_, _, err = StatusBulkInput{IDs: []string{someID}, Status: "done"}.MemberStatus()
	assert.Equal(t, "status", fieldOf(t, err))
}

func TestFieldErrorsUseJSONNames(t *testing.T) {
	_, err := MemberInput{Name: "Ana", Status: "Paused"}.Validate()
	var v *errs.ValidationError
	require.ErrorAs(t, err, &v)
	assert.Equal(t, "status", v.Field)
	assert.Equal(t, "invalid status", v.Message)

	_, err = MemberInput{Name: strings.Repeat("é", 121)}.Validate()
	require.ErrorAs(t, err, &v)
	assert.Equal(t, "name is too long (max 120)", v.Message)

	_, err = MemberInput{Name: strings.Repeat("é", 120)}.Validate()
	assert.NoError(t, err, "length counts characters, not bytes")

	_, _, err = StatusBulkInput{IDs: []string{someID, "nope"}, Status: "done"}.ActionStatus()
	require.ErrorAs(t, err, &v)
	assert.Equal(t, "ids", v.Field)
	assert.Equal(t, "invalid id", v.Message)

	_, err = ActionInput{Title: "t", Type: "welcome", MemberID: ptr("42")}.Validate(time.UTC)
	require.ErrorAs(t, err, &v)
	assert.Equal(t, "invalid member", v.Message)
}

func TestStatusBulkInput_TrimsIDs(t *testing.T) {
	ids, st, err := StatusBulkInput{IDs: []string{" " + someID, someID + " "}, Status: " active "}.MemberStatus()
	require.NoError(t, err)
	assert.Equal(t, []string{someID}, ids)
	assert.Equal(t, models.MemberActive, st)
}

func TestValidEmailAndUUID(t *testing.T) {
	assert.True(t, ValidEmail("ana@example.com"))
	assert.False(t, ValidEmail(""))
	assert.False(t, ValidEmail("Ana <ana@example.com>"))
	assert.False(t, ValidEmail(strings.Repeat("a", 250)+"@x.com"))

	assert.True(t, ValidUUID(someID))
	assert.False(t, ValidUUID(""))
	assert.False(t, ValidUUID("42"))
}
