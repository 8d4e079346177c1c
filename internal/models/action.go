package models

import (
	"time"

	"gorm.io/gorm"
)

type ActionStatus string

const (
	ActionOpen       ActionStatus = "open"
	ActionInProgress ActionStatus = "in_progress"
	ActionDone       ActionStatus = "done"
)

func (s ActionStatus) Valid() bool {
	switch s {
	case ActionOpen, ActionInProgress, ActionDone:
		return true
	}
	return false
}

type ActionType string

const (
	ActionReactivation ActionType = "reactivation"
	ActionWelcome      ActionType = "welcome"
	ActionPayment      ActionType = "payment"
	ActionRenewal      ActionType = "renewal"
)

// ActionTypes mirrors the actions_type_check constraint.
var ActionTypes = []ActionType{ActionReactivation, ActionWelcome, ActionPayment, ActionRenewal}

type Action struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID  string         `gorm:"type:uuid;not null;index" json:"tenant_id"`
	MemberID  *string        `gorm:"type:uuid;index" json:"member_id"`
	Type      ActionType     `gorm:"not null;size:32" json:"type"`
	Title     string         `gorm:"not null;size:120" json:"title"`
	Status    ActionStatus   `gorm:"not null;size:16;default:open;index" json:"status"`
	DueAt     *time.Time     `gorm:"index" json:"due_at"`
	CreatedBy string         `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Member *Member `gorm:"foreignKey:MemberID" json:"member,omitempty"`
}

func (a *Action) BeforeCreate(*gorm.DB) error { assignID(&a.ID); return nil }

var ActionTrackedFields = []string{"title", "type", "status", "due_at", "member_id"}

func (a Action) Snapshot() map[string]any {
	var due any
	if a.DueAt != nil {
		due = a.DueAt.UTC().Format(time.RFC3339)
	}
	return map[string]any{
		"title":     a.Title,
		"type":      string(a.Type),
		"status":    string(a.Status),
		"due_at":    due,
		"member_id": derefString(a.MemberID),
	}
}
