package models

import (
	"time"

	"gorm.io/gorm"
)

type MemberStatus string

const (
	MemberActive   MemberStatus = "active"
	MemberInactive MemberStatus = "inactive"
)

func (s MemberStatus) Valid() bool {
	return s == MemberActive || s == MemberInactive
}

type Member struct {
	ID        string       `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID  string       `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Name      string       `gorm:"not null;size:120" json:"name"`
	Email     *string      `gorm:"size:254" json:"email"`
	Status    MemberStatus `gorm:"not null;size:16;default:active;index" json:"status"`
	ChurnRisk int          `gorm:"not null;default:0" json:"churn_risk"`
	CreatedAt time.Time    `gorm:"index" json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

func (m *Member) BeforeCreate(*gorm.DB) error { assignID(&m.ID); return nil }

// MemberTrackedFields is the audited column set, in reporting order.
var MemberTrackedFields = []string{"name", "email", "status", "churn_risk"}

func (m Member) Snapshot() map[string]any {
	return map[string]any{
		"name":       m.Name,
		"email":      derefString(m.Email),
		"status":     string(m.Status),
		"churn_risk": m.ChurnRisk,
	}
}

func derefString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
