package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

func assignID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

type User struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	FullName     string    `gorm:"size:120" json:"full_name"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(*gorm.DB) error { assignID(&u.ID); return nil }

type Session struct {
	JTI       string     `gorm:"primaryKey;size:64" json:"jti"`
	UserID    string     `gorm:"type:uuid;index;not null" json:"user_id"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type Tenant struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Slug      string    `gorm:"uniqueIndex;not null;size:64" json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

func (t *Tenant) BeforeCreate(*gorm.DB) error { assignID(&t.ID); return nil }

// TenantRole links a user to a tenant. user_id is unique: a user belongs to
// exactly one tenant and concurrent onboarding converges on that row.
type TenantRole struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID  string    `gorm:"type:uuid;not null;index" json:"tenant_id"`
	UserID    string    `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	Role      Role      `gorm:"not null;size:16" json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func (r *TenantRole) BeforeCreate(*gorm.DB) error { assignID(&r.ID); return nil }

type TenantSettings struct {
	TenantID    string            `gorm:"type:uuid;primaryKey" json:"tenant_id"`
	Timezone    string            `gorm:"not null;size:64" json:"timezone"`
	Locale      string            `gorm:"not null;size:16" json:"locale"`
	Preferences datatypes.JSONMap `json:"preferences"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func (TenantSettings) TableName() string { return "tenant_settings" }

type Checkin struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID    string    `gorm:"type:uuid;not null;index" json:"tenant_id"`
	MemberID    string    `gorm:"type:uuid;not null;index" json:"member_id"`
	CheckedInAt time.Time `gorm:"not null;index" json:"checked_in_at"`
	CreatedAt   time.Time `json:"created_at"`
}

func (c *Checkin) BeforeCreate(*gorm.DB) error { assignID(&c.ID); return nil }

type AuditLog struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID    string    `gorm:"type:uuid;not null;index" json:"tenant_id"`
	ActorUserID string    `gorm:"type:uuid;not null" json:"actor_user_id"`
	Action      string    `gorm:"not null;size:64" json:"action"`
	EntityType  string    `gorm:"not null;size:32;index:idx_audit_entity" json:"entity_type"`
	EntityID    string    `gorm:"type:uuid;not null;index:idx_audit_entity" json:"entity_id"`
	Meta        AuditMeta `json:"meta"`
	CreatedAt   time.Time `json:"created_at"`
}

func (AuditLog) TableName() string { return "audit_log" }

// All lists every table in dependency order.
var All = []any{
	&User{}, &Session{}, &Tenant{}, &TenantRole{}, &TenantSettings{},
	&Member{}, &Action{}, &Checkin{}, &AuditLog{},
}
