package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// AuditMeta is the before/after snapshot stored with every audit entry.
// Before is nil for creations, After is nil for deletions.
type AuditMeta struct {
	Before        map[string]any `json:"before"`
	After         map[string]any `json:"after"`
	FieldsChanged []string       `json:"fieldsChanged"`
}

// DeletedMarker is the fieldsChanged value of a deletion entry.
const DeletedMarker = "__deleted__"

func (AuditMeta) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "jsonb"
	}
	return "json"
}

func (m AuditMeta) Value() (driver.Value, error) {
	if m.FieldsChanged == nil {
		m.FieldsChanged = []string{}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("audit meta value: %w", err)
	}
	return string(b), nil
}

func (m *AuditMeta) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*m = AuditMeta{}
		return nil
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("audit meta scan: unsupported type %T", value)
	}
}
