// Package audit appends who-changed-what entries to the audit_log table.
// Entries are never updated or deleted.
package audit

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"gympulse/internal/config"
	"gympulse/internal/metrics"
	"gympulse/internal/models"
	"gympulse/internal/store"
)

// Entity types and actions written by the repositories.
const (
	EntityMembers = "members"
	EntityActions = "actions"

	MemberCreated       = "members.created"
	MemberUpdated       = "members.updated"
	MemberStatusChanged = "members.status_changed"

	ActionCreated       = "actions.created"
	ActionUpdated       = "actions.updated"
	ActionStatusChanged = "actions.status_changed"
	ActionDeleted       = "actions.deleted"
)

type Entry struct {
	TenantID    string
	ActorUserID string
	Action      string
	EntityType  string
	EntityID    string
	Meta        models.AuditMeta
}

type Logger struct {
	lg      *zap.SugaredLogger
	metrics *metrics.Metrics
	strict  bool
}

// New builds a logger with the given policy, strict unless policy is
// config.AuditBestEffort.
func New(lg *zap.SugaredLogger, m *metrics.Metrics, policy string) *Logger {
	return &Logger{lg: lg, metrics: m, strict: policy != config.AuditBestEffort}
}

// Append inserts one entry through db, which may be a transaction.
func (l *Logger) Append(ctx context.Context, db *gorm.DB, e Entry) error {
	row := models.AuditLog{
		TenantID:    e.TenantID,
		ActorUserID: e.ActorUserID,
		Action:      e.Action,
		EntityType:  e.EntityType,
		EntityID:    e.EntityID,
		Meta:        e.Meta,
	}
	if err := db.WithContext(ctx).Create(&row).Error; err != nil {
		return store.Failure(err)
	}
	l.metrics.AuditEntry(e.Action)
	return nil
}

// Write appends entries under the configured policy. Strict returns the
// first failure so the caller's transaction rolls back. Best effort
// isolates the inserts in a savepoint and only logs a failure.
func (l *Logger) Write(ctx context.Context, tx *gorm.DB, entries ...Entry) error {
	if l.strict {
		for _, e := range entries {
			if err := l.Append(ctx, tx, e); err != nil {
				return err
			}
		}
		return nil
	}

	for _, e := range entries {
		err := tx.Transaction(func(sp *gorm.DB) error {
			return l.Append(ctx, sp, e)
		})
		if err != nil {
			l.lg.Warnw("audit write failed", "action", e.Action, "entity_id", e.EntityID, "tenant_id", e.TenantID, "error", err)
			l.metrics.BestEffortFailure("audit_log")
		}
	}
	return nil
}

// Diff lists the tracked fields whose values differ between snapshots.
func Diff(fields []string, before, after map[string]any) []string {
	changed := []string{}
	for _, f := range fields {
		if !equal(before[f], after[f]) {
			changed = append(changed, f)
		}
	}
	return changed
}

func equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a == b
}

// Created builds the meta of a creation: every tracked field is new.
func Created(fields []string, after map[string]any) models.AuditMeta {
	return models.AuditMeta{After: after, FieldsChanged: append([]string(nil), fields...)}
}

// Updated builds the meta of an update.
func Updated(fields []string, before, after map[string]any) models.AuditMeta {
	return models.AuditMeta{Before: before, After: after, FieldsChanged: Diff(fields, before, after)}
}

// Deleted builds the meta of a deletion.
func Deleted(before map[string]any) models.AuditMeta {
	return models.AuditMeta{Before: before, FieldsChanged: []string{models.DeletedMarker}}
}
