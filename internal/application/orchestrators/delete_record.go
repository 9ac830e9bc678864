package orchestrators

import (
	"context"
	"log/slog"

	"fieldops/internal/domain/audit"
)

// RecordDeleter removes a stored record by ID.
type RecordDeleter interface {
	Delete(ctx context.Context, id string) error
}

// DeleteRecordDeps holds dependencies for DeleteRecord.
// Exists returns storage.ErrNotFound for an unknown ID.
type DeleteRecordDeps struct {
	Store        RecordDeleter
	Exists       func(ctx context.Context, id string) error
	AuditStore   AuditStoreForOrchestrator
	Category     audit.Category
	ResourceType string
}

// ExecuteDeleteRecord deletes a team, technician, client or contract.
// PRE: actor can manage
// POST: the record is gone and an audit event names it; an unknown ID fails with storage.ErrNotFound
func ExecuteDeleteRecord(ctx context.Context, id string, actor Actor, deps DeleteRecordDeps) error {
	if !actor.CanManage() {
		return ErrForbidden
	}
	if deps.Exists != nil {
		if err := deps.Exists(ctx, id); err != nil {
			return err
		}
	}
	if err := deps.Store.Delete(ctx, id); err != nil {
		return err
	}
	recordAudit(ctx, deps.AuditStore, actor, deps.Category, audit.ActionDelete, deps.ResourceType, id, "")
	slog.Info(deps.ResourceType+"_event", "event", "delete", "id", id, "actor_id", actor.AccountID)
	return nil
}
