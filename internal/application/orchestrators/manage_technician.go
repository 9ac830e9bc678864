package orchestrators

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"fieldops/internal/domain/audit"
	"fieldops/internal/domain/taglist"
	"fieldops/internal/domain/team"
	"fieldops/internal/domain/technician"

	"github.com/google/uuid"
)

// TechnicianStoreForManage defines the store interface needed to create and update technicians.
type TechnicianStoreForManage interface {
	GetByID(ctx context.Context, id string) (technician.Technician, error)
	Save(ctx context.Context, t technician.Technician) error
}

// TeamLookup resolves team references.
type TeamLookup interface {
	GetByID(ctx context.Context, id string) (team.Team, error)
}

// SaveTechnicianInput carries input for creating or updating a technician.
// Skills are only read on create; afterwards they are edited through a tag editor.
type SaveTechnicianInput struct {
	ID     string // empty creates a new technician
	Name   string
	Email  string
	TeamID string
	Skills []string
	Active bool
}

// SaveTechnicianDeps holds dependencies for SaveTechnician.
type SaveTechnicianDeps struct {
	TechnicianStore TechnicianStoreForManage
	TeamStore       TeamLookup
	AuditStore      AuditStoreForOrchestrator
	Policy          taglist.Policy
}

// ExecuteSaveTechnician creates a technician or updates their details.
// PRE: actor can manage; TeamID, when set, names an existing team
// POST: the validated technician is persisted and returned
func ExecuteSaveTechnician(ctx context.Context, input SaveTechnicianInput, actor Actor, deps SaveTechnicianDeps) (technician.Technician, error) {
	if !actor.CanManage() {
		return technician.Technician{}, ErrForbidden
	}
	if input.TeamID != "" {
		if _, err := deps.TeamStore.GetByID(ctx, input.TeamID); err != nil {
			return technician.Technician{}, err
		}
	}

	action := audit.ActionUpdate
	var t technician.Technician
	if input.ID == "" {
		action = audit.ActionCreate
		t = technician.Technician{
			ID:        uuid.New().String(),
			Skills:    taglist.Dedupe(input.Skills, deps.Policy),
			CreatedAt: time.Now(),
		}
	} else {
		existing, err := deps.TechnicianStore.GetByID(ctx, input.ID)
		if err != nil {
			return technician.Technician{}, err
		}
		t = existing
	}
	t.Name = strings.TrimSpace(input.Name)
	t.Email = strings.TrimSpace(input.Email)
	t.TeamID = input.TeamID
	t.Active = input.Active

	if err := t.Validate(deps.Policy); err != nil {
		return technician.Technician{}, invalid(err)
	}
	if err := deps.TechnicianStore.Save(ctx, t); err != nil {
		return technician.Technician{}, err
	}

	recordAudit(ctx, deps.AuditStore, actor, audit.CategoryTechnician, action, "technician", t.ID, t.Name)
	slog.Info("technician_event", "event", string(action), "technician_id", t.ID, "team_id", t.TeamID)
	return t, nil
}
