package orchestrators

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"fieldops/internal/domain/audit"
	"fieldops/internal/domain/taglist"
	"fieldops/internal/domain/team"

	"github.com/google/uuid"
)

// TeamStoreForManage defines the store interface needed to create and update teams.
type TeamStoreForManage interface {
	GetByID(ctx context.Context, id string) (team.Team, error)
	Save(ctx context.Context, t team.Team) error
}

// SaveTeamInput carries input for creating or updating a team.
// Expertise is only read on create; afterwards it is edited through a tag editor.
type SaveTeamInput struct {
	ID          string // empty creates a new team
	Name        string
	Description string
	Expertise   []string
}

// SaveTeamDeps holds dependencies for SaveTeam.
type SaveTeamDeps struct {
	TeamStore  TeamStoreForManage
	AuditStore AuditStoreForOrchestrator
	Policy     taglist.Policy
}

// ExecuteSaveTeam creates a team or updates its name and description.
// PRE: actor can manage
// POST: the validated team is persisted and returned
func ExecuteSaveTeam(ctx context.Context, input SaveTeamInput, actor Actor, deps SaveTeamDeps) (team.Team, error) {
	if !actor.CanManage() {
		return team.Team{}, ErrForbidden
	}

	action := audit.ActionUpdate
	var t team.Team
	if input.ID == "" {
		action = audit.ActionCreate
		t = team.Team{
			ID:        uuid.New().String(),
			Expertise: taglist.Dedupe(input.Expertise, deps.Policy),
			CreatedAt: time.Now(),
		}
	} else {
		existing, err := deps.TeamStore.GetByID(ctx, input.ID)
		if err != nil {
			return team.Team{}, err
		}
		t = existing
	}
	t.Name = strings.TrimSpace(input.Name)
	t.Description = input.Description

	if err := t.Validate(deps.Policy); err != nil {
		return team.Team{}, invalid(err)
	}
	if err := deps.TeamStore.Save(ctx, t); err != nil {
		return team.Team{}, err
	}

	recordAudit(ctx, deps.AuditStore, actor, audit.CategoryTeam, action, "team", t.ID, t.Name)
	slog.Info("team_event", "event", string(action), "team_id", t.ID)
	return t, nil
}

// recordAudit saves a simple audit event, logging rather than failing on error.
func recordAudit(ctx context.Context, store AuditStoreForOrchestrator, actor Actor, category audit.Category, action audit.Action, resourceType, resourceID, description string) {
	if store == nil {
		return
	}
	event := audit.NewEvent(time.Now(), actor.AccountID, actor.Email, actor.Role, category, action).
		WithResource(resourceType, resourceID).
		WithDescription(description)
	if err := store.Save(ctx, event); err != nil {
		slog.Error("audit_save_failed", "error", err.Error(), "resource_id", resourceID)
	}
}
