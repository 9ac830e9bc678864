package orchestrators

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"fieldops/internal/domain/audit"
	"fieldops/internal/domain/client"
	"fieldops/internal/domain/contract"

	"github.com/google/uuid"
)

// ClientStoreForManage defines the store interface needed to create and update clients.
type ClientStoreForManage interface {
	GetByID(ctx context.Context, id string) (client.Client, error)
	Save(ctx context.Context, c client.Client) error
}

// SaveClientInput carries input for creating or updating a client.
type SaveClientInput struct {
	ID           string // empty creates a new client
	Name         string
	ContactName  string
	ContactEmail string
	Address      string
}

// SaveClientDeps holds dependencies for SaveClient.
type SaveClientDeps struct {
	ClientStore ClientStoreForManage
	AuditStore  AuditStoreForOrchestrator
}

// ExecuteSaveClient creates or updates a client.
// PRE: actor can manage
// POST: the validated client is persisted and returned
func ExecuteSaveClient(ctx context.Context, input SaveClientInput, actor Actor, deps SaveClientDeps) (client.Client, error) {
	if !actor.CanManage() {
		return client.Client{}, ErrForbidden
	}

	action := audit.ActionUpdate
	var c client.Client
	if input.ID == "" {
		action = audit.ActionCreate
		c = client.Client{ID: uuid.New().String(), CreatedAt: time.Now()}
	} else {
		existing, err := deps.ClientStore.GetByID(ctx, input.ID)
		if err != nil {
			return client.Client{}, err
		}
		c = existing
	}
	c.Name = strings.TrimSpace(input.Name)
	c.ContactName = strings.TrimSpace(input.ContactName)
	c.ContactEmail = strings.TrimSpace(input.ContactEmail)
	c.Address = strings.TrimSpace(input.Address)

	if err := c.Validate(); err != nil {
		return client.Client{}, invalid(err)
	}
	if err := deps.ClientStore.Save(ctx, c); err != nil {
		return client.Client{}, err
	}
	recordAudit(ctx, deps.AuditStore, actor, audit.CategoryClient, action, "client", c.ID, c.Name)
	slog.Info("client_event", "event", string(action), "client_id", c.ID)
	return c, nil
}

// ContractStoreForManage defines the store interface needed to create and update contracts.
type ContractStoreForManage interface {
	GetByID(ctx context.Context, id string) (contract.Contract, error)
	Save(ctx context.Context, c contract.Contract) error
}

// ClientLookup resolves client references.
type ClientLookup interface {
	GetByID(ctx context.Context, id string) (client.Client, error)
}

// SaveContractInput carries input for creating or updating a contract.
type SaveContractInput struct {
	ID             string // empty creates a new contract
	ClientID       string
	TeamID         string
	Title          string
	StartDate      time.Time
	EndDate        time.Time
	VisitFrequency string
}

// SaveContractDeps holds dependencies for SaveContract.
type SaveContractDeps struct {
	ContractStore ContractStoreForManage
	ClientStore   ClientLookup
	TeamStore     TeamLookup
	AuditStore    AuditStoreForOrchestrator
}

// ExecuteSaveContract creates or updates a contract.
// PRE: actor can manage; ClientID names an existing client; TeamID, when set, an existing team
// POST: the validated contract is persisted and returned
func ExecuteSaveContract(ctx context.Context, input SaveContractInput, actor Actor, deps SaveContractDeps) (contract.Contract, error) {
	if !actor.CanManage() {
		return contract.Contract{}, ErrForbidden
	}

	action := audit.ActionUpdate
	var c contract.Contract
	if input.ID == "" {
		action = audit.ActionCreate
		c = contract.Contract{ID: uuid.New().String(), CreatedAt: time.Now()}
	} else {
		existing, err := deps.ContractStore.GetByID(ctx, input.ID)
		if err != nil {
			return contract.Contract{}, err
		}
		c = existing
	}
	c.ClientID = input.ClientID
	c.TeamID = input.TeamID
	c.Title = strings.TrimSpace(input.Title)
	c.StartDate = input.StartDate
	c.EndDate = input.EndDate
	c.VisitFrequency = input.VisitFrequency

	if err := c.Validate(); err != nil {
		return contract.Contract{}, invalid(err)
	}
	if _, err := deps.ClientStore.GetByID(ctx, c.ClientID); err != nil {
		return contract.Contract{}, err
	}
	if c.TeamID != "" {
		if _, err := deps.TeamStore.GetByID(ctx, c.TeamID); err != nil {
			return contract.Contract{}, err
		}
	}
	if err := deps.ContractStore.Save(ctx, c); err != nil {
		return contract.Contract{}, err
	}
	recordAudit(ctx, deps.AuditStore, actor, audit.CategoryContract, action, "contract", c.ID, c.Title)
	slog.Info("contract_event", "event", string(action), "contract_id", c.ID, "client_id", c.ClientID)
	return c, nil
}
