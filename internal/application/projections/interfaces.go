package projections

import (
	"context"

	contractStore "fieldops/internal/adapters/storage/contract"
	technicianStore "fieldops/internal/adapters/storage/technician"
	domainContract "fieldops/internal/domain/contract"
	domainTeam "fieldops/internal/domain/team"
	domainTechnician "fieldops/internal/domain/technician"
)

// TeamStore interface for team queries.
type TeamStore interface {
	List(ctx context.Context) ([]domainTeam.Team, error)
}

// TechnicianStore interface for technician queries.
type TechnicianStore interface {
	List(ctx context.Context, filter technicianStore.ListFilter) ([]domainTechnician.Technician, error)
}

// ClientCounter interface for client totals.
type ClientCounter interface {
	Count(ctx context.Context) (int, error)
}

// ContractStore interface for contract queries.
type ContractStore interface {
	List(ctx context.Context, filter contractStore.ListFilter) ([]domainContract.Contract, error)
}
