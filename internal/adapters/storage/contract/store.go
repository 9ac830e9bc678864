package contract

import (
	"context"

	domain "fieldops/internal/domain/contract"
)

// Store persists Contract state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Contract, error)
	Save(ctx context.Context, value domain.Contract) error
	List(ctx context.Context, filter ListFilter) ([]domain.Contract, error)
	Delete(ctx context.Context, id string) error
}

// ListFilter carries filtering parameters for List operations.
// Zero values do not constrain the result.
type ListFilter struct {
	ClientID string
	TeamID   string
}

var _ Store = (*SQLiteStore)(nil)
