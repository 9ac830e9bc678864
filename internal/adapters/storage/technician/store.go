package technician

import (
	"context"

	domain "fieldops/internal/domain/technician"
)

// Store persists Technician state, including the ordered skill list.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Technician, error)
	Save(ctx context.Context, value domain.Technician) error
	ReplaceSkills(ctx context.Context, technicianID string, skills []string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Technician, error)
	Delete(ctx context.Context, id string) error
}

// ListFilter carries filtering parameters for List operations.
// Zero values do not constrain the result.
type ListFilter struct {
	TeamID     string
	ActiveOnly bool
}

var _ Store = (*SQLiteStore)(nil)
