package team

import (
	"context"

	domain "fieldops/internal/domain/team"
)

// Store persists Team state, including the ordered expertise list.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Team, error)
	Save(ctx context.Context, value domain.Team) error
	ReplaceExpertise(ctx context.Context, teamID string, expertise []string) error
	List(ctx context.Context) ([]domain.Team, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

var _ Store = (*SQLiteStore)(nil)
