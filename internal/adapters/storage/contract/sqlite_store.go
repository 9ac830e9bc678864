package contract

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"fieldops/internal/adapters/storage"
	domain "fieldops/internal/domain/contract"
)

const contractColumns = "id, client_id, team_id, title, start_date, end_date, visit_frequency, created_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new contract store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Contract by its ID.
// PRE: id is non-empty
// POST: Returns the entity or storage.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Contract, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+contractColumns+" FROM contract WHERE id = ?", id)
	entity, err := scanContract(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Contract{}, fmt.Errorf("contract %s: %w", id, storage.ErrNotFound)
	}
	return entity, err
}

// Save persists a Contract to the database. Dates are stored without a time of day.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Contract) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO contract (`+contractColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET client_id=excluded.client_id, team_id=excluded.team_id, title=excluded.title,
		 start_date=excluded.start_date, end_date=excluded.end_date, visit_frequency=excluded.visit_frequency`,
		entity.ID, entity.ClientID, entity.TeamID, entity.Title,
		entity.StartDate.Format(storage.DateLayout), entity.EndDate.Format(storage.DateLayout),
		entity.VisitFrequency, storage.FormatTime(entity.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save contract %s: %w", entity.ID, err)
	}
	return nil
}

// List returns contracts matching filter ordered by end date.
// PRE: none
// POST: Returns matching entities
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Contract, error) {
	var b strings.Builder
	var args []any
	b.WriteString("SELECT " + contractColumns + " FROM contract WHERE 1=1")
	if filter.ClientID != "" {
		b.WriteString(" AND client_id = ?")
		args = append(args, filter.ClientID)
	}
	if filter.TeamID != "" {
		b.WriteString(" AND team_id = ?")
		args = append(args, filter.TeamID)
	}
	b.WriteString(" ORDER BY end_date, title")

	rows, err := s.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Contract
	for rows.Next() {
		entity, err := scanContract(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// Delete removes a Contract.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM contract WHERE id = ?", id)
	return err
}

func scanContract(scan func(dest ...any) error) (domain.Contract, error) {
	var entity domain.Contract
	var start, end, createdAt string
	err := scan(&entity.ID, &entity.ClientID, &entity.TeamID, &entity.Title, &start, &end, &entity.VisitFrequency, &createdAt)
	if err != nil {
		return domain.Contract{}, err
	}
	if entity.StartDate, err = time.Parse(storage.DateLayout, start); err != nil {
		return domain.Contract{}, fmt.Errorf("contract %s start_date: %w", entity.ID, err)
	}
	if entity.EndDate, err = time.Parse(storage.DateLayout, end); err != nil {
		return domain.Contract{}, fmt.Errorf("contract %s end_date: %w", entity.ID, err)
	}
	if entity.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
		return domain.Contract{}, fmt.Errorf("contract %s created_at: %w", entity.ID, err)
	}
	return entity, nil
}
