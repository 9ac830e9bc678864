package technician

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"fieldops/internal/adapters/storage"
	domain "fieldops/internal/domain/technician"
)

const technicianColumns = "id, name, email, team_id, active, created_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new technician store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Technician with skills in stored order.
// PRE: id is non-empty
// POST: Returns the entity or storage.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Technician, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+technicianColumns+" FROM technician WHERE id = ?", id)
	entity, err := scanTechnician(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Technician{}, fmt.Errorf("technician %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return domain.Technician{}, err
	}
	if entity.Skills, err = storage.TechnicianSkills.LoadTags(ctx, s.db, id); err != nil {
		return domain.Technician{}, fmt.Errorf("failed to load skills for technician %s: %w", id, err)
	}
	return entity, nil
}

// Save upserts the technician row and its skills in one transaction.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update) with skills in order
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Technician) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO technician (`+technicianColumns+`) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name=excluded.name, email=excluded.email, team_id=excluded.team_id, active=excluded.active`,
		entity.ID, entity.Name, entity.Email, entity.TeamID, entity.Active, storage.FormatTime(entity.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save technician %s: %w", entity.ID, err)
	}
	if err := storage.TechnicianSkills.ReplaceTags(ctx, tx, entity.ID, entity.Skills); err != nil {
		return err
	}
	return tx.Commit()
}

// ReplaceSkills overwrites the technician's skill list.
// PRE: skills already satisfy the list invariants
// POST: stored skills equal the argument in order; storage.ErrNotFound if the technician is missing
func (s *SQLiteStore) ReplaceSkills(ctx context.Context, technicianID string, skills []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM technician WHERE id = ?", technicianID).Scan(&exists); err != nil {
		return err
	}
	if exists == 0 {
		return fmt.Errorf("technician %s: %w", technicianID, storage.ErrNotFound)
	}
	if err := storage.TechnicianSkills.ReplaceTags(ctx, tx, technicianID, skills); err != nil {
		return err
	}
	return tx.Commit()
}

// List returns technicians matching filter ordered by name, each with skills.
// PRE: none
// POST: Returns matching entities
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Technician, error) {
	var b strings.Builder
	var args []any
	b.WriteString("SELECT " + technicianColumns + " FROM technician WHERE 1=1")
	if filter.TeamID != "" {
		b.WriteString(" AND team_id = ?")
		args = append(args, filter.TeamID)
	}
	if filter.ActiveOnly {
		b.WriteString(" AND active = 1")
	}
	b.WriteString(" ORDER BY name COLLATE NOCASE")

	rows, err := s.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, err
	}
	var results []domain.Technician
	for rows.Next() {
		entity, err := scanTechnician(rows.Scan)
		if err != nil {
			rows.Close()
			return nil, err
		}
		results = append(results, entity)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	skills, err := storage.TechnicianSkills.LoadAllTags(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("failed to load technician skills: %w", err)
	}
	for i := range results {
		if tags, ok := skills[results[i].ID]; ok {
			results[i].Skills = tags
		} else {
			results[i].Skills = []string{}
		}
	}
	return results, nil
}

// Delete removes a Technician and its skills.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, "DELETE FROM technician_skill WHERE technician_id = ?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM technician WHERE id = ?", id); err != nil {
		return err
	}
	return tx.Commit()
}

func scanTechnician(scan func(dest ...any) error) (domain.Technician, error) {
	var entity domain.Technician
	var createdAt string
	if err := scan(&entity.ID, &entity.Name, &entity.Email, &entity.TeamID, &entity.Active, &createdAt); err != nil {
		return domain.Technician{}, err
	}
	var err error
	if entity.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
		return domain.Technician{}, fmt.Errorf("technician %s created_at: %w", entity.ID, err)
	}
	return entity, nil
}
