package team

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fieldops/internal/adapters/storage"
	domain "fieldops/internal/domain/team"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new team store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Team with its expertise.
// PRE: id is non-empty
// POST: Returns the entity or storage.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Team, error) {
	row := s.db.QueryRowContext(ctx, "SELECT id, name, description, created_at FROM team WHERE id = ?", id)
	entity, err := scanTeam(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Team{}, fmt.Errorf("team %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return domain.Team{}, err
	}
	if entity.Expertise, err = storage.TeamExpertise.LoadTags(ctx, s.db, id); err != nil {
		return domain.Team{}, fmt.Errorf("failed to load expertise for team %s: %w", id, err)
	}
	return entity, nil
}

// Save upserts the team row and its expertise in one transaction.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update) with expertise in order
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Team) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO team (id, name, description, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name=excluded.name, description=excluded.description`,
		entity.ID, entity.Name, entity.Description, storage.FormatTime(entity.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save team %s: %w", entity.ID, err)
	}
	if err := storage.TeamExpertise.ReplaceTags(ctx, tx, entity.ID, entity.Expertise); err != nil {
		return err
	}
	return tx.Commit()
}

// ReplaceExpertise overwrites the team's expertise list.
// PRE: expertise already satisfies the list invariants
// POST: stored expertise equals the argument in order; storage.ErrNotFound if the team is missing
func (s *SQLiteStore) ReplaceExpertise(ctx context.Context, teamID string, expertise []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM team WHERE id = ?", teamID).Scan(&exists); err != nil {
		return err
	}
	if exists == 0 {
		return fmt.Errorf("team %s: %w", teamID, storage.ErrNotFound)
	}
	if err := storage.TeamExpertise.ReplaceTags(ctx, tx, teamID, expertise); err != nil {
		return err
	}
	return tx.Commit()
}

// List returns every team ordered by name, each with its expertise.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Team, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, description, created_at FROM team ORDER BY name COLLATE NOCASE")
	if err != nil {
		return nil, err
	}
	var results []domain.Team
	for rows.Next() {
		entity, err := scanTeam(rows.Scan)
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

	expertise, err := storage.TeamExpertise.LoadAllTags(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("failed to load team expertise: %w", err)
	}
	for i := range results {
		if tags, ok := expertise[results[i].ID]; ok {
			results[i].Expertise = tags
		} else {
			results[i].Expertise = []string{}
		}
	}
	return results, nil
}

// Delete removes a Team and its expertise.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, "DELETE FROM team_expertise WHERE team_id = ?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM team WHERE id = ?", id); err != nil {
		return err
	}
	return tx.Commit()
}

// Count returns the total number of teams.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM team").Scan(&count)
	return count, err
}

func scanTeam(scan func(dest ...any) error) (domain.Team, error) {
	var entity domain.Team
	var createdAt string
	if err := scan(&entity.ID, &entity.Name, &entity.Description, &createdAt); err != nil {
		return domain.Team{}, err
	}
	var err error
	if entity.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
		return domain.Team{}, fmt.Errorf("team %s created_at: %w", entity.ID, err)
	}
	return entity, nil
}
