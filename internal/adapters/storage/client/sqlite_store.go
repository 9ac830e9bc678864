package client

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fieldops/internal/adapters/storage"
	domain "fieldops/internal/domain/client"
)

const clientColumns = "id, name, contact_name, contact_email, address, created_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new client store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Client by its ID.
// PRE: id is non-empty
// POST: Returns the entity or storage.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Client, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+clientColumns+" FROM client WHERE id = ?", id)
	entity, err := scanClient(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Client{}, fmt.Errorf("client %s: %w", id, storage.ErrNotFound)
	}
	return entity, err
}

// Save persists a Client to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Client) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO client (`+clientColumns+`) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name=excluded.name, contact_name=excluded.contact_name,
		 contact_email=excluded.contact_email, address=excluded.address`,
		entity.ID, entity.Name, entity.ContactName, entity.ContactEmail, entity.Address, storage.FormatTime(entity.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save client %s: %w", entity.ID, err)
	}
	return nil
}

// List returns every client ordered by name.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Client, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+clientColumns+" FROM client ORDER BY name COLLATE NOCASE")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Client
	for rows.Next() {
		entity, err := scanClient(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// Delete removes a Client and its contracts.
// PRE: id is non-empty
// POST: the client and every contract referencing it are removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, "DELETE FROM contract WHERE client_id = ?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM client WHERE id = ?", id); err != nil {
		return err
	}
	return tx.Commit()
}

// Count returns the total number of clients.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM client").Scan(&count)
	return count, err
}

func scanClient(scan func(dest ...any) error) (domain.Client, error) {
	var entity domain.Client
	var createdAt string
	if err := scan(&entity.ID, &entity.Name, &entity.ContactName, &entity.ContactEmail, &entity.Address, &createdAt); err != nil {
		return domain.Client{}, err
	}
	var err error
	if entity.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
		return domain.Client{}, fmt.Errorf("client %s created_at: %w", entity.ID, err)
	}
	return entity, nil
}
