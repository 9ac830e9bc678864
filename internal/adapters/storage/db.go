package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrNotFound is returned by stores when a row does not exist.
var ErrNotFound = errors.New("not found")

// TimeLayout is the text encoding used for every timestamp column.
// Fixed-width fractional seconds in UTC keep stored values sortable as text.
const TimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// DateLayout is the text encoding for calendar-date columns.
const DateLayout = "2006-01-02"

// FormatTime encodes t for storage. The zero time is stored as an empty string.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(TimeLayout)
}

// ParseTime decodes a stored timestamp. Empty strings decode to the zero time.
func ParseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(TimeLayout, s)
}

// migration is one forward-only schema step.
type migration struct {
	version int
	name    string
	stmts   []string
}

// migrations are applied in order; never edit a released entry, append a new one.
var migrations = []migration{
	{
		version: 1,
		name:    "initial schema",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS account (
				id TEXT PRIMARY KEY,
				email TEXT NOT NULL UNIQUE COLLATE NOCASE,
				password_hash TEXT NOT NULL DEFAULT '',
				role TEXT NOT NULL,
				technician_id TEXT NOT NULL DEFAULT '',
				created_at TEXT NOT NULL,
				failed_logins INTEGER NOT NULL DEFAULT 0,
				locked_until TEXT NOT NULL DEFAULT ''
			)`,
			`CREATE TABLE IF NOT EXISTS team (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				created_at TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS technician (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				email TEXT NOT NULL DEFAULT '',
				team_id TEXT NOT NULL DEFAULT '',
				active INTEGER NOT NULL DEFAULT 1,
				created_at TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS client (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				contact_name TEXT NOT NULL DEFAULT '',
				contact_email TEXT NOT NULL DEFAULT '',
				address TEXT NOT NULL DEFAULT '',
				created_at TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS contract (
				id TEXT PRIMARY KEY,
				client_id TEXT NOT NULL,
				team_id TEXT NOT NULL DEFAULT '',
				title TEXT NOT NULL,
				start_date TEXT NOT NULL,
				end_date TEXT NOT NULL,
				visit_frequency TEXT NOT NULL,
				created_at TEXT NOT NULL,
				FOREIGN KEY (client_id) REFERENCES client(id) ON DELETE CASCADE
			)`,
			`CREATE INDEX IF NOT EXISTS idx_contract_client ON contract(client_id)`,
			`CREATE INDEX IF NOT EXISTS idx_technician_team ON technician(team_id)`,
		},
	},
	{
		version: 2,
		name:    "ordered tag lists",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS technician_skill (
				technician_id TEXT NOT NULL,
				position INTEGER NOT NULL,
				name TEXT NOT NULL,
				PRIMARY KEY (technician_id, position),
				FOREIGN KEY (technician_id) REFERENCES technician(id) ON DELETE CASCADE
			)`,
			`CREATE TABLE IF NOT EXISTS team_expertise (
				team_id TEXT NOT NULL,
				position INTEGER NOT NULL,
				name TEXT NOT NULL,
				PRIMARY KEY (team_id, position),
				FOREIGN KEY (team_id) REFERENCES team(id) ON DELETE CASCADE
			)`,
			`CREATE INDEX IF NOT EXISTS idx_technician_skill_name ON technician_skill(name COLLATE NOCASE)`,
		},
	},
	{
		version: 3,
		name:    "audit log",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS audit_event (
				id TEXT PRIMARY KEY,
				timestamp TEXT NOT NULL,
				category TEXT NOT NULL,
				action TEXT NOT NULL,
				severity TEXT NOT NULL,
				actor_id TEXT NOT NULL DEFAULT '',
				actor_email TEXT NOT NULL DEFAULT '',
				actor_role TEXT NOT NULL DEFAULT '',
				resource_id TEXT NOT NULL DEFAULT '',
				resource_type TEXT NOT NULL DEFAULT '',
				description TEXT NOT NULL DEFAULT '',
				metadata TEXT NOT NULL DEFAULT ''
			)`,
			`CREATE INDEX IF NOT EXISTS idx_audit_event_timestamp ON audit_event(timestamp)`,
		},
	},
	{
		version: 4,
		name:    "notification outbox",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS outbox (
				id TEXT PRIMARY KEY,
				kind TEXT NOT NULL,
				payload TEXT NOT NULL,
				status TEXT NOT NULL,
				attempts INTEGER NOT NULL DEFAULT 0,
				max_attempts INTEGER NOT NULL,
				last_attempted_at TEXT NOT NULL DEFAULT '',
				created_at TEXT NOT NULL,
				external_id TEXT NOT NULL DEFAULT '',
				error_message TEXT NOT NULL DEFAULT ''
			)`,
			`CREATE INDEX IF NOT EXISTS idx_outbox_status ON outbox(status, created_at)`,
		},
	},
}

// LatestSchemaVersion returns the version the schema reaches after MigrateDB.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// MigrateDB brings the schema up to LatestSchemaVersion.
// Each migration runs in its own transaction together with its version bump.
// PRE: db is a valid database connection
// POST: all pending migrations applied; re-running is a no-op
func MigrateDB(db *sql.DB) error {
	ctx := context.Background()
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("failed to create schema_version: %w", err)
	}

	current, err := SchemaVersion(db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := applyMigration(ctx, db, m); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
		slog.Info("schema_migrated", "version", m.version, "name", m.name)
	}
	return nil
}

// SchemaVersion returns the highest applied migration version, 0 for a fresh database.
func SchemaVersion(db *sql.DB) (int, error) {
	var v sql.NullInt64
	if err := db.QueryRow(`SELECT MAX(version) FROM schema_version`).Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return int(v.Int64), nil
}

func applyMigration(ctx context.Context, db *sql.DB, m migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range m.stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_version (version, name, applied_at) VALUES (?, ?, ?)`,
		m.version, m.name, FormatTime(time.Now()),
	); err != nil {
		return err
	}
	return tx.Commit()
}
