package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// TagTable names a child table holding an ordered tag list.
// Rows are (owner, position, name) with position starting at 0.
type TagTable struct {
	Table       string
	OwnerColumn string
}

// Tag tables in the schema.
var (
	TechnicianSkills = TagTable{Table: "technician_skill", OwnerColumn: "technician_id"}
	TeamExpertise    = TagTable{Table: "team_expertise", OwnerColumn: "team_id"}
)

// ReplaceTags overwrites the owner's list with tags, keeping their order.
// PRE: tx is open; tags already satisfy the list invariants
// POST: the owner has exactly len(tags) rows at positions 0..len-1
func (tt TagTable) ReplaceTags(ctx context.Context, tx *sql.Tx, ownerID string, tags []string) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM "+tt.Table+" WHERE "+tt.OwnerColumn+" = ?", ownerID); err != nil {
		return fmt.Errorf("failed to clear %s for %s: %w", tt.Table, ownerID, err)
	}
	insert := "INSERT INTO " + tt.Table + " (" + tt.OwnerColumn + ", position, name) VALUES (?, ?, ?)"
	for i, tag := range tags {
		if _, err := tx.ExecContext(ctx, insert, ownerID, i, tag); err != nil {
			return fmt.Errorf("failed to insert %s %q for %s: %w", tt.Table, tag, ownerID, err)
		}
	}
	return nil
}

// LoadTags returns the owner's tags in stored order. An owner without tags yields an empty slice.
func (tt TagTable) LoadTags(ctx context.Context, db SQLDB, ownerID string) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT name FROM "+tt.Table+" WHERE "+tt.OwnerColumn+" = ? ORDER BY position", ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tags = append(tags, name)
	}
	return tags, rows.Err()
}

// LoadAllTags returns every owner's tags keyed by owner ID, each list in stored order.
func (tt TagTable) LoadAllTags(ctx context.Context, db SQLDB) (map[string][]string, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT "+tt.OwnerColumn+", name FROM "+tt.Table+" ORDER BY "+tt.OwnerColumn+", position")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]string)
	for rows.Next() {
		var owner, name string
		if err := rows.Scan(&owner, &name); err != nil {
			return nil, err
		}
		out[owner] = append(out[owner], name)
	}
	return out, rows.Err()
}
