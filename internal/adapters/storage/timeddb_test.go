package storage

import (
	"context"
	"testing"
	"time"

	"fieldops/internal/adapters/http/perf"
)

func openTimedTestDB(t *testing.T) (*TimedDB, *perf.Collector) {
	t.Helper()
	db := openTestDB(t)
	if _, err := db.Exec("CREATE TABLE probe (id TEXT PRIMARY KEY, val TEXT)"); err != nil {
		t.Fatalf("create table: %v", err)
	}
	collector := perf.NewCollector(100)
	return NewTimedDB(db, collector, 0), collector
}

// TestTimedDB_RecordsEachCall verifies every wrapped call lands in the collector.
func TestTimedDB_RecordsEachCall(t *testing.T) {
	tdb, collector := openTimedTestDB(t)
	ctx := context.Background()

	if _, err := tdb.ExecContext(ctx, "INSERT INTO probe (id, val) VALUES (?, ?)", "1", "hello"); err != nil {
		t.Fatalf("ExecContext: %v", err)
	}
	rows, err := tdb.QueryContext(ctx, "SELECT id, val FROM probe")
	if err != nil {
		t.Fatalf("QueryContext: %v", err)
	}
	rows.Close()
	var val string
	if err := tdb.QueryRowContext(ctx, "SELECT val FROM probe WHERE id = ?", "1").Scan(&val); err != nil {
		t.Fatalf("QueryRowContext: %v", err)
	}
	if val != "hello" {
		t.Errorf("got %q", val)
	}
	if got := collector.TotalRecorded(); got != 3 {
		t.Errorf("TotalRecorded = %d, want 3", got)
	}
}

// TestTimedDB_NilCollector verifies the wrapper works without a collector.
func TestTimedDB_NilCollector(t *testing.T) {
	db := openTestDB(t)
	tdb := NewTimedDB(db, nil, time.Second)
	if _, err := tdb.ExecContext(context.Background(), "CREATE TABLE x (id TEXT)"); err != nil {
		t.Fatalf("ExecContext: %v", err)
	}
}

// TestTimedDB_DefaultThreshold verifies non-positive thresholds fall back to the default.
func TestTimedDB_DefaultThreshold(t *testing.T) {
	tdb := NewTimedDB(nil, nil, -1)
	if tdb.threshold != DefaultSlowQuery {
		t.Errorf("got %v, want %v", tdb.threshold, DefaultSlowQuery)
	}
}

// TestStatementLabel verifies query labels used as perf paths.
func TestStatementLabel(t *testing.T) {
	cases := map[string]string{
		"SELECT id FROM technician WHERE id = ?":              "SELECT technician",
		"INSERT INTO technician_skill (a, b) VALUES (?, ?)":   "INSERT technician_skill",
		"UPDATE team SET name = ? WHERE id = ?":               "UPDATE team",
		"DELETE FROM team_expertise WHERE team_id = ?":        "DELETE team_expertise",
		"  select count(*) from contract":                     "SELECT contract",
		"BEGIN":                                               "BEGIN",
		"":                                                    "EMPTY",
	}
	for query, want := range cases {
		if got := statementLabel(query); got != want {
			t.Errorf("statementLabel(%q) = %q, want %q", query, got, want)
		}
	}
}
