// seed loads a YAML fixture of teams, technicians, clients and contracts
// into a FieldOps database. Records refer to each other by name; see
// testdata/fixture.yaml for the format.
//
//	seed --db fieldops.db --fixture testdata/fixture.yaml
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"
	_ "modernc.org/sqlite"

	"fieldops/internal/adapters/storage"
	auditStore "fieldops/internal/adapters/storage/audit"
	clientStore "fieldops/internal/adapters/storage/client"
	contractStore "fieldops/internal/adapters/storage/contract"
	teamStore "fieldops/internal/adapters/storage/team"
	technicianStore "fieldops/internal/adapters/storage/technician"
	"fieldops/internal/application/orchestrators"
	"fieldops/internal/config"
	"fieldops/internal/domain/taglist"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var dbPath, fixturePath, skillMatch, expertiseMatch string
	var dryRun bool

	flagSet := pflag.NewFlagSet("seed", pflag.ContinueOnError)
	flagSet.StringVar(&dbPath, "db", envOr("FIELDOPS_DB_PATH", config.DefaultDBPath), "path to the SQLite database")
	flagSet.StringVarP(&fixturePath, "fixture", "f", "", "YAML fixture to load (required)")
	flagSet.StringVar(&skillMatch, "skill-match", os.Getenv("FIELDOPS_SKILL_MATCH"), "skill comparison: exact or case_insensitive")
	flagSet.StringVar(&expertiseMatch, "expertise-match", os.Getenv("FIELDOPS_EXPERTISE_MATCH"), "expertise comparison: exact or case_insensitive")
	flagSet.BoolVar(&dryRun, "dry-run", false, "parse the fixture and report counts without writing")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}
	if fixturePath == "" {
		return fmt.Errorf("--fixture is required")
	}

	skillPolicy, err := taglist.ParsePolicy(skillMatch)
	if err != nil {
		return fmt.Errorf("--skill-match: %w", err)
	}
	expertisePolicy, err := taglist.ParsePolicy(expertiseMatch)
	if err != nil {
		return fmt.Errorf("--expertise-match: %w", err)
	}

	file, err := os.Open(fixturePath)
	if err != nil {
		return err
	}
	defer file.Close()
	fixture, err := orchestrators.ParseFixture(file)
	if err != nil {
		return err
	}
	if dryRun {
		fmt.Printf("fixture ok: %d teams, %d technicians, %d clients, %d contracts\n",
			len(fixture.Teams), len(fixture.Technicians), len(fixture.Clients), len(fixture.Contracts))
		return nil
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)")
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()
	if err := storage.MigrateDB(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	res := orchestrators.ExecuteImportFixture(context.Background(), fixture, orchestrators.ImportFixtureDeps{
		TeamStore:       teamStore.NewSQLiteStore(db),
		TechnicianStore: technicianStore.NewSQLiteStore(db),
		ClientStore:     clientStore.NewSQLiteStore(db),
		ContractStore:   contractStore.NewSQLiteStore(db),
		AuditStore:      auditStore.NewSQLiteStore(db),
		SkillPolicy:     skillPolicy,
		ExpertisePolicy: expertisePolicy,
	})
	for _, msg := range res.Errors {
		slog.Warn("fixture_record_skipped", "reason", msg)
	}
	fmt.Printf("imported %d teams, %d technicians, %d clients, %d contracts (%d skipped)\n",
		res.Teams, res.Technicians, res.Clients, res.Contracts, len(res.Errors))
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, "Usage: seed --fixture FILE [flags]\n\nFlags:\n%s", flagSet.FlagUsages())
}
