package orchestrators

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"fieldops/internal/domain/account"
	"fieldops/internal/domain/taglist"

	"gopkg.in/yaml.v3"
)

// Fixture is a YAML document describing seed data. Records refer to each
// other by name, so a fixture can be written by hand.
type Fixture struct {
	Teams []struct {
		Name        string   `yaml:"name"`
		Description string   `yaml:"description"`
		Expertise   []string `yaml:"expertise"`
	} `yaml:"teams"`
	Technicians []struct {
		Name   string   `yaml:"name"`
		Email  string   `yaml:"email"`
		Team   string   `yaml:"team"`
		Skills []string `yaml:"skills"`
		Active *bool    `yaml:"active"` // defaults to true
	} `yaml:"technicians"`
	Clients []struct {
		Name         string `yaml:"name"`
		ContactName  string `yaml:"contact_name"`
		ContactEmail string `yaml:"contact_email"`
		Address      string `yaml:"address"`
	} `yaml:"clients"`
	Contracts []struct {
		Client    string `yaml:"client"`
		Team      string `yaml:"team"`
		Title     string `yaml:"title"`
		Start     string `yaml:"start"` // YYYY-MM-DD
		End       string `yaml:"end"`   // YYYY-MM-DD
		Frequency string `yaml:"frequency"`
	} `yaml:"contracts"`
}

// ParseFixture decodes a YAML fixture, rejecting unknown keys.
func ParseFixture(r io.Reader) (Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return Fixture{}, fmt.Errorf("invalid fixture: %w", err)
	}
	return f, nil
}

// ImportFixtureDeps holds dependencies for ImportFixture.
type ImportFixtureDeps struct {
	TeamStore       TeamStoreForManage
	TechnicianStore TechnicianStoreForManage
	ClientStore     ClientStoreForManage
	ContractStore   ContractStoreForManage
	AuditStore      AuditStoreForOrchestrator
	SkillPolicy     taglist.Policy
	ExpertisePolicy taglist.Policy
}

// ImportFixtureResult counts created records and collects per-record errors.
type ImportFixtureResult struct {
	Teams       int
	Technicians int
	Clients     int
	Contracts   int
	Errors      []string
}

// fixtureActor is recorded as the actor of imported records.
var fixtureActor = Actor{AccountID: "fixture", Email: "fixture@localhost", Role: account.RoleAdmin}

// ExecuteImportFixture creates every record in f, in dependency order.
// A record that fails validation or names an unknown reference is skipped and reported.
// PRE: deps stores are initialized
// POST: valid records are persisted; the result lists what was skipped
func ExecuteImportFixture(ctx context.Context, f Fixture, deps ImportFixtureDeps) ImportFixtureResult {
	var res ImportFixtureResult
	skip := func(kind, name string, err error) {
		res.Errors = append(res.Errors, fmt.Sprintf("%s %q: %v", kind, name, err))
	}

	teamIDs := make(map[string]string)
	for _, t := range f.Teams {
		created, err := ExecuteSaveTeam(ctx, SaveTeamInput{Name: t.Name, Description: t.Description, Expertise: t.Expertise}, fixtureActor,
			SaveTeamDeps{TeamStore: deps.TeamStore, AuditStore: deps.AuditStore, Policy: deps.ExpertisePolicy})
		if err != nil {
			skip("team", t.Name, err)
			continue
		}
		teamIDs[t.Name] = created.ID
		res.Teams++
	}

	teamRef := func(name string) (string, error) {
		if name == "" {
			return "", nil
		}
		id, ok := teamIDs[name]
		if !ok {
			return "", fmt.Errorf("unknown team %q", name)
		}
		return id, nil
	}

	for _, t := range f.Technicians {
		teamID, err := teamRef(t.Team)
		if err != nil {
			skip("technician", t.Name, err)
			continue
		}
		active := t.Active == nil || *t.Active
		_, err = ExecuteSaveTechnician(ctx, SaveTechnicianInput{Name: t.Name, Email: t.Email, TeamID: teamID, Skills: t.Skills, Active: active}, fixtureActor,
			SaveTechnicianDeps{TechnicianStore: deps.TechnicianStore, TeamStore: deps.TeamStore, AuditStore: deps.AuditStore, Policy: deps.SkillPolicy})
		if err != nil {
			skip("technician", t.Name, err)
			continue
		}
		res.Technicians++
	}

	clientIDs := make(map[string]string)
	for _, c := range f.Clients {
		created, err := ExecuteSaveClient(ctx, SaveClientInput{Name: c.Name, ContactName: c.ContactName, ContactEmail: c.ContactEmail, Address: c.Address}, fixtureActor,
			SaveClientDeps{ClientStore: deps.ClientStore, AuditStore: deps.AuditStore})
		if err != nil {
			skip("client", c.Name, err)
			continue
		}
		clientIDs[c.Name] = created.ID
		res.Clients++
	}

	for _, c := range f.Contracts {
		clientID, ok := clientIDs[c.Client]
		if !ok {
			skip("contract", c.Title, fmt.Errorf("unknown client %q", c.Client))
			continue
		}
		teamID, err := teamRef(c.Team)
		if err != nil {
			skip("contract", c.Title, err)
			continue
		}
		start, err := parseFixtureDate(c.Start)
		if err != nil {
			skip("contract", c.Title, err)
			continue
		}
		end, err := parseFixtureDate(c.End)
		if err != nil {
			skip("contract", c.Title, err)
			continue
		}
		_, err = ExecuteSaveContract(ctx, SaveContractInput{
			ClientID: clientID, TeamID: teamID, Title: c.Title, StartDate: start, EndDate: end, VisitFrequency: c.Frequency,
		}, fixtureActor, SaveContractDeps{ContractStore: deps.ContractStore, ClientStore: deps.ClientStore, TeamStore: deps.TeamStore, AuditStore: deps.AuditStore})
		if err != nil {
			skip("contract", c.Title, err)
			continue
		}
		res.Contracts++
	}

	slog.Info("fixture_imported", "teams", res.Teams, "technicians", res.Technicians, "clients", res.Clients, "contracts", res.Contracts, "skipped", len(res.Errors))
	return res
}

func parseFixtureDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q must be YYYY-MM-DD", s)
	}
	return t, nil
}
