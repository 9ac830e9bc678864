package orchestrators

import (
	"context"
	"strings"
	"testing"

	"fieldops/internal/domain/client"
	"fieldops/internal/domain/contract"
	"fieldops/internal/domain/taglist"
)

const sampleFixture = `
teams:
  - name: North Crew
    description: "Covers the **northern** sites"
    expertise: [HVAC, hvac, Lifts]
technicians:
  - name: Aroha
    email: aroha@fieldops.test
    team: North Crew
    skills: [Boilers, Gas]
  - name: Ghost
    team: Nowhere
clients:
  - name: Harbour Towers
    contact_email: fm@harbour.test
contracts:
  - client: Harbour Towers
    team: North Crew
    title: Lift servicing
    start: 2026-01-01
    end: 2026-12-31
    frequency: monthly
  - client: Harbour Towers
    title: Bad dates
    start: 01/01/2026
    end: 2026-12-31
    frequency: monthly
`

// TestImportFixture tests name resolution, normalisation and per-record errors.
func TestImportFixture(t *testing.T) {
	f, err := ParseFixture(strings.NewReader(sampleFixture))
	if err != nil {
		t.Fatalf("ParseFixture: %v", err)
	}

	teams := newMockTeamStore()
	techs := newMockTechnicianStore()
	contracts := &mockContractStore{contracts: map[string]contract.Contract{}}
	res := ExecuteImportFixture(context.Background(), f, ImportFixtureDeps{
		TeamStore:       teams,
		TechnicianStore: techs,
		ClientStore:     &mockClientStore{clients: map[string]client.Client{}},
		ContractStore:   contracts,
		SkillPolicy:     taglist.CaseInsensitive,
		ExpertisePolicy: taglist.CaseInsensitive,
	})

	if res.Teams != 1 || res.Technicians != 1 || res.Clients != 1 || res.Contracts != 1 {
		t.Errorf("unexpected counts %+v", res)
	}
	if len(res.Errors) != 2 {
		t.Fatalf("got errors %v, want 2", res.Errors)
	}
	for _, tm := range teams.teams {
		if len(tm.Expertise) != 2 {
			t.Errorf("expertise not deduplicated: %v", tm.Expertise)
		}
	}
	for _, tech := range techs.technicians {
		if !tech.Active || tech.TeamID == "" {
			t.Errorf("unexpected technician %+v", tech)
		}
	}
}

// TestParseFixture_UnknownKey tests that typos in fixtures are rejected.
func TestParseFixture_UnknownKey(t *testing.T) {
	if _, err := ParseFixture(strings.NewReader("teams:\n  - nmae: x\n")); err == nil {
		t.Error("expected error for unknown key")
	}
	if f, err := ParseFixture(strings.NewReader("")); err != nil || len(f.Teams) != 0 {
		t.Errorf("empty fixture: %+v, %v", f, err)
	}
}
