package projections

import (
	"context"
	"net/url"
	"slices"
	"strings"
	"testing"
	"time"

	clientStore "fieldops/internal/adapters/storage/client"
	contractStore "fieldops/internal/adapters/storage/contract"
	"fieldops/internal/adapters/storage/storagetest"
	teamStore "fieldops/internal/adapters/storage/team"
	technicianStore "fieldops/internal/adapters/storage/technician"
	"fieldops/internal/application/listutil"
	"fieldops/internal/domain/client"
	"fieldops/internal/domain/contract"
	"fieldops/internal/domain/taglist"
	"fieldops/internal/domain/team"
	"fieldops/internal/domain/technician"
)

var fixtureNow = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

type fixtureStores struct {
	teams       *teamStore.SQLiteStore
	technicians *technicianStore.SQLiteStore
	clients     *clientStore.SQLiteStore
	contracts   *contractStore.SQLiteStore
}

// seedFixture stores two teams, four technicians, one client and three contracts.
func seedFixture(t *testing.T) fixtureStores {
	t.Helper()
	db := storagetest.Open(t)
	s := fixtureStores{
		teams:       teamStore.NewSQLiteStore(db),
		technicians: technicianStore.NewSQLiteStore(db),
		clients:     clientStore.NewSQLiteStore(db),
		contracts:   contractStore.NewSQLiteStore(db),
	}
	ctx := context.Background()
	mustSave := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	mustSave(s.teams.Save(ctx, team.Team{ID: "north", Name: "North Crew", Description: "Central city, **24/7** callouts", Expertise: []string{"Chillers", "Boilers"}, CreatedAt: fixtureNow}))
	mustSave(s.teams.Save(ctx, team.Team{ID: "south", Name: "South Crew", Expertise: []string{"Fire Alarms"}, CreatedAt: fixtureNow}))
	mustSave(s.technicians.Save(ctx, technician.Technician{ID: "t1", Name: "Aroha Ngata", Email: "aroha@fieldops.test", TeamID: "north", Skills: []string{"Chillers", "Welding"}, Active: true, CreatedAt: fixtureNow}))
	mustSave(s.technicians.Save(ctx, technician.Technician{ID: "t2", Name: "Ben Carter", Email: "ben@fieldops.test", TeamID: "south", Skills: []string{"chillers"}, Active: true, CreatedAt: fixtureNow}))
	mustSave(s.technicians.Save(ctx, technician.Technician{ID: "t3", Name: "Cleo Park", TeamID: "north", Skills: []string{"Boilers"}, Active: true, CreatedAt: fixtureNow}))
	mustSave(s.technicians.Save(ctx, technician.Technician{ID: "t4", Name: "Dan Retired", TeamID: "north", Skills: []string{"Welding"}, Active: false, CreatedAt: fixtureNow}))
	mustSave(s.clients.Save(ctx, client.Client{ID: "c1", Name: "Harbour Towers", CreatedAt: fixtureNow}))

	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }
	mustSave(s.contracts.Save(ctx, contract.Contract{ID: "k1", ClientID: "c1", TeamID: "north", Title: "Chiller service", StartDate: day(2026, 1, 1), EndDate: day(2026, 5, 20), VisitFrequency: contract.FrequencyMonthly, CreatedAt: fixtureNow}))
	mustSave(s.contracts.Save(ctx, contract.Contract{ID: "k2", ClientID: "c1", Title: "Alarm testing", StartDate: day(2026, 1, 1), EndDate: day(2026, 5, 10), VisitFrequency: contract.FrequencyWeekly, CreatedAt: fixtureNow}))
	mustSave(s.contracts.Save(ctx, contract.Contract{ID: "k3", ClientID: "c1", Title: "Annual audit", StartDate: day(2025, 1, 1), EndDate: day(2025, 12, 31), VisitFrequency: contract.FrequencyYearly, CreatedAt: fixtureNow}))
	return s
}

// TestQueryGetDashboard verifies the status cards over a seeded database.
func TestQueryGetDashboard(t *testing.T) {
	s := seedFixture(t)
	got, err := QueryGetDashboard(context.Background(), GetDashboardQuery{Now: fixtureNow}, GetDashboardDeps{
		TeamStore:       s.teams,
		TechnicianStore: s.technicians,
		ClientStore:     s.clients,
		ContractStore:   s.contracts,
		SkillPolicy:     taglist.CaseInsensitive,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Teams != 2 || got.ActiveTechnicians != 3 || got.Clients != 1 {
		t.Errorf("got counts teams=%d techs=%d clients=%d", got.Teams, got.ActiveTechnicians, got.Clients)
	}
	if got.ContractsByStatus[contract.StatusExpiring] != 2 || got.ContractsByStatus[contract.StatusExpired] != 1 {
		t.Errorf("got statuses %v", got.ContractsByStatus)
	}
	if _, ok := got.ContractsByStatus[contract.StatusUpcoming]; !ok {
		t.Error("expected every status to be present")
	}
	if len(got.Expiring) != 2 || got.Expiring[0].ID != "k2" || got.Expiring[1].ID != "k1" {
		t.Fatalf("expected expiring [k2 k1], got %+v", got.Expiring)
	}
	if got.Expiring[0].DaysLeft != 8 {
		t.Errorf("got %d days left, want 8", got.Expiring[0].DaysLeft)
	}
	want := []SkillCount{{"Chillers", 2}, {"Boilers", 1}, {"Welding", 1}}
	if !slices.Equal(got.TopSkills, want) {
		t.Errorf("got top skills %v, want %v", got.TopSkills, want)
	}
}

// TestRankTags_ExactPolicy verifies that exact matching keeps case variants apart.
func TestRankTags_ExactPolicy(t *testing.T) {
	got := rankTags([][]string{{"HVAC"}, {"hvac"}, {"HVAC", "Gas"}}, taglist.Exact, 2)
	want := []SkillCount{{"HVAC", 2}, {"Gas", 1}}
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func technicianListDeps(s fixtureStores, policy taglist.Policy) GetTechnicianListDeps {
	return GetTechnicianListDeps{TechnicianStore: s.technicians, TeamStore: s.teams, SkillPolicy: policy}
}

func technicianQuery(raw string) GetTechnicianListQuery {
	q, _ := url.ParseQuery(raw)
	return GetTechnicianListQuery{ListParams: listutil.ParseListParams(q, TechnicianSortColumns, TechnicianFilterKeys)}
}

func rowIDs(rows []TechnicianRow) []string {
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	return ids
}

// TestQueryGetTechnicianList verifies search, filters, sorting and paging.
func TestQueryGetTechnicianList(t *testing.T) {
	s := seedFixture(t)
	tests := []struct {
		name   string
		query  string
		policy taglist.Policy
		want   []string
	}{
		{"default excludes inactive", "", taglist.CaseInsensitive, []string{"t1", "t2", "t3"}},
		{"include inactive", "inactive=1", taglist.CaseInsensitive, []string{"t1", "t2", "t3", "t4"}},
		{"search by email", "q=BEN@", taglist.CaseInsensitive, []string{"t2"}},
		{"team filter", "team=north", taglist.CaseInsensitive, []string{"t1", "t3"}},
		{"skill case insensitive", "skill=CHILLERS", taglist.CaseInsensitive, []string{"t1", "t2"}},
		{"skill exact", "skill=chillers", taglist.Exact, []string{"t2"}},
		{"sort by team desc", "sort=team&dir=desc", taglist.CaseInsensitive, []string{"t2", "t1", "t3"}},
		{"second page", "per_page=10&page=2", taglist.CaseInsensitive, []string{"t1", "t2", "t3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := QueryGetTechnicianList(context.Background(), technicianQuery(tt.query), technicianListDeps(s, tt.policy))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ids := rowIDs(got.Technicians); !slices.Equal(ids, tt.want) {
				t.Errorf("got %v, want %v", ids, tt.want)
			}
		})
	}
}

// TestQueryGetTechnicianList_TeamName verifies that rows carry the team's display name.
func TestQueryGetTechnicianList_TeamName(t *testing.T) {
	s := seedFixture(t)
	got, err := QueryGetTechnicianList(context.Background(), technicianQuery("q=aroha"), technicianListDeps(s, taglist.CaseInsensitive))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Technicians) != 1 || got.Technicians[0].TeamName != "North Crew" {
		t.Fatalf("got %+v", got.Technicians)
	}
	if !slices.Equal(got.Technicians[0].Skills, []string{"Chillers", "Welding"}) {
		t.Errorf("skill order lost: %v", got.Technicians[0].Skills)
	}
	if got.Page.Total != 1 || got.Page.TotalPages != 1 {
		t.Errorf("got page %+v", got.Page)
	}
}

// TestQueryGetTeamList verifies member counts and the expertise filter.
func TestQueryGetTeamList(t *testing.T) {
	s := seedFixture(t)
	deps := GetTeamListDeps{TeamStore: s.teams, TechnicianStore: s.technicians, ExpertisePolicy: taglist.CaseInsensitive}

	got, err := QueryGetTeamList(context.Background(), GetTeamListQuery{}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Teams) != 2 {
		t.Fatalf("expected 2 teams, got %d", len(got.Teams))
	}
	north := got.Teams[0]
	if north.ID != "north" || north.Members != 3 || north.ActiveMembers != 2 {
		t.Errorf("got %+v", north)
	}
	if !strings.Contains(north.DescriptionHTML, "<strong>24/7</strong>") {
		t.Errorf("got description html %q", north.DescriptionHTML)
	}
	if got.Teams[1].DescriptionHTML != "" {
		t.Errorf("expected no html for an empty description, got %q", got.Teams[1].DescriptionHTML)
	}

	got, _ = QueryGetTeamList(context.Background(), GetTeamListQuery{Expertise: "fire alarms"}, deps)
	if len(got.Teams) != 1 || got.Teams[0].ID != "south" {
		t.Errorf("expertise filter: got %+v", got.Teams)
	}
}
