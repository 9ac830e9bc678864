package projections

import (
	"cmp"
	"context"
	"slices"
	"time"

	contractStore "fieldops/internal/adapters/storage/contract"
	technicianStore "fieldops/internal/adapters/storage/technician"
	"fieldops/internal/domain/contract"
	"fieldops/internal/domain/taglist"
)

// DefaultTopSkills is how many skills the dashboard ranks when the query does not say.
const DefaultTopSkills = 10

// GetDashboardQuery carries input for the dashboard projection.
type GetDashboardQuery struct {
	Now       time.Time
	TopSkills int // 0 selects DefaultTopSkills
}

// ExpiringContract is a contract whose end date falls inside the expiring window.
type ExpiringContract struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	ClientID string `json:"client_id"`
	TeamID   string `json:"team_id,omitempty"`
	EndDate  string `json:"end_date"`
	DaysLeft int    `json:"days_left"`
}

// SkillCount is a skill together with how many active technicians list it.
type SkillCount struct {
	Skill       string `json:"skill"`
	Technicians int    `json:"technicians"`
}

// GetDashboardResult carries the dashboard status cards.
type GetDashboardResult struct {
	Teams             int                `json:"teams"`
	ActiveTechnicians int                `json:"active_technicians"`
	Clients           int                `json:"clients"`
	ContractsByStatus map[string]int     `json:"contracts_by_status"`
	Expiring          []ExpiringContract `json:"expiring"`
	TopSkills         []SkillCount       `json:"top_skills"`
}

// GetDashboardDeps holds dependencies for the dashboard projection.
type GetDashboardDeps struct {
	TeamStore       TeamStore
	TechnicianStore TechnicianStore
	ClientStore     ClientCounter
	ContractStore   ContractStore
	SkillPolicy     taglist.Policy
}

// QueryGetDashboard assembles the dashboard status cards.
// PRE: query.Now is set
// POST: every status in contract.Statuses has an entry; Expiring is sorted by end date;
// TopSkills is ordered by count descending then skill name
func QueryGetDashboard(ctx context.Context, query GetDashboardQuery, deps GetDashboardDeps) (GetDashboardResult, error) {
	teams, err := deps.TeamStore.List(ctx)
	if err != nil {
		return GetDashboardResult{}, err
	}
	techs, err := deps.TechnicianStore.List(ctx, technicianStore.ListFilter{ActiveOnly: true})
	if err != nil {
		return GetDashboardResult{}, err
	}
	clients, err := deps.ClientStore.Count(ctx)
	if err != nil {
		return GetDashboardResult{}, err
	}
	contracts, err := deps.ContractStore.List(ctx, contractStore.ListFilter{})
	if err != nil {
		return GetDashboardResult{}, err
	}

	result := GetDashboardResult{
		Teams:             len(teams),
		ActiveTechnicians: len(techs),
		Clients:           clients,
		ContractsByStatus: make(map[string]int, len(contract.Statuses)),
		Expiring:          []ExpiringContract{},
	}
	for _, s := range contract.Statuses {
		result.ContractsByStatus[s] = 0
	}

	for _, c := range contracts {
		status := c.Status(query.Now)
		result.ContractsByStatus[status]++
		if status != contract.StatusExpiring {
			continue
		}
		result.Expiring = append(result.Expiring, ExpiringContract{
			ID:       c.ID,
			Title:    c.Title,
			ClientID: c.ClientID,
			TeamID:   c.TeamID,
			EndDate:  c.EndDate.Format("2006-01-02"),
			DaysLeft: int(c.EndDate.Sub(query.Now).Hours() / 24),
		})
	}
	slices.SortStableFunc(result.Expiring, func(a, b ExpiringContract) int {
		return cmp.Compare(a.EndDate, b.EndDate)
	})

	limit := query.TopSkills
	if limit <= 0 {
		limit = DefaultTopSkills
	}
	var skillLists [][]string
	for _, t := range techs {
		skillLists = append(skillLists, t.Skills)
	}
	result.TopSkills = rankTags(skillLists, deps.SkillPolicy, limit)
	return result, nil
}

// rankTags counts how many lists contain each tag under policy.
// The first spelling seen names the group.
func rankTags(lists [][]string, policy taglist.Policy, limit int) []SkillCount {
	counts := []SkillCount{}
	for _, tags := range lists {
		for _, tag := range tags {
			i := slices.IndexFunc(counts, func(c SkillCount) bool { return policy.Equal(c.Skill, tag) })
			if i < 0 {
				counts = append(counts, SkillCount{Skill: tag, Technicians: 1})
				continue
			}
			counts[i].Technicians++
		}
	}
	slices.SortFunc(counts, func(a, b SkillCount) int {
		if c := cmp.Compare(b.Technicians, a.Technicians); c != 0 {
			return c
		}
		return cmp.Compare(a.Skill, b.Skill)
	})
	if len(counts) > limit {
		counts = counts[:limit]
	}
	return counts
}
