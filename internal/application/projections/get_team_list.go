package projections

import (
	"context"

	emailAdapter "fieldops/internal/adapters/email"
	technicianStore "fieldops/internal/adapters/storage/technician"
	"fieldops/internal/domain/taglist"
)

// GetTeamListQuery carries query parameters.
type GetTeamListQuery struct {
	Expertise string // optional; keeps only teams listing this area
}

// TeamRow is one team in the list view.
type TeamRow struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Description     string   `json:"description,omitempty"`
	DescriptionHTML string   `json:"description_html,omitempty"`
	Expertise       []string `json:"expertise"`
	Members         int      `json:"members"`
	ActiveMembers   int      `json:"active_members"`
}

// GetTeamListResult carries the query result.
type GetTeamListResult struct {
	Teams []TeamRow `json:"teams"`
}

// GetTeamListDeps holds dependencies for GetTeamList.
type GetTeamListDeps struct {
	TeamStore       TeamStore
	TechnicianStore TechnicianStore
	ExpertisePolicy taglist.Policy
}

// QueryGetTeamList lists teams with member counts.
// PRE: none
// POST: teams keep the store's name order; the expertise filter follows the expertise policy
func QueryGetTeamList(ctx context.Context, query GetTeamListQuery, deps GetTeamListDeps) (GetTeamListResult, error) {
	teams, err := deps.TeamStore.List(ctx)
	if err != nil {
		return GetTeamListResult{}, err
	}
	techs, err := deps.TechnicianStore.List(ctx, technicianStore.ListFilter{})
	if err != nil {
		return GetTeamListResult{}, err
	}

	members := make(map[string]int)
	active := make(map[string]int)
	for _, t := range techs {
		members[t.TeamID]++
		if t.Active {
			active[t.TeamID]++
		}
	}

	rows := []TeamRow{}
	for _, t := range teams {
		if query.Expertise != "" && !t.HasExpertise(query.Expertise, deps.ExpertisePolicy) {
			continue
		}
		expertise := t.Expertise
		if expertise == nil {
			expertise = []string{}
		}
		rows = append(rows, TeamRow{
			ID:              t.ID,
			Name:            t.Name,
			Description:     t.Description,
			DescriptionHTML: emailAdapter.MarkdownHTML(t.Description),
			Expertise:       expertise,
			Members:         members[t.ID],
			ActiveMembers:   active[t.ID],
		})
	}
	return GetTeamListResult{Teams: rows}, nil
}
