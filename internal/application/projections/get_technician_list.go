package projections

import (
	"cmp"
	"context"
	"slices"
	"strings"

	technicianStore "fieldops/internal/adapters/storage/technician"
	"fieldops/internal/application/listutil"
	"fieldops/internal/domain/taglist"
	"fieldops/internal/domain/technician"
)

// Technician list sort columns and filter keys accepted from the query string.
var (
	TechnicianSortColumns = []string{"name", "email", "team"}
	TechnicianFilterKeys  = []string{"team", "skill", "inactive"}
)

// GetTechnicianListQuery carries query parameters.
// Filters: team=<id>, skill=<name>, inactive=1 to include inactive technicians.
type GetTechnicianListQuery struct {
	listutil.ListParams
}

// TechnicianRow is one technician in the list view.
type TechnicianRow struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Email    string   `json:"email,omitempty"`
	TeamID   string   `json:"team_id,omitempty"`
	TeamName string   `json:"team_name,omitempty"`
	Skills   []string `json:"skills"`
	Active   bool     `json:"active"`
}

// GetTechnicianListResult carries the query result.
type GetTechnicianListResult struct {
	Technicians []TechnicianRow   `json:"technicians"`
	Page        listutil.PageInfo `json:"page"`
}

// GetTechnicianListDeps holds dependencies for GetTechnicianList.
type GetTechnicianListDeps struct {
	TechnicianStore TechnicianStore
	TeamStore       TeamStore
	SkillPolicy     taglist.Policy
}

// QueryGetTechnicianList searches, filters, sorts and paginates technicians.
// PRE: query was built with listutil.ParseListParams
// POST: rows match every filter; skill matching follows the configured skill policy
func QueryGetTechnicianList(ctx context.Context, query GetTechnicianListQuery, deps GetTechnicianListDeps) (GetTechnicianListResult, error) {
	filters := query.Filters
	techs, err := deps.TechnicianStore.List(ctx, technicianStore.ListFilter{
		TeamID:     filters["team"],
		ActiveOnly: filters["inactive"] == "",
	})
	if err != nil {
		return GetTechnicianListResult{}, err
	}
	teams, err := deps.TeamStore.List(ctx)
	if err != nil {
		return GetTechnicianListResult{}, err
	}
	teamNames := make(map[string]string, len(teams))
	for _, t := range teams {
		teamNames[t.ID] = t.Name
	}

	search := strings.ToLower(query.Search)
	rows := []TechnicianRow{}
	for _, t := range techs {
		if search != "" && !strings.Contains(strings.ToLower(t.Name), search) &&
			!strings.Contains(strings.ToLower(t.Email), search) {
			continue
		}
		if skill := filters["skill"]; skill != "" && !t.HasSkill(skill, deps.SkillPolicy) {
			continue
		}
		rows = append(rows, technicianRow(t, teamNames[t.TeamID]))
	}

	sortTechnicianRows(rows, query.SortParams)
	page, info := listutil.Paginate(rows, query.PageParams)
	return GetTechnicianListResult{Technicians: page, Page: info}, nil
}

func technicianRow(t technician.Technician, teamName string) TechnicianRow {
	skills := t.Skills
	if skills == nil {
		skills = []string{}
	}
	return TechnicianRow{
		ID:       t.ID,
		Name:     t.Name,
		Email:    t.Email,
		TeamID:   t.TeamID,
		TeamName: teamName,
		Skills:   skills,
		Active:   t.Active,
	}
}

// sortTechnicianRows orders rows by the requested column. Ties fall back to name ascending.
func sortTechnicianRows(rows []TechnicianRow, sp listutil.SortParams) {
	key := func(r TechnicianRow) string {
		switch sp.Sort {
		case "email":
			return strings.ToLower(r.Email)
		case "team":
			return strings.ToLower(r.TeamName)
		}
		return strings.ToLower(r.Name)
	}
	slices.SortStableFunc(rows, func(a, b TechnicianRow) int {
		c := cmp.Compare(key(a), key(b))
		if sp.Desc() {
			c = -c
		}
		if c == 0 {
			c = cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		}
		return c
	})
}
