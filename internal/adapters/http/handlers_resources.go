package web

import (
	"context"
	"net/http"
	"time"

	"fieldops/internal/adapters/email"
	"fieldops/internal/adapters/storage"
	contractStore "fieldops/internal/adapters/storage/contract"
	"fieldops/internal/application/listutil"
	"fieldops/internal/application/orchestrators"
	"fieldops/internal/application/projections"
	"fieldops/internal/domain/audit"
	"fieldops/internal/domain/client"
	"fieldops/internal/domain/contract"
	"fieldops/internal/domain/team"
	"fieldops/internal/domain/technician"
)

// --- JSON shapes ---

type teamJSON struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	DescriptionHTML string    `json:"description_html,omitempty"` // Description rendered from markdown
	Expertise       []string  `json:"expertise"`
	CreatedAt       time.Time `json:"created_at"`
}

func teamOf(t team.Team) teamJSON {
	return teamJSON{
		ID:              t.ID,
		Name:            t.Name,
		Description:     t.Description,
		DescriptionHTML: email.MarkdownHTML(t.Description),
		Expertise:       nonNil(t.Expertise),
		CreatedAt:       t.CreatedAt,
	}
}

type technicianJSON struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	TeamID    string    `json:"team_id"`
	Skills    []string  `json:"skills"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

func technicianOf(t technician.Technician) technicianJSON {
	return technicianJSON{ID: t.ID, Name: t.Name, Email: t.Email, TeamID: t.TeamID, Skills: nonNil(t.Skills), Active: t.Active, CreatedAt: t.CreatedAt}
}

type clientJSON struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	ContactName  string    `json:"contact_name"`
	ContactEmail string    `json:"contact_email"`
	Address      string    `json:"address"`
	CreatedAt    time.Time `json:"created_at"`
}

func clientOf(c client.Client) clientJSON {
	return clientJSON{ID: c.ID, Name: c.Name, ContactName: c.ContactName, ContactEmail: c.ContactEmail, Address: c.Address, CreatedAt: c.CreatedAt}
}

type contractJSON struct {
	ID             string `json:"id"`
	ClientID       string `json:"client_id"`
	TeamID         string `json:"team_id"`
	Title          string `json:"title"`
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
	VisitFrequency string `json:"visit_frequency"`
	Status         string `json:"status"`
	NextVisit      string `json:"next_visit,omitempty"`
}

func contractOf(c contract.Contract, now time.Time) contractJSON {
	out := contractJSON{
		ID:             c.ID,
		ClientID:       c.ClientID,
		TeamID:         c.TeamID,
		Title:          c.Title,
		StartDate:      c.StartDate.Format(storage.DateLayout),
		EndDate:        c.EndDate.Format(storage.DateLayout),
		VisitFrequency: c.VisitFrequency,
		Status:         c.Status(now),
	}
	if next, ok := c.NextVisit(now); ok {
		out.NextVisit = next.Format(storage.DateLayout)
	}
	return out
}

func nonNil(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

// deleteRecord runs the shared delete workflow and writes 204 on success.
func deleteRecord(w http.ResponseWriter, r *http.Request, deps orchestrators.DeleteRecordDeps) {
	deps.AuditStore = stores.AuditStore
	if err := orchestrators.ExecuteDeleteRecord(r.Context(), r.PathValue("id"), currentActor(r), deps); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Dashboard ---

// handleDashboard returns the dashboard status cards (GET /api/dashboard).
func handleDashboard(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryGetDashboard(r.Context(), projections.GetDashboardQuery{Now: timeNow()}, projections.GetDashboardDeps{
		TeamStore:       stores.TeamStore,
		TechnicianStore: stores.TechnicianStore,
		ClientStore:     stores.ClientStore,
		ContractStore:   stores.ContractStore,
		SkillPolicy:     skillPolicy,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// --- Teams ---

type saveTeamRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Expertise   []string `json:"expertise"`
}

// handleListTeams lists teams with member counts (GET /api/teams?expertise=).
func handleListTeams(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryGetTeamList(r.Context(), projections.GetTeamListQuery{
		Expertise: r.URL.Query().Get("expertise"),
	}, projections.GetTeamListDeps{
		TeamStore:       stores.TeamStore,
		TechnicianStore: stores.TechnicianStore,
		ExpertisePolicy: expertisePolicy,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleGetTeam returns one team (GET /api/teams/{id}).
func handleGetTeam(w http.ResponseWriter, r *http.Request) {
	t, err := stores.TeamStore.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, teamOf(t))
}

// handleSaveTeam creates (POST /api/teams) or updates (PUT /api/teams/{id}) a team.
// Expertise is accepted on create only; later changes go through a tag editor.
func handleSaveTeam(w http.ResponseWriter, r *http.Request) {
	var req saveTeamRequest
	if err := strictDecode(w, r, &req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	id := r.PathValue("id")
	t, err := orchestrators.ExecuteSaveTeam(r.Context(), orchestrators.SaveTeamInput{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Expertise:   req.Expertise,
	}, currentActor(r), orchestrators.SaveTeamDeps{
		TeamStore:  stores.TeamStore,
		AuditStore: stores.AuditStore,
		Policy:     expertisePolicy,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, createdOrOK(id), teamOf(t))
}

// handleDeleteTeam deletes a team (DELETE /api/teams/{id}).
func handleDeleteTeam(w http.ResponseWriter, r *http.Request) {
	deleteRecord(w, r, orchestrators.DeleteRecordDeps{
		Store: stores.TeamStore,
		Exists: func(ctx context.Context, id string) error {
			_, err := stores.TeamStore.GetByID(ctx, id)
			return err
		},
		Category:     audit.CategoryTeam,
		ResourceType: "team",
	})
}

// --- Technicians ---

type saveTechnicianRequest struct {
	Name   string   `json:"name"`
	Email  string   `json:"email"`
	TeamID string   `json:"team_id"`
	Skills []string `json:"skills"`
	Active *bool    `json:"active"`
}

// handleListTechnicians searches technicians
// (GET /api/technicians?q=&team=&skill=&inactive=&sort=&dir=&page=&per_page=).
func handleListTechnicians(w http.ResponseWriter, r *http.Request) {
	params := listutil.ParseListParams(r.URL.Query(), projections.TechnicianSortColumns, projections.TechnicianFilterKeys)
	result, err := projections.QueryGetTechnicianList(r.Context(), projections.GetTechnicianListQuery{ListParams: params}, projections.GetTechnicianListDeps{
		TechnicianStore: stores.TechnicianStore,
		TeamStore:       stores.TeamStore,
		SkillPolicy:     skillPolicy,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleGetTechnician returns one technician (GET /api/technicians/{id}).
func handleGetTechnician(w http.ResponseWriter, r *http.Request) {
	t, err := stores.TechnicianStore.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, technicianOf(t))
}

// handleSaveTechnician creates (POST) or updates (PUT /{id}) a technician.
// Skills are accepted on create only. Active defaults to true.
func handleSaveTechnician(w http.ResponseWriter, r *http.Request) {
	var req saveTechnicianRequest
	if err := strictDecode(w, r, &req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	active := req.Active == nil || *req.Active
	id := r.PathValue("id")
	t, err := orchestrators.ExecuteSaveTechnician(r.Context(), orchestrators.SaveTechnicianInput{
		ID:     id,
		Name:   req.Name,
		Email:  req.Email,
		TeamID: req.TeamID,
		Skills: req.Skills,
		Active: active,
	}, currentActor(r), orchestrators.SaveTechnicianDeps{
		TechnicianStore: stores.TechnicianStore,
		TeamStore:       stores.TeamStore,
		AuditStore:      stores.AuditStore,
		Policy:          skillPolicy,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, createdOrOK(id), technicianOf(t))
}

// handleDeleteTechnician deletes a technician (DELETE /api/technicians/{id}).
func handleDeleteTechnician(w http.ResponseWriter, r *http.Request) {
	deleteRecord(w, r, orchestrators.DeleteRecordDeps{
		Store: stores.TechnicianStore,
		Exists: func(ctx context.Context, id string) error {
			_, err := stores.TechnicianStore.GetByID(ctx, id)
			return err
		},
		Category:     audit.CategoryTechnician,
		ResourceType: "technician",
	})
}

// --- Clients ---

type saveClientRequest struct {
	Name         string `json:"name"`
	ContactName  string `json:"contact_name"`
	ContactEmail string `json:"contact_email"`
	Address      string `json:"address"`
}

// handleListClients lists clients by name (GET /api/clients).
func handleListClients(w http.ResponseWriter, r *http.Request) {
	list, err := stores.ClientStore.List(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	out := make([]clientJSON, 0, len(list))
	for _, c := range list {
		out = append(out, clientOf(c))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleGetClient returns one client (GET /api/clients/{id}).
func handleGetClient(w http.ResponseWriter, r *http.Request) {
	c, err := stores.ClientStore.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, clientOf(c))
}

// handleSaveClient creates (POST) or updates (PUT /{id}) a client.
func handleSaveClient(w http.ResponseWriter, r *http.Request) {
	var req saveClientRequest
	if err := strictDecode(w, r, &req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	id := r.PathValue("id")
	c, err := orchestrators.ExecuteSaveClient(r.Context(), orchestrators.SaveClientInput{
		ID:           id,
		Name:         req.Name,
		ContactName:  req.ContactName,
		ContactEmail: req.ContactEmail,
		Address:      req.Address,
	}, currentActor(r), orchestrators.SaveClientDeps{
		ClientStore: stores.ClientStore,
		AuditStore:  stores.AuditStore,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, createdOrOK(id), clientOf(c))
}

// handleDeleteClient deletes a client and its contracts (DELETE /api/clients/{id}).
func handleDeleteClient(w http.ResponseWriter, r *http.Request) {
	deleteRecord(w, r, orchestrators.DeleteRecordDeps{
		Store: stores.ClientStore,
		Exists: func(ctx context.Context, id string) error {
			_, err := stores.ClientStore.GetByID(ctx, id)
			return err
		},
		Category:     audit.CategoryClient,
		ResourceType: "client",
	})
}

// --- Contracts ---

type saveContractRequest struct {
	ClientID       string `json:"client_id"`
	TeamID         string `json:"team_id"`
	Title          string `json:"title"`
	StartDate      string `json:"start_date"` // YYYY-MM-DD
	EndDate        string `json:"end_date"`   // YYYY-MM-DD
	VisitFrequency string `json:"visit_frequency"`
}

// handleListContracts lists contracts (GET /api/contracts?client_id=&team_id=).
func handleListContracts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := stores.ContractStore.List(r.Context(), contractStore.ListFilter{
		ClientID: q.Get("client_id"),
		TeamID:   q.Get("team_id"),
	})
	if err != nil {
		internalError(w, err)
		return
	}
	now := timeNow()
	out := make([]contractJSON, 0, len(list))
	for _, c := range list {
		out = append(out, contractOf(c, now))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleGetContract returns one contract (GET /api/contracts/{id}).
func handleGetContract(w http.ResponseWriter, r *http.Request) {
	c, err := stores.ContractStore.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, contractOf(c, timeNow()))
}

// handleSaveContract creates (POST) or updates (PUT /{id}) a contract.
func handleSaveContract(w http.ResponseWriter, r *http.Request) {
	var req saveContractRequest
	if err := strictDecode(w, r, &req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	start, errStart := parseDate(req.StartDate)
	end, errEnd := parseDate(req.EndDate)
	if errStart != nil || errEnd != nil {
		http.Error(w, "start_date and end_date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	id := r.PathValue("id")
	c, err := orchestrators.ExecuteSaveContract(r.Context(), orchestrators.SaveContractInput{
		ID:             id,
		ClientID:       req.ClientID,
		TeamID:         req.TeamID,
		Title:          req.Title,
		StartDate:      start,
		EndDate:        end,
		VisitFrequency: req.VisitFrequency,
	}, currentActor(r), orchestrators.SaveContractDeps{
		ContractStore: stores.ContractStore,
		ClientStore:   stores.ClientStore,
		TeamStore:     stores.TeamStore,
		AuditStore:    stores.AuditStore,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, createdOrOK(id), contractOf(c, timeNow()))
}

// handleDeleteContract deletes a contract (DELETE /api/contracts/{id}).
func handleDeleteContract(w http.ResponseWriter, r *http.Request) {
	deleteRecord(w, r, orchestrators.DeleteRecordDeps{
		Store: stores.ContractStore,
		Exists: func(ctx context.Context, id string) error {
			_, err := stores.ContractStore.GetByID(ctx, id)
			return err
		},
		Category:     audit.CategoryContract,
		ResourceType: "contract",
	})
}

// parseDate parses a YYYY-MM-DD value; empty stays the zero time so validation reports it.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(storage.DateLayout, s)
}

// createdOrOK picks 201 for creates (no path ID) and 200 for updates.
func createdOrOK(id string) int {
	if id == "" {
		return http.StatusCreated
	}
	return http.StatusOK
}
