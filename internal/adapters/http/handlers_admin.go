package web

import (
	"net/http"
	"strconv"
	"time"

	"fieldops/internal/adapters/http/perf"
	accountStore "fieldops/internal/adapters/storage/account"
	auditStore "fieldops/internal/adapters/storage/audit"
	"fieldops/internal/application/listutil"
	"fieldops/internal/application/orchestrators"
	auditDomain "fieldops/internal/domain/audit"
)

// handleAdminPerf returns the perf collector snapshot (GET /api/admin/perf?window=15m&top=10).
// PRE: admin session
func handleAdminPerf(w http.ResponseWriter, r *http.Request) {
	if perfCollector == nil {
		writeJSON(w, http.StatusOK, perf.Snapshot{SlowestPaths: []perf.PathStat{}, SlowestQueries: []perf.PathStat{}})
		return
	}
	window := time.Hour
	if v := r.URL.Query().Get("window"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			http.Error(w, "window must be a positive duration", http.StatusBadRequest)
			return
		}
		window = d
	}
	top := 10
	if v, err := strconv.Atoi(r.URL.Query().Get("top")); err == nil && v > 0 && v <= 100 {
		top = v
	}
	writeJSON(w, http.StatusOK, perfCollector.Snapshot(timeNow().Add(-window), top))
}

// handleAdminAudit lists audit events, newest first
// (GET /api/admin/audit?category=&action=&actor_id=&resource_id=&limit=).
// PRE: admin session
func handleAdminAudit(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := auditStore.Filter{}
	if category := q.Get("category"); category != "" {
		cat := auditDomain.Category(category)
		filter.Category = &cat
	}
	if action := q.Get("action"); action != "" {
		act := auditDomain.Action(action)
		filter.Action = &act
	}
	if actorID := q.Get("actor_id"); actorID != "" {
		filter.ActorID = &actorID
	}
	if resourceID := q.Get("resource_id"); resourceID != "" {
		filter.ResourceID = &resourceID
	}

	limit := 100
	if l, err := strconv.Atoi(q.Get("limit")); err == nil && l > 0 && l <= 1000 {
		limit = l
	}

	events, err := stores.AuditStore.List(r.Context(), filter, limit)
	if err != nil {
		internalError(w, err)
		return
	}
	if events == nil {
		events = []auditDomain.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

type createAccountRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	Role         string `json:"role"`
	TechnicianID string `json:"technician_id"`
}

// maxAccountList caps the accounts loaded for one listing.
const maxAccountList = 10000

type accountJSON struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	TechnicianID string    `json:"technician_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	Locked       bool      `json:"locked"`
}

// handleListAccounts lists accounts (GET /api/admin/accounts?role=&page=&per_page=).
// PRE: admin session
func handleListAccounts(w http.ResponseWriter, r *http.Request) {
	list, err := stores.AccountStore.List(r.Context(), accountStore.ListFilter{
		Limit: maxAccountList,
		Role:  r.URL.Query().Get("role"),
	})
	if err != nil {
		internalError(w, err)
		return
	}
	list, info := listutil.Paginate(list, listutil.ParsePageParams(r.URL.Query()))
	now := timeNow()
	out := make([]accountJSON, 0, len(list))
	for _, a := range list {
		out = append(out, accountJSON{
			ID:           a.ID,
			Email:        a.Email,
			Role:         a.Role,
			TechnicianID: a.TechnicianID,
			CreatedAt:    a.CreatedAt,
			Locked:       a.IsLocked(now),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"accounts": out, "page": info})
}

// handleCreateAccount creates an account (POST /api/admin/accounts).
// PRE: admin session; technician accounts name an existing technician
// POST: 201 with the new account ID
func handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := strictDecode(w, r, &req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	id, err := orchestrators.ExecuteCreateAccount(r.Context(), orchestrators.CreateAccountInput{
		Email:        req.Email,
		Password:     req.Password,
		Role:         req.Role,
		TechnicianID: req.TechnicianID,
	}, orchestrators.CreateAccountDeps{
		AccountStore: stores.AccountStore,
		Technicians:  stores.TechnicianStore,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}
