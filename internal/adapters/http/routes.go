package web

import (
	"net/http"

	"fieldops/internal/adapters/http/middleware"
	"fieldops/internal/domain/account"
)

// registerRoutes maps every endpoint onto mux.
// Reads need any signed-in account; writes need admin or dispatcher. Tag editor
// endpoints accept technicians too and enforce ownership in the orchestrators.
func registerRoutes(mux *http.ServeMux) {
	authed := middleware.RequireAuth
	managers := middleware.RequireRole(account.RoleAdmin, account.RoleDispatcher)
	admins := middleware.RequireRole(account.RoleAdmin)

	handle := func(pattern string, guard func(http.Handler) http.Handler, h http.HandlerFunc) {
		mux.Handle(pattern, guard(h))
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("POST /login", handleLogin)
	mux.HandleFunc("POST /logout", handleLogout)
	handle("GET /api/me", authed, handleMe)
	handle("PUT /api/me/password", authed, handleChangePassword)

	handle("GET /api/dashboard", authed, handleDashboard)

	handle("GET /api/teams", authed, handleListTeams)
	handle("POST /api/teams", managers, handleSaveTeam)
	handle("GET /api/teams/{id}", authed, handleGetTeam)
	handle("PUT /api/teams/{id}", managers, handleSaveTeam)
	handle("DELETE /api/teams/{id}", managers, handleDeleteTeam)

	handle("GET /api/technicians", authed, handleListTechnicians)
	handle("POST /api/technicians", managers, handleSaveTechnician)
	handle("GET /api/technicians/{id}", authed, handleGetTechnician)
	handle("PUT /api/technicians/{id}", managers, handleSaveTechnician)
	handle("DELETE /api/technicians/{id}", managers, handleDeleteTechnician)

	handle("GET /api/clients", authed, handleListClients)
	handle("POST /api/clients", managers, handleSaveClient)
	handle("GET /api/clients/{id}", authed, handleGetClient)
	handle("PUT /api/clients/{id}", managers, handleSaveClient)
	handle("DELETE /api/clients/{id}", managers, handleDeleteClient)

	handle("GET /api/contracts", authed, handleListContracts)
	handle("POST /api/contracts", managers, handleSaveContract)
	handle("GET /api/contracts/{id}", authed, handleGetContract)
	handle("PUT /api/contracts/{id}", managers, handleSaveContract)
	handle("DELETE /api/contracts/{id}", managers, handleDeleteContract)

	handle("POST /api/tag-editors", authed, handleOpenTagEditor)
	handle("GET /api/tag-editors/{handle}", authed, handleGetTagEditor)
	handle("POST /api/tag-editors/{handle}/ops", authed, handleTagEditorOps)
	handle("POST /api/tag-editors/{handle}/save", authed, handleSaveTagEditor)
	handle("DELETE /api/tag-editors/{handle}", authed, handleDiscardTagEditor)

	handle("GET /api/admin/perf", admins, handleAdminPerf)
	handle("GET /api/admin/audit", admins, handleAdminAudit)
	handle("GET /api/admin/accounts", admins, handleListAccounts)
	handle("POST /api/admin/accounts", admins, handleCreateAccount)
	handle("GET /api/admin/outbox", admins, handleListOutbox)
	handle("POST /api/admin/outbox/run", admins, handleRunOutbox)
	handle("POST /api/admin/outbox/{id}/retry", admins, handleRetryOutboxEntry)
	handle("DELETE /api/admin/outbox/{id}", admins, handleAbandonOutboxEntry)
}
