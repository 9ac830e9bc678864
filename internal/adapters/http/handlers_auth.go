package web

import (
	"errors"
	"log/slog"
	"net/http"

	"fieldops/internal/adapters/http/middleware"
	"fieldops/internal/application/orchestrators"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type meResponse struct {
	AccountID    string `json:"account_id"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	TechnicianID string `json:"technician_id,omitempty"`
}

// handleLogin authenticates and starts a session (POST /login).
// PRE: JSON body with email and password
// POST: 200 with the account and a session cookie, 401 on bad credentials, 423 when locked
func handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := strictDecode(w, r, &req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	actor, err := orchestrators.ExecuteLogin(r.Context(), orchestrators.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	}, orchestrators.LoginDeps{AccountStore: stores.AccountStore, Now: timeNow})
	switch {
	case errors.Is(err, orchestrators.ErrAccountLocked):
		http.Error(w, err.Error(), http.StatusLocked)
		return
	case errors.Is(err, orchestrators.ErrInvalidCredentials):
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	case err != nil:
		internalError(w, err)
		return
	}

	token, err := sessions.Create(middleware.Session{
		AccountID:    actor.AccountID,
		Email:        actor.Email,
		Role:         actor.Role,
		TechnicianID: actor.TechnicianID,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	middleware.SetSessionCookie(w, token)
	writeJSON(w, http.StatusOK, meOf(actor))
}

// handleLogout ends the session (POST /logout).
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		sessions.Delete(cookie.Value)
	}
	if sess, ok := middleware.GetSessionFromContext(r.Context()); ok {
		slog.Info("auth_event", "event", "logout", "account_id", sess.AccountID)
	}
	middleware.ClearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// handleMe returns the signed-in account (GET /api/me).
func handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, meOf(currentActor(r)))
}

func meOf(a orchestrators.Actor) meResponse {
	return meResponse{AccountID: a.AccountID, Email: a.Email, Role: a.Role, TechnicianID: a.TechnicianID}
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// handleChangePassword replaces the signed-in account's password (PUT /api/me/password).
// POST: 204; 400 when the current password is wrong or the new one is rejected
func handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := strictDecode(w, r, &req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	err := orchestrators.ExecuteChangePassword(r.Context(), req.CurrentPassword, req.NewPassword, currentActor(r),
		orchestrators.ChangePasswordDeps{AccountStore: stores.AccountStore})
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
