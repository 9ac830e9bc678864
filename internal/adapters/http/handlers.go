package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"fieldops/internal/adapters/http/middleware"
	"fieldops/internal/adapters/storage"
	"fieldops/internal/application/orchestrators"
	"fieldops/internal/domain/outbox"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// writeJSON writes v as the JSON response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json_encode_failed", "error", err.Error())
	}
}

// writeError maps an orchestrator or store error onto an HTTP status.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, orchestrators.ErrTagEditorNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, orchestrators.ErrForbidden), errors.Is(err, orchestrators.ErrTagEditorForbidden):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, orchestrators.ErrTagEditorBusy), errors.Is(err, orchestrators.ErrEmailAlreadyExists),
		errors.Is(err, outbox.ErrTerminal):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, orchestrators.ErrUnknownTagListKind), orchestrators.IsInputError(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		internalError(w, err)
	}
}

// currentActor returns the actor for the signed-in session.
// Routes guarded by RequireAuth always have one.
func currentActor(r *http.Request) orchestrators.Actor {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	return orchestrators.Actor{
		AccountID:    sess.AccountID,
		Email:        sess.Email,
		Role:         sess.Role,
		TechnicianID: sess.TechnicianID,
	}
}

// handleHealth reports liveness (GET /healthz).
func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
