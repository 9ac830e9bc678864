package web

import (
	"net/http"
	"strconv"

	"fieldops/internal/application/orchestrators"
	"fieldops/internal/domain/outbox"
)

// requireOutbox writes 503 when no outbox store is configured.
func requireOutbox(w http.ResponseWriter) bool {
	if stores.OutboxStore == nil {
		http.Error(w, "notification outbox not configured", http.StatusServiceUnavailable)
		return false
	}
	return true
}

func outboxProcessor() *orchestrators.OutboxProcessor {
	return orchestrators.NewOutboxProcessor(stores.OutboxStore, emailSender)
}

// handleListOutbox lists queued notices (GET /api/admin/outbox?status=&limit=).
// Without a status it lists entries still awaiting delivery, oldest first.
// PRE: admin session
func handleListOutbox(w http.ResponseWriter, r *http.Request) {
	if !requireOutbox(w) {
		return
	}
	limit := 100
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 && l <= 1000 {
		limit = l
	}

	var (
		entries []outbox.Entry
		err     error
	)
	switch status := r.URL.Query().Get("status"); status {
	case "":
		entries, err = stores.OutboxStore.ListPending(r.Context(), limit)
	case outbox.StatusPending, outbox.StatusRetrying, outbox.StatusDone, outbox.StatusFailed, outbox.StatusAbandoned:
		entries, err = stores.OutboxStore.ListByStatus(r.Context(), status, limit)
	default:
		http.Error(w, "unknown outbox status", http.StatusBadRequest)
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}
	if entries == nil {
		entries = []outbox.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleRunOutbox runs one delivery pass now (POST /api/admin/outbox/run).
// PRE: admin session
func handleRunOutbox(w http.ResponseWriter, r *http.Request) {
	if !requireOutbox(w) {
		return
	}
	res, err := outboxProcessor().ProcessPending(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleRetryOutboxEntry attempts one entry immediately (POST /api/admin/outbox/{id}/retry).
// PRE: admin session
// POST: 200 with the entry; 409 when already delivered or abandoned
func handleRetryOutboxEntry(w http.ResponseWriter, r *http.Request) {
	if !requireOutbox(w) {
		return
	}
	e, err := outboxProcessor().ProcessSingle(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// handleAbandonOutboxEntry gives up on an entry (DELETE /api/admin/outbox/{id}).
// PRE: admin session
// POST: 204; 409 when already closed
func handleAbandonOutboxEntry(w http.ResponseWriter, r *http.Request) {
	if !requireOutbox(w) {
		return
	}
	if err := outboxProcessor().AbandonEntry(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
