package web

import (
	"net/http"

	"fieldops/internal/application/orchestrators"
)

type openTagEditorRequest struct {
	Kind    string `json:"kind"`     // "skills" or "expertise"
	OwnerID string `json:"owner_id"` // technician or team ID
}

// tagOpsResponse reports the editor after the ops and how many steps applied.
// Error names the rejected step's failure.
type tagOpsResponse struct {
	Editor  orchestrators.TagEditorView `json:"editor"`
	Applied int                         `json:"applied"`
	Error   string                      `json:"error,omitempty"`
}

func tagEditorDeps() orchestrators.TagEditorDeps {
	return orchestrators.TagEditorDeps{
		Registry:        tagEditors,
		TechnicianStore: stores.TechnicianStore,
		TeamStore:       stores.TeamStore,
		AuditStore:      stores.AuditStore,
		EmailSender:     emailSender,
		Outbox:          outboxQueue(),
		SkillPolicy:     skillPolicy,
		ExpertisePolicy: expertisePolicy,
		Now:             timeNow,
	}
}

// outboxQueue returns the configured outbox, or nil so that notify skips queueing.
func outboxQueue() orchestrators.OutboxQueue {
	if stores.OutboxStore == nil {
		return nil
	}
	return stores.OutboxStore
}

// handleOpenTagEditor opens an editor on a tag list (POST /api/tag-editors).
// PRE: actor may edit the list (managers any list; technicians their own skills)
// POST: 201 with the editor view
func handleOpenTagEditor(w http.ResponseWriter, r *http.Request) {
	var req openTagEditorRequest
	if err := strictDecode(w, r, &req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	kind, err := orchestrators.ParseTagListKind(req.Kind)
	if err != nil {
		writeError(w, err)
		return
	}
	view, err := orchestrators.ExecuteOpenTagEditor(r.Context(), orchestrators.OpenTagEditorInput{
		Kind:    kind,
		OwnerID: req.OwnerID,
		Actor:   currentActor(r),
	}, tagEditorDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Location", "/api/tag-editors/"+view.Handle)
	writeJSON(w, http.StatusCreated, view)
}

// handleGetTagEditor returns the editor view (GET /api/tag-editors/{handle}).
func handleGetTagEditor(w http.ResponseWriter, r *http.Request) {
	view, err := orchestrators.ExecuteGetTagEditor(r.PathValue("handle"), currentActor(r), tagEditorDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// handleTagEditorOps applies editing steps (POST /api/tag-editors/{handle}/ops).
// A single op may be sent bare ({"op":"add","value":"x"}) or as {"ops":[...]}.
// POST: 200 with the view when every step applied; 422 with the view and error
// when a step was rejected, which leaves the list as it was before that step
func handleTagEditorOps(w http.ResponseWriter, r *http.Request) {
	var body struct {
		orchestrators.TagEditOp
		Ops []orchestrators.TagEditOp `json:"ops"`
	}
	if err := strictDecode(w, r, &body); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	ops := body.Ops
	if len(ops) == 0 {
		if body.Op == "" {
			http.Error(w, "op is required", http.StatusBadRequest)
			return
		}
		ops = []orchestrators.TagEditOp{body.TagEditOp}
	}

	handle := r.PathValue("handle")
	actor := currentActor(r)
	deps := tagEditorDeps()
	var resp tagOpsResponse
	for _, op := range ops {
		view, err := orchestrators.ExecuteApplyTagEdit(handle, op, actor, deps)
		if err != nil && !orchestrators.IsTagEditRejection(err) {
			writeError(w, err)
			return
		}
		resp.Editor = view
		if err != nil {
			resp.Error = err.Error()
			writeJSON(w, http.StatusUnprocessableEntity, resp)
			return
		}
		resp.Applied++
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleSaveTagEditor persists the list and closes the editor (POST /api/tag-editors/{handle}/save).
func handleSaveTagEditor(w http.ResponseWriter, r *http.Request) {
	result, err := orchestrators.ExecuteSaveTagEditor(r.Context(), r.PathValue("handle"), currentActor(r), tagEditorDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleDiscardTagEditor closes the editor without saving (DELETE /api/tag-editors/{handle}).
func handleDiscardTagEditor(w http.ResponseWriter, r *http.Request) {
	if err := orchestrators.ExecuteDiscardTagEditor(r.PathValue("handle"), currentActor(r), tagEditorDeps()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
