package orchestrators

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	emailAdapter "fieldops/internal/adapters/email"
	technicianStore "fieldops/internal/adapters/storage/technician"
	"fieldops/internal/domain/audit"
	"fieldops/internal/domain/taglist"
	"fieldops/internal/domain/team"
	"fieldops/internal/domain/technician"
)

// TechnicianStoreForTags defines the technician store methods the tag editor needs.
type TechnicianStoreForTags interface {
	GetByID(ctx context.Context, id string) (technician.Technician, error)
	ReplaceSkills(ctx context.Context, technicianID string, skills []string) error
	List(ctx context.Context, filter technicianStore.ListFilter) ([]technician.Technician, error)
}

// TeamStoreForTags defines the team store methods the tag editor needs.
type TeamStoreForTags interface {
	GetByID(ctx context.Context, id string) (team.Team, error)
	ReplaceExpertise(ctx context.Context, teamID string, expertise []string) error
}

// AuditStoreForOrchestrator records audit events.
type AuditStoreForOrchestrator interface {
	Save(ctx context.Context, event audit.Event) error
}

// TagEditorDeps holds dependencies for the tag editor orchestrators.
type TagEditorDeps struct {
	Registry        *TagEditorRegistry
	TechnicianStore TechnicianStoreForTags
	TeamStore       TeamStoreForTags
	AuditStore      AuditStoreForOrchestrator
	EmailSender     emailAdapter.Sender // nil disables notifications
	Outbox          OutboxQueue         // optional; failed notices are queued for retry
	SkillPolicy     taglist.Policy
	ExpertisePolicy taglist.Policy
	Now             func() time.Time
}

func (d TagEditorDeps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d TagEditorDeps) policy(kind TagListKind) taglist.Policy {
	if kind == KindExpertise {
		return d.ExpertisePolicy
	}
	return d.SkillPolicy
}

// TagEditorView is the client-facing state of an open editor.
type TagEditorView struct {
	Handle       string        `json:"handle"`
	Kind         TagListKind   `json:"kind"`
	OwnerID      string        `json:"owner_id"`
	Policy       string        `json:"policy"`
	Tags         []string      `json:"tags"`
	PendingInput string        `json:"pending_input"`
	Editing      *EditingView  `json:"editing"`
	LastError    *TagErrorView `json:"last_error"`
	Dirty        bool          `json:"dirty"`
}

// EditingView describes the active edit session.
type EditingView struct {
	Index int    `json:"index"`
	Draft string `json:"draft"`
}

// TagErrorView is a validation message shown next to the input.
type TagErrorView struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func viewOf(e *tagEditorEntry) TagEditorView {
	st := e.editor.State()
	v := TagEditorView{
		Handle:       e.handle,
		Kind:         e.kind,
		OwnerID:      e.ownerID,
		Policy:       st.Policy().String(),
		Tags:         st.Snapshot(),
		PendingInput: st.PendingInput(),
		Dirty:        st.Dirty(),
	}
	if s, ok := st.Session(); ok {
		v.Editing = &EditingView{Index: s.Index, Draft: s.Draft}
	}
	if le := st.LastError(); le != nil {
		v.LastError = &TagErrorView{Code: le.Code, Message: le.Message}
	}
	return v
}

// --- Open ---

// OpenTagEditorInput carries input for opening an editor.
type OpenTagEditorInput struct {
	Kind    TagListKind
	OwnerID string
	Actor   Actor
}

// ExecuteOpenTagEditor loads the owner's current tags and opens an editor on them.
// PRE: Kind is skills or expertise; OwnerID names an existing technician or team
// POST: a new editor is registered to the actor; returns its view
func ExecuteOpenTagEditor(ctx context.Context, input OpenTagEditorInput, deps TagEditorDeps) (TagEditorView, error) {
	if _, err := ParseTagListKind(string(input.Kind)); err != nil {
		return TagEditorView{}, err
	}
	if !input.Actor.canEditTags(input.Kind, input.OwnerID) {
		return TagEditorView{}, ErrForbidden
	}

	var tags []string
	switch input.Kind {
	case KindSkills:
		t, err := deps.TechnicianStore.GetByID(ctx, input.OwnerID)
		if err != nil {
			return TagEditorView{}, err
		}
		tags = t.Skills
	case KindExpertise:
		t, err := deps.TeamStore.GetByID(ctx, input.OwnerID)
		if err != nil {
			return TagEditorView{}, err
		}
		tags = t.Expertise
	}

	editor := taglist.NewEditor(tags, deps.policy(input.Kind))
	e := deps.Registry.open(input.Kind, input.OwnerID, input.Actor.AccountID, editor)
	slog.Info("tag_editor_event", "event", "opened", "handle", e.handle, "kind", input.Kind, "owner_id", input.OwnerID, "account_id", input.Actor.AccountID)

	deps.Registry.mu.Lock()
	defer deps.Registry.mu.Unlock()
	return viewOf(e), nil
}

// ExecuteGetTagEditor returns the current view of an editor.
// PRE: handle was returned by ExecuteOpenTagEditor for the same actor
// POST: the editor's expiry is refreshed
func ExecuteGetTagEditor(handle string, actor Actor, deps TagEditorDeps) (TagEditorView, error) {
	var view TagEditorView
	err := deps.Registry.with(handle, actor.AccountID, func(e *tagEditorEntry) error {
		view = viewOf(e)
		return nil
	})
	return view, err
}

// --- Apply ---

// Tag edit operations accepted by ExecuteApplyTagEdit.
const (
	OpInput      = "input"       // set pending input to Value
	OpAdd        = "add"         // add Value
	OpAddPending = "add_pending" // add the pending input
	OpRemove     = "remove"      // remove the tag at Index
	OpBegin      = "begin"       // begin editing the tag at Index
	OpDraft      = "draft"       // set the draft to Value
	OpCommit     = "commit"
	OpCancel     = "cancel"
	OpRevert     = "revert" // discard local changes and return to the loaded tags
)

// ErrUnknownTagOp is returned for an operation name not listed above.
var ErrUnknownTagOp = errors.New("unknown tag edit operation")

// TagEditOp is a single editing step sent by the client.
type TagEditOp struct {
	Op    string `json:"op"`
	Value string `json:"value,omitempty"`
	Index *int   `json:"index,omitempty"` // required by remove and begin
}

// index returns the op's index, rejecting ops that omit it.
func (op TagEditOp) index() (int, error) {
	if op.Index == nil {
		return 0, fmt.Errorf("%w: %s needs an index", taglist.ErrIndexOutOfRange, op.Op)
	}
	return *op.Index, nil
}

func (op TagEditOp) apply(ed *taglist.Editor) error {
	switch op.Op {
	case OpInput:
		ed.SetPendingInput(op.Value)
		return nil
	case OpAdd:
		return ed.AddTag(op.Value)
	case OpAddPending:
		return ed.AddPending()
	case OpRemove:
		i, err := op.index()
		if err != nil {
			return err
		}
		return ed.RemoveTag(i)
	case OpBegin:
		i, err := op.index()
		if err != nil {
			return err
		}
		return ed.BeginEdit(i)
	case OpDraft:
		return ed.UpdateDraft(op.Value)
	case OpCommit:
		return ed.CommitEdit()
	case OpCancel:
		ed.CancelEdit()
		return nil
	case OpRevert:
		ed.Reset(ed.State().Initial())
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownTagOp, op.Op)
}

// IsTagEditRejection reports whether err is a rejected editing step rather than
// a missing, foreign or busy editor. A rejected step leaves the tags unchanged.
func IsTagEditRejection(err error) bool {
	var ve *taglist.ValidationError
	return errors.As(err, &ve) ||
		errors.Is(err, taglist.ErrIndexOutOfRange) ||
		errors.Is(err, taglist.ErrNoActiveSession) ||
		errors.Is(err, ErrUnknownTagOp)
}

// ExecuteApplyTagEdit applies one operation to an open editor.
// PRE: handle belongs to actor
// POST: returns the resulting view; when the step is rejected the view is
// still returned together with the rejection error
func ExecuteApplyTagEdit(handle string, op TagEditOp, actor Actor, deps TagEditorDeps) (TagEditorView, error) {
	var view TagEditorView
	var opErr error
	err := deps.Registry.with(handle, actor.AccountID, func(e *tagEditorEntry) error {
		opErr = op.apply(e.editor)
		view = viewOf(e)
		return nil
	})
	if err != nil {
		return TagEditorView{}, err
	}
	if opErr != nil {
		slog.Debug("tag_editor_event", "event", "rejected", "handle", handle, "op", op.Op, "error", opErr.Error())
	}
	return view, opErr
}

// --- Save ---

// SaveTagEditorResult reports what a save did.
type SaveTagEditorResult struct {
	Changed  bool     `json:"changed"`
	Tags     []string `json:"tags"`
	Notified int      `json:"notified"`
}

// ExecuteSaveTagEditor persists the editor's tags to their owner and closes the editor.
// An active edit session is not committed; only the list as shown is saved.
// PRE: handle belongs to actor
// POST: on success the owner's stored list equals the editor snapshot, an audit
// event is recorded and the editor is closed. Saving an unchanged list only closes it.
// On failure the editor stays open.
func ExecuteSaveTagEditor(ctx context.Context, handle string, actor Actor, deps TagEditorDeps) (SaveTagEditorResult, error) {
	var kind TagListKind
	var ownerID string
	var before, after []string
	var dirty bool
	err := deps.Registry.with(handle, actor.AccountID, func(e *tagEditorEntry) error {
		st := e.editor.State()
		kind, ownerID = e.kind, e.ownerID
		before, after, dirty = st.Initial(), st.Snapshot(), st.Dirty()
		e.saving = true
		return nil
	})
	if err != nil {
		return SaveTagEditorResult{}, err
	}

	result, err := saveTags(ctx, kind, ownerID, before, after, dirty, actor, deps)
	deps.Registry.finishSave(handle, err == nil)
	if err != nil {
		return SaveTagEditorResult{}, err
	}
	slog.Info("tag_editor_event", "event", "saved", "handle", handle, "kind", kind, "owner_id", ownerID, "changed", result.Changed, "count", len(after))
	return result, nil
}

func saveTags(ctx context.Context, kind TagListKind, ownerID string, before, after []string, dirty bool, actor Actor, deps TagEditorDeps) (SaveTagEditorResult, error) {
	result := SaveTagEditorResult{Changed: dirty, Tags: after}
	if !dirty {
		return result, nil
	}

	var recipients []emailAdapter.SendRequest
	var category audit.Category
	switch kind {
	case KindSkills:
		t, err := deps.TechnicianStore.GetByID(ctx, ownerID)
		if err != nil {
			return SaveTagEditorResult{}, err
		}
		t.Skills = after
		if err := t.Validate(deps.SkillPolicy); err != nil {
			return SaveTagEditorResult{}, invalid(err)
		}
		if err := deps.TechnicianStore.ReplaceSkills(ctx, ownerID, after); err != nil {
			return SaveTagEditorResult{}, err
		}
		category = audit.CategoryTechnician
		if t.Email != "" && t.ID != actor.TechnicianID {
			recipients = append(recipients, skillsNotice(t, actor, after))
		}
	case KindExpertise:
		t, err := deps.TeamStore.GetByID(ctx, ownerID)
		if err != nil {
			return SaveTagEditorResult{}, err
		}
		t.Expertise = after
		if err := t.Validate(deps.ExpertisePolicy); err != nil {
			return SaveTagEditorResult{}, invalid(err)
		}
		if err := deps.TeamStore.ReplaceExpertise(ctx, ownerID, after); err != nil {
			return SaveTagEditorResult{}, err
		}
		category = audit.CategoryTeam
		members, err := deps.TechnicianStore.List(ctx, technicianStore.ListFilter{TeamID: ownerID, ActiveOnly: true})
		if err != nil {
			slog.Error("tag_editor_event", "event", "notify_lookup_failed", "team_id", ownerID, "error", err.Error())
		}
		for _, m := range members {
			if m.Email != "" {
				recipients = append(recipients, expertiseNotice(t, m, actor, after))
			}
		}
	}

	recordTagAudit(ctx, deps, actor, category, kind, ownerID, before, after)
	result.Notified = notify(ctx, deps, recipients)
	return result, nil
}

func recordTagAudit(ctx context.Context, deps TagEditorDeps, actor Actor, category audit.Category, kind TagListKind, ownerID string, before, after []string) {
	if deps.AuditStore == nil {
		return
	}
	meta, _ := json.Marshal(map[string]any{"kind": kind, "before": before, "after": after})
	event := audit.NewEvent(deps.now(), actor.AccountID, actor.Email, actor.Role, category, audit.ActionUpdate).
		WithResource(string(category), ownerID).
		WithDescription(fmt.Sprintf("%s updated (%d entries)", kind, len(after))).
		WithMetadata(string(meta))
	if err := deps.AuditStore.Save(ctx, event); err != nil {
		slog.Error("audit_save_failed", "error", err.Error(), "resource_id", ownerID)
	}
}

// notify sends notices and returns how many were accepted. Failures are logged
// and queued in the outbox when one is configured, never returned.
func notify(ctx context.Context, deps TagEditorDeps, reqs []emailAdapter.SendRequest) int {
	if deps.EmailSender == nil || len(reqs) == 0 {
		return 0
	}
	if len(reqs) == 1 {
		if _, err := deps.EmailSender.Send(ctx, reqs[0]); err != nil {
			slog.Error("tag_editor_event", "event", "notify_failed", "to", reqs[0].To, "error", err.Error())
			enqueueNotice(ctx, deps.Outbox, reqs[0], err, deps.now())
			return 0
		}
		return 1
	}
	results, err := deps.EmailSender.SendBatch(ctx, reqs)
	if err != nil {
		slog.Error("tag_editor_event", "event", "notify_failed", "count", len(reqs), "error", err.Error())
		// a failed batch is all-or-nothing at the provider
		for _, req := range reqs {
			enqueueNotice(ctx, deps.Outbox, req, err, deps.now())
		}
		return 0
	}
	return len(results)
}

func bulletList(tags []string) string {
	if len(tags) == 0 {
		return "_(none)_\n"
	}
	var b strings.Builder
	for _, t := range tags {
		b.WriteString("- ")
		b.WriteString(t)
		b.WriteString("\n")
	}
	return b.String()
}

func skillsNotice(t technician.Technician, actor Actor, skills []string) emailAdapter.SendRequest {
	md := fmt.Sprintf("Kia ora %s,\n\nYour skills were updated by %s. Your skills are now:\n\n%s", t.Name, actor.Email, bulletList(skills))
	return noticeRequest(t.Email, "Your skills were updated", md)
}

func expertiseNotice(t team.Team, member technician.Technician, actor Actor, expertise []string) emailAdapter.SendRequest {
	md := fmt.Sprintf("Kia ora %s,\n\nThe expertise of **%s** was updated by %s. The team now covers:\n\n%s", member.Name, t.Name, actor.Email, bulletList(expertise))
	return noticeRequest(member.Email, "Team expertise updated: "+t.Name, md)
}

func noticeRequest(to, subject, markdown string) emailAdapter.SendRequest {
	body, err := emailAdapter.RenderMarkdown(markdown)
	if err != nil {
		body = "<pre>" + html.EscapeString(markdown) + "</pre>"
	}
	return emailAdapter.SendRequest{To: []string{to}, Subject: subject, HTML: body}
}

// --- Discard ---

// ExecuteDiscardTagEditor closes an editor without saving.
// PRE: handle belongs to actor
// POST: the editor is gone; the owner's stored tags are untouched
func ExecuteDiscardTagEditor(handle string, actor Actor, deps TagEditorDeps) error {
	if err := deps.Registry.close(handle, actor.AccountID); err != nil {
		return err
	}
	slog.Info("tag_editor_event", "event", "discarded", "handle", handle, "account_id", actor.AccountID)
	return nil
}
