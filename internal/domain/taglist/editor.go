package taglist

// Editor is a mutable handle over a State for callers that hold one editor
// for the lifetime of an editing session.
// Editor is not safe for concurrent use.
type Editor struct {
	state State
}

// NewEditor creates an Editor seeded with initial tags.
// PRE: none
// POST: returns an editor with no session and no error
func NewEditor(initial []string, policy Policy) *Editor {
	return &Editor{state: New(initial, policy)}
}

// State returns the current state value.
func (e *Editor) State() State { return e.state }

// Snapshot returns a copy of the current tags for persisting.
func (e *Editor) Snapshot() []string { return e.state.Snapshot() }

// LastError returns the validation error from the latest attempt, or nil.
func (e *Editor) LastError() *ValidationError { return e.state.LastError() }

// SetPendingInput stores the add-box text.
func (e *Editor) SetPendingInput(v string) {
	e.state = e.state.SetPendingInput(v)
}

// AddTag appends raw to the list.
func (e *Editor) AddTag(raw string) error {
	return e.apply(e.state.AddTag(raw))
}

// AddPending adds the pending input.
func (e *Editor) AddPending() error {
	return e.apply(e.state.AddPending())
}

// RemoveTag deletes the tag at index.
func (e *Editor) RemoveTag(index int) error {
	return e.apply(e.state.RemoveTag(index))
}

// BeginEdit opens an edit session on the tag at index.
func (e *Editor) BeginEdit(index int) error {
	return e.apply(e.state.BeginEdit(index))
}

// UpdateDraft replaces the draft of the active session.
func (e *Editor) UpdateDraft(v string) error {
	return e.apply(e.state.UpdateDraft(v))
}

// CommitEdit writes the draft back into the list.
func (e *Editor) CommitEdit() error {
	return e.apply(e.state.CommitEdit())
}

// CancelEdit closes the active session. Safe to call with no session.
func (e *Editor) CancelEdit() {
	e.state = e.state.CancelEdit()
}

// Reset re-seeds the editor from tags.
func (e *Editor) Reset(tags []string) {
	e.state = e.state.Reset(tags)
}

func (e *Editor) apply(next State, err error) error {
	e.state = next
	return err
}
