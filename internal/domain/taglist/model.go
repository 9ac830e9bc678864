package taglist

import (
	"errors"
	"fmt"
	"slices"
)

// ValidationError is a rejection of a proposed tag value.
// It is shown to the user and never persisted.
type ValidationError struct {
	Code    string
	Message string
}

// Error implements error.
func (e *ValidationError) Error() string {
	return e.Message
}

// Domain errors
var (
	ErrEmpty           = &ValidationError{Code: "empty", Message: "value cannot be empty"}
	ErrDuplicate       = &ValidationError{Code: "duplicate", Message: "value already exists"}
	ErrIndexOutOfRange = errors.New("tag index out of range")
	ErrNoActiveSession = errors.New("no active edit session")
)

// EditSession records which tag is being edited and its in-progress value.
type EditSession struct {
	Index int
	Draft string
}

// State is the full state of a tag list editor.
// Transitions are pure: each returns a new State and never mutates the receiver,
// so older States remain valid snapshots.
// INVARIANT: tags holds no blank values and no two values equal under policy.
// INVARIANT: when editing is true, session.Index is a valid index into tags.
type State struct {
	policy  Policy
	tags    []string
	initial []string
	pending string
	session EditSession
	editing bool
	lastErr *ValidationError
}

// New creates a State seeded with initial tags.
// Blank values and duplicates under policy are dropped, first occurrence wins.
// PRE: none
// POST: returns a State with no session and no error
func New(initial []string, policy Policy) State {
	tags := Dedupe(initial, policy)
	return State{
		policy:  policy,
		tags:    tags,
		initial: slices.Clone(tags),
	}
}

// Policy returns the comparison policy fixed at construction.
func (s State) Policy() Policy { return s.policy }

// Len returns the number of tags.
func (s State) Len() int { return len(s.tags) }

// PendingInput returns the text waiting in the add box.
func (s State) PendingInput() string { return s.pending }

// LastError returns the validation error from the latest attempt, or nil.
func (s State) LastError() *ValidationError { return s.lastErr }

// Session returns the active edit session, if any.
func (s State) Session() (EditSession, bool) {
	return s.session, s.editing
}

// Snapshot returns a copy of the tags in display order.
// PRE: none
// POST: returned slice is owned by the caller; never nil
func (s State) Snapshot() []string {
	out := make([]string, len(s.tags))
	copy(out, s.tags)
	return out
}

// Initial returns a copy of the tags the state was seeded with.
func (s State) Initial() []string {
	return slices.Clone(s.initial)
}

// Contains reports whether v matches a tag under the list's policy.
func (s State) Contains(v string) bool {
	return indexOf(s.tags, Normalize(v), s.policy, -1) >= 0
}

// Dirty reports whether the tags differ from the list the state was seeded with.
func (s State) Dirty() bool {
	return !slices.Equal(s.tags, s.initial)
}

// SetPendingInput stores the add-box text and clears the last error.
func (s State) SetPendingInput(v string) State {
	s.pending = v
	s.lastErr = nil
	return s
}

// AddTag appends raw to the end of the list.
// PRE: none
// POST: on success the trimmed value is last and pending input is cleared;
// on failure tags are unchanged. LastError always reflects this call.
func (s State) AddTag(raw string) (State, error) {
	v := Normalize(raw)
	if v == "" {
		s.lastErr = ErrEmpty
		return s, ErrEmpty
	}
	if indexOf(s.tags, v, s.policy, -1) >= 0 {
		s.lastErr = ErrDuplicate
		return s, ErrDuplicate
	}
	tags := make([]string, len(s.tags), len(s.tags)+1)
	copy(tags, s.tags)
	s.tags = append(tags, v)
	s.pending = ""
	s.lastErr = nil
	return s, nil
}

// AddPending adds the current pending input.
func (s State) AddPending() (State, error) {
	return s.AddTag(s.pending)
}

// RemoveTag deletes the tag at index, shifting later tags left.
// An edit session on the removed tag is cancelled; a session on a later tag
// follows it to its new index.
// PRE: none
// POST: on success len decreases by one; on failure state is unchanged
func (s State) RemoveTag(index int) (State, error) {
	if err := s.checkIndex(index); err != nil {
		return s, err
	}
	s.tags = slices.Delete(slices.Clone(s.tags), index, index+1)
	if s.editing {
		switch {
		case s.session.Index == index:
			s.session, s.editing = EditSession{}, false
		case s.session.Index > index:
			s.session.Index--
		}
	}
	s.lastErr = nil
	return s, nil
}

// BeginEdit opens an edit session on the tag at index, replacing any prior session.
// PRE: none
// POST: on success the draft equals the current tag value
func (s State) BeginEdit(index int) (State, error) {
	if err := s.checkIndex(index); err != nil {
		return s, err
	}
	s.session = EditSession{Index: index, Draft: s.tags[index]}
	s.editing = true
	s.lastErr = nil
	return s, nil
}

// UpdateDraft replaces the draft value of the active session.
// The draft is not validated until CommitEdit.
func (s State) UpdateDraft(v string) (State, error) {
	if !s.editing {
		return s, ErrNoActiveSession
	}
	s.session.Draft = v
	s.lastErr = nil
	return s, nil
}

// CommitEdit writes the draft back into the list.
// A draft equal to its own tag is not a duplicate.
// PRE: none
// POST: on success the session is closed; on validation failure it stays open
func (s State) CommitEdit() (State, error) {
	if !s.editing {
		return s, ErrNoActiveSession
	}
	v := Normalize(s.session.Draft)
	if v == "" {
		s.lastErr = ErrEmpty
		return s, ErrEmpty
	}
	if indexOf(s.tags, v, s.policy, s.session.Index) >= 0 {
		s.lastErr = ErrDuplicate
		return s, ErrDuplicate
	}
	s.tags = slices.Clone(s.tags)
	s.tags[s.session.Index] = v
	s.session, s.editing = EditSession{}, false
	s.lastErr = nil
	return s, nil
}

// CancelEdit closes the active session without touching the tags and clears
// any error left by a rejected commit.
func (s State) CancelEdit() State {
	s.session, s.editing = EditSession{}, false
	s.lastErr = nil
	return s
}

// Reset re-seeds the state from tags, dropping the session, pending input and error.
// The policy is kept.
func (s State) Reset(tags []string) State {
	return New(tags, s.policy)
}

func (s State) checkIndex(index int) error {
	if index < 0 || index >= len(s.tags) {
		return fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, index, len(s.tags))
	}
	return nil
}
