package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"fieldops/internal/domain/taglist"

	"github.com/google/uuid"
)

// TagListKind names which owned tag list an editor works on.
type TagListKind string

const (
	KindSkills    TagListKind = "skills"    // a technician's skills
	KindExpertise TagListKind = "expertise" // a team's areas of expertise
)

var (
	ErrUnknownTagListKind = errors.New("kind must be skills or expertise")
	ErrTagEditorNotFound  = errors.New("tag editor not found or expired")
	ErrTagEditorForbidden = errors.New("tag editor belongs to another account")
	ErrTagEditorBusy      = errors.New("tag editor is being saved")
)

// ParseTagListKind validates a kind received from a client.
func ParseTagListKind(s string) (TagListKind, error) {
	switch k := TagListKind(s); k {
	case KindSkills, KindExpertise:
		return k, nil
	}
	return "", ErrUnknownTagListKind
}

// tagEditorEntry is one open editor.
// INVARIANT: editor is only touched while the registry mutex is held.
type tagEditorEntry struct {
	handle    string
	kind      TagListKind
	ownerID   string
	openedBy  string
	editor    *taglist.Editor
	touchedAt time.Time
	saving    bool
}

// TagEditorRegistry holds open tag editors between requests.
// Each editor is owned by the account that opened it and expires after
// ttl without activity.
type TagEditorRegistry struct {
	mu      sync.Mutex
	entries map[string]*tagEditorEntry
	ttl     time.Duration
	now     func() time.Time
	newID   func() string
}

// NewTagEditorRegistry creates an empty registry.
// PRE: ttl > 0
// POST: returns a registry using the wall clock and random UUID handles
func NewTagEditorRegistry(ttl time.Duration) *TagEditorRegistry {
	return &TagEditorRegistry{
		entries: make(map[string]*tagEditorEntry),
		ttl:     ttl,
		now:     time.Now,
		newID:   func() string { return uuid.New().String() },
	}
}

// Len returns the number of open editors, expired or not.
func (r *TagEditorRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *TagEditorRegistry) open(kind TagListKind, ownerID, openedBy string, editor *taglist.Editor) *tagEditorEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := &tagEditorEntry{
		handle:    r.newID(),
		kind:      kind,
		ownerID:   ownerID,
		openedBy:  openedBy,
		editor:    editor,
		touchedAt: r.now(),
	}
	r.entries[e.handle] = e
	return e
}

// with runs fn on the caller's live entry under the registry lock and refreshes its expiry.
func (r *TagEditorRegistry) with(handle, accountID string, fn func(e *tagEditorEntry) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, err := r.lookup(handle, accountID)
	if err != nil {
		return err
	}
	e.touchedAt = r.now()
	return fn(e)
}

// lookup finds a live entry. The caller holds r.mu.
func (r *TagEditorRegistry) lookup(handle, accountID string) (*tagEditorEntry, error) {
	e, ok := r.entries[handle]
	if !ok {
		return nil, ErrTagEditorNotFound
	}
	if r.expired(e) {
		delete(r.entries, handle)
		return nil, ErrTagEditorNotFound
	}
	if e.openedBy != accountID {
		return nil, ErrTagEditorForbidden
	}
	if e.saving {
		return nil, ErrTagEditorBusy
	}
	return e, nil
}

func (r *TagEditorRegistry) expired(e *tagEditorEntry) bool {
	return r.now().Sub(e.touchedAt) > r.ttl
}

// finishSave ends a save started with saving=true. A successful save closes the editor.
func (r *TagEditorRegistry) finishSave(handle string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ok {
		delete(r.entries, handle)
		return
	}
	if e, found := r.entries[handle]; found {
		e.saving = false
		e.touchedAt = r.now()
	}
}

// close removes the caller's editor.
func (r *TagEditorRegistry) close(handle, accountID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.lookup(handle, accountID); err != nil {
		return err
	}
	delete(r.entries, handle)
	return nil
}

// Sweep drops editors idle for longer than the TTL. Editors mid-save are kept.
// POST: returns the number of editors removed
func (r *TagEditorRegistry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for handle, e := range r.entries {
		if !e.saving && r.expired(e) {
			delete(r.entries, handle)
			removed++
		}
	}
	if removed > 0 {
		slog.Info("tag_editor_event", "event", "swept", "removed", removed, "open", len(r.entries))
	}
	return removed
}

// StartTagEditorSweeper periodically sweeps expired editors until ctx is done.
// PRE: interval > 0
// POST: goroutine started; the returned function stops it
func StartTagEditorSweeper(ctx context.Context, r *TagEditorRegistry, interval time.Duration) func() {
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.Sweep()
			}
		}
	}()
	return cancel
}
