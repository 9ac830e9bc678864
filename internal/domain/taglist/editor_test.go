package taglist

import (
	"errors"
	"slices"
	"testing"
)

// TestEditor_Workflow tests a typical add, edit and remove sequence through the mutable handle.
func TestEditor_Workflow(t *testing.T) {
	e := NewEditor([]string{"Boilers"}, CaseInsensitive)

	e.SetPendingInput("Chillers")
	if err := e.AddPending(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := e.AddTag("boilers"); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("got %v, want ErrDuplicate", err)
	}
	if e.LastError() != ErrDuplicate {
		t.Errorf("got last error %v, want ErrDuplicate", e.LastError())
	}
	if err := e.BeginEdit(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := e.UpdateDraft("Cooling Towers"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := e.CommitEdit(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := e.RemoveTag(0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := e.Snapshot(); !slices.Equal(got, []string{"Cooling Towers"}) {
		t.Errorf("got %v", got)
	}
	if !e.State().Dirty() {
		t.Error("expected editor to be dirty")
	}
}

// TestEditor_FailedCallKeepsTags tests that rejected calls never mutate the list.
func TestEditor_FailedCallKeepsTags(t *testing.T) {
	e := NewEditor([]string{"A", "B"}, Exact)
	_ = e.RemoveTag(9)
	_ = e.BeginEdit(-1)
	_ = e.CommitEdit()
	if got := e.Snapshot(); !slices.Equal(got, []string{"A", "B"}) {
		t.Errorf("got %v", got)
	}
}

// TestEditor_CancelWithoutSession tests that CancelEdit is safe without a session.
func TestEditor_CancelWithoutSession(t *testing.T) {
	e := NewEditor(nil, Exact)
	e.CancelEdit()
	if _, ok := e.State().Session(); ok {
		t.Error("expected no session")
	}
}

// TestEditor_Reset tests that Reset reseeds the editor and marks it clean.
func TestEditor_Reset(t *testing.T) {
	e := NewEditor([]string{"A"}, Exact)
	_ = e.AddTag("B")
	e.Reset([]string{"Q"})
	if got := e.Snapshot(); !slices.Equal(got, []string{"Q"}) {
		t.Errorf("got %v", got)
	}
	if e.State().Dirty() {
		t.Error("expected clean state after reset")
	}
}

// TestParsePolicy tests configuration parsing of comparison policies.
func TestParsePolicy(t *testing.T) {
	cases := map[string]Policy{
		"exact":            Exact,
		"EXACT":            Exact,
		"case_insensitive": CaseInsensitive,
		"":                 CaseInsensitive,
	}
	for in, want := range cases {
		got, err := ParsePolicy(in)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("%q: got %v, want %v", in, got, want)
		}
	}
	if _, err := ParsePolicy("fuzzy"); err == nil {
		t.Error("expected error for unknown policy")
	}
}

// TestDedupe tests normalisation of arbitrary input lists.
func TestDedupe(t *testing.T) {
	got := Dedupe([]string{" x", "X", "y ", "", "x"}, CaseInsensitive)
	if !slices.Equal(got, []string{"x", "y"}) {
		t.Errorf("got %v, want [x y]", got)
	}
	if got := Dedupe(nil, Exact); got == nil || len(got) != 0 {
		t.Errorf("got %v, want empty non-nil slice", got)
	}
}

// TestValid tests detection of lists that break the invariants.
func TestValid(t *testing.T) {
	if !Valid([]string{"a", "B"}, CaseInsensitive) {
		t.Error("expected valid list")
	}
	if Valid([]string{"a", "A"}, CaseInsensitive) {
		t.Error("expected duplicate to be invalid")
	}
	if Valid([]string{" a"}, Exact) {
		t.Error("expected untrimmed value to be invalid")
	}
	if !Valid(nil, Exact) {
		t.Error("expected nil list to be valid")
	}
}
