package orchestrators

import (
	"context"
	"errors"
	"testing"
	"time"

	emailAdapter "fieldops/internal/adapters/email"
	"fieldops/internal/domain/outbox"
)

func newTestProcessor(store *mockOutboxStore, sender emailAdapter.Sender, clock *time.Time) *OutboxProcessor {
	p := NewOutboxProcessor(store, sender)
	p.baseDelay = time.Minute
	p.maxDelay = time.Hour
	p.now = func() time.Time { return *clock }
	return p
}

func queueNotice(t *testing.T, store *mockOutboxStore, to string, now time.Time) outbox.Entry {
	t.Helper()
	enqueueNotice(context.Background(), store, emailAdapter.SendRequest{
		To: []string{to}, Subject: "Your skills were updated", HTML: "<p>hi</p>",
	}, errors.New("provider down"), now)
	all := store.all()
	return all[len(all)-1]
}

// TestOutbox_RetryDeliversAfterBackoff tests that a queued notice waits out its
// backoff and is then delivered with its original content.
func TestOutbox_RetryDeliversAfterBackoff(t *testing.T) {
	clock := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	store := newMockOutboxStore()
	sender := &recordingSender{}
	p := newTestProcessor(store, sender, &clock)

	e := queueNotice(t, store, "aroha@fieldops.test", clock)
	if e.Attempts != 1 || e.Status != outbox.StatusRetrying {
		t.Fatalf("unexpected queued entry %+v", e)
	}

	res, err := p.ProcessPending(context.Background())
	if err != nil {
		t.Fatalf("ProcessPending: %v", err)
	}
	if res.Waiting != 1 || res.Attempted != 0 {
		t.Fatalf("got %+v, want entry held by backoff", res)
	}

	clock = clock.Add(2 * time.Minute)
	res, err = p.ProcessPending(context.Background())
	if err != nil {
		t.Fatalf("ProcessPending: %v", err)
	}
	if res.Delivered != 1 {
		t.Fatalf("got %+v, want one delivery", res)
	}
	if len(sender.sent) != 1 || sender.sent[0].To[0] != "aroha@fieldops.test" || sender.sent[0].HTML != "<p>hi</p>" {
		t.Errorf("unexpected send %+v", sender.sent)
	}
	got, _ := store.GetByID(context.Background(), e.ID)
	if got.Status != outbox.StatusDone || got.ExternalID != "m" {
		t.Errorf("got %+v", got)
	}
}

// TestOutbox_GivesUpAfterMaxAttempts tests that persistent failures close the entry.
func TestOutbox_GivesUpAfterMaxAttempts(t *testing.T) {
	clock := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	store := newMockOutboxStore()
	p := newTestProcessor(store, &recordingSender{fail: true}, &clock)
	e := queueNotice(t, store, "ben@fieldops.test", clock)

	for i := 0; i < 10; i++ {
		clock = clock.Add(2 * time.Hour)
		if _, err := p.ProcessPending(context.Background()); err != nil {
			t.Fatalf("ProcessPending: %v", err)
		}
	}
	failed, _ := store.GetByID(context.Background(), e.ID)
	if failed.Status != outbox.StatusFailed || failed.Attempts != outbox.DefaultMaxAttempts {
		t.Errorf("got %+v", failed)
	}

	p.sender = &recordingSender{}
	got, err := p.ProcessSingle(context.Background(), e.ID)
	if err != nil {
		t.Fatalf("ProcessSingle: %v", err)
	}
	if got.Status != outbox.StatusDone || got.Attempts != outbox.DefaultMaxAttempts+1 {
		t.Errorf("got %+v after manual retry", got)
	}
}

// TestOutbox_ProcessSingleAndAbandon tests manual retry and abandonment.
func TestOutbox_ProcessSingleAndAbandon(t *testing.T) {
	clock := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	store := newMockOutboxStore()
	p := newTestProcessor(store, &recordingSender{}, &clock)

	first := queueNotice(t, store, "a@fieldops.test", clock)
	second := queueNotice(t, store, "b@fieldops.test", clock)

	got, err := p.ProcessSingle(context.Background(), first.ID)
	if err != nil {
		t.Fatalf("ProcessSingle: %v", err)
	}
	if got.Status != outbox.StatusDone || got.Attempts != 2 {
		t.Errorf("got %+v", got)
	}

	if err := p.AbandonEntry(context.Background(), second.ID); err != nil {
		t.Fatalf("AbandonEntry: %v", err)
	}
	if err := p.AbandonEntry(context.Background(), second.ID); !errors.Is(err, outbox.ErrTerminal) {
		t.Errorf("got %v, want ErrTerminal", err)
	}
	if pending, _ := store.ListPending(context.Background(), 10); len(pending) != 0 {
		t.Errorf("got %d pending, want 0", len(pending))
	}
}

// TestOutbox_NoSender tests that a missing sender counts as a failed attempt.
func TestOutbox_NoSender(t *testing.T) {
	clock := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	store := newMockOutboxStore()
	p := newTestProcessor(store, nil, &clock)
	e := queueNotice(t, store, "a@fieldops.test", clock)

	got, err := p.ProcessSingle(context.Background(), e.ID)
	if err != nil {
		t.Fatalf("ProcessSingle: %v", err)
	}
	if got.ErrorMessage != errNoSender.Error() || got.Status != outbox.StatusRetrying {
		t.Errorf("got %+v", got)
	}
}

// TestOutbox_SaveFailureIsReported tests that an outcome the store could not
// record is returned to the caller instead of being reported as the new status.
func TestOutbox_SaveFailureIsReported(t *testing.T) {
	clock := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	store := newMockOutboxStore()
	p := newTestProcessor(store, &recordingSender{}, &clock)
	e := queueNotice(t, store, "a@fieldops.test", clock)

	diskFull := errors.New("disk full")
	store.saveErr = diskFull
	if _, err := p.ProcessSingle(context.Background(), e.ID); !errors.Is(err, diskFull) {
		t.Fatalf("ProcessSingle: got %v, want disk full", err)
	}

	clock = clock.Add(time.Hour)
	res, err := p.ProcessPending(context.Background())
	if !errors.Is(err, diskFull) {
		t.Fatalf("ProcessPending: got %v, want disk full", err)
	}
	if res.Attempted != 1 {
		t.Errorf("got %+v", res)
	}

	store.saveErr = nil
	stored, _ := store.GetByID(context.Background(), e.ID)
	if stored.Status != outbox.StatusRetrying || stored.Attempts != 1 {
		t.Errorf("store changed despite failed saves: %+v", stored)
	}
}
