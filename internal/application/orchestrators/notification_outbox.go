package orchestrators

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	emailAdapter "fieldops/internal/adapters/email"
	domain "fieldops/internal/domain/outbox"

	"github.com/google/uuid"
)

// OutboxStore persists notices whose delivery failed.
type OutboxStore interface {
	GetByID(ctx context.Context, id string) (domain.Entry, error)
	Save(ctx context.Context, e domain.Entry) error
	ListPending(ctx context.Context, limit int) ([]domain.Entry, error)
}

// OutboxQueue is the part of OutboxStore needed to enqueue.
type OutboxQueue interface {
	Save(ctx context.Context, e domain.Entry) error
}

// emailPayload is the stored form of an emailAdapter.SendRequest.
type emailPayload struct {
	To      []string `json:"to"`
	From    string   `json:"from,omitempty"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

// enqueueNotice stores req for retry after a failed send. Errors are logged.
// The failed send counts as the first attempt.
func enqueueNotice(ctx context.Context, queue OutboxQueue, req emailAdapter.SendRequest, cause error, now time.Time) {
	if queue == nil {
		return
	}
	payload, err := json.Marshal(emailPayload{To: req.To, From: req.From, Subject: req.Subject, HTML: req.HTML, ReplyTo: req.ReplyTo})
	if err != nil {
		slog.Error("outbox_event", "event", "encode_failed", "error", err.Error())
		return
	}
	e := domain.Entry{
		ID:        uuid.New().String(),
		Kind:      domain.KindEmail,
		Payload:   string(payload),
		CreatedAt: now,
	}
	if err := e.Validate(); err != nil {
		slog.Error("outbox_event", "event", "invalid_entry", "error", err.Error())
		return
	}
	e.MarkAttempt(now)
	e.MarkFailed(cause)
	if err := queue.Save(ctx, e); err != nil {
		slog.Error("outbox_event", "event", "enqueue_failed", "to", req.To, "error", err.Error())
		return
	}
	slog.Info("outbox_event", "event", "enqueued", "entry_id", e.ID, "to", req.To)
}

// OutboxRunResult summarises one processing pass.
type OutboxRunResult struct {
	Attempted int `json:"attempted"`
	Delivered int `json:"delivered"`
	Failed    int `json:"failed"`
	Waiting   int `json:"waiting"` // still inside their backoff window
}

// OutboxProcessor retries queued notices with exponential backoff.
type OutboxProcessor struct {
	store     OutboxStore
	sender    emailAdapter.Sender
	baseDelay time.Duration
	maxDelay  time.Duration
	batchSize int
	now       func() time.Time
}

// NewOutboxProcessor creates a processor delivering through sender.
func NewOutboxProcessor(store OutboxStore, sender emailAdapter.Sender) *OutboxProcessor {
	return &OutboxProcessor{
		store:     store,
		sender:    sender,
		baseDelay: 30 * time.Second,
		maxDelay:  time.Hour,
		batchSize: 50,
		now:       time.Now,
	}
}

// ProcessPending attempts every pending entry whose backoff has elapsed.
// PRE: Context is valid
// POST: attempted entries are saved with their new status
func (p *OutboxProcessor) ProcessPending(ctx context.Context) (OutboxRunResult, error) {
	var res OutboxRunResult
	entries, err := p.store.ListPending(ctx, p.batchSize)
	if err != nil {
		return res, fmt.Errorf("list pending outbox entries: %w", err)
	}

	now := p.now()
	for _, e := range entries {
		if !e.Due(now, p.baseDelay, p.maxDelay) {
			res.Waiting++
			continue
		}
		res.Attempted++
		delivered, err := p.attempt(ctx, &e, now)
		if delivered {
			res.Delivered++
		} else {
			res.Failed++
		}
		if err != nil {
			return res, err
		}
	}
	if res.Attempted > 0 {
		slog.Info("outbox_event", "event", "processed", "attempted", res.Attempted, "delivered", res.Delivered, "failed", res.Failed, "waiting", res.Waiting)
	}
	return res, nil
}

// ProcessSingle attempts one entry now, ignoring its backoff. Entries that
// failed for good get one more attempt.
// PRE: entryID names an entry that is neither delivered nor abandoned
// POST: returns the entry with its new status, or the error that kept it from being saved
func (p *OutboxProcessor) ProcessSingle(ctx context.Context, entryID string) (domain.Entry, error) {
	e, err := p.store.GetByID(ctx, entryID)
	if err != nil {
		return domain.Entry{}, err
	}
	if e.Status == domain.StatusDone || e.Status == domain.StatusAbandoned {
		return e, domain.ErrTerminal
	}
	if e.Attempts >= e.MaxAttempts {
		e.MaxAttempts = e.Attempts + 1
	}
	if _, err := p.attempt(ctx, &e, p.now()); err != nil {
		return domain.Entry{}, err
	}
	return e, nil
}

// AbandonEntry closes an entry without delivery.
// POST: Entry status set to abandoned; closed entries return ErrTerminal
func (p *OutboxProcessor) AbandonEntry(ctx context.Context, entryID string) error {
	e, err := p.store.GetByID(ctx, entryID)
	if err != nil {
		return err
	}
	if e.IsTerminal() {
		return domain.ErrTerminal
	}
	e.MarkAbandoned()
	if err := p.store.Save(ctx, e); err != nil {
		return err
	}
	slog.Info("outbox_event", "event", "abandoned", "entry_id", e.ID)
	return nil
}

// attempt delivers e once and saves the outcome. It reports whether delivery
// succeeded and returns an error only when the outcome could not be saved.
func (p *OutboxProcessor) attempt(ctx context.Context, e *domain.Entry, now time.Time) (bool, error) {
	e.MarkAttempt(now)
	messageID, err := p.deliver(ctx, *e)
	if err != nil {
		e.MarkFailed(err)
		slog.Warn("outbox_event", "event", "attempt_failed", "entry_id", e.ID, "attempt", e.Attempts, "status", e.Status, "error", err.Error())
	} else {
		e.MarkSuccess(messageID)
		slog.Info("outbox_event", "event", "delivered", "entry_id", e.ID, "attempt", e.Attempts)
	}
	if saveErr := p.store.Save(ctx, *e); saveErr != nil {
		slog.Error("outbox_event", "event", "save_failed", "entry_id", e.ID, "error", saveErr.Error())
		return err == nil, fmt.Errorf("save outbox entry %s: %w", e.ID, saveErr)
	}
	return err == nil, nil
}

var errNoSender = errors.New("no email sender configured")

func (p *OutboxProcessor) deliver(ctx context.Context, e domain.Entry) (string, error) {
	if e.Kind != domain.KindEmail {
		return "", fmt.Errorf("unknown outbox kind %q", e.Kind)
	}
	if p.sender == nil {
		return "", errNoSender
	}
	var payload emailPayload
	if err := json.Unmarshal([]byte(e.Payload), &payload); err != nil {
		return "", fmt.Errorf("decode payload: %w", err)
	}
	res, err := p.sender.Send(ctx, emailAdapter.SendRequest{
		To:      payload.To,
		From:    payload.From,
		Subject: payload.Subject,
		HTML:    payload.HTML,
		ReplyTo: payload.ReplyTo,
	})
	if err != nil {
		return "", err
	}
	return res.MessageID, nil
}

// StartOutboxWorker runs ProcessPending every interval until ctx is done.
// PRE: interval > 0
// POST: goroutine started; the returned function stops it
func StartOutboxWorker(ctx context.Context, p *OutboxProcessor, interval time.Duration) func() {
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := p.ProcessPending(ctx); err != nil {
					slog.Error("outbox_event", "event", "process_failed", "error", err.Error())
				}
			}
		}
	}()
	return cancel
}
