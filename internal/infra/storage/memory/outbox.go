package memory

import (
	"context"
	"sync"
	"time"

	appoutbox "carryon/internal/app/outbox"
	infraoutbox "carryon/internal/infra/outbox"
)

// Outbox keeps pending events in memory so the worker loop can be exercised
// without mongo.
type Outbox struct {
	mu      sync.Mutex
	records map[string]*infraoutbox.EventDocument
	order   []string
}

func NewOutbox() *Outbox {
	return &Outbox{
		records: make(map[string]*infraoutbox.EventDocument),
	}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	doc := &infraoutbox.EventDocument{
		ID:          record.ID,
		Name:        record.Name,
		Payload:     record.Payload,
		OccurredAt:  record.OccurredAt,
		Aggregate:   record.Aggregate,
		Headers:     record.Headers,
		State:       "NEW",
		NextAttempt: time.Now().UTC(),
	}
	o.records[doc.ID] = doc
	o.order = append(o.order, doc.ID)
	return nil
}

func (o *Outbox) Claim(ctx context.Context, workerID string) (*infraoutbox.EventDocument, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := time.Now().UTC()
	for _, id := range o.order {
		doc, ok := o.records[id]
		if !ok {
			continue
		}
		if doc.State != "NEW" && doc.State != "FAILED" {
			continue
		}
		if doc.NextAttempt.After(now) {
			continue
		}
		doc.State = "CLAIMED"
		doc.ClaimedBy = workerID
		doc.ClaimedAt = now
		claimed := *doc
		return &claimed, nil
	}
	return nil, nil
}

func (o *Outbox) MarkSent(ctx context.Context, id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if doc, ok := o.records[id]; ok {
		doc.State = "SENT"
		doc.SentAt = time.Now().UTC()
	}
	return nil
}

func (o *Outbox) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if doc, ok := o.records[id]; ok {
		doc.State = "FAILED"
		doc.NextAttempt = next
		doc.LastError = errMsg
		doc.Attempts++
	}
	return nil
}

var _ infraoutbox.Store = (*Outbox)(nil)
