package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"agora/internal/shared/events"
)

type fakeRepository struct {
	pending   []Message
	published []string
}

func (r *fakeRepository) ListPendingOutbox(_ context.Context, limit int) ([]Message, error) {
	if len(r.pending) > limit {
		return r.pending[:limit], nil
	}
	return r.pending, nil
}

func (r *fakeRepository) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	r.published = append(r.published, outboxID)
	remaining := r.pending[:0]
	for _, row := range r.pending {
		if row.ID != outboxID {
			remaining = append(remaining, row)
		}
	}
	r.pending = remaining
	return nil
}

type fakePublisher struct {
	topics  []string
	failOn  string
	failErr error
}

func (p *fakePublisher) Publish(_ context.Context, topic string, envelope events.Envelope) error {
	if p.failOn != "" && envelope.EventID == p.failOn {
		return p.failErr
	}
	p.topics = append(p.topics, topic)
	return nil
}

func pendingRow(t *testing.T, id, eventType string) Message {
	t.Helper()
	payload, err := json.Marshal(events.Envelope{
		EventID:   id,
		EventType: eventType,
	})
	if err != nil {
		t.Fatalf("encode envelope failed: %v", err)
	}
	return Message{
		ID:        id,
		EventType: eventType,
		Payload:   payload,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}
}

func TestRelayPublishesAndMarks(t *testing.T) {
	repo := &fakeRepository{pending: []Message{
		pendingRow(t, "evt-1", "initiative.advanced"),
		pendingRow(t, "evt-2", "support.added"),
	}}
	publisher := &fakePublisher{}
	relay := Relay{Module: "test", Outbox: repo, Publisher: publisher}

	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("relay failed: %v", err)
	}
	if len(publisher.topics) != 2 || publisher.topics[0] != "initiative.advanced" {
		t.Fatalf("expected both events published in order, got %v", publisher.topics)
	}
	if len(repo.published) != 2 {
		t.Fatalf("expected both rows marked published, got %v", repo.published)
	}
}

func TestRelayStopsOnFirstFailure(t *testing.T) {
	repo := &fakeRepository{pending: []Message{
		pendingRow(t, "evt-1", "initiative.advanced"),
		pendingRow(t, "evt-2", "support.added"),
	}}
	failure := errors.New("broker unavailable")
	publisher := &fakePublisher{failOn: "evt-1", failErr: failure}
	relay := Relay{Module: "test", Outbox: repo, Publisher: publisher}

	if err := relay.RunOnce(context.Background()); !errors.Is(err, failure) {
		t.Fatalf("expected publish failure to surface, got %v", err)
	}
	if len(repo.published) != 0 {
		t.Fatalf("expected no rows marked after failure, got %v", repo.published)
	}

	// The failed row stays pending and is retried on the next cycle.
	publisher.failOn = ""
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("retry cycle failed: %v", err)
	}
	if len(repo.published) != 2 {
		t.Fatalf("expected retry to publish both rows, got %v", repo.published)
	}
}
