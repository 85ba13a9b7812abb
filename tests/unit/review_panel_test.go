package unit

import (
	"context"
	"errors"
	"sync"
	"testing"

	reviewpanel "agora/contexts/moderation-safety/review-panel"
	"agora/contexts/moderation-safety/review-panel/domain/entities"
	domainerrors "agora/contexts/moderation-safety/review-panel/domain/errors"
	httptransport "agora/contexts/moderation-safety/review-panel/transport/http"
	"agora/internal/shared/events"
)

type capturePublisher struct {
	mu        sync.Mutex
	envelopes []events.Envelope
}

func (p *capturePublisher) Publish(_ context.Context, _ string, envelope events.Envelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.envelopes = append(p.envelopes, envelope)
	return nil
}

func (p *capturePublisher) published() []events.Envelope {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Envelope(nil), p.envelopes...)
}

func TestReviewPanelVerdictsAndCounts(t *testing.T) {
	ctx := context.Background()
	module := reviewpanel.NewInMemoryModule(nil, nil)
	target := entities.EntityRef{Kind: entities.KindInitiative, ID: "ini-1"}

	for _, userID := range []string{"mod-1", "mod-2", "mod-3"} {
		if _, err := module.Handler.SetRosterHandler(ctx, httptransport.RosterRequest{
			UserID: userID,
			Active: true,
		}); err != nil {
			t.Fatalf("add %s to roster: %v", userID, err)
		}
	}
	roster, err := module.Handler.ListRosterHandler(ctx)
	if err != nil {
		t.Fatalf("list roster: %v", err)
	}
	if len(roster.Items) != 3 {
		t.Fatalf("expected 3 active moderators, got %d", len(roster.Items))
	}

	if _, err := module.Handler.SubmitReviewHandler(ctx, target, httptransport.SubmitReviewRequest{
		ModeratorID: "outsider",
		Vote:        "approve",
	}); !errors.Is(err, domainerrors.ErrNotActiveModerator) {
		t.Fatalf("expected ErrNotActiveModerator, got %v", err)
	}

	if _, err := module.Handler.SubmitReviewHandler(ctx, target, httptransport.SubmitReviewRequest{
		ModeratorID: "mod-1",
		Vote:        "approve",
	}); err != nil {
		t.Fatalf("approve by mod-1: %v", err)
	}
	if _, err := module.Handler.SubmitReviewHandler(ctx, target, httptransport.SubmitReviewRequest{
		ModeratorID: "mod-2",
		Vote:        "request_info",
		Comment:     "who pays for maintenance",
	}); err != nil {
		t.Fatalf("request_info by mod-2: %v", err)
	}
	if _, err := module.Handler.SubmitReviewHandler(ctx, target, httptransport.SubmitReviewRequest{
		ModeratorID: "mod-3",
		Vote:        "reject",
		Comment:     "duplicate of an open proposal",
	}); err != nil {
		t.Fatalf("reject by mod-3: %v", err)
	}

	// mod-2 settles after the answer arrives; the request_info row goes stale.
	if _, err := module.Handler.SubmitReviewHandler(ctx, target, httptransport.SubmitReviewRequest{
		ModeratorID: "mod-2",
		Vote:        "approve",
	}); err != nil {
		t.Fatalf("superseding approve by mod-2: %v", err)
	}

	counts, err := module.Handler.ReviewCountsHandler(ctx, target)
	if err != nil {
		t.Fatalf("review counts: %v", err)
	}
	if counts.Total != 3 || counts.Approvals != 2 || counts.Rejections != 1 || counts.RequestInfo != 0 {
		t.Fatalf("unexpected counts: %+v", counts)
	}

	reviews, err := module.Handler.ListReviewsHandler(ctx, target)
	if err != nil {
		t.Fatalf("list reviews: %v", err)
	}
	if len(reviews.Items) != 3 {
		t.Fatalf("expected 3 current reviews, got %d", len(reviews.Items))
	}
}

func TestReviewPanelOutboxRelayDeliversEvents(t *testing.T) {
	ctx := context.Background()
	publisher := &capturePublisher{}
	module := reviewpanel.NewInMemoryModule(publisher, nil)
	target := entities.EntityRef{Kind: entities.KindPolicy, ID: "pol-1"}

	if _, err := module.Handler.SetRosterHandler(ctx, httptransport.RosterRequest{
		UserID: "mod-1",
		Active: true,
	}); err != nil {
		t.Fatalf("add moderator: %v", err)
	}
	if _, err := module.Handler.SubmitReviewHandler(ctx, target, httptransport.SubmitReviewRequest{
		ModeratorID: "mod-1",
		Vote:        "approve",
	}); err != nil {
		t.Fatalf("submit review: %v", err)
	}

	if err := module.Relay.RunOnce(ctx); err != nil {
		t.Fatalf("relay run: %v", err)
	}
	published := publisher.published()
	if len(published) != 1 {
		t.Fatalf("expected 1 published envelope, got %d", len(published))
	}
	envelope := published[0]
	if envelope.EventType != "review.submitted" || envelope.EntityID != "pol-1" {
		t.Fatalf("unexpected envelope: %+v", envelope)
	}

	// A second cycle finds nothing pending.
	if err := module.Relay.RunOnce(ctx); err != nil {
		t.Fatalf("second relay run: %v", err)
	}
	if len(publisher.published()) != 1 {
		t.Fatalf("expected no re-publish of marked rows")
	}
}
