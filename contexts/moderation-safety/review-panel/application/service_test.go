package application

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"agora/contexts/moderation-safety/review-panel/adapters/memory"
	"agora/contexts/moderation-safety/review-panel/domain/entities"
	domainerrors "agora/contexts/moderation-safety/review-panel/domain/errors"
)

func newReviewFixture(t *testing.T) (*memory.Store, Service) {
	t.Helper()
	store := memory.NewStore()
	svc := Service{
		Reviews: store,
		Roster:  store,
		Outbox:  store,
		Clock:   store,
		IDGen:   store,
		Logger:  slog.Default(),
	}
	return store, svc
}

func seedModerator(t *testing.T, svc Service, userID string) {
	t.Helper()
	if _, err := svc.SetRosterMembership(context.Background(), userID, true); err != nil {
		t.Fatalf("seed moderator %s: %v", userID, err)
	}
}

func TestSubmitReviewRequiresActiveModerator(t *testing.T) {
	ctx := context.Background()
	_, svc := newReviewFixture(t)
	target := entities.EntityRef{Kind: entities.KindInitiative, ID: "ini-1"}

	_, err := svc.SubmitReview(ctx, SubmitReviewCommand{
		Target:      target,
		ModeratorID: "stranger",
		Vote:        entities.VoteApprove,
	})
	if !errors.Is(err, domainerrors.ErrNotActiveModerator) {
		t.Fatalf("expected ErrNotActiveModerator, got %v", err)
	}

	seedModerator(t, svc, "mod-1")
	if _, err := svc.SetRosterMembership(ctx, "mod-1", false); err != nil {
		t.Fatalf("deactivate moderator: %v", err)
	}
	_, err = svc.SubmitReview(ctx, SubmitReviewCommand{
		Target:      target,
		ModeratorID: "mod-1",
		Vote:        entities.VoteApprove,
	})
	if !errors.Is(err, domainerrors.ErrNotActiveModerator) {
		t.Fatalf("expected ErrNotActiveModerator for deactivated moderator, got %v", err)
	}
}

func TestSubmitReviewRejectNeedsComment(t *testing.T) {
	ctx := context.Background()
	_, svc := newReviewFixture(t)
	seedModerator(t, svc, "mod-1")
	target := entities.EntityRef{Kind: entities.KindInitiative, ID: "ini-1"}

	_, err := svc.SubmitReview(ctx, SubmitReviewCommand{
		Target:      target,
		ModeratorID: "mod-1",
		Vote:        entities.VoteReject,
	})
	if !errors.Is(err, domainerrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for reject without comment, got %v", err)
	}

	review, err := svc.SubmitReview(ctx, SubmitReviewCommand{
		Target:      target,
		ModeratorID: "mod-1",
		Vote:        entities.VoteReject,
		Comment:     "procedure not described",
	})
	if err != nil {
		t.Fatalf("reject with comment: %v", err)
	}
	if review.Vote != entities.VoteReject || review.Comment != "procedure not described" {
		t.Fatalf("unexpected review row: %+v", review)
	}
}

func TestSubmitReviewSupersedesEarlierVerdict(t *testing.T) {
	ctx := context.Background()
	_, svc := newReviewFixture(t)
	seedModerator(t, svc, "mod-1")
	seedModerator(t, svc, "mod-2")
	target := entities.EntityRef{Kind: entities.KindPolicy, ID: "pol-9"}

	if _, err := svc.SubmitReview(ctx, SubmitReviewCommand{
		Target:      target,
		ModeratorID: "mod-1",
		Vote:        entities.VoteRequestInfo,
		Comment:     "missing cost estimate",
	}); err != nil {
		t.Fatalf("first verdict: %v", err)
	}
	if _, err := svc.SubmitReview(ctx, SubmitReviewCommand{
		Target:      target,
		ModeratorID: "mod-2",
		Vote:        entities.VoteApprove,
	}); err != nil {
		t.Fatalf("second moderator: %v", err)
	}
	if _, err := svc.SubmitReview(ctx, SubmitReviewCommand{
		Target:      target,
		ModeratorID: "mod-1",
		Vote:        entities.VoteApprove,
	}); err != nil {
		t.Fatalf("superseding verdict: %v", err)
	}

	current, err := svc.ListCurrentReviews(ctx, target)
	if err != nil {
		t.Fatalf("list current reviews: %v", err)
	}
	if len(current) != 2 {
		t.Fatalf("expected 2 current reviews, got %d", len(current))
	}
	for _, review := range current {
		if review.Vote != entities.VoteApprove {
			t.Fatalf("expected only approvals to remain current, got %+v", review)
		}
	}

	counts, err := svc.ReviewCounts(ctx, target)
	if err != nil {
		t.Fatalf("review counts: %v", err)
	}
	if counts.Total != 2 || counts.Approvals != 2 || counts.RequestInfo != 0 {
		t.Fatalf("expected stale verdicts excluded from counts, got %+v", counts)
	}
}

func TestRosterMembershipKeepsJoinTimestamp(t *testing.T) {
	ctx := context.Background()
	_, svc := newReviewFixture(t)

	first, err := svc.SetRosterMembership(ctx, "mod-1", true)
	if err != nil {
		t.Fatalf("join roster: %v", err)
	}
	if _, err := svc.SetRosterMembership(ctx, "mod-1", false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := svc.SetRosterMembership(ctx, "mod-1", true); err != nil {
		t.Fatalf("reactivate: %v", err)
	}

	active, err := svc.ActiveModerators(ctx)
	if err != nil {
		t.Fatalf("list active moderators: %v", err)
	}
	if len(active) != 1 || active[0].UserID != "mod-1" {
		t.Fatalf("expected mod-1 active, got %+v", active)
	}
	if !active[0].Since.Equal(first.Since) {
		t.Fatalf("expected join timestamp preserved, was %v now %v", first.Since, active[0].Since)
	}
}
