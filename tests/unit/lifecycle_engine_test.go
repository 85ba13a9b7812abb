package unit

import (
	"context"
	"errors"
	"testing"
	"time"

	lifecycleengine "agora/contexts/participation/lifecycle-engine"
	"agora/contexts/participation/lifecycle-engine/domain/entities"
	domainerrors "agora/contexts/participation/lifecycle-engine/domain/errors"
	httptransport "agora/contexts/participation/lifecycle-engine/transport/http"
)

func completeInitiativeRequest(initiatorID string) httptransport.CreateInitiativeRequest {
	return httptransport.CreateInitiativeRequest{
		Title:           "Free local transit",
		Subtitle:        "Fare-free buses inside city limits",
		Summary:         "Make all city buses free of charge",
		Problem:         "Fares keep low-income riders off the network",
		Demand:          "Abolish fares on all municipal bus lines",
		CostEstimate:    "12M per year",
		FundingProposal: "Reallocate the parking surplus",
		Methodology:     "Phased rollout starting with night lines",
		InitialArgument: "Cities with free transit saw ridership double",
		Context:         "Municipal transport act, section 4",
		Scope:           "citywide",
		Topic:           "transport",
		InitiatorID:     initiatorID,
	}
}

func TestInitiativeFullLifecycle(t *testing.T) {
	ctx := context.Background()
	module := lifecycleengine.NewInMemoryModule(nil, nil)

	if _, err := module.Handler.SetQuorumHandler(ctx, httptransport.SetQuorumRequest{Value: 5}); err != nil {
		t.Fatalf("set quorum: %v", err)
	}

	created, err := module.Handler.CreateInitiativeHandler(ctx, completeInitiativeRequest("alice"))
	if err != nil {
		t.Fatalf("create initiative: %v", err)
	}
	if created.State != string(entities.InitiativePreparation) {
		t.Fatalf("expected preparation, got %s", created.State)
	}
	target := entities.EntityRef{Kind: entities.KindInitiative, ID: created.ID}

	// Two invited co-initiators join unacknowledged and confirm.
	for _, userID := range []string{"bob", "carol"} {
		if _, err := module.Handler.AddSupporterHandler(ctx, target, httptransport.AddSupporterRequest{
			UserID:    userID,
			Initiator: true,
		}); err != nil {
			t.Fatalf("invite co-initiator %s: %v", userID, err)
		}
		if err := module.Handler.AcknowledgeHandler(ctx, target, httptransport.AcknowledgeRequest{
			UserID: userID,
			Ack:    true,
		}); err != nil {
			t.Fatalf("acknowledge %s: %v", userID, err)
		}
	}

	advanced, err := module.Handler.AdvanceInitiativeHandler(ctx, created.ID)
	if err != nil {
		t.Fatalf("advance from preparation: %v", err)
	}
	if advanced.State != string(entities.InitiativeIncoming) {
		t.Fatalf("expected new_arrivals, got %s", advanced.State)
	}

	advanced, err = module.Handler.AdvanceInitiativeHandler(ctx, created.ID)
	if err != nil {
		t.Fatalf("advance from new_arrivals: %v", err)
	}
	if advanced.State != string(entities.InitiativeSeekingSupport) {
		t.Fatalf("expected seeking_support, got %s", advanced.State)
	}
	if advanced.WentPublicAt == nil {
		t.Fatalf("expected went_public_at stamp on going public")
	}

	// Three initiators against a quorum of five is not enough.
	if _, err := module.Handler.AdvanceInitiativeHandler(ctx, created.ID); !errors.Is(err, domainerrors.ErrNotReadyForTransition) {
		t.Fatalf("expected ErrNotReadyForTransition below quorum, got %v", err)
	}
	for _, userID := range []string{"dave", "erin"} {
		if _, err := module.Handler.AddSupporterHandler(ctx, target, httptransport.AddSupporterRequest{
			UserID: userID,
			Public: true,
		}); err != nil {
			t.Fatalf("add supporter %s: %v", userID, err)
		}
	}
	report, err := module.Handler.SupportReportHandler(ctx, target)
	if err != nil {
		t.Fatalf("support report: %v", err)
	}
	if report.Supporters != 5 || report.Quorum != 5 || !report.QuorumReached {
		t.Fatalf("expected quorum reached at 5/5, got %+v", report)
	}

	advanced, err = module.Handler.AdvanceInitiativeHandler(ctx, created.ID)
	if err != nil {
		t.Fatalf("advance into discussion: %v", err)
	}
	if advanced.State != string(entities.InitiativeDiscussion) {
		t.Fatalf("expected discussion, got %s", advanced.State)
	}

	// Discussion is deadline-gated: three weeks must pass.
	if _, err := module.Handler.AdvanceInitiativeHandler(ctx, created.ID); !errors.Is(err, domainerrors.ErrNotReadyForTransition) {
		t.Fatalf("expected ErrNotReadyForTransition during discussion window, got %v", err)
	}
	module.Store.SetNow(time.Now().UTC().Add(22 * 24 * time.Hour))

	advanced, err = module.Handler.AdvanceInitiativeHandler(ctx, created.ID)
	if err != nil {
		t.Fatalf("advance into final edits: %v", err)
	}
	if advanced.State != string(entities.InitiativeFinalEdits) {
		t.Fatalf("expected final_edits, got %s", advanced.State)
	}

	advanced, err = module.Handler.AdvanceInitiativeHandler(ctx, created.ID)
	if err != nil {
		t.Fatalf("advance into moderation: %v", err)
	}
	if advanced.State != string(entities.InitiativeModeration) {
		t.Fatalf("expected moderation_review, got %s", advanced.State)
	}

	// Panel of ten: the percentage rule yields one, the even floor of two is
	// bumped to three. Four approvals against one rejection clears both gates.
	module.Store.SetReviewStats(target, entities.ModerationStats{
		Total:            5,
		Approvals:        4,
		Rejections:       1,
		ActiveModerators: 10,
	})
	status, err := module.Handler.InitiativeStatusHandler(ctx, created.ID)
	if err != nil {
		t.Fatalf("initiative status: %v", err)
	}
	if status.RequiredReviewers != 3 || status.ReviewsSettled != 5 || !status.Ready {
		t.Fatalf("expected review panel satisfied, got %+v", status)
	}

	advanced, err = module.Handler.AdvanceInitiativeHandler(ctx, created.ID)
	if err != nil {
		t.Fatalf("advance into voting: %v", err)
	}
	if advanced.State != string(entities.InitiativeVoting) {
		t.Fatalf("expected voting, got %s", advanced.State)
	}

	ballots := []httptransport.CastVoteRequest{
		{UserID: "alice", Value: "yes"},
		{UserID: "bob", Value: "yes"},
		{UserID: "carol", Value: "no"},
		{UserID: "dave", Value: "abstain"},
	}
	for _, ballot := range ballots {
		if _, err := module.Handler.CastVoteHandler(ctx, target, ballot); err != nil {
			t.Fatalf("cast vote %s: %v", ballot.UserID, err)
		}
	}
	tally, err := module.Handler.BallotReportHandler(ctx, target)
	if err != nil {
		t.Fatalf("ballot report: %v", err)
	}
	if tally.Yes != 2 || tally.No != 1 || tally.Abstain != 1 || tally.Voters != 4 || !tally.Accepted {
		t.Fatalf("unexpected ballot report: %+v", tally)
	}

	eligible := 5
	closed, err := module.Handler.CloseInitiativeVotingHandler(ctx, created.ID, httptransport.CloseVotingRequest{
		EligibleVoters: &eligible,
	})
	if err != nil {
		t.Fatalf("close voting: %v", err)
	}
	if closed.State != string(entities.InitiativeAccepted) {
		t.Fatalf("expected accepted, got %s", closed.State)
	}
	if closed.WasClosedAt == nil || closed.EligibleVoters == nil || *closed.EligibleVoters != 5 {
		t.Fatalf("expected closure stamps, got %+v", closed)
	}
}

func TestInitiativeModerationRejection(t *testing.T) {
	ctx := context.Background()
	module := lifecycleengine.NewInMemoryModule(nil, nil)
	now := time.Now().UTC()
	discussionStart := now.Add(-6 * 7 * 24 * time.Hour)
	publicAt := now.Add(-8 * 7 * 24 * time.Hour)
	module.Store.SetInitiative(entities.Initiative{
		ID:                 "ini-reject",
		Title:              "Close the airport",
		State:              entities.InitiativeModeration,
		Version:            7,
		WentPublicAt:       &publicAt,
		WentToDiscussionAt: &discussionStart,
		CreatedAt:          now.Add(-10 * 7 * 24 * time.Hour),
	})
	target := entities.EntityRef{Kind: entities.KindInitiative, ID: "ini-reject"}
	for _, userID := range []string{"alice", "bob", "carol"} {
		if _, err := module.Handler.AddSupporterHandler(ctx, target, httptransport.AddSupporterRequest{
			UserID:    userID,
			Initiator: true,
		}); err != nil {
			t.Fatalf("invite %s: %v", userID, err)
		}
		if err := module.Handler.AcknowledgeHandler(ctx, target, httptransport.AcknowledgeRequest{
			UserID: userID,
			Ack:    true,
		}); err != nil {
			t.Fatalf("acknowledge %s: %v", userID, err)
		}
	}
	module.Store.SetReviewStats(target, entities.ModerationStats{
		Total:            4,
		Approvals:        1,
		Rejections:       3,
		ActiveModerators: 10,
	})

	rejected, err := module.Handler.AdvanceInitiativeHandler(ctx, "ini-reject")
	if err != nil {
		t.Fatalf("advance rejected initiative: %v", err)
	}
	if rejected.State != string(entities.InitiativeRejected) {
		t.Fatalf("expected rejected on panel majority against, got %s", rejected.State)
	}
	if rejected.WasClosedAt == nil {
		t.Fatalf("expected closure stamp on rejection")
	}
}

func TestPolicyChallengeAfterRelease(t *testing.T) {
	ctx := context.Background()
	module := lifecycleengine.NewInMemoryModule(nil, nil)
	now := time.Now().UTC()
	published := now.Add(-24 * time.Hour)
	module.Store.SetPolicy(entities.Policy{
		ID:             "pol-1",
		Title:          "Night bus ordinance",
		State:          entities.PolicyReleased,
		Version:        5,
		WasPublishedAt: &published,
		CreatedAt:      now.Add(-30 * 24 * time.Hour),
	})

	challenged, err := module.Handler.ChallengePolicyHandler(ctx, "pol-1")
	if err != nil {
		t.Fatalf("challenge policy: %v", err)
	}
	if challenged.State != string(entities.PolicyChallenged) {
		t.Fatalf("expected challenged, got %s", challenged.State)
	}

	if _, err := module.Handler.ChallengePolicyHandler(ctx, "pol-1"); !errors.Is(err, domainerrors.ErrInvalidStateForAction) {
		t.Fatalf("expected ErrInvalidStateForAction on re-challenge, got %v", err)
	}
}

func TestHiddenInitiativeIsTerminal(t *testing.T) {
	ctx := context.Background()
	module := lifecycleengine.NewInMemoryModule(nil, nil)
	module.Store.SetInitiative(entities.Initiative{
		ID:      "ini-hide",
		Title:   "Spam entry",
		State:   entities.InitiativeSeekingSupport,
		Version: 2,
	})

	hidden, err := module.Handler.HideInitiativeHandler(ctx, "ini-hide")
	if err != nil {
		t.Fatalf("hide initiative: %v", err)
	}
	if hidden.State != string(entities.InitiativeHidden) {
		t.Fatalf("expected hidden, got %s", hidden.State)
	}
	if _, err := module.Handler.AdvanceInitiativeHandler(ctx, "ini-hide"); !errors.Is(err, domainerrors.ErrInvalidStateForAction) {
		t.Fatalf("expected ErrInvalidStateForAction on hidden advance, got %v", err)
	}
}
