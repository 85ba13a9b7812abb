package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"agora/contexts/participation/lifecycle-engine/adapters/memory"
	application "agora/contexts/participation/lifecycle-engine/application"
	"agora/contexts/participation/lifecycle-engine/domain/entities"
	domainerrors "agora/contexts/participation/lifecycle-engine/domain/errors"
)

func newAdvanceFixture() (*memory.Store, AdvanceUseCase) {
	store := memory.NewStore()
	cfg := entities.DefaultLifecycleConfig()
	loader := application.SnapshotLoader{
		Proposals:  store,
		Supporters: store,
		Quorums:    store,
		Moderation: store,
		Clock:      store,
		Config:     cfg,
		Schema:     entities.DefaultFieldSchema(),
	}
	uc := AdvanceUseCase{
		Loader:     loader,
		Proposals:  store,
		Supporters: store,
		Votes:      store,
		Outbox:     store,
		Clock:      store,
		IDGen:      store,
		Config:     cfg,
	}
	return store, uc
}

func seedInitiators(t *testing.T, store *memory.Store, target entities.EntityRef, count int) {
	t.Helper()
	for i := 0; i < count; i++ {
		err := store.AddSupporter(context.Background(), entities.Supporter{
			ID:        target.ID + "-init-" + string(rune('a'+i)),
			Target:    target,
			UserID:    "initiator-" + string(rune('a'+i)),
			Initiator: true,
			Ack:       true,
			Public:    true,
			CreatedAt: time.Now().UTC(),
		})
		if err != nil {
			t.Fatalf("seed initiator failed: %v", err)
		}
	}
}

func TestAdvanceInitiativeNotReady(t *testing.T) {
	store, uc := newAdvanceFixture()
	store.SetInitiative(entities.Initiative{
		ID:      "ini-1",
		State:   entities.InitiativePreparation,
		Version: 1,
	})

	_, err := uc.AdvanceInitiative(context.Background(), "ini-1")
	if !errors.Is(err, domainerrors.ErrNotReadyForTransition) {
		t.Fatalf("expected not ready, got %v", err)
	}
}

func TestAdvanceInitiativeFromSupportToDiscussion(t *testing.T) {
	store, uc := newAdvanceFixture()
	published := time.Now().UTC().Add(-30 * 24 * time.Hour)
	store.SetInitiative(entities.Initiative{
		ID:           "ini-2",
		State:        entities.InitiativeSeekingSupport,
		WentPublicAt: &published,
		Version:      3,
	})
	if err := store.SetQuorum(context.Background(), entities.Quorum{ID: "q-1", Value: 2, CreatedAt: time.Now().UTC()}); err != nil {
		t.Fatalf("seed quorum failed: %v", err)
	}
	target := entities.EntityRef{Kind: entities.KindInitiative, ID: "ini-2"}
	for _, user := range []string{"user-1", "user-2"} {
		err := store.AddSupporter(context.Background(), entities.Supporter{
			ID:     "sup-" + user,
			Target: target,
			UserID: user,
			Ack:    true,
		})
		if err != nil {
			t.Fatalf("seed supporter failed: %v", err)
		}
	}

	advanced, err := uc.AdvanceInitiative(context.Background(), "ini-2")
	if err != nil {
		t.Fatalf("advance failed: %v", err)
	}
	if advanced.State != entities.InitiativeDiscussion {
		t.Fatalf("expected discussion, got %s", advanced.State)
	}
	if advanced.WentToDiscussionAt == nil {
		t.Fatalf("expected discussion stamp to be set")
	}
	if advanced.Version != 4 {
		t.Fatalf("expected version bump to 4, got %d", advanced.Version)
	}
}

func TestAdvanceInitiativeModerationRejectsOnMajority(t *testing.T) {
	store, uc := newAdvanceFixture()
	store.SetInitiative(entities.Initiative{
		ID:      "ini-3",
		State:   entities.InitiativeModeration,
		Version: 5,
	})
	target := entities.EntityRef{Kind: entities.KindInitiative, ID: "ini-3"}
	seedInitiators(t, store, target, 3)
	store.SetReviewStats(target, entities.ModerationStats{
		Total:            3,
		Approvals:        1,
		Rejections:       2,
		ActiveModerators: 10,
	})

	advanced, err := uc.AdvanceInitiative(context.Background(), "ini-3")
	if err != nil {
		t.Fatalf("advance failed: %v", err)
	}
	if advanced.State != entities.InitiativeRejected {
		t.Fatalf("expected rejection on moderator majority, got %s", advanced.State)
	}
	if advanced.WasClosedAt == nil {
		t.Fatalf("expected closure stamp on rejection")
	}
}

func TestCloseInitiativeVotingResolvesVariants(t *testing.T) {
	store, uc := newAdvanceFixture()
	votingStart := time.Now().UTC().Add(-10 * 24 * time.Hour)
	store.SetInitiative(entities.Initiative{
		ID:             "ini-a",
		State:          entities.InitiativeVoting,
		WentToVotingAt: &votingStart,
		Version:        7,
	})
	store.SetInitiative(entities.Initiative{
		ID:             "ini-b",
		State:          entities.InitiativeVoting,
		VariantOf:      "ini-a",
		WentToVotingAt: &votingStart,
		Version:        7,
	})

	castVote := func(entityID, userID string, value entities.VoteValue) {
		err := store.CastVote(context.Background(), entities.Vote{
			ID:     entityID + "-" + userID,
			Target: entities.EntityRef{Kind: entities.KindInitiative, ID: entityID},
			UserID: userID,
			Value:  value,
		})
		if err != nil {
			t.Fatalf("seed vote failed: %v", err)
		}
	}
	castVote("ini-a", "user-1", entities.VoteYes)
	castVote("ini-a", "user-2", entities.VoteYes)
	castVote("ini-b", "user-3", entities.VoteYes)
	castVote("ini-b", "user-4", entities.VoteYes)
	castVote("ini-b", "user-5", entities.VoteNo)

	_, err := uc.CloseInitiativeVoting(context.Background(), "ini-a", nil)
	if !errors.Is(err, domainerrors.ErrTieUnresolved) {
		t.Fatalf("expected tie between equal yes counts, got %v", err)
	}
	still, err := store.GetInitiative(context.Background(), "ini-a")
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if still.State != entities.InitiativeVoting {
		t.Fatalf("expected tied vote to stay open, got %s", still.State)
	}

	castVote("ini-a", "user-6", entities.VoteYes)
	eligible := 6
	closed, err := uc.CloseInitiativeVoting(context.Background(), "ini-a", &eligible)
	if err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if closed.State != entities.InitiativeAccepted {
		t.Fatalf("expected acceptance, got %s", closed.State)
	}
	if closed.EligibleVoters == nil || *closed.EligibleVoters != 6 {
		t.Fatalf("expected eligible voter snapshot, got %v", closed.EligibleVoters)
	}

	rejected, err := uc.CloseInitiativeVoting(context.Background(), "ini-b", nil)
	if err != nil {
		t.Fatalf("close variant failed: %v", err)
	}
	if rejected.State != entities.InitiativeRejected {
		t.Fatalf("expected weaker variant to be rejected, got %s", rejected.State)
	}
}

func TestChallengePolicyFromReleased(t *testing.T) {
	store, uc := newAdvanceFixture()
	store.SetPolicy(entities.Policy{
		ID:      "pol-1",
		State:   entities.PolicyReleased,
		Version: 2,
	})

	challenged, err := uc.ChallengePolicy(context.Background(), "pol-1")
	if err != nil {
		t.Fatalf("challenge failed: %v", err)
	}
	if challenged.State != entities.PolicyChallenged {
		t.Fatalf("expected challenged, got %s", challenged.State)
	}

	store.SetPolicy(entities.Policy{ID: "pol-2", State: entities.PolicyDraft, Version: 1})
	if _, err := uc.ChallengePolicy(context.Background(), "pol-2"); !errors.Is(err, domainerrors.ErrInvalidStateForAction) {
		t.Fatalf("expected invalid state for draft challenge, got %v", err)
	}
}
