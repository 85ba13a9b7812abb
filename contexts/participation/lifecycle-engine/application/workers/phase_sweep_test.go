package workers

import (
	"context"
	"testing"
	"time"

	"agora/contexts/participation/lifecycle-engine/adapters/memory"
	application "agora/contexts/participation/lifecycle-engine/application"
	"agora/contexts/participation/lifecycle-engine/application/commands"
	"agora/contexts/participation/lifecycle-engine/domain/entities"
)

func newSweepFixture() (*memory.Store, PhaseSweep) {
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
	advance := commands.AdvanceUseCase{
		Loader:     loader,
		Proposals:  store,
		Supporters: store,
		Votes:      store,
		Outbox:     store,
		Clock:      store,
		IDGen:      store,
		Config:     cfg,
	}
	return store, PhaseSweep{
		Proposals: store,
		Loader:    loader,
		Advance:   advance,
		Config:    cfg,
	}
}

func TestPhaseSweepAdvancesOverdueDiscussion(t *testing.T) {
	store, sweep := newSweepFixture()
	published := time.Now().UTC().Add(-90 * 24 * time.Hour)
	overdue := time.Now().UTC().Add(-30 * 24 * time.Hour)
	fresh := time.Now().UTC().Add(-2 * 24 * time.Hour)

	store.SetInitiative(entities.Initiative{
		ID:                 "ini-overdue",
		State:              entities.InitiativeDiscussion,
		WentPublicAt:       &published,
		WentToDiscussionAt: &overdue,
		Version:            2,
	})
	store.SetInitiative(entities.Initiative{
		ID:                 "ini-fresh",
		State:              entities.InitiativeDiscussion,
		WentPublicAt:       &published,
		WentToDiscussionAt: &fresh,
		Version:            2,
	})

	if err := sweep.RunOnce(context.Background()); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	advanced, err := store.GetInitiative(context.Background(), "ini-overdue")
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if advanced.State != entities.InitiativeFinalEdits {
		t.Fatalf("expected overdue discussion to move to final edits, got %s", advanced.State)
	}

	untouched, err := store.GetInitiative(context.Background(), "ini-fresh")
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if untouched.State != entities.InitiativeDiscussion {
		t.Fatalf("expected fresh discussion to stay, got %s", untouched.State)
	}
}

func TestPhaseSweepSkipsTiedVotes(t *testing.T) {
	store, sweep := newSweepFixture()
	votingStart := time.Now().UTC().Add(-40 * 24 * time.Hour)
	for _, id := range []string{"ini-a", "ini-b"} {
		variantOf := ""
		if id == "ini-b" {
			variantOf = "ini-a"
		}
		store.SetInitiative(entities.Initiative{
			ID:             id,
			State:          entities.InitiativeVoting,
			VariantOf:      variantOf,
			WentToVotingAt: &votingStart,
			Version:        1,
		})
	}
	for i, vote := range []struct {
		entity string
		user   string
	}{
		{"ini-a", "u-1"},
		{"ini-b", "u-2"},
	} {
		err := store.CastVote(context.Background(), entities.Vote{
			ID:     vote.entity + "-" + vote.user,
			Target: entities.EntityRef{Kind: entities.KindInitiative, ID: vote.entity},
			UserID: vote.user,
			Value:  entities.VoteYes,
		})
		if err != nil {
			t.Fatalf("seed vote %d failed: %v", i, err)
		}
	}

	// Both variants are tied at one yes each; the sweep must leave them
	// open instead of aborting the cycle.
	if err := sweep.RunOnce(context.Background()); err != nil {
		t.Fatalf("sweep failed on tie: %v", err)
	}
	for _, id := range []string{"ini-a", "ini-b"} {
		ini, err := store.GetInitiative(context.Background(), id)
		if err != nil {
			t.Fatalf("reload failed: %v", err)
		}
		if ini.State != entities.InitiativeVoting {
			t.Fatalf("expected tied %s to stay open, got %s", id, ini.State)
		}
	}
}
