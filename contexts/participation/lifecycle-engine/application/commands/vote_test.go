package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"agora/contexts/participation/lifecycle-engine/adapters/memory"
	"agora/contexts/participation/lifecycle-engine/domain/entities"
	domainerrors "agora/contexts/participation/lifecycle-engine/domain/errors"
)

func newVoteFixture() (*memory.Store, VoteUseCase) {
	store := memory.NewStore()
	return store, VoteUseCase{
		Proposals: store,
		Votes:     store,
		Outbox:    store,
		Clock:     store,
		IDGen:     store,
		Config:    entities.DefaultLifecycleConfig(),
	}
}

func TestCastVoteOnlyDuringVotingPhase(t *testing.T) {
	store, uc := newVoteFixture()
	store.SetInitiative(entities.Initiative{ID: "ini-1", State: entities.InitiativeSeekingSupport, Version: 1})

	_, err := uc.CastVote(context.Background(), CastVoteCommand{
		Target: entities.EntityRef{Kind: entities.KindInitiative, ID: "ini-1"},
		UserID: "user-1",
		Value:  entities.VoteYes,
	})
	if !errors.Is(err, domainerrors.ErrInvalidStateForAction) {
		t.Fatalf("expected voting to be closed, got %v", err)
	}
}

func TestCastAndUpdateVote(t *testing.T) {
	store, uc := newVoteFixture()
	opened := time.Date(2022, time.January, 10, 0, 0, 0, 0, time.UTC)
	store.SetInitiative(entities.Initiative{
		ID:             "ini-2",
		State:          entities.InitiativeVoting,
		WentToVotingAt: &opened,
		Version:        4,
	})
	target := entities.EntityRef{Kind: entities.KindInitiative, ID: "ini-2"}

	vote, err := uc.CastVote(context.Background(), CastVoteCommand{Target: target, UserID: "user-1", Value: entities.VoteYes})
	if err != nil {
		t.Fatalf("cast failed: %v", err)
	}
	if vote.Value != entities.VoteYes {
		t.Fatalf("expected yes ballot, got %s", vote.Value)
	}

	_, err = uc.CastVote(context.Background(), CastVoteCommand{Target: target, UserID: "user-1", Value: entities.VoteNo})
	if !errors.Is(err, domainerrors.ErrDuplicateVote) {
		t.Fatalf("expected duplicate vote conflict, got %v", err)
	}

	changed, err := uc.UpdateVote(context.Background(), CastVoteCommand{
		Target: target,
		UserID: "user-1",
		Value:  entities.VoteNo,
		Reason: "Contains a detail I do not agree with.",
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if changed.Value != entities.VoteNo || changed.Reason == "" {
		t.Fatalf("expected updated no ballot with reason, got %+v", changed)
	}

	_, err = uc.UpdateVote(context.Background(), CastVoteCommand{Target: target, UserID: "stranger", Value: entities.VoteYes})
	if !errors.Is(err, domainerrors.ErrVoteNotFound) {
		t.Fatalf("expected missing ballot, got %v", err)
	}
}

func TestAbstentionGatedByBallotEra(t *testing.T) {
	store, uc := newVoteFixture()
	legacyOpen := time.Date(2018, time.June, 1, 0, 0, 0, 0, time.UTC)
	store.SetInitiative(entities.Initiative{
		ID:             "ini-3",
		State:          entities.InitiativeVoting,
		WentToVotingAt: &legacyOpen,
		Version:        2,
	})
	target := entities.EntityRef{Kind: entities.KindInitiative, ID: "ini-3"}

	_, err := uc.CastVote(context.Background(), CastVoteCommand{Target: target, UserID: "user-1", Value: entities.VoteAbstain})
	if !errors.Is(err, domainerrors.ErrInvalidInput) {
		t.Fatalf("expected abstain to be rejected on legacy ballot, got %v", err)
	}

	modernOpen := time.Date(2019, time.June, 1, 0, 0, 0, 0, time.UTC)
	store.SetInitiative(entities.Initiative{
		ID:             "ini-4",
		State:          entities.InitiativeVoting,
		WentToVotingAt: &modernOpen,
		Version:        2,
	})
	_, err = uc.CastVote(context.Background(), CastVoteCommand{
		Target: entities.EntityRef{Kind: entities.KindInitiative, ID: "ini-4"},
		UserID: "user-1",
		Value:  entities.VoteAbstain,
	})
	if err != nil {
		t.Fatalf("expected abstain on modern ballot, got %v", err)
	}
}
