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

func newSupportFixture() (*memory.Store, SupportUseCase) {
	store := memory.NewStore()
	return store, SupportUseCase{
		Proposals:  store,
		Supporters: store,
		Outbox:     store,
		Clock:      store,
		IDGen:      store,
	}
}

func TestAddSupporterDuplicateConflict(t *testing.T) {
	store, uc := newSupportFixture()
	store.SetInitiative(entities.Initiative{ID: "ini-1", State: entities.InitiativeSeekingSupport, Version: 1})
	target := entities.EntityRef{Kind: entities.KindInitiative, ID: "ini-1"}

	first, err := uc.AddSupporter(context.Background(), AddSupporterCommand{Target: target, UserID: "user-1"})
	if err != nil {
		t.Fatalf("first support failed: %v", err)
	}
	if !first.Ack {
		t.Fatalf("expected plain supporter to count immediately")
	}
	_, err = uc.AddSupporter(context.Background(), AddSupporterCommand{Target: target, UserID: "user-1"})
	if !errors.Is(err, domainerrors.ErrDuplicateSupport) {
		t.Fatalf("expected duplicate support conflict, got %v", err)
	}
}

func TestAddSupporterGatedByState(t *testing.T) {
	store, uc := newSupportFixture()
	store.SetInitiative(entities.Initiative{ID: "ini-2", State: entities.InitiativePreparation, Version: 1})
	target := entities.EntityRef{Kind: entities.KindInitiative, ID: "ini-2"}

	_, err := uc.AddSupporter(context.Background(), AddSupporterCommand{Target: target, UserID: "user-1"})
	if !errors.Is(err, domainerrors.ErrInvalidStateForAction) {
		t.Fatalf("expected general support to be closed in preparation, got %v", err)
	}

	invited, err := uc.AddSupporter(context.Background(), AddSupporterCommand{
		Target:    target,
		UserID:    "co-initiator-1",
		Initiator: true,
	})
	if err != nil {
		t.Fatalf("initiator recruitment failed: %v", err)
	}
	if invited.Ack {
		t.Fatalf("expected invited co-initiator to start unacknowledged")
	}
	if !invited.Public {
		t.Fatalf("expected initiators to be listed publicly")
	}
}

func TestAcknowledgeFlipsInitiator(t *testing.T) {
	store, uc := newSupportFixture()
	store.SetInitiative(entities.Initiative{ID: "ini-3", State: entities.InitiativePreparation, Version: 1})
	target := entities.EntityRef{Kind: entities.KindInitiative, ID: "ini-3"}

	if _, err := uc.AddSupporter(context.Background(), AddSupporterCommand{
		Target:    target,
		UserID:    "co-initiator-1",
		Initiator: true,
	}); err != nil {
		t.Fatalf("recruit failed: %v", err)
	}

	err := uc.Acknowledge(context.Background(), AcknowledgeCommand{Target: target, UserID: "co-initiator-1", Ack: true})
	if err != nil {
		t.Fatalf("acknowledge failed: %v", err)
	}

	acked, err := store.CountSupporters(context.Background(), target, entities.SupporterFilter{
		InitiatorsOnly:   true,
		AcknowledgedOnly: true,
	})
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if acked != 1 {
		t.Fatalf("expected one acknowledged initiator, got %d", acked)
	}

	err = uc.Acknowledge(context.Background(), AcknowledgeCommand{Target: target, UserID: "stranger", Ack: true})
	if !errors.Is(err, domainerrors.ErrSupporterNotFound) {
		t.Fatalf("expected missing supporter error, got %v", err)
	}
}

func TestPublicSupporterFilterHidesInitiatorsAndFirst(t *testing.T) {
	store, _ := newSupportFixture()
	target := entities.EntityRef{Kind: entities.KindInitiative, ID: "ini-4"}
	now := time.Now().UTC()

	rows := []entities.Supporter{
		{ID: "s-1", Target: target, UserID: "u-1", Initiator: true, Ack: true, Public: true, CreatedAt: now},
		{ID: "s-2", Target: target, UserID: "u-2", Ack: true, Public: true, First: true, CreatedAt: now},
		{ID: "s-3", Target: target, UserID: "u-3", Ack: true, Public: true, CreatedAt: now},
		{ID: "s-4", Target: target, UserID: "u-4", Ack: true, CreatedAt: now},
	}
	for _, row := range rows {
		if err := store.AddSupporter(context.Background(), row); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	public, err := store.ListSupporters(context.Background(), target, entities.SupporterFilter{PublicOnly: true})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(public) != 1 || public[0].UserID != "u-3" {
		t.Fatalf("expected only the plain public supporter, got %d rows", len(public))
	}
}
