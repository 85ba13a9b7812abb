package queries

import (
	"context"
	"errors"
	"testing"
	"time"

	"agora/contexts/participation/lifecycle-engine/adapters/memory"
	"agora/contexts/participation/lifecycle-engine/domain/entities"
	domainerrors "agora/contexts/participation/lifecycle-engine/domain/errors"
)

func TestRelativeSupportZeroQuorum(t *testing.T) {
	store := memory.NewStore()
	query := SupportQuery{Supporters: store, Quorums: store}

	_, err := query.RelativeSupport(context.Background(), entities.EntityRef{Kind: entities.KindInitiative, ID: "ini-1"})
	if !errors.Is(err, domainerrors.ErrZeroQuorum) {
		t.Fatalf("expected zero quorum error, got %v", err)
	}
}

func TestRelativeSupportAboveQuorum(t *testing.T) {
	store := memory.NewStore()
	query := SupportQuery{Supporters: store, Quorums: store}
	target := entities.EntityRef{Kind: entities.KindInitiative, ID: "ini-2"}

	if err := store.SetQuorum(context.Background(), entities.Quorum{ID: "q-1", Value: 2, CreatedAt: time.Now().UTC()}); err != nil {
		t.Fatalf("seed quorum failed: %v", err)
	}
	for _, user := range []string{"u-1", "u-2", "u-3"} {
		err := store.AddSupporter(context.Background(), entities.Supporter{
			ID: "s-" + user, Target: target, UserID: user, Ack: true, CreatedAt: time.Now().UTC(),
		})
		if err != nil {
			t.Fatalf("seed supporter failed: %v", err)
		}
	}

	report, err := query.RelativeSupport(context.Background(), target)
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}
	if !report.QuorumReached {
		t.Fatalf("expected quorum reached")
	}
	if report.RelativePercent != 150 {
		t.Fatalf("expected 150%%, got %f", report.RelativePercent)
	}
}

func TestCurrentQuorumUsesNewestRow(t *testing.T) {
	store := memory.NewStore()
	now := time.Now().UTC()
	if err := store.SetQuorum(context.Background(), entities.Quorum{ID: "q-1", Value: 10, CreatedAt: now.Add(-time.Hour)}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if err := store.SetQuorum(context.Background(), entities.Quorum{ID: "q-2", Value: 25, CreatedAt: now}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	quorum, err := store.CurrentQuorum(context.Background())
	if err != nil {
		t.Fatalf("current quorum failed: %v", err)
	}
	if quorum != 25 {
		t.Fatalf("expected newest quorum 25, got %d", quorum)
	}
}
