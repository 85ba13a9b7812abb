package queries

import (
	"context"
	"strings"
	"time"

	application "agora/contexts/participation/lifecycle-engine/application"
	"agora/contexts/participation/lifecycle-engine/domain/entities"
	domainerrors "agora/contexts/participation/lifecycle-engine/domain/errors"
)

// InitiativeStatus is the read-side view of one initiative's position in the
// lifecycle: where it stands, whether it could advance right now, and when
// its current phase runs out.
type InitiativeStatus struct {
	Initiative        entities.Initiative
	Supporters        int
	AckedInitiators   int
	Quorum            int
	Moderation        entities.ModerationStats
	RequiredReviewers int
	Ready             bool
	EndOfPhase        *time.Time
}

type PolicyStatus struct {
	Policy            entities.Policy
	Supporters        int
	AckedInitiators   int
	Quorum            int
	Moderation        entities.ModerationStats
	RequiredReviewers int
	Ready             bool
	EndOfPhase        *time.Time
}

type StatusQuery struct {
	Loader application.SnapshotLoader
	Config entities.LifecycleConfig
}

func (q StatusQuery) InitiativeStatus(ctx context.Context, id string) (InitiativeStatus, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return InitiativeStatus{}, domainerrors.ErrInvalidInput
	}
	snap, err := q.Loader.LoadInitiative(ctx, id)
	if err != nil {
		return InitiativeStatus{}, err
	}
	return InitiativeStatus{
		Initiative:        snap.Initiative,
		Supporters:        snap.Supporters,
		AckedInitiators:   snap.AckedInitiators,
		Quorum:            snap.Quorum,
		Moderation:        snap.Moderation,
		RequiredReviewers: entities.RequiredReviewers(snap.Moderation.ActiveModerators, q.Config),
		Ready:             snap.ReadyForNextStage(q.Config),
		EndOfPhase:        snap.EndOfPhase(q.Config),
	}, nil
}

func (q StatusQuery) PolicyStatus(ctx context.Context, id string) (PolicyStatus, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return PolicyStatus{}, domainerrors.ErrInvalidInput
	}
	snap, err := q.Loader.LoadPolicy(ctx, id)
	if err != nil {
		return PolicyStatus{}, err
	}
	return PolicyStatus{
		Policy:            snap.Policy,
		Supporters:        snap.Supporters,
		AckedInitiators:   snap.AckedInitiators,
		Quorum:            snap.Quorum,
		Moderation:        snap.Moderation,
		RequiredReviewers: entities.RequiredReviewers(snap.Moderation.ActiveModerators, q.Config),
		Ready:             snap.ReadyForNextStage(q.Config),
		EndOfPhase:        snap.EndOfPhase(q.Config),
	}, nil
}
