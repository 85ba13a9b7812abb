package application

import (
	"context"
	"time"

	"agora/contexts/participation/lifecycle-engine/domain/entities"
	"agora/contexts/participation/lifecycle-engine/ports"
)

// SnapshotLoader assembles the full readiness/deadline input for one entity
// in a single pass. Snapshots live for one request; nothing here is
// memoized across calls, so repeated readiness checks always see fresh
// counts.
type SnapshotLoader struct {
	Proposals  ports.ProposalRepository
	Supporters ports.SupporterRepository
	Quorums    ports.QuorumRepository
	Moderation ports.ModerationProjection
	Clock      ports.Clock
	Config     entities.LifecycleConfig
	Schema     entities.FieldSchema
}

func (l SnapshotLoader) LoadInitiative(ctx context.Context, id string) (entities.InitiativeSnapshot, error) {
	ini, err := l.Proposals.GetInitiative(ctx, id)
	if err != nil {
		return entities.InitiativeSnapshot{}, err
	}
	target := entities.EntityRef{Kind: entities.KindInitiative, ID: ini.ID}

	supporters, err := l.Supporters.CountSupporters(ctx, target, entities.SupporterFilter{})
	if err != nil {
		return entities.InitiativeSnapshot{}, err
	}
	acked, err := l.Supporters.CountSupporters(ctx, target, entities.SupporterFilter{
		InitiatorsOnly:   true,
		AcknowledgedOnly: true,
	})
	if err != nil {
		return entities.InitiativeSnapshot{}, err
	}
	quorum, err := l.Quorums.CurrentQuorum(ctx)
	if err != nil {
		return entities.InitiativeSnapshot{}, err
	}
	stats, err := l.Moderation.ReviewStats(ctx, target)
	if err != nil {
		return entities.InitiativeSnapshot{}, err
	}

	var parentDiscussion *time.Time
	if ini.VariantOf != "" {
		parent, err := l.Proposals.GetInitiative(ctx, ini.VariantOf)
		if err != nil {
			return entities.InitiativeSnapshot{}, err
		}
		parentDiscussion = parent.WentToDiscussionAt
	}

	return entities.InitiativeSnapshot{
		Initiative:       ini,
		Supporters:       supporters,
		AckedInitiators:  acked,
		Quorum:           quorum,
		Moderation:       stats,
		ParentDiscussion: parentDiscussion,
		Now:              l.now(),
	}, nil
}

func (l SnapshotLoader) LoadPolicy(ctx context.Context, id string) (entities.PolicySnapshot, error) {
	pol, err := l.Proposals.GetPolicy(ctx, id)
	if err != nil {
		return entities.PolicySnapshot{}, err
	}
	target := entities.EntityRef{Kind: entities.KindPolicy, ID: pol.ID}

	supporters, err := l.Supporters.CountSupporters(ctx, target, entities.SupporterFilter{})
	if err != nil {
		return entities.PolicySnapshot{}, err
	}
	acked, err := l.Supporters.CountSupporters(ctx, target, entities.SupporterFilter{
		InitiatorsOnly:   true,
		AcknowledgedOnly: true,
	})
	if err != nil {
		return entities.PolicySnapshot{}, err
	}
	quorum, err := l.Quorums.CurrentQuorum(ctx)
	if err != nil {
		return entities.PolicySnapshot{}, err
	}
	stats, err := l.Moderation.ReviewStats(ctx, target)
	if err != nil {
		return entities.PolicySnapshot{}, err
	}

	var parentDiscussion *time.Time
	if pol.VariantOf != "" {
		parent, err := l.Proposals.GetPolicy(ctx, pol.VariantOf)
		if err != nil {
			return entities.PolicySnapshot{}, err
		}
		parentDiscussion = parent.WentInDiscussionAt
	}

	return entities.PolicySnapshot{
		Policy:           pol,
		Schema:           l.Schema,
		Supporters:       supporters,
		AckedInitiators:  acked,
		Quorum:           quorum,
		Moderation:       stats,
		ParentDiscussion: parentDiscussion,
		Now:              l.now(),
	}, nil
}

func (l SnapshotLoader) now() time.Time {
	if l.Clock != nil {
		return l.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
