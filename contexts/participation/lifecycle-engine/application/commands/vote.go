package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "agora/contexts/participation/lifecycle-engine/application"
	"agora/contexts/participation/lifecycle-engine/domain/entities"
	domainerrors "agora/contexts/participation/lifecycle-engine/domain/errors"
	"agora/contexts/participation/lifecycle-engine/ports"
)

type CastVoteCommand struct {
	Target entities.EntityRef
	UserID string
	Value  entities.VoteValue
	Reason string
}

type VoteUseCase struct {
	Proposals ports.ProposalRepository
	Votes     ports.VoteRepository
	Outbox    ports.OutboxWriter
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Config    entities.LifecycleConfig
	Logger    *slog.Logger
}

// CastVote records a first ballot. The entity must be in its voting phase
// and abstention is only offered on ballots opened after the abstention
// rollout date. Voting twice is a conflict; use UpdateVote to change a
// ballot.
func (uc VoteUseCase) CastVote(ctx context.Context, cmd CastVoteCommand) (entities.Vote, error) {
	logger := application.ResolveLogger(uc.Logger)
	vote, err := uc.validate(ctx, cmd)
	if err != nil {
		return entities.Vote{}, err
	}

	id, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Vote{}, err
	}
	now := uc.now()
	vote.ID = id
	vote.CreatedAt = now
	vote.ChangedAt = now
	if err := uc.Votes.CastVote(ctx, vote); err != nil {
		return entities.Vote{}, err
	}

	if err := uc.appendEvent(ctx, "vote.cast", cmd.Target, now, nil, nil); err != nil {
		return entities.Vote{}, err
	}

	logger.Info("vote cast",
		"event", "lifecycle_vote_cast",
		"module", "participation/lifecycle-engine",
		"layer", "application",
		"entity_kind", string(cmd.Target.Kind),
		"entity_id", cmd.Target.ID,
	)
	return vote, nil
}

// UpdateVote replaces an existing ballot while the phase is still open.
func (uc VoteUseCase) UpdateVote(ctx context.Context, cmd CastVoteCommand) (entities.Vote, error) {
	vote, err := uc.validate(ctx, cmd)
	if err != nil {
		return entities.Vote{}, err
	}

	existing, found, err := uc.Votes.GetVoteByUser(ctx, cmd.Target, vote.UserID)
	if err != nil {
		return entities.Vote{}, err
	}
	if !found {
		return entities.Vote{}, domainerrors.ErrVoteNotFound
	}
	now := uc.now()
	existing.Value = vote.Value
	existing.Reason = vote.Reason
	existing.ChangedAt = now
	if err := uc.Votes.UpdateVote(ctx, existing); err != nil {
		return entities.Vote{}, err
	}
	if err := uc.appendEvent(ctx, "vote.changed", cmd.Target, now, nil, nil); err != nil {
		return entities.Vote{}, err
	}
	return existing, nil
}

func (uc VoteUseCase) validate(ctx context.Context, cmd CastVoteCommand) (entities.Vote, error) {
	cmd.UserID = strings.TrimSpace(cmd.UserID)
	if cmd.UserID == "" || !cmd.Target.Kind.Valid() || strings.TrimSpace(cmd.Target.ID) == "" || !cmd.Value.Valid() {
		return entities.Vote{}, domainerrors.ErrInvalidInput
	}

	switch cmd.Target.Kind {
	case entities.KindInitiative:
		ini, err := uc.Proposals.GetInitiative(ctx, cmd.Target.ID)
		if err != nil {
			return entities.Vote{}, err
		}
		if ini.State != entities.InitiativeVoting {
			return entities.Vote{}, domainerrors.ErrInvalidStateForAction
		}
		if cmd.Value == entities.VoteAbstain && !ini.AllowsAbstention(uc.Config.AbstentionStart) {
			return entities.Vote{}, domainerrors.ErrInvalidInput
		}
	case entities.KindPolicy:
		pol, err := uc.Proposals.GetPolicy(ctx, cmd.Target.ID)
		if err != nil {
			return entities.Vote{}, err
		}
		if pol.State != entities.PolicyVoted {
			return entities.Vote{}, domainerrors.ErrInvalidStateForAction
		}
	}

	return entities.Vote{
		Target: cmd.Target,
		UserID: cmd.UserID,
		Value:  cmd.Value,
		Reason: strings.TrimSpace(cmd.Reason),
	}, nil
}

func (uc VoteUseCase) appendEvent(
	ctx context.Context,
	eventType string,
	target entities.EntityRef,
	occurredAt time.Time,
	recipients []string,
	payload map[string]any,
) error {
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, newLifecycleEnvelope(eventID, eventType, target, occurredAt, recipients, payload))
}

func (uc VoteUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
