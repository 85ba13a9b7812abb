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

type AddSupporterCommand struct {
	Target    entities.EntityRef
	UserID    string
	Initiator bool
	Public    bool
}

type AcknowledgeCommand struct {
	Target entities.EntityRef
	UserID string
	Ack    bool
}

type SupportUseCase struct {
	Proposals  ports.ProposalRepository
	Supporters ports.SupporterRepository
	Outbox     ports.OutboxWriter
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

// AddSupporter records one user's backing of a proposal. Invited
// co-initiators start unacknowledged; plain supporters are counted
// immediately. Supporting twice is a conflict, not an update.
func (uc SupportUseCase) AddSupporter(ctx context.Context, cmd AddSupporterCommand) (entities.Supporter, error) {
	logger := application.ResolveLogger(uc.Logger)
	cmd.UserID = strings.TrimSpace(cmd.UserID)
	if cmd.UserID == "" || !cmd.Target.Kind.Valid() || strings.TrimSpace(cmd.Target.ID) == "" {
		return entities.Supporter{}, domainerrors.ErrInvalidInput
	}

	open, err := uc.supportOpen(ctx, cmd.Target, cmd.Initiator)
	if err != nil {
		return entities.Supporter{}, err
	}
	if !open {
		return entities.Supporter{}, domainerrors.ErrInvalidStateForAction
	}

	id, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Supporter{}, err
	}
	now := uc.now()
	supporter := entities.Supporter{
		ID:        id,
		Target:    cmd.Target,
		UserID:    cmd.UserID,
		Initiator: cmd.Initiator,
		Ack:       !cmd.Initiator,
		Public:    cmd.Public || cmd.Initiator,
		CreatedAt: now,
	}
	if err := uc.Supporters.AddSupporter(ctx, supporter); err != nil {
		return entities.Supporter{}, err
	}

	if err := uc.appendEvent(ctx, "support.added", cmd.Target, now, nil, map[string]any{
		"user_id":   supporter.UserID,
		"initiator": supporter.Initiator,
	}); err != nil {
		return entities.Supporter{}, err
	}

	logger.Info("supporter added",
		"event", "lifecycle_supporter_added",
		"module", "participation/lifecycle-engine",
		"layer", "application",
		"entity_kind", string(cmd.Target.Kind),
		"entity_id", cmd.Target.ID,
		"initiator", supporter.Initiator,
	)
	return supporter, nil
}

// Acknowledge flips an invited co-initiator's confirmation. Only initiator
// rows carry an acknowledgement; plain supporters are acknowledged from the
// start.
func (uc SupportUseCase) Acknowledge(ctx context.Context, cmd AcknowledgeCommand) error {
	cmd.UserID = strings.TrimSpace(cmd.UserID)
	if cmd.UserID == "" || !cmd.Target.Kind.Valid() || strings.TrimSpace(cmd.Target.ID) == "" {
		return domainerrors.ErrInvalidInput
	}
	if err := uc.Supporters.SetAcknowledged(ctx, cmd.Target, cmd.UserID, cmd.Ack); err != nil {
		return err
	}
	now := uc.now()
	return uc.appendEvent(ctx, "support.acknowledged", cmd.Target, now, nil, map[string]any{
		"user_id": cmd.UserID,
		"ack":     cmd.Ack,
	})
}

// supportOpen gates who may join at which stage: co-initiators are recruited
// before the proposal goes public, general support is collected afterwards
// until the discussion phase starts.
func (uc SupportUseCase) supportOpen(ctx context.Context, target entities.EntityRef, initiator bool) (bool, error) {
	switch target.Kind {
	case entities.KindInitiative:
		ini, err := uc.Proposals.GetInitiative(ctx, target.ID)
		if err != nil {
			return false, err
		}
		if initiator {
			switch ini.State {
			case entities.InitiativePreparation, entities.InitiativeIncoming,
				entities.InitiativeModeration, entities.InitiativeFinalEdits:
				return true, nil
			}
			return false, nil
		}
		return ini.State == entities.InitiativeSeekingSupport, nil
	case entities.KindPolicy:
		pol, err := uc.Proposals.GetPolicy(ctx, target.ID)
		if err != nil {
			return false, err
		}
		if initiator {
			switch pol.State {
			case entities.PolicyDraft, entities.PolicyStaged,
				entities.PolicySubmitted, entities.PolicyInvalidated,
				entities.PolicyReviewed:
				return true, nil
			}
			return false, nil
		}
		return pol.State == entities.PolicyValidated, nil
	}
	return false, domainerrors.ErrInvalidInput
}

func (uc SupportUseCase) appendEvent(
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

func (uc SupportUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
