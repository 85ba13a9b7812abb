package workers

import (
	"context"
	"errors"
	"log/slog"

	application "agora/contexts/participation/lifecycle-engine/application"
	"agora/contexts/participation/lifecycle-engine/application/commands"
	"agora/contexts/participation/lifecycle-engine/domain/entities"
	domainerrors "agora/contexts/participation/lifecycle-engine/domain/errors"
	"agora/contexts/participation/lifecycle-engine/ports"
)

// PhaseSweep walks the deadline-bearing states and advances or closes every
// entity whose phase has run out. Advancement stays an explicit action; the
// sweep merely issues it on schedule, so a manual advance racing a sweep is
// resolved by the version check and one of the two loses cleanly.
type PhaseSweep struct {
	Proposals ports.ProposalRepository
	Loader    application.SnapshotLoader
	Advance   commands.AdvanceUseCase
	Config    entities.LifecycleConfig
	Logger    *slog.Logger
}

func (w PhaseSweep) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(w.Logger)

	swept := 0
	for _, state := range []entities.InitiativeState{
		entities.InitiativeSeekingSupport,
		entities.InitiativeDiscussion,
		entities.InitiativeVoting,
	} {
		list, err := w.Proposals.ListInitiativesByState(ctx, state)
		if err != nil {
			return err
		}
		for _, ini := range list {
			due, err := w.initiativeDue(ctx, ini.ID)
			if err != nil {
				return err
			}
			if !due {
				continue
			}
			if state == entities.InitiativeVoting {
				_, err = w.Advance.CloseInitiativeVoting(ctx, ini.ID, nil)
			} else {
				_, err = w.Advance.AdvanceInitiative(ctx, ini.ID)
			}
			if w.skippable(err) {
				continue
			}
			if err != nil {
				return err
			}
			swept++
		}
	}

	for _, state := range []entities.PolicyState{
		entities.PolicyValidated,
		entities.PolicyDiscussed,
		entities.PolicyVoted,
	} {
		list, err := w.Proposals.ListPoliciesByState(ctx, state)
		if err != nil {
			return err
		}
		for _, pol := range list {
			due, err := w.policyDue(ctx, pol.ID)
			if err != nil {
				return err
			}
			if !due {
				continue
			}
			if state == entities.PolicyVoted {
				_, err = w.Advance.ClosePolicyVoting(ctx, pol.ID, nil)
			} else {
				_, err = w.Advance.AdvancePolicy(ctx, pol.ID)
			}
			if w.skippable(err) {
				continue
			}
			if err != nil {
				return err
			}
			swept++
		}
	}

	logger.Info("phase sweep completed",
		"event", "lifecycle_phase_sweep_completed",
		"module", "participation/lifecycle-engine",
		"layer", "worker",
		"advanced_count", swept,
	)
	return nil
}

func (w PhaseSweep) initiativeDue(ctx context.Context, id string) (bool, error) {
	snap, err := w.Loader.LoadInitiative(ctx, id)
	if err != nil {
		return false, err
	}
	end := snap.EndOfPhase(w.Config)
	return end != nil && snap.Now.After(*end), nil
}

func (w PhaseSweep) policyDue(ctx context.Context, id string) (bool, error) {
	snap, err := w.Loader.LoadPolicy(ctx, id)
	if err != nil {
		return false, err
	}
	end := snap.EndOfPhase(w.Config)
	return end != nil && snap.Now.After(*end), nil
}

// skippable errors leave the entity for a later sweep or for the moderation
// team instead of aborting the whole cycle.
func (w PhaseSweep) skippable(err error) bool {
	return errors.Is(err, domainerrors.ErrNotReadyForTransition) ||
		errors.Is(err, domainerrors.ErrTieUnresolved) ||
		errors.Is(err, domainerrors.ErrConcurrentTransition)
}
