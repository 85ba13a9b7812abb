package commands

import (
	"context"
	"log/slog"
	"time"

	application "agora/contexts/participation/lifecycle-engine/application"
	"agora/contexts/participation/lifecycle-engine/domain/entities"
	domainerrors "agora/contexts/participation/lifecycle-engine/domain/errors"
	"agora/contexts/participation/lifecycle-engine/ports"
)

type QuorumUseCase struct {
	Quorums ports.QuorumRepository
	Clock   ports.Clock
	IDGen   ports.IDGenerator
	Logger  *slog.Logger
}

// SetQuorum appends a new supporter threshold. Earlier rows stay for the
// audit trail; only the newest one is consulted.
func (uc QuorumUseCase) SetQuorum(ctx context.Context, value int) (entities.Quorum, error) {
	logger := application.ResolveLogger(uc.Logger)
	if value <= 0 {
		return entities.Quorum{}, domainerrors.ErrInvalidInput
	}
	id, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Quorum{}, err
	}
	q := entities.Quorum{
		ID:        id,
		Value:     value,
		CreatedAt: uc.now(),
	}
	if err := uc.Quorums.SetQuorum(ctx, q); err != nil {
		return entities.Quorum{}, err
	}
	logger.Info("quorum updated",
		"event", "lifecycle_quorum_updated",
		"module", "participation/lifecycle-engine",
		"layer", "application",
		"quorum", value,
	)
	return q, nil
}

func (uc QuorumUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
