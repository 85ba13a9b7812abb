package queries

import (
	"context"
	"strings"

	"agora/contexts/participation/lifecycle-engine/domain/entities"
	domainerrors "agora/contexts/participation/lifecycle-engine/domain/errors"
	"agora/contexts/participation/lifecycle-engine/ports"
)

// SupportReport relates one entity's supporter count to the platform
// quorum. RelativePercent can exceed 100 once the threshold is passed.
type SupportReport struct {
	Target          entities.EntityRef
	Supporters      int
	Quorum          int
	RelativePercent float64
	QuorumReached   bool
}

type SupportQuery struct {
	Supporters ports.SupporterRepository
	Quorums    ports.QuorumRepository
}

// RelativeSupport computes supporter progress against the current quorum.
// A zero quorum makes the ratio undefined and is reported as ErrZeroQuorum
// rather than silently treated as reached.
func (q SupportQuery) RelativeSupport(ctx context.Context, target entities.EntityRef) (SupportReport, error) {
	if !target.Kind.Valid() || strings.TrimSpace(target.ID) == "" {
		return SupportReport{}, domainerrors.ErrInvalidInput
	}
	supporters, err := q.Supporters.CountSupporters(ctx, target, entities.SupporterFilter{})
	if err != nil {
		return SupportReport{}, err
	}
	quorum, err := q.Quorums.CurrentQuorum(ctx)
	if err != nil {
		return SupportReport{}, err
	}
	if quorum <= 0 {
		return SupportReport{}, domainerrors.ErrZeroQuorum
	}
	return SupportReport{
		Target:          target,
		Supporters:      supporters,
		Quorum:          quorum,
		RelativePercent: float64(supporters) / float64(quorum) * 100,
		QuorumReached:   supporters >= quorum,
	}, nil
}

// Initiators lists the acknowledged founding team.
func (q SupportQuery) Initiators(ctx context.Context, target entities.EntityRef) ([]entities.Supporter, error) {
	if !target.Kind.Valid() || strings.TrimSpace(target.ID) == "" {
		return nil, domainerrors.ErrInvalidInput
	}
	return q.Supporters.ListSupporters(ctx, target, entities.SupporterFilter{
		InitiatorsOnly:   true,
		AcknowledgedOnly: true,
	})
}

// PublicSupporters lists supporters who opted into being shown, excluding
// the founding team rows.
func (q SupportQuery) PublicSupporters(ctx context.Context, target entities.EntityRef) ([]entities.Supporter, error) {
	if !target.Kind.Valid() || strings.TrimSpace(target.ID) == "" {
		return nil, domainerrors.ErrInvalidInput
	}
	return q.Supporters.ListSupporters(ctx, target, entities.SupporterFilter{PublicOnly: true})
}
