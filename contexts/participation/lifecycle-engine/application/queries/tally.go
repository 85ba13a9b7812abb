package queries

import (
	"context"
	"strings"

	application "agora/contexts/participation/lifecycle-engine/application"
	"agora/contexts/participation/lifecycle-engine/domain/entities"
	domainerrors "agora/contexts/participation/lifecycle-engine/domain/errors"
	"agora/contexts/participation/lifecycle-engine/ports"
)

// BallotReport is the tallied outcome of one entity's vote, resolved against
// its competing variants. Accepted is only meaningful once the phase closes;
// before that it is a live projection of the current counts.
type BallotReport struct {
	Target   entities.EntityRef
	Tally    entities.Tally
	Voters   int
	Accepted bool
}

type TallyQuery struct {
	Proposals ports.ProposalRepository
	Votes     ports.VoteRepository
}

// Report tallies the entity's ballot and settles acceptance against the
// sibling variants. A tie on the winning yes count surfaces as
// ErrTieUnresolved.
func (q TallyQuery) Report(ctx context.Context, target entities.EntityRef) (BallotReport, error) {
	if !target.Kind.Valid() || strings.TrimSpace(target.ID) == "" {
		return BallotReport{}, domainerrors.ErrInvalidInput
	}
	own, err := q.Votes.TallyVotes(ctx, target)
	if err != nil {
		return BallotReport{}, err
	}
	voters, err := q.Votes.CountVoters(ctx, target)
	if err != nil {
		return BallotReport{}, err
	}

	siblings, err := q.siblingTallies(ctx, target)
	if err != nil {
		return BallotReport{}, err
	}
	accepted, err := entities.ResolveAcceptance(own, siblings)
	if err != nil {
		return BallotReport{}, err
	}
	return BallotReport{
		Target:   target,
		Tally:    own,
		Voters:   voters,
		Accepted: accepted,
	}, nil
}

func (q TallyQuery) siblingTallies(ctx context.Context, target entities.EntityRef) ([]entities.Tally, error) {
	var refs []entities.EntityRef
	switch target.Kind {
	case entities.KindInitiative:
		ini, err := q.Proposals.GetInitiative(ctx, target.ID)
		if err != nil {
			return nil, err
		}
		siblings, err := application.InitiativeSiblings(ctx, q.Proposals, ini)
		if err != nil {
			return nil, err
		}
		for _, sibling := range siblings {
			refs = append(refs, entities.EntityRef{Kind: entities.KindInitiative, ID: sibling.ID})
		}
	case entities.KindPolicy:
		pol, err := q.Proposals.GetPolicy(ctx, target.ID)
		if err != nil {
			return nil, err
		}
		siblings, err := application.PolicySiblings(ctx, q.Proposals, pol)
		if err != nil {
			return nil, err
		}
		for _, sibling := range siblings {
			refs = append(refs, entities.EntityRef{Kind: entities.KindPolicy, ID: sibling.ID})
		}
	}

	tallies := make([]entities.Tally, 0, len(refs))
	for _, ref := range refs {
		tally, err := q.Votes.TallyVotes(ctx, ref)
		if err != nil {
			return nil, err
		}
		tallies = append(tallies, tally)
	}
	return tallies, nil
}
