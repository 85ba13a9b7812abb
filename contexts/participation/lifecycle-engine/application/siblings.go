package application

import (
	"context"

	"agora/contexts/participation/lifecycle-engine/domain/entities"
	"agora/contexts/participation/lifecycle-engine/ports"
)

// InitiativeSiblings resolves the competing variants for a ballot. A variant
// competes against its parent and the parent's other variants; a parent
// competes against its own variants. Variant groups are flat, so no deeper
// traversal is needed.
func InitiativeSiblings(ctx context.Context, repo ports.ProposalRepository, ini entities.Initiative) ([]entities.Initiative, error) {
	if ini.VariantOf == "" {
		return repo.ListInitiativeVariants(ctx, ini.ID)
	}
	parent, err := repo.GetInitiative(ctx, ini.VariantOf)
	if err != nil {
		return nil, err
	}
	variants, err := repo.ListInitiativeVariants(ctx, parent.ID)
	if err != nil {
		return nil, err
	}
	siblings := make([]entities.Initiative, 0, len(variants))
	siblings = append(siblings, parent)
	for _, v := range variants {
		if v.ID == ini.ID {
			continue
		}
		siblings = append(siblings, v)
	}
	return siblings, nil
}

func PolicySiblings(ctx context.Context, repo ports.ProposalRepository, pol entities.Policy) ([]entities.Policy, error) {
	if pol.VariantOf == "" {
		return repo.ListPolicyVariants(ctx, pol.ID)
	}
	parent, err := repo.GetPolicy(ctx, pol.VariantOf)
	if err != nil {
		return nil, err
	}
	variants, err := repo.ListPolicyVariants(ctx, parent.ID)
	if err != nil {
		return nil, err
	}
	siblings := make([]entities.Policy, 0, len(variants))
	siblings = append(siblings, parent)
	for _, v := range variants {
		if v.ID == pol.ID {
			continue
		}
		siblings = append(siblings, v)
	}
	return siblings, nil
}
