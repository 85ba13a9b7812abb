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

// CreateInitiativeCommand drafts a new initiative in preparation state with
// the caller registered as its first acknowledged initiator.
type CreateInitiativeCommand struct {
	InitiatorID string
	Title       string
	Subtitle    string

	Summary         string
	Problem         string
	Demand          string
	CostEstimate    string
	FundingProposal string
	Methodology     string
	InitialArgument string

	Context string
	Scope   string
	Topic   string

	VariantOf string
}

type CreatePolicyCommand struct {
	InitiatorID string
	Title       string
	Fields      map[string]string
	VariantOf   string
}

type UpdateInitiativeContentCommand struct {
	ID              string
	Title           string
	Subtitle        string
	Summary         string
	Problem         string
	Demand          string
	CostEstimate    string
	FundingProposal string
	Methodology     string
	InitialArgument string
	Context         string
	Scope           string
	Topic           string
}

type UpdatePolicyContentCommand struct {
	ID     string
	Title  string
	Fields map[string]string
}

// ProposalUseCase owns proposal creation and content edits. Structural state
// changes go through AdvanceUseCase exclusively.
type ProposalUseCase struct {
	Proposals  ports.ProposalRepository
	Supporters ports.SupporterRepository
	Outbox     ports.OutboxWriter
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Schema     entities.FieldSchema
	Logger     *slog.Logger
}

func (uc ProposalUseCase) CreateInitiative(ctx context.Context, cmd CreateInitiativeCommand) (entities.Initiative, error) {
	logger := application.ResolveLogger(uc.Logger)
	if strings.TrimSpace(cmd.InitiatorID) == "" || strings.TrimSpace(cmd.Title) == "" {
		logger.Warn("initiative create validation failed",
			"event", "lifecycle_initiative_create_validation_failed",
			"module", "participation/lifecycle-engine",
			"layer", "application",
			"initiator_id", strings.TrimSpace(cmd.InitiatorID),
		)
		return entities.Initiative{}, domainerrors.ErrInvalidInput
	}
	if strings.TrimSpace(cmd.VariantOf) != "" {
		parent, err := uc.Proposals.GetInitiative(ctx, strings.TrimSpace(cmd.VariantOf))
		if err != nil {
			return entities.Initiative{}, err
		}
		// Variant groups are flat: a variant of a variant would split the
		// sibling vote.
		if parent.VariantOf != "" {
			return entities.Initiative{}, domainerrors.ErrInvalidInput
		}
	}

	now := uc.now()
	id, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Initiative{}, err
	}
	ini := entities.Initiative{
		ID:              id,
		Title:           strings.TrimSpace(cmd.Title),
		Subtitle:        strings.TrimSpace(cmd.Subtitle),
		Summary:         cmd.Summary,
		Problem:         cmd.Problem,
		Demand:          cmd.Demand,
		CostEstimate:    cmd.CostEstimate,
		FundingProposal: cmd.FundingProposal,
		Methodology:     cmd.Methodology,
		InitialArgument: cmd.InitialArgument,
		Context:         strings.TrimSpace(cmd.Context),
		Scope:           strings.TrimSpace(cmd.Scope),
		Topic:           strings.TrimSpace(cmd.Topic),
		State:           entities.InitiativePreparation,
		VariantOf:       strings.TrimSpace(cmd.VariantOf),
		Version:         1,
		CreatedAt:       now,
		ChangedAt:       now,
	}
	if err := uc.Proposals.CreateInitiative(ctx, ini); err != nil {
		return entities.Initiative{}, err
	}

	target := entities.EntityRef{Kind: entities.KindInitiative, ID: ini.ID}
	supporterID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Initiative{}, err
	}
	if err := uc.Supporters.AddSupporter(ctx, entities.Supporter{
		ID:        supporterID,
		Target:    target,
		UserID:    strings.TrimSpace(cmd.InitiatorID),
		Initiator: true,
		Ack:       true,
		Public:    true,
		First:     true,
		CreatedAt: now,
	}); err != nil {
		return entities.Initiative{}, err
	}
	if err := uc.appendEvent(ctx, "initiative.created", target, now,
		[]string{strings.TrimSpace(cmd.InitiatorID)},
		map[string]any{"title": ini.Title, "state": string(ini.State)},
	); err != nil {
		return entities.Initiative{}, err
	}

	logger.Info("initiative created",
		"event", "lifecycle_initiative_created",
		"module", "participation/lifecycle-engine",
		"layer", "application",
		"initiative_id", ini.ID,
		"initiator_id", strings.TrimSpace(cmd.InitiatorID),
	)
	return ini, nil
}

func (uc ProposalUseCase) CreatePolicy(ctx context.Context, cmd CreatePolicyCommand) (entities.Policy, error) {
	logger := application.ResolveLogger(uc.Logger)
	if strings.TrimSpace(cmd.InitiatorID) == "" || strings.TrimSpace(cmd.Title) == "" {
		logger.Warn("policy create validation failed",
			"event", "lifecycle_policy_create_validation_failed",
			"module", "participation/lifecycle-engine",
			"layer", "application",
			"initiator_id", strings.TrimSpace(cmd.InitiatorID),
		)
		return entities.Policy{}, domainerrors.ErrInvalidInput
	}
	if err := uc.Schema.Validate(cmd.Fields); err != nil {
		logger.Warn("policy create schema validation failed",
			"event", "lifecycle_policy_create_schema_failed",
			"module", "participation/lifecycle-engine",
			"layer", "application",
			"error", err.Error(),
		)
		return entities.Policy{}, domainerrors.ErrInvalidInput
	}
	if strings.TrimSpace(cmd.VariantOf) != "" {
		parent, err := uc.Proposals.GetPolicy(ctx, strings.TrimSpace(cmd.VariantOf))
		if err != nil {
			return entities.Policy{}, err
		}
		if parent.VariantOf != "" {
			return entities.Policy{}, domainerrors.ErrInvalidInput
		}
	}

	now := uc.now()
	id, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Policy{}, err
	}
	fields := make(map[string]string, len(cmd.Fields))
	for name, value := range cmd.Fields {
		fields[name] = value
	}
	pol := entities.Policy{
		ID:        id,
		Title:     strings.TrimSpace(cmd.Title),
		Fields:    fields,
		State:     entities.PolicyDraft,
		VariantOf: strings.TrimSpace(cmd.VariantOf),
		Version:   1,
		CreatedAt: now,
		ChangedAt: now,
	}
	if err := uc.Proposals.CreatePolicy(ctx, pol); err != nil {
		return entities.Policy{}, err
	}

	target := entities.EntityRef{Kind: entities.KindPolicy, ID: pol.ID}
	supporterID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Policy{}, err
	}
	if err := uc.Supporters.AddSupporter(ctx, entities.Supporter{
		ID:        supporterID,
		Target:    target,
		UserID:    strings.TrimSpace(cmd.InitiatorID),
		Initiator: true,
		Ack:       true,
		Public:    true,
		First:     true,
		CreatedAt: now,
	}); err != nil {
		return entities.Policy{}, err
	}
	if err := uc.appendEvent(ctx, "policy.created", target, now,
		[]string{strings.TrimSpace(cmd.InitiatorID)},
		map[string]any{"title": pol.Title, "state": string(pol.State)},
	); err != nil {
		return entities.Policy{}, err
	}

	logger.Info("policy created",
		"event", "lifecycle_policy_created",
		"module", "participation/lifecycle-engine",
		"layer", "application",
		"policy_id", pol.ID,
		"initiator_id", strings.TrimSpace(cmd.InitiatorID),
	)
	return pol, nil
}

// initiativeEditableStates are the states in which content may still change.
// Once support gathering begins the text is frozen until final edits.
func initiativeEditable(state entities.InitiativeState) bool {
	switch state {
	case entities.InitiativePreparation, entities.InitiativeIncoming, entities.InitiativeFinalEdits:
		return true
	}
	return false
}

func policyEditable(state entities.PolicyState) bool {
	switch state {
	case entities.PolicyDraft, entities.PolicyStaged, entities.PolicyReviewed, entities.PolicyInvalidated:
		return true
	}
	return false
}

func (uc ProposalUseCase) UpdateInitiativeContent(ctx context.Context, cmd UpdateInitiativeContentCommand) (entities.Initiative, error) {
	ini, err := uc.Proposals.GetInitiative(ctx, strings.TrimSpace(cmd.ID))
	if err != nil {
		return entities.Initiative{}, err
	}
	if !initiativeEditable(ini.State) {
		return entities.Initiative{}, domainerrors.ErrInvalidStateForAction
	}
	if strings.TrimSpace(cmd.Title) == "" {
		return entities.Initiative{}, domainerrors.ErrInvalidInput
	}

	ini.Title = strings.TrimSpace(cmd.Title)
	ini.Subtitle = strings.TrimSpace(cmd.Subtitle)
	ini.Summary = cmd.Summary
	ini.Problem = cmd.Problem
	ini.Demand = cmd.Demand
	ini.CostEstimate = cmd.CostEstimate
	ini.FundingProposal = cmd.FundingProposal
	ini.Methodology = cmd.Methodology
	ini.InitialArgument = cmd.InitialArgument
	ini.Context = strings.TrimSpace(cmd.Context)
	ini.Scope = strings.TrimSpace(cmd.Scope)
	ini.Topic = strings.TrimSpace(cmd.Topic)
	ini.ChangedAt = uc.now()

	if err := uc.Proposals.UpdateInitiativeContent(ctx, ini); err != nil {
		return entities.Initiative{}, err
	}
	return ini, nil
}

func (uc ProposalUseCase) UpdatePolicyContent(ctx context.Context, cmd UpdatePolicyContentCommand) (entities.Policy, error) {
	pol, err := uc.Proposals.GetPolicy(ctx, strings.TrimSpace(cmd.ID))
	if err != nil {
		return entities.Policy{}, err
	}
	if !policyEditable(pol.State) {
		return entities.Policy{}, domainerrors.ErrInvalidStateForAction
	}
	if strings.TrimSpace(cmd.Title) == "" {
		return entities.Policy{}, domainerrors.ErrInvalidInput
	}
	if err := uc.Schema.Validate(cmd.Fields); err != nil {
		return entities.Policy{}, domainerrors.ErrInvalidInput
	}

	pol.Title = strings.TrimSpace(cmd.Title)
	fields := make(map[string]string, len(cmd.Fields))
	for name, value := range cmd.Fields {
		fields[name] = value
	}
	pol.Fields = fields
	pol.ChangedAt = uc.now()

	if err := uc.Proposals.UpdatePolicyContent(ctx, pol); err != nil {
		return entities.Policy{}, err
	}
	return pol, nil
}

func (uc ProposalUseCase) appendEvent(
	ctx context.Context,
	eventType string,
	target entities.EntityRef,
	occurredAt time.Time,
	recipients []string,
	payload map[string]any,
) error {
	// Outbox is optional for pure read/test wiring, so nil is treated as no-op.
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, newLifecycleEnvelope(eventID, eventType, target, occurredAt, recipients, payload))
}

func (uc ProposalUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
