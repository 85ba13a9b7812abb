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

// AdvanceUseCase is the only writer of proposal state. Advancement is an
// explicit action: the readiness predicate is evaluated against a fresh
// snapshot and a version-checked transition serializes concurrent calls on
// the same entity.
type AdvanceUseCase struct {
	Loader     application.SnapshotLoader
	Proposals  ports.ProposalRepository
	Supporters ports.SupporterRepository
	Votes      ports.VoteRepository
	Outbox     ports.OutboxWriter
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Config     entities.LifecycleConfig
	Logger     *slog.Logger
}

// AdvanceInitiative moves an initiative one step forward. A moderation-state
// proposal whose panel rejects it moves sideways to rejected instead. Voting
// is closed through CloseInitiativeVoting, never through this path.
func (uc AdvanceUseCase) AdvanceInitiative(ctx context.Context, id string) (entities.Initiative, error) {
	logger := application.ResolveLogger(uc.Logger)
	snap, err := uc.Loader.LoadInitiative(ctx, strings.TrimSpace(id))
	if err != nil {
		return entities.Initiative{}, err
	}
	ini := snap.Initiative

	if ini.State.Terminal() || ini.State == entities.InitiativeVoting {
		return entities.Initiative{}, domainerrors.ErrInvalidStateForAction
	}
	if !snap.ReadyForNextStage(uc.Config) {
		logger.Info("initiative not ready for next stage",
			"event", "lifecycle_initiative_advance_not_ready",
			"module", "participation/lifecycle-engine",
			"layer", "application",
			"initiative_id", ini.ID,
			"state", string(ini.State),
		)
		return entities.Initiative{}, domainerrors.ErrNotReadyForTransition
	}

	now := uc.now()
	next, ok := ini.State.Next()
	if !ok {
		return entities.Initiative{}, domainerrors.ErrInvalidStateForAction
	}
	transition := ports.InitiativeTransition{
		ID:          ini.ID,
		FromVersion: ini.Version,
		ToState:     next,
		ChangedAt:   now,
	}

	if ini.State == entities.InitiativeModeration && !snap.ReadyToProceed() {
		// Panel consensus went against the proposal.
		transition.ToState = entities.InitiativeRejected
		transition.StampClosed = &now
	}

	switch transition.ToState {
	case entities.InitiativeSeekingSupport:
		transition.StampPublic = &now
	case entities.InitiativeDiscussion:
		transition.StampDiscuss = &now
	case entities.InitiativeVoting:
		transition.StampVoting = &now
	}

	if err := uc.Proposals.ApplyInitiativeTransition(ctx, transition); err != nil {
		return entities.Initiative{}, err
	}
	applyInitiativeTransition(&ini, transition)

	recipients, err := uc.followerIDs(ctx, entities.EntityRef{Kind: entities.KindInitiative, ID: ini.ID}, snap.Initiative.State)
	if err != nil {
		return entities.Initiative{}, err
	}
	if err := uc.appendEvent(ctx, "initiative.advanced",
		entities.EntityRef{Kind: entities.KindInitiative, ID: ini.ID}, now, recipients,
		map[string]any{"state": string(ini.State)},
	); err != nil {
		return entities.Initiative{}, err
	}

	logger.Info("initiative advanced",
		"event", "lifecycle_initiative_advanced",
		"module", "participation/lifecycle-engine",
		"layer", "application",
		"initiative_id", ini.ID,
		"state", string(ini.State),
	)
	return ini, nil
}

func (uc AdvanceUseCase) AdvancePolicy(ctx context.Context, id string) (entities.Policy, error) {
	logger := application.ResolveLogger(uc.Logger)
	snap, err := uc.Loader.LoadPolicy(ctx, strings.TrimSpace(id))
	if err != nil {
		return entities.Policy{}, err
	}
	pol := snap.Policy

	if pol.State.Terminal() || pol.State == entities.PolicyVoted {
		return entities.Policy{}, domainerrors.ErrInvalidStateForAction
	}
	if !snap.ReadyForNextStage(uc.Config) {
		logger.Info("policy not ready for next stage",
			"event", "lifecycle_policy_advance_not_ready",
			"module", "participation/lifecycle-engine",
			"layer", "application",
			"policy_id", pol.ID,
			"state", string(pol.State),
		)
		return entities.Policy{}, domainerrors.ErrNotReadyForTransition
	}

	now := uc.now()
	next, ok := pol.State.Next()
	if !ok && pol.State != entities.PolicyInvalidated {
		return entities.Policy{}, domainerrors.ErrInvalidStateForAction
	}
	if pol.State == entities.PolicyInvalidated {
		// A re-moderated proposal re-enters the chain at validation.
		next = entities.PolicyValidated
	}
	transition := ports.PolicyTransition{
		ID:          pol.ID,
		FromVersion: pol.Version,
		ToState:     next,
		ChangedAt:   now,
	}

	if pol.State.ModerationState() && !snap.ReadyToProceed() {
		transition.ToState = entities.PolicyRejected
		transition.StampRejected = &now
	}

	switch transition.ToState {
	case entities.PolicyStaged:
		transition.StampStaged = &now
	case entities.PolicyValidated:
		transition.StampValidated = &now
	case entities.PolicyDiscussed:
		transition.StampDiscuss = &now
	case entities.PolicyReleased:
		transition.StampPublished = &now
	case entities.PolicyVoted:
		transition.StampVote = &now
	}

	if err := uc.Proposals.ApplyPolicyTransition(ctx, transition); err != nil {
		return entities.Policy{}, err
	}
	applyPolicyTransition(&pol, transition)

	recipients, err := uc.followerIDs(ctx, entities.EntityRef{Kind: entities.KindPolicy, ID: pol.ID}, "")
	if err != nil {
		return entities.Policy{}, err
	}
	if err := uc.appendEvent(ctx, "policy.advanced",
		entities.EntityRef{Kind: entities.KindPolicy, ID: pol.ID}, now, recipients,
		map[string]any{"state": string(pol.State)},
	); err != nil {
		return entities.Policy{}, err
	}

	logger.Info("policy advanced",
		"event", "lifecycle_policy_advanced",
		"module", "participation/lifecycle-engine",
		"layer", "application",
		"policy_id", pol.ID,
		"state", string(pol.State),
	)
	return pol, nil
}

// CloseInitiativeVoting tallies the ballot and settles acceptance. A tie
// among winning sibling variants leaves the state untouched and escalates to
// the moderation team; the vote must be prolonged or re-run.
func (uc AdvanceUseCase) CloseInitiativeVoting(ctx context.Context, id string, eligibleVoters *int) (entities.Initiative, error) {
	logger := application.ResolveLogger(uc.Logger)
	ini, err := uc.Proposals.GetInitiative(ctx, strings.TrimSpace(id))
	if err != nil {
		return entities.Initiative{}, err
	}
	if ini.State != entities.InitiativeVoting {
		return entities.Initiative{}, domainerrors.ErrInvalidStateForAction
	}
	target := entities.EntityRef{Kind: entities.KindInitiative, ID: ini.ID}

	own, err := uc.Votes.TallyVotes(ctx, target)
	if err != nil {
		return entities.Initiative{}, err
	}
	siblings, err := uc.initiativeSiblingTallies(ctx, ini)
	if err != nil {
		return entities.Initiative{}, err
	}

	now := uc.now()
	accepted, err := entities.ResolveAcceptance(own, siblings)
	if err != nil {
		logger.Warn("initiative vote tied among variants",
			"event", "lifecycle_initiative_vote_tied",
			"module", "participation/lifecycle-engine",
			"layer", "application",
			"initiative_id", ini.ID,
			"yes", own.Yes,
			"no", own.No,
		)
		if appendErr := uc.appendEvent(ctx, "initiative.vote_tied", target, now, nil,
			map[string]any{"yes": own.Yes, "no": own.No},
		); appendErr != nil {
			return entities.Initiative{}, appendErr
		}
		return entities.Initiative{}, err
	}

	toState := entities.InitiativeRejected
	if accepted {
		toState = entities.InitiativeAccepted
	}
	transition := ports.InitiativeTransition{
		ID:             ini.ID,
		FromVersion:    ini.Version,
		ToState:        toState,
		StampClosed:    &now,
		EligibleVoters: eligibleVoters,
		ChangedAt:      now,
	}
	if err := uc.Proposals.ApplyInitiativeTransition(ctx, transition); err != nil {
		return entities.Initiative{}, err
	}
	applyInitiativeTransition(&ini, transition)

	recipients, err := uc.followerIDs(ctx, target, "")
	if err != nil {
		return entities.Initiative{}, err
	}
	if err := uc.appendEvent(ctx, "initiative.closed", target, now, recipients, map[string]any{
		"state":   string(ini.State),
		"yes":     own.Yes,
		"no":      own.No,
		"abstain": own.Abstain,
	}); err != nil {
		return entities.Initiative{}, err
	}

	logger.Info("initiative voting closed",
		"event", "lifecycle_initiative_closed",
		"module", "participation/lifecycle-engine",
		"layer", "application",
		"initiative_id", ini.ID,
		"state", string(ini.State),
	)
	return ini, nil
}

func (uc AdvanceUseCase) ClosePolicyVoting(ctx context.Context, id string, eligibleVoters *int) (entities.Policy, error) {
	logger := application.ResolveLogger(uc.Logger)
	pol, err := uc.Proposals.GetPolicy(ctx, strings.TrimSpace(id))
	if err != nil {
		return entities.Policy{}, err
	}
	if pol.State != entities.PolicyVoted {
		return entities.Policy{}, domainerrors.ErrInvalidStateForAction
	}
	target := entities.EntityRef{Kind: entities.KindPolicy, ID: pol.ID}

	own, err := uc.Votes.TallyVotes(ctx, target)
	if err != nil {
		return entities.Policy{}, err
	}
	siblings, err := uc.policySiblingTallies(ctx, pol)
	if err != nil {
		return entities.Policy{}, err
	}

	now := uc.now()
	accepted, err := entities.ResolveAcceptance(own, siblings)
	if err != nil {
		logger.Warn("policy vote tied among variants",
			"event", "lifecycle_policy_vote_tied",
			"module", "participation/lifecycle-engine",
			"layer", "application",
			"policy_id", pol.ID,
			"yes", own.Yes,
			"no", own.No,
		)
		if appendErr := uc.appendEvent(ctx, "policy.vote_tied", target, now, nil,
			map[string]any{"yes": own.Yes, "no": own.No},
		); appendErr != nil {
			return entities.Policy{}, appendErr
		}
		return entities.Policy{}, err
	}

	transition := ports.PolicyTransition{
		ID:             pol.ID,
		FromVersion:    pol.Version,
		StampClosed:    &now,
		EligibleVoters: eligibleVoters,
		ChangedAt:      now,
	}
	if accepted {
		transition.ToState = entities.PolicyClosed
	} else {
		transition.ToState = entities.PolicyRejected
		transition.StampRejected = &now
	}
	if err := uc.Proposals.ApplyPolicyTransition(ctx, transition); err != nil {
		return entities.Policy{}, err
	}
	applyPolicyTransition(&pol, transition)

	recipients, err := uc.followerIDs(ctx, target, "")
	if err != nil {
		return entities.Policy{}, err
	}
	if err := uc.appendEvent(ctx, "policy.closed", target, now, recipients, map[string]any{
		"state":   string(pol.State),
		"yes":     own.Yes,
		"no":      own.No,
		"abstain": own.Abstain,
	}); err != nil {
		return entities.Policy{}, err
	}

	logger.Info("policy voting closed",
		"event", "lifecycle_policy_closed",
		"module", "participation/lifecycle-engine",
		"layer", "application",
		"policy_id", pol.ID,
		"state", string(pol.State),
	)
	return pol, nil
}

// HideInitiative moves a proposal sideways into the hidden state from any
// non-terminal point, for moderation takedowns.
func (uc AdvanceUseCase) HideInitiative(ctx context.Context, id string) (entities.Initiative, error) {
	ini, err := uc.Proposals.GetInitiative(ctx, strings.TrimSpace(id))
	if err != nil {
		return entities.Initiative{}, err
	}
	if ini.State.Terminal() {
		return entities.Initiative{}, domainerrors.ErrInvalidStateForAction
	}
	now := uc.now()
	transition := ports.InitiativeTransition{
		ID:          ini.ID,
		FromVersion: ini.Version,
		ToState:     entities.InitiativeHidden,
		ChangedAt:   now,
	}
	if err := uc.Proposals.ApplyInitiativeTransition(ctx, transition); err != nil {
		return entities.Initiative{}, err
	}
	applyInitiativeTransition(&ini, transition)
	if err := uc.appendEvent(ctx, "initiative.hidden",
		entities.EntityRef{Kind: entities.KindInitiative, ID: ini.ID}, now, nil, nil,
	); err != nil {
		return entities.Initiative{}, err
	}
	return ini, nil
}

func (uc AdvanceUseCase) HidePolicy(ctx context.Context, id string) (entities.Policy, error) {
	pol, err := uc.Proposals.GetPolicy(ctx, strings.TrimSpace(id))
	if err != nil {
		return entities.Policy{}, err
	}
	if pol.State.Terminal() {
		return entities.Policy{}, domainerrors.ErrInvalidStateForAction
	}
	now := uc.now()
	transition := ports.PolicyTransition{
		ID:          pol.ID,
		FromVersion: pol.Version,
		ToState:     entities.PolicyHidden,
		ChangedAt:   now,
	}
	if err := uc.Proposals.ApplyPolicyTransition(ctx, transition); err != nil {
		return entities.Policy{}, err
	}
	applyPolicyTransition(&pol, transition)
	if err := uc.appendEvent(ctx, "policy.hidden",
		entities.EntityRef{Kind: entities.KindPolicy, ID: pol.ID}, now, nil, nil,
	); err != nil {
		return entities.Policy{}, err
	}
	return pol, nil
}

// ChallengePolicy records a formal challenge against a released policy,
// starting the relaunch moratorium clock.
func (uc AdvanceUseCase) ChallengePolicy(ctx context.Context, id string) (entities.Policy, error) {
	pol, err := uc.Proposals.GetPolicy(ctx, strings.TrimSpace(id))
	if err != nil {
		return entities.Policy{}, err
	}
	if pol.State != entities.PolicyReleased && pol.State != entities.PolicyClosed {
		return entities.Policy{}, domainerrors.ErrInvalidStateForAction
	}
	now := uc.now()
	transition := ports.PolicyTransition{
		ID:             pol.ID,
		FromVersion:    pol.Version,
		ToState:        entities.PolicyChallenged,
		StampChallenge: &now,
		ChangedAt:      now,
	}
	if err := uc.Proposals.ApplyPolicyTransition(ctx, transition); err != nil {
		return entities.Policy{}, err
	}
	applyPolicyTransition(&pol, transition)
	if err := uc.appendEvent(ctx, "policy.challenged",
		entities.EntityRef{Kind: entities.KindPolicy, ID: pol.ID}, now, nil, nil,
	); err != nil {
		return entities.Policy{}, err
	}
	return pol, nil
}

// followerIDs resolves notification recipients. While a proposal is still in
// preparation only acknowledged co-initiators follow it; afterwards every
// supporter does.
func (uc AdvanceUseCase) followerIDs(ctx context.Context, target entities.EntityRef, state entities.InitiativeState) ([]string, error) {
	filter := entities.SupporterFilter{}
	if state == entities.InitiativePreparation {
		filter.AcknowledgedOnly = true
	}
	supporters, err := uc.Supporters.ListSupporters(ctx, target, filter)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(supporters))
	for _, s := range supporters {
		ids = append(ids, s.UserID)
	}
	return ids, nil
}

func (uc AdvanceUseCase) initiativeSiblingTallies(ctx context.Context, ini entities.Initiative) ([]entities.Tally, error) {
	siblings, err := application.InitiativeSiblings(ctx, uc.Proposals, ini)
	if err != nil {
		return nil, err
	}
	tallies := make([]entities.Tally, 0, len(siblings))
	for _, sibling := range siblings {
		tally, err := uc.Votes.TallyVotes(ctx, entities.EntityRef{Kind: entities.KindInitiative, ID: sibling.ID})
		if err != nil {
			return nil, err
		}
		tallies = append(tallies, tally)
	}
	return tallies, nil
}

func (uc AdvanceUseCase) policySiblingTallies(ctx context.Context, pol entities.Policy) ([]entities.Tally, error) {
	siblings, err := application.PolicySiblings(ctx, uc.Proposals, pol)
	if err != nil {
		return nil, err
	}
	tallies := make([]entities.Tally, 0, len(siblings))
	for _, sibling := range siblings {
		tally, err := uc.Votes.TallyVotes(ctx, entities.EntityRef{Kind: entities.KindPolicy, ID: sibling.ID})
		if err != nil {
			return nil, err
		}
		tallies = append(tallies, tally)
	}
	return tallies, nil
}

func (uc AdvanceUseCase) appendEvent(
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

func (uc AdvanceUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func applyInitiativeTransition(ini *entities.Initiative, t ports.InitiativeTransition) {
	ini.State = t.ToState
	ini.Version++
	ini.ChangedAt = t.ChangedAt
	if t.StampPublic != nil {
		ini.WentPublicAt = t.StampPublic
	}
	if t.StampDiscuss != nil {
		ini.WentToDiscussionAt = t.StampDiscuss
	}
	if t.StampVoting != nil {
		ini.WentToVotingAt = t.StampVoting
	}
	if t.StampClosed != nil {
		ini.WasClosedAt = t.StampClosed
	}
	if t.EligibleVoters != nil {
		ini.EligibleVoters = t.EligibleVoters
	}
}

func applyPolicyTransition(pol *entities.Policy, t ports.PolicyTransition) {
	pol.State = t.ToState
	pol.Version++
	pol.ChangedAt = t.ChangedAt
	if t.StampStaged != nil {
		pol.StagedAt = t.StampStaged
	}
	if t.StampValidated != nil {
		pol.WasValidatedAt = t.StampValidated
	}
	if t.StampDiscuss != nil {
		pol.WentInDiscussionAt = t.StampDiscuss
	}
	if t.StampVote != nil {
		pol.WentInVoteAt = t.StampVote
	}
	if t.StampPublished != nil {
		pol.WasPublishedAt = t.StampPublished
	}
	if t.StampRejected != nil {
		pol.WasRejectedAt = t.StampRejected
	}
	if t.StampChallenge != nil {
		pol.WasChallengedAt = t.StampChallenge
	}
	if t.StampClosed != nil {
		pol.WasClosedAt = t.StampClosed
	}
	if t.EligibleVoters != nil {
		pol.EligibleVoters = t.EligibleVoters
	}
}
