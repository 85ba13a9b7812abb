package entities

import "time"

// ModerationStats is the non-stale review picture for one entity, plus the
// size of the active moderator roster. Counts exclude superseded reviews.
type ModerationStats struct {
	Total            int // all current reviews
	RequestInfo      int // reviews still asking for more information
	Approvals        int
	Rejections       int
	ActiveModerators int
}

// Settled is the number of current reviews that no longer request further
// information.
func (m ModerationStats) Settled() int {
	return m.Total - m.RequestInfo
}

// ConsensusReached reports whether approvals strictly outnumber rejections.
func (m ModerationStats) ConsensusReached() bool {
	return m.Approvals > m.Rejections
}

// InitiativeSnapshot bundles an initiative with everything its readiness and
// deadline computations depend on. It is loaded once per request and never
// cached across requests.
type InitiativeSnapshot struct {
	Initiative       Initiative
	Supporters       int
	AckedInitiators  int
	Quorum           int
	Moderation       ModerationStats
	ParentDiscussion *time.Time // parent's discussion-entry stamp when a variant
	Now              time.Time
}

// ReadyForNextStage is the pure per-state gate for advancing an initiative.
func (s InitiativeSnapshot) ReadyForNextStage(cfg LifecycleConfig) bool {
	switch s.Initiative.State {
	case InitiativePreparation, InitiativeFinalEdits:
		return s.AckedInitiators >= cfg.MinInitiators && s.Initiative.ContentComplete()
	case InitiativeIncoming:
		return s.AckedInitiators >= cfg.MinInitiators
	case InitiativeModeration:
		return s.AckedInitiators >= cfg.MinInitiators &&
			s.Moderation.Settled() >= RequiredReviewers(s.Moderation.ActiveModerators, cfg)
	case InitiativeSeekingSupport:
		return s.Supporters >= s.Quorum
	case InitiativeDiscussion:
		deadline := s.EndOfPhase(cfg)
		return deadline != nil && s.Now.After(*deadline)
	case InitiativeVoting:
		return true
	}
	return false
}

// ReadyToProceed applies the moderation consensus rule: a proposal in a
// moderation state moves on only when approving reviews strictly outnumber
// rejecting ones.
func (s InitiativeSnapshot) ReadyToProceed() bool {
	if s.Initiative.State != InitiativeModeration {
		return false
	}
	return s.Moderation.ConsensusReached()
}

// PolicySnapshot is the policy counterpart of InitiativeSnapshot.
type PolicySnapshot struct {
	Policy           Policy
	Schema           FieldSchema
	Supporters       int
	AckedInitiators  int
	Quorum           int
	Moderation       ModerationStats
	ParentDiscussion *time.Time
	Now              time.Time
}

func (s PolicySnapshot) ReadyForNextStage(cfg LifecycleConfig) bool {
	switch s.Policy.State {
	case PolicyStaged, PolicyReviewed:
		return s.AckedInitiators >= cfg.MinInitiators && s.Policy.ContentComplete(s.Schema)
	case PolicySubmitted, PolicyInvalidated:
		return s.AckedInitiators >= cfg.MinInitiators &&
			s.Policy.ContentComplete(s.Schema) &&
			s.Moderation.Settled() >= RequiredReviewers(s.Moderation.ActiveModerators, cfg)
	case PolicyValidated:
		deadline := s.EndOfPhase(cfg)
		return s.Supporters >= s.Quorum && deadline != nil && s.Now.After(*deadline)
	case PolicyDiscussed:
		deadline := s.EndOfPhase(cfg)
		return deadline != nil && s.Now.After(*deadline)
	case PolicyDraft, PolicyReleased, PolicyVoted:
		return true
	}
	return false
}

func (s PolicySnapshot) ReadyToProceed() bool {
	if !s.Policy.State.ModerationState() {
		return false
	}
	return s.Moderation.ConsensusReached()
}
