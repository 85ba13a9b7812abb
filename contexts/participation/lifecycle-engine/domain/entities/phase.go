package entities

import "time"

const (
	week = 7 * 24 * time.Hour
	// halfYear is the 26-week cool-down applied after closure and as the
	// extended support window for legacy initiatives.
	halfYear = 183 * 24 * time.Hour
)

// EndOfPhase computes when the current phase ends. It is the single source
// of truth for every "time remaining" display and for the deadline-gated
// readiness rules. Nil means no governing timestamp is set yet.
func (s InitiativeSnapshot) EndOfPhase(cfg LifecycleConfig) *time.Time {
	ini := s.Initiative

	// Closed proposals rest half a year before a relaunch may reuse the topic.
	if ini.WasClosedAt != nil {
		return after(*ini.WasClosedAt, halfYear)
	}
	if ini.WentPublicAt == nil {
		return nil
	}

	speedPhase := ini.WentPublicAt.Before(cfg.SpeedPhaseEnd)

	switch ini.State {
	case InitiativeSeekingSupport:
		// Variants stay synchronized with the parent's discussion window.
		if ini.VariantOf != "" && s.ParentDiscussion != nil {
			return after(*s.ParentDiscussion, 2*week)
		}
		if s.Supporters >= s.Quorum {
			if speedPhase {
				return after(*ini.WentPublicAt, week)
			}
			return after(*ini.WentPublicAt, 2*week)
		}
		if speedPhase {
			return after(*ini.WentPublicAt, halfYear)
		}
		return nil

	case InitiativeDiscussion:
		if ini.VariantOf != "" && s.ParentDiscussion != nil {
			return after(*s.ParentDiscussion, 2*week)
		}
		if ini.WentToDiscussionAt == nil {
			return nil
		}
		if speedPhase {
			return after(*ini.WentToDiscussionAt, 2*week)
		}
		return after(*ini.WentToDiscussionAt, 3*week)

	case InitiativeFinalEdits:
		if ini.WentToDiscussionAt == nil {
			return nil
		}
		if speedPhase {
			return after(*ini.WentToDiscussionAt, 3*week)
		}
		return after(*ini.WentToDiscussionAt, 5*week)

	case InitiativeVoting:
		if ini.WentToVotingAt == nil {
			return nil
		}
		if speedPhase {
			return after(*ini.WentToVotingAt, week)
		}
		return after(*ini.WentToVotingAt, 3*week)
	}
	return nil
}

// EndOfPhase is the policy phase clock. The support phase runs between a
// configured minimum and maximum number of days, with a cool-down after the
// quorum is reached; rejection and challenge start a relaunch moratorium.
func (s PolicySnapshot) EndOfPhase(cfg LifecycleConfig) *time.Time {
	pol := s.Policy

	if pol.WasClosedAt != nil {
		return after(*pol.WasClosedAt, halfYear)
	}

	switch pol.State {
	case PolicyRejected, PolicyChallenged:
		stamp := pol.WasRejectedAt
		if stamp == nil {
			stamp = pol.WasChallengedAt
		}
		if stamp == nil {
			return nil
		}
		return after(*stamp, days(cfg.PolicyMoratoriumDays))

	case PolicyValidated:
		if pol.WasValidatedAt == nil {
			return nil
		}
		lower := pol.WasValidatedAt.Add(days(cfg.PolicySupportMinimumDays))
		if s.Supporters >= s.Quorum {
			lower = lower.Add(days(cfg.PolicySupportCooldownDays))
			return &lower
		}
		if lower.After(s.Now) {
			return &lower
		}
		return after(*pol.WasValidatedAt, days(cfg.PolicySupportMaximumDays))

	case PolicyDiscussed:
		if pol.WentInDiscussionAt == nil {
			return nil
		}
		return after(*pol.WentInDiscussionAt, days(cfg.PolicyDiscussionDays))

	case PolicyVoted:
		if pol.WentInVoteAt == nil {
			return nil
		}
		return after(*pol.WentInVoteAt, days(cfg.PolicyVotingDays))
	}
	return nil
}

func after(stamp time.Time, d time.Duration) *time.Time {
	deadline := stamp.Add(d)
	return &deadline
}

func days(n int) time.Duration {
	return time.Duration(n) * 24 * time.Hour
}
