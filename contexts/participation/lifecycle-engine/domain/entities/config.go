package entities

import "time"

// LifecycleConfig carries the tunable thresholds and historical dates that
// gate phase transitions. Loaded once at startup; all readiness and deadline
// computations receive it explicitly.
type LifecycleConfig struct {
	// MinInitiators is the acknowledged co-initiator floor for editing and
	// moderation states.
	MinInitiators int

	// ModeratorPercentage and ModeratorVoteFloor feed the required-reviewer
	// computation (see RequiredReviewers).
	ModeratorPercentage int
	ModeratorVoteFloor  int

	// SpeedPhaseEnd is the historical cutoff: initiatives published before
	// it ran on the legacy short timeline.
	SpeedPhaseEnd time.Time

	// AbstentionStart gates the abstain ballot option for older votes.
	AbstentionStart time.Time

	PolicySupportMinimumDays  int
	PolicySupportMaximumDays  int
	PolicySupportCooldownDays int
	PolicyDiscussionDays      int
	PolicyVotingDays          int
	PolicyMoratoriumDays      int
}

// DefaultLifecycleConfig mirrors the platform's production settings.
func DefaultLifecycleConfig() LifecycleConfig {
	return LifecycleConfig{
		MinInitiators:             3,
		ModeratorPercentage:       10,
		ModeratorVoteFloor:        2,
		SpeedPhaseEnd:             time.Date(2018, time.January, 1, 0, 0, 0, 0, time.UTC),
		AbstentionStart:           time.Date(2018, time.October, 1, 0, 0, 0, 0, time.UTC),
		PolicySupportMinimumDays:  14,
		PolicySupportMaximumDays:  180,
		PolicySupportCooldownDays: 7,
		PolicyDiscussionDays:      21,
		PolicyVotingDays:          21,
		PolicyMoratoriumDays:      180,
	}
}

// RequiredReviewers computes how many non-stale moderation reviews a
// proposal needs before leaving a moderation state. The percentage of the
// active moderator roster wins when it is at least the configured floor;
// otherwise the floor applies, bumped by one when even so a panel cannot
// deadlock.
func RequiredReviewers(activeModerators int, cfg LifecycleConfig) int {
	byPercent := int(float64(activeModerators)*float64(cfg.ModeratorPercentage)/100 + 0.5)
	byCount := cfg.ModeratorVoteFloor
	if byPercent >= byCount {
		return byPercent
	}
	if byCount%2 == 0 {
		return byCount + 1
	}
	return byCount
}
