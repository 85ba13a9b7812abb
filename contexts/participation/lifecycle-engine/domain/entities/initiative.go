package entities

import (
	"strings"
	"time"
	"unicode"
)

type InitiativeState string

const (
	InitiativePreparation    InitiativeState = "preparation"
	InitiativeIncoming       InitiativeState = "new_arrivals"
	InitiativeSeekingSupport InitiativeState = "seeking_support"
	InitiativeDiscussion     InitiativeState = "discussion"
	InitiativeFinalEdits     InitiativeState = "final_edits"
	InitiativeModeration     InitiativeState = "moderation_review"
	InitiativeVoting         InitiativeState = "voting"
	InitiativeAccepted       InitiativeState = "accepted"
	InitiativeRejected       InitiativeState = "rejected"
	InitiativeHidden         InitiativeState = "hidden"
)

// initiativeChain is the forward order of the initiative lifecycle. Closing
// the vote (accepted/rejected) and hiding are separate explicit actions, so
// the chain ends at voting.
var initiativeChain = []InitiativeState{
	InitiativePreparation,
	InitiativeIncoming,
	InitiativeSeekingSupport,
	InitiativeDiscussion,
	InitiativeFinalEdits,
	InitiativeModeration,
	InitiativeVoting,
}

// Next returns the forward successor of s, or false when s has none.
func (s InitiativeState) Next() (InitiativeState, bool) {
	for i, state := range initiativeChain {
		if state == s && i+1 < len(initiativeChain) {
			return initiativeChain[i+1], true
		}
	}
	return "", false
}

func (s InitiativeState) Terminal() bool {
	return s == InitiativeAccepted || s == InitiativeRejected || s == InitiativeHidden
}

// Initiative is a citizen-submitted proposal moving through a phased
// lifecycle. State only moves forward through the chain or sideways to
// hidden/rejected; once WasClosedAt is set the entity is terminal.
type Initiative struct {
	ID       string
	Title    string
	Subtitle string

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

	State     InitiativeState
	VariantOf string
	// EligibleVoters is snapshotted when the vote closes; nil while open.
	EligibleVoters *int
	Version        int64

	CreatedAt time.Time
	ChangedAt time.Time

	WentPublicAt       *time.Time
	WentToDiscussionAt *time.Time
	WentToVotingAt     *time.Time
	WasClosedAt        *time.Time
}

// ContentComplete reports whether every required text field is filled. This
// is a logical AND over field presence: any single empty field fails the
// whole check.
func (i Initiative) ContentComplete() bool {
	fields := []string{
		i.Title,
		i.Subtitle,
		i.Summary,
		i.Problem,
		i.Demand,
		i.CostEstimate,
		i.FundingProposal,
		i.Methodology,
		i.InitialArgument,
		i.Context,
		i.Scope,
		i.Topic,
	}
	for _, field := range fields {
		if strings.TrimSpace(field) == "" {
			return false
		}
	}
	return true
}

// AllowsAbstention reports whether the abstain option is on the ballot.
// Votes opened before the abstention feature launched keep their original
// two-option ballot.
func (i Initiative) AllowsAbstention(abstentionStart time.Time) bool {
	if i.WentToVotingAt == nil {
		return true
	}
	return i.WentToVotingAt.After(abstentionStart)
}

func (i Initiative) Slug() string {
	return Slugify(i.Title)
}

// Slugify lowercases, keeps letters and digits, and joins runs of anything
// else with single hyphens.
func Slugify(title string) string {
	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pending && b.Len() > 0 {
				b.WriteByte('-')
			}
			pending = false
			b.WriteRune(r)
			continue
		}
		pending = true
	}
	return b.String()
}
