package ports

import (
	"context"
	"time"

	"agora/contexts/participation/lifecycle-engine/domain/entities"
	"agora/internal/shared/events"
	sharedoutbox "agora/internal/shared/outbox"
)

// InitiativeTransition is a version-checked state change. FromVersion must
// match the stored row or the transition fails, which serializes concurrent
// advancements on the same entity.
type InitiativeTransition struct {
	ID             string
	FromVersion    int64
	ToState        entities.InitiativeState
	StampPublic    *time.Time
	StampDiscuss   *time.Time
	StampVoting    *time.Time
	StampClosed    *time.Time
	EligibleVoters *int
	ChangedAt      time.Time
}

type PolicyTransition struct {
	ID             string
	FromVersion    int64
	ToState        entities.PolicyState
	StampStaged    *time.Time
	StampValidated *time.Time
	StampDiscuss   *time.Time
	StampVote      *time.Time
	StampPublished *time.Time
	StampRejected  *time.Time
	StampChallenge *time.Time
	StampClosed    *time.Time
	EligibleVoters *int
	ChangedAt      time.Time
}

type ProposalRepository interface {
	CreateInitiative(ctx context.Context, ini entities.Initiative) error
	GetInitiative(ctx context.Context, id string) (entities.Initiative, error)
	UpdateInitiativeContent(ctx context.Context, ini entities.Initiative) error
	ListInitiativeVariants(ctx context.Context, parentID string) ([]entities.Initiative, error)
	ListInitiativesByState(ctx context.Context, state entities.InitiativeState) ([]entities.Initiative, error)
	ApplyInitiativeTransition(ctx context.Context, t InitiativeTransition) error

	CreatePolicy(ctx context.Context, pol entities.Policy) error
	GetPolicy(ctx context.Context, id string) (entities.Policy, error)
	UpdatePolicyContent(ctx context.Context, pol entities.Policy) error
	ListPolicyVariants(ctx context.Context, parentID string) ([]entities.Policy, error)
	ListPoliciesByState(ctx context.Context, state entities.PolicyState) ([]entities.Policy, error)
	ApplyPolicyTransition(ctx context.Context, t PolicyTransition) error
}

type SupporterRepository interface {
	// AddSupporter fails with ErrDuplicateSupport when the (user, entity)
	// pair already exists; the storage layer enforces the uniqueness.
	AddSupporter(ctx context.Context, s entities.Supporter) error
	SetAcknowledged(ctx context.Context, target entities.EntityRef, userID string, ack bool) error
	CountSupporters(ctx context.Context, target entities.EntityRef, filter entities.SupporterFilter) (int, error)
	ListSupporters(ctx context.Context, target entities.EntityRef, filter entities.SupporterFilter) ([]entities.Supporter, error)
}

type VoteRepository interface {
	// CastVote fails with ErrDuplicateVote when the user already voted.
	CastVote(ctx context.Context, v entities.Vote) error
	// UpdateVote is the explicit change path for an existing ballot.
	UpdateVote(ctx context.Context, v entities.Vote) error
	GetVoteByUser(ctx context.Context, target entities.EntityRef, userID string) (entities.Vote, bool, error)
	TallyVotes(ctx context.Context, target entities.EntityRef) (entities.Tally, error)
	CountVoters(ctx context.Context, target entities.EntityRef) (int, error)
}

type QuorumRepository interface {
	// CurrentQuorum returns the newest quorum value, 0 when none is set.
	CurrentQuorum(ctx context.Context) (int, error)
	SetQuorum(ctx context.Context, q entities.Quorum) error
}

// ModerationProjection reads the review-panel's tables as a projection; the
// lifecycle engine never imports that service's packages.
type ModerationProjection interface {
	ReviewStats(ctx context.Context, target entities.EntityRef) (entities.ModerationStats, error)
}

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope events.Envelope) error
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]sharedoutbox.Message, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, envelope events.Envelope) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
