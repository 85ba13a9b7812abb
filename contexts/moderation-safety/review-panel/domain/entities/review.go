package entities

import "time"

// EntityKind mirrors the proposal kinds the panel reviews. The panel keeps
// its own copy of the enum so it never imports another service's domain.
type EntityKind string

const (
	KindInitiative EntityKind = "initiative"
	KindPolicy     EntityKind = "policy"
)

func (k EntityKind) Valid() bool {
	return k == KindInitiative || k == KindPolicy
}

type EntityRef struct {
	Kind EntityKind
	ID   string
}

type ReviewVote string

const (
	VoteApprove     ReviewVote = "approve"
	VoteReject      ReviewVote = "reject"
	VoteRequestInfo ReviewVote = "request_info"
)

func (v ReviewVote) Valid() bool {
	return v == VoteApprove || v == VoteReject || v == VoteRequestInfo
}

// Review is one moderator's verdict on one proposal. A moderator holds at
// most one current review per proposal; submitting again marks the earlier
// row stale instead of editing it, so the full history stays queryable.
type Review struct {
	ID          string
	Target      EntityRef
	ModeratorID string
	Vote        ReviewVote
	Comment     string
	Stale       bool
	CreatedAt   time.Time
}

// ReviewCounts aggregates the current (non-stale) reviews for one proposal.
type ReviewCounts struct {
	Total       int
	Approvals   int
	Rejections  int
	RequestInfo int
}

// RosterEntry records panel membership. Inactive members keep their history
// but no longer count toward the review quorum.
type RosterEntry struct {
	UserID    string
	Active    bool
	Since     time.Time
	ChangedAt time.Time
}
