package entities

import (
	"strings"
	"time"
)

type PolicyState string

const (
	PolicyDraft       PolicyState = "draft"
	PolicyStaged      PolicyState = "staged"
	PolicySubmitted   PolicyState = "submitted"
	PolicyValidated   PolicyState = "validated"
	PolicyDiscussed   PolicyState = "discussed"
	PolicyReviewed    PolicyState = "reviewed"
	PolicyReleased    PolicyState = "released"
	PolicyVoted       PolicyState = "voted"
	PolicyClosed      PolicyState = "closed"
	PolicyRejected    PolicyState = "rejected"
	PolicyInvalidated PolicyState = "invalidated"
	PolicyChallenged  PolicyState = "challenged"
	PolicyHidden      PolicyState = "hidden"
	PolicyDeleted     PolicyState = "deleted"
)

var policyChain = []PolicyState{
	PolicyDraft,
	PolicyStaged,
	PolicySubmitted,
	PolicyValidated,
	PolicyDiscussed,
	PolicyReviewed,
	PolicyReleased,
	PolicyVoted,
}

func (s PolicyState) Next() (PolicyState, bool) {
	for i, state := range policyChain {
		if state == s && i+1 < len(policyChain) {
			return policyChain[i+1], true
		}
	}
	return "", false
}

func (s PolicyState) Terminal() bool {
	switch s {
	case PolicyClosed, PolicyRejected, PolicyChallenged, PolicyHidden, PolicyDeleted:
		return true
	}
	return false
}

// ModerationState reports whether s is gated on moderation reviews.
func (s PolicyState) ModerationState() bool {
	return s == PolicySubmitted || s == PolicyInvalidated
}

// Policy is the configurable proposal type. Its content fields are not
// hardcoded: Fields holds values keyed by the names of a FieldSchema
// resolved once at startup.
type Policy struct {
	ID     string
	Title  string
	Fields map[string]string

	State     PolicyState
	VariantOf string
	// EligibleVoters is snapshotted when the vote closes; nil while open.
	EligibleVoters *int
	Version        int64

	CreatedAt time.Time
	StagedAt  *time.Time
	ChangedAt time.Time

	WasValidatedAt     *time.Time
	WentInDiscussionAt *time.Time
	WentInVoteAt       *time.Time
	WasPublishedAt     *time.Time
	WasRejectedAt      *time.Time
	WasChallengedAt    *time.Time
	WasClosedAt        *time.Time
}

// ContentComplete is the logical AND over the title and every required
// schema field: one empty field fails the whole check.
func (p Policy) ContentComplete(schema FieldSchema) bool {
	if strings.TrimSpace(p.Title) == "" {
		return false
	}
	return schema.RequiredComplete(p.Fields)
}

func (p Policy) Slug() string {
	return Slugify(p.Title)
}
