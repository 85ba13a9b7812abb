package entities

import (
	"time"

	domainerrors "agora/contexts/participation/lifecycle-engine/domain/errors"
)

type VoteValue string

const (
	VoteYes     VoteValue = "yes"
	VoteNo      VoteValue = "no"
	VoteAbstain VoteValue = "abstain"
)

func (v VoteValue) Valid() bool {
	return v == VoteYes || v == VoteNo || v == VoteAbstain
}

// Vote is the (user, entity) ballot row. One vote per user per entity;
// mutable only through the explicit update path while the phase is open.
type Vote struct {
	ID        string
	Target    EntityRef
	UserID    string
	Value     VoteValue
	Reason    string
	CreatedAt time.Time
	ChangedAt time.Time
}

// NaySurveyOptions are the fixed reasons offered alongside a no-vote.
func NaySurveyOptions() []string {
	return []string{
		"Does not conform to my convictions.",
		"Is not important enough.",
		"Is not specific enough.",
		"Is not mature enough in terms of contents.",
		"Contains a detail I do not agree with.",
		"Does not fit the platform.",
		"Is difficult to stand in for.",
		"Is no longer relevant.",
	}
}

// Tally is the vote count by value for one entity.
type Tally struct {
	Yes     int
	No      int
	Abstain int
}

// Winning reports the necessary (not sufficient) acceptance condition.
func (t Tally) Winning() bool {
	return t.Yes > t.No
}

// ResolveAcceptance settles a ballot against its competing variants. The
// entity must first beat its own no-votes, then carry the highest yes count
// among the winning variants. An exact tie on that maximum cannot be decided
// here and is returned as ErrTieUnresolved for the moderation team.
func ResolveAcceptance(own Tally, siblings []Tally) (bool, error) {
	if !own.Winning() {
		return false, nil
	}
	bestYes := own.Yes
	bestCount := 1
	for _, sibling := range siblings {
		if !sibling.Winning() {
			continue
		}
		switch {
		case sibling.Yes > bestYes:
			bestYes = sibling.Yes
			bestCount = 1
		case sibling.Yes == bestYes:
			bestCount++
		}
	}
	if own.Yes < bestYes {
		return false, nil
	}
	if bestCount > 1 {
		return false, domainerrors.ErrTieUnresolved
	}
	return true, nil
}

// Quorum is a timestamped supporter threshold; the newest row is
// authoritative.
type Quorum struct {
	ID        string
	Value     int
	CreatedAt time.Time
}
