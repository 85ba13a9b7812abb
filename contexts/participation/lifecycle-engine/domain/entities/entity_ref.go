package entities

// EntityKind tags which proposal table a join row or event refers to.
type EntityKind string

const (
	KindInitiative EntityKind = "initiative"
	KindPolicy     EntityKind = "policy"
)

func (k EntityKind) Valid() bool {
	return k == KindInitiative || k == KindPolicy
}

// EntityRef is the tagged reference used by supporters, votes, reviews and
// deliberation artifacts to point at either an initiative or a policy.
type EntityRef struct {
	Kind EntityKind
	ID   string
}
