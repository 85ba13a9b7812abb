package entities

import "time"

// Supporter is the (user, entity) endorsement join row. Initiators are the
// proposal authors; Ack marks a co-initiator who confirmed the role; Public
// controls whether the endorsement is listed by name; First marks the
// earliest backers shown on the proposal card.
type Supporter struct {
	ID        string
	Target    EntityRef
	UserID    string
	Initiator bool
	Ack       bool
	Public    bool
	First     bool
	CreatedAt time.Time
}

// SupporterFilter selects supporter subsets for counting and listing.
type SupporterFilter struct {
	InitiatorsOnly   bool
	AcknowledgedOnly bool
	PublicOnly       bool
}

func (f SupporterFilter) Matches(s Supporter) bool {
	if f.InitiatorsOnly && !s.Initiator {
		return false
	}
	if f.AcknowledgedOnly && !s.Ack {
		return false
	}
	if f.PublicOnly && (!s.Public || s.First || s.Initiator) {
		return false
	}
	return true
}
