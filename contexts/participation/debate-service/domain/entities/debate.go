package entities

import "time"

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

// ArgumentKind distinguishes the three debate lanes attached to a proposal.
type ArgumentKind string

const (
	ArgumentPro      ArgumentKind = "pro"
	ArgumentContra   ArgumentKind = "contra"
	ArgumentProposal ArgumentKind = "proposal"
)

func (k ArgumentKind) Valid() bool {
	return k == ArgumentPro || k == ArgumentContra || k == ArgumentProposal
}

// DisplayMeta is the fixed presentation hint per argument kind. Clients
// render from these instead of hardcoding the lanes.
type DisplayMeta struct {
	Label string
	Icon  string
	CSS   string
}

func (k ArgumentKind) Display() DisplayMeta {
	switch k {
	case ArgumentPro:
		return DisplayMeta{Label: "Pro", Icon: "thumbs-up", CSS: "success"}
	case ArgumentContra:
		return DisplayMeta{Label: "Contra", Icon: "thumbs-down", CSS: "danger"}
	case ArgumentProposal:
		return DisplayMeta{Label: "Proposal", Icon: "lightbulb", CSS: "info"}
	}
	return DisplayMeta{}
}

// Argument is one debate contribution. LikesCount and CommentsCount are
// cached aggregates maintained by the storage layer in the same transaction
// as the like or comment write.
type Argument struct {
	ID            string
	Target        EntityRef
	Kind          ArgumentKind
	AuthorID      string
	Title         string
	Text          string
	LikesCount    int
	CommentsCount int
	CreatedAt     time.Time
	ChangedAt     time.Time
}

type Comment struct {
	ID         string
	ArgumentID string
	AuthorID   string
	Text       string
	LikesCount int
	CreatedAt  time.Time
	ChangedAt  time.Time
}

// LikeTargetKind is the tagged-union discriminator for likeable things.
type LikeTargetKind string

const (
	LikeArgument LikeTargetKind = "argument"
	LikeComment  LikeTargetKind = "comment"
)

func (k LikeTargetKind) Valid() bool {
	return k == LikeArgument || k == LikeComment
}

type LikeRef struct {
	Kind LikeTargetKind
	ID   string
}

type Like struct {
	ID        string
	Target    LikeRef
	UserID    string
	CreatedAt time.Time
}
