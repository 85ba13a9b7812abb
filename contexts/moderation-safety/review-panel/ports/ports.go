package ports

import (
	"context"
	"time"

	"agora/contexts/moderation-safety/review-panel/domain/entities"
	"agora/internal/shared/events"
	sharedoutbox "agora/internal/shared/outbox"
)

type ReviewRepository interface {
	InsertReview(ctx context.Context, review entities.Review) error
	// MarkStale retires the moderator's current review for the target, if
	// one exists, so a fresh submission supersedes rather than edits.
	MarkStale(ctx context.Context, target entities.EntityRef, moderatorID string) error
	ListCurrentReviews(ctx context.Context, target entities.EntityRef) ([]entities.Review, error)
	CountReviews(ctx context.Context, target entities.EntityRef) (entities.ReviewCounts, error)
}

type RosterRepository interface {
	UpsertRosterEntry(ctx context.Context, entry entities.RosterEntry) error
	IsActiveModerator(ctx context.Context, userID string) (bool, error)
	ListActiveModerators(ctx context.Context) ([]entities.RosterEntry, error)
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
