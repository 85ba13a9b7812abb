package ports

import (
	"context"
	"time"

	"agora/contexts/participation/debate-service/domain/entities"
	"agora/internal/shared/events"
	sharedoutbox "agora/internal/shared/outbox"
)

type ArgumentRepository interface {
	CreateArgument(ctx context.Context, arg entities.Argument) error
	GetArgument(ctx context.Context, id string) (entities.Argument, error)
	UpdateArgumentText(ctx context.Context, arg entities.Argument) error
	// ListArguments filters by kind when kind is non-empty.
	ListArguments(ctx context.Context, target entities.EntityRef, kind entities.ArgumentKind) ([]entities.Argument, error)
}

type CommentRepository interface {
	// CreateComment also bumps the parent argument's cached comment count
	// in the same transaction.
	CreateComment(ctx context.Context, comment entities.Comment) error
	GetComment(ctx context.Context, id string) (entities.Comment, error)
	ListComments(ctx context.Context, argumentID string) ([]entities.Comment, error)
}

type LikeRepository interface {
	// AddLike fails with ErrDuplicateLike for a repeated (user, target) pair
	// and bumps the target's cached like count in the same transaction.
	AddLike(ctx context.Context, like entities.Like) error
	// RemoveLike deletes the user's like and decrements the cached count.
	RemoveLike(ctx context.Context, target entities.LikeRef, userID string) error
	HasLiked(ctx context.Context, target entities.LikeRef, userID string) (bool, error)
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
