package application

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"agora/contexts/participation/debate-service/domain/entities"
	domainerrors "agora/contexts/participation/debate-service/domain/errors"
	"agora/contexts/participation/debate-service/ports"
	"agora/internal/shared/events"
)

const sourceService = "participation/debate-service"

type CreateArgumentCommand struct {
	Target   entities.EntityRef
	Kind     entities.ArgumentKind
	AuthorID string
	Title    string
	Text     string
}

type CreateCommentCommand struct {
	ArgumentID string
	AuthorID   string
	Text       string
}

type Service struct {
	Arguments ports.ArgumentRepository
	Comments  ports.CommentRepository
	Likes     ports.LikeRepository
	Outbox    ports.OutboxWriter
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

func (s Service) CreateArgument(ctx context.Context, cmd CreateArgumentCommand) (entities.Argument, error) {
	logger := resolveLogger(s.Logger)
	cmd.AuthorID = strings.TrimSpace(cmd.AuthorID)
	cmd.Title = strings.TrimSpace(cmd.Title)
	cmd.Text = strings.TrimSpace(cmd.Text)
	if cmd.AuthorID == "" || cmd.Title == "" || cmd.Text == "" {
		return entities.Argument{}, domainerrors.ErrInvalidInput
	}
	if !cmd.Target.Kind.Valid() || strings.TrimSpace(cmd.Target.ID) == "" || !cmd.Kind.Valid() {
		return entities.Argument{}, domainerrors.ErrInvalidInput
	}

	id, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.Argument{}, err
	}
	now := s.now()
	arg := entities.Argument{
		ID:        id,
		Target:    cmd.Target,
		Kind:      cmd.Kind,
		AuthorID:  cmd.AuthorID,
		Title:     cmd.Title,
		Text:      cmd.Text,
		CreatedAt: now,
		ChangedAt: now,
	}
	if err := s.Arguments.CreateArgument(ctx, arg); err != nil {
		return entities.Argument{}, err
	}

	if err := s.appendEvent(ctx, "argument.created", cmd.Target, now, map[string]any{
		"argument_id": arg.ID,
		"kind":        string(arg.Kind),
	}); err != nil {
		return entities.Argument{}, err
	}

	logger.Info("argument created",
		"event", "debate_argument_created",
		"module", "participation/debate-service",
		"layer", "application",
		"entity_kind", string(cmd.Target.Kind),
		"entity_id", cmd.Target.ID,
		"kind", string(cmd.Kind),
	)
	return arg, nil
}

func (s Service) GetArgument(ctx context.Context, id string) (entities.Argument, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Argument{}, domainerrors.ErrInvalidInput
	}
	return s.Arguments.GetArgument(ctx, id)
}

func (s Service) ListArguments(ctx context.Context, target entities.EntityRef, kind entities.ArgumentKind) ([]entities.Argument, error) {
	if !target.Kind.Valid() || strings.TrimSpace(target.ID) == "" {
		return nil, domainerrors.ErrInvalidInput
	}
	if kind != "" && !kind.Valid() {
		return nil, domainerrors.ErrInvalidInput
	}
	return s.Arguments.ListArguments(ctx, target, kind)
}

// UpdateArgumentText lets the author revise wording; the argument keeps its
// likes and comments.
func (s Service) UpdateArgumentText(ctx context.Context, id string, authorID string, title string, text string) (entities.Argument, error) {
	id = strings.TrimSpace(id)
	authorID = strings.TrimSpace(authorID)
	title = strings.TrimSpace(title)
	text = strings.TrimSpace(text)
	if id == "" || authorID == "" || title == "" || text == "" {
		return entities.Argument{}, domainerrors.ErrInvalidInput
	}
	arg, err := s.Arguments.GetArgument(ctx, id)
	if err != nil {
		return entities.Argument{}, err
	}
	if arg.AuthorID != authorID {
		return entities.Argument{}, domainerrors.ErrInvalidInput
	}
	arg.Title = title
	arg.Text = text
	arg.ChangedAt = s.now()
	if err := s.Arguments.UpdateArgumentText(ctx, arg); err != nil {
		return entities.Argument{}, err
	}
	return arg, nil
}

func (s Service) CreateComment(ctx context.Context, cmd CreateCommentCommand) (entities.Comment, error) {
	cmd.ArgumentID = strings.TrimSpace(cmd.ArgumentID)
	cmd.AuthorID = strings.TrimSpace(cmd.AuthorID)
	cmd.Text = strings.TrimSpace(cmd.Text)
	if cmd.ArgumentID == "" || cmd.AuthorID == "" || cmd.Text == "" {
		return entities.Comment{}, domainerrors.ErrInvalidInput
	}

	arg, err := s.Arguments.GetArgument(ctx, cmd.ArgumentID)
	if err != nil {
		return entities.Comment{}, err
	}

	id, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.Comment{}, err
	}
	now := s.now()
	comment := entities.Comment{
		ID:         id,
		ArgumentID: arg.ID,
		AuthorID:   cmd.AuthorID,
		Text:       cmd.Text,
		CreatedAt:  now,
		ChangedAt:  now,
	}
	if err := s.Comments.CreateComment(ctx, comment); err != nil {
		return entities.Comment{}, err
	}

	if err := s.appendEvent(ctx, "comment.created", arg.Target, now, map[string]any{
		"argument_id": arg.ID,
		"comment_id":  comment.ID,
	}); err != nil {
		return entities.Comment{}, err
	}
	return comment, nil
}

func (s Service) ListComments(ctx context.Context, argumentID string) ([]entities.Comment, error) {
	argumentID = strings.TrimSpace(argumentID)
	if argumentID == "" {
		return nil, domainerrors.ErrInvalidInput
	}
	return s.Comments.ListComments(ctx, argumentID)
}

// Like records one user's endorsement of an argument or comment. Liking the
// same thing twice is a conflict; use Unlike to withdraw.
func (s Service) Like(ctx context.Context, target entities.LikeRef, userID string) (entities.Like, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" || !target.Kind.Valid() || strings.TrimSpace(target.ID) == "" {
		return entities.Like{}, domainerrors.ErrInvalidInput
	}
	id, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.Like{}, err
	}
	like := entities.Like{
		ID:        id,
		Target:    target,
		UserID:    userID,
		CreatedAt: s.now(),
	}
	if err := s.Likes.AddLike(ctx, like); err != nil {
		return entities.Like{}, err
	}
	return like, nil
}

func (s Service) Unlike(ctx context.Context, target entities.LikeRef, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" || !target.Kind.Valid() || strings.TrimSpace(target.ID) == "" {
		return domainerrors.ErrInvalidInput
	}
	return s.Likes.RemoveLike(ctx, target, userID)
}

func (s Service) HasLiked(ctx context.Context, target entities.LikeRef, userID string) (bool, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" || !target.Kind.Valid() || strings.TrimSpace(target.ID) == "" {
		return false, domainerrors.ErrInvalidInput
	}
	return s.Likes.HasLiked(ctx, target, userID)
}

func (s Service) appendEvent(
	ctx context.Context,
	eventType string,
	target entities.EntityRef,
	occurredAt time.Time,
	payload map[string]any,
) error {
	if s.Outbox == nil {
		return nil
	}
	eventID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	return s.Outbox.AppendOutbox(ctx, events.Envelope{
		EventID:        eventID,
		EventType:      eventType,
		SourceService:  sourceService,
		OccurredAtUTC:  occurredAt.UTC(),
		EntityKind:     string(target.Kind),
		EntityID:       strings.TrimSpace(target.ID),
		PayloadVersion: 1,
		Payload:        payload,
	})
}

func (s Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func resolveLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}
