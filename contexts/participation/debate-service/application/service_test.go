package application

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"agora/contexts/participation/debate-service/adapters/memory"
	"agora/contexts/participation/debate-service/domain/entities"
	domainerrors "agora/contexts/participation/debate-service/domain/errors"
)

func newDebateFixture(t *testing.T) (*memory.Store, Service) {
	t.Helper()
	store := memory.NewStore()
	svc := Service{
		Arguments: store,
		Comments:  store,
		Likes:     store,
		Outbox:    store,
		Clock:     store,
		IDGen:     store,
		Logger:    slog.Default(),
	}
	return store, svc
}

func seedArgument(t *testing.T, svc Service, kind entities.ArgumentKind, title string) entities.Argument {
	t.Helper()
	arg, err := svc.CreateArgument(context.Background(), CreateArgumentCommand{
		Target:   entities.EntityRef{Kind: entities.KindInitiative, ID: "ini-1"},
		Kind:     kind,
		AuthorID: "user-1",
		Title:    title,
		Text:     "because reasons",
	})
	if err != nil {
		t.Fatalf("seed argument %s: %v", title, err)
	}
	return arg
}

func TestListArgumentsFiltersByKind(t *testing.T) {
	ctx := context.Background()
	_, svc := newDebateFixture(t)
	seedArgument(t, svc, entities.ArgumentPro, "cheaper transit")
	seedArgument(t, svc, entities.ArgumentPro, "less congestion")
	seedArgument(t, svc, entities.ArgumentContra, "too expensive")

	target := entities.EntityRef{Kind: entities.KindInitiative, ID: "ini-1"}
	pros, err := svc.ListArguments(ctx, target, entities.ArgumentPro)
	if err != nil {
		t.Fatalf("list pro arguments: %v", err)
	}
	if len(pros) != 2 {
		t.Fatalf("expected 2 pro arguments, got %d", len(pros))
	}
	all, err := svc.ListArguments(ctx, target, "")
	if err != nil {
		t.Fatalf("list all arguments: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 arguments, got %d", len(all))
	}
	if _, err := svc.ListArguments(ctx, target, entities.ArgumentKind("rant")); !errors.Is(err, domainerrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown kind, got %v", err)
	}
}

func TestUpdateArgumentTextOnlyByAuthor(t *testing.T) {
	ctx := context.Background()
	_, svc := newDebateFixture(t)
	arg := seedArgument(t, svc, entities.ArgumentPro, "cheaper transit")

	if _, err := svc.UpdateArgumentText(ctx, arg.ID, "someone-else", "new title", "new text"); !errors.Is(err, domainerrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for non-author edit, got %v", err)
	}

	updated, err := svc.UpdateArgumentText(ctx, arg.ID, "user-1", "cheaper transit for all", "fares drop by half")
	if err != nil {
		t.Fatalf("author edit: %v", err)
	}
	if updated.Title != "cheaper transit for all" || updated.Text != "fares drop by half" {
		t.Fatalf("unexpected argument after edit: %+v", updated)
	}

	stored, err := svc.GetArgument(ctx, arg.ID)
	if err != nil {
		t.Fatalf("reload argument: %v", err)
	}
	if stored.Text != "fares drop by half" {
		t.Fatalf("edit not persisted: %+v", stored)
	}
}

func TestCreateCommentBumpsArgumentCount(t *testing.T) {
	ctx := context.Background()
	_, svc := newDebateFixture(t)
	arg := seedArgument(t, svc, entities.ArgumentContra, "too expensive")

	if _, err := svc.CreateComment(ctx, CreateCommentCommand{
		ArgumentID: "missing",
		AuthorID:   "user-2",
		Text:       "where is the budget",
	}); !errors.Is(err, domainerrors.ErrArgumentNotFound) {
		t.Fatalf("expected ErrArgumentNotFound, got %v", err)
	}

	if _, err := svc.CreateComment(ctx, CreateCommentCommand{
		ArgumentID: arg.ID,
		AuthorID:   "user-2",
		Text:       "where is the budget",
	}); err != nil {
		t.Fatalf("create comment: %v", err)
	}

	stored, err := svc.GetArgument(ctx, arg.ID)
	if err != nil {
		t.Fatalf("reload argument: %v", err)
	}
	if stored.CommentsCount != 1 {
		t.Fatalf("expected comments count 1, got %d", stored.CommentsCount)
	}
	comments, err := svc.ListComments(ctx, arg.ID)
	if err != nil {
		t.Fatalf("list comments: %v", err)
	}
	if len(comments) != 1 || comments[0].Text != "where is the budget" {
		t.Fatalf("unexpected comments: %+v", comments)
	}
}

func TestLikeOncePerUser(t *testing.T) {
	ctx := context.Background()
	_, svc := newDebateFixture(t)
	arg := seedArgument(t, svc, entities.ArgumentPro, "cheaper transit")
	ref := entities.LikeRef{Kind: entities.LikeArgument, ID: arg.ID}

	if _, err := svc.Like(ctx, ref, "user-2"); err != nil {
		t.Fatalf("first like: %v", err)
	}
	if _, err := svc.Like(ctx, ref, "user-2"); !errors.Is(err, domainerrors.ErrDuplicateLike) {
		t.Fatalf("expected ErrDuplicateLike, got %v", err)
	}
	liked, err := svc.HasLiked(ctx, ref, "user-2")
	if err != nil || !liked {
		t.Fatalf("expected user-2 to have liked, got %v %v", liked, err)
	}

	stored, err := svc.GetArgument(ctx, arg.ID)
	if err != nil {
		t.Fatalf("reload argument: %v", err)
	}
	if stored.LikesCount != 1 {
		t.Fatalf("expected likes count 1, got %d", stored.LikesCount)
	}

	if err := svc.Unlike(ctx, ref, "user-2"); err != nil {
		t.Fatalf("unlike: %v", err)
	}
	if err := svc.Unlike(ctx, ref, "user-2"); !errors.Is(err, domainerrors.ErrLikeNotFound) {
		t.Fatalf("expected ErrLikeNotFound after withdrawal, got %v", err)
	}
	stored, err = svc.GetArgument(ctx, arg.ID)
	if err != nil {
		t.Fatalf("reload argument: %v", err)
	}
	if stored.LikesCount != 0 {
		t.Fatalf("expected likes count back to 0, got %d", stored.LikesCount)
	}
}
