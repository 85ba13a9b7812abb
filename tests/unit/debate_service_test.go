package unit

import (
	"context"
	"errors"
	"testing"

	debateservice "agora/contexts/participation/debate-service"
	"agora/contexts/participation/debate-service/domain/entities"
	domainerrors "agora/contexts/participation/debate-service/domain/errors"
	httptransport "agora/contexts/participation/debate-service/transport/http"
)

func TestDebateArgumentsCommentsAndLikes(t *testing.T) {
	ctx := context.Background()
	module := debateservice.NewInMemoryModule(nil, nil)
	target := entities.EntityRef{Kind: entities.KindInitiative, ID: "ini-1"}

	pro, err := module.Handler.CreateArgumentHandler(ctx, target, httptransport.CreateArgumentRequest{
		Kind:     "pro",
		AuthorID: "alice",
		Title:    "Ridership will grow",
		Text:     "Free transit doubled ridership elsewhere",
	})
	if err != nil {
		t.Fatalf("create pro argument: %v", err)
	}
	if pro.Kind != "pro" || pro.Label == "" {
		t.Fatalf("expected display metadata on argument, got %+v", pro)
	}
	if _, err := module.Handler.CreateArgumentHandler(ctx, target, httptransport.CreateArgumentRequest{
		Kind:     "contra",
		AuthorID: "bob",
		Title:    "Budget hole",
		Text:     "Fares cover a third of operating costs",
	}); err != nil {
		t.Fatalf("create contra argument: %v", err)
	}

	pros, err := module.Handler.ListArgumentsHandler(ctx, target, "pro")
	if err != nil {
		t.Fatalf("list pro arguments: %v", err)
	}
	if len(pros.Items) != 1 {
		t.Fatalf("expected 1 pro argument, got %d", len(pros.Items))
	}
	all, err := module.Handler.ListArgumentsHandler(ctx, target, "")
	if err != nil {
		t.Fatalf("list all arguments: %v", err)
	}
	if len(all.Items) != 2 {
		t.Fatalf("expected 2 arguments, got %d", len(all.Items))
	}

	comment, err := module.Handler.CreateCommentHandler(ctx, pro.ID, httptransport.CreateCommentRequest{
		AuthorID: "carol",
		Text:     "Name one such city",
	})
	if err != nil {
		t.Fatalf("create comment: %v", err)
	}
	comments, err := module.Handler.ListCommentsHandler(ctx, pro.ID)
	if err != nil {
		t.Fatalf("list comments: %v", err)
	}
	if len(comments.Items) != 1 || comments.Items[0].Text != "Name one such city" {
		t.Fatalf("unexpected comments: %+v", comments.Items)
	}

	argRef := entities.LikeRef{Kind: entities.LikeArgument, ID: pro.ID}
	if _, err := module.Handler.LikeHandler(ctx, argRef, httptransport.LikeRequest{UserID: "carol"}); err != nil {
		t.Fatalf("like argument: %v", err)
	}
	if _, err := module.Handler.LikeHandler(ctx, argRef, httptransport.LikeRequest{UserID: "carol"}); !errors.Is(err, domainerrors.ErrDuplicateLike) {
		t.Fatalf("expected ErrDuplicateLike, got %v", err)
	}
	commentRef := entities.LikeRef{Kind: entities.LikeComment, ID: comment.ID}
	if _, err := module.Handler.LikeHandler(ctx, commentRef, httptransport.LikeRequest{UserID: "alice"}); err != nil {
		t.Fatalf("like comment: %v", err)
	}

	pros, err = module.Handler.ListArgumentsHandler(ctx, target, "pro")
	if err != nil {
		t.Fatalf("relist pro arguments: %v", err)
	}
	if pros.Items[0].LikesCount != 1 || pros.Items[0].CommentsCount != 1 {
		t.Fatalf("expected like and comment counts on argument, got %+v", pros.Items[0])
	}

	if err := module.Handler.UnlikeHandler(ctx, argRef, httptransport.LikeRequest{UserID: "carol"}); err != nil {
		t.Fatalf("unlike argument: %v", err)
	}
	if err := module.Handler.UnlikeHandler(ctx, argRef, httptransport.LikeRequest{UserID: "carol"}); !errors.Is(err, domainerrors.ErrLikeNotFound) {
		t.Fatalf("expected ErrLikeNotFound, got %v", err)
	}
}

func TestDebateArgumentEdit(t *testing.T) {
	ctx := context.Background()
	module := debateservice.NewInMemoryModule(nil, nil)
	target := entities.EntityRef{Kind: entities.KindPolicy, ID: "pol-1"}

	arg, err := module.Handler.CreateArgumentHandler(ctx, target, httptransport.CreateArgumentRequest{
		Kind:     "proposal",
		AuthorID: "alice",
		Title:    "Phase in over two years",
		Text:     "Start with off-peak hours",
	})
	if err != nil {
		t.Fatalf("create argument: %v", err)
	}

	if _, err := module.Handler.UpdateArgumentHandler(ctx, arg.ID, httptransport.UpdateArgumentRequest{
		AuthorID: "mallory",
		Title:    "hijacked",
		Text:     "hijacked",
	}); !errors.Is(err, domainerrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for non-author edit, got %v", err)
	}

	updated, err := module.Handler.UpdateArgumentHandler(ctx, arg.ID, httptransport.UpdateArgumentRequest{
		AuthorID: "alice",
		Title:    "Phase in over three years",
		Text:     "Start with off-peak hours and weekends",
	})
	if err != nil {
		t.Fatalf("author edit: %v", err)
	}
	if updated.Title != "Phase in over three years" {
		t.Fatalf("unexpected title after edit: %s", updated.Title)
	}
}
