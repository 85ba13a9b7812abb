package httpadapter

import (
	"context"
	"log/slog"

	application "agora/contexts/participation/debate-service/application"
	"agora/contexts/participation/debate-service/domain/entities"
	httptransport "agora/contexts/participation/debate-service/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) CreateArgumentHandler(ctx context.Context, target entities.EntityRef, req httptransport.CreateArgumentRequest) (httptransport.ArgumentResponse, error) {
	arg, err := h.Service.CreateArgument(ctx, application.CreateArgumentCommand{
		Target:   target,
		Kind:     entities.ArgumentKind(req.Kind),
		AuthorID: req.AuthorID,
		Title:    req.Title,
		Text:     req.Text,
	})
	if err != nil {
		return httptransport.ArgumentResponse{}, err
	}
	return argumentResponse(arg), nil
}

func (h Handler) UpdateArgumentHandler(ctx context.Context, id string, req httptransport.UpdateArgumentRequest) (httptransport.ArgumentResponse, error) {
	arg, err := h.Service.UpdateArgumentText(ctx, id, req.AuthorID, req.Title, req.Text)
	if err != nil {
		return httptransport.ArgumentResponse{}, err
	}
	return argumentResponse(arg), nil
}

func (h Handler) ListArgumentsHandler(ctx context.Context, target entities.EntityRef, kind string) (httptransport.ArgumentListResponse, error) {
	arguments, err := h.Service.ListArguments(ctx, target, entities.ArgumentKind(kind))
	if err != nil {
		return httptransport.ArgumentListResponse{}, err
	}
	items := make([]httptransport.ArgumentResponse, 0, len(arguments))
	for _, arg := range arguments {
		items = append(items, argumentResponse(arg))
	}
	return httptransport.ArgumentListResponse{Items: items}, nil
}

func (h Handler) CreateCommentHandler(ctx context.Context, argumentID string, req httptransport.CreateCommentRequest) (httptransport.CommentResponse, error) {
	comment, err := h.Service.CreateComment(ctx, application.CreateCommentCommand{
		ArgumentID: argumentID,
		AuthorID:   req.AuthorID,
		Text:       req.Text,
	})
	if err != nil {
		return httptransport.CommentResponse{}, err
	}
	return commentResponse(comment), nil
}

func (h Handler) ListCommentsHandler(ctx context.Context, argumentID string) (httptransport.CommentListResponse, error) {
	comments, err := h.Service.ListComments(ctx, argumentID)
	if err != nil {
		return httptransport.CommentListResponse{}, err
	}
	items := make([]httptransport.CommentResponse, 0, len(comments))
	for _, comment := range comments {
		items = append(items, commentResponse(comment))
	}
	return httptransport.CommentListResponse{Items: items}, nil
}

func (h Handler) LikeHandler(ctx context.Context, target entities.LikeRef, req httptransport.LikeRequest) (httptransport.LikeResponse, error) {
	like, err := h.Service.Like(ctx, target, req.UserID)
	if err != nil {
		return httptransport.LikeResponse{}, err
	}
	return httptransport.LikeResponse{
		TargetKind: string(like.Target.Kind),
		TargetID:   like.Target.ID,
		UserID:     like.UserID,
		CreatedAt:  like.CreatedAt,
	}, nil
}

func (h Handler) UnlikeHandler(ctx context.Context, target entities.LikeRef, req httptransport.LikeRequest) error {
	return h.Service.Unlike(ctx, target, req.UserID)
}

func argumentResponse(arg entities.Argument) httptransport.ArgumentResponse {
	display := arg.Kind.Display()
	return httptransport.ArgumentResponse{
		ID:            arg.ID,
		Kind:          string(arg.Kind),
		Label:         display.Label,
		Icon:          display.Icon,
		CSS:           display.CSS,
		AuthorID:      arg.AuthorID,
		Title:         arg.Title,
		Text:          arg.Text,
		LikesCount:    arg.LikesCount,
		CommentsCount: arg.CommentsCount,
		CreatedAt:     arg.CreatedAt,
		ChangedAt:     arg.ChangedAt,
	}
}

func commentResponse(comment entities.Comment) httptransport.CommentResponse {
	return httptransport.CommentResponse{
		ID:         comment.ID,
		ArgumentID: comment.ArgumentID,
		AuthorID:   comment.AuthorID,
		Text:       comment.Text,
		LikesCount: comment.LikesCount,
		CreatedAt:  comment.CreatedAt,
	}
}
