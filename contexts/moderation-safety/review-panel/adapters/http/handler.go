package httpadapter

import (
	"context"
	"log/slog"

	application "agora/contexts/moderation-safety/review-panel/application"
	"agora/contexts/moderation-safety/review-panel/domain/entities"
	httptransport "agora/contexts/moderation-safety/review-panel/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) SubmitReviewHandler(ctx context.Context, target entities.EntityRef, req httptransport.SubmitReviewRequest) (httptransport.ReviewResponse, error) {
	review, err := h.Service.SubmitReview(ctx, application.SubmitReviewCommand{
		Target:      target,
		ModeratorID: req.ModeratorID,
		Vote:        entities.ReviewVote(req.Vote),
		Comment:     req.Comment,
	})
	if err != nil {
		return httptransport.ReviewResponse{}, err
	}
	return reviewResponse(review), nil
}

func (h Handler) ListReviewsHandler(ctx context.Context, target entities.EntityRef) (httptransport.ReviewListResponse, error) {
	reviews, err := h.Service.ListCurrentReviews(ctx, target)
	if err != nil {
		return httptransport.ReviewListResponse{}, err
	}
	items := make([]httptransport.ReviewResponse, 0, len(reviews))
	for _, review := range reviews {
		items = append(items, reviewResponse(review))
	}
	return httptransport.ReviewListResponse{Items: items}, nil
}

func (h Handler) ReviewCountsHandler(ctx context.Context, target entities.EntityRef) (httptransport.ReviewCountsResponse, error) {
	counts, err := h.Service.ReviewCounts(ctx, target)
	if err != nil {
		return httptransport.ReviewCountsResponse{}, err
	}
	return httptransport.ReviewCountsResponse{
		Total:       counts.Total,
		Approvals:   counts.Approvals,
		Rejections:  counts.Rejections,
		RequestInfo: counts.RequestInfo,
	}, nil
}

func (h Handler) SetRosterHandler(ctx context.Context, req httptransport.RosterRequest) (httptransport.RosterEntryResponse, error) {
	entry, err := h.Service.SetRosterMembership(ctx, req.UserID, req.Active)
	if err != nil {
		return httptransport.RosterEntryResponse{}, err
	}
	return httptransport.RosterEntryResponse{
		UserID: entry.UserID,
		Active: entry.Active,
		Since:  entry.Since,
	}, nil
}

func (h Handler) ListRosterHandler(ctx context.Context) (httptransport.RosterListResponse, error) {
	entries, err := h.Service.ActiveModerators(ctx)
	if err != nil {
		return httptransport.RosterListResponse{}, err
	}
	items := make([]httptransport.RosterEntryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, httptransport.RosterEntryResponse{
			UserID: entry.UserID,
			Active: entry.Active,
			Since:  entry.Since,
		})
	}
	return httptransport.RosterListResponse{Items: items}, nil
}

func reviewResponse(review entities.Review) httptransport.ReviewResponse {
	return httptransport.ReviewResponse{
		ID:          review.ID,
		ModeratorID: review.ModeratorID,
		Vote:        string(review.Vote),
		Comment:     review.Comment,
		CreatedAt:   review.CreatedAt,
	}
}
