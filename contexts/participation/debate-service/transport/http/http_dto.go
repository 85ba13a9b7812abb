package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateArgumentRequest struct {
	Kind     string `json:"kind"`
	AuthorID string `json:"author_id"`
	Title    string `json:"title"`
	Text     string `json:"text"`
}

type UpdateArgumentRequest struct {
	AuthorID string `json:"author_id"`
	Title    string `json:"title"`
	Text     string `json:"text"`
}

type ArgumentResponse struct {
	ID            string    `json:"id"`
	Kind          string    `json:"kind"`
	Label         string    `json:"label"`
	Icon          string    `json:"icon"`
	CSS           string    `json:"css"`
	AuthorID      string    `json:"author_id"`
	Title         string    `json:"title"`
	Text          string    `json:"text"`
	LikesCount    int       `json:"likes_count"`
	CommentsCount int       `json:"comments_count"`
	CreatedAt     time.Time `json:"created_at"`
	ChangedAt     time.Time `json:"changed_at"`
}

type ArgumentListResponse struct {
	Items []ArgumentResponse `json:"items"`
}

type CreateCommentRequest struct {
	AuthorID string `json:"author_id"`
	Text     string `json:"text"`
}

type CommentResponse struct {
	ID         string    `json:"id"`
	ArgumentID string    `json:"argument_id"`
	AuthorID   string    `json:"author_id"`
	Text       string    `json:"text"`
	LikesCount int       `json:"likes_count"`
	CreatedAt  time.Time `json:"created_at"`
}

type CommentListResponse struct {
	Items []CommentResponse `json:"items"`
}

type LikeRequest struct {
	UserID string `json:"user_id"`
}

type LikeResponse struct {
	TargetKind string    `json:"target_kind"`
	TargetID   string    `json:"target_id"`
	UserID     string    `json:"user_id"`
	CreatedAt  time.Time `json:"created_at"`
}
