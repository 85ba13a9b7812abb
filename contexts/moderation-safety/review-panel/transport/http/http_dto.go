package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type SubmitReviewRequest struct {
	ModeratorID string `json:"moderator_id"`
	Vote        string `json:"vote"`
	Comment     string `json:"comment,omitempty"`
}

type ReviewResponse struct {
	ID          string    `json:"id"`
	ModeratorID string    `json:"moderator_id"`
	Vote        string    `json:"vote"`
	Comment     string    `json:"comment,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type ReviewListResponse struct {
	Items []ReviewResponse `json:"items"`
}

type ReviewCountsResponse struct {
	Total       int `json:"total"`
	Approvals   int `json:"approvals"`
	Rejections  int `json:"rejections"`
	RequestInfo int `json:"request_info"`
}

type RosterRequest struct {
	UserID string `json:"user_id"`
	Active bool   `json:"active"`
}

type RosterEntryResponse struct {
	UserID string    `json:"user_id"`
	Active bool      `json:"active"`
	Since  time.Time `json:"since"`
}

type RosterListResponse struct {
	Items []RosterEntryResponse `json:"items"`
}
