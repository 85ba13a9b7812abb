package errors

import "errors"

var (
	ErrReviewNotFound     = errors.New("review not found")
	ErrRosterNotFound     = errors.New("roster entry not found")
	ErrInvalidInput       = errors.New("invalid review input")
	ErrNotActiveModerator = errors.New("user is not an active moderator")
)
