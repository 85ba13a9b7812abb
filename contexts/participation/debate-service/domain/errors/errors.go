package errors

import "errors"

var (
	ErrArgumentNotFound = errors.New("argument not found")
	ErrCommentNotFound  = errors.New("comment not found")
	ErrLikeNotFound     = errors.New("like not found")
	ErrDuplicateLike    = errors.New("user already liked this")
	ErrInvalidInput     = errors.New("invalid debate input")
)
