package errors

import "errors"

var (
	ErrInitiativeNotFound = errors.New("initiative not found")
	ErrPolicyNotFound     = errors.New("policy not found")
	ErrVoteNotFound       = errors.New("vote not found")
	ErrSupporterNotFound  = errors.New("supporter not found")

	ErrInvalidInput          = errors.New("invalid lifecycle input")
	ErrDuplicateSupport      = errors.New("user already supports this proposal")
	ErrDuplicateVote         = errors.New("user already voted on this proposal")
	ErrZeroQuorum            = errors.New("current quorum is zero")
	ErrTieUnresolved         = errors.New("variant vote is tied; the vote must be prolonged")
	ErrNotReadyForTransition = errors.New("proposal is not ready for the next stage")
	ErrInvalidStateForAction = errors.New("action is not valid in the current state")
	ErrConcurrentTransition  = errors.New("proposal changed concurrently; transition aborted")
)
