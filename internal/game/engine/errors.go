package engine

import "errors"

var (
	// ErrInvalidArgument: a missing value, a bid out of range, an unknown
	// participant or a card the participant does not hold.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidState: the operation is not allowed in the current phase.
	ErrInvalidState = errors.New("invalid state")
	// ErrNotYourTurn is an ErrInvalidState for plays out of turn.
	ErrNotYourTurn = &turnError{}
	// ErrInvalidConfig: the game cannot be played with this setup.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrCollectionInvariant marks a card custody violation inside the
	// engine. It is never the caller's fault.
	ErrCollectionInvariant = errors.New("collection invariant violated")
)

type turnError struct{}

func (*turnError) Error() string { return "not your turn" }

func (*turnError) Is(target error) bool { return target == ErrInvalidState }
