package puzzle

import "errors"

// ErrInvalidMove is matched by every InvalidMoveError.
var ErrInvalidMove = errors.New("invalid move")

// InvalidMoveError reports a move that the puzzle cannot interpret.
type InvalidMoveError struct {
	Move   string
	Reason string
}

func (e *InvalidMoveError) Error() string {
	return "invalid move " + e.Move + ": " + e.Reason
}

func (e *InvalidMoveError) Is(target error) bool {
	return target == ErrInvalidMove
}
