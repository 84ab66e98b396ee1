package game

import "errors"

var (
	// ErrDegenerateWeights means no kind could ever be selected, or the
	// weights are malformed (negative, NaN, or missing a kind).
	ErrDegenerateWeights = errors.New("degenerate weights")

	// ErrMatchComplete is returned by PlayRound once a participant has
	// reached the winning score.
	ErrMatchComplete = errors.New("match is complete")

	// ErrDuplicateName is returned when both participants share a name, or a
	// name collides with the tie label.
	ErrDuplicateName = errors.New("participant names must be distinct")

	// ErrNoOpponent is returned when a restart asks for a new opponent
	// without supplying one.
	ErrNoOpponent = errors.New("no replacement opponent supplied")
)
