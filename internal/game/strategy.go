package game

import "github.com/lox/rpsls/rules"

// TieLabel marks a drawn round in the winner history.
const TieLabel = "tie"

// Strategy selects a participant's move for the next round.
//
// choice carries the externally supplied key for interactive participants;
// algorithmic strategies ignore it.
type Strategy interface {
	Select(choice string) (rules.Move, error)
}

// Recalibrator is implemented by strategies that learn from the running
// match. The match calls Recalibrate before every Select with the
// participant's own moves, the winner history aligned to them, and the
// participant's name as it appears in that history.
type Recalibrator interface {
	Recalibrate(own []rules.Move, outcomes []string, self string)
}

// WeightReporter exposes a strategy's current selection weights for display.
type WeightReporter interface {
	Weights() Weights
}

// InteractiveStrategy wraps a choice made outside the core, typically typed
// by a person. It has no state and no randomness.
type InteractiveStrategy struct{}

// Select parses choice, failing with rules.ErrInvalidMoveKind when the
// caller did not validate it first.
func (InteractiveStrategy) Select(choice string) (rules.Move, error) {
	return rules.ParseMove(choice)
}
