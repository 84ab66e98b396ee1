package bot

import (
	"fmt"
	rand "math/rand/v2"

	"github.com/lox/rpsls/internal/game"
	"github.com/lox/rpsls/rules"
)

// FixedWeight samples every move from the same weights.
type FixedWeight struct {
	weights game.Weights
	rng     *rand.Rand
}

// NewFixedWeight validates w up front so a degenerate profile can never reach
// selection.
func NewFixedWeight(w game.Weights, rng *rand.Rand) (*FixedWeight, error) {
	if rng == nil {
		return nil, fmt.Errorf("rng is required")
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &FixedWeight{weights: w.Clone(), rng: rng}, nil
}

// Select ignores choice and draws from the fixed weights.
func (f *FixedWeight) Select(string) (rules.Move, error) {
	return rules.NewMove(sample(f.rng, f.weights))
}

func (f *FixedWeight) Weights() game.Weights { return f.weights.Clone() }
