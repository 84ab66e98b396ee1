package bot

import (
	"math"
	rand "math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/lox/rpsls/internal/game"
	"github.com/lox/rpsls/rules"
)

// Bounds on a recalibrated weight. The floor keeps every kind reachable after
// a bad start and the ceiling keeps a lucky kind from becoming certain.
const (
	MinWeight = 0.05
	MaxWeight = 0.5
)

// Adaptive samples from weights recomputed before every round from its own
// empirical win rate per kind.
type Adaptive struct {
	weights game.Weights
	rng     *rand.Rand
	logger  *log.Logger
}

// NewAdaptive returns a strategy with no weights yet; until the first
// recalibration it plays uniformly.
func NewAdaptive(rng *rand.Rand, logger *log.Logger) *Adaptive {
	if logger == nil {
		logger = log.Default()
	}
	return &Adaptive{rng: rng, logger: logger.WithPrefix("adaptive")}
}

// Recalibrate sets each kind's weight to its clamped win rate over the
// aligned histories, or to the uniform share if it was never played.
func (a *Adaptive) Recalibrate(own []rules.Move, outcomes []string, self string) {
	var played, won [rules.NumKinds]int
	n := min(len(own), len(outcomes))
	for i := 0; i < n; i++ {
		k := own[i].Kind()
		played[k]++
		if outcomes[i] == self {
			won[k]++
		}
	}

	w := make(game.Weights, rules.NumKinds)
	for _, k := range rules.Kinds() {
		if played[k] == 0 {
			w[k] = round2(1 / float64(rules.NumKinds))
			continue
		}
		rate := round2(float64(won[k]) / float64(played[k]))
		w[k] = math.Min(math.Max(rate, MinWeight), MaxWeight)
	}
	a.weights = w

	a.logger.Debug("Recalibrated", "rounds", n, "weights", w.String())
}

// Select ignores choice and draws from the latest weights.
func (a *Adaptive) Select(string) (rules.Move, error) {
	return rules.NewMove(sample(a.rng, a.Weights()))
}

// Weights returns the current weights, uniform before any recalibration.
func (a *Adaptive) Weights() game.Weights {
	if a.weights == nil {
		return game.UniformWeights()
	}
	return a.weights.Clone()
}

// round2 rounds half away from zero to two decimal places, keeping weights
// identical across runs for the same history.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
