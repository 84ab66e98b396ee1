package bot

import (
	rand "math/rand/v2"

	"github.com/lox/rpsls/internal/game"
	"github.com/lox/rpsls/rules"
)

// Sample draws a kind with probability proportional to its weight. Kinds are
// walked in catalog order so a seeded source gives reproducible draws.
func Sample(rng *rand.Rand, w game.Weights) (rules.Kind, error) {
	if err := w.Validate(); err != nil {
		return 0, err
	}
	return sample(rng, w), nil
}

// sample assumes w has already been validated.
func sample(rng *rand.Rand, w game.Weights) rules.Kind {
	kinds := rules.Kinds()
	r := rng.Float64() * w.Total()
	var cum float64
	for _, k := range kinds {
		if w[k] == 0 {
			continue
		}
		cum += w[k]
		if r < cum {
			return k
		}
	}
	// Float rounding can leave r == total; fall back to the last positive kind.
	for i := len(kinds) - 1; i >= 0; i-- {
		if w[kinds[i]] > 0 {
			return kinds[i]
		}
	}
	return kinds[len(kinds)-1]
}
