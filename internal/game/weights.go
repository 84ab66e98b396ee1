package game

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/lox/rpsls/rules"
)

// Weights maps each kind to its relative selection likelihood. The values
// need not sum to one; zero means the kind is never selected.
type Weights map[rules.Kind]float64

// UniformWeights gives every kind the same weight.
func UniformWeights() Weights {
	w := make(Weights, rules.NumKinds)
	for _, k := range rules.Kinds() {
		w[k] = 1
	}
	return w
}

// Validate checks that every kind has a finite, non-negative entry and that
// at least one entry is positive.
func (w Weights) Validate() error {
	var total float64
	for _, k := range rules.Kinds() {
		v, ok := w[k]
		if !ok {
			return fmt.Errorf("%w: no weight for %s", ErrDegenerateWeights, k)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%w: %s has weight %v", ErrDegenerateWeights, k, v)
		}
		total += v
	}
	if total <= 0 {
		return fmt.Errorf("%w: all weights are zero", ErrDegenerateWeights)
	}
	for k := range w {
		if !k.Valid() {
			return fmt.Errorf("%w: weight for unknown kind %d", ErrDegenerateWeights, uint8(k))
		}
	}
	return nil
}

// Total sums the weights of the catalog kinds.
func (w Weights) Total() float64 {
	var total float64
	for _, k := range rules.Kinds() {
		total += w[k]
	}
	return total
}

// Probability returns k's share of the total weight.
func (w Weights) Probability(k rules.Kind) float64 {
	total := w.Total()
	if total == 0 {
		return 0
	}
	return w[k] / total
}

// Clone returns an independent copy.
func (w Weights) Clone() Weights {
	if w == nil {
		return nil
	}
	out := make(Weights, len(w))
	for k, v := range w {
		out[k] = v
	}
	return out
}

// ParseWeights converts a key/name indexed map, as found in config files,
// into Weights. Kinds not mentioned get zero; naming a kind twice, by key
// and by name, is an error.
func ParseWeights(raw map[string]float64) (Weights, error) {
	w := make(Weights, rules.NumKinds)
	for _, k := range rules.Kinds() {
		w[k] = 0
	}

	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	seen := make(map[rules.Kind]string, len(keys))
	for _, key := range keys {
		k, err := rules.ParseKind(key)
		if err != nil {
			return nil, err
		}
		if prev, ok := seen[k]; ok {
			return nil, fmt.Errorf("%w: %q and %q both set %s", ErrDegenerateWeights, prev, key, k)
		}
		seen[k] = key
		w[k] = raw[key]
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w Weights) String() string {
	parts := make([]string, 0, rules.NumKinds)
	for _, k := range rules.Kinds() {
		parts = append(parts, fmt.Sprintf("%s=%.2f", k.Key(), w[k]))
	}
	return strings.Join(parts, " ")
}
