package bot

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/rpsls/internal/game"
	"github.com/lox/rpsls/internal/randutil"
	"github.com/lox/rpsls/rules"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

func moves(kinds ...rules.Kind) []rules.Move {
	out := make([]rules.Move, len(kinds))
	for i, k := range kinds {
		out[i] = rules.MustMove(k)
	}
	return out
}

func TestFixedWeightSingleKind(t *testing.T) {
	s, err := NewFixedWeight(weights(1, 0, 0, 0, 0), randutil.New(1))
	require.NoError(t, err)

	for i := 0; i < 500; i++ {
		m, err := s.Select("")
		require.NoError(t, err)
		require.Equal(t, rules.Rock, m.Kind())
	}
}

func TestFixedWeightDistribution(t *testing.T) {
	s, err := NewFixedWeight(weights(0, 0.4, 0.3, 0.2, 0.1), randutil.New(2024))
	require.NoError(t, err)

	const draws = 40000
	counts := map[rules.Kind]int{}
	for i := 0; i < draws; i++ {
		m, err := s.Select("ignored")
		require.NoError(t, err)
		counts[m.Kind()]++
	}

	assert.Zero(t, counts[rules.Rock], "zero weight must never be selected")
	assert.InDelta(t, 0.4, float64(counts[rules.Paper])/draws, 0.015)
	assert.InDelta(t, 0.3, float64(counts[rules.Scissors])/draws, 0.015)
	assert.InDelta(t, 0.2, float64(counts[rules.Lizard])/draws, 0.015)
	assert.InDelta(t, 0.1, float64(counts[rules.Spock])/draws, 0.015)
}

func TestFixedWeightUnnormalised(t *testing.T) {
	// Weights are relative: {3, 1} behaves like {0.75, 0.25}.
	s, err := NewFixedWeight(weights(3, 1, 0, 0, 0), randutil.New(9))
	require.NoError(t, err)

	const draws = 20000
	rock := 0
	for i := 0; i < draws; i++ {
		m, _ := s.Select("")
		if m.Kind() == rules.Rock {
			rock++
		}
	}
	assert.InDelta(t, 0.75, float64(rock)/draws, 0.015)
}

func TestFixedWeightRejectsDegenerate(t *testing.T) {
	tests := []struct {
		name string
		w    game.Weights
	}{
		{"all zero", weights(0, 0, 0, 0, 0)},
		{"negative", weights(1, -0.5, 0, 0, 0)},
		{"missing kind", game.Weights{rules.Rock: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFixedWeight(tt.w, randutil.New(1))
			assert.ErrorIs(t, err, game.ErrDegenerateWeights)
		})
	}
}

func TestFixedWeightIsImmutable(t *testing.T) {
	w := weights(1, 0, 0, 0, 0)
	s, err := NewFixedWeight(w, randutil.New(1))
	require.NoError(t, err)

	w[rules.Rock] = 0
	w[rules.Spock] = 1
	m, err := s.Select("")
	require.NoError(t, err)
	assert.Equal(t, rules.Rock, m.Kind())
}

func TestAdaptiveUniformBeforeHistory(t *testing.T) {
	a := NewAdaptive(randutil.New(3), quietLogger())
	w := a.Weights()
	for _, k := range rules.Kinds() {
		assert.Equal(t, 1.0, w[k], "kind %s", k)
	}

	seen := map[rules.Kind]bool{}
	for i := 0; i < 500; i++ {
		m, err := a.Select("")
		require.NoError(t, err)
		seen[m.Kind()] = true
	}
	assert.Len(t, seen, rules.NumKinds)
}

func TestAdaptiveRecalibrate(t *testing.T) {
	a := NewAdaptive(randutil.New(3), quietLogger())
	a.Recalibrate(moves(rules.Rock, rules.Paper), []string{"R2D2", game.TieLabel}, "R2D2")

	w := a.Weights()
	assert.Equal(t, MaxWeight, w[rules.Rock])
	assert.Equal(t, MinWeight, w[rules.Paper])
	assert.Equal(t, 0.2, w[rules.Scissors])
	assert.Equal(t, 0.2, w[rules.Lizard])
	assert.Equal(t, 0.2, w[rules.Spock])
}

func TestAdaptiveRecalibrateWinRates(t *testing.T) {
	a := NewAdaptive(randutil.New(3), quietLogger())
	own := moves(rules.Spock, rules.Spock, rules.Spock, rules.Lizard, rules.Lizard, rules.Lizard, rules.Lizard)
	outcomes := []string{"me", "you", "you", "me", "tie", "you", "you"}
	a.Recalibrate(own, outcomes, "me")

	w := a.Weights()
	assert.Equal(t, 0.33, w[rules.Spock], "1/3 rounds to 0.33")
	assert.Equal(t, 0.25, w[rules.Lizard])
	assert.Equal(t, 0.2, w[rules.Rock])
}

func TestAdaptiveRecalibrateIsDeterministic(t *testing.T) {
	own := moves(rules.Rock, rules.Paper, rules.Rock, rules.Scissors)
	outcomes := []string{"x", "x", game.TieLabel, "y"}

	a := NewAdaptive(randutil.New(1), quietLogger())
	b := NewAdaptive(randutil.New(2), quietLogger())
	a.Recalibrate(own, outcomes, "x")
	b.Recalibrate(own, outcomes, "x")
	assert.Equal(t, a.Weights(), b.Weights())
}

func TestAdaptiveWeightsStayClamped(t *testing.T) {
	a := NewAdaptive(randutil.New(5), quietLogger())
	rng := randutil.New(6)
	var own []rules.Move
	var outcomes []string
	labels := []string{"me", "them", game.TieLabel}
	for i := 0; i < 200; i++ {
		own = append(own, rules.MustMove(rules.Kinds()[rng.IntN(rules.NumKinds)]))
		outcomes = append(outcomes, labels[rng.IntN(len(labels))])
		a.Recalibrate(own, outcomes, "me")
		for k, v := range a.Weights() {
			require.GreaterOrEqual(t, v, MinWeight, "kind %s", k)
			require.LessOrEqual(t, v, MaxWeight, "kind %s", k)
		}
		_, err := a.Select("")
		require.NoError(t, err)
	}
}

func TestAdaptiveLosingKindStaysReachable(t *testing.T) {
	a := NewAdaptive(randutil.New(11), quietLogger())
	a.Recalibrate(moves(rules.Rock, rules.Rock, rules.Rock), []string{"them", "them", "them"}, "me")
	assert.Equal(t, MinWeight, a.Weights()[rules.Rock])

	rock := 0
	for i := 0; i < 20000; i++ {
		m, _ := a.Select("")
		if m.Kind() == rules.Rock {
			rock++
		}
	}
	assert.Positive(t, rock)
}

func TestSampleRejectsDegenerate(t *testing.T) {
	_, err := Sample(randutil.New(1), weights(0, 0, 0, 0, 0))
	assert.ErrorIs(t, err, game.ErrDegenerateWeights)

	k, err := Sample(randutil.New(1), weights(0, 0, 0, 0, 2))
	require.NoError(t, err)
	assert.Equal(t, rules.Spock, k)
}
