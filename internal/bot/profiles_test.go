package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/rpsls/internal/game"
	"github.com/lox/rpsls/internal/randutil"
	"github.com/lox/rpsls/rules"
)

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()
	require.Equal(t, 4, r.Len())

	names := []string{}
	for _, p := range r.Profiles() {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"Chappie", "Hal", "Sonny", "R2D2"}, names)
}

func TestRegistryLookup(t *testing.T) {
	r := DefaultRegistry()

	tests := []struct {
		selector string
		want     string
		wantErr  bool
	}{
		{"1", "Chappie", false},
		{"4", "R2D2", false},
		{" 2 ", "Hal", false},
		{"sonny", "Sonny", false},
		{"R2D2", "R2D2", false},
		{"0", "", true},
		{"5", "", true},
		{"Marvin", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			p, err := r.Lookup(tt.selector)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownProfile)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Name)
		})
	}
}

func TestRegistryRejectsDegenerateProfile(t *testing.T) {
	r := DefaultRegistry()
	err := r.Register(Profile{Name: "Void", Weights: weights(0, 0, 0, 0, 0)})
	assert.ErrorIs(t, err, game.ErrDegenerateWeights)
	assert.Equal(t, 4, r.Len())
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := DefaultRegistry()
	err := r.Register(Profile{Name: "hal", Weights: weights(0, 1, 0, 0, 0)})
	assert.ErrorIs(t, err, ErrDuplicateProfile)

	err = r.Register(Profile{Name: game.TieLabel, Adaptive: true})
	assert.Error(t, err)
}

func TestRegistryRejectsNumericNames(t *testing.T) {
	r := DefaultRegistry()
	for _, name := range []string{"3", " 42 ", "-1"} {
		err := r.Register(Profile{Name: name, Adaptive: true})
		assert.Error(t, err, "name %q", name)
	}
	assert.Equal(t, 4, r.Len())

	require.NoError(t, r.Register(Profile{Name: "3PO", Adaptive: true}))
	p, err := r.Lookup("3po")
	require.NoError(t, err)
	assert.Equal(t, "3PO", p.Name)
}

func TestRegistryNewOpponent(t *testing.T) {
	r := DefaultRegistry()

	hal, err := r.NewOpponent("Hal", randutil.New(1), quietLogger())
	require.NoError(t, err)
	assert.Equal(t, "Hal", hal.Name())
	m, err := hal.TakeTurn("")
	require.NoError(t, err)
	assert.Equal(t, rules.Rock, m.Kind())
	assert.Len(t, hal.History(), 1)

	r2, err := r.NewOpponent("4", randutil.New(1), quietLogger())
	require.NoError(t, err)
	_, ok := r2.Strategy().(game.Recalibrator)
	assert.True(t, ok, "adaptive profile must recalibrate")

	_, err = r.NewOpponent("99", randutil.New(1), quietLogger())
	assert.ErrorIs(t, err, ErrUnknownProfile)
}

func TestRegistryProfilesAreCopies(t *testing.T) {
	r := DefaultRegistry()
	ps := r.Profiles()
	ps[1].Weights[rules.Rock] = 0

	p, err := r.Lookup("Hal")
	require.NoError(t, err)
	assert.Equal(t, 1.0, p.Weights[rules.Rock])
}
