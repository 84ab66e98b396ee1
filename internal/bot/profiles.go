package bot

import (
	"errors"
	"fmt"
	rand "math/rand/v2"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/lox/rpsls/internal/game"
	"github.com/lox/rpsls/rules"
)

var (
	ErrUnknownProfile   = errors.New("unknown opponent profile")
	ErrDuplicateProfile = errors.New("duplicate opponent profile")
)

// Profile describes an opponent the player can choose. Adaptive profiles
// carry no weights; fixed ones carry the weights they sample from.
type Profile struct {
	Name        string
	Description string
	Weights     game.Weights
	Adaptive    bool
}

// DefaultProfiles is the built-in opponent table, in menu order.
func DefaultProfiles() []Profile {
	return []Profile{
		{
			Name:        "Chappie",
			Description: "Plays every gesture equally often",
			Weights:     weights(0.2, 0.2, 0.2, 0.2, 0.2),
		},
		{
			Name:        "Hal",
			Description: "Only ever plays rock",
			Weights:     weights(1, 0, 0, 0, 0),
		},
		{
			Name:        "Sonny",
			Description: "Never plays rock, favours paper",
			Weights:     weights(0, 0.4, 0.3, 0.2, 0.1),
		},
		{
			Name:        "R2D2",
			Description: "Learns which gestures win for it",
			Adaptive:    true,
		},
	}
}

// weights takes values in catalog order.
func weights(vals ...float64) game.Weights {
	w := make(game.Weights, rules.NumKinds)
	for i, k := range rules.Kinds() {
		w[k] = vals[i]
	}
	return w
}

// Validate rejects profiles that could never be played.
func (p Profile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("profile name is required")
	}
	if p.Name == game.TieLabel {
		return fmt.Errorf("profile name %q is reserved", p.Name)
	}
	// Numeric selectors are menu numbers, so a numeric name could never be
	// looked up.
	if _, err := strconv.Atoi(strings.TrimSpace(p.Name)); err == nil {
		return fmt.Errorf("profile name %q must not be a number", p.Name)
	}
	if p.Adaptive {
		return nil
	}
	if err := p.Weights.Validate(); err != nil {
		return fmt.Errorf("profile %s: %w", p.Name, err)
	}
	return nil
}

// NewStrategy builds a fresh strategy for one participant.
func (p Profile) NewStrategy(rng *rand.Rand, logger *log.Logger) (game.Strategy, error) {
	if p.Adaptive {
		return NewAdaptive(rng, logger), nil
	}
	return NewFixedWeight(p.Weights, rng)
}

func (p Profile) clone() Profile {
	p.Weights = p.Weights.Clone()
	return p
}

// Kind reports "adaptive" or "fixed" for display.
func (p Profile) Kind() string {
	if p.Adaptive {
		return "adaptive"
	}
	return "fixed"
}

// Registry is the ordered table of opponent profiles.
type Registry struct {
	profiles []Profile
	byName   map[string]int
}

// NewRegistry creates a registry holding the given profiles.
func NewRegistry(profiles ...Profile) (*Registry, error) {
	r := &Registry{byName: make(map[string]int)}
	for _, p := range profiles {
		if err := r.Register(p); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// DefaultRegistry holds DefaultProfiles.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(DefaultProfiles()...)
	if err != nil {
		panic(err)
	}
	return r
}

// Register appends a profile, rejecting degenerate weights and name clashes.
func (r *Registry) Register(p Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	key := strings.ToLower(p.Name)
	if _, ok := r.byName[key]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateProfile, p.Name)
	}
	r.byName[key] = len(r.profiles)
	r.profiles = append(r.profiles, p.clone())
	return nil
}

// Profiles returns the profiles in menu order.
func (r *Registry) Profiles() []Profile {
	out := make([]Profile, len(r.profiles))
	for i, p := range r.profiles {
		out[i] = p.clone()
	}
	return out
}

func (r *Registry) Len() int { return len(r.profiles) }

// Lookup resolves a selector: a 1-based menu number or a case-insensitive
// profile name.
func (r *Registry) Lookup(selector string) (Profile, error) {
	selector = strings.TrimSpace(selector)
	if n, err := strconv.Atoi(selector); err == nil {
		if n < 1 || n > len(r.profiles) {
			return Profile{}, fmt.Errorf("%w: %d is not between 1 and %d", ErrUnknownProfile, n, len(r.profiles))
		}
		return r.profiles[n-1].clone(), nil
	}
	i, ok := r.byName[strings.ToLower(selector)]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknownProfile, selector)
	}
	return r.profiles[i].clone(), nil
}

// NewOpponent builds a computer participant for the selected profile. The
// participant is named after the profile.
func (r *Registry) NewOpponent(selector string, rng *rand.Rand, logger *log.Logger) (*game.Participant, error) {
	p, err := r.Lookup(selector)
	if err != nil {
		return nil, err
	}
	s, err := p.NewStrategy(rng, logger)
	if err != nil {
		return nil, err
	}
	return game.NewParticipant(p.Name, s), nil
}
