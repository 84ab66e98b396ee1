package rules

import "fmt"

// Move is a single chosen gesture. The zero value is not a valid move; build
// one with NewMove or ParseMove.
type Move struct {
	kind  Kind
	valid bool
}

// NewMove wraps k, failing with ErrInvalidMoveKind if k is outside the catalog.
func NewMove(k Kind) (Move, error) {
	if !k.Valid() {
		return Move{}, fmt.Errorf("%w: %d", ErrInvalidMoveKind, uint8(k))
	}
	return Move{kind: k, valid: true}, nil
}

// ParseMove builds a move from an unchecked key or name.
func ParseMove(key string) (Move, error) {
	k, err := ParseKind(key)
	if err != nil {
		return Move{}, err
	}
	return Move{kind: k, valid: true}, nil
}

// MustMove is NewMove for kinds known at compile time.
func MustMove(k Kind) Move {
	m, err := NewMove(k)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Move) Kind() Kind { return m.kind }

// IsZero reports whether m was never constructed.
func (m Move) IsZero() bool { return !m.valid }

// Dominates reports whether m beats other. Equal kinds never dominate.
func (m Move) Dominates(other Move) bool {
	if m.IsZero() || other.IsZero() {
		return false
	}
	return Beats(m.kind, other.kind)
}

func (m Move) String() string {
	if m.IsZero() {
		return "none"
	}
	return m.kind.String()
}

// Outcome is the result of comparing two moves.
type Outcome int

const (
	Tie Outcome = iota
	FirstWins
	SecondWins
)

func (o Outcome) String() string {
	switch o {
	case Tie:
		return "tie"
	case FirstWins:
		return "first"
	case SecondWins:
		return "second"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Resolve compares a round's two moves. It depends on nothing but the
// dominance relation.
func Resolve(a, b Move) Outcome {
	switch {
	case a.Dominates(b):
		return FirstWins
	case b.Dominates(a):
		return SecondWins
	default:
		return Tie
	}
}

// Describe renders a one-line explanation such as "Rock crushes scissors".
func Describe(a, b Move) string {
	switch Resolve(a, b) {
	case FirstWins:
		r, _ := RuleFor(a.kind, b.kind)
		return fmt.Sprintf("%s %s %s", r.Winner.Title(), r.Verb, r.Loser)
	case SecondWins:
		r, _ := RuleFor(b.kind, a.kind)
		return fmt.Sprintf("%s %s %s", r.Winner.Title(), r.Verb, r.Loser)
	default:
		return fmt.Sprintf("Both played %s", a)
	}
}
