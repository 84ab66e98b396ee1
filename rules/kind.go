package rules

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidMoveKind is returned when a kind or key is not part of the catalog.
var ErrInvalidMoveKind = errors.New("invalid move kind")

// Kind identifies one of the hand gestures in the catalog.
type Kind uint8

const (
	Rock Kind = iota
	Paper
	Scissors
	Lizard
	Spock

	// NumKinds is the size of the catalog.
	NumKinds = 5
)

var (
	kindKeys  = [NumKinds]string{"r", "p", "sc", "l", "sp"}
	kindNames = [NumKinds]string{"rock", "paper", "scissors", "lizard", "spock"}
)

// Kinds returns the catalog in its fixed order.
func Kinds() []Kind {
	return []Kind{Rock, Paper, Scissors, Lizard, Spock}
}

// Valid reports whether k belongs to the catalog.
func (k Kind) Valid() bool {
	return k < NumKinds
}

// Key returns the short key a player types to choose k.
func (k Kind) Key() string {
	if !k.Valid() {
		return "?"
	}
	return kindKeys[k]
}

func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
	return kindNames[k]
}

// Title returns the capitalised name, e.g. "Spock".
func (k Kind) Title() string {
	s := k.String()
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ParseKind resolves a short key ("sc") or a full name ("scissors").
// Matching ignores case and surrounding whitespace.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i := range kindKeys {
		if s == kindKeys[i] || s == kindNames[i] {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidMoveKind, s)
}

// Keys returns the short keys in catalog order.
func Keys() []string {
	keys := make([]string, NumKinds)
	copy(keys, kindKeys[:])
	return keys
}
