package game

import "github.com/lox/rpsls/rules"

// Participant is one side of a match: a name, a score, the moves it has made
// and the strategy that makes them.
type Participant struct {
	name     string
	score    int
	history  []rules.Move
	strategy Strategy
}

// NewParticipant creates a participant with an empty history.
func NewParticipant(name string, strategy Strategy) *Participant {
	return &Participant{name: name, strategy: strategy}
}

func (p *Participant) Name() string       { return p.name }
func (p *Participant) Score() int         { return p.score }
func (p *Participant) Strategy() Strategy { return p.strategy }

// History returns a copy of the moves made so far, oldest first.
func (p *Participant) History() []rules.Move {
	out := make([]rules.Move, len(p.history))
	copy(out, p.history)
	return out
}

// LastMove returns the most recent move, if any.
func (p *Participant) LastMove() (rules.Move, bool) {
	if len(p.history) == 0 {
		return rules.Move{}, false
	}
	return p.history[len(p.history)-1], true
}

// TakeTurn asks the strategy for a move and records it.
func (p *Participant) TakeTurn(choice string) (rules.Move, error) {
	m, err := p.choose(choice)
	if err != nil {
		return rules.Move{}, err
	}
	p.record(m)
	return m, nil
}

func (p *Participant) IncrementScore() { p.score++ }

// ResetScore zeroes the score. History is kept.
func (p *Participant) ResetScore() { p.score = 0 }

// MoveCounts returns how often each kind has been played.
func (p *Participant) MoveCounts() map[rules.Kind]int {
	counts := make(map[rules.Kind]int, rules.NumKinds)
	for _, k := range rules.Kinds() {
		counts[k] = 0
	}
	for _, m := range p.history {
		counts[m.Kind()]++
	}
	return counts
}

// WinCounts returns how many rounds each kind won, given the winner history.
// outcomes is aligned with the most recent len(outcomes) moves.
func (p *Participant) WinCounts(outcomes []string) map[rules.Kind]int {
	counts := make(map[rules.Kind]int, rules.NumKinds)
	for _, k := range rules.Kinds() {
		counts[k] = 0
	}
	own := alignTail(p.history, len(outcomes))
	for i, m := range own {
		if outcomes[len(outcomes)-len(own)+i] == p.name {
			counts[m.Kind()]++
		}
	}
	return counts
}

// choose and record split TakeTurn so the match can collect both moves
// before committing either.
func (p *Participant) choose(choice string) (rules.Move, error) {
	return p.strategy.Select(choice)
}

func (p *Participant) record(m rules.Move) {
	p.history = append(p.history, m)
}

func alignTail(history []rules.Move, n int) []rules.Move {
	if len(history) > n {
		return history[len(history)-n:]
	}
	return history
}
