// Package game runs a match of rock, paper, scissors, lizard, spock between
// an interactive participant and an algorithmic opponent.
//
// The main type is Match, which sequences rounds, keeps score and the
// winner history, and detects when a participant reaches the winning score.
//
// # Basic Usage
//
//	human := game.NewParticipant("Ada", game.InteractiveStrategy{})
//	computer := game.NewParticipant("Hal", halStrategy)
//	m, err := game.NewMatch(human, computer, game.WithWinningScore(5))
//	...
//	res, err := m.PlayRound("sp")
//	if errors.Is(err, rules.ErrInvalidMoveKind) {
//	    // ask again; the match state is untouched
//	}
//	if m.IsComplete() {
//	    winner, _ := m.Winner()
//	}
//
// # Strategies
//
// Every participant selects moves through a Strategy. Strategies that also
// implement Recalibrator are fed the participant's own history and the match
// winner history before each selection, which is how the adaptive opponent in
// package bot learns from the running match.
//
// Rounds are strictly sequential. A Match is not safe for concurrent use; run
// independent matches in separate goroutines instead.
package game
