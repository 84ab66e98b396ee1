// Package rules holds the game's fixed catalog of gestures and the
// non-transitive dominance relation between them.
//
//	rock, _ := rules.ParseMove("r")
//	spock := rules.MustMove(rules.Spock)
//	rules.Resolve(rock, spock) // rules.SecondWins
//
// Each kind beats exactly two others and loses to the remaining two, so every
// pair of distinct kinds has exactly one winner.
package rules
