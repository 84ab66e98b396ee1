package rules

// Rule is one entry of the dominance relation: Winner beats Loser.
type Rule struct {
	Winner Kind
	Loser  Kind
	Verb   string
}

// The relation is data, not arithmetic: with an odd cycle of five kinds there
// is no ordering to derive it from.
var dominance = [...]Rule{
	{Scissors, Paper, "cuts"},
	{Paper, Rock, "covers"},
	{Rock, Lizard, "crushes"},
	{Lizard, Spock, "poisons"},
	{Spock, Scissors, "smashes"},
	{Scissors, Lizard, "decapitates"},
	{Lizard, Paper, "eats"},
	{Paper, Spock, "disproves"},
	{Spock, Rock, "vaporizes"},
	{Rock, Scissors, "crushes"},
}

// beats is an index over dominance, filled once at package init.
var beats [NumKinds][NumKinds]*Rule

func init() {
	for i := range dominance {
		r := &dominance[i]
		beats[r.Winner][r.Loser] = r
	}
}

// Beats reports whether a beats b. A kind never beats itself.
func Beats(a, b Kind) bool {
	if !a.Valid() || !b.Valid() {
		return false
	}
	return beats[a][b] != nil
}

// RuleFor returns the rule under which a beats b.
func RuleFor(a, b Kind) (Rule, bool) {
	if !Beats(a, b) {
		return Rule{}, false
	}
	return *beats[a][b], true
}

// Rules returns a copy of the dominance relation.
func Rules() []Rule {
	out := make([]Rule, len(dominance))
	copy(out, dominance[:])
	return out
}

// Victims returns the kinds k beats, in catalog order.
func Victims(k Kind) []Kind {
	var out []Kind
	for _, other := range Kinds() {
		if Beats(k, other) {
			out = append(out, other)
		}
	}
	return out
}
