package outcome

import "regexp"

// Intent names what a matching rule set says about the ruling.
type Intent string

const (
	DefendantWins Intent = "defendant-wins"
	PlaintiffWins Intent = "plaintiff-wins"
)

// RuleSet is an ordered list of independent patterns sharing one intent.
// The set fires when any of its patterns matches.
type RuleSet struct {
	Intent Intent
	Rules  []*regexp.Regexp
}

// Match reports whether any rule in the set matches text.
func (rs RuleSet) Match(text string) bool {
	for _, r := range rs.Rules {
		if r.MatchString(text) {
			return true
		}
	}
	return false
}

// signals is the pair of booleans produced by evaluating both rule sets.
type signals struct {
	defendant bool
	plaintiff bool
}

// table evaluates two rule sets and folds the result with a fixed
// tie-break.
type table struct {
	defendant RuleSet
	plaintiff RuleSet
	// onTie is returned when both sets fire.
	onTie Pair
}

func (t table) evaluate(ruling string) signals {
	return signals{
		defendant: t.defendant.Match(ruling),
		plaintiff: t.plaintiff.Match(ruling),
	}
}

func (t table) decide(s signals) Pair {
	switch {
	case s.defendant && !s.plaintiff:
		return Pair{Loss, Win}
	case s.plaintiff && !s.defendant:
		return Pair{Win, Loss}
	case s.plaintiff && s.defendant:
		return t.onTie
	}
	return unknownPair
}

func (t table) classify(ruling string) Pair {
	return t.decide(t.evaluate(ruling))
}

// Rules use (?s) so a match may cross line breaks, and bounded lazy
// wildcards instead of [^.] so "Búð ehf., greiði" still matches.
// \pL stands in for a word character since Go's \w is ASCII only.
func rule(pattern string) *regexp.Regexp {
	return regexp.MustCompile(`(?is)` + pattern)
}

// terms builds a case-insensitive rule for each literal phrase.
func terms(phrases ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(phrases))
	for i, p := range phrases {
		out[i] = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(p))
	}
	return out
}

// Appellate: the appealed ruling confirmed means the appellant lost.
var affirmedRuling = rule(`kærð\pL+ úrskurð\pL+.{0,30}?staðfest`)

// Appellate: the lower ruling annulled or reversed means the appellant won.
var reversedRuling = rule(`ómerkt|ómerktur|fellt úr gildi|felldur úr gildi|felld úr gildi|hnekkt`)

// Criminal reversals leave out the feminine "felld úr gildi".
var reversedSentence = rule(`ómerkt|ómerktur|fellt úr gildi|felldur úr gildi|hnekkt`)

// A conviction dominates partial-acquittal language, so the prosecution
// takes the tie.
var criminalRules = table{
	defendant: RuleSet{
		Intent: DefendantWins,
		Rules: append(terms(
			"sýknaður", "sýknað", "sýkna ber", "sýkn af", "ákæru vísað frá", "er sýkn",
		), affirmedRuling),
	},
	plaintiff: RuleSet{
		Intent: PlaintiffWins,
		Rules: append(terms(
			"fangelsi", "sekt ", "sektar", "sakfelld", "sakfellt",
			"skilorðsbundin", "samfélagsþjónust", "fésekt",
			"hegningarauka", "ökuréttarsvipting",
		),
			// Deferred sentencing is still a conviction.
			rule(`(?:frestað|fresta)\s.{0,30}?ákvörðun\s+refsing`),
			reversedSentence,
		),
	},
	onTie: Pair{Win, Loss},
}

// A split civil judgment (acquitted on the main claim, ordered to pay
// costs) counts as a defendant win.
var civilRules = table{
	defendant: RuleSet{
		Intent: DefendantWins,
		Rules: []*regexp.Regexp{
			rule(`stefnd\pL*.{0,120}?(?:er |skal vera |eru )?sýkn`),
			rule(`sýkna ber stefnd`),
			rule(`er sýkn af kröfum`),
			rule(`málinu vísað frá`),
			rule(`máli\pL* er vísað frá`),
			rule(`vísað\s+(?:er\s+)?frá dómi`),
			rule(`frávísun`),
			affirmedRuling,
			rule(`staðfest er.{0,60}?niðurstaða`),
			rule(`staðfest er ákvörðun`),
		},
	},
	plaintiff: RuleSet{
		Intent: PlaintiffWins,
		Rules: []*regexp.Regexp{
			rule(`stefnd\pL*.{0,120}?(?:ber að |skal |er gert að )?greið[iae]`),
			rule(`er dæm\pL+ til greiðslu`),
			rule(`varnaraðil\pL*.{0,120}?(?:ber að |skal )?greið`),
			rule(`áfrýjand\pL*.{0,120}?greið\pL+\s+stefn`),
			reversedRuling,
		},
	},
	onTie: Pair{Loss, Win},
}

// Explain returns the intents whose rule sets fire on a ruling section.
func Explain(ruling string, criminal bool) []Intent {
	t := civilRules
	if criminal {
		t = criminalRules
	}
	var out []Intent
	s := t.evaluate(ruling)
	if s.defendant {
		out = append(out, t.defendant.Intent)
	}
	if s.plaintiff {
		out = append(out, t.plaintiff.Intent)
	}
	return out
}
