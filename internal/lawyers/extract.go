// Package lawyers extracts the lawyers named in a verdict header and
// attaches each side's outcome to them.
package lawyers

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/TobiSchelling/domar/internal/icelandic"
	"github.com/TobiSchelling/domar/internal/outcome"
)

// Role is the part a lawyer played in one verdict.
type Role string

const (
	PlaintiffLawyer Role = "plaintiff_lawyer"
	DefendantLawyer Role = "defendant_lawyer"
	Prosecutor      Role = "prosecutor"
	DefenseLawyer   Role = "defense_lawyer"
)

// Appearance is one lawyer named in one verdict.
type Appearance struct {
	Name    string
	Role    Role
	Outcome outcome.Outcome
}

const headerLen = 3000

// Titles is the alternation of professional titles that close a lawyer
// reference: "(Jón Jónsson lögmaður)", "(Anna Sigurðardóttir saksóknari)".
const Titles = `lögmaður|hrl\.|hdl\.|saksóknari|réttargæslumaður|` +
	`settur\s+saksóknari|aðstoðarsaksóknari|ríkissaksóknari|` +
	`sýslumaður|löglærður\s+fulltrúi`

var (
	versusMarker = regexp.MustCompile(`(?i)\ngegn\n`)
	headerMarker = regexp.MustCompile(`(?i)D\s*Ó\s*M\s*U\s*R`)

	// Optional ", 4. prófmál" (Nth bar exam case) before the closing paren.
	referencePattern = regexp.MustCompile(
		`(?i)\(([^()]+?)\s+(?:` + Titles + `)(?:,\s*\d+\.\s*prófmál)?\)`,
	)
	prosecutorTitle = regexp.MustCompile(
		`(?i)(?:saksóknari|settur\s+saksóknari|aðstoðarsaksóknari|ríkissaksóknari|sýslumaður|settur\s+sýslumaður)`,
	)

	examSuffix = regexp.MustCompile(`(?i),?\s*\d+\.\s*prófmál.*$`)
	// A title in the middle of a shared parenthetical; the next name must
	// start with a capital, which is checked separately (RE2 has no
	// lookahead).
	midTitle      = regexp.MustCompile(`(?i)(?:lögmaður|hrl\.|hdl\.|saksóknari|réttargæslumaður)[,\s]+`)
	trailingTitle = regexp.MustCompile(`(?i)[,\s]+(?:` + Titles + `)[\s,]*$`)
	initialDot    = regexp.MustCompile(`\.([` + icelandic.Upper + `])`)
)

// Extractor pulls lawyer appearances out of verdict texts. It is safe for
// concurrent use; the alias table is never modified.
type Extractor struct {
	aliases Aliases
}

// NewExtractor creates an extractor resolving names through aliases, which
// may be nil.
func NewExtractor(aliases Aliases) *Extractor {
	return &Extractor{aliases: aliases}
}

// Extract returns the lawyers named in the header of a verdict, each with
// the outcome of their side. It returns nil when no "gegn" (versus) line is
// found near the top of the text.
func (e *Extractor) Extract(text string) []Appearance {
	plaintiffSide, defendantSide, ok := splitParties(text)
	if !ok {
		return nil
	}

	criminal := outcome.IsCriminal(plaintiffSide)
	result := outcome.Classify(text, criminal)

	var out []Appearance
	for _, m := range referencePattern.FindAllStringSubmatch(plaintiffSide, -1) {
		role := PlaintiffLawyer
		if criminal && prosecutorTitle.MatchString(m[0]) {
			role = Prosecutor
		}
		for _, name := range SplitNames(m[1]) {
			out = append(out, Appearance{Name: e.normalize(name), Role: role, Outcome: result.Plaintiff})
		}
	}

	role := DefendantLawyer
	if criminal {
		role = DefenseLawyer
	}
	for _, m := range referencePattern.FindAllStringSubmatch(defendantSide, -1) {
		for _, name := range SplitNames(m[1]) {
			out = append(out, Appearance{Name: e.normalize(name), Role: role, Outcome: result.Defendant})
		}
	}

	return dedupe(out)
}

// splitParties cuts the header of a verdict at its "gegn" line into the
// plaintiff and defendant sides.
func splitParties(text string) (plaintiff, defendant string, ok bool) {
	header := icelandic.Head(text, headerLen)
	loc := versusMarker.FindStringIndex(header)
	if loc == nil {
		return "", "", false
	}
	versus := loc[0]
	start := formalHeaderStart(header, versus)
	return header[start:versus], header[versus:], true
}

// isCriminal looks for a prosecuting party on the plaintiff side. Without a
// "gegn" line the whole header is searched.
func isCriminal(text string) bool {
	plaintiff, _, ok := splitParties(text)
	if !ok {
		plaintiff = icelandic.Head(text, headerLen)
	}
	return outcome.IsCriminal(plaintiff)
}

// formalHeaderStart skips the compressed summary some district court
// documents carry before the formal header. The summary lists every party
// without a "gegn" line, so only the block starting at the second
// "D Ó M U R" marker is parsed.
func formalHeaderStart(header string, versus int) int {
	markers := headerMarker.FindAllStringIndex(header[:versus], 2)
	if len(markers) >= 2 {
		return markers[1][0]
	}
	return 0
}

func dedupe(in []Appearance) []Appearance {
	type key struct {
		name string
		role Role
	}
	seen := make(map[key]bool, len(in))
	var out []Appearance
	for _, a := range in {
		k := key{a.Name, a.Role}
		if a.Name == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, a)
	}
	return out
}

// SplitNames separates several lawyers captured from one parenthetical,
// e.g. "Jón Gunnlaugsson lögmaður, Hlynur Jónsson" or
// "Andri Árnason hrl. Bjarki Diego".
func SplitNames(raw string) []string {
	cleaned := strings.TrimSpace(examSuffix.ReplaceAllString(raw, ""))
	if cleaned == "" {
		return nil
	}

	var parts []string
	last := 0
	for _, loc := range midTitle.FindAllStringIndex(cleaned, -1) {
		next, _ := utf8.DecodeRuneInString(cleaned[loc[1]:])
		if !unicode.IsUpper(next) {
			continue
		}
		parts = append(parts, cleaned[last:loc[0]])
		last = loc[1]
	}
	parts = append(parts, cleaned[last:])

	var names []string
	for _, part := range parts {
		name := trailingTitle.ReplaceAllString(part, "")
		name = strings.TrimSpace(strings.Trim(strings.TrimSpace(name), ","))
		if icelandic.Len(name) >= 3 {
			names = append(names, name)
		}
	}
	return names
}

// NormalizeName collapses whitespace, strips trailing punctuation and puts
// a space after initials ("H.B. Jónsson" becomes "H. B. Jónsson"). Names
// shorter than three characters normalize to "".
func NormalizeName(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	name = strings.TrimRight(name, ".,;:")
	name = initialDot.ReplaceAllString(name, ". $1")
	if icelandic.Len(name) < 3 {
		return ""
	}
	return name
}

func (e *Extractor) normalize(name string) string {
	n := NormalizeName(name)
	if n == "" {
		return ""
	}
	return e.aliases.Resolve(n)
}
