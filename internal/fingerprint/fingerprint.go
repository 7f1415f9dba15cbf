// Package fingerprint extracts the identifying features of a district court
// verdict: where and when it was delivered, by which judge, and which
// lawyers appeared. Appellate verdicts that anonymize the district case
// number still quote enough of the district verdict to rebuild these
// features, which is how the two get linked.
package fingerprint

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/TobiSchelling/domar/internal/icelandic"
)

// Mode selects where the district court features are read from.
type Mode int

const (
	// Standalone reads a district court verdict's own header.
	Standalone Mode = iota
	// Embedded reads the reference paragraph of an appellate verdict and
	// the district court verdict quoted inside it.
	Embedded
)

func (m Mode) String() string {
	if m == Embedded {
		return "embedded"
	}
	return "standalone"
}

// Fingerprint holds the features used to pair an appellate verdict with
// the district verdict it reviews.
type Fingerprint struct {
	Location string
	Day      int
	Month    int
	Year     int
	// Judge is the folded name of the presiding judge, "" if not found.
	Judge string
	// Lawyers is the set of lowercased lawyer last names.
	Lawyers map[string]struct{}
}

// LawyerNames returns the lawyer last names in sorted order.
func (f Fingerprint) LawyerNames() []string {
	names := make([]string, 0, len(f.Lawyers))
	for n := range f.Lawyers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

const (
	referenceWindow = 5000
	headerWindow    = 500
	minNameLen      = 3
)

const dateTail = `\s+(?:(?:` + icelandic.Weekdays + `)\s*,?\s+)?(\d{1,2})\.\s+(\pL+)\s+(\d{4})`

var (
	// "Áfrýjað er dómi Héraðsdóms Reykjavíkur 2. desember 2015 í málinu nr. S-[…]/2015"
	referencePattern = regexp.MustCompile(`(?i)Héraðsdóms\s+(.+?)` + dateTail)

	// "Dómur Héraðsdóms Norðurlands eystra mánudaginn 7. nóvember 2016"
	// or "D Ó M U R\nHéraðsdóms Reykjaness ..."
	headerPattern = regexp.MustCompile(
		`(?i)(?:D\s*[óÓ]\s*M\s*U\s*R|Dómur|Úrskurður)\s+Héraðsdóms\s+(.+?)` + dateTail,
	)

	judgePattern = regexp.MustCompile(`[Dd]óm\s+þennan\s+kveður\s+upp\s+(.+?)\s+héraðsdómari`)

	// "(Sigurður Freyr Sigurðsson hdl.)"; the closing paren is not required.
	lawyerParenPattern = regexp.MustCompile(
		`(?i)\(([^()]+?)\s+(?:lögmaður|hrl\.|hdl\.|héraðsdómslögmaður|héraðsdómslögmanns` +
			`|saksóknari|saksóknarfulltrúi|settur\s+saksóknari)`,
	)

	// Fee clause in the ruling, names in the genitive:
	// "málsvarnarlaun verjanda síns, Sigurðar Freys Sigurðssonar héraðsdómslögmanns"
	lawyerFeePattern = regexp.MustCompile(
		`(?s)(?:málsvarnarlaun|málflutningslaun).{0,80}?,` +
			`\s+([` + icelandic.Upper + `][` + icelandic.Lower + `]+(?:\s+[` + icelandic.Upper + `][` + icelandic.Lower + `]+){1,3})\s+` +
			`(?:héraðsdómslögmanns|lögmanns|hrl\.|hdl\.)`,
	)
)

// Extract reads a fingerprint from a verdict text. It reports false when
// no dated district court header can be found or its month name is not
// recognized.
func Extract(text string, mode Mode) (Fingerprint, bool) {
	if mode == Embedded {
		return extractEmbedded(text)
	}
	return extractStandalone(text)
}

func extractStandalone(text string) (Fingerprint, bool) {
	m := headerPattern.FindStringSubmatch(icelandic.Head(text, headerWindow))
	if m == nil {
		return Fingerprint{}, false
	}
	fp, ok := dated(m)
	if !ok {
		return Fingerprint{}, false
	}
	fp.Judge = judge(text)
	fp.Lawyers = lawyerLastNames(text)
	return fp, true
}

func extractEmbedded(text string) (Fingerprint, bool) {
	m := referencePattern.FindStringSubmatch(icelandic.Head(text, referenceWindow))
	if m == nil {
		return Fingerprint{}, false
	}
	fp, ok := dated(m)
	if !ok {
		return Fingerprint{}, false
	}

	// The quoted district verdict runs from its header to the end.
	var section string
	if loc := headerPattern.FindStringIndex(text); loc != nil {
		section = text[loc[0]:]
	}

	if section != "" {
		fp.Judge = judge(section)
		fp.Lawyers = lawyerLastNames(section)
	} else {
		fp.Judge = judge(text)
		fp.Lawyers = map[string]struct{}{}
	}
	return fp, true
}

// dated builds the location and date part of a fingerprint from a header
// or reference match: location, day, month name, year.
func dated(m []string) (Fingerprint, bool) {
	month, ok := icelandic.Month(m[3])
	if !ok {
		return Fingerprint{}, false
	}
	day, err := strconv.Atoi(m[2])
	if err != nil {
		return Fingerprint{}, false
	}
	year, err := strconv.Atoi(m[4])
	if err != nil {
		return Fingerprint{}, false
	}
	return Fingerprint{
		Location: strings.ToLower(strings.TrimRight(m[1], ",.")),
		Day:      day,
		Month:    month,
		Year:     year,
	}, true
}

func judge(text string) string {
	m := judgePattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return icelandic.Fold(m[1])
}

func lawyerLastNames(text string) map[string]struct{} {
	names := make(map[string]struct{})
	for _, m := range lawyerParenPattern.FindAllStringSubmatch(text, -1) {
		name := strings.TrimRight(strings.TrimSpace(m[1]), ",")
		if icelandic.Len(name) >= minNameLen {
			names[icelandic.LastName(name)] = struct{}{}
		}
	}
	for _, m := range lawyerFeePattern.FindAllStringSubmatch(text, -1) {
		name := strings.TrimSpace(m[1])
		if icelandic.Len(name) >= minNameLen {
			names[icelandic.LastName(name)] = struct{}{}
		}
	}
	return names
}

// Score rates how likely two fingerprints with the same place and date
// describe the same verdict: 5 for the same judge plus 2 for every shared
// lawyer last name.
func Score(a, b Fingerprint) int {
	score := 0
	if a.Judge != "" && a.Judge == b.Judge {
		score += 5
	}
	for name := range a.Lawyers {
		if _, ok := b.Lawyers[name]; ok {
			score += 2
		}
	}
	return score
}
