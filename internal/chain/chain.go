// Package chain links lower court verdicts to the higher court verdicts
// that supersede them on appeal.
//
// Three strategies produce candidate links: explicit case-number
// references, appeal links scraped from the supreme court website, and
// fingerprint matching for anonymized district case numbers. Assemble
// merges them into one validated set of edges, keyed by the lower verdict.
package chain

import (
	"regexp"

	"github.com/TobiSchelling/domar/internal/court"
)

// Verdict is the in-memory view of a stored verdict that the matchers
// work on.
type Verdict struct {
	ID         int64
	Court      court.Court
	CaseNumber string
	Text       string
	URL        string
}

// Strategy names the matcher an edge came from.
type Strategy string

const (
	ByCaseNumber  Strategy = "case_number"
	ByScraping    Strategy = "scraped"
	ByFingerprint Strategy = "fingerprint"
)

// Strategies lists the strategies in precedence order.
var Strategies = []Strategy{ByCaseNumber, ByScraping, ByFingerprint}

// Candidate is a proposed link from a lower verdict to the verdict that
// supersedes it.
type Candidate struct {
	Lower    int64
	Upper    int64
	Strategy Strategy
}

// referenceWindow bounds how far into an upper court verdict references
// to the lower court case are looked for.
const referenceWindow = 5000

// "í málinu nr. E-3906/2018", "í máli nr. S-800/2016"
var caseRefPattern = regexp.MustCompile(`(?i)(?:í\s+)?máli?\pL*\s+nr\.\s+([A-Z]-?\d+/\d{4})`)

// Anonymized district case number: "í málinu nr. S-[...]/2016" or "S-[…]/2016".
var anonRefPattern = regexp.MustCompile(`(?i)(?:í\s+)?máli?\pL*\s+nr\.\s+([A-Z])-?\[(?:\.\.\.|…)\]/(\d{4})`)

// Targets returns the set of upper verdict IDs the given edge maps point to.
func Targets(edges ...map[int64]int64) map[int64]bool {
	out := make(map[int64]bool)
	for _, m := range edges {
		for _, upper := range m {
			out[upper] = true
		}
	}
	return out
}

// ByCourt splits verdicts by court, keeping their order.
func ByCourt(verdicts []Verdict) map[court.Court][]Verdict {
	out := make(map[court.Court][]Verdict)
	for _, v := range verdicts {
		out[v.Court] = append(out[v.Court], v)
	}
	return out
}
