// Package outcome classifies who won a verdict from its ruling section
// (dómsorð).
package outcome

import (
	"regexp"
	"strings"

	"github.com/TobiSchelling/domar/internal/icelandic"
)

// Outcome is the result for one side of a case.
type Outcome string

const (
	Win     Outcome = "win"
	Loss    Outcome = "loss"
	Unknown Outcome = "unknown"
)

// Known reports whether the outcome counts toward win/loss statistics.
func (o Outcome) Known() bool {
	return o == Win || o == Loss
}

// Pair holds the outcome for both sides. In criminal cases Plaintiff is the
// prosecution and Defendant the defense.
type Pair struct {
	Plaintiff Outcome
	Defendant Outcome
}

var unknownPair = Pair{Unknown, Unknown}

// rulingFallbackLen is how much trailing text stands in for the ruling
// section when no header marker is found.
const rulingFallbackLen = 2000

// Ruling header: "Dómsorð:", "D Ó M S O R Ð", "Úrskurðarorð", followed by a
// line break.
var rulingMarker = regexp.MustCompile(
	`(?i)(?:D\s*[óÓ]\s*M\s*S\s*O\s*R\s*[ðÐ]|Dómsord|Dómsorð|Úrskurðarorð)\s*:?\s*\n`,
)

// criminalParties are plaintiff names that mark a case as criminal.
var criminalParties = []string{
	"ákæruvaldið",
	"ákæruvaldsins",
	"héraðssaksóknari",
	"ríkissaksóknari",
	"ríkislögreglustjóri",
	"lögreglustjórinn",
	"lögreglustjóra",
	"sýslumaðurinn",
	"sýslumaður",
}

// IsCriminal reports whether the plaintiff side of a header names the
// prosecution.
func IsCriminal(header string) bool {
	lower := strings.ToLower(header)
	for _, term := range criminalParties {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

// ExtractRuling returns the text after the ruling header, or the last 2000
// characters when there is no header.
func ExtractRuling(text string) string {
	if loc := rulingMarker.FindStringIndex(text); loc != nil {
		return text[loc[1]:]
	}
	return icelandic.Tail(text, rulingFallbackLen)
}

// Classify extracts the ruling section of a full verdict text and
// classifies it.
func Classify(text string, criminal bool) Pair {
	return ClassifyRuling(ExtractRuling(text), criminal)
}

// ClassifyRuling classifies an already extracted ruling section.
func ClassifyRuling(ruling string, criminal bool) Pair {
	if strings.TrimSpace(ruling) == "" {
		return unknownPair
	}
	if criminal {
		return criminalRules.classify(ruling)
	}
	if strings.Contains(strings.ToLower(ruling), "mál þetta er fellt niður") {
		// Withdrawn: neither side won.
		return unknownPair
	}
	return civilRules.classify(ruling)
}
