// Package icelandic holds the small language tables and text helpers shared
// by the verdict extractors.
package icelandic

import (
	"strings"
	"unicode/utf8"
)

// Upper is a character class of Icelandic capital letters, for use inside
// regular expressions.
const Upper = `A-ZÁÉÍÓÚÝÞÆÐÖ`

// Lower is the lowercase counterpart of Upper.
const Lower = `a-záéíóúýþæðö`

// Weekdays is a regexp alternation of the weekday names in the accusative
// form used in verdict headers ("mánudaginn 7. nóvember 2016").
const Weekdays = `mánudaginn|þriðjudaginn|miðvikudaginn|fimmtudaginn|föstudaginn|laugardaginn|sunnudaginn`

var months = map[string]int{
	"janúar":    1,
	"febrúar":   2,
	"mars":      3,
	"apríl":     4,
	"maí":       5,
	"júní":      6,
	"júlí":      7,
	"ágúst":     8,
	"september": 9,
	"október":   10,
	"nóvember":  11,
	"desember":  12,
}

// Month resolves an Icelandic month name to 1..12.
func Month(name string) (int, bool) {
	m, ok := months[strings.ToLower(strings.TrimSpace(name))]
	return m, ok
}

// Head returns the first n characters of s, never splitting a rune.
func Head(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// Tail returns the last n characters of s, never splitting a rune.
func Tail(s string, n int) string {
	if n <= 0 {
		return ""
	}
	total := utf8.RuneCountInString(s)
	if total <= n {
		return s
	}
	skip := total - n
	count := 0
	for i := range s {
		if count == skip {
			return s[i:]
		}
		count++
	}
	return ""
}

// Len counts characters rather than bytes.
func Len(s string) int {
	return utf8.RuneCountInString(s)
}

// Fold lowercases a name and collapses its whitespace, for comparisons.
func Fold(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// LastName returns the final word of a full name, lowercased. Patronymics
// (Sigurðsson, Sigurðssonar) vary less under declension than given names.
func LastName(fullName string) string {
	parts := strings.Fields(fullName)
	if len(parts) == 0 {
		return ""
	}
	return strings.ToLower(parts[len(parts)-1])
}
