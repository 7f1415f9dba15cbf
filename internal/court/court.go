package court

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Court identifies one of the three Icelandic court levels.
type Court string

const (
	District  Court = "heradsdomstolar"
	Appellate Court = "landsrettur"
	Supreme   Court = "haestirettur"
)

// All lists the courts from lowest to highest.
var All = []Court{District, Appellate, Supreme}

var displayNames = map[Court]string{
	District:  "Héraðsdómstólar",
	Appellate: "Landsréttur",
	Supreme:   "Hæstiréttur",
}

// Parse converts a stored court key into a Court.
func Parse(s string) (Court, error) {
	c := Court(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := displayNames[c]; !ok {
		return "", fmt.Errorf("unknown court: %q", s)
	}
	return c, nil
}

// Rank returns the position in the hierarchy: 1 for the district courts,
// 3 for the supreme court, 0 for an unknown value.
func (c Court) Rank() int {
	switch c {
	case District:
		return 1
	case Appellate:
		return 2
	case Supreme:
		return 3
	}
	return 0
}

// Above reports whether c is strictly higher than other.
func (c Court) Above(other Court) bool {
	return c.Rank() > 0 && other.Rank() > 0 && c.Rank() > other.Rank()
}

// DisplayName returns the Icelandic name of the court.
func (c Court) DisplayName() string {
	if name, ok := displayNames[c]; ok {
		return name
	}
	return string(c)
}

func (c Court) String() string { return string(c) }

var yearPattern = regexp.MustCompile(`/(\d{4})`)

// CaseKey normalizes a case number for lookups: trimmed and uppercased.
func CaseKey(caseNumber string) string {
	return strings.ToUpper(strings.TrimSpace(caseNumber))
}

// CaseYear extracts the four-digit year from a case number like "S-800/2016".
func CaseYear(caseNumber string) (int, bool) {
	m := yearPattern.FindStringSubmatch(caseNumber)
	if m == nil {
		return 0, false
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return year, true
}

// HasPrefix reports whether the case number starts with "<prefix>-",
// ignoring case. District court numbers carry S- (criminal) or E- (civil)
// and similar single-letter prefixes.
func HasPrefix(caseNumber, prefix string) bool {
	return strings.HasPrefix(CaseKey(caseNumber), strings.ToUpper(prefix)+"-")
}
