package chain

import (
	"strconv"

	"github.com/TobiSchelling/domar/internal/court"
	"github.com/TobiSchelling/domar/internal/fingerprint"
	"github.com/TobiSchelling/domar/internal/icelandic"
)

// FingerprintStats counts what fingerprint matching saw and decided.
type FingerprintStats struct {
	// Candidates is the number of appellate verdicts with an anonymized
	// district reference and an extractable fingerprint.
	Candidates int
	// Indexed is the number of district verdicts fingerprinted.
	Indexed int
	// Unindexed is the number of district verdicts skipped because their
	// case number carries no year.
	Unindexed  int
	Matched    int
	UniqueDate int
	// Ambiguous is the number of candidates dropped on a tied score.
	Ambiguous int
}

// Scored is the number of matches decided by score rather than by a
// unique date.
func (s FingerprintStats) Scored() int {
	return s.Matched - s.UniqueDate
}

// minScore requires at least a shared judge or one shared lawyer.
const minScore = 2

type anonymized struct {
	id     int64
	prefix string
	year   int
	fp     fingerprint.Fingerprint
}

type indexed struct {
	id         int64
	caseNumber string
	fp         fingerprint.Fingerprint
}

type indexKey struct {
	year     int
	location string
}

type decision int

const (
	noMatch decision = iota
	uniqueDate
	scored
	tied
)

// MatchByFingerprint links district verdicts to appellate verdicts that
// cite them only by an anonymized case number ("S-[…]/2016"). Appellate
// verdicts in excludedUpper already have a lower verdict and are skipped.
// The appellate fingerprint is read from its reference paragraph and
// quoted district verdict, and compared against district verdicts of the
// same year and location.
func MatchByFingerprint(verdicts []Verdict, excludedUpper map[int64]bool) (map[int64]int64, FingerprintStats) {
	var stats FingerprintStats
	edges := make(map[int64]int64)

	candidates := anonymizedCandidates(verdicts, excludedUpper)
	stats.Candidates = len(candidates)
	if len(candidates) == 0 {
		return edges, stats
	}

	years := make(map[int]bool)
	for _, c := range candidates {
		years[c.year] = true
	}
	index := buildIndex(verdicts, years, &stats)

	for _, c := range candidates {
		pool := index[indexKey{c.fp.Year, c.fp.Location}]
		lower, d := pick(filter(pool, c), c.fp)
		switch d {
		case uniqueDate:
			edges[lower] = c.id
			stats.Matched++
			stats.UniqueDate++
		case scored:
			edges[lower] = c.id
			stats.Matched++
		case tied:
			stats.Ambiguous++
		}
	}

	return edges, stats
}

func anonymizedCandidates(verdicts []Verdict, excludedUpper map[int64]bool) []anonymized {
	var out []anonymized
	for _, v := range verdicts {
		if v.Court != court.Appellate || v.Text == "" || excludedUpper[v.ID] {
			continue
		}
		m := anonRefPattern.FindStringSubmatch(icelandic.Head(v.Text, referenceWindow))
		if m == nil {
			continue
		}
		year, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		fp, ok := fingerprint.Extract(v.Text, fingerprint.Embedded)
		if !ok {
			continue
		}
		out = append(out, anonymized{id: v.ID, prefix: m[1], year: year, fp: fp})
	}
	return out
}

// buildIndex fingerprints district verdicts whose case-number year is
// among years, grouped by the year and location of their header.
func buildIndex(verdicts []Verdict, years map[int]bool, stats *FingerprintStats) map[indexKey][]indexed {
	index := make(map[indexKey][]indexed)
	for _, v := range verdicts {
		if v.Court != court.District || v.Text == "" {
			continue
		}
		year, ok := court.CaseYear(v.CaseNumber)
		if !ok {
			stats.Unindexed++
			continue
		}
		if !years[year] {
			continue
		}
		fp, ok := fingerprint.Extract(v.Text, fingerprint.Standalone)
		if !ok {
			continue
		}
		key := indexKey{fp.Year, fp.Location}
		index[key] = append(index[key], indexed{id: v.ID, caseNumber: v.CaseNumber, fp: fp})
		stats.Indexed++
	}
	return index
}

// filter keeps the district verdicts delivered on the candidate's day and
// month, narrowed to the candidate's case prefix when any match it.
func filter(pool []indexed, c anonymized) []indexed {
	var sameDate []indexed
	for _, d := range pool {
		if d.fp.Day == c.fp.Day && d.fp.Month == c.fp.Month {
			sameDate = append(sameDate, d)
		}
	}

	var samePrefix []indexed
	for _, d := range sameDate {
		if court.HasPrefix(d.caseNumber, c.prefix) {
			samePrefix = append(samePrefix, d)
		}
	}
	if len(samePrefix) > 0 {
		return samePrefix
	}
	return sameDate
}

// pick chooses among same-date district verdicts. A single one is taken
// as is; otherwise the best score wins when it reaches minScore and no
// other verdict has the same positive score.
func pick(matches []indexed, fp fingerprint.Fingerprint) (int64, decision) {
	switch len(matches) {
	case 0:
		return 0, noMatch
	case 1:
		return matches[0].id, uniqueDate
	}

	best := -1
	var bestID int64
	isTied := false
	for _, d := range matches {
		score := fingerprint.Score(fp, d.fp)
		if score > best {
			best = score
			bestID = d.id
			isTied = false
		} else if score == best && score > 0 {
			isTied = true
		}
	}

	if best >= minScore && !isTied {
		return bestID, scored
	}
	if isTied {
		return 0, tied
	}
	return 0, noMatch
}
