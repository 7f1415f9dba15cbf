package chain

import (
	"github.com/TobiSchelling/domar/internal/court"
	"github.com/TobiSchelling/domar/internal/icelandic"
)

// CaseNumberStats counts the edges found by case-number matching. A lower
// verdict referenced more than once is counted each time.
type CaseNumberStats struct {
	AppellateToDistrict int
	SupremeToAppellate  int
	SupremeToDistrict   int
}

// MatchByCaseNumber links lower court verdicts to the upper court
// verdicts whose opening text cites their case number. Appellate verdicts
// are linked to district verdicts; supreme court verdicts to appellate
// verdicts, or to district verdicts when no appellate case carries the
// number. When several upper verdicts cite the same case, the one seen
// last wins.
func MatchByCaseNumber(verdicts []Verdict) (map[int64]int64, CaseNumberStats) {
	district := make(map[string]int64)
	appellate := make(map[string]int64)
	for _, v := range verdicts {
		switch v.Court {
		case court.District:
			district[court.CaseKey(v.CaseNumber)] = v.ID
		case court.Appellate:
			appellate[court.CaseKey(v.CaseNumber)] = v.ID
		}
	}

	edges := make(map[int64]int64)
	var stats CaseNumberStats

	for _, v := range verdicts {
		if v.Court != court.Appellate && v.Court != court.Supreme {
			continue
		}
		if v.Text == "" {
			continue
		}

		opening := icelandic.Head(v.Text, referenceWindow)
		for _, m := range caseRefPattern.FindAllStringSubmatch(opening, -1) {
			ref := court.CaseKey(m[1])
			if v.Court == court.Appellate {
				if lower, ok := district[ref]; ok {
					edges[lower] = v.ID
					stats.AppellateToDistrict++
				}
				continue
			}
			if lower, ok := appellate[ref]; ok {
				edges[lower] = v.ID
				stats.SupremeToAppellate++
			} else if lower, ok := district[ref]; ok {
				edges[lower] = v.ID
				stats.SupremeToDistrict++
			}
		}
	}

	return edges, stats
}
