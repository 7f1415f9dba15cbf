package chain

import (
	"sort"

	"github.com/TobiSchelling/domar/internal/court"
)

// Assembly is the validated union of the edges produced by every strategy.
type Assembly struct {
	// Edges maps each lower verdict to the verdict superseding it.
	Edges map[int64]int64
	// Source records which strategy supplied each edge.
	Source map[int64]Strategy
	// Rejected lists edges that did not point to a strictly higher court
	// or would have closed a cycle.
	Rejected []Candidate
}

// BySource counts accepted edges per strategy.
func (a Assembly) BySource() map[Strategy]int {
	out := make(map[Strategy]int, len(Strategies))
	for _, s := range a.Source {
		out[s]++
	}
	return out
}

// Assemble merges the edges of the three strategies. Case-number edges
// come first; scraped and then fingerprint edges only fill in lower
// verdicts that are still unmapped. courts maps every known verdict ID to
// its court and is used to reject edges that do not lead upward.
func Assemble(courts map[int64]court.Court, caseEdges, scrapedEdges, fpEdges map[int64]int64) Assembly {
	a := Assembly{
		Edges:  make(map[int64]int64),
		Source: make(map[int64]Strategy),
	}

	layers := []struct {
		strategy Strategy
		edges    map[int64]int64
	}{
		{ByCaseNumber, caseEdges},
		{ByScraping, scrapedEdges},
		{ByFingerprint, fpEdges},
	}

	for _, layer := range layers {
		for _, lower := range sortedKeys(layer.edges) {
			if _, mapped := a.Edges[lower]; mapped {
				continue
			}
			upper := layer.edges[lower]
			if !a.valid(courts, lower, upper) {
				a.Rejected = append(a.Rejected, Candidate{Lower: lower, Upper: upper, Strategy: layer.strategy})
				continue
			}
			a.Edges[lower] = upper
			a.Source[lower] = layer.strategy
		}
	}

	return a
}

func (a Assembly) valid(courts map[int64]court.Court, lower, upper int64) bool {
	if lower == upper {
		return false
	}
	lc, ok := courts[lower]
	if !ok {
		return false
	}
	uc, ok := courts[upper]
	if !ok || !uc.Above(lc) {
		return false
	}

	// Walk up from upper; reaching lower would close a loop.
	seen := map[int64]bool{upper: true}
	for next, ok := a.Edges[upper]; ok; next, ok = a.Edges[next] {
		if next == lower || seen[next] {
			return false
		}
		seen[next] = true
	}
	return true
}

func sortedKeys(m map[int64]int64) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
