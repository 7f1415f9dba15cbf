package scrape

import (
	"context"
	"log"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/TobiSchelling/domar/internal/chain"
	"github.com/TobiSchelling/domar/internal/court"
)

// DefaultMinYear is the first year the appellate court delivered verdicts;
// earlier supreme court verdicts review district courts directly.
const DefaultMinYear = 2018

// Result holds the results of a scraping run.
type Result struct {
	Targets int
	Cached  int
	Fetched int
	Found   int
	Matched int
}

// VerdictID extracts the verdictid query parameter of a verdict URL,
// lowercased. The parameter name is matched case-insensitively.
func VerdictID(rawURL string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", false
	}
	for key, values := range u.Query() {
		if !strings.EqualFold(key, "verdictid") || len(values) == 0 || values[0] == "" {
			continue
		}
		if id, err := uuid.Parse(values[0]); err == nil {
			return id.String(), true
		}
		return strings.ToLower(values[0]), true
	}
	return "", false
}

// Targets returns the supreme court verdicts worth scraping: those with a
// page URL whose case number is from minYear or later.
func Targets(verdicts []chain.Verdict, minYear int) []chain.Verdict {
	var out []chain.Verdict
	for _, v := range verdicts {
		if v.Court != court.Supreme || v.URL == "" {
			continue
		}
		year, ok := court.CaseYear(v.CaseNumber)
		if !ok || year < minYear {
			continue
		}
		out = append(out, v)
	}
	return out
}

// MatchScraped links appellate verdicts to the supreme court verdicts
// whose page points at them, by comparing verdict IDs.
func MatchScraped(supreme, appellate []chain.Verdict, links map[string]string) map[int64]int64 {
	byID := make(map[string]int64)
	for _, v := range appellate {
		if v.Court != court.Appellate {
			continue
		}
		if id, ok := VerdictID(v.URL); ok {
			byID[id] = v.ID
		}
	}

	edges := make(map[int64]int64)
	for _, v := range supreme {
		link := links[v.URL]
		if link == "" {
			continue
		}
		id, ok := VerdictID(link)
		if !ok {
			continue
		}
		if lower, ok := byID[id]; ok {
			edges[lower] = v.ID
		}
	}
	return edges
}

// Link scrapes the pages of eligible supreme court verdicts that are not
// cached yet, records the results in cache and returns appellate ->
// supreme edges for every verdict whose link resolves. A nil cache is
// treated as empty and the fetched links are then not kept.
func (s *Scraper) Link(ctx context.Context, verdicts []chain.Verdict, cache LinkCache, minYear int) (map[int64]int64, *Result) {
	if cache == nil {
		cache = LinkCache{}
	}
	targets := Targets(verdicts, minYear)

	urls := make([]string, 0, len(targets))
	for _, v := range targets {
		urls = append(urls, v.URL)
	}
	missing := cache.Missing(urls)

	r := &Result{Targets: len(targets), Cached: len(urls) - len(missing)}
	log.Printf("Supreme court verdicts from %d: %d (cached %d, to fetch %d)",
		minYear, r.Targets, r.Cached, len(missing))

	if len(missing) > 0 {
		fetched := s.FetchLinks(ctx, missing)
		cache.Merge(fetched)
		r.Fetched = len(fetched)
	}

	for _, u := range urls {
		if cache[u] != "" {
			r.Found++
		}
	}

	byCourt := chain.ByCourt(verdicts)
	edges := MatchScraped(targets, byCourt[court.Appellate], cache)
	r.Matched = len(edges)

	log.Printf("Scraping complete: %d links found, %d matched", r.Found, r.Matched)
	return edges, r
}
