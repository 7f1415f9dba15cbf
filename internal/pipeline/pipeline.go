package pipeline

import (
	"context"
	"fmt"
	"log"

	"github.com/TobiSchelling/domar/internal/chain"
	"github.com/TobiSchelling/domar/internal/court"
	"github.com/TobiSchelling/domar/internal/database"
	"github.com/TobiSchelling/domar/internal/scrape"
)

// StepResult holds the result of a single pipeline step.
type StepResult struct {
	Name    string
	Summary string
	Err     error
}

// Result holds the results of a chain-building run.
type Result struct {
	Steps []StepResult

	Verdicts    int
	CaseNumber  chain.CaseNumberStats
	Scrape      *scrape.Result
	Fingerprint chain.FingerprintStats
	Assembly    chain.Assembly
	Applied     bool
}

// Failed reports whether any step returned an error.
func (r *Result) Failed() error {
	for _, s := range r.Steps {
		if s.Err != nil {
			return fmt.Errorf("%s: %w", s.Name, s.Err)
		}
	}
	return nil
}

// Options configures a chain-building run.
type Options struct {
	// SkipScrape disables the appeal-link scraper.
	SkipScrape bool
	// DryRun computes the links without writing them.
	DryRun bool
	// LinkCachePath is where scraped links are kept between runs. Empty
	// disables the cache file.
	LinkCachePath string
	MinYear       int
	Scrape        scrape.Options
}

// Pipeline orchestrates the steps that link lower court verdicts to the
// verdicts superseding them.
type Pipeline struct {
	db      *database.DB
	opts    Options
	scraper *scrape.Scraper
}

// New creates a new pipeline.
func New(db *database.DB, opts Options) *Pipeline {
	if opts.MinYear == 0 {
		opts.MinYear = scrape.DefaultMinYear
	}
	return &Pipeline{
		db:      db,
		opts:    opts,
		scraper: scrape.NewScraper(opts.Scrape),
	}
}

// Run executes the pipeline. Store errors stop the run and are recorded
// on the failing step; scraping problems only cost the scraped links.
func (p *Pipeline) Run(ctx context.Context) *Result {
	r := &Result{}

	// Step 1: Load
	verdicts, step := p.load()
	r.Steps = append(r.Steps, step)
	if step.Err != nil {
		return r
	}
	r.Verdicts = len(verdicts)

	// Step 2: Case numbers
	log.Println("Step 2/6: Matching cited case numbers...")
	caseEdges, caseStats := chain.MatchByCaseNumber(verdicts)
	r.CaseNumber = caseStats
	r.Steps = append(r.Steps, StepResult{
		Name: "Case numbers",
		Summary: fmt.Sprintf("%d links (appellate->district %d, supreme->appellate %d, supreme->district %d)",
			len(caseEdges), caseStats.AppellateToDistrict, caseStats.SupremeToAppellate, caseStats.SupremeToDistrict),
	})

	// Step 3: Scrape
	scrapedEdges, step := p.runScrape(ctx, verdicts, r)
	r.Steps = append(r.Steps, step)
	if err := ctx.Err(); err != nil {
		r.Steps = append(r.Steps, StepResult{Name: "Fingerprint", Err: err})
		return r
	}

	// Step 4: Fingerprint
	log.Println("Step 4/6: Matching anonymized cases by fingerprint...")
	fpEdges, fpStats := chain.MatchByFingerprint(verdicts, chain.Targets(caseEdges, scrapedEdges))
	r.Fingerprint = fpStats
	r.Steps = append(r.Steps, StepResult{
		Name: "Fingerprint",
		Summary: fmt.Sprintf("%d candidates: %d matched (%d unique date, %d scored), %d ambiguous",
			fpStats.Candidates, fpStats.Matched, fpStats.UniqueDate, fpStats.Scored(), fpStats.Ambiguous),
	})

	// Step 5: Assemble
	log.Println("Step 5/6: Assembling chains...")
	r.Assembly = chain.Assemble(courtsOf(verdicts), caseEdges, scrapedEdges, fpEdges)
	bySource := r.Assembly.BySource()
	r.Steps = append(r.Steps, StepResult{
		Name: "Assemble",
		Summary: fmt.Sprintf("%d links (%d case number, %d scraped, %d fingerprint), %d rejected",
			len(r.Assembly.Edges), bySource[chain.ByCaseNumber], bySource[chain.ByScraping],
			bySource[chain.ByFingerprint], len(r.Assembly.Rejected)),
	})

	// Step 6: Apply
	r.Steps = append(r.Steps, p.apply(r))
	return r
}

func (p *Pipeline) load() ([]chain.Verdict, StepResult) {
	log.Println("Step 1/6: Loading verdicts...")
	texts, err := p.db.ListVerdictTexts()
	if err != nil {
		return nil, StepResult{Name: "Load", Err: err}
	}

	verdicts := make([]chain.Verdict, 0, len(texts))
	perCourt := make(map[court.Court]int)
	for _, t := range texts {
		v := chain.Verdict{
			ID:         t.ID,
			Court:      t.Court,
			CaseNumber: t.CaseNumber,
			Text:       t.Content,
		}
		if t.VerdictURL != nil {
			v.URL = *t.VerdictURL
		}
		verdicts = append(verdicts, v)
		perCourt[t.Court]++
	}

	return verdicts, StepResult{
		Name: "Load",
		Summary: fmt.Sprintf("%d verdicts (%d district, %d appellate, %d supreme)",
			len(verdicts), perCourt[court.District], perCourt[court.Appellate], perCourt[court.Supreme]),
	}
}

func (p *Pipeline) runScrape(ctx context.Context, verdicts []chain.Verdict, r *Result) (map[int64]int64, StepResult) {
	if p.opts.SkipScrape {
		return nil, StepResult{Name: "Scrape", Summary: "Skipped"}
	}
	log.Println("Step 3/6: Scraping appeal links...")

	cache := scrape.LinkCache{}
	if p.opts.LinkCachePath != "" {
		loaded, err := scrape.LoadLinkCache(p.opts.LinkCachePath)
		if err != nil {
			log.Printf("Ignoring link cache: %v", err)
		} else {
			cache = loaded
		}
	}

	edges, res := p.scraper.Link(ctx, verdicts, cache, p.opts.MinYear)
	r.Scrape = res

	step := StepResult{
		Name: "Scrape",
		Summary: fmt.Sprintf("%d pages (%d cached, %d fetched): %d links, %d matched",
			res.Targets, res.Cached, res.Fetched, res.Found, res.Matched),
	}
	if p.opts.LinkCachePath != "" {
		if err := cache.Save(p.opts.LinkCachePath); err != nil {
			log.Printf("Error saving link cache: %v", err)
		}
	}
	return edges, step
}

func (p *Pipeline) apply(r *Result) StepResult {
	if p.opts.DryRun {
		return StepResult{
			Name:    "Apply",
			Summary: fmt.Sprintf("[dry-run] Would write %d links", len(r.Assembly.Edges)),
		}
	}

	log.Println("Step 6/6: Writing chains...")
	if err := p.db.ApplyChains(r.Assembly.Edges); err != nil {
		return StepResult{Name: "Apply", Err: err}
	}
	r.Applied = true
	return StepResult{
		Name:    "Apply",
		Summary: fmt.Sprintf("Wrote %d links", len(r.Assembly.Edges)),
	}
}

func courtsOf(verdicts []chain.Verdict) map[int64]court.Court {
	out := make(map[int64]court.Court, len(verdicts))
	for _, v := range verdicts {
		out[v.ID] = v.Court
	}
	return out
}
