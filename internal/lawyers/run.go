package lawyers

import (
	"context"
	"fmt"
	"log"

	"github.com/TobiSchelling/domar/internal/database"
	"github.com/TobiSchelling/domar/internal/outcome"
)

const progressEvery = 1000

// Result holds the results of a lawyers run.
type Result struct {
	Processed   int
	WithLawyers int
	Appearances int
	Errors      int
}

// Runner rebuilds the lawyer tables from the stored verdicts.
type Runner struct {
	db        *database.DB
	extractor *Extractor
	// Verbose logs which outcome rules fired for every verdict with lawyers.
	Verbose bool
}

// NewRunner creates a runner that extracts lawyers with extractor.
func NewRunner(db *database.DB, extractor *Extractor) *Runner {
	return &Runner{db: db, extractor: extractor}
}

// Run clears the lawyer tables, extracts appearances from every verdict
// and recomputes per-lawyer statistics. Per-verdict failures are counted;
// store failures abort the run.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	verdicts, err := r.db.ListVerdictTexts()
	if err != nil {
		return nil, fmt.Errorf("loading verdicts: %w", err)
	}
	if err := r.db.ResetLawyers(); err != nil {
		return nil, err
	}

	log.Printf("Processing %d verdicts...", len(verdicts))

	res := &Result{}
	for i, v := range verdicts {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if (i+1)%progressEvery == 0 {
			log.Printf("  %d/%d...", i+1, len(verdicts))
		}
		if v.Content == "" {
			continue
		}
		res.Processed++

		appearances := r.extractor.Extract(v.Content)
		if len(appearances) == 0 {
			continue
		}
		res.WithLawyers++

		if r.Verbose {
			r.explain(v)
		}

		n, err := r.db.InsertCaseLawyers(v.ID, toRows(v.ID, appearances))
		if err != nil {
			log.Printf("Error storing lawyers of verdict %d: %v", v.ID, err)
			res.Errors++
			continue
		}
		res.Appearances += n
	}

	log.Println("Aggregating statistics...")
	if err := r.db.UpdateLawyerStats(); err != nil {
		return res, err
	}

	log.Printf("Lawyers complete: %d verdicts with lawyers of %d, %d appearances, %d errors",
		res.WithLawyers, res.Processed, res.Appearances, res.Errors)
	return res, nil
}

func (r *Runner) explain(v database.VerdictText) {
	criminal := isCriminal(v.Content)
	intents := outcome.Explain(outcome.ExtractRuling(v.Content), criminal)
	log.Printf("verdict %d (%s %s): criminal=%t signals=%v",
		v.ID, v.Court, v.CaseNumber, criminal, intents)
}

func toRows(verdictID int64, appearances []Appearance) []database.CaseLawyer {
	rows := make([]database.CaseLawyer, 0, len(appearances))
	for _, a := range appearances {
		rows = append(rows, database.CaseLawyer{
			VerdictID: verdictID,
			Name:      a.Name,
			Role:      string(a.Role),
			Outcome:   string(a.Outcome),
		})
	}
	return rows
}
