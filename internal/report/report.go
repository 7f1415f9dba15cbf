// Package report renders store statistics and the outcome of a chain
// building run as plain text, markdown or HTML.
package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/TobiSchelling/domar/internal/chain"
	"github.com/TobiSchelling/domar/internal/court"
	"github.com/TobiSchelling/domar/internal/database"
	"github.com/TobiSchelling/domar/internal/pipeline"
)

var md = goldmark.New(goldmark.WithExtensions(extension.Table))

// Report gathers what is printed after a run.
type Report struct {
	Generated time.Time
	Stats     *database.Stats
	Chains    *database.ChainSummary
	// Run is nil when the report only describes the store.
	Run *pipeline.Result
}

// Build collects the current store statistics. run may be nil.
func Build(db *database.DB, run *pipeline.Result) (*Report, error) {
	stats, err := db.GetStats()
	if err != nil {
		return nil, fmt.Errorf("reading stats: %w", err)
	}
	chains, err := db.GetChainSummary()
	if err != nil {
		return nil, fmt.Errorf("reading chain summary: %w", err)
	}
	return &Report{
		Generated: time.Now(),
		Stats:     stats,
		Chains:    chains,
		Run:       run,
	}, nil
}

// Text renders the report for a terminal.
func (r *Report) Text() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Verdicts: %s\n", count(r.Stats.TotalVerdicts))
	for _, c := range court.All {
		fmt.Fprintf(&b, "  %-16s %s\n", c.DisplayName(), count(r.Stats.ByCourt[c]))
	}
	fmt.Fprintf(&b, "With URL: %s\n", count(r.Stats.WithURL))
	fmt.Fprintf(&b, "Lawyers: %s (%s appearances)\n", count(r.Stats.Lawyers), count(r.Stats.Appearances))

	fmt.Fprintf(&b, "\nAppeal chains: %s\n", count(r.Chains.Total))
	for _, c := range court.All {
		if n := r.Chains.ByCourt[c]; n > 0 {
			fmt.Fprintf(&b, "  %-16s %s superseded (%s)\n", c.DisplayName(), count(n), percent(n, r.Stats.ByCourt[c]))
		}
	}
	fmt.Fprintf(&b, "  Three-level chains: %s\n", count(r.Chains.ThreeLevel))

	if r.Run != nil {
		b.WriteString("\nLast run:\n")
		for _, row := range r.sourceRows() {
			fmt.Fprintf(&b, "  %-16s %s\n", row[0], row[1])
		}
	}
	return b.String()
}

// Markdown renders the report as a markdown document.
func (r *Report) Markdown() string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Appeal chains\n\n_Generated %s_\n\n", r.Generated.Format("2006-01-02 15:04"))

	b.WriteString("## Verdicts\n\n| Court | Verdicts | Superseded | Share |\n|---|---:|---:|---:|\n")
	for _, c := range court.All {
		n := r.Chains.ByCourt[c]
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
			c.DisplayName(), count(r.Stats.ByCourt[c]), count(n), percent(n, r.Stats.ByCourt[c]))
	}
	fmt.Fprintf(&b, "| **Total** | %s | %s | %s |\n\n",
		count(r.Stats.TotalVerdicts), count(r.Chains.Total), percent(r.Chains.Total, r.Stats.TotalVerdicts))

	fmt.Fprintf(&b, "- Three-level chains (district → appellate → supreme): %s\n", count(r.Chains.ThreeLevel))
	fmt.Fprintf(&b, "- Verdicts with a court website URL: %s\n", count(r.Stats.WithURL))
	fmt.Fprintf(&b, "- Lawyers: %s, appearances: %s\n", count(r.Stats.Lawyers), count(r.Stats.Appearances))

	if r.Run != nil {
		b.WriteString("\n## Last run\n\n| Source | Result |\n|---|---|\n")
		for _, row := range r.sourceRows() {
			fmt.Fprintf(&b, "| %s | %s |\n", row[0], row[1])
		}
		if len(r.Run.Steps) > 0 {
			b.WriteString("\n### Steps\n\n")
			for _, s := range r.Run.Steps {
				if s.Err != nil {
					fmt.Fprintf(&b, "- **%s**: failed: %v\n", s.Name, s.Err)
					continue
				}
				fmt.Fprintf(&b, "- **%s**: %s\n", s.Name, s.Summary)
			}
		}
	}
	return b.String()
}

// HTML renders the markdown report to a standalone HTML page.
func (r *Report) HTML() (string, error) {
	var body bytes.Buffer
	if err := md.Convert([]byte(r.Markdown()), &body); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return "<!DOCTYPE html>\n<html lang=\"is\">\n<head><meta charset=\"utf-8\"><title>Appeal chains</title></head>\n<body>\n" +
		body.String() + "</body>\n</html>\n", nil
}

// Write saves the report to path, as HTML when the extension is .html or
// .htm and as markdown otherwise.
func (r *Report) Write(path string) error {
	content := r.Markdown()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		html, err := r.HTML()
		if err != nil {
			return err
		}
		content = html
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating report directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

func (r *Report) sourceRows() [][2]string {
	run := r.Run
	bySource := run.Assembly.BySource()

	rows := [][2]string{
		{"Case numbers", fmt.Sprintf("%s links", count(bySource[chain.ByCaseNumber]))},
	}
	if run.Scrape != nil {
		rows = append(rows, [2]string{"Scraped", fmt.Sprintf("%s links from %s pages (%s cached)",
			count(bySource[chain.ByScraping]), count(run.Scrape.Targets), count(run.Scrape.Cached))})
	} else {
		rows = append(rows, [2]string{"Scraped", "skipped"})
	}
	fp := run.Fingerprint
	rows = append(rows,
		[2]string{"Fingerprint", fmt.Sprintf("%s links (%s unique date, %s scored, %s ambiguous)",
			count(bySource[chain.ByFingerprint]), count(fp.UniqueDate), count(fp.Scored()), count(fp.Ambiguous))},
		[2]string{"Rejected", count(len(run.Assembly.Rejected))},
	)
	if !run.Applied {
		rows = append(rows, [2]string{"Written", "no"})
	}
	return rows
}

func count(n int) string {
	return humanize.Comma(int64(n))
}

func percent(n, total int) string {
	if total == 0 {
		return "-"
	}
	return humanize.FormatFloat("#,###.#", float64(n)*100/float64(total)) + "%"
}
