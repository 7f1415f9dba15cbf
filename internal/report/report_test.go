package report

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TobiSchelling/domar/internal/chain"
	"github.com/TobiSchelling/domar/internal/court"
	"github.com/TobiSchelling/domar/internal/database"
	"github.com/TobiSchelling/domar/internal/pipeline"
	"github.com/TobiSchelling/domar/internal/scrape"
)

func sample() *Report {
	return &Report{
		Generated: time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC),
		Stats: &database.Stats{
			TotalVerdicts: 12500,
			ByCourt: map[court.Court]int{
				court.District:  10000,
				court.Appellate: 2000,
				court.Supreme:   500,
			},
			WithURL:     2500,
			Superseded:  1500,
			Lawyers:     900,
			Appearances: 20000,
		},
		Chains: &database.ChainSummary{
			Total: 1500,
			ByCourt: map[court.Court]int{
				court.District:  1000,
				court.Appellate: 500,
			},
			ThreeLevel: 120,
		},
	}
}

func sampleRun() *pipeline.Result {
	return &pipeline.Result{
		Steps: []pipeline.StepResult{
			{Name: "Load", Summary: "12500 verdicts"},
			{Name: "Apply", Err: errors.New("disk full")},
		},
		Scrape:      &scrape.Result{Targets: 300, Cached: 250},
		Fingerprint: chain.FingerprintStats{Matched: 40, UniqueDate: 30, Ambiguous: 3},
		Assembly: chain.Assembly{
			Edges: map[int64]int64{1: 2, 3: 4, 5: 6},
			Source: map[int64]chain.Strategy{
				1: chain.ByCaseNumber,
				3: chain.ByScraping,
				5: chain.ByFingerprint,
			},
			Rejected: []chain.Candidate{{Lower: 7, Upper: 8, Strategy: chain.ByFingerprint}},
		},
	}
}

func TestText(t *testing.T) {
	r := sample()
	out := r.Text()

	assert.Contains(t, out, "Verdicts: 12,500")
	assert.Contains(t, out, "Héraðsdómstólar")
	assert.Contains(t, out, "1,000 superseded (10.0%)")
	assert.Contains(t, out, "Three-level chains: 120")
	assert.NotContains(t, out, "Last run")

	r.Run = sampleRun()
	out = r.Text()
	assert.Contains(t, out, "Last run")
	assert.Contains(t, out, "1 links from 300 pages (250 cached)")
	assert.Contains(t, out, "10 scored")
}

func TestMarkdown(t *testing.T) {
	r := sample()
	r.Run = sampleRun()
	out := r.Markdown()

	assert.True(t, strings.HasPrefix(out, "# Appeal chains"))
	assert.Contains(t, out, "_Generated 2024-03-01 12:30_")
	assert.Contains(t, out, "| Landsréttur | 2,000 | 500 | 25.0% |")
	assert.Contains(t, out, "| Hæstiréttur | 500 | 0 | 0.0% |")
	assert.Contains(t, out, "| **Total** | 12,500 | 1,500 | 12.0% |")
	assert.Contains(t, out, "| Rejected | 1 |")
	assert.Contains(t, out, "| Written | no |")
	assert.Contains(t, out, "- **Apply**: failed: disk full")
}

func TestPercentWithoutVerdicts(t *testing.T) {
	assert.Equal(t, "-", percent(3, 0))
	assert.Equal(t, "50.0%", percent(1, 2))
}

func TestHTML(t *testing.T) {
	html, err := sample().HTML()
	require.NoError(t, err)

	assert.Contains(t, html, "<h1>Appeal chains</h1>")
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "<td>Héraðsdómstólar</td>")
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	r := sample()

	mdPath := filepath.Join(dir, "out", "chains.md")
	require.NoError(t, r.Write(mdPath))
	data, err := os.ReadFile(mdPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# Appeal chains"))

	htmlPath := filepath.Join(dir, "chains.HTML")
	require.NoError(t, r.Write(htmlPath))
	data, err = os.ReadFile(htmlPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "<!DOCTYPE html>"))
}

func TestBuild(t *testing.T) {
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	lower, err := db.InsertVerdict(court.District, "E-1/2019", "2019-E-0001.txt", "Héraðsdómur", nil)
	require.NoError(t, err)
	upper, err := db.InsertVerdict(court.Appellate, "1/2020", "2020-0001.txt", "Landsréttur", nil)
	require.NoError(t, err)
	require.NoError(t, db.ApplyChains(map[int64]int64{lower: upper}))

	r, err := Build(db, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Stats.TotalVerdicts)
	assert.Equal(t, 1, r.Chains.Total)
	assert.Contains(t, r.Text(), "1 superseded (100.0%)")
}
