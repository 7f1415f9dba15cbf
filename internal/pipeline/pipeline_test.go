package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TobiSchelling/domar/internal/chain"
	"github.com/TobiSchelling/domar/internal/court"
	"github.com/TobiSchelling/domar/internal/database"
	"github.com/TobiSchelling/domar/internal/scrape"
)

const appellateURL = "https://www.landsrettur.is/domar-og-urskurdir/domur-urskurdur/?Id=7&verdictid=3f2504e0-4f89-11d3-9a0c-0305e82c3301"

type fixture struct {
	db                           *database.DB
	district, appellate, supreme int64
	anonDistrict, anonAppellate  int64
}

func setup(t *testing.T, supremeURL string) fixture {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	insert := func(c court.Court, caseNumber, filename, text string, url *string) int64 {
		id, err := db.InsertVerdict(c, caseNumber, filename, text, url)
		require.NoError(t, err)
		require.NotZero(t, id)
		return id
	}
	lrURL := appellateURL

	f := fixture{db: db}
	f.district = insert(court.District, "E-100/2019", "2019-E-0100.txt",
		"Dómur Héraðsdóms Reykjavíkur. Stefnandi krefst greiðslu.", nil)
	f.appellate = insert(court.Appellate, "50/2020", "2020-0050.txt",
		"Dómur Landsréttar. Áfrýjað er dómi Héraðsdóms Reykjavíkur í máli nr. E-100/2019.", &lrURL)
	f.supreme = insert(court.Supreme, "1/2021", "2021-0001.txt",
		"Dómur Hæstaréttar. Málið varðar kröfu um greiðslu.", &supremeURL)

	district := "Dómur Héraðsdóms Reykjavíkur 7. nóvember 2016\n(Jón Pálsson lögmaður)\n"
	f.anonDistrict = insert(court.District, "S-1/2016", "2016-S-0001.txt", district, nil)
	f.anonAppellate = insert(court.Appellate, "100/2017", "2017-0100.txt",
		"Dómur Landsréttar\nÁfrýjað er dómi Héraðsdóms Reykjavíkur 7. nóvember 2016 í málinu nr. S-[…]/2016.\n"+district, nil)
	return f
}

func newCourtSite(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><body><span id="verdict-url">%s</span></body></html>`, appellateURL)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRunBuildsAllChains(t *testing.T) {
	srv := newCourtSite(t)
	f := setup(t, srv.URL+"/domar/1-2021")
	cachePath := filepath.Join(t.TempDir(), "appeal_links.json")

	p := New(f.db, Options{
		LinkCachePath: cachePath,
		Scrape:        scrape.Options{BatchDelay: time.Millisecond},
	})
	r := p.Run(context.Background())

	require.NoError(t, r.Failed())
	require.Len(t, r.Steps, 6)
	assert.True(t, r.Applied)
	assert.Equal(t, 5, r.Verdicts)
	assert.Equal(t, 1, r.CaseNumber.AppellateToDistrict)
	require.NotNil(t, r.Scrape)
	assert.Equal(t, 1, r.Scrape.Matched)
	assert.Equal(t, 1, r.Fingerprint.Matched)

	assert.Equal(t, map[int64]int64{
		f.district:     f.appellate,
		f.appellate:    f.supreme,
		f.anonDistrict: f.anonAppellate,
	}, r.Assembly.Edges)
	assert.Equal(t, map[chain.Strategy]int{
		chain.ByCaseNumber:  1,
		chain.ByScraping:    1,
		chain.ByFingerprint: 1,
	}, r.Assembly.BySource())

	summary, err := f.db.GetChainSummary()
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 1, summary.ThreeLevel)

	path, err := f.db.GetChainPath(f.district)
	require.NoError(t, err)
	require.Len(t, path, 3)
	assert.Equal(t, f.supreme, path[2].ID)

	cache, err := scrape.LoadLinkCache(cachePath)
	require.NoError(t, err)
	assert.Equal(t, appellateURL, cache[srv.URL+"/domar/1-2021"])
}

func TestRunDryRunWritesNothing(t *testing.T) {
	f := setup(t, "http://127.0.0.1:1/unused")

	r := New(f.db, Options{SkipScrape: true, DryRun: true}).Run(context.Background())

	require.NoError(t, r.Failed())
	assert.False(t, r.Applied)
	assert.Nil(t, r.Scrape)
	assert.Equal(t, "Skipped", r.Steps[2].Summary)
	assert.Len(t, r.Assembly.Edges, 2)

	upper, err := f.db.GetChain(f.district)
	require.NoError(t, err)
	assert.Nil(t, upper)
}

func TestRunReplacesPreviousChains(t *testing.T) {
	f := setup(t, "http://127.0.0.1:1/unused")
	require.NoError(t, f.db.ApplyChains(map[int64]int64{f.appellate: f.supreme}))

	r := New(f.db, Options{SkipScrape: true}).Run(context.Background())
	require.NoError(t, r.Failed())

	upper, err := f.db.GetChain(f.appellate)
	require.NoError(t, err)
	assert.Nil(t, upper)

	upper, err = f.db.GetChain(f.district)
	require.NoError(t, err)
	require.NotNil(t, upper)
	assert.Equal(t, f.appellate, *upper)
}

func TestRunStopsWhenCancelled(t *testing.T) {
	srv := newCourtSite(t)
	f := setup(t, srv.URL+"/domar/1-2021")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := New(f.db, Options{}).Run(ctx)

	err := r.Failed()
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, r.Applied)

	summary, err := f.db.GetChainSummary()
	require.NoError(t, err)
	assert.Zero(t, summary.Total)
}
