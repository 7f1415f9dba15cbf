package lawyers

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TobiSchelling/domar/internal/court"
	"github.com/TobiSchelling/domar/internal/database"
)

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRunCountsOnlyFinalVerdicts(t *testing.T) {
	db := openTestDB(t)

	district, err := db.InsertVerdict(court.District, "S-1/2020", "2020-S-0001.txt", criminalVerdict, nil)
	require.NoError(t, err)
	appeal := `Landsréttur
Ákæruvaldið
(Anna Sigurðardóttir saksóknari)
gegn
Jóni Jónssyni
(Jón Gunnlaugsson lögmaður)
Dómsorð:
Ákærði, Jón Jónsson, er sýknaður.
`
	appellate, err := db.InsertVerdict(court.Appellate, "100/2021", "2021-0100.txt", appeal, nil)
	require.NoError(t, err)
	_, err = db.InsertVerdict(court.District, "E-9/2020", "2020-E-0009.txt", "Engir lögmenn í þessu skjali, aðeins texti.", nil)
	require.NoError(t, err)

	require.NoError(t, db.ApplyChains(map[int64]int64{district: appellate}))

	r := NewRunner(db, NewExtractor(nil))
	res, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, res.Processed)
	assert.Equal(t, 2, res.WithLawyers)
	assert.Equal(t, 5, res.Appearances)
	assert.Zero(t, res.Errors)

	prosecutor, err := db.GetLawyer("Anna Sigurðardóttir")
	require.NoError(t, err)
	require.NotNil(t, prosecutor)
	// The district conviction was overturned on appeal; only the acquittal counts.
	assert.Equal(t, 1, prosecutor.CaseCount)
	assert.Equal(t, 0, prosecutor.Wins)
	assert.Equal(t, 1, prosecutor.Losses)

	defense, err := db.GetLawyer("Jón Gunnlaugsson")
	require.NoError(t, err)
	require.NotNil(t, defense)
	assert.Equal(t, 1, defense.Wins)
	assert.Equal(t, 0, defense.Losses)

	hlynur, err := db.GetLawyer("Hlynur Jónsson")
	require.NoError(t, err)
	require.NotNil(t, hlynur)
	assert.Equal(t, 0, hlynur.CaseCount)
}

func TestRunIsRepeatable(t *testing.T) {
	db := openTestDB(t)
	_, err := db.InsertVerdict(court.District, "S-1/2020", "2020-S-0001.txt", criminalVerdict, nil)
	require.NoError(t, err)

	r := NewRunner(db, NewExtractor(nil))
	first, err := r.Run(context.Background())
	require.NoError(t, err)
	second, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.Appearances, second.Appearances)
	stats, err := db.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Appearances)
	assert.Equal(t, 3, stats.Lawyers)
}

func TestRunStopsOnCancel(t *testing.T) {
	db := openTestDB(t)
	_, err := db.InsertVerdict(court.District, "S-1/2020", "2020-S-0001.txt", criminalVerdict, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = NewRunner(db, NewExtractor(nil)).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
