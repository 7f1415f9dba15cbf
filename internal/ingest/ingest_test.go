package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TobiSchelling/domar/internal/court"
	"github.com/TobiSchelling/domar/internal/database"
)

func TestCaseNumberFromFilename(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"2020-E-0102.txt", "E-102/2020"},
		{"2018-0001.txt", "1/2018"},
		{"2018-0000.html", "0/2018"},
		{"E-102_2020.txt", "E-102/2020"},
		{"1_2018.txt", "1/2018"},
		{"45___2016.txt", "45/2016"},
		{"skjal.txt", "skjal"},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, CaseNumberFromFilename(tt.filename))
		})
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestImport(t *testing.T) {
	root := t.TempDir()
	long := strings.Repeat("Héraðsdómur Reykjavíkur kveður upp dóm. ", 3)

	writeFile(t, filepath.Join(root, "heradsdomstolar", "2020-E-0102.txt"), long)
	writeFile(t, filepath.Join(root, "heradsdomstolar", "2020-E-0103.txt"), "of stutt")
	writeFile(t, filepath.Join(root, "heradsdomstolar", "notes.md"), long)
	writeFile(t, filepath.Join(root, "haestirettur", "2021-0005.txt"), long)
	writeFile(t, filepath.Join(root, "haestirettur", URLIndexFile),
		`{"2021-0005.txt": "https://www.haestirettur.is/domar/_domur/?id=abc"}`)

	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	im := NewImporter(db)
	r, err := im.Import(root)
	require.NoError(t, err)

	assert.Equal(t, 3, r.Found)
	assert.Equal(t, 2, r.Imported)
	assert.Equal(t, 1, r.TooShort)
	assert.Equal(t, 1, r.Courts[court.District])
	assert.Equal(t, 1, r.Courts[court.Supreme])

	supreme, err := db.ListVerdicts(court.Supreme)
	require.NoError(t, err)
	require.Len(t, supreme, 1)
	assert.Equal(t, "5/2021", supreme[0].CaseNumber)
	require.NotNil(t, supreme[0].VerdictURL)
	assert.Equal(t, "https://www.haestirettur.is/domar/_domur/?id=abc", *supreme[0].VerdictURL)

	// Re-importing the same tree adds nothing.
	again, err := im.Import(root)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Imported)
	assert.Equal(t, 2, again.Duplicates)
}

func TestImportHTML(t *testing.T) {
	root := t.TempDir()
	body := strings.Repeat("<p>Dómsorð: Stefndi, Sveitarfélagið Hafnarfjörður, er sýkn af kröfum stefnanda í máli þessu.</p>\n", 5)
	writeFile(t, filepath.Join(root, "landsrettur", "2019-0001.html"),
		"<html><head><title>Dómur</title></head><body><article>"+body+"</article></body></html>")

	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	r, err := NewImporter(db).Import(root)
	require.NoError(t, err)
	require.Equal(t, 1, r.Imported)

	texts, err := db.ListVerdictTexts(court.Appellate)
	require.NoError(t, err)
	require.Len(t, texts, 1)
	assert.Equal(t, "1/2019", texts[0].CaseNumber)
	assert.Contains(t, texts[0].Content, "er sýkn af kröfum stefnanda")
	assert.NotContains(t, texts[0].Content, "<p>")
}

func TestImportMissingRoot(t *testing.T) {
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = NewImporter(db).Import(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
