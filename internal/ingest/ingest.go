// Package ingest imports verdict text files into the store.
//
// The expected layout is one directory per court under a root:
//
//	<root>/heradsdomstolar/2020-E-0102.txt
//	<root>/landsrettur/2019-0001.html
//	<root>/haestirettur/urls.json
//
// An optional urls.json in a court directory maps file names to the
// verdict's page on the court website.
package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	readability "github.com/go-shiori/go-readability"

	"github.com/TobiSchelling/domar/internal/court"
	"github.com/TobiSchelling/domar/internal/database"
	"github.com/TobiSchelling/domar/internal/icelandic"
)

// URLIndexFile is the per-court file mapping verdict file names to URLs.
const URLIndexFile = "urls.json"

// minTextLen skips empty or failed conversions.
const minTextLen = 50

const progressEvery = 500

// Result holds the results of an import run.
type Result struct {
	Found      int
	Imported   int
	Duplicates int
	TooShort   int
	Failed     int
	Courts     map[court.Court]int
}

// Importer imports verdict files into the database.
type Importer struct {
	db *database.DB
}

// NewImporter creates a new importer.
func NewImporter(db *database.DB) *Importer {
	return &Importer{db: db}
}

// Import indexes every court directory found under root. Missing court
// directories are skipped; unreadable files are counted as failed.
func (im *Importer) Import(root string) (*Result, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("reading import directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	r := &Result{Courts: make(map[court.Court]int)}
	for _, c := range court.All {
		dir := filepath.Join(root, string(c))
		if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
			log.Printf("Directory not found: %s", dir)
			continue
		}
		if err := im.importCourt(c, dir, r); err != nil {
			return r, err
		}
	}

	log.Printf("Import complete: %d imported, %d duplicates, %d too short, %d failed",
		r.Imported, r.Duplicates, r.TooShort, r.Failed)
	return r, nil
}

func (im *Importer) importCourt(c court.Court, dir string, r *Result) error {
	files, err := verdictFiles(dir)
	if err != nil {
		return err
	}
	urls, err := loadURLIndex(filepath.Join(dir, URLIndexFile))
	if err != nil {
		return err
	}

	log.Printf("%s: found %d files", c.DisplayName(), len(files))
	r.Found += len(files)

	for i, path := range files {
		if (i+1)%progressEvery == 0 {
			log.Printf("  Processing %d/%d...", i+1, len(files))
		}

		name := filepath.Base(path)
		text, err := readText(path, urls[name])
		if err != nil {
			log.Printf("Error reading %s: %v", path, err)
			r.Failed++
			continue
		}
		if icelandic.Len(text) < minTextLen {
			r.TooShort++
			continue
		}

		var pageURL *string
		if u := urls[name]; u != "" {
			pageURL = &u
		}

		id, err := im.db.InsertVerdict(c, CaseNumberFromFilename(name), name, text, pageURL)
		if err != nil {
			return fmt.Errorf("importing %s: %w", path, err)
		}
		if id == 0 {
			r.Duplicates++
			continue
		}
		r.Imported++
		r.Courts[c]++
	}
	return nil
}

func verdictFiles(dir string) ([]string, error) {
	var files []string
	for _, pattern := range []string{"*.txt", "*.html"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}

func loadURLIndex(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading url index: %w", err)
	}
	urls := map[string]string{}
	if err := json.Unmarshal(data, &urls); err != nil {
		return nil, fmt.Errorf("parsing url index %s: %w", path, err)
	}
	return urls, nil
}

// readText returns the text of a verdict file. HTML pages saved from the
// court websites are reduced to their main content.
func readText(path, pageURL string) (string, error) {
	if !strings.EqualFold(filepath.Ext(path), ".html") {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var base *url.URL
	if pageURL != "" {
		base, _ = url.Parse(pageURL)
	}
	if base == nil {
		base = &url.URL{Scheme: "file", Path: path}
	}

	article, err := readability.FromReader(f, base)
	if err != nil {
		return "", fmt.Errorf("extracting text: %w", err)
	}
	return strings.TrimSpace(article.TextContent), nil
}

var (
	chronoPrefixed = regexp.MustCompile(`^(\d{4})-([A-Z])-(\d+)$`)
	chronoPlain    = regexp.MustCompile(`^(\d{4})-(\d+)$`)
	legacyPrefixed = regexp.MustCompile(`^([A-Z])-(\d+)_(\d{4})$`)
	legacyPlain    = regexp.MustCompile(`^(\d+)_+(\d{4})$`)
)

// CaseNumberFromFilename derives a case number from a verdict file name:
// "2020-E-0102.txt" becomes "E-102/2020", "2018-0001.txt" becomes
// "1/2018". Legacy names "E-102_2020.txt" and "1_2018.txt" are also
// understood. Anything else is returned without its extension.
func CaseNumberFromFilename(filename string) string {
	name := strings.TrimSuffix(filename, filepath.Ext(filename))

	if m := chronoPrefixed.FindStringSubmatch(name); m != nil {
		return fmt.Sprintf("%s-%s/%s", m[2], trimZeros(m[3]), m[1])
	}
	if m := chronoPlain.FindStringSubmatch(name); m != nil {
		return fmt.Sprintf("%s/%s", trimZeros(m[2]), m[1])
	}
	if m := legacyPrefixed.FindStringSubmatch(name); m != nil {
		return fmt.Sprintf("%s-%s/%s", m[1], m[2], m[3])
	}
	if m := legacyPlain.FindStringSubmatch(name); m != nil {
		return fmt.Sprintf("%s/%s", m[1], m[2])
	}
	return name
}

func trimZeros(num string) string {
	if n := strings.TrimLeft(num, "0"); n != "" {
		return n
	}
	return "0"
}
