package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/TobiSchelling/domar/internal/court"
)

// DefaultSearchLimit caps search results when no limit is given.
const DefaultSearchLimit = 20

// quoteChars are stripped from search input, including the Icelandic „…“
// pair and other typographic quotes.
const quoteChars = "\"'“”„‟‘’‚‛«»"

// SearchResult is one verdict matching a full-text search.
type SearchResult struct {
	Verdict
	// Snippet is a short excerpt with the matched terms in brackets.
	Snippet string
	// Rank is the bm25 score; lower is a better match.
	Rank float64
}

// Search runs a full-text query over verdict texts and case numbers,
// optionally limited to some courts, best matches first. Words match
// independently unless the whole query is wrapped in quotation marks, in
// which case it is searched as a phrase. A query with no words returns no
// results.
func (db *DB) Search(ctx context.Context, query string, limit int, courts ...court.Court) ([]SearchResult, error) {
	match := MatchExpression(query)
	if match == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	clause, args := courtClause(courts)
	if clause != "" {
		clause = " AND " + clause
	}
	args = append([]any{match}, args...)
	args = append(args, limit)

	rows, err := db.conn.QueryContext(ctx,
		"SELECT "+verdictColumns+", snippet(verdicts_fts, 1, '[', ']', '…', 12), verdicts_fts.rank "+
			"FROM verdicts_fts JOIN verdicts v ON v.id = verdicts_fts.rowid "+
			"WHERE verdicts_fts MATCH ?"+clause+" ORDER BY verdicts_fts.rank LIMIT ?",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("searching %q: %w", query, err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		v, err := scanVerdict(rowWithExtra{rows, []any{&r.Snippet, &r.Rank}})
		if err != nil {
			return nil, err
		}
		r.Verdict = *v
		out = append(out, r)
	}
	return out, rows.Err()
}

// MatchExpression turns user input into an FTS5 query. Every word is
// quoted so operators and punctuation are matched literally.
func MatchExpression(query string) string {
	trimmed := strings.TrimSpace(query)
	phrase := isPhrase(trimmed)

	words := strings.Fields(strings.Map(func(r rune) rune {
		if strings.ContainsRune(quoteChars, r) {
			return ' '
		}
		return r
	}, trimmed))
	if len(words) == 0 {
		return ""
	}

	if phrase {
		return `"` + strings.Join(words, " ") + `"`
	}
	for i, w := range words {
		words[i] = `"` + w + `"`
	}
	return strings.Join(words, " OR ")
}

func isPhrase(q string) bool {
	runes := []rune(q)
	if len(runes) < 3 {
		return false
	}
	return strings.ContainsRune(quoteChars, runes[0]) && strings.ContainsRune(quoteChars, runes[len(runes)-1])
}

// rowWithExtra scans a verdict row followed by additional columns.
type rowWithExtra struct {
	s     scanner
	extra []any
}

func (r rowWithExtra) Scan(dest ...any) error {
	return r.s.Scan(append(dest, r.extra...)...)
}
