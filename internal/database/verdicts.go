package database

import (
	"database/sql"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/TobiSchelling/domar/internal/court"
)

const verdictColumns = `v.id, v.court, v.case_number, v.filename, v.text_length, v.verdict_url, v.superseded_by`

// InsertVerdict stores a verdict and its text. Returns the ID on success,
// 0 if a verdict with the same court and filename already exists.
func (db *DB) InsertVerdict(c court.Court, caseNumber, filename, content string, url *string) (int64, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`INSERT OR IGNORE INTO verdicts (court, case_number, filename, text_length, verdict_url)
		VALUES (?, ?, ?, ?, ?)`,
		string(c), caseNumber, filename, utf8.RuneCountInString(content), url,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting verdict %s: %w", filename, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return 0, nil
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	if _, err := tx.Exec(
		"INSERT INTO verdicts_fts (rowid, case_number, content) VALUES (?, ?, ?)",
		id, caseNumber, content,
	); err != nil {
		return 0, fmt.Errorf("indexing verdict %s: %w", filename, err)
	}

	return id, tx.Commit()
}

// GetVerdict returns a verdict by ID, or nil if not found.
func (db *DB) GetVerdict(id int64) (*Verdict, error) {
	row := db.conn.QueryRow(
		"SELECT "+verdictColumns+" FROM verdicts v WHERE v.id = ?", id,
	)
	v, err := scanVerdict(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// GetContent returns the full text of a verdict, or "" if it has none.
func (db *DB) GetContent(id int64) (string, error) {
	var content string
	err := db.conn.QueryRow(
		"SELECT content FROM verdicts_fts WHERE rowid = ?", id,
	).Scan(&content)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return content, err
}

// ListVerdicts returns the verdicts of the given courts (all courts when
// none are given), ordered by ID.
func (db *DB) ListVerdicts(courts ...court.Court) ([]Verdict, error) {
	where, args := courtFilter(courts)
	rows, err := db.conn.Query(
		"SELECT "+verdictColumns+" FROM verdicts v"+where+" ORDER BY v.id", args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var verdicts []Verdict
	for rows.Next() {
		v, err := scanVerdict(rows)
		if err != nil {
			return nil, err
		}
		verdicts = append(verdicts, *v)
	}
	return verdicts, rows.Err()
}

// ListVerdictTexts returns verdicts of the given courts together with
// their full text, ordered by ID.
func (db *DB) ListVerdictTexts(courts ...court.Court) ([]VerdictText, error) {
	where, args := courtFilter(courts)
	rows, err := db.conn.Query(
		"SELECT "+verdictColumns+", COALESCE(f.content, '') FROM verdicts v "+
			"LEFT JOIN verdicts_fts f ON f.rowid = v.id"+where+" ORDER BY v.id", args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []VerdictText
	for rows.Next() {
		var (
			vt        VerdictText
			courtName string
			length    sql.NullInt64
		)
		if err := rows.Scan(&vt.ID, &courtName, &vt.CaseNumber, &vt.Filename, &length,
			&vt.VerdictURL, &vt.SupersededBy, &vt.Content); err != nil {
			return nil, err
		}
		vt.Court = court.Court(courtName)
		vt.TextLength = int(length.Int64)
		out = append(out, vt)
	}
	return out, rows.Err()
}

// SetVerdictURL records the court website URL of a verdict.
func (db *DB) SetVerdictURL(id int64, url string) error {
	_, err := db.conn.Exec("UPDATE verdicts SET verdict_url = ? WHERE id = ?", url, id)
	return err
}

func courtFilter(courts []court.Court) (string, []any) {
	clause, args := courtClause(courts)
	if clause == "" {
		return "", nil
	}
	return " WHERE " + clause, args
}

func courtClause(courts []court.Court) (string, []any) {
	if len(courts) == 0 {
		return "", nil
	}
	placeholders := make([]string, len(courts))
	args := make([]any, len(courts))
	for i, c := range courts {
		placeholders[i] = "?"
		args[i] = string(c)
	}
	return "v.court IN (" + strings.Join(placeholders, ", ") + ")", args
}

type scanner interface {
	Scan(dest ...any) error
}

func scanVerdict(s scanner) (*Verdict, error) {
	var (
		v         Verdict
		courtName string
		length    sql.NullInt64
	)
	if err := s.Scan(&v.ID, &courtName, &v.CaseNumber, &v.Filename, &length,
		&v.VerdictURL, &v.SupersededBy); err != nil {
		return nil, err
	}
	v.Court = court.Court(courtName)
	v.TextLength = int(length.Int64)
	return &v, nil
}
