package database

import "database/sql"

// Migration represents a single schema migration step.
type Migration struct {
	Version     int
	Description string
	Up          func(tx *sql.Tx) error
}

// migrations is the ordered list of all schema migrations.
// Append new migrations to the end with incrementing Version numbers.
var migrations = []Migration{
	{
		Version:     1,
		Description: "verdicts and full-text content",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS verdicts (
    id INTEGER PRIMARY KEY,
    court TEXT NOT NULL,
    case_number TEXT NOT NULL,
    filename TEXT NOT NULL,
    text_length INTEGER,
    verdict_url TEXT,
    superseded_by INTEGER REFERENCES verdicts(id),
    UNIQUE(court, filename)
);

CREATE VIRTUAL TABLE IF NOT EXISTS verdicts_fts USING fts5(
    case_number,
    content,
    content_rowid='id'
);

CREATE INDEX IF NOT EXISTS idx_court ON verdicts(court);
CREATE INDEX IF NOT EXISTS idx_case_number ON verdicts(case_number);
`)
			return err
		},
	},
	{
		Version:     2,
		Description: "verdict urls and appeal chains",
		Up: func(tx *sql.Tx) error {
			if err := ensureColumn(tx, "verdicts", "verdict_url", "TEXT"); err != nil {
				return err
			}
			if err := ensureChainColumn(tx); err != nil {
				return err
			}
			_, err := tx.Exec(`CREATE VIRTUAL TABLE IF NOT EXISTS verdicts_fts USING fts5(
    case_number,
    content,
    content_rowid='id'
)`)
			return err
		},
	},
	{
		Version:     3,
		Description: "lawyers and case appearances",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS lawyers (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    case_count INTEGER DEFAULT 0,
    wins INTEGER DEFAULT 0,
    losses INTEGER DEFAULT 0
);

CREATE TABLE IF NOT EXISTS case_lawyers (
    id INTEGER PRIMARY KEY,
    verdict_id INTEGER NOT NULL REFERENCES verdicts(id),
    lawyer_id INTEGER NOT NULL REFERENCES lawyers(id),
    role TEXT NOT NULL,
    party_name TEXT,
    outcome TEXT,
    UNIQUE(verdict_id, lawyer_id, role)
);

CREATE INDEX IF NOT EXISTS idx_case_lawyers_verdict ON case_lawyers(verdict_id);
CREATE INDEX IF NOT EXISTS idx_case_lawyers_lawyer ON case_lawyers(lawyer_id);
`)
			return err
		},
	},
}

// ensureChainColumn makes sure verdicts.superseded_by and its index exist.
func ensureChainColumn(q querier) error {
	if err := ensureColumn(q, "verdicts", "superseded_by", "INTEGER REFERENCES verdicts(id)"); err != nil {
		return err
	}
	_, err := q.Exec("CREATE INDEX IF NOT EXISTS idx_verdicts_superseded ON verdicts(superseded_by)")
	return err
}

// latestVersion returns the highest migration version number.
func latestVersion() int {
	if len(migrations) == 0 {
		return 0
	}
	return migrations[len(migrations)-1].Version
}
