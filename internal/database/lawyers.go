package database

import "fmt"

// ResetLawyers removes every lawyer and case appearance. The lawyers run
// rebuilds both tables from scratch.
func (db *DB) ResetLawyers() error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM case_lawyers"); err != nil {
		return fmt.Errorf("clearing case lawyers: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM lawyers"); err != nil {
		return fmt.Errorf("clearing lawyers: %w", err)
	}
	return tx.Commit()
}

// InsertCaseLawyers stores the lawyers appearing in one verdict, creating
// lawyer rows as needed. Repeated (verdict, lawyer, role) triples are
// ignored. Returns the number of appearances stored.
func (db *DB) InsertCaseLawyers(verdictID int64, appearances []CaseLawyer) (int, error) {
	if len(appearances) == 0 {
		return 0, nil
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stored := 0
	for _, a := range appearances {
		if _, err := tx.Exec("INSERT OR IGNORE INTO lawyers (name) VALUES (?)", a.Name); err != nil {
			return 0, fmt.Errorf("inserting lawyer %q: %w", a.Name, err)
		}
		var lawyerID int64
		if err := tx.QueryRow("SELECT id FROM lawyers WHERE name = ?", a.Name).Scan(&lawyerID); err != nil {
			return 0, fmt.Errorf("looking up lawyer %q: %w", a.Name, err)
		}

		result, err := tx.Exec(
			`INSERT OR IGNORE INTO case_lawyers (verdict_id, lawyer_id, role, party_name, outcome)
			VALUES (?, ?, ?, ?, ?)`,
			verdictID, lawyerID, a.Role, a.PartyName, a.Outcome,
		)
		if err != nil {
			return 0, fmt.Errorf("inserting appearance of %q: %w", a.Name, err)
		}
		if n, _ := result.RowsAffected(); n > 0 {
			stored++
		}
	}

	return stored, tx.Commit()
}

// UpdateLawyerStats recomputes case_count, wins and losses for every
// lawyer. Verdicts superseded by a higher court are left out, as are
// appearances whose outcome is unknown.
func (db *DB) UpdateLawyerStats() error {
	_, err := db.conn.Exec(`
UPDATE lawyers SET
    case_count = (
        SELECT COUNT(DISTINCT cl.verdict_id) FROM case_lawyers cl
        JOIN verdicts v ON v.id = cl.verdict_id
        WHERE cl.lawyer_id = lawyers.id AND v.superseded_by IS NULL
          AND cl.outcome IN ('win', 'loss')
    ),
    wins = (
        SELECT COUNT(*) FROM case_lawyers cl
        JOIN verdicts v ON v.id = cl.verdict_id
        WHERE cl.lawyer_id = lawyers.id AND v.superseded_by IS NULL
          AND cl.outcome = 'win'
    ),
    losses = (
        SELECT COUNT(*) FROM case_lawyers cl
        JOIN verdicts v ON v.id = cl.verdict_id
        WHERE cl.lawyer_id = lawyers.id AND v.superseded_by IS NULL
          AND cl.outcome = 'loss'
    )`)
	if err != nil {
		return fmt.Errorf("updating lawyer stats: %w", err)
	}
	return nil
}

// GetTopLawyers returns up to limit lawyers ordered by case count.
func (db *DB) GetTopLawyers(limit int) ([]Lawyer, error) {
	rows, err := db.conn.Query(
		`SELECT id, name, case_count, wins, losses FROM lawyers
		WHERE case_count > 0
		ORDER BY case_count DESC, name LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Lawyer
	for rows.Next() {
		var l Lawyer
		if err := rows.Scan(&l.ID, &l.Name, &l.CaseCount, &l.Wins, &l.Losses); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// GetLawyer returns a lawyer by exact name, or nil if not found.
func (db *DB) GetLawyer(name string) (*Lawyer, error) {
	rows, err := db.conn.Query(
		"SELECT id, name, case_count, wins, losses FROM lawyers WHERE name = ?", name,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	var l Lawyer
	if err := rows.Scan(&l.ID, &l.Name, &l.CaseCount, &l.Wins, &l.Losses); err != nil {
		return nil, err
	}
	return &l, nil
}
