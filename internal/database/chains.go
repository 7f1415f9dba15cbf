package database

import (
	"database/sql"
	"fmt"
	"sort"

	"github.com/TobiSchelling/domar/internal/court"
)

// EnsureChainSchema adds the superseded_by column and its index when a
// store predates them. Safe to call repeatedly.
func (db *DB) EnsureChainSchema() error {
	if err := ensureChainColumn(db.conn); err != nil {
		return fmt.Errorf("ensuring chain schema: %w", err)
	}
	return nil
}

// ApplyChains replaces every stored appeal link with edges, a map of lower
// verdict ID to the ID of the verdict that supersedes it. Existing links
// are cleared and the new ones written in a single transaction, so
// applying the same edges twice leaves the store unchanged.
func (db *DB) ApplyChains(edges map[int64]int64) error {
	if err := db.EnsureChainSchema(); err != nil {
		return err
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("applying chains: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("UPDATE verdicts SET superseded_by = NULL WHERE superseded_by IS NOT NULL"); err != nil {
		return fmt.Errorf("clearing chains: %w", err)
	}

	stmt, err := tx.Prepare("UPDATE verdicts SET superseded_by = ? WHERE id = ?")
	if err != nil {
		return fmt.Errorf("applying chains: %w", err)
	}
	defer stmt.Close()

	lowers := make([]int64, 0, len(edges))
	for lower := range edges {
		lowers = append(lowers, lower)
	}
	sort.Slice(lowers, func(i, j int) bool { return lowers[i] < lowers[j] })

	for _, lower := range lowers {
		if _, err := stmt.Exec(edges[lower], lower); err != nil {
			return fmt.Errorf("linking verdict %d to %d: %w", lower, edges[lower], err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("applying chains: %w", err)
	}
	return nil
}

// GetChain returns the ID of the verdict superseding lowerID, or nil when
// the verdict is final or does not exist.
func (db *DB) GetChain(lowerID int64) (*int64, error) {
	var upper sql.NullInt64
	err := db.conn.QueryRow(
		"SELECT superseded_by FROM verdicts WHERE id = ?", lowerID,
	).Scan(&upper)
	if err == sql.ErrNoRows || (err == nil && !upper.Valid) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &upper.Int64, nil
}

// GetChainPath follows superseded_by links upward from id and returns the
// verdicts in order, starting with id itself. Returns nil if id does not
// exist.
func (db *DB) GetChainPath(id int64) ([]Verdict, error) {
	var path []Verdict
	seen := make(map[int64]bool)
	next := &id
	for next != nil && !seen[*next] {
		seen[*next] = true
		v, err := db.GetVerdict(*next)
		if err != nil {
			return nil, err
		}
		if v == nil {
			break
		}
		path = append(path, *v)
		next = v.SupersededBy
	}
	return path, nil
}

// GetChainSummary counts the stored appeal links per lower court, in
// total, and the number of three-level chains (district -> appellate ->
// supreme).
func (db *DB) GetChainSummary() (*ChainSummary, error) {
	rows, err := db.conn.Query(
		`SELECT court, COUNT(*) FROM verdicts
		WHERE superseded_by IS NOT NULL GROUP BY court`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	s := &ChainSummary{ByCourt: make(map[court.Court]int)}
	for rows.Next() {
		var (
			name  string
			count int
		)
		if err := rows.Scan(&name, &count); err != nil {
			return nil, err
		}
		s.ByCourt[court.Court(name)] = count
		s.Total += count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := db.conn.QueryRow(
		`SELECT COUNT(*) FROM verdicts lower
		JOIN verdicts mid ON lower.superseded_by = mid.id
		WHERE lower.court = ? AND mid.court = ? AND mid.superseded_by IS NOT NULL`,
		string(court.District), string(court.Appellate),
	).Scan(&s.ThreeLevel); err != nil {
		return nil, err
	}
	return s, nil
}
